// Package main provides the CLI entry point for ledgergrid.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid"
	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/config"
	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/grid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath string
	debug      bool
	outputPath string
	pretty     bool
	sheetName  string

	log *zap.Logger
	cfg config.Config
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ledgergrid",
		Short: "Maintain append-only ledger workbooks",
		Long: `ledgergrid infers the block layout of ledger sheets in .xlsx files,
appends day blocks, repairs running-total formulas and builds summary
and archive sheets.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/ledgergrid/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		inspectCmd(),
		initCmd(),
		appendCmd(),
		repairCmd(),
		updateCmd(),
		editCmd(),
		summaryCmd(),
		archiveCmd(),
	)

	err := rootCmd.Execute()
	if log != nil {
		_ = log.Sync()
	}
	if err != nil {
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	log = newLogger(debug)
	return nil
}

// newLogger writes human-readable logs to stderr.
func newLogger(debug bool) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(os.Stderr),
		level,
	)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}

func newEngine() *ledgergrid.Engine {
	return ledgergrid.New(ledgergrid.Options{Config: cfg, Logger: log})
}

func openBook(path string) (*grid.File, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	return grid.Open(path)
}

// save writes book in place, or to --output when set.
func save(book *grid.File) error {
	if outputPath != "" {
		return book.SaveAs(outputPath)
	}
	return book.Save()
}

// mutate opens path, runs fn and saves the result.
func mutate(path string, fn func(book *grid.File) error) error {
	book, err := openBook(path)
	if err != nil {
		return err
	}
	defer book.Close()
	if err := fn(book); err != nil {
		return err
	}
	if err := save(book); err != nil {
		return err
	}
	log.Debug("workbook saved", zap.String("path", path), zap.String("output", outputPath))
	return nil
}

func printJSON(v any) error {
	data, err := marshal(v)
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
