// Package output serializes inspection and repair results.
package output

import (
	"encoding/json"

	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/models"
)

// ToJSON serializes v, indented when pretty is set.
func ToJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

// SheetToJSON serializes a single sheet schema.
func SheetToJSON(sheet *models.SheetSchema, pretty bool) ([]byte, error) {
	return ToJSON(sheet, pretty)
}
