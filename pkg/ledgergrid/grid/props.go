package grid

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Property returns a custom document property stored as text.
func (b *File) Property(name string) (string, bool, error) {
	props, err := b.f.GetCustomProps()
	if err != nil {
		return "", false, err
	}
	for _, p := range props {
		if p.Name != name {
			continue
		}
		if v, ok := p.Value.(string); ok {
			return v, true, nil
		}
		return fmt.Sprint(p.Value), true, nil
	}
	return "", false, nil
}

// SetProperty stores a custom document property.
func (b *File) SetProperty(name, value string) error {
	return b.f.SetCustomProps(excelize.CustomProperty{Name: name, Value: value})
}

// DeleteProperty removes a custom document property if present.
func (b *File) DeleteProperty(name string) error {
	return b.f.SetCustomProps(excelize.CustomProperty{Name: name})
}

// PropertyNames lists custom property names starting with prefix.
func (b *File) PropertyNames(prefix string) ([]string, error) {
	props, err := b.f.GetCustomProps()
	if err != nil {
		return nil, err
	}
	var names []string
	for _, p := range props {
		if strings.HasPrefix(p.Name, prefix) {
			names = append(names, p.Name)
		}
	}
	sort.Strings(names)
	return names, nil
}

var (
	_ Workbook   = (*File)(nil)
	_ Properties = (*File)(nil)
	_ Sheet      = (*XSheet)(nil)
)
