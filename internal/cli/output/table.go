// Package output provides output formatting for the sysvalidator CLI.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"
	"text/tabwriter"

	"github.com/0823nobuo-png/System-Validator/internal/infra/confloader"
)

// Tabler is implemented by results that lay out their own table.
type Tabler interface {
	Table(wide bool) *Table
}

// TableFormatter formats data as an aligned text table.
type TableFormatter struct {
	Wide      bool
	NoHeaders bool
}

// Format formats data as a table.
// Supports: Tabler, *Table, confloader.Mapping and flat structs.
// Anything else is printed as JSON.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	var t *Table
	switch d := data.(type) {
	case nil:
		return nil
	case Tabler:
		t = d.Table(f.Wide)
	case *Table:
		t = d
	case confloader.Mapping:
		t = MappingTable(d, f.Wide)
	default:
		var ok bool
		if t, ok = structTable(data); !ok {
			encoder := json.NewEncoder(w)
			encoder.SetIndent("", "  ")
			return encoder.Encode(data)
		}
	}
	return t.RenderWithOptions(w, f.NoHeaders)
}

// MappingTable lays out a configuration mapping one leaf per row,
// sorted by key. Nested mappings are flattened into dotted keys.
// Wide tables add the value kind.
func MappingTable(m confloader.Mapping, wide bool) *Table {
	t := &Table{}
	if wide {
		t.SetHeaders("KEY", "KIND", "VALUE")
	} else {
		t.SetHeaders("KEY", "VALUE")
	}
	addMappingRows(t, "", m, wide)
	return t
}

func addMappingRows(t *Table, prefix string, m confloader.Mapping, wide bool) {
	for _, k := range m.Keys() {
		v := m[k]
		key := prefix + k
		if nested, ok := v.Map(); ok && len(nested) > 0 {
			addMappingRows(t, key+".", nested, wide)
			continue
		}
		if wide {
			t.AddRow(key, v.Kind().String(), v.String())
		} else {
			t.AddRow(key, v.String())
		}
	}
}

// structTable renders a struct as FIELD/VALUE rows named after the json
// tags. It reports false for anything but a struct (or pointer to one).
func structTable(data any) (*Table, bool) {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, false
	}

	t := &Table{Headers: []string{"FIELD", "VALUE"}}
	typ := v.Type()
	for i := range typ.NumField() {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = field.Name
		}
		t.AddRow(name, cell(v.Field(i).Interface()))
	}
	return t, true
}

// cell renders one table value; empty strings show as "-".
func cell(v any) string {
	if s, ok := v.(string); ok && s == "" {
		return "-"
	}
	return fmt.Sprint(v)
}

// Table represents tabular data.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Render renders the table to the writer.
func (t *Table) Render(w io.Writer) error {
	return t.RenderWithOptions(w, false)
}

// RenderWithOptions renders the table, optionally without the header
// line. Columns are separated by at least two spaces.
func (t *Table) RenderWithOptions(w io.Writer, noHeaders bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if !noHeaders && len(t.Headers) > 0 {
		fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	}
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// SetHeaders sets the table headers.
func (t *Table) SetHeaders(headers ...string) {
	t.Headers = headers
}
