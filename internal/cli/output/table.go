package output

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
	"text/tabwriter"
	"time"
)

// TableFormatter formats data as an aligned text table.
type TableFormatter struct {
	Wide      bool
	NoHeaders bool
}

// Format renders a Table, a slice of structs, a single struct or a map.
// Anything else falls back to JSON.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	if data == nil {
		return nil
	}

	switch t := data.(type) {
	case *Table:
		return t.RenderWithOptions(w, f.NoHeaders)
	case Table:
		return t.RenderWithOptions(w, f.NoHeaders)
	}

	table, err := toTable(data, f.Wide)
	if err != nil {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)
	}
	return table.RenderWithOptions(w, f.NoHeaders)
}

// column is one rendered struct field.
type column struct {
	index int
	name  string
}

// columns returns the visible fields of a struct type in declaration order.
func columns(t reflect.Type, wide bool) []column {
	var cols []column
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := field.Tag.Get("table")
		if tag == "-" || (strings.Contains(tag, "wide") && !wide) {
			continue
		}
		cols = append(cols, column{index: i, name: fieldName(field)})
	}
	return cols
}

// fieldName prefers the json tag name over the Go field name.
func fieldName(field reflect.StructField) string {
	if tag := field.Tag.Get("json"); tag != "" {
		if name, _, _ := strings.Cut(tag, ","); name != "" && name != "-" {
			return name
		}
	}
	return toSnakeCase(field.Name)
}

func toTable(data any, wide bool) (*Table, error) {
	v := reflect.ValueOf(data)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return &Table{}, nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		return sliceToTable(v, wide)
	case reflect.Map:
		return mapToTable(v), nil
	case reflect.Struct:
		return structToTable(v, wide), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", v.Kind())
	}
}

// sliceToTable renders one row per element. Elements must be structs.
func sliceToTable(v reflect.Value, wide bool) (*Table, error) {
	elemType := v.Type().Elem()
	if elemType.Kind() == reflect.Ptr {
		elemType = elemType.Elem()
	}
	if elemType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("unsupported element type: %s", elemType.Kind())
	}

	cols := columns(elemType, wide)
	table := &Table{}
	for _, c := range cols {
		table.Headers = append(table.Headers, strings.ToUpper(c.name))
	}

	for i := 0; i < v.Len(); i++ {
		elem := v.Index(i)
		if elem.Kind() == reflect.Ptr {
			if elem.IsNil() {
				continue
			}
			elem = elem.Elem()
		}
		row := make([]string, len(cols))
		for j, c := range cols {
			row[j] = formatValue(elem.Field(c.index))
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// mapToTable renders a key-value table sorted by key.
func mapToTable(v reflect.Value) *Table {
	table := &Table{Headers: []string{"KEY", "VALUE"}}
	iter := v.MapRange()
	for iter.Next() {
		table.AddRow(formatValue(iter.Key()), formatValue(iter.Value()))
	}
	sort.Slice(table.Rows, func(i, j int) bool {
		return table.Rows[i][0] < table.Rows[j][0]
	})
	return table
}

// structToTable renders a single struct as FIELD/VALUE rows.
func structToTable(v reflect.Value, wide bool) *Table {
	table := &Table{Headers: []string{"FIELD", "VALUE"}}
	for _, c := range columns(v.Type(), wide) {
		table.AddRow(c.name, formatValue(v.Field(c.index)))
	}
	return table
}

var timeType = reflect.TypeOf(time.Time{})

// formatValue formats a reflect.Value for display. Empty values print "-".
func formatValue(v reflect.Value) string {
	for v.IsValid() && (v.Kind() == reflect.Interface || v.Kind() == reflect.Ptr) {
		if v.IsNil() {
			return "-"
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return "-"
	}

	if v.Type() == timeType {
		t := v.Interface().(time.Time)
		if t.IsZero() {
			return "-"
		}
		return t.Local().Format("2006-01-02 15:04")
	}
	if d, ok := v.Interface().(time.Duration); ok {
		return d.String()
	}

	switch v.Kind() {
	case reflect.String:
		if s := v.String(); s != "" {
			return s
		}
		return "-"
	case reflect.Bool:
		if v.Bool() {
			return "yes"
		}
		return "no"
	case reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%g", v.Float())
	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			return "-"
		}
		return fmt.Sprintf("[%d items]", v.Len())
	case reflect.Map:
		if v.Len() == 0 {
			return "-"
		}
		return fmt.Sprintf("{%d keys}", v.Len())
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}

// toSnakeCase converts CamelCase to snake_case.
func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
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

// RenderWithOptions renders the table, optionally without the header row.
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
