package core

// fields.go declares the appointment CSV columns and the typed accessors
// used to read them. Optional columns fall back to the Default declared on
// their FieldSpec, so callers never probe for a column's existence.

import (
	"fmt"
	"strings"
)

// FieldType represents the expected data type for a CSV field.
type FieldType int

const (
	FieldText FieldType = iota
	FieldEnum
	FieldDateTime
	FieldInt
	FieldBool
	FieldJSON
)

// FieldSpec describes one CSV column.
type FieldSpec struct {
	Name       string    // Column header name, matched case-insensitively
	Type       FieldType // Expected data type
	Required   bool      // Column must exist in the header
	Default    string    // Value used when the cell is empty or the column absent
	EnumValues []string  // Valid values for FieldEnum
}

// Appointment columns.
var (
	ColBookingStart = FieldSpec{Name: "booking_start", Type: FieldDateTime, Required: true}
	ColServiceID    = FieldSpec{Name: "service_id", Type: FieldInt, Required: true}
	ColProviderID   = FieldSpec{Name: "provider_id", Type: FieldInt, Required: true}
	ColCustomerID   = FieldSpec{Name: "customer_id", Type: FieldInt, Required: true}
	ColLocationID   = FieldSpec{Name: "location_id", Type: FieldInt}
	ColPersons      = FieldSpec{Name: "persons", Type: FieldInt, Default: "1"}
	ColDuration     = FieldSpec{Name: "duration", Type: FieldInt}
	ColStatus       = FieldSpec{
		Name:       "status",
		Type:       FieldEnum,
		Default:    "approved",
		EnumValues: []string{"approved", "pending", "canceled", "rejected"},
	}
	ColInternalNotes = FieldSpec{Name: "internal_notes", Type: FieldText}
	ColNotify        = FieldSpec{Name: "notify_participants", Type: FieldBool, Default: "true"}
	ColCustomFields  = FieldSpec{Name: "custom_fields", Type: FieldJSON}
)

// AppointmentFields lists every appointment column in template order.
var AppointmentFields = []FieldSpec{
	ColBookingStart,
	ColServiceID,
	ColProviderID,
	ColCustomerID,
	ColLocationID,
	ColPersons,
	ColDuration,
	ColStatus,
	ColInternalNotes,
	ColNotify,
	ColCustomFields,
}

// RequiredColumns returns the names of the required specs.
func RequiredColumns(specs []FieldSpec) []string {
	var out []string
	for _, s := range specs {
		if s.Required {
			out = append(out, s.Name)
		}
	}
	return out
}

// Row is one data record of a parsed CSV file.
type Row struct {
	Number int      // 1-based position among data rows
	Values []string // cells as read, uncleaned

	header HeaderIndex
}

// Line returns the row's line number in the file, counting the header as
// line 1.
func (r Row) Line() int {
	return r.Number + 1
}

// Cell returns the cleaned cell for a column, or "" when the column is
// absent or the row is short.
func (r Row) Cell(name string) string {
	pos, ok := r.header[toKey(name)]
	if !ok || pos >= len(r.Values) {
		return ""
	}
	return CleanCell(r.Values[pos])
}

// Blank reports whether every cell is empty.
func (r Row) Blank() bool {
	for _, v := range r.Values {
		if CleanCell(v) != "" {
			return false
		}
	}
	return true
}

// Raw returns the cell with surrounding whitespace trimmed and nothing else
// removed, or "" when the column is absent or the row is short.
func (r Row) Raw(name string) string {
	pos, ok := r.header[toKey(name)]
	if !ok || pos >= len(r.Values) {
		return ""
	}
	return strings.TrimSpace(r.Values[pos])
}

// Text returns the cell or the spec's default. Free text and JSON cells are
// only trimmed; every other type is cleaned with CleanCell.
func (r Row) Text(spec FieldSpec) string {
	v := r.Cell(spec.Name)
	if spec.Type == FieldText || spec.Type == FieldJSON {
		v = r.Raw(spec.Name)
	}
	if v != "" {
		return v
	}
	return spec.Default
}

// Int reads an integer column. set is false when the cell and default are
// both empty.
func (r Row) Int(spec FieldSpec) (n int64, set bool, err error) {
	v := r.Text(spec)
	if v == "" {
		return 0, false, nil
	}
	n, err = ParseID(v)
	if err != nil {
		return 0, true, fmt.Errorf("%s must be numeric", spec.Name)
	}
	return n, true, nil
}

// Bool reads a boolean column.
func (r Row) Bool(spec FieldSpec) (bool, error) {
	v := r.Text(spec)
	if v == "" {
		return false, nil
	}
	b, ok := ParseBool(v)
	if !ok {
		return false, fmt.Errorf("%s must be yes/no, true/false, or 1/0", spec.Name)
	}
	return b, nil
}

// Enum reads an enum column, lowercasing the value.
func (r Row) Enum(spec FieldSpec) (string, error) {
	v := strings.ToLower(r.Text(spec))
	for _, ev := range spec.EnumValues {
		if v == ev {
			return v, nil
		}
	}
	return "", fmt.Errorf("invalid enum value %q for %s (one of: %s)", v, spec.Name, strings.Join(spec.EnumValues, ", "))
}
