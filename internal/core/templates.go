package core

import (
	"bytes"
	"strings"
)

// SampleAppointmentsCSV returns the downloadable import template: every
// appointment column followed by one example row.
func SampleAppointmentsCSV() []byte {
	header := make([]string, len(AppointmentFields))
	for i, f := range AppointmentFields {
		header[i] = f.Name
	}
	example := []string{
		"2024-12-15 10:00", "1", "1", "10", "1", "1", "", "approved",
		"Sample appointment", "true", "",
	}

	var buf bytes.Buffer
	_ = WriteCSV(&buf, header, [][]string{example})
	return buf.Bytes()
}

// TemplateHelp describes the appointment columns for display next to the
// template download.
func TemplateHelp() []ColumnHelp {
	help := make([]ColumnHelp, 0, len(AppointmentFields))
	for _, f := range AppointmentFields {
		h := ColumnHelp{Name: f.Name, Required: f.Required, Default: f.Default}
		switch f.Type {
		case FieldDateTime:
			h.Format = "date-time, e.g. 2024-12-15 10:00"
		case FieldInt:
			h.Format = "integer"
		case FieldBool:
			h.Format = "true/false, yes/no or 1/0"
		case FieldEnum:
			h.Format = "one of " + strings.Join(f.EnumValues, ", ")
		case FieldJSON:
			h.Format = "JSON object"
		default:
			h.Format = "text"
		}
		help = append(help, h)
	}
	return help
}

// ColumnHelp documents one template column.
type ColumnHelp struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
	Default  string `json:"default,omitempty"`
	Format   string `json:"format"`
}
