package core

// export.go flattens API collections into CSV rows.
//
// CSV cannot express nested collections, so appointments are denormalized
// to one row per booking. Re-importing such a file creates one appointment
// per row; bookings are never merged back.

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// AppointmentExportColumns is the header of the appointment export.
var AppointmentExportColumns = []string{
	"appointment_id", "booking_id", "booking_start", "booking_end",
	"status", "booking_status", "service_id", "provider_id", "location_id",
	"internal_notes", "customer_id", "customer_first_name", "customer_last_name",
	"customer_email", "customer_phone", "persons", "price",
	"payment_status", "payment_gateway", "payment_amount",
	"duration", "custom_fields", "token",
}

// Column maps an export column to a key of the API object.
type Column struct {
	Name string
	Key  string
}

// FlattenFunc turns a collection into rows matching an export's columns.
type FlattenFunc func(items []any) [][]string

// FlattenObjects returns a FlattenFunc that emits one row per object,
// reading cols in order. Items that are not objects are ignored.
func FlattenObjects(cols []Column) FlattenFunc {
	return func(items []any) [][]string {
		rows := make([][]string, 0, len(items))
		for _, item := range items {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			row := make([]string, len(cols))
			for i, c := range cols {
				row[i] = FormatValue(obj[c.Key])
			}
			rows = append(rows, row)
		}
		return rows
	}
}

// ColumnNames returns the column names in order.
func ColumnNames(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}

// FlattenAppointments emits one row per (appointment, booking) pair in
// AppointmentExportColumns order. An appointment without bookings yields a
// single row whose booking columns are empty. Date-grouped collections
// ({"2024-12-15": {"appointments": [...]}}) are expanded in date order.
func FlattenAppointments(items []any) [][]string {
	var rows [][]string
	for _, apt := range appointmentObjects(items) {
		bookings, _ := apt["bookings"].([]any)
		if len(bookings) == 0 {
			rows = append(rows, appointmentRow(apt, nil))
			continue
		}
		for _, b := range bookings {
			booking, _ := b.(map[string]any)
			rows = append(rows, appointmentRow(apt, booking))
		}
	}
	return rows
}

// appointmentObjects returns the appointment objects in items, expanding
// date groups and dropping empty objects.
func appointmentObjects(items []any) []map[string]any {
	var out []map[string]any
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok || len(obj) == 0 {
			continue
		}
		if grouped, ok := dateGroups(obj); ok {
			out = append(out, grouped...)
			continue
		}
		out = append(out, obj)
	}
	return out
}

// dateGroups reports whether obj is keyed by date with an appointments list
// under each key, and returns those appointments.
func dateGroups(obj map[string]any) ([]map[string]any, bool) {
	if _, ok := obj["id"]; ok {
		return nil, false
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []map[string]any
	found := false
	for _, k := range keys {
		group, ok := obj[k].(map[string]any)
		if !ok {
			continue
		}
		list, ok := group["appointments"].([]any)
		if !ok {
			continue
		}
		found = true
		for _, a := range list {
			if apt, ok := a.(map[string]any); ok && len(apt) > 0 {
				out = append(out, apt)
			}
		}
	}
	return out, found
}

func appointmentRow(apt, booking map[string]any) []string {
	row := []string{
		FormatValue(apt["id"]),
		"",
		FormatValue(apt["bookingStart"]),
		FormatValue(apt["bookingEnd"]),
		FormatValue(apt["status"]),
		"",
		FormatValue(apt["serviceId"]),
		FormatValue(apt["providerId"]),
		FormatValue(apt["locationId"]),
		FormatValue(apt["internalNotes"]),
	}
	if booking == nil {
		return append(row, make([]string, len(AppointmentExportColumns)-len(row))...)
	}
	row[1] = FormatValue(booking["id"])
	row[5] = FormatValue(booking["status"])

	customer, _ := booking["customer"].(map[string]any)
	var payment map[string]any
	if payments, _ := booking["payments"].([]any); len(payments) > 0 {
		payment, _ = payments[0].(map[string]any)
	}

	duration := booking["duration"]
	if duration == nil {
		duration = apt["duration"]
	}

	return append(row,
		FormatValue(booking["customerId"]),
		FormatValue(customer["firstName"]),
		FormatValue(customer["lastName"]),
		FormatValue(customer["email"]),
		FormatValue(customer["phone"]),
		FormatValue(booking["persons"]),
		FormatValue(booking["price"]),
		FormatValue(payment["status"]),
		FormatValue(payment["gateway"]),
		FormatValue(payment["amount"]),
		FormatValue(duration),
		FormatValue(booking["customFields"]),
		FormatValue(booking["token"]),
	)
}

// FormatValue renders a decoded JSON value as a CSV cell. Objects and
// arrays are written as compact JSON; null is empty.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case map[string]any, []any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}

// WriteCSV writes a header and rows.
func WriteCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}
