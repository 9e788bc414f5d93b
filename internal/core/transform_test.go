package core

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func firstRow(t *testing.T, data string) Row {
	t.Helper()
	rows := collect(t, mustParse(t, data))
	if len(rows) == 0 {
		t.Fatal("no rows")
	}
	return rows[0]
}

func TestToPayload_Minimal(t *testing.T) {
	row := firstRow(t, requiredHeader+"\n2024-12-15 10:00,1,1,10\n")

	p, err := ToPayload(row)
	if err != nil {
		t.Fatalf("ToPayload: %v", err)
	}

	if p.BookingStart != "2024-12-15 10:00" {
		t.Errorf("BookingStart = %q", p.BookingStart)
	}
	if p.ServiceID != 1 || p.ProviderID != 1 {
		t.Errorf("ServiceID=%d ProviderID=%d, want 1 and 1", p.ServiceID, p.ProviderID)
	}
	if p.LocationID != nil {
		t.Errorf("LocationID = %v, want nil", *p.LocationID)
	}
	if !p.NotifyParticipants {
		t.Error("NotifyParticipants should default to true")
	}
	if len(p.Bookings) != 1 {
		t.Fatalf("got %d bookings, want 1", len(p.Bookings))
	}

	b := p.Bookings[0]
	if b.CustomerID != 10 || b.Persons != 1 || b.Status != "approved" {
		t.Errorf("booking = %+v, want customer 10, persons 1, approved", b)
	}
	if b.Duration != nil || b.CustomFields != nil {
		t.Errorf("optional booking fields set: %+v", b)
	}
}

func TestToPayload_JSONShape(t *testing.T) {
	row := firstRow(t, requiredHeader+"\n2024-12-15 10:00,1,1,10\n")
	p, err := ToPayload(row)
	if err != nil {
		t.Fatalf("ToPayload: %v", err)
	}

	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"bookingStart":"2024-12-15 10:00","serviceId":1,"providerId":1,"notifyParticipants":true,` +
		`"internalNotes":"","bookings":[{"customerId":10,"persons":1,"status":"approved","extras":[]}]}`
	if string(b) != want {
		t.Errorf("json =\n  %s\nwant\n  %s", b, want)
	}
}

func TestToPayload_AllOptionalFields(t *testing.T) {
	data := requiredHeader + ",location_id,persons,duration,status,internal_notes,notify_participants,custom_fields\n" +
		`12/15/2024 2:30 PM,3,4,5,2,3,3600,Pending,VIP guest,0,"{""1"":{""label"":""Allergy"",""value"":""nuts""}}"` + "\n"
	row := firstRow(t, data)

	p, err := ToPayload(row)
	if err != nil {
		t.Fatalf("ToPayload: %v", err)
	}

	if p.BookingStart != "2024-12-15 14:30" {
		t.Errorf("BookingStart = %q", p.BookingStart)
	}
	if p.LocationID == nil || *p.LocationID != 2 {
		t.Errorf("LocationID = %v, want 2", p.LocationID)
	}
	if p.NotifyParticipants {
		t.Error("NotifyParticipants = true, want false")
	}
	if p.InternalNotes != "VIP guest" {
		t.Errorf("InternalNotes = %q", p.InternalNotes)
	}

	b := p.Bookings[0]
	if b.Persons != 3 || b.Status != "pending" {
		t.Errorf("Persons=%d Status=%q", b.Persons, b.Status)
	}
	if b.Duration == nil || *b.Duration != 3600 {
		t.Errorf("Duration = %v, want 3600", b.Duration)
	}
	field, _ := b.CustomFields["1"].(map[string]any)
	if field["value"] != "nuts" {
		t.Errorf("CustomFields = %v", b.CustomFields)
	}
}

func TestToPayload_KeepsFreeTextVerbatim(t *testing.T) {
	tests := []struct {
		name string
		cell string
		want string
	}{
		{"quoted phrase", `"Customer said ""call me"""`, `Customer said "call me"`},
		{"equals prefix", "=needs wheelchair", "=needs wheelchair"},
		{"apostrophes", "'VIP'", "'VIP'"},
		{"padding", "  late arrival  ", "late arrival"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := firstRow(t, requiredHeader+",internal_notes\n2024-12-15 10:00,1,1,10,"+tt.cell+"\n")
			p, err := ToPayload(row)
			if err != nil {
				t.Fatalf("ToPayload: %v", err)
			}
			if p.InternalNotes != tt.want {
				t.Errorf("InternalNotes = %q, want %q", p.InternalNotes, tt.want)
			}
		})
	}
}

func TestToPayload_CleansTypedCells(t *testing.T) {
	row := firstRow(t, requiredHeader+",status\n"+`="2024-12-15 10:00",="1",'2',10,'pending'`+"\n")
	p, err := ToPayload(row)
	if err != nil {
		t.Fatalf("ToPayload: %v", err)
	}
	if p.BookingStart != "2024-12-15 10:00" || p.ServiceID != 1 || p.ProviderID != 2 {
		t.Errorf("payload = %+v", p)
	}
	if p.Bookings[0].CustomerID != 10 || p.Bookings[0].Status != "pending" {
		t.Errorf("booking = %+v", p.Bookings[0])
	}
}

func TestToPayload_OmitsNonPositiveOptionalIDs(t *testing.T) {
	row := firstRow(t, requiredHeader+",location_id,duration\n2024-12-15 10:00,1,1,10,0,0\n")

	p, err := ToPayload(row)
	if err != nil {
		t.Fatalf("ToPayload: %v", err)
	}
	if p.LocationID != nil {
		t.Errorf("LocationID = %d, want omitted", *p.LocationID)
	}
	if p.Bookings[0].Duration != nil {
		t.Errorf("Duration = %d, want omitted", *p.Bookings[0].Duration)
	}
}

func TestToPayload_DropsBadCustomFields(t *testing.T) {
	for _, cell := range []string{"not json", "[1,2]", "42", "null"} {
		t.Run(cell, func(t *testing.T) {
			data := requiredHeader + ",custom_fields\n2024-12-15 10:00,1,1,10," + `"` + cell + `"` + "\n"
			p, err := ToPayload(firstRow(t, data))
			if err != nil {
				t.Fatalf("ToPayload: %v", err)
			}
			if p.Bookings[0].CustomFields != nil {
				t.Errorf("CustomFields = %v, want dropped", p.Bookings[0].CustomFields)
			}
		})
	}
}

func TestToPayload_Errors(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		row     string
		wantErr string
	}{
		{"bad date", "", "later,1,1,10", "invalid date"},
		{"empty service", "", "2024-12-15 10:00,,1,10", "service_id is empty"},
		{"bad provider", "", "2024-12-15 10:00,1,p,10", "provider_id must be numeric"},
		{"bad customer", "", "2024-12-15 10:00,1,1,1.5", "customer_id must be numeric"},
		{"zero persons", ",persons", "2024-12-15 10:00,1,1,10,0", "persons must be at least 1"},
		{"bad persons", ",persons", "2024-12-15 10:00,1,1,10,two", "persons must be numeric"},
		{"bad status", ",status", "2024-12-15 10:00,1,1,10,booked", "invalid enum"},
		{"bad notify", ",notify_participants", "2024-12-15 10:00,1,1,10,sometimes", "must be yes/no"},
		{"bad location", ",location_id", "2024-12-15 10:00,1,1,10,here", "location_id must be numeric"},
		{"bad duration", ",duration", "2024-12-15 10:00,1,1,10,1h", "duration must be numeric"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := firstRow(t, requiredHeader+tt.header+"\n"+tt.row+"\n")
			_, err := ToPayload(row)
			if err == nil {
				t.Fatal("ToPayload succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestToPayload_Idempotent(t *testing.T) {
	data := requiredHeader + ",location_id,duration,custom_fields\n" +
		`2024-12-15 10:00,1,1,10,4,1800,"{""a"":1}"` + "\n"
	row := firstRow(t, data)

	first, err := ToPayload(row)
	if err != nil {
		t.Fatalf("ToPayload: %v", err)
	}
	second, err := ToPayload(row)
	if err != nil {
		t.Fatalf("ToPayload: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("payloads differ:\n  %+v\n  %+v", first, second)
	}
}
