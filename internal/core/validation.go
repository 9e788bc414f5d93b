package core

// validation.go checks an appointment CSV before anything is submitted.
//
// Validation happens at two levels:
//  1. Header validation: all required columns must be present. A missing
//     column short-circuits with a single error and no row is inspected.
//  2. Row validation: every row is checked and all errors are collected, so
//     the caller can fix the whole file in one pass.
//
// Messages cite the file line number, counting the header as line 1.

import (
	"fmt"
	"strings"
)

// ValidationResult is the outcome of validating a file.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Rows   int      `json:"rows"`
	Errors []string `json:"errors"`
}

// MissingColumns returns the required specs absent from the header, in
// spec order.
func MissingColumns(t *Table, specs []FieldSpec) []string {
	var missing []string
	for _, name := range RequiredColumns(specs) {
		if !t.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// ValidateAppointments checks the header and every row of an appointment file.
func ValidateAppointments(t *Table) ValidationResult {
	if missing := MissingColumns(t, AppointmentFields); len(missing) > 0 {
		return ValidationResult{
			Errors: []string{"Missing required columns: " + strings.Join(missing, ", ")},
		}
	}

	result := ValidationResult{Errors: []string{}}
	for row, err := range t.Rows() {
		result.Rows++
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", row.Line(), err))
			break
		}
		result.Errors = append(result.Errors, validateRow(row)...)
	}

	result.Valid = len(result.Errors) == 0
	return result
}

// validateRow returns the errors for one row. Blank rows are not checked;
// the import loop skips them.
func validateRow(row Row) []string {
	if row.Blank() {
		return nil
	}

	var errs []string
	if v := row.Cell(ColBookingStart.Name); v == "" {
		errs = append(errs, fmt.Sprintf("Row %d: booking_start is required", row.Line()))
	} else if _, err := ParseDateTime(v); err != nil {
		errs = append(errs, fmt.Sprintf("Row %d: Invalid date format in booking_start", row.Line()))
	}

	for _, spec := range []FieldSpec{ColServiceID, ColProviderID, ColCustomerID} {
		v := row.Cell(spec.Name)
		if v == "" {
			errs = append(errs, fmt.Sprintf("Row %d: %s is required", row.Line(), spec.Name))
			continue
		}
		if _, err := ParseID(v); err != nil {
			errs = append(errs, fmt.Sprintf("Row %d: %s must be numeric", row.Line(), spec.Name))
		}
	}
	return errs
}
