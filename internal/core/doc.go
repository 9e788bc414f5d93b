// Package core provides the CSV transform and bulk-import engine for the
// Amelia booking API.
//
// The package sits between the HTTP surface and the API client. It has no
// transport dependencies of its own and can be driven by web handlers, CLI
// tools or tests.
//
// # Import Flow
//
// An uploaded file moves through these steps:
//
//  1. [ParseRows] strips a BOM, repairs invalid UTF-8 and reads the header
//  2. [ValidateAppointments] checks the header, then every row, and collects
//     all row-level errors
//  3. [BulkImport] walks the rows in file order, converts each one with
//     [ToPayload] and hands it to a [Submitter]
//  4. The resulting [ImportReport] can be rendered as JSON or written back
//     as CSV with [WriteErrorReport]
//
// Validation always runs before the first submission, so an invalid file
// produces no side effects on the remote system.
//
// # Export Registry
//
// Exports are registered at init time using [Register]. Each [Export]
// names the API resource it reads and how a collection is flattened into
// CSV rows:
//
//	core.Register(Export{
//	    Key:      "customers",
//	    Resource: "customers",
//	    Columns:  []string{"id", "first_name", "last_name"},
//	    Flatten:  flattenCustomers,
//	})
//
// Appointments are flattened one row per booking; an appointment without
// bookings still yields one row.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a code for support reference:
//
//   - API001-API006: upstream API errors (auth, not found, timeouts)
//   - VAL001-VAL006: validation errors (dates, IDs, missing columns)
//   - FILE001-FILE005: file errors (size, encoding, format)
//   - IMP001-IMP003: import errors (busy, expired report, unknown export)
package core
