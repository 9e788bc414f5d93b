package core

// error_messages.go maps technical errors to user-facing messages with
// codes for support reference. Users quote the code; support looks it up
// here.
//
// # Upstream API Errors (API001-API099)
//
//	API001 - Unauthorized: the API rejected the credentials
//	         Patterns: "status 401"
//	API002 - Forbidden: the key lacks permission for this resource
//	         Patterns: "status 403"
//	API003 - Not found: the record or endpoint does not exist
//	         Patterns: "status 404"
//	API004 - Timeout: the API did not answer in time
//	         Patterns: "timed out", "context deadline exceeded"
//	API005 - Cancelled: the request was cancelled
//	         Patterns: "cancelled", "context canceled"
//	API006 - Unreachable: the API host cannot be reached
//	         Patterns: "connection refused", "cannot resolve host", "no such host"
//	API007 - Malformed: the API answered with something that is not JSON
//	         Patterns: "malformed_response"
//	API008 - Server error: the API failed internally
//	         Patterns: "(status 5"
//	API009 - Unexpected: the API answered without the expected record
//	         Patterns: "unexpected response"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Invalid date      Patterns: "invalid date"
//	VAL002 - Invalid number    Patterns: "must be numeric", "invalid number"
//	VAL003 - Required field    Patterns: "required field", "is required"
//	VAL004 - Missing column    Patterns: "missing required column"
//	VAL005 - Invalid boolean   Patterns: "must be yes/no"
//	VAL006 - Invalid enum      Patterns: "invalid enum"
//	VAL007 - Invalid persons   Patterns: "persons must be"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large   Patterns: "file too large"
//	FILE002 - Invalid CSV      Patterns: "invalid csv"
//	FILE003 - Encoding error   Patterns: "encoding error"
//	FILE004 - No file          Patterns: "no file provided"
//	FILE005 - Empty file       Patterns: "empty file"
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - System busy       Patterns: "too many imports"
//	IMP002 - Report expired    Patterns: "import report not found"
//	IMP003 - Unknown export    Patterns: "unknown export"
//	IMP004 - Unknown resource  Patterns: "unknown resource"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Rate limited     Patterns: "rate limit", "status 429"
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. Check the application logs for the
// original technical error.
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	msgUnauthorized = UserMessage{"The API rejected the credentials", "Check the API key or the configured auth scheme", "API001"}
	msgTimeout      = UserMessage{"The booking API did not respond in time", "Try again, or import a smaller file with a longer batch delay", "API004"}
	msgCancelled    = UserMessage{"Request was cancelled", "Please try again", "API005"}
	msgUnreachable  = UserMessage{"Unable to reach the booking API", "Check AMELIA_API_URL and your network connection", "API006"}
	msgNumeric      = UserMessage{"An ID column contains a value that is not a whole number", "Use plain numbers such as 12 in ID columns", "VAL002"}
	msgRequired     = UserMessage{"Required field is empty", "Ensure all required columns have values", "VAL003"}
	msgRateLimited  = UserMessage{"Too many requests", "Please wait a moment before trying again", "RATE001"}
)

// errorPatterns maps technical error patterns (case-insensitive) to user
// messages. Order matters.
var errorPatterns = []errorPattern{
	// Import and lookup errors
	{"import report not found", UserMessage{"Import report not found", "Reports expire after a while. Run the import again", "IMP002"}},
	{"too many imports", UserMessage{"Another import is already running", "Please wait for it to finish and try again", "IMP001"}},
	{"unknown export", UserMessage{"Unknown export type", "Choose one of the listed exports", "IMP003"}},
	{"unknown resource", UserMessage{"Unknown resource", "Check the resource name against /api/resources", "IMP004"}},

	// File errors
	{"file too large", UserMessage{"File exceeds the maximum upload size", "Split the file into smaller chunks", "FILE001"}},
	{"invalid csv", UserMessage{"File is not a valid CSV", "Ensure file is comma-separated with consistent quoting", "FILE002"}},
	{"encoding error", UserMessage{"File contains invalid characters", "Save file as UTF-8 encoding", "FILE003"}},
	{"no file provided", UserMessage{"No file was selected", "Please select a CSV file to upload", "FILE004"}},
	{"empty file", UserMessage{"The uploaded file is empty", "Please upload a CSV file with a header and data rows", "FILE005"}},

	// Validation errors
	{"invalid request", UserMessage{"The request is invalid", "Check the request parameters and body", "VAL008"}},
	{"missing required column", UserMessage{"Required column is missing from CSV", "Download the template and compare the header", "VAL004"}},
	{"invalid date", UserMessage{"Invalid date format detected", "Use YYYY-MM-DD HH:MM, e.g. 2024-12-15 10:00", "VAL001"}},
	{"must be numeric", msgNumeric},
	{"invalid number", msgNumeric},
	{"required field", msgRequired},
	{"is required", msgRequired},
	{"must be yes/no", UserMessage{"Invalid true/false value", "Use true/false, yes/no, or 1/0", "VAL005"}},
	{"invalid enum", UserMessage{"Value is not in the allowed list", "Check the allowed values for this field", "VAL006"}},
	{"persons must be", UserMessage{"Persons must be at least 1", "Leave persons empty for the default of 1", "VAL007"}},

	// Transport errors
	{"timed out", msgTimeout},
	{"context deadline exceeded", msgTimeout},
	{"cancelled", msgCancelled},
	{"context canceled", msgCancelled},
	{"connection refused", msgUnreachable},
	{"cannot resolve host", msgUnreachable},
	{"no such host", msgUnreachable},
	{"malformed_response", UserMessage{"The booking API returned an unreadable response", "Check that the API URL points at the REST endpoint, not a web page", "API007"}},

	// HTTP status errors
	{"status 401", msgUnauthorized},
	{"status 403", UserMessage{"The API key lacks permission for this action", "Ask an administrator to extend the key's permissions", "API002"}},
	{"status 404", UserMessage{"Record or endpoint not found", "Check the ID, or the resource path in the profile", "API003"}},
	{"status 429", msgRateLimited},
	{"rate limit", msgRateLimited},
	{"(status 5", UserMessage{"The booking API failed while handling the request", "Please try again later", "API008"}},
	{"unexpected response", UserMessage{"The API answered without the created record", "Check the record in the booking system before retrying", "API009"}},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
//
// Example:
//
//	err := errors.New("http error (status 401): invalid key")
//	msg := MapError(err)
//	// msg.Code == "API001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	return MapMessage(err.Error())
}

// MapMessage is MapError for a plain message, such as a row outcome.
func MapMessage(text string) UserMessage {
	lower := strings.ToLower(text)
	for _, ep := range errorPatterns {
		if strings.Contains(lower, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
