package core

// bulk.go drives the row-by-row import loop.
//
// Rows are processed strictly in file order, one submission at a time. A
// failing row is recorded and the loop moves on, unless SkipErrors is off,
// in which case the loop halts at the first failure and the rows it never
// reached are counted as skipped.

import (
	"context"
	"strings"
	"time"

	"github.com/JonMunkholm/ameliadesk/internal/client"
	"github.com/JonMunkholm/ameliadesk/internal/logging"
)

// DefaultSuccessKey is where a created appointment sits in the response.
const DefaultSuccessKey client.Envelope = "data.appointment"

// sleep is replaced in tests.
var sleep = time.Sleep

// BulkOptions configures BulkImport.
type BulkOptions struct {
	DryRun     bool            // validate and transform only; never submits and never pauses between batches
	SkipErrors bool            // keep going after a failed row
	BatchSize  int             // rows per batch; 0 disables the pause
	BatchDelay time.Duration   // pause between batches
	SuccessKey client.Envelope // defaults to DefaultSuccessKey
}

// BulkImport converts and submits every row of t. It never returns an
// error: every failure is captured in the report.
func BulkImport(ctx context.Context, t *Table, submit Submitter, opts BulkOptions) *ImportReport {
	start := time.Now()
	if opts.SuccessKey == "" {
		opts.SuccessKey = DefaultSuccessKey
	}
	log := logging.FromContext(ctx)

	report := &ImportReport{
		Total:    t.Len(),
		DryRun:   opts.DryRun,
		Outcomes: []ImportOutcome{},
	}

	processed := 0
	for row, err := range t.Rows() {
		var o ImportOutcome
		if err != nil {
			o = ImportOutcome{Status: OutcomeError, ErrorMessage: err.Error()}
		} else {
			o = importRow(ctx, row, submit, opts)
		}
		o.RowNumber, o.LineNumber = row.Number, row.Line()
		report.record(o)
		processed++

		if o.Status == OutcomeError {
			log.Debug("import row failed", "row", o.LineNumber, "error", o.ErrorMessage)
			if !opts.SkipErrors {
				report.Halted = true
				break
			}
		}

		if !opts.DryRun && opts.BatchSize > 0 && opts.BatchDelay > 0 &&
			processed%opts.BatchSize == 0 && processed < report.Total {
			sleep(opts.BatchDelay)
		}
	}

	if report.Halted {
		report.Skipped += report.Total - processed
	}
	report.Elapsed = time.Since(start)
	return report
}

func importRow(ctx context.Context, row Row, submit Submitter, opts BulkOptions) ImportOutcome {
	if row.Blank() {
		return ImportOutcome{Status: OutcomeSkipped}
	}

	payload, err := ToPayload(row)
	if err != nil {
		return ImportOutcome{Status: OutcomeError, ErrorMessage: err.Error()}
	}
	if opts.DryRun {
		return ImportOutcome{Status: OutcomeSuccess}
	}

	return classify(submit(ctx, payload), opts.SuccessKey)
}

// classify maps a create response onto an outcome. Only a response carrying
// the success envelope with an entity id counts as created.
func classify(res client.Result, successKey client.Envelope) ImportOutcome {
	if !res.OK() {
		return ImportOutcome{Status: OutcomeError, ErrorMessage: res.Err.Error()}
	}
	if v, ok := client.Envelope("error").Extract(res.Data); ok && v != nil {
		return ImportOutcome{Status: OutcomeError, ErrorMessage: describe(v)}
	}
	v, ok := res.Extract(successKey)
	if !ok || v == nil {
		return ImportOutcome{Status: OutcomeError, ErrorMessage: "unexpected response"}
	}

	obj, _ := v.(map[string]any)
	id := FormatValue(obj["id"])
	if id == "" {
		return ImportOutcome{Status: OutcomeError, ErrorMessage: "unexpected response: created appointment has no id"}
	}
	return ImportOutcome{Status: OutcomeSuccess, CreatedID: id}
}

func describe(v any) string {
	if obj, ok := v.(map[string]any); ok {
		if msg, ok := obj["message"].(string); ok && msg != "" {
			return msg
		}
	}
	s := strings.TrimSpace(FormatValue(v))
	if s == "" {
		return "api returned an error"
	}
	return s
}
