// Package diag provides the structured diagnostic type shared by all
// seven phases (spec §7). Diagnostics accumulate within a phase — the
// compiler does not bail on first error within P4, but does stop at
// phase boundaries if any prior phase reported errors.
package diag

import (
	"encoding/json"
	"errors"

	"github.com/plutolang/pluto/internal/ast"
)

// SchemaVersion tags the JSON encoding of a Report.
const SchemaVersion = "pluto.diagnostic/v1"

// Fix is an optional suggested fix with a confidence score, used by
// the JSON-encoded diagnostic output.
type Fix struct {
	Suggestion string  `json:"suggestion"`
	Confidence float64 `json:"confidence"`
}

// Report is the canonical structured diagnostic. Every diagnostic
// kind in spec §7's taxonomy is reported as a *Report: kind (Code),
// severity (all fatal per spec §7), source span, a message populated
// with the offending name/type, and optionally a secondary span (the
// prior declaration, the other half of a DI cycle, etc).
type Report struct {
	Schema        string         `json:"schema"`
	Code          string         `json:"code"`
	Phase         string         `json:"phase"`
	Message       string         `json:"message"`
	Span          *ast.Span      `json:"span,omitempty"`
	SecondarySpan *ast.Span      `json:"secondary_span,omitempty"`
	Data          map[string]any `json:"data,omitempty"`
	Fix           *Fix           `json:"fix,omitempty"`
}

// ReportError wraps a Report as an error so structured diagnostics
// survive errors.As() unwrapping through ordinary Go error handling.
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown diagnostic"
	}
	return e.Rep.Code + ": " + e.Rep.Message
}

// AsReport extracts a Report from an error chain.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// Wrap wraps a Report as an error.
func Wrap(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// ToJSON renders the diagnostic deterministically (sorted map keys
// via encoding/json's default struct-field order).
func (r *Report) ToJSON(compact bool) (string, error) {
	if compact {
		data, err := json.Marshal(r)
		return string(data), err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	return string(data), err
}

// New builds a Report for the given code/phase/message, the common
// path every phase uses.
func New(code, phase, message string) *Report {
	return &Report{Schema: SchemaVersion, Code: code, Phase: phase, Message: message, Data: map[string]any{}}
}

// WithSpan attaches a primary source span.
func (r *Report) WithSpan(span ast.Span) *Report {
	r.Span = &span
	return r
}

// WithSecondarySpan attaches a secondary span (e.g. the prior
// declaration in a DuplicateDeclaration report).
func (r *Report) WithSecondarySpan(span ast.Span) *Report {
	r.SecondarySpan = &span
	return r
}

// WithData attaches one structured data field.
func (r *Report) WithData(key string, value any) *Report {
	r.Data[key] = value
	return r
}
