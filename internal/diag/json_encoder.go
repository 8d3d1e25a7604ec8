package diag

import (
	"github.com/plutolang/pluto/internal/schema"
)

// Encoded is the structured JSON wire form of a diagnostic (spec §7: "one line per diagnostic on stderr" is the
// default; Encoded is the structured alternative, following the
// teacher's AI-first error-reporting design).
type Encoded struct {
	Schema     string      `json:"schema"`
	Phase      string      `json:"phase"`
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Fix        Fix         `json:"fix"`
	Context    interface{} `json:"context,omitempty"`
	SourceSpan string      `json:"source_span,omitempty"`
}

// Encode converts a Report to its wire form.
func Encode(r *Report) Encoded {
	e := Encoded{
		Schema:  schema.DiagnosticV1,
		Phase:   r.Phase,
		Code:    r.Code,
		Message: r.Message,
		Context: r.Data,
	}
	if r.Fix != nil {
		e.Fix = *r.Fix
	}
	if r.Span != nil {
		e.SourceSpan = r.Span.Start.String()
	}
	return e
}

// ToJSON converts the encoded diagnostic to deterministic JSON.
func (e Encoded) ToJSON() ([]byte, error) {
	data, err := schema.MarshalDeterministic(e)
	if err != nil {
		fallback := Encoded{Schema: schema.DiagnosticV1, Message: "encoding failed: " + err.Error()}
		return schema.MarshalDeterministic(fallback)
	}
	return schema.FormatJSON(data)
}
