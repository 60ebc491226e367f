package card

import "fmt"

// DiagnosticKind classifies a recoverable decode problem.
type DiagnosticKind string

const (
	UnknownToken DiagnosticKind = "unknown-token"
	BadNumber    DiagnosticKind = "bad-number"
	Structure    DiagnosticKind = "structure"
	UnknownSet   DiagnosticKind = "unknown-set"
)

// Diagnostic reports a unit of input that was dropped or defaulted while
// decoding. Line is 1-based, or 0 when the decoder had no line context.
type Diagnostic struct {
	Line    int
	Kind    DiagnosticKind
	Token   string
	Message string
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s %q", d.Line, d.Kind, d.Message, d.Token)
	}
	return fmt.Sprintf("%s: %s %q", d.Kind, d.Message, d.Token)
}

// Diagnostics is a list of decode problems.
type Diagnostics []Diagnostic

// AtLine stamps every diagnostic without a line number with line.
func (ds Diagnostics) AtLine(line int) Diagnostics {
	for i := range ds {
		if ds[i].Line == 0 {
			ds[i].Line = line
		}
	}
	return ds
}
