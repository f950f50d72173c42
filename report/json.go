package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/kbukum/tabprofile/eda"
	"github.com/kbukum/tabprofile/errors"
)

// Document is the JSON report of one run.
type Document struct {
	RunID      string      `json:"run_id"`
	Input      string      `json:"input"`
	Phase      eda.Phase   `json:"phase"`
	Phases     []eda.Phase `json:"phases"`
	DurationMs int64       `json:"duration_ms"`
	Steps      []Step      `json:"steps"`
	Error      *Error      `json:"error,omitempty"`

	// Set only for finalized runs.
	Shape             []int             `json:"shape,omitempty"`
	Checksum          string            `json:"checksum,omitempty"`
	OriginalHeaders   []string          `json:"original_headers,omitempty"`
	NormalizedHeaders *eda.LabelMapping `json:"normalized_headers,omitempty"`
	Columns           []Column          `json:"columns,omitempty"`
	Summary           *eda.Summary      `json:"summary,omitempty"`
}

// Step is the outcome of one pipeline node.
type Step struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// Error is the failure of a run.
type Error struct {
	Code    errors.ErrorCode `json:"code"`
	Message string           `json:"message"`
}

// Build assembles the document of out.
func Build(out *eda.Outcome) *Document {
	doc := &Document{
		RunID:  out.RunID,
		Input:  out.Input,
		Phase:  out.Phase(),
		Phases: out.Phases,
	}
	if res := out.Result; res != nil {
		doc.DurationMs = res.Duration.Milliseconds()
		for _, name := range res.Trace {
			nr := res.NodeResults[name]
			s := Step{Name: name, Status: nr.Status, DurationMs: nr.Duration.Milliseconds()}
			if nr.Error != nil {
				s.Error = errors.Message(nr.Error)
			}
			doc.Steps = append(doc.Steps, s)
		}
	}

	if out.Failed() {
		appErr := errors.Wrap(out.Failure())
		doc.Error = &Error{Code: appErr.Code, Message: appErr.Message}
		return doc
	}

	if t := out.Table(); t != nil {
		rows, cols := t.Shape()
		doc.Shape = []int{rows, cols}
		if t.Checksum != 0 {
			doc.Checksum = fmt.Sprintf("%016x", t.Checksum)
		}
	}
	doc.OriginalHeaders = out.OriginalLabels()
	doc.NormalizedHeaders = out.Mapping()
	doc.Columns = Columns(out)
	if s, ok := out.Summary(); ok {
		doc.Summary = &s
	}
	return doc
}

// JSON writes the indented JSON document of out to w.
func JSON(w io.Writer, out *eda.Outcome) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(Build(out))
}
