package transformer

import (
	"bytes"

	"github.com/gnana997/displayname/pkg/displayname"
)

// Component describes one component binding for API responses.
type Component struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Exported bool   `json:"exported"`
	// Line and Column are 1-based and point at the binding name in the input.
	// Both are 0 for synthesized bindings.
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Response is the JSON shape shared by the MCP tools and the HTTP API.
type Response struct {
	FileName  string      `json:"filename"`
	Changed   bool        `json:"changed"`
	HasErrors bool        `json:"has_errors,omitempty"`
	Code      string      `json:"code"`
	Labels    []Component `json:"labels"`
	Skipped   []Component `json:"skipped"`
}

// NewResponse converts res into a Response. src must be the input that
// produced res; positions are computed against it.
func NewResponse(src []byte, res *Result) Response {
	labels := make([]displayname.Candidate, len(res.Labels))
	for i, l := range res.Labels {
		labels[i] = l.Candidate
	}
	return Response{
		FileName:  res.FileName,
		Changed:   res.Changed,
		HasErrors: res.HasErrors,
		Code:      string(res.Code),
		Labels:    DescribeCandidates(src, labels),
		Skipped:   DescribeCandidates(src, res.Skipped),
	}
}

// DescribeCandidates converts candidates into Components, never returning nil.
func DescribeCandidates(src []byte, cands []displayname.Candidate) []Component {
	out := make([]Component, 0, len(cands))
	for _, c := range cands {
		line, col := Position(src, c.Span.Lo)
		out = append(out, Component{
			Name:     c.Name,
			Kind:     c.Kind.String(),
			Exported: c.Exported,
			Line:     line,
			Column:   col,
		})
	}
	return out
}

// Position converts a byte offset into a 1-based line and byte column.
// Offsets outside src yield 0, 0.
func Position(src []byte, offset int) (line, column int) {
	if offset < 0 || offset > len(src) {
		return 0, 0
	}
	before := src[:offset]
	line = bytes.Count(before, []byte{'\n'}) + 1
	column = offset - (bytes.LastIndexByte(before, '\n') + 1) + 1
	return line, column
}
