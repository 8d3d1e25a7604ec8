package diag

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/plutolang/pluto/internal/ast"
)

func testSpan(file string, line, col int) ast.Span {
	pos := ast.Pos{File: file, Line: line, Column: col}
	return ast.Span{Start: pos, End: pos}
}

func TestRenderTextIncludesCodePhaseAndSpan(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	r := New(DuplicateDeclaration, "register", "Box already declared").
		WithSpan(testSpan("box.pluto", 3, 1))
	var buf bytes.Buffer
	RenderText(&buf, []*Report{r})

	out := buf.String()
	assert.Contains(t, out, "register")
	assert.Contains(t, out, DuplicateDeclaration)
	assert.Contains(t, out, "box.pluto:3:1")
	assert.Contains(t, out, "Box already declared")
}

func TestRenderTextIncludesSecondarySpanAndFix(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	r := New(DuplicateDeclaration, "register", "Box already declared").
		WithSpan(testSpan("box.pluto", 3, 1)).
		WithSecondarySpan(testSpan("box.pluto", 1, 1))
	r.Fix = &Fix{Suggestion: "rename one declaration", Confidence: 0.5}

	var buf bytes.Buffer
	RenderText(&buf, []*Report{r})

	out := buf.String()
	assert.Contains(t, out, "previously at")
	assert.Contains(t, out, "box.pluto:1:1")
	assert.Contains(t, out, "rename one declaration")
}

func TestRenderSummaryReportsOkOnEmpty(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	RenderSummary(&buf, nil)
	assert.Equal(t, "ok\n", buf.String())
}

func TestRenderSummaryCountsErrors(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	RenderSummary(&buf, []*Report{New(UnhandledError, "infer", "boom")})
	assert.Equal(t, "1 error\n", buf.String())
}
