package transformer

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPosition(t *testing.T) {
	src := []byte("ab\ncd\n\nef")
	tests := []struct {
		offset     int
		line, col int
	}{
		{0, 1, 1},
		{1, 1, 2},
		{3, 2, 1},
		{4, 2, 2},
		{7, 4, 1},
		{9, 4, 3},
		{-1, 0, 0},
		{10, 0, 0},
	}
	for _, tt := range tests {
		line, col := Position(src, tt.offset)
		assert.Equal(t, tt.line, line, "offset %d", tt.offset)
		assert.Equal(t, tt.col, col, "offset %d", tt.offset)
	}
}

func TestNewResponse(t *testing.T) {
	e := newTestEngine(t, Options{})
	src := []byte(`import React from "react";

export const Card = () => <div />;
function Title() {
  return <h1 />;
}
Title.displayName = "Heading";
`)
	res, err := e.Transform(context.Background(), "Card.jsx", src)
	require.NoError(t, err)

	resp := NewResponse(src, res)
	assert.Equal(t, "Card.jsx", resp.FileName)
	assert.True(t, resp.Changed)
	assert.Equal(t, []Component{{Name: "Card", Kind: "variable", Exported: true, Line: 3, Column: 14}}, resp.Labels)
	assert.Equal(t, []Component{{Name: "Title", Kind: "function", Line: 4, Column: 10}}, resp.Skipped)

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"filename":"Card.jsx"`)
	assert.NotContains(t, string(data), "has_errors")
}

func TestNewResponseEmpty(t *testing.T) {
	e := newTestEngine(t, Options{})
	src := []byte("const x = 1;\n")
	res, err := e.Transform(context.Background(), "x.js", src)
	require.NoError(t, err)

	resp := NewResponse(src, res)
	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"filename":"x.js","changed":false,"code":"const x = 1;\n","labels":[],"skipped":[]}`, string(data))
}
