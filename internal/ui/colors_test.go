package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaint(t *testing.T) {
	prev := Plain
	defer func() { Plain = prev }()

	Plain = false
	assert.Equal(t, ColorGreen+"ok"+ColorReset, Success("ok"))
	assert.Equal(t, ColorDim+ColorYellow+"→ go"+ColorReset, Info("→ go"))

	Plain = true
	assert.Equal(t, "ok", Success("ok"))
	assert.Equal(t, "boom", Error("boom"))
}
