package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaletteStaysPlainForBuffers(t *testing.T) {
	p := NewPalette(&bytes.Buffer{})
	assert.Equal(t, "DL:", p.Green("DL:"))
	assert.Equal(t, "Error:", p.Red("Error:"))
}

func TestPaletteColorsWhenEnabled(t *testing.T) {
	p := Palette{enabled: true}
	assert.Equal(t, "\033[32mDL:\033[0m", p.Green("DL:"))
	assert.Equal(t, "\033[31m\033[1mError:\033[0m", p.Red("Error:"))
	assert.Equal(t, "plain", Colorize("plain"))
}
