package utils

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

const (
	colorReset = "\033[0m"
	colorBold  = "\033[1m"
	colorDim   = "\033[2m"

	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

func Colorize(text string, codes ...string) string {
	if len(codes) == 0 {
		return text
	}
	return strings.Join(codes, "") + text + colorReset
}

// Palette colors text only when enabled, so piped output stays plain.
type Palette struct {
	enabled bool
}

// NewPalette enables color when w is a terminal.
func NewPalette(w io.Writer) Palette {
	f, ok := w.(*os.File)
	if !ok {
		return Palette{}
	}
	fd := f.Fd()
	return Palette{enabled: isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)}
}

func (p Palette) paint(text string, codes ...string) string {
	if !p.enabled {
		return text
	}
	return Colorize(text, codes...)
}

func (p Palette) Cyan(text string) string   { return p.paint(text, colorCyan) }
func (p Palette) Green(text string) string  { return p.paint(text, colorGreen) }
func (p Palette) Yellow(text string) string { return p.paint(text, colorYellow) }
func (p Palette) Red(text string) string    { return p.paint(text, colorRed, colorBold) }
func (p Palette) Dim(text string) string    { return p.paint(text, colorDim) }
