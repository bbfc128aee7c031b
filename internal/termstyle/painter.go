package termstyle

import (
	"os"

	"github.com/fatih/color"
)

// Painter styles the fragments of user-facing output.
type Painter interface {
	OK(s string) string
	Fail(s string) string
	Normal(s string) string
	Path(s string) string
	Line(s string) string
}

// 256-color palette indexes.
const (
	colorOK     = 77
	colorFail   = 9
	colorNormal = 255
)

// NewPainter returns an ANSI painter when enabled, otherwise a no-op one.
func NewPainter(enabled bool) Painter {
	if !enabled {
		return Plain{}
	}
	return newANSIPainter()
}

// ForMode builds the painter for a parsed --color value and the stream the
// painted text goes to.
func ForMode(mode Mode, out *os.File, env map[string]string) Painter {
	return NewPainter(Enabled(mode, out, env))
}

type ansiPainter struct {
	ok, fail, normal, path, line *color.Color
}

func newANSIPainter() *ansiPainter {
	p := &ansiPainter{
		ok:     fg256(colorOK),
		fail:   fg256(colorFail),
		normal: fg256(colorNormal),
		path:   color.New(color.FgMagenta),
		line:   color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{p.ok, p.fail, p.normal, p.path, p.line} {
		c.EnableColor()
	}
	return p
}

func fg256(index int) *color.Color {
	return color.New(38, 5, color.Attribute(index))
}

func (p *ansiPainter) OK(s string) string     { return p.ok.Sprint(s) }
func (p *ansiPainter) Fail(s string) string   { return p.fail.Sprint(s) }
func (p *ansiPainter) Normal(s string) string { return p.normal.Sprint(s) }
func (p *ansiPainter) Path(s string) string   { return p.path.Sprint(s) }
func (p *ansiPainter) Line(s string) string   { return p.line.Sprint(s) }

// Plain returns every fragment unchanged.
type Plain struct{}

func (Plain) OK(s string) string     { return s }
func (Plain) Fail(s string) string   { return s }
func (Plain) Normal(s string) string { return s }
func (Plain) Path(s string) string   { return s }
func (Plain) Line(s string) string   { return s }
