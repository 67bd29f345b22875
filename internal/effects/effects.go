package effects

import (
	"github.com/fogleman/ease"

	"github.com/ivlev/svg2video/internal/document"
)

// Effect mutates a drawable node for a given animation progress in [0, 1].
// The set is small and fixed; anything conforming to the signature plugs in.
type Effect interface {
	Apply(n *document.Node, progress float64)
}

// Fade interpolates node opacity from From to To on a quadratic curve.
type Fade struct {
	From float64
	To   float64
}

func (f Fade) Apply(n *document.Node, progress float64) {
	p := ease.OutQuad(clamp(progress))
	n.SetOpacity(f.From + (f.To-f.From)*p)
}

// Slide moves a node in from the given offset, settling at its layout
// position when progress reaches 1. Quadratic, like Fade.
type Slide struct {
	OffsetX float64
	OffsetY float64
}

func (s Slide) Apply(n *document.Node, progress float64) {
	rest := 1 - ease.OutQuad(clamp(progress))
	if rest == 0 {
		return
	}
	n.Translate(s.OffsetX*rest, s.OffsetY*rest)
}

// FadeIn is the standard symbol entry: fully transparent to fully opaque.
func FadeIn() Effect {
	return Fade{From: 0, To: 1}
}

// FadeOut dims a node to blank, used for the global outro fade.
func FadeOut() Effect {
	return Fade{From: 1, To: 0}
}

func clamp(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
