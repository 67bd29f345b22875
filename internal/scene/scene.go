package scene

import (
	"fmt"

	"github.com/ivlev/svg2video/internal/config"
	"github.com/ivlev/svg2video/internal/document"
	"github.com/ivlev/svg2video/internal/effects"
	"github.com/ivlev/svg2video/internal/timeline"
)

// Scene produces the fully-specified document for one frame. It is pure:
// the same index always yields a byte-identical document, and calls from
// concurrent workers never share mutable state.
type Scene func(frame int) *document.Document

// Symbol is one named node of the layout together with the mutators that
// animate its entry.
type Symbol struct {
	NodeID  string
	Effects []effects.Effect
}

// Builder assembles a Scene from an immutable template, the phase timings
// and the ordered symbol list.
type Builder struct {
	template  *document.Document
	framerate float64
	phases    config.Phases
	symbols   []Symbol
}

// NewBuilder validates that every symbol resolves in the template and that
// the framerate is usable before any frame is rendered.
func NewBuilder(template *document.Document, phases config.Phases, framerate float64, symbols []Symbol) (*Builder, error) {
	if framerate <= 0 {
		return nil, fmt.Errorf("fps должен быть положительным, получено %f", framerate)
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("не задан ни один символ анимации")
	}
	for _, sym := range symbols {
		if _, ok := template.NodeByID(sym.NodeID); !ok {
			return nil, fmt.Errorf("в шаблоне нет узла %q", sym.NodeID)
		}
		if len(sym.Effects) == 0 {
			return nil, fmt.Errorf("у символа %q нет эффектов", sym.NodeID)
		}
	}
	return &Builder{
		template:  template,
		framerate: framerate,
		phases:    phases,
		symbols:   symbols,
	}, nil
}

// Scene returns the frame function. Each call clones the template, hides the
// symbols, then replays the timeline up to the frame's instant:
//
//	Wait(delay) -> During(sustain){ staggered entries } ->
//	UntilDuring(fade, fade){ fade to blank } -> Wait(leave)
func (b *Builder) Scene() Scene {
	return func(frame int) *document.Document {
		doc := b.template.Clone()

		// Symbols wait off-screen until their entry window opens.
		for _, sym := range b.symbols {
			if n, ok := doc.NodeByID(sym.NodeID); ok {
				n.SetOpacity(0)
			}
		}

		timeline.At(float64(frame)/b.framerate).
			Wait(b.phases.Delay).
			During(b.phases.Sustain, func(t timeline.Time) {
				for i, sym := range b.symbols {
					if i == len(b.symbols)-1 {
						// Последний символ не резервирует интервал после себя.
						t.Until(b.phases.Entry, b.enter(doc, sym))
					} else {
						t = t.UntilDuring(b.phases.Entry, b.phases.Interval, b.enter(doc, sym))
					}
				}
			}).
			UntilDuring(b.phases.Fade, b.phases.Fade, func(t timeline.Time) {
				p := t.Progress(b.phases.Fade)
				for _, sym := range b.symbols {
					if n, ok := doc.NodeByID(sym.NodeID); ok {
						effects.FadeOut().Apply(n, p)
					}
				}
			}).
			Wait(b.phases.Leave)

		return doc
	}
}

func (b *Builder) enter(doc *document.Document, sym Symbol) timeline.Action {
	return func(t timeline.Time) {
		n, ok := doc.NodeByID(sym.NodeID)
		if !ok {
			return
		}
		p := t.Progress(b.phases.Entry)
		for _, eff := range sym.Effects {
			eff.Apply(n, p)
		}
	}
}
