package component

import (
	"skirmish/internal/ecs"

	"github.com/gdamore/tcell/v2"
)

type Renderable struct {
	Glyph       string
	FGColor     tcell.Color
	RenderOrder int
}

func (Renderable) Type() ecs.ComponentType { return CRenderable }
