package render

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// Status is the one-line summary under the map.
type Status struct {
	State    string
	Seed     int64
	Tick     uint64
	Players  int
	Explored float64 // share of the map the viewer has seen
}

func (s Status) String() string {
	return fmt.Sprintf("[%s]  seed %d  tick %d  players %d  explored %.0f%%",
		s.State, s.Seed, s.Tick, s.Players, s.Explored*100)
}

// DrawHUD renders the status line and the last few messages, then shows the
// screen.
func (r *Renderer) DrawHUD(s Status, messages []string) {
	_, screenH := r.screen.Size()
	hudY := screenH - hudRows

	r.drawHLine(hudY, tcell.ColorGray)
	r.drawText(0, hudY+1, s.String(), tcell.StyleDefault.Foreground(tcell.ColorWhite))

	start := max(len(messages)-(hudRows-2), 0)
	for i, msg := range messages[start:] {
		r.drawText(0, hudY+2+i, msg, tcell.StyleDefault.Foreground(tcell.ColorLightYellow))
	}

	r.screen.Show()
}

func (r *Renderer) drawHLine(y int, color tcell.Color) {
	w, _ := r.screen.Size()
	style := tcell.StyleDefault.Foreground(color)
	for x := 0; x < w; x++ {
		r.screen.SetContent(x, y, '─', nil, style)
	}
}

func (r *Renderer) drawText(x, y int, text string, style tcell.Style) {
	col := x
	for _, ch := range text {
		r.screen.SetContent(col, y, ch, nil, style)
		col += max(runewidth.RuneWidth(ch), 1)
	}
}
