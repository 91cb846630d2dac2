package host

import (
	"context"
	"skirmish/internal/match"
	"skirmish/internal/render"

	"github.com/gdamore/tcell/v2"
)

// Viewer is one attached terminal.
type Viewer struct {
	ID     int
	Player int // whose fog the viewer sees

	// RenderCh is signalled after every tick.
	RenderCh chan struct{}

	centered bool
}

func (v *Viewer) signal() {
	select {
	case v.RenderCh <- struct{}{}:
	default:
	}
}

// Attach runs the input and render loop for one terminal until the user
// quits, the screen closes, or ctx is done.
func (h *Host) Attach(ctx context.Context, screen tcell.Screen) {
	v := h.AddViewer(0)
	defer h.RemoveViewer(v)
	r := render.NewRenderer(screen)

	eventCh := make(chan tcell.Event, 32)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				close(eventCh)
				return
			}
			eventCh <- ev
		}
	}()

	v.signal()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-eventCh:
			if !ok {
				return // screen closed / disconnected
			}
			switch ev := ev.(type) {
			case *tcell.EventResize:
				screen.Sync()
				r.Resize()
				v.signal()
			case *tcell.EventKey:
				if h.handleKey(r, v, ev) {
					return
				}
				v.signal()
			}
		case <-v.RenderCh:
			h.Draw(r, v)
		}
	}
}

// handleKey applies one key press and reports whether the viewer quit.
func (h *Host) handleKey(r *render.Renderer, v *Viewer, ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyUp:
		r.Pan(0, -1)
	case tcell.KeyDown:
		r.Pan(0, 1)
	case tcell.KeyLeft:
		r.Pan(-1, 0)
	case tcell.KeyRight:
		r.Pan(1, 0)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case 'n':
			s := h.Settings()
			s.Seed = 0
			h.Submit(match.StartMatch{Settings: s})
		case 'm':
			h.Submit(match.ReturnToMenu{})
		case 'f':
			h.Submit(match.SetFogOfWar{Enabled: !h.Settings().FogOfWar})
		case 'v':
			h.mu.Lock()
			if n := h.match.Players(); n > 0 {
				v.Player = (v.Player + 1) % n
			}
			v.centered = false
			h.mu.Unlock()
		}
	}
	return false
}
