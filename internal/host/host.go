// Package host runs one match on a wall-clock ticker and shares it with any
// number of viewers. A single ticker goroutine advances the match; each
// viewer renders in its own goroutine when signalled.
package host

import (
	"context"
	"fmt"
	"log/slog"
	"skirmish/internal/config"
	"skirmish/internal/fog"
	"skirmish/internal/match"
	"skirmish/internal/render"
	"skirmish/internal/scout"
	"sync"
	"time"
)

// maxMessages bounds the shared message log.
const maxMessages = 50

// Host owns the match and the unit registry. All access goes through mu.
type Host struct {
	mu       sync.Mutex
	match    *match.Match
	scouts   *scout.Registry
	viewers  []*Viewer
	nextID   int
	messages []string
	last     match.Report
	logger   *slog.Logger
}

// New creates a Host around mt and reg. A nil logger uses slog.Default().
func New(mt *match.Match, reg *scout.Registry, logger *slog.Logger) *Host {
	if logger == nil {
		logger = slog.Default()
	}
	return &Host{match: mt, scouts: reg, logger: logger}
}

// Submit queues a match transition for the next tick.
func (h *Host) Submit(r match.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.match.Submit(r)
}

// Settings returns the settings of the current or last match.
func (h *Host) Settings() config.Settings {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.match.Settings()
}

// Run ticks the match at the interval of its game speed until ctx is done.
func (h *Host) Run(ctx context.Context) {
	interval := h.Settings().TickInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		h.Step(ctx)
		if next := h.Settings().TickInterval(); next != interval {
			interval = next
			ticker.Reset(interval)
		}
	}
}

// Step runs one tick: scouts plan, the match resolves orders and fog, and
// every viewer is signalled to redraw.
func (h *Host) Step(ctx context.Context) match.Report {
	h.mu.Lock()
	if h.match.State() == match.StatePlaying {
		h.scouts.Plan(h.match)
	}
	rep := h.match.Tick(ctx, h.scouts)
	h.last = rep
	if rep.Outcome != nil {
		h.addMessageLocked(rep.Outcome.Message)
		if rep.Outcome.OK {
			h.addMessageLocked(fmt.Sprintf("seed %d, %d attempt(s)", rep.Outcome.Seed, rep.Outcome.Attempts))
		}
	}
	for _, err := range rep.Rejected {
		h.addMessageLocked(err.Error())
	}
	h.mu.Unlock()

	// Outside the lock so slow SSH writes don't block the next tick.
	h.signalRender()
	return rep
}

func (h *Host) addMessageLocked(msg string) {
	h.messages = append(h.messages, msg)
	if len(h.messages) > maxMessages {
		h.messages = h.messages[len(h.messages)-maxMessages:]
	}
}

// Messages returns a copy of the message log.
func (h *Host) Messages() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.messages...)
}

// AddViewer registers a viewer watching player's side.
func (h *Host) AddViewer(player int) *Viewer {
	h.mu.Lock()
	defer h.mu.Unlock()
	v := &Viewer{ID: h.nextID, Player: player, RenderCh: make(chan struct{}, 1)}
	h.nextID++
	h.viewers = append(h.viewers, v)
	h.logger.Info("viewer joined", "viewer", v.ID, "player", player)
	return v
}

// RemoveViewer deregisters v.
func (h *Host) RemoveViewer(v *Viewer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, other := range h.viewers {
		if other == v {
			h.viewers = append(h.viewers[:i], h.viewers[i+1:]...)
			break
		}
	}
	h.logger.Info("viewer left", "viewer", v.ID)
}

// signalRender sends a non-blocking render signal to all viewers.
func (h *Host) signalRender() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, v := range h.viewers {
		v.signal()
	}
}

// Draw renders the current match from v's point of view.
func (h *Host) Draw(r *render.Renderer, v *Viewer) {
	h.mu.Lock()
	defer h.mu.Unlock()

	status := render.Status{State: h.match.State().String(), Tick: h.last.Tick}
	frame := render.Frame{Viewer: v.Player}
	if m, err := h.match.Map(); err == nil {
		frame.Map = m
		frame.World = h.scouts.World
		status.Seed = m.Seed
		status.Players = h.match.Players()
		if v.Player >= status.Players {
			v.Player = 0
		}
		if g, err := h.match.Visibility(v.Player); err == nil {
			frame.Vision = g
			status.Explored = float64(g.Count(fog.Visible)+g.Count(fog.Explored)) / float64(m.Len())
		}
		if !v.centered {
			if v.Player < len(m.Starts) {
				s := m.Starts[v.Player]
				r.CenterOn(s.X, s.Y)
			}
			v.centered = true
		}
	} else {
		v.centered = false
	}
	r.DrawFrame(frame)
	r.DrawHUD(status, h.messages)
}
