package match

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"skirmish/internal/config"
	"skirmish/internal/fog"
	"skirmish/internal/gamemap"
	"skirmish/internal/generate"
	"skirmish/internal/pathfind"
	"strings"
	"testing"
)

type fakeRegistry struct {
	sources map[int][]fog.VisionSource
	applied [][]PathOutcome
	spawned []int
}

func (r *fakeRegistry) VisionSources(player int) []fog.VisionSource { return r.sources[player] }
func (r *fakeRegistry) ApplyPaths(o []PathOutcome)                  { r.applied = append(r.applied, o) }
func (r *fakeRegistry) Spawn(m *gamemap.Map, players int)           { r.spawned = append(r.spawned, players) }

func nopLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

func acceptAll(*gamemap.Map, *generate.Config) error { return nil }

func smallSettings(seed int64) config.Settings {
	s := config.DefaultSettings()
	s.MapSize = config.MapSmall
	s.Seed = seed
	return s
}

// readyMatch returns a playing match on a 32x32 map that skips validation.
func readyMatch(t *testing.T, s config.Settings) (*Match, *fakeRegistry) {
	t.Helper()
	mt := New(Options{Validator: acceptAll})
	reg := &fakeRegistry{sources: map[int][]fog.VisionSource{}}
	mt.Submit(StartMatch{Settings: s})
	rep := mt.Tick(context.Background(), reg)
	if rep.Outcome == nil || !rep.Outcome.OK {
		t.Fatalf("start failed: %+v", rep.Outcome)
	}
	return mt, reg
}

func findTile(m *gamemap.Map, want func(x, y int) bool) (gamemap.Point, bool) {
	for i := 0; i < m.Len(); i++ {
		p := m.PointAt(i)
		if want(p.X, p.Y) {
			return p, true
		}
	}
	return gamemap.Point{}, false
}

func TestQueriesBeforeReady(t *testing.T) {
	mt := New(Options{})
	if mt.State() != StateMenu || mt.Phase() != PhaseInit {
		t.Fatalf("new match in %s/%s", mt.State(), mt.Phase())
	}
	p := gamemap.Point{}
	if _, err := mt.Map(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Map: %v", err)
	}
	if _, err := mt.FindPath(p, p, pathfind.Infantry); !errors.Is(err, ErrNotReady) {
		t.Errorf("FindPath: %v", err)
	}
	if _, err := mt.Reachable(p, pathfind.Four); !errors.Is(err, ErrNotReady) {
		t.Errorf("Reachable: %v", err)
	}
	if err := mt.Order(Order{}); !errors.Is(err, ErrNotReady) {
		t.Errorf("Order: %v", err)
	}
	if err := mt.SetOccupied(p, true); !errors.Is(err, ErrNotReady) {
		t.Errorf("SetOccupied: %v", err)
	}
	if _, err := mt.Visibility(0); !errors.Is(err, ErrNotReady) {
		t.Errorf("Visibility: %v", err)
	}
}

func TestStartMatch(t *testing.T) {
	s := smallSettings(42)
	s.AICount = 2
	mt, reg := readyMatch(t, s)

	if mt.State() != StatePlaying || mt.Phase() != PhaseReady {
		t.Fatalf("state %s/%s, want playing/ready", mt.State(), mt.Phase())
	}
	m, err := mt.Map()
	if err != nil {
		t.Fatal(err)
	}
	if m.Width != 32 || m.Height != 32 {
		t.Errorf("map %dx%d, want 32x32", m.Width, m.Height)
	}
	if m.Version != 1 {
		t.Errorf("Version=%d, want 1", m.Version)
	}
	if mt.Players() != 3 {
		t.Errorf("Players()=%d, want 3", mt.Players())
	}
	if got := mt.LastOutcome(); got.Message != MsgGenerated || got.Seed != 42 {
		t.Errorf("outcome %+v", got)
	}
	if len(reg.spawned) != 1 || reg.spawned[0] != 3 {
		t.Errorf("Spawn calls %v, want [3]", reg.spawned)
	}
}

func TestStartMatchWithValidation(t *testing.T) {
	mt := New(Options{})
	rep := fakeTick(mt, StartMatch{Settings: smallSettings(42)})
	if rep.Outcome == nil {
		t.Fatal("no outcome reported")
	}
	if rep.Outcome.OK {
		if mt.State() != StatePlaying {
			t.Errorf("state %s after success", mt.State())
		}
	} else if mt.State() != StateMenu || rep.Outcome.Message != MsgFailed {
		t.Errorf("state %s message %q after failure", mt.State(), rep.Outcome.Message)
	}
}

func fakeTick(mt *Match, reqs ...Request) Report {
	for _, r := range reqs {
		mt.Submit(r)
	}
	return mt.Tick(context.Background(), &fakeRegistry{})
}

func TestQueriesBlockedDuringGeneration(t *testing.T) {
	var mt *Match
	checked := false
	mt = New(Options{Validator: func(*gamemap.Map, *generate.Config) error {
		checked = true
		if mt.Phase() != PhaseValidate {
			t.Errorf("phase during validation = %s", mt.Phase())
		}
		if mt.State() != StateInitializing {
			t.Errorf("state during validation = %s", mt.State())
		}
		if _, err := mt.Map(); !errors.Is(err, ErrNotReady) {
			t.Errorf("Map during validation: %v", err)
		}
		if _, err := mt.FindPath(gamemap.Point{}, gamemap.Point{}, pathfind.Infantry); !errors.Is(err, ErrNotReady) {
			t.Errorf("FindPath during validation: %v", err)
		}
		return nil
	}})
	fakeTick(mt, StartMatch{Settings: smallSettings(1)})
	if !checked {
		t.Fatal("validator not called")
	}
}

func TestGenerationFailure(t *testing.T) {
	var outcomes []Outcome
	attempts := 2
	mt := New(Options{
		Validator: func(*gamemap.Map, *generate.Config) error { return errors.New("bad map") },
		Overrides: config.Overrides{MaxAttempts: &attempts},
		OnOutcome: func(o Outcome) { outcomes = append(outcomes, o) },
	})
	rep := fakeTick(mt, StartMatch{Settings: smallSettings(9)})

	if rep.Outcome == nil || rep.Outcome.OK {
		t.Fatalf("outcome %+v, want failure", rep.Outcome)
	}
	if rep.Outcome.Message != MsgFailed {
		t.Errorf("message %q", rep.Outcome.Message)
	}
	if rep.Outcome.Attempts != 2 {
		t.Errorf("Attempts=%d, want 2", rep.Outcome.Attempts)
	}
	if mt.State() != StateMenu || rep.State != StateMenu {
		t.Errorf("state %s, want menu", mt.State())
	}
	if _, err := mt.Map(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Map after failure: %v", err)
	}
	if len(outcomes) != 1 {
		t.Errorf("OnOutcome called %d times", len(outcomes))
	}
}

func TestInvalidSettingsFail(t *testing.T) {
	s := smallSettings(1)
	s.AICount = 99
	mt := New(Options{Validator: acceptAll})
	rep := fakeTick(mt, StartMatch{Settings: s})
	if rep.Outcome == nil || rep.Outcome.OK {
		t.Fatalf("outcome %+v, want failure", rep.Outcome)
	}
	if !errors.Is(s.Validate(), config.ErrInvalidSettings) {
		t.Fatal("settings should be invalid")
	}
}

func TestRestartReplacesMap(t *testing.T) {
	mt, reg := readyMatch(t, smallSettings(5))
	first, _ := mt.Map()
	reg.sources[0] = []fog.VisionSource{{Pos: gamemap.Point{X: 10, Y: 10}, Radius: 4}}
	mt.Tick(context.Background(), reg)
	g, _ := mt.Visibility(0)
	if g.Count(fog.Visible) == 0 {
		t.Fatal("nothing visible after recompute")
	}

	s := smallSettings(6)
	s.FogOfWar = true
	mt.Submit(StartMatch{Settings: s})
	reg.sources = map[int][]fog.VisionSource{}
	mt.Tick(context.Background(), reg)

	second, err := mt.Map()
	if err != nil {
		t.Fatal(err)
	}
	if second == first || second.Version != 2 {
		t.Errorf("restart kept map or version %d", second.Version)
	}
	g, _ = mt.Visibility(0)
	if g.Count(fog.Hidden) != 32*32 {
		t.Errorf("grid not reset: %d hidden", g.Count(fog.Hidden))
	}
}

func TestInvalidTransition(t *testing.T) {
	mt := New(Options{})
	rep := fakeTick(mt, ReturnToMenu{})
	if len(rep.Rejected) != 1 || !errors.Is(rep.Rejected[0], ErrInvalidTransition) {
		t.Errorf("Rejected=%v, want one ErrInvalidTransition", rep.Rejected)
	}
}

func TestReturnToMenu(t *testing.T) {
	mt, reg := readyMatch(t, smallSettings(3))
	mt.Submit(ReturnToMenu{})
	rep := mt.Tick(context.Background(), reg)
	if rep.State != StateMenu || mt.Phase() != PhaseInit {
		t.Errorf("state %s phase %s", rep.State, mt.Phase())
	}
	if _, err := mt.Map(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Map after return: %v", err)
	}
}

func TestTickResolvesOrders(t *testing.T) {
	mt, reg := readyMatch(t, smallSettings(11))
	m, _ := mt.Map()

	start, ok := findTile(m, func(x, y int) bool {
		return m.IsPassable(x, y) && m.IsPassable(x+1, y)
	})
	if !ok {
		t.Fatal("no pair of passable tiles")
	}
	water, ok := findTile(m, func(x, y int) bool { return m.At(x, y).Terrain == gamemap.TerrainWater })
	if !ok {
		t.Fatal("no water tile")
	}

	good := Order{Unit: 1, Start: start, Goal: start.Add(1, 0), Profile: pathfind.Infantry}
	bad := Order{Unit: 2, Start: start, Goal: water, Profile: pathfind.Infantry}
	if err := mt.Order(good); err != nil {
		t.Fatal(err)
	}
	if err := mt.Order(bad); err != nil {
		t.Fatal(err)
	}
	if err := mt.Order(Order{Goal: gamemap.Point{X: -1}}); !errors.Is(err, pathfind.ErrInvalidCoordinates) {
		t.Errorf("out of bounds order: %v", err)
	}

	reg.applied = nil
	rep := mt.Tick(context.Background(), reg)
	if len(reg.applied) != 1 || len(reg.applied[0]) != 2 {
		t.Fatalf("applied %v", reg.applied)
	}
	if got := reg.applied[0][0]; got.Err != nil || len(got.Path) != 2 {
		t.Errorf("good order: path %v err %v", got.Path, got.Err)
	}
	if len(rep.Failures) != 1 || !errors.Is(rep.Failures[0].Err, pathfind.ErrNoPath) {
		t.Errorf("Failures=%v, want one ErrNoPath", rep.Failures)
	}

	mt.Tick(context.Background(), reg)
	if len(reg.applied) != 2 || len(reg.applied[1]) != 0 {
		t.Error("orders resolved twice")
	}
}

func TestFogPerPlayer(t *testing.T) {
	mt, reg := readyMatch(t, smallSettings(4))
	reg.sources[0] = []fog.VisionSource{{Pos: gamemap.Point{X: 5, Y: 5}, Radius: 3}}

	rep := mt.Tick(context.Background(), reg)
	if len(rep.Diffs) != 2 {
		t.Fatalf("%d diffs, want 2", len(rep.Diffs))
	}
	if len(rep.Diffs[0].Revealed) == 0 {
		t.Error("player 0 saw nothing")
	}
	if !rep.Diffs[1].Empty() {
		t.Error("player 1 has no sources but its grid changed")
	}

	reg.sources[0] = nil
	rep = mt.Tick(context.Background(), reg)
	g, _ := mt.Visibility(0)
	if len(rep.Diffs[0].Concealed) != g.Count(fog.Explored) || g.Count(fog.Visible) != 0 {
		t.Errorf("concealed %d, explored %d, visible %d", len(rep.Diffs[0].Concealed), g.Count(fog.Explored), g.Count(fog.Visible))
	}
}

func TestFogToggle(t *testing.T) {
	s := smallSettings(8)
	s.FogOfWar = false
	mt, reg := readyMatch(t, s)
	g, _ := mt.Visibility(0)
	if g.Count(fog.Visible) != 32*32 {
		t.Fatalf("fog off: %d visible, want all", g.Count(fog.Visible))
	}

	mt.Submit(SetFogOfWar{Enabled: true})
	rep := mt.Tick(context.Background(), reg)
	if len(rep.Diffs[0].Concealed) != 32*32 {
		t.Errorf("enabling fog concealed %d tiles, want all", len(rep.Diffs[0].Concealed))
	}
	if g.Count(fog.Hidden) != 0 {
		t.Error("tiles returned to hidden")
	}

	mt.Submit(SetFogOfWar{Enabled: false})
	rep = mt.Tick(context.Background(), reg)
	if len(rep.Diffs[0].Revealed) != 32*32 {
		t.Errorf("disabling fog revealed %d tiles, want all", len(rep.Diffs[0].Revealed))
	}
	if mt.Settings().FogOfWar {
		t.Error("settings not updated")
	}
}

func TestSetOccupiedInvalidatesRoutes(t *testing.T) {
	mt, _ := readyMatch(t, smallSettings(12))
	m, _ := mt.Map()
	start, ok := findTile(m, func(x, y int) bool {
		return m.IsPassable(x, y) && m.IsPassable(x+1, y)
	})
	if !ok {
		t.Fatal("no pair of passable tiles")
	}
	goal := start.Add(1, 0)

	mt.FindPath(start, goal, pathfind.Infantry)
	mt.FindPath(start, goal, pathfind.Infantry)
	before := mt.Stats()
	if before.Hits != 1 {
		t.Fatalf("Hits=%d, want 1", before.Hits)
	}
	if err := mt.SetOccupied(goal, true); err != nil {
		t.Fatal(err)
	}
	if _, err := mt.FindPath(start, goal, pathfind.Infantry); !errors.Is(err, pathfind.ErrNoPath) {
		t.Errorf("path into occupied tile: %v", err)
	}
	if after := mt.Stats(); after.Invalidations != before.Invalidations+1 {
		t.Errorf("Invalidations %d -> %d", before.Invalidations, after.Invalidations)
	}
	if err := mt.SetOccupied(gamemap.Point{X: 99, Y: 0}, true); !errors.Is(err, pathfind.ErrInvalidCoordinates) {
		t.Errorf("SetOccupied out of bounds: %v", err)
	}
}

func TestSeedZeroUsesSeeder(t *testing.T) {
	mt := New(Options{Validator: acceptAll, Seeder: func() int64 { return 77 }})
	rep := fakeTick(mt, StartMatch{Settings: smallSettings(0)})
	if rep.Outcome == nil || rep.Outcome.Seed != 77 {
		t.Errorf("outcome %+v, want seed 77", rep.Outcome)
	}
	m, _ := mt.Map()
	if m.Seed != 77 {
		t.Errorf("map seed %d", m.Seed)
	}
}

func TestGenerationConfig(t *testing.T) {
	s := smallSettings(1)
	s.AICount = 3
	tests := []struct {
		d       config.Difficulty
		density float64
		minRes  int
	}{
		{config.Easy, 0.2, 16},
		{config.Medium, 0.15, 12},
		{config.Hard, 0.1, 8},
	}
	for _, tt := range tests {
		s.Difficulty = tt.d
		cfg := generationConfig(s, config.Overrides{})
		if cfg.ResourceDensity != tt.density || cfg.MinResources != tt.minRes {
			t.Errorf("%s: density %v min %d, want %v and %d", tt.d, cfg.ResourceDensity, cfg.MinResources, tt.density, tt.minRes)
		}
		if cfg.Players != 4 {
			t.Errorf("%s: Players=%d", tt.d, cfg.Players)
		}
		if cfg.MinStartSpacing != 5 {
			t.Errorf("%s: MinStartSpacing=%d, want 5", tt.d, cfg.MinStartSpacing)
		}
	}
	res := 1
	cfg := generationConfig(s, config.Overrides{MinResources: &res})
	if cfg.MinResources != 1 {
		t.Errorf("override ignored: MinResources=%d", cfg.MinResources)
	}
}

func TestSaveOutcome(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	SaveOutcome(Outcome{OK: true, Message: MsgGenerated, Seed: 1234, Difficulty: "hard"}, nopLogger())
	SaveOutcome(Outcome{Message: MsgFailed, Seed: 99}, nopLogger())

	data, err := os.ReadFile(filepath.Join(tmp, "skirmish", "matches.jsonl"))
	if err != nil {
		t.Fatalf("matches.jsonl not created: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if !strings.Contains(lines[0], `"seed":1234`) || !strings.Contains(lines[1], "Cannot generate") {
		t.Errorf("unexpected log contents: %q", data)
	}
}
