package generate

import (
	"context"
	"errors"
	"fmt"
	"skirmish/internal/gamemap"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("skirmish/internal/generate")

// ErrGenerationFailure means no attempt passed validation within the cap.
var ErrGenerationFailure = errors.New("generate: could not generate a valid map")

// GenerationError carries the details of an exhausted retry loop. It matches
// ErrGenerationFailure with errors.Is and unwraps to the last rejection.
type GenerationError struct {
	Seed     int64
	Attempts int
	Last     error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate: no valid map for seed %d after %d attempts: %v", e.Seed, e.Attempts, e.Last)
}

func (e *GenerationError) Unwrap() error { return e.Last }

func (e *GenerationError) Is(target error) bool { return target == ErrGenerationFailure }

// Result is an accepted map and how it was reached.
type Result struct {
	Map *gamemap.Map
	// Attempts is the number of attempts consumed, including the accepted one.
	Attempts int
	// Seed is the attempt seed that produced Map (seed + Attempts - 1).
	Seed int64
}

// Generate builds a width×height map from seed. Attempt i uses seed+i; the
// first map to pass cfg.Validator is sealed and returned. Rejected attempts
// are discarded whole. When cfg.MaxAttempts attempts fail, Generate returns a
// *GenerationError and no map. The same arguments always produce the same
// map and attempt count.
func Generate(ctx context.Context, seed int64, width, height int, cfg Config) (Result, error) {
	if width <= 0 || height <= 0 {
		return Result{}, fmt.Errorf("generate: invalid size %dx%d", width, height)
	}
	cfg = cfg.withDefaults()

	ctx, span := tracer.Start(ctx, "generate.Generate", trace.WithAttributes(
		attribute.Int64("seed", seed),
		attribute.Int("width", width),
		attribute.Int("height", height),
		attribute.Int("players", cfg.Players),
	))
	defer span.End()

	var last error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			return Result{}, err
		}
		attemptSeed := seed + int64(attempt)

		cfg.stage(StageGenerate, attempt)
		m := synthesize(attemptSeed, width, height, &cfg)
		m.Starts = placeStarts(m, cfg.Players, cfg.MinStartSpacing)

		cfg.stage(StageValidate, attempt)
		if err := cfg.Validator(m, &cfg); err != nil {
			last = err
			cfg.Logger.Debug("map rejected", "seed", attemptSeed, "attempt", attempt+1, "reason", err)
			span.AddEvent("attempt rejected", trace.WithAttributes(
				attribute.Int("attempt", attempt+1),
				attribute.String("reason", err.Error()),
			))
			continue
		}

		m.Seal()
		span.SetAttributes(attribute.Int("attempts", attempt+1))
		return Result{Map: m, Attempts: attempt + 1, Seed: attemptSeed}, nil
	}

	gerr := &GenerationError{Seed: seed, Attempts: cfg.MaxAttempts, Last: last}
	span.SetStatus(codes.Error, gerr.Error())
	cfg.Logger.Warn("map generation exhausted", "seed", seed, "attempts", cfg.MaxAttempts, "reason", last)
	return Result{}, gerr
}
