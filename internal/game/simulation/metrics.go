package simulation

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/cory-johannsen/warband/internal/game/ai"
	"github.com/cory-johannsen/warband/internal/game/combat"
)

const instrumentationName = "github.com/cory-johannsen/warband/internal/game/simulation"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Metrics holds the simulation's OpenTelemetry counters.
type Metrics struct {
	turns     metric.Int64Counter
	decisions metric.Int64Counter
	battles   metric.Int64Counter
	destroyed metric.Int64Counter
	spawned   metric.Int64Counter
}

// NewMetrics registers the counters on m. A nil m uses the global provider,
// which is a no-op until one is installed.
func NewMetrics(m metric.Meter) (*Metrics, error) {
	if m == nil {
		m = meter()
	}
	var (
		mt  Metrics
		err error
	)
	mt.turns, err = m.Int64Counter(
		"simulation.turns",
		metric.WithDescription("Turns completed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating turns counter: %w", err)
	}
	mt.decisions, err = m.Int64Counter(
		"simulation.decisions",
		metric.WithDescription("Unit decisions by branch and final action"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating decisions counter: %w", err)
	}
	mt.battles, err = m.Int64Counter(
		"simulation.battles",
		metric.WithDescription("Battles resolved by attacker kind"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating battles counter: %w", err)
	}
	mt.destroyed, err = m.Int64Counter(
		"simulation.units.destroyed",
		metric.WithDescription("Units destroyed in battle"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating destroyed counter: %w", err)
	}
	mt.spawned, err = m.Int64Counter(
		"simulation.units.spawned",
		metric.WithDescription("Units spawned by encampments"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating spawned counter: %w", err)
	}
	return &mt, nil
}

func (mt *Metrics) recordDecision(ctx context.Context, d ai.Decision) {
	mt.decisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("civ", d.Civ),
		attribute.String("branch", string(d.Branch)),
		attribute.String("action", string(d.Final())),
	))
}

func (mt *Metrics) recordBattle(ctx context.Context, r combat.Result) {
	mt.battles.Add(ctx, 1, metric.WithAttributes(
		attribute.String("attacker_kind", r.AttackerKind.String()),
		attribute.String("defender_kind", r.DefenderKind.String()),
	))
	n := int64(0)
	if r.AttackerDestroyed {
		n++
	}
	if r.DefenderDestroyed {
		n++
	}
	if n > 0 {
		mt.destroyed.Add(ctx, n)
	}
}

func (mt *Metrics) recordTurn(ctx context.Context, spawned int) {
	mt.turns.Add(ctx, 1)
	if spawned > 0 {
		mt.spawned.Add(ctx, int64(spawned))
	}
}
