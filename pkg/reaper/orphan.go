package reaper

import (
	"context"
	"errors"
	"fmt"

	"github.com/ammar0144/catalog4go/pkg/logging"
	"github.com/ammar0144/catalog4go/pkg/models"
)

// sweepTarget is the id logged when a sweep is rejected
const sweepTarget = "actors"

// Collector deletes actors no title references any more
type Collector struct {
	store Datastore
	guard *Guard
}

// SweepReport lists what a sweep looked at and what it deleted
type SweepReport struct {
	Scanned []string `json:"scanned"`
	Deleted []string `json:"deleted"`
}

// NewCollector creates a collector. guard protects Sweep and may be nil when
// only Collect is used.
func NewCollector(store Datastore, guard *Guard) *Collector {
	return &Collector{store: store, guard: guard}
}

// Collect re-counts the references of each actor and deletes those left with
// none. It returns the deleted IDs. Actors are handled one at a time; on error
// the actors already deleted stay deleted.
func (c *Collector) Collect(ctx context.Context, actorIDs []string) ([]string, error) {
	var deleted []string
	seen := make(map[string]struct{}, len(actorIDs))

	for _, id := range actorIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		orphan, err := c.unreferenced(ctx, id)
		if err != nil {
			return deleted, err
		}
		if !orphan {
			continue
		}

		if err := c.store.DeleteActorByID(ctx, id); err != nil {
			return deleted, fmt.Errorf("delete orphaned actor %s: %w", id, err)
		}
		OrphansCollectedTotal.Inc()
		deleted = append(deleted, id)
	}

	if len(deleted) > 0 {
		logging.Ctx(ctx).Debug().Strs("actor_ids", deleted).Msg("orphaned actors deleted")
	}
	return deleted, nil
}

// unreferenced counts an actor's associations per title kind with one query
// each and reports true only when every kind counts zero.
func (c *Collector) unreferenced(ctx context.Context, actorID string) (bool, error) {
	primary, err := c.store.CountAssociations(ctx, actorID, models.KindPrimary)
	if err != nil {
		return false, fmt.Errorf("count primary associations of %s: %w", actorID, err)
	}
	series, err := c.store.CountAssociations(ctx, actorID, models.KindSeries)
	if err != nil {
		return false, fmt.Errorf("count series associations of %s: %w", actorID, err)
	}
	return primary == 0 && series == 0, nil
}

// Sweep deletes every actor that currently has no association at all.
// It is guarded like a deletion and can be repeated safely.
func (c *Collector) Sweep(ctx context.Context) (SweepReport, error) {
	ctx = logging.EnsureCorrelationID(ctx)

	if c.guard == nil {
		return SweepReport{}, errors.New("sweep requires an access guard")
	}
	if _, err := c.guard.Admit(ctx, sweepTarget); err != nil {
		return SweepReport{}, err
	}

	ids, err := c.store.ListUnreferencedActorIDs(ctx)
	if err != nil {
		return SweepReport{}, fmt.Errorf("list unreferenced actors: %w", err)
	}

	deleted, err := c.Collect(ctx, ids)
	report := SweepReport{Scanned: ids, Deleted: deleted}
	if err != nil {
		return report, err
	}

	logging.Ctx(ctx).Info().
		Int("scanned", len(ids)).
		Int("deleted", len(deleted)).
		Msg("orphan sweep finished")
	return report, nil
}
