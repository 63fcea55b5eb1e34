package reaper

import (
	"context"
	"errors"
	"fmt"

	"github.com/ammar0144/catalog4go/pkg/logging"
	"github.com/ammar0144/catalog4go/pkg/models"
)

// Options are the collaborators of a Pipeline
type Options struct {
	Session    Session
	Authorizer Authorizer
	Store      Datastore

	// Optional

	// SweepAuthorizer guards Collector().Sweep. Without it the pipeline's
	// collector refuses to sweep; the delete permission never grants it.
	SweepAuthorizer Authorizer

	Filesystem  Filesystem
	Events      EventLogger
	Directories Directories
}

// Pipeline deletes titles
type Pipeline struct {
	guard     *Guard
	store     Datastore
	reclaimer *Reclaimer
	collector *Collector
	events    EventLogger
}

// New creates a pipeline. Zero directories fall back to the defaults.
func New(opts Options) (*Pipeline, error) {
	if opts.Session == nil {
		return nil, errors.New("session resolver is required")
	}
	if opts.Authorizer == nil {
		return nil, errors.New("authorizer is required")
	}
	if opts.Store == nil {
		return nil, errors.New("datastore is required")
	}
	if opts.Events == nil {
		opts.Events = NewEventLogger()
	}

	var sweepGuard *Guard
	if opts.SweepAuthorizer != nil {
		sweepGuard = NewGuard(opts.Session, opts.SweepAuthorizer, opts.Events)
	}

	return &Pipeline{
		guard:     NewGuard(opts.Session, opts.Authorizer, opts.Events),
		store:     opts.Store,
		reclaimer: NewReclaimer(opts.Filesystem, opts.Directories),
		collector: NewCollector(opts.Store, sweepGuard),
		events:    opts.Events,
	}, nil
}

// Collector returns the orphan collector the pipeline uses. Its Sweep is
// guarded by Options.SweepAuthorizer.
func (p *Pipeline) Collector() *Collector { return p.collector }

// Delete removes the title with the given id, its media file and any actor
// left without a title. The returned Result never carries both messages.
func (p *Pipeline) Delete(ctx context.Context, titleID string) Result {
	ctx = logging.EnsureCorrelationID(ctx)

	identity, err := p.guard.Admit(ctx, titleID)
	if err != nil {
		TitleDeletionsTotal.WithLabelValues(outcomeOf(err)).Inc()
		return resultFor(err)
	}

	p.events.Log(ctx, EventCalled, map[string]any{"id": titleID, "identity": identity}, SeverityInfo)

	err = p.run(ctx, identity, titleID)
	TitleDeletionsTotal.WithLabelValues(outcomeOf(err)).Inc()

	switch {
	case err == nil:
		p.events.Log(ctx, EventSuccess, map[string]any{"id": titleID, "identity": identity}, SeverityInfo)
		return succeeded()
	case errors.Is(err, ErrNotFound):
		return resultFor(ErrNotFound)
	default:
		p.events.Log(ctx, EventError, map[string]any{"id": titleID, "identity": identity, "error": err.Error()}, SeverityError)
		return resultFor(ErrDeleteFailed)
	}
}

// run is the single error boundary around lookup, reclaim, delete and collect.
// Panics from collaborators are turned into errors.
func (p *Pipeline) run(ctx context.Context, identity, titleID string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrDeleteFailed, r)
		}
	}()

	title, err := p.store.FindTitleByID(ctx, titleID)
	if err != nil {
		return fmt.Errorf("lookup: %w", err)
	}
	if title == nil {
		p.events.Log(ctx, EventNotFound, map[string]any{"id": titleID, "identity": identity}, SeverityError)
		return ErrNotFound
	}

	if title.HasArtifact() {
		if _, err := p.reclaimer.Reclaim(ctx, title.ArtifactRef, title.Kind); err != nil {
			return err
		}
	}

	// junction rows disappear with the title, so the actor set is taken first
	links, err := p.store.FindAssociationsByTitle(ctx, titleID)
	if err != nil {
		return fmt.Errorf("snapshot associations: %w", err)
	}
	actorIDs := models.DistinctActorIDs(links)

	if err := p.store.DeleteTitleByID(ctx, titleID); err != nil {
		return fmt.Errorf("delete title: %w", err)
	}

	if _, err := p.collector.Collect(ctx, actorIDs); err != nil {
		return fmt.Errorf("collect orphans: %w", err)
	}
	return nil
}
