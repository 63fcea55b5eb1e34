package reaper

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Deletion outcomes used as the outcome label
const (
	OutcomeSuccess      = "success"
	OutcomeUnauthorized = "unauthorized"
	OutcomeForbidden    = "forbidden"
	OutcomeNotFound     = "not_found"
	OutcomeFailed       = "failed"
)

var (
	// TitleDeletionsTotal counts pipeline runs by outcome.
	TitleDeletionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog4go_title_deletions_total",
			Help: "Total number of title deletion attempts by outcome",
		},
		[]string{"outcome"},
	)

	// OrphansCollectedTotal counts actors deleted because no title references them.
	OrphansCollectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog4go_orphans_collected_total",
			Help: "Total number of unreferenced actors deleted",
		},
	)

	// ArtifactsReclaimedTotal counts removed media files by extension.
	ArtifactsReclaimedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog4go_artifacts_reclaimed_total",
			Help: "Total number of media files removed by extension",
		},
		[]string{"extension"},
	)
)

func outcomeOf(err error) string {
	switch err {
	case nil:
		return OutcomeSuccess
	case ErrUnauthorized:
		return OutcomeUnauthorized
	case ErrForbidden:
		return OutcomeForbidden
	case ErrNotFound:
		return OutcomeNotFound
	default:
		return OutcomeFailed
	}
}
