package domain

import (
	"context"
	"sort"

	"example.com/agenda/internal/observability"
)

// priorityFloor is the lowest value dense ranking assigns.
const priorityFloor = 1

// Reconcile re-ranks the identity's active activities into a dense
// ascending priority sequence. Activities in a terminal status are
// excluded entirely; unranked activities (nil priority) are returned
// untouched after the ranked set and are never assigned a priority here.
//
// The walk compares each activity's original priority to the previous
// activity's original priority: duplicate groups collapse to a single
// rank and consume one counter step. The comparison must use the
// original value, not the newly assigned one: duplicate handling
// depends on it.
func (s *Service) Reconcile(ctx context.Context, who Identity) ([]Activity, error) {
	if s.locker != nil {
		if release, err := s.locker.Acquire(ctx, "reconcile:"+who.ID); err == nil {
			defer release()
		} else {
			// Advisory only: a lost lock degrades to the unguarded behavior.
			s.log.Warn().Err(err).Str("owner_id", who.ID).Msg("reconcile proceeding without advisory lock")
		}
	}

	recs, err := s.repo.ListActive(ctx, who.ID, ExcludedStatuses)
	if err != nil {
		return nil, err
	}

	ranked := make([]Record, 0, len(recs))
	unranked := make([]Record, 0)
	for _, rec := range recs {
		if rec.Priority != nil {
			ranked = append(ranked, rec)
		} else {
			unranked = append(unranked, rec)
		}
	}

	// Stable: ties keep their load order, preserving duplicate-group
	// boundaries for the walk below.
	sort.SliceStable(ranked, func(i, j int) bool {
		return *ranked[i].Priority < *ranked[j].Priority
	})

	writes := 0
	counter := priorityFloor
	var previous *int
	for i := range ranked {
		original := *ranked[i].Priority
		if previous == nil || original != *previous {
			counter++
		}
		assigned := counter - 1

		if assigned != original {
			if err := s.repo.SetFields(ctx, who.ID, ranked[i].ID, map[string]any{"priority": assigned}); err != nil {
				return nil, err
			}
			writes++
		}

		prev := original
		previous = &prev
		p := assigned
		ranked[i].Priority = &p
	}

	observability.RecordReconcileRun(writes)
	if writes > 0 {
		s.publish(ctx, EventActivityReconciled, who, "")
	}

	out := make([]Activity, 0, len(ranked)+len(unranked))
	for _, rec := range append(ranked, unranked...) {
		out = append(out, s.toActivity(rec))
	}
	return out, nil
}
