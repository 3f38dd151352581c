package match

import (
	"Trivium/models/postgres"
	"Trivium/services/store"
	"Trivium/utils"
	"context"
	"errors"
	"log"
	"time"
)

// RetentionPolicy bounds how long rooms live in each status. finished is
// terminal; a zero duration disables that rule.
type RetentionPolicy struct {
	MatchMaxDuration      time.Duration
	WaitingRoomTTL        time.Duration
	FinishedRoomRetention time.Duration
}

type SweepReport struct {
	Finished int
	Deleted  int
	// Purged holds the ids and custom codes of deleted rooms.
	Purged []string
}

// Sweep applies policy once: started rooms past MatchMaxDuration are
// finished, stale waiting rooms and old finished rooms are deleted. Errors on
// single rooms are logged and skipped.
func (m *Manager) Sweep(ctx context.Context, policy RetentionPolicy) (SweepReport, error) {
	var report SweepReport
	now := m.now()

	if policy.MatchMaxDuration > 0 {
		stale, err := m.rooms.ListRoomsBefore(ctx, postgres.RoomStarted, now.Add(-policy.MatchMaxDuration))
		if err != nil {
			return report, utils.Internal("listing started rooms", err)
		}
		for _, room := range stale {
			_, err := m.finish(ctx, room.ID, func(*postgres.MatchRoom) error { return nil })
			if err != nil {
				log.Printf("[SWEEP] could not finish room %s: %v", room.ID, err)
				continue
			}
			report.Finished++
		}
	}

	purge := []struct {
		status postgres.RoomStatus
		ttl    time.Duration
	}{
		{postgres.RoomWaiting, policy.WaitingRoomTTL},
		{postgres.RoomFinished, policy.FinishedRoomRetention},
	}
	for _, rule := range purge {
		if rule.ttl <= 0 {
			continue
		}
		rooms, err := m.rooms.ListRoomsBefore(ctx, rule.status, now.Add(-rule.ttl))
		if err != nil {
			return report, utils.Internal("listing rooms to purge", err)
		}
		for _, room := range rooms {
			if err := m.rooms.DeleteRoom(ctx, room.ID); err != nil {
				if !errors.Is(err, store.ErrRoomNotFound) {
					log.Printf("[SWEEP] could not delete room %s: %v", room.ID, err)
				}
				continue
			}
			m.invalidate(ctx, room)
			report.Deleted++
			report.Purged = append(report.Purged, room.ID)
			if code := room.Code(); code != "" {
				report.Purged = append(report.Purged, code)
			}
		}
	}

	return report, nil
}
