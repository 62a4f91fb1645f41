package syncer

import (
	"context"
	"errors"
	"log/slog"

	"github.com/areaewhy/JoplinView/internal/apperr"
	"github.com/areaewhy/JoplinView/internal/models"
)

// EnsureWarm makes read paths self-healing after a cold start: when the
// note store is empty it first rehydrates from a fresh cache snapshot,
// and only falls back to a full bucket pass when the cache is empty or
// stale. It returns whether a load or sync occurred.
func (s *Syncer) EnsureWarm(ctx context.Context) (bool, error) {
	n, err := s.notes.Count()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	if s.cache != nil && s.cache.Fresh() {
		if snap := s.cache.Get(); snap != nil && len(snap.Notes) > 0 {
			if err := s.hydrate(snap.Notes, snap.Status); err == nil {
				s.logger.Info("syncer: store hydrated from cache",
					slog.Int("notes", len(snap.Notes)))
				return true, nil
			}
			s.logger.Warn("syncer: cache hydration failed, falling back to full sync")
		}
	}

	if _, err := s.Run(ctx); err != nil {
		// Another caller is already filling the store; treat as no-op.
		if errors.Is(err, apperr.ErrSyncInProgress) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Syncer) hydrate(notes []models.Note, status models.SyncStatus) error {
	if err := s.notes.ReplaceAll(notes); err != nil {
		return err
	}
	_, err := s.status.MergeStatus(models.SyncStatusPatch{
		LastSyncTime: status.LastSyncTime,
		TotalNotes:   &status.TotalNotes,
		StorageUsed:  &status.StorageUsed,
		IsConnected:  &status.IsConnected,
	})
	return err
}
