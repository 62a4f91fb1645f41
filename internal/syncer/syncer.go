// Package syncer reconciles the note store against the export bucket:
// list, fetch, parse, classify, build, replace-all, then refresh the
// sync statistics and the response cache.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/areaewhy/JoplinView/internal/apperr"
	"github.com/areaewhy/JoplinView/internal/cache"
	"github.com/areaewhy/JoplinView/internal/ingest"
	"github.com/areaewhy/JoplinView/internal/models"
	"github.com/areaewhy/JoplinView/internal/objstore"
	"github.com/areaewhy/JoplinView/internal/parser"
	"github.com/areaewhy/JoplinView/internal/store"
)

// EventCallback is called on sync lifecycle transitions. kind is one of
// "sync.started", "sync.completed", "sync.failed".
type EventCallback func(kind string, data map[string]any)

// Config assembles a Syncer.
type Config struct {
	Objects objstore.Store // nil when bucket configuration is missing
	Notes   store.NoteStore
	Status  store.StatusStore
	Cache   *cache.Cache
	Dialect parser.Dialect

	// Prefix narrows the bucket listing and is stripped from keys
	// when deriving joplin ids.
	Prefix string
	// ParentFolder restricts notes to one source folder when set.
	ParentFolder string
	// DedupeTitles enables the duplicate-title guard.
	DedupeTitles bool
	// FetchConcurrency bounds parallel object fetches; <= 0 means 1.
	FetchConcurrency int

	Logger  *slog.Logger
	OnEvent EventCallback
}

// Summary is the caller-visible result of one sync pass.
type Summary struct {
	Processed   int    `json:"notesCount"`
	StorageUsed string `json:"storageUsed"`
}

// Syncer owns the write path to the note store and the status record.
// Only one pass runs at a time; a second concurrent Run fails with
// apperr.ErrSyncInProgress.
type Syncer struct {
	objects    objstore.Store
	notes      store.NoteStore
	status     store.StatusStore
	cache      *cache.Cache
	dialect    parser.Dialect
	classifier *ingest.Classifier
	builder    *ingest.Builder

	prefix  string
	workers int
	logger  *slog.Logger
	onEvent EventCallback

	inFlight atomic.Bool
}

// New creates a Syncer from the given configuration.
func New(cfg Config) *Syncer {
	workers := cfg.FetchConcurrency
	if workers <= 0 {
		workers = 1
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		objects:    cfg.Objects,
		notes:      cfg.Notes,
		status:     cfg.Status,
		cache:      cfg.Cache,
		dialect:    cfg.Dialect,
		classifier: &ingest.Classifier{ParentFolder: cfg.ParentFolder, DedupeTitles: cfg.DedupeTitles},
		builder:    &ingest.Builder{Prefix: cfg.Prefix},
		prefix:     cfg.Prefix,
		workers:    workers,
		logger:     logger,
		onEvent:    cfg.OnEvent,
	}
}

// Run performs one full reconciliation pass. Per-object failures are
// logged and skipped; listing or store failures abort the pass, leave
// the previous note set untouched, and mark the status disconnected.
func (s *Syncer) Run(ctx context.Context) (Summary, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return Summary{}, apperr.ErrSyncInProgress
	}
	defer s.inFlight.Store(false)

	if s.objects == nil {
		s.markDisconnected()
		return Summary{}, apperr.ErrConfigMissing
	}

	s.emit("sync.started", nil)

	infos, err := s.objects.List(ctx, s.prefix)
	if err != nil {
		s.markDisconnected()
		err = fmt.Errorf("syncer: list objects: %w", err)
		s.emit("sync.failed", map[string]any{"error": err.Error()})
		return Summary{}, err
	}

	results := s.fetchAll(ctx, infos)

	// Classification runs sequentially in listing order so first-seen
	// semantics (dedupe, natural-key uniqueness) stay deterministic
	// for a given listing.
	seen := ingest.NewSeen()
	notes := make([]models.Note, 0, len(infos))
	var bytesUsed int64
	for i, info := range infos {
		res := results[i]
		if res == nil {
			continue
		}
		joplinID := s.builder.JoplinID(info.Key)
		title := s.builder.Title(res, joplinID)
		if err := s.classifier.Check(res, joplinID, title, seen); err != nil {
			s.logger.Debug("syncer: object skipped",
				slog.String("key", info.Key), slog.String("reason", err.Error()))
			continue
		}
		s.classifier.Accept(joplinID, title, seen)
		notes = append(notes, s.builder.Build(info.Key, res))
		bytesUsed += info.Size
	}

	if err := s.notes.ReplaceAll(notes); err != nil {
		s.markDisconnected()
		err = fmt.Errorf("syncer: %w: %v", apperr.ErrStoreUnavailable, err)
		s.emit("sync.failed", map[string]any{"error": err.Error()})
		return Summary{}, err
	}

	summary := Summary{Processed: len(notes), StorageUsed: formatMB(bytesUsed)}
	status := s.updateStatus(summary)
	s.refreshCache(status)

	s.logger.Info("syncer: pass completed",
		slog.Int("objects", len(infos)),
		slog.Int("notes", summary.Processed),
		slog.String("storage_used", summary.StorageUsed))
	s.emit("sync.completed", map[string]any{
		"notes":       summary.Processed,
		"storageUsed": summary.StorageUsed,
	})
	return summary, nil
}

// fetchAll retrieves and parses every listed object with bounded
// concurrency. Results are buffered per listing index; failed or
// rejected objects leave a nil slot.
func (s *Syncer) fetchAll(ctx context.Context, infos []models.ObjectInfo) []*parser.Result {
	results := make([]*parser.Result, len(infos))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, info := range infos {
		g.Go(func() error {
			data, err := s.objects.Get(gctx, info.Key)
			if err != nil {
				// Transient fetch failure: skip, keep the pass alive.
				s.logger.Warn("syncer: fetch failed",
					slog.String("key", info.Key), slog.String("error", err.Error()))
				return nil
			}
			res, err := s.dialect.Parse(data)
			if err != nil {
				// Known per-object rejects are routine; anything else
				// deserves a louder line.
				if apperr.Skippable(err) {
					s.logger.Debug("syncer: parse rejected",
						slog.String("key", info.Key), slog.String("reason", err.Error()))
				} else {
					s.logger.Warn("syncer: parse failed",
						slog.String("key", info.Key), slog.String("error", err.Error()))
				}
				return nil
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// updateStatus merges the post-pass statistics. A status write failure
// does not fail the pass: the note set is already replaced.
func (s *Syncer) updateStatus(summary Summary) models.SyncStatus {
	now := time.Now().UTC()
	connected := true
	merged, err := s.status.MergeStatus(models.SyncStatusPatch{
		LastSyncTime: &now,
		TotalNotes:   &summary.Processed,
		StorageUsed:  &summary.StorageUsed,
		IsConnected:  &connected,
	})
	if err != nil {
		s.logger.Warn("syncer: status update failed", slog.String("error", err.Error()))
		return models.SyncStatus{
			LastSyncTime: &now,
			TotalNotes:   summary.Processed,
			StorageUsed:  summary.StorageUsed,
			IsConnected:  true,
		}
	}
	return *merged
}

// refreshCache writes the whole snapshot: the stored notes (with their
// assigned surrogate ids) plus the merged status.
func (s *Syncer) refreshCache(status models.SyncStatus) {
	if s.cache == nil {
		return
	}
	stored, err := s.notes.All()
	if err != nil {
		s.logger.Warn("syncer: cache refresh skipped", slog.String("error", err.Error()))
		return
	}
	s.cache.Put(stored, status)
}

func (s *Syncer) markDisconnected() {
	disconnected := false
	if _, err := s.status.MergeStatus(models.SyncStatusPatch{IsConnected: &disconnected}); err != nil {
		s.logger.Warn("syncer: disconnect mark failed", slog.String("error", err.Error()))
	}
}

func (s *Syncer) emit(kind string, data map[string]any) {
	if s.onEvent != nil {
		s.onEvent(kind, data)
	}
}

// formatMB renders a byte total the way the status record stores it.
func formatMB(n int64) string {
	return fmt.Sprintf("%.2f MB", float64(n)/1024/1024)
}
