package collection

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mangaverse/internal/manga"
)

// Enricher joins persisted links with catalog records.
type Enricher struct {
	details DetailsProvider
	logger  *zap.Logger
}

func NewEnricher(details DetailsProvider, logger *zap.Logger) *Enricher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enricher{details: details, logger: logger}
}

// Enrich resolves every distinct id once, concurrently, and returns the
// entries in link order. Links whose record cannot be resolved are left
// out. The link status always wins over the record's status.
func (e *Enricher) Enrich(ctx context.Context, links []Link) []Entry {
	if len(links) == 0 {
		return []Entry{}
	}

	var (
		mu      sync.Mutex
		records = make(map[int]manga.Record, len(links))
		seen    = make(map[int]bool, len(links))
	)
	var g errgroup.Group
	for _, l := range links {
		if seen[l.MalID] {
			continue
		}
		seen[l.MalID] = true
		id := l.MalID
		g.Go(func() error {
			rec, err := e.details.Details(ctx, id)
			if err != nil {
				e.logger.Debug("collection entry unresolved", zap.Int("mal_id", id), zap.Error(err))
				return nil
			}
			mu.Lock()
			records[id] = rec
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	out := make([]Entry, 0, len(links))
	for _, l := range links {
		rec, ok := records[l.MalID]
		if !ok {
			continue
		}
		out = append(out, Entry{Record: rec, Status: l.Status, AddedAt: l.AddedAt})
	}
	return out
}
