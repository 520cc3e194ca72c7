package collection

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"mangaverse/internal/manga"
)

type Service struct {
	repo     Repository
	details  DetailsProvider
	enricher *Enricher
	logger   *zap.Logger
}

func NewService(repo Repository, details DetailsProvider, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("collection")
	return &Service{
		repo:     repo,
		details:  details,
		enricher: NewEnricher(details, logger),
		logger:   logger,
	}
}

// Add puts malID in the user's collection as planned.
func (s *Service) Add(ctx context.Context, userID string, malID int) (Link, error) {
	if malID <= 0 {
		return Link{}, fmt.Errorf("invalid mal_id %d", malID)
	}
	link, err := s.repo.AddLink(ctx, userID, malID, StatusPlanned)
	if err != nil {
		return Link{}, err
	}
	s.logger.Info("collection add", zap.String("user_id", userID), zap.Int("mal_id", malID))
	return link, nil
}

// UpdateStatus changes the reading status and returns the updated entry.
// When the catalog record cannot be resolved the entry carries only the
// link data.
func (s *Service) UpdateStatus(ctx context.Context, userID string, malID int, status Status) (Entry, error) {
	if err := ValidateStatus(status); err != nil {
		return Entry{}, err
	}
	link, err := s.repo.UpdateStatus(ctx, userID, malID, status)
	if err != nil {
		return Entry{}, err
	}

	rec, err := s.details.Details(ctx, malID)
	if err != nil {
		s.logger.Debug("status updated without details", zap.Int("mal_id", malID), zap.Error(err))
		rec = manga.Placeholder(link.MalID)
	}
	return Entry{Record: rec, Status: link.Status, AddedAt: link.AddedAt}, nil
}

func (s *Service) Remove(ctx context.Context, userID string, malID int) error {
	return s.repo.RemoveLink(ctx, userID, malID)
}

// List returns the user's collection enriched with catalog data.
func (s *Service) List(ctx context.Context, userID string) ([]Entry, error) {
	links, err := s.repo.ListLinks(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.enricher.Enrich(ctx, links), nil
}
