package collection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mangaverse/internal/manga"
)

var (
	ErrNotFound      = errors.New("manga not in collection")
	ErrAlreadyExists = errors.New("manga already in collection")
	ErrInvalidStatus = errors.New("invalid reading status")
)

// Status is the user's own reading status. It is unrelated to the
// publication status carried by catalog records.
type Status string

const (
	StatusReading   Status = "reading"
	StatusCompleted Status = "completed"
	StatusPlanned   Status = "planned"
)

func ValidateStatus(status Status) error {
	switch status {
	case StatusReading, StatusCompleted, StatusPlanned:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStatus, string(status))
	}
}

// Link is one persisted collection row.
type Link struct {
	MalID   int       `json:"mal_id"`
	Status  Status    `json:"status"`
	AddedAt time.Time `json:"added_at"`
}

// Entry is a catalog record seen through a user's collection. Its Status
// shadows the record's publication status when encoded.
type Entry struct {
	manga.Record
	Status  Status    `json:"status"`
	AddedAt time.Time `json:"added_at"`
}

//go:generate mockgen -source=collection.go -destination=mock_repository.go -package=collection

// Repository persists collection links keyed by (user, mal_id).
type Repository interface {
	// AddLink creates the link, returning ErrAlreadyExists when present.
	AddLink(ctx context.Context, userID string, malID int, status Status) (Link, error)
	UpdateStatus(ctx context.Context, userID string, malID int, status Status) (Link, error)
	RemoveLink(ctx context.Context, userID string, malID int) error
	// ListLinks returns the user's links in insertion order.
	ListLinks(ctx context.Context, userID string) ([]Link, error)
}

// DetailsProvider resolves catalog records, normally manga.Service.
type DetailsProvider interface {
	Details(ctx context.Context, malID int) (manga.Record, error)
}
