package collection

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

var _ Repository = (*PostgresRepo)(nil)

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) AddLink(ctx context.Context, userID string, malID int, status Status) (Link, error) {
	// The no-op update makes RETURNING yield the id of an existing row.
	const mangaSQL = `
		INSERT INTO manga (mal_id)
		VALUES ($1)
		ON CONFLICT (mal_id) DO UPDATE SET mal_id = EXCLUDED.mal_id
		RETURNING id
	`
	const linkSQL = `
		INSERT INTO user_manga_links (user_id, manga_id, status, added_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, manga_id) DO NOTHING
		RETURNING status, added_at
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(timeoutCtx)
	if err != nil {
		return Link{}, err
	}
	defer tx.Rollback(timeoutCtx)

	var mangaID int64
	if err := tx.QueryRow(timeoutCtx, mangaSQL, malID).Scan(&mangaID); err != nil {
		return Link{}, err
	}

	link := Link{MalID: malID}
	if err := tx.QueryRow(timeoutCtx, linkSQL, userID, mangaID, string(status)).Scan(&link.Status, &link.AddedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Link{}, ErrAlreadyExists
		}
		return Link{}, err
	}
	if err := tx.Commit(timeoutCtx); err != nil {
		return Link{}, err
	}
	return link, nil
}

func (r *PostgresRepo) UpdateStatus(ctx context.Context, userID string, malID int, status Status) (Link, error) {
	const updateSQL = `
		UPDATE user_manga_links l
		SET status = $3
		FROM manga m
		WHERE m.id = l.manga_id AND l.user_id = $1 AND m.mal_id = $2
		RETURNING l.status, l.added_at
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	link := Link{MalID: malID}
	err := r.db.QueryRow(timeoutCtx, updateSQL, userID, malID, string(status)).Scan(&link.Status, &link.AddedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Link{}, ErrNotFound
	}
	if err != nil {
		return Link{}, err
	}
	return link, nil
}

func (r *PostgresRepo) RemoveLink(ctx context.Context, userID string, malID int) error {
	const deleteSQL = `
		DELETE FROM user_manga_links l
		USING manga m
		WHERE m.id = l.manga_id AND l.user_id = $1 AND m.mal_id = $2
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(timeoutCtx, deleteSQL, userID, malID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) ListLinks(ctx context.Context, userID string) ([]Link, error) {
	const listSQL = `
		SELECT m.mal_id, l.status, l.added_at
		FROM user_manga_links l
		JOIN manga m ON m.id = l.manga_id
		WHERE l.user_id = $1
		ORDER BY l.added_at ASC, l.id ASC
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(timeoutCtx, listSQL, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := make([]Link, 0)
	for rows.Next() {
		var l Link
		if err := rows.Scan(&l.MalID, &l.Status, &l.AddedAt); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}
