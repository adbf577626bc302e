package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/soundrop/soundrop/internal/model"
)

// GenreRepo persists genres and owns the manual cascade that keeps the
// publication_genres join table consistent when a genre is removed.
type GenreRepo struct {
	db *sql.DB
}

// NewGenreRepo returns a GenreRepo bound to the given database.
func NewGenreRepo(db *sql.DB) *GenreRepo { return &GenreRepo{db: db} }

// TopGenre is a genre together with the number of publications linked to it,
// returned by the popularity listing.
type TopGenre struct {
	ID               uint64 `json:"id"`
	Name             string `json:"name"`
	PublicationCount uint64 `json:"publication_count"`
}

// List returns all genres ordered by name.
func (r *GenreRepo) List(ctx context.Context) ([]model.Genre, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM genres ORDER BY name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Genre{}
	for rows.Next() {
		var g model.Genre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// Top returns the n genres with the most linked publications, most linked
// first.  Ties are broken by name then id so the ordering is deterministic.
func (r *GenreRepo) Top(ctx context.Context, n int) ([]TopGenre, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT g.id, g.name, COUNT(pg.publication_id) AS publication_count
		   FROM genres g
		   JOIN publication_genres pg ON pg.genre_id = g.id
		  GROUP BY g.id, g.name
		  ORDER BY publication_count DESC, g.name ASC, g.id ASC
		  LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []TopGenre{}
	for rows.Next() {
		var t TopGenre
		if err := rows.Scan(&t.ID, &t.Name, &t.PublicationCount); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Create inserts a genre and returns the new row.  A name collision maps to
// ErrGenreExists through the unique index.
func (r *GenreRepo) Create(ctx context.Context, name string) (model.Genre, error) {
	name = strings.TrimSpace(name)
	res, err := r.db.ExecContext(ctx, "INSERT INTO genres (name) VALUES (?)", name)
	if err != nil {
		if isDuplicateKey(err) {
			return model.Genre{}, ErrGenreExists
		}
		return model.Genre{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Genre{}, err
	}
	return model.Genre{ID: uint64(id), Name: name}, nil
}

// Delete removes a genre and every join row referencing it in one
// transaction, and returns the deleted row.  Publications linked to the
// genre simply lose it from their genre list.  Returns ErrGenreNotFound
// when the genre does not exist.
func (r *GenreRepo) Delete(ctx context.Context, id uint64) (model.Genre, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Genre{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var g model.Genre
	err = tx.QueryRowContext(ctx, "SELECT id, name FROM genres WHERE id=? LIMIT 1", id).
		Scan(&g.ID, &g.Name)
	if err == sql.ErrNoRows {
		return model.Genre{}, ErrGenreNotFound
	}
	if err != nil {
		return model.Genre{}, err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM publication_genres WHERE genre_id=?", id); err != nil {
		return model.Genre{}, err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM genres WHERE id=?", id); err != nil {
		return model.Genre{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Genre{}, err
	}
	committed = true
	return g, nil
}
