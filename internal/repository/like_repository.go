package repository

import (
	"context"
	"database/sql"
)

// LikeRepo persists likes: a composite (user, publication) key with no
// payload.
type LikeRepo struct {
	db *sql.DB
}

// NewLikeRepo returns a LikeRepo bound to the given database.
func NewLikeRepo(db *sql.DB) *LikeRepo { return &LikeRepo{db: db} }

// Add records that a user likes a publication.  INSERT IGNORE makes the
// operation idempotent: liking twice leaves exactly one row and no error.
func (r *LikeRepo) Add(ctx context.Context, userID, pubID uint64) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT IGNORE INTO likes (user_id, publication_id) VALUES (?,?)",
		userID, pubID)
	return err
}

// Remove deletes a like by its composite key.  Removing an absent like is
// not an error.
func (r *LikeRepo) Remove(ctx context.Context, userID, pubID uint64) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM likes WHERE user_id=? AND publication_id=?",
		userID, pubID)
	return err
}

// Count returns the number of likes for a publication.
func (r *LikeRepo) Count(ctx context.Context, pubID uint64) (uint64, error) {
	var n uint64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM likes WHERE publication_id=?", pubID).Scan(&n)
	return n, err
}
