package repository

import (
	"context"
	"database/sql"
	"time"
)

// CommentRepo persists publication comments.  Comments are append-only:
// there is no update or delete path.
type CommentRepo struct {
	db *sql.DB
}

// NewCommentRepo returns a CommentRepo bound to the given database.
func NewCommentRepo(db *sql.DB) *CommentRepo { return &CommentRepo{db: db} }

// CommentDetail is a comment joined with its author's public attributes.
type CommentDetail struct {
	ID            uint64    `json:"id"`
	UserID        uint64    `json:"user_id"`
	PublicationID uint64    `json:"publication_id"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"created_at"`
	UserName      string    `json:"user_name"`
	UserRank      string    `json:"user_rank"`
}

// Create inserts a comment and reads the full row back so the caller gets
// the database-assigned timestamp.
func (r *CommentRepo) Create(ctx context.Context, userID, pubID uint64, content string) (CommentDetail, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO comments (user_id, publication_id, content) VALUES (?,?,?)",
		userID, pubID, content)
	if err != nil {
		return CommentDetail{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return CommentDetail{}, err
	}
	var d CommentDetail
	err = r.db.QueryRowContext(ctx,
		`SELECT c.id, c.user_id, c.publication_id, c.content, c.created_at, u.name, u.`+"`rank`"+`
		   FROM comments c
		   JOIN users u ON u.id = c.user_id
		  WHERE c.id=?`, id).
		Scan(&d.ID, &d.UserID, &d.PublicationID, &d.Content, &d.CreatedAt, &d.UserName, &d.UserRank)
	return d, err
}

// ListForPublication returns a publication's comments oldest-first with
// author attribution.
func (r *CommentRepo) ListForPublication(ctx context.Context, pubID uint64) ([]CommentDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.user_id, c.publication_id, c.content, c.created_at, u.name, u.`+"`rank`"+`
		   FROM comments c
		   JOIN users u ON u.id = c.user_id
		  WHERE c.publication_id=?
		  ORDER BY c.created_at ASC, c.id ASC`, pubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []CommentDetail{}
	for rows.Next() {
		var d CommentDetail
		if err := rows.Scan(&d.ID, &d.UserID, &d.PublicationID, &d.Content, &d.CreatedAt, &d.UserName, &d.UserRank); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
