package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/soundrop/soundrop/internal/model"
)

// PublicationRepo provides persistence for publications and their genre
// links.  All multi-statement writes run inside a single transaction with a
// deferred rollback on every exit path, so no partial publication or
// partial genre linkage is ever visible to readers.
type PublicationRepo struct {
	db *sql.DB
}

// NewPublicationRepo returns a PublicationRepo bound to the given database.
func NewPublicationRepo(db *sql.DB) *PublicationRepo { return &PublicationRepo{db: db} }

// PublicationOwner carries the denormalized owner columns included in read
// projections for attribution.
type PublicationOwner struct {
	Name string `json:"name"`
	Rank string `json:"rank"`
}

// PublicationDetail is the denormalized projection returned by the read
// endpoints: the publication row joined with its owner and the complete,
// deduplicated set of linked genres.  Genres is never nil; a publication
// without links serializes as an empty array.
type PublicationDetail struct {
	ID        uint64           `json:"id"`
	UserID    uint64           `json:"user_id"`
	URL       string           `json:"url"`
	Platform  string           `json:"platform"`
	Title     string           `json:"title"`
	Artist    string           `json:"artist"`
	CoverUrl  string           `json:"cover_url"`
	EmbedUrl  string           `json:"embed_url"`
	Tags      string           `json:"tags"`
	CreatedAt time.Time        `json:"created_at"`
	User      PublicationOwner `json:"user"`
	Genres    []model.Genre    `json:"genres"`
}

// dedupeIDs drops zero values and duplicates while preserving order.
func dedupeIDs(ids []uint64) []uint64 {
	out := make([]uint64, 0, len(ids))
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// Create inserts a publication together with its genre links in one
// transaction and returns the new publication ID.  If any genre link fails
// (for example an unknown genre id violating the foreign key) the whole
// operation rolls back and the publication row does not exist afterwards.
func (r *PublicationRepo) Create(ctx context.Context, p *model.Publication, genreIDs []uint64) (uint64, error) {
	genreIDs = dedupeIDs(genreIDs)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO publications (user_id, url, platform, title, artist, cover_url, embed_url, tags)
		 VALUES (?,?,?,?,?,?,?,?)`,
		p.UserID, p.URL, p.Platform, p.Title, p.Artist, p.CoverUrl, p.EmbedUrl, p.Tags)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	pubID := uint64(id)

	if err := insertGenreLinksTx(ctx, tx, pubID, genreIDs); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	p.ID = pubID
	return pubID, nil
}

// insertGenreLinksTx bulk-inserts join rows for one publication inside the
// caller's transaction.  An empty id set is a no-op.
func insertGenreLinksTx(ctx context.Context, tx *sql.Tx, pubID uint64, genreIDs []uint64) error {
	if len(genreIDs) == 0 {
		return nil
	}
	query := "INSERT INTO publication_genres (publication_id, genre_id) VALUES "
	args := make([]interface{}, 0, len(genreIDs)*2)
	for i, gid := range genreIDs {
		if i > 0 {
			query += ","
		}
		query += "(?,?)"
		args = append(args, pubID, gid)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// ReplaceGenres swaps a publication's entire genre link set: the old join
// rows are deleted and the new set inserted inside one transaction, so
// readers never observe the window where the old linkage is gone and the
// new one not yet written.  Returns ErrPublicationNotFound for an unknown
// publication.
func (r *PublicationRepo) ReplaceGenres(ctx context.Context, pubID uint64, genreIDs []uint64) error {
	genreIDs = dedupeIDs(genreIDs)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var exists uint64
	err = tx.QueryRowContext(ctx, "SELECT id FROM publications WHERE id=? LIMIT 1", pubID).Scan(&exists)
	if err == sql.ErrNoRows {
		return ErrPublicationNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM publication_genres WHERE publication_id=?", pubID); err != nil {
		return err
	}
	if err := insertGenreLinksTx(ctx, tx, pubID, genreIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Delete removes a publication and its join rows in one transaction.
// Returns ErrPublicationNotFound when no row was deleted.
func (r *PublicationRepo) Delete(ctx context.Context, pubID uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM publication_genres WHERE publication_id=?", pubID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM publications WHERE id=?", pubID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPublicationNotFound
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

const publicationSelect = `SELECT p.id, p.user_id, p.url, p.platform, p.title, p.artist,
       p.cover_url, p.embed_url, p.tags, p.created_at, u.name, u.` + "`rank`" + `
  FROM publications p
  JOIN users u ON u.id = p.user_id`

// List returns the newest publications first, paginated.
func (r *PublicationRepo) List(ctx context.Context, limit, offset int) ([]PublicationDetail, error) {
	return r.query(ctx,
		publicationSelect+" ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?",
		limit, offset)
}

// ListLast returns the n most recent publications.
func (r *PublicationRepo) ListLast(ctx context.Context, n int) ([]PublicationDetail, error) {
	return r.query(ctx,
		publicationSelect+" ORDER BY p.created_at DESC, p.id DESC LIMIT ?", n)
}

// ListByUser returns a single user's publications, newest first, paginated.
func (r *PublicationRepo) ListByUser(ctx context.Context, userID uint64, limit, offset int) ([]PublicationDetail, error) {
	return r.query(ctx,
		publicationSelect+" WHERE p.user_id=? ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?",
		userID, limit, offset)
}

// ListByGenre returns publications linked to the given genre.  Each result
// still carries its complete genre set, not just the matched one.
func (r *PublicationRepo) ListByGenre(ctx context.Context, genreID uint64) ([]PublicationDetail, error) {
	return r.query(ctx,
		publicationSelect+
			" JOIN publication_genres pg ON pg.publication_id = p.id"+
			" WHERE pg.genre_id=? ORDER BY p.created_at DESC, p.id DESC",
		genreID)
}

func (r *PublicationRepo) query(ctx context.Context, query string, args ...interface{}) ([]PublicationDetail, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []PublicationDetail{}
	for rows.Next() {
		var d PublicationDetail
		var cover, embed, tags sql.NullString
		if err := rows.Scan(&d.ID, &d.UserID, &d.URL, &d.Platform, &d.Title, &d.Artist,
			&cover, &embed, &tags, &d.CreatedAt, &d.User.Name, &d.User.Rank); err != nil {
			return nil, err
		}
		d.CoverUrl = cover.String
		d.EmbedUrl = embed.String
		d.Tags = tags.String
		d.Genres = []model.Genre{}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, r.attachGenres(ctx, out)
}

// attachGenres fills the Genres field of each detail with one batched
// query over the join table, keyed by publication id.
func (r *PublicationRepo) attachGenres(ctx context.Context, details []PublicationDetail) error {
	if len(details) == 0 {
		return nil
	}
	placeholders := make([]string, len(details))
	args := make([]interface{}, len(details))
	index := make(map[uint64]int, len(details))
	for i := range details {
		placeholders[i] = "?"
		args[i] = details[i].ID
		index[details[i].ID] = i
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT pg.publication_id, g.id, g.name
		   FROM publication_genres pg
		   JOIN genres g ON g.id = pg.genre_id
		  WHERE pg.publication_id IN (`+strings.Join(placeholders, ",")+`)
		  ORDER BY g.name ASC, g.id ASC`,
		args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var pubID uint64
		var g model.Genre
		if err := rows.Scan(&pubID, &g.ID, &g.Name); err != nil {
			return err
		}
		if i, ok := index[pubID]; ok {
			details[i].Genres = append(details[i].Genres, g)
		}
	}
	return rows.Err()
}
