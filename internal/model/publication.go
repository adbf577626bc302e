package model

import "time"

// Publication mirrors the `publications` table.  A publication is a
// user-submitted reference to an externally hosted track together with
// descriptive metadata.  Genre links live in the publication_genres join
// table and are always created in the same transaction as the row itself.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owning user, fixed at creation for attribution.
//  URL       – canonical link to the hosted track.
//  Platform  – hosting platform tag (e.g. "soundcloud").
//  Title     – track title.
//  Artist    – artist name.
//  CoverUrl  – optional cover artwork URL.
//  EmbedUrl  – optional embeddable player URL.
//  Tags      – free-form tag text entered by the submitter.
//  CreatedAt – creation timestamp.
type Publication struct {
	ID        uint64    // publications.id
	UserID    uint64    // publications.user_id
	URL       string    // publications.url
	Platform  string    // publications.platform
	Title     string    // publications.title
	Artist    string    // publications.artist
	CoverUrl  string    // publications.cover_url
	EmbedUrl  string    // publications.embed_url
	Tags      string    // publications.tags
	CreatedAt time.Time // publications.created_at
}
