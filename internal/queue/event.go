// Package queue defines message payloads exchanged over the message broker.
package queue

// PublicationCreatedEvent is published after a publication and its genre
// links are committed.  It carries enough information for downstream
// consumers to log or notify without querying the primary database.
type PublicationCreatedEvent struct {
	PublicationID uint64   `json:"publication_id"`
	UserID        uint64   `json:"user_id"`
	Title         string   `json:"title"`
	Artist        string   `json:"artist"`
	Platform      string   `json:"platform"`
	GenreIDs      []uint64 `json:"genre_ids"`
	CreatedAt     string   `json:"created_at"`
}
