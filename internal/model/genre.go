package model

// Genre mirrors the `genres` table.  Genres are independent entities with a
// unique name; publications reference them through publication_genres.
type Genre struct {
	ID   uint64 `json:"id"`   // genres.id
	Name string `json:"name"` // genres.name
}
