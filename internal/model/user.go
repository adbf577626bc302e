package model

import "time"

// Rank values stored in users.rank.  Admin is the only rank permitted to
// manage users and genres and to delete publications.
const (
	RankGuest = "guest"
	RankMod   = "mod"
	RankAdmin = "admin"
)

// ValidRank reports whether s is one of the three known ranks.
func ValidRank(s string) bool {
	return s == RankGuest || s == RankMod || s == RankAdmin
}

// User mirrors the `users` table.  PasswordHash never leaves the repository
// and handler layers; responses use the public projection types defined by
// the handlers.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  Name         – display name.
//  PasswordHash – bcrypt hashed password.
//  Rank         – one of guest, mod, admin.
//  IsValidated  – whether the account may publish.  Raising a user's rank
//                 to mod or admin forces this to true; it is never flipped
//                 back automatically.
//  CreatedAt    – timestamp of registration.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	Name         string    // users.name
	PasswordHash string    // users.password_hash
	Rank         string    // users.rank
	IsValidated  bool      // users.is_validated
	CreatedAt    time.Time // users.created_at
}
