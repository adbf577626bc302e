package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/soundrop/soundrop/internal/model"
	"github.com/soundrop/soundrop/internal/utils"
)

// UserRepo persists application users.  Rank and validation state are
// always re-read from this table per request rather than trusted from
// token claims, so the queries here sit on the hot path.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, email, name, password_hash, `rank`, is_validated, created_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Rank, &u.IsValidated, &u.CreatedAt)
	return u, err
}

// Create inserts a new user with rank=guest and is_validated=false and
// returns its ID.  Email uniqueness is enforced by the unique index, not a
// prior SELECT, so two concurrent registrations cannot both succeed.
func (r *UserRepo) Create(ctx context.Context, email, name, password string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, name, password_hash, `rank`) VALUES (?,?,?,'guest')",
		email, name, hash)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// ListAll returns users ordered newest-first, paginated.
func (r *UserRepo) ListAll(ctx context.Context, limit, offset int) ([]model.User, error) {
	return r.list(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		limit, offset)
}

// ListGuests returns all users whose rank is guest.
func (r *UserRepo) ListGuests(ctx context.Context) ([]model.User, error) {
	return r.list(ctx,
		"SELECT "+userColumns+" FROM users WHERE `rank`='guest' ORDER BY created_at DESC, id DESC")
}

// ListUnvalidated returns all users still awaiting account validation.
func (r *UserRepo) ListUnvalidated(ctx context.Context) ([]model.User, error) {
	return r.list(ctx,
		"SELECT "+userColumns+" FROM users WHERE is_validated=0 ORDER BY created_at DESC, id DESC")
}

func (r *UserRepo) list(ctx context.Context, query string, args ...interface{}) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Rank, &u.IsValidated, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpdateRank sets a user's rank and applies the one-way validation side
// effect in the same statement: raising to mod or admin forces
// is_validated=true, while setting guest leaves the flag untouched.  The
// updated row is returned; ErrUserNotFound when no such user exists.
func (r *UserRepo) UpdateRank(ctx context.Context, id uint64, rank string) (model.User, error) {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET `rank`=?, is_validated=CASE WHEN ? IN ('mod','admin') THEN 1 ELSE is_validated END WHERE id=?",
		rank, rank, id)
	if err != nil {
		return model.User{}, err
	}
	u, err := r.GetByID(ctx, id)
	if err == sql.ErrNoRows {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// Validate marks a user's account as validated and returns the updated row.
func (r *UserRepo) Validate(ctx context.Context, id uint64) (model.User, error) {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET is_validated=1 WHERE id=?", id)
	if err != nil {
		return model.User{}, err
	}
	u, err := r.GetByID(ctx, id)
	if err == sql.ErrNoRows {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}
