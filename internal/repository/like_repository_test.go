package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeAddIsIdempotent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewLikeRepo(db)

	insert := regexp.QuoteMeta("INSERT IGNORE INTO likes (user_id, publication_id) VALUES (?,?)")
	// first like inserts a row, the repeat is swallowed by INSERT IGNORE
	mock.ExpectExec(insert).WithArgs(uint64(7), uint64(3)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insert).WithArgs(uint64(7), uint64(3)).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Add(context.Background(), 7, 3))
	require.NoError(t, repo.Add(context.Background(), 7, 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikeCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewLikeRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM likes WHERE publication_id=?")).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(4))

	n, err := repo.Count(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
