package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundrop/soundrop/internal/model"
)

var pubCols = []string{"id", "user_id", "url", "platform", "title", "artist",
	"cover_url", "embed_url", "tags", "created_at", "name", "rank"}

func TestCreatePublicationCommitsWithGenres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPublicationRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO publications")).
		WithArgs(uint64(7), "https://sc.example/t", "soundcloud", "Track", "Artist", "", "", "").
		WillReturnResult(sqlmock.NewResult(11, 1))
	// Duplicate genre ids in the request collapse to one join row each.
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO publication_genres (publication_id, genre_id) VALUES (?,?),(?,?)")).
		WithArgs(uint64(11), uint64(1), uint64(11), uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	pub := &model.Publication{UserID: 7, URL: "https://sc.example/t", Platform: "soundcloud", Title: "Track", Artist: "Artist"}
	id, err := repo.Create(context.Background(), pub, []uint64{1, 2, 2, 1})
	require.NoError(t, err)
	assert.Equal(t, uint64(11), id)
	assert.Equal(t, uint64(11), pub.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePublicationRollsBackOnBadGenre(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPublicationRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO publications")).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO publication_genres")).
		WillReturnError(errors.New("FOREIGN KEY constraint fails"))
	mock.ExpectRollback()

	pub := &model.Publication{UserID: 7, URL: "u", Title: "t"}
	_, err = repo.Create(context.Background(), pub, []uint64{999})
	require.Error(t, err)
	// No partial publication survives the failed transaction.
	assert.Zero(t, pub.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceGenresIsAtomic(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPublicationRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM publications WHERE id=?")).
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM publication_genres WHERE publication_id=?")).
		WithArgs(uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO publication_genres")).
		WithArgs(uint64(9), uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ReplaceGenres(context.Background(), 9, []uint64{4}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceGenresUnknownPublication(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPublicationRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM publications WHERE id=?")).
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err = repo.ReplaceGenres(context.Background(), 9, []uint64{4})
	assert.ErrorIs(t, err, ErrPublicationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePublicationNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPublicationRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM publication_genres WHERE publication_id=?")).
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM publications WHERE id=?")).
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err = repo.Delete(context.Background(), 5)
	assert.ErrorIs(t, err, ErrPublicationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAttachesCompleteGenreSets(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPublicationRepo(db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("FROM publications p")).
		WillReturnRows(sqlmock.NewRows(pubCols).
			AddRow(2, 7, "u2", "soundcloud", "B", "art", nil, nil, nil, now, "ada", "mod").
			AddRow(1, 8, "u1", "soundcloud", "A", "art", nil, nil, nil, now, "bob", "guest"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM publication_genres pg")).
		WithArgs(uint64(2), uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"publication_id", "id", "name"}).
			AddRow(2, 10, "House").
			AddRow(2, 11, "Techno"))

	pubs, err := repo.List(context.Background(), 20, 0)
	require.NoError(t, err)
	require.Len(t, pubs, 2)

	assert.Equal(t, []model.Genre{{ID: 10, Name: "House"}, {ID: 11, Name: "Techno"}}, pubs[0].Genres)
	// A publication without links carries an empty set, never nil.
	assert.NotNil(t, pubs[1].Genres)
	assert.Empty(t, pubs[1].Genres)
	assert.Equal(t, "ada", pubs[0].User.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
