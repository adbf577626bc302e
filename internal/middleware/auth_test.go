package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundrop/soundrop/internal/model"
	"github.com/soundrop/soundrop/internal/utils"
)

const testSecret = "test-secret"

// fakeUserSource serves canned user rows keyed by id.
type fakeUserSource struct {
	users map[uint64]model.User
}

func (f *fakeUserSource) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func runAuth(t *testing.T, users *fakeUserSource, authorization string) (*httptest.ResponseRecorder, *Principal) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var captured *Principal
	h := Auth(testSecret, users)(func(c echo.Context) error {
		if p, ok := CurrentPrincipal(c); ok {
			captured = &p
		}
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec, captured
}

func TestAuthMissingBearer(t *testing.T) {
	rec, p := runAuth(t, &fakeUserSource{}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, p)
}

func TestAuthInvalidToken(t *testing.T) {
	rec, p := runAuth(t, &fakeUserSource{}, "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, p)
}

func TestAuthDeletedUserIsNotFound(t *testing.T) {
	// A verified token whose subject no longer exists is a distinct
	// signal from an invalid token.
	tok, err := utils.NewAccessToken(testSecret, 7, 60)
	require.NoError(t, err)

	rec, p := runAuth(t, &fakeUserSource{}, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Nil(t, p)
}

func TestAuthLoadsPrincipalFromStorage(t *testing.T) {
	users := &fakeUserSource{users: map[uint64]model.User{
		7: {ID: 7, Name: "ada", Rank: model.RankMod, IsValidated: true},
	}}
	tok, err := utils.NewAccessToken(testSecret, 7, 60)
	require.NoError(t, err)

	rec, p := runAuth(t, users, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, p)
	assert.Equal(t, uint64(7), p.ID)
	assert.Equal(t, model.RankMod, p.Rank)
	assert.True(t, p.IsValidated)
}

func runGate(t *testing.T, gate echo.MiddlewareFunc, p *Principal) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if p != nil {
		SetPrincipal(c, *p)
	}
	h := gate(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	require.NoError(t, h(c))
	return rec
}

func TestRequireAdmin(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, runGate(t, RequireAdmin(), nil).Code)
	assert.Equal(t, http.StatusForbidden,
		runGate(t, RequireAdmin(), &Principal{ID: 1, Rank: model.RankMod}).Code)
	assert.Equal(t, http.StatusOK,
		runGate(t, RequireAdmin(), &Principal{ID: 1, Rank: model.RankAdmin}).Code)
}

func TestRequireValidated(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, runGate(t, RequireValidated(), nil).Code)
	assert.Equal(t, http.StatusForbidden,
		runGate(t, RequireValidated(), &Principal{ID: 1, Rank: model.RankGuest, IsValidated: false}).Code)
	assert.Equal(t, http.StatusOK,
		runGate(t, RequireValidated(), &Principal{ID: 1, Rank: model.RankGuest, IsValidated: true}).Code)
}
