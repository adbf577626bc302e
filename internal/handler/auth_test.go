package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/soundrop/soundrop/internal/config"
	"github.com/soundrop/soundrop/internal/repository"
	"github.com/soundrop/soundrop/internal/utils"
)

func newAuthHandler(t *testing.T) (*AuthHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	cfg := config.Config{JWTSecret: "test-secret", TokenTTLMin: 60, BcryptCost: bcrypt.MinCost}
	return NewAuthHandler(cfg, repository.NewUserRepo(db)), mock
}

func postJSON(h echo.HandlerFunc, body string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	_ = h(e.NewContext(req, rec))
	return rec
}

var userSelectCols = []string{"id", "email", "name", "password_hash", "rank", "is_validated", "created_at"}

func TestRegisterMissingFields(t *testing.T) {
	h, mock := newAuthHandler(t)
	rec := postJSON(h.Register, `{"email":"","password":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterCreatesGuest(t *testing.T) {
	h, mock := newAuthHandler(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (email, name, password_hash, `rank`) VALUES (?,?,?,'guest')")).
		WithArgs("ada@example.com", "Ada", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=?")).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows(userSelectCols).
			AddRow(7, "ada@example.com", "Ada", "hash", "guest", false, time.Now()))

	rec := postJSON(h.Register, `{"email":"Ada@Example.com","name":"Ada","password":"pw"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"token":`)
	assert.Contains(t, body, `"rank":"guest"`)
	assert.Contains(t, body, `"is_validated":false`)
	assert.NotContains(t, body, "password_hash")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h, mock := newAuthHandler(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("ada@example.com", "Ada", sqlmock.AnyArg()).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	rec := postJSON(h.Register, `{"email":"ada@example.com","name":"Ada","password":"pw"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Unknown email and wrong password must be indistinguishable to the caller.
func TestLoginFailuresLookIdentical(t *testing.T) {
	h, mock := newAuthHandler(t)

	emailSelect := regexp.QuoteMeta("FROM users WHERE email=?")
	mock.ExpectQuery(emailSelect).
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows(userSelectCols))

	hash, err := utils.HashPassword("right", bcrypt.MinCost)
	require.NoError(t, err)
	mock.ExpectQuery(emailSelect).
		WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows(userSelectCols).
			AddRow(7, "ada@example.com", "Ada", hash, "guest", true, time.Now()))

	unknown := postJSON(h.Login, `{"email":"nobody@example.com","password":"x"}`)
	wrongPass := postJSON(h.Login, `{"email":"ada@example.com","password":"wrong"}`)

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	assert.Equal(t, unknown.Body.String(), wrongPass.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginReturnsVerifiableToken(t *testing.T) {
	h, mock := newAuthHandler(t)

	hash, err := utils.HashPassword("pw", bcrypt.MinCost)
	require.NoError(t, err)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=?")).
		WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows(userSelectCols).
			AddRow(7, "ada@example.com", "Ada", hash, "mod", true, time.Now()))

	rec := postJSON(h.Login, `{"email":"ada@example.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	uid, err := utils.VerifyAccessToken("test-secret", resp.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), uid)
	assert.NoError(t, mock.ExpectationsWereMet())
}
