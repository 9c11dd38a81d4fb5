package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/models"
	"storefront/internal/token"
)

type serverFixture struct {
	handler http.Handler
	tokens  *token.Service
	mock    sqlmock.Sqlmock
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()

	rawDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { rawDB.Close() })
	db := sqlx.NewDb(rawDB, "postgres")

	tokens, err := token.NewService([]byte("test-secret"), time.Hour)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Server.Port = ":0"

	accessLog := logrus.New()
	accessLog.SetOutput(io.Discard)

	srv := NewServer(db, cfg, tokens, nil, zap.NewNop(), accessLog)
	return &serverFixture{handler: srv.Router(), tokens: tokens, mock: mock}
}

func (f *serverFixture) do(t *testing.T, method, path, authorization, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *serverFixture) bearer(t *testing.T, p models.Principal) string {
	t.Helper()
	signed, err := f.tokens.Issue(p)
	require.NoError(t, err)
	return "Bearer " + signed
}

func TestHealthCheck(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(t, http.MethodGet, "/api/test", "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success": true, "message": "Backend server is running!"}`, rec.Body.String())
}

func TestProtectedRouteWithoutTokenNeverTouchesStore(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(t, http.MethodPost, "/api/orders", "", `{"items": [], "total": 10}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	// No sqlmock expectations were registered: any query would fail the test.
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestAdminDeleteRequiresAdminRole(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(t, http.MethodDelete, "/api/admin/products/4",
		f.bearer(t, models.Principal{ID: 2, Email: "a@x.com", Role: models.RoleUser}), "")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"success": false, "message": "Admin access required"}`, rec.Body.String())
	// The delete must be rejected before any store access.
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestAdminDeleteSucceedsForAdmin(t *testing.T) {
	f := newServerFixture(t)

	f.mock.ExpectExec(`DELETE FROM products WHERE id`).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := f.do(t, http.MethodDelete, "/api/admin/products/4",
		f.bearer(t, models.Principal{ID: 1, Email: "root@x.com", Role: models.RoleAdmin}), "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success": true, "message": "Product deleted successfully"}`, rec.Body.String())
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestWronglySignedTokenIsForbidden(t *testing.T) {
	f := newServerFixture(t)

	other, err := token.NewService([]byte("other-secret"), time.Hour)
	require.NoError(t, err)
	signed, err := other.Issue(models.Principal{ID: 1, Email: "a@x.com", Role: models.RoleAdmin})
	require.NoError(t, err)

	rec := f.do(t, http.MethodGet, "/api/admin/users", "Bearer "+signed, "")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"success": false, "message": "Invalid token"}`, rec.Body.String())
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPublicCatalogNeedsNoToken(t *testing.T) {
	f := newServerFixture(t)

	rows := sqlmock.NewRows([]string{"id", "name", "description", "price", "image", "category", "stock", "created_at"}).
		AddRow(int64(1), "Mug", "Ceramic mug", 9.99, "mug.png", "kitchen", 12, time.Now())
	f.mock.ExpectQuery(`SELECT (.+) FROM products ORDER BY created_at DESC`).WillReturnRows(rows)

	rec := f.do(t, http.MethodGet, "/api/products", "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Mug"`)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreateOrderAttributedToPrincipal(t *testing.T) {
	f := newServerFixture(t)

	f.mock.ExpectQuery(`INSERT INTO orders`).
		WithArgs(sqlmock.AnyArg(), int64(7), []byte(`[{"product_id":1,"quantity":2}]`), 19.98, models.OrderStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), time.Now()))

	rec := f.do(t, http.MethodPost, "/api/orders",
		f.bearer(t, models.Principal{ID: 7, Email: "a@x.com", Role: models.RoleUser}),
		`{"items": [{"product_id":1,"quantity":2}], "total": 19.98}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"pending"`)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}
