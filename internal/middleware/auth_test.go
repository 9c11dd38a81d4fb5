package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/token"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type gateFixture struct {
	router        *gin.Engine
	tokens        *token.Service
	handlerCalled *bool
}

func newGateFixture(t *testing.T, extra ...gin.HandlerFunc) *gateFixture {
	t.Helper()

	tokens, err := token.NewService([]byte("test-secret"), time.Hour)
	require.NoError(t, err)

	called := false
	router := gin.New()
	chain := append([]gin.HandlerFunc{Authenticate(tokens, zap.NewNop())}, extra...)
	chain = append(chain, func(c *gin.Context) {
		called = true
		principal, ok := PrincipalFromContext(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"success": true, "id": principal.ID})
	})
	router.GET("/protected", chain...)

	return &gateFixture{router: router, tokens: tokens, handlerCalled: &called}
}

func (f *gateFixture) request(t *testing.T, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *gateFixture) issue(t *testing.T, p models.Principal) string {
	t.Helper()
	signed, err := f.tokens.Issue(p)
	require.NoError(t, err)
	return signed
}

func TestAuthenticateMissingHeader(t *testing.T) {
	f := newGateFixture(t)

	rec := f.request(t, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success": false, "message": "Access token required"}`, rec.Body.String())
	assert.False(t, *f.handlerCalled, "handler must not run without a token")
}

func TestAuthenticateRejectsNonBearerSchemes(t *testing.T) {
	f := newGateFixture(t)
	valid := f.issue(t, models.Principal{ID: 1, Email: "a@x.com", Role: models.RoleUser})

	for _, header := range []string{
		"Basic dXNlcjpwYXNz",
		"bearer " + valid, // scheme is case-sensitive
		"Bearer",
		"Bearer ",
		valid, // bare token without scheme
	} {
		rec := f.request(t, header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
	assert.False(t, *f.handlerCalled)
}

func TestAuthenticateInvalidToken(t *testing.T) {
	f := newGateFixture(t)

	other, err := token.NewService([]byte("other-secret"), time.Hour)
	require.NoError(t, err)
	wrongSignature, err := other.Issue(models.Principal{ID: 1, Email: "a@x.com", Role: models.RoleUser})
	require.NoError(t, err)

	for _, tok := range []string{"garbage", wrongSignature} {
		rec := f.request(t, "Bearer "+tok)
		assert.Equal(t, http.StatusForbidden, rec.Code, "token %q", tok)
		assert.JSONEq(t, `{"success": false, "message": "Invalid token"}`, rec.Body.String())
	}
	assert.False(t, *f.handlerCalled)
}

func TestAuthenticateValidToken(t *testing.T) {
	f := newGateFixture(t)
	signed := f.issue(t, models.Principal{ID: 7, Email: "a@x.com", Role: models.RoleUser})

	rec := f.request(t, "Bearer "+signed)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, *f.handlerCalled)
}

func TestRequireRoleRejectsNonAdmin(t *testing.T) {
	f := newGateFixture(t, RequireRole(models.RoleAdmin))
	signed := f.issue(t, models.Principal{ID: 7, Email: "a@x.com", Role: models.RoleUser})

	rec := f.request(t, "Bearer "+signed)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"success": false, "message": "Admin access required"}`, rec.Body.String())
	assert.False(t, *f.handlerCalled)
}

func TestRequireRoleAllowsAdmin(t *testing.T) {
	f := newGateFixture(t, RequireRole(models.RoleAdmin))
	signed := f.issue(t, models.Principal{ID: 7, Email: "root@x.com", Role: models.RoleAdmin})

	rec := f.request(t, "Bearer "+signed)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, *f.handlerCalled)
}

func TestRequireRoleWithoutAuthenticate(t *testing.T) {
	router := gin.New()
	called := false
	router.GET("/admin", RequireRole(models.RoleAdmin), func(c *gin.Context) {
		called = true
	})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, called)
}

func TestPrincipalFromContextMissing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := PrincipalFromContext(c)
	assert.False(t, ok)
}
