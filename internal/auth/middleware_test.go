package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollcall/internal/account"
)

type fakeAccounts struct {
	accounts map[int64]*account.Account
}

func (f *fakeAccounts) GetByID(_ context.Context, id int64) (*account.Account, error) {
	if a, ok := f.accounts[id]; ok {
		return a, nil
	}
	return nil, account.ErrNotFound
}

func guardRouter(codec *Codec, accounts AccountSource, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	grp := r.Group("/", Guard(codec, accounts))
	if role != "" {
		grp = grp.Group("", RequireRole(role))
	}
	grp.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": CurrentAccount(c).ID})
	})
	return r
}

func doGet(r *gin.Engine, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGuardMissingToken(t *testing.T) {
	r := guardRouter(NewCodec("k", "rollcall"), &fakeAccounts{}, "")
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "Token abc").Code)
}

func TestGuardInvalidAndExpiredToken(t *testing.T) {
	codec := NewCodec("k", "rollcall")
	r := guardRouter(codec, &fakeAccounts{}, "")

	assert.Equal(t, http.StatusUnauthorized, doGet(r, "Bearer not-a-token").Code)

	expired, _, err := codec.Issue(1, -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "Bearer "+expired).Code)
}

func TestGuardResolvesAccount(t *testing.T) {
	codec := NewCodec("k", "rollcall")
	accounts := &fakeAccounts{accounts: map[int64]*account.Account{
		9: {ID: 9, Role: account.RoleStudent},
	}}
	r := guardRouter(codec, accounts, "")

	token, _, err := codec.Issue(9, time.Hour)
	require.NoError(t, err)

	w := doGet(r, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":9}`, w.Body.String())
}

func TestGuardAccountGone(t *testing.T) {
	codec := NewCodec("k", "rollcall")
	r := guardRouter(codec, &fakeAccounts{}, "")

	token, _, err := codec.Issue(404, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, doGet(r, "Bearer "+token).Code)
}

func TestRequireRole(t *testing.T) {
	codec := NewCodec("k", "rollcall")
	accounts := &fakeAccounts{accounts: map[int64]*account.Account{
		1: {ID: 1, Role: account.RoleStudent},
		2: {ID: 2, Role: account.RoleTeacher},
	}}
	r := guardRouter(codec, accounts, account.RoleTeacher)

	studentToken, _, err := codec.Issue(1, time.Hour)
	require.NoError(t, err)
	teacherToken, _, err := codec.Issue(2, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, doGet(r, "Bearer "+studentToken).Code)
	assert.Equal(t, http.StatusOK, doGet(r, "Bearer "+teacherToken).Code)
}
