package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"rollcall/internal/account"
)

const accountKey = "account"

// AccountSource resolves the account behind a verified session token.
type AccountSource interface {
	GetByID(ctx context.Context, id int64) (*account.Account, error)
}

// Guard enforces a valid bearer session token on every protected route and
// resolves the calling account into the request context.
func Guard(codec *Codec, accounts AccountSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token", "code": "unauthorized"})
			return
		}
		tokenStr := strings.TrimSpace(authz[len("bearer "):])
		subject, err := codec.Verify(tokenStr)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, ErrTokenExpired) {
				msg = "token has expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg, "code": "unauthorized"})
			return
		}
		acct, err := accounts.GetByID(c.Request.Context(), subject)
		if err != nil {
			if errors.Is(err, account.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "account not found", "code": "not_found"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "storage failure", "code": "storage_failure"})
			return
		}
		c.Set(accountKey, acct)
		c.Next()
	}
}

// RequireRole gates a route on the resolved account's role. Must run after Guard.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		acct := CurrentAccount(c)
		if acct == nil || acct.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role", "code": "forbidden"})
			return
		}
		c.Next()
	}
}

// CurrentAccount returns the account resolved by Guard, or nil.
func CurrentAccount(c *gin.Context) *account.Account {
	v, ok := c.Get(accountKey)
	if !ok {
		return nil
	}
	acct, _ := v.(*account.Account)
	return acct
}
