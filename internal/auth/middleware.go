package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Middleware returns a gin handler that rejects requests without a valid
// bearer token and stores the caller's Account on the request context.
func Middleware(cfg Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, err := parseRequest(c.Request, cfg)
		if err != nil {
			status := http.StatusUnauthorized
			msg := ErrInvalidToken.Error()
			if errors.Is(err, ErrMissingToken) {
				msg = ErrMissingToken.Error()
			}
			c.AbortWithStatusJSON(status, gin.H{"error": msg})
			return
		}
		c.Request = c.Request.WithContext(WithAccount(c.Request.Context(), account))
		c.Next()
	}
}

func parseRequest(r *http.Request, cfg Config) (Account, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return Account{}, ErrMissingToken
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return Account{}, ErrInvalidToken
	}
	return Parse(header[len("Bearer "):], cfg)
}
