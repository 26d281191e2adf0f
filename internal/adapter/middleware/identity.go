package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"loanportal/internal/domain/applicant"
)

const identityKey = "applicant.identity"

// Claims carry the account id in the standard "sub" claim.
type Claims struct {
	jwt.RegisteredClaims
}

// Identity resolves the caller from an optional "Authorization: Bearer" token.
// Requests without the header proceed as guests; a bad token is rejected.
func Identity(secret, issuer string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
			if h == "" {
				c.Set(identityKey, applicant.Guest())
				return next(c)
			}
			if !strings.HasPrefix(h, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, map[string]any{"success": false, "error": "unsupported authorization scheme"})
			}
			accountID, err := parseAccountToken(strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")), secret, issuer)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]any{"success": false, "error": "invalid or expired token"})
			}
			c.Set(identityKey, applicant.Account(accountID))
			return next(c)
		}
	}
}

// IdentityFrom returns the identity stored by Identity, or a guest.
func IdentityFrom(c echo.Context) applicant.Identity {
	if id, ok := c.Get(identityKey).(applicant.Identity); ok {
		return id
	}
	return applicant.Guest()
}

func parseAccountToken(raw, secret, issuer string) (uint64, error) {
	if secret == "" {
		return 0, errors.New("token verification is not configured")
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	var claims Claims
	if _, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, opts...); err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid subject %q", claims.Subject)
	}
	return id, nil
}

// subjectKey names the caller in idempotency keys.
func subjectKey(id applicant.Identity) string {
	if !id.Authenticated {
		return "guest"
	}
	return "acct-" + strconv.FormatUint(id.AccountID, 10)
}
