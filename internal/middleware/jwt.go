package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses
    "strconv"  // parsing numeric claims
    "strings"  // string utilities for prefix checking and trimming

    "github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
    "github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// injects the token's subject, email and role claims into the request
// context.  Tokens are issued by the external auth service; this service
// only verifies them with the shared secret, it never issues or rotates
// tokens itself.  Handlers access the authenticated identity via
// `c.Get("user_id")`, `c.Get("email")` and `c.Get("role")`.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            // A valid header starts with "Bearer " followed by the JWT.
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            // Parse the token using the HS256 signing method and our secret.
            // The callback supplies the signing key and ensures that the
            // algorithm matches what we expect; other methods are rejected.
            tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
                if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
                    return nil, echo.ErrUnauthorized
                }
                return []byte(secret), nil
            })
            if err != nil || !tok.Valid {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }

            claims, ok := tok.Claims.(jwt.MapClaims)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
            }

            // The subject carries the numeric user id.  Auth services emit
            // it either as a string or a JSON number, so accept both.
            userID, ok := subjectID(claims)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid subject"})
            }
            c.Set("user_id", userID)
            if email, ok := claims["email"].(string); ok {
                c.Set("email", email)
            }
            if role, ok := claims["role"].(string); ok {
                c.Set("role", role)
            }
            c.Set("user", tok)
            return next(c)
        }
    }
}

// subjectID extracts the numeric user id from the sub or user_id claim.
func subjectID(claims jwt.MapClaims) (uint64, bool) {
    for _, key := range []string{"sub", "user_id"} {
        switch v := claims[key].(type) {
        case string:
            if id, err := strconv.ParseUint(v, 10, 64); err == nil && id > 0 {
                return id, true
            }
        case float64:
            if v > 0 {
                return uint64(v), true
            }
        }
    }
    return 0, false
}
