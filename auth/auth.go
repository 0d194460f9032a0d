package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog"
)

type ctxKey string

const (
	adminIDCtxKey = ctxKey("adminID")
	issuer        = "go-pos"
)

var (
	ErrInvalidToken = errors.New("invalid_token")
	ErrExpiredToken = errors.New("expired_token")
)

// AdminVerifier confirms that a token's admin still exists. Returning false
// rejects the request even if the signature is valid; an error means the
// answer is unknown and the request fails with 500.
type AdminVerifier func(ctx context.Context, adminID uint) (bool, error)

// Claims is the signed session payload. Subject carries the admin id.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// AdminID parses the subject claim.
func (c *Claims) AdminID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}

// TokenManager issues and verifies HS256 session tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager returns a manager signing with secret. A non-positive ttl
// defaults to 12 hours.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for the admin and returns it with its expiry.
func (m *TokenManager) Issue(adminID uint, email string) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(m.ttl)
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatUint(uint64(adminID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies signature, algorithm, issuer and expiry.
func (m *TokenManager) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}}
	tok, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !tok.Valid || claims.Issuer != issuer {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// WithAdminID stores admin id in context.
func WithAdminID(ctx context.Context, adminID uint) context.Context {
	return context.WithValue(ctx, adminIDCtxKey, adminID)
}

// AdminIDFromContext extracts admin id.
func AdminIDFromContext(ctx context.Context) (uint, bool) {
	v := ctx.Value(adminIDCtxKey)
	if v == nil {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// BearerToken returns the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireAuth verifies the bearer token on every request and answers 401 JSON
// when it is missing, invalid, expired, or names an admin the verifier
// rejects. Verifier errors are logged and answered with 500.
func (m *TokenManager) RequireAuth(verify AdminVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := BearerToken(r)
			if !ok {
				unauthorized(w)
				return
			}
			claims, err := m.Parse(raw)
			if err != nil {
				unauthorized(w)
				return
			}
			id, err := claims.AdminID()
			if err != nil {
				unauthorized(w)
				return
			}
			if verify != nil {
				ok, err := verify(r.Context(), id)
				if err != nil {
					zerolog.Ctx(r.Context()).Error().Err(err).Uint("admin_id", id).Msg("admin verification failed")
					internalError(w)
					return
				}
				if !ok {
					unauthorized(w)
					return
				}
			}
			next.ServeHTTP(w, r.WithContext(WithAdminID(r.Context(), id)))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="go-pos"`)
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprint(w, `{"error":"unauthorized"}`)
}

func internalError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	fmt.Fprint(w, `{"error":"internal_error"}`)
}
