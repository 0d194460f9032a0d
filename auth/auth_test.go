package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_IssueAndParse(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	tok, exp, err := m.Issue(42, "admin@fonzi.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.Parse(tok)
	require.NoError(t, err)
	id, err := claims.AdminID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
	assert.Equal(t, "admin@fonzi.com", claims.Email)
}

func TestTokenManager_RejectsTamperedAndForeignTokens(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	tok, _, err := m.Issue(1, "a@b.c")
	require.NoError(t, err)

	_, err = m.Parse(tok + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewTokenManager("other-secret", time.Hour)
	_, err = other.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.Parse("fake-token-1-1700000000")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Expired(t *testing.T) {
	m := NewTokenManager("test-secret", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, _, err := m.Issue(1, "a@b.c")
	require.NoError(t, err)

	_, err = m.Parse(tok)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestRequireAuth(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	tok, _, err := m.Issue(7, "a@b.c")
	require.NoError(t, err)

	var seen uint
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = AdminIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	allow := func(context.Context, uint) (bool, error) { return true, nil }
	deny := func(context.Context, uint) (bool, error) { return false, nil }
	broken := func(context.Context, uint) (bool, error) { return false, errors.New("connection refused") }

	tests := []struct {
		name   string
		header string
		verify AdminVerifier
		want   int
	}{
		{"valid", "Bearer " + tok, allow, http.StatusNoContent},
		{"lowercase scheme", "bearer " + tok, allow, http.StatusNoContent},
		{"missing", "", allow, http.StatusUnauthorized},
		{"wrong scheme", "Basic " + tok, allow, http.StatusUnauthorized},
		{"garbage", "Bearer nope", allow, http.StatusUnauthorized},
		{"admin gone", "Bearer " + tok, deny, http.StatusUnauthorized},
		{"verifier down", "Bearer " + tok, broken, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = 0
			r := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			m.RequireAuth(tt.verify)(next).ServeHTTP(w, r)
			assert.Equal(t, tt.want, w.Code)
			switch tt.want {
			case http.StatusNoContent:
				assert.Equal(t, uint(7), seen)
			case http.StatusInternalServerError:
				assert.Zero(t, seen)
				assert.JSONEq(t, `{"error":"internal_error"}`, w.Body.String())
			default:
				assert.JSONEq(t, `{"error":"unauthorized"}`, w.Body.String())
			}
		})
	}
}

func TestCachedVerifier(t *testing.T) {
	calls := 0
	exists := true
	var failWith error
	inner := func(context.Context, uint) (bool, error) {
		calls++
		return exists, failWith
	}
	cv := NewCachedVerifier(inner, time.Minute)
	ctx := context.Background()

	verify := func(id uint) bool {
		t.Helper()
		ok, err := cv.Verify(ctx, id)
		require.NoError(t, err)
		return ok
	}

	assert.True(t, verify(1))
	assert.True(t, verify(1))
	assert.Equal(t, 1, calls, "second call should hit the cache")

	exists = false
	cv.Invalidate(1)
	assert.False(t, verify(1))
	assert.False(t, verify(1))
	assert.Equal(t, 3, calls, "rejections are not cached")

	exists = true
	now := time.Now()
	cv.now = func() time.Time { return now }
	assert.True(t, verify(2))
	cv.now = func() time.Time { return now.Add(2 * time.Minute) }
	assert.True(t, verify(2))
	assert.Equal(t, 5, calls, "expired entry should be refreshed")

	failWith = errors.New("connection refused")
	_, err := cv.Verify(ctx, 3)
	require.Error(t, err)
	failWith = nil
	assert.True(t, verify(3))
	assert.Equal(t, 7, calls, "errors are not cached")
}
