package authclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/refresh", r.URL.Path)

		rc, err := r.Cookie("refreshToken")
		if err != nil || rc.Value != "good-refresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"new-access","refresh_token":"new-refresh","access_exp":100,"refresh_exp":200}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/")

	res, err := c.RefreshTokens(context.Background(), "good-refresh", "old-access")
	require.NoError(t, err)
	assert.Equal(t, "new-access", res.AccessToken)
	assert.Equal(t, "new-refresh", res.RefreshToken)
	assert.Equal(t, int64(100), res.AccessExp)

	_, err = c.RefreshTokens(context.Background(), "revoked", "old-access")
	assert.ErrorIs(t, err, ErrRejected)
}

func TestRefreshTokens_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).RefreshTokens(context.Background(), "r", "a")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRejected)
}
