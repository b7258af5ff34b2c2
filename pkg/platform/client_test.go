package platform

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cicderrors "github.com/cicd-ai-toolkit/ci-changelog/pkg/errors"
)

type failingHTTPClient struct{ err error }

func (f failingHTTPClient) Do(*http.Request) (*http.Response, error) { return nil, f.err }

func TestClientGetAppliesAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "user" || pass != "token" {
			t.Errorf("Expected basic auth user:token, got %q:%q", user, pass)
		}
		if r.Header.Get("PRIVATE-TOKEN") != "gl" {
			t.Errorf("Expected PRIVATE-TOKEN header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c := NewClient(0, nil)
	resp, err := c.Get(context.Background(), server.URL, Auth{Username: "user", Password: "token", PrivateToken: "gl"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.ContentType)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Body))
}

func TestClientGetOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewClient(0, nil).GetOK(context.Background(), server.URL, Auth{})
	require.Error(t, err)
	assert.True(t, cicderrors.IsType(err, cicderrors.ErrUpstreamStatus))
	assert.True(t, cicderrors.IsRecoverable(err))
}

func TestClientTransportError(t *testing.T) {
	c := NewClientWithHTTP(failingHTTPClient{err: errors.New("connection refused")}, nil)

	_, err := c.Get(context.Background(), "http://ci.example.com/api/json", Auth{})
	require.Error(t, err)
	assert.True(t, cicderrors.IsType(err, cicderrors.ErrTransport))
	assert.False(t, errors.Is(err, ErrMalformedURL))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestClientMalformedURL(t *testing.T) {
	c := NewClientWithHTTP(failingHTTPClient{err: errors.New("must not be called")}, nil)

	for _, raw := range []string{"", "ftp://ci.example.com", "http://", "job/1/api/json"} {
		_, err := c.Get(context.Background(), raw, Auth{})
		require.Error(t, err, raw)
		assert.True(t, errors.Is(err, ErrMalformedURL), raw)
		assert.True(t, cicderrors.IsType(err, cicderrors.ErrTransport), raw)
	}
}

func TestAuthIsZero(t *testing.T) {
	assert.True(t, Auth{}.IsZero())
	assert.False(t, Auth{PrivateToken: "x"}.IsZero())
}
