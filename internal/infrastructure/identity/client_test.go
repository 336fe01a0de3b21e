package identity

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExchange_MockCode(t *testing.T) {
	c := &Client{}
	sub, email, err := c.Exchange("mock_sub-42")
	require.NoError(t, err)
	assert.Equal(t, "sub-42", sub)
	assert.Empty(t, email)
}

func TestExchange_Provider(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/userinfo", r.URL.Path)
		assert.Equal(t, "code-1", r.URL.Query().Get("code"))
		assert.Equal(t, "key-1", r.Header.Get("apikey"))
		w.Write([]byte(`{"sub":"sub-1","email":"admin@madhughor.com"}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, APIKey: "key-1"}
	sub, email, err := c.Exchange("code-1")
	require.NoError(t, err)
	assert.Equal(t, "sub-1", sub)
	assert.Equal(t, "admin@madhughor.com", email)
}

func TestExchange_ProviderError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid code"}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL}
	_, _, err := c.Exchange("bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid code")
}
