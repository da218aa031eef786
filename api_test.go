package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIClientAttachesBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"u1","name":"Jamie","connected":true}`))
	}))
	defer server.Close()

	client := newAPIClient(server.URL, func() string { return "tok-42" })
	info, err := client.Me(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-42", gotAuth)
	assert.Equal(t, "Jamie", info.Name)
	assert.True(t, info.Connected)
}

func TestAPIClientOmitsEmptyToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := newAPIClient(server.URL, func() string { return "  " })
	_, err := client.Posts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestAPIErrorCarriesStatusPrefix(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "session expired", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newAPIClient(server.URL, nil)
	_, err := client.Approved(context.Background())
	require.Error(t, err)

	assert.True(t, strings.HasPrefix(err.Error(), "401"), "error string starts with the status code, got %q", err.Error())
	assert.Contains(t, err.Error(), "session expired")

	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestIsUnauthorized(t *testing.T) {
	assert.True(t, isUnauthorized(&apiError{Status: http.StatusUnauthorized}))
	assert.False(t, isUnauthorized(&apiError{Status: http.StatusInternalServerError}))
	assert.True(t, isUnauthorized(errors.New("401 unauthorized")), "string prefix fallback")
	assert.False(t, isUnauthorized(errors.New("connection refused")))
	assert.False(t, isUnauthorized(nil))
}

func TestPublishApprovedRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/approved/publish", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{"successful":2,"results":[{"id":"1","success":true},{"id":"2","success":true},{"id":"3","success":false,"error":"rate limited"}]}`))
	}))
	defer server.Close()

	client := newAPIClient(server.URL, nil)
	resp, err := client.PublishApproved(context.Background(), publishRequest{
		IDs:        []string{"1", "2", "3"},
		Target:     targetMember,
		PublishNow: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Successful)
	require.Len(t, resp.Results, 3)
	assert.Equal(t, "rate limited", resp.Results[2].Error)
}

func TestLoginURL(t *testing.T) {
	client := newAPIClient("http://localhost:8080/", nil)
	assert.Equal(t, "http://localhost:8080/auth/linkedin/login", client.LoginURL())
}
