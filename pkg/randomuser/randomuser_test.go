package randomuser_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"userdir/internal/apperrors"
	"userdir/pkg/randomuser"
)

const wellFormedBody = `{
	"results": [
		{
			"name": {"title": "Ms", "first": "Jane", "last": "Doe"},
			"email": "jane.doe@example.com",
			"gender": "Female",
			"picture": {"large": "https://example.com/large/1.jpg", "thumbnail": "https://example.com/thumb/1.jpg"},
			"login": {"uuid": "ignored", "username": "jane_doe"},
			"location": {"country": "United States", "state": "California", "city": "Los Angeles", "postcode": 90001}
		},
		{
			"name": {"first": "Jim", "last": "Beam"},
			"email": "jim.beam@example.com",
			"gender": "Male",
			"picture": {"large": "https://example.com/large/2.jpg"},
			"login": {"username": "jim_beam"},
			"location": {"country": "United States", "state": "Kentucky", "city": "Clermont"}
		}
	],
	"info": {"seed": "abc", "results": 2, "page": 1}
}`

func TestClient_Fetch_MapsResults(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(wellFormedBody))
	}))
	defer server.Close()

	client := randomuser.NewClient(randomuser.Config{BaseURL: server.URL})
	users, err := client.Fetch(2)

	assert.NoError(t, err)
	assert.Equal(t, "results=2", gotQuery)
	assert.Len(t, users, 2)

	// Given and family names concatenate; the large picture URL and the
	// rest copy verbatim. Unknown remote fields are ignored.
	jane := users[0]
	assert.Equal(t, "jane_doe", jane.Username)
	assert.Equal(t, "Jane Doe", jane.Name)
	assert.Equal(t, "jane.doe@example.com", jane.Email)
	assert.Equal(t, "Female", jane.Gender)
	assert.Equal(t, "https://example.com/large/1.jpg", jane.Picture)
	assert.Equal(t, "United States", jane.Country)
	assert.Equal(t, "California", jane.State)
	assert.Equal(t, "Los Angeles", jane.City)

	assert.Equal(t, "jim_beam", users[1].Username)
	assert.Zero(t, users[1].ID)
}

func TestClient_Fetch_EmptyResultsIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer server.Close()

	client := randomuser.NewClient(randomuser.Config{BaseURL: server.URL})
	users, err := client.Fetch(0)

	assert.NoError(t, err)
	assert.Empty(t, users)
}

func TestClient_Fetch_MissingResultsField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"info": {"seed": "abc"}}`))
	}))
	defer server.Close()

	client := randomuser.NewClient(randomuser.Config{BaseURL: server.URL})
	users, err := client.Fetch(3)

	assert.Error(t, err)
	assert.Nil(t, users)
	assert.Equal(t, apperrors.UpstreamUnavailable, apperrors.KindOf(err))
}

func TestClient_Fetch_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": [`))
	}))
	defer server.Close()

	client := randomuser.NewClient(randomuser.Config{BaseURL: server.URL})
	_, err := client.Fetch(3)

	assert.Error(t, err)
	assert.Equal(t, apperrors.UpstreamUnavailable, apperrors.KindOf(err))
}

func TestClient_Fetch_RemoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := randomuser.NewClient(randomuser.Config{BaseURL: server.URL})
	_, err := client.Fetch(3)

	assert.Error(t, err)
	assert.Equal(t, apperrors.UpstreamUnavailable, apperrors.KindOf(err))
}

func TestClient_Fetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := randomuser.NewClient(randomuser.Config{
		BaseURL: server.URL,
		Timeout: 50 * time.Millisecond,
	})
	_, err := client.Fetch(3)

	// A timeout surfaces as UpstreamUnavailable, never as a raw
	// transport error.
	assert.Error(t, err)
	assert.Equal(t, apperrors.UpstreamUnavailable, apperrors.KindOf(err))
}

func TestClient_Fetch_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing is listening anymore

	client := randomuser.NewClient(randomuser.Config{BaseURL: server.URL})
	_, err := client.Fetch(1)

	assert.Error(t, err)
	assert.Equal(t, apperrors.UpstreamUnavailable, apperrors.KindOf(err))
}
