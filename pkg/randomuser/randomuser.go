// Package randomuser is the client for the remote random-user
// generator. It is the single translation boundary between the remote
// protocol and the domain error taxonomy: every transport, decoding,
// or shape fault comes back as UpstreamUnavailable.
package randomuser

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"userdir/internal/apperrors"
	"userdir/internal/models"
)

// DefaultBaseURL is the public random-user generator endpoint.
const DefaultBaseURL = "https://randomuser.me/api/"

// DefaultTimeout bounds the remote call.
const DefaultTimeout = 5 * time.Second

// Config holds the generator endpoint details.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client fetches synthetic users from the remote generator.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a generator client. Zero-value config fields fall
// back to the public endpoint and the 5-second timeout.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// response mirrors the remote JSON body. Unknown fields are ignored by
// the decoder. A nil Results slice distinguishes an absent results
// field from an empty one.
type response struct {
	Results []result `json:"results"`
}

type result struct {
	Name     name     `json:"name"`
	Email    string   `json:"email"`
	Gender   string   `json:"gender"`
	Picture  picture  `json:"picture"`
	Login    login    `json:"login"`
	Location location `json:"location"`
}

type name struct {
	First string `json:"first"`
	Last  string `json:"last"`
}

type picture struct {
	Large string `json:"large"`
}

type login struct {
	Username string `json:"username"`
}

type location struct {
	Country string `json:"country"`
	State   string `json:"state"`
	City    string `json:"city"`
}

// Fetch requests count synthetic users and maps them into domain
// records. The count is passed through to the remote service as-is;
// callers are expected to reject non-positive values before reaching
// this boundary.
func (c *Client) Fetch(count int) ([]models.User, error) {
	log.Printf("Requesting %d random users from external API", count)

	resp, err := c.httpClient.Get(fmt.Sprintf("%s?results=%d", c.baseURL, count))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.UpstreamUnavailable, "Failed to fetch random users", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.New(apperrors.UpstreamUnavailable, fmt.Sprintf("Random User API returned status %d", resp.StatusCode))
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, apperrors.Wrap(apperrors.UpstreamUnavailable, "Failed to fetch random users", err)
	}
	if body.Results == nil {
		log.Println("Received empty response from API")
		return nil, apperrors.New(apperrors.UpstreamUnavailable, "Empty response from Random User API")
	}

	users := make([]models.User, 0, len(body.Results))
	for _, r := range body.Results {
		users = append(users, models.User{
			Username: r.Login.Username,
			Name:     r.Name.First + " " + r.Name.Last,
			Email:    r.Email,
			Gender:   r.Gender,
			Picture:  r.Picture.Large,
			Country:  r.Location.Country,
			State:    r.Location.State,
			City:     r.Location.City,
		})
	}

	log.Printf("Successfully converted API response into %d users", len(users))
	return users, nil
}
