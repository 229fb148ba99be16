// Package apiclient is a typed HTTP client for the external quiz service.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pavelanni/quizapp/internal/model"
)

// DefaultBaseURL is the service address used when none is configured.
const DefaultBaseURL = "http://localhost:5000/api"

var ErrServiceUnavailable = errors.New("quiz service unavailable")

// TokenSource supplies the bearer token for outbound requests.
// An empty token means no Authorization header is sent.
type TokenSource interface {
	Token() string
}

// Client talks to the quiz service. Every call is single-shot: no retries, no caching.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// New creates a client for baseURL. A nil httpClient uses http.DefaultClient;
// a nil tokens source sends every request anonymously.
func New(baseURL string, httpClient *http.Client, tokens TokenSource) *Client {
	baseURL = strings.TrimSpace(baseURL)
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		tokens:     tokens,
	}
}

// BaseURL returns the normalized service address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) token() string {
	if c.tokens == nil {
		return ""
	}
	return strings.TrimSpace(c.tokens.Token())
}

// doJSON performs one request. Non-2xx responses and transport failures come back
// as *model.RepositoryError tagged with op. A 401 on an authenticated request is
// returned as *model.AuthError wrapping that RepositoryError.
func (c *Client) doJSON(ctx context.Context, op, method, path string, requestBody any, responseBody any) error {
	fullURL := c.baseURL + path

	var body io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return &model.RepositoryError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return &model.RepositoryError{Op: op, Err: err}
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	request.Header.Set("Accept", "application/json")
	token := c.token()
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return &model.RepositoryError{Op: op, Err: fmt.Errorf("%w: %v", ErrServiceUnavailable, err)}
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		repoErr := &model.RepositoryError{Op: op, StatusCode: response.StatusCode}
		var payload errorResponse
		if err := json.NewDecoder(response.Body).Decode(&payload); err == nil {
			repoErr.Message = strings.TrimSpace(payload.Error)
			if repoErr.Message == "" {
				repoErr.Message = strings.TrimSpace(payload.Message)
			}
		}
		if repoErr.Message == "" {
			repoErr.Message = response.Status
		}
		if response.StatusCode == http.StatusUnauthorized {
			reason := "token rejected"
			if token == "" {
				reason = model.ErrNotLoggedIn.Error()
			}
			return &model.AuthError{Reason: reason, Err: repoErr}
		}
		return repoErr
	}

	if responseBody == nil {
		_, _ = io.Copy(io.Discard, response.Body)
		return nil
	}
	if err := json.NewDecoder(response.Body).Decode(responseBody); err != nil {
		return &model.RepositoryError{Op: op, StatusCode: response.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
