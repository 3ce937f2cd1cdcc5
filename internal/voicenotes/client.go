// Package voicenotes implements the authenticated HTTP client for the
// VoiceNotes recording service.
package voicenotes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mysticcoders/voicenotes-sync/internal/apperr"
	"github.com/mysticcoders/voicenotes-sync/internal/models"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://api.voicenotes.com/api"

// Client issues authenticated requests to the recording service. It owns
// the token lifecycle: a 401 clears the token and, when stored credentials
// exist, triggers exactly one silent re-login and one retry of the original
// request. 429 responses are retried per the injected RetryPolicy.
type Client struct {
	http    *http.Client
	baseURL string
	session *Session
	retry   RetryPolicy
	log     *slog.Logger
}

// New creates a client. A nil logger falls back to slog.Default.
func New(baseURL string, session *Session, retry RetryPolicy, timeout time.Duration, log *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
		session: session,
		retry:   retry,
		log:     log,
	}
}

// Session exposes the client's auth session.
func (c *Client) Session() *Session { return c.session }

// Login authenticates with email and password and persists the returned
// token. The response nests the token under "authorisation".
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", fmt.Errorf("voicenotes: login: %w", apperr.ErrAuthentication)
	}
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	resp, err := c.send(ctx, http.MethodPost, c.baseURL+"/auth/login", body, false)
	if err != nil {
		return "", err
	}
	var out struct {
		Authorisation struct {
			Token string `json:"token"`
		} `json:"authorisation"`
	}
	if err := decode(resp, &out); err != nil {
		return "", err
	}
	if out.Authorisation.Token == "" {
		return "", fmt.Errorf("voicenotes: login returned no token: %w", apperr.ErrAuthentication)
	}
	if err := c.session.SetToken(out.Authorisation.Token); err != nil {
		return "", err
	}
	return out.Authorisation.Token, nil
}

// Me returns the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	resp, err := c.do(ctx, http.MethodGet, c.baseURL+"/auth/me", nil)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := decode(resp, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListRecordings fetches the first page of recordings.
func (c *Client) ListRecordings(ctx context.Context) (*models.RecordingPage, error) {
	return c.ListRecordingsAt(ctx, c.baseURL+"/recordings")
}

// ListRecordingsAt fetches a page through an opaque server-provided
// continuation link.
func (c *Client) ListRecordingsAt(ctx context.Context, link string) (*models.RecordingPage, error) {
	resp, err := c.do(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, err
	}
	var page models.RecordingPage
	if err := decode(resp, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// SignedAudioURL fetches a short-lived download link for a recording's audio.
func (c *Client) SignedAudioURL(ctx context.Context, recordingID int64) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/recordings/%d/signed-url", c.baseURL, recordingID), nil)
	if err != nil {
		return "", err
	}
	var signed models.SignedURL
	if err := decode(resp, &signed); err != nil {
		return "", err
	}
	return signed.URL, nil
}

// Download fetches a binary resource. Signed URLs are bearer-free, so no
// Authorization header is attached.
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.send(ctx, http.MethodGet, url, nil, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("voicenotes: download: %w", err)
	}
	return data, nil
}

// DeleteRecording removes a recording on the server. Destructive and
// irreversible; callers gate it behind the double-confirmation settings.
func (c *Client) DeleteRecording(ctx context.Context, recordingID int64) error {
	resp, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("%s/recordings/%d", c.baseURL, recordingID), nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// do issues an authenticated request, absorbing one 401 re-login cycle.
func (c *Client) do(ctx context.Context, method, url string, body []byte) (*http.Response, error) {
	resp, err := c.send(ctx, method, url, body, true)
	if !apperr.IsAuth(err) {
		return resp, err
	}

	// Token rejected: invalidate it, then try exactly one silent re-login
	// before giving up.
	c.session.Clear()
	username, password, ok := c.session.Credentials()
	if !ok {
		return nil, err
	}
	c.log.Info("token expired, re-authenticating", slog.String("url", url))
	if _, err := c.Login(ctx, username, password); err != nil {
		return nil, err
	}
	return c.send(ctx, method, url, body, true)
}

// send performs one logical request, retrying on 429 within the retry
// policy's attempt budget.
func (c *Client) send(ctx context.Context, method, url string, body []byte, authed bool) (*http.Response, error) {
	attempts := c.retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 1; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("voicenotes: build request: %w", err)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if authed {
			token := c.session.Token()
			if token == "" {
				return nil, fmt.Errorf("voicenotes: no token: %w", apperr.ErrAuthentication)
			}
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("voicenotes: %s %s: %w", method, url, err)
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return resp, nil

		case resp.StatusCode == http.StatusUnauthorized:
			resp.Body.Close()
			return nil, fmt.Errorf("voicenotes: %s %s: %w", method, url, apperr.ErrAuthentication)

		case resp.StatusCode == http.StatusTooManyRequests:
			delay := c.retry.retryDelay(resp.Header.Get("Retry-After"))
			resp.Body.Close()
			if attempt >= attempts {
				return nil, fmt.Errorf("voicenotes: %s %s after %d attempts: %w", method, url, attempt, apperr.ErrRateLimited)
			}
			c.log.Warn("rate limited, backing off",
				slog.String("url", url),
				slog.Duration("delay", delay),
				slog.Int("attempt", attempt))
			if err := c.retry.sleep(ctx, delay); err != nil {
				return nil, err
			}

		default:
			detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, &apperr.APIError{Status: resp.StatusCode, Body: string(detail)}
		}
	}
}

// decode reads and closes a JSON response body.
func decode(resp *http.Response, out any) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("voicenotes: decode response: %w", err)
	}
	return nil
}
