// Package apiclient is a small Go client for the taskboard API. It keeps the
// access token in memory only; the refresh token lives in the cookie jar and
// never leaves it. When a request comes back 401, all in-flight callers share
// a single refresh round-trip instead of racing their own.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

var ErrUnauthenticated = errors.New("apiclient: not authenticated")

type Client struct {
	baseURL string
	http    *http.Client

	mu          sync.RWMutex
	accessToken string

	refreshGroup singleflight.Group
}

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *apiError       `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
	}, nil
}

func (c *Client) Register(ctx context.Context, email, password string) (*User, error) {
	var data struct {
		User User `json:"user"`
	}
	err := c.call(ctx, http.MethodPost, "/api/auth/register", map[string]string{
		"email":    email,
		"password": password,
	}, &data, false)
	if err != nil {
		return nil, err
	}
	return &data.User, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	var data struct {
		AccessToken string `json:"access_token"`
		User        User   `json:"user"`
	}
	err := c.call(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &data, false)
	if err != nil {
		return nil, err
	}

	c.setAccessToken(data.AccessToken)
	return &data.User, nil
}

func (c *Client) Logout(ctx context.Context) error {
	err := c.call(ctx, http.MethodPost, "/api/auth/logout", nil, nil, false)
	c.setAccessToken("")
	return err
}

// Do performs an authenticated JSON request. On a 401 it refreshes the
// session once (shared across concurrent callers) and retries.
func (c *Client) Do(ctx context.Context, method, path string, body, out interface{}) error {
	err := c.call(ctx, method, path, body, out, true)
	if !errors.Is(err, ErrUnauthenticated) {
		return err
	}

	if err := c.refresh(ctx); err != nil {
		return err
	}

	return c.call(ctx, method, path, body, out, true)
}

// refresh exchanges the refresh cookie for a new access token. The
// singleflight group collapses concurrent 401 fallout into one round-trip.
func (c *Client) refresh(ctx context.Context) error {
	_, err, _ := c.refreshGroup.Do("refresh", func() (interface{}, error) {
		var data struct {
			AccessToken string `json:"access_token"`
		}
		if err := c.call(ctx, http.MethodPost, "/api/auth/refresh", nil, &data, false); err != nil {
			return nil, err
		}
		c.setAccessToken(data.AccessToken)
		return nil, nil
	})
	return err
}

func (c *Client) call(ctx context.Context, method, path string, body, out interface{}, withAuth bool) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if withAuth {
		if token := c.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthenticated
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("apiclient: bad response (%d): %w", resp.StatusCode, err)
	}

	if !env.Success {
		if env.Error != nil {
			return fmt.Errorf("apiclient: %s (%s)", env.Error.Message, env.Error.Code)
		}
		return fmt.Errorf("apiclient: request failed (%d)", resp.StatusCode)
	}

	if out != nil && len(env.Data) > 0 {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}

func (c *Client) AccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

func (c *Client) setAccessToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = token
}
