// Package client is the Go consumer of the Pistol API. It keeps a cached
// copy of the logged-in user and applies profile edits optimistically,
// reconciling against the server whenever a mutation is rejected.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	models "pistol/models/postgres"

	"github.com/google/uuid"
)

// Client talks to one Pistol server on behalf of one browser-like session.
// Construct it explicitly and pass it to consumers; there is no package
// global. The session cookie lives in the client's jar.
type Client struct {
	baseURL    string
	httpClient *http.Client

	// mu guards currentUser/loading and serializes UpdateProfile calls so
	// an optimistic value is always confirmed or reverted before the next
	// edit goes out.
	mu          sync.Mutex
	currentUser *models.UserProfile
	loading     bool
}

type userEnvelope struct {
	User *models.UserProfile `json:"user"`
}

// New creates a Client for the given base URL (e.g. "http://localhost:8080").
func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: 10 * time.Second,
		},
		loading: true,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.httpClient.Do(req)
}

func decodeUser(resp *http.Response) (*models.UserProfile, error) {
	defer resp.Body.Close()
	var envelope userEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, err
	}
	return envelope.User, nil
}

// fetchMe asks the server for the authoritative current user. Callers hold
// no assumption about the cache; a missing session yields (nil, nil).
func (c *Client) fetchMe(ctx context.Context) (*models.UserProfile, error) {
	resp, err := c.do(ctx, http.MethodGet, "/auth/me", nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d from /auth/me", resp.StatusCode)
	}
	return decodeUser(resp)
}

// Init resolves the session against the server and populates the cache.
// It should be called once right after New.
func (c *Client) Init(ctx context.Context) error {
	user, err := c.fetchMe(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		return err
	}
	c.currentUser = user
	return nil
}

// CurrentUser returns a copy of the cached user, or nil when logged out.
func (c *Client) CurrentUser() *models.UserProfile {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.currentUser == nil {
		return nil
	}
	user := *c.currentUser
	return &user
}

// Loading reports whether the initial session resolution is still pending.
func (c *Client) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Signup registers a new account and caches the returned user.
func (c *Client) Signup(ctx context.Context, username, password string) error {
	resp, err := c.do(ctx, http.MethodPost, "/auth/signup", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusCreated {
		resp.Body.Close()
		return fmt.Errorf("signup failed with status %d", resp.StatusCode)
	}

	user, err := decodeUser(resp)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.currentUser = user
	c.mu.Unlock()
	return nil
}

// Login authenticates and caches the returned user.
func (c *Client) Login(ctx context.Context, username, password string) error {
	resp, err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return fmt.Errorf("login failed with status %d", resp.StatusCode)
	}

	user, err := decodeUser(resp)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.currentUser = user
	c.mu.Unlock()
	return nil
}

// Logout clears the session on the server and drops the cached user.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, "/auth/logout", nil)
	if err != nil {
		return err
	}
	resp.Body.Close()

	c.mu.Lock()
	c.currentUser = nil
	c.mu.Unlock()
	return nil
}

// mergeUser overlays wire-format updates onto a cached user record.
func mergeUser(user *models.UserProfile, updates map[string]interface{}) (*models.UserProfile, error) {
	raw, err := json.Marshal(user)
	if err != nil {
		return nil, err
	}
	var asMap map[string]interface{}
	if err := json.Unmarshal(raw, &asMap); err != nil {
		return nil, err
	}
	for key, value := range updates {
		asMap[key] = value
	}
	merged, err := json.Marshal(asMap)
	if err != nil {
		return nil, err
	}
	var result models.UserProfile
	if err := json.Unmarshal(merged, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateProfile applies updates optimistically to the cache, then sends
// them to the server. On any failure the cache is replaced with the
// server's authoritative record; a rejected optimistic value is never
// kept. Calls are serialized: the lock is held across the round trip.
func (c *Client) UpdateProfile(ctx context.Context, updates map[string]interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.currentUser == nil {
		return fmt.Errorf("not logged in")
	}

	optimistic, err := mergeUser(c.currentUser, updates)
	if err != nil {
		return err
	}
	c.currentUser = optimistic

	resp, err := c.do(ctx, http.MethodPut, "/auth/profile", updates)
	if err != nil {
		c.reconcile(ctx)
		return err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		c.reconcile(ctx)
		return fmt.Errorf("profile update failed with status %d", resp.StatusCode)
	}

	user, err := decodeUser(resp)
	if err != nil {
		c.reconcile(ctx)
		return err
	}
	c.currentUser = user
	return nil
}

// reconcile discards the optimistic value and re-installs whatever the
// server holds. Called with mu held.
func (c *Client) reconcile(ctx context.Context) {
	user, err := c.fetchMe(ctx)
	if err != nil {
		// Can't reach the server; drop the unconfirmed value rather than
		// keep lying to the caller.
		c.currentUser = nil
		return
	}
	c.currentUser = user
}

// GetUser fetches the public profile for username. Always a fresh network
// call, never cached. Returns (nil, nil) on any non-success response.
func (c *Client) GetUser(ctx context.Context, username string) (*models.UserProfile, error) {
	resp, err := c.do(ctx, http.MethodGet, "/users/"+username, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, nil
	}
	return decodeUser(resp)
}

// AddLink appends a social link to the current user's page. The id is
// generated here, at add-time, and stays with the link.
func (c *Client) AddLink(ctx context.Context, platform, url, icon string) error {
	current := c.CurrentUser()
	if current == nil {
		return fmt.Errorf("not logged in")
	}

	links, err := current.SocialLinks()
	if err != nil {
		return err
	}
	links = append(links, models.SocialLink{
		ID:       uuid.NewString(),
		Platform: platform,
		URL:      url,
		Icon:     icon,
	})
	return c.UpdateProfile(ctx, map[string]interface{}{"links": links})
}

// RemoveLink deletes the link with the given id, keeping the order of the
// remaining links.
func (c *Client) RemoveLink(ctx context.Context, id string) error {
	current := c.CurrentUser()
	if current == nil {
		return fmt.Errorf("not logged in")
	}

	links, err := current.SocialLinks()
	if err != nil {
		return err
	}
	kept := make([]models.SocialLink, 0, len(links))
	for _, link := range links {
		if link.ID != id {
			kept = append(kept, link)
		}
	}
	return c.UpdateProfile(ctx, map[string]interface{}{"links": kept})
}
