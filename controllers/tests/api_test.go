package controllers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	models "pistol/models/postgres"
	"pistol/middleware"
	"pistol/routes"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupServer boots the real router against an in-memory database.
func setupServer(t *testing.T) *httptest.Server {
	t.Setenv("KEY", "test-secret")
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.UserProfile{}))

	r := gin.New()
	middleware.SetUpMiddleware(r)
	routes.SetupRoutes(r, db)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

// newSessionClient returns an http client that keeps cookies, like a browser.
func newSessionClient(t *testing.T) *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar, Timeout: time.Second * 10}
}

func doJSON(t *testing.T, client *http.Client, method, url string, payload interface{}) (*http.Response, string) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(raw)
}

func TestSignUp(t *testing.T) {
	srv := setupServer(t)

	t.Run("Sign up successfully", func(t *testing.T) {
		client := newSessionClient(t)
		resp, body := doJSON(t, client, http.MethodPost, srv.URL+"/auth/signup",
			map[string]string{"username": "alice", "password": "pw1"})

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var response struct {
			User struct {
				UID            uint   `json:"uid"`
				Username       string `json:"username"`
				ProfileOpacity int    `json:"profileOpacity"`
			} `json:"user"`
		}
		require.NoError(t, json.Unmarshal([]byte(body), &response))
		assert.Equal(t, "alice", response.User.Username)
		assert.Equal(t, 50, response.User.ProfileOpacity)
		assert.NotZero(t, response.User.UID)

		// The credential never appears in a response body
		assert.NotContains(t, body, "password")

		// A session cookie was set for the new account
		u, err := url.Parse(srv.URL)
		require.NoError(t, err)
		assert.NotEmpty(t, client.Jar.Cookies(u))
	})

	t.Run("Sign up with empty fields", func(t *testing.T) {
		client := newSessionClient(t)
		resp, _ := doJSON(t, client, http.MethodPost, srv.URL+"/auth/signup",
			map[string]string{"username": "", "password": ""})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Sign up with existing user, different case", func(t *testing.T) {
		client := newSessionClient(t)
		resp, _ := doJSON(t, client, http.MethodPost, srv.URL+"/auth/signup",
			map[string]string{"username": "Bob", "password": "x"})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		resp, body := doJSON(t, client, http.MethodPost, srv.URL+"/auth/signup",
			map[string]string{"username": "bob", "password": "y"})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Contains(t, body, "Username already exists")
	})
}

func TestLogin(t *testing.T) {
	srv := setupServer(t)

	signupClient := newSessionClient(t)
	resp, _ := doJSON(t, signupClient, http.MethodPost, srv.URL+"/auth/signup",
		map[string]string{"username": "carol", "password": "secret"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	t.Run("Login successfully", func(t *testing.T) {
		client := newSessionClient(t)
		resp, body := doJSON(t, client, http.MethodPost, srv.URL+"/auth/login",
			map[string]string{"username": "carol", "password": "secret"})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, `"username":"carol"`)
		assert.NotContains(t, body, "password")
	})

	t.Run("Login with case-insensitive username", func(t *testing.T) {
		client := newSessionClient(t)
		resp, _ := doJSON(t, client, http.MethodPost, srv.URL+"/auth/login",
			map[string]string{"username": "CAROL", "password": "secret"})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("Login with invalid password", func(t *testing.T) {
		client := newSessionClient(t)
		resp, body := doJSON(t, client, http.MethodPost, srv.URL+"/auth/login",
			map[string]string{"username": "carol", "password": "wrong"})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Contains(t, body, "Invalid username or password")
	})

	t.Run("Login with unknown user", func(t *testing.T) {
		client := newSessionClient(t)
		resp, body := doJSON(t, client, http.MethodPost, srv.URL+"/auth/login",
			map[string]string{"username": "nobody", "password": "secret"})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		// Same message as a wrong password, no enumeration
		assert.Contains(t, body, "Invalid username or password")
	})

	t.Run("Login with empty fields", func(t *testing.T) {
		client := newSessionClient(t)
		resp, _ := doJSON(t, client, http.MethodPost, srv.URL+"/auth/login",
			map[string]string{"username": "", "password": ""})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestMeAndLogout(t *testing.T) {
	srv := setupServer(t)
	client := newSessionClient(t)

	t.Run("Me without session", func(t *testing.T) {
		resp, body := doJSON(t, client, http.MethodGet, srv.URL+"/auth/me", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, `"user":null`)
	})

	resp, _ := doJSON(t, client, http.MethodPost, srv.URL+"/auth/signup",
		map[string]string{"username": "dave", "password": "pw"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	t.Run("Me with session", func(t *testing.T) {
		resp, body := doJSON(t, client, http.MethodGet, srv.URL+"/auth/me", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, `"username":"dave"`)
		assert.NotContains(t, body, "password")
	})

	t.Run("Logout clears the session", func(t *testing.T) {
		resp, body := doJSON(t, client, http.MethodPost, srv.URL+"/auth/logout", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "Successfully logged out")

		resp, body = doJSON(t, client, http.MethodGet, srv.URL+"/auth/me", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, `"user":null`)
	})
}

func TestUpdateProfile(t *testing.T) {
	srv := setupServer(t)

	t.Run("Update without session", func(t *testing.T) {
		client := newSessionClient(t)
		resp, _ := doJSON(t, client, http.MethodPut, srv.URL+"/auth/profile",
			map[string]interface{}{"description": "hi"})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	client := newSessionClient(t)
	resp, _ := doJSON(t, client, http.MethodPost, srv.URL+"/auth/signup",
		map[string]string{"username": "erin", "password": "pw"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	t.Run("Update description", func(t *testing.T) {
		resp, body := doJSON(t, client, http.MethodPut, srv.URL+"/auth/profile",
			map[string]interface{}{"description": "hi"})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, `"description":"hi"`)
		assert.NotContains(t, body, "password")
	})

	t.Run("Disallowed fields are ignored, allowed ones applied", func(t *testing.T) {
		resp, body := doJSON(t, client, http.MethodPut, srv.URL+"/auth/profile",
			map[string]interface{}{"profileOpacity": 70, "username": "mallory"})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, `"profileOpacity":70`)
		assert.Contains(t, body, `"username":"erin"`)
	})

	t.Run("Out-of-range opacity is rejected", func(t *testing.T) {
		resp, _ := doJSON(t, client, http.MethodPut, srv.URL+"/auth/profile",
			map[string]interface{}{"profileOpacity": 150})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Unknown background effect is rejected", func(t *testing.T) {
		resp, _ := doJSON(t, client, http.MethodPut, srv.URL+"/auth/profile",
			map[string]interface{}{"backgroundEffect": "confetti"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Update with only disallowed fields fails", func(t *testing.T) {
		resp, _ := doJSON(t, client, http.MethodPut, srv.URL+"/auth/profile",
			map[string]interface{}{"uid": 999})
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})

	t.Run("Links survive the round trip", func(t *testing.T) {
		links := []models.SocialLink{
			{ID: "l1", Platform: "GitHub", URL: "https://github.com/erin", Icon: "🐙"},
			{ID: "l2", Platform: "Twitch", URL: "https://twitch.tv/erin", Icon: "📺"},
		}
		resp, body := doJSON(t, client, http.MethodPut, srv.URL+"/auth/profile",
			map[string]interface{}{"links": links})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var response struct {
			User models.UserProfile `json:"user"`
		}
		require.NoError(t, json.Unmarshal([]byte(body), &response))
		got, err := response.User.SocialLinks()
		require.NoError(t, err)
		assert.Equal(t, links, got)
	})
}

func TestGetUserPublicInfo(t *testing.T) {
	srv := setupServer(t)

	owner := newSessionClient(t)
	resp, _ := doJSON(t, owner, http.MethodPost, srv.URL+"/auth/signup",
		map[string]string{"username": "frank", "password": "pw"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = doJSON(t, owner, http.MethodPut, srv.URL+"/auth/profile",
		map[string]interface{}{"description": "hello world"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	t.Run("Anonymous viewer sees the public profile", func(t *testing.T) {
		anonymous := newSessionClient(t)
		resp, body := doJSON(t, anonymous, http.MethodGet, srv.URL+"/users/frank", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, `"description":"hello world"`)
		assert.NotContains(t, body, "password")
	})

	t.Run("Lookup ignores case", func(t *testing.T) {
		anonymous := newSessionClient(t)
		resp, _ := doJSON(t, anonymous, http.MethodGet, srv.URL+"/users/FRANK", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("Get non-existent user info", func(t *testing.T) {
		anonymous := newSessionClient(t)
		resp, _ := doJSON(t, anonymous, http.MethodGet, srv.URL+"/users/nonexistentuser", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestPing(t *testing.T) {
	srv := setupServer(t)
	client := newSessionClient(t)

	resp, body := doJSON(t, client, http.MethodGet, srv.URL+"/ping", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(body, "pong"))
}
