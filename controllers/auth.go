package controllers

import (
	"errors"
	"net/http"
	"strings"

	"pistol/services/profile"
	"pistol/services/session"

	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// @Summary Register a new user
// @Description Creates a profile with default customization and opens a session
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body object{username=string,password=string} true "Username and password"
// @Success 201 {object} object{user=object}
// @Failure 400 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /auth/signup [post]
func SignUp(store *profile.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentialsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
			return
		}

		// Minimum input sanitizing
		if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Password) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
			return
		}

		uid, err := store.Create(req.Username, req.Password)
		if err != nil {
			if errors.Is(err, profile.ErrUsernameTaken) {
				c.JSON(http.StatusConflict, gin.H{"error": "Username already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
			return
		}

		user, err := store.FindByUID(uid)
		if err != nil || user == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
			return
		}

		if err := session.Issue(c, uid); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"user": user})
	}
}

// @Summary Log in
// @Description Authenticates a user and opens a session
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body object{username=string,password=string} true "Username and password"
// @Success 200 {object} object{user=object}
// @Failure 400 {object} object{error=string}
// @Failure 401 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /auth/login [post]
func Login(store *profile.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentialsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
			return
		}

		if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Password) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
			return
		}

		user, err := store.Authenticate(req.Username, req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}

		if err := session.Issue(c, user.UID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// @Summary Log out
// @Description Clears the session cookie
// @Tags auth
// @Produce json
// @Success 200 {object} object{message=string}
// @Router /auth/logout [post]
func Logout(c *gin.Context) {
	if err := session.Clear(c); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

// @Summary Current user
// @Description Returns the profile bound to the session, or user=null without one
// @Tags auth
// @Produce json
// @Success 200 {object} object{user=object}
// @Router /auth/me [get]
func Me(store *profile.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := session.Resolve(c)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"user": nil})
			return
		}

		user, err := store.FindByUID(uid)
		if err != nil || user == nil {
			c.JSON(http.StatusOK, gin.H{"user": nil})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}
