package controllers

import (
	"net/http"

	models "pistol/models/postgres"
	"pistol/services/profile"
	"pistol/services/session"

	"github.com/gin-gonic/gin"
)

// @Summary Ping
// @Description Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} object{message=string}
// @Router /ping [get]
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// validateUpdates range-checks the few numeric/enum fields the renderer
// depends on. The store itself stays loose; everything not listed here
// passes through as-is.
func validateUpdates(updates map[string]interface{}) string {
	if v, ok := updates["profileOpacity"]; ok {
		opacity, ok := v.(float64)
		if !ok || opacity < 0 || opacity > 100 {
			return "profileOpacity must be between 0 and 100"
		}
	}
	if v, ok := updates["profileBlur"]; ok {
		blur, ok := v.(float64)
		if !ok || blur < 0 {
			return "profileBlur must be a non-negative number"
		}
	}
	if v, ok := updates["backgroundEffect"]; ok {
		effect, ok := v.(string)
		if !ok || !models.ValidBackgroundEffect(effect) {
			return "Unknown background effect"
		}
	}
	return ""
}

// @Summary Update own profile
// @Description Applies a partial update to the session owner's profile
// @Tags auth
// @Accept json
// @Produce json
// @Param updates body object true "Subset of profile fields"
// @Success 200 {object} object{user=object}
// @Failure 400 {object} object{error=string}
// @Failure 401 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /auth/profile [put]
func UpdateProfile(store *profile.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := session.Resolve(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		var updates map[string]interface{}
		if err := c.ShouldBindJSON(&updates); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		if msg := validateUpdates(updates); msg != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}

		// The update always targets the session's own uid; no uid parameter
		// is ever accepted here.
		updated, err := store.Update(uid, updates)
		if err != nil || !updated {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
			return
		}

		user, err := store.FindByUID(uid)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if user == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// @Summary Public profile by username
// @Description Returns the public view of a profile, looked up case-insensitively
// @Tags users
// @Produce json
// @Param username path string true "Profile username"
// @Success 200 {object} object{user=object}
// @Failure 404 {object} object{error=string}
// @Router /users/{username} [get]
func GetUserPublicInfo(store *profile.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.Param("username")

		user, err := store.FindByUsername(username)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if user == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}
