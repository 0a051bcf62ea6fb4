// Package profile implements the persistence layer for hosted profiles.
// The store is the single source of truth: no cache sits in front of it.
package profile

import (
	"encoding/json"
	"errors"

	models "pistol/models/postgres"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrUsernameTaken is returned by Create when the username is already
// registered (comparison is case-insensitive).
var ErrUsernameTaken = errors.New("username already exists")

// allowedFields maps the JSON names accepted by Update to their database
// columns. uid, username and the credential are deliberately absent: they
// are immutable after signup.
var allowedFields = map[string]string{
	"description":             "description",
	"location":                "location",
	"backgroundImage":         "background_image",
	"audioUrl":                "audio_url",
	"avatarUrl":               "avatar_url",
	"customCursor":            "custom_cursor",
	"backgroundEffect":        "background_effect",
	"usernameEffect":          "username_effect",
	"profileOpacity":          "profile_opacity",
	"profileBlur":             "profile_blur",
	"accentColor":             "accent_color",
	"textColor":               "text_color",
	"backgroundColor":         "background_color",
	"iconColor":               "icon_color",
	"monochromeIcons":         "monochrome_icons",
	"animatedTitle":           "animated_title",
	"swapBoxColors":           "swap_box_colors",
	"volumeControl":           "volume_control",
	"useDiscordAvatar":        "use_discord_avatar",
	"discordAvatarDecoration": "discord_avatar_decoration",
	"links":                   "links",
}

// Store provides the user profile operations over a single table.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store bound to the given database connection.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Create registers a new profile with every customizable field at its
// default and returns the assigned uid. The password is stored as a bcrypt
// hash, never as plaintext.
func (s *Store) Create(username, password string) (uint, error) {
	existing, err := s.FindByUsername(username)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return 0, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}

	user := models.NewUserProfile(username, string(hash))
	if err := s.db.Create(&user).Error; err != nil {
		return 0, err
	}
	return user.UID, nil
}

// FindByUsername looks up a profile by username, ignoring case. Returns
// (nil, nil) when no such user exists.
func (s *Store) FindByUsername(username string) (*models.UserProfile, error) {
	var user models.UserProfile
	err := s.db.Where("LOWER(username) = LOWER(?)", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// FindByUID looks up a profile by its numeric identity. Returns (nil, nil)
// when no such user exists.
func (s *Store) FindByUID(uid uint) (*models.UserProfile, error) {
	var user models.UserProfile
	err := s.db.Where("uid = ?", uid).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Authenticate returns the profile matching the username (case-insensitive)
// and password, or (nil, nil) on any mismatch. A missing user and a wrong
// password are indistinguishable to the caller.
func (s *Store) Authenticate(username, password string) (*models.UserProfile, error) {
	user, err := s.FindByUsername(username)
	if err != nil || user == nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil
	}
	return user, nil
}

// Update applies a partial update to the profile identified by uid. Keys
// outside the allowlist are dropped silently; if nothing survives the
// filter, Update reports (false, nil) without touching the row. Values are
// not range-checked here, that is the API boundary's job.
func (s *Store) Update(uid uint, updates map[string]interface{}) (bool, error) {
	columns := map[string]interface{}{}
	for key, value := range updates {
		column, ok := allowedFields[key]
		if !ok {
			continue
		}
		if key == "links" {
			raw, err := json.Marshal(value)
			if err != nil {
				return false, err
			}
			columns[column] = datatypes.JSON(raw)
			continue
		}
		columns[column] = value
	}

	if len(columns) == 0 {
		return false, nil
	}

	result := s.db.Model(&models.UserProfile{}).Where("uid = ?", uid).Updates(columns)
	if result.Error != nil {
		return false, result.Error
	}
	return true, nil
}
