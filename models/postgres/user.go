package postgres

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Background effects a profile can select.
const (
	EffectNone      = "none"
	EffectSnow      = "snow"
	EffectRain      = "rain"
	EffectStars     = "stars"
	EffectParticles = "particles"
)

// Defaults applied to every freshly created profile.
const (
	DefaultOpacity         = 50
	DefaultAccentColor     = "#1b1b1b"
	DefaultTextColor       = "#ffffff"
	DefaultBackgroundColor = "#080808"
	DefaultIconColor       = "#ffffff"
)

/*
 * 'UserProfile' is the single row backing a hosted profile page. The uid and
 * username are fixed at signup; everything else is customizable through the
 * partial-update endpoint. PasswordHash never leaves the server (json:"-").
 */
type UserProfile struct {
	UID          uint   `gorm:"primaryKey;autoIncrement" json:"uid"`
	Username     string `gorm:"size:50;not null;uniqueIndex" json:"username"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`

	Description string `gorm:"size:1000;default:''" json:"description"`
	Location    string `gorm:"size:255;default:''" json:"location"`

	// Asset references (URL or data URI, empty = unset)
	BackgroundImage string `gorm:"default:''" json:"backgroundImage"`
	AudioURL        string `gorm:"default:''" json:"audioUrl"`
	AvatarURL       string `gorm:"default:''" json:"avatarUrl"`
	CustomCursor    string `gorm:"default:''" json:"customCursor"`

	// Effects
	BackgroundEffect string `gorm:"size:20;default:'none'" json:"backgroundEffect"`
	UsernameEffect   string `gorm:"size:50;default:''" json:"usernameEffect"`
	ProfileOpacity   int    `gorm:"default:50" json:"profileOpacity"`
	ProfileBlur      int    `gorm:"default:0" json:"profileBlur"`

	// Colors
	AccentColor     string `gorm:"size:20;default:'#1b1b1b'" json:"accentColor"`
	TextColor       string `gorm:"size:20;default:'#ffffff'" json:"textColor"`
	BackgroundColor string `gorm:"size:20;default:'#080808'" json:"backgroundColor"`
	IconColor       string `gorm:"size:20;default:'#ffffff'" json:"iconColor"`

	// Toggles
	MonochromeIcons         bool `gorm:"default:false" json:"monochromeIcons"`
	AnimatedTitle           bool `gorm:"default:false" json:"animatedTitle"`
	SwapBoxColors           bool `gorm:"default:false" json:"swapBoxColors"`
	VolumeControl           bool `gorm:"default:false" json:"volumeControl"`
	UseDiscordAvatar        bool `gorm:"default:false" json:"useDiscordAvatar"`
	DiscordAvatarDecoration bool `gorm:"default:false" json:"discordAvatarDecoration"`

	// Ordered social links, stored as a JSON array of SocialLink
	Links datatypes.JSON `gorm:"default:'[]'" json:"links"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// SocialLink is one entry on a profile page. The id is generated when the
// link is added and stays stable across reorderings.
type SocialLink struct {
	ID       string `json:"id"`
	Platform string `json:"platform"`
	URL      string `json:"url"`
	Icon     string `json:"icon"`
}

// NewUserProfile returns a profile with every customizable field at its
// documented default. The caller supplies the already-hashed credential.
func NewUserProfile(username, passwordHash string) UserProfile {
	return UserProfile{
		Username:         username,
		PasswordHash:     passwordHash,
		BackgroundEffect: EffectNone,
		ProfileOpacity:   DefaultOpacity,
		AccentColor:      DefaultAccentColor,
		TextColor:        DefaultTextColor,
		BackgroundColor:  DefaultBackgroundColor,
		IconColor:        DefaultIconColor,
		Links:            datatypes.JSON("[]"),
	}
}

// SocialLinks decodes the stored links column, preserving order.
func (u *UserProfile) SocialLinks() ([]SocialLink, error) {
	if len(u.Links) == 0 {
		return []SocialLink{}, nil
	}
	var links []SocialLink
	if err := json.Unmarshal(u.Links, &links); err != nil {
		return nil, err
	}
	return links, nil
}

// SetSocialLinks replaces the links column with the given sequence.
func (u *UserProfile) SetSocialLinks(links []SocialLink) error {
	raw, err := json.Marshal(links)
	if err != nil {
		return err
	}
	u.Links = datatypes.JSON(raw)
	return nil
}

// ValidBackgroundEffect reports whether s is one of the selectable effects.
func ValidBackgroundEffect(s string) bool {
	switch s {
	case EffectNone, EffectSnow, EffectRain, EffectStars, EffectParticles:
		return true
	}
	return false
}
