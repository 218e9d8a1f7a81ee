package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cliptide/backend/internal/models"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

// GoogleUserInfo represents the Google OAuth userinfo response
type GoogleUserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// GetGoogleOAuthURL returns the Google authorization URL for the given state
func (s *Service) GetGoogleOAuthURL(state string) string {
	return s.googleConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// HandleGoogleCallback exchanges the authorization code, then signs the
// matching user in, unifying accounts by email when one already exists
func (s *Service) HandleGoogleCallback(ctx context.Context, code string) (*AuthResponse, error) {
	userInfo, err := s.getGoogleUserInfo(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google user info: %w", err)
	}

	// Already linked
	var user models.User
	err = s.db.Where("google_id = ?", userInfo.Sub).First(&user).Error
	if err == nil {
		return s.generateAuthResponse(&user)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	// Unify by email
	existing, err := s.FindUserByEmail(userInfo.Email)
	if err == nil {
		return s.linkGoogleAccount(existing, userInfo)
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	return s.createUserFromGoogle(userInfo)
}

func (s *Service) linkGoogleAccount(user *models.User, userInfo *GoogleUserInfo) (*AuthResponse, error) {
	user.GoogleID = &userInfo.Sub
	user.EmailVerified = true
	if user.AvatarURL == "" && userInfo.Picture != "" {
		user.AvatarURL = userInfo.Picture
	}
	if err := s.db.Save(user).Error; err != nil {
		return nil, fmt.Errorf("failed to link Google account: %w", err)
	}
	return s.generateAuthResponse(user)
}

func (s *Service) createUserFromGoogle(userInfo *GoogleUserInfo) (*AuthResponse, error) {
	username, err := s.ensureUniqueUsername(usernameFromName(userInfo.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to generate unique username: %w", err)
	}

	user := models.User{
		Email:         userInfo.Email,
		Username:      username,
		FullName:      userInfo.Name,
		AvatarURL:     userInfo.Picture,
		GoogleID:      &userInfo.Sub,
		EmailVerified: true,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.generateAuthResponse(&user)
}

func (s *Service) getGoogleUserInfo(ctx context.Context, code string) (*GoogleUserInfo, error) {
	token, err := s.googleConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	client := s.googleConfig.Client(ctx, token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v3/userinfo")
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var googleUser GoogleUserInfo
	if err := json.Unmarshal(body, &googleUser); err != nil {
		return nil, fmt.Errorf("failed to parse user info: %w", err)
	}
	if googleUser.Email == "" {
		return nil, errors.New("google account has no email")
	}
	return &googleUser, nil
}

// ensureUniqueUsername appends a counter until the username is free
func (s *Service) ensureUniqueUsername(baseUsername string) (string, error) {
	username := baseUsername
	counter := 1

	for {
		var existingUser models.User
		err := s.db.Where("LOWER(username) = LOWER(?)", username).First(&existingUser).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return username, nil
		} else if err != nil {
			return "", fmt.Errorf("database error: %w", err)
		}

		username = fmt.Sprintf("%s%d", baseUsername, counter)
		counter++
		if counter > 999 {
			return "", errors.New("unable to generate unique username")
		}
	}
}

// usernameFromName derives a lowercase alphanumeric username
func usernameFromName(name string) string {
	lowered := strings.ToLower(strings.ReplaceAll(name, " ", ""))

	var cleaned strings.Builder
	for _, char := range lowered {
		if (char >= 'a' && char <= 'z') || (char >= '0' && char <= '9') {
			cleaned.WriteRune(char)
		}
	}

	username := cleaned.String()
	if username == "" {
		username = "viewer"
	}
	if len(username) > 20 {
		username = username[:20]
	}
	return username
}
