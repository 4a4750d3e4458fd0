package auth

import (
	"github.com/voo-ward/voo-citizen-backend/internal/users"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Phone    string  `json:"phone" validate:"required"`
	Password string  `json:"password" validate:"required"`
	FCMToken *string `json:"fcmToken,omitempty"`
}

// LoginResponse contains the tokens and user produced by a successful login.
type LoginResponse struct {
	Success      bool           `json:"success"`
	Token        string         `json:"token"`
	RefreshToken string         `json:"refreshToken"`
	User         *users.UserDTO `json:"user"`
}

// DeviceTokenRequest replaces or clears the caller's push token.
type DeviceTokenRequest struct {
	FCMToken *string `json:"fcmToken"`
}
