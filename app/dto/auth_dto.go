package dto

import "time"

// AdminLoginRequest signs a dashboard user in. Email may also hold a username.
type AdminLoginRequest struct {
	Email        string   `json:"email" validate:"required,max=320"`
	Password     string   `json:"password" validate:"required,max=255"`
	CaptchaID    string   `json:"captchaId,omitempty"`
	CaptchaAngle *float64 `json:"captchaAngle,omitempty"`
}

type SessionUserDTO struct {
	ID       uint    `json:"id"`
	Email    string  `json:"email"`
	Username *string `json:"username,omitempty"`
	Role     string  `json:"role"`
}

type AdminLoginResponse struct {
	User      SessionUserDTO `json:"user"`
	ExpiresAt time.Time      `json:"expiresAt"`
}

type SessionDTO struct {
	UserID    uint      `json:"userId"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type CaptchaChallengeResponse struct {
	ID                string `json:"id"`
	MasterImageBase64 string `json:"masterImage"`
	ThumbImageBase64  string `json:"thumbImage"`
}
