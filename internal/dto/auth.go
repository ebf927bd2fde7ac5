package dto

// LoginRequest authenticates a user with email and password.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginResponse carries the issued access token.
type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int64  `json:"expiresIn"`
}

// RegisterRequest creates a new user account.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"fullName" validate:"required,max=120"`
}

// UpdatePreferencesRequest upserts the caller's study preferences.
type UpdatePreferencesRequest struct {
	BreakDuration  *int    `json:"breakDuration" validate:"omitempty,min=5,max=120"`
	SessionLength  *int    `json:"sessionLength" validate:"omitempty,min=15,max=240"`
	FocusStartTime *string `json:"focusStartTime" validate:"omitempty,len=5"`
	FocusEndTime   *string `json:"focusEndTime" validate:"omitempty,len=5"`
	PriorityMode   *string `json:"priorityMode" validate:"omitempty,oneof=focus balance wellbeing"`
}
