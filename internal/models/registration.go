package models

import "time"

// RegistrationForm is the raw submission from the registration modal.
// Constraints are enforced by the logic package's validator.
type RegistrationForm struct {
	FullName     string `json:"fullName" validate:"required,min=2,max=100,fullname"`
	GamerTag     string `json:"gamerTag" validate:"required,min=3,max=20,gamertag"`
	Email        string `json:"email" validate:"required,email"`
	FavoriteGame string `json:"favoriteGame" validate:"required,min=2,max=100"`
}

// Registration is a form that passed validation, with inputs trimmed.
type Registration struct {
	FullName     string `json:"fullName"`
	GamerTag     string `json:"gamerTag"`
	Email        string `json:"email"`
	FavoriteGame string `json:"favoriteGame"`
}

// FieldErrors maps a form field (JSON name) to its error message.
type FieldErrors map[string]string

// RegistrationReceipt is returned after a successful simulated submission.
// The record itself is not kept.
type RegistrationReceipt struct {
	ID           string    `json:"id"`
	GamerTag     string    `json:"gamerTag"`
	Count        int64     `json:"count"`
	SubmittedAt  time.Time `json:"submittedAt"`
	CloseAfterMs int64     `json:"closeAfterMs"`
}

// RegistrationStats is the counter section: live count against the
// advertised maximum.
type RegistrationStats struct {
	Count      int64   `json:"count"`
	Max        int64   `json:"max"`
	Percentage float64 `json:"percentage"`
	SpotsLeft  int64   `json:"spotsLeft"`
	LowSpots   bool    `json:"lowSpots"`
}
