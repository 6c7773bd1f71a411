package logic

import (
	"context"
	"time"

	"github.com/mettlestate/tournament-site/internal/models"
)

// Counter is the write/read surface of the registration store.
type Counter interface {
	Read() int64
	Increment() int64
}

// Submitter runs a registration submission end to end. Implemented by the
// registration service and by the HTTP API client.
type Submitter interface {
	Submit(ctx context.Context, form models.RegistrationForm) (*models.RegistrationReceipt, error)
}

// RegistrationService validates and submits registration forms.
type RegistrationService interface {
	Submitter
	Validate(form models.RegistrationForm) (*models.Registration, models.FieldErrors)
}

// LeaderboardService exposes the leaderboard loader to handlers.
type LeaderboardService interface {
	View(opts ViewOptions) models.LeaderboardView
	State() models.LeaderboardState
	Retry()
}

// ContentService serves the static sections of the page.
type ContentService interface {
	Content() models.SiteContent
	Countdown(now time.Time) models.Countdown
}
