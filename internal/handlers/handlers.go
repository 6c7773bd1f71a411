package handlers

import (
	"time"

	"go.uber.org/zap"

	"github.com/mettlestate/tournament-site/internal/logic"
	"github.com/mettlestate/tournament-site/internal/worker"
)

// MaxBodySize limits the size of request bodies to 1MB
const MaxBodySize = 1048576

// SubmissionQueue defines the interface for the registration worker pool
type SubmissionQueue interface {
	Enqueue(job *worker.Job) bool
	QueueDepth() int
}

type Config struct {
	WorkerPool SubmissionQueue
	// QueueCapacity is the pool's queue size, reported by /ready.
	QueueCapacity    int
	MaxRegistrations int64
	Logger           *zap.Logger
	// Services
	Counter       logic.Counter
	Registrations logic.RegistrationService
	Leaderboard   logic.LeaderboardService
	Content       logic.ContentService
	// Now defaults to time.Now.
	Now func() time.Time
}

type Handler struct {
	pool             SubmissionQueue
	queueCapacity    int
	maxRegistrations int64
	logger           *zap.SugaredLogger
	counter          logic.Counter
	registrations    logic.RegistrationService
	leaderboard      logic.LeaderboardService
	content          logic.ContentService
	now              func() time.Time
}

func New(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Handler{
		pool:             cfg.WorkerPool,
		queueCapacity:    cfg.QueueCapacity,
		maxRegistrations: cfg.MaxRegistrations,
		logger:           cfg.Logger.Sugar(),
		counter:          cfg.Counter,
		registrations:    cfg.Registrations,
		leaderboard:      cfg.Leaderboard,
		content:          cfg.Content,
		now:              cfg.Now,
	}
}
