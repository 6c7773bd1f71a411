package handlers

import (
	"time"

	"github.com/mettlestate/tournament-site/internal/logic"
	"github.com/mettlestate/tournament-site/internal/models"
	"github.com/mettlestate/tournament-site/internal/worker"
)

// MockSubmissionQueue runs jobs inline unless EnqueueFunc says otherwise.
type MockSubmissionQueue struct {
	EnqueueFunc func(job *worker.Job) bool
	Depth       int
}

func (m *MockSubmissionQueue) Enqueue(job *worker.Job) bool {
	if m.EnqueueFunc != nil {
		return m.EnqueueFunc(job)
	}
	return true
}

func (m *MockSubmissionQueue) QueueDepth() int { return m.Depth }

// inlineQueue processes each job synchronously with sub.
func inlineQueue(sub logic.Submitter) *MockSubmissionQueue {
	return &MockSubmissionQueue{EnqueueFunc: func(job *worker.Job) bool {
		receipt, err := sub.Submit(job.Ctx, job.Form)
		job.Result <- worker.Result{Receipt: receipt, Err: err}
		return true
	}}
}

// MockLeaderboardService
type MockLeaderboardService struct {
	ViewFunc   func(opts logic.ViewOptions) models.LeaderboardView
	StateFunc  func() models.LeaderboardState
	RetryCalls int
}

func (m *MockLeaderboardService) View(opts logic.ViewOptions) models.LeaderboardView {
	if m.ViewFunc != nil {
		return m.ViewFunc(opts)
	}
	return models.LeaderboardView{State: m.State(), SortBy: string(opts.SortBy), Order: string(opts.Order)}
}

func (m *MockLeaderboardService) State() models.LeaderboardState {
	if m.StateFunc != nil {
		return m.StateFunc()
	}
	return models.LeaderboardState{Status: models.LoadReady}
}

func (m *MockLeaderboardService) Retry() { m.RetryCalls++ }

// testHandler wires a Handler around the real store, validator and content
// service with a mock leaderboard and an inline queue.
func testHandler(store *logic.RegistrationStore, remote logic.Remote) (*Handler, *MockLeaderboardService) {
	svc := logic.NewRegistrationService(logic.RegistrationServiceConfig{
		Counter:        store,
		Remote:         remote,
		SuccessDisplay: 2 * time.Second,
	})
	lb := &MockLeaderboardService{}
	start := time.Date(2025, 10, 24, 12, 0, 0, 0, time.UTC)

	h := New(Config{
		WorkerPool:       inlineQueue(svc),
		QueueCapacity:    8,
		MaxRegistrations: 128,
		Counter:          store,
		Registrations:    svc,
		Leaderboard:      lb,
		Content:          logic.NewContentService(store, 128, start),
		Now:              func() time.Time { return start.Add(-90 * time.Minute) },
	})
	return h, lb
}
