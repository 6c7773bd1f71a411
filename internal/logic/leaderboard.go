package logic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"mime"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mettlestate/tournament-site/internal/models"
)

const (
	MinPoints = 1000
	MaxPoints = 9999

	// maxPayloadSize bounds the user-list body we are willing to read.
	maxPayloadSize = 1 << 20
)

// Attempt failures. Each is terminal for its attempt and retried by the chain.
var (
	ErrBadStatus    = errors.New("leaderboard source returned an error status")
	ErrContentType  = errors.New("leaderboard source did not return JSON")
	ErrPayloadShape = errors.New("leaderboard source returned an unexpected payload")
	ErrTimeout      = errors.New("leaderboard request timed out")
	ErrTransport    = errors.New("leaderboard source unreachable")
)

var (
	leaderboardAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tournament_leaderboard_fetch_attempts_total",
		Help: "Leaderboard fetch attempts by outcome",
	}, []string{"outcome"})

	leaderboardFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tournament_leaderboard_fetch_duration_seconds",
		Help:    "Duration of leaderboard fetch attempts, including the minimum delay",
		Buckets: prometheus.DefBuckets,
	})

	leaderboardFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tournament_leaderboard_fallback_fields_total",
		Help: "Leaderboard records that needed a generated id or handle",
	})
)

// FetchError is the failure of one attempt.
type FetchError struct {
	Attempt int
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("attempt %d: %v", e.Attempt, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// UserMessage turns an attempt failure into text for the page.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "The leaderboard took too long to respond."
	case errors.Is(err, ErrBadStatus):
		return "The leaderboard service is having trouble right now."
	case errors.Is(err, ErrContentType), errors.Is(err, ErrPayloadShape):
		return "The leaderboard returned data we could not read."
	default:
		return "Could not reach the leaderboard."
	}
}

type LeaderboardConfig struct {
	URL        string
	Limit      int
	Timeout    time.Duration
	MinDelay   time.Duration
	MaxRetries int
	RetryDelay time.Duration
	Client     *http.Client
	// Score draws a score for a new entry. Defaults to a uniform draw in
	// [MinPoints, MaxPoints].
	Score  func() int
	Logger *zap.Logger
}

// LeaderboardLoader fetches the user list, scores it and serves sorted and
// filtered views of it. The canonical list is replaced wholesale by each
// successful fetch and never mutated in place.
type LeaderboardLoader struct {
	cfg    LeaderboardConfig
	client *http.Client
	logger *zap.SugaredLogger

	mu        sync.RWMutex
	canonical []models.LeaderboardEntry
	state     models.LeaderboardState
	gen       uint64
	cancel    context.CancelFunc
	baseCtx   context.Context
	closed    bool
	wg        sync.WaitGroup
}

func NewLeaderboardLoader(cfg LeaderboardConfig) *LeaderboardLoader {
	if cfg.Limit <= 0 {
		cfg.Limit = 10
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Score == nil {
		cfg.Score = func() int { return MinPoints + rand.Intn(MaxPoints-MinPoints+1) }
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{}
	}

	return &LeaderboardLoader{
		cfg:     cfg,
		client:  client,
		logger:  cfg.Logger.Sugar(),
		state:   models.LeaderboardState{Status: models.LoadIdle},
		baseCtx: context.Background(),
	}
}

// Start kicks off the first load chain in the background. The chain is
// cancelled when ctx is done or Close is called.
func (l *LeaderboardLoader) Start(ctx context.Context) {
	l.mu.Lock()
	l.baseCtx = ctx
	l.mu.Unlock()
	l.spawn("initial")
}

// Retry is the manual retry: it resets the attempt counter and error,
// abandons any pending automatic retry and starts a new chain.
func (l *LeaderboardLoader) Retry() {
	l.spawn("manual")
}

// Load runs a full chain synchronously: one attempt plus up to MaxRetries
// re-attempts spaced RetryDelay apart. It supersedes any running chain.
func (l *LeaderboardLoader) Load(ctx context.Context) error {
	chainCtx, gen := l.reset(ctx)
	return l.runChain(chainCtx, gen)
}

// Close cancels the running chain and waits for background work to finish.
// Start and Retry are no-ops once Close has begun.
func (l *LeaderboardLoader) Close() {
	l.mu.Lock()
	l.closed = true
	if l.cancel != nil {
		l.cancel()
	}
	l.mu.Unlock()
	l.wg.Wait()
}

// Wait blocks until background chains have finished. Used by tests and
// shutdown.
func (l *LeaderboardLoader) Wait() {
	l.wg.Wait()
}

// State returns a snapshot of the loader state.
func (l *LeaderboardLoader) State() models.LeaderboardState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	st := l.state
	if st.LoadedAt != nil {
		t := *st.LoadedAt
		st.LoadedAt = &t
	}
	return st
}

// Canonical returns a copy of the list as fetched and scored.
func (l *LeaderboardLoader) Canonical() []models.LeaderboardEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.LeaderboardEntry, len(l.canonical))
	copy(out, l.canonical)
	return out
}

// View derives the display list for opts from the canonical list. Rank and
// badges always follow absolute points order, not the display order.
func (l *LeaderboardLoader) View(opts ViewOptions) models.LeaderboardView {
	canonical := l.Canonical()
	opts = opts.withDefaults()

	display := FilterEntries(SortEntries(canonical, opts.SortBy, opts.Order), opts.Filter)
	ranks := RankByPoints(canonical)

	rows := make([]models.RankedEntry, 0, len(display))
	for _, e := range display {
		rank := ranks[e.ID]
		rows = append(rows, models.RankedEntry{
			LeaderboardEntry: e,
			Rank:             rank,
			Badge:            badgeFor(rank),
		})
	}

	return models.LeaderboardView{
		State:   l.State(),
		SortBy:  string(opts.SortBy),
		Order:   string(opts.Order),
		Filter:  opts.Filter,
		Entries: rows,
		TopIDs:  TopThree(canonical),
		Total:   len(canonical),
	}
}

func (l *LeaderboardLoader) spawn(reason string) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		l.logger.Debugw("Leaderboard load skipped after close", "reason", reason)
		return
	}
	chainCtx, gen := l.resetLocked(l.baseCtx)
	// Added under l.mu so it never races the Wait in Close.
	l.wg.Add(1)
	l.mu.Unlock()

	l.logger.Infow("Leaderboard load started", "reason", reason, "generation", gen)
	go func() {
		defer l.wg.Done()
		if err := l.runChain(chainCtx, gen); err != nil && chainCtx.Err() == nil {
			l.logger.Warnw("Leaderboard load gave up", "reason", reason, "generation", gen, "error", err)
		}
	}()
}

// reset supersedes the running chain and returns the context and
// generation of a new one.
func (l *LeaderboardLoader) reset(parent context.Context) (context.Context, uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.resetLocked(parent)
}

func (l *LeaderboardLoader) resetLocked(parent context.Context) (context.Context, uint64) {
	if l.cancel != nil {
		l.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	l.cancel = cancel
	l.gen++
	l.state = models.LeaderboardState{
		Status:   models.LoadLoading,
		LoadedAt: l.state.LoadedAt,
	}
	return ctx, l.gen
}

func (l *LeaderboardLoader) runChain(ctx context.Context, gen uint64) error {
	var lastErr error
	for attempt := 0; attempt <= l.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(l.cfg.RetryDelay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
			if !l.markRetrying(gen, attempt) {
				return context.Canceled
			}
		}

		entries, err := l.fetchOnce(ctx, attempt)
		if err == nil {
			l.succeed(gen, entries)
			return nil
		}
		if ctx.Err() != nil {
			// Superseded or shutting down; the new owner reports state.
			return ctx.Err()
		}

		lastErr = &FetchError{Attempt: attempt, Err: err}
		final := attempt == l.cfg.MaxRetries
		l.fail(gen, attempt, err, final)
		l.logger.Warnw("Leaderboard fetch failed",
			"operation", "load",
			"attempt", attempt,
			"maxRetries", l.cfg.MaxRetries,
			"final", final,
			"url", l.cfg.URL,
			"error", err,
		)
	}
	return lastErr
}

func (l *LeaderboardLoader) markRetrying(gen uint64, attempt int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return false
	}
	l.state.Status = models.LoadLoading
	l.state.Attempt = attempt
	return true
}

func (l *LeaderboardLoader) succeed(gen uint64, entries []models.LeaderboardEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return
	}
	now := time.Now().UTC()
	l.canonical = entries
	l.state = models.LeaderboardState{
		Status:   models.LoadReady,
		Attempt:  l.state.Attempt,
		LoadedAt: &now,
	}
}

func (l *LeaderboardLoader) fail(gen uint64, attempt int, err error, final bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return
	}
	l.state.Attempt = attempt
	l.state.Error = UserMessage(err)
	if final {
		l.state.Status = models.LoadError
		l.state.Retryable = true
	}
}

// fetchOnce is one attempt: the request joined with the minimum delay, so a
// successful attempt never resolves before the delay has elapsed.
func (l *LeaderboardLoader) fetchOnce(ctx context.Context, attempt int) ([]models.LeaderboardEntry, error) {
	start := time.Now()
	defer func() { leaderboardFetchDuration.Observe(time.Since(start).Seconds()) }()

	var users []models.User
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = l.fetchUsers(gctx, ctx)
		return err
	})
	g.Go(func() error {
		timer := time.NewTimer(l.cfg.MinDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-gctx.Done():
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		leaderboardAttempts.WithLabelValues(outcomeLabel(err)).Inc()
		return nil, err
	}

	leaderboardAttempts.WithLabelValues("success").Inc()
	entries := l.decorate(users, attempt)
	l.logger.Debugw("Leaderboard fetched", "attempt", attempt, "received", len(users), "kept", len(entries))
	return entries, nil
}

// fetchUsers issues the GET. parent is the chain context, used to tell a
// timeout apart from cancellation.
func (l *LeaderboardLoader) fetchUsers(ctx, parent context.Context) ([]models.User, error) {
	reqCtx, cancel := context.WithTimeout(ctx, l.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, l.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, l.classifyTransport(reqCtx, parent, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxPayloadSize))
		return nil, fmt.Errorf("%w: %d %s", ErrBadStatus, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	if !isJSON(resp.Header.Get("Content-Type")) {
		return nil, fmt.Errorf("%w: content type %q", ErrContentType, resp.Header.Get("Content-Type"))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadSize))
	if err != nil {
		return nil, l.classifyTransport(reqCtx, parent, err)
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: expected a JSON array, got %d bytes", ErrPayloadShape, len(trimmed))
	}

	var users []models.User
	if err := json.Unmarshal(trimmed, &users); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPayloadShape, err)
	}
	return users, nil
}

func (l *LeaderboardLoader) classifyTransport(reqCtx, parent context.Context, err error) error {
	if errors.Is(reqCtx.Err(), context.DeadlineExceeded) && parent.Err() == nil {
		return fmt.Errorf("%w after %s", ErrTimeout, l.cfg.Timeout)
	}
	return fmt.Errorf("%w: %w", ErrTransport, err)
}

// decorate truncates to the limit, fills in missing ids and handles, and
// assigns scores. Records are never dropped for missing fields.
func (l *LeaderboardLoader) decorate(users []models.User, attempt int) []models.LeaderboardEntry {
	if len(users) > l.cfg.Limit {
		users = users[:l.cfg.Limit]
	}

	entries := make([]models.LeaderboardEntry, 0, len(users))
	seen := make(map[string]struct{}, len(users))
	for i, u := range users {
		id := strings.TrimSpace(u.ID)
		if _, dup := seen[id]; id == "" || dup {
			generated := "gen-" + uuid.NewString()
			l.logger.Warnw("Leaderboard record missing a unique id, using fallback",
				"attempt", attempt, "index", i, "id", id, "fallback", generated)
			leaderboardFallbacks.Inc()
			id = generated
		}
		seen[id] = struct{}{}

		handle := strings.TrimSpace(u.Username)
		if handle == "" {
			handle = "player_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
			l.logger.Warnw("Leaderboard record missing a handle, using fallback",
				"attempt", attempt, "index", i, "id", id, "fallback", handle)
			leaderboardFallbacks.Inc()
		}

		entries = append(entries, models.LeaderboardEntry{
			ID:       id,
			Name:     u.Name,
			Username: handle,
			Points:   l.cfg.Score(),
		})
	}
	return entries
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrBadStatus):
		return "bad_status"
	case errors.Is(err, ErrContentType):
		return "content_type"
	case errors.Is(err, ErrPayloadShape):
		return "payload"
	default:
		return "transport"
	}
}
