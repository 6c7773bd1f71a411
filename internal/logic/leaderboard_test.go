package logic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mettlestate/tournament-site/internal/models"
)

func usersJSON(n int) string {
	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		parts = append(parts, fmt.Sprintf(`{"id":%d,"name":"User %d","username":"user%d","email":"u%d@example.com"}`, i, i, i, i))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// flakyServer fails with status until ok is set, then serves body.
type flakyServer struct {
	hits   atomic.Int32
	ok     atomic.Bool
	status int
	body   string

	mu    sync.Mutex
	hitAt []time.Time
}

func (s *flakyServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.hits.Add(1)
	s.mu.Lock()
	s.hitAt = append(s.hitAt, time.Now())
	s.mu.Unlock()
	if !s.ok.Load() {
		http.Error(w, "unavailable", s.status)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	fmt.Fprint(w, s.body)
}

func testLoaderConfig(url string) LeaderboardConfig {
	return LeaderboardConfig{
		URL:        url,
		Limit:      10,
		Timeout:    time.Second,
		MinDelay:   0,
		MaxRetries: 3,
		RetryDelay: 5 * time.Millisecond,
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestLoad_TruncatesAndScores(t *testing.T) {
	srv := &flakyServer{body: usersJSON(12)}
	srv.ok.Store(true)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	loader := NewLeaderboardLoader(testLoaderConfig(ts.URL))
	if err := loader.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	entries := loader.Canonical()
	if len(entries) != 10 {
		t.Fatalf("got %d entries, want 10", len(entries))
	}
	for i, e := range entries {
		if e.ID != fmt.Sprint(i+1) {
			t.Errorf("entry %d id = %q, want fetch order kept", i, e.ID)
		}
		if e.Points < MinPoints || e.Points > MaxPoints {
			t.Errorf("entry %s points = %d, out of [%d, %d]", e.ID, e.Points, MinPoints, MaxPoints)
		}
	}

	st := loader.State()
	if st.Status != models.LoadReady || st.Error != "" || st.LoadedAt == nil {
		t.Errorf("state = %+v, want ready", st)
	}
}

func TestLoad_FallbackIdentity(t *testing.T) {
	body := `[
		{"id": 1, "name": "Leanne Graham", "username": "Bret"},
		{"name": "No Id", "username": "ghost"},
		{"id": 1, "name": "Duplicate", "username": "dupe"},
		{"id": "4", "name": "No Handle"},
		{"id": 5, "name": "Blank Handle", "username": "   "}
	]`
	srv := &flakyServer{body: body}
	srv.ok.Store(true)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	loader := NewLeaderboardLoader(testLoaderConfig(ts.URL))
	if err := loader.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	entries := loader.Canonical()
	if len(entries) != 5 {
		t.Fatalf("got %d entries, want all 5 kept", len(entries))
	}

	ids := make(map[string]bool)
	for _, e := range entries {
		if e.ID == "" || ids[e.ID] {
			t.Errorf("id %q is empty or duplicated", e.ID)
		}
		ids[e.ID] = true
		if e.Username == "" {
			t.Errorf("entry %s has no handle", e.ID)
		}
	}
	if !strings.HasPrefix(entries[1].ID, "gen-") || !strings.HasPrefix(entries[2].ID, "gen-") {
		t.Errorf("ids = %q, %q, want generated fallbacks", entries[1].ID, entries[2].ID)
	}
	if entries[0].ID != "1" || entries[3].ID != "4" {
		t.Errorf("valid ids rewritten: %q, %q", entries[0].ID, entries[3].ID)
	}
	if !strings.HasPrefix(entries[3].Username, "player_") || !strings.HasPrefix(entries[4].Username, "player_") {
		t.Errorf("handles = %q, %q, want player_ fallbacks", entries[3].Username, entries[4].Username)
	}
}

func TestLoad_BoundedRetryThenManualRecovery(t *testing.T) {
	srv := &flakyServer{status: http.StatusInternalServerError, body: usersJSON(3)}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	cfg := testLoaderConfig(ts.URL)
	cfg.RetryDelay = 20 * time.Millisecond
	loader := NewLeaderboardLoader(cfg)
	err := loader.Load(context.Background())

	var fe *FetchError
	if !errors.As(err, &fe) || !errors.Is(err, ErrBadStatus) {
		t.Fatalf("Load() error = %v, want FetchError wrapping ErrBadStatus", err)
	}
	if fe.Attempt != 3 {
		t.Errorf("final attempt = %d, want 3", fe.Attempt)
	}
	if hits := srv.hits.Load(); hits != 4 {
		t.Errorf("server hits = %d, want 1 attempt + 3 retries", hits)
	}
	srv.mu.Lock()
	for i := 1; i < len(srv.hitAt); i++ {
		if gap := srv.hitAt[i].Sub(srv.hitAt[i-1]); gap < cfg.RetryDelay {
			t.Errorf("gap before attempt %d = %v, want at least %v", i, gap, cfg.RetryDelay)
		}
	}
	srv.mu.Unlock()

	st := loader.State()
	if st.Status != models.LoadError || !st.Retryable || st.Attempt != 3 || st.Error == "" {
		t.Errorf("state = %+v, want retryable error after attempt 3", st)
	}

	// No further attempts once the chain gave up.
	time.Sleep(30 * time.Millisecond)
	if hits := srv.hits.Load(); hits != 4 {
		t.Errorf("server hits = %d after give-up, want 4", hits)
	}

	srv.ok.Store(true)
	loader.Retry()
	loader.Wait()

	st = loader.State()
	if st.Status != models.LoadReady || st.Attempt != 0 || st.Error != "" || st.Retryable {
		t.Errorf("state after manual retry = %+v, want fresh ready state", st)
	}
	if n := len(loader.Canonical()); n != 3 {
		t.Errorf("got %d entries after recovery, want 3", n)
	}
}

func TestLoad_RecoversWithinChain(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, usersJSON(2))
	}))
	defer ts.Close()

	loader := NewLeaderboardLoader(testLoaderConfig(ts.URL))
	if err := loader.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if st := loader.State(); st.Status != models.LoadReady || st.Attempt != 2 {
		t.Errorf("state = %+v, want ready on attempt 2", st)
	}
}

func TestLoad_AttemptFailures(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		status      int
		body        string
		wantErr     error
	}{
		{"Server Error", "application/json", http.StatusServiceUnavailable, `[]`, ErrBadStatus},
		{"Not Found", "application/json", http.StatusNotFound, `[]`, ErrBadStatus},
		{"HTML Body", "text/html", http.StatusOK, `<html></html>`, ErrContentType},
		{"Missing Content Type", "", http.StatusOK, `[]`, ErrContentType},
		{"Object Payload", "application/json", http.StatusOK, `{"users": []}`, ErrPayloadShape},
		{"Truncated Array", "application/json", http.StatusOK, `[{"id": 1,`, ErrPayloadShape},
		{"Empty Body", "application/json", http.StatusOK, ``, ErrPayloadShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header()["Content-Type"] = []string{tt.contentType}
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer ts.Close()

			cfg := testLoaderConfig(ts.URL)
			cfg.MaxRetries = 0
			loader := NewLeaderboardLoader(cfg)

			err := loader.Load(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Load() error = %v, want %v", err, tt.wantErr)
			}
			st := loader.State()
			if st.Status != models.LoadError || st.Error != UserMessage(tt.wantErr) {
				t.Errorf("state = %+v", st)
			}
			if len(loader.Canonical()) != 0 {
				t.Error("failed load produced entries")
			}
		})
	}
}

func TestLoad_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()

	cfg := testLoaderConfig(ts.URL)
	cfg.Timeout = 30 * time.Millisecond
	cfg.MaxRetries = 1
	loader := NewLeaderboardLoader(cfg)

	err := loader.Load(context.Background())
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Load() error = %v, want ErrTimeout", err)
	}
	if st := loader.State(); st.Status != models.LoadError || st.Attempt != 1 {
		t.Errorf("state = %+v", st)
	}
}

func TestLoad_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	cfg := testLoaderConfig(url)
	cfg.MaxRetries = 0
	err := NewLeaderboardLoader(cfg).Load(context.Background())
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("Load() error = %v, want ErrTransport", err)
	}
}

func TestLoad_MinimumDelay(t *testing.T) {
	srv := &flakyServer{body: usersJSON(1)}
	srv.ok.Store(true)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	cfg := testLoaderConfig(ts.URL)
	cfg.MinDelay = 80 * time.Millisecond
	loader := NewLeaderboardLoader(cfg)

	start := time.Now()
	if err := loader.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("load resolved after %v, want at least the minimum delay", elapsed)
	}
}

func TestRetry_AbandonsPendingChain(t *testing.T) {
	srv := &flakyServer{status: http.StatusInternalServerError, body: usersJSON(4)}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	cfg := testLoaderConfig(ts.URL)
	cfg.RetryDelay = time.Hour
	loader := NewLeaderboardLoader(cfg)
	defer loader.Close()

	loader.Start(context.Background())
	waitFor(t, func() bool { return loader.State().Error != "" })

	if st := loader.State(); st.Status != models.LoadLoading {
		t.Errorf("status during automatic retry = %s, want loading", st.Status)
	}

	srv.ok.Store(true)
	loader.Retry()
	loader.Wait()

	if hits := srv.hits.Load(); hits != 2 {
		t.Errorf("server hits = %d, want 2 (abandoned chain must not fire)", hits)
	}
	if st := loader.State(); st.Status != models.LoadReady {
		t.Errorf("state = %+v, want ready", st)
	}
}

func TestStart_CancelledByContext(t *testing.T) {
	srv := &flakyServer{status: http.StatusInternalServerError}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	cfg := testLoaderConfig(ts.URL)
	cfg.RetryDelay = time.Hour
	loader := NewLeaderboardLoader(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	loader.Start(ctx)
	waitFor(t, func() bool { return srv.hits.Load() == 1 })
	cancel()

	done := make(chan struct{})
	go func() { loader.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("chain did not stop after context cancellation")
	}
}

func TestView_RanksFollowCanonicalPoints(t *testing.T) {
	srv := &flakyServer{body: `[
		{"id":1,"name":"Ann","username":"zed"},
		{"id":2,"name":"Bob","username":"amy"},
		{"id":3,"name":"Cat","username":"Max"},
		{"id":4,"name":"Dan","username":"bo"}
	]`}
	srv.ok.Store(true)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	scores := []int{5000, 9000, 7000, 1000}
	var next atomic.Int32
	cfg := testLoaderConfig(ts.URL)
	cfg.Score = func() int { return scores[next.Add(1)-1] }
	loader := NewLeaderboardLoader(cfg)
	if err := loader.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	view := loader.View(ViewOptions{SortBy: SortByHandle, Order: OrderAsc})
	gotOrder := make([]string, 0, len(view.Entries))
	for _, e := range view.Entries {
		gotOrder = append(gotOrder, e.Username)
	}
	if strings.Join(gotOrder, ",") != "amy,bo,Max,zed" {
		t.Errorf("handle order = %v", gotOrder)
	}

	wantTop := []string{"2", "3", "1"}
	if strings.Join(view.TopIDs, ",") != strings.Join(wantTop, ",") {
		t.Errorf("TopIDs = %v, want %v", view.TopIDs, wantTop)
	}

	byID := make(map[string]models.RankedEntry)
	for _, e := range view.Entries {
		byID[e.ID] = e
	}
	if byID["2"].Rank != 1 || byID["2"].Badge != "gold" || byID["4"].Rank != 4 || byID["4"].Badge != "" {
		t.Errorf("ranks = %+v", byID)
	}

	filtered := loader.View(ViewOptions{Filter: "M"})
	if len(filtered.Entries) != 2 || filtered.Total != 4 {
		t.Errorf("filter kept %d of %d, want 2 of 4", len(filtered.Entries), filtered.Total)
	}
	if strings.Join(filtered.TopIDs, ",") != strings.Join(wantTop, ",") {
		t.Errorf("filter changed TopIDs: %v", filtered.TopIDs)
	}

	raw, err := json.Marshal(view)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"topIds":["2","3","1"]`) {
		t.Errorf("view JSON = %s", raw)
	}
}

func TestUserMessage(t *testing.T) {
	if UserMessage(nil) != "" {
		t.Error("UserMessage(nil) should be empty")
	}
	wrapped := &FetchError{Attempt: 2, Err: fmt.Errorf("%w: boom", ErrTransport)}
	if got := UserMessage(wrapped); got != "Could not reach the leaderboard." {
		t.Errorf("UserMessage() = %q", got)
	}
	if !strings.HasPrefix(wrapped.Error(), "attempt 2:") {
		t.Errorf("Error() = %q", wrapped.Error())
	}
}

func TestRetryAfterCloseStartsNothing(t *testing.T) {
	srv := &flakyServer{status: http.StatusInternalServerError, body: usersJSON(3)}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	cfg := testLoaderConfig(ts.URL)
	cfg.RetryDelay = time.Hour
	loader := NewLeaderboardLoader(cfg)
	loader.Start(context.Background())
	waitFor(t, func() bool { return srv.hits.Load() == 1 })

	// Retries racing shutdown must not start chains after Close begins.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			loader.Retry()
		}()
	}
	loader.Close()
	wg.Wait()

	before := srv.hits.Load()
	loader.Retry()
	loader.Start(context.Background())
	loader.Wait()
	time.Sleep(20 * time.Millisecond)
	if hits := srv.hits.Load(); hits != before {
		t.Errorf("server hits = %d after Close, want %d", hits, before)
	}
}
