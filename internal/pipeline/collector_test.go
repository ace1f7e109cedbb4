package pipeline

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	errs "flocksnap/pkg/errors"
	"flocksnap/pkg/twitter"
)

// mockFetcher serves scripted pages per list and records call counts.
type mockFetcher struct {
	mu             sync.Mutex
	followerPages  []fetchResult
	followingPages []fetchResult
	followerCalls  int
	followingCalls int
}

type fetchResult struct {
	page *twitter.UserPage
	err  error
}

func (m *mockFetcher) FetchFollowersPage(screenName, cursor string) (*twitter.UserPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := scriptedResult(m.followerPages, m.followerCalls)
	m.followerCalls++
	return res.page, res.err
}

func (m *mockFetcher) FetchFollowingPage(screenName, cursor string) (*twitter.UserPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := scriptedResult(m.followingPages, m.followingCalls)
	m.followingCalls++
	return res.page, res.err
}

// scriptedResult returns the scripted entry for a call, or an empty page once
// the script runs out so the walk terminates.
func scriptedResult(script []fetchResult, call int) fetchResult {
	if call >= len(script) {
		return fetchResult{page: &twitter.UserPage{}}
	}
	return script[call]
}

// countingLimiter counts Wait calls from both pipelines.
type countingLimiter struct {
	waits int32
}

func (c *countingLimiter) Allow() bool { return true }
func (c *countingLimiter) Wait()       { atomic.AddInt32(&c.waits, 1) }
func (c *countingLimiter) Reset()      {}

// userPage builds a page carrying the given account ids.
func userPage(next string, ids ...int64) *twitter.UserPage {
	page := &twitter.UserPage{NextCursorStr: next}
	for _, id := range ids {
		page.Users = append(page.Users, twitter.User{
			ID:         id,
			ScreenName: fmt.Sprintf("user_%d", id),
		})
	}
	return page
}

// step is one expected command in a sequence check.
type step struct {
	kind CommandKind
	id   int64
}

func checkSteps(t *testing.T, got []Command, want []step) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d commands, got %d", len(want), len(got))
	}
	for i, cmd := range got {
		if cmd.Kind != want[i].kind {
			t.Errorf("command %d: expected kind %s, got %s", i, want[i].kind, cmd.Kind)
		}
		id := cmd.AccountID
		if cmd.Kind == StoreSnapshot {
			id = cmd.Snapshot.AccountID
		}
		if id != want[i].id {
			t.Errorf("command %d: expected account %d, got %d", i, want[i].id, id)
		}
	}
}

// commandsFor filters the subsequence of commands concerning the given
// account ids, preserving arrival order.
func commandsFor(all []Command, ids map[int64]bool) []Command {
	var out []Command
	for _, cmd := range all {
		switch cmd.Kind {
		case StoreSnapshot:
			if ids[cmd.Snapshot.AccountID] {
				out = append(out, cmd)
			}
		case StoreFollower, StoreFollowing:
			if ids[cmd.AccountID] {
				out = append(out, cmd)
			}
		}
	}
	return out
}

func countKind(all []Command, kind CommandKind) int {
	n := 0
	for _, cmd := range all {
		if cmd.Kind == kind {
			n++
		}
	}
	return n
}

func TestCollectorDeliversBothLists(t *testing.T) {
	fetcher := &mockFetcher{
		followerPages: []fetchResult{
			{page: userPage("f2", 1, 2)},
			{page: userPage("f3", 3)},
			{page: userPage("")},
		},
		followingPages: []fetchResult{
			{page: userPage("g2", 101)},
			{page: userPage("")},
		},
	}
	collector := NewCollector(fetcher, nil, "me", nil)

	// Collect everything the pipelines send
	commands := make(chan Command, 4)
	var received []Command
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for cmd := range commands {
			received = append(received, cmd)
		}
	}()

	summary, err := collector.Run(commands)
	// wg returning proves Run closed the channel
	wg.Wait()

	if err != nil {
		t.Fatalf("expected clean run, got error: %v", err)
	}
	if summary.Followers != 3 {
		t.Errorf("expected 3 followers, got %d", summary.Followers)
	}
	if summary.Following != 1 {
		t.Errorf("expected 1 following, got %d", summary.Following)
	}
	if len(received) != 8 {
		t.Errorf("expected 8 commands, got %d", len(received))
	}
	if n := countKind(received, FailedSession); n != 0 {
		t.Errorf("expected no failure markers, got %d", n)
	}

	// Each pipeline's subsequence keeps record order: snapshot then edge
	followerSide := commandsFor(received, map[int64]bool{1: true, 2: true, 3: true})
	checkSteps(t, followerSide, []step{
		{StoreSnapshot, 1},
		{StoreFollower, 1},
		{StoreSnapshot, 2},
		{StoreFollower, 2},
		{StoreSnapshot, 3},
		{StoreFollower, 3},
	})
	followingSide := commandsFor(received, map[int64]bool{101: true})
	checkSteps(t, followingSide, []step{
		{StoreSnapshot, 101},
		{StoreFollowing, 101},
	})
}

func TestCollectorEmptyLists(t *testing.T) {
	fetcher := &mockFetcher{}
	collector := NewCollector(fetcher, nil, "me", nil)

	commands := make(chan Command, 4)
	var received []Command
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for cmd := range commands {
			received = append(received, cmd)
		}
	}()

	summary, err := collector.Run(commands)
	wg.Wait()

	if err != nil {
		t.Fatalf("expected clean run, got error: %v", err)
	}
	if summary.Followers != 0 || summary.Following != 0 {
		t.Errorf("expected empty summary, got %+v", summary)
	}
	if len(received) != 0 {
		t.Errorf("expected no commands, got %d", len(received))
	}
	if fetcher.followerCalls != 1 {
		t.Errorf("expected 1 followers call, got %d", fetcher.followerCalls)
	}
	if fetcher.followingCalls != 1 {
		t.Errorf("expected 1 following call, got %d", fetcher.followingCalls)
	}
}

func TestCollectorPipelineFailureSendsOneMarker(t *testing.T) {
	fetcher := &mockFetcher{
		followerPages: []fetchResult{
			{page: userPage("f2", 1)},
			{err: errs.NewTransport(fmt.Errorf("connection reset"), "request failed")},
		},
		followingPages: []fetchResult{
			{page: userPage("g2", 101)},
			{page: userPage("")},
		},
	}
	collector := NewCollector(fetcher, nil, "me", nil)

	commands := make(chan Command, 4)
	var received []Command
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for cmd := range commands {
			received = append(received, cmd)
		}
	}()

	summary, err := collector.Run(commands)
	wg.Wait()

	if err == nil {
		t.Fatal("expected pipeline failure to surface")
	}
	if errs.TypeOf(err) != errs.ErrorTypeTransport {
		t.Errorf("expected transport classification, got %v", errs.TypeOf(err))
	}
	if n := countKind(received, FailedSession); n != 1 {
		t.Fatalf("expected exactly one failure marker, got %d", n)
	}

	// Records delivered before the failure stay delivered
	followerSide := commandsFor(received, map[int64]bool{1: true})
	checkSteps(t, followerSide, []step{
		{StoreSnapshot, 1},
		{StoreFollower, 1},
	})
	if summary.Followers != 1 {
		t.Errorf("expected 1 follower before failure, got %d", summary.Followers)
	}

	// The failed pipeline sends nothing after its marker
	markerIdx := -1
	for i, cmd := range received {
		if cmd.Kind == FailedSession {
			markerIdx = i
		}
	}
	for _, cmd := range received[markerIdx+1:] {
		if cmd.Kind == StoreFollower {
			t.Error("follower command sent after failure marker")
		}
		if cmd.Kind == StoreSnapshot && cmd.Snapshot.AccountID < 100 {
			t.Error("follower snapshot sent after failure marker")
		}
	}

	// The other pipeline finished untouched
	followingSide := commandsFor(received, map[int64]bool{101: true})
	checkSteps(t, followingSide, []step{
		{StoreSnapshot, 101},
		{StoreFollowing, 101},
	})
	if summary.Following != 1 {
		t.Errorf("expected 1 following, got %d", summary.Following)
	}
}

func TestCollectorFirstCallRateLimited(t *testing.T) {
	resetAt := time.Now().Add(12 * time.Minute).Truncate(time.Second)
	fetcher := &mockFetcher{
		followerPages: []fetchResult{
			{err: errs.NewRateLimited(resetAt, "rate limit exceeded")},
		},
		followingPages: []fetchResult{
			{page: userPage("g2", 101, 102)},
			{page: userPage("")},
		},
	}
	collector := NewCollector(fetcher, nil, "me", nil)

	commands := make(chan Command, 4)
	var received []Command
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for cmd := range commands {
			received = append(received, cmd)
		}
	}()

	summary, err := collector.Run(commands)
	wg.Wait()

	if !errs.IsRateLimited(err) {
		t.Fatalf("expected rate limit classification, got %v", err)
	}
	if retryAt, ok := errs.RetryAt(err); !ok || !retryAt.Equal(resetAt) {
		t.Errorf("expected retry time %v, got %v (ok=%v)", resetAt, retryAt, ok)
	}

	// Nothing from the rate-limited pipeline except its marker
	if summary.Followers != 0 {
		t.Errorf("expected 0 followers, got %d", summary.Followers)
	}
	for _, cmd := range received {
		if cmd.Kind == StoreFollower {
			t.Error("unexpected follower command from rate-limited pipeline")
		}
	}
	if n := countKind(received, FailedSession); n != 1 {
		t.Errorf("expected exactly one failure marker, got %d", n)
	}

	// The other pipeline still ran to completion
	if fetcher.followingCalls != 2 {
		t.Errorf("expected 2 following calls, got %d", fetcher.followingCalls)
	}
	if summary.Following != 2 {
		t.Errorf("expected 2 following, got %d", summary.Following)
	}
}

func TestCollectorBothPipelinesFail(t *testing.T) {
	fetcher := &mockFetcher{
		followerPages: []fetchResult{
			{err: errs.NewRateLimited(time.Now().Add(time.Minute), "rate limit exceeded")},
		},
		followingPages: []fetchResult{
			{err: errs.NewTransport(fmt.Errorf("connection reset"), "request failed")},
		},
	}
	collector := NewCollector(fetcher, nil, "me", nil)

	commands := make(chan Command, 4)
	var received []Command
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for cmd := range commands {
			received = append(received, cmd)
		}
	}()

	summary, err := collector.Run(commands)
	wg.Wait()

	if err == nil {
		t.Fatal("expected combined failure")
	}
	if !errs.IsRateLimited(err) {
		t.Error("expected rate limit to be detectable in the joined error")
	}
	if n := countKind(received, FailedSession); n != 2 {
		t.Errorf("expected one marker per failed pipeline, got %d", n)
	}
	if summary.Followers != 0 || summary.Following != 0 {
		t.Errorf("expected empty summary, got %+v", summary)
	}
}

func TestCollectorCountsDistinctAccounts(t *testing.T) {
	// Account 2 appears on two pages; it is sent twice but counted once
	fetcher := &mockFetcher{
		followerPages: []fetchResult{
			{page: userPage("f2", 1, 2)},
			{page: userPage("f3", 2, 3)},
			{page: userPage("")},
		},
	}
	collector := NewCollector(fetcher, nil, "me", nil)

	commands := make(chan Command, 4)
	var received []Command
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for cmd := range commands {
			received = append(received, cmd)
		}
	}()

	summary, err := collector.Run(commands)
	wg.Wait()

	if err != nil {
		t.Fatalf("expected clean run, got error: %v", err)
	}
	if summary.Followers != 3 {
		t.Errorf("expected 3 distinct followers, got %d", summary.Followers)
	}
	if n := countKind(received, StoreFollower); n != 4 {
		t.Errorf("expected every record sent including duplicates, got %d edges", n)
	}
}

func TestCollectorSharesLimiterAcrossPipelines(t *testing.T) {
	fetcher := &mockFetcher{
		followerPages: []fetchResult{
			{page: userPage("f2", 1)},
			{page: userPage("")},
		},
	}
	limiter := &countingLimiter{}
	collector := NewCollector(fetcher, limiter, "me", nil)

	commands := make(chan Command, 4)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range commands {
		}
	}()

	if _, err := collector.Run(commands); err != nil {
		t.Fatalf("expected clean run, got error: %v", err)
	}
	wg.Wait()

	// 2 follower fetches + 1 following fetch, each paced through the limiter
	if got := atomic.LoadInt32(&limiter.waits); got != 3 {
		t.Errorf("expected 3 limiter waits, got %d", got)
	}
}
