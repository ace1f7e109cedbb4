package pipeline

import (
	"errors"
	"sync"

	"flocksnap/pkg/logger"
	"flocksnap/pkg/models"
	"flocksnap/pkg/ratelimit"
	"flocksnap/pkg/twitter"
)

// Fetcher provides the two paginated list endpoints the collector walks.
// *twitter.Client satisfies it.
type Fetcher interface {
	FetchFollowersPage(screenName, cursor string) (*twitter.UserPage, error)
	FetchFollowingPage(screenName, cursor string) (*twitter.UserPage, error)
}

// Summary reports how many distinct accounts each pipeline delivered.
type Summary struct {
	Followers int
	Following int
}

// Collector runs the followers and following fetch pipelines concurrently,
// turning every account they yield into persistence commands on a shared
// channel. The pipelines are independent: one failing never interrupts the
// other's walk.
type Collector struct {
	fetcher    Fetcher
	limiter    ratelimit.Limiter
	screenName string
	logger     logger.Logger
}

// NewCollector creates a collector for the given target account. The limiter
// paces both pipelines through the same budget and may be nil to disable
// pacing.
func NewCollector(fetcher Fetcher, limiter ratelimit.Limiter, screenName string, log logger.Logger) *Collector {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Collector{
		fetcher:    fetcher,
		limiter:    limiter,
		screenName: screenName,
		logger:     log,
	}
}

// Run walks both lists to completion and closes the command channel once the
// last pipeline finishes. The caller must drain the channel concurrently or
// sends will block once its buffer fills. The summary counts whatever each
// pipeline managed to deliver; the returned error joins the pipeline
// failures, or is nil when both walks finished cleanly.
func (c *Collector) Run(commands chan<- Command) (Summary, error) {
	var (
		wg           sync.WaitGroup
		followers    int
		following    int
		followersErr error
		followingErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		followers, followersErr = c.runPipeline("followers", c.fetcher.FetchFollowersPage, StoreFollower, commands)
	}()
	go func() {
		defer wg.Done()
		following, followingErr = c.runPipeline("following", c.fetcher.FetchFollowingPage, StoreFollowing, commands)
	}()
	wg.Wait()
	close(commands)

	return Summary{Followers: followers, Following: following}, errors.Join(followersErr, followingErr)
}

// runPipeline walks one list, sending a snapshot command followed by an edge
// command for every account yielded. On walker failure it sends exactly one
// FailedSession and reports the failure; commands already sent are not
// retracted. Returns the number of distinct accounts seen.
func (c *Collector) runPipeline(list string, fetch twitter.PageFunc, edgeKind CommandKind, commands chan<- Command) (int, error) {
	pager := twitter.NewPager(fetch, c.limiter, c.logger.WithField("list", list))
	seen := make(map[int64]struct{})

	err := pager.Walk(c.screenName, func(u twitter.User) {
		seen[u.ID] = struct{}{}
		commands <- Command{Kind: StoreSnapshot, Snapshot: models.NewUserSnapshot(u)}
		commands <- Command{Kind: edgeKind, AccountID: u.ID}
	})
	if err != nil {
		commands <- Command{Kind: FailedSession}
		c.logger.ErrorWithFields("fetch pipeline failed", map[string]interface{}{
			"list":        list,
			"screen_name": c.screenName,
			"accounts":    len(seen),
			"error":       err.Error(),
		})
		return len(seen), err
	}

	c.logger.InfoWithFields("fetch pipeline complete", map[string]interface{}{
		"list":        list,
		"screen_name": c.screenName,
		"accounts":    len(seen),
	})
	return len(seen), nil
}
