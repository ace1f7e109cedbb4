package twitter

import (
	"flocksnap/pkg/logger"
	"flocksnap/pkg/ratelimit"
)

// PageFunc fetches one page of a cursored user list. An empty cursor
// requests the first page.
type PageFunc func(screenName, cursor string) (*UserPage, error)

// Pager drives one cursored list endpoint to completion, page by page.
// It only walks and classifies; waiting out a reported rate limit is
// the caller's decision.
type Pager struct {
	fetch   PageFunc
	limiter ratelimit.Limiter
	logger  logger.Logger
}

// NewPager creates a pager over the given page fetch primitive. The
// limiter, when non-nil, paces calls to stay inside the endpoint's
// request budget.
func NewPager(fetch PageFunc, limiter ratelimit.Limiter, log logger.Logger) *Pager {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Pager{
		fetch:   fetch,
		limiter: limiter,
		logger:  log,
	}
}

// Walk visits every user in the list, in page order, until a page comes
// back empty. A rate-limit or transport failure ends the walk with that
// error; users already visited stay visited. The error of the first
// failing call propagates unchanged, so a rate limit on the very first
// page surfaces before anything is visited.
func (p *Pager) Walk(screenName string, visit func(User)) error {
	cursor := FirstCursor
	pages := 0
	users := 0

	for {
		if p.limiter != nil {
			p.limiter.Wait()
		}

		page, err := p.fetch(screenName, cursor)
		if err != nil {
			p.logger.ErrorWithFields("page walk failed", map[string]interface{}{
				"screen_name": screenName,
				"cursor":      cursor,
				"pages":       pages,
				"users":       users,
				"error":       err.Error(),
			})
			return err
		}

		if len(page.Users) == 0 {
			p.logger.DebugWithFields("page walk finished", map[string]interface{}{
				"screen_name": screenName,
				"pages":       pages,
				"users":       users,
			})
			return nil
		}

		pages++
		users += len(page.Users)
		for _, user := range page.Users {
			visit(user)
		}

		next := page.NextCursorStr
		if next == "" {
			// A page without a cursor cannot be advanced past; stop
			// instead of requesting the first page again.
			p.logger.WarnWithFields("page missing next cursor, stopping walk", map[string]interface{}{
				"screen_name": screenName,
				"pages":       pages,
				"users":       users,
			})
			return nil
		}
		cursor = next
	}
}
