package ratelimit

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string) error
	StatusCode() int
	Header(name string) string
}

// RegisterSteps registers rate-limiting step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &ratelimitSteps{tc: tc}

	ctx.Step(`^I send (\d+) requests to "([^"]*)"$`, steps.sendNRequests)
	ctx.Step(`^at least one response should be rate limited$`, steps.atLeastOneRateLimited)
	ctx.Step(`^the rate limited response should include a retry hint$`, steps.rateLimitedIncludesRetryHint)
	ctx.Step(`^the response should include rate limit headers$`, steps.responseIncludesRateLimitHeaders)
}

type ratelimitSteps struct {
	tc TestContext
	// State captured across the burst for the assertion steps.
	throttledCount  int
	sawRetryAfter   bool
	lastBurstStatus int
}

// sendNRequests hammers one path and keeps note of throttled responses. The
// burst stops early once a throttle is seen so a long budget does not slow
// the suite down.
func (s *ratelimitSteps) sendNRequests(ctx context.Context, n int, path string) error {
	s.throttledCount = 0
	s.sawRetryAfter = false

	for i := 0; i < n; i++ {
		if err := s.tc.GET(path); err != nil {
			return err
		}
		s.lastBurstStatus = s.tc.StatusCode()
		if s.lastBurstStatus == http.StatusTooManyRequests {
			s.throttledCount++
			if s.tc.Header("Retry-After") != "" {
				s.sawRetryAfter = true
			}
			return nil
		}
	}
	return nil
}

func (s *ratelimitSteps) atLeastOneRateLimited(ctx context.Context) error {
	if s.throttledCount == 0 {
		return fmt.Errorf("no response in the burst was rate limited (last status %d)", s.lastBurstStatus)
	}
	return nil
}

func (s *ratelimitSteps) rateLimitedIncludesRetryHint(ctx context.Context) error {
	if !s.sawRetryAfter {
		return fmt.Errorf("throttled response carried no Retry-After header")
	}
	return nil
}

func (s *ratelimitSteps) responseIncludesRateLimitHeaders(ctx context.Context) error {
	for _, name := range []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"} {
		if s.tc.Header(name) == "" {
			return fmt.Errorf("response is missing header %s", name)
		}
	}
	return nil
}
