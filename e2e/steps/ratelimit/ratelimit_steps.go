package ratelimit

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POSTWithHeaders(path string, body any, headers map[string]string) error
	GetResponseField(field string) (any, error)
	GetLastResponseBody() []byte
	Saved(key string) string
}

// RegisterSteps registers per-IP verification rate limit steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &ratelimitSteps{tc: tc}

	ctx.Step(`^I am verifying from a fresh IP address$`, steps.freshIP)
	ctx.Step(`^I verify the saved code (\d+) times from that IP$`, steps.verifyNTimes)
	ctx.Step(`^every attempt should have been allowed$`, steps.everyAttemptAllowed)
	ctx.Step(`^the next attempt from that IP should report "([^"]*)"$`, steps.nextAttemptReports)
	ctx.Step(`^an attempt from another fresh IP should be allowed$`, steps.otherIPAllowed)
}

type ratelimitSteps struct {
	tc TestContext
	// State for tracking across steps
	currentIP string
	denied    int
}

// freshIP picks an address from 10.0.0.0/8 so repeated runs against a
// persistent rate limit store do not collide. The server only believes the
// forwarded address when TRUSTED_PROXIES covers the test runner.
func freshIP() string {
	return fmt.Sprintf("10.%d.%d.%d", rand.IntN(256), rand.IntN(256), 1+rand.IntN(254))
}

func (s *ratelimitSteps) freshIP(ctx context.Context) error {
	s.currentIP = freshIP()
	s.denied = 0
	return nil
}

func (s *ratelimitSteps) attempt(ip string) (string, error) {
	err := s.tc.POSTWithHeaders("/v1/verifications/manual",
		map[string]any{"verificationCode": s.tc.Saved("code")},
		map[string]string{"X-Forwarded-For": ip},
	)
	if err != nil {
		return "", err
	}
	code, err := s.tc.GetResponseField("errorCode")
	if err != nil {
		return "", nil
	}
	return fmt.Sprint(code), nil
}

func (s *ratelimitSteps) verifyNTimes(ctx context.Context, n int) error {
	for range n {
		code, err := s.attempt(s.currentIP)
		if err != nil {
			return err
		}
		if code == "RATE_LIMIT_EXCEEDED" {
			s.denied++
		}
	}
	return nil
}

func (s *ratelimitSteps) everyAttemptAllowed(ctx context.Context) error {
	if s.denied > 0 {
		return fmt.Errorf("%d attempts were rate limited", s.denied)
	}
	return nil
}

func (s *ratelimitSteps) nextAttemptReports(ctx context.Context, expected string) error {
	code, err := s.attempt(s.currentIP)
	if err != nil {
		return err
	}
	if code != expected {
		return fmt.Errorf("expected %s, got %q: %s", expected, code, s.tc.GetLastResponseBody())
	}
	if _, err := s.tc.GetResponseField("retryAfterSeconds"); err != nil {
		return fmt.Errorf("rate limited response without retry hint: %w", err)
	}
	return nil
}

func (s *ratelimitSteps) otherIPAllowed(ctx context.Context) error {
	code, err := s.attempt(freshIP())
	if err != nil {
		return err
	}
	if code == "RATE_LIMIT_EXCEEDED" {
		return fmt.Errorf("unrelated IP was rate limited: %s", s.tc.GetLastResponseBody())
	}
	return nil
}
