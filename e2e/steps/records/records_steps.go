package records

import (
	"context"
	"fmt"
	"time"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POSTWithHeaders(path string, body any, headers map[string]string) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	GetOfficerToken() string
	Save(key, value string)
	Saved(key string) string
}

// RegisterSteps registers officer record administration steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &recordSteps{tc: tc}

	ctx.Step(`^I am an authenticated officer$`, steps.authenticatedOfficer)
	ctx.Step(`^I register a "([^"]*)" numbered "([^"]*)"$`, steps.registerDocument)
	ctx.Step(`^I register a "([^"]*)" numbered "([^"]*)" expiring (\d+) days ago$`, steps.registerExpiredDocument)
	ctx.Step(`^I save the verification code$`, steps.saveVerificationCode)
	ctx.Step(`^I revoke the saved document because "([^"]*)"$`, steps.revokeSaved)
	ctx.Step(`^I check the integrity of the saved document with data '([^']*)'$`, steps.checkIntegrity)
	ctx.Step(`^I request the history of the saved document$`, steps.requestHistory)
}

type recordSteps struct {
	tc TestContext
	// unique suffix so reruns against a persistent store do not conflict
	suffix string
}

func (s *recordSteps) officerHeaders() map[string]string {
	return map[string]string{"Authorization": "Bearer " + s.tc.GetOfficerToken()}
}

func (s *recordSteps) authenticatedOfficer(ctx context.Context) error {
	if s.tc.GetOfficerToken() == "" {
		return godog.ErrSkip
	}
	s.suffix = fmt.Sprintf("%d", time.Now().UnixNano()%1_000_000_000)
	return nil
}

func (s *recordSteps) registerDocument(ctx context.Context, docType, number string) error {
	return s.register(docType, number, nil)
}

func (s *recordSteps) registerExpiredDocument(ctx context.Context, docType, number string, days int) error {
	expiry := time.Now().UTC().AddDate(0, 0, -days)
	return s.register(docType, number, &expiry)
}

func (s *recordSteps) register(docType, number string, expiry *time.Time) error {
	body := map[string]any{
		"documentType":   docType,
		"documentNumber": number + s.suffix,
		"documentData":   map[string]any{"holder": "Test Holder", "number": number},
		"issuingOffice":  "E2E Office",
		"issuingOfficer": "E2E Officer",
	}
	s.tc.Save("number", number+s.suffix)
	s.tc.Save("type", docType)
	if expiry != nil {
		body["issuedAt"] = expiry.AddDate(-5, 0, 0)
		body["expiryDate"] = expiry
	}
	return s.tc.POSTWithHeaders("/v1/records", body, s.officerHeaders())
}

func (s *recordSteps) saveVerificationCode(ctx context.Context) error {
	v, err := s.tc.GetResponseField("verificationCode")
	if err != nil {
		return fmt.Errorf("%w: %s", err, s.tc.GetLastResponseBody())
	}
	code, ok := v.(string)
	if !ok || code == "" {
		return fmt.Errorf("verificationCode missing in %s", s.tc.GetLastResponseBody())
	}
	s.tc.Save("code", code)
	return nil
}

func (s *recordSteps) revokeSaved(ctx context.Context, reason string) error {
	return s.tc.POSTWithHeaders("/v1/records/"+s.tc.Saved("code")+"/revoke",
		map[string]any{"reason": reason}, s.officerHeaders())
}

func (s *recordSteps) checkIntegrity(ctx context.Context, data string) error {
	return s.tc.POSTWithHeaders("/v1/records/"+s.tc.Saved("code")+"/integrity",
		map[string]any{"documentData": rawJSON(data)}, s.officerHeaders())
}

func (s *recordSteps) requestHistory(ctx context.Context) error {
	return s.tc.GET("/v1/records/"+s.tc.Saved("code")+"/history", s.officerHeaders())
}

type rawJSON string

func (r rawJSON) MarshalJSON() ([]byte, error) { return []byte(r), nil }
