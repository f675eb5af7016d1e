package verification

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	POSTWithHeaders(path string, body any, headers map[string]string) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (any, error)
	GetLastResponseBody() []byte
	Save(key, value string)
	Saved(key string) string
}

// RegisterSteps registers public verification step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &verificationSteps{tc: tc}

	ctx.Step(`^I verify the saved code by URL$`, steps.verifyByURL)
	ctx.Step(`^I verify code "([^"]*)" by manual entry$`, steps.verifyCodeManual)
	ctx.Step(`^I verify the saved code by manual entry$`, steps.verifySavedManual)
	ctx.Step(`^I scan a QR code containing the saved verification URL$`, steps.scanQRURL)
	ctx.Step(`^I scan a QR code containing '([^']*)'$`, steps.scanQRRaw)
	ctx.Step(`^I look up the saved document by number$`, steps.lookupSaved)
	ctx.Step(`^I verify a batch of the saved code and code "([^"]*)"$`, steps.verifyBatch)
	ctx.Step(`^I verify the saved code through the API with key "([^"]*)"$`, steps.verifyAPI)
	ctx.Step(`^I save the session id$`, steps.saveSessionID)
	ctx.Step(`^I verify the saved code by manual entry within the saved session$`, steps.verifyInSession)
	ctx.Step(`^the session id should be unchanged$`, steps.sessionUnchanged)
	ctx.Step(`^batch result (\d+) should have "([^"]*)" equal to "([^"]*)"$`, steps.batchResultField)
}

type verificationSteps struct {
	tc TestContext
}

func (s *verificationSteps) verifyByURL(ctx context.Context) error {
	return s.tc.GET("/verify/"+url.PathEscape(s.tc.Saved("code")), nil)
}

func (s *verificationSteps) verifyCodeManual(ctx context.Context, code string) error {
	return s.tc.POST("/v1/verifications/manual", map[string]any{"verificationCode": code})
}

func (s *verificationSteps) verifySavedManual(ctx context.Context) error {
	return s.verifyCodeManual(ctx, s.tc.Saved("code"))
}

func (s *verificationSteps) scanQRURL(ctx context.Context) error {
	return s.tc.POST("/v1/verifications/qr", map[string]any{
		"qrData": "https://verify.example.gov/verify/" + s.tc.Saved("code"),
	})
}

func (s *verificationSteps) scanQRRaw(ctx context.Context, data string) error {
	return s.tc.POST("/v1/verifications/qr", map[string]any{"qrData": data})
}

func (s *verificationSteps) lookupSaved(ctx context.Context) error {
	return s.tc.POST("/v1/verifications/lookup", map[string]any{
		"documentNumber": s.tc.Saved("number"),
		"documentType":   s.tc.Saved("type"),
	})
}

func (s *verificationSteps) verifyBatch(ctx context.Context, other string) error {
	return s.tc.POST("/v1/verifications/batch", map[string]any{
		"batchId": "e2e-" + s.tc.Saved("code"),
		"documents": []map[string]any{
			{"verificationCode": s.tc.Saved("code")},
			{"verificationCode": other},
		},
	})
}

func (s *verificationSteps) verifyAPI(ctx context.Context, key string) error {
	return s.tc.POSTWithHeaders("/v1/verifications/api",
		map[string]any{"verificationCode": s.tc.Saved("code")},
		map[string]string{"X-API-Key": key},
	)
}

func (s *verificationSteps) saveSessionID(ctx context.Context) error {
	v, err := s.tc.GetResponseField("sessionId")
	if err != nil {
		return err
	}
	s.tc.Save("session", fmt.Sprint(v))
	return nil
}

func (s *verificationSteps) verifyInSession(ctx context.Context) error {
	return s.tc.POST("/v1/verifications/manual", map[string]any{
		"verificationCode": s.tc.Saved("code"),
		"sessionId":        s.tc.Saved("session"),
	})
}

func (s *verificationSteps) sessionUnchanged(ctx context.Context) error {
	v, err := s.tc.GetResponseField("sessionId")
	if err != nil {
		return err
	}
	if got := fmt.Sprint(v); got != s.tc.Saved("session") {
		return fmt.Errorf("expected session %s, got %s", s.tc.Saved("session"), got)
	}
	return nil
}

func (s *verificationSteps) batchResultField(ctx context.Context, n int, field, expected string) error {
	v, err := s.tc.GetResponseField("results")
	if err != nil {
		return err
	}
	results, ok := v.([]any)
	if !ok || n < 1 || n > len(results) {
		return fmt.Errorf("no batch result %d in %s", n, s.tc.GetLastResponseBody())
	}
	obj, _ := results[n-1].(map[string]any)
	if got := fmt.Sprint(obj[field]); !strings.EqualFold(got, expected) {
		return fmt.Errorf("batch result %d: expected %s=%q, got %q", n, field, expected, got)
	}
	return nil
}
