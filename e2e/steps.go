package e2e

import (
	"github.com/cucumber/godog"

	"docverify/e2e/steps/common"
	"docverify/e2e/steps/ratelimit"
	"docverify/e2e/steps/records"
	"docverify/e2e/steps/verification"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Generic requests and response assertions
	common.RegisterSteps(ctx, tc)

	// Officer record administration
	records.RegisterSteps(ctx, tc)

	// Public verification modalities
	verification.RegisterSteps(ctx, tc)

	ratelimit.RegisterSteps(ctx, tc)
}
