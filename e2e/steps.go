package e2e

import (
	"github.com/cucumber/godog"

	"nameledger/e2e/steps/common"
	"nameledger/e2e/steps/fees"
	"nameledger/e2e/steps/ratelimit"
	"nameledger/e2e/steps/registry"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Register common steps (authentication, generic requests, assertions)
	common.RegisterSteps(ctx, tc)

	// Register address and domain record steps
	registry.RegisterSteps(ctx, tc)

	// Register fee escrow steps
	fees.RegisterSteps(ctx, tc)

	// Register rate limiting steps
	ratelimit.RegisterSteps(ctx, tc)
}
