package fees

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string) error
	POST(path string, body map[string]interface{}) error
	ResponseField(field string) (interface{}, error)
}

// RegisterSteps registers fee escrow step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &feesSteps{tc: tc}

	ctx.Step(`^I read the fee balance$`, steps.readBalance)
	ctx.Step(`^I remember the fee balance$`, steps.rememberBalance)
	ctx.Step(`^I withdraw (\d+) to "([^"]*)"$`, steps.withdraw)

	ctx.Step(`^the fee balance should have grown by (\d+)$`, steps.balanceShouldHaveGrownBy)
}

type feesSteps struct {
	tc TestContext
	// Balance captured by the remember step, for growth assertions that do
	// not depend on what earlier scenarios paid in.
	rememberedBalance float64
}

func (s *feesSteps) readBalance(ctx context.Context) error {
	return s.tc.GET("/v1/fees")
}

func (s *feesSteps) currentBalance() (float64, error) {
	if err := s.tc.GET("/v1/fees"); err != nil {
		return 0, err
	}
	value, err := s.tc.ResponseField("balance")
	if err != nil {
		return 0, err
	}
	balance, ok := value.(float64)
	if !ok {
		return 0, fmt.Errorf("balance field is %T, not a number", value)
	}
	return balance, nil
}

func (s *feesSteps) rememberBalance(ctx context.Context) error {
	balance, err := s.currentBalance()
	if err != nil {
		return err
	}
	s.rememberedBalance = balance
	return nil
}

func (s *feesSteps) withdraw(ctx context.Context, amount int, recipient string) error {
	return s.tc.POST("/v1/fees/withdraw", map[string]interface{}{
		"amount":    amount,
		"recipient": recipient,
	})
}

func (s *feesSteps) balanceShouldHaveGrownBy(ctx context.Context, expected int) error {
	balance, err := s.currentBalance()
	if err != nil {
		return err
	}
	grown := balance - s.rememberedBalance
	if grown != float64(expected) {
		return fmt.Errorf("balance grew by %v, expected %d", grown, expected)
	}
	return nil
}
