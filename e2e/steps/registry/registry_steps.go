package registry

import (
	"context"
	"fmt"
	"net/url"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string) error
	POST(path string, body map[string]interface{}) error
	PATCH(path string, body map[string]interface{}) error
	DELETE(path string) error
	ResponseField(field string) (interface{}, error)
}

// RegisterSteps registers address and domain record step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &registrySteps{tc: tc}

	// Address record steps
	ctx.Step(`^I allot address "([^"]*)" with content ref "([^"]*)"$`, steps.allotAddress)
	ctx.Step(`^I allot address "([^"]*)" with content ref "([^"]*)" for owner "([^"]*)"$`, steps.allotAddressForOwner)
	ctx.Step(`^I read address "([^"]*)"$`, steps.readAddress)

	// Domain record steps
	ctx.Step(`^I assign domain "([^"]*)" to address "([^"]*)"$`, steps.assignDomain)
	ctx.Step(`^I assign domain "([^"]*)" to address "([^"]*)" with content ref "([^"]*)"$`, steps.assignDomainWithContentRef)
	ctx.Step(`^I read domain "([^"]*)"$`, steps.readDomain)
	ctx.Step(`^I check whether domain "([^"]*)" exists$`, steps.checkDomain)
	ctx.Step(`^I rebind domain "([^"]*)" to address "([^"]*)"$`, steps.rebindDomain)
	ctx.Step(`^I buy domain "([^"]*)" paying (\d+)$`, steps.buyDomain)
	ctx.Step(`^I transfer domain "([^"]*)" to "([^"]*)"$`, steps.transferDomain)
	ctx.Step(`^I delete domain "([^"]*)"$`, steps.deleteDomain)
	ctx.Step(`^I list domains owned by "([^"]*)"$`, steps.listDomainsByOwner)

	// Listing assertions
	ctx.Step(`^the listing should contain (\d+) domains?$`, steps.listingShouldContainN)
	ctx.Step(`^the listing should map "([^"]*)" to "([^"]*)"$`, steps.listingShouldMap)
}

type registrySteps struct {
	tc TestContext
}

func (s *registrySteps) allotAddress(ctx context.Context, address, contentRef string) error {
	return s.tc.POST("/v1/addresses", map[string]interface{}{
		"address":     address,
		"content_ref": contentRef,
	})
}

func (s *registrySteps) allotAddressForOwner(ctx context.Context, address, contentRef, owner string) error {
	return s.tc.POST("/v1/addresses", map[string]interface{}{
		"address":     address,
		"content_ref": contentRef,
		"owner":       owner,
	})
}

func (s *registrySteps) readAddress(ctx context.Context, address string) error {
	return s.tc.GET("/v1/addresses/" + url.PathEscape(address))
}

func (s *registrySteps) assignDomain(ctx context.Context, name, address string) error {
	return s.tc.POST("/v1/domains", map[string]interface{}{
		"name":    name,
		"address": address,
	})
}

func (s *registrySteps) assignDomainWithContentRef(ctx context.Context, name, address, contentRef string) error {
	return s.tc.POST("/v1/domains", map[string]interface{}{
		"name":        name,
		"address":     address,
		"content_ref": contentRef,
	})
}

func (s *registrySteps) readDomain(ctx context.Context, name string) error {
	return s.tc.GET("/v1/domains/" + url.PathEscape(name))
}

func (s *registrySteps) checkDomain(ctx context.Context, name string) error {
	return s.tc.GET("/v1/domains/" + url.PathEscape(name) + "/exists")
}

func (s *registrySteps) rebindDomain(ctx context.Context, name, address string) error {
	return s.tc.PATCH("/v1/domains/"+url.PathEscape(name), map[string]interface{}{
		"address": address,
	})
}

func (s *registrySteps) buyDomain(ctx context.Context, name string, payment int) error {
	return s.tc.POST("/v1/domains/"+url.PathEscape(name)+"/buy", map[string]interface{}{
		"payment": payment,
	})
}

func (s *registrySteps) transferDomain(ctx context.Context, name, newOwner string) error {
	return s.tc.POST("/v1/domains/"+url.PathEscape(name)+"/transfer", map[string]interface{}{
		"new_owner": newOwner,
	})
}

func (s *registrySteps) deleteDomain(ctx context.Context, name string) error {
	return s.tc.DELETE("/v1/domains/" + url.PathEscape(name))
}

func (s *registrySteps) listDomainsByOwner(ctx context.Context, owner string) error {
	return s.tc.GET("/v1/owners/" + url.PathEscape(owner) + "/domains")
}

func (s *registrySteps) domainsListing() (map[string]interface{}, error) {
	value, err := s.tc.ResponseField("domains")
	if err != nil {
		return nil, err
	}
	listing, ok := value.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("domains field is %T, not an object", value)
	}
	return listing, nil
}

func (s *registrySteps) listingShouldContainN(ctx context.Context, expected int) error {
	listing, err := s.domainsListing()
	if err != nil {
		return err
	}
	if len(listing) != expected {
		return fmt.Errorf("listing has %d domains, expected %d", len(listing), expected)
	}
	return nil
}

func (s *registrySteps) listingShouldMap(ctx context.Context, name, address string) error {
	listing, err := s.domainsListing()
	if err != nil {
		return err
	}
	got, ok := listing[name]
	if !ok {
		return fmt.Errorf("listing has no domain %q", name)
	}
	if got != address {
		return fmt.Errorf("domain %q maps to %v, expected %q", name, got, address)
	}
	return nil
}
