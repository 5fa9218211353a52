// Package testing provides test utilities, builders, and fixtures for unit and integration tests.
//
// This package centralizes common testing patterns to avoid duplication across test files:
//   - ConfigBuilder: Fluent builder for creating test configurations
//   - ApplianceFixture: an in-process fake appliance with connected clients
//   - MockExecutor: testify mock of the lifecycle engine's executor
//
// Usage:
//
//	cfg := testing.NewConfigBuilder().
//	    WithZones("untrust", "trust").
//	    WithMaxRetries(2).
//	    Build()
//
//	fx := testing.NewApplianceFixture(t)
//	client := fx.Transaction(t)
package testing
