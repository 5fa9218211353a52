// Package orchestration sequences object lifecycle calls into the composite
// operations the driver exposes: guest network implement and shutdown, public
// address association, static and destination NAT mapping updates, egress
// policy recompute and remote-access VPN.
//
// Every operation runs inside a candidate configuration opened by the caller
// and stops at the first failing call, returning that error unchanged.
// Additions follow dependency order (pools before rules, addresses and
// applications before policies) and teardown runs in reverse with in-use
// guards on every shared object.
//
//	o := orchestration.New(cfg)
//	err := o.ImplementNetwork(ctx, client, spec)
package orchestration
