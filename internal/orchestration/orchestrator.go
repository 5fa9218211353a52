package orchestration

import (
	"context"
	"net/netip"
	"slices"

	"github.com/imamik/srxgate/internal/config"
	"github.com/imamik/srxgate/internal/platform/junos"
	"github.com/imamik/srxgate/internal/util/naming"
)

// Orchestrator runs composite operations against an appliance session.
type Orchestrator struct {
	cfg *config.Config
}

// New creates an orchestrator using the interface, zone, rule-set and filter
// names of cfg.
func New(cfg *config.Config) *Orchestrator {
	return &Orchestrator{cfg: cfg}
}

// operation is one lifecycle call.
type operation interface {
	Execute(ctx context.Context, exec junos.Executor) error
}

// sequence runs operations in order and stops at the first error.
type sequence []operation

func (s sequence) run(ctx context.Context, exec junos.Executor) error {
	for _, op := range s {
		if err := op.Execute(ctx, exec); err != nil {
			return err
		}
	}
	return nil
}

func ensure(kind *junos.Kind, fields junos.Fields) operation {
	return &junos.EnsureOperation{Kind: kind, Fields: fields}
}

func remove(kind *junos.Kind, fields junos.Fields) operation {
	return &junos.DeleteOperation{Kind: kind, Fields: fields}
}

func (o *Orchestrator) proxyARP(ip netip.Addr) junos.Fields {
	return junos.Fields{"interface": o.cfg.Interfaces.Public, "name": naming.HostPrefix(ip)}
}

// ipUsageTerms returns the input and output counting terms of a public address.
func (o *Orchestrator) ipUsageTerms(ip netip.Addr) []junos.Fields {
	key := naming.IPKey(ip)
	addr := naming.HostPrefix(ip)
	return []junos.Fields{
		{"filter": o.cfg.Usage.InputFilter, "name": naming.UsageTerm(key, naming.DirectionIn),
			"match": "destination-address", "address": addr},
		{"filter": o.cfg.Usage.OutputFilter, "name": naming.UsageTerm(key, naming.DirectionOut),
			"match": "source-address", "address": addr},
	}
}

func (o *Orchestrator) vlanUsageTerms(vlan int) []junos.Fields {
	key := naming.VLANKey(vlan)
	iface := naming.LogicalInterface(o.cfg.Interfaces.Private, vlan)
	return []junos.Fields{
		{"filter": o.cfg.Usage.InputFilter, "name": naming.UsageTerm(key, naming.DirectionIn), "interface": iface},
		{"filter": o.cfg.Usage.OutputFilter, "name": naming.UsageTerm(key, naming.DirectionOut), "interface": iface},
	}
}

func ensureAll(kind *junos.Kind, fields []junos.Fields) sequence {
	s := make(sequence, 0, len(fields))
	for _, f := range fields {
		s = append(s, ensure(kind, f))
	}
	return s
}

func removeAll(kind *junos.Kind, fields []junos.Fields) sequence {
	s := make(sequence, 0, len(fields))
	for _, f := range fields {
		s = append(s, remove(kind, f))
	}
	return s
}

// addressEntry returns the address-book entry for p in zone. The predefined
// "any" entry is never managed, so ok is false for /0.
func addressEntry(zone string, p netip.Prefix) (junos.Fields, bool) {
	name := naming.AddressBookEntry(p)
	if name == naming.AnyAddress {
		return nil, false
	}
	return junos.Fields{"zone": zone, "name": name, "prefix": p.Masked().String()}, true
}

func hostEntry(zone string, ip netip.Addr) junos.Fields {
	f, _ := addressEntry(zone, netip.PrefixFrom(ip.Unmap(), 32))
	return f
}

// addressEntries returns the managed entries for prefixes and the names a
// policy match should reference. No prefixes, or any /0, matches any.
func addressEntries(zone string, prefixes []netip.Prefix) ([]junos.Fields, []string) {
	var (
		entries []junos.Fields
		names   []string
	)
	for _, p := range prefixes {
		f, ok := addressEntry(zone, p)
		if !ok {
			return nil, []string{naming.AnyAddress}
		}
		if slices.Contains(names, f.Text("name")) {
			continue
		}
		entries = append(entries, f)
		names = append(names, f.Text("name"))
	}
	if len(names) == 0 {
		return nil, []string{naming.AnyAddress}
	}
	return entries, names
}

// namedEntries builds delete fields for entry names read back from a policy.
func namedEntries(zone string, names []string) []junos.Fields {
	var out []junos.Fields
	for _, n := range names {
		if n == naming.AnyAddress {
			continue
		}
		out = append(out, junos.Fields{"zone": zone, "name": n})
	}
	return out
}

// namedApplications builds delete fields for application names.
func namedApplications(names []string) []junos.Fields {
	var out []junos.Fields
	for _, n := range names {
		if n == anyApplication {
			continue
		}
		out = append(out, junos.Fields{"name": n})
	}
	return out
}

// union appends the elements of b missing from a.
func union(a, b []string) []string {
	out := slices.Clone(a)
	for _, s := range b {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

func (o *Orchestrator) policy(fromZone, toZone, name string) junos.Fields {
	return junos.Fields{"fromZone": fromZone, "toZone": toZone, "name": name}
}

// inbound is the policy direction for traffic reaching guests.
func (o *Orchestrator) inbound(name string) junos.Fields {
	return o.policy(o.cfg.Zones.Public, o.cfg.Zones.Private, name)
}

// outbound is the policy direction for traffic leaving guests.
func (o *Orchestrator) outbound(name string) junos.Fields {
	return o.policy(o.cfg.Zones.Private, o.cfg.Zones.Public, name)
}

// readPolicy returns the match clause of an existing policy, empty when the
// policy is absent.
func readPolicy(ctx context.Context, exec junos.Executor, fields junos.Fields) (junos.PolicyMatch, error) {
	match, err := junos.ReadPolicy(ctx, exec, fields)
	if err != nil || match == nil {
		return junos.PolicyMatch{}, err
	}
	return *match, nil
}
