package orchestration

import (
	"context"
	"net/netip"

	"github.com/go-logr/logr"

	"github.com/imamik/srxgate/api/v1alpha1"
	"github.com/imamik/srxgate/internal/platform/junos"
	"github.com/imamik/srxgate/internal/util/naming"
)

// Pair is a public address translated onto a private one.
type Pair struct {
	Public  netip.Addr
	Private netip.Addr
}

func (p Pair) String() string {
	return p.Public.String() + "->" + p.Private.String()
}

// groupByPair splits rules per pair, keeping first-seen pair order.
func groupByPair[R any](rules []R, pairOf func(R) Pair) ([]Pair, map[Pair][]R) {
	var order []Pair
	groups := make(map[Pair][]R)
	for _, r := range rules {
		p := pairOf(r)
		if _, ok := groups[p]; !ok {
			order = append(order, p)
		}
		groups[p] = append(groups[p], r)
	}
	return order, groups
}

func firewallPair(r v1alpha1.FirewallRule) Pair {
	return Pair{Public: r.PublicIP.Unmap(), Private: r.PrivateIP.Unmap()}
}

func portForwardingPair(r v1alpha1.PortForwardingRule) Pair {
	return Pair{Public: r.PublicIP.Unmap(), Private: r.PrivateIP.Unmap()}
}

// SetStaticNATRules applies the desired rule set of every pair the rules name.
func (o *Orchestrator) SetStaticNATRules(ctx context.Context, exec junos.Executor, rules []v1alpha1.FirewallRule) ([]Pair, error) {
	pairs, groups := groupByPair(rules, firewallPair)
	for _, p := range pairs {
		if err := o.UpdateStaticNAT(ctx, exec, p, groups[p]); err != nil {
			return nil, err
		}
	}
	return pairs, nil
}

// UpdateStaticNAT removes the static NAT mapping of pair and re-adds it when
// any rule is active. The policy matches the merged applications and source
// prefixes of the active rules.
func (o *Orchestrator) UpdateStaticNAT(ctx context.Context, exec junos.Executor, pair Pair, rules []v1alpha1.FirewallRule) error {
	log := logr.FromContextOrDiscard(ctx).WithValues("pair", pair.String())

	if err := o.removeStaticNAT(ctx, exec, pair, rules); err != nil {
		return err
	}
	active := activeFirewallRules(rules)
	if len(active) == 0 {
		log.Info("static NAT mapping removed")
		return nil
	}
	if err := o.addStaticNAT(ctx, exec, pair, active); err != nil {
		return err
	}
	log.Info("static NAT mapping applied", "rules", len(active))
	return nil
}

func (o *Orchestrator) staticRule(pair Pair) junos.Fields {
	return junos.Fields{
		"ruleSet":        o.cfg.NAT.StaticRuleSet,
		"fromZone":       o.cfg.Zones.Public,
		"name":           naming.StaticNATRule(pair.Public, pair.Private),
		"publicAddress":  naming.HostPrefix(pair.Public),
		"privateAddress": naming.HostPrefix(pair.Private),
	}
}

func (o *Orchestrator) staticPolicy(pair Pair) junos.Fields {
	return o.inbound(naming.StaticNATPolicy(o.cfg.Zones.Public, o.cfg.Zones.Private, pair.Private))
}

func (o *Orchestrator) addStaticNAT(ctx context.Context, exec junos.Executor, pair Pair, active []v1alpha1.FirewallRule) error {
	sources, sourceNames := addressEntries(o.cfg.Zones.Public, firewallCIDRs(active))
	apps, appNames := firewallApplications(active)
	target := hostEntry(o.cfg.Zones.Private, pair.Private)

	s := sequence{
		ensure(junos.ProxyARP, o.proxyARP(pair.Public)),
		ensure(junos.StaticNATRule, o.staticRule(pair)),
	}
	s = append(s, ensureAll(junos.UsageTermIP, o.ipUsageTerms(pair.Public))...)
	s = append(s, ensure(junos.AddressBookEntry, target))
	s = append(s, ensureAll(junos.AddressBookEntry, sources)...)
	s = append(s, ensureAll(junos.Application, apps)...)
	s = append(s, ensure(junos.SecurityPolicy, o.staticPolicy(pair).Merge(junos.Fields{
		"sources":      sourceNames,
		"destinations": []string{target.Text("name")},
		"applications": appNames,
		"action":       "permit",
	})))
	return s.run(ctx, exec)
}

// removeStaticNAT deletes the mapping of pair. Applications and source
// entries are collected from both the policy on the appliance and rules.
func (o *Orchestrator) removeStaticNAT(ctx context.Context, exec junos.Executor, pair Pair, rules []v1alpha1.FirewallRule) error {
	policy := o.staticPolicy(pair)
	existing, err := readPolicy(ctx, exec, policy)
	if err != nil {
		return err
	}

	s := sequence{remove(junos.SecurityPolicy, policy)}
	s = append(s, removeAll(junos.Application,
		namedApplications(union(existing.Applications, applicationNames(rules))))...)
	s = append(s, removeAll(junos.AddressBookEntry,
		namedEntries(o.cfg.Zones.Public, union(existing.Sources, cidrEntryNames(rules))))...)
	s = append(s, remove(junos.AddressBookEntry, hostEntry(o.cfg.Zones.Private, pair.Private)))
	s = append(s, remove(junos.StaticNATRule, o.staticRule(pair)))
	s = append(s, removeAll(junos.UsageTermIP, o.ipUsageTerms(pair.Public))...)
	s = append(s, remove(junos.ProxyARP, o.proxyARP(pair.Public)))
	return s.run(ctx, exec)
}

// SetPortForwardingRules applies the desired rule set of every pair the
// rules name.
func (o *Orchestrator) SetPortForwardingRules(ctx context.Context, exec junos.Executor, rules []v1alpha1.PortForwardingRule) ([]Pair, error) {
	pairs, groups := groupByPair(rules, portForwardingPair)
	for _, p := range pairs {
		if err := o.UpdateDestinationNAT(ctx, exec, p, groups[p]); err != nil {
			return nil, err
		}
	}
	return pairs, nil
}

// UpdateDestinationNAT removes every port forward of pair found on the
// appliance and re-adds the active rules.
func (o *Orchestrator) UpdateDestinationNAT(ctx context.Context, exec junos.Executor, pair Pair, rules []v1alpha1.PortForwardingRule) error {
	log := logr.FromContextOrDiscard(ctx).WithValues("pair", pair.String())

	if err := o.removeDestinationNAT(ctx, exec, pair, rules); err != nil {
		return err
	}
	var active []v1alpha1.PortForwardingRule
	for _, r := range rules {
		if r.Active() {
			active = append(active, r)
		}
	}
	if len(active) == 0 {
		log.Info("port forwarding removed")
		return nil
	}
	if err := o.addDestinationNAT(ctx, exec, pair, active); err != nil {
		return err
	}
	log.Info("port forwarding applied", "rules", len(active))
	return nil
}

func (o *Orchestrator) destinationPool(private netip.Addr, port int) junos.Fields {
	return junos.Fields{
		"name":    naming.DestinationNATPool(private, port),
		"address": naming.HostPrefix(private),
		"port":    port,
	}
}

func (o *Orchestrator) destinationRule(pair Pair, start, end, privatePort int) junos.Fields {
	return junos.Fields{
		"ruleSet":       o.cfg.NAT.DestinationRuleSet,
		"fromZone":      o.cfg.Zones.Public,
		"name":          naming.DestinationNATRule(pair.Public, pair.Private, start, end),
		"publicAddress": naming.HostPrefix(pair.Public),
		"startPort":     start,
		"endPort":       end,
		"pool":          naming.DestinationNATPool(pair.Private, privatePort),
	}
}

func (o *Orchestrator) destinationPolicy(pair Pair) junos.Fields {
	return o.inbound(naming.DestinationNATPolicy(o.cfg.Zones.Public, o.cfg.Zones.Private, pair.Public, pair.Private))
}

func forwardingFirewallRules(rules []v1alpha1.PortForwardingRule) []v1alpha1.FirewallRule {
	out := make([]v1alpha1.FirewallRule, 0, len(rules))
	for _, r := range rules {
		out = append(out, v1alpha1.FirewallRule{
			Protocol:  r.Protocol,
			StartPort: r.PrivateStartPort,
			EndPort:   r.PrivateEndPort,
			CIDRs:     r.CIDRs,
			Revoked:   r.Revoked,
		})
	}
	return out
}

func (o *Orchestrator) addDestinationNAT(ctx context.Context, exec junos.Executor, pair Pair, active []v1alpha1.PortForwardingRule) error {
	matches := forwardingFirewallRules(active)
	sources, sourceNames := addressEntries(o.cfg.Zones.Public, firewallCIDRs(matches))
	apps, appNames := firewallApplications(matches)
	target := hostEntry(o.cfg.Zones.Private, pair.Private)

	s := sequence{ensure(junos.ProxyARP, o.proxyARP(pair.Public))}
	s = append(s, ensureAll(junos.UsageTermIP, o.ipUsageTerms(pair.Public))...)
	for _, r := range active {
		s = append(s,
			ensure(junos.DestinationNATPool, o.destinationPool(pair.Private, r.PrivateStartPort)),
			ensure(junos.DestinationNATRule, o.destinationRule(pair, r.PublicStartPort, r.PublicEndPort, r.PrivateStartPort)),
		)
	}
	s = append(s, ensure(junos.AddressBookEntry, target))
	s = append(s, ensureAll(junos.AddressBookEntry, sources)...)
	s = append(s, ensureAll(junos.Application, apps)...)
	s = append(s, ensure(junos.SecurityPolicy, o.destinationPolicy(pair).Merge(junos.Fields{
		"sources":      sourceNames,
		"destinations": []string{target.Text("name")},
		"applications": appNames,
		"action":       "permit",
	})))
	return s.run(ctx, exec)
}

// removeDestinationNAT deletes the policy of pair, then every destination
// rule of pair listed on the appliance, then the pools and public address
// objects nothing references any more.
func (o *Orchestrator) removeDestinationNAT(ctx context.Context, exec junos.Executor, pair Pair, rules []v1alpha1.PortForwardingRule) error {
	policy := o.destinationPolicy(pair)
	existing, err := readPolicy(ctx, exec, policy)
	if err != nil {
		return err
	}
	matches := forwardingFirewallRules(rules)

	s := sequence{remove(junos.SecurityPolicy, policy)}
	s = append(s, removeAll(junos.Application,
		namedApplications(union(existing.Applications, applicationNames(matches))))...)
	s = append(s, removeAll(junos.AddressBookEntry,
		namedEntries(o.cfg.Zones.Public, union(existing.Sources, cidrEntryNames(matches))))...)
	s = append(s, remove(junos.AddressBookEntry, hostEntry(o.cfg.Zones.Private, pair.Private)))
	if err := s.run(ctx, exec); err != nil {
		return err
	}

	ruleSet := junos.Fields{"ruleSet": o.cfg.NAT.DestinationRuleSet}
	names, err := junos.List(ctx, exec, junos.DestinationNATRule, ruleSet)
	if err != nil {
		return err
	}
	s = nil
	for _, name := range names {
		ref, err := naming.ParseDestinationNATRule(name)
		if err != nil || ref.PublicIP != pair.Public || ref.PrivateIP != pair.Private {
			continue
		}
		s = append(s, remove(junos.DestinationNATRule, ruleSet.Merge(junos.Fields{"name": name})))
	}
	if err := s.run(ctx, exec); err != nil {
		return err
	}

	if err := o.removeDestinationPools(ctx, exec, pair.Private); err != nil {
		return err
	}
	s = removeAll(junos.UsageTermIP, o.ipUsageTerms(pair.Public))
	s = append(s, remove(junos.ProxyARP, o.proxyARP(pair.Public)))
	return s.run(ctx, exec)
}

// removeDestinationPools deletes the pools targeting private that no rule
// references.
func (o *Orchestrator) removeDestinationPools(ctx context.Context, exec junos.Executor, private netip.Addr) error {
	names, err := junos.List(ctx, exec, junos.DestinationNATPool, nil)
	if err != nil {
		return err
	}
	var s sequence
	for _, name := range names {
		addr, _, err := naming.ParseDestinationNATPool(name)
		if err != nil || addr != private {
			continue
		}
		s = append(s, remove(junos.DestinationNATPool, junos.Fields{"name": name}))
	}
	return s.run(ctx, exec)
}
