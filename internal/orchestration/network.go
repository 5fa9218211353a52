package orchestration

import (
	"context"
	"net/netip"

	"github.com/go-logr/logr"

	"github.com/imamik/srxgate/api/v1alpha1"
	"github.com/imamik/srxgate/internal/platform/junos"
	"github.com/imamik/srxgate/internal/util/naming"
)

func (o *Orchestrator) privateInterface(n *v1alpha1.NetworkSpec) junos.Fields {
	return junos.Fields{
		"interface": o.cfg.Interfaces.Private,
		"name":      n.VLAN,
		"address":   netip.PrefixFrom(n.Gateway.Unmap(), n.CIDR.Bits()).String(),
	}
}

func (o *Orchestrator) zoneInterface(vlan int) junos.Fields {
	return junos.Fields{
		"zone": o.cfg.Zones.Private,
		"name": naming.LogicalInterface(o.cfg.Interfaces.Private, vlan),
	}
}

// ImplementNetwork brings up a guest network: the VLAN unit and its zone
// membership, then source NAT objects or VLAN usage counters depending on
// the mode.
func (o *Orchestrator) ImplementNetwork(ctx context.Context, exec junos.Executor, n *v1alpha1.NetworkSpec) error {
	log := logr.FromContextOrDiscard(ctx).WithValues("vlan", n.VLAN, "cidr", n.CIDR.String())

	s := sequence{
		ensure(junos.PrivateInterface, o.privateInterface(n)),
		ensure(junos.ZoneInterface, o.zoneInterface(n.VLAN)),
	}
	switch n.Mode {
	case v1alpha1.ModeSourceNAT:
		s = append(s, o.addSourceNAT(n.SourceNATIP, n.CIDR)...)
	default:
		s = append(s, ensureAll(junos.UsageTermVLAN, o.vlanUsageTerms(n.VLAN))...)
	}
	if err := s.run(ctx, exec); err != nil {
		return err
	}
	log.Info("guest network implemented", "mode", n.Mode)
	return nil
}

// ShutdownNetwork tears a guest network down. NAT mappings towards the
// subnet go first, found by scanning every static and destination rule,
// so the interface is never removed while a rule still targets it.
func (o *Orchestrator) ShutdownNetwork(ctx context.Context, exec junos.Executor, n *v1alpha1.NetworkSpec) error {
	log := logr.FromContextOrDiscard(ctx).WithValues("vlan", n.VLAN, "cidr", n.CIDR.String())
	subnet := n.CIDR.Masked()

	staticPairs, err := o.staticPairsIn(ctx, exec, subnet)
	if err != nil {
		return err
	}
	for _, p := range staticPairs {
		if err := o.removeStaticNAT(ctx, exec, p, nil); err != nil {
			return err
		}
	}

	forwardPairs, err := o.destinationPairsIn(ctx, exec, subnet)
	if err != nil {
		return err
	}
	for _, p := range forwardPairs {
		if err := o.removeDestinationNAT(ctx, exec, p, nil); err != nil {
			return err
		}
	}

	s := sequence{
		remove(junos.PrivateInterface, o.privateInterface(n)),
		remove(junos.ZoneInterface, o.zoneInterface(n.VLAN)),
	}
	if err := s.run(ctx, exec); err != nil {
		return err
	}

	if err := o.clearVPN(ctx, exec, n.AccountID); err != nil {
		return err
	}
	if err := o.clearEgress(ctx, exec, n.VLAN, subnet); err != nil {
		return err
	}

	s = nil
	if n.Mode == v1alpha1.ModeSourceNAT {
		s = append(s, o.removeSourceNAT(n.SourceNATIP, subnet)...)
	}
	s = append(s, removeAll(junos.UsageTermVLAN, o.vlanUsageTerms(n.VLAN))...)
	if err := s.run(ctx, exec); err != nil {
		return err
	}

	log.Info("guest network shut down", "staticNAT", len(staticPairs), "portForwarding", len(forwardPairs))
	return nil
}

func (o *Orchestrator) staticPairsIn(ctx context.Context, exec junos.Executor, subnet netip.Prefix) ([]Pair, error) {
	names, err := junos.List(ctx, exec, junos.StaticNATRule, junos.Fields{"ruleSet": o.cfg.NAT.StaticRuleSet})
	if err != nil {
		return nil, err
	}
	var pairs []Pair
	for _, name := range names {
		public, private, err := naming.ParseStaticNATRule(name)
		if err != nil || !subnet.Contains(private) {
			continue
		}
		pairs = append(pairs, Pair{Public: public, Private: private})
	}
	return pairs, nil
}

func (o *Orchestrator) destinationPairsIn(ctx context.Context, exec junos.Executor, subnet netip.Prefix) ([]Pair, error) {
	names, err := junos.List(ctx, exec, junos.DestinationNATRule, junos.Fields{"ruleSet": o.cfg.NAT.DestinationRuleSet})
	if err != nil {
		return nil, err
	}
	var pairs []Pair
	for _, name := range names {
		ref, err := naming.ParseDestinationNATRule(name)
		if err != nil || !subnet.Contains(ref.PrivateIP) {
			continue
		}
		p := Pair{Public: ref.PublicIP, Private: ref.PrivateIP}
		if !containsPair(pairs, p) {
			pairs = append(pairs, p)
		}
	}
	return pairs, nil
}

func containsPair(pairs []Pair, p Pair) bool {
	for _, q := range pairs {
		if q == p {
			return true
		}
	}
	return false
}

func (o *Orchestrator) sourcePool(ip netip.Addr) junos.Fields {
	return junos.Fields{"name": naming.SourceNATPool(ip), "address": naming.HostPrefix(ip)}
}

func (o *Orchestrator) sourceRule(ip netip.Addr, subnet netip.Prefix) junos.Fields {
	return junos.Fields{
		"ruleSet":  o.cfg.NAT.SourceRuleSet,
		"fromZone": o.cfg.Zones.Private,
		"toZone":   o.cfg.Zones.Public,
		"name":     naming.SourceNATRule(ip, subnet),
		"subnet":   subnet.Masked().String(),
		"pool":     naming.SourceNATPool(ip),
	}
}

func (o *Orchestrator) addSourceNAT(ip netip.Addr, subnet netip.Prefix) sequence {
	s := sequence{
		ensure(junos.SourceNATPool, o.sourcePool(ip)),
		ensure(junos.SourceNATRule, o.sourceRule(ip, subnet)),
		ensure(junos.ProxyARP, o.proxyARP(ip)),
	}
	return append(s, ensureAll(junos.UsageTermIP, o.ipUsageTerms(ip))...)
}

// removeSourceNAT reverses addSourceNAT. Proxy-ARP goes last: its guard
// looks for NAT objects that still mention the address.
func (o *Orchestrator) removeSourceNAT(ip netip.Addr, subnet netip.Prefix) sequence {
	s := sequence{
		remove(junos.SourceNATRule, o.sourceRule(ip, subnet)),
		remove(junos.SourceNATPool, o.sourcePool(ip)),
	}
	s = append(s, removeAll(junos.UsageTermIP, o.ipUsageTerms(ip))...)
	return append(s, remove(junos.ProxyARP, o.proxyARP(ip)))
}

// AssociateIPs sets up the source NAT address among addrs. Other addresses
// need no objects until a NAT mapping uses them.
func (o *Orchestrator) AssociateIPs(ctx context.Context, exec junos.Executor, a *v1alpha1.IPAssociationSpec) error {
	var s sequence
	for _, addr := range a.Addresses {
		if addr.SourceNAT {
			s = append(s, o.addSourceNAT(addr.Address.Unmap(), a.CIDR)...)
		}
	}
	return s.run(ctx, exec)
}

// DisassociateIPs removes the objects of addrs. Objects a NAT mapping still
// needs are kept by their in-use guards.
func (o *Orchestrator) DisassociateIPs(ctx context.Context, exec junos.Executor, a *v1alpha1.IPAssociationSpec) error {
	var s sequence
	for _, addr := range a.Addresses {
		ip := addr.Address.Unmap()
		if addr.SourceNAT {
			s = append(s, o.removeSourceNAT(ip, a.CIDR)...)
			continue
		}
		s = append(s, removeAll(junos.UsageTermIP, o.ipUsageTerms(ip))...)
		s = append(s, remove(junos.ProxyARP, o.proxyARP(ip)))
	}
	return s.run(ctx, exec)
}
