package orchestration

import (
	"context"
	"net/netip"

	"github.com/go-logr/logr"

	"github.com/imamik/srxgate/api/v1alpha1"
	"github.com/imamik/srxgate/internal/platform/junos"
	"github.com/imamik/srxgate/internal/util/naming"
)

// SetIngressRules applies ingress rules through the static NAT mapping of
// each public/private pair they name.
func (o *Orchestrator) SetIngressRules(ctx context.Context, exec junos.Executor, rules []v1alpha1.FirewallRule) ([]Pair, error) {
	return o.SetStaticNATRules(ctx, exec, rules)
}

func (o *Orchestrator) egressPolicies(vlan int) (explicit, fallback junos.Fields) {
	explicit = o.outbound(naming.EgressPolicy(o.cfg.Zones.Private, o.cfg.Zones.Public, vlan))
	fallback = o.outbound(naming.DefaultEgressPolicy(o.cfg.Zones.Private, o.cfg.Zones.Public, vlan))
	return explicit, fallback
}

// SetEgressRules recomputes the egress policies of a guest VLAN. Both
// policies are deleted; the explicit one is re-added when rules remain
// active, the default one always. With default allow the explicit rules
// deny, otherwise they permit.
func (o *Orchestrator) SetEgressRules(ctx context.Context, exec junos.Executor, scope *v1alpha1.EgressScope, rules []v1alpha1.FirewallRule) error {
	log := logr.FromContextOrDiscard(ctx).WithValues("vlan", scope.VLAN)
	subnet := scope.CIDR.Masked()

	explicit, fallback := o.egressPolicies(scope.VLAN)
	existing, err := readPolicy(ctx, exec, explicit)
	if err != nil {
		return err
	}

	s := sequence{
		remove(junos.SecurityPolicy, explicit),
		remove(junos.SecurityPolicy, fallback),
	}
	s = append(s, removeAll(junos.Application,
		namedApplications(union(existing.Applications, applicationNames(rules))))...)
	s = append(s, removeAll(junos.AddressBookEntry,
		namedEntries(o.cfg.Zones.Public, union(existing.Destinations, cidrEntryNames(rules))))...)

	guest, guestOK := addressEntry(o.cfg.Zones.Private, subnet)
	guestNames := []string{naming.AddressBookEntry(subnet)}
	if guestOK {
		s = append(s, ensure(junos.AddressBookEntry, guest))
	}

	ruleAction, defaultAction := "permit", "deny"
	if scope.DefaultAllow {
		ruleAction, defaultAction = "deny", "permit"
	}

	active := activeFirewallRules(rules)
	if len(active) > 0 {
		destinations, destinationNames := addressEntries(o.cfg.Zones.Public, firewallCIDRs(active))
		apps, appNames := firewallApplications(active)
		s = append(s, ensureAll(junos.AddressBookEntry, destinations)...)
		s = append(s, ensureAll(junos.Application, apps)...)
		s = append(s, ensure(junos.SecurityPolicy, explicit.Merge(junos.Fields{
			"sources":      guestNames,
			"destinations": destinationNames,
			"applications": appNames,
			"action":       ruleAction,
		})))
	}
	s = append(s, ensure(junos.SecurityPolicy, fallback.Merge(junos.Fields{
		"sources":      guestNames,
		"destinations": []string{naming.AnyAddress},
		"applications": []string{anyApplication},
		"action":       defaultAction,
	})))

	if err := s.run(ctx, exec); err != nil {
		return err
	}
	log.Info("egress policy applied", "rules", len(active), "defaultAllow", scope.DefaultAllow)
	return nil
}

// clearEgress removes both egress policies of a VLAN and the objects only
// they referenced.
func (o *Orchestrator) clearEgress(ctx context.Context, exec junos.Executor, vlan int, subnet netip.Prefix) error {
	explicit, fallback := o.egressPolicies(vlan)
	existing, err := readPolicy(ctx, exec, explicit)
	if err != nil {
		return err
	}
	s := sequence{
		remove(junos.SecurityPolicy, explicit),
		remove(junos.SecurityPolicy, fallback),
	}
	s = append(s, removeAll(junos.Application, namedApplications(existing.Applications))...)
	s = append(s, removeAll(junos.AddressBookEntry, namedEntries(o.cfg.Zones.Public, existing.Destinations))...)
	if guest, ok := addressEntry(o.cfg.Zones.Private, subnet); ok {
		s = append(s, remove(junos.AddressBookEntry, guest))
	}
	return s.run(ctx, exec)
}
