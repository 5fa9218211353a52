package orchestration

import (
	"fmt"
	"net/netip"
	"slices"
	"strconv"

	"github.com/imamik/srxgate/api/v1alpha1"
	"github.com/imamik/srxgate/internal/platform/junos"
	"github.com/imamik/srxgate/internal/util/naming"
)

// anyApplication is the predefined application matching all traffic.
const anyApplication = "any"

func portApplication(protocol v1alpha1.Protocol, start, end int) junos.Fields {
	return junos.Fields{
		"name":     naming.Application(string(protocol), start, end),
		"protocol": string(protocol),
		"ports":    fmt.Sprintf("%d-%d", start, end),
	}
}

// ruleApplication returns the application a firewall rule matches, or false
// for rules covering every protocol.
func ruleApplication(r v1alpha1.FirewallRule) (junos.Fields, bool) {
	switch r.Protocol {
	case v1alpha1.ProtocolTCP, v1alpha1.ProtocolUDP:
		return portApplication(r.Protocol, r.StartPort, r.EndPort), true
	case v1alpha1.ProtocolICMP:
		icmpType, icmpCode := r.ICMP()
		f := junos.Fields{"name": naming.ICMPApplication(icmpType, icmpCode), "protocol": "icmp"}
		if icmpType >= 0 {
			f["icmpType"] = strconv.Itoa(icmpType)
		}
		if icmpCode >= 0 {
			f["icmpCode"] = strconv.Itoa(icmpCode)
		}
		return f, true
	default:
		return nil, false
	}
}

// mergeApplications returns the applications to create and the names a
// policy should match. A rule covering every protocol collapses the match to
// the predefined application.
func mergeApplications(apps []junos.Fields, matchAll bool) ([]junos.Fields, []string) {
	if matchAll || len(apps) == 0 {
		return nil, []string{anyApplication}
	}
	var (
		out   []junos.Fields
		names []string
	)
	for _, a := range apps {
		if slices.Contains(names, a.Text("name")) {
			continue
		}
		out = append(out, a)
		names = append(names, a.Text("name"))
	}
	return out, names
}

func firewallApplications(rules []v1alpha1.FirewallRule) ([]junos.Fields, []string) {
	var (
		apps     []junos.Fields
		matchAll bool
	)
	for _, r := range rules {
		app, ok := ruleApplication(r)
		if !ok {
			matchAll = true
			continue
		}
		apps = append(apps, app)
	}
	return mergeApplications(apps, matchAll)
}

// applicationNames lists every application rules reference, for cleanup.
func applicationNames(rules []v1alpha1.FirewallRule) []string {
	var names []string
	for _, r := range rules {
		if app, ok := ruleApplication(r); ok {
			names = union(names, []string{app.Text("name")})
		}
	}
	return names
}

func firewallCIDRs(rules []v1alpha1.FirewallRule) []netip.Prefix {
	var out []netip.Prefix
	for _, r := range rules {
		if len(r.CIDRs) == 0 {
			return nil
		}
		out = append(out, r.CIDRs...)
	}
	return out
}

func activeFirewallRules(rules []v1alpha1.FirewallRule) []v1alpha1.FirewallRule {
	var out []v1alpha1.FirewallRule
	for _, r := range rules {
		if r.Active() {
			out = append(out, r)
		}
	}
	return out
}

// cidrEntryNames lists the managed entry names of every prefix the rules
// mention, for cleanup.
func cidrEntryNames(rules []v1alpha1.FirewallRule) []string {
	var names []string
	for _, r := range rules {
		for _, p := range r.CIDRs {
			if name := naming.AddressBookEntry(p); name != naming.AnyAddress {
				names = union(names, []string{name})
			}
		}
	}
	return names
}
