package v1alpha1

import (
	"errors"
	"fmt"
	"net/netip"
	"slices"
	"strings"
)

// Validate checks that the command names a known kind and carries a usable
// payload for it. All problems are returned joined.
func (c *Command) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	switch c.Kind {
	case KindImplementNetwork, KindShutdownNetwork:
		if c.Network == nil {
			add("%s requires network", c.Kind)
			break
		}
		c.Network.validate(add)
	case KindAssociateIP, KindDisassociateIP:
		if c.Association == nil {
			add("%s requires association", c.Kind)
			break
		}
		c.Association.validate(add)
	case KindSetStaticNATRules:
		if c.StaticNAT == nil {
			add("%s requires staticNAT", c.Kind)
			break
		}
		for i, r := range c.StaticNAT.Rules {
			r.validate(fmt.Sprintf("staticNAT.rules[%d]", i), true, add)
		}
	case KindSetPortForwardingRules:
		if c.PortForwarding == nil {
			add("%s requires portForwarding", c.Kind)
			break
		}
		for i, r := range c.PortForwarding.Rules {
			r.validate(fmt.Sprintf("portForwarding.rules[%d]", i), add)
		}
	case KindSetFirewallRules:
		if c.Firewall == nil {
			add("%s requires firewall", c.Kind)
			break
		}
		c.Firewall.validate(add)
	case KindConfigureRemoteAccessVPN, KindConfigureVPNUsers:
		if c.VPN == nil {
			add("%s requires vpn", c.Kind)
			break
		}
		c.VPN.validate(add, true)
	case KindClearRemoteAccessVPN:
		if c.VPN == nil {
			add("%s requires vpn", c.Kind)
			break
		}
		c.VPN.validate(add, false)
	case KindGetUsage:
	case "":
		add("kind is required")
	default:
		add("unknown kind %q", c.Kind)
	}

	return errors.Join(errs...)
}

type addFunc func(format string, args ...any)

func validVLAN(vlan int) bool {
	return vlan >= 1 && vlan <= 4094
}

func validPort(p int) bool {
	return p >= 1 && p <= 65535
}

func validIPv4(a netip.Addr) bool {
	return a.IsValid() && a.Unmap().Is4()
}

func validPrefix(p netip.Prefix) bool {
	return p.IsValid() && p.Addr().Is4()
}

func (n *NetworkSpec) validate(add addFunc) {
	if n.AccountID <= 0 {
		add("network.accountID must be positive")
	}
	if !validVLAN(n.VLAN) {
		add("network.vlan must be between 1 and 4094, got %d", n.VLAN)
	}
	if !validPrefix(n.CIDR) {
		add("network.cidr must be an IPv4 prefix")
	}
	if !validIPv4(n.Gateway) {
		add("network.gateway must be an IPv4 address")
	} else if validPrefix(n.CIDR) && !n.CIDR.Contains(n.Gateway) {
		add("network.gateway %s is outside %s", n.Gateway, n.CIDR)
	}
	switch n.Mode {
	case ModeSourceNAT:
		if !validIPv4(n.SourceNATIP) {
			add("network.sourceNATIP is required in %s mode", n.Mode)
		}
	case ModeInterfaceNAT:
	default:
		add("network.mode must be %s or %s", ModeSourceNAT, ModeInterfaceNAT)
	}
}

func (s *IPAssociationSpec) validate(add addFunc) {
	if !validVLAN(s.VLAN) {
		add("association.vlan must be between 1 and 4094, got %d", s.VLAN)
	}
	if len(s.Addresses) == 0 {
		add("association.addresses must not be empty")
	}
	needsCIDR := false
	for i, a := range s.Addresses {
		if !validIPv4(a.Address) {
			add("association.addresses[%d].address must be an IPv4 address", i)
		}
		needsCIDR = needsCIDR || a.SourceNAT
	}
	if needsCIDR && !validPrefix(s.CIDR) {
		add("association.cidr is required for source NAT addresses")
	}
}

func validProtocol(p Protocol) bool {
	return slices.Contains([]Protocol{ProtocolTCP, ProtocolUDP, ProtocolICMP, ProtocolAll}, p)
}

func validCIDRs(path string, cidrs []netip.Prefix, add addFunc) {
	for i, c := range cidrs {
		if !validPrefix(c) {
			add("%s.cidrs[%d] must be an IPv4 prefix", path, i)
		}
	}
}

func (r FirewallRule) validate(path string, paired bool, add addFunc) {
	if paired {
		if !validIPv4(r.PublicIP) {
			add("%s.publicIP must be an IPv4 address", path)
		}
		if !validIPv4(r.PrivateIP) {
			add("%s.privateIP must be an IPv4 address", path)
		}
	}
	if !validProtocol(r.Protocol) {
		add("%s.protocol %q is not one of tcp, udp, icmp, all", path, r.Protocol)
	}
	if r.Protocol.HasPorts() {
		if !validPort(r.StartPort) || !validPort(r.EndPort) || r.StartPort > r.EndPort {
			add("%s has invalid port range %d-%d", path, r.StartPort, r.EndPort)
		}
	}
	if r.Protocol == ProtocolICMP {
		icmpType, icmpCode := r.ICMP()
		if icmpType < -1 || icmpType > 255 || icmpCode < -1 || icmpCode > 255 {
			add("%s has invalid icmp type/code %d/%d", path, icmpType, icmpCode)
		}
	}
	validCIDRs(path, r.CIDRs, add)
}

func (r PortForwardingRule) validate(path string, add addFunc) {
	if !validIPv4(r.PublicIP) {
		add("%s.publicIP must be an IPv4 address", path)
	}
	if !validIPv4(r.PrivateIP) {
		add("%s.privateIP must be an IPv4 address", path)
	}
	if r.Protocol != ProtocolTCP && r.Protocol != ProtocolUDP {
		add("%s.protocol must be tcp or udp", path)
	}
	if !validPort(r.PublicStartPort) || !validPort(r.PublicEndPort) || r.PublicStartPort > r.PublicEndPort {
		add("%s has invalid public port range %d-%d", path, r.PublicStartPort, r.PublicEndPort)
	}
	if !validPort(r.PrivateStartPort) || !validPort(r.PrivateEndPort) || r.PrivateStartPort > r.PrivateEndPort {
		add("%s has invalid private port range %d-%d", path, r.PrivateStartPort, r.PrivateEndPort)
	}
	validCIDRs(path, r.CIDRs, add)
}

func (f *FirewallSpec) validate(add addFunc) {
	switch f.TrafficType {
	case TrafficIngress:
		for i, r := range f.Rules {
			r.validate(fmt.Sprintf("firewall.rules[%d]", i), true, add)
		}
	case TrafficEgress:
		if f.Egress == nil {
			add("firewall.egress is required for %s rules", f.TrafficType)
		} else {
			if !validVLAN(f.Egress.VLAN) {
				add("firewall.egress.vlan must be between 1 and 4094, got %d", f.Egress.VLAN)
			}
			if !validPrefix(f.Egress.CIDR) {
				add("firewall.egress.cidr must be an IPv4 prefix")
			}
		}
		for i, r := range f.Rules {
			r.validate(fmt.Sprintf("firewall.rules[%d]", i), false, add)
		}
	default:
		add("firewall.trafficType must be %s or %s", TrafficIngress, TrafficEgress)
	}
}

func (v *RemoteAccessVPNSpec) validate(add addFunc, configure bool) {
	if v.AccountID <= 0 {
		add("vpn.accountID must be positive")
	}
	for i, u := range v.Users {
		if u.Username == "" || strings.ContainsAny(u.Username, " \t/") {
			add("vpn.users[%d].username %q is invalid", i, u.Username)
		}
		if configure && !u.Remove && u.Password == "" {
			add("vpn.users[%d].password is required", i)
		}
	}
	if !configure {
		return
	}
	if !validPrefix(v.GuestCIDR) {
		add("vpn.guestCIDR must be an IPv4 prefix")
	}
	if !validPrefix(v.ClientPool) || v.ClientPool.Bits() > 30 {
		add("vpn.clientPool must be an IPv4 prefix of /30 or larger")
	}
	if v.PresharedKey == "" {
		add("vpn.presharedKey is required")
	}
}
