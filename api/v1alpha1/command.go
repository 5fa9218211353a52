package v1alpha1

import (
	"net/netip"
)

// CommandKind names the operation a Command requests.
type CommandKind string

const (
	KindImplementNetwork         CommandKind = "ImplementNetwork"
	KindShutdownNetwork          CommandKind = "ShutdownNetwork"
	KindAssociateIP              CommandKind = "AssociateIP"
	KindDisassociateIP           CommandKind = "DisassociateIP"
	KindSetStaticNATRules        CommandKind = "SetStaticNATRules"
	KindSetPortForwardingRules   CommandKind = "SetPortForwardingRules"
	KindSetFirewallRules         CommandKind = "SetFirewallRules"
	KindConfigureRemoteAccessVPN CommandKind = "ConfigureRemoteAccessVPN"
	KindClearRemoteAccessVPN     CommandKind = "ClearRemoteAccessVPN"
	KindConfigureVPNUsers        CommandKind = "ConfigureVPNUsers"
	KindGetUsage                 CommandKind = "GetUsage"
)

// CommandKinds lists every kind in a stable order.
var CommandKinds = []CommandKind{
	KindImplementNetwork, KindShutdownNetwork, KindAssociateIP, KindDisassociateIP,
	KindSetStaticNATRules, KindSetPortForwardingRules, KindSetFirewallRules,
	KindConfigureRemoteAccessVPN, KindClearRemoteAccessVPN, KindConfigureVPNUsers,
	KindGetUsage,
}

// Mutates reports whether commands of this kind change appliance configuration.
func (k CommandKind) Mutates() bool {
	return k != KindGetUsage
}

// Command is one desired-state request from the upstream dispatcher. Only the
// payload belonging to Kind is read.
type Command struct {
	// Kind selects the operation.
	Kind CommandKind `json:"kind"`

	// ID correlates the command with its Answer. The driver generates one
	// when empty.
	// +optional
	ID string `json:"id,omitempty"`

	// Network is the payload of ImplementNetwork and ShutdownNetwork.
	// +optional
	Network *NetworkSpec `json:"network,omitempty"`

	// Association is the payload of AssociateIP and DisassociateIP.
	// +optional
	Association *IPAssociationSpec `json:"association,omitempty"`

	// StaticNAT is the payload of SetStaticNATRules.
	// +optional
	StaticNAT *StaticNATSpec `json:"staticNAT,omitempty"`

	// PortForwarding is the payload of SetPortForwardingRules.
	// +optional
	PortForwarding *PortForwardingSpec `json:"portForwarding,omitempty"`

	// Firewall is the payload of SetFirewallRules.
	// +optional
	Firewall *FirewallSpec `json:"firewall,omitempty"`

	// VPN is the payload of ConfigureRemoteAccessVPN, ClearRemoteAccessVPN
	// and ConfigureVPNUsers.
	// +optional
	VPN *RemoteAccessVPNSpec `json:"vpn,omitempty"`
}

// NATMode selects how a guest network reaches the public side.
type NATMode string

const (
	// ModeSourceNAT translates the whole guest subnet to one public address.
	ModeSourceNAT NATMode = "SourceNAT"
	// ModeInterfaceNAT leaves translation to the interface; only VLAN usage
	// is counted.
	ModeInterfaceNAT NATMode = "InterfaceNAT"
)

// NetworkSpec describes a guest network behind the appliance.
type NetworkSpec struct {
	// AccountID owns the network and its remote-access VPN objects.
	AccountID int64 `json:"accountID"`

	// VLAN is the guest VLAN tag (1-4094).
	VLAN int `json:"vlan"`

	// Gateway is the appliance address inside the guest subnet.
	Gateway netip.Addr `json:"gateway"`

	// CIDR is the guest subnet.
	CIDR netip.Prefix `json:"cidr"`

	// Mode is SourceNAT or InterfaceNAT.
	Mode NATMode `json:"mode"`

	// SourceNATIP is the public address of a SourceNAT network.
	// +optional
	SourceNATIP netip.Addr `json:"sourceNATIP,omitempty"`
}

// IPAssociationSpec adds or removes public addresses of a guest network.
type IPAssociationSpec struct {
	// VLAN is the guest VLAN the addresses belong to.
	VLAN int `json:"vlan"`

	// CIDR is the guest subnet translated by a source NAT address.
	CIDR netip.Prefix `json:"cidr"`

	// Addresses lists the public addresses.
	Addresses []PublicAddress `json:"addresses"`
}

// PublicAddress is one public address of a guest network.
type PublicAddress struct {
	Address netip.Addr `json:"address"`

	// SourceNAT marks the address the guest subnet is translated to.
	// +optional
	SourceNAT bool `json:"sourceNAT,omitempty"`
}

// Protocol is the transport a rule matches.
type Protocol string

const (
	ProtocolTCP  Protocol = "tcp"
	ProtocolUDP  Protocol = "udp"
	ProtocolICMP Protocol = "icmp"
	// ProtocolAll matches every protocol and port.
	ProtocolAll Protocol = "all"
)

// HasPorts reports whether the protocol carries a port range.
func (p Protocol) HasPorts() bool {
	return p == ProtocolTCP || p == ProtocolUDP
}

// FirewallRule admits (ingress) or filters (egress) one protocol and port
// range.
type FirewallRule struct {
	// PublicIP and PrivateIP name the static NAT pair an ingress rule
	// belongs to. Ignored for egress rules.
	// +optional
	PublicIP netip.Addr `json:"publicIP,omitempty"`
	// +optional
	PrivateIP netip.Addr `json:"privateIP,omitempty"`

	Protocol Protocol `json:"protocol"`

	// StartPort and EndPort bound the destination port range of tcp and
	// udp rules.
	// +optional
	StartPort int `json:"startPort,omitempty"`
	// +optional
	EndPort int `json:"endPort,omitempty"`

	// ICMPType and ICMPCode restrict icmp rules. Absent or -1 means any.
	// +optional
	ICMPType *int `json:"icmpType,omitempty"`
	// +optional
	ICMPCode *int `json:"icmpCode,omitempty"`

	// CIDRs are the remote prefixes: sources for ingress, destinations for
	// egress. Empty means any.
	// +optional
	CIDRs []netip.Prefix `json:"cidrs,omitempty"`

	// Revoked rules are removed from the appliance.
	// +optional
	Revoked bool `json:"revoked,omitempty"`

	// AlreadyApplied marks rules the dispatcher believes are in place.
	// +optional
	AlreadyApplied bool `json:"alreadyApplied,omitempty"`
}

// Active reports whether the rule belongs on the appliance: it is not
// revoked, or it is already applied.
func (r FirewallRule) Active() bool {
	return !r.Revoked || r.AlreadyApplied
}

// ICMP returns the type and code, -1 standing for any.
func (r FirewallRule) ICMP() (icmpType, icmpCode int) {
	icmpType, icmpCode = -1, -1
	if r.ICMPType != nil {
		icmpType = *r.ICMPType
	}
	if r.ICMPCode != nil {
		icmpCode = *r.ICMPCode
	}
	return icmpType, icmpCode
}

// StaticNATSpec is the full desired rule set of one or more static NAT pairs.
type StaticNATSpec struct {
	// Rules carry their pair in PublicIP and PrivateIP. A pair without
	// active rules is removed.
	Rules []FirewallRule `json:"rules"`
}

// PortForwardingSpec is the full desired rule set of one or more
// public/private address pairs.
type PortForwardingSpec struct {
	Rules []PortForwardingRule `json:"rules"`
}

// PortForwardingRule forwards a public port range to a private one.
type PortForwardingRule struct {
	PublicIP         netip.Addr `json:"publicIP"`
	PublicStartPort  int        `json:"publicStartPort"`
	PublicEndPort    int        `json:"publicEndPort"`
	PrivateIP        netip.Addr `json:"privateIP"`
	PrivateStartPort int        `json:"privateStartPort"`
	PrivateEndPort   int        `json:"privateEndPort"`
	Protocol         Protocol   `json:"protocol"`

	// +optional
	CIDRs []netip.Prefix `json:"cidrs,omitempty"`
	// +optional
	Revoked bool `json:"revoked,omitempty"`
	// +optional
	AlreadyApplied bool `json:"alreadyApplied,omitempty"`
}

// Active reports whether the rule belongs on the appliance: it is not
// revoked, or it is already applied.
func (r PortForwardingRule) Active() bool {
	return !r.Revoked || r.AlreadyApplied
}

// TrafficType selects which firewall rules a SetFirewallRules command carries.
type TrafficType string

const (
	TrafficIngress TrafficType = "Ingress"
	TrafficEgress  TrafficType = "Egress"
)

// FirewallSpec is the payload of SetFirewallRules.
type FirewallSpec struct {
	TrafficType TrafficType    `json:"trafficType"`
	Rules       []FirewallRule `json:"rules"`

	// Egress scopes egress rules to a guest network. Required for Egress.
	// +optional
	Egress *EgressScope `json:"egress,omitempty"`
}

// EgressScope is the guest network egress rules apply to.
type EgressScope struct {
	VLAN int          `json:"vlan"`
	CIDR netip.Prefix `json:"cidr"`

	// DefaultAllow permits traffic no rule matches; the rules then deny.
	// +optional
	DefaultAllow bool `json:"defaultAllow,omitempty"`
}

// RemoteAccessVPNSpec describes the remote-access VPN of an account.
type RemoteAccessVPNSpec struct {
	AccountID int64 `json:"accountID"`

	// GuestCIDR is the subnet VPN clients reach.
	// +optional
	GuestCIDR netip.Prefix `json:"guestCIDR,omitempty"`

	// ClientPool is the prefix VPN clients are addressed from.
	// +optional
	ClientPool netip.Prefix `json:"clientPool,omitempty"`

	// PresharedKey authenticates phase 1.
	// +optional
	PresharedKey string `json:"presharedKey,omitempty"`

	// +optional
	Users []VPNUser `json:"users,omitempty"`
}

// VPNUser is one remote-access VPN user.
type VPNUser struct {
	Username string `json:"username"`
	// +optional
	Password string `json:"password,omitempty"`

	// Remove deletes the user's objects (ConfigureVPNUsers only).
	// +optional
	Remove bool `json:"remove,omitempty"`
}
