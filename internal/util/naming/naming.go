package naming

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"
)

// Separator joins name components.
const Separator = "-"

// AnyAddress is the predefined address-book entry matching every address.
const AnyAddress = "any"

// Object-kind prefixes.
const (
	prefixSourcePool      = "srcpool"
	prefixSourceRule      = "srcnat"
	prefixStaticRule      = "staticnat"
	prefixDestinationPool = "dstpool"
	prefixDestinationRule = "dstnat"
	prefixIKEPolicy       = "ikepolicy"
	prefixIKEGateway      = "ikegw"
	prefixIPsecVPN        = "ipsecvpn"
	prefixDynamicVPN      = "dynvpn"
	prefixAccessProfile   = "vpnprofile"
	prefixAddressPool     = "vpnpool"
	prefixUsageIP         = "ip"
	prefixUsageVLAN       = "vlan"
	prefixAnyICMP         = "any"
)

func join(parts ...string) string {
	return strings.Join(parts, Separator)
}

// IP renders an IPv4 address as four separator-joined octets.
func IP(addr netip.Addr) string {
	return strings.ReplaceAll(addr.Unmap().String(), ".", Separator)
}

// Prefix renders a CIDR as its network address followed by the prefix length.
func Prefix(p netip.Prefix) string {
	p = p.Masked()
	return join(IP(p.Addr()), strconv.Itoa(p.Bits()))
}

// HostPrefix renders addr as a /32 CIDR string, the form the appliance uses for
// single-address matches.
func HostPrefix(addr netip.Addr) string {
	return netip.PrefixFrom(addr.Unmap(), 32).String()
}

// ParseIP reverses IP.
func ParseIP(s string) (netip.Addr, error) {
	parts := strings.Split(s, Separator)
	if len(parts) != 4 {
		return netip.Addr{}, fmt.Errorf("invalid address component %q", s)
	}
	addr, err := netip.ParseAddr(strings.Join(parts, "."))
	if err != nil || !addr.Is4() {
		return netip.Addr{}, fmt.Errorf("invalid address component %q", s)
	}
	return addr, nil
}

// SourceNATPool names the source NAT pool translating to publicIP.
func SourceNATPool(publicIP netip.Addr) string {
	return join(prefixSourcePool, IP(publicIP))
}

// SourceNATRule names the source NAT rule translating subnet to publicIP.
func SourceNATRule(publicIP netip.Addr, subnet netip.Prefix) string {
	return join(prefixSourceRule, IP(publicIP), Prefix(subnet))
}

// StaticNATRule names the one-to-one NAT rule between publicIP and privateIP.
func StaticNATRule(publicIP, privateIP netip.Addr) string {
	return join(prefixStaticRule, IP(publicIP), IP(privateIP))
}

// ParseStaticNATRule reverses StaticNATRule.
func ParseStaticNATRule(name string) (publicIP, privateIP netip.Addr, err error) {
	rest, ok := strings.CutPrefix(name, prefixStaticRule+Separator)
	if !ok {
		return netip.Addr{}, netip.Addr{}, fmt.Errorf("%q is not a static NAT rule name", name)
	}
	parts := strings.Split(rest, Separator)
	if len(parts) != 8 {
		return netip.Addr{}, netip.Addr{}, fmt.Errorf("%q is not a static NAT rule name", name)
	}
	if publicIP, err = ParseIP(join(parts[:4]...)); err != nil {
		return netip.Addr{}, netip.Addr{}, err
	}
	if privateIP, err = ParseIP(join(parts[4:]...)); err != nil {
		return netip.Addr{}, netip.Addr{}, err
	}
	return publicIP, privateIP, nil
}

// DestinationNATPool names the pool translating to privateIP:privatePort.
func DestinationNATPool(privateIP netip.Addr, privatePort int) string {
	return join(prefixDestinationPool, IP(privateIP), strconv.Itoa(privatePort))
}

// ParseDestinationNATPool reverses DestinationNATPool.
func ParseDestinationNATPool(name string) (privateIP netip.Addr, privatePort int, err error) {
	rest, ok := strings.CutPrefix(name, prefixDestinationPool+Separator)
	if !ok {
		return netip.Addr{}, 0, fmt.Errorf("%q is not a destination NAT pool name", name)
	}
	parts := strings.Split(rest, Separator)
	if len(parts) != 5 {
		return netip.Addr{}, 0, fmt.Errorf("%q is not a destination NAT pool name", name)
	}
	if privateIP, err = ParseIP(join(parts[:4]...)); err != nil {
		return netip.Addr{}, 0, err
	}
	if privatePort, err = parsePort(parts[4]); err != nil {
		return netip.Addr{}, 0, err
	}
	return privateIP, privatePort, nil
}

// DestinationNATRule names the port-forwarding rule for publicIP ports start..end
// towards privateIP.
func DestinationNATRule(publicIP, privateIP netip.Addr, start, end int) string {
	return join(prefixDestinationRule, IP(publicIP), IP(privateIP), strconv.Itoa(start), strconv.Itoa(end))
}

// DestinationNATRuleRef is the decoded form of a destination NAT rule name.
type DestinationNATRuleRef struct {
	PublicIP  netip.Addr
	PrivateIP netip.Addr
	StartPort int
	EndPort   int
}

// ParseDestinationNATRule reverses DestinationNATRule.
func ParseDestinationNATRule(name string) (DestinationNATRuleRef, error) {
	var ref DestinationNATRuleRef
	rest, ok := strings.CutPrefix(name, prefixDestinationRule+Separator)
	if !ok {
		return ref, fmt.Errorf("%q is not a destination NAT rule name", name)
	}
	parts := strings.Split(rest, Separator)
	if len(parts) != 10 {
		return ref, fmt.Errorf("%q is not a destination NAT rule name", name)
	}
	var err error
	if ref.PublicIP, err = ParseIP(join(parts[:4]...)); err != nil {
		return ref, err
	}
	if ref.PrivateIP, err = ParseIP(join(parts[4:8]...)); err != nil {
		return ref, err
	}
	if ref.StartPort, err = parsePort(parts[8]); err != nil {
		return ref, err
	}
	if ref.EndPort, err = parsePort(parts[9]); err != nil {
		return ref, err
	}
	return ref, nil
}

func parsePort(s string) (int, error) {
	p, err := strconv.Atoi(s)
	if err != nil || p < 0 || p > 65535 {
		return 0, fmt.Errorf("invalid port component %q", s)
	}
	return p, nil
}

// AddressBookEntry names the address-book entry for p. Host prefixes use the
// bare address form so that NAT and VPN policies share one entry per host.
func AddressBookEntry(p netip.Prefix) string {
	if p.Bits() == 0 {
		return AnyAddress
	}
	if p.IsSingleIP() {
		return IP(p.Addr())
	}
	return Prefix(p)
}

// Application names a protocol and destination port range, e.g. "tcp-22-22".
func Application(protocol string, start, end int) string {
	return join(strings.ToLower(protocol), strconv.Itoa(start), strconv.Itoa(end))
}

// ICMPApplication names an ICMP type/code match. Negative values mean "any".
func ICMPApplication(icmpType, icmpCode int) string {
	return join("icmp", icmpComponent(icmpType), icmpComponent(icmpCode))
}

func icmpComponent(v int) string {
	if v < 0 {
		return prefixAnyICMP
	}
	return strconv.Itoa(v)
}

// StaticNATPolicy names the policy admitting traffic to a static NAT target.
func StaticNATPolicy(fromZone, toZone string, privateIP netip.Addr) string {
	return join(fromZone, toZone, prefixStaticRule, IP(privateIP))
}

// DestinationNATPolicy names the policy admitting traffic forwarded from
// publicIP to privateIP.
func DestinationNATPolicy(fromZone, toZone string, publicIP, privateIP netip.Addr) string {
	return join(fromZone, toZone, prefixDestinationRule, IP(publicIP), IP(privateIP))
}

// EgressPolicy names the explicit egress policy for a guest VLAN.
func EgressPolicy(fromZone, toZone string, vlan int) string {
	return join(fromZone, toZone, "egress", strconv.Itoa(vlan))
}

// DefaultEgressPolicy names the policy carrying the default egress action.
func DefaultEgressPolicy(fromZone, toZone string, vlan int) string {
	return join(fromZone, toZone, "egress-default", strconv.Itoa(vlan))
}

// VPNPolicy names the policy admitting a remote-access VPN user.
func VPNPolicy(fromZone, toZone string, accountID int64, username string) string {
	return join(fromZone, toZone, "vpn", strconv.FormatInt(accountID, 10), username)
}

// IKEPolicy names the account-wide IKE policy.
func IKEPolicy(accountID int64) string {
	return join(prefixIKEPolicy, strconv.FormatInt(accountID, 10))
}

// AddressPool names the account-wide VPN client address pool.
func AddressPool(accountID int64) string {
	return join(prefixAddressPool, strconv.FormatInt(accountID, 10))
}

// IKEGateway names the per-user IKE gateway.
func IKEGateway(accountID int64, username string) string {
	return vpnUserName(prefixIKEGateway, accountID, username)
}

// IPsecVPN names the per-user IPsec VPN.
func IPsecVPN(accountID int64, username string) string {
	return vpnUserName(prefixIPsecVPN, accountID, username)
}

// DynamicVPNClient names the per-user dynamic VPN client.
func DynamicVPNClient(accountID int64, username string) string {
	return vpnUserName(prefixDynamicVPN, accountID, username)
}

// AccessProfile names the per-user access profile.
func AccessProfile(accountID int64, username string) string {
	return vpnUserName(prefixAccessProfile, accountID, username)
}

// IKEGatewayPrefix is the name prefix shared by every IKE gateway of an account.
func IKEGatewayPrefix(accountID int64) string {
	return join(prefixIKEGateway, strconv.FormatInt(accountID, 10)) + Separator
}

func vpnUserName(prefix string, accountID int64, username string) string {
	return join(prefix, strconv.FormatInt(accountID, 10), username)
}

// ParseIKEGateway reverses IKEGateway.
func ParseIKEGateway(name string) (accountID int64, username string, err error) {
	rest, ok := strings.CutPrefix(name, prefixIKEGateway+Separator)
	if !ok {
		return 0, "", fmt.Errorf("%q is not an IKE gateway name", name)
	}
	account, user, ok := strings.Cut(rest, Separator)
	if !ok || user == "" {
		return 0, "", fmt.Errorf("%q is not an IKE gateway name", name)
	}
	accountID, err = strconv.ParseInt(account, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("%q is not an IKE gateway name", name)
	}
	return accountID, user, nil
}

// LogicalInterface names the VLAN unit of a physical interface, e.g. "ge-0/0/1.100".
func LogicalInterface(physical string, vlan int) string {
	return physical + "." + strconv.Itoa(vlan)
}
