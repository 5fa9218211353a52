package naming

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"
)

// Direction is the traffic direction a usage counter measures, seen from the guest.
type Direction string

const (
	// DirectionIn counts traffic delivered to the guest.
	DirectionIn Direction = "in"
	// DirectionOut counts traffic sent by the guest.
	DirectionOut Direction = "out"
)

// UsageKey identifies what a usage counter is attached to: a public IP address
// or a guest VLAN. Exactly one of the fields is set.
type UsageKey struct {
	IP   netip.Addr
	VLAN int
}

// IPKey returns the usage key of a public address.
func IPKey(addr netip.Addr) UsageKey {
	return UsageKey{IP: addr.Unmap()}
}

// VLANKey returns the usage key of a guest VLAN.
func VLANKey(vlan int) UsageKey {
	return UsageKey{VLAN: vlan}
}

// String returns "203.0.113.10" for address keys and "vlan-100" for VLAN keys.
func (k UsageKey) String() string {
	if k.IP.IsValid() {
		return k.IP.String()
	}
	return join(prefixUsageVLAN, strconv.Itoa(k.VLAN))
}

// MarshalText implements encoding.TextMarshaler so keys can index JSON objects.
func (k UsageKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *UsageKey) UnmarshalText(text []byte) error {
	s := string(text)
	if rest, ok := strings.CutPrefix(s, prefixUsageVLAN+Separator); ok {
		vlan, err := strconv.Atoi(rest)
		if err != nil {
			return fmt.Errorf("invalid usage key %q", s)
		}
		*k = VLANKey(vlan)
		return nil
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return fmt.Errorf("invalid usage key %q", s)
	}
	*k = IPKey(addr)
	return nil
}

// UsageTerm names the counting filter term for key in direction dir,
// e.g. "ip-203-0-113-10-in" or "vlan-100-out". The counter carries the same name.
func UsageTerm(key UsageKey, dir Direction) string {
	if key.IP.IsValid() {
		return join(prefixUsageIP, IP(key.IP), string(dir))
	}
	return join(prefixUsageVLAN, strconv.Itoa(key.VLAN), string(dir))
}

// ParseUsageTerm reverses UsageTerm.
func ParseUsageTerm(name string) (UsageKey, Direction, error) {
	parts := strings.Split(name, Separator)
	if len(parts) < 3 {
		return UsageKey{}, "", fmt.Errorf("%q is not a usage counter name", name)
	}
	dir := Direction(parts[len(parts)-1])
	if dir != DirectionIn && dir != DirectionOut {
		return UsageKey{}, "", fmt.Errorf("%q has unknown direction %q", name, dir)
	}
	body := parts[1 : len(parts)-1]
	switch parts[0] {
	case prefixUsageIP:
		addr, err := ParseIP(join(body...))
		if err != nil {
			return UsageKey{}, "", fmt.Errorf("%q: %w", name, err)
		}
		return IPKey(addr), dir, nil
	case prefixUsageVLAN:
		if len(body) != 1 {
			return UsageKey{}, "", fmt.Errorf("%q is not a usage counter name", name)
		}
		vlan, err := strconv.Atoi(body[0])
		if err != nil || vlan < 0 {
			return UsageKey{}, "", fmt.Errorf("%q has invalid VLAN tag", name)
		}
		return VLANKey(vlan), dir, nil
	default:
		return UsageKey{}, "", fmt.Errorf("%q is not a usage counter name", name)
	}
}
