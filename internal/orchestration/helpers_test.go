package orchestration

import (
	"context"
	"net/netip"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/imamik/srxgate/api/v1alpha1"
	"github.com/imamik/srxgate/internal/platform/junos"
	srxtesting "github.com/imamik/srxgate/internal/testing"
	"github.com/imamik/srxgate/internal/testing/appliance"
)

var (
	publicIP  = netip.MustParseAddr("203.0.113.10")
	privateIP = netip.MustParseAddr("10.0.0.5")
)

func setup(t *testing.T) (*appliance.Server, *junos.Client, *Orchestrator) {
	t.Helper()
	fx := srxtesting.NewApplianceFixture(t)
	return fx.Server, fx.Client(t), New(srxtesting.MinimalConfig())
}

// apply runs fn in its own committed transaction.
func apply(t *testing.T, c *junos.Client, fn func(context.Context, junos.Executor) error) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, c.OpenConfiguration(ctx))
	require.NoError(t, fn(ctx, c))
	require.NoError(t, c.Commit(ctx))
}

func sourceNATNetwork() *v1alpha1.NetworkSpec {
	return &v1alpha1.NetworkSpec{
		AccountID:   7,
		VLAN:        100,
		Gateway:     netip.MustParseAddr("10.0.0.1"),
		CIDR:        netip.MustParsePrefix("10.0.0.0/24"),
		Mode:        v1alpha1.ModeSourceNAT,
		SourceNATIP: publicIP,
	}
}

func tcpRule(public, private netip.Addr, port int) v1alpha1.FirewallRule {
	return v1alpha1.FirewallRule{
		PublicIP:  public,
		PrivateIP: private,
		Protocol:  v1alpha1.ProtocolTCP,
		StartPort: port,
		EndPort:   port,
	}
}

// deletes returns the bodies of every delete load, in order.
func deletes(srv *appliance.Server) []string {
	var out []string
	for _, r := range srv.RequestsFor(appliance.OpLoad) {
		if strings.Contains(r.Body, `delete="delete"`) {
			out = append(out, r.Body)
		}
	}
	return out
}

// deleteIndex returns the position of the first delete load containing
// marker, or -1.
func deleteIndex(loads []string, marker string) int {
	for i, body := range loads {
		if strings.Contains(body, marker) {
			return i
		}
	}
	return -1
}

// Paths into the committed configuration.
var (
	proxyARPPath = func(ip string) []string {
		return []string{"security", "nat", "proxy-arp", "interface[ge-0/0/0.0]", "address[" + ip + "/32]"}
	}
	addressPath = func(zone, name string) []string {
		return []string{"security", "zones", "security-zone[" + zone + "]", "address-book", "address[" + name + "]"}
	}
	applicationPath = func(name string) []string {
		return []string{"applications", "application[" + name + "]"}
	}
	policyPath = func(from, to, name string, rest ...string) []string {
		return append([]string{"security", "policies", "policy[" + from + "," + to + "]", "policy[" + name + "]"}, rest...)
	}
	usageTermPath = func(filter, name string) []string {
		return []string{"firewall", "family", "inet", "filter[" + filter + "]", "term[" + name + "]"}
	}
	staticRulePath = func(name string) []string {
		return []string{"security", "nat", "static", "rule-set[static-nat]", "rule[" + name + "]"}
	}
	destinationRulePath = func(name string) []string {
		return []string{"security", "nat", "destination", "rule-set[destination-nat]", "rule[" + name + "]"}
	}
	destinationPoolPath = func(name string) []string {
		return []string{"security", "nat", "destination", "pool[" + name + "]"}
	}
)
