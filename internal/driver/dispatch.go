package driver

import (
	"context"
	"fmt"

	"github.com/imamik/srxgate/api/v1alpha1"
	"github.com/imamik/srxgate/internal/orchestration"
	"github.com/imamik/srxgate/internal/platform/junos"
)

// dispatch routes a validated command to its orchestrator. The returned
// details name the items the command touched.
func (d *Driver) dispatch(ctx context.Context, exec junos.Executor, cmd *v1alpha1.Command) ([]string, error) {
	o := d.orch
	switch cmd.Kind {
	case v1alpha1.KindImplementNetwork:
		return networkDetails(cmd.Network), o.ImplementNetwork(ctx, exec, cmd.Network)
	case v1alpha1.KindShutdownNetwork:
		return networkDetails(cmd.Network), o.ShutdownNetwork(ctx, exec, cmd.Network)
	case v1alpha1.KindAssociateIP:
		return addressDetails(cmd.Association), o.AssociateIPs(ctx, exec, cmd.Association)
	case v1alpha1.KindDisassociateIP:
		return addressDetails(cmd.Association), o.DisassociateIPs(ctx, exec, cmd.Association)
	case v1alpha1.KindSetStaticNATRules:
		return pairDetails(o.SetStaticNATRules(ctx, exec, cmd.StaticNAT.Rules))
	case v1alpha1.KindSetPortForwardingRules:
		return pairDetails(o.SetPortForwardingRules(ctx, exec, cmd.PortForwarding.Rules))
	case v1alpha1.KindSetFirewallRules:
		if cmd.Firewall.TrafficType == v1alpha1.TrafficEgress {
			return []string{fmt.Sprintf("vlan %d", cmd.Firewall.Egress.VLAN)},
				o.SetEgressRules(ctx, exec, cmd.Firewall.Egress, cmd.Firewall.Rules)
		}
		return pairDetails(o.SetIngressRules(ctx, exec, cmd.Firewall.Rules))
	case v1alpha1.KindConfigureRemoteAccessVPN:
		return userDetails(cmd.VPN), o.ConfigureRemoteAccessVPN(ctx, exec, cmd.VPN)
	case v1alpha1.KindClearRemoteAccessVPN:
		return []string{fmt.Sprintf("account %d", cmd.VPN.AccountID)}, o.ClearRemoteAccessVPN(ctx, exec, cmd.VPN)
	case v1alpha1.KindConfigureVPNUsers:
		return userDetails(cmd.VPN), o.ConfigureVPNUsers(ctx, exec, cmd.VPN)
	default:
		return nil, fmt.Errorf("unsupported command kind %q", cmd.Kind)
	}
}

func networkDetails(n *v1alpha1.NetworkSpec) []string {
	return []string{fmt.Sprintf("vlan %d %s", n.VLAN, n.CIDR.Masked())}
}

func addressDetails(a *v1alpha1.IPAssociationSpec) []string {
	out := make([]string, 0, len(a.Addresses))
	for _, addr := range a.Addresses {
		out = append(out, addr.Address.String())
	}
	return out
}

func pairDetails(pairs []orchestration.Pair, err error) ([]string, error) {
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, p.String())
	}
	return out, nil
}

func userDetails(v *v1alpha1.RemoteAccessVPNSpec) []string {
	out := make([]string, 0, len(v.Users))
	for _, u := range v.Users {
		if u.Remove {
			out = append(out, u.Username+" removed")
			continue
		}
		out = append(out, u.Username)
	}
	return out
}
