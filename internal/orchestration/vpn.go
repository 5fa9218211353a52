package orchestration

import (
	"context"
	"fmt"
	"net/netip"

	"github.com/go-logr/logr"
	"go4.org/netipx"

	"github.com/imamik/srxgate/api/v1alpha1"
	"github.com/imamik/srxgate/internal/platform/junos"
	"github.com/imamik/srxgate/internal/util/naming"
)

// ConfigureRemoteAccessVPN replaces the remote-access VPN of an account:
// every existing VPN object of the account is removed, then the account
// objects and each user's objects are created.
func (o *Orchestrator) ConfigureRemoteAccessVPN(ctx context.Context, exec junos.Executor, v *v1alpha1.RemoteAccessVPNSpec) error {
	log := logr.FromContextOrDiscard(ctx).WithValues("account", v.AccountID)

	if err := o.clearVPN(ctx, exec, v.AccountID); err != nil {
		return err
	}
	s, err := o.ensureVPNAccount(v)
	if err != nil {
		return err
	}
	for _, u := range v.Users {
		if u.Remove {
			continue
		}
		s = append(s, o.addVPNUser(v, u)...)
	}
	if err := s.run(ctx, exec); err != nil {
		return err
	}
	log.Info("remote-access VPN configured", "users", len(v.Users))
	return nil
}

// ClearRemoteAccessVPN removes every VPN object of an account.
func (o *Orchestrator) ClearRemoteAccessVPN(ctx context.Context, exec junos.Executor, v *v1alpha1.RemoteAccessVPNSpec) error {
	if err := o.clearVPN(ctx, exec, v.AccountID); err != nil {
		return err
	}
	logr.FromContextOrDiscard(ctx).Info("remote-access VPN cleared", "account", v.AccountID)
	return nil
}

// ConfigureVPNUsers adds, replaces or removes individual users. The account
// objects are created when missing.
func (o *Orchestrator) ConfigureVPNUsers(ctx context.Context, exec junos.Executor, v *v1alpha1.RemoteAccessVPNSpec) error {
	log := logr.FromContextOrDiscard(ctx).WithValues("account", v.AccountID)

	s, err := o.ensureVPNAccount(v)
	if err != nil {
		return err
	}
	if err := s.run(ctx, exec); err != nil {
		return err
	}
	for _, u := range v.Users {
		if err := o.removeVPNUser(ctx, exec, v.AccountID, u.Username); err != nil {
			return err
		}
		if u.Remove {
			log.Info("VPN user removed", "user", u.Username)
			continue
		}
		if err := o.addVPNUser(v, u).run(ctx, exec); err != nil {
			return err
		}
		log.Info("VPN user configured", "user", u.Username)
	}
	return nil
}

func (o *Orchestrator) ikePolicy(accountID int64) junos.Fields {
	return junos.Fields{"name": naming.IKEPolicy(accountID)}
}

func (o *Orchestrator) addressPool(accountID int64) junos.Fields {
	return junos.Fields{"name": naming.AddressPool(accountID)}
}

func (o *Orchestrator) ensureVPNAccount(v *v1alpha1.RemoteAccessVPNSpec) (sequence, error) {
	pool := v.ClientPool.Masked()
	r := netipx.RangeOfPrefix(pool)
	low, high := r.From().Next(), r.To().Prev()
	if !low.IsValid() || !high.IsValid() || high.Less(low) {
		return nil, fmt.Errorf("client pool %s has no usable addresses", pool)
	}
	return sequence{
		ensure(junos.IKEPolicy, o.ikePolicy(v.AccountID).Merge(junos.Fields{"psk": v.PresharedKey})),
		ensure(junos.AddressPool, o.addressPool(v.AccountID).Merge(junos.Fields{
			"network": pool.String(),
			"low":     low.String(),
			"high":    high.String(),
			"dns":     o.cfg.VPN.DNSServer,
		})),
	}, nil
}

func (o *Orchestrator) vpnPolicy(accountID int64, username string) junos.Fields {
	return o.inbound(naming.VPNPolicy(o.cfg.Zones.Public, o.cfg.Zones.Private, accountID, username))
}

// addVPNUser creates the per-user objects in dependency order.
func (o *Orchestrator) addVPNUser(v *v1alpha1.RemoteAccessVPNSpec, u v1alpha1.VPNUser) sequence {
	id := v.AccountID
	gateway := naming.IKEGateway(id, u.Username)
	vpn := naming.IPsecVPN(id, u.Username)
	profile := naming.AccessProfile(id, u.Username)

	clients, clientNames := addressEntries(o.cfg.Zones.Public, []netip.Prefix{v.ClientPool})
	guests, guestNames := addressEntries(o.cfg.Zones.Private, []netip.Prefix{v.GuestCIDR})

	s := sequence{
		ensure(junos.IKEGateway, junos.Fields{
			"name": gateway, "policy": naming.IKEPolicy(id), "user": u.Username,
			"interface": o.cfg.Interfaces.Public, "profile": profile,
		}),
		ensure(junos.IPsecVPN, junos.Fields{"name": vpn, "gateway": gateway}),
		ensure(junos.DynamicVPNClient, junos.Fields{
			"name": naming.DynamicVPNClient(id, u.Username), "resource": v.GuestCIDR.Masked().String(),
			"vpn": vpn, "user": u.Username,
		}),
		ensure(junos.AccessProfile, junos.Fields{
			"name": profile, "user": u.Username, "password": u.Password, "pool": naming.AddressPool(id),
		}),
	}
	s = append(s, ensureAll(junos.AddressBookEntry, clients)...)
	s = append(s, ensureAll(junos.AddressBookEntry, guests)...)
	return append(s, ensure(junos.SecurityPolicy, o.vpnPolicy(id, u.Username).Merge(junos.Fields{
		"sources":      clientNames,
		"destinations": guestNames,
		"applications": []string{anyApplication},
		"tunnel":       vpn,
	})))
}

// removeVPNUser deletes the per-user objects in reverse order. The address
// entries are read back from the user's policy.
func (o *Orchestrator) removeVPNUser(ctx context.Context, exec junos.Executor, accountID int64, username string) error {
	policy := o.vpnPolicy(accountID, username)
	existing, err := readPolicy(ctx, exec, policy)
	if err != nil {
		return err
	}
	s := sequence{
		remove(junos.SecurityPolicy, policy),
		remove(junos.AccessProfile, junos.Fields{"name": naming.AccessProfile(accountID, username)}),
		remove(junos.DynamicVPNClient, junos.Fields{"name": naming.DynamicVPNClient(accountID, username)}),
		remove(junos.IPsecVPN, junos.Fields{"name": naming.IPsecVPN(accountID, username)}),
		remove(junos.IKEGateway, junos.Fields{"name": naming.IKEGateway(accountID, username)}),
	}
	s = append(s, removeAll(junos.AddressBookEntry, namedEntries(o.cfg.Zones.Public, existing.Sources))...)
	s = append(s, removeAll(junos.AddressBookEntry, namedEntries(o.cfg.Zones.Private, existing.Destinations))...)
	return s.run(ctx, exec)
}

// vpnUsers discovers the users of an account from its IKE gateways.
func (o *Orchestrator) vpnUsers(ctx context.Context, exec junos.Executor, accountID int64) ([]string, error) {
	names, err := junos.List(ctx, exec, junos.IKEGateway, nil)
	if err != nil {
		return nil, err
	}
	var users []string
	for _, name := range names {
		id, user, err := naming.ParseIKEGateway(name)
		if err != nil || id != accountID {
			continue
		}
		users = append(users, user)
	}
	return users, nil
}

// clearVPN removes every user of the account, then the account objects.
func (o *Orchestrator) clearVPN(ctx context.Context, exec junos.Executor, accountID int64) error {
	users, err := o.vpnUsers(ctx, exec, accountID)
	if err != nil {
		return err
	}
	for _, u := range users {
		if err := o.removeVPNUser(ctx, exec, accountID, u); err != nil {
			return err
		}
	}
	s := sequence{
		remove(junos.IKEPolicy, o.ikePolicy(accountID)),
		remove(junos.AddressPool, o.addressPool(accountID)),
	}
	return s.run(ctx, exec)
}
