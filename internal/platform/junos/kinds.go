package junos

import (
	"text/template"

	"github.com/imamik/srxgate/internal/util/naming"
)

// Kind describes one appliance object type. Every kind is identified by its
// "name" field: the object exists when the identity query returns a <name>
// element carrying that value.
type Kind struct {
	// Name labels the kind in errors and logs.
	Name string

	// get selects exactly the object. Rendered with the delete attribute it
	// is also the delete request.
	get *template.Template
	// add is the full object. Nil means get.
	add *template.Template
	// list selects every object of the kind in one container.
	list *template.Template
	// match accepts listed names that belong to the kind.
	match func(name string) bool

	// usage queries the dependent objects; the object is in use when the
	// reply mentions the value of the usageToken field, or when referenced
	// accepts the reply if set.
	usage      *template.Template
	usageToken string
	referenced func(resp string, f Fields) bool

	// defaults fill optional fields.
	defaults Fields
}

// HasUsageQuery reports whether deletes of this kind are guarded.
func (k *Kind) HasUsageQuery() bool {
	return k.usage != nil
}

// Listable reports whether List can enumerate this kind.
func (k *Kind) Listable() bool {
	return k.list != nil
}

func (k *Kind) fields(f Fields) Fields {
	if len(k.defaults) == 0 {
		return f
	}
	return k.defaults.Merge(f)
}

// natReferences selects every NAT object that can mention a public address.
const natReferences = `<security><nat><source><pool/></source><static/><destination/></nat></security>`

// ProxyARP advertises a public address on the public interface.
// Fields: interface, name (address/32).
var ProxyARP = &Kind{
	Name: "proxy-arp",
	get: parseTemplate("proxy-arp",
		`<security><nat><proxy-arp><interface><name>{{.interface}}</name>`+
			`<address{{.delete}}><name>{{.name}}</name></address>`+
			`</interface></proxy-arp></nat></security>`),
	usage:      parseTemplate("proxy-arp-usage", natReferences),
	usageToken: "name",
}

// SourceNATPool is the translation target of a source NAT rule.
// Fields: name, address (address/32).
var SourceNATPool = &Kind{
	Name: "source-nat-pool",
	get: parseTemplate("source-nat-pool",
		`<security><nat><source><pool{{.delete}}><name>{{.name}}</name></pool></source></nat></security>`),
	add: parseTemplate("source-nat-pool-add",
		`<security><nat><source><pool><name>{{.name}}</name>`+
			`<address><name>{{.address}}</name></address>`+
			`</pool></source></nat></security>`),
	usage:      parseTemplate("source-nat-pool-usage", `<security><nat><source><rule-set/></source></nat></security>`),
	usageToken: "name",
}

// SourceNATRule translates a guest subnet to a source pool.
// Fields: ruleSet, fromZone, toZone, name, subnet, pool.
var SourceNATRule = &Kind{
	Name: "source-nat-rule",
	get: parseTemplate("source-nat-rule",
		`<security><nat><source><rule-set><name>{{.ruleSet}}</name>`+
			`<rule{{.delete}}><name>{{.name}}</name></rule>`+
			`</rule-set></source></nat></security>`),
	add: parseTemplate("source-nat-rule-add",
		`<security><nat><source><rule-set><name>{{.ruleSet}}</name>`+
			`<from><zone>{{.fromZone}}</zone></from><to><zone>{{.toZone}}</zone></to>`+
			`<rule><name>{{.name}}</name>`+
			`<src-nat-rule-match><source-address>{{.subnet}}</source-address></src-nat-rule-match>`+
			`<then><source-nat><pool><pool-name>{{.pool}}</pool-name></pool></source-nat></then>`+
			`</rule></rule-set></source></nat></security>`),
}

// StaticNATRule maps a public address one-to-one onto a private address.
// Fields: ruleSet, fromZone, name, publicAddress, privateAddress (both /32).
var StaticNATRule = &Kind{
	Name: "static-nat-rule",
	get: parseTemplate("static-nat-rule",
		`<security><nat><static><rule-set><name>{{.ruleSet}}</name>`+
			`<rule{{.delete}}><name>{{.name}}</name></rule>`+
			`</rule-set></static></nat></security>`),
	add: parseTemplate("static-nat-rule-add",
		`<security><nat><static><rule-set><name>{{.ruleSet}}</name>`+
			`<from><zone>{{.fromZone}}</zone></from>`+
			`<rule><name>{{.name}}</name>`+
			`<static-nat-rule-match><destination-address>{{.publicAddress}}</destination-address></static-nat-rule-match>`+
			`<then><static-nat><prefix><addr-prefix>{{.privateAddress}}</addr-prefix></prefix></static-nat></then>`+
			`</rule></rule-set></static></nat></security>`),
	list: parseTemplate("static-nat-rule-list",
		`<security><nat><static><rule-set><name>{{.ruleSet}}</name><rule/></rule-set></static></nat></security>`),
	match: func(name string) bool {
		_, _, err := naming.ParseStaticNATRule(name)
		return err == nil
	},
}

// DestinationNATPool is the private address and port a forwarded range lands on.
// Fields: name, address (/32), port.
var DestinationNATPool = &Kind{
	Name: "destination-nat-pool",
	get: parseTemplate("destination-nat-pool",
		`<security><nat><destination><pool{{.delete}}><name>{{.name}}</name></pool></destination></nat></security>`),
	add: parseTemplate("destination-nat-pool-add",
		`<security><nat><destination><pool><name>{{.name}}</name>`+
			`<address><ipaddr>{{.address}}</ipaddr><port>{{.port}}</port></address>`+
			`</pool></destination></nat></security>`),
	list: parseTemplate("destination-nat-pool-list",
		`<security><nat><destination><pool/></destination></nat></security>`),
	match: func(name string) bool {
		_, _, err := naming.ParseDestinationNATPool(name)
		return err == nil
	},
	usage:      parseTemplate("destination-nat-pool-usage", `<security><nat><destination><rule-set/></destination></nat></security>`),
	usageToken: "name",
}

// DestinationNATRule forwards a public port range to a destination pool.
// Fields: ruleSet, fromZone, name, publicAddress (/32), startPort, endPort, pool.
var DestinationNATRule = &Kind{
	Name: "destination-nat-rule",
	get: parseTemplate("destination-nat-rule",
		`<security><nat><destination><rule-set><name>{{.ruleSet}}</name>`+
			`<rule{{.delete}}><name>{{.name}}</name></rule>`+
			`</rule-set></destination></nat></security>`),
	add: parseTemplate("destination-nat-rule-add",
		`<security><nat><destination><rule-set><name>{{.ruleSet}}</name>`+
			`<from><zone>{{.fromZone}}</zone></from>`+
			`<rule><name>{{.name}}</name>`+
			`<dest-nat-rule-match><destination-address><dst-addr>{{.publicAddress}}</dst-addr></destination-address>`+
			`<destination-port><low>{{.startPort}}</low><high>{{.endPort}}</high></destination-port></dest-nat-rule-match>`+
			`<then><destination-nat><pool><pool-name>{{.pool}}</pool-name></pool></destination-nat></then>`+
			`</rule></rule-set></destination></nat></security>`),
	list: parseTemplate("destination-nat-rule-list",
		`<security><nat><destination><rule-set><name>{{.ruleSet}}</name><rule/></rule-set></destination></nat></security>`),
	match: func(name string) bool {
		_, err := naming.ParseDestinationNATRule(name)
		return err == nil
	},
}

// policyReferences selects every security policy.
const policyReferences = `<security><policies/></security>`

// AddressBookEntry is a named prefix in a zone address book.
// Fields: zone, name, prefix.
var AddressBookEntry = &Kind{
	Name: "address-book-entry",
	get: parseTemplate("address-book-entry",
		`<security><zones><security-zone><name>{{.zone}}</name>`+
			`<address-book><address{{.delete}}><name>{{.name}}</name></address></address-book>`+
			`</security-zone></zones></security>`),
	add: parseTemplate("address-book-entry-add",
		`<security><zones><security-zone><name>{{.zone}}</name>`+
			`<address-book><address><name>{{.name}}</name><ip-prefix>{{.prefix}}</ip-prefix></address></address-book>`+
			`</security-zone></zones></security>`),
	usage: parseTemplate("address-book-entry-usage",
		`<security><policies>`+
			`<policy><from-zone-name>{{.zone}}</from-zone-name></policy>`+
			`<policy><to-zone-name>{{.zone}}</to-zone-name></policy>`+
			`</policies></security>`),
	usageToken: "name",
	referenced: func(resp string, f Fields) bool {
		return zoneAddressReferenced(resp, f.Text("zone"), f.Text("name"))
	},
}

// Application matches a protocol and destination port range, or an ICMP
// type and code.
// Fields: name, protocol, ports ("22-22"); optional icmpType, icmpCode.
var Application = &Kind{
	Name: "application",
	get: parseTemplate("application",
		`<applications><application{{.delete}}><name>{{.name}}</name></application></applications>`),
	add: parseTemplate("application-add",
		`<applications><application><name>{{.name}}</name><protocol>{{.protocol}}</protocol>`+
			`{{if .ports}}<destination-port>{{.ports}}</destination-port>{{end}}`+
			`{{if .icmpType}}<icmp-type>{{.icmpType}}</icmp-type>{{end}}`+
			`{{if .icmpCode}}<icmp-code>{{.icmpCode}}</icmp-code>{{end}}`+
			`</application></applications>`),
	usage:      parseTemplate("application-usage", policyReferences),
	usageToken: "name",
	defaults:   Fields{"ports": "", "icmpType": "", "icmpCode": ""},
}

// SecurityPolicy admits or denies traffic between two zones. A non-empty
// tunnel permits through that IPsec VPN.
// Fields: fromZone, toZone, name, sources, destinations, applications
// ([]string), action ("permit" or "deny"); optional tunnel.
var SecurityPolicy = &Kind{
	Name: "security-policy",
	get: parseTemplate("security-policy",
		`<security><policies><policy>`+
			`<from-zone-name>{{.fromZone}}</from-zone-name><to-zone-name>{{.toZone}}</to-zone-name>`+
			`<policy{{.delete}}><name>{{.name}}</name></policy>`+
			`</policy></policies></security>`),
	add: parseTemplate("security-policy-add",
		`<security><policies><policy>`+
			`<from-zone-name>{{.fromZone}}</from-zone-name><to-zone-name>{{.toZone}}</to-zone-name>`+
			`<policy><name>{{.name}}</name><match>`+
			`{{range .sources}}<source-address>{{.}}</source-address>{{end}}`+
			`{{range .destinations}}<destination-address>{{.}}</destination-address>{{end}}`+
			`{{range .applications}}<application>{{.}}</application>{{end}}`+
			`</match><then>`+
			`{{if .tunnel}}<permit><tunnel><ipsec-vpn>{{.tunnel}}</ipsec-vpn></tunnel></permit>{{else}}<{{.action}}/>{{end}}`+
			`</then></policy></policy></policies></security>`),
	defaults: Fields{"tunnel": "", "action": "permit"},
}

// UsageTermIP counts traffic to or from one public address.
// Fields: filter, name, match ("destination-address" or "source-address"),
// address (/32).
var UsageTermIP = &Kind{
	Name: "usage-term",
	get: parseTemplate("usage-term",
		`<firewall><family><inet><filter><name>{{.filter}}</name>`+
			`<term{{.delete}}><name>{{.name}}</name></term>`+
			`</filter></inet></family></firewall>`),
	add: parseTemplate("usage-term-add",
		`<firewall><family><inet><filter><name>{{.filter}}</name>`+
			`<term><name>{{.name}}</name>`+
			`<from><{{.match}}><name>{{.address}}</name></{{.match}}></from>`+
			`<then><count>{{.name}}</count><accept/></then>`+
			`</term></filter></inet></family></firewall>`),
	usage:      parseTemplate("usage-term-usage", natReferences),
	usageToken: "address",
}

// UsageTermVLAN counts traffic crossing one guest VLAN unit.
// Fields: filter, name, interface (logical).
var UsageTermVLAN = &Kind{
	Name: "usage-term-vlan",
	get:  UsageTermIP.get,
	add: parseTemplate("usage-term-vlan-add",
		`<firewall><family><inet><filter><name>{{.filter}}</name>`+
			`<term><name>{{.name}}</name>`+
			`<from><interface>{{.interface}}</interface></from>`+
			`<then><count>{{.name}}</count><accept/></then>`+
			`</term></filter></inet></family></firewall>`),
}

// PrivateInterface is the VLAN unit on the guest trunk holding the gateway.
// Fields: interface (physical), name (VLAN tag), address (gateway/len).
var PrivateInterface = &Kind{
	Name: "private-interface",
	get: parseTemplate("private-interface",
		`<interfaces><interface><name>{{.interface}}</name>`+
			`<unit{{.delete}}><name>{{.name}}</name></unit>`+
			`</interface></interfaces>`),
	add: parseTemplate("private-interface-add",
		`<interfaces><interface><name>{{.interface}}</name>`+
			`<unit><name>{{.name}}</name><vlan-id>{{.name}}</vlan-id>`+
			`<family><inet><address><name>{{.address}}</name></address></inet></family>`+
			`</unit></interface></interfaces>`),
}

// ZoneInterface places a logical interface in a security zone.
// Fields: zone, name (logical interface).
var ZoneInterface = &Kind{
	Name: "zone-interface",
	get: parseTemplate("zone-interface",
		`<security><zones><security-zone><name>{{.zone}}</name>`+
			`<interfaces{{.delete}}><name>{{.name}}</name></interfaces>`+
			`</security-zone></zones></security>`),
	add: parseTemplate("zone-interface-add",
		`<security><zones><security-zone><name>{{.zone}}</name>`+
			`<interfaces><name>{{.name}}</name>`+
			`<host-inbound-traffic><system-services><name>ping</name></system-services></host-inbound-traffic>`+
			`</interfaces></security-zone></zones></security>`),
}

// IKEPolicy is the account-wide phase 1 policy.
// Fields: name, psk.
var IKEPolicy = &Kind{
	Name: "ike-policy",
	get: parseTemplate("ike-policy",
		`<security><ike><policy{{.delete}}><name>{{.name}}</name></policy></ike></security>`),
	add: parseTemplate("ike-policy-add",
		`<security><ike><policy><name>{{.name}}</name><mode>aggressive</mode>`+
			`<proposal-set>standard</proposal-set>`+
			`<pre-shared-key><ascii-text>{{.psk}}</ascii-text></pre-shared-key>`+
			`</policy></ike></security>`),
	usage:      parseTemplate("ike-policy-usage", `<security><ike><gateway/></ike></security>`),
	usageToken: "name",
}

// IKEGateway is the per-user dynamic IKE peer.
// Fields: name, policy, user, interface, profile.
var IKEGateway = &Kind{
	Name: "ike-gateway",
	get: parseTemplate("ike-gateway",
		`<security><ike><gateway{{.delete}}><name>{{.name}}</name></gateway></ike></security>`),
	add: parseTemplate("ike-gateway-add",
		`<security><ike><gateway><name>{{.name}}</name><ike-policy>{{.policy}}</ike-policy>`+
			`<dynamic><hostname>{{.user}}</hostname><ike-user-type>shared-ike-id</ike-user-type></dynamic>`+
			`<external-interface>{{.interface}}</external-interface>`+
			`<xauth><access-profile>{{.profile}}</access-profile></xauth>`+
			`</gateway></ike></security>`),
	list: parseTemplate("ike-gateway-list", `<security><ike><gateway/></ike></security>`),
	match: func(name string) bool {
		_, _, err := naming.ParseIKEGateway(name)
		return err == nil
	},
}

// IPsecVPN is the per-user phase 2 tunnel.
// Fields: name, gateway.
var IPsecVPN = &Kind{
	Name: "ipsec-vpn",
	get: parseTemplate("ipsec-vpn",
		`<security><ipsec><vpn{{.delete}}><name>{{.name}}</name></vpn></ipsec></security>`),
	add: parseTemplate("ipsec-vpn-add",
		`<security><ipsec><vpn><name>{{.name}}</name>`+
			`<ike><gateway>{{.gateway}}</gateway><ipsec-policy>standard</ipsec-policy></ike>`+
			`</vpn></ipsec></security>`),
}

// DynamicVPNClient binds a user to a tunnel and the resources behind it.
// Fields: name, resource (guest CIDR), vpn, user.
var DynamicVPNClient = &Kind{
	Name: "dynamic-vpn-client",
	get: parseTemplate("dynamic-vpn-client",
		`<security><dynamic-vpn><clients{{.delete}}><name>{{.name}}</name></clients></dynamic-vpn></security>`),
	add: parseTemplate("dynamic-vpn-client-add",
		`<security><dynamic-vpn><clients><name>{{.name}}</name>`+
			`<remote-protected-resources><name>{{.resource}}</name></remote-protected-resources>`+
			`<ipsec-vpn>{{.vpn}}</ipsec-vpn><user><name>{{.user}}</name></user>`+
			`</clients></dynamic-vpn></security>`),
}

// AccessProfile holds a user's XAUTH credentials.
// Fields: name, user, password, pool.
var AccessProfile = &Kind{
	Name: "access-profile",
	get: parseTemplate("access-profile",
		`<access><profile{{.delete}}><name>{{.name}}</name></profile></access>`),
	add: parseTemplate("access-profile-add",
		`<access><profile><name>{{.name}}</name>`+
			`<client><name>{{.user}}</name><firewall-user><password>{{.password}}</password></firewall-user></client>`+
			`<address-assignment><pool>{{.pool}}</pool></address-assignment>`+
			`</profile></access>`),
}

// AddressPool hands out client addresses for an account's VPN users.
// Fields: name, network, low, high, dns.
var AddressPool = &Kind{
	Name: "address-pool",
	get: parseTemplate("address-pool",
		`<access><address-assignment><pool{{.delete}}><name>{{.name}}</name></pool></address-assignment></access>`),
	add: parseTemplate("address-pool-add",
		`<access><address-assignment><pool><name>{{.name}}</name>`+
			`<family><inet><network>{{.network}}</network>`+
			`<range><name>{{.name}}-range</name><low>{{.low}}</low><high>{{.high}}</high></range>`+
			`<xauth-attributes><primary-dns>{{.dns}}</primary-dns></xauth-attributes>`+
			`</inet></family></pool></address-assignment></access>`),
	usage:      parseTemplate("address-pool-usage", `<access><profile/></access>`),
	usageToken: "name",
}

// Kinds lists every object kind.
var Kinds = []*Kind{
	ProxyARP, SourceNATPool, SourceNATRule, StaticNATRule,
	DestinationNATPool, DestinationNATRule, AddressBookEntry, Application,
	SecurityPolicy, UsageTermIP, UsageTermVLAN, PrivateInterface,
	ZoneInterface, IKEPolicy, IKEGateway, IPsecVPN, DynamicVPNClient,
	AccessProfile, AddressPool,
}
