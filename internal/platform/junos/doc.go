// Package junos speaks the junoscript XML RPC protocol to an SRX-class
// firewall appliance.
//
// The package is layered:
//
//   - [Session] owns one persistent connection, frames requests and reads
//     replies until the terminal </rpc-reply> marker or the read timeout.
//   - [Client] is the RPC envelope on top of a session: login, then
//     open-configuration, load/get, and commit or rollback of the private
//     candidate configuration.
//   - [Kind] describes one appliance object type as request templates plus an
//     optional usage query. [EnsureOperation] and [DeleteOperation] run the
//     generic exists / in-use / add / delete algorithm over any kind.
//
// The package keeps no copy of appliance state. Every existence and usage
// check is a live query against the candidate configuration.
package junos
