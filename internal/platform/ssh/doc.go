// Package ssh carries junoscript over an SSH exec channel.
//
// The appliance's SSH server starts the junoscript RPC shell when the client
// runs the "junoscript" command. The returned stream behaves exactly like the
// clear-text TCP transport, so the junos session layer is unaware of which
// one it runs over.
package ssh
