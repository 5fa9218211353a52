// Package appliance is an in-process fake of a junoscript firewall for tests.
//
// The fake keeps the committed configuration as an XML tree and gives every
// connection its own private candidate. It implements the subset of the RPC
// protocol the driver uses (login, open/close/commit configuration, merge
// loads with delete attributes, filtered get-configuration, firewall counter
// queries) over TCP or an SSH exec channel, records every request, and can
// inject faults: rejected operations, dropped connections, silent replies and
// "not authenticated" replies.
//
//	srv := appliance.New(appliance.WithCredentials("admin", "secret"))
//	addr, err := srv.Listen("127.0.0.1:0")
//	defer srv.Close()
package appliance
