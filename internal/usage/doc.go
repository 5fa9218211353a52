// Package usage collects per-address and per-VLAN traffic totals from the
// appliance's counting filter terms.
//
// Polls run on their own session and only read, so they never contend with
// configuration changes on the primary session.
package usage
