// Package driver executes upstream commands against the appliance.
//
// Every mutating command runs inside one candidate-configuration transaction
// on the primary session, under a per-driver lock. A failed attempt is rolled
// back, the session is re-established and the whole command is run again
// from the start, up to the configured number of retries.
package driver
