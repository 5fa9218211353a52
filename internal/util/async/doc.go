// Package async runs independent checks concurrently and collects every
// outcome in input order.
package async
