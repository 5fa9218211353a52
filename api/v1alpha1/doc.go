// Package v1alpha1 contains the command interface consumed by the appliance
// driver: a tagged union of desired-state commands and the uniform Answer
// returned for each of them.
//
// Commands are JSON documents; YAML input is accepted through DecodeCommands.
package v1alpha1
