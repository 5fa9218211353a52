package wizard

import "errors"

// Validation errors for the interactive wizard.
var (
	errAddressRequired   = errors.New("appliance address is required")
	errAddressInvalid    = errors.New("appliance address must be an IP address or hostname")
	errUsernameRequired  = errors.New("username is required")
	errPortInvalid       = errors.New("port must be a number between 1 and 65535")
	errInterfaceRequired = errors.New("interface name is required")
	errInterfaceInvalid  = errors.New("interface must look like ge-0/0/0 or ge-0/0/0.0")
	errZoneRequired      = errors.New("zone name is required")
	errZoneInvalid       = errors.New("zone name must be alphanumeric with hyphens or underscores")
	errBucketRequired    = errors.New("bucket name is required")
	errDNSServerInvalid  = errors.New("DNS server must be an IP address")
	errDurationInvalid   = errors.New("invalid duration (expected e.g. 30s, 5m)")
)
