// Package config defines the driver configuration: how to reach the appliance,
// which interfaces and zones guest traffic crosses, the rule-set and filter
// names objects are created under, and the retry and timeout policy.
//
// Configuration is read from a YAML file ([LoadFile]); credentials and
// timeouts can be overridden from SRXGATE_* environment variables so that
// secrets need not live in the file.
package config
