package config

import (
	"os"
	"strconv"
	"time"
)

// Environment variables consulted by ApplyEnv.
//
//   - SRXGATE_APPLIANCE_ADDRESS
//   - SRXGATE_APPLIANCE_USERNAME
//   - SRXGATE_APPLIANCE_PASSWORD
//   - SRXGATE_RETRY_MAX_RETRIES
//   - SRXGATE_TIMEOUT_DIAL (e.g. 10s)
//   - SRXGATE_TIMEOUT_READ (e.g. 30s)
//   - SRXGATE_ARCHIVE_ACCESS_KEY
//   - SRXGATE_ARCHIVE_SECRET_KEY
const (
	EnvApplianceAddress  = "SRXGATE_APPLIANCE_ADDRESS"
	EnvApplianceUsername = "SRXGATE_APPLIANCE_USERNAME"
	EnvAppliancePassword = "SRXGATE_APPLIANCE_PASSWORD"
	EnvRetryMaxRetries   = "SRXGATE_RETRY_MAX_RETRIES"
	EnvTimeoutDial       = "SRXGATE_TIMEOUT_DIAL"
	EnvTimeoutRead       = "SRXGATE_TIMEOUT_READ"
	EnvArchiveAccessKey  = "SRXGATE_ARCHIVE_ACCESS_KEY"
	EnvArchiveSecretKey  = "SRXGATE_ARCHIVE_SECRET_KEY"
)

// ApplyEnv overrides fields from the environment. Unset or unparsable
// variables leave the current value untouched.
func (c *Config) ApplyEnv() {
	c.Appliance.Address = parseString(EnvApplianceAddress, c.Appliance.Address)
	c.Appliance.Username = parseString(EnvApplianceUsername, c.Appliance.Username)
	c.Appliance.Password = parseString(EnvAppliancePassword, c.Appliance.Password)
	c.Usage.Archive.AccessKey = parseString(EnvArchiveAccessKey, c.Usage.Archive.AccessKey)
	c.Usage.Archive.SecretKey = parseString(EnvArchiveSecretKey, c.Usage.Archive.SecretKey)
	c.Timeouts.Dial = parseDuration(EnvTimeoutDial, c.Timeouts.Dial)
	c.Timeouts.Read = parseDuration(EnvTimeoutRead, c.Timeouts.Read)

	if val := os.Getenv(EnvRetryMaxRetries); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.Retry.MaxRetries = &n
		}
	}
}

func parseString(envVar, current string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return current
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the current value is returned.
func parseDuration(envVar string, current time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return current
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return current
	}

	return d
}
