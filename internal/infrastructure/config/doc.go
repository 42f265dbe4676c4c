// Package config handles loading and validating lumend configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// The devices.models list is the hardware catalogue: every model the
// daemon can drive is described there (identifiers, DPI ceiling, poll
// rates, driver-mode requirement, images).
//
// Security Considerations:
//   - Sensitive values (passwords, tokens) should be set via environment variables
//   - The config file should have restricted permissions (0600)
//   - The API refuses to start without a JWT secret of at least 32 characters
//
// Usage:
//
//	cfg, err := config.Load("/etc/lumend/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Daemon.Name)
package config
