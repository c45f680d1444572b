// Package config handles loading and validating Rover Core configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables (ROVERCORE_* prefix)
//   - Validation of required fields
//   - Default value handling
//
// Sensitive values (broker credentials, tokens) should be supplied via
// environment variables rather than committed YAML files.
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.API.Port)
package config
