// Package config handles loading and validating homecontrol configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields and node declarations
//   - Default value handling
//
// Node declarations keep their free-form config block as a yaml.Node; the
// smarthome catalogue decodes it onto the node type's typed configuration.
//
// Security Considerations:
//   - Sensitive values (passwords, tokens) should be set via environment variables
//   - The JWT secret is required whenever the HTTP API is enabled
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, n := range cfg.Device.Nodes {
//	    fmt.Println(n.NodeID(), n.Type)
//	}
package config
