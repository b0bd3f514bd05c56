// Package config defines the typed configuration tree and its loader.
// Settings come from an optional config.yaml and MNEMO_-prefixed environment
// variables, with environment taking precedence; Load applies defaults,
// unmarshals, and validates before anything else starts, so a misconfigured
// process fails at boot rather than on first use.
package config
