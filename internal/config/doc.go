// Package config defines the application configuration structure and
// handles loading it from a config file and environment variables.
package config
