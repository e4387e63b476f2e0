// Package config loads and validates the OPC logger configuration.
//
// Configuration is read from a YAML file, then overridden by environment
// variables (OPCLOGGER_* pattern), then validated. Defaults mirror the
// Prosys Simulation Server setup the logger was originally written against,
// so the binary runs out of the box with no config file at all.
package config
