// Package config loads and validates YAML configuration for the
// log streaming tools.
//
// Configuration files support ${VAR} environment variable expansion,
// so secrets like API keys can stay out of the file itself.
package config
