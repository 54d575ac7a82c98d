// Package config handles configuration loading, parsing, and validation
// from environment variables, an optional config file and an optional .env
// file. Environment variables take precedence over the file.
package config
