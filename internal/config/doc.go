// Package config loads the chat-bridge YAML configuration. ${VAR} patterns
// anywhere in the file are expanded from the environment before parsing,
// which keeps secrets like the JWT signing key and backend account key out
// of the file itself.
package config
