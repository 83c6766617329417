// Package logger provides structured logging for swiftkit using zerolog.
//
// Every swiftkit component takes a *Logger and tags it with its component
// name. Credentials (tokens, passwords, keys) are never passed as fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.NewDefault("swiftkit").WithComponent("auth")
//	log.Info("authenticated", logger.Fields("auth_version", 3))
package logger
