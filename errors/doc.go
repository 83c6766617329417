// Package errors provides the structured error types returned by swiftkit.
// Every failure carries a machine-readable code so callers can branch with
// errors.Is against the exported sentinels, and response failures also carry
// the HTTP status returned by the server.
package errors
