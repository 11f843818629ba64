// Package commands defines the sealink CLI and wires dependencies for subcommands.
//
// Commands
//
//   - keygen         Create or rotate the local identity
//   - fingerprint    Print the identity fingerprint
//   - serve          Run an echo server accepting secure channels
//   - connect        Open a secure channel and relay stdin lines
//
// # Implementation
//
// The root command builds a dependency graph (keystore, logger, metrics,
// key-agreement suite) before any subcommand runs, so handlers share one
// app context.
package commands
