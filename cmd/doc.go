// Package cmd implements the dtodo command line interface.
//
// The package is organized into several subpackages:
//
//   - serve: Starts the todo HTTP API
//   - store: Starts a store node the API can use as remote store
//   - todo: Client commands for the API (list, get, create, update, delete, seed, random, perf)
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See dtodo -help for a list of all commands.
package cmd
