// Package commands defines the labelscan CLI and wires dependencies for subcommands.
//
// Commands
//
//   - extract   Upload one PDF, print the tables, optionally export or query them
//   - shell     Interactive session: open, submit, show, export, query, history
//   - schema    Print the JSON Schema of an exported result
//   - mcp       Serve extract, query, export and history as MCP tools over stdio
//
// # Implementation
//
// The root command loads configuration from the environment, sets up logging
// and builds the app context (service client, validator, attempt history)
// before any subcommand runs. Each command drives its own workflow machine.
package commands
