// Package commands defines the crosspad CLI.
//
// Commands
//
//   - serve  Run the collaborative solving server
//   - check  Validate a puzzle JSON file without storing it
//
// # Implementation
//
// The root command loads .env and sets the log level before any subcommand
// runs. serve builds the SQLite-backed store, the optional Vertex AI vision
// client, and the HTTP server from environment variables.
package commands
