// Package cli provides the protogen command-line interface.
//
// # Commands
//
// generate: Run protoc for a request file
//
//	protogen generate -f protogen.yaml
//	protogen generate -f protogen.yaml --watch
//	protogen generate --language java --output build/gen --keep-scratch
//
// plugins: Resolve the request's plugins and print where they ended up
//
//	protogen plugins -f protogen.yaml --json
//
// languages: List the languages protoc can generate without plugins
//
//	protogen languages
//
// version: Print the protogen version, and optionally the protoc version
//
//	protogen version --protoc --protoc-version 25.1
//
// Process settings come from PROTOGEN_* environment variables, see
// pkg/config. --log-level and --log-format override the environment.
package cli
