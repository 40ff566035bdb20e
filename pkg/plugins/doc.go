// Package plugins resolves protoc plugin descriptors into executables.
//
// # Plugin Kinds
//
// A Descriptor is one of four kinds:
//
//	coordinate  native binary from the artifact repository, e.g.
//	            io.grpc:protoc-gen-grpc-java:1.60.0 (type exe, host classifier)
//	path        native binary given by path or looked up on PATH by name
//	url         native binary downloaded with go-getter
//	jvm         JVM artifact wrapped in a launcher by package jvm
//
// Catalog.Resolve handles the kinds in that fixed order. Descriptors with
// Skip set are omitted. Every other plugin must resolve or the call fails
// with a codegen.ResolutionError.
//
// # Identity
//
// Each descriptor is identified by the SHA-256 of its canonical JSON
// encoding. The id names the plugin to protoc (protoc-gen-<id>) and its
// scratch directory, so equal descriptors are resolved once per run.
//
// # Usage Example
//
//	catalog := plugins.NewCatalog(plugins.Config{
//		Resolver: resolver,
//		Space:    space,
//		Log:      log,
//	})
//	resolved, err := catalog.Resolve(ctx, plugins.Descriptors{
//		Path: []plugins.Descriptor{{Name: "protoc-gen-go"}},
//	})
package plugins
