// Package codegen holds the data model shared by the protoc generation
// pipeline.
//
// # Overview
//
// A generation run turns .proto sources into generated code by invoking
// protoc with an argument set assembled from several inputs: import roots,
// compilable sources and resolved plugins. This package defines the values
// those inputs are expressed in and the errors every stage reports.
//
// # Architecture
//
// The pipeline is split into small packages, leaves first:
//
//  1. Sources (pkg/codegen/sources): lists .proto files beneath roots and archives
//  2. Plugins (pkg/plugins): resolves plugin descriptors into executables
//  3. JVM launchers (pkg/plugins/jvm): wraps JVM plugins in shell or batch launchers
//  4. Protoc (pkg/codegen/protoc): builds the compiler invocation and finds protoc
//  5. Orchestrator (pkg/codegen/orchestrator): sequences a run and reports its status
//
// Invocations are executed on the host (pkg/codegen/execute) or in a
// container (pkg/codegen/docker). Run-scoped files live in a scratch space
// (pkg/codegen/scratch).
//
// # Coordinates
//
// Artifacts are addressed by Maven-style coordinates:
//
//	com.google.protobuf:protoc:25.1:exe:linux-x86_64
//	group      : artifact : version : type : classifier
//
// Type defaults to jar. An ArtifactResolver maps coordinates to local
// files; pkg/repository provides one over a Maven-layout repository.
//
// # Languages
//
// Languages lists the generators built into protoc in the order their
// output flags are emitted: cpp, csharp, kotlin, java, objc, php, pyi,
// python, ruby and rust.
//
// # Errors
//
// Two error types cover input problems:
//
//   - ConfigurationError: input that can never work. Matches ErrConfiguration.
//   - ResolutionError: something that could not be located. Wraps the cause
//     and matches ErrResolution.
//
// A compiler that runs and rejects its input is not an error; the
// orchestrator reports it in the run's status.
package codegen
