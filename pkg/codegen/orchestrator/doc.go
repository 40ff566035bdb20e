// Package orchestrator runs a generation request from start to finish.
//
// A run moves through fixed stages, each traced and timed:
//
//	resolve_compiler -> resolve_plugins -> resolve_imports -> resolve_sources
//	    -> (no sources: skipped_empty | failed_empty)
//	    -> probe_compiler -> compile -> (succeeded | compiler_failed)
//
// Import roots come from four categories, merged in order: import
// dependencies, import paths, source dependencies and project
// dependencies. Compilable files come from the source roots and the
// source dependencies.
//
// Resolution and I/O problems are returned as errors. Outcomes of the
// compiler itself, including protoc --version failing, are reported in
// Result.Status so callers can tell them apart from broken configuration.
package orchestrator
