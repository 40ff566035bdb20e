// Package sources discovers .proto files for the compiler.
//
// A Catalog turns a list of roots into ProtoFileListings. Roots may be
// directories or .zip, .jar and .tar.gz archives; archives are unpacked
// into the run scratch space first and only their .proto entries are kept.
// Roots that do not exist are skipped, so optional import paths can be
// listed unconditionally.
//
// Merge combines listings from several provenances while keeping the
// caller's order:
//
//	imports := sources.Merge(importDeps, importPaths, sourceDeps, projectDeps)
package sources
