// Package protoc builds protoc command lines and locates the compiler.
//
// # Invocation Layout
//
// Builder emits tokens in a fixed order so the same inputs always give the
// same command:
//
//	protoc
//	  --fatal_warnings                  (optional)
//	  --java_out=[lite:]out ...         (built-in languages, fixed order)
//	  -Iproto ...                       (distinct import roots)
//	  --plugin=protoc-gen-<id>=<path>   (plugins sorted by Order)
//	  --<id>_out=out
//	  --<id>_opt=<option> ...
//	  proto/a.proto ...                 (distinct sources, always last)
//
// # Compiler Resolution
//
// Resolver accepts an empty version or PATH for a PATH lookup, an existing
// file, or a release version that is fetched as
// com.google.protobuf:protoc:<version>:exe:<platform>.
package protoc
