// Package jvm wraps protoc plugins distributed as JVM artifacts so protoc
// can run them like native executables.
//
// For each plugin the Builder resolves the artifact with its compile,
// runtime and system scoped dependencies, determines the main class, and
// writes two files into the plugin's scratch directory:
//
//	plugins/jvm/<id>/args.txt    java arguments, one per line
//	plugins/jvm/<id>/invoke.sh   #!/bin/sh launcher running java @args.txt
//
// On Windows the launcher is invoke.bat and both files are ISO-8859-1
// encoded, which is what the Windows java launcher expects of argument
// files. Launchers always run java with an explicit -classpath and main
// class rather than -jar, since -jar ignores the classpath.
//
// The main class comes from the plugin configuration, or else from the
// Main-Class attribute of the jar manifest. There is no further guessing.
package jvm
