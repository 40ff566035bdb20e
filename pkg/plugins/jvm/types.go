package jvm

import "github.com/platinummonkey/protogen/pkg/codegen"

// Scopes are the dependency scopes followed when collecting a plugin classpath
var Scopes = []string{codegen.ScopeCompile, codegen.ScopeRuntime, codegen.ScopeSystem}

// Startup flags for short-lived JVM processes
var tuningFlags = []string{
	"-Xshare:auto",
	"-XX:+TieredCompilation",
	"-XX:TieredStopAtLevel=1",
}

// Plugin is a protoc plugin packaged as a JVM artifact
type Plugin struct {
	// ID names the plugin's scratch directory and must be unique per run
	ID         string
	Coordinate codegen.Coordinate
	// MainClass overrides the Main-Class manifest attribute
	MainClass string
	Options   []string
	Order     int
}

const (
	argFileName     = "args.txt"
	posixLauncher   = "invoke.sh"
	windowsLauncher = "invoke.bat"
)
