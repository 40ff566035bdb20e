package repository

import (
	"path"
	"strings"

	"github.com/platinummonkey/protogen/pkg/codegen"
)

// extensions maps artifact types whose file extension differs from the type
var extensions = map[string]string{
	"test-jar":     "jar",
	"maven-plugin": "jar",
	"ejb":          "jar",
	"ejb-client":   "jar",
	"bundle":       "jar",
	"java-source":  "jar",
	"javadoc":      "jar",
}

// Extension returns the file extension for an artifact type
func Extension(artifactType string) string {
	if artifactType == "" {
		return "jar"
	}
	if ext, ok := extensions[artifactType]; ok {
		return ext
	}
	return artifactType
}

// ArtifactPath returns the slash separated path of c relative to the
// repository root:
//
//	com/google/protobuf/protoc/3.25.1/protoc-3.25.1-linux-x86_64.exe
func ArtifactPath(c codegen.Coordinate) string {
	name := c.ArtifactID + "-" + c.Version
	if c.Classifier != "" {
		name += "-" + c.Classifier
	}
	name += "." + Extension(c.Type)

	return path.Join(versionDir(c), name)
}

// POMPath returns the slash separated path of the POM describing c
func POMPath(c codegen.Coordinate) string {
	return path.Join(versionDir(c), c.ArtifactID+"-"+c.Version+".pom")
}

func versionDir(c codegen.Coordinate) string {
	return path.Join(strings.ReplaceAll(c.GroupID, ".", "/"), c.ArtifactID, c.Version)
}
