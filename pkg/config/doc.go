// Package config loads process settings and generation requests.
//
// Process settings come from PROTOGEN_* environment variables:
//
//	PROTOGEN_LOG_LEVEL="info"           # trace, debug, info, warn, error
//	PROTOGEN_LOG_FORMAT="text"          # text, json
//	PROTOGEN_SCRATCH_DIR=""             # OS temp dir when empty
//	PROTOGEN_KEEP_SCRATCH="false"
//	PROTOGEN_LOCAL_REPOSITORY="~/.m2/repository"
//	PROTOGEN_REMOTE_REPOSITORY=""
//	PROTOGEN_JAVA_HOME=""               # falls back to JAVA_HOME
//	PROTOGEN_EXECUTOR="local"           # local, docker
//	PROTOGEN_DOCKER_IMAGE=""            # required for docker
//	PROTOGEN_PLUGIN_WORKERS="4"
//	PROTOGEN_METRICS_FILE=""
//	PROTOGEN_OTEL_ENABLED="false"
//	PROTOGEN_OTEL_ENDPOINT="localhost:4317"
//
// A generation request is a YAML file, protogen.yaml by default:
//
//	sourceRoots: [src/main/protobuf]
//	importDependencies:
//	  - com.google.protobuf:protobuf-java:3.25.1
//	languages: [java, kotlin]
//	outputDirectory: build/generated/protobuf
//	plugins:
//	  path:
//	    - name: protoc-gen-grpc-java
//	  jvm:
//	    - coordinate: {groupId: com.salesforce.servicelibs, artifactId: reactor-grpc, version: 1.2.4}
//
// Relative paths are resolved against the directory holding the file.
package config
