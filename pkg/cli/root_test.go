package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/platinummonkey/protogen/pkg/codegen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	protocOK = `#!/bin/sh
case "$1" in
  --version) echo "libprotoc 99.0" ;;
esac
exit 0
`
	protocRejects = `#!/bin/sh
case "$1" in
  --version) echo "libprotoc 99.0"; exit 0 ;;
esac
echo "a.proto:1:1: Expected top-level statement" >&2
exit 1
`
)

// testEnv isolates the process configuration and returns the scratch base
func testEnv(t *testing.T) string {
	t.Helper()
	scratchBase := t.TempDir()
	t.Setenv("PROTOGEN_LOCAL_REPOSITORY", t.TempDir())
	t.Setenv("PROTOGEN_SCRATCH_DIR", scratchBase)
	t.Setenv("PROTOGEN_EXECUTOR", "")
	t.Setenv("PROTOGEN_LOG_LEVEL", "")
	t.Setenv("PROTOGEN_METRICS_FILE", "")
	t.Setenv("PROTOGEN_OTEL_ENABLED", "")
	return scratchBase
}

// fakeTools puts executables with the given scripts first on PATH
func fakeTools(t *testing.T, scripts map[string]string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts need a POSIX host")
	}
	bin := t.TempDir()
	for name, script := range scripts {
		require.NoError(t, os.WriteFile(filepath.Join(bin, name), []byte(script), 0o755))
	}
	t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))
	return bin
}

// project writes a request file and proto sources and returns the request path
func project(t *testing.T, request string, protos ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, p := range protos {
		path := filepath.Join(dir, "proto", p)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(`syntax = "proto3";`), 0o644))
	}
	file := filepath.Join(dir, "protogen.yaml")
	require.NoError(t, os.WriteFile(file, []byte(request), 0o644))
	return file
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand("1.2.3")
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRoot_Commands(t *testing.T) {
	cmd := NewRootCommand("dev")

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}

	for _, want := range []string{"generate", "plugins", "languages", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestRoot_InvalidLogLevel(t *testing.T) {
	testEnv(t)

	_, err := execute(t, "--log-level", "loud", "languages")

	assert.ErrorContains(t, err, "invalid log level")
}

func TestRoot_InvalidEnvironment(t *testing.T) {
	testEnv(t)
	t.Setenv("PROTOGEN_EXECUTOR", "ssh")

	_, err := execute(t, "languages")

	assert.ErrorContains(t, err, "invalid executor")
}

func TestLanguages(t *testing.T) {
	testEnv(t)

	out, err := execute(t, "languages")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, len(codegen.Languages)+1)
	assert.Contains(t, lines[0], "FLAG")
	assert.Contains(t, out, "--java_out")
	assert.Contains(t, out, "Python stubs")
}

func TestLanguages_JSON(t *testing.T) {
	testEnv(t)

	out, err := execute(t, "languages", "--json")
	require.NoError(t, err)

	var infos []LanguageInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, len(codegen.Languages))
	assert.Equal(t, LanguageInfo{ID: "cpp", Name: "C++", Flag: "--cpp_out"}, infos[0])
}

func TestVersion(t *testing.T) {
	testEnv(t)

	out, err := execute(t, "version")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "protogen 1.2.3 ("))
}

func TestVersion_Protoc(t *testing.T) {
	testEnv(t)
	bin := fakeTools(t, map[string]string{"protoc": protocOK})

	out, err := execute(t, "version", "--protoc")
	require.NoError(t, err)

	assert.Contains(t, out, "libprotoc 99.0 ("+filepath.Join(bin, "protoc")+")")
}
