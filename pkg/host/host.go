// Package host describes the machine protogen runs on: its OS family,
// the separator used in search paths, and where executables live.
//
// Everything that depends on runtime.GOOS goes through a System value so
// that tests can produce Windows launchers on Linux and vice versa.
package host

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrNotFound is returned when an executable cannot be located
var ErrNotFound = errors.New("executable not found")

// System holds facts about the host that affect generated files
type System struct {
	GOOS     string
	GOARCH   string
	JavaHome string

	lookPath func(string) (string, error)
}

// Current returns the System protogen is running on. javaHome may be
// empty, in which case JAVA_HOME and then PATH are consulted.
func Current(javaHome string) *System {
	return &System{
		GOOS:     runtime.GOOS,
		GOARCH:   runtime.GOARCH,
		JavaHome: javaHome,
		lookPath: exec.LookPath,
	}
}

// IsWindows reports whether launchers should be batch files
func (s *System) IsWindows() bool {
	return s.GOOS == "windows"
}

// PathListSeparator is the separator for classpath style lists
func (s *System) PathListSeparator() string {
	if s.IsWindows() {
		return ";"
	}
	return ":"
}

// WithLookPath returns a copy of s that resolves executables with fn
func (s *System) WithLookPath(fn func(string) (string, error)) *System {
	c := *s
	c.lookPath = fn
	return &c
}

// LookPath finds name on PATH, trying ".exe" on Windows
func (s *System) LookPath(name string) (string, error) {
	lookPath := s.lookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	candidates := []string{name}
	if s.IsWindows() && !strings.HasSuffix(strings.ToLower(name), ".exe") {
		candidates = append(candidates, name+".exe")
	}

	for _, c := range candidates {
		if p, err := lookPath(c); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s is not on the PATH", ErrNotFound, name)
}

// JavaExecutable locates the java launcher used by JVM plugins
func (s *System) JavaExecutable() (string, error) {
	javaName := "java"
	if s.IsWindows() {
		javaName = "java.exe"
	}

	for _, home := range []string{s.JavaHome, os.Getenv("JAVA_HOME")} {
		if home == "" {
			continue
		}
		candidate := filepath.Join(home, "bin", javaName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	return s.LookPath("java")
}

// PlatformClassifier returns the artifact classifier protoc releases use
// for this platform, such as "linux-x86_64" or "osx-aarch_64"
func (s *System) PlatformClassifier() (string, error) {
	var osName string
	switch s.GOOS {
	case "linux":
		osName = "linux"
	case "darwin":
		osName = "osx"
	case "windows":
		osName = "windows"
	default:
		return "", fmt.Errorf("no protoc artifacts are published for %s", s.GOOS)
	}

	var arch string
	switch s.GOARCH {
	case "amd64":
		arch = "x86_64"
	case "386":
		arch = "x86_32"
	case "arm64":
		arch = "aarch_64"
	case "ppc64le":
		arch = "ppcle_64"
	case "s390x":
		arch = "s390_64"
	default:
		return "", fmt.Errorf("no protoc artifacts are published for %s/%s", s.GOOS, s.GOARCH)
	}

	return osName + "-" + arch, nil
}

// MakeExecutable adds execute permission for everyone that can read path.
// It is a no-op on Windows.
func (s *System) MakeExecutable(path string) error {
	if s.IsWindows() {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	mode := info.Mode().Perm()
	mode |= (mode & 0o444) >> 2
	return os.Chmod(path, mode)
}
