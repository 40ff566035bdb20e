package jvm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/platinummonkey/protogen/pkg/codegen"
	"github.com/platinummonkey/protogen/pkg/codegen/scratch"
	"github.com/platinummonkey/protogen/pkg/host"
	"github.com/platinummonkey/protogen/pkg/observability"
	"github.com/sirupsen/logrus"
)

// Builder turns JVM plugins into launchers protoc can spawn directly
type Builder struct {
	resolver codegen.ArtifactResolver
	host     *host.System
	space    *scratch.Space
	log      logrus.FieldLogger
}

// NewBuilder creates a launcher builder writing into space
func NewBuilder(resolver codegen.ArtifactResolver, sys *host.System, space *scratch.Space, log logrus.FieldLogger) *Builder {
	if log == nil {
		log = observability.NopLogger()
	}
	return &Builder{
		resolver: resolver,
		host:     sys,
		space:    space,
		log:      log.WithField("component", "jvm"),
	}
}

// Build resolves p and its runtime classpath, writes an argument file and
// an OS specific launcher into plugins/jvm/<id>, and returns the launcher
// as the plugin executable. Nothing is written when the main class cannot
// be determined.
func (b *Builder) Build(ctx context.Context, p Plugin) (codegen.ResolvedPlugin, error) {
	log := b.log.WithFields(logrus.Fields{"plugin": p.Coordinate.String(), "id": p.ID})
	log.Debug("Resolving JVM plugin")

	java, err := b.host.JavaExecutable()
	if err != nil {
		return codegen.ResolvedPlugin{}, codegen.NewResolutionError("java executable", err)
	}

	paths, err := b.resolver.Resolve(ctx, []codegen.Coordinate{p.Coordinate}, codegen.DepthTransitive, Scopes)
	if err != nil {
		return codegen.ResolvedPlugin{}, err
	}
	if len(paths) == 0 {
		return codegen.ResolvedPlugin{}, codegen.NewResolutionError(p.Coordinate.String(), ErrNoArtifacts)
	}

	mainClass, err := b.mainClass(p, paths[0], log)
	if err != nil {
		return codegen.ResolvedPlugin{}, err
	}

	modules := FindModules(paths)
	for _, m := range modules {
		log.WithField("module", m).Debug("Found JPMS module")
	}
	args := Arguments(paths, modules, mainClass, b.host.PathListSeparator())

	// everything is rendered before the scratch directory is created so a
	// failure leaves nothing behind
	dir := b.space.Path("plugins", "jvm", p.ID)
	files, err := b.render(java, args, dir)
	if err != nil {
		return codegen.ResolvedPlugin{}, err
	}

	if _, err := b.space.Dir("plugins", "jvm", p.ID); err != nil {
		return codegen.ResolvedPlugin{}, err
	}
	for _, f := range files {
		if err := scratch.CreateFile(f.path, f.data, f.perm); err != nil {
			return codegen.ResolvedPlugin{}, err
		}
	}
	launcher := files[len(files)-1].path
	if !b.host.IsWindows() {
		if err := os.Chmod(launcher, 0o755); err != nil {
			return codegen.ResolvedPlugin{}, fmt.Errorf("failed to make %s executable: %w", launcher, err)
		}
	}

	log.WithField("launcher", launcher).Debug("Wrote JVM plugin launcher")

	return codegen.ResolvedPlugin{
		ID:      p.ID,
		Path:    launcher,
		Options: p.Options,
		Order:   p.Order,
	}, nil
}

// mainClass prefers the configured main class, then the jar manifest
func (b *Builder) mainClass(p Plugin, artifact string, log logrus.FieldLogger) (string, error) {
	if p.MainClass != "" {
		log.Debug("Using configured main class")
		return p.MainClass, nil
	}

	info, err := os.Stat(artifact)
	if err != nil {
		return "", fmt.Errorf("failed to inspect %s: %w", artifact, err)
	}
	if !info.IsDir() {
		mainClass, err := MainClass(artifact)
		if err != nil {
			return "", err
		}
		if mainClass != "" {
			log.WithField("main_class", mainClass).Debug("Determined main class from manifest")
			return mainClass, nil
		}
		log.Warnf("No Main-Class manifest attribute found in %s", artifact)
	}

	return "", &codegen.ConfigurationError{
		Input:  p.Coordinate.String(),
		Reason: "no main class found in " + artifact + ", set mainClass on the JVM plugin",
	}
}

// file is a rendered scratch file
type file struct {
	path string
	data []byte
	perm os.FileMode
}

// render returns the argument file followed by the launcher script. The
// quoting style and encoding are picked once from the host OS family.
func (b *Builder) render(java string, args []string, dir string) ([]file, error) {
	argFile := filepath.Join(dir, argFileName)

	if b.host.IsWindows() {
		data, err := encodeLatin1(ArgFile(args, "\r\n"))
		if err != nil {
			return nil, &codegen.ConfigurationError{Input: argFile, Reason: "not representable in ISO-8859-1: " + err.Error()}
		}
		script, err := renderScript(QuoteBatch, "\r\n", []string{"@echo off"}, []string{"exit /b %ERRORLEVEL%"}, java, argFile)
		if err != nil {
			return nil, &codegen.ConfigurationError{Input: java, Reason: err.Error()}
		}
		script, err = encodeLatin1(string(script))
		if err != nil {
			return nil, &codegen.ConfigurationError{Input: java, Reason: "not representable in ISO-8859-1: " + err.Error()}
		}
		return []file{
			{path: argFile, data: data, perm: 0o644},
			{path: filepath.Join(dir, windowsLauncher), data: script, perm: 0o644},
		}, nil
	}

	sh, err := b.host.LookPath("sh")
	if err != nil {
		return nil, codegen.NewResolutionError("sh", err)
	}
	script, err := renderScript(QuotePOSIX, "\n", []string{"#!" + sh, "set -o errexit"}, nil, java, argFile)
	if err != nil {
		return nil, err
	}
	return []file{
		{path: argFile, data: []byte(ArgFile(args, "\n")), perm: 0o644},
		{path: filepath.Join(dir, posixLauncher), data: script, perm: 0o755},
	}, nil
}

// renderScript joins header, the quoted java invocation and footer with
// the given line ending
func renderScript(quote quoter, newline string, header, footer []string, java, argFile string) ([]byte, error) {
	cmd, err := quote([]string{java, "@" + argFile})
	if err != nil {
		return nil, err
	}

	var lines []string
	lines = append(lines, header...)
	lines = append(lines, cmd)
	lines = append(lines, footer...)

	var out []byte
	for _, l := range lines {
		out = append(out, l...)
		out = append(out, newline...)
	}
	return out, nil
}
