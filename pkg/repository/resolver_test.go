package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/platinummonkey/protogen/pkg/codegen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// repo is a throwaway Maven-layout repository for tests
type repo struct {
	t    *testing.T
	root string
}

func newRepo(t *testing.T) *repo {
	return &repo{t: t, root: t.TempDir()}
}

func (r *repo) artifact(gav string) string {
	c, err := codegen.ParseCoordinate(gav)
	require.NoError(r.t, err)

	p := filepath.Join(r.root, filepath.FromSlash(ArtifactPath(c)))
	require.NoError(r.t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(r.t, os.WriteFile(p, []byte(gav), 0o644))
	return p
}

func (r *repo) pom(gav, body string) {
	c, err := codegen.ParseCoordinate(gav)
	require.NoError(r.t, err)

	p := filepath.Join(r.root, filepath.FromSlash(POMPath(c)))
	require.NoError(r.t, os.MkdirAll(filepath.Dir(p), 0o755))
	xml := fmt.Sprintf(`<?xml version="1.0"?>
<project>
  <groupId>%s</groupId>
  <artifactId>%s</artifactId>
  <version>%s</version>
  %s
</project>`, c.GroupID, c.ArtifactID, c.Version, body)
	require.NoError(r.t, os.WriteFile(p, []byte(xml), 0o644))
}

func (r *repo) resolver() *Resolver {
	res, err := NewResolver(Config{LocalPath: r.root}, nil, nil)
	require.NoError(r.t, err)
	return res
}

func dep(gav, scope string, extra ...string) string {
	c, _ := codegen.ParseCoordinate(gav)
	s := fmt.Sprintf("<dependency><groupId>%s</groupId><artifactId>%s</artifactId>", c.GroupID, c.ArtifactID)
	if c.Version != "-" {
		s += "<version>" + c.Version + "</version>"
	}
	if scope != "" {
		s += "<scope>" + scope + "</scope>"
	}
	for _, e := range extra {
		s += e
	}
	return s + "</dependency>"
}

func coords(t *testing.T, gavs ...string) []codegen.Coordinate {
	var out []codegen.Coordinate
	for _, g := range gavs {
		c, err := codegen.ParseCoordinate(g)
		require.NoError(t, err)
		out = append(out, c)
	}
	return out
}

var runtimeScopes = []string{codegen.ScopeCompile, codegen.ScopeRuntime, codegen.ScopeSystem}

func TestArtifactPath(t *testing.T) {
	tests := []struct {
		gav  string
		want string
	}{
		{"com.example:plugin:1.0", "com/example/plugin/1.0/plugin-1.0.jar"},
		{"com.google.protobuf:protoc:3.25.1:exe:linux-x86_64", "com/google/protobuf/protoc/3.25.1/protoc-3.25.1-linux-x86_64.exe"},
		{"org.example:thing:2:test-jar:tests", "org/example/thing/2/thing-2-tests.jar"},
		{"org.example:protos:2:zip", "org/example/protos/2/protos-2.zip"},
	}

	for _, tt := range tests {
		t.Run(tt.gav, func(t *testing.T) {
			c, err := codegen.ParseCoordinate(tt.gav)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ArtifactPath(c))
		})
	}
}

func TestResolve_Direct(t *testing.T) {
	r := newRepo(t)
	a := r.artifact("com.example:a:1.0")
	r.artifact("com.example:b:1.0")
	r.pom("com.example:a:1.0", "<dependencies>"+dep("com.example:b:1.0", "")+"</dependencies>")

	paths, err := r.resolver().Resolve(context.Background(), coords(t, "com.example:a:1.0"), codegen.DepthDirect, runtimeScopes)

	require.NoError(t, err)
	assert.Equal(t, []string{a}, paths)
}

func TestResolve_TransitiveBreadthFirst(t *testing.T) {
	r := newRepo(t)
	a := r.artifact("com.example:a:1.0")
	b := r.artifact("com.example:b:1.0")
	c := r.artifact("com.example:c:1.0")
	d := r.artifact("com.example:d:1.0")
	r.pom("com.example:a:1.0", "<dependencies>"+dep("com.example:b:1.0", "")+dep("com.example:c:1.0", "runtime")+"</dependencies>")
	r.pom("com.example:b:1.0", "<dependencies>"+dep("com.example:d:1.0", "")+"</dependencies>")

	paths, err := r.resolver().Resolve(context.Background(), coords(t, "com.example:a:1.0"), codegen.DepthTransitive, runtimeScopes)

	require.NoError(t, err)
	assert.Equal(t, []string{a, b, c, d}, paths)
}

func TestResolve_NearestWins(t *testing.T) {
	r := newRepo(t)
	r.artifact("com.example:a:1.0")
	r.artifact("com.example:b:1.0")
	r.artifact("com.example:lib:2.0")
	r.artifact("com.example:lib:1.0")
	r.pom("com.example:a:1.0", "<dependencies>"+dep("com.example:b:1.0", "")+dep("com.example:lib:2.0", "")+"</dependencies>")
	r.pom("com.example:b:1.0", "<dependencies>"+dep("com.example:lib:1.0", "")+"</dependencies>")

	paths, err := r.resolver().Resolve(context.Background(), coords(t, "com.example:a:1.0"), codegen.DepthTransitive, runtimeScopes)

	require.NoError(t, err)
	require.Len(t, paths, 3)
	assert.Contains(t, paths[2], filepath.Join("lib", "2.0"))
}

func TestResolve_ScopesAndOptional(t *testing.T) {
	r := newRepo(t)
	a := r.artifact("com.example:a:1.0")
	rt := r.artifact("com.example:rt:1.0")
	r.pom("com.example:a:1.0", "<dependencies>"+
		dep("com.example:rt:1.0", "runtime")+
		dep("com.example:prov:1.0", "provided")+
		dep("com.example:tst:1.0", "test")+
		dep("com.example:opt:1.0", "", "<optional>true</optional>")+
		"</dependencies>")

	paths, err := r.resolver().Resolve(context.Background(), coords(t, "com.example:a:1.0"), codegen.DepthTransitive, runtimeScopes)

	require.NoError(t, err)
	assert.Equal(t, []string{a, rt}, paths)
}

func exclusions(pairs ...string) string {
	s := "<exclusions>"
	for i := 0; i+1 < len(pairs); i += 2 {
		s += "<exclusion><groupId>" + pairs[i] + "</groupId><artifactId>" + pairs[i+1] + "</artifactId></exclusion>"
	}
	return s + "</exclusions>"
}

func TestResolve_Exclusions(t *testing.T) {
	tests := []struct {
		name       string
		exclusions string
	}{
		{"exact", exclusions("org.banned", "banned")},
		{"any group", exclusions("*", "banned")},
		{"any artifact", exclusions("org.banned", "*")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRepo(t)
			plugin := r.artifact("com.example:plugin:1.0")
			lib := r.artifact("com.example:lib:1.0")
			keep := r.artifact("com.example:keep:1.0")
			// org.banned:banned is never installed, so resolving it would fail
			r.pom("com.example:plugin:1.0", "<dependencies>"+dep("com.example:lib:1.0", "", tt.exclusions)+"</dependencies>")
			r.pom("com.example:lib:1.0", "<dependencies>"+dep("org.banned:banned:1.0", "")+dep("com.example:keep:1.0", "")+"</dependencies>")
			r.pom("com.example:keep:1.0", "<dependencies>"+dep("org.banned:banned:1.0", "")+"</dependencies>")

			paths, err := r.resolver().Resolve(context.Background(), coords(t, "com.example:plugin:1.0"), codegen.DepthTransitive, runtimeScopes)

			require.NoError(t, err)
			assert.Equal(t, []string{plugin, lib, keep}, paths)
		})
	}
}

func TestResolve_ExclusionsScopedToDeclaringPath(t *testing.T) {
	r := newRepo(t)
	a := r.artifact("com.example:a:1.0")
	b := r.artifact("com.example:b:1.0")
	c := r.artifact("com.example:c:1.0")
	shared := r.artifact("com.example:shared:1.0")
	r.pom("com.example:a:1.0", "<dependencies>"+
		dep("com.example:b:1.0", "", exclusions("com.example", "shared"))+
		dep("com.example:c:1.0", "")+
		"</dependencies>")
	r.pom("com.example:b:1.0", "<dependencies>"+dep("com.example:shared:1.0", "")+"</dependencies>")
	r.pom("com.example:c:1.0", "<dependencies>"+dep("com.example:shared:1.0", "")+"</dependencies>")

	paths, err := r.resolver().Resolve(context.Background(), coords(t, "com.example:a:1.0"), codegen.DepthTransitive, runtimeScopes)

	require.NoError(t, err)
	assert.Equal(t, []string{a, b, c, shared}, paths)
}

func TestResolve_ScopeFilter(t *testing.T) {
	r := newRepo(t)
	a := r.artifact("com.example:a:1.0")
	r.artifact("com.example:rt:1.0")
	r.pom("com.example:a:1.0", "<dependencies>"+dep("com.example:rt:1.0", "runtime")+"</dependencies>")

	paths, err := r.resolver().Resolve(context.Background(), coords(t, "com.example:a:1.0"), codegen.DepthTransitive, []string{codegen.ScopeCompile})

	require.NoError(t, err)
	assert.Equal(t, []string{a}, paths)
}

func TestResolve_SystemScope(t *testing.T) {
	r := newRepo(t)
	a := r.artifact("com.example:a:1.0")
	sys := filepath.Join(t.TempDir(), "tools.jar")
	require.NoError(t, os.WriteFile(sys, nil, 0o644))
	r.pom("com.example:a:1.0", "<dependencies>"+
		dep("com.example:tools:1.0", "system", "<systemPath>"+sys+"</systemPath>")+
		"</dependencies>")

	paths, err := r.resolver().Resolve(context.Background(), coords(t, "com.example:a:1.0"), codegen.DepthTransitive, runtimeScopes)

	require.NoError(t, err)
	assert.Equal(t, []string{a, sys}, paths)
}

func TestResolve_PropertiesAndParent(t *testing.T) {
	r := newRepo(t)
	r.pom("com.example:parent:1", `<packaging>pom</packaging>
  <properties><lib.version>3.1</lib.version></properties>
  <dependencyManagement><dependencies>`+dep("com.example:managed:4.0", "")+`</dependencies></dependencyManagement>`)

	a := r.artifact("com.example:a:1.0")
	lib := r.artifact("com.example:lib:3.1")
	managed := r.artifact("com.example:managed:4.0")
	r.pom("com.example:a:1.0", `<parent><groupId>com.example</groupId><artifactId>parent</artifactId><version>1</version></parent>
  <dependencies>`+
		dep("com.example:lib:${lib.version}", "")+
		dep("com.example:managed:-", "")+
		`</dependencies>`)

	paths, err := r.resolver().Resolve(context.Background(), coords(t, "com.example:a:1.0"), codegen.DepthTransitive, runtimeScopes)

	require.NoError(t, err)
	assert.Equal(t, []string{a, lib, managed}, paths)
}

func TestResolve_MissingPOMMeansNoDependencies(t *testing.T) {
	r := newRepo(t)
	a := r.artifact("com.example:a:1.0")

	paths, err := r.resolver().Resolve(context.Background(), coords(t, "com.example:a:1.0"), codegen.DepthTransitive, runtimeScopes)

	require.NoError(t, err)
	assert.Equal(t, []string{a}, paths)
}

func TestResolve_MissingArtifact(t *testing.T) {
	r := newRepo(t)

	_, err := r.resolver().Resolve(context.Background(), coords(t, "com.example:absent:1.0"), codegen.DepthDirect, runtimeScopes)

	require.Error(t, err)
	assert.True(t, errors.Is(err, codegen.ErrResolution))
	assert.True(t, errors.Is(err, ErrArtifactNotFound))
	assert.Contains(t, err.Error(), "com.example:absent:1.0")
}

func TestResolve_MissingVersion(t *testing.T) {
	r := newRepo(t)
	r.artifact("com.example:a:1.0")
	r.pom("com.example:a:1.0", "<dependencies>"+dep("com.example:lib:-", "")+"</dependencies>")

	_, err := r.resolver().Resolve(context.Background(), coords(t, "com.example:a:1.0"), codegen.DepthTransitive, runtimeScopes)

	require.Error(t, err)
	assert.True(t, errors.Is(err, codegen.ErrResolution))
	assert.True(t, errors.Is(err, ErrInvalidPOM))
}

func TestResolve_InvalidDepth(t *testing.T) {
	r := newRepo(t)

	_, err := r.resolver().Resolve(context.Background(), nil, "SIDEWAYS", nil)

	assert.True(t, errors.Is(err, codegen.ErrConfiguration))
}

func TestResolve_RemoteFetch(t *testing.T) {
	remote := newRepo(t)
	remote.artifact("com.example:a:1.0")
	remote.artifact("com.example:b:1.0")
	remote.pom("com.example:a:1.0", "<dependencies>"+dep("com.example:b:1.0", "")+"</dependencies>")

	local := t.TempDir()
	res, err := NewResolver(Config{LocalPath: local, RemoteURL: "file::" + remote.root}, nil, nil)
	require.NoError(t, err)

	paths, err := res.Resolve(context.Background(), coords(t, "com.example:a:1.0"), codegen.DepthTransitive, runtimeScopes)

	require.NoError(t, err)
	require.Len(t, paths, 2)
	for _, p := range paths {
		assert.FileExists(t, p)
		assert.True(t, strings.HasPrefix(p, local))
	}
}

func TestNewResolver_RequiresLocalPath(t *testing.T) {
	_, err := NewResolver(Config{}, nil, nil)
	assert.True(t, errors.Is(err, codegen.ErrConfiguration))
}
