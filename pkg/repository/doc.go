// Package repository resolves artifact coordinates to files in a
// Maven-layout repository, such as ~/.m2/repository.
//
// Artifacts are located at
//
//	<root>/<group path>/<artifactId>/<version>/<artifactId>-<version>[-<classifier>].<ext>
//
// With codegen.DepthTransitive the POM next to each artifact is read and
// its dependencies are followed breadth first. Parent POMs contribute
// properties and dependencyManagement versions. Imported BOMs and
// version ranges are not supported.
//
// When a remote URL is configured, missing files are fetched into the
// local repository with go-getter, so the remote may be any source
// go-getter understands:
//
//	r, err := repository.NewResolver(repository.Config{
//		LocalPath: filepath.Join(home, ".m2", "repository"),
//		RemoteURL: "https://repo.maven.apache.org/maven2",
//	}, nil, log)
//	paths, err := r.Resolve(ctx, coords, codegen.DepthTransitive,
//		[]string{codegen.ScopeCompile, codegen.ScopeRuntime})
package repository
