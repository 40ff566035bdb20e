package jvm

import (
	"archive/zip"
	"os"
	"path/filepath"
	"regexp"
	"sort"
)

const moduleDescriptor = "module-info.class"

var versionedDescriptor = regexp.MustCompile(`^META-INF/versions/[0-9]+/module-info\.class$`)

// FindModules returns the entries of paths that are explicit JPMS modules,
// sorted lexically. A directory is a module when it holds
// module-info.class; a jar is one when module-info.class sits at its root
// or in a META-INF/versions/<n> directory. Paths that cannot be read are
// treated as plain classpath entries.
func FindModules(paths []string) []string {
	var modules []string
	for _, p := range paths {
		if isModule(p) {
			modules = append(modules, p)
		}
	}
	sort.Strings(modules)
	return modules
}

func isModule(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	if info.IsDir() {
		_, err := os.Stat(filepath.Join(path, moduleDescriptor))
		return err == nil
	}

	r, err := zip.OpenReader(path)
	if err != nil {
		return false
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name == moduleDescriptor || versionedDescriptor.MatchString(f.Name) {
			return true
		}
	}
	return false
}
