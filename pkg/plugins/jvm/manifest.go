package jvm

import (
	"archive/zip"
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
)

const manifestPath = "META-INF/MANIFEST.MF"

// MainClass returns the Main-Class attribute of the jar at path, or ""
// when the jar has no manifest or the manifest declares none
func MainClass(path string) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer r.Close()

	f, err := r.Open(manifestPath)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to open manifest of %s: %w", path, err)
	}
	defer f.Close()

	attrs, err := parseMainAttributes(f)
	if err != nil {
		return "", fmt.Errorf("failed to read manifest of %s: %w", path, err)
	}
	return attrs["main-class"], nil
}

// parseMainAttributes reads the main section of a jar manifest, keyed by
// lower-cased attribute name. A line starting with a single space
// continues the previous line; the main section ends at the first blank
// line.
func parseMainAttributes(r io.Reader) (map[string]string, error) {
	attrs := make(map[string]string)

	var name string
	var value strings.Builder
	flush := func() {
		if name != "" {
			attrs[name] = value.String()
		}
		name = ""
		value.Reset()
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")

		if line == "" {
			break
		}
		if strings.HasPrefix(line, " ") {
			value.WriteString(line[1:])
			continue
		}

		flush()
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("malformed manifest line %q", line)
		}
		name = strings.ToLower(strings.TrimSpace(k))
		value.WriteString(strings.TrimPrefix(v, " "))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()

	return attrs, nil
}
