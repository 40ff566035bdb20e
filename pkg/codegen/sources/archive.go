package sources

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/platinummonkey/protogen/pkg/codegen/scratch"
)

// archiveKind is the container format of an archive root
type archiveKind int

const (
	notArchive archiveKind = iota
	zipArchive
	tarGzArchive
)

// kindOf determines the archive format from the file name
func kindOf(name string) archiveKind {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".zip"), strings.HasSuffix(lower, ".jar"):
		return zipArchive
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return tarGzArchive
	default:
		return notArchive
	}
}

// extract copies every .proto entry of archivePath below destDir
func extract(archivePath, destDir string, kind archiveKind) (int, error) {
	switch kind {
	case zipArchive:
		return extractZip(archivePath, destDir)
	case tarGzArchive:
		return extractTarGz(archivePath, destDir)
	default:
		return 0, fmt.Errorf("%s is not a supported archive", archivePath)
	}
}

func extractZip(archivePath, destDir string) (int, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	count := 0
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !isProto(f.Name) {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return count, err
		}
		err = writeEntry(destDir, f.Name, rc)
		rc.Close()
		if err != nil {
			return count, err
		}
		count++
	}

	return count, nil
}

func extractTarGz(archivePath, destDir string) (int, error) {
	file, err := os.Open(archivePath)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return 0, err
	}
	defer gzReader.Close()

	tarReader := tar.NewReader(gzReader)

	count := 0
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, err
		}

		if header.Typeflag != tar.TypeReg || !isProto(header.Name) {
			continue
		}
		if err := writeEntry(destDir, header.Name, tarReader); err != nil {
			return count, err
		}
		count++
	}

	return count, nil
}

// writeEntry writes one archive entry, rejecting names that escape destDir
func writeEntry(destDir, name string, r io.Reader) error {
	clean := path.Clean(strings.ReplaceAll(name, "\\", "/"))
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("archive entry %q escapes the extraction directory", name)
	}

	dest := filepath.Join(destDir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return scratch.CreateFrom(dest, r, 0o644)
}

func isProto(name string) bool {
	return strings.HasSuffix(name, ".proto")
}
