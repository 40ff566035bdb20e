// Package fetch downloads single files from URLs into the local filesystem.
//
// It wraps go-getter in file mode so that every source go-getter
// understands (https, http, file, s3, gcs, ...) can serve plugin binaries and
// repository artifacts. Archive decompression is disabled: callers get the
// bytes exactly as published. A "?checksum=<type>:<value>" query on the
// source is verified by go-getter before the file is kept.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	getter "github.com/hashicorp/go-getter"
	"github.com/platinummonkey/protogen/pkg/observability"
	"github.com/sirupsen/logrus"
)

// ErrDestinationExists is returned when the download target is already present
var ErrDestinationExists = errors.New("download destination already exists")

// Downloader fetches single files
type Downloader struct {
	getters map[string]getter.Getter
	log     logrus.FieldLogger
}

// NewDownloader creates a downloader using go-getter's default getters,
// with local files copied rather than symlinked
func NewDownloader(log logrus.FieldLogger) *Downloader {
	if log == nil {
		log = observability.NopLogger()
	}

	getters := make(map[string]getter.Getter, len(getter.Getters))
	for scheme, g := range getter.Getters {
		getters[scheme] = g
	}
	getters["file"] = &getter.FileGetter{Copy: true}

	return &Downloader{
		getters: getters,
		log:     log,
	}
}

// Download fetches src into dst. dst must not exist yet; its parent
// directory is created if needed.
func (d *Downloader) Download(ctx context.Context, src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("%w: %s", ErrDestinationExists, dst)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}

	pwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to determine working directory: %w", err)
	}

	d.log.WithField("source", src).Debugf("Downloading to %s", dst)

	client := &getter.Client{
		Ctx:           ctx,
		Src:           src,
		Dst:           dst,
		Pwd:           pwd,
		Mode:          getter.ClientModeFile,
		Getters:       d.getters,
		Decompressors: map[string]getter.Decompressor{},
	}
	if err := client.Get(); err != nil {
		// go-getter may leave a partial file behind
		os.Remove(dst)
		return fmt.Errorf("failed to download %s: %w", src, err)
	}

	return nil
}

// FileName derives a local file name from a source URL, ignoring any query
// string and go-getter forcing prefix such as "s3::"
func FileName(src string) string {
	if i := strings.Index(src, "::"); i >= 0 {
		src = src[i+2:]
	}

	if u, err := url.Parse(src); err == nil && u.Scheme != "" {
		base := path.Base(u.Path)
		if base == "/" || base == "." {
			return "download"
		}
		return base
	}

	if i := strings.IndexAny(src, "?#"); i >= 0 {
		src = src[:i]
	}
	base := path.Base(filepath.ToSlash(src))
	if base == "/" || base == "." || base == "" {
		return "download"
	}
	return base
}
