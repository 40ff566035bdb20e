package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/platinummonkey/protogen/pkg/codegen"
	"github.com/sirupsen/logrus"
)

// fileRegistrar appends registered directories to path, one per line,
// leaving out directories already listed
func fileRegistrar(path string) codegen.SourceRootRegistrar {
	return codegen.SourceRootRegistrarFunc(func(dir string) error {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return err
		}

		existing, err := readLines(path)
		if err != nil {
			return err
		}
		for _, l := range existing {
			if l == abs {
				return nil
			}
		}

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()

		if _, err := fmt.Fprintln(f, abs); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		return nil
	})
}

// logRegistrar reports registered directories in the log
func logRegistrar(log logrus.FieldLogger) codegen.SourceRootRegistrar {
	return codegen.SourceRootRegistrarFunc(func(dir string) error {
		log.WithField("dir", dir).Info("Generated sources are a compilation root")
		return nil
	})
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if l := strings.TrimSpace(scanner.Text()); l != "" {
			lines = append(lines, l)
		}
	}
	return lines, scanner.Err()
}
