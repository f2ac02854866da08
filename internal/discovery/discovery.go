package discovery

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/recreate-run/multimodal-analyzer/internal/apperror"
	"github.com/recreate-run/multimodal-analyzer/internal/media"
	"github.com/recreate-run/multimodal-analyzer/internal/models"
)

// Options selects the input set: either Root (with Recursive) or Files.
type Options struct {
	MediaType models.MediaType
	Root      string
	Recursive bool
	Files     []string
}

// Discover returns the deduplicated, lexicographically sorted files matching
// the media type's allow-list. Missing inputs and empty results are errors.
func Discover(opts Options) ([]string, error) {
	allowed := media.ExtensionSet(opts.MediaType)
	if len(allowed) == 0 {
		return nil, apperror.Validation("Unsupported media type: %s", opts.MediaType)
	}

	var (
		files  []string
		source string
		err    error
	)
	if len(opts.Files) > 0 {
		source = "file list"
		files, err = fromList(opts.Files, opts.MediaType, allowed)
	} else {
		source = "path " + opts.Root
		files, err = fromRoot(opts.Root, opts.Recursive, opts.MediaType, allowed)
	}
	if err != nil {
		return nil, err
	}

	files = dedupe(files)
	if len(files) == 0 {
		return nil, apperror.Validation("No supported %s files found in %s", opts.MediaType, source)
	}

	sort.Strings(files)
	return files, nil
}

func fromList(entries []string, t models.MediaType, allowed map[string]bool) ([]string, error) {
	var files []string
	for _, raw := range entries {
		path := norm.NFC.String(raw)

		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, apperror.New(apperror.KindFileNotFound, "File not found: %s", path).WithPath(path)
			}
			return nil, apperror.Wrap(apperror.KindFileNotFound, err, "stat %s", path).WithPath(path)
		}
		if !info.Mode().IsRegular() {
			return nil, apperror.Validation("Path is not a file: %s", path).WithPath(path)
		}
		if !allowed[media.Ext(path)] {
			return nil, apperror.New(apperror.KindUnsupportedFormat, "Unsupported format for %s: %s", t, path).WithPath(path)
		}
		files = append(files, path)
	}
	return files, nil
}

func fromRoot(root string, recursive bool, t models.MediaType, allowed map[string]bool) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperror.New(apperror.KindFileNotFound, "Path does not exist: %s", root).WithPath(root)
		}
		return nil, apperror.Wrap(apperror.KindFileNotFound, err, "stat %s", root).WithPath(root)
	}

	if !info.IsDir() {
		if !allowed[media.Ext(root)] {
			return nil, apperror.New(apperror.KindUnsupportedFormat, "File %s is not a supported %s format", root, t).WithPath(root)
		}
		return []string{root}, nil
	}

	if !recursive {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, apperror.Wrap(apperror.KindFileNotFound, err, "read directory %s", root).WithPath(root)
		}
		var files []string
		for _, e := range entries {
			if !e.Type().IsRegular() {
				continue
			}
			if allowed[media.Ext(e.Name())] {
				files = append(files, filepath.Join(root, e.Name()))
			}
		}
		return files, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && allowed[media.Ext(path)] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, apperror.Wrap(apperror.KindFileNotFound, err, "walk %s", root).WithPath(root)
	}
	return files, nil
}

// dedupe drops entries resolving to the same absolute path, keeping the first spelling.
func dedupe(files []string) []string {
	seen := make(map[string]bool, len(files))
	out := files[:0]
	for _, f := range files {
		key := filepath.Clean(f)
		if abs, err := filepath.Abs(f); err == nil {
			key = abs
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, f)
	}
	return out
}
