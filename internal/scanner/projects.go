package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/juparave/aprxaudit/internal/domain"
	"github.com/juparave/aprxaudit/internal/util"
)

// ErrRootNotFound is returned when the crawl root does not exist
var ErrRootNotFound = errors.New("root path not found")

// DefaultExcludeSuffixes are directory path endings skipped during scanning:
// backup copies, archived projects and file geodatabases.
var DefaultExcludeSuffixes = []string{".backups", "archive", ".gdb"}

// Options controls which files and directories the scanner visits
type Options struct {
	// Suffix is the project file ending, matched case-insensitively
	Suffix string
	// ExcludeSuffixes are matched against the end of the full lowercased
	// directory path, not against individual path segments
	ExcludeSuffixes []string
	// AllowMissingRoot yields nothing instead of ErrRootNotFound
	AllowMissingRoot bool
}

// Scanner finds project documents in a directory tree
type Scanner struct {
	logger   *log.Logger
	suffix   string
	excludes []string
	allowNA  bool
}

// New creates a new Scanner
func New(logger *log.Logger, opts Options) *Scanner {
	suffix := strings.ToLower(strings.TrimSpace(opts.Suffix))
	if suffix == "" {
		suffix = ".aprx"
	}
	return &Scanner{
		logger:   logger,
		suffix:   suffix,
		excludes: util.LowerAll(opts.ExcludeSuffixes),
		allowNA:  opts.AllowMissingRoot,
	}
}

// Projects lazily walks rootPath depth-first in lexical order and yields every
// project document outside excluded directories. The walk stops as soon as
// the consumer stops iterating.
func (s *Scanner) Projects(rootPath string) iter.Seq2[domain.ProjectFile, error] {
	return func(yield func(domain.ProjectFile, error) bool) {
		root := filepath.Clean(rootPath)

		if _, err := os.Stat(root); err != nil {
			if os.IsNotExist(err) {
				if !s.allowNA {
					yield(domain.ProjectFile{}, fmt.Errorf("%w: %s", ErrRootNotFound, root))
				}
				return
			}
			yield(domain.ProjectFile{}, fmt.Errorf("accessing root: %w", err))
			return
		}

		walkRoot, err := walkablePath(root)
		if err != nil {
			yield(domain.ProjectFile{}, fmt.Errorf("accessing root: %w", err))
			return
		}

		stopped := false
		err = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == walkRoot {
					return err
				}
				s.logger.Printf("Warning: skipping %s: %v", path, err)
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				if s.Excluded(path) {
					return filepath.SkipDir
				}
				return nil
			}

			if !s.Matches(d.Name()) {
				return nil
			}

			if !yield(domain.NewProjectFile(path), nil) {
				stopped = true
				return filepath.SkipAll
			}
			return nil
		})

		if err != nil && !stopped {
			yield(domain.ProjectFile{}, fmt.Errorf("scanning %s: %w", root, err))
		}
	}
}

// FindProjects collects every project under rootPath
func (s *Scanner) FindProjects(rootPath string) ([]domain.ProjectFile, error) {
	var projects []domain.ProjectFile
	for p, err := range s.Projects(rootPath) {
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, nil
}

// Matches reports whether a file name carries the project suffix
func (s *Scanner) Matches(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), s.suffix)
}

// walkablePath returns root in a form WalkDir descends into. WalkDir does not
// follow a symlinked root, so a trailing separator makes it resolve the link.
// Links below the root are still not followed.
func walkablePath(root string) (string, error) {
	fi, err := os.Lstat(root)
	if err != nil {
		return "", err
	}
	if fi.Mode()&fs.ModeSymlink == 0 || strings.HasSuffix(root, string(filepath.Separator)) {
		return root, nil
	}
	return root + string(filepath.Separator), nil
}

// Excluded reports whether a directory path ends with an excluded suffix
func (s *Scanner) Excluded(dirPath string) bool {
	return util.HasSuffixFold(filepath.Clean(dirPath), s.excludes)
}
