package crawler

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"apidoc/internal/source"
)

// Matcher decides which files are worth reading.
type Matcher interface {
	Supports(path string) bool
}

// Crawler collects the source files of a project in a stable order.
type Crawler struct {
	matcher Matcher
	ignored []string

	// Include, when non-empty, keeps only files matching one of the patterns.
	Include []string
	// Exclude drops files matching any of the patterns.
	Exclude []string
	// Jobs bounds concurrent reads; zero means GOMAXPROCS.
	Jobs int
}

// NewCrawler creates a new crawler instance.
func NewCrawler(m Matcher) *Crawler {
	return &Crawler{
		matcher: m,
		ignored: []string{".git", "vendor", "node_modules", "testdata"},
	}
}

// ListFiles walks root and returns the candidate files sorted by path.
func (c *Crawler) ListFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && slices.Contains(c.ignored, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if c.keep(root, p) {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	slices.Sort(paths)
	return paths, nil
}

// Filter applies the crawler's rules to an externally produced list of paths
// relative to root, such as the output of git ls-files.
func (c *Crawler) Filter(root string, rel []string) []string {
	var paths []string
	for _, r := range rel {
		p := filepath.Join(root, filepath.FromSlash(r))
		if c.inIgnoredDir(r) || !c.keep(root, p) {
			continue
		}
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

func (c *Crawler) inIgnoredDir(rel string) bool {
	dirs := strings.Split(path.Dir(filepath.ToSlash(rel)), "/")
	for _, d := range dirs {
		if slices.Contains(c.ignored, d) {
			return true
		}
	}
	return false
}

func (c *Crawler) keep(root, p string) bool {
	if strings.HasSuffix(p, "_test.go") || !c.matcher.Supports(p) {
		return false
	}
	rel, err := filepath.Rel(root, p)
	if err != nil {
		rel = p
	}
	rel = filepath.ToSlash(rel)
	if len(c.Include) > 0 && !matchAny(c.Include, rel) {
		return false
	}
	return !matchAny(c.Exclude, rel)
}

// matchAny matches rel against glob patterns. A pattern matches the whole
// relative path, the base name, or a leading directory.
func matchAny(patterns []string, rel string) bool {
	for _, pat := range patterns {
		pat = strings.TrimSuffix(filepath.ToSlash(pat), "/")
		if ok, _ := path.Match(pat, rel); ok {
			return true
		}
		if ok, _ := path.Match(pat, path.Base(rel)); ok {
			return true
		}
		if strings.HasPrefix(rel, pat+"/") {
			return true
		}
	}
	return false
}

// ReadFiles reads paths concurrently. The result keeps the order of paths.
func (c *Crawler) ReadFiles(ctx context.Context, paths []string) ([]source.File, error) {
	jobs := c.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	files := make([]source.File, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(paths))))
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			content, err := os.ReadFile(p)
			if err != nil {
				return fmt.Errorf("failed to read file %s: %w", p, err)
			}
			files[i] = source.File{Path: p, Content: content}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

// ScanProject lists and reads every candidate file under root.
func (c *Crawler) ScanProject(ctx context.Context, root string) ([]source.File, error) {
	paths, err := c.ListFiles(root)
	if err != nil {
		return nil, err
	}
	return c.ReadFiles(ctx, paths)
}
