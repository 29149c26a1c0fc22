// Package source scans a source directory and creates the output tree from
// it. Entries are visited sorted by name, which fixes the order of children
// and therefore the first-match order of path resolution.
package source

import (
	"errors"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/webtree/internal/foundation/errors"
	"git.home.luguber.info/inful/webtree/internal/handlers"
	"git.home.luguber.info/inful/webtree/internal/logfields"
	"git.home.luguber.info/inful/webtree/internal/page"
	"git.home.luguber.info/inful/webtree/internal/tree"
)

// MetaInfoFile holds per-entry meta values of a directory.
const MetaInfoFile = "metainfo.yaml"

// RootPath is the path of the root node of loaded trees.
const RootPath = "/"

// FileHandler creates nodes for the files it accepts.
type FileHandler interface {
	tree.Handler
	Accepts(name string) bool
	CreateNode(parent *tree.Node, src string, data []byte, meta map[string]any) (*tree.Node, error)
}

// DirectoryHandler creates directory nodes.
type DirectoryHandler interface {
	tree.Handler
	CreateDirectory(parent *tree.Node, name string, meta map[string]any) (*tree.Node, error)
}

// Stats counts what a Load did.
type Stats struct {
	Files       int
	Directories int
	Skipped     int
}

// Loader builds a tree from an fs.FS.
type Loader struct {
	fsys     fs.FS
	files    []FileHandler
	dirs     DirectoryHandler
	logger   *slog.Logger
	excluded map[string]struct{}
}

// NewLoader returns a loader over fsys. Files are handed to the first handler
// in files that accepts them.
func NewLoader(fsys fs.FS, dirs DirectoryHandler, files []FileHandler, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{fsys: fsys, files: files, dirs: dirs, logger: logger, excluded: map[string]struct{}{}}
}

// Exclude skips the entry at name, a slash separated path relative to the
// source root, and everything below it.
func (l *Loader) Exclude(name string) {
	l.excluded[path.Clean(name)] = struct{}{}
}

// Load creates the root node of t and one node per source entry below it.
// Files no handler accepts or whose node cannot be created are logged and
// skipped. Errors reading the source are returned.
func (l *Loader) Load(t *tree.Tree) (*tree.Node, Stats, error) {
	var stats Stats
	root, err := t.NewRoot(RootPath)
	if err != nil {
		return nil, stats, err
	}
	root.Meta = tree.MetaInfo{}
	root.Info.Handler = l.dirs
	if err := l.loadDir(root, ".", &stats); err != nil {
		return nil, stats, err
	}
	return root, stats, nil
}

func (l *Loader) loadDir(parent *tree.Node, dir string, stats *Stats) error {
	entries, err := fs.ReadDir(l.fsys, dir)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read source directory").
			WithContext("dir", dir).
			Build()
	}
	meta, err := l.readMetaInfo(dir)
	if err != nil {
		return err
	}

	// fs.ReadDir returns entries sorted by file name.
	for _, e := range entries {
		name := e.Name()
		src := path.Join(dir, name)
		if strings.HasPrefix(name, ".") || name == MetaInfoFile {
			continue
		}
		if _, skip := l.excluded[src]; skip {
			continue
		}
		if e.IsDir() {
			n, err := l.dirs.CreateDirectory(parent, name, entryMeta(meta, name+"/", name))
			if err != nil {
				l.skip(src, err, stats)
				continue
			}
			n.Info.Source = src
			stats.Directories++
			if err := l.loadDir(n, src, stats); err != nil {
				return err
			}
			continue
		}
		if err := l.loadFile(parent, src, name, entryMeta(meta, name), stats); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loader) loadFile(parent *tree.Node, src, name string, meta map[string]any, stats *Stats) error {
	h := l.handlerFor(name)
	if h == nil {
		l.logger.Debug("No handler for source file", logfields.Source(src))
		stats.Skipped++
		return nil
	}
	data, err := fs.ReadFile(l.fsys, src)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read source file").
			WithContext("source", src).
			Build()
	}
	n, err := h.CreateNode(parent, src, data, meta)
	if err != nil {
		l.skip(src, err, stats)
		return nil
	}
	l.logger.Debug("Created node",
		logfields.Source(src),
		logfields.NodePath(n.FullPath()),
		logfields.Handler(h.Name()))
	stats.Files++
	return nil
}

func (l *Loader) skip(src string, err error, stats *Stats) {
	stats.Skipped++
	msg := "Skipping source entry"
	switch {
	case errors.Is(err, page.ErrInvalidPage):
		msg = "Invalid page, skipping"
	case errors.Is(err, handlers.ErrNodeExists):
		msg = "Node already exists, skipping"
	}
	l.logger.Warn(msg, logfields.Source(src), logfields.Error(err))
}

func (l *Loader) handlerFor(name string) FileHandler {
	for _, h := range l.files {
		if h.Accepts(name) {
			return h
		}
	}
	return nil
}

// readMetaInfo reads the metainfo file of dir, which maps entry names to meta
// values. A missing file yields no values.
func (l *Loader) readMetaInfo(dir string) (map[string]map[string]any, error) {
	data, err := fs.ReadFile(l.fsys, path.Join(dir, MetaInfoFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read metainfo").
			WithContext("dir", dir).
			Build()
	}
	var meta map[string]map[string]any
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryValidation, "invalid metainfo").
			WithContext("file", path.Join(dir, MetaInfoFile)).
			Build()
	}
	return meta, nil
}

func entryMeta(meta map[string]map[string]any, keys ...string) map[string]any {
	out := map[string]any{}
	for _, k := range keys {
		for mk, v := range meta[k] {
			if _, set := out[mk]; !set {
				out[mk] = v
			}
		}
	}
	return out
}
