package build

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/webtree/internal/foundation/errors"
	"git.home.luguber.info/inful/webtree/internal/tree"
)

// TargetPath returns the output file of n.
func (b *Builder) TargetPath(n *tree.Node) string {
	rel := strings.TrimPrefix(n.FullPath(), n.Root().Path())
	return filepath.Join(b.cfg.Output, filepath.FromSlash(rel))
}

// writeOutput writes out to target through a temporary file in the same
// directory, so readers never see partial output.
func (b *Builder) writeOutput(target string, out *tree.Output) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create output directory").
			WithContext("target", target).
			Build()
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), ".webtree-*")
	if err != nil {
		return 0, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create output file").
			WithContext("target", target).
			Build()
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	var n int64
	if out.CopyFrom != "" {
		n, err = b.copySource(tmp, out.CopyFrom)
	} else {
		var w int
		w, err = tmp.Write(out.Data)
		n = int64(w)
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(tmp.Name(), 0o644)
	}
	if err == nil {
		err = os.Rename(tmp.Name(), target)
	}
	if err != nil {
		return 0, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write output").
			WithContext("target", target).
			Build()
	}
	return n, nil
}

func (b *Builder) copySource(w io.Writer, src string) (int64, error) {
	f, err := b.fsys.Open(src)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()
	return io.Copy(w, f)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// within returns child relative to parent when child lies inside parent.
func within(parent, child string) (string, bool) {
	pa, err := filepath.Abs(parent)
	if err != nil {
		return "", false
	}
	ca, err := filepath.Abs(child)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(pa, ca)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
