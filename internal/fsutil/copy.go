package fsutil

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// Skip reports whether a slash-separated path relative to the copy root
// should be left out. Returning true for a directory skips its subtree.
type Skip func(rel string, info os.FileInfo) bool

// CopyDir copies the directory tree at srcDir on the local disk into destDir.
func CopyDir(srcDir, destDir string, skip Skip) (int, error) {
	return CopyTree(osfs.New(srcDir), "/", destDir, skip)
}

// CopyTree copies root from src (any billy filesystem: disk, in-memory
// git worktree, chroot) into destDir on the local disk. Regular files keep
// their permission bits and symlinks are recreated. It returns the number
// of regular files written.
func CopyTree(src billy.Filesystem, root, destDir string, skip Skip) (int, error) {
	root = path.Clean("/" + filepath.ToSlash(root))
	files := 0

	err := util.Walk(src, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel := strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(p)), root)
		rel = strings.TrimPrefix(rel, "/")
		if rel != "" && skip != nil && skip(rel, info) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		target, err := SafeJoin(destDir, rel)
		if err != nil {
			return err
		}

		switch {
		case info.IsDir():
			return os.MkdirAll(target, dirPerm(info.Mode()))
		case info.Mode()&os.ModeSymlink != 0:
			link, err := src.Readlink(p)
			if err != nil {
				return fmt.Errorf("failed to read symlink %s: %w", p, err)
			}
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("failed to create parent directory: %w", err)
			}
			return os.Symlink(link, target)
		case info.Mode().IsRegular():
			if err := copyFile(src, p, target, info.Mode()); err != nil {
				return err
			}
			files++
			return nil
		default:
			return nil
		}
	})
	if err != nil {
		return files, err
	}

	return files, nil
}

// SafeJoin joins rel onto base and fails if the result escapes base.
func SafeJoin(base, rel string) (string, error) {
	cleanBase := filepath.Clean(base)
	target := filepath.Join(cleanBase, filepath.FromSlash(rel))
	r, err := filepath.Rel(cleanBase, target)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(os.PathSeparator)) || filepath.IsAbs(r) {
		return "", fmt.Errorf("illegal file path: %s", rel)
	}
	return target, nil
}

// Exists reports whether anything (file, directory, dangling symlink) is at p.
func Exists(p string) (bool, error) {
	_, err := os.Lstat(p)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func copyFile(src billy.Filesystem, from, to string, mode os.FileMode) error {
	in, err := src.Open(from)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", from, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(to), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	out, err := os.OpenFile(to, os.O_CREATE|os.O_WRONLY|os.O_EXCL, mode.Perm()|0600)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", to, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to write file %s: %w", to, err)
	}
	return out.Close()
}

func dirPerm(mode os.FileMode) os.FileMode {
	perm := mode.Perm()
	if perm == 0 {
		return 0755
	}
	return perm | 0700
}
