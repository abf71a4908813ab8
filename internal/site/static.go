package site

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// copyDirContents mirrors src into dst, creating every directory and
// copying every file. It records the copied files, relative to dst and
// slash separated, in copied and returns the number of bytes written.
func copyDirContents(fsys afero.Fs, src, dst string, copied map[string]bool) (int64, error) {
	var total int64
	err := afero.Walk(fsys, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path for %s: %w", path, err)
		}
		dstPath := filepath.Join(dst, relPath)

		if info.IsDir() {
			if err := fsys.MkdirAll(dstPath, os.ModePerm); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dstPath, err)
			}
			return nil
		}
		n, err := copyFile(fsys, path, dstPath, info.Mode())
		if err != nil {
			return fmt.Errorf("failed to copy file from %s to %s: %w", path, dstPath, err)
		}
		total += n
		copied[filepath.ToSlash(relPath)] = true
		return nil
	})
	return total, err
}

// copyFile copies a single file from srcFile to dstFile, keeping its mode.
func copyFile(fsys afero.Fs, srcFile, dstFile string, mode os.FileMode) (int64, error) {
	srcF, err := fsys.Open(srcFile)
	if err != nil {
		return 0, fmt.Errorf("failed to open source file %s: %w", srcFile, err)
	}
	defer srcF.Close()

	if err := fsys.MkdirAll(filepath.Dir(dstFile), os.ModePerm); err != nil {
		return 0, fmt.Errorf("failed to create destination directory %s: %w", filepath.Dir(dstFile), err)
	}

	dstF, err := fsys.OpenFile(dstFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return 0, fmt.Errorf("failed to create destination file %s: %w", dstFile, err)
	}
	defer dstF.Close()

	n, err := io.Copy(dstF, srcF)
	if err != nil {
		return n, fmt.Errorf("failed to copy data from %s to %s: %w", srcFile, dstFile, err)
	}
	return n, nil
}
