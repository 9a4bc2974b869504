package extraction

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archives"
)

var (
	// ErrNoModel means the archive holds no .glb file.
	ErrNoModel = errors.New("no GLB model found in archive")
	// ErrMultipleModels means the archive holds more than one .glb file.
	ErrMultipleModels = errors.New("multiple GLB models found in archive")
)

// ExtractArchive extracts the contents of an archive to a temporary directory.
// The caller removes the returned directory.
func ExtractArchive(ctx context.Context, archivePath string) ([]string, string, error) {
	destDir, err := os.MkdirTemp("", "extract-*")
	if err != nil {
		return nil, "", err
	}

	fsys, err := archives.FileSystem(ctx, archivePath, nil)
	if err != nil {
		os.RemoveAll(destDir)
		return nil, "", err
	}

	var files []string
	err = fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		destPath := filepath.Join(destDir, path)
		if !strings.HasPrefix(destPath, filepath.Clean(destDir)+string(os.PathSeparator)) {
			return fmt.Errorf("illegal path in archive: %s", path)
		}
		if err := copyEntry(fsys, path, destPath); err != nil {
			return err
		}
		files = append(files, destPath)
		return nil
	})
	if err != nil {
		os.RemoveAll(destDir)
		return nil, "", err
	}

	return files, destDir, nil
}

func copyEntry(fsys fs.FS, path, destPath string) error {
	reader, err := fsys.Open(path)
	if err != nil {
		return err
	}
	defer reader.Close()

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return err
	}
	outFile, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer outFile.Close()

	_, err = io.Copy(outFile, reader)
	return err
}

// SingleGLB picks the one .glb file among extracted files, skipping system
// and hidden files.
func SingleGLB(files []string) (string, error) {
	var found string
	for _, path := range files {
		name := filepath.Base(path)
		if ShouldIgnoreFile(name) {
			continue
		}
		if strings.ToLower(filepath.Ext(name)) != ".glb" {
			continue
		}
		if found != "" {
			return "", ErrMultipleModels
		}
		found = path
	}
	if found == "" {
		return "", ErrNoModel
	}
	return found, nil
}

// ShouldIgnoreFile checks if a file should be ignored (system files, hidden files, etc.)
func ShouldIgnoreFile(filename string) bool {
	// macOS resource forks and other dotfiles, .DS_Store included
	if strings.HasPrefix(filename, ".") {
		return true
	}
	if strings.ToLower(filename) == "thumbs.db" {
		return true
	}
	return filename == "" || strings.HasSuffix(filename, "/")
}
