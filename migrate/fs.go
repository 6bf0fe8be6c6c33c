package migrate

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
)

// FS is a file system rooted at a directory. All names are relative to it.
type FS struct {
	afero *afero.Afero
	path  string
}

func NewFS(fs afero.Fs, path string) *FS {
	return &FS{
		afero: &afero.Afero{
			Fs: afero.NewBasePathFs(fs, path),
		},
		path: path,
	}
}

func (f *FS) Path() string {
	return f.path
}

func (f *FS) ReadFile(filename string) ([]byte, error) {
	return f.afero.ReadFile(filename)
}

// WriteFile writes data to filename, creating its parents.
func (f *FS) WriteFile(filename string, data []byte) error {
	err := f.afero.MkdirAll(filepath.Dir(filename), 0777)
	if err != nil {
		return err
	}

	return f.afero.WriteFile(filename, data, 0644)
}

// Files returns the files under dir, recursively, whose name satisfies match.
// A missing dir has no files.
func (f *FS) Files(dir string, match func(name string) bool) ([]string, error) {
	exists, err := f.afero.DirExists(dir)
	if err != nil || !exists {
		return nil, err
	}

	var files []string
	err = f.afero.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() || !match(info.Name()) {
			return nil
		}

		files = append(files, p)
		return nil
	})

	sort.Strings(files)
	return files, err
}

// Siblings returns the regular files that sit directly in dir and satisfy match.
func (f *FS) Siblings(dir string, match func(name string) bool) ([]string, error) {
	infos, err := f.afero.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, info := range infos {
		if info.IsDir() || !match(info.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, info.Name()))
	}

	return files, nil
}
