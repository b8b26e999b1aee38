package appdir

import (
	"fmt"
	"os"
	"path"
	"sync"
)

const dirName = ".xlib-go"

var (
	appDirCache string
	once        sync.Once
)

// AppDir returns ~/.xlib-go, or a directory under the system temp dir when the
// home directory cannot be resolved.
func AppDir() string {
	once.Do(func() {
		home, err := os.UserHomeDir()
		if err != nil {
			home = os.TempDir()
		}
		appDirCache = path.Join(home, dirName)
	})
	return appDirCache
}

// Ensure creates the application directory if needed and returns it.
func Ensure() (string, error) {
	dir := AppDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("appdir: cannot create %s: %w", dir, err)
	}
	return dir, nil
}

// Path joins name onto the application directory.
func Path(name string) string {
	return path.Join(AppDir(), name)
}
