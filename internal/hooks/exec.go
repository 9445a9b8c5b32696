package hooks

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// CheckCommand verifies that command resolves to an executable file.
func CheckCommand(command string) (string, error) {
	if command == "" {
		return "", fmt.Errorf("hook command is empty")
	}
	path, err := exec.LookPath(command)
	if err != nil {
		return "", fmt.Errorf("hook command not found: %s", command)
	}
	info, err := os.Stat(path)
	if err != nil {
		return path, fmt.Errorf("stat hook command: %w", err)
	}
	if info.IsDir() {
		return path, fmt.Errorf("hook command is a directory: %s", path)
	}
	if runtime.GOOS == "windows" {
		if !isWindowsExecutable(path) {
			return path, fmt.Errorf("hook command is not executable: %s", path)
		}
		return path, nil
	}
	if info.Mode().Perm()&0111 == 0 {
		return path, fmt.Errorf("hook command is not executable: %s", path)
	}
	return path, nil
}

// windowsExecutableExtensions parses PATHEXT into a set of lowercase
// extensions with a leading dot.
func windowsExecutableExtensions() map[string]bool {
	exts := map[string]bool{}
	pathext := os.Getenv("PATHEXT")
	if pathext == "" {
		pathext = ".COM;.EXE;.BAT;.CMD"
	}
	for _, ext := range strings.Split(pathext, ";") {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[strings.ToLower(ext)] = true
	}
	return exts
}

func isWindowsExecutable(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	return windowsExecutableExtensions()[ext]
}
