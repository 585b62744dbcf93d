package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/charmbracelet/log"
)

// DictExt is the extension of dictionary files.
const DictExt = ".dict"

// PathResolver finds the dictionary file relative to the binary, the
// working directory or the user config directory.
type PathResolver struct {
	executablePath string
	executableDir  string
	homeDir        string
	configDir      string
}

// NewPathResolver creates a new path resolver that determines the executable location
func NewPathResolver() (*PathResolver, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}
	// Resolve any symlinks to get the actual binary location
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}

	pr := newPathResolver(execPath, homeDir)
	log.Debugf("PathResolver initialized: exec=%s, configDir=%s", execPath, pr.configDir)
	return pr, nil
}

func newPathResolver(execPath, homeDir string) *PathResolver {
	return &PathResolver{
		executablePath: execPath,
		executableDir:  filepath.Dir(execPath),
		homeDir:        homeDir,
		configDir:      userConfigDir(homeDir),
	}
}

// userConfigDir returns the appropriate config directory for the platform
func userConfigDir(homeDir string) string {
	switch runtime.GOOS {
	case "linux":
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, "wordpack")
		}
		return filepath.Join(homeDir, ".config", "wordpack")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "wordpack")
		}
		return filepath.Join(homeDir, "AppData", "Roaming", "wordpack")
	default:
		return filepath.Join(homeDir, ".config", "wordpack")
	}
}

// ResolveDictFile finds the dictionary named by userPath. It tries, in order:
// 1. userPath itself if absolute
// 2. Relative to executable directory
// 3. Relative to current working directory
// 4. The base name under exec/data, exec/../data and config/data
//
// A candidate that is a directory resolves to the first *.dict file in it.
func (pr *PathResolver) ResolveDictFile(userPath string) (string, error) {
	for _, candidate := range pr.dictCandidates(userPath) {
		if path, ok := dictFileAt(candidate); ok {
			log.Debugf("Found dictionary: %s", path)
			return path, nil
		}
		log.Debugf("Dictionary candidate not valid: %s", candidate)
	}
	return "", fmt.Errorf("no %s file found for %q: %w", DictExt, userPath, os.ErrNotExist)
}

func (pr *PathResolver) dictCandidates(userPath string) []string {
	if filepath.IsAbs(userPath) {
		return []string{userPath}
	}

	candidates := []string{filepath.Join(pr.executableDir, userPath)}
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, userPath))
	}

	base := filepath.Base(userPath)
	for _, dir := range []string{
		filepath.Join(pr.executableDir, "data"),
		filepath.Join(filepath.Dir(pr.executableDir), "data"),
		filepath.Join(pr.configDir, "data"),
	} {
		candidates = append(candidates, filepath.Join(dir, base), dir)
	}
	return candidates
}

// dictFileAt reports the dictionary at path: path itself when it is a
// regular file, or the first *.dict in it when it is a directory.
func dictFileAt(path string) (string, bool) {
	stat, err := os.Stat(path)
	if err != nil {
		return "", false
	}
	if !stat.IsDir() {
		return path, true
	}
	files := ListDictFiles(path)
	if len(files) == 0 {
		return "", false
	}
	return files[0], true
}

// ListDictFiles returns the *.dict files in dir, sorted.
func ListDictFiles(dir string) []string {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+DictExt))
	if err != nil {
		return nil
	}
	slices.Sort(matches)
	return matches
}
