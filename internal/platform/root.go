package platform

import (
	"errors"
	"os"
	"path/filepath"
)

// ConfigFileName is the name of the config file looked up by FindConfig.
const ConfigFileName = "jsonpit.yaml"

// ErrNoConfig is returned by FindConfig when no config file exists between
// the start directory and the filesystem root.
var ErrNoConfig = errors.New("config file not found")

// FindConfig looks upwards from startDir for ConfigFileName and returns
// its absolute path.
func FindConfig(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", ErrNoConfig
}
