package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	appName   = "netmon"
	dirEnvVar = "NETMON_CONFIG_DIR"
)

// Dir returns the directory holding settings and key bindings.
// NETMON_CONFIG_DIR wins over the platform config directory.
func Dir() string {
	if dir := strings.TrimSpace(os.Getenv(dirEnvVar)); dir != "" {
		return dir
	}
	if base, err := os.UserConfigDir(); err == nil && base != "" {
		return filepath.Join(base, appName)
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, "."+appName)
	}
	return "." + appName
}
