package game

import (
	"crypto/sha1"
	"encoding/hex"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var unsafeChars = regexp.MustCompile(`[^a-z0-9._-]`)

func sanitize(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.ReplaceAll(s, " ", "_")
	s = unsafeChars.ReplaceAllString(s, "")
	if s == "" {
		s = "default"
	}
	return s
}

// profileID picks a per-binary profile:
// 1) the explicit profile (ABANDONED_PROFILE, e.g. "dev", "prod2")
// 2) <exeBase>-<hash8 of full exe path>
func profileID(profile string) string {
	if p := strings.TrimSpace(profile); p != "" {
		return sanitize(p)
	}
	exe, _ := os.Executable()
	base := strings.TrimSuffix(filepath.Base(exe), filepath.Ext(exe))
	sum := sha1.Sum([]byte(exe)) // exe path is stable per copy
	return sanitize(base) + "-" + hex.EncodeToString(sum[:])[:8]
}

// ConfigDir = OS config dir / Abandoned / profileID()
// Examples:
//
//	Windows: %APPDATA%\Abandoned\<profile>\
//	macOS:   ~/Library/Application Support/Abandoned/<profile>/
//	Linux:   ~/.config/Abandoned/<profile>/
func ConfigDir(profile string) string {
	root, _ := os.UserConfigDir()
	if root == "" {
		home, _ := os.UserHomeDir()
		root = filepath.Join(home, ".config")
	}
	dir := filepath.Join(root, "Abandoned", profileID(profile))
	_ = os.MkdirAll(dir, 0o755)
	return dir
}

func ConfigPath(profile, name string) string {
	return filepath.Join(ConfigDir(profile), name)
}
