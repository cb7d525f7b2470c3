package game

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/RihoKanda/Abandoned/client/internal/netcfg"
)

// DeviceID picks the identity to log in with: an explicit id, the shared test
// device when enabled, or a random id generated once and kept at path.
func DeviceID(cfg netcfg.Config, path string) (string, error) {
	if id := strings.TrimSpace(cfg.DeviceID); id != "" {
		return id, nil
	}
	if cfg.UseTestDevice {
		return cfg.TestDeviceID, nil
	}

	b, err := os.ReadFile(path)
	if err == nil {
		if id := strings.TrimSpace(string(b)); id != "" {
			return id, nil
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("read device id: %w", err)
	}

	id := uuid.NewString()
	if err := os.WriteFile(path, []byte(id), 0o600); err != nil {
		return "", fmt.Errorf("persist device id: %w", err)
	}
	return id, nil
}
