package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// MaxBackups bounds how many timestamped copies of the user config are
// retained; older ones are pruned after each successful backup.
const MaxBackups = 3

const backupTimeLayout = "20060102-150405"

// BackupUserConfig copies the user config to a sibling file named
// <config>.bak.<timestamp> and prunes copies beyond MaxBackups.
// Returns ("", nil) when there is no user config to back up.
func BackupUserConfig() (string, error) {
	configPath := GetUserConfigPath()
	if !UserConfigExists() {
		return "", nil
	}

	backupPath := fmt.Sprintf("%s.bak.%s", configPath, time.Now().Format(backupTimeLayout))

	data, err := os.ReadFile(configPath)
	if err != nil {
		return "", fmt.Errorf("failed to read config for backup: %w", err)
	}
	if err := os.WriteFile(backupPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	// Pruning is best-effort; the backup itself already succeeded.
	pruneBackups(configPath)

	return backupPath, nil
}

// ListUserConfigBackups returns the user config's backup files, newest
// first by modification time. A missing config directory yields nil.
func ListUserConfigBackups() ([]string, error) {
	pattern := GetUserConfigPath() + ".bak.*"
	backups, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}

	mtimes := make(map[string]time.Time, len(backups))
	for _, b := range backups {
		if info, err := os.Stat(b); err == nil {
			mtimes[b] = info.ModTime()
		}
	}
	sort.Slice(backups, func(i, j int) bool {
		return mtimes[backups[i]].After(mtimes[backups[j]])
	})

	return backups, nil
}

func pruneBackups(configPath string) {
	backups, err := ListUserConfigBackups()
	if err != nil || len(backups) <= MaxBackups {
		return
	}
	for _, stale := range backups[MaxBackups:] {
		_ = os.Remove(stale)
	}
}

// RestoreUserConfig replaces the user config with the given backup file.
// Any current config is backed up first so a restore is itself reversible.
func RestoreUserConfig(backupPath string) error {
	if _, err := os.Stat(backupPath); err != nil {
		return fmt.Errorf("backup file not found: %w", err)
	}

	// Read before backing up the current config: the backup's pruning
	// could otherwise remove the very file being restored.
	data, err := os.ReadFile(backupPath)
	if err != nil {
		return fmt.Errorf("failed to read backup: %w", err)
	}

	if UserConfigExists() {
		if _, err := BackupUserConfig(); err != nil {
			return fmt.Errorf("failed to backup current config before restore: %w", err)
		}
	}

	if err := os.MkdirAll(GetUserConfigDir(), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(GetUserConfigPath(), data, 0644); err != nil {
		return fmt.Errorf("failed to write restored config: %w", err)
	}

	return nil
}
