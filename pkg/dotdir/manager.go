// Package dotdir manages the .novostroy/ and ~/.novostroy directories.
//
// The directory holds config.toml and the conversation state of
// "novostroy ask", which is persisted as a JSON file so a later session can
// resume it.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// dirName is the name of the novostroy directory.
	dirName = ".novostroy"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the target absolute path to a .novostroy/ directory.
// Order of precedence is as follows:
//  1. Provided override
//  2. Local ./.novostroy/ dir
//  3. Home ~/.novostroy/ dir
//  4. If none found, attempt to create ~/.novostroy/ dir
func (m *Manager) Target(overrideDir string) (string, error) {
	var dir string

	switch {
	case overrideDir != "":
		dir = overrideDir

	case m.localDirExists():
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		dir = filepath.Join(cwd, dirName)

	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, dirName)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating novostroy directory %s: %w", dir, err)
	}

	return filepath.Abs(dir)
}

// LocalDir returns ./.novostroy relative to the working directory.
func (m *Manager) LocalDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	return filepath.Join(cwd, dirName), nil
}

// localDirExists checks whether a .novostroy/ directory exists in the current
// working directory.
func (m *Manager) localDirExists() bool {
	cwd, err := os.Getwd()
	if err != nil {
		return false
	}

	info, err := os.Stat(filepath.Join(cwd, dirName))
	return err == nil && info.IsDir()
}

const serveLogFile = "serve.log"

// OpenServeLog opens the append-only JSON log of "novostroy serve" in the
// target .novostroy/ directory.
func (m *Manager) OpenServeLog(overrideDir string) (*os.File, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(filepath.Join(dir, serveLogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening serve log: %w", err)
	}
	return f, nil
}
