package ingest

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"evewatch/internal/domain/watch"
	"evewatch/internal/errs"
	"evewatch/internal/ports"
)

const defaultWatcherTimeoutSeconds = 120

type watcherCommand struct {
	Program        string   `toml:"program"`
	Args           []string `toml:"args"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

type watcherCatalog struct {
	Version  int                       `toml:"version"`
	Workdir  string                    `toml:"workdir"`
	Watchers map[string]watcherCommand `toml:"watchers"`
}

func loadWatcherCatalog(path string) (watcherCatalog, error) {
	resolved := strings.TrimSpace(path)
	if resolved == "" {
		return watcherCatalog{}, errors.New("watchers file is required")
	}

	raw, err := os.ReadFile(resolved)
	if err != nil {
		return watcherCatalog{}, errs.Wrapf(err, "read watchers file %q", resolved)
	}

	var catalog watcherCatalog
	if err := toml.Unmarshal(raw, &catalog); err != nil {
		return watcherCatalog{}, errs.Wrapf(err, "parse watchers file %q", resolved)
	}
	if err := validateWatcherCatalog(catalog); err != nil {
		return watcherCatalog{}, errs.Wrapf(err, "validate watchers file %q", resolved)
	}
	return catalog, nil
}

func validateWatcherCatalog(catalog watcherCatalog) error {
	if catalog.Version != 1 {
		return errors.New("unsupported watchers version: expected version = 1")
	}

	for name, command := range catalog.Watchers {
		if !watch.IsCheckType(name) {
			return fmt.Errorf("watchers.%s: unknown check type", name)
		}
		if strings.TrimSpace(command.Program) == "" {
			return fmt.Errorf("watchers.%s.program is required", name)
		}
	}
	return nil
}

// descriptor resolves the invocation for one check type. A check type absent
// from the catalog simply does not run this cycle.
func (c watcherCatalog) descriptor(checkType watch.CheckType, fallbackDir string) (ports.WatcherDescriptor, bool) {
	command, ok := c.Watchers[string(checkType)]
	if !ok {
		return ports.WatcherDescriptor{}, false
	}

	dir := strings.TrimSpace(c.Workdir)
	if dir == "" {
		dir = fallbackDir
	}

	timeout := command.TimeoutSeconds
	if timeout <= 0 {
		timeout = defaultWatcherTimeoutSeconds
	}

	return ports.WatcherDescriptor{
		Program: strings.TrimSpace(command.Program),
		Args:    command.Args,
		Dir:     dir,
		Timeout: time.Duration(timeout) * time.Second,
	}, true
}
