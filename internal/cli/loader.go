package cli

import (
	"fmt"

	"github.com/mfshell/shellstore/internal/config"
	"github.com/mfshell/shellstore/internal/coordinator"
)

// openStore builds and initializes a coordinator for one CLI invocation.
// Manifest values apply first; explicit flags override them. The broadcast
// channel is disabled so the storage watcher is the sync path, matching
// how separate processes actually reach each other.
func openStore(opts *RootOptions) (*coordinator.Coordinator, error) {
	c := coordinator.New(coordinator.Deps{NoChannel: true})

	initOpts := coordinator.Options{}
	if opts.ConfigPath != "" {
		manifest, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		if err := manifest.Apply(c); err != nil {
			return nil, fmt.Errorf("apply manifest: %w", err)
		}
		initOpts = manifest.Options()
	}

	if opts.StorageKey != "" {
		initOpts.StorageKey = opts.StorageKey
	}
	if opts.Persist {
		initOpts.EnablePersistence = true
	}
	if opts.Encrypt {
		initOpts.EnableEncryption = true
	}

	c.Init(initOpts)
	if c.State() != coordinator.StateInitialized {
		return nil, fmt.Errorf("store failed to initialize")
	}
	return c, nil
}
