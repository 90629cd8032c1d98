package cli

import (
	"fmt"
)

// RunOptions contains all the configuration for the Run command.
type RunOptions struct {
	RepoPath   string
	ConfigPath string
	File       string
	Block      string
	Headless   bool
	Watch      bool
	JSON       bool
	Debug      bool
	NoColor    bool
	Fast       bool
	RedisURL   string
}

func (o RunOptions) project() ProjectOptions {
	return ProjectOptions{
		Dir:        o.RepoPath,
		ConfigPath: o.ConfigPath,
		RedisURL:   o.RedisURL,
		Debug:      o.Debug,
	}
}

// Execute handles the 'run' command logic, dispatching to Session or Watch mode.
func Execute(opts RunOptions) error {
	if opts.Watch {
		if opts.Headless {
			return fmt.Errorf("--watch and --headless cannot be used together")
		}
		if opts.JSON {
			return fmt.Errorf("--watch and --json cannot be used together")
		}
		return RunWatch(opts)
	}
	return RunSession(opts)
}
