// Package cmd implements the etfw subcommands.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/etnz/etfwatch/config"
	"github.com/etnz/etfwatch/renderer"
	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFile = flag.String("config", "", "Path to the configuration file (YAML). Defaults to $"+config.EnvConfig+", then to "+config.DefaultPath+" when it exists.")
	rootDir    = flag.String("root", "", "Root folder of the archive. Overrides the configuration file.")

	// Verbose enables debug logs.
	Verbose = flag.Bool("v", false, "Verbose output")
)

// Commands are the etfw subcommands.
var Commands = []subcommands.Command{
	&runCmd{},
	&scheduleCmd{},
	&fetchCmd{},
	&diffCmd{},
	&showCmd{},
	&topicCmd{},
}

// loadConfig reads the configuration file and applies the global flags.
func loadConfig() (*config.Config, error) {
	path := *configFile
	if path == "" {
		path = os.Getenv(config.EnvConfig)
	}
	c, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if *rootDir != "" {
		c.Root = *rootDir
	}
	return c, nil
}

// printMarkdown prints markdown, styled when stdout is a terminal.
func printMarkdown(md string) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Print(md)
		return
	}
	out, err := renderer.Terminal(md)
	if err != nil {
		log.Warn().Err(err).Msg("cannot style markdown, printing it raw")
		out = md
	}
	fmt.Print(out)
}

// fail prints an error and returns the failure status.
func fail(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	return subcommands.ExitFailure
}
