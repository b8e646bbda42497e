// Command etfw tracks the daily holdings of ETFs and reports what changed.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path"
	"time"

	_ "time/tzdata"

	"github.com/etnz/etfwatch/cmd"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// completion describes the command line for shell completion.
var completion = &complete.Command{
	Flags: map[string]complete.Predictor{
		"config": predict.Files("*.yaml"),
		"root":   predict.Dirs("*"),
		"v":      predict.Nothing,
	},
	Sub: map[string]*complete.Command{
		"run": {Flags: map[string]complete.Predictor{
			"offline": predict.Nothing,
			"html":    predict.Nothing,
			"j":       predict.Something,
			"q":       predict.Nothing,
		}},
		"schedule": {Flags: map[string]complete.Predictor{
			"at":   predict.Something,
			"tz":   predict.Something,
			"html": predict.Nothing,
			"j":    predict.Something,
		}},
		"fetch": {Args: predict.Something},
		"diff": {
			Flags: map[string]complete.Predictor{"o": predict.Files("*.md")},
			Args:  predict.Files("*.csv"),
		},
		"show":  {Flags: map[string]complete.Predictor{"d": predict.Something}},
		"topic": {Args: predict.Something},
	},
}

func main() {
	completion.Complete("etfw")

	// Environment variables can be kept in a .env file of the working folder.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: cannot read .env: %v\n", err)
	}

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	for _, c := range cmd.Commands {
		commander.Register(c, "")
	}

	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *cmd.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.DefaultContextLogger = &log.Logger

	if name := flag.Arg(0); name != "" && !registered(name) {
		if found, code := cmd.RunExtension(name, flag.Args()[1:]); found {
			os.Exit(code)
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}

// registered reports whether name is a built-in subcommand.
func registered(name string) bool {
	switch name {
	case "help", "flags", "commands":
		return true
	}
	for _, c := range cmd.Commands {
		if c.Name() == name {
			return true
		}
	}
	return false
}
