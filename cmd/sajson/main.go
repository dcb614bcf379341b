package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ddvk/sajson/defcache"
	"github.com/ddvk/sajson/samjson"
	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

const usage = "usage: sajson sam_path\n"

var errUsage = errors.New("wrong number of arguments")

func newRootCommand(cache *defcache.Cache) *cobra.Command {
	return &cobra.Command{
		Use:   "sajson sam_path",
		Short: "Convert a SuperAnim .sam file to JSON",
		// the only argument is a path, anything starting with a dash included
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errUsage
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return convert(cache, args[0], cmd.OutOrStdout())
		},
	}
}

func convert(cache *defcache.Cache, path string, out io.Writer) error {
	entry, err := cache.FetchOrLoad(path)
	if err != nil {
		return err
	}
	log.WithField("generation", entry.Generation).Debug(entry.Definition)
	return samjson.Write(out, entry.Definition)
}

// run executes the command and returns the process exit code
func run(args []string, stdout io.Writer) int {
	cache := defcache.New()
	defer cache.Purge()

	cmd := newRootCommand(cache)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)

	err := cmd.Execute()
	if errors.Is(err, errUsage) {
		fmt.Fprint(stdout, usage)
		return 1
	}
	if err != nil {
		log.Error(err)
		return 1
	}
	return 0
}

func setupLogging() {
	prefixed := &prefixed.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
		ForceFormatting: true,
		ForceColors:     isatty.IsTerminal(os.Stderr.Fd()),
	}
	log.SetFormatter(prefixed)
	// stdout carries the document
	log.SetOutput(os.Stderr)
	log.SetLevel(log.InfoLevel)
}

func main() {
	setupLogging()
	os.Exit(run(os.Args[1:], os.Stdout))
}
