// Command storyctl checks, prints and runs story prefabs without a window.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/milk9111/storyline/config"
	"github.com/milk9111/storyline/logging"
	"github.com/milk9111/storyline/prefabs"
	"github.com/milk9111/storyline/storyspec"
)

type app struct {
	cfg config.Config
	log *slog.Logger
	reg *storyspec.Registry
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	a := &app{}
	var (
		storyDir string
		logLevel string
		logJSON  bool
	)

	root := &cobra.Command{
		Use:           "storyctl",
		Short:         "Validate, inspect and simulate story prefabs",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("story-dir") {
				cfg.StoryDir = storyDir
			}
			if flags.Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if flags.Changed("log-json") {
				cfg.LogJSON = logJSON
			}

			log, err := logging.New(logging.Options{Level: cfg.LogLevel, JSON: cfg.LogJSON, Output: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			prefabs.SetDiskRoot(cfg.StoryDir)
			a.cfg = cfg
			a.log = log
			a.reg = storyspec.NewRegistry()
			return nil
		},
	}
	root.PersistentFlags().StringVar(&storyDir, "story-dir", "prefabs", "directory whose stories/ and scripts/ override the embedded prefabs")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")
	root.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON")

	root.AddCommand(validateCmd(a))
	root.AddCommand(dumpCmd(a))
	root.AddCommand(runCmd(a))
	root.AddCommand(watchCmd(a))
	root.AddCommand(listCmd(a))
	return root
}

// loadSpec accepts a path to a YAML file or the name of a story prefab.
func loadSpec(arg string) (*prefabs.StorySpec, error) {
	if strings.ContainsRune(arg, filepath.Separator) || strings.HasSuffix(arg, ".yaml") || strings.HasSuffix(arg, ".yml") {
		if _, err := os.Stat(arg); err == nil {
			return prefabs.LoadStorySpecFile(arg)
		}
	}
	return prefabs.LoadStorySpec(arg)
}

func listCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List story prefabs and the condition and action names stories may use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stories, err := prefabs.Stories()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "stories:    %s\n", strings.Join(stories, ", "))
			fmt.Fprintf(out, "conditions: %s\n", strings.Join(a.reg.ConditionNames(), ", "))
			fmt.Fprintf(out, "actions:    %s\n", strings.Join(a.reg.ActionNames(), ", "))
			return nil
		},
	}
}
