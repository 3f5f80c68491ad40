package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/milk9111/storyline/prefabs"
)

func watchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Revalidate stories under the story directory whenever they change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			dir := prefabs.DiskRoot()
			if dir == "" {
				return fmt.Errorf("watch: no story directory set")
			}
			watcher, err := prefabs.NewWatcher(a.log, dir)
			if err != nil {
				return fmt.Errorf("watch %s: %w", dir, err)
			}
			defer watcher.Close()

			out := cmd.OutOrStdout()
			validateAll := func() {
				names, err := prefabs.Stories()
				if err != nil {
					a.log.Error("storyctl: list stories", "error", err)
					return
				}
				for _, name := range names {
					_ = validateOne(out, a.reg, name)
				}
			}
			validateAll()
			a.log.Info("storyctl: watching", "dir", dir)

			for {
				select {
				case <-ctx.Done():
					return nil
				case path, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if isStoryFile(path) {
						if _, err := os.Stat(path); err != nil {
							a.log.Info("storyctl: story removed", "path", path)
							continue
						}
						_ = validateOne(out, a.reg, path)
						continue
					}
					// A script can be shared by any story.
					validateAll()
				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					a.log.Warn("storyctl: watcher error", "error", err)
				}
			}
		},
	}
}

func isStoryFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
