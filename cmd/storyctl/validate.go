package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/milk9111/storyline/prefabs"
	"github.com/milk9111/storyline/story"
	"github.com/milk9111/storyline/storyspec"
)

func validateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [story...]",
		Short: "Build each story and report graph errors; every prefab when none are given",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				names, err := prefabs.Stories()
				if err != nil {
					return err
				}
				args = names
			}
			failed := 0
			for _, arg := range args {
				if err := validateOne(cmd.OutOrStdout(), a.reg, arg); err != nil {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d stories failed validation", failed, len(args))
			}
			return nil
		},
	}
}

func validateOne(out io.Writer, reg *storyspec.Registry, arg string) error {
	spec, err := loadSpec(arg)
	if err == nil {
		var root *story.State
		root, err = storyspec.Build(spec, reg)
		if err == nil {
			n := 0
			story.Walk(root, func(*story.State) { n++ })
			fmt.Fprintf(out, "ok    %s (%d states)\n", spec.Name, n)
			return nil
		}
	}
	fmt.Fprintf(out, "FAIL  %s\n", arg)
	fmt.Fprintf(out, "      %v\n", err)
	return err
}
