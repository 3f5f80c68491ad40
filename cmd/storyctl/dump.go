package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.design/x/clipboard"

	"github.com/milk9111/storyline/story"
	"github.com/milk9111/storyline/storyspec"
)

func dumpCmd(a *app) *cobra.Command {
	var copyOut bool
	cmd := &cobra.Command{
		Use:   "dump <story>",
		Short: "Print the state graph of a story",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := loadSpec(args[0])
			if err != nil {
				return err
			}
			root, err := storyspec.Build(spec, a.reg)
			if err != nil {
				return err
			}
			out := story.Dump(root)
			fmt.Fprint(cmd.OutOrStdout(), out)

			if copyOut {
				if err := clipboard.Init(); err != nil {
					return fmt.Errorf("clipboard: %w", err)
				}
				clipboard.Write(clipboard.FmtText, []byte(out))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&copyOut, "copy", false, "also copy the dump to the clipboard")
	return cmd
}
