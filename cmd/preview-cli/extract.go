package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-preview/pkg/placeholder"
)

func newExtractCmd(a *app) *cobra.Command {
	var unique bool
	cmd := &cobra.Command{
		Use:   "extract [text...]",
		Short: "Print the placeholders referenced by a control value",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := placeholder.Extract(strings.Join(args, " "))
			if unique {
				names = placeholder.Unique(names)
			}
			for _, name := range names {
				if _, err := fmt.Fprintln(a.out, name); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&unique, "unique", true, "Drop repeated placeholders")
	return cmd
}
