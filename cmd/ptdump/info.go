package main

import (
	"fmt"

	"github.com/bastiangx/wordpack/pkg/dictionary"
	"github.com/spf13/cobra"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Show the header and word count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			header, err := dictionary.ValidateFile(args[0])
			if err != nil {
				return err
			}
			dict, err := openDict(args[0])
			if err != nil {
				return err
			}

			var words, notWords, shortcuts int
			err = dict.Walk(func(e dictionary.Entry) error {
				if e.IsWord {
					words++
				} else {
					notWords++
				}
				shortcuts += len(e.Shortcuts)
				return nil
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "file:       %s\n", args[0])
			fmt.Fprintf(out, "magic:      %#08x\n", header.Magic)
			fmt.Fprintf(out, "version:    %d\n", header.Version)
			fmt.Fprintf(out, "bytes:      %d\n", dict.Size())
			fmt.Fprintf(out, "words:      %d\n", words)
			fmt.Fprintf(out, "not-words:  %d\n", notWords)
			fmt.Fprintf(out, "shortcuts:  %d\n", shortcuts)
			return nil
		},
	}
}
