package main

import (
	"errors"
	"fmt"

	"github.com/bastiangx/wordpack/pkg/dictionary"
	"github.com/spf13/cobra"
)

var errLimit = errors.New("limit reached")

func newWordsCmd() *cobra.Command {
	var (
		limit     int
		all       bool
		shortcuts bool
	)
	cmd := &cobra.Command{
		Use:   "words <file>",
		Short: "List stored words in trie order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dict, err := openDict(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printed := 0
			err = dict.Walk(func(e dictionary.Entry) error {
				if !e.IsWord && !all {
					return nil
				}
				mark := ""
				if !e.IsWord {
					mark = " (not a word)"
				}
				fmt.Fprintf(out, "%s\t%d%s\n", e.Word, e.Frequency, mark)
				if shortcuts {
					for _, s := range e.Shortcuts {
						fmt.Fprintf(out, "  -> %s\t%d\n", s.Word, s.Frequency)
					}
				}
				printed++
				if limit > 0 && printed >= limit {
					return errLimit
				}
				return nil
			})
			if errors.Is(err, errLimit) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "stop after n entries (0 for all)")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include not-a-word entries")
	cmd.Flags().BoolVarP(&shortcuts, "shortcuts", "s", false, "print shortcut targets")
	return cmd
}
