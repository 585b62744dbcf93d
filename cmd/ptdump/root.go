package main

import (
	"fmt"
	"io"

	"github.com/bastiangx/wordpack/pkg/dictionary"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var debug bool

// newRootCmd is the root command; subcommands take the dictionary file as
// their first argument.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "ptdump",
		Short:        "Inspect packed trie dictionary files",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debug {
				log.SetLevel(log.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "debug logging")

	root.AddCommand(newInfoCmd(), newWordsCmd(), newQueryCmd(), newFuseCmd())
	return root
}

func openDict(path string) (*dictionary.Dictionary, error) {
	dict, err := dictionary.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	log.Debug("loaded", "path", path, "bytes", dict.Size())
	return dict, nil
}

func printResult(w io.Writer, word string, res *dictionary.QueryResult) {
	if res == nil {
		fmt.Fprintf(w, "%s: not found\n", word)
		return
	}
	if res.Valid {
		fmt.Fprintf(w, "%s: word freq=%d\n", res.Word, res.Frequency)
	} else {
		fmt.Fprintf(w, "%s: not a word\n", res.Word)
	}
	for i, s := range res.Suggestions {
		fmt.Fprintf(w, "  %2d. %-24s %3d\n", i+1, s.Word, s.Frequency)
	}
}
