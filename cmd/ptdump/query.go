package main

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func newQueryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query <file> <word>...",
		Short: "Exact lookup, no corrections",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dict, err := openDict(args[0])
			if err != nil {
				return err
			}
			for _, word := range args[1:] {
				res, err := dict.Query(word)
				if err != nil {
					return err
				}
				printResult(cmd.OutOrStdout(), word, res)
			}
			return nil
		},
	}
}

func newFuseCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "fuse <file> <word>...",
		Short: "Lookup with case retry and one-typo correction",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dict, err := openDict(args[0])
			if err != nil {
				return err
			}
			for _, word := range args[1:] {
				ctx, cancel := cmd.Context(), context.CancelFunc(func() {})
				if timeout > 0 {
					ctx, cancel = context.WithTimeout(ctx, timeout)
				}
				start := time.Now()
				res, err := dict.FuseQuery(ctx, word)
				cancel()
				if errors.Is(err, context.DeadlineExceeded) {
					log.Warn("search cut short", "word", word, "after", time.Since(start))
				} else if err != nil {
					return err
				}
				printResult(cmd.OutOrStdout(), word, res)
				log.Debug("fuse", "word", word, "took", time.Since(start))
			}
			return nil
		},
	}
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 0, "bound each search (0 for none)")
	return cmd
}
