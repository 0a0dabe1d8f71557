package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var backfillCmd = &cobra.Command{
	Use:       "backfill <summary|speech|podcast>",
	Short:     "为缺少某个产物的历史文章补齐该产物",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"summary", "speech", "podcast"},
	RunE:      runBackfill,
}

func init() {
	rootCmd.AddCommand(backfillCmd)

	backfillCmd.Flags().Uint64("limit", 50, "最多处理的文章数")
}

func runBackfill(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.OpenDigest(cmd.Context()); err != nil {
		return err
	}
	defer a.Close()

	limit, _ := cmd.Flags().GetUint64("limit")
	updated, err := a.Digest.Backfill(cmd.Context(), args[0], limit)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "已更新 %d 篇文章的 %s\n", updated, args[0])
	return nil
}
