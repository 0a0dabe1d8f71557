package main

import (
	"hn-digest/internal/models"

	"github.com/spf13/cobra"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich <url>",
	Short: "加工单篇文章，输出摘要和音频链接",
	Args:  cobra.ExactArgs(1),
	RunE:  runEnrich,
}

func init() {
	rootCmd.AddCommand(enrichCmd)

	enrichCmd.Flags().String("topic", "", "相关主题，默认使用 url")
	enrichCmd.Flags().Bool("no-summary", false, "不生成摘要")
	enrichCmd.Flags().Bool("no-speech", false, "不生成朗读音频")
	enrichCmd.Flags().Bool("no-podcast", false, "不生成播客")
}

func enrichOptions(cmd *cobra.Command) models.EnrichmentOptions {
	noSummary, _ := cmd.Flags().GetBool("no-summary")
	noSpeech, _ := cmd.Flags().GetBool("no-speech")
	noPodcast, _ := cmd.Flags().GetBool("no-podcast")
	return models.EnrichmentOptions{Summary: !noSummary, Speech: !noSpeech, Podcast: !noPodcast}
}

func runEnrich(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	topic, _ := cmd.Flags().GetString("topic")
	result := a.Enricher.Run(cmd.Context(), models.EnrichmentRequest{
		Topic:   topic,
		URL:     args[0],
		Options: enrichOptions(cmd),
	})
	return printJSON(cmd.OutOrStdout(), result)
}
