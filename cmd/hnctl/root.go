package main

import (
	"encoding/json"
	"io"

	"hn-digest/config"
	"hn-digest/internal/app"

	"github.com/spf13/cobra"
)

var (
	cfg     *config.Config
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "hnctl",
	Short: "HN Digest 运维命令行",
	Long: `hnctl 直接调用文章加工流程，用于单篇调试、补齐历史数据和管理音频对象。

示例:
  hnctl enrich https://example.com/post --no-podcast
  hnctl backfill speech --limit 20
  hnctl tts "hello world" --voice en-US-AvaMultilingualNeural
  hnctl delete-audio 3f1c.mp3`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.LoadConfig()
		if verbose {
			cfg.Log.Level = "debug"
		}
		config.SetupLogging(cfg.Log)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "输出调试日志")
}

// newApp 按当前配置组装组件
func newApp() (*app.App, error) {
	return app.New(cfg)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
