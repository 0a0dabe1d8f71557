package main

import (
	"fmt"
	"os"

	"hn-digest/internal/storage"
	"hn-digest/internal/tts"

	"github.com/spf13/cobra"
)

var ttsCmd = &cobra.Command{
	Use:   "tts <text>",
	Short: "合成一段语音，上传后输出链接或写到本地文件",
	Args:  cobra.ExactArgs(1),
	RunE:  runTTS,
}

func init() {
	rootCmd.AddCommand(ttsCmd)

	ttsCmd.Flags().String("voice", "", "发音人，默认使用旁白声音")
	ttsCmd.Flags().StringP("output", "o", "", "写到本地文件而不上传")
}

func runTTS(cmd *cobra.Command, args []string) error {
	service, err := tts.Factory(&cfg.TTS)
	if err != nil {
		return err
	}

	voice, _ := cmd.Flags().GetString("voice")
	if voice == "" {
		voice = cfg.TTS.NarratorVoice
	}
	audio, err := service.SynthesizeSpeech(cmd.Context(), args[0], voice)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if output, _ := cmd.Flags().GetString("output"); output != "" {
		if err := os.WriteFile(output, audio, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %d 字节 (%s)\n", output, len(audio), service.Provider())
		return nil
	}

	uploader, err := storage.NewMinioClient(&cfg.MinIO)
	if err != nil {
		return err
	}
	path, err := tts.WriteTempAudio(cfg.MinIO.CacheDir, audio)
	if err != nil {
		return err
	}
	url, err := uploader.Upload(cmd.Context(), path)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, url)
	return nil
}
