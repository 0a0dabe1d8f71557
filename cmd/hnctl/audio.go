package main

import (
	"fmt"

	"hn-digest/internal/storage"

	"github.com/spf13/cobra"
)

var deleteAudioCmd = &cobra.Command{
	Use:   "delete-audio <object>",
	Short: "从对象存储删除音频，可以传对象名或完整链接",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeleteAudio,
}

var listAudioCmd = &cobra.Command{
	Use:   "list-audio [prefix]",
	Short: "列出对象存储中的音频",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runListAudio,
}

func init() {
	rootCmd.AddCommand(deleteAudioCmd)
	rootCmd.AddCommand(listAudioCmd)
}

func runDeleteAudio(cmd *cobra.Command, args []string) error {
	client, err := storage.NewMinioClient(&cfg.MinIO)
	if err != nil {
		return err
	}

	objectName := storage.ObjectNameFromURL(args[0])
	exists, err := client.ObjectExists(cmd.Context(), objectName)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("文件 %s 不存在", objectName)
	}
	if err := client.DeleteFile(cmd.Context(), objectName); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "文件 %s 已删除\n", objectName)
	return nil
}

func runListAudio(cmd *cobra.Command, args []string) error {
	client, err := storage.NewMinioClient(&cfg.MinIO)
	if err != nil {
		return err
	}

	prefix := ""
	if len(args) == 1 {
		prefix = args[0]
	}
	names, err := client.ListFiles(cmd.Context(), prefix)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}
