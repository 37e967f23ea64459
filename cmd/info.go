package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mlihgenel/videoclipper-cli/internal/planner"
	"github.com/mlihgenel/videoclipper-cli/internal/probe"
	"github.com/mlihgenel/videoclipper-cli/internal/ui"
)

var infoCmd = &cobra.Command{
	Use:   "info <video>",
	Short: "Video hakkında bilgi göster",
	Long: `Videonun süresini, çözünürlüğünü, kare hızını ve dosya boyutunu
gösterir. Export öncesi hedef boyut seçerken fikir verir.`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	stat, err := os.Stat(inputPath)
	if err != nil {
		ui.PrintError(fmt.Sprintf("Dosya bulunamadı: %s", inputPath))
		return err
	}

	if !probe.IsFFprobeAvailable() {
		ui.PrintError("FFprobe bulunamadı! Kurulum için: videoclipper-cli setup")
		return fmt.Errorf("ffprobe bulunamadi")
	}

	source, err := probe.Probe(inputPath)
	if err != nil {
		ui.PrintError(fmt.Sprintf("Video okunamadı: %v", err))
		return err
	}

	fps := "bilinmiyor"
	if source.FrameRate > 0 {
		fps = fmt.Sprintf("%.3g fps", source.FrameRate)
	}

	ui.PrintInfo(fmt.Sprintf("Video: %s", filepath.Base(inputPath)))
	ui.PrintTable(
		[]string{"Alan", "Değer"},
		[][]string{
			{"Süre", planner.FormatSeconds(source.DurationSec)},
			{"Çözünürlük", fmt.Sprintf("%dx%d", source.Width, source.Height)},
			{"Kare hızı", fps},
			{"Boyut", ui.FormatSize(stat.Size())},
			{"Değiştirilme", stat.ModTime().Format(time.DateTime)},
		},
	)
	return nil
}
