package cmd

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	verbose   bool
	outputDir string

	appVersion = "dev"
	appDate    = ""
)

// SetVersionInfo build-time version bilgisini ayarlar
func SetVersionInfo(version, date string) {
	if strings.TrimSpace(version) != "" {
		appVersion = version
	}
	appDate = strings.TrimSpace(date)
	if appDate == "" || appDate == "unknown" {
		appDate = time.Now().Format("2006-01-02 15:04:05")
	}
	rootCmd.Version = appVersion
	rootCmd.SetVersionTemplate(versionTemplate())
}

func versionTemplate() string {
	return fmt.Sprintf(
		"VideoClipper CLI v%s\nTarih:  %s\nGo:     %s\nOS:     %s/%s\n",
		appVersion, appDate, runtime.Version(), runtime.GOOS, runtime.GOARCH,
	)
}

var rootCmd = &cobra.Command{
	Use:   "videoclipper-cli",
	Short: "VideoClipper CLI - hedef boyutlu video kirpma araci",
	Long: `VideoClipper CLI — Videoları hedef dosya boyutuna göre kırpın.

Seçilen zaman aralığını keser ve çıktıyı istenen boyuta (MB) mümkün
olduğunca yakın tutacak şekilde iki geçişli H.264/AAC encode yapar.
Bitrate, ses kanalı ve çözünürlük hedef boyuttan otomatik hesaplanır.

Zaman formatları: HH:MM:SS.mmm, MM:SS veya düz saniye (12.5)

Örnekler:
  videoclipper-cli export klip.mp4 --start 00:01:05 --end 00:02:00 --size 10
  videoclipper-cli export klip.mp4 --start 30 --end 90 --size 8 -o ./cikti
  videoclipper-cli export klip.mp4 --size 25            (tum video)
  videoclipper-cli info klip.mp4
  videoclipper-cli watch ./gelen --size 10`,
	Version: appVersion,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Argümansız çalıştırıldığında interaktif mod başlat
		return RunInteractive()
	},
}

// Execute CLI'ı çalıştırır
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Detaylı çıktı modu")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "", "Çıktı dizini (varsayılan: kaynak dizin)")

	SetVersionInfo(appVersion, appDate)

	// Hata mesajlarını özelleştir
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		fmt.Fprintf(os.Stderr, "Hata: %s\n\n", err.Error())
		cmd.Usage()
		return err
	})
}
