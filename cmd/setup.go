package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mlihgenel/videoclipper-cli/internal/config"
	"github.com/mlihgenel/videoclipper-cli/internal/installer"
	"github.com/mlihgenel/videoclipper-cli/internal/ui"
)

var (
	setupInstall  bool
	setupTargetMB float64
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Bağımlılıkları kontrol et ve varsayılanları ayarla",
	Long: `FFmpeg/FFprobe kurulumunu kontrol eder, eksikse paket yöneticisi
üzerinden kurulum önerir veya --install ile otomatik kurar. İsteğe bağlı
olarak varsayılan çıktı dizini ve hedef boyut kaydedilir.

Örnekler:
  videoclipper-cli setup
  videoclipper-cli setup --install
  videoclipper-cli setup -o ~/Videos/clips --size 10`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)

	setupCmd.Flags().BoolVar(&setupInstall, "install", false, "Eksik bağımlılıkları otomatik kur")
	setupCmd.Flags().Float64Var(&setupTargetMB, "size", 0, "Varsayılan hedef boyutu kaydet (MB)")
}

func runSetup(cmd *cobra.Command, args []string) error {
	missing := installer.MissingTools()

	if len(missing) == 0 {
		ui.PrintSuccess("FFmpeg ve FFprobe kurulu")
	} else {
		ui.PrintWarning("Eksik bağımlılıklar: " + strings.Join(missing, ", "))

		info := installer.FFmpegInstallInfo()
		if setupInstall {
			if _, err := installer.InstallFFmpeg(); err != nil {
				ui.PrintError(err.Error())
				return err
			}
			ui.PrintSuccess("FFmpeg kuruldu")
		} else if info.Supported {
			ui.PrintInfo("Kurmak için: " + info.Description)
			ui.PrintInfo("veya: videoclipper-cli setup --install")
		} else {
			ui.PrintInfo("Manuel kurulum: " + info.ManualURL)
		}
	}

	if outputDir != "" || setupTargetMB > 0 {
		if err := config.SetDefaults(outputDir, setupTargetMB); err != nil {
			ui.PrintError(fmt.Sprintf("Yapılandırma kaydedilemedi: %v", err))
			return err
		}
		if outputDir != "" {
			ui.PrintSuccess("Varsayılan çıktı dizini: " + outputDir)
		}
		if setupTargetMB > 0 {
			ui.PrintSuccess(fmt.Sprintf("Varsayılan hedef boyut: %g MB", setupTargetMB))
		}
	}

	return nil
}
