package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mlihgenel/videoclipper-cli/internal/config"
	"github.com/mlihgenel/videoclipper-cli/internal/encoder"
	"github.com/mlihgenel/videoclipper-cli/internal/export"
	"github.com/mlihgenel/videoclipper-cli/internal/planner"
	"github.com/mlihgenel/videoclipper-cli/internal/probe"
	"github.com/mlihgenel/videoclipper-cli/internal/profile"
	"github.com/mlihgenel/videoclipper-cli/internal/ui"
)

var (
	exportStart      string
	exportEnd        string
	exportSizeMB     float64
	exportPreset     string
	exportName       string
	exportOutputFile string
	exportOnConflict string
	exportDryRun     bool
)

var exportCmd = &cobra.Command{
	Use:   "export <video>",
	Short: "Videoyu kırpıp hedef boyuta encode et",
	Long: `Verilen videonun seçilen zaman aralığını keser ve iki geçişli
H.264/AAC encode ile hedef dosya boyutuna (MB) sıkıştırır.

--start ve --end değerleri HH:MM:SS.mmm, MM:SS veya düz saniye olabilir.
--end verilmezse video sonuna kadar kırpılır. Çıktı hedeften %8'den fazla
saparsa düzeltilmiş bütçeyle otomatik olarak yeniden encode edilir.

Örnekler:
  videoclipper-cli export klip.mp4 --start 00:01:05 --end 00:02:00 --size 10
  videoclipper-cli export klip.mp4 --start 30 --size 8 -o ./cikti
  videoclipper-cli export klip.mp4 --size 25 --name ozet --on-conflict overwrite`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportStart, "start", "0", "Başlangıç zamanı (HH:MM:SS.mmm, MM:SS veya saniye)")
	exportCmd.Flags().StringVar(&exportEnd, "end", "", "Bitiş zamanı (varsayılan: video sonu)")
	exportCmd.Flags().Float64Var(&exportSizeMB, "size", 0, "Hedef çıktı boyutu MB (varsayılan: yapılandırmadan)")
	exportCmd.Flags().StringVar(&exportPreset, "preset", "", "Hazır hedef boyut preset'i: "+strings.Join(profile.Names(), ", "))
	exportCmd.Flags().StringVarP(&exportName, "name", "n", "", "Çıktı dosyası için özel temel ad")
	exportCmd.Flags().StringVar(&exportOutputFile, "output-file", "", "Çıktı yolunu tam olarak belirle (adlandırmayı atlar)")
	exportCmd.Flags().StringVar(&exportOnConflict, "on-conflict", export.ConflictVersioned, "Çıktı çakışma politikası: overwrite, skip, versioned")
	exportCmd.Flags().BoolVar(&exportDryRun, "dry-run", false, "Encode etmeden planı göster")
}

func runExport(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	if _, err := os.Stat(inputPath); err != nil {
		ui.PrintError(fmt.Sprintf("Dosya bulunamadı: %s", inputPath))
		return err
	}

	targetMB := exportSizeMB
	if exportPreset != "" {
		preset, err := profile.Resolve(exportPreset)
		if err != nil {
			ui.PrintError(err.Error())
			return err
		}
		if targetMB <= 0 {
			targetMB = preset.TargetMB
		}
		if !cmd.Flags().Changed("on-conflict") {
			exportOnConflict = preset.OnConflict
		}
		ui.PrintInfo(fmt.Sprintf("Preset: %s (%s)", preset.Name, preset.Desc))
	}
	if targetMB <= 0 {
		targetMB = config.GetDefaultTargetMB()
		ui.PrintInfo(fmt.Sprintf("Hedef boyut verilmedi, varsayılan kullanılıyor: %g MB", targetMB))
	}

	if !probe.IsFFprobeAvailable() || !encoder.IsFFmpegAvailable() {
		ui.PrintError("FFmpeg/FFprobe bulunamadı! Kurulum için: videoclipper-cli setup")
		return fmt.Errorf("ffmpeg bulunamadi")
	}

	source, err := probe.Probe(inputPath)
	if err != nil {
		ui.PrintError(fmt.Sprintf("Video okunamadı: %v", err))
		return err
	}

	trim, err := parseTrimRange(exportStart, exportEnd, source)
	if err != nil {
		ui.PrintError(fmt.Sprintf("Zaman aralığı geçersiz: %v", err))
		return err
	}

	outputPath, err := resolveExportOutput(inputPath, trim, targetMB)
	if err != nil {
		ui.PrintError(err.Error())
		return err
	}
	if outputPath == "" {
		ui.PrintWarning("Çıktı zaten mevcut, atlanıyor (--on-conflict skip)")
		return nil
	}

	cfg := planner.DefaultConfig()

	if exportDryRun {
		return printPlan(source, trim, targetMB, cfg, outputPath)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	enc := &encoder.TwoPassEncoder{FFmpegPath: encoder.FindFFmpeg(), Verbose: verbose}
	sup := export.NewSupervisor(cfg, enc.Encode)

	ui.PrintExport(inputPath, outputPath)
	ui.PrintInfo(fmt.Sprintf("Aralık: %s → %s (%.1f sn), hedef %g MB",
		planner.FormatSeconds(trim.StartSec), planner.FormatSeconds(trim.EndSec), trim.Duration(), targetMB))

	started := time.Now()
	result, err := sup.Run(ctx, export.Request{
		SourcePath: inputPath,
		Source:     source,
		Trim:       trim,
		TargetMB:   targetMB,
		OutputPath: outputPath,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			ui.PrintWarning("Export iptal edildi, çıktı bırakılmadı")
			return err
		}
		ui.PrintError(fmt.Sprintf("Export başarısız: %v", err))
		return err
	}

	ui.PrintSuccess(fmt.Sprintf("Export tamamlandı: %s", filepath.Base(result.OutputPath)))
	ui.PrintSize(result.ActualBytes)
	ui.PrintDuration(time.Since(started))

	if verbose || result.Attempts > 1 {
		ui.PrintInfo(fmt.Sprintf("Deneme sayısı: %d (video %d kbps, ses %d kbps)",
			result.Attempts, result.Plan.VideoKbps, result.Plan.AudioKbps))
	}
	if !result.WithinTolerance {
		delta := float64(result.ActualBytes)/1_000_000 - targetMB
		ui.PrintWarning(fmt.Sprintf("Çıktı hedeften %+.2f MB sapıyor (tolerans aşıldı, en iyi sonuç tutuldu)", delta))
	}

	return nil
}

// parseTrimRange zaman bayraklarını çözer; end boşsa video sonu kullanılır.
func parseTrimRange(start, end string, source planner.SourceInfo) (planner.TrimRange, error) {
	startSec, err := planner.ParseTimeSeconds(start)
	if err != nil {
		return planner.TrimRange{}, err
	}

	endSec := source.DurationSec
	if end != "" {
		endSec, err = planner.ParseTimeSeconds(end)
		if err != nil {
			return planner.TrimRange{}, err
		}
	}

	return planner.TrimRange{StartSec: startSec, EndSec: endSec}, nil
}

// resolveExportOutput çıktı yolunu kurar ve çakışma politikasını uygular.
// Boş yol dönerse skip politikası devreye girmiştir.
func resolveExportOutput(inputPath string, trim planner.TrimRange, targetMB float64) (string, error) {
	outputPath := exportOutputFile
	if outputPath == "" {
		dir := outputDir
		if dir == "" {
			dir = config.GetDefaultOutputDir()
		}
		outputPath = export.BuildOutputPath(inputPath, dir, exportName, trim, targetMB)
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("çıktı dizini oluşturulamadı: %w", err)
		}
	}

	policy := export.NormalizeConflictPolicy(exportOnConflict)
	resolved, skip, err := export.ResolveOutputPathConflict(outputPath, policy)
	if err != nil {
		return "", err
	}
	if skip {
		return "", nil
	}
	return resolved, nil
}

func printPlan(source planner.SourceInfo, trim planner.TrimRange, targetMB float64, cfg planner.Config, outputPath string) error {
	plan, err := planner.ComputePlan(source, trim, targetMB, cfg)
	if err != nil {
		ui.PrintError(fmt.Sprintf("Plan hesaplanamadı: %v", err))
		return err
	}

	scale := "kaynak çözünürlük"
	if plan.Downscaled {
		scale = fmt.Sprintf("%dx%d (küçültüldü)", plan.Width, plan.Height)
	}
	channels := "stereo"
	if plan.AudioChannels == 1 {
		channels = "mono"
	}

	ui.PrintInfo("Encode planı (dry-run):")
	ui.PrintTable(
		[]string{"Alan", "Değer"},
		[][]string{
			{"Çıktı", outputPath},
			{"Süre", fmt.Sprintf("%.1f sn", trim.Duration())},
			{"Video bitrate", fmt.Sprintf("%d kbps", plan.VideoKbps)},
			{"Ses bitrate", fmt.Sprintf("%d kbps (%s)", plan.AudioKbps, channels)},
			{"Çözünürlük", scale},
			{"Geçiş sayısı", fmt.Sprintf("%d", plan.Passes)},
		},
	)
	return nil
}
