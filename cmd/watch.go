package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mlihgenel/videoclipper-cli/internal/config"
	"github.com/mlihgenel/videoclipper-cli/internal/encoder"
	"github.com/mlihgenel/videoclipper-cli/internal/export"
	"github.com/mlihgenel/videoclipper-cli/internal/planner"
	"github.com/mlihgenel/videoclipper-cli/internal/probe"
	"github.com/mlihgenel/videoclipper-cli/internal/report"
	"github.com/mlihgenel/videoclipper-cli/internal/ui"
	"github.com/mlihgenel/videoclipper-cli/internal/watch"
)

var (
	watchSizeMB    float64
	watchRecursive bool
	watchInterval  time.Duration
	watchSettle    time.Duration
	watchParallel  int
	watchReport    string
)

var watchCmd = &cobra.Command{
	Use:   "watch <dizin>",
	Short: "Dizini izle, gelen videoları hedef boyuta encode et",
	Long: `Verilen dizini izler ve yeni gelen video dosyalarını yazımları
tamamlandıktan sonra otomatik olarak hedef boyuta encode eder. Her dosya
tamamı kullanılarak (kırpmasız) sıkıştırılır.

Mümkünse dosya sistemi olayları kullanılır; desteklenmeyen sistemlerde
periyodik taramaya düşülür. Ctrl+C ile durdurun.

Örnekler:
  videoclipper-cli watch ./gelen --size 10
  videoclipper-cli watch ./gelen --size 25 -r -o ./cikti --parallel 4`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().Float64Var(&watchSizeMB, "size", 0, "Hedef çıktı boyutu MB (varsayılan: yapılandırmadan)")
	watchCmd.Flags().BoolVarP(&watchRecursive, "recursive", "r", false, "Alt dizinleri de izle")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 2*time.Second, "Tarama aralığı")
	watchCmd.Flags().DurationVar(&watchSettle, "settle", 3*time.Second, "Dosyanın kararlı sayılması için bekleme")
	watchCmd.Flags().IntVar(&watchParallel, "parallel", 2, "Aynı anda encode edilecek dosya sayısı")
	watchCmd.Flags().StringVar(&watchReport, "report", report.FormatOff, "Oturum sonunda rapor yaz: off, txt, json")
}

func runWatch(cmd *cobra.Command, args []string) error {
	root := args[0]

	stat, err := os.Stat(root)
	if err != nil || !stat.IsDir() {
		ui.PrintError(fmt.Sprintf("Dizin bulunamadı: %s", root))
		return fmt.Errorf("dizin bulunamadi: %s", root)
	}

	targetMB := watchSizeMB
	if targetMB <= 0 {
		targetMB = config.GetDefaultTargetMB()
	}
	if watchParallel < 1 {
		watchParallel = 1
	}
	if report.NormalizeFormat(watchReport) == "" {
		ui.PrintError(fmt.Sprintf("Geçersiz rapor formatı: %s (mevcut: off, txt, json)", watchReport))
		return fmt.Errorf("gecersiz report formati: %s", watchReport)
	}

	if !probe.IsFFprobeAvailable() || !encoder.IsFFmpegAvailable() {
		ui.PrintError("FFmpeg/FFprobe bulunamadı! Kurulum için: videoclipper-cli setup")
		return fmt.Errorf("ffmpeg bulunamadi")
	}

	engine, err := resolveWatchEngine(watch.NewAdaptiveWatcher(root, watchRecursive, watchSettle))
	if err != nil {
		ui.PrintError(fmt.Sprintf("İzleyici başlatılamadı: %v", err))
		return err
	}
	if closer, ok := engine.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	if err := engine.Bootstrap(); err != nil {
		ui.PrintError(fmt.Sprintf("İlk tarama başarısız: %v", err))
		return err
	}

	ui.PrintInfo(fmt.Sprintf("İzleniyor: %s (mod: %s, hedef: %g MB)", root, engine.Mode(), targetMB))
	ui.PrintInfo("Durdurmak için Ctrl+C")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	enc := &encoder.TwoPassEncoder{FFmpegPath: encoder.FindFFmpeg(), Verbose: verbose}
	sup := export.NewSupervisor(planner.DefaultConfig(), enc.Encode)
	session := report.NewSession()

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(watchParallel)

	var events <-chan struct{}
	if ew, ok := engine.(*watch.EventWatcher); ok {
		events = ew.Events()
	}

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			ui.PrintInfo("İzleme durduruldu, devam eden işlemler bekleniyor...")
			group.Wait()
			return writeWatchReport(session, root)
		case <-events:
		case <-ticker.C:
		}

		settled, err := engine.Poll(time.Now())
		if err != nil {
			ui.PrintWarning(fmt.Sprintf("Tarama hatası: %v", err))
			continue
		}

		for _, path := range settled {
			if isWatchOutput(path) {
				continue
			}
			path := path
			group.Go(func() error {
				exportWatchedFile(gctx, sup, session, path, targetMB)
				return nil
			})
		}
	}
}

// resolveWatchEngine event backend kurulamadığında polling fallback ile devam
// eder; hata ancak ortada kullanılabilir engine yoksa ölümcüldür.
func resolveWatchEngine(engine watch.Engine, err error) (watch.Engine, error) {
	if engine == nil {
		return nil, err
	}
	if err != nil {
		ui.PrintWarning(fmt.Sprintf("Olay tabanlı izleme kullanılamıyor, polling ile devam ediliyor: %v", err))
	}
	return engine, nil
}

// isWatchOutput kendi ürettiğimiz çıktıların yeniden kuyruğa girmesini önler.
func isWatchOutput(path string) bool {
	base := filepath.Base(path)
	return strings.Contains(base, "_trim_") || strings.HasPrefix(base, ".")
}

func exportWatchedFile(ctx context.Context, sup *export.Supervisor, session *report.Session, path string, targetMB float64) {
	started := time.Now()

	source, err := probe.Probe(path)
	if err != nil {
		ui.PrintWarning(fmt.Sprintf("Atlanıyor %s: %v", filepath.Base(path), err))
		session.Record(report.ItemResult{Input: path, Error: err, Duration: time.Since(started)})
		return
	}

	trim := planner.TrimRange{StartSec: 0, EndSec: source.DurationSec}

	dir := outputDir
	if dir == "" {
		dir = config.GetDefaultOutputDir()
	}
	outputPath := export.BuildOutputPath(path, dir, "", trim, targetMB)
	outputPath, skip, err := export.ResolveOutputPathConflict(outputPath, export.ConflictVersioned)
	if err != nil || skip {
		return
	}

	ui.PrintExport(path, outputPath)
	result, err := sup.Run(ctx, export.Request{
		SourcePath: path,
		Source:     source,
		Trim:       trim,
		TargetMB:   targetMB,
		OutputPath: outputPath,
	})
	if err != nil {
		ui.PrintError(fmt.Sprintf("Export başarısız %s: %v", filepath.Base(path), err))
		session.Record(report.ItemResult{Input: path, Output: outputPath, Error: err, Duration: time.Since(started)})
		return
	}

	session.Record(report.ItemResult{
		Input:       path,
		Output:      result.OutputPath,
		Success:     true,
		Attempts:    result.Attempts,
		OutputSize:  result.ActualBytes,
		WithinRange: result.WithinTolerance,
		Duration:    time.Since(started),
	})
	ui.PrintSuccess(fmt.Sprintf("%s → %s (%s)",
		filepath.Base(path), filepath.Base(result.OutputPath), ui.FormatSize(result.ActualBytes)))
}

// writeWatchReport oturum raporunu izlenen dizine yazar.
func writeWatchReport(session *report.Session, root string) error {
	format := report.NormalizeFormat(watchReport)
	if format == report.FormatOff {
		summary := session.Summary()
		if summary.Total > 0 {
			ui.PrintInfo(fmt.Sprintf("Oturum: %d export, %d başarılı, %d hatalı",
				summary.Total, summary.Succeeded, summary.Failed))
		}
		return nil
	}

	content, err := session.Render(format)
	if err != nil {
		return err
	}

	reportPath := filepath.Join(root, fmt.Sprintf("watch-report-%s.%s",
		time.Now().Format("20060102-150405"), format))
	if err := os.WriteFile(reportPath, []byte(content), 0o644); err != nil {
		ui.PrintError(fmt.Sprintf("Rapor yazılamadı: %v", err))
		return err
	}
	ui.PrintSuccess("Rapor yazıldı: " + reportPath)
	return nil
}
