package encoder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/google/uuid"

	"github.com/mlihgenel/videoclipper-cli/internal/planner"
)

// ErrProcessFailed harici ffmpeg süreci hata ile sonlandı.
var ErrProcessFailed = errors.New("ffmpeg sureci basarisiz")

// TwoPassEncoder plandaki parametrelerle iki geçişli H.264/AAC MP4 encode
// yapar. Çıktıyı doğrudan verilen yola yazar; geçici yol/son yol ayrımı
// çağıranın (supervisor) sorumluluğudur.
type TwoPassEncoder struct {
	FFmpegPath string // boşsa PATH üzerinden aranır
	Verbose    bool
}

// Encode src dosyasının trim aralığını plana göre iki geçişte dst'ye yazar
// ve yazılan bayt sayısını döner. Context iptalinde süreç sonlandırılır ve
// yarım çıktı silinir.
func (e *TwoPassEncoder) Encode(ctx context.Context, src, dst string, plan planner.EncodePlan, trim planner.TrimRange) (int64, error) {
	ffmpegPath := e.FFmpegPath
	if ffmpegPath == "" {
		ffmpegPath = FindFFmpeg()
	}
	if ffmpegPath == "" {
		return 0, fmt.Errorf("%w: ffmpeg bulunamadi", ErrProcessFailed)
	}

	// x264 geçiş log dosyaları çakışmasın diye benzersiz isim.
	logPrefix := filepath.Join(filepath.Dir(dst), ".vclip-"+uuid.NewString()[:8])
	defer cleanupPassLogs(logPrefix)

	pass1, pass2 := BuildPassArgs(src, dst, plan, trim, logPrefix, e.Verbose)

	if err := e.run(ctx, ffmpegPath, pass1, "1. gecis"); err != nil {
		return 0, err
	}
	if err := e.run(ctx, ffmpegPath, pass2, "2. gecis"); err != nil {
		os.Remove(dst)
		return 0, err
	}

	info, err := os.Stat(dst)
	if err != nil {
		return 0, fmt.Errorf("%w: cikti dosyasi yazilamadi: %s", ErrProcessFailed, dst)
	}
	return info.Size(), nil
}

func (e *TwoPassEncoder) run(ctx context.Context, ffmpegPath string, args []string, label string) error {
	cmd := exec.CommandContext(ctx, ffmpegPath, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w (%s): %s\n%s", ErrProcessFailed, label, err.Error(), string(out))
	}
	return nil
}

// BuildPassArgs iki geçişin ffmpeg argümanlarını üretir. Birinci geçiş ses
// olmadan istatistik toplar, ikinci geçiş gerçek çıktıyı yazar.
func BuildPassArgs(src, dst string, plan planner.EncodePlan, trim planner.TrimRange, logPrefix string, verbose bool) (pass1, pass2 []string) {
	common := []string{"-y"}
	if !verbose {
		common = append(common, "-loglevel", "error")
	}
	common = append(common,
		"-ss", formatSeconds(trim.StartSec),
		"-t", formatSeconds(trim.Duration()),
		"-i", src,
	)
	if plan.Downscaled {
		common = append(common, "-vf", fmt.Sprintf("scale=%d:%d:flags=lanczos", plan.Width, plan.Height))
	}
	common = append(common,
		"-c:v", "libx264",
		"-b:v", strconv.Itoa(plan.VideoKbps)+"k",
		"-preset", "medium",
		"-pix_fmt", "yuv420p",
		"-passlogfile", logPrefix,
	)

	pass1 = append(append([]string{}, common...),
		"-pass", "1",
		"-an",
		"-f", "mp4",
		os.DevNull,
	)

	pass2 = append(append([]string{}, common...),
		"-pass", "2",
		"-c:a", "aac",
		"-b:a", strconv.Itoa(plan.AudioKbps)+"k",
	)
	if plan.AudioChannels == 1 {
		pass2 = append(pass2, "-ac", "1")
	}
	pass2 = append(pass2,
		"-movflags", "+faststart",
		dst,
	)

	return pass1, pass2
}

// cleanupPassLogs x264'un bıraktığı geçiş log dosyalarını temizler.
func cleanupPassLogs(logPrefix string) {
	for _, suffix := range []string{"-0.log", "-0.log.mbtree", ".log", ".log.mbtree"} {
		os.Remove(logPrefix + suffix)
	}
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', 3, 64)
}

// FindFFmpeg sistemde ffmpeg'i arar.
func FindFFmpeg() string {
	if envPath := os.Getenv("FFMPEG_PATH"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	paths := []string{"ffmpeg"}
	if runtime.GOOS == "darwin" {
		paths = append(paths, "/opt/homebrew/bin/ffmpeg", "/usr/local/bin/ffmpeg")
	} else if runtime.GOOS == "linux" {
		paths = append(paths, "/usr/bin/ffmpeg", "/usr/local/bin/ffmpeg")
	}

	for _, p := range paths {
		if path, err := exec.LookPath(p); err == nil {
			return path
		}
	}
	return ""
}

// IsFFmpegAvailable ffmpeg'in kullanılabilir olup olmadığını döner.
func IsFFmpegAvailable() bool {
	return FindFFmpeg() != ""
}
