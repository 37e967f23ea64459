package probe

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/mlihgenel/videoclipper-cli/internal/planner"
)

// ErrUnreadableMedia kaynak dosya ffprobe ile okunamadı.
var ErrUnreadableMedia = errors.New("kaynak medya okunamadi")

// ffprobeResult ffprobe JSON çıktısının ilgili alanları
type ffprobeResult struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		Width        int    `json:"width,omitempty"`
		Height       int    `json:"height,omitempty"`
		AvgFrameRate string `json:"avg_frame_rate,omitempty"`
	} `json:"streams"`
}

// Probe kaynak videonun süre/çözünürlük/kare oranı bilgisini okur.
// Dosya başına bir kez çağrılır; sonuç değişmez kabul edilir.
func Probe(path string) (planner.SourceInfo, error) {
	if _, err := os.Stat(path); err != nil {
		return planner.SourceInfo{}, fmt.Errorf("%w: %s", ErrUnreadableMedia, path)
	}

	ffprobePath := FindFFprobe()
	if ffprobePath == "" {
		return planner.SourceInfo{}, fmt.Errorf("%w: ffprobe bulunamadi", ErrUnreadableMedia)
	}

	cmd := exec.Command(ffprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "format=duration",
		"-show_entries", "stream=width,height,avg_frame_rate",
		"-of", "json",
		path,
	)
	output, err := cmd.Output()
	if err != nil {
		return planner.SourceInfo{}, fmt.Errorf("%w: %s", ErrUnreadableMedia, path)
	}

	return parseProbeOutput(output)
}

// parseProbeOutput ffprobe JSON çıktısını SourceInfo'ya çevirir.
func parseProbeOutput(output []byte) (planner.SourceInfo, error) {
	var result ffprobeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return planner.SourceInfo{}, fmt.Errorf("%w: ffprobe ciktisi cozumlenemedi", ErrUnreadableMedia)
	}

	info := planner.SourceInfo{}

	if result.Format.Duration != "" {
		if dur, err := strconv.ParseFloat(result.Format.Duration, 64); err == nil && dur > 0 {
			info.DurationSec = dur
		}
	}
	if info.DurationSec <= 0 {
		return planner.SourceInfo{}, fmt.Errorf("%w: sure okunamadi", ErrUnreadableMedia)
	}

	if len(result.Streams) == 0 {
		return planner.SourceInfo{}, fmt.Errorf("%w: video akisi bulunamadi", ErrUnreadableMedia)
	}
	stream := result.Streams[0]
	if stream.Width <= 0 || stream.Height <= 0 {
		return planner.SourceInfo{}, fmt.Errorf("%w: cozunurluk okunamadi", ErrUnreadableMedia)
	}
	info.Width = stream.Width
	info.Height = stream.Height
	info.FrameRate = parseFrameRate(stream.AvgFrameRate)

	return info, nil
}

// parseFrameRate "30000/1001" gibi kare oranlarını float'a çevirir
func parseFrameRate(rate string) float64 {
	parts := strings.SplitN(rate, "/", 2)
	if len(parts) == 2 {
		num, err1 := strconv.ParseFloat(parts[0], 64)
		den, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 == nil && err2 == nil && den != 0 {
			return num / den
		}
	}
	if f, err := strconv.ParseFloat(rate, 64); err == nil {
		return f
	}
	return 0
}

// FindFFprobe sistemde ffprobe'u arar.
func FindFFprobe() string {
	paths := []string{"ffprobe"}
	if runtime.GOOS == "darwin" {
		paths = append(paths, "/opt/homebrew/bin/ffprobe", "/usr/local/bin/ffprobe")
	} else if runtime.GOOS == "linux" {
		paths = append(paths, "/usr/bin/ffprobe", "/usr/local/bin/ffprobe")
	}

	for _, p := range paths {
		if path, err := exec.LookPath(p); err == nil {
			return path
		}
	}
	return ""
}

// IsFFprobeAvailable ffprobe'un kullanılabilir olup olmadığını döner.
func IsFFprobeAvailable() bool {
	return FindFFprobe() != ""
}
