package planner

import (
	"errors"
	"fmt"
	"math"
)

// Hata türleri — çağıran taraf errors.Is ile ayırt eder.
var (
	// ErrInvalidRange geçersiz zaman aralığı (end <= start, kaynak süresi dışı vb.)
	ErrInvalidRange = errors.New("gecersiz zaman araligi")
	// ErrTargetTooSmall hedef boyut bu süre için oynatılabilir bir çıktı üretemez
	ErrTargetTooSmall = errors.New("hedef boyut cok kucuk")
)

// SourceInfo ffprobe ile bir kez okunan kaynak video bilgisi.
type SourceInfo struct {
	DurationSec float64
	Width       int
	Height      int
	FrameRate   float64 // bilinmiyorsa 0
}

// TrimRange saniye cinsinden kırpma aralığı.
type TrimRange struct {
	StartSec float64
	EndSec   float64
}

// Duration aralığın uzunluğunu döner.
func (r TrimRange) Duration() float64 {
	return r.EndSec - r.StartSec
}

// EncodePlan iki geçişli encode için hesaplanan parametreler.
// Her denemede yeniden üretilir, yerinde değiştirilmez.
type EncodePlan struct {
	VideoKbps     int
	AudioKbps     int
	AudioChannels int // 1 veya 2
	Width         int
	Height        int
	Downscaled    bool
	Passes        int // her zaman 2
}

// Config planlayıcı ve supervisor sabitleri. Testlerde değiştirilebilsin
// diye global durum yerine açıkça taşınır.
type Config struct {
	OverheadFactor float64 // konteyner payı için bit bütçesi çarpanı (<1)
	ToleranceRatio float64 // kabul bandı (örn. 0.08 → ±%8)
	MaxRetries     int     // yeniden planlama/deneme üst sınırı

	MinDurationSec float64 // bundan kısa aralıklar reddedilir
	MinVideoKbps   int     // oynatılabilir en düşük video bitrate
	MinBPP         float64 // piksel başına bit alt eşiği
	MinShortSide   int     // küçültme tabanı (kısa kenar, piksel)

	// Ses katmanları: toplam bitrate'e göre kademeli seçim.
	// Çok küçük hedeflerde önce ses feda edilir.
	AudioMonoKbps   int // düşük kademe (mono)
	AudioMidKbps    int // orta kademe (stereo)
	AudioHighKbps   int // üst kademe (stereo)
	AudioMonoCutoff int // toplam kbps bu değerin altındaysa mono kademe
	AudioHighCutoff int // toplam kbps bu değerin üstündeyse üst kademe
}

// DefaultConfig üretimde kullanılan varsayılan sabitler.
func DefaultConfig() Config {
	return Config{
		OverheadFactor: 0.98,
		ToleranceRatio: 0.08,
		MaxRetries:     2,

		MinDurationSec: 0.05,
		MinVideoKbps:   40,
		MinBPP:         0.02,
		MinShortSide:   320,

		AudioMonoKbps:   48,
		AudioMidKbps:    96,
		AudioHighKbps:   128,
		AudioMonoCutoff: 200,
		AudioHighCutoff: 800,
	}
}

// ComputePlan kaynak bilgisi, kırpma aralığı ve hedef boyuttan (MB, 1 MB =
// 1.000.000 bayt) somut bir encode planı üretir. Saf fonksiyondur; aynı
// girdiler her zaman aynı planı döner.
func ComputePlan(source SourceInfo, trim TrimRange, targetMB float64, cfg Config) (EncodePlan, error) {
	if err := ValidateRange(source, trim, cfg); err != nil {
		return EncodePlan{}, err
	}
	if targetMB <= 0 {
		return EncodePlan{}, fmt.Errorf("%w: hedef boyut pozitif olmali (%.2f MB)", ErrTargetTooSmall, targetMB)
	}

	duration := trim.Duration()

	// Konteyner/mux payı düşülmüş ham bit bütçesi.
	totalBits := targetMB * 8 * 1_000_000 * cfg.OverheadFactor
	totalKbps := totalBits / duration / 1000

	audioKbps, channels := audioTier(totalKbps, cfg)

	videoKbps := int(totalKbps) - audioKbps
	if videoKbps < cfg.MinVideoKbps {
		return EncodePlan{}, fmt.Errorf(
			"%w: %.1f sn icin %.2f MB yetersiz (video icin %d kbps kaldi, alt sinir %d)",
			ErrTargetTooSmall, duration, targetMB, videoKbps, cfg.MinVideoKbps,
		)
	}

	width, height, downscaled := fitResolution(source, videoKbps, cfg)

	return EncodePlan{
		VideoKbps:     videoKbps,
		AudioKbps:     audioKbps,
		AudioChannels: channels,
		Width:         width,
		Height:        height,
		Downscaled:    downscaled,
		Passes:        2,
	}, nil
}

// ValidateRange kırpma aralığını kaynak süresine karşı doğrular.
func ValidateRange(source SourceInfo, trim TrimRange, cfg Config) error {
	if trim.StartSec < 0 {
		return fmt.Errorf("%w: baslangic negatif olamaz (%.3f)", ErrInvalidRange, trim.StartSec)
	}
	if trim.EndSec <= trim.StartSec {
		return fmt.Errorf("%w: bitis baslangictan buyuk olmali (%.3f-%.3f)", ErrInvalidRange, trim.StartSec, trim.EndSec)
	}
	if source.DurationSec > 0 && trim.EndSec > source.DurationSec+0.001 {
		return fmt.Errorf("%w: bitis kaynak suresini asiyor (%.3f > %.3f)", ErrInvalidRange, trim.EndSec, source.DurationSec)
	}
	if trim.Duration() < cfg.MinDurationSec {
		return fmt.Errorf("%w: aralik cok kisa (%.3f sn)", ErrInvalidRange, trim.Duration())
	}
	return nil
}

// audioTier toplam bitrate'e göre ses bitrate'i ve kanal sayısını seçer.
// Düşük bitrate'te video sesin önünde bozulduğu için önce ses kısılır.
func audioTier(totalKbps float64, cfg Config) (kbps int, channels int) {
	switch {
	case totalKbps < float64(cfg.AudioMonoCutoff):
		return cfg.AudioMonoKbps, 1
	case totalKbps < float64(cfg.AudioHighCutoff):
		return cfg.AudioMidKbps, 2
	default:
		return cfg.AudioHighKbps, 2
	}
}

// fitResolution piksel başına bit eşiğini tutturana kadar çözünürlüğü
// yarıya indirir. Kısa kenar tabanına dayanırsa olduğu gibi devam eder;
// düşük kaliteli bir sonuç, hiç sonuç olmamasından iyidir.
func fitResolution(source SourceInfo, videoKbps int, cfg Config) (width, height int, downscaled bool) {
	width, height = source.Width, source.Height

	fps := source.FrameRate
	if fps <= 0 {
		// Kare oranı okunamadıysa küçültme kararı verilemez.
		return width, height, false
	}

	for bitsPerPixel(videoKbps, width, height, fps) < cfg.MinBPP {
		nw, nh := evenHalf(width), evenHalf(height)
		if min(nw, nh) < cfg.MinShortSide {
			break
		}
		width, height = nw, nh
		downscaled = true
	}
	return width, height, downscaled
}

// bitsPerPixel kare başına piksel başına düşen bit miktarı.
func bitsPerPixel(videoKbps, width, height int, fps float64) float64 {
	if width <= 0 || height <= 0 || fps <= 0 {
		return math.Inf(1)
	}
	return float64(videoKbps) * 1000 / (float64(width) * float64(height) * fps)
}

// evenHalf değeri yarıya indirip çift sayıya yuvarlar (H.264 çift boyut ister).
func evenHalf(v int) int {
	h := v / 2
	return h &^ 1
}
