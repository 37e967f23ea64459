package planner

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTimeSeconds "HH:MM:SS.mmm", "MM:SS" veya düz saniye ("12.5") formatını
// saniyeye çevirir. Ondalık ayracı olarak virgül de kabul edilir.
// Hatalı format ErrInvalidRange ile döner.
func ParseTimeSeconds(raw string) (float64, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if normalized == "" {
		return 0, fmt.Errorf("%w: bos zaman degeri", ErrInvalidRange)
	}

	if strings.Contains(normalized, ":") {
		parts := strings.Split(normalized, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return 0, fmt.Errorf("%w: zaman formati hatali: %s", ErrInvalidRange, raw)
		}

		parsed := make([]float64, len(parts))
		for i, part := range parts {
			p := strings.TrimSpace(part)
			if p == "" {
				return 0, fmt.Errorf("%w: zaman formati hatali: %s", ErrInvalidRange, raw)
			}
			v, err := strconv.ParseFloat(p, 64)
			if err != nil || v < 0 {
				return 0, fmt.Errorf("%w: zaman formati hatali: %s", ErrInvalidRange, raw)
			}
			parsed[i] = v
		}

		if len(parsed) == 2 {
			if parsed[1] >= 60 {
				return 0, fmt.Errorf("%w: saniye 60'tan kucuk olmali: %s", ErrInvalidRange, raw)
			}
			return parsed[0]*60 + parsed[1], nil
		}

		if parsed[1] >= 60 || parsed[2] >= 60 {
			return 0, fmt.Errorf("%w: dakika/saniye 60'tan kucuk olmali: %s", ErrInvalidRange, raw)
		}
		return parsed[0]*3600 + parsed[1]*60 + parsed[2], nil
	}

	v, err := strconv.ParseFloat(normalized, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: gecersiz sayi: %s", ErrInvalidRange, raw)
	}
	return v, nil
}

// FormatSeconds saniyeyi "HH:MM:SS.mmm" (saat yoksa "MM:SS.mmm") olarak yazar.
func FormatSeconds(value float64) string {
	if value < 0 {
		value = 0
	}
	millis := int64(value*1000 + 0.5)
	hours := millis / 3600000
	minutes := (millis % 3600000) / 60000
	seconds := (millis % 60000) / 1000
	ms := millis % 1000

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, ms)
	}
	return fmt.Sprintf("%02d:%02d.%03d", minutes, seconds, ms)
}
