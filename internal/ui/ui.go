package ui

import (
	"fmt"
	"strings"
	"time"
)

// Color ANSI renk kodları
const (
	Reset  = "\033[0m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
	Cyan   = "\033[36m"
	Bold   = "\033[1m"
	Dim    = "\033[2m"
)

// Icons kullanıcı dostu ikonlar
const (
	IconSuccess = "✅"
	IconError   = "❌"
	IconWarning = "⚠️ "
	IconInfo    = "ℹ️ "
	IconVideo   = "🎬"
	IconTime    = "⏱️ "
	IconSize    = "📦"
)

// PrintSuccess başarılı mesaj
func PrintSuccess(msg string) {
	fmt.Printf("%s %s%s%s\n", IconSuccess, Green, msg, Reset)
}

// PrintError hata mesajı
func PrintError(msg string) {
	fmt.Printf("%s %s%s%s\n", IconError, Red, msg, Reset)
}

// PrintWarning uyarı mesajı
func PrintWarning(msg string) {
	fmt.Printf("%s %s%s%s\n", IconWarning, Yellow, msg, Reset)
}

// PrintInfo bilgi mesajı
func PrintInfo(msg string) {
	fmt.Printf("%s %s%s%s\n", IconInfo, Blue, msg, Reset)
}

// PrintExport export işlemi mesajı
func PrintExport(input, output string) {
	fmt.Printf("%s  %s%s%s → %s%s%s\n", IconVideo, Dim, input, Reset, Green, output, Reset)
}

// PrintDuration süre bilgisi
func PrintDuration(d time.Duration) {
	fmt.Printf("%s  Süre: %s%s%s\n", IconTime, Cyan, formatDuration(d), Reset)
}

// PrintSize dosya boyutu bilgisi
func PrintSize(bytes int64) {
	fmt.Printf("%s  Boyut: %s%s%s\n", IconSize, Cyan, FormatSize(bytes), Reset)
}

// PrintTable basit bir ASCII tablo yazdırır
func PrintTable(headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}

	colWidths := make([]int, len(headers))
	for i, h := range headers {
		colWidths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(colWidths) && len(cell) > colWidths[i] {
				colWidths[i] = len(cell)
			}
		}
	}

	topLine := "  ┌"
	for _, w := range colWidths {
		topLine += strings.Repeat("─", w+2) + "┬"
	}
	topLine = topLine[:len(topLine)-len("┬")] + "┐"

	bottomLine := "  └"
	for _, w := range colWidths {
		bottomLine += strings.Repeat("─", w+2) + "┴"
	}
	bottomLine = bottomLine[:len(bottomLine)-len("┴")] + "┘"

	separator := "  ├"
	for _, w := range colWidths {
		separator += strings.Repeat("─", w+2) + "┼"
	}
	separator = separator[:len(separator)-len("┼")] + "┤"

	headerLine := "  │"
	for i, h := range headers {
		headerLine += fmt.Sprintf(" %s%-*s%s │", Bold, colWidths[i], h, Reset)
	}

	fmt.Println(topLine)
	fmt.Println(headerLine)
	fmt.Println(separator)

	for _, row := range rows {
		line := "  │"
		for i := range headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			line += fmt.Sprintf(" %-*s │", colWidths[i], cell)
		}
		fmt.Println(line)
	}

	fmt.Println(bottomLine)
}

// FormatSize dosya boyutunu okunabilir hale getirir (ondalık birimler,
// hedef boyutla aynı tabanda karşılaştırılabilsin diye 1000 tabanlı).
func FormatSize(bytes int64) string {
	const unit = 1000
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// formatDuration süreyi okunabilir formata çevirir
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.2fms", float64(d.Milliseconds()))
	}
	if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
