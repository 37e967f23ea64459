package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	FormatOff  = "off"
	FormatTXT  = "txt"
	FormatJSON = "json"
)

// ItemResult tek bir export'un sonucu.
type ItemResult struct {
	Input       string
	Output      string
	Success     bool
	Attempts    int
	OutputSize  int64
	WithinRange bool
	Error       error
	Duration    time.Duration
}

// Session bir watch oturumunun export sonuçlarını biriktirir.
// Eşzamanlı exportlardan çağrılabilir.
type Session struct {
	mu        sync.Mutex
	startedAt time.Time
	results   []ItemResult
}

func NewSession() *Session {
	return &Session{startedAt: time.Now()}
}

// Record bir export sonucunu oturuma ekler.
func (s *Session) Record(result ItemResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, result)
}

// Summary oturumun özet sayılarını döner.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Duration  time.Duration
}

func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := Summary{
		Total:    len(s.results),
		Duration: time.Since(s.startedAt),
	}
	for _, r := range s.results {
		if r.Success {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}
	return summary
}

type reportItem struct {
	Input       string `json:"input"`
	Output      string `json:"output,omitempty"`
	Status      string `json:"status"`
	Attempts    int    `json:"attempts,omitempty"`
	DurationMS  int64  `json:"duration_ms"`
	OutputSize  int64  `json:"output_size,omitempty"`
	WithinRange bool   `json:"within_tolerance"`
	Error       string `json:"error,omitempty"`
}

type reportPayload struct {
	StartedAt string       `json:"started_at"`
	EndedAt   string       `json:"ended_at"`
	Duration  string       `json:"duration"`
	Total     int          `json:"total"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Items     []reportItem `json:"items"`
}

// NormalizeFormat rapor formatını normalize eder.
func NormalizeFormat(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatOff:
		return FormatOff
	case FormatTXT:
		return FormatTXT
	case FormatJSON:
		return FormatJSON
	default:
		return ""
	}
}

// Render oturum için rapor metni üretir.
func (s *Session) Render(format string) (string, error) {
	s.mu.Lock()
	results := make([]ItemResult, len(s.results))
	copy(results, s.results)
	startedAt := s.startedAt
	s.mu.Unlock()

	summary := s.Summary()
	endedAt := startedAt.Add(summary.Duration)

	switch NormalizeFormat(format) {
	case FormatOff:
		return "", nil
	case FormatTXT:
		return renderTXT(summary, results, startedAt, endedAt), nil
	case FormatJSON:
		return renderJSON(summary, results, startedAt, endedAt)
	default:
		return "", fmt.Errorf("gecersiz report formati: %s", format)
	}
}

func renderTXT(summary Summary, results []ItemResult, startedAt, endedAt time.Time) string {
	var b strings.Builder
	b.WriteString("Watch Export Report\n")
	b.WriteString(strings.Repeat("=", 40))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Started:   %s\n", startedAt.Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf("Ended:     %s\n", endedAt.Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf("Duration:  %s\n", summary.Duration.Round(time.Millisecond)))
	b.WriteString(fmt.Sprintf("Total:     %d\n", summary.Total))
	b.WriteString(fmt.Sprintf("Succeeded: %d\n", summary.Succeeded))
	b.WriteString(fmt.Sprintf("Failed:    %d\n", summary.Failed))
	b.WriteString("\nItems:\n")

	for _, r := range results {
		status := "failed"
		if r.Success {
			status = "success"
		}

		b.WriteString(fmt.Sprintf("- [%s] %s -> %s", status, r.Input, r.Output))
		if r.Attempts > 0 {
			b.WriteString(fmt.Sprintf(" (attempts=%d)", r.Attempts))
		}
		if r.OutputSize > 0 {
			b.WriteString(fmt.Sprintf(" (size=%d)", r.OutputSize))
		}
		if r.Success && !r.WithinRange {
			b.WriteString(" (tolerance-exceeded)")
		}
		if r.Error != nil {
			b.WriteString(fmt.Sprintf(" (error=%s)", r.Error.Error()))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func renderJSON(summary Summary, results []ItemResult, startedAt, endedAt time.Time) (string, error) {
	items := make([]reportItem, 0, len(results))
	for _, r := range results {
		item := reportItem{
			Input:       r.Input,
			Output:      r.Output,
			Attempts:    r.Attempts,
			DurationMS:  r.Duration.Milliseconds(),
			OutputSize:  r.OutputSize,
			WithinRange: r.WithinRange,
		}

		if r.Success {
			item.Status = "success"
		} else {
			item.Status = "failed"
			if r.Error != nil {
				item.Error = r.Error.Error()
			}
		}

		items = append(items, item)
	}

	payload := reportPayload{
		StartedAt: startedAt.Format(time.RFC3339),
		EndedAt:   endedAt.Format(time.RFC3339),
		Duration:  summary.Duration.String(),
		Total:     summary.Total,
		Succeeded: summary.Succeeded,
		Failed:    summary.Failed,
		Items:     items,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
