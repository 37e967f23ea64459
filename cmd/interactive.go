package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mlihgenel/videoclipper-cli/internal/config"
	"github.com/mlihgenel/videoclipper-cli/internal/encoder"
	"github.com/mlihgenel/videoclipper-cli/internal/export"
	"github.com/mlihgenel/videoclipper-cli/internal/planner"
	"github.com/mlihgenel/videoclipper-cli/internal/probe"
	"github.com/mlihgenel/videoclipper-cli/internal/ui"
	"github.com/mlihgenel/videoclipper-cli/internal/watch"
)

// ========================================
// Renk Paleti ve Stiller
// ========================================

var (
	// Ana renk paleti
	primaryColor   = lipgloss.Color("#7C3AED") // Mor
	secondaryColor = lipgloss.Color("#06B6D4") // Cyan
	accentColor    = lipgloss.Color("#10B981") // Yeşil
	warningColor   = lipgloss.Color("#F59E0B") // Sarı
	dangerColor    = lipgloss.Color("#EF4444") // Kırmızı
	textColor      = lipgloss.Color("#E2E8F0") // Açık gri
	dimTextColor   = lipgloss.Color("#64748B") // Koyu gri

	// Gradient renkleri (banner için)
	gradientColors = []lipgloss.Color{
		"#818CF8", "#A78BFA", "#C084FC", "#E879F9", "#F472B6",
	}

	// Stiller
	menuTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(primaryColor).
			Padding(0, 2).
			MarginBottom(1)

	selectedItemStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(secondaryColor).
				PaddingLeft(2)

	normalItemStyle = lipgloss.NewStyle().
			Foreground(textColor).
			PaddingLeft(4)

	descStyle = lipgloss.NewStyle().
			Foreground(dimTextColor).
			Italic(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(dimTextColor)

	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(dangerColor)

	infoStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	pathStyle = lipgloss.NewStyle().
			Foreground(warningColor).
			Bold(true)

	resultBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(1, 3).
			MarginTop(1)

	breadcrumbStyle = lipgloss.NewStyle().
			Foreground(dimTextColor).
			PaddingLeft(2)

	folderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(warningColor)

	spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
)

// ========================================
// State Machine
// ========================================

type screenState int

const (
	stateMainMenu screenState = iota
	stateFileBrowser
	stateTrimStart
	stateTrimEnd
	stateTargetSize
	statePlanPreview
	stateExporting
	stateExportDone
)

type menuItem struct {
	Title string
	Icon  string
	Desc  string
}

var mainMenuItems = []menuItem{
	{Title: "Kırp ve Sıkıştır", Icon: "🎬", Desc: "Video seç, aralık belirle, hedef boyuta encode et"},
	{Title: "Çıkış", Icon: "👋", Desc: "Programdan çık"},
}

type browserItem struct {
	name  string
	isDir bool
}

// ========================================
// Mesajlar
// ========================================

type tickMsg time.Time

type exportDoneMsg struct {
	output   string
	bytes    int64
	attempts int
	within   bool
	err      error
	duration time.Duration
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// ========================================
// Model
// ========================================

type interactiveModel struct {
	state    screenState
	cursor   int
	width    int
	height   int
	quitting bool

	spinnerTick int
	spinnerIdx  int

	// Dosya tarayıcı
	browserDir   string
	browserItems []browserItem
	browserErr   string

	// Seçimler
	selectedFile string
	source       planner.SourceInfo
	startInput   string
	endInput     string
	sizeInput    string
	inputErr     string

	// Plan önizleme
	plan       planner.EncodePlan
	outputPath string

	// Export
	cancelExport context.CancelFunc
	started      time.Time

	// Sonuç
	resultMsg  string
	resultErr  bool
	resultInfo string
	duration   time.Duration

	defaultOutput string
}

func newInteractiveModel() interactiveModel {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	dir := config.GetDefaultOutputDir()
	if dir == "" {
		dir = home
	}

	m := interactiveModel{
		state:         stateMainMenu,
		browserDir:    dir,
		sizeInput:     fmt.Sprintf("%g", config.GetDefaultTargetMB()),
		defaultOutput: config.GetDefaultOutputDir(),
	}
	return m
}

func (m interactiveModel) Init() tea.Cmd {
	return tickCmd()
}

// ========================================
// Update
// ========================================

func (m interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		// Spinner animasyonu
		if m.state == stateExporting {
			m.spinnerTick++
			m.spinnerIdx = m.spinnerTick % len(spinnerFrames)
		}
		return m, tickCmd()

	case exportDoneMsg:
		m.state = stateExportDone
		m.duration = msg.duration
		m.cancelExport = nil
		if msg.err != nil {
			m.resultMsg = msg.err.Error()
			m.resultErr = true
			m.resultInfo = ""
		} else {
			m.resultMsg = msg.output
			m.resultErr = false
			m.resultInfo = fmt.Sprintf("%s · %d deneme", ui.FormatSize(msg.bytes), msg.attempts)
			if !msg.within {
				m.resultInfo += " · hedef toleransı aşıldı"
			}
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m interactiveModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		if m.cancelExport != nil {
			m.cancelExport()
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit
	}

	// Metin giriş ekranları rune'ları kendisi işler
	if m.isTextInputState() {
		switch key {
		case "enter":
			return m.handleEnter()
		case "esc":
			return m.goBack(), nil
		case "backspace":
			m.popInput()
			return m, nil
		default:
			if m.appendInput(key) {
				m.inputErr = ""
			}
			return m, nil
		}
	}

	switch key {
	case "q":
		if m.state == stateMainMenu {
			m.quitting = true
			return m, tea.Quit
		}
		if m.state != stateExporting {
			return m.goToMainMenu(), nil
		}

	case "esc":
		if m.state != stateExporting {
			return m.goBack(), nil
		}

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < m.getMaxCursor() {
			m.cursor++
		}

	case "enter":
		return m.handleEnter()
	}

	return m, nil
}

func (m interactiveModel) getMaxCursor() int {
	switch m.state {
	case stateMainMenu:
		return len(mainMenuItems) - 1
	case stateFileBrowser:
		return len(m.browserItems) - 1
	default:
		return 0
	}
}

func (m interactiveModel) isTextInputState() bool {
	switch m.state {
	case stateTrimStart, stateTrimEnd, stateTargetSize:
		return true
	default:
		return false
	}
}

func (m *interactiveModel) currentInputField() *string {
	switch m.state {
	case stateTrimStart:
		return &m.startInput
	case stateTrimEnd:
		return &m.endInput
	case stateTargetSize:
		return &m.sizeInput
	default:
		return nil
	}
}

func (m *interactiveModel) appendInput(token string) bool {
	field := m.currentInputField()
	if field == nil {
		return false
	}

	r := []rune(token)
	if len(r) != 1 {
		return false
	}

	ch := r[0]
	if ch >= '0' && ch <= '9' {
		*field += string(ch)
		return true
	}
	if ch == ':' && m.state != stateTargetSize {
		*field += string(ch)
		return true
	}
	if ch == '.' || ch == ',' {
		*field += "."
		return true
	}
	return false
}

func (m *interactiveModel) popInput() {
	field := m.currentInputField()
	if field == nil || *field == "" {
		return
	}
	runes := []rune(*field)
	*field = string(runes[:len(runes)-1])
}

// ========================================
// Geçişler
// ========================================

func (m interactiveModel) goToMainMenu() interactiveModel {
	m.state = stateMainMenu
	m.cursor = 0
	m.inputErr = ""
	return m
}

func (m interactiveModel) goBack() interactiveModel {
	switch m.state {
	case stateFileBrowser:
		return m.goToMainMenu()
	case stateTrimStart:
		m.state = stateFileBrowser
		m.cursor = 0
	case stateTrimEnd:
		m.state = stateTrimStart
	case stateTargetSize:
		m.state = stateTrimEnd
	case statePlanPreview:
		m.state = stateTargetSize
	case stateExportDone:
		return m.goToMainMenu()
	}
	m.inputErr = ""
	return m
}

func (m interactiveModel) handleEnter() (tea.Model, tea.Cmd) {
	switch m.state {
	case stateMainMenu:
		switch m.cursor {
		case 0:
			m.cursor = 0
			m.browserErr = ""
			m.state = stateFileBrowser
			m.loadBrowserItems()
			return m, nil
		case 1:
			m.quitting = true
			return m, tea.Quit
		}

	case stateFileBrowser:
		return m.handleBrowserSelect()

	case stateTrimStart:
		if _, err := planner.ParseTimeSeconds(startOrZero(m.startInput)); err != nil {
			m.inputErr = "Geçersiz zaman (örn: 00:01:05, 1:05 veya 65)"
			return m, nil
		}
		m.state = stateTrimEnd
		return m, nil

	case stateTrimEnd:
		if strings.TrimSpace(m.endInput) != "" {
			if _, err := planner.ParseTimeSeconds(m.endInput); err != nil {
				m.inputErr = "Geçersiz zaman (boş bırakırsanız video sonu kullanılır)"
				return m, nil
			}
		}
		m.state = stateTargetSize
		return m, nil

	case stateTargetSize:
		return m.preparePlanPreview()

	case statePlanPreview:
		return m.startExport()

	case stateExportDone:
		return m.goToMainMenu(), nil
	}

	return m, nil
}

// ========================================
// Dosya Tarayıcı
// ========================================

func (m *interactiveModel) loadBrowserItems() {
	m.browserItems = nil
	m.browserErr = ""

	entries, err := os.ReadDir(m.browserDir)
	if err != nil {
		m.browserErr = fmt.Sprintf("Dizin okunamadı: %v", err)
		return
	}

	var dirs, files []browserItem
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if entry.IsDir() {
			dirs = append(dirs, browserItem{name: name, isDir: true})
			continue
		}
		if watch.IsVideoFile(name) {
			files = append(files, browserItem{name: name, isDir: false})
		}
	}

	sort.Slice(dirs, func(i, j int) bool { return dirs[i].name < dirs[j].name })
	sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })

	// ".." ile üst dizine çıkılır
	if filepath.Dir(m.browserDir) != m.browserDir {
		m.browserItems = append(m.browserItems, browserItem{name: "..", isDir: true})
	}
	m.browserItems = append(m.browserItems, dirs...)
	m.browserItems = append(m.browserItems, files...)
}

func (m interactiveModel) handleBrowserSelect() (tea.Model, tea.Cmd) {
	if m.cursor >= len(m.browserItems) {
		return m, nil
	}
	item := m.browserItems[m.cursor]

	if item.isDir {
		if item.name == ".." {
			m.browserDir = filepath.Dir(m.browserDir)
		} else {
			m.browserDir = filepath.Join(m.browserDir, item.name)
		}
		m.cursor = 0
		m.loadBrowserItems()
		return m, nil
	}

	path := filepath.Join(m.browserDir, item.name)
	source, err := probe.Probe(path)
	if err != nil {
		m.browserErr = fmt.Sprintf("Video okunamadı: %v", err)
		return m, nil
	}

	m.selectedFile = path
	m.source = source
	m.startInput = "0"
	m.endInput = ""
	m.inputErr = ""
	m.state = stateTrimStart
	return m, nil
}

// ========================================
// Plan ve Export
// ========================================

func startOrZero(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "0"
	}
	return raw
}

func (m interactiveModel) resolveTrimRange() (planner.TrimRange, error) {
	startSec, err := planner.ParseTimeSeconds(startOrZero(m.startInput))
	if err != nil {
		return planner.TrimRange{}, err
	}
	endSec := m.source.DurationSec
	if strings.TrimSpace(m.endInput) != "" {
		endSec, err = planner.ParseTimeSeconds(m.endInput)
		if err != nil {
			return planner.TrimRange{}, err
		}
	}
	return planner.TrimRange{StartSec: startSec, EndSec: endSec}, nil
}

func (m interactiveModel) preparePlanPreview() (tea.Model, tea.Cmd) {
	targetMB, err := parseTargetMB(m.sizeInput)
	if err != nil {
		m.inputErr = "Geçersiz boyut (örn: 10 veya 7.5)"
		return m, nil
	}

	trim, err := m.resolveTrimRange()
	if err != nil {
		m.inputErr = err.Error()
		return m, nil
	}

	plan, err := planner.ComputePlan(m.source, trim, targetMB, planner.DefaultConfig())
	if err != nil {
		m.inputErr = err.Error()
		return m, nil
	}

	outputPath := export.BuildOutputPath(m.selectedFile, m.defaultOutput, "", trim, targetMB)
	outputPath, skip, err := export.ResolveOutputPathConflict(outputPath, export.ConflictVersioned)
	if err != nil || skip {
		m.inputErr = "Çıktı yolu çözülemedi"
		return m, nil
	}

	m.plan = plan
	m.outputPath = outputPath
	m.inputErr = ""
	m.state = statePlanPreview
	return m, nil
}

func parseTargetMB(raw string) (float64, error) {
	var mb float64
	if _, err := fmt.Sscanf(strings.TrimSpace(raw), "%f", &mb); err != nil {
		return 0, err
	}
	if mb <= 0 {
		return 0, fmt.Errorf("boyut pozitif olmalı")
	}
	return mb, nil
}

func (m interactiveModel) startExport() (tea.Model, tea.Cmd) {
	targetMB, err := parseTargetMB(m.sizeInput)
	if err != nil {
		return m, nil
	}
	trim, err := m.resolveTrimRange()
	if err != nil {
		return m, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelExport = cancel
	m.started = time.Now()
	m.state = stateExporting
	m.spinnerTick = 0

	req := export.Request{
		SourcePath: m.selectedFile,
		Source:     m.source,
		Trim:       trim,
		TargetMB:   targetMB,
		OutputPath: m.outputPath,
	}

	return m, func() tea.Msg {
		defer cancel()
		started := time.Now()
		enc := &encoder.TwoPassEncoder{FFmpegPath: encoder.FindFFmpeg()}
		sup := export.NewSupervisor(planner.DefaultConfig(), enc.Encode)
		result, err := sup.Run(ctx, req)
		if err != nil {
			return exportDoneMsg{err: err, duration: time.Since(started)}
		}
		return exportDoneMsg{
			output:   result.OutputPath,
			bytes:    result.ActualBytes,
			attempts: result.Attempts,
			within:   result.WithinTolerance,
			duration: time.Since(started),
		}
	}
}

// ========================================
// View
// ========================================

func (m interactiveModel) View() string {
	if m.quitting {
		return gradientText("  👋 Görüşürüz!", gradientColors) + "\n\n"
	}

	switch m.state {
	case stateMainMenu:
		return m.viewMainMenu()
	case stateFileBrowser:
		return m.viewFileBrowser()
	case stateTrimStart, stateTrimEnd, stateTargetSize:
		return m.viewInputs()
	case statePlanPreview:
		return m.viewPlanPreview()
	case stateExporting:
		return m.viewExporting()
	case stateExportDone:
		return m.viewExportDone()
	}
	return ""
}

func (m interactiveModel) viewMainMenu() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(gradientText("  ✂️  VideoClipper CLI", gradientColors))
	b.WriteString("\n\n")
	b.WriteString(menuTitleStyle.Render("Ana Menü"))
	b.WriteString("\n")

	for i, item := range mainMenuItems {
		if i == m.cursor {
			b.WriteString(selectedItemStyle.Render(fmt.Sprintf("▸ %s %s", item.Icon, item.Title)))
			b.WriteString("\n")
			b.WriteString(breadcrumbStyle.Render("  " + descStyle.Render(item.Desc)))
		} else {
			b.WriteString(normalItemStyle.Render(fmt.Sprintf("%s %s", item.Icon, item.Title)))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  ↑/↓ gezin · enter seç · q çık"))
	b.WriteString("\n")
	return b.String()
}

func (m interactiveModel) viewFileBrowser() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(menuTitleStyle.Render("Video Seç"))
	b.WriteString("\n")
	b.WriteString(breadcrumbStyle.Render("📂 " + shortenPath(m.browserDir)))
	b.WriteString("\n\n")

	if m.browserErr != "" {
		b.WriteString(errorStyle.Render("  " + m.browserErr))
		b.WriteString("\n\n")
	}

	if len(m.browserItems) == 0 {
		b.WriteString(dimStyle.Render("  (bu dizinde video yok)"))
		b.WriteString("\n")
	}

	for i, item := range m.browserItems {
		label := item.name
		if item.isDir {
			label = folderStyle.Render("📁 " + label)
		} else {
			label = "🎬 " + label
		}
		if i == m.cursor {
			b.WriteString(selectedItemStyle.Render("▸ " + label))
		} else {
			b.WriteString(normalItemStyle.Render(label))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  ↑/↓ gezin · enter seç · esc geri"))
	b.WriteString("\n")
	return b.String()
}

func (m interactiveModel) viewInputs() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(menuTitleStyle.Render("Kırpma Ayarları"))
	b.WriteString("\n")
	b.WriteString(breadcrumbStyle.Render("🎬 " + filepath.Base(m.selectedFile) +
		dimStyle.Render(fmt.Sprintf("  (%s, %dx%d)",
			planner.FormatSeconds(m.source.DurationSec), m.source.Width, m.source.Height))))
	b.WriteString("\n\n")

	b.WriteString(m.renderInputLine("Başlangıç", m.startInput, stateTrimStart))
	b.WriteString(m.renderInputLine("Bitiş", endOrDefault(m.endInput), stateTrimEnd))
	b.WriteString(m.renderInputLine("Hedef boyut (MB)", m.sizeInput, stateTargetSize))

	if m.inputErr != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("  ⚠ " + m.inputErr))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  rakam/: gir · backspace sil · enter devam · esc geri"))
	b.WriteString("\n")
	return b.String()
}

func endOrDefault(end string) string {
	if strings.TrimSpace(end) == "" {
		return "(video sonu)"
	}
	return end
}

func (m interactiveModel) renderInputLine(label, value string, forState screenState) string {
	line := fmt.Sprintf("%-18s %s", label+":", value)
	if m.state == forState {
		return selectedItemStyle.Render("▸ "+line) + infoStyle.Render("▏") + "\n"
	}
	return normalItemStyle.Render(line) + "\n"
}

func (m interactiveModel) viewPlanPreview() string {
	var b strings.Builder

	channels := "stereo"
	if m.plan.AudioChannels == 1 {
		channels = "mono"
	}
	resolution := fmt.Sprintf("%dx%d", m.plan.Width, m.plan.Height)
	if m.plan.Downscaled {
		resolution += " (küçültüldü)"
	}

	b.WriteString("\n")
	b.WriteString(menuTitleStyle.Render("Encode Planı"))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("  Video:      %d kbps", m.plan.VideoKbps)))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("  Ses:        %d kbps (%s)", m.plan.AudioKbps, channels)))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render("  Çözünürlük: " + resolution))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render("  Çıktı:      " + shortenPath(m.outputPath)))
	b.WriteString("\n\n")
	b.WriteString(successStyle.Render("  enter ile başlat") + dimStyle.Render(" · esc geri"))
	b.WriteString("\n")
	return b.String()
}

func (m interactiveModel) viewExporting() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(menuTitleStyle.Render("Encode Ediliyor"))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("  %s İki geçişli encode çalışıyor... (%s)",
		spinnerFrames[m.spinnerIdx], time.Since(m.started).Round(time.Second))))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  🎬 " + filepath.Base(m.selectedFile)))
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("  ctrl+c iptal"))
	b.WriteString("\n")
	return b.String()
}

func (m interactiveModel) viewExportDone() string {
	var b strings.Builder
	b.WriteString("\n")

	if m.resultErr {
		b.WriteString(resultBoxStyle.Render(
			errorStyle.Render("❌ Export başarısız") + "\n\n" +
				errorStyle.Render(m.resultMsg)))
	} else {
		b.WriteString(resultBoxStyle.Render(
			successStyle.Render("✅ Export tamamlandı!") + "\n\n" +
				pathStyle.Render(shortenPath(m.resultMsg)) + "\n" +
				infoStyle.Render(m.resultInfo) + "\n" +
				dimStyle.Render(fmt.Sprintf("⏱  %s", m.duration.Round(time.Millisecond)))))
	}

	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("  enter ana menü · q çık"))
	b.WriteString("\n")
	return b.String()
}

// ========================================
// Yardımcılar
// ========================================

func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}

func gradientText(text string, colors []lipgloss.Color) string {
	if len(colors) == 0 {
		return text
	}
	runes := []rune(text)
	var result strings.Builder
	for i, r := range runes {
		colorIdx := i % len(colors)
		style := lipgloss.NewStyle().Bold(true).Foreground(colors[colorIdx])
		result.WriteString(style.Render(string(r)))
	}
	return result.String()
}

// RunInteractive interaktif modu başlatır.
func RunInteractive() error {
	if !probe.IsFFprobeAvailable() || !encoder.IsFFmpegAvailable() {
		ui.PrintError("FFmpeg/FFprobe bulunamadı! Kurulum için: videoclipper-cli setup")
		return fmt.Errorf("ffmpeg bulunamadi")
	}
	p := tea.NewProgram(newInteractiveModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
