package cmd

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mlihgenel/videoclipper-cli/internal/planner"
)

func TestNewInteractiveModelStartsAtMainMenu(t *testing.T) {
	m := newInteractiveModel()
	if m.state != stateMainMenu {
		t.Fatalf("expected initial stateMainMenu, got %v", m.state)
	}
	if m.cursor != 0 {
		t.Fatalf("expected cursor 0, got %d", m.cursor)
	}
	if strings.TrimSpace(m.sizeInput) == "" {
		t.Fatalf("expected default target size to be prefilled")
	}
}

func TestMainMenuQuitEntry(t *testing.T) {
	m := newInteractiveModel()
	m.cursor = len(mainMenuItems) - 1

	nextModel, cmd := m.handleEnter()
	next, ok := nextModel.(interactiveModel)
	if !ok {
		t.Fatalf("unexpected model type")
	}
	if !next.quitting {
		t.Fatalf("expected quitting true")
	}
	if cmd == nil {
		t.Fatalf("expected tea.Quit command")
	}
}

func TestInputAppendAndPop(t *testing.T) {
	m := newInteractiveModel()
	m.state = stateTrimStart
	m.startInput = ""

	for _, token := range []string{"1", ":", "0", "5", ",", "5"} {
		if !m.appendInput(token) {
			t.Fatalf("expected token %q to be accepted", token)
		}
	}
	if m.startInput != "1:05.5" {
		t.Fatalf("unexpected input value: %s", m.startInput)
	}

	if m.appendInput("x") {
		t.Fatalf("expected letter to be rejected")
	}

	m.popInput()
	if m.startInput != "1:05." {
		t.Fatalf("unexpected value after pop: %s", m.startInput)
	}
}

func TestTargetSizeInputRejectsColon(t *testing.T) {
	m := newInteractiveModel()
	m.state = stateTargetSize
	m.sizeInput = ""

	if m.appendInput(":") {
		t.Fatalf("expected colon to be rejected in size input")
	}
	if !m.appendInput("7") || !m.appendInput(".") || !m.appendInput("5") {
		t.Fatalf("expected digits and dot to be accepted")
	}
	if m.sizeInput != "7.5" {
		t.Fatalf("unexpected size input: %s", m.sizeInput)
	}
}

func TestTrimStartValidation(t *testing.T) {
	m := newInteractiveModel()
	m.state = stateTrimStart
	m.startInput = "1::2"

	nextModel, _ := m.handleEnter()
	next := nextModel.(interactiveModel)
	if next.state != stateTrimStart {
		t.Fatalf("expected to stay on stateTrimStart, got %v", next.state)
	}
	if next.inputErr == "" {
		t.Fatalf("expected validation error")
	}

	next.startInput = "00:01:05"
	nextModel, _ = next.handleEnter()
	next = nextModel.(interactiveModel)
	if next.state != stateTrimEnd {
		t.Fatalf("expected stateTrimEnd, got %v", next.state)
	}
}

func TestEmptyEndMeansVideoEnd(t *testing.T) {
	m := newInteractiveModel()
	m.source = planner.SourceInfo{DurationSec: 120, Width: 1920, Height: 1080, FrameRate: 30}
	m.startInput = "10"
	m.endInput = "  "

	trim, err := m.resolveTrimRange()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trim.StartSec != 10 || trim.EndSec != 120 {
		t.Fatalf("unexpected trim range: %+v", trim)
	}
}

func TestGoBackChain(t *testing.T) {
	m := newInteractiveModel()
	m.state = statePlanPreview

	m = m.goBack()
	if m.state != stateTargetSize {
		t.Fatalf("expected stateTargetSize, got %v", m.state)
	}
	m = m.goBack()
	if m.state != stateTrimEnd {
		t.Fatalf("expected stateTrimEnd, got %v", m.state)
	}
	m = m.goBack()
	if m.state != stateTrimStart {
		t.Fatalf("expected stateTrimStart, got %v", m.state)
	}
	m = m.goBack()
	if m.state != stateFileBrowser {
		t.Fatalf("expected stateFileBrowser, got %v", m.state)
	}
}

func TestExportDoneMessageUpdatesResult(t *testing.T) {
	m := newInteractiveModel()
	m.state = stateExporting

	nextModel, _ := m.Update(exportDoneMsg{output: "/tmp/klip_trim_0-10_5MB.mp4", bytes: 4_900_000, attempts: 2, within: true})
	next := nextModel.(interactiveModel)
	if next.state != stateExportDone {
		t.Fatalf("expected stateExportDone, got %v", next.state)
	}
	if next.resultErr {
		t.Fatalf("expected success result")
	}
	if !strings.Contains(next.resultInfo, "2 deneme") {
		t.Fatalf("expected attempt count in result info: %s", next.resultInfo)
	}
}

func TestCtrlCQuitsOutsideExport(t *testing.T) {
	m := newInteractiveModel()

	nextModel, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	next := nextModel.(interactiveModel)
	if !next.quitting {
		t.Fatalf("expected quitting true")
	}
	if cmd == nil {
		t.Fatalf("expected tea.Quit command")
	}
}
