package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mlihgenel/videoclipper-cli/internal/planner"
)

func testRequest(t *testing.T, targetMB float64) Request {
	t.Helper()
	dir := t.TempDir()
	return Request{
		SourcePath: filepath.Join(dir, "kaynak.mp4"),
		Source:     planner.SourceInfo{DurationSec: 120, Width: 1920, Height: 1080, FrameRate: 30},
		Trim:       planner.TrimRange{StartSec: 0, EndSec: 120},
		TargetMB:   targetMB,
		OutputPath: filepath.Join(dir, "kaynak_trim.mp4"),
	}
}

// sizedEncode her çağrıda sıradaki boyutta (MB) sahte bir çıktı yazar.
func sizedEncode(sizesMB ...float64) EncodeFunc {
	call := 0
	return func(ctx context.Context, src, dst string, plan planner.EncodePlan, trim planner.TrimRange) (int64, error) {
		if call >= len(sizesMB) {
			return 0, fmt.Errorf("beklenmeyen encode cagrisi: %d", call)
		}
		n := int64(sizesMB[call] * 1_000_000)
		call++
		if err := os.WriteFile(dst, make([]byte, 16), 0644); err != nil {
			return 0, err
		}
		return n, nil
	}
}

func TestSupervisorReplanConverges(t *testing.T) {
	// İlk encode %15 büyük çıkar, düzeltilmiş hedefle ikinci deneme bandın içinde biter.
	sup := NewSupervisor(planner.DefaultConfig(), sizedEncode(11.5, 9.8))
	req := testRequest(t, 10)

	var corrected float64
	origEncode := sup.Encode
	sup.Encode = func(ctx context.Context, src, dst string, plan planner.EncodePlan, trim planner.TrimRange) (int64, error) {
		corrected = float64(plan.VideoKbps + plan.AudioKbps)
		return origEncode(ctx, src, dst, plan, trim)
	}

	res, err := sup.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", res.Attempts)
	}
	if !res.WithinTolerance {
		t.Fatalf("expected result within tolerance")
	}
	if res.ActualBytes != 9_800_000 {
		t.Fatalf("unexpected actual size: %d", res.ActualBytes)
	}
	// Düzeltilmiş hedef ~8.7MB: ikinci plan ilkinden belirgin düşük bitrate taşımalı.
	firstTotal := int(10 * 8 * 1_000_000 * sup.Config.OverheadFactor / 120 / 1000)
	if corrected >= float64(firstTotal) {
		t.Fatalf("expected lower bitrate on replan: %.0f >= %d", corrected, firstTotal)
	}
	if res.CorrectedMB < 8.5 || res.CorrectedMB > 8.9 {
		t.Fatalf("unexpected corrected target: %.3f MB", res.CorrectedMB)
	}
	if _, err := os.Stat(res.OutputPath); err != nil {
		t.Fatalf("accepted output missing: %v", err)
	}
}

func TestSupervisorAcceptsAfterRetriesExhausted(t *testing.T) {
	// Her deneme %20 sapıyor; bütçe bitince sonuç yine de kabul edilir ve
	// gerçek boyut raporlanır.
	sup := NewSupervisor(planner.DefaultConfig(), sizedEncode(12, 12, 12))
	req := testRequest(t, 10)

	res, err := sup.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("expected acceptance, got %v", err)
	}
	if res.WithinTolerance {
		t.Fatalf("result should be reported as out of tolerance")
	}
	if res.ActualBytes != 12_000_000 {
		t.Fatalf("unexpected reported size: %d", res.ActualBytes)
	}
	if res.Attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", res.Attempts)
	}
}

func TestSupervisorPlannerErrorFailsWithoutEncode(t *testing.T) {
	encoded := false
	sup := NewSupervisor(planner.DefaultConfig(), func(ctx context.Context, src, dst string, plan planner.EncodePlan, trim planner.TrimRange) (int64, error) {
		encoded = true
		return 0, nil
	})

	req := testRequest(t, 0.5)
	req.Source = planner.SourceInfo{DurationSec: 600, Width: 1280, Height: 720, FrameRate: 25}
	req.Trim = planner.TrimRange{StartSec: 0, EndSec: 600}

	_, err := sup.Run(context.Background(), req)
	if !errors.Is(err, planner.ErrTargetTooSmall) {
		t.Fatalf("expected ErrTargetTooSmall, got %v", err)
	}
	if encoded {
		t.Fatalf("encode must not run for an unsatisfiable target")
	}
	// Plan hiç oluşmadı: hata mesajı sıfır planı ve "deneme 0" ifadesini taşımamalı.
	if strings.Contains(err.Error(), "deneme 0") || strings.Contains(err.Error(), "0k video") {
		t.Fatalf("planner failure must not report an empty plan: %v", err)
	}
	if _, statErr := os.Stat(req.OutputPath); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("no output expected, stat: %v", statErr)
	}
}

func TestSupervisorRetriesTransientEncodeFailure(t *testing.T) {
	calls := 0
	sup := NewSupervisor(planner.DefaultConfig(), func(ctx context.Context, src, dst string, plan planner.EncodePlan, trim planner.TrimRange) (int64, error) {
		calls++
		if calls == 1 {
			return 0, fmt.Errorf("gecici hata")
		}
		if err := os.WriteFile(dst, make([]byte, 16), 0644); err != nil {
			return 0, err
		}
		return 10_000_000, nil
	})

	res, err := sup.Run(context.Background(), testRequest(t, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 || res.Attempts != 2 {
		t.Fatalf("expected one retry, calls=%d attempts=%d", calls, res.Attempts)
	}
}

func TestSupervisorEncodeFailurePermanent(t *testing.T) {
	sup := NewSupervisor(planner.DefaultConfig(), func(ctx context.Context, src, dst string, plan planner.EncodePlan, trim planner.TrimRange) (int64, error) {
		return 0, fmt.Errorf("surekli hata")
	})

	req := testRequest(t, 10)
	_, err := sup.Run(context.Background(), req)
	if err == nil {
		t.Fatalf("expected failure after retries exhausted")
	}
	if _, statErr := os.Stat(req.OutputPath); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("failed export must not leave output, stat: %v", statErr)
	}
}

func TestSupervisorEmptyOutputNotAccepted(t *testing.T) {
	// Süreç "başarılı" dönüp 0 bayt yazarsa sonuç kabul edilmemeli ve oransal
	// düzeltme sıfıra bölünmemeli.
	sup := NewSupervisor(planner.DefaultConfig(), sizedEncode(0, 0, 0))

	req := testRequest(t, 10)
	_, err := sup.Run(context.Background(), req)
	if err == nil {
		t.Fatalf("expected failure for empty encode output")
	}
	if !strings.Contains(err.Error(), "bos cikti") {
		t.Fatalf("unexpected failure reason: %v", err)
	}
	if _, statErr := os.Stat(req.OutputPath); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("empty output must not be renamed into place, stat: %v", statErr)
	}
}

func TestSupervisorEmptyOutputRetriedWithSameTarget(t *testing.T) {
	// Boş çıktıdan sonraki deneme hedefi değiştirmeden yeniden planlamalı.
	var lastPlan planner.EncodePlan
	origEncode := sizedEncode(0, 10)
	sup := NewSupervisor(planner.DefaultConfig(), nil)
	sup.Encode = func(ctx context.Context, src, dst string, plan planner.EncodePlan, trim planner.TrimRange) (int64, error) {
		lastPlan = plan
		return origEncode(ctx, src, dst, plan, trim)
	}

	res, err := sup.Run(context.Background(), testRequest(t, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", res.Attempts)
	}
	if res.CorrectedMB != 10 {
		t.Fatalf("empty output must not shift the planning target: %.3f MB", res.CorrectedMB)
	}
	// Plan makul bitrate sınırları içinde kalmalı.
	totalKbps := int(10 * 8 * 1_000_000 * sup.Config.OverheadFactor / 120 / 1000)
	if lastPlan.VideoKbps <= 0 || lastPlan.VideoKbps > totalKbps {
		t.Fatalf("implausible replanned bitrate: %d kbps", lastPlan.VideoKbps)
	}
}

func TestSupervisorBusy(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	sup := NewSupervisor(planner.DefaultConfig(), func(ctx context.Context, src, dst string, plan planner.EncodePlan, trim planner.TrimRange) (int64, error) {
		close(started)
		<-release
		if err := os.WriteFile(dst, make([]byte, 16), 0644); err != nil {
			return 0, err
		}
		return 10_000_000, nil
	})

	req := testRequest(t, 10)
	outcome := sup.Start(context.Background(), req)
	<-started

	second := req
	second.OutputPath = req.OutputPath + ".2.mp4"
	if _, err := sup.Run(context.Background(), second); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}

	close(release)
	if o := <-outcome; o.Err != nil {
		t.Fatalf("first export failed: %v", o.Err)
	}
}

func TestSupervisorCancellationLeavesNoOutput(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sup := NewSupervisor(planner.DefaultConfig(), func(ctx context.Context, src, dst string, plan planner.EncodePlan, trim planner.TrimRange) (int64, error) {
		cancel()
		<-ctx.Done()
		return 0, ctx.Err()
	})

	req := testRequest(t, 10)
	_, err := sup.Run(ctx, req)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	// Son yolda ve geçici dosyalarda hiçbir kalıntı olmamalı.
	if _, statErr := os.Stat(req.OutputPath); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("cancelled export must not leave output, stat: %v", statErr)
	}
	entries, err := os.ReadDir(filepath.Dir(req.OutputPath))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, e := range entries {
		t.Fatalf("unexpected leftover file: %s", e.Name())
	}

	// İptal edilen kaynak tekrar kullanılabilir olmalı (busy kilidi bırakılır).
	if err := sup.acquire(req.SourcePath); err != nil {
		t.Fatalf("busy lock not released after cancellation: %v", err)
	}
	sup.release(req.SourcePath)
}
