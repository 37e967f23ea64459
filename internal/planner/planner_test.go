package planner

import (
	"errors"
	"testing"
)

func testSource() SourceInfo {
	return SourceInfo{
		DurationSec: 120,
		Width:       1920,
		Height:      1080,
		FrameRate:   30,
	}
}

func TestComputePlanBitrateSplit(t *testing.T) {
	cfg := DefaultConfig()
	source := testSource()
	trim := TrimRange{StartSec: 0, EndSec: 120}

	plan, err := ComputePlan(source, trim, 10, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	totalKbps := int(10 * 8 * 1_000_000 * cfg.OverheadFactor / 120 / 1000)
	if plan.VideoKbps+plan.AudioKbps != totalKbps {
		t.Fatalf("bitrate split mismatch: video=%d audio=%d total=%d", plan.VideoKbps, plan.AudioKbps, totalKbps)
	}
	if plan.VideoKbps < cfg.MinVideoKbps {
		t.Fatalf("video bitrate below floor: %d", plan.VideoKbps)
	}
	if plan.Passes != 2 {
		t.Fatalf("expected two passes, got %d", plan.Passes)
	}
}

func TestComputePlanDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	source := testSource()
	trim := TrimRange{StartSec: 3.5, EndSec: 47.25}

	first, err := ComputePlan(source, trim, 8, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := ComputePlan(source, trim, 8, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("plan is not deterministic: %+v vs %+v", first, second)
	}
}

func TestComputePlanAudioTiers(t *testing.T) {
	cfg := DefaultConfig()
	source := testSource()

	// Çok küçük hedef: mono ve düşük ses bitrate beklenir.
	plan, err := ComputePlan(source, TrimRange{StartSec: 0, EndSec: 120}, 2, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.AudioChannels != 1 || plan.AudioKbps != cfg.AudioMonoKbps {
		t.Fatalf("expected mono low tier, got %d ch %d kbps", plan.AudioChannels, plan.AudioKbps)
	}

	// Büyük hedef: stereo üst kademe.
	plan, err = ComputePlan(source, TrimRange{StartSec: 0, EndSec: 120}, 50, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.AudioChannels != 2 || plan.AudioKbps != cfg.AudioHighKbps {
		t.Fatalf("expected stereo high tier, got %d ch %d kbps", plan.AudioChannels, plan.AudioKbps)
	}
}

func TestComputePlanDownscale(t *testing.T) {
	cfg := DefaultConfig()
	source := SourceInfo{DurationSec: 300, Width: 3840, Height: 2160, FrameRate: 60}
	trim := TrimRange{StartSec: 0, EndSec: 300}

	plan, err := ComputePlan(source, trim, 5, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !plan.Downscaled {
		t.Fatalf("expected downscale for 4K at tiny bitrate")
	}
	if plan.Width%2 != 0 || plan.Height%2 != 0 {
		t.Fatalf("dimensions must be even: %dx%d", plan.Width, plan.Height)
	}
	if plan.Width >= source.Width || plan.Height >= source.Height {
		t.Fatalf("expected smaller output resolution, got %dx%d", plan.Width, plan.Height)
	}

	// Taban çözünürlüğe inilmediyse bpp eşiğin üzerinde olmalı.
	shortSide := plan.Height
	if plan.Width < plan.Height {
		shortSide = plan.Width
	}
	if shortSide >= cfg.MinShortSide*2 {
		bpp := bitsPerPixel(plan.VideoKbps, plan.Width, plan.Height, source.FrameRate)
		if bpp < cfg.MinBPP {
			t.Fatalf("bpp below threshold without reaching floor: %.4f", bpp)
		}
	}
}

func TestComputePlanGenerousTargetKeepsResolution(t *testing.T) {
	cfg := DefaultConfig()
	source := testSource()

	plan, err := ComputePlan(source, TrimRange{StartSec: 0, EndSec: 30}, 100, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Downscaled || plan.Width != source.Width || plan.Height != source.Height {
		t.Fatalf("expected source resolution for generous target, got %dx%d", plan.Width, plan.Height)
	}
}

func TestComputePlanTargetTooSmall(t *testing.T) {
	cfg := DefaultConfig()
	source := SourceInfo{DurationSec: 600, Width: 1280, Height: 720, FrameRate: 25}

	_, err := ComputePlan(source, TrimRange{StartSec: 0, EndSec: 600}, 0.5, cfg)
	if !errors.Is(err, ErrTargetTooSmall) {
		t.Fatalf("expected ErrTargetTooSmall, got %v", err)
	}
}

func TestComputePlanInvalidRange(t *testing.T) {
	cfg := DefaultConfig()
	source := testSource()

	cases := []TrimRange{
		{StartSec: 10, EndSec: 10},
		{StartSec: 20, EndSec: 5},
		{StartSec: -1, EndSec: 5},
		{StartSec: 0, EndSec: 500},
		{StartSec: 1, EndSec: 1.01},
	}
	for _, trim := range cases {
		if _, err := ComputePlan(source, trim, 10, cfg); !errors.Is(err, ErrInvalidRange) {
			t.Fatalf("expected ErrInvalidRange for %+v, got %v", trim, err)
		}
	}
}

func TestComputePlanUnknownFrameRate(t *testing.T) {
	cfg := DefaultConfig()
	source := SourceInfo{DurationSec: 60, Width: 1920, Height: 1080}

	plan, err := ComputePlan(source, TrimRange{StartSec: 0, EndSec: 60}, 3, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Downscaled {
		t.Fatalf("downscale decision requires a known frame rate")
	}
}
