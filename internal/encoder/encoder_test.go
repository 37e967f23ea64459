package encoder

import (
	"slices"
	"testing"

	"github.com/mlihgenel/videoclipper-cli/internal/planner"
)

func TestBuildPassArgs(t *testing.T) {
	plan := planner.EncodePlan{
		VideoKbps:     550,
		AudioKbps:     96,
		AudioChannels: 2,
		Width:         1280,
		Height:        720,
		Passes:        2,
	}
	trim := planner.TrimRange{StartSec: 5, EndSec: 35}

	pass1, pass2 := BuildPassArgs("in.mp4", "out.mp4", plan, trim, "/tmp/.vclip-test", false)

	if !hasPair(pass1, "-pass", "1") || !hasPair(pass2, "-pass", "2") {
		t.Fatalf("pass numbers missing: %v / %v", pass1, pass2)
	}
	if !hasPair(pass1, "-ss", "5.000") || !hasPair(pass1, "-t", "30.000") {
		t.Fatalf("trim window missing in pass1: %v", pass1)
	}
	if !hasPair(pass2, "-b:v", "550k") || !hasPair(pass2, "-b:a", "96k") {
		t.Fatalf("bitrates missing in pass2: %v", pass2)
	}
	if !slices.Contains(pass1, "-an") {
		t.Fatalf("first pass must drop audio: %v", pass1)
	}
	if slices.Contains(pass2, "-ac") {
		t.Fatalf("stereo plan must not downmix: %v", pass2)
	}
	if slices.Contains(pass1, "-vf") {
		t.Fatalf("no scale filter expected without downscale: %v", pass1)
	}
	if pass2[len(pass2)-1] != "out.mp4" {
		t.Fatalf("output path must be last arg: %v", pass2)
	}
}

func TestBuildPassArgsMonoDownscale(t *testing.T) {
	plan := planner.EncodePlan{
		VideoKbps:     80,
		AudioKbps:     48,
		AudioChannels: 1,
		Width:         640,
		Height:        360,
		Downscaled:    true,
		Passes:        2,
	}
	trim := planner.TrimRange{StartSec: 0, EndSec: 10}

	pass1, pass2 := BuildPassArgs("in.mp4", "out.mp4", plan, trim, "/tmp/.vclip-test", false)

	if !hasPair(pass1, "-vf", "scale=640:360:flags=lanczos") {
		t.Fatalf("scale filter missing: %v", pass1)
	}
	if !hasPair(pass2, "-ac", "1") {
		t.Fatalf("mono plan must downmix: %v", pass2)
	}
}

func hasPair(args []string, flag, value string) bool {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == flag && args[i+1] == value {
			return true
		}
	}
	return false
}
