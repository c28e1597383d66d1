package realtime

import (
	"bytes"
	"testing"
)

func TestSplitFramesRoundTrip(t *testing.T) {
	cases := []struct {
		name      string
		length    int
		frameSize int
		frames    int
	}{
		{"exact multiple", 4096, 1024, 4},
		{"trailing partial", 2500, 1024, 3},
		{"single short frame", 10, 1024, 1},
		{"frame size one", 5, 1, 5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pcm := make([]byte, tc.length)
			for i := range pcm {
				pcm[i] = byte(i % 251)
			}

			frames := SplitFrames(pcm, tc.frameSize)
			if len(frames) != tc.frames {
				t.Fatalf("got %d frames, want %d", len(frames), tc.frames)
			}
			joined := bytes.Join(frames, nil)
			if !bytes.Equal(joined, pcm) {
				t.Error("concatenated frames do not reproduce the input")
			}
			for i, frame := range frames[:len(frames)-1] {
				if len(frame) != tc.frameSize {
					t.Errorf("frame %d has %d bytes, want %d", i, len(frame), tc.frameSize)
				}
			}
		})
	}
}

func TestSplitFramesEmptyAndInvalid(t *testing.T) {
	if frames := SplitFrames(nil, 1024); frames != nil {
		t.Errorf("SplitFrames(nil) = %v, want nil", frames)
	}
	if frames := SplitFrames([]byte{1, 2, 3}, 0); frames != nil {
		t.Errorf("SplitFrames with frame size 0 = %v, want nil", frames)
	}
}

func TestSplitFramesCopiesInput(t *testing.T) {
	pcm := []byte{1, 2, 3, 4}
	frames := SplitFrames(pcm, 2)
	pcm[0] = 99
	if frames[0][0] != 1 {
		t.Error("frame aliases the input buffer")
	}
}

func TestAudioConfigConversions(t *testing.T) {
	cfg := DefaultAudioConfig()
	if got := cfg.BytesPerSecond(); got != 48000 {
		t.Errorf("BytesPerSecond = %d, want 48000", got)
	}
	if got := cfg.DurationMS(48000); got != 1000 {
		t.Errorf("DurationMS(48000) = %d, want 1000", got)
	}
	if got := cfg.BytesForDurationMS(100); got != 4800 {
		t.Errorf("BytesForDurationMS(100) = %d, want 4800", got)
	}
	if got := (AudioConfig{}).DurationMS(100); got != 0 {
		t.Errorf("zero config DurationMS = %d, want 0", got)
	}
}
