package realtime

// AudioConfig specifies PCM format parameters for both directions of the
// session. The realtime protocol streams 16-bit signed little-endian mono.
type AudioConfig struct {
	// SampleRate in Hz. The protocol default is 24000.
	SampleRate int `json:"sample_rate"`

	// Channels: 1 for mono, 2 for stereo.
	Channels int `json:"channels"`

	// BitsPerSample: typically 16 for PCM.
	BitsPerSample int `json:"bits_per_sample"`
}

// DefaultAudioConfig returns the standard audio configuration.
func DefaultAudioConfig() AudioConfig {
	return AudioConfig{
		SampleRate:    24000,
		Channels:      1,
		BitsPerSample: 16,
	}
}

// BytesPerSecond returns the audio byte rate.
func (c AudioConfig) BytesPerSecond() int {
	return c.SampleRate * c.Channels * (c.BitsPerSample / 8)
}

// DurationMS returns the duration in milliseconds for the given byte count.
func (c AudioConfig) DurationMS(bytes int) int {
	if c.BytesPerSecond() == 0 {
		return 0
	}
	return (bytes * 1000) / c.BytesPerSecond()
}

// BytesForDurationMS returns the byte count for the given duration in
// milliseconds.
func (c AudioConfig) BytesForDurationMS(ms int) int {
	return (c.BytesPerSecond() * ms) / 1000
}

// DefaultFrameSize is the playback frame size in bytes. Decoded audio deltas
// are split into frames of this size before they reach the render sink.
const DefaultFrameSize = 1024

// SplitFrames slices pcm into consecutive frames of at most frameSize bytes.
// Byte order is preserved and a trailing partial frame is kept. Each frame
// is a copy, so the input buffer may be reused by the caller.
func SplitFrames(pcm []byte, frameSize int) [][]byte {
	if frameSize <= 0 || len(pcm) == 0 {
		return nil
	}
	frames := make([][]byte, 0, (len(pcm)+frameSize-1)/frameSize)
	for start := 0; start < len(pcm); start += frameSize {
		end := start + frameSize
		if end > len(pcm) {
			end = len(pcm)
		}
		frame := make([]byte, end-start)
		copy(frame, pcm[start:end])
		frames = append(frames, frame)
	}
	return frames
}
