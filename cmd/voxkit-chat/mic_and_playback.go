package main

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"sync"

	"github.com/voxkit/voxkit/pkg/core/realtime"
)

// ffmpegMicCapture is the capture source for voice mode: an ffmpeg
// subprocess recording 16-bit mono PCM from the default input device.
type ffmpegMicCapture struct {
	cmd       *exec.Cmd
	stdout    io.ReadCloser
	frameSize int
}

func newFFmpegMicCapture(audio realtime.AudioConfig) (*ffmpegMicCapture, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, errors.New("ffmpeg is required for voice mode mic capture (install ffmpeg and ensure it is in PATH)")
	}
	args, err := micFFmpegArgs(runtime.GOOS, audio.SampleRate)
	if err != nil {
		return nil, err
	}
	cmd := exec.Command("ffmpeg", args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("open ffmpeg stdout: %w", err)
	}
	cmd.Stderr = io.Discard
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg mic capture: %w", err)
	}
	return &ffmpegMicCapture{
		cmd:       cmd,
		stdout:    stdout,
		frameSize: audio.BytesForDurationMS(captureChunkMS),
	}, nil
}

func micFFmpegArgs(goos string, sampleRate int) ([]string, error) {
	switch goos {
	case "darwin":
		return []string{
			"-hide_banner", "-loglevel", "error",
			"-f", "avfoundation", "-i", ":0",
			"-ac", "1", "-ar", fmt.Sprintf("%d", sampleRate),
			"-f", "s16le", "-",
		}, nil
	case "linux":
		return []string{
			"-hide_banner", "-loglevel", "error",
			"-f", "pulse", "-i", "default",
			"-ac", "1", "-ar", fmt.Sprintf("%d", sampleRate),
			"-f", "s16le", "-",
		}, nil
	default:
		return nil, fmt.Errorf("mic capture is not implemented for %s; supported platforms: darwin, linux", goos)
	}
}

// ReadFrame blocks for one full fixed-size PCM frame.
func (m *ffmpegMicCapture) ReadFrame() ([]byte, error) {
	if m == nil || m.stdout == nil {
		return nil, io.EOF
	}
	frame := make([]byte, m.frameSize)
	if _, err := io.ReadFull(m.stdout, frame); err != nil {
		return nil, err
	}
	return frame, nil
}

func (m *ffmpegMicCapture) Close() error {
	if m == nil {
		return nil
	}
	if m.cmd != nil && m.cmd.Process != nil {
		_ = m.cmd.Process.Kill()
		_ = m.cmd.Wait()
	}
	return nil
}

// ffplayPCMPlayer is the render sink for voice mode: an ffplay subprocess
// playing raw PCM from stdin. Barge-in needs no special handling here; the
// engines simply stop delivering frames once the outbound queue is cleared.
type ffplayPCMPlayer struct {
	mu    sync.Mutex
	cmd   *exec.Cmd
	stdin io.WriteCloser
}

func newFFplayPCMPlayer(audio realtime.AudioConfig) (*ffplayPCMPlayer, error) {
	if _, err := exec.LookPath("ffplay"); err != nil {
		return nil, errors.New("ffplay is required for voice mode playback (install ffmpeg/ffplay and ensure it is in PATH)")
	}
	cmd := exec.Command("ffplay",
		"-nodisp",
		"-autoexit",
		"-loglevel", "error",
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", audio.SampleRate),
		"-ac", "1",
		"-i", "pipe:0",
	)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("open ffplay stdin: %w", err)
	}
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffplay: %w", err)
	}
	return &ffplayPCMPlayer{cmd: cmd, stdin: stdin}, nil
}

func (p *ffplayPCMPlayer) Write(pcm []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stdin == nil {
		return errors.New("ffplay stdin is not initialized")
	}
	_, err := p.stdin.Write(pcm)
	return err
}

func (p *ffplayPCMPlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd != nil && p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
		_ = p.cmd.Wait()
	}
	p.stdin = nil
	return nil
}
