package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"

	"github.com/voxkit/voxkit/internal/dotenv"
	"github.com/voxkit/voxkit/pkg/core/realtime"
)

const (
	defaultAPIVersion   = "2024-10-01-preview"
	defaultInstructions = "Answer all the questions in a friendly manner."
	captureChunkMS      = 100
)

type chatConfig struct {
	ResourceName string
	Deployment   string
	APIKey       string
	APIVersion   string
	Mode         realtime.Mode
	Voice        string
	Instructions string
	EnvFile      string
	Verbose      bool
}

func parseChatConfig(args []string, getenv func(string) string) (chatConfig, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	cfg := chatConfig{}
	var mode string
	fs := flag.NewFlagSet("voxkit-chat", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&mode, "mode", "text", "session mode: text or voice")
	fs.StringVar(&cfg.Voice, "voice", "sage", "agent voice (voice mode)")
	fs.StringVar(&cfg.Instructions, "instructions", defaultInstructions, "system instructions for the agent")
	fs.StringVar(&cfg.EnvFile, "env-file", ".env", "path to an env file")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "enable debug logging")

	if err := fs.Parse(args); err != nil {
		return chatConfig{}, err
	}

	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "text":
		cfg.Mode = realtime.ModeText
	case "voice":
		cfg.Mode = realtime.ModeAudio
	default:
		return chatConfig{}, fmt.Errorf("invalid mode %q: expected text or voice", mode)
	}

	if err := dotenv.Load(cfg.EnvFile); err != nil {
		return chatConfig{}, err
	}

	cfg.ResourceName = strings.TrimSpace(getenv("AOAI_RESOURCE_NAME"))
	cfg.Deployment = strings.TrimSpace(getenv("AOAI_REALTIME_DEPLOYMENT"))
	cfg.APIKey = strings.TrimSpace(getenv("AOAI_API_KEY"))
	cfg.APIVersion = strings.TrimSpace(getenv("AOAI_API_VERSION"))
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultAPIVersion
	}

	if err := validateChatConfig(cfg); err != nil {
		return chatConfig{}, err
	}
	return cfg, nil
}

func validateChatConfig(cfg chatConfig) error {
	if cfg.ResourceName == "" {
		return errors.New("AOAI_RESOURCE_NAME is required")
	}
	if cfg.Deployment == "" {
		return errors.New("AOAI_REALTIME_DEPLOYMENT is required")
	}
	if cfg.APIKey == "" {
		return errors.New("AOAI_API_KEY is required")
	}
	return nil
}

// endpointURL builds the realtime websocket endpoint for the configured
// resource and deployment.
func endpointURL(cfg chatConfig) string {
	query := url.Values{}
	query.Set("api-version", cfg.APIVersion)
	query.Set("deployment", cfg.Deployment)
	u := url.URL{
		Scheme:   "wss",
		Host:     cfg.ResourceName + ".openai.azure.com",
		Path:     "/openai/realtime",
		RawQuery: query.Encode(),
	}
	return u.String()
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "voxkit-chat: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := parseChatConfig(args, os.Getenv)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	header := http.Header{}
	header.Set("api-key", cfg.APIKey)

	conn, err := realtime.Dial(ctx, endpointURL(cfg), header)
	if err != nil {
		return err
	}
	logger.Info("connected", "resource", cfg.ResourceName, "deployment", cfg.Deployment, "mode", cfg.Mode.String())

	session, err := realtime.Connect(conn, realtime.Options{
		Mode:         cfg.Mode,
		Instructions: cfg.Instructions,
		Voice:        cfg.Voice,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		session.Close()
	}()

	if cfg.Mode == realtime.ModeAudio {
		err = runVoice(session, logger)
	} else {
		err = runText(session)
	}
	if err != nil {
		return err
	}

	<-session.Done()
	return session.Err()
}

// runText feeds stdin lines to the session and prints response fragments as
// they stream in. Typing the terminate word ends the session.
func runText(session *realtime.Session) error {
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			session.Push(realtime.TextUnit(line))
		}
	}()

	for {
		frag, ok := session.Output().Pop()
		if !ok {
			return nil
		}
		fmt.Print(frag.Text)
	}
}

// runVoice streams microphone audio to the session and plays response audio
// as it arrives, printing text captions to stdout. Stdin stays live so the
// terminate word still works.
func runVoice(session *realtime.Session, logger *slog.Logger) error {
	mic, err := newFFmpegMicCapture(realtime.DefaultAudioConfig())
	if err != nil {
		return err
	}
	defer mic.Close()

	player, err := newFFplayPCMPlayer(realtime.DefaultAudioConfig())
	if err != nil {
		return err
	}
	defer player.Close()

	go func() {
		for {
			frame, err := mic.ReadFrame()
			if err != nil {
				if !errors.Is(err, io.EOF) {
					logger.Error("mic capture stopped", "error", err)
				}
				return
			}
			session.Push(realtime.AudioUnit(frame))
		}
	}()

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			session.Push(realtime.TextUnit(line))
		}
	}()

	for {
		frag, ok := session.Output().Pop()
		if !ok {
			return nil
		}
		switch frag.Kind {
		case realtime.FragmentText:
			fmt.Print(frag.Text)
		case realtime.FragmentAudio:
			if err := player.Write(frag.Audio); err != nil {
				logger.Error("playback error", "error", err)
			}
		}
	}
}
