package transcriber

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"parley/internal/services"
)

func TestTranscribeRejectsEmptyAudio(t *testing.T) {
	service := NewService(Config{})
	service.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		t.Fatal("no command should run for empty audio")
		return nil
	})
	_, err := service.Transcribe(context.Background(), nil)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTranscribeUnavailableBinary(t *testing.T) {
	service := NewService(Config{Binary: "definitely-not-a-real-binary-8271"})
	if service.Available() {
		t.Fatal("expected Available to be false for missing binary")
	}
	_, err := service.Transcribe(context.Background(), []byte("audio"))
	if !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}

func TestTranscribeRunsConversionThenWhisper(t *testing.T) {
	service := NewService(Config{Model: "/models/ggml-base.en.bin", TimeoutSeconds: 30})

	var commands [][]string
	service.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		if _, ok := ctx.Deadline(); !ok {
			t.Fatal("expected bounded context for subprocess")
		}
		commands = append(commands, append([]string{name}, args...))
		if name == DefaultBinary {
			// Whisper writes <prefix>.txt next to the input.
			outPrefix := args[len(args)-2]
			if err := os.WriteFile(outPrefix+".txt", []byte("hello there \n"), 0o600); err != nil {
				t.Fatalf("write transcript: %v", err)
			}
		}
		return nil
	})

	text, err := service.Transcribe(context.Background(), []byte("fake-upload"))
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if text != "hello there" {
		t.Fatalf("expected trimmed transcript, got %q", text)
	}
	if len(commands) != 2 {
		t.Fatalf("expected ffmpeg then whisper, got %d commands", len(commands))
	}
	if commands[0][0] != DefaultFFmpegBinary {
		t.Fatalf("expected ffmpeg first, got %v", commands[0])
	}
	joined := strings.Join(commands[0], " ")
	if !strings.Contains(joined, "-ac 1") || !strings.Contains(joined, "-ar 16000") || !strings.Contains(joined, "pcm_s16le") {
		t.Fatalf("expected 16kHz mono PCM conversion args, got %v", commands[0])
	}
	if commands[1][0] != DefaultBinary {
		t.Fatalf("expected whisper second, got %v", commands[1])
	}
	if !strings.Contains(strings.Join(commands[1], " "), "-m /models/ggml-base.en.bin") {
		t.Fatalf("expected model file flag, got %v", commands[1])
	}
}

func TestTranscribeCleansUpWorkDirOnFailure(t *testing.T) {
	service := NewService(Config{})

	var uploadPath string
	service.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		for i, arg := range args {
			if arg == "-i" && i+1 < len(args) {
				uploadPath = args[i+1]
			}
		}
		return errors.New("boom")
	})

	_, err := service.Transcribe(context.Background(), []byte("fake-upload"))
	if !errors.Is(err, services.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if uploadPath == "" {
		t.Fatal("expected ffmpeg to receive an input path")
	}
	if _, statErr := os.Stat(filepath.Dir(uploadPath)); !os.IsNotExist(statErr) {
		t.Fatalf("expected working directory to be removed, stat err: %v", statErr)
	}
}
