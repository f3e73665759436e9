package config

const (
	defaultDataDir               = "~/.local/share/parley/data"
	defaultLogDir                = "~/.local/share/parley/logs"
	defaultScenarioDir           = "~/.config/parley/scenarios"
	defaultAPIBind               = "127.0.0.1:8176"
	defaultLLMBaseURL            = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel              = "google/gemini-3-flash-preview"
	defaultLLMTimeoutSeconds     = 60
	defaultSpeechVoice           = "alloy"
	defaultSpeechMaxTextLen      = 1000
	defaultSpeechTimeoutSeconds  = 30
	defaultTranscriberBinary     = "whisper-cli"
	defaultFFmpegBinary          = "ffmpeg"
	defaultTranscriberModel      = "~/.local/share/parley/models/ggml-base.en.bin"
	defaultTranscribeTimeoutSecs = 60
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:     defaultDataDir,
			LogDir:      defaultLogDir,
			ScenarioDir: defaultScenarioDir,
			APIBind:     defaultAPIBind,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Speech: Speech{
			Voice:       defaultSpeechVoice,
			MaxTextLen:  defaultSpeechMaxTextLen,
			TimeoutSecs: defaultSpeechTimeoutSeconds,
		},
		Transcriber: Transcriber{
			Binary:         defaultTranscriberBinary,
			FFmpegBinary:   defaultFFmpegBinary,
			Model:          defaultTranscriberModel,
			TimeoutSeconds: defaultTranscribeTimeoutSecs,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
