// Package config provides the configuration schema, loader, and speech
// backend registry for coinhop.
package config

import "time"

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// LogFormat selects the slog handler.
type LogFormat string

const (
	LogText LogFormat = "text"
	LogJSON LogFormat = "json"
)

// IsValid reports whether f is a recognised log format.
func (f LogFormat) IsValid() bool {
	return f == LogText || f == LogJSON
}

// Detector selects the language detector used by the normalizer.
type Detector string

const (
	// DetectorVocabulary flags an utterance as Danish when any word belongs
	// to the curated Danish vocabulary.
	DetectorVocabulary Detector = "vocabulary"

	// DetectorLingua asks a statistical language model first and falls back
	// to the vocabulary detector for short or ambiguous input.
	DetectorLingua Detector = "lingua"
)

// IsValid reports whether d is a recognised detector.
func (d Detector) IsValid() bool {
	return d == DetectorVocabulary || d == DetectorLingua
}

// Defaults applied by [LoadFromReader] and [Default] to unset fields.
const (
	DefaultListenAddr        = ":8080"
	DefaultEnglishMaxErrors  = 2
	DefaultDanishMaxDistance = 2
	DefaultCacheSize         = 1024
	DefaultSpeechTimeout     = 10 * time.Second
	DefaultSilenceRMS        = 300
	DefaultListenDuration    = 3 * time.Second
	DefaultTickRate          = 30
	MaxTickRate              = 240
	MaxListenDuration        = 30 * time.Second
)

// Config is the root configuration structure. It is typically loaded from a
// YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Lexicon    LexiconConfig    `yaml:"lexicon"`
	Normalizer NormalizerConfig `yaml:"normalizer"`
	Speech     SpeechConfig     `yaml:"speech"`
	Audio      AudioConfig      `yaml:"audio"`
	Game       GameConfig       `yaml:"game"`
}

// ServerConfig holds network and logging settings.
type ServerConfig struct {
	// ListenAddr is the TCP address the HTTP server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// LogFormat selects text or JSON log output. Default: text.
	LogFormat LogFormat `yaml:"log_format"`

	// LogFile, when set, sends logs to a size-rotated file instead of stderr.
	LogFile string `yaml:"log_file"`
}

// LexiconConfig points at an optional YAML override of the built-in word
// tables. When Path is empty the built-in tables are used.
type LexiconConfig struct {
	Path string `yaml:"path"`
}

// NormalizerConfig tunes language detection and spelling correction.
type NormalizerConfig struct {
	// Detector selects the language detector. Default: vocabulary.
	Detector Detector `yaml:"detector"`

	// EnglishMaxErrors bounds the edit distance of English suggestions.
	EnglishMaxErrors int `yaml:"english_max_errors"`

	// DanishMaxDistance bounds the edit distance of Danish corrections.
	DanishMaxDistance int `yaml:"danish_max_distance"`

	// CacheSize is the number of corrected words kept in memory. Zero selects
	// the default; a negative value disables the cache.
	CacheSize int `yaml:"cache_size"`
}

// SpeechConfig configures spoken command input. With no backends the
// listen feature is disabled.
type SpeechConfig struct {
	// Languages are BCP 47 tags tried in order. Default: da-DK, en-US.
	Languages []string `yaml:"languages"`

	// Timeout bounds each recognition attempt.
	Timeout time.Duration `yaml:"timeout"`

	// SilenceRMS is the RMS level below which a recording is treated as
	// silence and not sent to a backend. Zero selects the default; a negative
	// value disables the check.
	SilenceRMS float64 `yaml:"silence_rms"`

	// VocabularySnapping snaps misheard transcript words onto the lexicon
	// vocabulary by sound before normalization.
	VocabularySnapping bool `yaml:"vocabulary_snapping"`

	// CircuitBreaker tunes the per-backend breakers.
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`

	// Backends are tried in order; the first is the primary.
	Backends []BackendEntry `yaml:"backends"`
}

// CircuitBreakerConfig mirrors the resilience breaker settings. Zero values
// select the breaker defaults.
type CircuitBreakerConfig struct {
	MaxFailures  int           `yaml:"max_failures"`
	ResetTimeout time.Duration `yaml:"reset_timeout"`
	HalfOpenMax  int           `yaml:"half_open_max"`
}

// BackendEntry is one speech recognition backend. Provider is used to look
// up the constructor in the [Registry].
type BackendEntry struct {
	// Name labels the backend in logs, metrics, and readiness output.
	Name string `yaml:"name"`

	// Provider selects the registered implementation (e.g., "whisper").
	Provider string `yaml:"provider"`

	// BaseURL is the backend's HTTP endpoint.
	BaseURL string `yaml:"base_url"`

	// Model selects a model on the backend, if it serves several.
	Model string `yaml:"model"`
}

// AudioConfig configures microphone capture.
type AudioConfig struct {
	// Device selects a capture source by ID or description substring. Empty
	// selects the default source.
	Device string `yaml:"device"`

	// ListenDuration is how long one listen records for.
	ListenDuration time.Duration `yaml:"listen_duration"`
}

// GameConfig configures the simulation.
type GameConfig struct {
	// TickRate is the number of physics ticks per second.
	TickRate int `yaml:"tick_rate"`

	// Seed fixes coin placement when non-zero.
	Seed uint64 `yaml:"seed"`
}

// Default returns a [Config] with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = DefaultListenAddr
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = LogInfo
	}
	if c.Server.LogFormat == "" {
		c.Server.LogFormat = LogText
	}
	if c.Normalizer.Detector == "" {
		c.Normalizer.Detector = DetectorVocabulary
	}
	if c.Normalizer.EnglishMaxErrors == 0 {
		c.Normalizer.EnglishMaxErrors = DefaultEnglishMaxErrors
	}
	if c.Normalizer.DanishMaxDistance == 0 {
		c.Normalizer.DanishMaxDistance = DefaultDanishMaxDistance
	}
	if c.Normalizer.CacheSize == 0 {
		c.Normalizer.CacheSize = DefaultCacheSize
	}
	if len(c.Speech.Languages) == 0 {
		c.Speech.Languages = []string{"da-DK", "en-US"}
	}
	if c.Speech.Timeout == 0 {
		c.Speech.Timeout = DefaultSpeechTimeout
	}
	if c.Speech.SilenceRMS == 0 {
		c.Speech.SilenceRMS = DefaultSilenceRMS
	}
	if c.Audio.ListenDuration == 0 {
		c.Audio.ListenDuration = DefaultListenDuration
	}
	if c.Game.TickRate == 0 {
		c.Game.TickRate = DefaultTickRate
	}
}
