package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists the speech backend providers shipped with
// coinhop. Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = []string{"whisper"}

// Load reads the YAML configuration file at path and returns a validated
// [Config] with defaults applied.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies defaults, and
// validates the result. An empty document yields [Default].
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	cfg.applyDefaults()
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Server.LogFormat != "" && !cfg.Server.LogFormat.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_format %q is invalid; valid values: text, json", cfg.Server.LogFormat))
	}

	// Normalizer
	if cfg.Normalizer.Detector != "" && !cfg.Normalizer.Detector.IsValid() {
		errs = append(errs, fmt.Errorf("normalizer.detector %q is invalid; valid values: vocabulary, lingua", cfg.Normalizer.Detector))
	}
	if cfg.Normalizer.EnglishMaxErrors < 0 || cfg.Normalizer.EnglishMaxErrors > 3 {
		errs = append(errs, fmt.Errorf("normalizer.english_max_errors %d is out of range [1, 3]", cfg.Normalizer.EnglishMaxErrors))
	}
	if cfg.Normalizer.DanishMaxDistance < 0 {
		errs = append(errs, fmt.Errorf("normalizer.danish_max_distance %d must not be negative", cfg.Normalizer.DanishMaxDistance))
	}

	// Speech
	for i, code := range cfg.Speech.Languages {
		if _, err := language.Parse(code); err != nil {
			errs = append(errs, fmt.Errorf("speech.languages[%d] %q is not a BCP 47 tag", i, code))
		}
	}
	if cfg.Speech.Timeout < 0 {
		errs = append(errs, fmt.Errorf("speech.timeout %s must not be negative", cfg.Speech.Timeout))
	}
	cb := cfg.Speech.CircuitBreaker
	if cb.MaxFailures < 0 || cb.HalfOpenMax < 0 || cb.ResetTimeout < 0 {
		errs = append(errs, errors.New("speech.circuit_breaker values must not be negative"))
	}

	names := make(map[string]int, len(cfg.Speech.Backends))
	for i, b := range cfg.Speech.Backends {
		prefix := fmt.Sprintf("speech.backends[%d]", i)
		if b.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		} else {
			if prev, ok := names[b.Name]; ok {
				errs = append(errs, fmt.Errorf("%s.name %q is a duplicate of speech.backends[%d]", prefix, b.Name, prev))
			}
			names[b.Name] = i
		}
		if b.Provider == "" {
			errs = append(errs, fmt.Errorf("%s.provider is required", prefix))
		} else if !slices.Contains(ValidProviderNames, b.Provider) {
			slog.Warn("config: unknown speech provider; may be a typo or a custom registration",
				"name", b.Name,
				"provider", b.Provider,
				"known", ValidProviderNames,
			)
		}
		if b.Provider == "whisper" && b.BaseURL == "" {
			errs = append(errs, fmt.Errorf("%s.base_url is required for provider whisper", prefix))
		}
	}
	if cfg.Speech.VocabularySnapping && len(cfg.Speech.Backends) == 0 {
		slog.Warn("config: speech.vocabulary_snapping is set but no speech backends are configured")
	}

	// Audio
	if cfg.Audio.ListenDuration < 0 || cfg.Audio.ListenDuration > MaxListenDuration {
		errs = append(errs, fmt.Errorf("audio.listen_duration %s is out of range (0, %s]", cfg.Audio.ListenDuration, MaxListenDuration))
	}

	// Game
	if cfg.Game.TickRate < 0 || cfg.Game.TickRate > MaxTickRate {
		errs = append(errs, fmt.Errorf("game.tick_rate %d is out of range [1, %d]", cfg.Game.TickRate, MaxTickRate))
	}

	return errors.Join(errs...)
}
