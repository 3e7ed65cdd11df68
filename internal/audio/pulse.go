// Package audio captures microphone input from PulseAudio (or PipeWire's
// Pulse compatibility server) as 16 kHz mono 16-bit PCM, the format the
// speech backends expect.
package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"

	"github.com/MrWong99/coinhop/internal/speech"
)

const (
	// SampleRate is the capture rate in Hz.
	SampleRate = 16000

	// fragmentBytes is 20 ms of 16 kHz mono s16.
	fragmentBytes = 640

	appName = "coinhop"
)

// ErrNoDevice is returned when no input source matches the configured device.
var ErrNoDevice = errors.New("audio: no matching input device")

// Device describes one Pulse input source.
type Device struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Muted       bool   `json:"muted"`
	Default     bool   `json:"default"`
}

// Recorder records fixed-length utterances.
type Recorder interface {
	Record(ctx context.Context, d time.Duration) (speech.Audio, error)
}

// PulseRecorder records from one Pulse source per call. It opens a fresh
// server connection for each recording, so a restarted sound server is
// picked up without restarting the game.
type PulseRecorder struct {
	device string

	// mu serialises recordings; one microphone cannot serve two at once.
	mu sync.Mutex
}

var _ Recorder = (*PulseRecorder)(nil)

// NewPulseRecorder returns a [PulseRecorder] for device, which is either
// "default" (or empty) for the server's default source or a case-insensitive
// substring of a source's id or description.
func NewPulseRecorder(device string) *PulseRecorder {
	return &PulseRecorder{device: device}
}

func newClient() (*pulse.Client, error) {
	c, err := pulse.NewClient(
		pulse.ClientApplicationName(appName),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return nil, fmt.Errorf("audio: connect pulse server: %w", err)
	}
	return c, nil
}

// ListDevices returns the available Pulse input sources.
func ListDevices(_ context.Context) ([]Device, error) {
	client, err := newClient()
	if err != nil {
		return nil, err
	}
	defer client.Close()
	return listDevices(client)
}

func listDevices(client *pulse.Client) ([]Device, error) {
	defaultSource, err := client.DefaultSource()
	if err != nil {
		return nil, fmt.Errorf("audio: read default source: %w", err)
	}
	defaultID := defaultSource.ID()

	var infos pulseproto.GetSourceInfoListReply
	if err := client.RawRequest(&pulseproto.GetSourceInfoList{}, &infos); err != nil {
		return nil, fmt.Errorf("audio: list sources: %w", err)
	}

	devices := make([]Device, 0, len(infos))
	for _, s := range infos {
		if s == nil {
			continue
		}
		devices = append(devices, Device{
			ID:          s.SourceName,
			Description: s.Device,
			Muted:       s.Mute,
			Default:     s.SourceName == defaultID,
		})
	}
	return devices, nil
}

// selectDevice picks the source for term from devices.
func selectDevice(devices []Device, term string) (Device, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	for _, d := range devices {
		if term == "" || term == "default" {
			if d.Default {
				return d, nil
			}
			continue
		}
		if deviceMatches(d, term) {
			return d, nil
		}
	}
	if term == "" || term == "default" {
		return Device{}, fmt.Errorf("%w: default source is unavailable", ErrNoDevice)
	}
	return Device{}, fmt.Errorf("%w: %q", ErrNoDevice, term)
}

// deviceMatches reports whether a lower-case search term matches a device
// id or description.
func deviceMatches(d Device, term string) bool {
	if term == "" {
		return false
	}
	return strings.Contains(strings.ToLower(d.ID), term) ||
		strings.Contains(strings.ToLower(d.Description), term)
}

// Record captures d worth of audio, or less if ctx ends first. A recording
// cut short by ctx is still returned when it holds any audio.
func (r *PulseRecorder) Record(ctx context.Context, d time.Duration) (speech.Audio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	client, err := newClient()
	if err != nil {
		return speech.Audio{}, err
	}
	defer client.Close()

	devices, err := listDevices(client)
	if err != nil {
		return speech.Audio{}, err
	}
	dev, err := selectDevice(devices, r.device)
	if err != nil {
		return speech.Audio{}, err
	}
	if dev.Muted {
		slog.Warn("audio: recording from a muted source", "device", dev.ID)
	}
	source, err := client.SourceByID(dev.ID)
	if err != nil {
		return speech.Audio{}, fmt.Errorf("audio: resolve source %q: %w", dev.ID, err)
	}

	buf := newPCMBuffer(pcmBytes(d))
	stream, err := client.NewRecord(
		pulse.NewWriter(buf, pulseproto.FormatInt16LE),
		pulse.RecordSource(source),
		pulse.RecordMono,
		pulse.RecordSampleRate(SampleRate),
		pulse.RecordBufferFragmentSize(fragmentBytes),
		pulse.RecordMediaName(appName+" voice command"),
	)
	if err != nil {
		return speech.Audio{}, fmt.Errorf("audio: create pulse record stream: %w", err)
	}
	defer stream.Close()

	slog.Debug("audio: recording", "device", dev.ID, "duration", d)
	stream.Start()

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-buf.full:
	case <-ctx.Done():
	}
	stream.Stop()

	pcm := buf.Bytes()
	if len(pcm) == 0 && ctx.Err() != nil {
		return speech.Audio{}, ctx.Err()
	}
	return speech.Audio{PCM: pcm, SampleRate: SampleRate, Channels: 1}, nil
}

// pcmBytes is the size of d of 16 kHz mono s16 audio.
func pcmBytes(d time.Duration) int {
	return int(d.Seconds()*SampleRate) * 2
}

// pcmBuffer is a bounded io.Writer for the record stream. Writes past the
// limit are discarded and full is closed once.
type pcmBuffer struct {
	mu    sync.Mutex
	data  []byte
	limit int
	full  chan struct{}
	once  sync.Once
}

func newPCMBuffer(limit int) *pcmBuffer {
	return &pcmBuffer{data: make([]byte, 0, limit), limit: limit, full: make(chan struct{})}
}

func (b *pcmBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if room := b.limit - len(b.data); room > 0 {
		if len(p) > room {
			b.data = append(b.data, p[:room]...)
		} else {
			b.data = append(b.data, p...)
		}
	}
	if len(b.data) >= b.limit {
		b.once.Do(func() { close(b.full) })
	}
	return len(p), nil
}

// Bytes returns a copy of the captured audio.
func (b *pcmBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.data...)
}
