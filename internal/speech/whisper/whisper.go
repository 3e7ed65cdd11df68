// Package whisper provides a [speech.Transcriber] backed by a whisper.cpp
// server.
//
// whisper-server exposes a batch REST API at POST /inference. Each recording
// is wrapped in a WAV container and uploaded as multipart form data together
// with the base language code ("da", "en") and, optionally, a model name.
//
// Usage:
//
//	c, err := whisper.New("http://localhost:8081", whisper.WithModel("small"))
//	text, err := c.Transcribe(ctx, audio, language.Danish)
package whisper

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/MrWong99/coinhop/internal/speech"
)

// bitsPerSample is fixed at 16 for the 16-bit signed little-endian PCM
// audio that whisper.cpp expects.
const bitsPerSample = 16

// maxResponseBytes caps the response body read from the server.
const maxResponseBytes = 1 << 20

// Compile-time assertion that Client implements speech.Transcriber.
var _ speech.Transcriber = (*Client)(nil)

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithModel sets the model identifier forwarded to the whisper.cpp server
// (e.g., "base", "small"). When empty the server uses whichever model it was
// started with, which is the default.
func WithModel(model string) Option {
	return func(c *Client) {
		c.model = model
	}
}

// WithHTTPClient replaces the HTTP client. The default has a 30 s timeout;
// callers normally bound each request with a context deadline instead.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// Client talks to one whisper.cpp server. It holds no per-request state and
// is safe for concurrent use.
type Client struct {
	serverURL  string
	model      string
	httpClient *http.Client
}

// New creates a Client for the server at serverURL
// (e.g., "http://localhost:8081"). serverURL must be non-empty.
func New(serverURL string, opts ...Option) (*Client, error) {
	if serverURL == "" {
		return nil, errors.New("whisper: serverURL must not be empty")
	}
	c := &Client{
		serverURL:  strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Close drops idle keep-alive connections to the server.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// Transcribe implements [speech.Transcriber]. Whisper models are keyed on
// the base language, so "da-DK" is sent as "da". An undetermined tag lets the
// server auto-detect.
func (c *Client) Transcribe(ctx context.Context, audio speech.Audio, lang language.Tag) (string, error) {
	sampleRate, channels := audio.SampleRate, audio.Channels
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	if channels <= 0 {
		channels = 1
	}
	wav := encodeWAV(audio.PCM, sampleRate, channels)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", fmt.Errorf("whisper: create form file: %w", err)
	}
	if _, err := fw.Write(wav); err != nil {
		return "", fmt.Errorf("whisper: write wav data: %w", err)
	}

	if base, conf := lang.Base(); conf != language.No && lang != language.Und {
		if err := mw.WriteField("language", base.String()); err != nil {
			return "", fmt.Errorf("whisper: write language field: %w", err)
		}
	}
	if c.model != "" {
		if err := mw.WriteField("model", c.model); err != nil {
			return "", fmt.Errorf("whisper: write model field: %w", err)
		}
	}
	if err := mw.WriteField("response_format", "json"); err != nil {
		return "", fmt.Errorf("whisper: write response_format field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("whisper: close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+"/inference", &body)
	if err != nil {
		return "", fmt.Errorf("whisper: create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("whisper: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("whisper: server returned HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("whisper: read response body: %w", err)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("whisper: parse JSON response: %w", err)
	}
	return cleanTranscript(result.Text), nil
}

// nonSpeechMarkers are annotations whisper emits for audio without speech.
var nonSpeechMarkers = []string{"[BLANK_AUDIO]", "[silence]", "(silence)", "[inaudible]"}

// cleanTranscript strips whisper's non-speech annotations so silence comes
// back as an empty transcript rather than a marker.
func cleanTranscript(text string) string {
	for _, m := range nonSpeechMarkers {
		text = strings.ReplaceAll(text, m, "")
	}
	return strings.TrimSpace(text)
}

// encodeWAV wraps raw 16-bit signed little-endian PCM data in a standard
// RIFF/WAV container.
func encodeWAV(pcm []byte, sampleRate, channels int) []byte {
	bps := bitsPerSample
	byteRate := sampleRate * channels * bps / 8
	blockAlign := channels * bps / 8
	dataSize := len(pcm)

	buf := make([]byte, 44+dataSize)

	// RIFF chunk descriptor
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize))
	copy(buf[8:12], "WAVE")

	// fmt sub-chunk
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], uint16(bps))

	// data sub-chunk
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))
	copy(buf[44:], pcm)

	return buf
}
