package whisper

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/language"

	"github.com/MrWong99/coinhop/internal/speech"
)

// received captures what the fake server saw.
type received struct {
	language string
	model    string
	wav      []byte
}

// newFakeServer answers POST /inference with responseText and records the
// form fields of the last request.
func newFakeServer(t *testing.T, status int, responseText string, got *received) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/inference" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if got != nil {
			got.language = r.FormValue("language")
			got.model = r.FormValue("model")
			f, _, err := r.FormFile("file")
			if err == nil {
				got.wav, _ = io.ReadAll(f)
				f.Close()
			}
		}
		if status != http.StatusOK {
			http.Error(w, "boom", status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"text": responseText})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testAudio() speech.Audio {
	return speech.Audio{PCM: make([]byte, 3200), SampleRate: 16000, Channels: 1}
}

func TestNew_EmptyServerURL_ReturnsError(t *testing.T) {
	t.Parallel()

	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty serverURL, got nil")
	}
}

func TestTranscribe_SendsBaseLanguageAndModel(t *testing.T) {
	t.Parallel()

	var got received
	srv := newFakeServer(t, http.StatusOK, " Gå venstre ", &got)

	c, err := New(srv.URL+"/", WithModel("small"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	text, err := c.Transcribe(context.Background(), testAudio(), language.MustParse("da-DK"))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "Gå venstre" {
		t.Errorf("text = %q, want %q", text, "Gå venstre")
	}
	if got.language != "da" {
		t.Errorf("language field = %q, want %q", got.language, "da")
	}
	if got.model != "small" {
		t.Errorf("model field = %q, want %q", got.model, "small")
	}
	if len(got.wav) != 44+3200 || string(got.wav[0:4]) != "RIFF" {
		t.Errorf("uploaded file is not the expected WAV (len %d)", len(got.wav))
	}
}

func TestTranscribe_UndeterminedLanguageOmitsField(t *testing.T) {
	t.Parallel()

	var got received
	srv := newFakeServer(t, http.StatusOK, "jump", &got)
	c, _ := New(srv.URL)
	if _, err := c.Transcribe(context.Background(), testAudio(), language.Und); err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if got.language != "" {
		t.Errorf("language field = %q, want empty", got.language)
	}
}

func TestTranscribe_BlankAudioMarker(t *testing.T) {
	t.Parallel()

	srv := newFakeServer(t, http.StatusOK, " [BLANK_AUDIO]\n", nil)
	c, _ := New(srv.URL)
	text, err := c.Transcribe(context.Background(), testAudio(), language.English)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "" {
		t.Errorf("text = %q, want empty", text)
	}
}

func TestTranscribe_HTTPError(t *testing.T) {
	t.Parallel()

	srv := newFakeServer(t, http.StatusInternalServerError, "", nil)
	c, _ := New(srv.URL)
	_, err := c.Transcribe(context.Background(), testAudio(), language.English)
	if err == nil || !strings.Contains(err.Error(), "HTTP 500") {
		t.Fatalf("err = %v, want HTTP 500 error", err)
	}
}

func TestTranscribe_ContextDeadline(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The server only sees the client go away once the body is consumed.
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	c, _ := New(srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := c.Transcribe(ctx, testAudio(), language.English); err == nil {
		t.Fatal("expected error after deadline")
	}
}

func TestEncodeWAV_Header(t *testing.T) {
	t.Parallel()

	pcm := []byte{1, 2, 3, 4}
	wav := encodeWAV(pcm, 16000, 1)

	if len(wav) != 48 {
		t.Fatalf("len = %d, want 48", len(wav))
	}
	checks := []struct {
		name string
		got  uint32
		want uint32
	}{
		{"riff size", binary.LittleEndian.Uint32(wav[4:8]), 40},
		{"sample rate", binary.LittleEndian.Uint32(wav[24:28]), 16000},
		{"byte rate", binary.LittleEndian.Uint32(wav[28:32]), 32000},
		{"data size", binary.LittleEndian.Uint32(wav[40:44]), 4},
		{"channels", uint32(binary.LittleEndian.Uint16(wav[22:24])), 1},
		{"bits", uint32(binary.LittleEndian.Uint16(wav[34:36])), 16},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %d, want %d", c.name, c.got, c.want)
		}
	}
	if string(wav[8:12]) != "WAVE" || string(wav[36:40]) != "data" {
		t.Error("missing WAVE or data markers")
	}
	if string(wav[44:]) != string(pcm) {
		t.Error("PCM payload not copied verbatim")
	}
}
