// Package mock provides a test double for [speech.Transcriber].
//
// Responses are keyed by the base language of the requested tag ("da", "en"),
// so a test can script what each language attempt returns:
//
//	tr := &mock.Transcriber{Responses: map[string]string{"en": "move left"}}
//	rec := speech.NewRecognizer(tr)
package mock

import (
	"context"
	"sync"

	"golang.org/x/text/language"

	"github.com/MrWong99/coinhop/internal/speech"
)

// Call records a single invocation of Transcriber.Transcribe.
type Call struct {
	Audio    speech.Audio
	Language string
}

// Transcriber is a mock [speech.Transcriber].
type Transcriber struct {
	mu sync.Mutex

	// Responses maps a base language code to the transcript returned for it.
	// Languages without an entry return "".
	Responses map[string]string

	// Err, if non-nil, is returned from every call.
	Err error

	// Block, if non-nil, makes Transcribe wait until it is closed or the
	// context is done.
	Block chan struct{}

	// Calls records every call in order.
	Calls []Call
}

var _ speech.Transcriber = (*Transcriber)(nil)

// Transcribe records the call and returns the scripted response.
func (m *Transcriber) Transcribe(ctx context.Context, audio speech.Audio, lang language.Tag) (string, error) {
	base, _ := lang.Base()

	m.mu.Lock()
	m.Calls = append(m.Calls, Call{Audio: audio, Language: lang.String()})
	block, err, resp := m.Block, m.Err, m.Responses[base.String()]
	m.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	return resp, nil
}

// CallCount returns the number of recorded calls. Thread-safe.
func (m *Transcriber) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// Languages returns the language of every recorded call in order.
func (m *Transcriber) Languages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Calls))
	for i, c := range m.Calls {
		out[i] = c.Language
	}
	return out
}
