package command_test

import (
	"slices"
	"testing"

	"github.com/MrWong99/coinhop/pkg/command"
	"github.com/MrWong99/coinhop/pkg/lexicon"
)

func texts(tokens []command.Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}

func TestTokenize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{"move left", []string{"move", "left"}},
		{"  move\tleft \n", []string{"move", "left"}},
		{"move, left!", []string{"move", ",", "left", "!"}},
		{"don't jump", []string{"don't", "jump"}},
		{"'jump'", []string{"'", "jump", "'"}},
		{"gå højre", []string{"gå", "højre"}},
		{"gå venstre", []string{"gå", "venstre"}},
		{"step 2", []string{"step", "2"}},
		{"\xffmove\xfe left", []string{"move", "left"}},
		{"", nil},
	}
	for _, tt := range tests {
		got := texts(command.Tokenize(tt.in))
		if !slices.Equal(got, tt.want) {
			t.Errorf("Tokenize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTokenize_Lemma(t *testing.T) {
	t.Parallel()

	toks := command.Tokenize("jumping !")
	if len(toks) != 2 {
		t.Fatalf("len = %d, want 2", len(toks))
	}
	if toks[0].Lemma != "jump" {
		t.Errorf("Lemma(%q) = %q, want %q", toks[0].Text, toks[0].Lemma, "jump")
	}
	if toks[1].Lemma != "!" {
		t.Errorf("Lemma(%q) = %q, want %q", toks[1].Text, toks[1].Lemma, "!")
	}
}

func TestExtract(t *testing.T) {
	t.Parallel()

	lex := lexicon.Default()
	tests := []struct {
		in   string
		want command.Intent
	}{
		{"move left", command.Intent{Action: "move", Direction: "left"}},
		{"gå venstre", command.Intent{Action: "move", Direction: "left"}},
		{"løb højre", command.Intent{Action: "move", Direction: "right"}},
		{"skifte farve rød", command.Intent{Action: "change", Color: "rød"}},
		{"jump move", command.Intent{Action: "move"}},
		{"red blue", command.Intent{Color: "blue"}},
		{"up op", command.Intent{Direction: "up"}},
		{"skift", command.Intent{Action: "skift"}},
		{"nothing here", command.Intent{}},
	}
	for _, tt := range tests {
		got := command.Extract(lex, command.Tokenize(tt.in))
		if got != tt.want {
			t.Errorf("Extract(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestSynthesize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   command.Intent
		want string
	}{
		{"change with color", command.Intent{Action: "change", Color: "red", Direction: "left"}, "change color red"},
		{"change without color", command.Intent{Action: "change"}, "change color random"},
		{"jump ignores direction", command.Intent{Action: "jump", Direction: "left"}, "jump"},
		{"bare left", command.Intent{Direction: "left"}, "move left"},
		{"bare right", command.Intent{Direction: "right", Color: "red"}, "move right"},
		{"bare up", command.Intent{Direction: "up"}, command.Unrecognized},
		{"bare down", command.Intent{Direction: "down"}, command.Unrecognized},
		{"action direction", command.Intent{Action: "move", Direction: "left"}, "move left"},
		{"unvalidated pair", command.Intent{Action: "run", Direction: "up"}, "run up"},
		{"action only", command.Intent{Action: "move"}, command.Unrecognized},
		{"color only", command.Intent{Color: "red"}, command.Unrecognized},
		{"empty", command.Intent{}, command.Unrecognized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := command.Synthesize(tt.in); got != tt.want {
				t.Errorf("Synthesize(%+v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
