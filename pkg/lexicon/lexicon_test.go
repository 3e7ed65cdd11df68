package lexicon

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestDefault_Invariants(t *testing.T) {
	t.Parallel()

	tables := DefaultTables()
	l := Default()

	for from, to := range tables.ActionSynonyms {
		if !l.IsAction(to) {
			t.Errorf("synonym %q -> %q: target is not an action keyword", from, to)
		}
	}
	for from, to := range tables.DirectionTranslation {
		if !l.IsDirection(to) {
			t.Errorf("translation %q -> %q: target is not a direction keyword", from, to)
		}
	}
}

func TestLexicon_Lookups(t *testing.T) {
	t.Parallel()

	l := Default()

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"hop is action", l.IsAction("hop"), true},
		{"skifte is action via synonym", l.IsAction("skifte"), true},
		{"farve is not action", l.IsAction("farve"), false},
		{"go canonical", l.CanonicalAction("go"), "move"},
		{"løb canonical", l.CanonicalAction("løb"), "run"},
		{"move canonical identity", l.CanonicalAction("move"), "move"},
		{"skift has no synonym", l.CanonicalAction("skift"), "skift"},
		{"venstre translates", l.TranslateDirection("venstre"), "left"},
		{"left translates to itself", l.TranslateDirection("left"), "left"},
		{"upper-case direction", l.IsDirection("HØJRE"), true},
		{"rød is color", l.IsColor("rød"), true},
		{"random is not a color", l.IsColor("random"), false},
		{"farve is danish", l.IsDanish("farve"), true},
		{"move is not danish", l.IsDanish("move"), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %v, want %v", tc.got, tc.want)
			}
		})
	}
}

func TestLexicon_DecomposedInput(t *testing.T) {
	t.Parallel()

	l := Default()
	// "gå" with a combining ring above (U+030A) instead of the precomposed å.
	decomposed := "ga\u030a"
	if !l.IsAction(decomposed) {
		t.Fatalf("IsAction(%q) = false, want true", decomposed)
	}
	if got := l.CanonicalAction(decomposed); got != "move" {
		t.Errorf("CanonicalAction(%q) = %q, want %q", decomposed, got, "move")
	}
}

func TestNormalize_DropsInvalidUTF8(t *testing.T) {
	t.Parallel()

	if got := Normalize("g\xffå\xfe"); got != "gå" {
		t.Errorf("Normalize = %q, want %q", got, "gå")
	}
	if !Default().IsAction("\xffGå") {
		t.Error("IsAction with a stray invalid byte = false, want true")
	}
}

func TestLexicon_Color(t *testing.T) {
	t.Parallel()

	l := Default()
	c, ok := l.Color("pink")
	if !ok {
		t.Fatal("Color(pink) not found")
	}
	if c != (RGB{R: 255, G: 182, B: 193}) {
		t.Errorf("Color(pink) = %+v", c)
	}
	if got := c.Hex(); got != "#ffb6c1" {
		t.Errorf("Hex() = %q, want %q", got, "#ffb6c1")
	}
	if _, ok := l.Color("magenta"); ok {
		t.Error("Color(magenta) found, want missing")
	}
}

func TestLexicon_ColorNamesSorted(t *testing.T) {
	t.Parallel()

	names := Default().ColorNames()
	if len(names) != 18 {
		t.Fatalf("len(ColorNames()) = %d, want 18", len(names))
	}
	if !slices.IsSorted(names) {
		t.Errorf("ColorNames() not sorted: %v", names)
	}

	// Mutating the returned slice must not leak into the lexicon.
	names[0] = "mutated"
	if Default().ColorNames()[0] == "mutated" {
		t.Error("ColorNames() returned shared storage")
	}
}

func TestLexicon_Vocabulary(t *testing.T) {
	t.Parallel()

	vocab := Default().Vocabulary()
	for _, want := range []string{"move", "skifte", "venstre", "rød", "farve", "gray"} {
		if !slices.Contains(vocab, want) {
			t.Errorf("Vocabulary() missing %q", want)
		}
	}
}

func TestLexicon_CanonicalActions(t *testing.T) {
	t.Parallel()

	got := Default().CanonicalActions()
	want := []string{"change", "jump", "move", "run"}
	if !slices.Equal(got, want) {
		t.Errorf("CanonicalActions() = %v, want %v", got, want)
	}
	if dirs := Default().DirectionKeywords(); len(dirs) != 8 || !slices.IsSorted(dirs) {
		t.Errorf("DirectionKeywords() = %v, want 8 sorted words", dirs)
	}
}

func TestNew_RejectsDanglingSynonym(t *testing.T) {
	t.Parallel()

	tables := DefaultTables()
	tables.ActionSynonyms["sprint"] = "dash"

	_, err := New(tables)
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("New: err = %v, want ErrInvalid", err)
	}
	if !strings.Contains(err.Error(), "sprint") {
		t.Errorf("error %q does not name the offending key", err)
	}
}

func TestNew_RejectsDanglingTranslation(t *testing.T) {
	t.Parallel()

	tables := DefaultTables()
	tables.DirectionTranslation["frem"] = "forward"

	if _, err := New(tables); !errors.Is(err, ErrInvalid) {
		t.Fatalf("New: err = %v, want ErrInvalid", err)
	}
}

func TestNew_RejectsEmptyWords(t *testing.T) {
	t.Parallel()

	tables := DefaultTables()
	tables.DirectionKeywords = append(tables.DirectionKeywords, "  ")

	if _, err := New(tables); !errors.Is(err, ErrInvalid) {
		t.Fatalf("New: err = %v, want ErrInvalid", err)
	}
}

func TestNew_CopiesInput(t *testing.T) {
	t.Parallel()

	tables := DefaultTables()
	l, err := New(tables)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tables.ActionSynonyms["go"] = "jump"
	if got := l.CanonicalAction("go"); got != "move" {
		t.Errorf("CanonicalAction(go) = %q after mutating input, want %q", got, "move")
	}
}
