package transcript

import (
	"strings"
	"testing"
)

func TestNormalize_CorrectsArtefacts(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(true, nil)
	got := n.Normalize("dis is john callin bout the house")
	want := "this is john calling about the house"
	if got != want {
		t.Errorf("Normalize = %q, want %q", got, want)
	}
}

func TestNormalize_Disabled(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(false, nil)
	in := "Dis is John callin bout the house"
	if got := n.Normalize(in); got != in {
		t.Errorf("disabled normalizer changed text: %q", got)
	}
}

func TestNormalize_NoMatchPassthrough(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(true, nil)
	in := "Hello, my name is Sarah and I am with Premier Home Buyers."
	if got := n.Normalize(in); got != in {
		t.Errorf("clean text was rewritten: %q", got)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(true, nil)
	inputs := []string{
		"dis is john callin bout the house",
		"wood you consida sellin da property",
		"i yam gonna tink about it and call back tomorra",
		"no corrections needed here at all",
	}
	for _, in := range inputs {
		once := n.Normalize(in)
		twice := n.Normalize(once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestNormalize_TooManyCorrections(t *testing.T) {
	t.Parallel()

	// Eleven distinct dictionary entries fire, one past the limit, so the
	// original text must come back untouched.
	n := NewNormalizer(true, nil)
	in := "proprety aparment morgage adress tennant lanlord garaje basment vaccant ocupied definately"
	if got := n.Normalize(in); got != in {
		t.Errorf("expected original back after correction limit, got %q", got)
	}
}

func TestNormalize_WordCountDriftGate(t *testing.T) {
	t.Parallel()

	// "gonna" expands to "going to"; three repeats double the word count,
	// which trips the drift gate.
	n := NewNormalizer(true, nil)
	in := "gonna gonna gonna "
	if got := n.Normalize(in); got != in {
		t.Errorf("expected original back after drift gate, got %q", got)
	}

	// One expansion inside a longer sentence stays within the gate.
	out := n.Normalize("i am gonna send you the paperwork for the house today")
	if !strings.Contains(out, "going to") {
		t.Errorf("expected in-gate correction to apply, got %q", out)
	}
}
