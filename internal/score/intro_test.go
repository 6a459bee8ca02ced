package score

import (
	"math"
	"strings"
	"testing"

	"github.com/callsift/callsift/internal/detect"
)

func TestEvaluate_CleanIntroNoRebuttal(t *testing.T) {
	t.Parallel()

	card := Evaluate(Input{
		Transcript: "hi this is john from acme how are you doing today",
		AgentName:  "John Smith",
		Releasing:  detect.No,
		LateHello:  detect.No,
		Rebuttal:   detect.No,
	})

	if card.AgentIntro.Display != detect.Yes {
		t.Error("agent intro not detected")
	}
	if card.OwnerName.Display != detect.No {
		t.Error("owner name falsely detected")
	}
	if card.PropertyRef.Display != detect.No {
		t.Error("property reference falsely detected")
	}
	if got := card.Percent(); math.Abs(got-50) > 0.01 {
		t.Errorf("Percent = %v, want 50", got)
	}
	if card.Status() != StatusGood {
		t.Errorf("Status = %q, want %q", card.Status(), StatusGood)
	}
}

func TestEvaluate_AgentIntroFuzzyName(t *testing.T) {
	t.Parallel()

	// Transcription mangled "Jonathan" into "jonathon".
	card := Evaluate(Input{
		Transcript: "good morning my name is jonathon with acme realty",
		AgentName:  "Jonathan Price",
	})
	if card.AgentIntro.Display != detect.Yes {
		t.Error("fuzzy agent name not matched")
	}
}

func TestEvaluate_AgentIntroFallbackToken(t *testing.T) {
	t.Parallel()

	// Name mismatch, but the token is still a plausible name.
	card := Evaluate(Input{
		Transcript: "hello this is marcus calling about your listing",
		AgentName:  "Beatrice Wong",
	})
	if card.AgentIntro.Display != detect.Yes {
		t.Error("plausible intro token rejected")
	}

	// Filler after the lead-in is not an intro.
	card = Evaluate(Input{
		Transcript: "yeah this is really awkward but i am calling you",
		AgentName:  "Beatrice Wong",
	})
	if card.AgentIntro.Display != detect.No {
		t.Error("filler token accepted as intro")
	}
}

func TestEvaluate_IntroWindowLimit(t *testing.T) {
	t.Parallel()

	padding := strings.Repeat("uh ", 200) // pushes the intro past 450 chars
	card := Evaluate(Input{
		Transcript: padding + "this is sandra from acme",
		AgentName:  "Sandra Lee",
	})
	if card.AgentIntro.Display != detect.No {
		t.Error("intro outside the opening window was counted")
	}
}

func TestEvaluate_OwnerName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		transcript string
		agentName  string
		want       detect.Verdict
	}{
		{"yes ma'am we spoke last week", "", detect.Yes},
		{"thank you sir i appreciate your time", "", detect.Yes},
		{"hi margaret this is dave", "Dave Miller", detect.Yes},
		{"hi there how are you", "", detect.No},
		{"hello yes i am calling about", "", detect.No},
		// The agent greeting with their own name is not the owner's name,
		// even when transcription respells it.
		{"hello dave here calling from acme", "Dave Miller", detect.No},
		{"hi dayve with acme realty", "Dave Miller", detect.No},
	}
	for _, tt := range tests {
		card := Evaluate(Input{Transcript: tt.transcript, AgentName: tt.agentName})
		if card.OwnerName.Display != tt.want {
			t.Errorf("OwnerName(%q) = %v, want %v", tt.transcript, card.OwnerName.Display, tt.want)
		}
	}
}

func TestEvaluate_PropertyReference(t *testing.T) {
	t.Parallel()

	tests := []struct {
		transcript string
		want       detect.Verdict
	}{
		{"i am calling about your house on maple street", detect.Yes},
		{"the property at 1428 elm st", detect.Yes},
		{"just checking in to say hi", detect.No},
	}
	for _, tt := range tests {
		card := Evaluate(Input{Transcript: tt.transcript})
		if card.PropertyRef.Display != tt.want {
			t.Errorf("PropertyRef(%q) = %v, want %v", tt.transcript, card.PropertyRef.Display, tt.want)
		}
	}
}

func TestEvaluate_DetectorChecks(t *testing.T) {
	t.Parallel()

	card := Evaluate(Input{
		Releasing: detect.Yes,
		LateHello: detect.No,
		Rebuttal:  detect.NotAvailable,
	})
	if card.AgentSpoke.Display != detect.No || card.AgentSpoke.Score != 0 {
		t.Errorf("AgentSpoke = %+v, want No/0", card.AgentSpoke)
	}
	if card.OnTimeHello.Display != detect.Yes || card.OnTimeHello.Score != 100 {
		t.Errorf("OnTimeHello = %+v, want Yes/100", card.OnTimeHello)
	}
	if card.RebuttalUsed.Display != detect.NotAvailable || card.RebuttalUsed.Score != 0 {
		t.Errorf("RebuttalUsed = %+v, want N/A/0", card.RebuttalUsed)
	}
}

func TestPercent_SevenValueSet(t *testing.T) {
	t.Parallel()

	yes := Check{Display: detect.Yes, Score: 100}
	var card Card
	want := []float64{0, 100.0 / 6, 200.0 / 6, 50, 400.0 / 6, 500.0 / 6, 100}
	set := []*Check{
		&card.AgentIntro, &card.OwnerName, &card.PropertyRef,
		&card.RebuttalUsed, &card.OnTimeHello, &card.AgentSpoke,
	}
	for i := 0; ; i++ {
		if got := card.Percent(); math.Abs(got-want[i]) > 0.01 {
			t.Errorf("Percent with %d passing checks = %v, want %v", i, got, want[i])
		}
		if i == len(set) {
			break
		}
		*set[i] = yes
	}
}

func TestStatusFor_Boundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pct  float64
		want Status
	}{
		{100, StatusExcellent},
		{83.34, StatusExcellent},
		{82.9, StatusGood},
		{50, StatusGood},
		{49.9, StatusNeedsTraining},
		{17, StatusNeedsTraining},
		{16.6, StatusCritical},
		{0, StatusCritical},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.pct); got != tt.want {
			t.Errorf("StatusFor(%v) = %q, want %q", tt.pct, got, tt.want)
		}
	}
}

func TestLevenshteinRatio(t *testing.T) {
	t.Parallel()

	if got := levenshteinRatio("john", "john"); got != 100 {
		t.Errorf("identical ratio = %d, want 100", got)
	}
	if got := levenshteinRatio("jonathan", "jonathon"); got < nameSimilarityFloor {
		t.Errorf("near-identical ratio = %d, want >= %d", got, nameSimilarityFloor)
	}
	if got := levenshteinRatio("john", "margaret"); got >= nameSimilarityFloor {
		t.Errorf("dissimilar ratio = %d, want < %d", got, nameSimilarityFloor)
	}
}
