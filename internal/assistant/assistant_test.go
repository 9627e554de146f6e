package assistant

import (
	"testing"

	"golang.org/x/text/language"
)

func TestRespondSpanish(t *testing.T) {
	a := New(language.MustParse("es-ES"))

	tests := []struct {
		transcript string
		want       Topic
	}{
		{"¿Qué es la SUPERPOSICIÓN?", Superposition},
		{"que es la superposicion", Superposition},
		{"explícame el entrelazamiento", Entanglement},
		{"qué pasa al medir", Measurement},
		{"el colapso", Measurement},
		{"necesito ayuda", Help},
		{"cuáles son los controles", Help},
		{"cuál es el objetivo", Objective},
		// Earlier topics win.
		{"superposición y colapso", Superposition},
	}

	for _, tc := range tests {
		got, ok := a.Match(tc.transcript)
		if !ok || got != tc.want {
			t.Fatalf("Match(%q) = %v, %v, want %v", tc.transcript, got, ok, tc.want)
		}
	}

	text, ok := a.Respond("ayuda")
	if !ok || text != "Presiona Espacio para medir, o H para hablar conmigo." {
		t.Fatalf("Respond(ayuda) = %q, %v", text, ok)
	}
}

func TestRespondIgnoresUnknown(t *testing.T) {
	a := New(language.Spanish)
	if text, ok := a.Respond("hola, ¿cómo estás?"); ok || text != "" {
		t.Fatalf("Respond() = %q, %v, want no answer", text, ok)
	}
}

func TestLanguageSelection(t *testing.T) {
	if got := New(language.BritishEnglish).Language(); got != language.English {
		t.Fatalf("Language() = %v, want en", got)
	}
	if got := New(language.Japanese).Language(); got != language.Spanish {
		t.Fatalf("Language() = %v, want es fallback", got)
	}

	text, ok := New(language.English).Respond("what is the goal?")
	if !ok || text != "Your goal is to identify the quantum state by listening to the sound." {
		t.Fatalf("Respond() = %q, %v", text, ok)
	}
}

func TestFold(t *testing.T) {
	a := New(language.Spanish)
	if got := a.Fold("Medición CUÁNTICA"); got != "medicion cuantica" {
		t.Fatalf("Fold() = %q", got)
	}
}
