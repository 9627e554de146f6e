// Package assistant answers spoken questions about the game with canned
// explanations picked by keyword.
package assistant

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Topic is a subject the assistant can explain.
type Topic int

const (
	Superposition Topic = iota
	Entanglement
	Measurement
	Help
	Objective
)

func (t Topic) String() string {
	switch t {
	case Superposition:
		return "superposition"
	case Entanglement:
		return "entanglement"
	case Measurement:
		return "measurement"
	case Help:
		return "help"
	case Objective:
		return "objective"
	default:
		return "unknown"
	}
}

// keywords are matched in topic order against the folded transcript.
var keywords = []struct {
	topic Topic
	words []string
}{
	{Superposition, []string{"superposicion", "superposition"}},
	{Entanglement, []string{"entrelazamiento", "entanglement"}},
	{Measurement, []string{"colapso", "medir", "collapse", "measure"}},
	{Help, []string{"ayuda", "controles", "help", "controls"}},
	{Objective, []string{"objetivo", "objective", "goal"}},
}

var supported = []language.Tag{language.Spanish, language.English}

var answers = map[language.Tag]map[Topic]string{
	language.Spanish: {
		Superposition: "La superposición es cuando un qubit está en estado 0 y 1 a la vez.",
		Entanglement:  "El entrelazamiento conecta dos qubits de forma que el estado de uno afecta instantáneamente al otro.",
		Measurement:   "Al medir un qubit, su superposición colapsa a un estado definido, 0 o 1.",
		Help:          "Presiona Espacio para medir, o H para hablar conmigo.",
		Objective:     "Tu objetivo es identificar el estado cuántico escuchando el sonido.",
	},
	language.English: {
		Superposition: "Superposition is when a qubit is in state 0 and 1 at the same time.",
		Entanglement:  "Entanglement links two qubits so that the state of one instantly affects the other.",
		Measurement:   "Measuring a qubit collapses its superposition to a definite state, 0 or 1.",
		Help:          "Press Space to measure, or H to talk to me.",
		Objective:     "Your goal is to identify the quantum state by listening to the sound.",
	},
}

// Assistant matches transcripts against topics and answers in one language.
type Assistant struct {
	lang language.Tag
}

// New creates an assistant answering in the supported language closest to
// tag. Spanish is the fallback.
func New(tag language.Tag) *Assistant {
	_, idx, _ := language.NewMatcher(supported).Match(tag)
	return &Assistant{lang: supported[idx]}
}

// Language returns the answer language.
func (a *Assistant) Language() language.Tag { return a.lang }

// Fold lower-cases s and strips diacritics.
func (a *Assistant) Fold(s string) string {
	// Transformers carry state, so each call builds its own chain.
	fold := transform.Chain(cases.Fold(), norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(fold, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// Match returns the first topic whose keyword appears in transcript.
func (a *Assistant) Match(transcript string) (Topic, bool) {
	text := a.Fold(transcript)
	for _, k := range keywords {
		for _, w := range k.words {
			if strings.Contains(text, w) {
				return k.topic, true
			}
		}
	}
	return 0, false
}

// Respond returns the canned answer for transcript. Unrecognized questions
// get no answer rather than a fallback.
func (a *Assistant) Respond(transcript string) (string, bool) {
	topic, ok := a.Match(transcript)
	if !ok {
		return "", false
	}
	return answers[a.lang][topic], true
}
