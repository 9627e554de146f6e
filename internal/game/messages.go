package game

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys. The key doubles as the English text.
const (
	msgWelcome      = "Hello! Welcome to Quantum Sounds, where you will discover the secrets of quantum computing using only your ears. Get ready for a sound adventure. First, let's calibrate your audio."
	msgKetZero      = "This is the Ket Zero state. It should sound on your left."
	msgKetOne       = "This is the Ket One state. It should sound on your right."
	msgReady        = "Now you are ready. Press Space when you are prepared to begin."
	msgListening    = "Listening to the wave..."
	msgBarrier      = "Barrier detected..."
	msgPattern      = "Interference pattern..."
	msgMeasuring    = "Measuring on a quantum computer..."
	msgResultZero   = "LEFT (Zero)"
	msgResultOne    = "RIGHT (One)"
	msgCollapseZero = "Collapse into Ket Zero"
	msgCollapseOne  = "Collapse into Ket One"
	msgTunneled     = "Particle tunneled through."
	msgBounced      = "Bounced off the barrier."
	msgMeasured     = "Measurement complete."
	msgBackendError = "Backend connection error."
	msgVictory      = "Victory! You have mastered the universe."
	msgStatus       = "Level: %s | Points: %d | Probability: %d%% |1⟩"

	msgPromptStart     = "Press SPACE to start the tutorial"
	msgPromptTutorial  = "Calibrating audio..."
	msgPromptReady     = "Ready! Press SPACE."
	msgPromptIntro     = "Listen to the level introduction"
	msgPromptMeasuring = "Listening to the wave... Space to measure"
	msgPromptVictory   = "Game complete!"
)

var spanish = map[string]string{
	msgWelcome:      "¡Hola! Bienvenido a Quantum Sounds, donde descubrirás los secretos de la computación cuántica usando solo tus oídos. Prepárate para una aventura sonora. Primero, calibremos tu audio.",
	msgKetZero:      "Esto es el estado Ket Cero. Debe sonar a tu izquierda.",
	msgKetOne:       "Esto es el estado Ket Uno. Debe sonar a tu derecha.",
	msgReady:        "Ahora estás listo. Presiona Espacio cuando estés preparado para empezar.",
	msgListening:    "Escuchando onda...",
	msgBarrier:      "Barrera detectada...",
	msgPattern:      "Patrón de interferencia...",
	msgMeasuring:    "Midiendo en computador cuántico...",
	msgResultZero:   "IZQUIERDA (Cero)",
	msgResultOne:    "DERECHA (Uno)",
	msgCollapseZero: "Colapso en Ket Cero",
	msgCollapseOne:  "Colapso en Ket Uno",
	msgTunneled:     "Partícula atravesó.",
	msgBounced:      "Rebote en barrera.",
	msgMeasured:     "Medición completada.",
	msgBackendError: "Error de conexión con el backend.",
	msgVictory:      "¡Victoria! Has dominado el universo.",
	msgStatus:       "Nivel: %s | Puntos: %d | Probabilidad: %d%% |1⟩",

	msgPromptStart:     "Presiona ESPACIO para Iniciar Tutorial",
	msgPromptTutorial:  "Calibrando Audio...",
	msgPromptReady:     "¡Listo! Presiona ESPACIO.",
	msgPromptIntro:     "Escucha la introducción del nivel",
	msgPromptMeasuring: "Escuchando Onda... Espacio para Medir",
	msgPromptVictory:   "¡Juego Completado!",
}

var supported = []language.Tag{language.Spanish, language.English}

var messages = func() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.Spanish))
	for key, es := range spanish {
		if err := b.SetString(language.Spanish, key, es); err != nil {
			panic(err)
		}
		if err := b.SetString(language.English, key, key); err != nil {
			panic(err)
		}
	}
	return b
}()

// matchLanguage returns the supported tag closest to tag.
func matchLanguage(tag language.Tag) language.Tag {
	_, idx, _ := language.NewMatcher(supported).Match(tag)
	return supported[idx]
}

func newPrinter(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(messages))
}
