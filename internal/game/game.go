// Package game drives a play session: tutorial, levels, rounds and scoring.
//
// The Controller reacts to three inputs (action, left/right, assistant
// questions) and turns them into engine voices, narration and measurement
// requests. Its steps are sequenced by narration completions and Clock
// timers; all state is guarded by one mutex and every callback re-checks the
// state it was scheduled for before acting.
package game

import (
	"context"
	"errors"
	"io"
	"log"
	"math"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/cwbudde/quantum-sounds/engine"
	"github.com/cwbudde/quantum-sounds/internal/levels"
	"github.com/cwbudde/quantum-sounds/internal/measurement"
)

const instrumentationName = "github.com/cwbudde/quantum-sounds/internal/game"

const (
	// TutorialGap separates the tutorial tones from the next prompt.
	TutorialGap = 2500 * time.Millisecond
	// CollapseTail lets the collapse tone ring before it is announced.
	CollapseTail = 2 * time.Second
	// FeedbackPause is the pause between a completed round and the next.
	FeedbackPause = 3 * time.Second

	// tunnelProbability is the chance a tunneling measurement succeeds.
	tunnelProbability = 0.6
	// probabilitySteps is the navigation resolution (tenths).
	probabilitySteps = 10
)

// ErrNoLevels is returned by New for an empty level table.
var ErrNoLevels = errors.New("game: no levels")

// Engine is the audio surface the controller drives.
type Engine interface {
	Init()
	SetBalance(bias float64)
	StartVoice(kind engine.Kind, p engine.Params) error
	PlayOneShot(kind engine.Kind, p engine.Params) error
}

// Narrator speaks text. onComplete must not be invoked from within Say.
type Narrator interface {
	Say(text string, priority bool, onComplete func())
}

// Assistant answers spoken questions.
type Assistant interface {
	Respond(transcript string) (string, bool)
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger for engine and measurement faults.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithClock replaces the wall clock used for pauses.
func WithClock(clk Clock) Option {
	return func(c *Controller) {
		if clk != nil {
			c.clock = clk
		}
	}
}

// WithLanguage selects the narration and status language.
func WithLanguage(tag language.Tag) Option {
	return func(c *Controller) {
		c.lang = matchLanguage(tag)
	}
}

// WithAssistant enables Assist.
func WithAssistant(a Assistant) Option {
	return func(c *Controller) {
		c.assistant = a
	}
}

// WithTracerProvider sets the tracer provider for measurement spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Controller) {
		if tp != nil {
			c.tracer = tp.Tracer(instrumentationName)
		}
	}
}

// Status is a snapshot of the session.
type Status struct {
	Phase       Phase
	Level       int
	LevelName   string
	Round       int
	Rounds      int
	Score       int
	Probability float64
	// LastResult is the localized side of the last collapse, if any.
	LastResult string
	Measuring  bool
}

// step is a continuation waiting on a narration to finish.
type step struct {
	fn func()
}

// Controller runs one game session.
type Controller struct {
	eng       Engine
	narr      Narrator
	meas      measurement.Measurer
	assistant Assistant
	levels    []levels.Level
	clock     Clock
	log       *log.Logger
	tracer    trace.Tracer
	lang      language.Tag
	printer   *message.Printer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	phase      Phase
	level      int
	round      int
	score      int
	tenths     int
	lastResult string
	inFlight   bool
	waiting    *step
	timers     []Timer
	closed     bool
}

// New creates a controller in the start phase.
func New(eng Engine, narr Narrator, meas measurement.Measurer, lv []levels.Level, opts ...Option) (*Controller, error) {
	if len(lv) == 0 {
		return nil, ErrNoLevels
	}
	if err := levels.Validate(lv); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		eng:    eng,
		narr:   narr,
		meas:   meas,
		levels: lv,
		clock:  systemClock{},
		log:    log.New(io.Discard, "", 0),
		tracer: otel.Tracer(instrumentationName),
		lang:   language.Spanish,
		ctx:    ctx,
		cancel: cancel,
		level:  1,
		tenths: probabilitySteps / 2,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.printer = newPrinter(c.lang)
	return c, nil
}

// Language returns the session language.
func (c *Controller) Language() language.Tag { return c.lang }

// Close cancels timers and any measurement in flight and waits for it.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.waiting = nil
	for _, t := range c.timers {
		t.Stop()
	}
	c.timers = nil
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

// Action handles the primary key: start the tutorial, start level one, or
// measure, depending on the phase. Other phases ignore it.
func (c *Controller) Action() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	switch c.phase {
	case PhaseStart:
		c.eng.Init()
		c.runTutorial()
	case PhaseReady:
		c.startLevel(1)
	case PhaseMeasuring:
		c.measure()
	}
}

// Left lowers the navigation probability by one tenth.
func (c *Controller) Left() { c.nudge(-1) }

// Right raises the navigation probability by one tenth.
func (c *Controller) Right() { c.nudge(1) }

func (c *Controller) nudge(delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.phase != PhaseMeasuring || c.current().Mode != levels.ModeNavigation {
		return
	}

	next := min(max(c.tenths+delta, 0), probabilitySteps)
	if next == c.tenths {
		return
	}
	c.tenths = next
	c.eng.SetBalance(c.probability())
}

// Assist speaks the assistant's answer to transcript with priority. A
// narration step it interrupts resumes once the answer has been spoken.
func (c *Controller) Assist(transcript string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.assistant == nil {
		return false
	}

	answer, ok := c.assistant.Respond(transcript)
	if !ok {
		return false
	}

	s := c.waiting
	if s == nil {
		c.narr.Say(answer, true, nil)
		return true
	}
	c.narr.Say(answer, true, func() { c.resume(s) })
	return true
}

// Status returns a snapshot of the session.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	lv := c.current()
	return Status{
		Phase:       c.phase,
		Level:       lv.Number,
		LevelName:   lv.Name,
		Round:       c.round,
		Rounds:      lv.Rounds,
		Score:       c.score,
		Probability: c.probability(),
		LastResult:  c.lastResult,
		Measuring:   c.inFlight,
	}
}

// StatusLine renders level, score and probability in the session language.
func (c *Controller) StatusLine() string {
	st := c.Status()
	return c.printer.Sprintf(msgStatus, st.LevelName, st.Score, int(math.Round(st.Probability*100)))
}

// Prompt is the localized instruction for the current phase. During
// feedback it is the last result.
func (c *Controller) Prompt() string {
	st := c.Status()
	if st.Phase == PhaseFeedback {
		return st.LastResult
	}
	return c.printer.Sprintf(st.Phase.prompt())
}

func (c *Controller) current() levels.Level {
	return c.levels[c.level-1]
}

func (c *Controller) probability() float64 {
	return float64(c.tenths) / probabilitySteps
}

// say queues a localized message. next, if set, runs under the lock once
// the message finishes, unless a later priority message superseded it.
func (c *Controller) say(key string, priority bool, next func()) {
	c.sayText(c.printer.Sprintf(key), priority, next)
}

func (c *Controller) sayText(text string, priority bool, next func()) {
	if priority {
		c.waiting = nil
	}
	if next == nil {
		c.narr.Say(text, priority, nil)
		return
	}

	s := &step{fn: next}
	c.waiting = s
	c.narr.Say(text, priority, func() { c.resume(s) })
}

func (c *Controller) resume(s *step) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.waiting != s {
		return
	}
	c.waiting = nil
	s.fn()
}

// after runs fn under the lock once d has elapsed.
func (c *Controller) after(d time.Duration, fn func()) {
	t := c.clock.AfterFunc(d, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed {
			return
		}
		fn()
	})
	c.timers = append(c.timers, t)
}

func (c *Controller) runTutorial() {
	c.phase = PhaseTutorial
	c.say(msgWelcome, true, func() {
		c.say(msgKetZero, false, func() {
			c.playOnce(engine.Tutorial, engine.Params{Side: engine.Left})
			c.after(TutorialGap, func() {
				c.say(msgKetOne, false, func() {
					c.playOnce(engine.Tutorial, engine.Params{Side: engine.Right})
					c.after(TutorialGap, func() {
						c.say(msgReady, false, func() {
							c.phase = PhaseReady
						})
					})
				})
			})
		})
	})
}

func (c *Controller) startLevel(n int) {
	c.level = n
	c.round = 1
	c.phase = PhaseIntro
	c.sayText(c.current().IntroFor(c.lang.String()), true, c.nextRound)
}

func (c *Controller) nextRound() {
	c.phase = PhaseMeasuring
	c.tenths = probabilitySteps / 2
	c.eng.SetBalance(c.probability())

	switch c.current().Mode {
	case levels.ModeSuperposition, levels.ModeNavigation:
		c.say(msgListening, false, nil)
		c.start(engine.Superposition)
	case levels.ModeTunneling:
		c.say(msgBarrier, false, nil)
		c.start(engine.Tunneling)
	case levels.ModeInterference:
		c.say(msgPattern, false, nil)
		c.start(engine.Interference)
	}
}

// request maps the level mode onto the measurement the service performs.
func (c *Controller) request() measurement.Request {
	switch c.current().Mode {
	case levels.ModeNavigation:
		return measurement.Request{Mode: measurement.ModeNavigation, Probability: c.probability()}
	case levels.ModeTunneling:
		return measurement.Request{Mode: measurement.ModeTunneling, Probability: tunnelProbability}
	default:
		return measurement.Request{Mode: measurement.ModeSuperposition, Probability: 0.5}
	}
}

func (c *Controller) measure() {
	if c.inFlight {
		return
	}
	c.inFlight = true
	c.say(msgMeasuring, false, nil)

	req := c.request()
	level, round := c.level, c.round

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		ctx, span := c.tracer.Start(c.ctx, "game.Measure", trace.WithAttributes(
			attribute.Int("game.level", level),
			attribute.Int("game.round", round),
			attribute.String("measurement.mode", string(req.Mode)),
		))
		out, err := c.meas.Measure(ctx, req)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.Int("measurement.result", out.Result))
		}
		span.End()

		c.resolve(level, round, out, err)
	}()
}

func (c *Controller) resolve(level, round int, out measurement.Outcome, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
	if c.closed || c.phase != PhaseMeasuring || c.level != level || c.round != round {
		return
	}

	if err != nil {
		c.log.Printf("measure level %d round %d: %v", level, round, err)
		c.say(msgBackendError, false, nil)
		return
	}

	lv := c.current()
	switch lv.Mode {
	case levels.ModeSuperposition, levels.ModeNavigation:
		c.playOnce(engine.Collapse, engine.Params{State: out.Result})
		zero := out.Result == 0
		c.lastResult = c.printer.Sprintf(pick(zero, msgResultZero, msgResultOne))
		c.phase = PhaseFeedback
		c.after(CollapseTail, func() {
			c.say(pick(zero, msgCollapseZero, msgCollapseOne), true, nil)
			c.completeRound(lv, true)
		})
	case levels.ModeTunneling:
		success := out.Result == 1
		c.playOnce(engine.TunnelResult, engine.Params{Success: success})
		c.say(pick(success, msgTunneled, msgBounced), true, nil)
		c.completeRound(lv, success)
	default:
		c.playOnce(engine.Collapse, engine.Params{State: 0})
		c.say(msgMeasured, false, nil)
		c.completeRound(lv, true)
	}
}

func (c *Controller) completeRound(lv levels.Level, success bool) {
	c.phase = PhaseFeedback
	c.score += lv.Points
	c.playOnce(engine.Feedback, engine.Params{Success: success})

	c.after(FeedbackPause, func() {
		switch {
		case c.round < lv.Rounds:
			c.round++
			c.nextRound()
		case c.level < len(c.levels):
			c.startLevel(c.level + 1)
		default:
			c.phase = PhaseVictory
			c.say(msgVictory, false, nil)
		}
	})
}

func (c *Controller) start(kind engine.Kind) {
	if err := c.eng.StartVoice(kind, engine.Params{}); err != nil {
		c.log.Printf("start %s: %v", kind, err)
	}
}

func (c *Controller) playOnce(kind engine.Kind, p engine.Params) {
	if err := c.eng.PlayOneShot(kind, p); err != nil {
		c.log.Printf("play %s: %v", kind, err)
	}
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}
