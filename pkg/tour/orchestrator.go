// Package tour runs the museum tour dialogue: it decides at every turn whether
// to propose an exhibit, travel, answer a question or end the tour.
package tour

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/teslashibe/go-docent/pkg/catalog"
	"github.com/teslashibe/go-docent/pkg/intent"
	"github.com/teslashibe/go-docent/pkg/movement"
	"github.com/teslashibe/go-docent/pkg/record"
	"github.com/teslashibe/go-docent/pkg/selector"
)

var (
	// ErrAlreadyRun is returned when Run is called twice.
	ErrAlreadyRun = errors.New("tour: orchestrator already run")

	// ErrMissingDependency is returned by New when a required collaborator is nil.
	ErrMissingDependency = errors.New("tour: missing dependency")
)

// Listener captures one visitor utterance.
type Listener interface {
	Listen(ctx context.Context) (string, error)
}

// Speaker renders one line of dialogue.
type Speaker interface {
	Say(ctx context.Context, text string) error
}

// Classifier maps utterances to dialogue acts.
type Classifier interface {
	Classify(utterance string) intent.Act
	Resolve(ctx context.Context, utterance string) intent.Act
}

// Selector chooses exhibits.
type Selector interface {
	Select(ctx context.Context, text string, excluding catalog.Set, n int) ([]string, error)
	Random(excluding catalog.Set, n int) ([]string, error)
	Candidates(excluding catalog.Set) ([]string, error)
}

// Guide writes the generated parts of the tour.
type Guide interface {
	Intro(ctx context.Context, stops []string) (string, error)
	Answer(ctx context.Context, exhibit catalog.Exhibit, question string) (string, error)
}

// Gateway sends the robot to a destination and reports arrival.
type Gateway interface {
	Dispatch(ctx context.Context, destination string) error
	OnArrived(ctx context.Context, fn func()) error
}

// Deps are the collaborators of an Orchestrator. Guide may be nil, in which
// case fixed lines are used.
type Deps struct {
	Catalog    *catalog.Catalog
	Listener   Listener
	Speaker    Speaker
	Classifier Classifier
	Selector   Selector
	Guide      Guide
	Gateway    Gateway
}

func (d Deps) validate() error {
	missing := func(name string) error { return fmt.Errorf("%w: %s", ErrMissingDependency, name) }
	switch {
	case d.Catalog == nil:
		return missing("catalog")
	case d.Listener == nil:
		return missing("listener")
	case d.Speaker == nil:
		return missing("speaker")
	case d.Classifier == nil:
		return missing("classifier")
	case d.Selector == nil:
		return missing("selector")
	case d.Gateway == nil:
		return missing("gateway")
	}
	return nil
}

// Config holds tour policy.
type Config struct {
	// TourSize is how many exhibits a selection asks for.
	TourSize int
	// ArrivalTimeout bounds the wait for the robot. Zero waits until the
	// context is done.
	ArrivalTimeout time.Duration
	// HomePosition is dispatched once when the tour ends. Empty skips it.
	HomePosition string
}

// DefaultConfig returns the standard tour policy.
func DefaultConfig() Config {
	return Config{
		TourSize:       3,
		ArrivalTimeout: 30 * time.Second,
		HomePosition:   "home",
	}
}

// Validate checks the policy.
func (c Config) Validate() error {
	if c.TourSize < 1 {
		return fmt.Errorf("tour: tour size must be at least 1, got %d", c.TourSize)
	}
	if c.ArrivalTimeout < 0 {
		return fmt.Errorf("tour: arrival timeout must not be negative")
	}
	return nil
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l.With("component", "tour") }
}

// WithObserver registers fn for every event.
func WithObserver(fn Observer) Option {
	return func(o *Orchestrator) { o.observers = append(o.observers, fn) }
}

// WithSession runs the tour on an existing session.
func WithSession(s *Session) Option {
	return func(o *Orchestrator) { o.session = s }
}

// Orchestrator drives one tour from greeting to goodbye.
type Orchestrator struct {
	cfg       Config
	deps      Deps
	session   *Session
	arrival   *movement.Signal
	observers []Observer
	logger    *slog.Logger

	started atomic.Bool
	state   State
	reason  Reason

	statusMu sync.RWMutex
	status   Status
}

// New creates an orchestrator for a single tour.
func New(cfg Config, deps Deps, opts ...Option) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := deps.validate(); err != nil {
		return nil, err
	}

	o := &Orchestrator{
		cfg:     cfg,
		deps:    deps,
		arrival: movement.NewSignal(),
		logger:  slog.Default().With("component", "tour"),
		state:   StateGreeting,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.session == nil {
		o.session = NewSession()
	}
	o.status = Status{
		SessionID: o.session.ID,
		State:     StateGreeting,
		Session:   o.session.Snapshot(),
		StartedAt: o.session.StartedAt,
		UpdatedAt: time.Now(),
	}
	return o, nil
}

// Session returns the session the tour runs on. Read it only after Run returns.
func (o *Orchestrator) Session() *Session { return o.session }

// Status returns the latest state. It is safe to call from any goroutine.
func (o *Orchestrator) Status() Status {
	o.statusMu.RLock()
	defer o.statusMu.RUnlock()
	return o.status
}

// Run plays the tour until it ends or ctx is cancelled, and returns the
// session record. On cancellation the partial record is returned together
// with the context error; no closing line or home dispatch is made.
func (o *Orchestrator) Run(ctx context.Context) (*record.Record, error) {
	if !o.started.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRun
	}
	if err := o.deps.Gateway.OnArrived(ctx, o.arrival.Notify); err != nil {
		return nil, fmt.Errorf("tour: subscribe to arrivals: %w", err)
	}

	o.logger.Info("tour started", "session", o.session.ID)
	o.emit(Event{Kind: EventState})

	for o.state != StateEnded {
		next, err := o.step(ctx)
		if err != nil {
			o.reason = ReasonCancelled
			o.logger.Info("tour cancelled", "session", o.session.ID, "state", o.state.String())
			return o.record(""), err
		}
		o.transition(next)
	}

	final := closingLine(o.reason)
	o.say(ctx, final)
	o.goHome(ctx)

	rec := o.record(final)
	o.emit(Event{Kind: EventEnded, Reason: o.reason, Text: final})
	o.logger.Info("tour ended",
		"session", o.session.ID,
		"reason", string(o.reason),
		"visited", len(rec.Visited),
	)
	return rec, nil
}

func (o *Orchestrator) step(ctx context.Context) (State, error) {
	switch o.state {
	case StateGreeting:
		return o.greet(ctx)
	case StateAwaitingInterest:
		return o.awaitInterest(ctx)
	case StateEnRoute:
		return o.travel(ctx)
	case StateAtExhibit:
		return o.atExhibit(ctx)
	case StateAwaitingNext:
		return o.awaitNext(ctx)
	}
	return StateEnded, fmt.Errorf("tour: no handler for state %s", o.state)
}

func (o *Orchestrator) transition(next State) {
	if !CanTransition(o.state, next) {
		o.logger.Error("invalid transition", "from", o.state.String(), "to", next.String())
	}
	if next == o.state {
		return
	}
	o.logger.Debug("transition", "from", o.state.String(), "to", next.String())
	o.state = next
	o.emit(Event{Kind: EventState})
}

// end records why the tour is ending and returns the terminal state.
func (o *Orchestrator) end(r Reason) (State, error) {
	o.reason = r
	return StateEnded, nil
}

func (o *Orchestrator) greet(ctx context.Context) (State, error) {
	o.say(ctx, lineGreeting)
	o.say(ctx, lineAskInterest)
	return StateAwaitingInterest, ctx.Err()
}

func (o *Orchestrator) awaitInterest(ctx context.Context) (State, error) {
	text, err := o.hear(ctx)
	if err != nil {
		return o.state, err
	}
	act := o.deps.Classifier.Resolve(ctx, text)
	o.heard(text, act)
	o.session.Input = text

	var names []string
	switch act {
	case intent.End:
		return o.end(ReasonVisitorEnded)
	case intent.Unrecognized:
		return o.end(ReasonNoInterest)
	case intent.Unsure:
		names, err = o.deps.Selector.Random(o.session.Excluded(), o.cfg.TourSize)
	default:
		names, err = o.deps.Selector.Select(ctx, text, o.session.Excluded(), o.cfg.TourSize)
	}
	if r, failed := o.selectionFailed(names, err); failed {
		return o.end(r)
	}

	o.session.Matched = names
	o.session.Enqueue(names...)
	o.session.Intro = o.intro(ctx, names)
	o.say(ctx, o.session.Intro)
	return StateEnRoute, ctx.Err()
}

func (o *Orchestrator) travel(ctx context.Context) (State, error) {
	dest, ok := o.session.Peek()
	if !ok {
		return StateEnded, fmt.Errorf("tour: en route with an empty queue")
	}
	o.say(ctx, fmt.Sprintf(lineHeadingTo, dest))

	o.arrival.Drain()
	if err := o.deps.Gateway.Dispatch(ctx, dest); err != nil {
		if ctx.Err() != nil {
			return o.state, ctx.Err()
		}
		o.logger.Warn("dispatch failed, continuing as arrived", "destination", dest, "error", err)
	} else {
		o.emit(Event{Kind: EventDispatched, Destination: dest})
		switch err := o.arrival.Wait(ctx, o.cfg.ArrivalTimeout); {
		case errors.Is(err, movement.ErrArrivalTimeout):
			o.logger.Warn("no arrival notice, continuing", "destination", dest, "timeout", o.cfg.ArrivalTimeout)
		case err != nil:
			return o.state, err
		}
	}

	o.session.Arrive(dest)
	o.emit(Event{Kind: EventArrived, Destination: dest})
	o.say(ctx, lineArrived)
	return StateAtExhibit, ctx.Err()
}

func (o *Orchestrator) atExhibit(ctx context.Context) (State, error) {
	text, err := o.hear(ctx)
	if err != nil {
		return o.state, err
	}
	act := o.deps.Classifier.Classify(text)
	o.heard(text, act)

	switch act {
	case intent.End:
		return o.end(ReasonVisitorEnded)
	case intent.MoveOn, intent.Affirm:
		return StateAwaitingNext, nil
	case intent.Unrecognized:
		o.say(ctx, lineMovingOn)
		return StateAwaitingNext, ctx.Err()
	}

	o.say(ctx, o.answer(ctx, text))
	return StateAtExhibit, ctx.Err()
}

func (o *Orchestrator) awaitNext(ctx context.Context) (State, error) {
	if _, ok := o.session.Peek(); ok {
		return StateEnRoute, nil
	}

	o.say(ctx, lineAnotherExhibit)
	text, err := o.hear(ctx)
	if err != nil {
		return o.state, err
	}
	act := o.deps.Classifier.Resolve(ctx, text)
	o.heard(text, act)

	switch act {
	case intent.End:
		return o.end(ReasonVisitorEnded)
	case intent.Deny:
		return o.end(ReasonDeclined)
	case intent.Unrecognized:
		return o.end(ReasonNoResponse)
	case intent.Unsure:
		return o.propose(ctx)
	}

	names, err := o.deps.Selector.Select(ctx, text, o.session.Excluded(), o.cfg.TourSize)
	if r, failed := o.selectionFailed(names, err); failed {
		return o.end(r)
	}
	o.session.Enqueue(names...)
	o.say(ctx, fmt.Sprintf(lineNextUp, strings.Join(names, ", ")))
	return StateEnRoute, ctx.Err()
}

// propose offers the remaining exhibits one at a time until the visitor
// accepts one, ends the tour, or the candidates run out.
func (o *Orchestrator) propose(ctx context.Context) (State, error) {
	candidates, err := o.deps.Selector.Candidates(o.session.Excluded())
	if r, failed := o.selectionFailed(candidates, err); failed {
		return o.end(r)
	}

	for _, name := range candidates {
		o.say(ctx, fmt.Sprintf(lineHowAbout, name))
		text, err := o.hear(ctx)
		if err != nil {
			return o.state, err
		}
		act := o.deps.Classifier.Classify(text)
		o.heard(text, act)

		switch act {
		case intent.Affirm:
			o.session.Enqueue(name)
			return StateEnRoute, nil
		case intent.End:
			return o.end(ReasonVisitorEnded)
		case intent.Unrecognized:
			return o.end(ReasonNoResponse)
		}
		o.logger.Debug("candidate declined", "exhibit", name, "act", act.String())
	}

	o.say(ctx, lineNoMoreExhibits)
	return o.end(ReasonNoMoreExhibits)
}

func (o *Orchestrator) selectionFailed(names []string, err error) (Reason, bool) {
	switch {
	case errors.Is(err, selector.ErrExhausted):
		o.logger.Info("catalog exhausted", "visited", len(o.session.Visited()))
		return ReasonExhausted, true
	case err != nil:
		o.logger.Error("selection failed", "error", err)
		return ReasonSelectionFailed, true
	case len(names) == 0:
		return ReasonExhausted, true
	}
	return "", false
}

func (o *Orchestrator) intro(ctx context.Context, stops []string) string {
	fallback := fmt.Sprintf(lineFallbackIntro, strings.Join(stops, ", "))
	if o.deps.Guide == nil {
		return fallback
	}
	text, err := o.deps.Guide.Intro(ctx, stops)
	if err != nil {
		o.logger.Warn("intro generation failed, using fixed intro", "error", err)
		return fallback
	}
	return text
}

func (o *Orchestrator) answer(ctx context.Context, question string) string {
	if o.deps.Guide == nil {
		return lineAnswerFallback
	}
	exhibit, ok := o.deps.Catalog.Lookup(o.session.Current())
	if !ok {
		exhibit = catalog.Exhibit{Name: o.session.Current()}
	}
	text, err := o.deps.Guide.Answer(ctx, exhibit, question)
	if err != nil {
		o.logger.Warn("answer generation failed", "exhibit", exhibit.Name, "error", err)
		return lineAnswerFallback
	}
	return text
}

// hear returns the next utterance. Listener failures become an empty
// utterance; only context cancellation is returned as an error.
func (o *Orchestrator) hear(ctx context.Context) (string, error) {
	text, err := o.deps.Listener.Listen(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	if err != nil {
		o.logger.Debug("nothing heard", "state", o.state.String(), "error", err)
		return "", nil
	}
	return strings.TrimSpace(text), nil
}

func (o *Orchestrator) heard(text string, act intent.Act) {
	o.logger.Info("heard", "state", o.state.String(), "text", text, "act", act.String())
	o.emit(Event{Kind: EventHeard, Text: text, Act: act.String()})
}

// say renders text. Failures are logged and the tour carries on.
func (o *Orchestrator) say(ctx context.Context, text string) {
	if text == "" {
		return
	}
	o.emit(Event{Kind: EventSaid, Text: text})
	if err := o.deps.Speaker.Say(ctx, text); err != nil {
		o.logger.Warn("render failed", "error", err)
	}
}

func (o *Orchestrator) goHome(ctx context.Context) {
	home := o.cfg.HomePosition
	if home == "" {
		return
	}
	if err := o.deps.Gateway.Dispatch(ctx, home); err != nil {
		o.logger.Warn("home dispatch failed", "destination", home, "error", err)
		return
	}
	o.emit(Event{Kind: EventDispatched, Destination: home})
}

func (o *Orchestrator) record(final string) *record.Record {
	rec := record.New(o.session.ID)
	rec.Input = o.session.Input
	rec.SpokenReply = o.session.Intro
	rec.Visited = o.session.Visited()
	rec.Upcoming = o.session.Upcoming()
	rec.FinalReply = final
	rec.Reason = string(o.reason)
	if o.session.Matched != nil {
		rec.MatchedLocations = append([]string{}, o.session.Matched...)
	}
	if rec.Visited == nil {
		rec.Visited = []string{}
	}
	if rec.Upcoming == nil {
		rec.Upcoming = []string{}
	}
	return rec
}

func (o *Orchestrator) emit(ev Event) {
	ev.SessionID = o.session.ID
	ev.State = o.state
	ev.Session = o.session.Snapshot()
	ev.Time = time.Now()

	o.statusMu.Lock()
	o.status.State = ev.State
	o.status.Session = ev.Session
	o.status.Reason = o.reason
	o.status.UpdatedAt = ev.Time
	o.statusMu.Unlock()

	for _, fn := range o.observers {
		fn(ev)
	}
}
