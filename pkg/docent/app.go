// Package docent assembles a tour guide from configuration: catalog,
// classifier, selector, language model, speech, movement transport, record
// store and dashboard.
package docent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/teslashibe/go-docent/internal/config"
	"github.com/teslashibe/go-docent/pkg/catalog"
	"github.com/teslashibe/go-docent/pkg/guide"
	"github.com/teslashibe/go-docent/pkg/inference"
	"github.com/teslashibe/go-docent/pkg/intent"
	"github.com/teslashibe/go-docent/pkg/movement"
	"github.com/teslashibe/go-docent/pkg/record"
	"github.com/teslashibe/go-docent/pkg/selector"
	"github.com/teslashibe/go-docent/pkg/speech"
	"github.com/teslashibe/go-docent/pkg/tour"
	"github.com/teslashibe/go-docent/pkg/tts"
	"github.com/teslashibe/go-docent/pkg/web"
)

// Options override parts of the assembly. Zero values use the configured
// defaults.
type Options struct {
	In  io.Reader
	Out io.Writer

	Listener speech.Listener
	Speaker  speech.Speaker
	LLM      inference.Provider
	TTS      tts.Provider
	Bus      movement.Bus
	Records  record.Store
	Rand     *rand.Rand
	Logger   *slog.Logger

	// Observers receive every tour event in addition to the dashboard.
	Observers []tour.Observer
}

// App owns every long-lived component of a docent process.
type App struct {
	cfg  config.Config
	opts Options

	logger     *slog.Logger
	catalog    *catalog.Catalog
	llm        inference.Provider
	guide      *guide.Guide
	classifier *intent.Classifier
	selector   *selector.Selector

	listener speech.Listener
	speaker  speech.Speaker

	bus       movement.Bus
	ownsBus   bool
	gateway   *movement.Gateway
	simulator *movement.Simulator

	records record.Store
	web     *web.Server

	cancel context.CancelFunc
}

// New validates cfg and prepares an app. Call Init before RunTour.
func New(cfg config.Config, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &App{
		cfg:    cfg,
		opts:   opts,
		logger: opts.Logger.With("component", "docent"),
	}, nil
}

// Config returns the configuration the app was built with.
func (a *App) Config() config.Config { return a.cfg }

// Init builds every component. Background work (simulated robot, dashboard)
// runs until Shutdown or until ctx is cancelled.
func (a *App) Init(ctx context.Context) error {
	ctx, a.cancel = context.WithCancel(ctx)

	if err := a.InitCore(); err != nil {
		return err
	}
	a.initSpeech()
	if err := a.initTransport(ctx); err != nil {
		return fmt.Errorf("transport: %w", err)
	}
	if err := a.initRecords(ctx); err != nil {
		return fmt.Errorf("records: %w", err)
	}
	a.initWeb(ctx)
	return nil
}

// InitCore loads the catalog and builds the classifier, selector and guide.
// It needs no network and is enough for catalog previews.
func (a *App) InitCore() error {
	if a.catalog != nil {
		return nil
	}

	cat, err := LoadCatalog(a.cfg.CatalogPath)
	if err != nil {
		return err
	}
	a.catalog = cat

	rules, err := intent.DefaultRules().WithOverrides(a.cfg.Keywords)
	if err != nil {
		return fmt.Errorf("keywords: %w", err)
	}

	a.llm = a.opts.LLM
	if a.llm == nil && a.llmConfigured() {
		a.llm, err = a.newLLM()
		if err != nil {
			return fmt.Errorf("llm: %w", err)
		}
	}

	classifierOpts := []intent.Option{intent.WithLogger(a.opts.Logger)}
	selectorOpts := []selector.Option{
		selector.WithRevisit(a.cfg.Tour.AllowRevisit),
		selector.WithLogger(a.opts.Logger),
	}
	if a.opts.Rand != nil {
		selectorOpts = append(selectorOpts, selector.WithRand(a.opts.Rand))
	}

	if a.llm != nil {
		a.guide = guide.New(a.llm, guide.WithLogger(a.opts.Logger), guide.WithMatchLimit(a.cfg.Tour.Size))
		classifierOpts = append(classifierOpts, intent.WithJudge(a.guide))
		selectorOpts = append(selectorOpts, selector.WithMatcher(a.guide))
	} else {
		a.logger.Warn("no language model configured, using keyword classification and fixed lines")
	}

	a.classifier = intent.NewClassifier(rules, classifierOpts...)
	a.selector = selector.New(cat, selectorOpts...)
	return nil
}

// newLLM builds the chat client, chained to the fallback model when one is
// configured.
func (a *App) newLLM() (inference.Provider, error) {
	client := func(model string) (*inference.Client, error) {
		return inference.NewClient(
			inference.WithBaseURL(a.cfg.LLM.BaseURL),
			inference.WithAPIKey(a.cfg.LLM.APIKey),
			inference.WithModel(model),
			inference.WithTimeout(a.cfg.LLM.Timeout),
			inference.WithLogger(a.opts.Logger),
		)
	}

	primary, err := client(a.cfg.LLM.Model)
	if err != nil {
		return nil, err
	}
	fallback := a.cfg.LLM.FallbackModel
	if fallback == "" || fallback == a.cfg.LLM.Model {
		return primary, nil
	}

	secondary, err := client(fallback)
	if err != nil {
		return nil, err
	}
	chain, err := inference.NewChain(primary, secondary)
	if err != nil {
		return nil, err
	}
	chain.SetLogger(a.opts.Logger)
	a.logger.Info("language model fallback enabled", "model", a.cfg.LLM.Model, "fallback", fallback)
	return chain, nil
}

// llmConfigured reports whether an endpoint can be reached: either a key is
// set or the base URL points somewhere other than the hosted default.
func (a *App) llmConfigured() bool {
	return a.cfg.LLM.APIKey != "" || a.cfg.LLM.BaseURL != config.DefaultLLMBaseURL
}

// LoadCatalog reads the exhibit list at path, or returns the built-in one
// when path is empty.
func LoadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.Load(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return cat, nil
}

func (a *App) initSpeech() {
	a.listener = a.opts.Listener
	if a.listener == nil {
		a.listener = speech.NewConsoleListener(a.opts.In, a.opts.Out, a.cfg.Tour.ListenTimeout)
	}

	a.speaker = a.opts.Speaker
	if a.speaker != nil {
		return
	}
	console := speech.NewConsoleSpeaker(a.opts.Out)
	a.speaker = console
	if !a.cfg.TTS.Enabled {
		return
	}

	provider := a.opts.TTS
	if provider == nil {
		p, err := tts.NewOpenAI(
			tts.WithAPIKey(a.cfg.LLM.APIKey),
			tts.WithModel(a.cfg.TTS.Model),
			tts.WithVoice(a.cfg.TTS.Voice),
			tts.WithLogger(a.opts.Logger),
		)
		if err != nil {
			a.logger.Warn("voice output disabled", "error", err)
			return
		}
		provider = p
	}
	player := speech.NewCommandPlayer(a.cfg.TTS.Player)
	a.speaker = speech.NewVoiceSpeaker(provider, player, console, a.opts.Logger)
}

func (a *App) initTransport(ctx context.Context) error {
	a.bus = a.opts.Bus
	if a.bus == nil {
		bus, err := DialBus(ctx, a.cfg.Transport, a.opts.Logger)
		if err != nil {
			return err
		}
		a.bus, a.ownsBus = bus, true
	}

	topics := Topics(a.cfg.Transport)
	gw, err := movement.NewGateway(a.bus, topics, a.opts.Logger)
	if err != nil {
		return err
	}
	a.gateway = gw

	if a.cfg.Transport.Kind == config.TransportMemory {
		a.simulator = movement.NewSimulator(a.bus, topics, a.cfg.Transport.TravelDelay, a.opts.Logger)
		if err := a.simulator.Start(ctx); err != nil {
			return fmt.Errorf("simulator: %w", err)
		}
	}
	return nil
}

// DialBus connects to the configured movement transport.
func DialBus(ctx context.Context, cfg config.TransportConfig, logger *slog.Logger) (movement.Bus, error) {
	switch cfg.Kind {
	case config.TransportMemory:
		return movement.NewMemoryBus(), nil
	case config.TransportRedis:
		bus, err := movement.DialRedis(ctx, cfg.RedisAddr, logger)
		if err != nil {
			return nil, err
		}
		return bus, nil
	case config.TransportNATS:
		bus, err := movement.DialNATS(cfg.NATSURL, logger)
		if err != nil {
			return nil, err
		}
		return bus, nil
	}
	return nil, fmt.Errorf("unknown transport %q", cfg.Kind)
}

// Topics returns the movement topics from cfg, under the topic prefix when
// one is set. The separator follows the broker's naming convention.
func Topics(cfg config.TransportConfig) movement.Topics {
	t := movement.Topics{Movement: cfg.MovementTopic, Arrived: cfg.ArrivedTopic}
	sep := "/"
	switch cfg.Kind {
	case config.TransportNATS:
		sep = "."
	case config.TransportRedis:
		sep = ":"
	}
	return t.WithPrefix(cfg.TopicPrefix, sep)
}

func (a *App) initRecords(ctx context.Context) error {
	if a.opts.Records != nil {
		a.records = a.opts.Records
		return nil
	}
	switch a.cfg.Record.Kind {
	case "file":
		s, err := record.NewJSONStore(a.cfg.Record.Dir)
		if err != nil {
			return err
		}
		a.records = s
	case "redis":
		s, err := record.DialRedisStore(ctx, a.cfg.Transport.RedisAddr)
		if err != nil {
			return err
		}
		a.records = s
	default:
		a.records = record.Nop{}
	}
	return nil
}

func (a *App) initWeb(ctx context.Context) {
	if !a.cfg.Web.Enabled {
		return
	}
	a.web = web.NewServer(web.Config{
		Port:     a.cfg.Web.Port,
		Catalog:  a.catalog,
		Records:  a.records,
		Movement: a.gateway.Stats,
		Logger:   a.opts.Logger,
	})
	a.web.StartAsync(ctx)
}

// RunTour plays one tour and saves its record. A record is returned even
// when the tour was cancelled.
func (a *App) RunTour(ctx context.Context) (*record.Record, error) {
	if a.gateway == nil {
		return nil, errors.New("docent: app not initialized")
	}

	opts := []tour.Option{tour.WithLogger(a.opts.Logger)}
	if a.web != nil {
		opts = append(opts, tour.WithObserver(a.web.Observe))
	}
	for _, fn := range a.opts.Observers {
		opts = append(opts, tour.WithObserver(fn))
	}

	o, err := tour.New(tour.Config{
		TourSize:       a.cfg.Tour.Size,
		ArrivalTimeout: a.cfg.Tour.ArrivalTimeout,
		HomePosition:   a.cfg.Tour.HomePosition,
	}, tour.Deps{
		Catalog:    a.catalog,
		Listener:   a.listener,
		Speaker:    a.speaker,
		Classifier: a.classifier,
		Selector:   a.selector,
		Guide:      a.tourGuide(),
		Gateway:    a.gateway,
	}, opts...)
	if err != nil {
		return nil, err
	}

	rec, runErr := o.Run(ctx)
	if rec != nil {
		// The tour context may already be cancelled; the record should still land.
		if err := a.records.Save(context.WithoutCancel(ctx), rec); err != nil {
			a.logger.Error("failed to save record", "session", rec.SessionID, "error", err)
		} else {
			a.logger.Info("saved record", "session", rec.SessionID, "reason", rec.Reason)
		}
	}
	return rec, runErr
}

// tourGuide avoids handing the orchestrator a typed nil.
func (a *App) tourGuide() tour.Guide {
	if a.guide == nil {
		return nil
	}
	return a.guide
}

// Catalog returns the loaded catalog.
func (a *App) Catalog() *catalog.Catalog { return a.catalog }

// Selector returns the exhibit selector.
func (a *App) Selector() *selector.Selector { return a.selector }

// Classifier returns the utterance classifier.
func (a *App) Classifier() *intent.Classifier { return a.classifier }

// Gateway returns the movement gateway.
func (a *App) Gateway() *movement.Gateway { return a.gateway }

// Records returns the record store.
func (a *App) Records() record.Store { return a.records }

// Web returns the dashboard, or nil when disabled.
func (a *App) Web() *web.Server { return a.web }

// Shutdown stops background work and closes connections.
func (a *App) Shutdown() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.web != nil {
		if err := a.web.Shutdown(); err != nil {
			a.logger.Warn("dashboard shutdown", "error", err)
		}
	}
	if a.gateway != nil {
		a.gateway.Close()
	}
	if a.bus != nil && a.ownsBus {
		if err := a.bus.Close(); err != nil {
			a.logger.Warn("transport close", "error", err)
		}
	}
	if a.records != nil {
		a.records.Close()
	}
	if a.llm != nil && a.opts.LLM == nil {
		a.llm.Close()
	}
}
