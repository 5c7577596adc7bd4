package main

import (
	"context"
	"github.com/halvemaan/gumshoe/internal/broker"
	"github.com/halvemaan/gumshoe/internal/ending"
	"github.com/halvemaan/gumshoe/internal/envstruct"
	"github.com/halvemaan/gumshoe/internal/errors"
	"github.com/halvemaan/gumshoe/internal/game"
	"github.com/halvemaan/gumshoe/internal/judge"
	"github.com/halvemaan/gumshoe/internal/logging"
	"github.com/halvemaan/gumshoe/internal/mystery"
	"github.com/halvemaan/gumshoe/internal/portrait"
	"github.com/halvemaan/gumshoe/internal/pprofserver"
	"github.com/halvemaan/gumshoe/internal/provider"
	"github.com/joho/godotenv"
	"io/fs"
	"log/slog"
	"os"
	"time"
)

type application struct {
	logger  *slog.Logger
	session *game.Session
	events  *broker.EventBroker[game.Snapshot]
}

type config struct {
	Addr string `env:"GUMSHOE_ADDR" envDefault:"localhost:4000"`
	// PprofPort is the port part only; pprof always binds the IPv6 loopback.
	PprofPort string `env:"GUMSHOE_PPROF_PORT" envDefault:":6060"`
	// Models is the fallback chain tried in order until one answers.
	Models string `env:"GUMSHOE_MODELS" envDefault:"gemini:gemini-2.5-flash,gemini:gemini-2.0-flash,openai:gpt-4o-mini"`
	// Portraits selects the portrait provider: avatar, dalle or off.
	Portraits     string `env:"GUMSHOE_PORTRAITS" envDefault:"avatar"`
	AvatarBaseURL string `env:"GUMSHOE_AVATAR_BASE_URL" envDefault:""`

	MaxTokens        int           `env:"GUMSHOE_MAX_TOKENS" envDefault:"4096"`
	AttemptTimeout   time.Duration `env:"GUMSHOE_ATTEMPT_TIMEOUT" envDefault:"90s"`
	OperationTimeout time.Duration `env:"GUMSHOE_OPERATION_TIMEOUT" envDefault:"180s"`

	// Generation runs hot for variety, the GM judge runs cold for
	// consistent rulings, and NPCs sit in between so dialogue stays lively.
	GenerationTemperature float64 `env:"GUMSHOE_GENERATION_TEMPERATURE" envDefault:"0.85"`
	GMTemperature         float64 `env:"GUMSHOE_GM_TEMPERATURE" envDefault:"0.15"`
	NPCTemperature        float64 `env:"GUMSHOE_NPC_TEMPERATURE" envDefault:"0.75"`
	EvaluationTemperature float64 `env:"GUMSHOE_EVALUATION_TEMPERATURE" envDefault:"0.4"`
}

// eventBuffer is the per-subscriber event channel capacity. Every event
// carries the full state, so a dropped event only delays a slow client
// until the next one.
const eventBuffer = 16

// portraitCacheSize bounds the portrait cache. One entry per character, so
// this covers plenty of games.
const portraitCacheSize = 128

func main() {
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   true,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	})))
	ctx := context.Background()
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server failed", errors.SlogError(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	// .env is a convenience for local development. Deployments set the
	// environment directly, so a missing file is not an error.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrap(err, "load .env")
	}

	var cfg config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	// Initialise pprof listening on localhost so that it's not open to the world.
	pprofserver.Launch(cfg.PprofPort, logger)

	backends, err := buildBackends(ctx, lookupEnv)
	if err != nil {
		return errors.Wrap(err, "build backends")
	}

	var modelRefs []provider.ModelRef
	if modelRefs, err = provider.ParseModelRefs(cfg.Models); err != nil {
		return errors.Wrap(err, "parse model chain")
	}

	var adapter *provider.Adapter
	if adapter, err = provider.NewAdapter(backends, modelRefs, cfg.AttemptTimeout, logger); err != nil {
		return errors.Wrap(err, "new adapter")
	}

	var portraits portrait.Provider
	if portraits, err = buildPortraits(cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "build portraits")
	}

	events := broker.NewEventBroker[game.Snapshot](eventBuffer)
	go events.Start()
	defer events.Stop()

	session := game.NewSession(
		mystery.NewGenerator(adapter, portraits, float32(cfg.GenerationTemperature), cfg.MaxTokens, logger),
		judge.NewJudge(adapter, float32(cfg.GMTemperature), float32(cfg.NPCTemperature), cfg.MaxTokens, logger),
		ending.NewEvaluator(adapter, float32(cfg.EvaluationTemperature), cfg.MaxTokens, logger),
		cfg.OperationTimeout,
		events.Publish,
		logger,
	)

	app := application{
		logger:  logger,
		session: session,
		events:  events,
	}

	return app.configureAndStartServer(ctx, cfg.Addr)
}

// buildBackends registers every backend whose credentials are present. The
// API keys pass through to the SDKs untouched. The fake backend is always
// registered so a chain like "fake:fake-1" works without any keys, which
// the tests and the smoke test rely on.
func buildBackends(ctx context.Context, lookupEnv func(string) (string, bool)) ([]provider.Backend, error) {
	backends := []provider.Backend{provider.NewFakeBackend()}
	if apiKey, ok := lookupEnv("GEMINI_API_KEY"); ok && apiKey != "" {
		gemini, err := provider.NewGeminiBackend(ctx, apiKey)
		if err != nil {
			return nil, errors.Wrap(err, "new gemini backend")
		}
		backends = append(backends, gemini)
	}
	if apiKey, ok := lookupEnv("OPENAI_API_KEY"); ok && apiKey != "" {
		backends = append(backends, provider.NewOpenAIBackend(apiKey))
	}
	return backends, nil
}

func buildPortraits(cfg config, lookupEnv func(string) (string, bool)) (portrait.Provider, error) {
	switch cfg.Portraits {
	case "avatar":
		return portrait.NewAvatarService(cfg.AvatarBaseURL), nil
	case "dalle":
		apiKey, ok := lookupEnv("OPENAI_API_KEY")
		if !ok || apiKey == "" {
			return nil, errors.New("GUMSHOE_PORTRAITS=dalle requires OPENAI_API_KEY")
		}
		return portrait.NewCachingProvider(portrait.NewDallEProvider(apiKey), portraitCacheSize)
	case "off":
		return nil, nil
	default:
		return nil, errors.New("unknown portrait provider", slog.String("portraits", cfg.Portraits))
	}
}
