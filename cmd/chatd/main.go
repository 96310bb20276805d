package main

// #region imports
import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/guestflow/ragcore/internal/auditlog"
	"github.com/guestflow/ragcore/internal/config"
	"github.com/guestflow/ragcore/internal/embed"
	"github.com/guestflow/ragcore/internal/escalate"
	"github.com/guestflow/ragcore/internal/modelmap"
	"github.com/guestflow/ragcore/internal/pipeline"
	"github.com/guestflow/ragcore/internal/server"
)

// #endregion

// #region default-prompt

const defaultSystemPrompt = "Ты — вежливый ассистент отеля. Отвечай кратко и по делу, " +
	"опираясь только на предоставленную информацию из документов."

// #endregion default-prompt

// #region main

func main() {
	fixturesPath := flag.String("fixtures", "tenants.json", "path to tenant fixtures JSON")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	level := zerolog.InfoLevel
	if cfg.Debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()

	store, err := loadFixtures(*fixturesPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load fixtures")
	}

	audit, err := auditlog.NewStore(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("open audit db")
	}
	defer audit.Close()

	p := pipeline.New(log, pipeline.Deps{
		Embedder:   embed.NewYandexClient(cfg.YandexAPIKey, cfg.YandexFolderID, ""),
		Chunks:     store,
		Settings:   store,
		FreeModels: modelmap.NewFreeModelCache(log),
		Audit:      audit,
		Completers: pipeline.NewClientFactory(store),
		Escalator: escalate.NewController(escalate.Config{
			WindowSize:      cfg.LowOverlapWindow,
			RateThreshold:   cfg.LowOverlapThreshold,
			PreemptiveWiden: cfg.PreemptiveWiden,
		}),
		DefaultPrompt: defaultSystemPrompt,
	})

	router := server.NewRouter(server.RouterConfig{
		Log:      log,
		Pipeline: p,
		Stats:    audit,
	})

	log.Info().Str("addr", cfg.ListenAddr).Msg("chatd listening")
	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// #endregion main
