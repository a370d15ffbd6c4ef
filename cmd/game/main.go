package main

import (
	"errors"
	"flag"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"

	"github.com/Garsondee/Scorched-Earth/internal/config"
	"github.com/Garsondee/Scorched-Earth/internal/logging"
	"github.com/Garsondee/Scorched-Earth/internal/sound"
	"github.com/Garsondee/Scorched-Earth/internal/view"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to a config file (yaml, json or toml)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		bootLog := logging.New("info", true)
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Console)

	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("exiting")
		os.Exit(1)
	}
}

func run(cfg config.Config, log zerolog.Logger) error {
	opts := view.Options{
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		Tanks:  cfg.Round.Tanks,
		Seed:   cfg.Round.Seed,
		Speed:  cfg.Sim.Speed,
		Log:    log,
	}

	if cfg.Audio.Enabled {
		engine := sound.NewEngine(cfg.Audio.Volume, log)
		if err := engine.Initialize(); err != nil {
			log.Warn().Err(err).Msg("audio unavailable, continuing without sound")
		} else {
			defer engine.Close()
			opts.Sounds = engine
		}
	}

	g, err := view.New(opts)
	if err != nil {
		return err
	}

	ebiten.SetWindowTitle("Scorched Earth")
	ebiten.SetWindowSize(g.Layout(0, 0))
	log.Info().
		Int("width", cfg.Window.Width).
		Int("height", cfg.Window.Height).
		Int("tanks", cfg.Round.Tanks).
		Msg("starting")

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
