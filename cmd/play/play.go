// Package play shows the credits sequence in the terminal, in time with the song.
package play

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/gigurra/stillalive/cmd/audio"
	"github.com/gigurra/stillalive/cmd/common"
	"github.com/gigurra/stillalive/cmd/config"
	"github.com/gigurra/stillalive/cmd/credits"
	"github.com/gigurra/stillalive/cmd/game"
	"github.com/gigurra/stillalive/cmd/logging"
	"github.com/gigurra/stillalive/cmd/playback"
	"github.com/gigurra/stillalive/cmd/render"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

type Params struct {
	Game         string  `short:"g" optional:"true" help:"Portal install directory (default: found through Steam)."`
	Data         string  `short:"d" optional:"true" help:"Directory, archive or VPK holding the game resources."`
	Script       string  `optional:"true" help:"Credits script file to use instead of scripts/credits.txt."`
	Translations string  `optional:"true" help:"Translation file to use instead of resource/portal_<lang>.txt."`
	Song         string  `optional:"true" help:"MP3 file to use instead of sound/music/portal_still_alive.mp3."`
	Lang         string  `short:"l" optional:"true" help:"Translation language (default from config, english)."`
	Volume       float64 `optional:"true" help:"Song volume between 0 and 1 (default from config)." default:"0.2"`
	NoAudio      bool    `optional:"true" help:"Play without sound." default:"false"`
	LogFile      string  `optional:"true" help:"Log file (default from config, or stillalive.log in the cache directory)."`
}

// Cmd is the root command: with no subcommand the credits are played.
func Cmd(version string, subCmds ...*cobra.Command) boa.CmdT[Params] {
	return boa.CmdT[Params]{
		Use:   "stillalive",
		Short: "Replay the Portal end credits in the terminal",
		Long: `Replay the Portal end credits in your terminal, with the song.

The credits script, translations and song are read from the Portal install
(found through Steam, or given with --game), from --data, or from the loose
files named by --script, --translations and --song.

Controls:
  q, ESC or Ctrl+C - Quit`,
		Version:     version,
		ParamEnrich: common.DefaultParamEnricher(),
		SubCmds:     subCmds,
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			if err := Run(cmd.Context(), params, cmd.Flags().Changed("volume")); err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "stillalive: %v\n", err)
				os.Exit(1)
			}
		},
	}
}

// Run plays the credits once. volumeSet tells whether --volume was given, so
// the configured volume applies otherwise.
func Run(ctx context.Context, params *Params, volumeSet bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.Setup(logOptions(params, cfg))
	defer func() { _ = logger.Close() }()

	res, timeline, err := game.LoadTimeline(ctx, options(params, cfg))
	if err != nil {
		return err
	}
	rgb, err := res.Script.Params.TextColor()
	if err != nil {
		return err
	}
	fg := render.Color{R: rgb.R, G: rgb.G, B: rgb.B}

	var song render.SongStarter = audio.Silent{}
	if !params.NoAudio {
		if !audio.AudioAvailable {
			slog.Warn("this build has no audio support, playing without sound")
		}
		player, err := audio.Load(res.Song, volume(params, cfg, volumeSet))
		if err != nil {
			return fmt.Errorf("%w (use --no-audio to play without sound)", err)
		}
		defer func() { _ = player.Close() }()
		song = player
	}

	slog.Debug("starting playback", "events", timeline.Len(), "length", time.Duration(timeline.End())*time.Millisecond, "audio", !params.NoAudio)

	screen, err := render.OpenTerminal(fg)
	if errors.Is(err, render.ErrNotTerminal) {
		return fmt.Errorf("%w, run stillalive timeline to inspect the credits without one", err)
	} else if err != nil {
		return err
	}
	logger.MuteConsole(true)

	machine := render.NewMachine(screen, fg, song)
	machine.Begin()
	stats, err := play(ctx, machine, screen, timeline)

	closeErr := screen.Close()
	logger.MuteConsole(false)
	if err != nil {
		return err
	}
	slog.Info("playback finished", "dispatched", stats.Dispatched, "max_lag", stats.MaxLag, "interrupted", stats.Interrupted)
	return closeErr
}

func play(ctx context.Context, machine *render.Machine, screen *render.Terminal, timeline credits.Timeline) (playback.Stats, error) {
	if err := screen.Flush(); err != nil {
		return playback.Stats{Interrupted: true}, nil
	}
	scheduler := &playback.Scheduler{Renderer: machine, Display: screen}
	return scheduler.Run(ctx, timeline)
}

func options(params *Params, cfg *config.Config) game.Options {
	return game.Options{
		GameDir:      params.Game,
		Data:         params.Data,
		Script:       params.Script,
		Translations: params.Translations,
		Song:         params.Song,
		Language:     params.Lang,
		NeedSong:     !params.NoAudio,
	}.WithConfig(cfg)
}

func volume(params *Params, cfg *config.Config, volumeSet bool) float64 {
	if volumeSet {
		return params.Volume
	}
	return cfg.VolumeOr(params.Volume)
}

func logOptions(params *Params, cfg *config.Config) logging.Options {
	return logging.Options{
		Level: cfg.LogLevel,
		File:  lo.CoalesceOrEmpty(params.LogFile, cfg.LogFile),
	}
}
