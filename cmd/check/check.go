// Package check validates the credits resources and summarizes what a
// playback would show, optionally re-checking whenever loose files change.
package check

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	"github.com/gigurra/stillalive/cmd/audio"
	"github.com/gigurra/stillalive/cmd/common"
	"github.com/gigurra/stillalive/cmd/config"
	"github.com/gigurra/stillalive/cmd/credits"
	"github.com/gigurra/stillalive/cmd/game"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

type Params struct {
	Game         string `short:"g" optional:"true" help:"Portal install directory (default: found through Steam)."`
	Data         string `short:"d" optional:"true" help:"Directory, archive or VPK holding the game resources."`
	Script       string `optional:"true" help:"Credits script file to use instead of scripts/credits.txt."`
	Translations string `optional:"true" help:"Translation file to use instead of resource/portal_<lang>.txt."`
	Song         string `optional:"true" help:"MP3 file to use instead of sound/music/portal_still_alive.mp3."`
	Lang         string `short:"l" optional:"true" help:"Translation language (default from config, english)."`
	WithSong     bool   `short:"s" optional:"true" help:"Also decode the song and compare its length with the timeline." default:"false"`
	Watch        bool   `short:"w" optional:"true" help:"Check again whenever a loose --script, --translations, --song or --data file changes." default:"false"`
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Faint(true).Width(14)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

const debounceDelay = 100 * time.Millisecond

func Cmd() *cobra.Command {
	return boa.CmdT[Params]{
		Use:   "check",
		Short: "Validate the credits resources and summarize the timeline",
		Long: "Load and compile the credits script, translations and (with --with-song) the song, " +
			"then print a summary. With --watch, the check reruns whenever the loose files change.",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			if err := run(cmd.Context(), params, os.Stdout); err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "check: %v\n", err)
				os.Exit(1)
			}
		},
	}.ToCobra()
}

func run(ctx context.Context, params *Params, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	opts := game.Options{
		GameDir:      params.Game,
		Data:         params.Data,
		Script:       params.Script,
		Translations: params.Translations,
		Song:         params.Song,
		Language:     params.Lang,
		NeedSong:     params.WithSong,
	}.WithConfig(cfg)

	if !params.Watch {
		return checkOnce(ctx, opts, out)
	}

	dirs, err := watchDirs(params)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	report := func() {
		if err := checkOnce(ctx, opts, out); err != nil {
			_, _ = fmt.Fprintln(out, errStyle.Render("✗ "+err.Error()))
		}
	}
	report()
	_, _ = fmt.Fprintf(out, "Watching %d directories...\n", len(dirs))
	return runWatch(ctx, dirs, report)
}

func checkOnce(ctx context.Context, opts game.Options, out io.Writer) error {
	res, timeline, err := game.LoadTimeline(ctx, opts)
	if err != nil {
		return err
	}
	summary := Summarize(res, timeline)
	summary.Language = lo.CoalesceOrEmpty(opts.Language, config.DefaultLanguage)
	if res.Song != nil {
		if summary.Song, err = audio.Probe(res.Song); err != nil {
			return fmt.Errorf("%s: %w", game.SongResource, err)
		}
	}
	_, err = fmt.Fprint(out, Render(summary))
	return err
}

// Summary describes loaded resources and their compiled timeline.
type Summary struct {
	Language string
	Credits  int
	Lyrics   int
	ArtLines int
	Tokens   int
	Events   int
	ByKind   map[credits.Kind]int
	End      time.Duration
	// Song is zero when the song was not loaded.
	Song time.Duration
}

func Summarize(res *game.Resources, timeline credits.Timeline) Summary {
	return Summary{
		Credits:  len(res.Script.CreditNames),
		Lyrics:   len(res.Script.Lyrics),
		ArtLines: len(res.Script.AsciiArt),
		Tokens:   len(res.Translations),
		Events:   timeline.Len(),
		ByKind:   lo.CountValuesBy(timeline.Events(), credits.Event.Kind),
		End:      time.Duration(timeline.End()) * time.Millisecond,
	}
}

// Warnings lists problems that do not stop playback.
func (s Summary) Warnings() []string {
	var warnings []string
	if s.Credits == 0 {
		warnings = append(warnings, "no credit names, the credits panel stays empty")
	}
	if s.ByKind[credits.KindCharacter] == 0 {
		warnings = append(warnings, "no characters are ever revealed")
	}
	if s.Song > 0 && s.Song < s.End-credits.TailMillis*time.Millisecond {
		warnings = append(warnings, fmt.Sprintf("song (%s) ends before the lyrics (%s)", formatDuration(s.Song), formatDuration(s.End)))
	}
	return warnings
}

// Render formats s for a terminal.
func Render(s Summary) string {
	var sb strings.Builder
	row := func(label, value string) {
		sb.WriteString(labelStyle.Render(label))
		sb.WriteString(value)
		sb.WriteByte('\n')
	}

	sb.WriteString(titleStyle.Render("Credits timeline"))
	sb.WriteByte('\n')
	row("Language", s.Language)
	row("Script", fmt.Sprintf("%d credit names, %d lyric lines, %d art lines", s.Credits, s.Lyrics, s.ArtLines))
	row("Tokens", fmt.Sprint(s.Tokens))
	row("Events", fmt.Sprintf("%d (%s)", s.Events, kindCounts(s.ByKind)))
	row("Length", formatDuration(s.End))
	if s.Song > 0 {
		row("Song", formatDuration(s.Song))
	}

	warnings := s.Warnings()
	for _, w := range warnings {
		sb.WriteString(warnStyle.Render("! " + w))
		sb.WriteByte('\n')
	}
	if len(warnings) == 0 {
		sb.WriteString(okStyle.Render("✓ ok"))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func kindCounts(byKind map[credits.Kind]int) string {
	kinds := []credits.Kind{credits.KindCharacter, credits.KindSimple, credits.KindCursor, credits.KindAsciiArt}
	parts := lo.Map(kinds, func(k credits.Kind, _ int) string {
		return fmt.Sprintf("%s %d", k, byKind[k])
	})
	return strings.Join(parts, ", ")
}

// formatDuration renders 83.5s as 1:23.5.
func formatDuration(d time.Duration) string {
	d = d.Round(100 * time.Millisecond)
	return fmt.Sprintf("%d:%02d.%d", int(d.Minutes()), int(d.Seconds())%60, d.Milliseconds()%1000/100)
}

// watchDirs lists the directories holding loose resources.
func watchDirs(params *Params) ([]string, error) {
	var dirs []string
	for _, file := range []string{params.Script, params.Translations, params.Song} {
		if file != "" {
			dirs = append(dirs, filepath.Dir(file))
		}
	}
	if params.Data != "" {
		info, err := os.Stat(params.Data)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			err := filepath.WalkDir(params.Data, func(path string, d os.DirEntry, err error) error {
				if err == nil && d.IsDir() {
					dirs = append(dirs, path)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else {
			dirs = append(dirs, filepath.Dir(params.Data))
		}
	}
	if len(dirs) == 0 {
		return nil, fmt.Errorf("nothing to watch, pass --data, --script, --translations or --song")
	}

	for i, dir := range dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve path %s: %w", dir, err)
		}
		dirs[i] = abs
	}
	return lo.Uniq(dirs), nil
}

// runWatch calls onChange after file changes in dirs settle, until ctx is done.
func runWatch(ctx context.Context, dirs []string, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	changeChan := make(chan struct{}, 1)
	var debounceTimer *time.Timer
	var debounceMutex sync.Mutex
	trigger := func() {
		debounceMutex.Lock()
		defer debounceMutex.Unlock()
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		debounceTimer = time.AfterFunc(debounceDelay, func() {
			select {
			case changeChan <- struct{}{}:
			default:
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				trigger()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			_, _ = fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		case <-changeChan:
			onChange()
		}
	}
}
