package timeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/gigurra/stillalive/cmd/common"
	"github.com/gigurra/stillalive/cmd/config"
	"github.com/gigurra/stillalive/cmd/credits"
	"github.com/gigurra/stillalive/cmd/game"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type Params struct {
	Game         string   `short:"g" optional:"true" help:"Portal install directory (default: found through Steam)."`
	Data         string   `short:"d" optional:"true" help:"Directory, archive or VPK holding the game resources."`
	Script       string   `optional:"true" help:"Credits script file to use instead of scripts/credits.txt."`
	Translations string   `optional:"true" help:"Translation file to use instead of resource/portal_<lang>.txt."`
	Lang         string   `short:"l" optional:"true" help:"Translation language (default from config, english)."`
	Format       string   `short:"f" optional:"true" help:"Output format (table, json, yaml)." default:"table" alts:"table,json,yaml"`
	Limit        int      `short:"n" optional:"true" help:"Show only the first N matching events (0 for all)." default:"0"`
	Kind         []string `short:"k" optional:"true" help:"Only show these event kinds (character, simple, cursor, ascii-art)."`
}

func Cmd() *cobra.Command {
	return boa.CmdT[Params]{
		Use:         "timeline",
		Short:       "Print the compiled credits timeline",
		Long:        "Compile the credits script and print every event with its time, as a table, JSON or YAML.",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			if err := run(cmd, params, os.Stdout); err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "timeline: %v\n", err)
				os.Exit(1)
			}
		},
	}.ToCobra()
}

func run(cmd *cobra.Command, params *Params, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	opts := game.Options{
		GameDir:      params.Game,
		Data:         params.Data,
		Script:       params.Script,
		Translations: params.Translations,
		Language:     params.Lang,
	}.WithConfig(cfg)

	_, timeline, err := game.LoadTimeline(cmd.Context(), opts)
	if err != nil {
		return err
	}
	records, err := Records(timeline, params.Kind, params.Limit)
	if err != nil {
		return err
	}
	return Write(out, records, params.Format)
}

// Record is the printable form of one event.
type Record struct {
	Index  int    `json:"index" yaml:"index"`
	Time   int64  `json:"time" yaml:"time"`
	Kind   string `json:"kind" yaml:"kind"`
	Panel  string `json:"panel,omitempty" yaml:"panel,omitempty"`
	Char   string `json:"char,omitempty" yaml:"char,omitempty"`
	Action string `json:"action,omitempty" yaml:"action,omitempty"`
	Art    string `json:"art,omitempty" yaml:"art,omitempty"`
}

var kindNames = []string{
	credits.KindCharacter.String(),
	credits.KindSimple.String(),
	credits.KindCursor.String(),
	credits.KindAsciiArt.String(),
}

// Records converts the events of kinds (all when empty), keeping at most
// limit of them when limit is positive.
func Records(timeline credits.Timeline, kinds []string, limit int) ([]Record, error) {
	for _, k := range kinds {
		if !lo.Contains(kindNames, k) {
			return nil, fmt.Errorf("unknown event kind %q, want one of %s", k, strings.Join(kindNames, ", "))
		}
	}

	var records []Record
	for i, e := range timeline.All() {
		if len(kinds) > 0 && !lo.Contains(kinds, e.Kind().String()) {
			continue
		}
		if limit > 0 && len(records) == limit {
			break
		}
		records = append(records, toRecord(i, e))
	}
	return records, nil
}

func toRecord(i int, e credits.Event) Record {
	r := Record{Index: i, Time: e.Time(), Kind: e.Kind().String()}
	switch e := e.(type) {
	case credits.CharacterEvent:
		r.Panel = panel(e.ForCredits)
		r.Char = string(e.Char)
	case credits.SimpleEvent:
		r.Action = e.Action.String()
	case credits.CursorEvent:
		r.Panel = panel(e.ToCredits)
	case credits.AsciiArtEvent:
		r.Art = e.Art
	}
	return r
}

func panel(forCredits bool) string {
	if forCredits {
		return "credits"
	}
	return "song"
}

// Write prints records in format: table, json or yaml.
func Write(w io.Writer, records []Record, format string) error {
	switch format {
	case "", "table":
		writeTable(w, records)
		return nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func writeTable(w io.Writer, records []Record) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Time", "Kind", "Panel", "Detail"})
	for _, r := range records {
		t.AppendRow(table.Row{r.Index, formatMillis(r.Time), r.Kind, r.Panel, detail(r)})
	}
	t.Render()
}

func detail(r Record) string {
	switch {
	case r.Char != "":
		return strconv.Quote(r.Char)
	case r.Action != "":
		return r.Action
	case r.Kind == credits.KindAsciiArt.String():
		lines := strings.Split(r.Art, "\n")
		if len(lines) == 1 {
			return strconv.Quote(lines[0])
		}
		return fmt.Sprintf("%s (+%d lines)", strconv.Quote(lines[0]), len(lines)-1)
	}
	return ""
}

// formatMillis renders 83500 as 1:23.500.
func formatMillis(ms int64) string {
	return fmt.Sprintf("%d:%02d.%03d", ms/60000, ms/1000%60, ms%1000)
}
