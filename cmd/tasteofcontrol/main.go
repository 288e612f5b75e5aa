// Package main is the entry point for the tasteofcontrol CLI
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/james-see/tasteofcontrol/pkg/api"
	"github.com/james-see/tasteofcontrol/pkg/composer"
	"github.com/james-see/tasteofcontrol/pkg/config"
	"github.com/james-see/tasteofcontrol/pkg/control"
	"github.com/james-see/tasteofcontrol/pkg/engine"
	"github.com/james-see/tasteofcontrol/pkg/logger"
	"github.com/james-see/tasteofcontrol/pkg/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	cfg          *config.Config
	stagesPath   string
	seed         uint64
	strict       bool
	measures     int
	advanceEvery int
	volume       float64
	outBase      string
	serverPort   int
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg = config.Load()
	flush := logger.InitSentry(cfg.SentryDSN, cfg.Environment, version)
	defer flush()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

var rootCmd = &cobra.Command{
	Use:   "tasteofcontrol",
	Short: "Compose a score one measure at a time from live control events",
	Long: `tasteofcontrol writes a three-part score measure by measure. Each control
event moves a direction counter through six stages, and the cadence of the
events sets how dense and how high the music gets.

Examples:
  tasteofcontrol compose -n 40 --seed 7 --out session
  tasteofcontrol tui
  tasteofcontrol serve --port 8080
  tasteofcontrol stages --stages my-stages.yaml`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("stages") {
			cfg.StagesPath = stagesPath
		}
		if cmd.Flags().Changed("seed") {
			cfg.Seed = seed
		}
		if cmd.Flags().Changed("strict") {
			cfg.Strict = strict
		}
	},
}

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Compose a fixed number of measures without interaction",
	RunE:  runCompose,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the performer console",
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

var stagesCmd = &cobra.Command{
	Use:   "stages",
	Short: "Validate and print the stage table",
	RunE:  runStages,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&stagesPath, "stages", "", "Stage table file (default: embedded)")
	rootCmd.PersistentFlags().Uint64Var(&seed, "seed", 0, "Random seed (0: derived from the clock)")
	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "Abort on duration mismatches")

	composeCmd.Flags().IntVarP(&measures, "measures", "n", 24, "Number of control events")
	composeCmd.Flags().IntVar(&advanceEvery, "advance-every", 2, "Raise the direction on every k-th event (0: never)")
	composeCmd.Flags().Float64Var(&volume, "volume", 0.5, "Volume sample sent with each event")
	composeCmd.Flags().StringVarP(&outBase, "out", "o", "score", "Output path without extension")

	tuiCmd.Flags().StringVarP(&outBase, "out", "o", "", "Output path without extension (default: session ID)")

	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 0, "Server port (default: PORT)")

	rootCmd.AddCommand(composeCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(stagesCmd)
}

func runCompose(cmd *cobra.Command, args []string) error {
	if measures <= 0 {
		return fmt.Errorf("--measures must be positive")
	}
	session, record, err := engine.Open(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = record.Close() }()

	for i := range measures {
		delta := 0
		if advanceEvery > 0 && (i+1)%advanceEvery == 0 {
			delta = 1
		}
		m, err := session.Advance(delta, volume, "")
		if err != nil {
			return fmt.Errorf("measure %d: %w", i+1, err)
		}
		fmt.Printf("%3d  stage %d %-9s direction %d  %s\n", m.Number, m.Stage, m.Stage, m.Direction, m.Meter)
	}

	files, err := tui.WriteScore(session.Score(), outBase)
	if err != nil {
		return err
	}
	entries, err := record.Entries(cmd.Context())
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Printf("✓ Wrote %s\n", f)
	}
	if len(entries) > 0 {
		fmt.Printf("%d duration mismatches recorded\n", len(entries))
	}
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	session, record, err := engine.Open(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = record.Close() }()

	var picker control.Picker
	if cfg.Seed != 0 {
		picker = composer.NewRand(cfg.Seed + 1)
	}
	return tui.Run(tui.Options{
		Session:      session,
		Picker:       picker,
		BeatDuration: time.Duration(cfg.BeatDurationMS) * time.Millisecond,
		OutBase:      outBase,
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	port := serverPort
	if port == 0 {
		p, err := strconv.Atoi(cfg.Port)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", cfg.Port, err)
		}
		port = p
	}
	session, record, err := engine.Open(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = record.Close() }()

	fmt.Printf("Starting tasteofcontrol API server on port %d...\n", port)
	fmt.Printf("Swagger docs available at http://localhost:%d/swagger/index.html\n", port)
	return api.StartServer(port, session, record)
}

func runStages(cmd *cobra.Command, args []string) error {
	stages, err := engine.LoadStages(cfg.StagesPath)
	if err != nil {
		return err
	}
	fmt.Printf("language: %s\n\n", stages.Language)
	for _, inst := range stages.Instruments {
		fmt.Printf("%-10s range %d..%d (extended %d), transposition %+d\n",
			inst.Name, inst.Lower, inst.Upper, inst.ExtendedUpper, inst.Transposition)
	}
	fmt.Println()
	for i, s := range stages.Settings {
		stage := engine.Stage(i)
		fmt.Printf("%d %-9s %-4s universe %v", i, stage, s.Meter, s.Universe)
		if s.ShuffleSilence {
			fmt.Print(" shuffle-silence")
		}
		fmt.Println()
		for d := 0; d <= engine.MaxDirection; d++ {
			if rows, ok := s.Templates[d]; ok {
				fmt.Printf("    direction %d: %v\n", d, rows)
			}
		}
	}
	return nil
}
