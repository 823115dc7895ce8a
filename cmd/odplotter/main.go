// odplotter turns a plate reader OD600 export and a plate layout into
// per-group growth statistics and a growth-curve chart.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/growthcurve"
	_ "github.com/carbocation/growthcurve/compileinfoprint"
	"github.com/carbocation/growthcurve/config"
	"github.com/carbocation/growthcurve/pipeline"
	"github.com/carbocation/growthcurve/plate"
)

const formatHint = "Check that the export has a header line starting with 'Time' and that the layout has numeric column headers and row letters."

type options struct {
	layoutPath string
	dataPath   string
	statsPath  string
	plotPath   string
	sheet      string
	summary    bool
}

func main() {
	var opts options
	var configPath string
	var mode, errorBars, groups string
	var blank, clip, wallClock, strict bool

	flag.StringVar(&opts.layoutPath, "layout", "", "Plate layout (CSV/TSV, optionally compressed, XLSX or XLS). Prefix with gs:// for Google Storage.")
	flag.StringVar(&opts.dataPath, "data", "", "Plate reader export containing OD600 readings. Prefix with gs:// for Google Storage.")
	flag.StringVar(&configPath, "config", "", "(Optional) JSON or TOML config file. Flags given explicitly override it.")
	flag.StringVar(&opts.statsPath, "stats", "", "(Optional) File for per-group statistics. .tsv is tab-delimited, anything else comma-delimited. Defaults to stdout.")
	flag.StringVar(&opts.plotPath, "plot", "", "(Optional) File for the growth-curve chart (.png or .svg).")
	flag.StringVar(&opts.sheet, "sheet", "", "(Optional) Worksheet to read when the layout is a spreadsheet. Defaults to the first sheet.")
	flag.BoolVar(&opts.summary, "summary", false, "Print a per-group summary table to stderr?")
	flag.StringVar(&mode, "mode", string(config.PlotMean), "Central value to plot: mean or median")
	flag.StringVar(&errorBars, "errorbars", string(config.ErrorBarSD), "Error bars to plot: sd, sem or none")
	flag.BoolVar(&blank, "blank", true, "Subtract the per-condition blank baseline?")
	flag.BoolVar(&clip, "clip", true, "After blank correction, clip negative OD values to zero?")
	flag.StringVar(&groups, "groups", "", "(Optional) Comma-separated groups to plot, in legend order.")
	flag.BoolVar(&wallClock, "wallclock", false, "Interpret the Time column as wall-clock timestamps rather than elapsed time?")
	flag.BoolVar(&strict, "strict", false, "Reject layout sample names without a name-condition-replicate structure?")
	flag.Parse()

	if opts.layoutPath == "" || opts.dataPath == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.ParseFromPath(configPath)
		if err != nil {
			log.Fatalln(err)
		}
	}

	// Only flags the user actually typed replace values from the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mode":
			cfg.PlotMode = config.PlotMode(strings.ToLower(mode))
		case "errorbars":
			cfg.ErrorBars = config.ErrorBarMode(strings.ToLower(errorBars))
		case "blank":
			cfg.ApplyBlankCorrection = blank
		case "clip":
			cfg.ClipNegative = clip
		case "groups":
			cfg.SelectedGroups = splitGroups(groups)
		case "wallclock":
			cfg.WallClock = wallClock
		case "strict":
			cfg.StrictNames = strict
		}
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalln(err)
	}

	var client *storage.Client
	for _, path := range []string{opts.layoutPath, opts.dataPath} {
		if strings.HasPrefix(path, "gs://") {
			var err error
			client, err = storage.NewClient(context.Background())
			if err != nil {
				log.Fatalln(err)
			}

			break
		}
	}

	if err := run(opts, cfg, client); err != nil {
		log.Println(formatHint)
		log.Fatalln(err)
	}
}

func run(opts options, cfg config.Config, client *storage.Client) error {
	layout, err := plate.Open(opts.layoutPath, opts.sheet, client, plate.Options{Strict: cfg.StrictNames})
	if err != nil {
		return fmt.Errorf("reading layout %s: %w", opts.layoutPath, err)
	}
	log.Printf("Loaded %d wells in %d groups from %s\n", layout.Len(), len(layout.Groups()), opts.layoutPath)

	data, err := growthcurve.Open(opts.dataPath, client)
	if err != nil {
		return fmt.Errorf("opening data %s: %w", opts.dataPath, err)
	}
	defer data.Close()

	result, err := pipeline.Run(layout, data, cfg)
	if err != nil {
		return fmt.Errorf("processing %s: %w", opts.dataPath, err)
	}

	log.Println(result.Series)
	if len(result.Series.DroppedColumns) > 0 {
		log.Printf("Ignored columns: %s\n", strings.Join(result.Series.DroppedColumns, ", "))
	}
	for _, w := range result.Warnings {
		log.Println("Warning:", w)
	}
	for _, condition := range sortedConditions(result.Baseline) {
		log.Printf("Blank baseline for condition %s: %.4f\n", condition, result.Baseline[condition])
	}

	if err := writeStats(opts.statsPath, result.Stats); err != nil {
		return err
	}

	selected, warnings := pipeline.SelectGroups(result.Stats, cfg)
	for _, w := range warnings {
		log.Println("Warning:", w)
	}

	if opts.summary {
		fmt.Fprintln(os.Stderr, pipeline.SummaryTable(result.Stats, selected))
	}

	if opts.plotPath != "" {
		if err := writePlot(opts.plotPath, result.Stats, selected, cfg); err != nil {
			return err
		}
	}

	return nil
}

func splitGroups(s string) []string {
	var out []string
	for _, g := range strings.Split(s, ",") {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}

	return out
}
