package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/anrid/risk-dashboard/pkg/chart"
	"github.com/anrid/risk-dashboard/pkg/dashboard"
	"github.com/anrid/risk-dashboard/pkg/geo"
	"github.com/anrid/risk-dashboard/pkg/stats"
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/plot/vg"
)

type showOptions struct {
	configPath string
	dump       bool
	outDir     string
	sel        dashboard.Selection
}

func main() {
	if err := newCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	v := dashboard.NewViper()
	var o showOptions

	cmd := &cobra.Command{
		Use:           "show",
		Short:         "Print the chart series and the map values for one selection",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := dashboard.LoadConfig(v, o.configPath)
			if err != nil {
				return err
			}
			return show(cmd.Context(), cfg, o)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&o.configPath, "config", "c", "", "YAML config file")
	flags.String("dataset", "", "dataset URL or file (JSON, CSV, XLSX or XLS)")
	flags.String("boundaries", "", "GeoJSON boundary URL or file")
	flags.String("log-level", "", "debug, info, warn or error")
	flags.StringVar(&o.sel.Year, "year", "", "year (default: first in the dataset)")
	flags.StringVar(&o.sel.Country, "country", "", "country (default: first in the dataset)")
	flags.StringVar(&o.sel.RiskFactor, "risk-factor", "", "risk factor (default: first column)")
	flags.BoolVar(&o.dump, "dump", false, "dump the projections with spew")
	flags.StringVarP(&o.outDir, "out", "o", "", "write line.png, bar.png and map.png into this directory")

	for key, name := range map[string]string{
		"dataset.url":    "dataset",
		"boundaries.url": "boundaries",
		"log.level":      "log-level",
	} {
		_ = v.BindPFlag(key, flags.Lookup(name))
	}
	// Terminal output is for people; keep the log readable.
	v.SetDefault("log.format", "console")
	v.SetDefault("log.level", "warn")
	return cmd
}

func show(ctx context.Context, cfg *dashboard.Config, o showOptions) error {
	log, err := dashboard.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	d := dashboard.New(log, nil, dashboard.Options{
		Palette:    cfg.Map.Colors,
		ChartColor: cfg.Chart.Color,
	})

	ctx, cancel := context.WithTimeout(ctx, cfg.Fetch.Timeout)
	defer cancel()

	loadErr := d.Load(ctx, stats.NewFetcher(cfg.Fetch.Timeout, log.Named("fetch")), cfg.Dataset.URL, cfg.Boundaries.URL)
	if !d.Controller.State().DataReady {
		return fmt.Errorf("no dataset: %w", loadErr)
	}
	if loadErr != nil {
		log.Warn("map unavailable", zap.Error(loadErr))
	}

	if err := d.Controller.Select(func(s *dashboard.Selection) {
		if o.sel.Year != "" {
			s.Year = o.sel.Year
		}
		if o.sel.Country != "" {
			s.Country = o.sel.Country
		}
		if o.sel.RiskFactor != "" {
			s.RiskFactor = o.sel.RiskFactor
		}
	}); err != nil {
		return err
	}

	st := d.Controller.State()
	series, _ := d.Line.Series()
	layer, _ := d.Map.Layer()

	if o.dump {
		spew.Dump(st, series, layer)
	}

	p := message.NewPrinter(language.English)

	p.Printf("\nYears        : %d (%s - %s)\n", len(st.Years), st.Years[0], st.Years[len(st.Years)-1])
	p.Printf("Countries    : %d\n", len(st.Countries))
	p.Printf("Risk factors : %d\n\n", len(st.RiskFactors))

	if st.ChartError != "" {
		p.Printf("Chart: %s\n\n", st.ChartError)
	} else if series != nil {
		p.Printf("%s, %s:\n\n", series.Country, series.Year)
		for i, label := range series.Labels {
			p.Printf("%02d. %-40s  %15s\n", i+1, label, number(p, series.Values[i]))
		}
		p.Println()
	}

	if st.MapError != "" {
		p.Printf("Map: %s\n\n", st.MapError)
	} else if layer != nil {
		p.Printf("%s by country, %s (max %s):\n\n", layer.RiskFactor, layer.Year, number(p, layer.MaxValue))
		for i, r := range layer.Regions {
			match := ""
			if !r.Matched {
				match = "(no data)"
			}
			p.Printf("%03d. %-40s  %15s  %s  %s\n", i+1, r.Name, number(p, r.Value), r.FillColor, match)
		}
		p.Println()
	}

	if o.outDir != "" {
		return writeImages(o.outDir, series, layer)
	}
	return nil
}

func number(p *message.Printer, v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return stats.FormatFloat(v)
	}
	return p.Sprintf("%.2f", v)
}

func writeImages(dir string, series *stats.ChartSeries, layer *geo.RegionLayer) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	write := func(name string, render func(f *os.File) error) error {
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		if err := render(f); err != nil {
			f.Close()
			return fmt.Errorf("%s: %w", name, err)
		}
		fmt.Println("Wrote", f.Name())
		return f.Close()
	}

	if series != nil {
		if err := write("line.png", func(f *os.File) error { return chart.RenderLine(series, f) }); err != nil {
			return err
		}
		if err := write("bar.png", func(f *os.File) error { return chart.RenderBar(series, f) }); err != nil {
			return err
		}
	}
	if layer != nil {
		return write("map.png", func(f *os.File) error { return geo.RenderPNG(layer, f, 10*vg.Inch, 5*vg.Inch) })
	}
	return nil
}
