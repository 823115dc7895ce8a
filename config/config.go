// Package config holds the settings of one growth-curve run. A Config is
// built once, then passed by value to every stage of the pipeline.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/carbocation/growthcurve"
	"github.com/carbocation/pfx"
	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

type PlotMode string

const (
	PlotMean   PlotMode = "mean"
	PlotMedian PlotMode = "median"
)

type ErrorBarMode string

const (
	ErrorBarSD   ErrorBarMode = "sd"
	ErrorBarSEM  ErrorBarMode = "sem"
	ErrorBarNone ErrorBarMode = "none"
)

// DefaultBlankTimeTolerance is how far, in hours, a blank read may sit from
// the first timepoint and still count toward the baseline (3.6 ms).
const DefaultBlankTimeTolerance = 1e-6

type Config struct {
	ConfigPath string `json:"-" toml:"-"`

	ApplyBlankCorrection bool    `json:"apply_blank_correction" toml:"apply_blank_correction"`
	ClipNegative         bool    `json:"clip_negative" toml:"clip_negative"`
	BlankTimeTolerance   float64 `json:"blank_time_tolerance" toml:"blank_time_tolerance" validate:"gte=0"`

	// SampleStd selects the n-1 estimator. The default is the population
	// standard deviation.
	SampleStd bool `json:"sample_std" toml:"sample_std"`

	SelectedGroups []string          `json:"selected_groups" toml:"selected_groups" validate:"dive,required"`
	PlotMode       PlotMode          `json:"plot_mode" toml:"plot_mode" validate:"oneof=mean median"`
	ErrorBars      ErrorBarMode      `json:"error_bars" toml:"error_bars" validate:"oneof=sd sem none"`
	Colors         map[string]string `json:"colors" toml:"colors" validate:"dive,keys,required,endkeys,hexcolor"`

	StrictNames bool `json:"strict_names" toml:"strict_names"`
	WallClock   bool `json:"wall_clock" toml:"wall_clock"`
}

// Default returns the settings used when no config file is given.
func Default() Config {
	return Config{
		ApplyBlankCorrection: true,
		ClipNegative:         true,
		BlankTimeTolerance:   DefaultBlankTimeTolerance,
		PlotMode:             PlotMean,
		ErrorBars:            ErrorBarSD,
	}
}

var validate = validator.New()

// Validate checks enumerations, ranges and colour formats.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return nil
}

// IsSelected reports whether a group was explicitly requested.
func (c Config) IsSelected(group string) bool {
	for _, g := range c.SelectedGroups {
		if g == group {
			return true
		}
	}

	return false
}

// ParseFromPath loads a config file on top of Default. Files ending in .toml
// are read as TOML, everything else as JSON. Keys absent from the file keep
// their default value.
func ParseFromPath(path string) (Config, error) {
	out := Default()
	out.ConfigPath = growthcurve.ExpandHome(path)

	raw, err := os.ReadFile(out.ConfigPath)
	if err != nil {
		return out, pfx.Err(err)
	}

	if strings.EqualFold(filepath.Ext(out.ConfigPath), ".toml") {
		if err := toml.Unmarshal(raw, &out); err != nil {
			return out, pfx.Err(err)
		}
	} else {
		if err := json.Unmarshal(raw, &out); err != nil {
			if e, ok := err.(*json.SyntaxError); ok {
				return out, pfx.Err(fmt.Errorf("syntax error at byte offset %d: %w", e.Offset, err))
			}
			return out, pfx.Err(err)
		}
	}

	out.PlotMode = PlotMode(strings.ToLower(string(out.PlotMode)))
	out.ErrorBars = ErrorBarMode(strings.ToLower(string(out.ErrorBars)))

	// Internally, go uses lower case for all colors, so we will too (while
	// permitting the user to use mixed case)
	for k, v := range out.Colors {
		out.Colors[k] = strings.ToLower(v)
	}

	return out, out.Validate()
}
