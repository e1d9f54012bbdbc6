package treetime

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//TimeConf carries the numerical constants used throughout the time inference
//engine. A value is built once (usually from DefaultTimeConf) and threaded
//through the entry points unchanged.
type TimeConf struct {
	MinT         float64 `yaml:"min_t"`          // lower clamp for all time values
	MaxT         float64 `yaml:"max_t"`          // upper clamp for all time values
	MinLog       float64 `yaml:"min_log"`        // log-probability sentinel magnitude (negative)
	GridSize     int     `yaml:"grid_size"`      // number of points in a node position grid
	BranchGrid   int     `yaml:"branch_grid"`    // number of points in a branch length grid
	VarianceFrac float64 `yaml:"variance_frac"`  // fraction of tree depth used as grid scale
	ZeroBranch   float64 `yaml:"zero_branch"`    // below this a branch length counts as zero
	ProbFloor    float64 `yaml:"prob_floor"`     // additive floor before taking logarithms
	DeltaWidth   float64 `yaml:"delta_width"`    // half width of a date constraint spike
	UnionGridMax int     `yaml:"union_grid_max"` // grids smaller than this switch combining to grid union
	Workers      int     `yaml:"workers"`        // goroutines used to convolve sibling messages
}

//DefaultTimeConf will return the standard constants
func DefaultTimeConf() TimeConf {
	return TimeConf{
		MinT:         -1e5,
		MaxT:         1e5,
		MinLog:       -1000,
		GridSize:     100,
		BranchGrid:   25,
		VarianceFrac: 0.25,
		ZeroBranch:   1e-5,
		ProbFloor:    1e-100,
		DeltaWidth:   1e-10,
		UnionGridMax: 10,
		Workers:      1,
	}
}

//LoadTimeConf will read a YAML file and overlay it on the default constants
func LoadTimeConf(path string) (TimeConf, error) {
	conf := DefaultTimeConf()
	b, err := os.ReadFile(path)
	if err != nil {
		return conf, fmt.Errorf("conf: %w", err)
	}
	if err := yaml.Unmarshal(b, &conf); err != nil {
		return conf, fmt.Errorf("conf: parsing %s: %w", path, err)
	}
	if conf.GridSize < 6 {
		return conf, fmt.Errorf("conf: grid_size %d is too small", conf.GridSize)
	}
	if conf.MaxT <= conf.MinT {
		return conf, fmt.Errorf("conf: max_t must exceed min_t")
	}
	return conf, nil
}
