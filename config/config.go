package config

import (
	"encoding/json"
	"os"
)

// currentVersion tags the on-disk schema. Version 0 files predate the
// version field and use the old selection_* keys.
const currentVersion = 1

// Config holds runtime configuration for scroll detection and app behavior.
// Fields may be loaded from a JSON file and overridden by command-line flags.
type Config struct {
	Version int  `json:"version"`
	Debug   bool `json:"debug"`

	// Delta detector parameters
	StripHeight       int     `json:"strip_height"`
	MinDelta          int     `json:"min_delta"`
	SearchCeiling     int     `json:"search_ceiling"`
	CoarseStep        int     `json:"coarse_step"`
	RefineRadius      int     `json:"refine_radius"`
	SampleStride      int     `json:"sample_stride"`
	MinFrameHeight    int     `json:"min_frame_height"`
	NearIdenticalDiff float64 `json:"near_identical_diff"`
	MaxMatchDiff      float64 `json:"max_match_diff"`
	VerifyMaxDiff     float64 `json:"verify_max_diff"`
	MinImprovement    float64 `json:"min_improvement"`

	// Session behavior
	HashGate         bool `json:"hash_gate"`
	PreviewMaxHeight int  `json:"preview_max_height"`
	PreviewQuality   int  `json:"preview_quality"`

	// Scroll trigger behavior
	DebounceMillis  int     `json:"debounce_millis"`
	ScrollThreshold float64 `json:"scroll_threshold"`

	// Capture region persistence
	RegionX int `json:"region_x"`
	RegionY int `json:"region_y"`
	RegionW int `json:"region_w"`
	RegionH int `json:"region_h"`
}

// DefaultConfig returns a Config populated with standard defaults. The
// detector values are empirically tuned starting points, not derived optima.
func DefaultConfig() *Config {
	return &Config{
		Version:           currentVersion,
		Debug:             false,
		StripHeight:       40,
		MinDelta:          10,
		SearchCeiling:     300,
		CoarseStep:        8,
		RefineRadius:      8,
		SampleStride:      2,
		MinFrameHeight:    40,
		NearIdenticalDiff: 5.0,
		MaxMatchDiff:      30.0,
		VerifyMaxDiff:     40.0,
		MinImprovement:    2.0,
		HashGate:          true,
		PreviewMaxHeight:  600,
		PreviewQuality:    90,
		DebounceMillis:    80,
		ScrollThreshold:   1.0,
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	if c.StripHeight <= 0 {
		c.StripHeight = 40
	}
	if c.MinDelta <= 0 {
		c.MinDelta = 10
	}
	if c.SearchCeiling < c.MinDelta {
		c.SearchCeiling = 300
	}
	if c.CoarseStep <= 0 {
		c.CoarseStep = 8
	}
	if c.RefineRadius <= 0 {
		c.RefineRadius = 8
	}
	if c.SampleStride <= 0 {
		c.SampleStride = 2
	}
	if c.MinFrameHeight <= 0 {
		c.MinFrameHeight = 40
	}
	if c.NearIdenticalDiff <= 0 {
		c.NearIdenticalDiff = 5.0
	}
	if c.MaxMatchDiff <= 0 {
		c.MaxMatchDiff = 30.0
	}
	if c.VerifyMaxDiff < c.MaxMatchDiff {
		c.VerifyMaxDiff = 40.0
	}
	if c.MinImprovement <= 1 {
		c.MinImprovement = 2.0
	}
	if c.PreviewMaxHeight <= 0 {
		c.PreviewMaxHeight = 600
	}
	if c.PreviewQuality <= 0 || c.PreviewQuality > 100 {
		c.PreviewQuality = 90
	}
	if c.DebounceMillis <= 0 {
		c.DebounceMillis = 80
	}
	if c.ScrollThreshold <= 0 {
		c.ScrollThreshold = 1.0
	}
	c.Version = currentVersion
	return nil
}

// configV0 is the legacy schema without a version field. Only the fields
// that carry over are declared; everything else takes current defaults.
type configV0 struct {
	Debug      bool `json:"debug"`
	SelectionX int  `json:"selection_x"`
	SelectionY int  `json:"selection_y"`
	SelectionW int  `json:"selection_w"`
	SelectionH int  `json:"selection_h"`
}

// migrateV0 lifts a legacy file into the current schema.
func migrateV0(old configV0) *Config {
	cfg := DefaultConfig()
	cfg.Debug = old.Debug
	cfg.RegionX = old.SelectionX
	cfg.RegionY = old.SelectionY
	cfg.RegionW = old.SelectionW
	cfg.RegionH = old.SelectionH
	return cfg
}

// Load attempts to read configuration from the given JSON file path. If the
// file does not exist it returns DefaultConfig(). Version 0 files are
// migrated on load. On JSON error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	var probe struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return cfg, err
	}
	if probe.Version == 0 {
		var old configV0
		if err := json.Unmarshal(data, &old); err != nil {
			return cfg, err
		}
		cfg = migrateV0(old)
		_ = cfg.Validate()
		return cfg, nil
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return DefaultConfig(), err
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
