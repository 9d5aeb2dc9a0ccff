package planner

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fleetops/rotaplan/core/model"
)

// WeekPrice is one entry of a week-indexed purchase price schedule.
type WeekPrice struct {
	Week  int     `json:"week" yaml:"week"`
	Price float64 `json:"price" yaml:"price"`
}

// Config defines planning parameters loaded from configuration. Fleet data,
// rates and base prices come from the ingested tables; everything here is an
// operational choice.
type Config struct {
	HorizonWeeks     int            `json:"horizon_weeks" yaml:"horizon_weeks"`
	ExtraEngines     int            `json:"extra_engines" yaml:"extra_engines"`
	MaintenanceWeeks int            `json:"maintenance_weeks" yaml:"maintenance_weeks"`
	InitialStock     float64        `json:"initial_stock" yaml:"initial_stock"`
	BayCapacity      int            `json:"bay_capacity" yaml:"bay_capacity"`
	CostMode         model.CostMode `json:"cost_mode" yaml:"cost_mode"`
	// BuyCostSchedule is required when CostMode is "schedule" and must cover
	// every week of the horizon.
	BuyCostSchedule []WeekPrice `json:"buy_cost_schedule" yaml:"buy_cost_schedule"`
}

// SetDefaults applies the standard planning parameters.
func (c *Config) SetDefaults() {
	if c.HorizonWeeks == 0 {
		c.HorizonWeeks = 54
	}
	if c.ExtraEngines == 0 {
		c.ExtraEngines = 3
	}
	if c.MaintenanceWeeks == 0 {
		c.MaintenanceWeeks = 18
	}
	if c.BayCapacity == 0 {
		c.BayCapacity = 5
	}
	// CostMode deliberately has no default: constant and scheduled pricing
	// produce materially different optimal schedules, so the choice must be
	// stated in configuration.
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.HorizonWeeks < 1 {
		return fmt.Errorf("horizon_weeks must be positive, got %d", c.HorizonWeeks)
	}
	if c.ExtraEngines < 0 {
		return fmt.Errorf("extra_engines must not be negative, got %d", c.ExtraEngines)
	}
	if c.MaintenanceWeeks < 1 {
		return fmt.Errorf("maintenance_weeks must be positive, got %d", c.MaintenanceWeeks)
	}
	if c.BayCapacity < 0 {
		return fmt.Errorf("bay_capacity must not be negative, got %d", c.BayCapacity)
	}
	if c.InitialStock < 0 {
		return fmt.Errorf("initial_stock must not be negative, got %v", c.InitialStock)
	}
	switch c.CostMode {
	case model.CostModeConstant:
	case model.CostModeSchedule:
		sched := c.ScheduleMap()
		for t := 1; t <= c.HorizonWeeks; t++ {
			if _, ok := sched[t]; !ok {
				return fmt.Errorf("buy_cost_schedule is missing week %d", t)
			}
		}
	default:
		return fmt.Errorf("cost_mode must be %q or %q, got %q",
			model.CostModeConstant, model.CostModeSchedule, c.CostMode)
	}
	return nil
}

// ScheduleMap returns the purchase price schedule keyed by week.
func (c Config) ScheduleMap() map[int]float64 {
	if len(c.BuyCostSchedule) == 0 {
		return nil
	}
	m := make(map[int]float64, len(c.BuyCostSchedule))
	for _, wp := range c.BuyCostSchedule {
		m[wp.Week] = wp.Price
	}
	return m
}

// LoadConfig loads a Config from a JSON or YAML file.
func LoadConfig(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return DecodeConfig(file, format)
}

// DecodeConfig reads from r to decode a Config.
func DecodeConfig(r io.Reader, format string) (Config, error) {
	var cfg Config
	switch strings.ToLower(format) {
	case "yaml", "yml":
		dec := yaml.NewDecoder(r)
		if err := dec.Decode(&cfg); err != nil {
			return cfg, err
		}
	case "json":
		dec := json.NewDecoder(r)
		if err := dec.Decode(&cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config format: %s", format)
	}
	return cfg, nil
}
