package config

import (
	"log"
	"os"

	"github.com/goccy/go-yaml"
)

// Config carries operational tuning loaded from config.yaml. Secrets and
// addresses stay in the environment (DATABASE_URL, PORT); this file only
// adjusts sweep cadence, geofence defaults and the CORS allow-list.
type Config struct {
	SweepIntervalMinutes int      `yaml:"sweep_interval_minutes"`
	GraceMinutes         int      `yaml:"grace_minutes"`
	DefaultImportRadius  float64  `yaml:"default_import_radius"`
	AllowedOrigins       []string `yaml:"allowed_origins"`
}

var loaded Config

// Load reads config.yaml from the working directory. A missing file is fine;
// defaults apply. A malformed file is fatal since silently ignoring it would
// run the sweeper with the wrong cadence.
func Load() {
	loaded = Config{
		SweepIntervalMinutes: 5,
		GraceMinutes:         30,
		DefaultImportRadius:  100,
	}

	data, err := os.ReadFile("config.yaml")
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatal("Failed to read config.yaml: ", err)
		}
		return
	}

	if err := yaml.Unmarshal(data, &loaded); err != nil {
		log.Fatal("Failed to parse config.yaml: ", err)
	}

	if loaded.SweepIntervalMinutes <= 0 {
		loaded.SweepIntervalMinutes = 5
	}
	if loaded.GraceMinutes <= 0 {
		loaded.GraceMinutes = 30
	}
	if loaded.DefaultImportRadius <= 0 {
		loaded.DefaultImportRadius = 100
	}
}

func Get() Config {
	return loaded
}
