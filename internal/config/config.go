package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Source Source    `yaml:"source"`
	Ingest Ingest    `yaml:"ingest"`
	UI     UI        `yaml:"ui"`
	Web    Web       `yaml:"web"`
	Sim    SimConfig `yaml:"sim"`
}

type Source struct {
	// Kind selects the transport: "tcp" or "serial".
	Kind string `yaml:"kind"`

	// Addr is host:port for Kind=="tcp". Falls back to $NMEACLI_ADDR.
	Addr string `yaml:"addr"`

	// Device and Baud configure Kind=="serial". Device may be empty to
	// auto-detect.
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`

	DialTimeout time.Duration `yaml:"dial_timeout"`
}

type Ingest struct {
	MaxFrameLen int `yaml:"max_frame_len"`
}

type UI struct {
	Refresh time.Duration `yaml:"refresh"`
	History int           `yaml:"history"`
}

type Web struct {
	Enable bool   `yaml:"enable"`
	Listen string `yaml:"listen"`
}

type SimConfig struct {
	Enable       bool          `yaml:"enable"`
	Listen       string        `yaml:"listen"`
	UDPDest      string        `yaml:"udp_dest"`
	Interval     time.Duration `yaml:"interval"`
	CenterLatDeg float64       `yaml:"center_lat_deg"`
	CenterLonDeg float64       `yaml:"center_lon_deg"`
	AltM         float64       `yaml:"alt_m"`
	GroundKt     float64       `yaml:"ground_kt"`
	RadiusNm     float64       `yaml:"radius_nm"`
	Period       time.Duration `yaml:"period"`
}

// Load reads the YAML config, applies defaults, and validates. A missing
// file is not an error: everything has a usable default when the simulator
// or $NMEACLI_ADDR provides the stream.
func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Defaults only.
	default:
		return Config{}, err
	}

	if cfg.Source.Kind == "" {
		cfg.Source.Kind = "tcp"
	}
	if cfg.Source.Kind != "tcp" && cfg.Source.Kind != "serial" {
		return Config{}, fmt.Errorf("source.kind must be tcp or serial, got %q", cfg.Source.Kind)
	}
	if cfg.Source.Addr == "" {
		cfg.Source.Addr = os.Getenv("NMEACLI_ADDR")
	}
	if cfg.Source.Baud == 0 {
		cfg.Source.Baud = 9600
	}
	if cfg.Source.DialTimeout <= 0 {
		cfg.Source.DialTimeout = 2 * time.Second
	}

	if cfg.Ingest.MaxFrameLen <= 0 {
		cfg.Ingest.MaxFrameLen = 1024
	}

	if cfg.UI.Refresh <= 0 {
		cfg.UI.Refresh = 500 * time.Millisecond
	}
	if cfg.UI.History <= 0 {
		cfg.UI.History = 100
	}

	if cfg.Web.Enable && cfg.Web.Listen == "" {
		cfg.Web.Listen = ":8080"
	}

	if cfg.Sim.Enable {
		if cfg.Sim.Listen == "" {
			cfg.Sim.Listen = "127.0.0.1:10110"
		}
		if cfg.Sim.Interval <= 0 {
			cfg.Sim.Interval = time.Second
		}
		if cfg.Sim.Period <= 0 {
			cfg.Sim.Period = 120 * time.Second
		}
		if cfg.Sim.RadiusNm <= 0 {
			cfg.Sim.RadiusNm = 0.5
		}
	}

	if cfg.Source.Kind == "tcp" && cfg.Source.Addr == "" && !cfg.Sim.Enable {
		return Config{}, fmt.Errorf("source.addr is required for tcp (or set NMEACLI_ADDR, or enable sim)")
	}

	return cfg, nil
}
