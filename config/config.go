package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DebugMode bool `yaml:"debug"`
	Logging   struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"logging"`
	OKX struct {
		RestURL string `yaml:"rest_url"`
		WSURL   string `yaml:"ws_url"`
		Symbol  string `yaml:"symbol"`
		// Depth requested from the REST snapshot endpoint, 0 means exchange default.
		SnapshotDepth int `yaml:"snapshot_depth"`
		// Number of live updates the demo prints before exiting.
		UpdateCount   int `yaml:"update_count"`
		QueueCapacity int `yaml:"queue_capacity"`
		MaxResyncs    int `yaml:"max_resyncs"`
	} `yaml:"okx"`
	Server struct {
		GRPCAddr    string   `yaml:"grpc_addr"`
		MetricsAddr string   `yaml:"metrics_addr"`
		Symbols     []string `yaml:"symbols"`
	} `yaml:"server"`
}

func defaultConfig() Config {
	var c Config
	c.Logging.Level = "info"
	c.OKX.RestURL = "https://www.okx.com"
	c.OKX.WSURL = "wss://ws.okx.com:8443/ws/v5/public"
	c.OKX.Symbol = "BTC-USDT"
	c.OKX.SnapshotDepth = 0
	c.OKX.UpdateCount = 10
	c.OKX.QueueCapacity = 100
	c.OKX.MaxResyncs = 10
	c.Server.GRPCAddr = ""
	c.Server.MetricsAddr = ""
	return c
}

// Load reads defaults, then .env (if present), then the YAML file named by
// OKXBOOK_CONFIG, then environment overrides.
func Load() (Config, error) {
	_ = godotenv.Load()

	c := defaultConfig()
	if path := os.Getenv("OKXBOOK_CONFIG"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return c, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if v := os.Getenv("OKX_REST_URL"); v != "" {
		c.OKX.RestURL = v
	}
	if v := os.Getenv("OKX_WS_URL"); v != "" {
		c.OKX.WSURL = v
	}
	if v := os.Getenv("OKX_SYMBOL"); v != "" {
		c.OKX.Symbol = v
	}
	if v := os.Getenv("OKX_UPDATE_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return c, fmt.Errorf("invalid OKX_UPDATE_COUNT %q", v)
		}
		c.OKX.UpdateCount = n
	}
	if v := os.Getenv("OKXBOOK_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("OKXBOOK_LOG_PRETTY"); v == "1" || v == "true" {
		c.Logging.Pretty = true
	}
	if v := os.Getenv("OKXBOOK_GRPC_ADDR"); v != "" {
		c.Server.GRPCAddr = v
	}
	if v := os.Getenv("OKXBOOK_METRICS_ADDR"); v != "" {
		c.Server.MetricsAddr = v
	}
	if v := os.Getenv("OKXBOOK_DEBUG"); v == "1" || v == "true" {
		c.DebugMode = true
	}

	if len(c.Server.Symbols) == 0 {
		c.Server.Symbols = []string{c.OKX.Symbol}
	}

	return c, nil
}
