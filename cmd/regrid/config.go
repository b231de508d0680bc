package main

import (
	"gopkg.in/gcfg.v1"

	"github.com/twpayne/go-regrid"
)

// A Config is the configuration read from a config file, for example:
//
//	[resize]
//	algorithm = bilinear
//	parallelism = 4
//
//	[tiles]
//	cachesize = 16
//
//	[metrics]
//	textfile = /var/lib/node_exporter/regrid.prom
type Config struct {
	Resize struct {
		Algorithm   string
		Parallelism int
	}
	Tiles struct {
		CacheSize int
	}
	Metrics struct {
		Textfile string
	}
}

func defaultConfig() *Config {
	config := &Config{}
	config.Resize.Algorithm = string(regrid.AlgorithmBilinear)
	config.Resize.Parallelism = 1
	config.Tiles.CacheSize = 32
	return config
}

// loadConfig returns the default config overridden by the values in filename,
// if filename is not empty.
func loadConfig(filename string) (*Config, error) {
	config := defaultConfig()
	if filename == "" {
		return config, nil
	}
	if err := gcfg.ReadFileInto(config, filename); err != nil {
		return nil, err
	}
	return config, nil
}
