// Package config loads eureka's YAML configuration file. It mirrors
// the teacher's own config.LoadConfig entry point (referenced from
// cmd/main.go) using the teacher's existing gopkg.in/yaml.v3
// dependency, which the original pack retrieval did not include a
// body for.
package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// FingerprintParams are the nine knobs from spec.md §6 that, if
// changed against a non-empty catalog, must trigger ConfigMismatch.
// The field order here is also the canonical order used when
// persisting/comparing against catalog metadata.
type FingerprintParams struct {
	SampleRateDefault int     `yaml:"sample_rate_default"`
	NFFT              int     `yaml:"nfft"`
	OverlapRatio      float64 `yaml:"overlap_ratio"`
	AmpMin            float64 `yaml:"amp_min"`
	PeakNeighborhood  int     `yaml:"peak_neighborhood"`
	FanValue          int     `yaml:"fan_value"`
	MinDelta          int     `yaml:"min_delta"`
	MaxDelta          int     `yaml:"max_delta"`
	HashHexPrefix     int     `yaml:"hash_hex_prefix"`
}

// Database selects and configures a catalog backend.
type Database struct {
	Type string `yaml:"type"` // "postgres" or "mysql"
	DSN  string `yaml:"dsn"`
}

// Config is the full set of recognized knobs (spec.md §6).
type Config struct {
	FingerprintParams `yaml:",inline"`
	IngestBatch       int      `yaml:"ingest_batch"`
	WorkerCount       int      `yaml:"worker_count"`
	Database          Database `yaml:"database"`
}

// Default returns the spec-mandated defaults for every knob.
func Default() Config {
	return Config{
		FingerprintParams: FingerprintParams{
			SampleRateDefault: 44100,
			NFFT:              4096,
			OverlapRatio:      0.5,
			AmpMin:            10,
			PeakNeighborhood:  20,
			FanValue:          15,
			MinDelta:          0,
			MaxDelta:          200,
			HashHexPrefix:     20,
		},
		IngestBatch: 1000,
		WorkerCount: 0, // 0 means "use runtime.NumCPU()"
		Database: Database{
			Type: "postgres",
		},
	}
}

// Load reads a YAML file at path, overlaying it on Default(). A
// missing file is not an error; it simply yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// AsMetadata flattens the format-affecting knobs into string key/value
// pairs for persistence in the catalog's metadata store, one key per
// knob so ConfigMismatch can report exactly which knob moved. The map
// itself is unordered; catalog.EnsureFormatParams fixes the order in
// which keys are compared.
func (p FingerprintParams) AsMetadata() map[string]string {
	return map[string]string{
		"sample_rate_default": strconv.Itoa(p.SampleRateDefault),
		"nfft":                strconv.Itoa(p.NFFT),
		"overlap_ratio":       strconv.FormatFloat(p.OverlapRatio, 'f', -1, 64),
		"amp_min":             strconv.FormatFloat(p.AmpMin, 'f', -1, 64),
		"peak_neighborhood":   strconv.Itoa(p.PeakNeighborhood),
		"fan_value":           strconv.Itoa(p.FanValue),
		"min_delta":           strconv.Itoa(p.MinDelta),
		"max_delta":           strconv.Itoa(p.MaxDelta),
		"hash_hex_prefix":     strconv.Itoa(p.HashHexPrefix),
	}
}
