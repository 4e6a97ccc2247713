package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"titanic/internal/logging"
)

const (
	SupportedSchema = "v1"

	envPrefix = "TITANIC__"
	envDelim  = "__"
)

type ForestConfig struct {
	Trees    int `koanf:"trees" yaml:"trees"`
	Features int `koanf:"features" yaml:"features"` // per tree; 0 = floor(sqrt(columns))
}

type SVMConfig struct {
	C         float64 `koanf:"c" yaml:"c"`
	Gamma     float64 `koanf:"gamma" yaml:"gamma"` // 0 = 1/(features*Var(X))
	Tolerance float64 `koanf:"tolerance" yaml:"tolerance"`
	MaxPasses int     `koanf:"max_passes" yaml:"max_passes"`
}

type KafkaConfig struct {
	Brokers      []string `koanf:"brokers" yaml:"brokers"`
	Topic        string   `koanf:"topic" yaml:"topic"`
	RequiredAcks int16    `koanf:"required_acks" yaml:"required_acks"` // 0,1,-1
	Version      string   `koanf:"version" yaml:"version"`
}

type Config struct {
	SchemaVersion string `koanf:"schema_version" yaml:"schema_version"`

	Train     string `koanf:"train" yaml:"train"`
	Test      string `koanf:"test" yaml:"test"`
	OutDir    string `koanf:"out_dir" yaml:"out_dir"`
	Predictor string `koanf:"predictor" yaml:"predictor"` // rf|svm
	Seed      int64  `koanf:"seed" yaml:"seed"`

	// Ordered list of prediction sinks; "csv" writes the submission file.
	Sinks []string `koanf:"sinks" yaml:"sinks"`

	Forest ForestConfig `koanf:"forest" yaml:"forest"`
	SVM    SVMConfig    `koanf:"svm" yaml:"svm"`
	Kafka  KafkaConfig  `koanf:"kafka" yaml:"kafka"`

	MetricsFile string          `koanf:"metrics_file" yaml:"metrics_file"`
	Ledger      string          `koanf:"ledger" yaml:"ledger"`
	Log         logging.Options `koanf:"log" yaml:"log"`
}

// keys resolved against the config file's directory when relative
var pathKeys = []string{"train", "test", "out_dir", "metrics_file", "ledger"}

// Load merges YAML (if present) with env-vars
// (prefix `TITANIC__`, delimiter `__`) and fills defaults.
func Load(path string) (Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
		dir := filepath.Dir(path)
		for _, key := range pathKeys {
			if v := k.String(key); v != "" && !filepath.IsAbs(v) {
				_ = k.Set(key, filepath.Join(dir, v))
			}
		}
	}
	// schema version check (only when YAML is present)
	sv := k.String("schema_version")
	if sv != "" && sv != SupportedSchema {
		return Config{}, fmt.Errorf("config schema_version %q not supported (want %q)", sv, SupportedSchema)
	}

	if err := k.Load(env.Provider(envPrefix, envDelim, envKey), nil); err != nil {
		return Config{}, fmt.Errorf("config env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("config unmarshal: %w", err)
	}
	applyDefaults(&cfg, k.Exists)
	return cfg, nil
}

// TITANIC__FOREST__TREES -> forest__trees, unflattened on "__" by the provider.
func envKey(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, envPrefix))
}

// Write dumps the effective configuration as YAML.
func Write(w io.Writer, cfg Config) error {
	enc := yamlv3.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	var c Config
	applyDefaults(&c, func(string) bool { return false })
	return c
}

// applyDefaults fills zero values; keys whose zero value is meaningful are
// only defaulted when isSet reports them absent.
func applyDefaults(c *Config, isSet func(key string) bool) {
	if c.SchemaVersion == "" {
		c.SchemaVersion = SupportedSchema
	}
	if c.Train == "" {
		c.Train = filepath.Join("data", "train.csv")
	}
	if c.Test == "" {
		c.Test = filepath.Join("data", "test.csv")
	}
	if c.OutDir == "" {
		c.OutDir = "submissions"
	}
	if len(c.Sinks) == 0 {
		c.Sinks = []string{"csv"}
	}
	if c.Forest.Trees == 0 {
		c.Forest.Trees = 100
	}
	if c.SVM.C == 0 {
		c.SVM.C = 1.0
	}
	if c.SVM.Tolerance == 0 {
		c.SVM.Tolerance = 1e-3
	}
	if c.SVM.MaxPasses == 0 {
		c.SVM.MaxPasses = 5
	}
	if c.Kafka.Version == "" {
		c.Kafka.Version = "2.1.0"
	}
	if !isSet("kafka.required_acks") {
		c.Kafka.RequiredAcks = 1
	}
}
