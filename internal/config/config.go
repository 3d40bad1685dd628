package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/netbuddy/netbuddy/internal/probe"
)

// Duration is a time.Duration that unmarshals from YAML as either a Go
// duration string ("5s", "250ms") or an integer nanosecond count.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("parsing duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("parsing duration: %w", err)
	}
	*d = Duration(n)
	return nil
}

// Std returns the value as a standard time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

type Config struct {
	Targets []string      `yaml:"targets"`
	Probe   ProbeConfig   `yaml:"probe"`
	Measure MeasureConfig `yaml:"measure"`
	Scan    ScanConfig    `yaml:"scan"`
	Watch   WatchConfig   `yaml:"watch"`
	Server  ServerConfig  `yaml:"server"`
}

type ProbeConfig struct {
	Count        int      `yaml:"count"`
	PayloadBytes int      `yaml:"payload_bytes"`
	Timeout      Duration `yaml:"timeout"`
}

type MeasureConfig struct {
	Count      int      `yaml:"count"`
	Interval   Duration `yaml:"interval"`
	Timeout    Duration `yaml:"timeout"`
	Privileged bool     `yaml:"privileged"`
}

type ScanConfig struct {
	Concurrency int      `yaml:"concurrency"`
	Timeout     Duration `yaml:"timeout"`
}

type WatchConfig struct {
	PollInterval      Duration `yaml:"poll_interval"`
	SnapshotInterval  Duration `yaml:"snapshot_interval"`
	BroadcastThrottle Duration `yaml:"broadcast_throttle"`
	FailThreshold     int      `yaml:"fail_threshold"`
}

type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	AuthToken      string   `yaml:"auth_token"`
}

func defaultConfig() *Config {
	return &Config{
		Targets: append([]string(nil), probe.DefaultTargets...),
		Probe: ProbeConfig{
			Count:        probe.DefaultEchoCount,
			PayloadBytes: probe.DefaultPayloadBytes,
			Timeout:      Duration(probe.DefaultProbeTimeout),
		},
		Measure: MeasureConfig{
			Count:    4,
			Interval: Duration(time.Second),
			Timeout:  Duration(10 * time.Second),
		},
		Scan: ScanConfig{
			Concurrency: 32,
			Timeout:     Duration(time.Second),
		},
		Watch: WatchConfig{
			PollInterval:      Duration(30 * time.Second),
			SnapshotInterval:  Duration(5 * time.Second),
			BroadcastThrottle: Duration(100 * time.Millisecond),
			FailThreshold:     3,
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
	}
}

// Load reads a YAML config from path. Defaults are applied first so
// unspecified fields keep sane values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load but a missing file yields the
// default config instead of an error. Other read or parse failures
// still error.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// FailThreshold returns the watch failure threshold, falling back to 3
// if unconfigured or zero.
func (c *Config) FailThreshold() int {
	if t := c.Watch.FailThreshold; t > 0 {
		return t
	}
	return 3
}
