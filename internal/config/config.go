package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "taskdeck.yml"

type Config struct {
	Version   string    `yaml:"version" json:"version"`
	Storage   Storage   `yaml:"storage" json:"storage"`
	Server    Server    `yaml:"server" json:"server"`
	Reminders Reminders `yaml:"reminders" json:"reminders"`
	Lists     Lists     `yaml:"lists" json:"lists"`
}

type Storage struct {
	// Backend is one of "file", "sqlite", "postgres", "memory".
	Backend     string        `yaml:"backend" json:"backend"`
	DataDir     string        `yaml:"data_dir" json:"data_dir"`
	SQLitePath  string        `yaml:"sqlite_path" json:"sqlite_path"`
	PostgresURL string        `yaml:"postgres_url" json:"-"`
	KeyPrefix   string        `yaml:"key_prefix" json:"key_prefix"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
}

type Server struct {
	Addr string `yaml:"addr" json:"addr"`
}

type Reminders struct {
	Interval time.Duration `yaml:"interval" json:"interval"`
	Window   time.Duration `yaml:"window" json:"window"`
}

type Lists struct {
	DefaultName  string `yaml:"default_name" json:"default_name"`
	DefaultColor string `yaml:"default_color" json:"default_color"`
	NewListColor string `yaml:"new_list_color" json:"new_list_color"`
}

func (s *Storage) ApplyDefaults() {
	if s.Backend == "" {
		s.Backend = "file"
	}
	if s.DataDir == "" {
		s.DataDir = "data"
	}
	if s.SQLitePath == "" {
		s.SQLitePath = filepath.Join(s.DataDir, "taskdeck.db")
	}
	if s.KeyPrefix == "" {
		s.KeyPrefix = "taskdeck-"
	}
	if s.Timeout <= 0 {
		s.Timeout = 5 * time.Second
	}
}

func (r *Reminders) ApplyDefaults() {
	if r.Interval <= 0 {
		r.Interval = 30 * time.Second
	}
	if r.Window <= 0 {
		r.Window = 60 * time.Second
	}
}

func (l *Lists) ApplyDefaults() {
	if l.DefaultName == "" {
		l.DefaultName = "Inbox"
	}
	if l.DefaultColor == "" {
		l.DefaultColor = "#3b82f6"
	}
	if l.NewListColor == "" {
		l.NewListColor = "#64748b"
	}
}

func (c *Config) ApplyDefaults() {
	if c.Version == "" {
		c.Version = "1"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":42069"
	}
	c.Storage.ApplyDefaults()
	c.Reminders.ApplyDefaults()
	c.Lists.ApplyDefaults()
}

// Default returns a fully defaulted configuration.
func Default() *Config {
	c := &Config{}
	c.ApplyDefaults()
	return c
}

// Load reads path (a missing file yields defaults), then applies
// .env and TASKDECK_* environment overrides.
func Load(path string) (*Config, error) {
	var r Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &r); err != nil {
			return nil, err
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	if err := ApplyEnv(&r); err != nil {
		return nil, err
	}
	r.ApplyDefaults()
	return &r, nil
}
