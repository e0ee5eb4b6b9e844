package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "TASKDECK"

// ApplyEnv loads .env (if present) and overrides cfg with TASKDECK_*
// variables, e.g. TASKDECK_STORAGE_BACKEND=sqlite.
func ApplyEnv(cfg *Config) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setString(v, "storage.backend", &cfg.Storage.Backend)
	setString(v, "storage.data_dir", &cfg.Storage.DataDir)
	setString(v, "storage.sqlite_path", &cfg.Storage.SQLitePath)
	setString(v, "storage.postgres_url", &cfg.Storage.PostgresURL)
	setString(v, "storage.key_prefix", &cfg.Storage.KeyPrefix)
	setString(v, "server.addr", &cfg.Server.Addr)
	setString(v, "lists.default_name", &cfg.Lists.DefaultName)
	setString(v, "lists.default_color", &cfg.Lists.DefaultColor)
	setString(v, "lists.new_list_color", &cfg.Lists.NewListColor)

	if d := v.GetDuration("storage.timeout"); d > 0 {
		cfg.Storage.Timeout = d
	}
	if d := v.GetDuration("reminders.interval"); d > 0 {
		cfg.Reminders.Interval = d
	}
	if d := v.GetDuration("reminders.window"); d > 0 {
		cfg.Reminders.Window = d
	}
	return nil
}

func setString(v *viper.Viper, key string, dst *string) {
	if s := strings.TrimSpace(v.GetString(key)); s != "" {
		*dst = s
	}
}
