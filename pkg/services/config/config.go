package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Server struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type Audit struct {
	SensitivePorts []int    `mapstructure:"sensitive_ports"`
	RequiredTags   []string `mapstructure:"required_tags"`
}

type Storage struct {
	Path string `mapstructure:"path"`
}

type Config struct {
	Server  Server  `mapstructure:"server"`
	Audit   Audit   `mapstructure:"audit"`
	Storage Storage `mapstructure:"storage"`
}

// Load reads the yaml settings file at path, or defaults when path is
// empty. Every field has a usable default; the file only overrides.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("server.addr", "localhost:8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("audit.sensitive_ports", []int{22, 3389, 1433, 3306, 5432, 6379, 9200, 27017})
	v.SetDefault("audit.required_tags", []string{"environment", "owner"})
	v.SetDefault("storage.path", "cloud-atlas.db")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}
