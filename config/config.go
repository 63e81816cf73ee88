package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Customization CustomizationConfig `mapstructure:"customization"`
	Security      SecurityConfig      `mapstructure:"security"`
}

type ServerConfig struct {
	Port      int    `mapstructure:"port"`
	Debug     bool   `mapstructure:"debug"`
	AdminKey  string `mapstructure:"admin_key"`
	PluginKey string `mapstructure:"plugin_key"` // shared with the game server plugin
}

type DatabaseConfig struct {
	Mode         string        `mapstructure:"mode"` // sqlite | mysql
	SQLitePath   string        `mapstructure:"sqlite_path"`
	MySQLDSN     string        `mapstructure:"mysql_dsn"`
	MySQLMaxOpen int           `mapstructure:"mysql_max_open"`
	MySQLMaxIdle int           `mapstructure:"mysql_max_idle"`
	MySQLMaxLife time.Duration `mapstructure:"mysql_max_life"`
}

type CacheConfig struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	LocalGCInterval time.Duration `mapstructure:"local_gc_interval"`
	LocalPubSubBuf  int           `mapstructure:"local_pubsub_buf"`
}

// CustomizationConfig toggles each cosmetic feature independently.
// It is read once at startup and never mutated afterwards.
type CustomizationConfig struct {
	KnifeEnabled    bool          `mapstructure:"knife_enabled"`
	GloveEnabled    bool          `mapstructure:"glove_enabled"`
	SkinEnabled     bool          `mapstructure:"skin_enabled"`
	MaxSlots        int           `mapstructure:"max_slots"`
	RefreshCooldown time.Duration `mapstructure:"refresh_cooldown"`
	SaveInterval    time.Duration `mapstructure:"save_interval"`
}

type SecurityConfig struct {
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Load reads config from the given YAML file path.
// A .env file next to the working directory is loaded first if present;
// WP_* environment variables override file values (WP_DATABASE_MYSQL_DSN etc).
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("WP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("database.mode", "sqlite")
	v.SetDefault("database.sqlite_path", "./data/weaponpaints.db")
	v.SetDefault("database.mysql_max_open", 20)
	v.SetDefault("database.mysql_max_idle", 5)
	v.SetDefault("database.mysql_max_life", "1h")
	v.SetDefault("cache.local_gc_interval", "30s")
	v.SetDefault("cache.local_pubsub_buf", 256)
	v.SetDefault("customization.knife_enabled", true)
	v.SetDefault("customization.glove_enabled", true)
	v.SetDefault("customization.skin_enabled", true)
	v.SetDefault("customization.max_slots", 65)
	v.SetDefault("customization.refresh_cooldown", "10s")
	v.SetDefault("customization.save_interval", "5m")
	v.SetDefault("security.rate_limit_rps", 20)
	v.SetDefault("security.rate_limit_burst", 40)
}
