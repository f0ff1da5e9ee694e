package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Token    TokenConfig    `mapstructure:"token"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	MetricsAddress string `mapstructure:"metrics_address"`
}

type DatabaseConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Driver   string         `mapstructure:"driver"` // "gorm" or "sql"
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

type TokenConfig struct {
	Secret string        `mapstructure:"secret"`
	MaxAge time.Duration `mapstructure:"max_age"`
}

// EngineConfig holds every temporal constant of the orchestration engine.
type EngineConfig struct {
	GraceBuffer     time.Duration `mapstructure:"grace_buffer"`
	GraceRemoval    time.Duration `mapstructure:"grace_removal"`
	CountdownFrom   int           `mapstructure:"countdown_from"`
	CountdownTick   time.Duration `mapstructure:"countdown_tick"`
	RaceRounds      int           `mapstructure:"race_rounds"`
	RaceResultDelay time.Duration `mapstructure:"race_result_delay"`
	SeqShowPerColor time.Duration `mapstructure:"seq_show_per_color"`
	SeqShowGap      time.Duration `mapstructure:"seq_show_gap"`
	SeqShowTail     time.Duration `mapstructure:"seq_show_tail"`
	SeqInputDelay   time.Duration `mapstructure:"seq_input_delay"`
	SeqResultDelay  time.Duration `mapstructure:"seq_result_delay"`
	SeqBaseLength   int           `mapstructure:"seq_base_length"`
	SeqMinPlayers   int           `mapstructure:"seq_min_players"`
	SweepInterval   time.Duration `mapstructure:"sweep_interval"`
}

func setDefaults() {
	viper.SetDefault("server.http_address", ":8080")
	viper.SetDefault("server.rpc_address", ":8081")
	viper.SetDefault("server.metrics_address", ":9090")

	viper.SetDefault("database.enabled", false)
	viper.SetDefault("database.driver", "gorm")
	viper.SetDefault("database.postgres.host", "localhost")
	viper.SetDefault("database.postgres.port", 5432)

	viper.SetDefault("token.secret", "colorparty-dev-secret")
	viper.SetDefault("token.max_age", 24*time.Hour)

	viper.SetDefault("engine.grace_buffer", 2*time.Second)
	viper.SetDefault("engine.grace_removal", 30*time.Second)
	viper.SetDefault("engine.countdown_from", 3)
	viper.SetDefault("engine.countdown_tick", time.Second)
	viper.SetDefault("engine.race_rounds", 5)
	viper.SetDefault("engine.race_result_delay", 3*time.Second)
	viper.SetDefault("engine.seq_show_per_color", 600*time.Millisecond)
	viper.SetDefault("engine.seq_show_gap", 200*time.Millisecond)
	viper.SetDefault("engine.seq_show_tail", time.Second)
	viper.SetDefault("engine.seq_input_delay", 500*time.Millisecond)
	viper.SetDefault("engine.seq_result_delay", 2*time.Second)
	viper.SetDefault("engine.seq_base_length", 3)
	viper.SetDefault("engine.seq_min_players", 2)
	viper.SetDefault("engine.sweep_interval", 60*time.Second)
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	setDefaults()
	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		// Defaults cover a config-less dev run.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	err = viper.Unmarshal(&config)
	return
}
