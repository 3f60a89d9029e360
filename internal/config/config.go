package config

import (
	"flag"
	"log"
	"os"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type (
	Config struct {
		App     `yaml:"app"`
		HTTP    `yaml:"http"`
		GRPC    `yaml:"grpc"`
		Log     `yaml:"logger"`
		Storage `yaml:"storage"`
		Notify  `yaml:"notify"`
	}

	App struct {
		Env          string `yaml:"env"           env-default:"local"`
		Name         string `yaml:"name"          env-default:"sleep-monster"`
		Version      string `yaml:"version"       env-required:"true"       env:"APP_VERSION"`
		Timezone     string `yaml:"timezone"      env-default:"Local"       env:"APP_TIMEZONE"`
		Progression  string `yaml:"progression"   env-default:"accessory"   env:"APP_PROGRESSION"`
		CreatureName string `yaml:"creature_name" env-default:"Nemurin"`
		SummaryPath  string `yaml:"summary_path"  env-default:"./data/summary.json" env:"APP_SUMMARY_PATH"`
	}

	HTTP struct {
		IP         string        `yaml:"ip"           env-default:"0.0.0.0"`
		Port       string        `yaml:"port"         env-default:"8082"`
		Timeout    time.Duration `yaml:"timeout"      env-default:"4s"`
		IdleTimout time.Duration `yaml:"idle_timeout" env-default:"60s"`
		User       string        `yaml:"user"`
		Password   string        `yaml:"password"                              env:"HTTP_SERVER_PASSWORD"`
		CORS       struct {
			AllowedMethods     []string `yaml:"allowed_methods"`
			AllowedOrigins     []string `yaml:"allowed_origins"`
			AllowCredentials   bool     `yaml:"allow_credentials"`
			AllowedHeaders     []string `yaml:"allowed_headers"`
			OptionsPassthrough bool     `yaml:"options_passthrough"`
			ExposedHeaders     []string `yaml:"exposed_headers"`
			Debug              bool     `yaml:"debug"`
		} `yaml:"cors"`
	}

	GRPC struct {
		IP   string `yaml:"ip"   env-default:"0.0.0.0"`
		Port string `yaml:"port" env-default:"30000"`
	}

	Log struct {
		Level string `yaml:"log_level" env-required:"true" env:"LOG_LEVEL"`
	}

	Storage struct {
		PoolMax int    `yaml:"pool_max" env-default:"2"`
		URL     string `yaml:"url"      env-default:"memory://" env:"STORAGE_URL"`
	}

	Notify struct {
		ChainCount       int           `yaml:"chain_count"       env-default:"3"`
		ChainInterval    time.Duration `yaml:"chain_interval"    env-default:"30s"`
		SentinelDelay    time.Duration `yaml:"sentinel_delay"    env-default:"10m"`
		SnoozeDuration   time.Duration `yaml:"snooze_duration"   env-default:"5m"`
		Tick             time.Duration `yaml:"tick"              env-default:"1s"`
		RegisterAttempts int           `yaml:"register_attempts" env-default:"3"`
	}
)

const (
	EnvConfigPathName  = "CONFIG-PATH"
	FlagConfigPathName = "config"
)

var (
	configPath string
	instance   *Config
	once       sync.Once
)

// GetConfig returns app configs.
func GetConfig() *Config {
	once.Do(func() {
		flag.StringVar(
			&configPath,
			FlagConfigPathName,
			"./configs/config.yml",
			"this is app config file",
		)
		flag.Parse()

		log.Print("config init")

		if configPath == "" {
			configPath = os.Getenv(EnvConfigPathName)
		}

		if configPath == "" {
			log.Fatal("config path is required")
		}

		instance = &Config{}

		if err := cleanenv.ReadConfig(configPath, instance); err != nil {
			helpText := "Sleep Monster - gamified alarm clock service"
			help, _ := cleanenv.GetDescription(instance, &helpText)
			log.Print(help)
			log.Fatal(err)
		}
	})
	return instance
}

// Location resolves the configured timezone.
func (a App) Location() (*time.Location, error) {
	if a.Timezone == "" || a.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(a.Timezone)
}
