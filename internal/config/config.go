package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	httpapp "implantOrderBot/internal/app/http"
	"implantOrderBot/internal/repository/s3minio"
	"implantOrderBot/internal/repository/sheets"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env        string         `yaml:"env" env:"ENV" env-default:"local"`
	Timezone   string         `yaml:"timezone" env:"TIMEZONE" env-default:"Europe/Kyiv"`
	Telegram   TelegramConfig `yaml:"telegram"`
	Sheets     sheets.Config  `yaml:"sheets"`
	PriceLists s3minio.Config `yaml:"price_lists" env-prefix:"S3_"`
	HTTP       httpapp.Config `yaml:"http_server"`
}

type TelegramConfig struct {
	Token          string `yaml:"token" env:"BOT_TOKEN" env-required:"true"`
	Debug          bool   `yaml:"debug" env:"BOT_DEBUG" env-default:"false"`
	OperatorChatID int64  `yaml:"operator_chat_id" env:"OPERATOR_CHAT_ID" env-required:"true"`
	OperatorHandle string `yaml:"operator_handle" env:"OPERATOR_HANDLE"`
}

// Location возвращает часовой пояс для отметок времени заказов
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// MustLoad читает .env (если есть), затем YAML-файл из -config или CONFIG_PATH.
// Без файла конфигурация берется только из окружения.
func MustLoad() *Config {
	_ = godotenv.Load()

	cfg, err := Load(fetchConfigPath())
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load читает конфигурацию; пустой путь означает "только окружение"
func Load(configPath string) (*Config, error) {
	var cfg Config

	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("cannot read config from env: %w", err)
		}
		return &cfg, nil
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	return &cfg, nil
}

// fetchConfigPath fetches config path from command line flag or environment variable.
// Priority: flag > env > default.
// Default value is empty string.
func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
