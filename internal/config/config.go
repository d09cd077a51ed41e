package config

import (
	"fmt"
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, falling back to system environment variables")
	}
}

// Config is the full environment-driven configuration surface.
// Provider flags and priorities are read once at startup into the registry.
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,notEmpty"`

	EnableYouTube bool `env:"ENABLE_YOUTUBE" envDefault:"true"`
	EnableArchive bool `env:"ENABLE_INTERNET_ARCHIVE" envDefault:"true"`
	EnableRadio   bool `env:"ENABLE_RADIO" envDefault:"true"`

	// Lower number = higher priority.
	YouTubePriority int `env:"YOUTUBE_PRIORITY" envDefault:"1"`
	ArchivePriority int `env:"INTERNET_ARCHIVE_PRIORITY" envDefault:"2"`
	RadioPriority   int `env:"RADIO_PRIORITY" envDefault:"3"`

	MaxResultsPerSource  int `env:"MAX_RESULTS_PER_SOURCE" envDefault:"3"`
	SearchTimeoutSeconds int `env:"SEARCH_TIMEOUT_SECONDS" envDefault:"10"`

	IdleDisconnectSeconds int `env:"IDLE_DISCONNECT_SECONDS" envDefault:"30"`
	EmptyChannelSeconds   int `env:"EMPTY_CHANNEL_SECONDS" envDefault:"60"`

	// Optional proxy for the YouTube extractor client (http, socks4 or socks5 URL).
	YouTubeProxy string `env:"YTDLP_PROXY"`

	// Address for the HTTP status server; empty disables it.
	StatusAddr string `env:"STATUS_ADDR" envDefault:":8787"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"INFO"`
}

func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
