package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	NATS struct {
		Enabled       bool   `yaml:"enabled"`
		URL           string `yaml:"url"`
		StreamName    string `yaml:"stream_name"`
		SubjectPrefix string `yaml:"subject_prefix"`
	} `yaml:"nats"`

	Draft struct {
		TimePerPickSec int    `yaml:"time_per_pick_sec"`
		OrderPolicy    string `yaml:"order_policy"`
	} `yaml:"draft"`

	// Seed populates the in-memory pool provider when no database is
	// configured. Keyed by league so one process can host several drafts.
	Seed []SeedLeague `yaml:"seed"`
}

type SeedLeague struct {
	LeagueID uuid.UUID    `yaml:"league_id"`
	Players  []SeedPlayer `yaml:"players"`
	Needs    []SeedNeeds  `yaml:"needs"`
}

type SeedPlayer struct {
	ID       uuid.UUID `yaml:"id"`
	Name     string    `yaml:"name"`
	Position string    `yaml:"position"`
	Team     string    `yaml:"team"`
}

type SeedNeeds struct {
	ParticipantID uuid.UUID `yaml:"participant_id"`
	Positions     []string  `yaml:"positions"`
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func loadConfig(path string) (*Config, error) {
	var config Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if config.Server.Port == "" {
		config.Server.Port = getEnv("PORT", "8080")
	}
	if config.NATS.URL == "" {
		config.NATS.URL = getEnv("NATS_URL", "nats://localhost:4222")
	}
	if config.Draft.TimePerPickSec <= 0 {
		config.Draft.TimePerPickSec = 90
	}
	if config.Draft.OrderPolicy == "" {
		config.Draft.OrderPolicy = "ROUND_ROBIN"
	}

	return &config, nil
}

func (c *Config) timePerPick() time.Duration {
	return time.Duration(c.Draft.TimePerPickSec) * time.Second
}
