package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

type DBConfig struct {
	Connection  string `yaml:"connection"`
	Database    string `yaml:"database"`
	Collections struct {
		Bills           string `yaml:"bills"`
		Petitions       string `yaml:"petitions"`
		PetitionHistory string `yaml:"petition_history"`
	} `yaml:"collections"`
}

type FetcherConfig struct {
	UserAgent     string `yaml:"user_agent"`
	Headful       bool   `yaml:"headful"`
	NavTimeoutSec int    `yaml:"nav_timeout_sec"`
	SettleWaitSec int    `yaml:"settle_wait_sec"`
}

type BillsConfig struct {
	ListURL       string `yaml:"list_url"`
	MaxPages      int    `yaml:"max_pages"`
	PageDelayMS   int    `yaml:"page_delay_ms"`
	ItemDelayMS   int    `yaml:"item_delay_ms"`
	ScheduleHours []int  `yaml:"schedule_hours"`
}

type PetitionsConfig struct {
	ListURL     string `yaml:"list_url"`
	BaseURL     string `yaml:"base_url"`
	AgreeGoal   int    `yaml:"agree_goal"`
	WindowDays  int    `yaml:"window_days"`
	IntervalMin int    `yaml:"interval_min"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type Config struct {
	DB        DBConfig        `yaml:"db"`
	Fetcher   FetcherConfig   `yaml:"fetcher"`
	Bills     BillsConfig     `yaml:"bills"`
	Petitions PetitionsConfig `yaml:"petitions"`
	Server    ServerConfig    `yaml:"server"`
	Timezone  string          `yaml:"timezone"`
}

func Default() *Config {
	cfg := &Config{
		Fetcher: FetcherConfig{
			UserAgent:     "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			NavTimeoutSec: 60,
			SettleWaitSec: 3,
		},
		Bills: BillsConfig{
			ListURL:       "https://pal.assembly.go.kr/napal/lgsltpa/lgsltpaOngoing/list.do?menuNo=1100026",
			MaxPages:      10,
			PageDelayMS:   1000,
			ItemDelayMS:   500,
			ScheduleHours: []int{6, 18},
		},
		Petitions: PetitionsConfig{
			ListURL:     "https://petitions.assembly.go.kr/proceed/onGoingAll",
			BaseURL:     "https://petitions.assembly.go.kr",
			AgreeGoal:   50000,
			WindowDays:  30,
			IntervalMin: 60,
		},
		Server:   ServerConfig{Port: "8080"},
		Timezone: "Asia/Seoul",
	}
	cfg.DB.Connection = "mongodb://localhost:27017"
	cfg.DB.Database = "politics"
	cfg.DB.Collections.Bills = "bills"
	cfg.DB.Collections.Petitions = "petitions"
	cfg.DB.Collections.PetitionHistory = "petition_history"
	return cfg
}

// LoadConfig reads path over the defaults. A missing file is not an error so
// the one-shot commands can run without any local setup.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if uri := os.Getenv("MONGO_URI"); uri != "" {
		cfg.DB.Connection = uri
	}

	return cfg, nil
}
