package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/shift"
)

type Config struct {
	mu sync.RWMutex `yaml:"-"`

	Shift     ShiftConfig     `yaml:"shift"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Messaging MessagingConfig `yaml:"messaging"`
	Web       WebConfig       `yaml:"web"`
	Cache     CacheConfig     `yaml:"cache"`
	Log       LogConfig       `yaml:"log"`
}

// ShiftConfig describes the simulated shift. An empty Date means the shift
// on the current day.
type ShiftConfig struct {
	Date          string        `yaml:"date"`       // 2006-01-02
	StartTime     string        `yaml:"start_time"` // 15:04
	Duration      time.Duration `yaml:"duration"`
	BreakOffset   time.Duration `yaml:"break_offset"`
	BreakDuration time.Duration `yaml:"break_duration"`
	Timezone      string        `yaml:"timezone"`

	Robots  int `yaml:"robots"`
	Pickers int `yaml:"pickers"`
	Carts   int `yaml:"carts"`
	Orders  int `yaml:"orders"`

	RobotInterval  time.Duration `yaml:"robot_interval"`
	PickerInterval time.Duration `yaml:"picker_interval"`
	CartInterval   time.Duration `yaml:"cart_interval"`

	Seed int64 `yaml:"seed"`
}

type DatabaseConfig struct {
	Driver   string         `yaml:"driver"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type MessagingConfig struct {
	Enabled     bool        `yaml:"enabled"`
	Backend     string      `yaml:"backend"` // "mqtt" or "kafka"
	MQTT        MQTTConfig  `yaml:"mqtt"`
	Kafka       KafkaConfig `yaml:"kafka"`
	TopicPrefix string      `yaml:"topic_prefix"`
	ClientID    string      `yaml:"client_id"`
}

type MQTTConfig struct {
	Broker string `yaml:"broker"`
	Port   int    `yaml:"port"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	GroupID string   `yaml:"group_id"`
}

type WebConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type CacheConfig struct {
	TTL             time.Duration `yaml:"ttl"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	Lookback        time.Duration `yaml:"lookback"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Defaults returns the configuration used when no file is present.
func Defaults() *Config {
	return &Config{
		Shift: ShiftConfig{
			StartTime:      "08:00",
			Duration:       6 * time.Hour,
			BreakOffset:    3*time.Hour + 30*time.Minute,
			BreakDuration:  time.Hour,
			Timezone:       "Local",
			Robots:         8,
			Pickers:        8,
			Carts:          20,
			Orders:         200,
			RobotInterval:  5 * time.Minute,
			PickerInterval: 5 * time.Minute,
			CartInterval:   10 * time.Minute,
			Seed:           1,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			SQLite: SQLiteConfig{Path: "amrdash.db"},
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "amrdash",
				User:     "amrdash",
				Password: "",
				SSLMode:  "disable",
			},
		},
		Redis: RedisConfig{
			Enabled:  false,
			Address:  "localhost:6379",
			Password: "",
			DB:       0,
		},
		Messaging: MessagingConfig{
			Enabled: false,
			Backend: "mqtt",
			MQTT: MQTTConfig{
				Broker: "localhost",
				Port:   1883,
			},
			Kafka: KafkaConfig{
				Brokers: []string{"localhost:9092"},
				GroupID: "amrdash",
			},
			TopicPrefix: "amrdash",
			ClientID:    "amrdash",
		},
		Web: WebConfig{
			Host: "0.0.0.0",
			Port: 3001,
		},
		Cache: CacheConfig{
			TTL:             30 * time.Second,
			RefreshInterval: 30 * time.Second,
			Lookback:        24 * time.Hour,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path over Defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to path as YAML.
func (c *Config) Save(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Location resolves the configured timezone, falling back to local time.
func (s ShiftConfig) Location() *time.Location {
	switch s.Timezone {
	case "", "Local":
		return time.Local
	case "UTC":
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Window returns the configured shift's start and end on the configured date,
// or on now's date when no date is set.
func (s ShiftConfig) Window(now time.Time) (time.Time, time.Time, error) {
	loc := s.Location()
	day := now.In(loc)
	if s.Date != "" {
		d, err := time.ParseInLocation("2006-01-02", s.Date, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("shift date %q: %w", s.Date, err)
		}
		day = d
	}
	clock, err := time.Parse("15:04", s.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("shift start_time %q: %w", s.StartTime, err)
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, loc)
	return start, start.Add(s.Duration), nil
}

// GeneratorConfig converts the shift section into a generator config for the
// shift containing now.
func (s ShiftConfig) GeneratorConfig(now time.Time) (shift.Config, error) {
	start, end, err := s.Window(now)
	if err != nil {
		return shift.Config{}, err
	}
	return shift.Config{
		Start:          start,
		End:            end,
		BreakStart:     start.Add(s.BreakOffset),
		BreakEnd:       start.Add(s.BreakOffset + s.BreakDuration),
		Robots:         s.Robots,
		Pickers:        s.Pickers,
		Carts:          s.Carts,
		Orders:         s.Orders,
		RobotInterval:  s.RobotInterval,
		PickerInterval: s.PickerInterval,
		CartInterval:   s.CartInterval,
	}, nil
}

// DSN builds a libpq-style connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		p.Host, p.Port, p.Database, p.User, p.Password, p.SSLMode)
}
