package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDatabasePath = "data/db.sqlite"
	DefaultOpsListen    = ":8080"
)

// Snowflake is a Discord identifier. Config files may carry it either as a
// YAML integer or as a quoted string.
type Snowflake string

func (s *Snowflake) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected an id, got a %s", node.Line, kindName(node.Kind))
	}
	*s = Snowflake(strings.TrimSpace(node.Value))
	return nil
}

func (s Snowflake) String() string { return string(s) }

// Valid reports whether the id is a well-formed snowflake.
func (s Snowflake) Valid() bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseUint(string(s), 10, 64)
	return err == nil
}

type Config struct {
	Env string `yaml:"env"`
	// Database is a SQLite file path or a postgres:// DSN.
	Database string  `yaml:"database"`
	Discord  Discord `yaml:"discord"`
	Redis    Redis   `yaml:"redis"`
	Ops      Ops     `yaml:"ops"`
}

type Discord struct {
	Token    string    `yaml:"token"`
	GuildID  Snowflake `yaml:"guild_id"`
	Channels Channels  `yaml:"channels"`
	Roles    Roles     `yaml:"roles"`
}

type Channels struct {
	// Categories are technically channels in Discord.
	InterviewsCategoryID Snowflake `yaml:"interviews_category_id"`
	InterviewMarksID     Snowflake `yaml:"interview_marks_id"`
}

type Roles struct {
	InterviewerIDs     []Snowflake `yaml:"interviewer_ids"`
	PendingInterviewID Snowflake   `yaml:"pending_interview_id"`
	OngoingInterviewID Snowflake   `yaml:"ongoing_interview_id"`
	TextVerifiedID     Snowflake   `yaml:"text_verified_id"`
	IDVerifiedID       Snowflake   `yaml:"id_verified_id"`
}

// Redis is optional; an empty address keeps the enrolled-user cache in memory.
type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type Ops struct {
	Listen         string   `yaml:"listen"`
	JWTSecret      string   `yaml:"jwt_secret"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Load reads the YAML file at path, applies environment overrides (a local
// .env file is honoured) and validates the result.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML document, then applies defaults, env overrides and validation.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Database == "" {
		c.Database = DefaultDatabasePath
	}
	if c.Env == "" {
		c.Env = "development"
	}
	if c.Ops.Listen == "" {
		c.Ops.Listen = DefaultOpsListen
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("APP_ENV"); v != "" {
		c.Env = v
	}
	if v := os.Getenv("DISCORD_TOKEN"); v != "" {
		c.Discord.Token = v
	}
	if v := os.Getenv("DATABASE"); v != "" {
		c.Database = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("OPS_LISTEN"); v != "" {
		c.Ops.Listen = v
	}
	if v := os.Getenv("OPS_JWT_SECRET"); v != "" {
		c.Ops.JWTSecret = v
	}
}

// Validate checks that every configured identifier is well formed. Whether
// those identifiers exist in the guild is decided later by the resolver.
func (c *Config) Validate() error {
	var errs []error

	if c.Discord.Token == "" {
		errs = append(errs, errors.New("discord.token is required"))
	}

	ids := []struct {
		field string
		id    Snowflake
	}{
		{"guild_id", c.Discord.GuildID},
		{"interviews_category_id", c.Discord.Channels.InterviewsCategoryID},
		{"interview_marks_id", c.Discord.Channels.InterviewMarksID},
		{"pending_interview_id", c.Discord.Roles.PendingInterviewID},
		{"ongoing_interview_id", c.Discord.Roles.OngoingInterviewID},
		{"text_verified_id", c.Discord.Roles.TextVerifiedID},
		{"id_verified_id", c.Discord.Roles.IDVerifiedID},
	}
	for _, entry := range ids {
		if !entry.id.Valid() {
			errs = append(errs, fmt.Errorf("%s: malformed id %q", entry.field, entry.id))
		}
	}

	if len(c.Discord.Roles.InterviewerIDs) == 0 {
		errs = append(errs, errors.New("interviewer_ids: at least one role id is required"))
	}
	for i, id := range c.Discord.Roles.InterviewerIDs {
		if !id.Valid() {
			errs = append(errs, fmt.Errorf("interviewer_ids[%d]: malformed id %q", i, id))
		}
	}

	return errors.Join(errs...)
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.AliasNode:
		return "alias"
	default:
		return "document"
	}
}
