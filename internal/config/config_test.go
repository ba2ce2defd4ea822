package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validConfig = `
discord:
  token: test-token
  guild_id: 100
  channels:
    interviews_category_id: 200
    interview_marks_id: "201"
  roles:
    interviewer_ids: [300, 301]
    pending_interview_id: 302
    ongoing_interview_id: 303
    text_verified_id: 304
    id_verified_id: 305
`

func TestParse_Valid(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("DATABASE", "")

	cfg, err := Parse([]byte(validConfig))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Database != DefaultDatabasePath {
		t.Errorf("Expected default database path, got %s", cfg.Database)
	}
	if cfg.Discord.GuildID != "100" {
		t.Errorf("Expected guild id 100, got %s", cfg.Discord.GuildID)
	}
	if cfg.Discord.Channels.InterviewMarksID != "201" {
		t.Errorf("Expected quoted id to decode, got %s", cfg.Discord.Channels.InterviewMarksID)
	}
	if len(cfg.Discord.Roles.InterviewerIDs) != 2 || cfg.Discord.Roles.InterviewerIDs[1] != "301" {
		t.Errorf("Unexpected interviewer ids: %v", cfg.Discord.Roles.InterviewerIDs)
	}
	if cfg.Ops.Listen != DefaultOpsListen {
		t.Errorf("Expected default ops listen address, got %s", cfg.Ops.Listen)
	}
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "from-env")
	t.Setenv("DATABASE", "postgres://u:p@localhost:5432/bouncer")

	cfg, err := Parse([]byte(validConfig))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.Discord.Token != "from-env" {
		t.Errorf("Expected token from env, got %s", cfg.Discord.Token)
	}
	if !strings.HasPrefix(cfg.Database, "postgres://") {
		t.Errorf("Expected database from env, got %s", cfg.Database)
	}
}

func TestParse_MalformedIDs(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")

	doc := strings.Replace(validConfig, "pending_interview_id: 302", "pending_interview_id: abc", 1)
	doc = strings.Replace(doc, "interviewer_ids: [300, 301]", "interviewer_ids: []", 1)

	_, err := Parse([]byte(doc))
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if !strings.Contains(err.Error(), "pending_interview_id") {
		t.Errorf("Expected pending_interview_id in error, got %v", err)
	}
	if !strings.Contains(err.Error(), "interviewer_ids") {
		t.Errorf("Expected interviewer_ids in error, got %v", err)
	}
}

func TestLoad_File(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(validConfig), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.Discord.Token != "test-token" {
		t.Errorf("Expected token from file, got %s", cfg.Discord.Token)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}
