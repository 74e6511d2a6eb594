package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailDomainAllowed(t *testing.T) {
	cfg := AuthConfig{AllowedEmailDomains: []string{"ppsu.ac.in"}}

	assert.True(t, cfg.EmailDomainAllowed("student@ppsu.ac.in"))
	assert.True(t, cfg.EmailDomainAllowed("Student@PPSU.AC.IN"))
	assert.False(t, cfg.EmailDomainAllowed("someone@gmail.com"))
	assert.False(t, cfg.EmailDomainAllowed("attacker@ppsu.ac.in.evil.com"))
	assert.False(t, cfg.EmailDomainAllowed("noatsign"))
}

func TestEmailDomainAllowedMultipleDomains(t *testing.T) {
	cfg := AuthConfig{AllowedEmailDomains: []string{"ppsu.ac.in", "faculty.ppsu.ac.in"}}

	assert.True(t, cfg.EmailDomainAllowed("a@ppsu.ac.in"))
	assert.True(t, cfg.EmailDomainAllowed("b@faculty.ppsu.ac.in"))
	assert.False(t, cfg.EmailDomainAllowed("c@other.ac.in"))
}

func TestEmailDomainAllowedEmptyListAdmitsAll(t *testing.T) {
	cfg := AuthConfig{}
	assert.True(t, cfg.EmailDomainAllowed("anyone@anywhere.com"))
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	assert.Equal(t, 10, cfg.Feed.DefaultPageSize)
	assert.Equal(t, 100, cfg.Feed.MaxPageSize)
	assert.Equal(t, 5000, cfg.Feed.FollowingIDCap)
	assert.Equal(t, time.Minute, cfg.Feed.CacheTTL)
	assert.Equal(t, 24*time.Hour, cfg.Feed.StoryLifetime)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.ExpireTime)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Feed.DefaultPageSize = 25
	cfg.JWT.ExpireTime = time.Hour
	cfg.applyDefaults()

	assert.Equal(t, 25, cfg.Feed.DefaultPageSize)
	assert.Equal(t, time.Hour, cfg.JWT.ExpireTime)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `server:
  port: ":9090"
  mode: "release"
database:
  host: "db.internal"
  port: 5432
  user: "ppsu"
  password: "secret"
  dbname: "ppsusocial"
  sslmode: "require"
redis:
  host: "cache.internal"
  port: 6379
kafka:
  brokers:
    - "broker:9092"
  topics:
    engagement_events: "engagement-events"
jwt:
  secret: "abc"
auth:
  allowed_email_domains:
    - "ppsu.ac.in"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, []string{"broker:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "engagement-events", cfg.Kafka.Topics.EngagementEvents)
	assert.Equal(t, []string{"ppsu.ac.in"}, cfg.Auth.AllowedEmailDomains)

	// Defaults fill whatever the file leaves out.
	assert.Equal(t, 10, cfg.Feed.DefaultPageSize)

	assert.Equal(t, "host=db.internal port=5432 user=ppsu password=secret dbname=ppsusocial sslmode=require", cfg.Database.DSN())
	assert.Equal(t, "cache.internal:6379", cfg.Redis.Addr())
}
