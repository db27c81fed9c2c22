package config

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	cfg, err := Load(discardLogger())
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.App.Environment)
	assert.Equal(t, "local", cfg.FileProcessing.StorageBackend)
	assert.Equal(t, 200, cfg.Ledger.ReconcileBatchSize)
	assert.Equal(t, 2*time.Hour, cfg.Ledger.ScanSessionTTL)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, "inventory.movements", cfg.Kafka.Topic)
	assert.Equal(t, map[string]int{"critical": 6, "default": 3, "low": 1}, cfg.Asynq.Queues)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("LEDGER_OUTBOX_BATCH_SIZE", "25")
	t.Setenv("LEDGER_SNAPSHOT_CACHE_TTL", "90s")
	t.Setenv("DB_MAX_CONNECTIONS", "not-a-number")

	cfg, err := Load(discardLogger())
	require.NoError(t, err)

	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 25, cfg.Ledger.OutboxBatchSize)
	assert.Equal(t, 90*time.Second, cfg.Ledger.SnapshotCacheTTL)
	assert.EqualValues(t, 25, cfg.Database.MaxConnections)
}

func TestLoad_UnknownSecretsProvider(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("SECRETS_PROVIDER", "vault")

	_, err := Load(discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown secrets provider")
}

func validConfig() *Config {
	return &Config{
		App:      AppConfig{Name: "stockledger-api", Environment: "test"},
		Database: DatabaseConfig{Host: "db", Port: "5432", User: "u", Name: "n", MaxConnections: 10, MinConnections: 2},
		Redis:    RedisConfig{Host: "redis", Port: "6379", PoolSize: 5},
		Ledger: LedgerConfig{
			ScanSessionTTL:     time.Hour,
			ReconcileBatchSize: 100,
			OutboxBatchSize:    100,
			ImportMaxRows:      1000,
		},
		FileProcessing: FileProcessingConfig{StorageBackend: "local"},
		Security:       SecurityConfig{RateLimitRequests: 10},
		Server:         ServerConfig{Port: "8080"},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
		missing bool
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing_database_host",
			mutate:  func(c *Config) { c.Database.Host = "" },
			wantErr: "Database.Host",
			missing: true,
		},
		{
			name:    "placeholder_counts_as_missing",
			mutate:  func(c *Config) { c.Server.Port = "MISSING_PORT" },
			wantErr: "Server.Port",
			missing: true,
		},
		{
			name:    "connection_bounds",
			mutate:  func(c *Config) { c.Database.MinConnections = 20 },
			wantErr: "max_connections",
		},
		{
			name:    "unknown_storage_backend",
			mutate:  func(c *Config) { c.FileProcessing.StorageBackend = "ftp" },
			wantErr: "storage backend",
		},
		{
			name: "kafka_without_topic",
			mutate: func(c *Config) {
				c.Kafka.Enabled = true
				c.Kafka.Brokers = []string{"k:9092"}
			},
			wantErr: "kafka topic",
			missing: true,
		},
		{
			name:    "zero_reconcile_batch",
			mutate:  func(c *Config) { c.Ledger.ReconcileBatchSize = 0 },
			wantErr: "reconcile_batch_size",
		},
		{
			name: "production_requires_ssl",
			mutate: func(c *Config) {
				c.App.Environment = "production"
				c.Database.Password = "strong"
				c.Database.SSLMode = "disable"
			},
			wantErr: "SSL",
		},
		{
			name: "production_rejects_local_storage",
			mutate: func(c *Config) {
				c.App.Environment = "production"
				c.Database.Password = "strong"
				c.Database.SSLMode = "require"
				c.Security.SecureHeaders = true
				c.Security.AllowedOrigins = []string{"https://ops.example.com"}
			},
			wantErr: "local file storage",
		},
		{
			name: "production_rejects_wildcard_origin",
			mutate: func(c *Config) {
				c.App.Environment = "production"
				c.Database.Password = "strong"
				c.Database.SSLMode = "require"
				c.Security.SecureHeaders = true
				c.Security.AllowedOrigins = []string{"*"}
				c.FileProcessing.StorageBackend = "s3"
			},
			wantErr: "wildcard origin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, tt.missing, errors.Is(err, ErrMissingRequiredConfig))
		})
	}
}

func TestConfig_OverrideFromSecrets(t *testing.T) {
	cfg := validConfig()
	cfg.overrideFromSecrets(map[string]string{
		"DB_PASSWORD":    "from-vault",
		"REDIS_PASSWORD": "redis-secret",
	})

	assert.Equal(t, "from-vault", cfg.Database.Password)
	assert.Equal(t, "redis-secret", cfg.Redis.Password)
	assert.Equal(t, "redis-secret", cfg.Asynq.RedisPassword)
	assert.Empty(t, cfg.AWS.AccessKeyID)
}

func TestConfig_Addresses(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Password = "p"
	cfg.Database.SSLMode = "disable"
	cfg.Server.Host = "0.0.0.0"

	assert.Equal(t, "postgresql://u:p@db:5432/n?sslmode=disable", cfg.GetDatabaseURL())
	assert.Equal(t, "0.0.0.0:8080", cfg.GetServerAddress())
	assert.Equal(t, "redis:6379", cfg.GetRedisAddress())
}

type fakeSecretsClient struct {
	calls  int
	secret *string
	err    error
}

func (f *fakeSecretsClient) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: f.secret}, nil
}

func TestAWSSecretsManager_GetSecrets(t *testing.T) {
	t.Run("fetches_then_serves_from_cache", func(t *testing.T) {
		client := &fakeSecretsClient{secret: aws.String(`{"DB_PASSWORD":"p1","REDIS_PASSWORD":"r1"}`)}
		sm := NewAWSSecretsManagerWithClient(client, "stockledger/test", discardLogger())

		got, err := sm.GetSecrets(context.Background(), []string{"DB_PASSWORD", "REDIS_PASSWORD"})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"DB_PASSWORD": "p1", "REDIS_PASSWORD": "r1"}, got)

		val, err := sm.GetSecret(context.Background(), "DB_PASSWORD")
		require.NoError(t, err)
		assert.Equal(t, "p1", val)
		assert.Equal(t, 1, client.calls)
	})

	t.Run("missing_key", func(t *testing.T) {
		client := &fakeSecretsClient{secret: aws.String(`{"DB_PASSWORD":"p1"}`)}
		sm := NewAWSSecretsManagerWithClient(client, "stockledger/test", discardLogger())

		_, err := sm.GetSecret(context.Background(), "AWS_ACCESS_KEY_ID")
		assert.ErrorContains(t, err, "not found")
	})

	t.Run("client_error", func(t *testing.T) {
		client := &fakeSecretsClient{err: errors.New("access denied")}
		sm := NewAWSSecretsManagerWithClient(client, "stockledger/test", discardLogger())

		_, err := sm.GetSecrets(context.Background(), []string{"DB_PASSWORD"})
		assert.ErrorContains(t, err, "access denied")
	})

	t.Run("binary_secret", func(t *testing.T) {
		sm := NewAWSSecretsManagerWithClient(&fakeSecretsClient{}, "stockledger/test", discardLogger())

		_, err := sm.GetSecrets(context.Background(), []string{"DB_PASSWORD"})
		assert.ErrorContains(t, err, "no string value")
	})
}

func TestEnvSecretsManager(t *testing.T) {
	t.Setenv("DB_PASSWORD", "env-pass")
	sm := NewEnvSecretsManager()

	val, err := sm.GetSecret(context.Background(), "DB_PASSWORD")
	require.NoError(t, err)
	assert.Equal(t, "env-pass", val)

	_, err = sm.GetSecret(context.Background(), "STOCKLEDGER_UNSET_SECRET")
	assert.Error(t, err)
}
