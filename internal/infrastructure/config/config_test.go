package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "qms-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, "sap", cfg.ERP.Provider)
	assert.Equal(t, 4, cfg.ERP.ImportConcurrency)
	assert.Equal(t, 24*time.Hour, cfg.ERP.IdempotencyTTL)
	assert.Equal(t, "memory", cfg.ERP.IdempotencyBackend)
	assert.Equal(t, 5*time.Minute, cfg.ERP.IdempotencySweep)
	assert.Equal(t, 10*time.Second, cfg.Event.ShutdownTimeout)
	assert.Equal(t, 200*time.Millisecond, cfg.Telemetry.DBSlowQueryThresh)
}

func TestFromViper_EnvOverrides(t *testing.T) {
	t.Setenv("QMS_APP_NAME", "test-app")
	t.Setenv("QMS_DATABASE_HOST", "testdb.local")
	t.Setenv("QMS_DATABASE_PORT", "5433")
	t.Setenv("QMS_ERP_PROVIDER", " Oracle ")
	t.Setenv("QMS_ERP_IMPORT_CONCURRENCY", "8")
	t.Setenv("QMS_ERP_ORACLE_ORG_ID", "204")
	t.Setenv("QMS_ERP_SAP_COMPANY_DB", "SBODEMOUS")

	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "test-app", cfg.App.Name)
	assert.Equal(t, "testdb.local", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "oracle", cfg.ERP.Provider)
	assert.Equal(t, 8, cfg.ERP.ImportConcurrency)
	assert.Equal(t, "204", cfg.ERP.Oracle.OrgID)
	assert.Equal(t, "SBODEMOUS", cfg.ERP.SAP.CompanyDB)
}

func TestFromViper_FileValues(t *testing.T) {
	v := viper.New()
	v.Set("erp.provider", "sap")
	v.Set("erp.idempotency_ttl", "2h")
	v.Set("database.driver", "sqlite")
	v.Set("database.sqlite_path", "file:test?mode=memory")

	cfg, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, cfg.ERP.IdempotencyTTL)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file:test?mode=memory", cfg.Database.SQLitePath)
}

func TestFromViper_Validation(t *testing.T) {
	tests := []struct {
		name string
		set  map[string]any
		want string
	}{
		{"idle exceeds open", map[string]any{"database.max_open_conns": 10, "database.max_idle_conns": 20}, "cannot exceed"},
		{"negative idle", map[string]any{"database.max_idle_conns": -1}, "cannot be negative"},
		{"unknown driver", map[string]any{"database.driver": "mysql"}, "database.driver"},
		{"redis backend without redis", map[string]any{"erp.idempotency_backend": "redis"}, "redis.enabled"},
		{"unknown backend", map[string]any{"erp.idempotency_backend": "etcd"}, "idempotency_backend"},
		{"sampling ratio", map[string]any{"telemetry.sampling_ratio": 1.5}, "sampling_ratio"},
		{"production without password", map[string]any{"app.env": "production", "database.sslmode": "require"}, "database.password"},
		{"production with sqlite", map[string]any{"app.env": "production", "database.driver": "sqlite"}, "must be postgres"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			for k, val := range tt.set {
				v.Set(k, val)
			}
			_, err := FromViper(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFromViper_ProductionValid(t *testing.T) {
	v := viper.New()
	v.Set("app.env", "production")
	v.Set("database.password", "secure-password")
	v.Set("database.sslmode", "require")

	_, err := FromViper(v)
	assert.NoError(t, err)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "qms", Password: "p@ss word", DBName: "qms", SSLMode: "disable"}
	assert.Equal(t, "postgres://qms:p%40ss%20word@db:5432/qms?sslmode=disable", d.DSN())
}

func TestRedisConfig_Addr(t *testing.T) {
	assert.Equal(t, "cache:6380", RedisConfig{Host: "cache", Port: 6380}.Addr())
}
