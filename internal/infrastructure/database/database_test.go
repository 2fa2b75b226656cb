package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/janhq/surprise-api/internal/config"
)

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(&config.Config{
		DBPostgresqlWriteDSN: "postgres://u:p@localhost:5432/surprise",
		DBPostgresqlRead1DSN: "postgres://u:p@replica:5432/surprise",
		DBMaxIdleConns:       3,
		DBMaxOpenConns:       9,
		DBConnLifetime:       time.Minute,
	})
	assert.Equal(t, "postgres://u:p@localhost:5432/surprise", cfg.DSN)
	assert.Equal(t, "postgres://u:p@replica:5432/surprise", cfg.ReadDSN)
	assert.Equal(t, 3, cfg.MaxIdleConns)
	assert.Equal(t, 9, cfg.MaxOpenConns)
	assert.Equal(t, time.Minute, cfg.ConnMaxLifetime)
}

func TestConnect_EmptyDSN(t *testing.T) {
	_, err := Connect(Config{})
	assert.EqualError(t, err, "database DSN is empty")
}

func TestEnsureDatabaseExists_SkipsNonURLDSN(t *testing.T) {
	assert.NoError(t, ensureDatabaseExists("host=localhost user=postgres dbname=surprise"))
	assert.NoError(t, ensureDatabaseExists("postgres://localhost:5432/postgres"))
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, `"surprise"`, pqQuoteIdentifier("surprise"))
	assert.Equal(t, `"we""ird"`, pqQuoteIdentifier(`we"ird`))
}
