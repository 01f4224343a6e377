package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultTestDBConfig(t *testing.T) {
	t.Setenv("TEST_DB_HOST", "")
	t.Setenv("TEST_DB_PORT", "")

	cfg := DefaultTestDBConfig()
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, "55432", cfg.Port)

	t.Setenv("TEST_DB_PORT", "5432")
	assert.Equal(t, "5432", DefaultTestDBConfig().Port)
}

func TestDSN(t *testing.T) {
	cfg := TestDBConfig{Host: "db", Port: "5432", User: "u", Password: "p@ss", DBName: "x", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss@db:5432/x?sslmode=disable", cfg.DSN())
}
