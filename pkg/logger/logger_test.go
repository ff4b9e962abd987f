package logger

import (
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_LevelAndFormatter(t *testing.T) {
	l := log.New()
	require.NoError(t, Init(l, Config{Level: "debug", Formatter: "json"}))
	assert.Equal(t, log.DebugLevel, l.GetLevel())
	assert.IsType(t, &log.JSONFormatter{}, l.Formatter)

	l = log.New()
	require.NoError(t, Init(l, Config{}))
	assert.Equal(t, log.InfoLevel, l.GetLevel())
	assert.IsType(t, &log.TextFormatter{}, l.Formatter)

	assert.Error(t, Init(log.New(), Config{Level: "loud"}))
}

func TestInit_File(t *testing.T) {
	dir := t.TempDir()
	l := log.New()
	require.NoError(t, Init(l, Config{Dir: dir, File: "cidash-{HOSTNAME}.log", MaxSizeMB: 1}))
	l.Info("hello")

	hostname, err := os.Hostname()
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, "cidash-"+hostname+".log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}
