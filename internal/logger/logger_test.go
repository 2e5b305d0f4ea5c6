package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNewWritesToRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gigpay.log")
	log := New("production", Options{Level: "debug", File: path, MaxSizeMB: 1, MaxBackups: 1})

	require.Equal(t, zerolog.DebugLevel, log.GetLevel())
	log.Info().Str("op", "create-contract").Msg("engine operation")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"op":"create-contract"`)
	require.Contains(t, string(data), `"service":"gigpay"`)
}

func TestNewFallsBackToInfo(t *testing.T) {
	log := New("development", Options{Level: "chatty"})
	require.Equal(t, zerolog.InfoLevel, log.GetLevel())
}
