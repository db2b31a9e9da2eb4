package helper

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"health-rag/internal/config"
)

func TestGenerateUUIDIsUnique(t *testing.T) {
	a, err := GenerateUUID()
	require.NoError(t, err)
	b, err := GenerateUUID()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	_, err = uuid.Parse(a)
	assert.NoError(t, err)
}

func TestSetupLoggerWritesDailyFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	closer, err := SetupLogger(config.LogConfig{Level: "info", Dir: dir})
	require.NoError(t, err)

	log.Info().Str("component", "test").Msg("hello file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(filepath.Join(dir, time.Now().Format("2006-01-02")+".log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello file")
	assert.Contains(t, string(data), `"component":"test"`)
}
