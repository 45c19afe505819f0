package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	require.Equal(t, 100, cfg.ImportBatchSize)
	require.Equal(t, 5, cfg.APIMaxReqPerSec)
	require.Equal(t, 12, cfg.BcryptCost)
}

func TestLoadClampsImportBatchSize(t *testing.T) {
	t.Setenv("NACSOS_IMPORT_BATCH_SIZE", "0")
	require.Equal(t, 1, Load().ImportBatchSize)

	t.Setenv("NACSOS_IMPORT_BATCH_SIZE", "-5")
	require.Equal(t, 1, Load().ImportBatchSize)
}

func TestGetenvIntIgnoresGarbage(t *testing.T) {
	t.Setenv("NACSOS_API_MAX_RETRIES", "many")
	require.Equal(t, 5, Load().APIMaxRetries)
}
