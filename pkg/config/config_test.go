package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, DefaultJSONOutput, cfg.JSONOutput)
	assert.Equal(t, DefaultXLSXOutput, cfg.XLSXOutput)
	assert.Equal(t, DefaultBatchSize, cfg.BatchSize)
	assert.Equal(t, DefaultSheetName, cfg.GSheetsName)
	assert.Equal(t, DefaultClientSecretFile, cfg.ClientSecretFile)
	assert.Equal(t, DefaultTokenFile, cfg.TokenFile)
	assert.Equal(t, DefaultPostgresPort, cfg.PostgresPort)
	assert.Equal(t, DefaultPostgresSSLMode, cfg.PostgresSSLMode)
	assert.True(t, cfg.CRLF)
}

func TestLoadCRLFOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"KOINLY_CRLF": false}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.CRLF)

	t.Setenv("KOINLY_CRLF", "true")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.CRLF)
}

func TestLoadFileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"KOINLY_INPUT": "mynt.pdf",
		"KOINLY_OUTPUT": "from-file.csv",
		"KOINLY_WRITERS": "csv,json",
		"KOINLY_BATCH_SIZE": 25,
		"POSTGRES_HOST": "db"
	}`), 0o600))

	t.Setenv("KOINLY_OUTPUT", "from-env.csv")
	t.Setenv("KOINLY_CRLF", "true")
	t.Setenv("POSTGRES_PORT", "6543")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "mynt.pdf", cfg.Input)
	assert.Equal(t, "from-env.csv", cfg.Output)
	assert.Equal(t, []string{"csv", "json"}, cfg.WriterNames())
	assert.Equal(t, 25, cfg.BatchSize)
	assert.True(t, cfg.CRLF)
	assert.Equal(t, "db", cfg.PostgresHost)
	assert.Equal(t, 6543, cfg.PostgresPort)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "loading config file")
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestWriterNames(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"csv", []string{"csv"}},
		{" CSV , xlsx,,csv ", []string{"csv", "xlsx"}},
		{"", nil},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			cfg := Config{Writers: tc.in}
			assert.Equal(t, tc.want, cfg.WriterNames())
		})
	}
}

func TestApplyDefaultsKeepsValues(t *testing.T) {
	cfg := Config{Output: "-", Writers: "sheets", BatchSize: 3, PostgresPort: 1}
	cfg.ApplyDefaults()

	assert.Equal(t, "-", cfg.Output)
	assert.Equal(t, "sheets", cfg.Writers)
	assert.Equal(t, 3, cfg.BatchSize)
	assert.Equal(t, 1, cfg.PostgresPort)
}
