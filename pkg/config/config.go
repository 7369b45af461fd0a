// Package config loads mynt2koinly settings from an optional JSON file and
// the process environment.
package config

import (
	"fmt"
	"strings"

	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Defaults applied by ApplyDefaults.
const (
	DefaultOutput           = "extrato_mynt_koinly.csv"
	DefaultJSONOutput       = "extrato_mynt_koinly.json"
	DefaultXLSXOutput       = "extrato_mynt_koinly.xlsx"
	DefaultWriters          = "csv"
	DefaultBatchSize        = 10
	DefaultSheetName        = "Sheet1"
	DefaultClientSecretFile = "data/client_secret.json"
	DefaultTokenFile        = "data/token.json"
	DefaultPostgresPort     = 5432
	DefaultPostgresSSLMode  = "disable"
	// DefaultCRLF terminates CSV rows with "\r\n".
	DefaultCRLF = true
)

// Config holds the application configuration. Keys are identical in the
// JSON file and the environment; the environment wins.
type Config struct {
	// Input is the statement location: a path, s3://bucket/key or gs://bucket/object.
	Input string `koanf:"KOINLY_INPUT"`
	// Output is the CSV ledger path. "-" writes to stdout.
	Output string `koanf:"KOINLY_OUTPUT"`
	// Writers is a comma-separated list of writer plugin names.
	Writers string `koanf:"KOINLY_WRITERS"`
	// CRLF terminates CSV rows with "\r\n". Load defaults it to
	// DefaultCRLF when the key is absent.
	CRLF       bool   `koanf:"KOINLY_CRLF"`
	JSONOutput string `koanf:"KOINLY_JSON_OUTPUT"`
	XLSXOutput string `koanf:"KOINLY_XLSX_OUTPUT"`
	// BatchSize is the number of rows per remote write.
	BatchSize int `koanf:"KOINLY_BATCH_SIZE"`

	GSheetsTitle string `koanf:"GSHEETS_TITLE"`
	GSheetsID    string `koanf:"GSHEETS_ID"`
	GSheetsName  string `koanf:"GSHEETS_NAME"`

	// ClientSecretFile is the Google OAuth desktop client JSON.
	ClientSecretFile string `koanf:"GOOGLE_CLIENT_SECRET"`
	// TokenFile caches the OAuth token obtained by the setup command.
	TokenFile string `koanf:"GOOGLE_TOKEN_FILE"`

	PostgresDSN      string `koanf:"POSTGRES_DSN"`
	PostgresHost     string `koanf:"POSTGRES_HOST"`
	PostgresPort     int    `koanf:"POSTGRES_PORT"`
	PostgresDB       string `koanf:"POSTGRES_DB"`
	PostgresUser     string `koanf:"POSTGRES_USER"`
	PostgresPassword string `koanf:"POSTGRES_PASSWORD"`
	PostgresSSLMode  string `koanf:"POSTGRES_SSLMODE"`

	S3Region    string `koanf:"S3_REGION"`
	S3Endpoint  string `koanf:"S3_ENDPOINT"`
	S3AccessKey string `koanf:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `koanf:"S3_SECRET_ACCESS_KEY"`

	LogLevel  string `koanf:"LOG_LEVEL"`
	LogFormat string `koanf:"LOG_FORMAT"`
}

// Load reads the JSON file at path, when path is not empty, then overlays
// the environment and applies defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), kjson.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("", ".", nil), nil); err != nil {
		return nil, fmt.Errorf("loading config from environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if !k.Exists("KOINLY_CRLF") {
		cfg.CRLF = DefaultCRLF
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills every unset field that has a default.
func (c *Config) ApplyDefaults() {
	setDefault(&c.Output, DefaultOutput)
	setDefault(&c.Writers, DefaultWriters)
	setDefault(&c.JSONOutput, DefaultJSONOutput)
	setDefault(&c.XLSXOutput, DefaultXLSXOutput)
	setDefault(&c.GSheetsName, DefaultSheetName)
	setDefault(&c.ClientSecretFile, DefaultClientSecretFile)
	setDefault(&c.TokenFile, DefaultTokenFile)
	setDefault(&c.PostgresSSLMode, DefaultPostgresSSLMode)

	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.PostgresPort == 0 {
		c.PostgresPort = DefaultPostgresPort
	}
}

// WriterNames returns the selected writer plugins, trimmed, lower-cased and
// without duplicates, in the order given.
func (c *Config) WriterNames() []string {
	var names []string
	seen := make(map[string]bool)
	for _, n := range strings.Split(c.Writers, ",") {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		names = append(names, n)
	}
	return names
}

func setDefault(field *string, value string) {
	if strings.TrimSpace(*field) == "" {
		*field = value
	}
}
