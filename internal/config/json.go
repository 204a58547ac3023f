package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/nodestore/internal/flagx"
	"github.com/dmitrijs2005/nodestore/internal/timex"
)

// JsonConfig mirrors Config for JSON unmarshalling. Durations use
// timex.Duration so both "5s" and integer nanoseconds are accepted.
// Absent keys leave the corresponding Config field untouched.
type JsonConfig struct {
	DatabaseDSN    *string         `json:"database_dsn"`
	SchemaSource   *string         `json:"schema_source"`
	SchemaDir      *string         `json:"schema_dir"`
	DecoratorsFile *string         `json:"decorators_file"`
	LogLevel       *string         `json:"log_level"`
	LogFormat      *string         `json:"log_format"`
	TxTimeout      *timex.Duration `json:"tx_timeout"`
	MetricsFile    *string         `json:"metrics_file"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flag into config. If no file is named nothing happens; an
// unreadable file or invalid JSON panics, as a broken config must stop startup.
func parseJson(config *Config, args []string) {
	jsonConfigFile := flagx.ConfigFileFlag(args)
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SchemaSource, c.SchemaSource)
	setString(&config.SchemaDir, c.SchemaDir)
	setString(&config.DecoratorsFile, c.DecoratorsFile)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)
	setString(&config.MetricsFile, c.MetricsFile)
	if c.TxTimeout != nil {
		config.TxTimeout = c.TxTimeout.Duration
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
