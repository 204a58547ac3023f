package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/nodestore/internal/flagx"
)

var settingFlags = []string{"-d", "-s", "-p", "-f", "-l", "-o", "-t", "-m"}

// CommandArgs returns args without the flags LoadConfigFromArgs consumes,
// the config file flag included.
func CommandArgs(args []string) []string {
	return flagx.StripArgs(args, append([]string{"-c", "-config", "--config"}, settingFlags...))
}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   PostgreSQL DSN
//	-s string   schema source: database, static or chain
//	-p string   directory with YAML NodeType definitions
//	-f string   YAML decorators file
//	-l string   log level
//	-o string   log format: json, text or zap
//	-t int      transaction timeout, seconds
//	-m string   Prometheus textfile to write metrics to
//
// Args are filtered with flagx.FilterArgs first, so subcommands and their
// own flags pass through untouched.
func parseFlags(config *Config, args []string) {
	filtered := flagx.FilterArgs(args, settingFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SchemaSource, "s", config.SchemaSource, "schema source")
	fs.StringVar(&config.SchemaDir, "p", config.SchemaDir, "schema directory")
	fs.StringVar(&config.DecoratorsFile, "f", config.DecoratorsFile, "decorators file")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "o", config.LogFormat, "log format")
	fs.StringVar(&config.MetricsFile, "m", config.MetricsFile, "metrics textfile")
	txTimeout := fs.Int("t", int(config.TxTimeout.Seconds()), "transaction timeout (in seconds)")

	if err := fs.Parse(filtered); err != nil {
		panic(err)
	}

	config.TxTimeout = time.Duration(*txTimeout) * time.Second
}
