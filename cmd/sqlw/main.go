// Command sqlw runs statements against a SQLite database file through the
// internal/sqlite wrapper.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/n1/sqlitewrap/internal/log"
	"github.com/n1/sqlitewrap/internal/sqlite"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

const version = "0.1.0-dev"

// Config represents the options shared by every sqlw command.
type Config struct {
	// LogLevel is the logging level.
	LogLevel string
	// ReadOnly opens databases without write access.
	ReadOnly bool
	// NoCreate refuses to create a database file that does not exist.
	NoCreate bool
	// VFS names the engine VFS to open with; empty selects the default.
	VFS string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		LogLevel: "warn",
	}
}

// OpenFlags maps the configuration onto engine open flags.
func (c Config) OpenFlags() sqlite.OpenFlags {
	if c.ReadOnly {
		return sqlite.OpenReadOnly
	}
	flags := sqlite.OpenReadWrite
	if !c.NoCreate {
		flags |= sqlite.OpenCreate
	}
	return flags
}

// openDB opens path with the configured flags and VFS.
func openDB(config *Config, path string) (*sqlite.Conn, error) {
	conn := new(sqlite.Conn)
	if err := conn.OpenV2(path, config.OpenFlags(), config.VFS); err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	log.Debug().Str("path", path).Stringer("flags", config.OpenFlags()).Msg("Database opened")
	return conn, nil
}

// newApp builds the command tree around config, writing results to out.
func newApp(config *Config, out io.Writer) *cli.App {
	return &cli.App{
		Name:                      "sqlw",
		Usage:                     "run SQL against a SQLite database",
		Version:                   version,
		Writer:                    out,
		DisableSliceFlagSeparator: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Aliases:     []string{"l"},
				Usage:       "Logging level (debug, info, warn, error)",
				Value:       config.LogLevel,
				EnvVars:     []string{"SQLW_LOG_LEVEL"},
				Destination: &config.LogLevel,
			},
			&cli.BoolFlag{
				Name:        "read-only",
				Aliases:     []string{"r"},
				Usage:       "Open the database read-only",
				EnvVars:     []string{"SQLW_READ_ONLY"},
				Destination: &config.ReadOnly,
			},
			&cli.BoolFlag{
				Name:        "no-create",
				Usage:       "Fail instead of creating a missing database file",
				EnvVars:     []string{"SQLW_NO_CREATE"},
				Destination: &config.NoCreate,
			},
			&cli.StringFlag{
				Name:        "vfs",
				Usage:       "Engine VFS to open the database with",
				EnvVars:     []string{"SQLW_VFS"},
				Destination: &config.VFS,
			},
		},
		Before: func(c *cli.Context) error {
			level, err := zerolog.ParseLevel(config.LogLevel)
			if err != nil {
				return fmt.Errorf("invalid log level: %w", err)
			}
			log.SetLevel(level)
			return nil
		},
		Commands: []*cli.Command{
			execCommand(config),
			queryCommand(config),
			existsCommand(config),
			infoCommand(config),
		},
	}
}

func main() {
	config := DefaultConfig()
	app := newApp(&config, os.Stdout)

	if err := app.Run(os.Args); err != nil {
		log.Error().Err(err).Msg("sqlw failed")
		os.Exit(1)
	}
}
