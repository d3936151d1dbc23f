package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli"

	protolite "github.com/lumera-tools/protolite"
	"github.com/lumera-tools/protolite/lumera"
)

var (
	// protoFlag loads extra schemas on top of the built-in lumera tables.
	protoFlag = cli.StringSliceFlag{
		Name:  "proto",
		Usage: "Load a .proto `[path]` (file or directory); may be repeated",
	}
	// configFlag points at the TOML codec configuration.
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "The `[path]` of the TOML codec configuration file",
	}
	logLevelFlag = cli.StringFlag{
		Name:  "log-level",
		Usage: "Log level: trace, debug, info, warn or error",
	}
)

// env carries the process streams and the state prepared by the app's
// Before hook for the commands.
type env struct {
	stdin  io.Reader
	stderr io.Writer
	log    zerolog.Logger
	proto  *protolite.Protolite
}

func main() {
	e := &env{stdin: os.Stdin, stderr: os.Stderr}
	e.log, _ = initLogger(zerolog.LevelInfoValue, os.Stderr)

	app := newApp(e, os.Stdout)
	if err := app.Run(os.Args); err != nil {
		e.log.Error().Err(err).Msg("protolite failed")
		os.Exit(1)
	}
}

func newApp(e *env, stdout io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "protolite"
	app.Usage = "Encode, decode and inspect protobuf wire data without generated code"
	app.Version = "v0.1.0"
	app.Writer = stdout
	app.ErrWriter = e.stderr
	app.Flags = []cli.Flag{protoFlag, configFlag, logLevelFlag}
	app.Before = func(c *cli.Context) error {
		return e.setup(c)
	}
	app.Commands = []cli.Command{
		encodeCommand(e),
		decodeCommand(e),
		inspectCommand(e),
		schemaCommand(e),
	}
	return app
}

// setup resolves the configuration and builds the codec for the commands.
func (e *env) setup(c *cli.Context) error {
	cfg, err := loadCodecConfig(c.String(configFlag.Name))
	if err != nil {
		return err
	}
	if c.IsSet(logLevelFlag.Name) {
		cfg.LogLevel = c.String(logLevelFlag.Name)
	}
	cfg.ProtoPaths = append(cfg.ProtoPaths, normalizePaths(c.StringSlice(protoFlag.Name))...)

	logger, err := initLogger(cfg.LogLevel, e.stderr)
	if err != nil {
		return err
	}
	e.log = logger

	e.proto, err = buildProtolite(cfg, logger)
	return err
}

func buildProtolite(cfg codecConfig, logger zerolog.Logger) (*protolite.Protolite, error) {
	p := protolite.New(
		protolite.WithWireOptions(cfg.wireOptions()),
		protolite.WithJSONOptions(cfg.jsonOptions()),
	)
	if err := p.Register(lumera.Files()...); err != nil {
		return nil, fmt.Errorf("register lumera tables: %w", err)
	}

	for _, path := range cfg.ProtoPaths {
		if err := p.LoadSchema(path); err != nil {
			return nil, fmt.Errorf("load schema %s: %w", path, err)
		}
		logger.Debug().Str("path", path).Msg("schema loaded")
	}

	logger.Debug().
		Int("messages", len(p.ListMessages())).
		Int("enums", len(p.ListEnums())).
		Int("max_depth", cfg.MaxDepth).
		Bool("accept_packed", cfg.AcceptPacked).
		Msg("codec ready")
	return p, nil
}
