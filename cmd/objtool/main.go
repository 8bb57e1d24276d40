// objtool is a CLI utility for inspecting, validating and rewriting Wavefront OBJ files.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/objkit/internal/config"
	"github.com/Faultbox/objkit/internal/logger"
	"github.com/Faultbox/objkit/pkg/encoding"
	"github.com/Faultbox/objkit/pkg/formats"
	"github.com/Faultbox/objkit/pkg/mesh"
)

var (
	errUsage        = errors.New("invalid usage")
	errOutputExists = errors.New("output file exists (use -overwrite)")
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}

	logger.Sugar.Debugf("Config: %+v", cfg)

	args := flag.Args()
	if len(args) < 1 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	if err := run(cfg, args[0], args[1:], os.Stdout); err != nil {
		logger.Error("command failed", zap.String("command", args[0]), zap.Error(err))
		logger.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, errUsage) {
			printUsage(os.Stderr)
		}
		os.Exit(1)
	}
	logger.Sync()
}

// run dispatches a command. Results go to w; diagnostics go to the logger.
func run(cfg *config.Config, command string, args []string, w io.Writer) error {
	switch command {
	case "info":
		return cmdInfo(cfg, args, w)
	case "validate", "check":
		return cmdValidate(cfg, args, w)
	case "convert", "rewrite":
		return cmdConvert(cfg, args, w)
	case "dump":
		return cmdDump(cfg, args, w)
	case "config":
		return cmdConfig(cfg, args, w)
	case "help", "-h", "--help":
		printUsage(w)
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `objtool - Wavefront OBJ utility

Usage:
  objtool [flags] <command> [options]

Commands:
  info <file.obj>                Show element counts
  validate <file.obj>            Check faces against the mesh attributes
  convert <in.obj> <out.obj>     Parse, validate and write a normalized OBJ file
  dump <file.obj>                Print the parsed mesh structure
  config init [path]             Write the current configuration as YAML
  config show                    Print the current configuration

Flags:
  -config <path>     Config file (default ./objtool.yaml, then user config dir)
  -encoding <name>   Charset of input files (utf-8, euc-kr, windows-1251, koi8-r, latin1)
  -overwrite         Allow convert to replace an existing file
  -debug             Enable debug logging
  -log-file <path>   Also log to a rotated file

Examples:
  objtool info model.obj
  objtool -encoding windows-1251 convert legacy.obj clean.obj`)
}

// loadMesh reads path, converts it from the configured charset and parses it.
func loadMesh(cfg *config.Config, path string) (*mesh.Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	data, err = encoding.DecodeToUTF8(data, cfg.Input.Encoding)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	m, err := formats.ParseOBJ(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	stats := m.Stats()
	logger.Debug("loaded mesh",
		zap.String("path", path),
		zap.Int("vertices", stats.Vertices),
		zap.Int("texcoords", stats.TexCoords),
		zap.Int("normals", stats.Normals),
		zap.Int("polygons", stats.Polygons))

	return m, nil
}

func cmdInfo(cfg *config.Config, args []string, w io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: objtool info <file.obj>", errUsage)
	}

	m, err := loadMesh(cfg, args[0])
	if err != nil {
		return err
	}

	stats := m.Stats()
	fmt.Fprintf(w, "File:                %s\n", args[0])
	fmt.Fprintf(w, "Vertices:            %d\n", stats.Vertices)
	fmt.Fprintf(w, "Texture coordinates: %d\n", stats.TexCoords)
	fmt.Fprintf(w, "Normals:             %d\n", stats.Normals)
	fmt.Fprintf(w, "Polygons:            %d\n", stats.Polygons)
	return nil
}

func cmdValidate(cfg *config.Config, args []string, w io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: objtool validate <file.obj>", errUsage)
	}

	m, err := loadMesh(cfg, args[0])
	if err != nil {
		return err
	}

	if err := formats.ValidateOBJ(m); err != nil {
		var verr *formats.ValidationError
		if errors.As(err, &verr) {
			logger.Debug("validation failed",
				zap.Int("polygon", verr.Face),
				zap.Stringer("attribute", verr.Attribute),
				zap.Int("component", verr.Component))
		}
		return fmt.Errorf("%s: %w", args[0], err)
	}

	fmt.Fprintf(w, "OK: %s\n", args[0])
	return nil
}

func cmdConvert(cfg *config.Config, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	overwrite := fs.Bool("f", cfg.Output.Overwrite, "Replace the output file if it exists")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	if fs.NArg() != 2 {
		return fmt.Errorf("%w: objtool convert [-f] <in.obj> <out.obj>", errUsage)
	}
	inPath, outPath := fs.Arg(0), fs.Arg(1)

	if _, err := os.Stat(outPath); err == nil {
		if !*overwrite {
			return fmt.Errorf("%s: %w", outPath, errOutputExists)
		}
		logger.Warn("replacing existing file", zap.String("output", outPath))
	}

	m, err := loadMesh(cfg, inPath)
	if err != nil {
		return err
	}

	if err := formats.WriteOBJFile(m, outPath); err != nil {
		return fmt.Errorf("saving %s: %w", outPath, err)
	}

	logger.Info("model saved", zap.String("input", inPath), zap.String("output", outPath))
	fmt.Fprintf(w, "Saved: %s (%d polygons)\n", outPath, len(m.Faces))
	return nil
}

func cmdDump(cfg *config.Config, args []string, w io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: objtool dump <file.obj>", errUsage)
	}

	m, err := loadMesh(cfg, args[0])
	if err != nil {
		return err
	}

	dumper := spew.NewDefaultConfig()
	dumper.DisableCapacities = true
	dumper.DisablePointerAddresses = true
	dumper.Fdump(w, m)
	return nil
}

func cmdConfig(cfg *config.Config, args []string, w io.Writer) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: objtool config <init|show>", errUsage)
	}

	switch args[0] {
	case "init":
		path := config.DefaultPath()
		if len(args) > 1 {
			path = args[1]
		}
		if err := cfg.SaveTo(path); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(w, "Config written: %s\n", path)
		return nil
	case "show":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(cfg)
	default:
		return fmt.Errorf("%w: unknown config command %q", errUsage, args[0])
	}
}
