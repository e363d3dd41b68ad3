package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/qri-io/diffx"
	"github.com/qri-io/diffx/decode"
	"github.com/spf13/cobra"
)

const (
	outputCLI     = "cli"
	outputJSON    = "json"
	outputYAML    = "yaml"
	outputUnified = "unified"
)

// options holds raw command line flag values
type options struct {
	format          string
	output          string
	path            string
	ignoreKeysRegex string
	arrayIDKey      string
	configPath      string
	epsilon         float64
	batchSize       int
	recursive       bool
	optimize        bool
	verbose         bool
}

func (o *options) addFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.format, "format", "f", "", "input format: json, yaml, toml, ini, xml or csv. inferred from file extensions when omitted")
	f.StringVarP(&o.output, "output", "o", "", "output format: cli, json, yaml or unified (default cli)")
	f.BoolVarP(&o.recursive, "recursive", "r", false, "compare two directories recursively")
	f.StringVar(&o.path, "path", "", `only report differences under this path, eg. "config.users[0].name"`)
	f.StringVar(&o.ignoreKeysRegex, "ignore-keys-regex", "", `ignore object keys matching this regular expression, eg. "^id$"`)
	f.Float64Var(&o.epsilon, "epsilon", 0, "tolerance for number comparisons, eg. 0.001")
	f.StringVar(&o.arrayIDKey, "array-id-key", "", `match array elements by this key instead of position, eg. "id"`)
	f.BoolVar(&o.optimize, "optimize", false, "compare large inputs in batches")
	f.IntVar(&o.batchSize, "batch-size", 0, fmt.Sprintf("children per batch with --optimize (default %d)", diffx.DefaultBatchSize))
	f.StringVar(&o.configPath, "config", "", "path to a TOML config file")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "log debug information to stderr")
}

// settings is the merged configuration. It doubles as the config file schema
type settings struct {
	Output                string   `toml:"output"`
	Format                string   `toml:"format"`
	Path                  string   `toml:"path"`
	IgnoreKeysRegex       string   `toml:"ignore_keys_regex"`
	Epsilon               *float64 `toml:"epsilon"`
	ArrayIDKey            string   `toml:"array_id_key"`
	UseMemoryOptimization bool     `toml:"use_memory_optimization"`
	BatchSize             int      `toml:"batch_size"`
}

// resolve merges configuration sources, later ones winning: config file,
// environment, command line flags
func (o *options) resolve(cmd *cobra.Command, log *slog.Logger) (settings, error) {
	s, err := loadConfigFile(o.configPath, log)
	if err != nil {
		return s, err
	}
	if err := s.applyEnv(os.LookupEnv); err != nil {
		return s, err
	}
	s.applyFlags(o, cmd.Flags().Changed)

	if s.Output == "" {
		s.Output = outputCLI
	}
	switch s.Output {
	case outputCLI, outputJSON, outputYAML, outputUnified:
	default:
		return s, fmt.Errorf("unknown output format %q, expected one of cli, json, yaml, unified", s.Output)
	}
	if s.Format != "" {
		if _, err := decode.ParseFormat(s.Format); err != nil {
			return s, err
		}
	}
	return s, nil
}

// loadConfigFile reads an explicitly named config file, failing if it can't.
// Otherwise the first existing default location is used and a broken file
// there only produces a warning
func loadConfigFile(explicit string, log *slog.Logger) (settings, error) {
	var s settings
	if explicit != "" {
		if _, err := toml.DecodeFile(explicit, &s); err != nil {
			return settings{}, fmt.Errorf("reading config file %s: %w", explicit, err)
		}
		log.Debug("loaded config file", "path", explicit)
		return s, nil
	}

	for _, path := range configCandidates() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if _, err := toml.DecodeFile(path, &s); err != nil {
			log.Warn("could not parse config file", "path", path, "err", err)
			return settings{}, nil
		}
		log.Debug("loaded config file", "path", path)
		return s, nil
	}
	return s, nil
}

func configCandidates() []string {
	if p := os.Getenv("DIFFX_CONFIG_PATH"); p != "" {
		return []string{p}
	}
	var paths []string
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "diffx", "config.toml"))
	}
	return append(paths, ".diffx.toml")
}

func (s *settings) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("DIFFX_OUTPUT"); ok {
		s.Output = v
	}
	if v, ok := lookup("DIFFX_FORMAT"); ok {
		s.Format = v
	}
	if v, ok := lookup("DIFFX_IGNORE_KEYS_REGEX"); ok {
		s.IgnoreKeysRegex = v
	}
	if v, ok := lookup("DIFFX_ARRAY_ID_KEY"); ok {
		s.ArrayIDKey = v
	}
	if v, ok := lookup("DIFFX_EPSILON"); ok {
		eps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("DIFFX_EPSILON: %w", err)
		}
		s.Epsilon = &eps
	}
	if v, ok := lookup("DIFFX_OPTIMIZE"); ok {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("DIFFX_OPTIMIZE: %w", err)
		}
		s.UseMemoryOptimization = on
	}
	if v, ok := lookup("DIFFX_BATCH_SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DIFFX_BATCH_SIZE: %w", err)
		}
		s.BatchSize = n
	}
	return nil
}

func (s *settings) applyFlags(o *options, changed func(name string) bool) {
	if changed("output") {
		s.Output = o.output
	}
	if changed("format") {
		s.Format = o.format
	}
	if changed("path") {
		s.Path = o.path
	}
	if changed("ignore-keys-regex") {
		s.IgnoreKeysRegex = o.ignoreKeysRegex
	}
	if changed("array-id-key") {
		s.ArrayIDKey = o.arrayIDKey
	}
	if changed("epsilon") {
		eps := o.epsilon
		s.Epsilon = &eps
	}
	if changed("optimize") {
		s.UseMemoryOptimization = o.optimize
	}
	if changed("batch-size") {
		s.BatchSize = o.batchSize
	}
}

func (s settings) diffOptions() []diffx.Option {
	opts := []diffx.Option{
		diffx.OptionIgnoreKeysRegex(s.IgnoreKeysRegex),
		diffx.OptionArrayIDKey(s.ArrayIDKey),
		diffx.OptionMemoryOptimization(s.UseMemoryOptimization),
		diffx.OptionBatchSize(s.BatchSize),
	}
	if s.Epsilon != nil {
		opts = append(opts, diffx.OptionEpsilon(*s.Epsilon))
	}
	return opts
}
