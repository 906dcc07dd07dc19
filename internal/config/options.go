// Package config loads roper's INI configuration file (spec.md section 6)
// and applies environment-variable overrides. Grounded on
// baldhumanity-neat-go/neat/config.go (gopkg.in/ini.v1, struct tags,
// Section(...).MapTo(...)) for the loading shape, and
// yaricom-goNEAT/neat/neat_options_readers.go (spf13/cast coercion,
// Validate()) for the env-override and validation conventions.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"gopkg.in/ini.v1"
)

// DefaultINIPath is used when ROPER_INI_PATH is unset.
const DefaultINIPath = ".roper_config/roper.ini"

// RandomConfig holds [Random] section keys.
type RandomConfig struct {
	Seed string `ini:"seed"`
}

// BinaryConfig holds [Binary] section keys.
type BinaryConfig struct {
	Path string `ini:"path"`
}

// SelectionConfig holds [Selection] section keys.
type SelectionConfig struct {
	TournamentSize      int     `ini:"tournament_size"`
	MateSelectionFactor float64 `ini:"mate_selection_factor"`
	SelectionWindowSize int     `ini:"selection_window_size"`
}

// MutationConfig holds [Mutation] section keys. The mask-related keys are
// additions over spec.md's literal INI schema (see SPEC_FULL.md's Open
// Question decisions): spec.md section 4.5 says the combiner is "selected
// from configuration," so it must live somewhere in this section.
type MutationConfig struct {
	PointwiseMutationRate float64 `ini:"pointwise_mutation_rate"`
	CrossoverDegree       float64 `ini:"crossover_degree"`
	CrossoverMaskMutRate  float64 `ini:"crossover_mask_mut_rate"`
	MaskCombiner          string  `ini:"mask_combiner"`
	MaskInheritance       string  `ini:"mask_inheritance"`
	CrossoverXbitPolarity bool    `ini:"crossover_xbit"`
}

// ConcurrencyConfig holds [Concurrency] section keys.
type ConcurrencyConfig struct {
	ChannelSize int `ini:"channel_size"`
	NumEngines  int `ini:"num_engines"`
}

// PopulationConfig holds [Population] section keys.
type PopulationConfig struct {
	PopulationSize    int `ini:"population_size"`
	MinCreatureLength int `ini:"min_creature_length"`
	MaxCreatureLength int `ini:"max_creature_length"`
}

// LoggingConfig holds [Logging] section keys.
type LoggingConfig struct {
	LogDirectory string `ini:"log_directory"`
	LogLevel     string `ini:"log_level"`
}

// Options is the fully-resolved configuration for one run: an INI file's
// contents, with environment overrides applied.
type Options struct {
	Random      RandomConfig
	Binary      BinaryConfig
	Selection   SelectionConfig
	Mutation    MutationConfig
	Concurrency ConcurrencyConfig
	Population  PopulationConfig
	Logging     LoggingConfig

	// StressLoad multiplies PopulationSize, from ROPER_STRESS_LOAD -- see
	// SPEC_FULL.md EXP-5.
	StressLoad int
	// Loops bounds how many times the top-level pond drains and refills
	// before exiting, from ROPER_LOOPS; 0 means run forever.
	Loops int
}

func defaults() Options {
	return Options{
		Selection: SelectionConfig{
			TournamentSize:      32,
			MateSelectionFactor: 1.0,
			SelectionWindowSize: 15,
		},
		Mutation: MutationConfig{
			PointwiseMutationRate: 0.01,
			CrossoverDegree:       0.5,
			CrossoverMaskMutRate:  0.01,
			MaskCombiner:          "and",
			MaskInheritance:       "uniform",
			CrossoverXbitPolarity: true,
		},
		Concurrency: ConcurrencyConfig{
			ChannelSize: 1,
			NumEngines:  16,
		},
		Population: PopulationConfig{
			PopulationSize:    4096,
			MinCreatureLength: 2,
			MaxCreatureLength: 2,
		},
		Logging: LoggingConfig{
			LogDirectory: "./logs",
			LogLevel:     "info",
		},
		StressLoad: 1,
	}
}

// Load reads the INI file at path, applies environment overrides, validates
// the result, and initializes logging.
func Load(path string) (*Options, error) {
	opts := defaults()

	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment: true,
	}, path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load config file %q", path)
	}

	if err := cfg.Section("Random").MapTo(&opts.Random); err != nil {
		return nil, errors.Wrap(err, "failed to map [Random] section")
	}
	if err := cfg.Section("Binary").MapTo(&opts.Binary); err != nil {
		return nil, errors.Wrap(err, "failed to map [Binary] section")
	}
	if err := cfg.Section("Selection").MapTo(&opts.Selection); err != nil {
		return nil, errors.Wrap(err, "failed to map [Selection] section")
	}
	if err := cfg.Section("Mutation").MapTo(&opts.Mutation); err != nil {
		return nil, errors.Wrap(err, "failed to map [Mutation] section")
	}
	if err := cfg.Section("Concurrency").MapTo(&opts.Concurrency); err != nil {
		return nil, errors.Wrap(err, "failed to map [Concurrency] section")
	}
	if err := cfg.Section("Population").MapTo(&opts.Population); err != nil {
		return nil, errors.Wrap(err, "failed to map [Population] section")
	}
	if err := cfg.Section("Logging").MapTo(&opts.Logging); err != nil {
		return nil, errors.Wrap(err, "failed to map [Logging] section")
	}

	applyEnvOverrides(&opts)

	if err := InitLogger(opts.Logging.LogLevel); err != nil {
		return nil, errors.Wrap(err, "failed to initialize logger")
	}

	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid roper options")
	}

	return &opts, nil
}

// applyEnvOverrides mirrors yaricom-goNEAT's cast.To*-based coercion of
// string-valued environment variables onto typed fields.
func applyEnvOverrides(opts *Options) {
	if v, ok := os.LookupEnv("ROPER_BINARY"); ok {
		opts.Binary.Path = v
	}
	if v, ok := os.LookupEnv("ROPER_ENGINES"); ok {
		opts.Concurrency.NumEngines = cast.ToInt(v)
	}
	if v, ok := os.LookupEnv("ROPER_STRESS_LOAD"); ok {
		opts.StressLoad = cast.ToInt(v)
	}
	if v, ok := os.LookupEnv("ROPER_LOOPS"); ok {
		opts.Loops = cast.ToInt(v)
	}
}

// INIPath resolves ROPER_INI_PATH, defaulting to DefaultINIPath.
func INIPath() string {
	if v, ok := os.LookupEnv("ROPER_INI_PATH"); ok {
		return v
	}
	return DefaultINIPath
}

// Validate checks required fields and sane numeric ranges, per spec.md
// section 6's "required" annotations and section 4.5's tournament-size
// invariant (T >= 4).
func (o Options) Validate() error {
	if strings.TrimSpace(o.Random.Seed) == "" {
		return errors.New("[Random] seed is required")
	}
	if strings.TrimSpace(o.Binary.Path) == "" {
		return errors.New("[Binary] path is required (or set ROPER_BINARY)")
	}
	if o.Selection.TournamentSize < 4 {
		return errors.Errorf("tournament_size must be >= 4, got %d", o.Selection.TournamentSize)
	}
	if o.Selection.SelectionWindowSize < o.Selection.TournamentSize {
		return errors.Errorf("selection_window_size (%d) must be >= tournament_size (%d)",
			o.Selection.SelectionWindowSize, o.Selection.TournamentSize)
	}
	if o.Population.MinCreatureLength < 1 {
		return errors.New("min_creature_length must be >= 1")
	}
	if o.Population.MaxCreatureLength < o.Population.MinCreatureLength {
		return errors.New("max_creature_length must be >= min_creature_length")
	}
	if o.Concurrency.NumEngines < 1 {
		return errors.New("num_engines must be >= 1")
	}
	if o.Concurrency.ChannelSize < 1 {
		return errors.New("channel_size must be >= 1")
	}
	return nil
}

// Seed parses [Random] seed's whitespace-separated hex octets into a 32-byte
// seed, per original_source/src/par/statics.rs's RNG_SEED lazy static
// (pad/truncate to 32 bytes).
func (o Options) Seed() ([32]byte, error) {
	var seed [32]byte
	fields := strings.Fields(o.Random.Seed)
	for i := 0; i < len(fields) && i < 32; i++ {
		b, err := strconv.ParseUint(fields[i], 16, 8)
		if err != nil {
			return seed, errors.Wrapf(err, "failed to parse seed octet %q", fields[i])
		}
		seed[i] = byte(b)
	}
	return seed, nil
}

// EffectivePopulationSize applies StressLoad to Population.PopulationSize.
func (o Options) EffectivePopulationSize() int {
	load := o.StressLoad
	if load < 1 {
		load = 1
	}
	return o.Population.PopulationSize * load
}
