package diffx

import (
	"errors"
	"fmt"
	"math"
	"regexp"
)

const (
	// DefaultBatchSize is the number of children handled per unit of work when
	// memory optimization is on
	DefaultBatchSize = 1000
	// DefaultMemoryLimit is the estimated combined size of both trees, in bytes,
	// above which a Differ switches to batched comparison on its own
	DefaultMemoryLimit = 100 << 20
)

// ErrInvalidConfig is returned by New when options can't form a usable
// configuration
var ErrInvalidConfig = errors.New("invalid diff configuration")

// Config are any possible configuration parameters for calculating diffs
type Config struct {
	// Object keys matching this regular expression are skipped at every depth,
	// along with everything below them
	IgnoreKeysRegex string
	// Numeric tolerance. Two numbers are equal when their absolute difference
	// is strictly less than *Epsilon. nil disables the tolerance
	Epsilon *float64
	// Array elements that are objects holding this key are matched by the key's
	// value instead of by position
	ArrayIDKey string
	// Process large objects and arrays in batches of BatchSize children
	UseMemoryOptimization bool
	BatchSize             int
	// Estimated bytes above which batching is switched on regardless of
	// UseMemoryOptimization. zero or less disables the check
	MemoryLimit int
	// Provide a non-nil stats pointer & diff will populate it with data from
	// the diff process
	Stats *Stats
}

// Option is a function that adjusts a config, zero or more Options can be
// passed to New or Diff
type Option func(cfg *Config)

// OptionIgnoreKeysRegex skips object keys matching pattern
func OptionIgnoreKeysRegex(pattern string) Option {
	return func(cfg *Config) {
		cfg.IgnoreKeysRegex = pattern
	}
}

// OptionEpsilon sets a tolerance for number comparison
func OptionEpsilon(epsilon float64) Option {
	return func(cfg *Config) {
		cfg.Epsilon = &epsilon
	}
}

// OptionArrayIDKey matches array elements by the value of key
func OptionArrayIDKey(key string) Option {
	return func(cfg *Config) {
		cfg.ArrayIDKey = key
	}
}

// OptionMemoryOptimization turns batched comparison on or off
func OptionMemoryOptimization(on bool) Option {
	return func(cfg *Config) {
		cfg.UseMemoryOptimization = on
	}
}

// OptionBatchSize sets the number of children per batch
func OptionBatchSize(n int) Option {
	return func(cfg *Config) {
		cfg.BatchSize = n
	}
}

// OptionMemoryLimit sets the estimated size that triggers batching
func OptionMemoryLimit(bytes int) Option {
	return func(cfg *Config) {
		cfg.MemoryLimit = bytes
	}
}

// OptionSetStats will set the passed-in stats pointer when Diff is called
func OptionSetStats(st *Stats) Option {
	return func(cfg *Config) {
		cfg.Stats = st
	}
}

// Differ compares value trees under a validated configuration. A Differ is
// safe for concurrent use unless a Stats pointer is configured
type Differ struct {
	cfg Config
	cmp *comparator
}

// New validates options into a Differ. Configuration problems, like a
// malformed ignore pattern, are reported here and never during a comparison
func New(opts ...Option) (*Differ, error) {
	cfg := Config{
		BatchSize:   DefaultBatchSize,
		MemoryLimit: DefaultMemoryLimit,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	cmp := &comparator{epsilon: cfg.Epsilon, idKey: cfg.ArrayIDKey}
	if cfg.IgnoreKeysRegex != "" {
		re, err := regexp.Compile(cfg.IgnoreKeysRegex)
		if err != nil {
			return nil, fmt.Errorf("%w: ignore keys regex %q: %s", ErrInvalidConfig, cfg.IgnoreKeysRegex, err)
		}
		cmp.ignore = re
	}
	if cfg.Epsilon != nil && (*cfg.Epsilon < 0 || math.IsNaN(*cfg.Epsilon)) {
		return nil, fmt.Errorf("%w: epsilon must be a non-negative number, got %v", ErrInvalidConfig, *cfg.Epsilon)
	}
	if cfg.BatchSize < 0 {
		return nil, fmt.Errorf("%w: batch size must not be negative, got %d", ErrInvalidConfig, cfg.BatchSize)
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = DefaultBatchSize
	}

	return &Differ{cfg: cfg, cmp: cmp}, nil
}

// Config returns a copy of the configuration d was built with
func (d *Differ) Config() Config {
	return d.cfg
}

// Diff compares a to b, returning changes in discovery order. An empty result
// means the trees are equal
func (d *Differ) Diff(a, b Value) []Change {
	var changes []Change
	if !equal(a, b, d.cfg.Epsilon) {
		root := []op{{kind: opCompare, a: a, b: b}}
		if d.batched(a, b) {
			changes = d.cmp.runBatched(root, d.cfg.BatchSize)
		} else {
			changes = d.cmp.run(root)
		}
	}

	if d.cfg.Stats != nil {
		*d.cfg.Stats = calcStats(a, b, changes)
	}
	return changes
}

func (d *Differ) batched(a, b Value) bool {
	if d.cfg.UseMemoryOptimization {
		return true
	}
	if d.cfg.MemoryLimit > 0 {
		return exceedsMemoryLimit(a, b, d.cfg.MemoryLimit)
	}
	return false
}

// Diff computes the changes that turn a into b. The only possible error is an
// invalid configuration
func Diff(a, b Value, opts ...Option) ([]Change, error) {
	d, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return d.Diff(a, b), nil
}
