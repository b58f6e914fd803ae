// Package config loads the TOML configuration of training runs.
//
// A configuration file has three sections:
//
//	[tree]
//	max-depth = 6
//	min-child-weight = 2.0
//	regularizer = "l2"
//	lambda = 1.0
//
//	[boost]
//	max-iter = 100
//	objective = "squared"
//
//	[log]
//	level = "info"
//	format = "console"
//
// Keys left out of the file take their defaults; keys set explicitly keep their
// value even when it is zero.
package config

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/YuminosukeSato/cartboost/booster"
	"github.com/YuminosukeSato/cartboost/gbm"
	"github.com/YuminosukeSato/cartboost/objective"
	"github.com/YuminosukeSato/cartboost/pkg/errors"
	"github.com/YuminosukeSato/cartboost/pkg/log"
	"github.com/YuminosukeSato/cartboost/regularizer"
)

// Traversal names accepted in [tree].
const (
	TraversalBreadthFirst = "breadth-first"
	TraversalDepthFirst   = "depth-first"
)

// Log formats accepted in [log].
const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)

const (
	defaultTraversal = TraversalBreadthFirst
	defaultLogLevel  = "info"
	defaultLogFormat = LogFormatConsole
)

// Config is the whole configuration file.
type Config struct {
	Tree  TreeConfig  `toml:"tree" json:"tree"`
	Boost BoostConfig `toml:"boost" json:"boost"`
	Log   LogConfig   `toml:"log" json:"log"`
}

// TreeConfig holds the per-tree parameters.
type TreeConfig struct {
	MaxDepth       int     `toml:"max-depth" json:"max-depth"`
	MinChildWeight float64 `toml:"min-child-weight" json:"min-child-weight"`
	MinSplitLoss   float64 `toml:"min-split-loss" json:"min-split-loss"`
	Epsilon        float64 `toml:"epsilon" json:"epsilon"`
	LearningRate   float64 `toml:"learning-rate" json:"learning-rate"`
	Regularizer    string  `toml:"regularizer" json:"regularizer"`
	Lambda         float64 `toml:"lambda" json:"lambda"`
	Traversal      string  `toml:"traversal" json:"traversal"`
}

// BoostConfig holds the parameters of the boosting loop.
type BoostConfig struct {
	MaxIter    int     `toml:"max-iter" json:"max-iter"`
	Tolerance  float64 `toml:"tolerance" json:"tolerance"`
	Objective  string  `toml:"objective" json:"objective"`
	ValidEvery int     `toml:"valid-every" json:"valid-every"`
	// MinValue and MaxValue bound predictions when both are set.
	MinValue *float64 `toml:"min-value" json:"min-value"`
	MaxValue *float64 `toml:"max-value" json:"max-value"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string `toml:"level" json:"level"`
	Format string `toml:"format" json:"format"`
}

// metaData tests whether keys are defined below a section.
type metaData struct {
	meta *toml.MetaData
	path []string
}

func (m *metaData) IsDefined(key string) bool {
	if m.meta == nil {
		return false
	}
	keys := append(append([]string(nil), m.path...), key)
	return m.meta.IsDefined(keys...)
}

func (m *metaData) Child(path ...string) *metaData {
	return &metaData{meta: m.meta, path: append(append([]string(nil), m.path...), path...)}
}

func (m *metaData) checkUndecoded() error {
	if m.meta == nil {
		return nil
	}
	undecoded := m.meta.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}
	keys := make([]string, len(undecoded))
	for i, k := range undecoded {
		keys[i] = k.String()
	}
	return errors.NewConfigurationError(keys[0], "unknown configuration key", strings.Join(keys, ", "))
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	c := &Config{}
	c.Adjust(nil)
	return c
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config %s", path)
	}
	c, err := Parse(string(data))
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return c, nil
}

// Parse decodes and validates TOML text.
func Parse(data string) (*Config, error) {
	c := &Config{}
	meta, err := toml.Decode(data, c)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}
	md := &metaData{meta: &meta}
	if err := md.checkUndecoded(); err != nil {
		return nil, err
	}
	c.Adjust(&meta)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Adjust fills in defaults for keys that meta does not define. A nil meta
// defines nothing.
func (c *Config) Adjust(meta *toml.MetaData) {
	md := &metaData{meta: meta}
	c.Tree.adjust(md.Child("tree"))
	c.Boost.adjust(md.Child("boost"))
	c.Log.adjust(md.Child("log"))
}

func (c *TreeConfig) adjust(meta *metaData) {
	if !meta.IsDefined("max-depth") {
		c.MaxDepth = booster.DefaultMaxDepth
	}
	if !meta.IsDefined("min-child-weight") {
		c.MinChildWeight = booster.DefaultMinChildWeight
	}
	if !meta.IsDefined("min-split-loss") {
		c.MinSplitLoss = booster.DefaultMinSplitLoss
	}
	if !meta.IsDefined("epsilon") {
		c.Epsilon = booster.DefaultEpsilon
	}
	if !meta.IsDefined("learning-rate") {
		c.LearningRate = booster.DefaultLearningRate
	}
	if !meta.IsDefined("regularizer") {
		c.Regularizer = regularizer.NameL2
	}
	if !meta.IsDefined("lambda") {
		c.Lambda = booster.DefaultLambda
	}
	if !meta.IsDefined("traversal") {
		c.Traversal = defaultTraversal
	}
}

func (c *BoostConfig) adjust(meta *metaData) {
	if !meta.IsDefined("max-iter") {
		c.MaxIter = gbm.DefaultMaxIter
	}
	if !meta.IsDefined("tolerance") {
		c.Tolerance = gbm.DefaultTolerance
	}
	if !meta.IsDefined("objective") {
		c.Objective = objective.NameSquared
	}
	if !meta.IsDefined("valid-every") {
		c.ValidEvery = gbm.DefaultValidEvery
	}
}

func (c *LogConfig) adjust(meta *metaData) {
	if !meta.IsDefined("level") {
		c.Level = defaultLogLevel
	}
	if !meta.IsDefined("format") {
		c.Format = defaultLogFormat
	}
}

// Validate checks every section. Tree parameters are checked the same way the
// booster checks them.
func (c *Config) Validate() error {
	if _, err := c.BoosterConfig(1); err != nil {
		return err
	}
	if _, err := c.traversal(); err != nil {
		return err
	}
	if _, err := objective.CreateObjectiveFunction(c.Boost.Objective); err != nil {
		return err
	}
	switch {
	case c.Boost.MaxIter <= 0:
		return errors.NewConfigurationError("boost.max-iter", "must be positive", c.Boost.MaxIter)
	case c.Boost.Tolerance < 0:
		return errors.NewConfigurationError("boost.tolerance", "must be non-negative", c.Boost.Tolerance)
	case c.Boost.ValidEvery <= 0:
		return errors.NewConfigurationError("boost.valid-every", "must be positive", c.Boost.ValidEvery)
	case (c.Boost.MinValue == nil) != (c.Boost.MaxValue == nil):
		return errors.NewConfigurationError("boost.min-value", "min-value and max-value must be set together", nil)
	case c.Boost.MinValue != nil && *c.Boost.MinValue > *c.Boost.MaxValue:
		return errors.NewConfigurationError("boost.min-value", "must not exceed max-value", *c.Boost.MinValue)
	}
	if _, err := log.ToLogLevel(c.Log.Level); err != nil {
		return errors.NewConfigurationError("log.level", err.Error(), c.Log.Level)
	}
	if c.Log.Format != LogFormatJSON && c.Log.Format != LogFormatConsole {
		return errors.NewConfigurationError("log.format", "must be json or console", c.Log.Format)
	}
	return nil
}

func (c *Config) traversal() (booster.Traversal, error) {
	switch c.Tree.Traversal {
	case TraversalBreadthFirst:
		return booster.BreadthFirst, nil
	case TraversalDepthFirst:
		return booster.DepthFirst, nil
	default:
		return 0, errors.NewConfigurationError("tree.traversal", "must be breadth-first or depth-first", c.Tree.Traversal)
	}
}

// BoosterConfig returns the tree parameters for numFeature features.
func (c *Config) BoosterConfig(numFeature int) (booster.Config, error) {
	reg, err := regularizer.ByName(c.Tree.Regularizer, c.Tree.Lambda)
	if err != nil {
		return booster.Config{}, err
	}
	cfg := booster.Config{
		MaxDepth:       c.Tree.MaxDepth,
		MinChildWeight: c.Tree.MinChildWeight,
		MinSplitLoss:   c.Tree.MinSplitLoss,
		Epsilon:        c.Tree.Epsilon,
		LearningRate:   c.Tree.LearningRate,
		NumFeature:     numFeature,
		Regularizer:    reg,
	}
	return cfg, cfg.Validate()
}

// GBMOptions returns the options that configure a gbm.GBM like c.
func (c *Config) GBMOptions() ([]gbm.Option, error) {
	trav, err := c.traversal()
	if err != nil {
		return nil, err
	}
	opts := []gbm.Option{
		gbm.WithMaxDepth(c.Tree.MaxDepth),
		gbm.WithMinChildWeight(c.Tree.MinChildWeight),
		gbm.WithMinSplitLoss(c.Tree.MinSplitLoss),
		gbm.WithEpsilon(c.Tree.Epsilon),
		gbm.WithLearningRate(c.Tree.LearningRate),
		gbm.WithRegularizer(c.Tree.Regularizer, c.Tree.Lambda),
		gbm.WithTraversal(trav),
		gbm.WithMaxIter(c.Boost.MaxIter),
		gbm.WithTolerance(c.Boost.Tolerance),
		gbm.WithObjective(c.Boost.Objective),
		gbm.WithValidEvery(c.Boost.ValidEvery),
	}
	if c.Boost.MinValue != nil && c.Boost.MaxValue != nil {
		opts = append(opts, gbm.WithClamp(*c.Boost.MinValue, *c.Boost.MaxValue))
	}
	return opts, nil
}
