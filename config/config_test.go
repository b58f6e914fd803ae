package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/cartboost/booster"
	"github.com/YuminosukeSato/cartboost/gbm"
	"github.com/YuminosukeSato/cartboost/pkg/errors"
	"github.com/YuminosukeSato/cartboost/regularizer"
)

func TestDefault(t *testing.T) {
	re := require.New(t)
	c := Default()
	re.NoError(c.Validate())

	cfg, err := c.BoosterConfig(3)
	re.NoError(err)
	re.Equal(booster.DefaultConfig(3), cfg)

	re.Equal(gbm.DefaultMaxIter, c.Boost.MaxIter)
	re.Equal(gbm.DefaultTolerance, c.Boost.Tolerance)
	re.Equal("squared", c.Boost.Objective)
	re.Equal(TraversalBreadthFirst, c.Tree.Traversal)
	re.Equal("info", c.Log.Level)
	re.Equal(LogFormatConsole, c.Log.Format)
	re.Nil(c.Boost.MinValue)
}

func TestParseKeepsExplicitZero(t *testing.T) {
	re := require.New(t)
	c, err := Parse(`
[tree]
max-depth = 0
min-child-weight = 0.0
regularizer = "threshold_l1"
lambda = 0.5
traversal = "depth-first"

[boost]
max-iter = 7
objective = "logistic"
min-value = -1.0
max-value = 1.0

[log]
level = "debug"
format = "json"
`)
	re.NoError(err)
	re.Equal(0, c.Tree.MaxDepth)
	re.Equal(0.0, c.Tree.MinChildWeight)
	// untouched keys take defaults
	re.Equal(booster.DefaultLearningRate, c.Tree.LearningRate)
	re.Equal(gbm.DefaultValidEvery, c.Boost.ValidEvery)

	cfg, err := c.BoosterConfig(4)
	re.NoError(err)
	re.Equal(regularizer.ThresholdL1{Strength: 0.5}, cfg.Regularizer)
	re.Equal(4, cfg.NumFeature)

	opts, err := c.GBMOptions()
	re.NoError(err)
	g := gbm.New(opts...)
	re.Equal(7, g.MaxIter)
	re.Equal("logistic", g.Objective)
	re.Equal(booster.DepthFirst, g.Traversal)
	re.True(g.Clamp)
	re.Equal(-1.0, g.MinValue)
	re.Equal(1.0, g.MaxValue)
	re.Equal(0, g.MaxDepth)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		param string
	}{
		{"unknown key", "[tree]\ndepth = 3\n", "tree.depth"},
		{"negative depth", "[tree]\nmax-depth = -1\n", "MaxDepth"},
		{"zero learning rate", "[tree]\nlearning-rate = 0.0\n", "LearningRate"},
		{"negative lambda", "[tree]\nlambda = -2.0\n", "regularizer.lambda"},
		{"traversal", "[tree]\ntraversal = \"random\"\n", "tree.traversal"},
		{"max iter", "[boost]\nmax-iter = 0\n", "boost.max-iter"},
		{"tolerance", "[boost]\ntolerance = -0.1\n", "boost.tolerance"},
		{"valid every", "[boost]\nvalid-every = 0\n", "boost.valid-every"},
		{"half clamp", "[boost]\nmin-value = 1.0\n", "boost.min-value"},
		{"inverted clamp", "[boost]\nmin-value = 2.0\nmax-value = 1.0\n", "boost.min-value"},
		{"log level", "[log]\nlevel = \"loud\"\n", "log.level"},
		{"log format", "[log]\nformat = \"xml\"\n", "log.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re := require.New(t)
			_, err := Parse(tt.data)
			var ce *errors.ConfigurationError
			re.True(errors.As(err, &ce), "got %v", err)
			re.Equal(tt.param, ce.Param)
		})
	}

	t.Run("unknown names", func(t *testing.T) {
		re := require.New(t)
		_, err := Parse("[boost]\nobjective = \"poisson\"\n")
		re.True(errors.Is(err, errors.ErrUnknownName))
		_, err = Parse("[tree]\nregularizer = \"l0\"\n")
		re.True(errors.Is(err, errors.ErrUnknownName))
	})

	t.Run("syntax", func(t *testing.T) {
		_, err := Parse("[tree\n")
		require.Error(t, err)
	})
}

func TestLoad(t *testing.T) {
	re := require.New(t)
	path := filepath.Join(t.TempDir(), "train.toml")
	re.NoError(os.WriteFile(path, []byte("[boost]\nmax-iter = 3\n"), 0o600))

	c, err := Load(path)
	re.NoError(err)
	re.Equal(3, c.Boost.MaxIter)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	re.Error(err)
}
