package model

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/cartboost/pkg/errors"
)

type fakeModel struct {
	BaseEstimator
	Weights []float64
	Name    string
}

func TestBaseEstimatorState(t *testing.T) {
	var m fakeModel
	assert.False(t, m.IsFitted())

	err := m.CheckFitted("fake", "Predict")
	var nf *errors.NotFittedError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "Predict", nf.Method)

	m.SetFitted()
	assert.NoError(t, m.CheckFitted("fake", "Predict"))
	m.Reset()
	assert.False(t, m.IsFitted())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	m := &fakeModel{Weights: []float64{0.5, -1}, Name: "ens"}
	m.SetFitted()

	path := filepath.Join(t.TempDir(), "model.gob")
	require.NoError(t, SaveModel("fake", m, path))

	var got fakeModel
	require.NoError(t, LoadModel("fake", &got, path))
	assert.Equal(t, *m, got)
	assert.True(t, got.IsFitted())
}

func TestLoadRejectsOtherKind(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SaveModelToWriter("fake", &fakeModel{}, &buf))

	var got fakeModel
	err := LoadModelFromReader("other", &got, &buf)
	var ve *errors.ValueError
	assert.True(t, errors.As(err, &ve))
}

func TestLoadMissingFile(t *testing.T) {
	var got fakeModel
	assert.Error(t, LoadModel("fake", &got, filepath.Join(t.TempDir(), "missing.gob")))
}
