package normalization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/webtree/internal/foundation/errors"
)

type mode string

const (
	modeFast mode = "fast"
	modeSafe mode = "safe"
)

func newModes() *Normalizer[mode] {
	return New("mode", map[string]mode{
		"fast":   modeFast,
		"quick":  modeFast,
		" Safe ": modeSafe,
	})
}

func TestNormalize(t *testing.T) {
	n := newModes()
	for raw, want := range map[string]mode{
		"fast":    modeFast,
		"FAST":    modeFast,
		" quick ": modeFast,
		"safe":    modeSafe,
		"SaFe":    modeSafe,
	} {
		got, err := n.Normalize(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
}

func TestNormalize_Unknown(t *testing.T) {
	_, err := newModes().Normalize("slow")
	require.Error(t, err)

	ce, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, ferrors.CategoryValidation, ce.Category())
	assert.Equal(t, "invalid mode", ce.Message())
	assert.Equal(t, "fast, quick, safe", ce.Context()["valid"])
}

func TestOr(t *testing.T) {
	n := newModes()
	assert.Equal(t, modeSafe, n.Or("", modeSafe))
	assert.Equal(t, modeSafe, n.Or("slow", modeSafe))
	assert.Equal(t, modeFast, n.Or("Quick", modeSafe))
}

func TestKeys_Copy(t *testing.T) {
	n := newModes()
	keys := n.Keys()
	keys[0] = "mutated"
	assert.Equal(t, []string{"fast", "quick", "safe"}, n.Keys())
}
