package table_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/ember/lang/table"
	"github.com/mna/ember/lang/value"
)

func TestSetGetDelete(t *testing.T) {
	var tb table.Table
	key := value.NewString("answer")

	isNew := tb.Set(key, value.Number(42), false)
	assert.True(t, isNew)

	v, isConst, ok := tb.Get(key)
	require.True(t, ok)
	assert.False(t, isConst)
	assert.Equal(t, value.Number(42), v)

	isNew = tb.Set(key, value.Number(43), false)
	assert.False(t, isNew, "overwriting an existing key is not a new key")

	v, _, ok = tb.Get(key)
	require.True(t, ok)
	assert.Equal(t, value.Number(43), v)

	assert.True(t, tb.Delete(key))
	_, _, ok = tb.Get(key)
	assert.False(t, ok)

	// deleting again finds nothing but must not crash the probe chain
	assert.False(t, tb.Delete(key))
}

func TestConstFlagRoundtrips(t *testing.T) {
	var tb table.Table
	key := value.NewString("pi")
	tb.Set(key, value.Number(3.14), true)

	_, isConst, ok := tb.Get(key)
	require.True(t, ok)
	assert.True(t, isConst)
}

func TestTombstoneKeepsProbeChainIntact(t *testing.T) {
	var tb table.Table
	keys := make([]*value.String, 0, 20)
	for i := 0; i < 20; i++ {
		k := value.NewString(fmt.Sprintf("key%d", i))
		keys = append(keys, k)
		tb.Set(k, value.Number(float64(i)), false)
	}

	// delete every other key, leaving tombstones interleaved with live
	// entries so a later lookup must probe past them correctly.
	for i := 0; i < len(keys); i += 2 {
		require.True(t, tb.Delete(keys[i]))
	}
	for i, k := range keys {
		v, _, ok := tb.Get(k)
		if i%2 == 0 {
			assert.False(t, ok, "key%d should have been deleted", i)
		} else {
			require.True(t, ok, "key%d should still be present", i)
			assert.Equal(t, value.Number(float64(i)), v)
		}
	}
}

func TestFindStringMatchesByContentAndHash(t *testing.T) {
	var tb table.Table
	s := value.NewString("hello")
	tb.Set(s, value.Bool(true), false)

	// FindString, unlike Get, locates a live key by content and hash alone
	// (with no pre-existing pointer in hand): it is the primitive string
	// interning itself is built on.
	found := tb.FindString("hello", s.Hash)
	require.NotNil(t, found)
	assert.Same(t, s, found)

	assert.Nil(t, tb.FindString("goodbye", value.FNVHash("goodbye")))
}

func TestGrowthAcrossManyEntries(t *testing.T) {
	var tb table.Table
	const n = 500
	keys := make([]*value.String, n)
	for i := 0; i < n; i++ {
		keys[i] = value.NewString(fmt.Sprintf("k%d", i))
		tb.Set(keys[i], value.Number(float64(i)), false)
	}
	// Get is keyed by pointer identity, as string interning guarantees: the
	// same *value.String used at Set time must be used to look it back up.
	for i, k := range keys {
		v, _, ok := tb.Get(k)
		require.True(t, ok)
		assert.Equal(t, value.Number(float64(i)), v)
	}
}
