package core_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/jsonpit/pkg/core"
)

// stepClock returns base, base+1s, base+2s, ...
func stepClock(base time.Time) core.ClockFunc {
	n := 0
	return func() time.Time {
		t := base.Add(time.Duration(n) * time.Second)
		n++
		return t
	}
}

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestItem_New(t *testing.T) {
	t.Run("Empty Name", func(t *testing.T) {
		_, err := core.NewItem("")
		assert.ErrorIs(t, err, core.ErrEmptyName)
		assert.Panics(t, func() { core.MustItem("") })
	})

	t.Run("Fixed Timestamp", func(t *testing.T) {
		ts := time.Date(2020, 5, 5, 0, 0, 0, 123, time.FixedZone("x", 3600))
		it := core.MustItem("Pit", core.WithTimestamp(ts))
		assert.True(t, it.Modified().Equal(ts))
		assert.Equal(t, time.UTC, it.Modified().Location())

		changed, err := it.Set("a", 1)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.True(t, it.Modified().Equal(ts), "pinned timestamp must not move")

		it.Touch()
		assert.True(t, it.Modified().After(ts))
	})

	t.Run("Name Property Falls Back To Name", func(t *testing.T) {
		it := core.MustItem("Quote")
		v, ok := it.Get("Name")
		require.True(t, ok)
		s, _ := v.Str()
		assert.Equal(t, "Quote", s)
	})

	t.Run("From Map", func(t *testing.T) {
		it, err := core.NewItemFrom("q", map[string]any{"Price": 10}, core.WithNote("feed"))
		require.NoError(t, err)
		v, ok := it.Get("Price")
		require.True(t, ok)
		i, _ := v.Int()
		assert.Equal(t, int64(10), i)
		assert.Equal(t, "feed", it.Note())
	})

	t.Run("From Non Object", func(t *testing.T) {
		_, err := core.NewItemFrom("q", []int{1})
		assert.ErrorIs(t, err, core.ErrNotObject)
	})
}

func TestItem_SetProperty(t *testing.T) {
	newItem := func() *core.Item {
		it, err := core.NewItemFrom("q", `{"Price":100,"Info":{"Exchange":"X","Levels":[1,2]}}`,
			core.WithClock(stepClock(base)))
		require.NoError(t, err)
		return it
	}

	t.Run("Unchanged Value Keeps Modified", func(t *testing.T) {
		it := newItem()
		before := it.Modified()

		changed, err := it.SetProperty(map[string]any{"Price": 100.0})
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, before, it.Modified())
	})

	t.Run("Nested Unchanged Keeps Modified", func(t *testing.T) {
		it := newItem()
		before := it.Modified()

		changed, err := it.SetProperty(`{"Info":{"Levels":[1,2],"Exchange":"X"}}`)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, before, it.Modified())
	})

	t.Run("Changed Value Advances Modified", func(t *testing.T) {
		it := newItem()
		before := it.Modified()

		changed, err := it.SetProperty(map[string]any{"Price": 101})
		require.NoError(t, err)
		assert.True(t, changed)
		assert.True(t, it.Modified().After(before))
	})

	t.Run("Nested Change Advances Modified", func(t *testing.T) {
		it := newItem()
		before := it.Modified()

		changed, err := it.SetProperty(`{"Info":{"Exchange":"X","Levels":[1,3]}}`)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.True(t, it.Modified().After(before))
	})

	t.Run("New Key With Unchanged Keys Advances", func(t *testing.T) {
		it := newItem()
		before := it.Modified()

		changed, err := it.SetProperty(map[string]any{"Price": 100, "Volume": 5})
		require.NoError(t, err)
		assert.True(t, changed)
		assert.True(t, it.Modified().After(before))
		assert.Equal(t, []string{"Price", "Info", "Volume"}, it.Keys())
	})

	t.Run("Non Object", func(t *testing.T) {
		it := newItem()
		_, err := it.SetProperty(`[1,2]`)
		assert.ErrorIs(t, err, core.ErrNotObject)
	})

	t.Run("Modified Advances Even If Clock Stalls", func(t *testing.T) {
		stalled := core.ClockFunc(func() time.Time { return base })
		it := core.MustItem("q", core.WithClock(stalled))
		before := it.Modified()
		_, err := it.Set("x", 1)
		require.NoError(t, err)
		assert.Equal(t, time.Nanosecond, it.Modified().Sub(before))
	})
}

func TestItem_Extend(t *testing.T) {
	t.Run("Array Last Write Wins", func(t *testing.T) {
		it, err := core.NewItemFrom("q", map[string]any{"Price": 7})
		require.NoError(t, err)

		changed, err := it.Extend([]byte(`[{"Bid":1},{"Bid":2,"Ask":9}]`))
		require.NoError(t, err)
		assert.True(t, changed)

		bid, _ := it.Get("Bid")
		ask, _ := it.Get("Ask")
		price, _ := it.Get("Price")
		assert.Equal(t, "2", bid.String())
		assert.Equal(t, "9", ask.String())
		assert.Equal(t, "7", price.String())
	})

	t.Run("Raw Fallback", func(t *testing.T) {
		it := core.MustItem("q")
		_, err := it.Extend([]byte(`[{"Bid":1}, 42, "hello"]`))
		require.NoError(t, err)

		raw, ok := it.Raw()
		require.True(t, ok)
		s, ok := raw.Str()
		require.True(t, ok)
		assert.Equal(t, "hello", s)
	})

	t.Run("Scalar Goes To Raw", func(t *testing.T) {
		it := core.MustItem("q")
		_, err := it.Extend([]byte(`3.5`))
		require.NoError(t, err)
		raw, _ := it.Raw()
		f, _ := raw.Float()
		assert.Equal(t, 3.5, f)
	})

	t.Run("Same Content Is No Op", func(t *testing.T) {
		it, err := core.ParseItem("q", []byte(`{"Bid":1}`), core.WithClock(stepClock(base)))
		require.NoError(t, err)
		before := it.Modified()

		changed, err := it.Extend([]byte(`[{"Bid":0},{"Bid":1}]`))
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, before, it.Modified())
	})

	t.Run("Invalid JSON Leaves Item Untouched", func(t *testing.T) {
		it, err := core.ParseItem("q", []byte(`{"Bid":1}`))
		require.NoError(t, err)
		before := it.Modified()

		_, err = it.Extend([]byte(`{"Bid":`))
		assert.Error(t, err)
		assert.Equal(t, before, it.Modified())
		assert.Equal(t, []string{"Bid"}, it.Keys())
	})
}

func TestItem_CloneAndEquality(t *testing.T) {
	it, err := core.NewItemFrom("q", map[string]any{"a": 1, "b": []any{"x"}}, core.WithNote("n1"))
	require.NoError(t, err)

	cp := it.Clone()
	assert.Equal(t, it.Name(), cp.Name())
	assert.Equal(t, it.Modified(), cp.Modified())
	assert.Equal(t, it.Note(), cp.Note())
	assert.True(t, it.ContentEqual(cp))

	cp.SetNote("other")
	assert.True(t, it.ContentEqual(cp), "notes are not content")

	_, err = cp.Set("a", 2)
	require.NoError(t, err)
	assert.False(t, it.ContentEqual(cp))
	v, _ := it.Get("a")
	assert.Equal(t, "1", v.String(), "clone must not share properties")

	tomb, err := core.NewTombstone("q", it.Properties(), time.Now())
	require.NoError(t, err)
	assert.False(t, tomb.ContentEqual(it))
	assert.True(t, tomb.Deleted())
}

func TestItem_Record(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 987654321, time.UTC)
	it, err := core.NewItemFrom("q", `{"z":1,"a":"x"}`, core.WithTimestamp(ts), core.WithNote("src"))
	require.NoError(t, err)

	data, err := json.Marshal(it)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"q","modified":"2024-01-02T03:04:05.987654321Z","note":"src","properties":{"z":1,"a":"x"}}`, string(data))

	var back core.Item
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Modified().Equal(ts))
	assert.True(t, back.ContentEqual(it))
	assert.False(t, back.Pinned())

	_, err = core.FromRecord(core.Record{Name: "q", Modified: "yesterday"})
	assert.ErrorIs(t, err, core.ErrCorrupt)
}

func TestItem_Decode(t *testing.T) {
	it, err := core.NewItemFrom("q", map[string]any{"Bid": 1.5, "Ask": 2})
	require.NoError(t, err)

	var q struct {
		Bid float64
		Ask int
	}
	require.NoError(t, it.Decode(&q))
	assert.Equal(t, 1.5, q.Bid)
	assert.Equal(t, 2, q.Ask)
}
