package core_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/jsonpit/pkg/core"
)

func mustParse(t *testing.T, s string) core.Value {
	t.Helper()
	v, err := core.ParseJSON([]byte(s))
	require.NoError(t, err)
	return v
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name  string
		a, b  string
		equal bool
	}{
		{"int and float", `17320`, `17320.0`, true},
		{"different numbers", `1`, `2`, false},
		{"key order ignored", `{"a":1,"b":2}`, `{"b":2,"a":1}`, true},
		{"array order matters", `[1,2]`, `[2,1]`, false},
		{"nested change", `{"a":{"b":[1,{"c":true}]}}`, `{"a":{"b":[1,{"c":false}]}}`, false},
		{"nested equal", `{"a":{"b":[1,{"c":true}]}}`, `{"a":{"b":[1.0,{"c":true}]}}`, true},
		{"extra key", `{"a":1}`, `{"a":1,"b":null}`, false},
		{"kind mismatch", `"1"`, `1`, false},
		{"nulls", `null`, `null`, true},
		{"large int vs float", `9007199254740993`, `9007199254740992.0`, false},
		{"large int vs exponent", `9007199254740993`, `9.007199254740993e15`, true},
		{"decimal forms", `0.1`, `1e-1`, true},
		{"beyond int64", `12345678901234567890`, `12345678901234567891`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, core.Equal(mustParse(t, tt.a), mustParse(t, tt.b)))
		})
	}
}

func TestParseJSON(t *testing.T) {
	t.Run("Keeps Key Order And Number Text", func(t *testing.T) {
		v := mustParse(t, `{"z":1,"a":12345678901234567890,"m":1.50}`)
		data, err := json.Marshal(v)
		require.NoError(t, err)
		assert.Equal(t, `{"z":1,"a":12345678901234567890,"m":1.50}`, string(data))
	})

	t.Run("Rejects Trailing Data", func(t *testing.T) {
		_, err := core.ParseJSON([]byte(`{} {}`))
		assert.Error(t, err)
	})

	t.Run("Rejects Truncated Input", func(t *testing.T) {
		_, err := core.ParseJSON([]byte(`{"a":`))
		assert.Error(t, err)
	})
}

func TestValueOf(t *testing.T) {
	type quote struct {
		Bid float64 `json:"Bid"`
		Ask int     `json:"Ask"`
	}

	t.Run("Struct", func(t *testing.T) {
		v, err := core.ValueOf(quote{Bid: 1.5, Ask: 2})
		require.NoError(t, err)
		assert.True(t, core.Equal(mustParse(t, `{"Ask":2,"Bid":1.5}`), v))
	})

	t.Run("Map Any Any", func(t *testing.T) {
		v, err := core.ValueOf(map[any]any{"a": int8(3)})
		require.NoError(t, err)
		n, ok := v.Object()
		require.True(t, ok)
		a, _ := n.Get("a")
		i, ok := a.Int()
		require.True(t, ok)
		assert.Equal(t, int64(3), i)
	})

	t.Run("Unsupported", func(t *testing.T) {
		_, err := core.ValueOf(make(chan int))
		assert.ErrorIs(t, err, core.ErrUnsupportedValue)

		_, err = core.ValueOf(map[any]any{1: "x"})
		assert.ErrorIs(t, err, core.ErrUnsupportedValue)
	})

	t.Run("Interface", func(t *testing.T) {
		v := mustParse(t, `{"n":3,"f":2.5,"s":"x","l":[true,null]}`)
		assert.Equal(t, map[string]any{
			"n": int64(3),
			"f": 2.5,
			"s": "x",
			"l": []any{true, nil},
		}, v.Interface())
	})
}

func TestValueCodecs(t *testing.T) {
	src := mustParse(t, `{"b":2,"a":{"x":[1,"two",3.25,null,false]},"big":9007199254740993}`)
	obj, ok := src.Object()
	require.True(t, ok)

	t.Run("YAML", func(t *testing.T) {
		data, err := yaml.Marshal(obj)
		require.NoError(t, err)

		decoded := core.NewObject()
		require.NoError(t, yaml.Unmarshal(data, decoded))
		assert.True(t, obj.Equal(decoded), "yaml:\n%s", data)
		assert.Equal(t, []string{"b", "a", "big"}, decoded.Keys())
	})

	t.Run("Msgpack", func(t *testing.T) {
		data, err := msgpack.Marshal(obj)
		require.NoError(t, err)

		decoded := core.NewObject()
		require.NoError(t, msgpack.Unmarshal(data, decoded))
		assert.True(t, obj.Equal(decoded))
	})
}
