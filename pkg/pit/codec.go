package pit

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/jsonpit/pkg/core"
)

// SnapshotVersion is the format version written into snapshots and
// change files.
const SnapshotVersion = 1

// Snapshot is the consolidated state of a pit.
type Snapshot struct {
	Version   int             `json:"version" yaml:"version" msgpack:"version"`
	Saved     string          `json:"saved" yaml:"saved" msgpack:"saved"`
	Histories []HistoryRecord `json:"histories" yaml:"histories" msgpack:"histories"`
}

// HistoryRecord is the persisted history of one name, oldest first.
type HistoryRecord struct {
	Name     string        `json:"name" yaml:"name" msgpack:"name"`
	MaxCount int           `json:"maxCount,omitempty" yaml:"maxCount,omitempty" msgpack:"maxCount,omitempty"`
	Items    []core.Record `json:"items" yaml:"items" msgpack:"items"`
}

// ChangeRecord holds the versions one writer accepted between two saves.
type ChangeRecord struct {
	Version int           `json:"version" yaml:"version" msgpack:"version"`
	Writer  string        `json:"writer" yaml:"writer" msgpack:"writer"`
	Written string        `json:"written" yaml:"written" msgpack:"written"`
	Items   []core.Record `json:"items" yaml:"items" msgpack:"items"`
}

// Codec encodes snapshots and change records.
type Codec interface {
	// Ext is the file extension including the dot.
	Ext() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSONCodec writes indented JSON with properties in insertion order.
type JSONCodec struct{}

func (JSONCodec) Ext() string { return ".json" }

func (JSONCodec) Marshal(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

func (JSONCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// YAMLCodec writes YAML documents.
type YAMLCodec struct{}

func (YAMLCodec) Ext() string { return ".yaml" }

func (YAMLCodec) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

func (YAMLCodec) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

// MsgpackCodec writes MessagePack.
type MsgpackCodec struct{}

func (MsgpackCodec) Ext() string { return ".msgpack" }

func (MsgpackCodec) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (MsgpackCodec) Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}

// CodecByName resolves "json", "yaml" or "msgpack", with or without a dot.
func CodecByName(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "", "json":
		return JSONCodec{}, nil
	case "yaml", "yml":
		return YAMLCodec{}, nil
	case "msgpack", "mp":
		return MsgpackCodec{}, nil
	}
	return nil, fmt.Errorf("unknown codec %q", name)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
