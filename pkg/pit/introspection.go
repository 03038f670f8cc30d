package pit

import (
	"time"

	"github.com/aretw0/introspection"
)

// PitState exposes internal state for observability.
type PitState struct {
	Dir            string     `json:"dir"`
	File           string     `json:"file"`
	Codec          string     `json:"codec"`
	Names          int        `json:"names"`
	Dirty          bool       `json:"dirty"`
	ReadOnly       bool       `json:"read_only"`
	Unflagged      bool       `json:"unflagged"`
	ChangeLog      bool       `json:"change_log"`
	WriterID       string     `json:"writer_id"`
	MaxCount       int        `json:"max_count"`
	PendingChanges int        `json:"pending_changes"`
	ActiveWatchers int        `json:"active_watchers"`
	StorageType    string     `json:"storage_type"`
	LastSave       *time.Time `json:"last_save,omitempty"`
	LastReload     *time.Time `json:"last_reload,omitempty"`
}

// State implements introspection.Introspectable.
func (p *Pit) State() any {
	p.pendingMu.Lock()
	pending := len(p.pending)
	p.pendingMu.Unlock()

	p.watchMu.Lock()
	watchers := len(p.watchers)
	p.watchMu.Unlock()

	storageType := "storage"
	if comp, ok := p.opts.storage.(introspection.Component); ok {
		storageType = comp.ComponentType()
	}

	p.stateMu.RLock()
	defer p.stateMu.RUnlock()
	return PitState{
		Dir:            p.dir,
		File:           p.file,
		Codec:          p.opts.codec.Ext(),
		Names:          p.Len(),
		Dirty:          p.Dirty(),
		ReadOnly:       p.opts.readOnly,
		Unflagged:      p.opts.unflagged,
		ChangeLog:      p.opts.changeLog,
		WriterID:       p.opts.writerID,
		MaxCount:       p.opts.maxCount,
		PendingChanges: pending,
		ActiveWatchers: watchers,
		StorageType:    storageType,
		LastSave:       p.lastSave,
		LastReload:     p.lastReload,
	}
}

// ComponentType implements introspection.Component.
func (p *Pit) ComponentType() string {
	return "pit"
}

var _ introspection.Introspectable = (*Pit)(nil)
var _ introspection.Component = (*Pit)(nil)
