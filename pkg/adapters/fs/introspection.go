package fs

import (
	"github.com/aretw0/introspection"
)

// DiskState exposes internal state for observability.
type DiskState struct {
	FileMode       string `json:"file_mode"`
	DirMode        string `json:"dir_mode"`
	ActiveWatchers int    `json:"active_watchers"`
}

// State implements introspection.Introspectable.
func (d *Disk) State() any {
	return DiskState{
		FileMode:       d.fileMode.String(),
		DirMode:        d.dirMode.String(),
		ActiveWatchers: int(d.watchers.Load()),
	}
}

// ComponentType implements introspection.Component.
func (d *Disk) ComponentType() string {
	return "disk"
}

var _ introspection.Introspectable = (*Disk)(nil)
var _ introspection.Component = (*Disk)(nil)
