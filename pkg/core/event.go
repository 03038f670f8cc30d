package core

import (
	"fmt"
	"time"
)

// EventType represents the kind of change observed in a pit.
type EventType string

const (
	EventAdd    EventType = "ADD"
	EventDelete EventType = "DELETE"
	EventReload EventType = "RELOAD"
)

// Event represents an accepted change for one name.
type Event struct {
	Type     EventType
	Name     string
	Modified time.Time
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s@%s", e.Type, e.Name, e.Modified.Format(time.RFC3339Nano))
}
