package model

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

type Task struct {
	ID        ID         `json:"id" db:"id"`
	Text      string     `json:"text" db:"text"`
	Done      bool       `json:"done" db:"done"`
	CreatedAt *time.Time `json:"created_at,omitempty" db:"created_at"`
}

type ChangeOp string

const (
	ChangeInsert ChangeOp = "insert"
	ChangeUpdate ChangeOp = "update"
	ChangeDelete ChangeOp = "delete"
	ChangeClear  ChangeOp = "clear"
	// ChangeResync tells watchers that changes may have been missed, for
	// example while a stream was reconnecting.
	ChangeResync ChangeOp = "resync"
)

// Change is a notification that the task collection was modified.
// ID is empty for ChangeClear and ChangeResync.
type Change struct {
	Op ChangeOp  `json:"op"`
	ID ID        `json:"id,omitempty"`
	At time.Time `json:"at"`
}
