package models

import (
	"time"
)

type ContextKey string

const (
	WorkspaceIDKey ContextKey = "workspace_id"
)

// Log is the document shape written by the async log sink.
type Log struct {
	Message      string    `bson:"message" json:"message"`
	Level        string    `bson:"level" json:"level"`
	Caller       string    `bson:"caller,omitempty" json:"caller,omitempty"`
	WorkspaceID  string    `bson:"workspace_id,omitempty" json:"workspace_id,omitempty"`
	AppID        string    `bson:"app_id" json:"app_id"`
	CreatedOnUtc time.Time `bson:"created_on_utc" json:"created_on_utc"`
}
