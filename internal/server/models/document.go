package models

import (
	"encoding/json"
	"time"
)

// Document is a JSON payload stored under (Collection, ID).
type Document struct {
	Collection string
	ID         string
	Data       json.RawMessage
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ChangeType tells subscribers what happened to a document.
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeModified ChangeType = "modified"
	ChangeRemoved  ChangeType = "removed"
)

// Change is one event on the document bus.
type Change struct {
	Type     ChangeType `json:"type"`
	Document Document   `json:"document"`
}
