package models

import "time"

// Share is the registry record for one published coding session.
type Share struct {
	ID        string
	Secret    string
	SessionID string // external session identifier, immutable
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SessionInfo is the payload of a session event.
type SessionInfo struct {
	ID        string          `json:"id"`
	Title     string          `json:"title,omitempty"`
	Status    string          `json:"status,omitempty"`
	Directory string          `json:"directory,omitempty"`
	Version   string          `json:"version,omitempty"`
	ProjectID string          `json:"projectID,omitempty"`
	Summary   *SessionSummary `json:"summary,omitempty"`
	Time      SessionTime     `json:"time"`
}

// SessionSummary holds change statistics reported by the agent.
type SessionSummary struct {
	Additions int `json:"additions"`
	Deletions int `json:"deletions"`
	Files     int `json:"files"`
}

// SessionTime holds unix millisecond timestamps.
type SessionTime struct {
	Created int64 `json:"created,omitempty"`
	Updated int64 `json:"updated,omitempty"`
}

// Validate checks if the session has required fields
func (s *SessionInfo) Validate() error {
	if s.ID == "" {
		return &fieldError{field: "id", err: errMissing}
	}
	return nil
}

// FileDiff is one entry of a session diff set.
type FileDiff struct {
	File      string `json:"file"`
	Before    string `json:"before"`
	After     string `json:"after"`
	Additions int    `json:"additions,omitempty"`
	Deletions int    `json:"deletions,omitempty"`
}

// ModelInfo identifies a model used in the session.
type ModelInfo struct {
	ProviderID string `json:"providerID"`
	ModelID    string `json:"modelID"`
	Name       string `json:"name,omitempty"`
}

// Key is the identity used to collapse duplicate models.
func (m ModelInfo) Key() string {
	return m.ProviderID + "/" + m.ModelID
}

func (m *ModelInfo) Validate() error {
	if m.ProviderID == "" {
		return &fieldError{field: "providerID", err: errMissing}
	}
	if m.ModelID == "" {
		return &fieldError{field: "modelID", err: errMissing}
	}
	return nil
}
