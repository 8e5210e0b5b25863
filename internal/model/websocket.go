package model

// WSMessage represents a generic WebSocket message
type WSMessage struct {
	Type string `json:"type"`
}

// WSStatusMessage carries a job status snapshot
type WSStatusMessage struct {
	Type   string    `json:"type"`
	Status JobStatus `json:"status"`
}
