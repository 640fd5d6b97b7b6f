package models

// LockInfo is the content of the lock file guarding the data document.
type LockInfo struct {
	Locked    bool   `json:"locked"`
	User      string `json:"user"`
	Timestamp string `json:"timestamp"`
	PID       int    `json:"pid"`
	Hostname  string `json:"hostname"`
}

// LockStatus is returned to API clients.
type LockStatus struct {
	Locked  bool      `json:"locked"`
	OwnedBy string    `json:"owned_by,omitempty"`
	Holder  *LockInfo `json:"holder,omitempty"`
	Stale   bool      `json:"stale"`
}
