package state

// State carries the alert de-duplication record across polling cycles.
// Field names match the on-disk state.json document.
type State struct {
	LastAlertJD   *float64 `json:"last_alert_jd,omitempty"`
	LastAlertTime string   `json:"last_alert_time_utc,omitempty"`
	TargetID      *int64   `json:"asas_sn_id,omitempty"`
}

// Store persists State across process restarts.
type Store interface {
	// Load returns the persisted state, or the zero State when the
	// record is missing or unreadable. It never fails.
	Load() State
	// Save overwrites the whole state record.
	Save(State) error
}
