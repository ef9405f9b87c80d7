package types

// ActivityLog is a record in the activity_logs collection. Entries are
// appended and never updated or deleted.
type ActivityLog struct {
	ID                string `json:"id,omitempty"`
	UserID            string `json:"user_id"`
	UserName          string `json:"user_name"`
	ActionType        string `json:"action_type"`
	ActionDescription string `json:"action_description"`
	TargetType        string `json:"target_type"`
	TargetID          string `json:"target_id"`
	TargetName        string `json:"target_name"`
	Details           string `json:"details"`
	CreatedAt         string `json:"created_at"`
}

// ToRecord implements Recorder.
func (a ActivityLog) ToRecord() (Record, error) { return toRecord(a) }
