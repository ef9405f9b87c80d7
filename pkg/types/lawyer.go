package types

// Lawyer is a record in the lawyers collection. The record key is the
// lawyer's e-mail address.
type Lawyer struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Color     string `json:"color,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// ToRecord implements Recorder.
func (l Lawyer) ToRecord() (Record, error) { return toRecord(l) }
