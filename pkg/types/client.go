package types

// Client is a record in the clients collection.
type Client struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	TCNumber  string `json:"tc_number,omitempty"`
	BirthDate string `json:"birth_date,omitempty"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// ToRecord implements Recorder.
func (c Client) ToRecord() (Record, error) { return toRecord(c) }

// ClientCommunication is a record in the client_communications collection.
type ClientCommunication struct {
	ID        string `json:"id,omitempty"`
	ClientID  string `json:"client_id"`
	Type      string `json:"type"`
	Subject   string `json:"subject,omitempty"`
	Content   string `json:"content,omitempty"`
	Date      string `json:"date"`
	CreatedAt string `json:"created_at,omitempty"`
}

// ToRecord implements Recorder.
func (c ClientCommunication) ToRecord() (Record, error) { return toRecord(c) }

// Communication types.
const (
	CommPhone   = "Telefon"
	CommEmail   = "E-posta"
	CommMeeting = "Toplantı"
	CommHearing = "Duruşma"
	CommNote    = "Not"
	CommOther   = "Diğer"
)
