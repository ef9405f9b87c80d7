package types

// Case is a record in the cases collection.
type Case struct {
	ID            string  `json:"id,omitempty"`
	LawyerID      string  `json:"lawyer_id"`
	ClientID      string  `json:"client_id,omitempty"`
	CaseNumber    string  `json:"case_number"`
	Title         string  `json:"title"`
	ClientName    string  `json:"client_name"`
	CourtName     string  `json:"court_name,omitempty"`
	CaseType      string  `json:"case_type,omitempty"`
	OpposingParty string  `json:"opposing_party,omitempty"`
	Status        string  `json:"status"`
	TotalFee      float64 `json:"total_fee"`
	PaidFee       float64 `json:"paid_fee"`
	RemainingFee  float64 `json:"remaining_fee"`
	PaymentDate   string  `json:"payment_date,omitempty"`
	Description   string  `json:"description,omitempty"`
	CreatedAt     string  `json:"created_at,omitempty"`
	UpdatedAt     string  `json:"updated_at,omitempty"`
}

// ToRecord implements Recorder.
func (c Case) ToRecord() (Record, error) { return toRecord(c) }

// Case status values.
const (
	CaseOpen       = "Açık"
	CaseInProgress = "Devam Ediyor"
	CaseClosed     = "Kapalı"
)

// CaseStatuses lists the case status values in display order.
var CaseStatuses = []string{CaseOpen, CaseInProgress, CaseClosed}
