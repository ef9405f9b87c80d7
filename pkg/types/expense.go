package types

// Expense is a record in the expenses collection.
type Expense struct {
	ID          string  `json:"id,omitempty"`
	LawyerID    string  `json:"lawyer_id"`
	Title       string  `json:"title"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description,omitempty"`
	Date        string  `json:"date"`
	CreatedAt   string  `json:"created_at,omitempty"`
}

// ToRecord implements Recorder.
func (e Expense) ToRecord() (Record, error) { return toRecord(e) }

// ExpenseCategories lists the expense categories offered by the office.
var ExpenseCategories = []string{
	"Ofis Giderleri",
	"Ulaşım",
	"Telefon/İnternet",
	"Kırtasiye",
	"Eğitim",
	"Yemek",
	"Diğer",
}
