package types

// CalendarEvent is a record in the calendar_events collection. Date is
// YYYY-MM-DD and Time is HH:MM.
type CalendarEvent struct {
	ID           string `json:"id,omitempty"`
	LawyerID     string `json:"lawyer_id"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	Date         string `json:"date"`
	Time         string `json:"time,omitempty"`
	EventType    string `json:"event_type,omitempty"`
	Location     string `json:"location,omitempty"`
	ClientName   string `json:"client_name,omitempty"`
	CaseNumber   string `json:"case_number,omitempty"`
	IsReminder   bool   `json:"is_reminder,omitempty"`
	ReminderTime string `json:"reminder_time,omitempty"`
	Status       string `json:"status,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

// ToRecord implements Recorder.
func (e CalendarEvent) ToRecord() (Record, error) { return toRecord(e) }

// Event status values.
const (
	EventPlanned   = "Planlandı"
	EventCompleted = "Tamamlandı"
	EventCancelled = "İptal"
)

// Event types.
const (
	EventHearing     = "Duruşma"
	EventMeeting     = "Toplantı"
	EventAppointment = "Randevu"
	EventPetition    = "Dilekçe"
	EventMediation   = "Arabulucuk"
	EventGeneral     = "Genel"
	EventImportant   = "Önemli"
)
