package types

// Collection names. They are case-sensitive and fixed.
const (
	Lawyers              = "lawyers"
	Clients              = "clients"
	Cases                = "cases"
	CalendarEvents       = "calendar_events"
	ChatMessages         = "chat_messages"
	Expenses             = "expenses"
	Documents            = "documents"
	ActivityLogs         = "activity_logs"
	ClientCommunications = "client_communications"
	CaseStages           = "case_stages"
	CaseProcessStages    = "case_process_stages"
)

// Collections lists every standard collection.
var Collections = []string{
	Lawyers,
	Clients,
	Cases,
	CalendarEvents,
	ChatMessages,
	Expenses,
	Documents,
	ActivityLogs,
	ClientCommunications,
	CaseStages,
	CaseProcessStages,
}

// IsCollection reports whether name is a standard collection.
func IsCollection(name string) bool {
	for _, c := range Collections {
		if c == name {
			return true
		}
	}
	return false
}

// Placeholders shown for dangling references.
const (
	Unknown        = "Bilinmeyen"
	UnknownLawyer  = "Bilinmeyen Avukat"
	UnknownCase    = "Bilinmeyen Dava"
	UnknownUser    = "Bilinmeyen Kullanıcı"
	SystemUserName = "Sistem"
)

// TimeLayout formats created_at and updated_at values: UTC with
// millisecond precision and a literal Z.
const TimeLayout = "2006-01-02T15:04:05.000Z"
