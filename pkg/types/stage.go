package types

// CaseStage is a record in the case_stages collection.
type CaseStage struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	OrderIndex  int    `json:"order_index"`
}

// ToRecord implements Recorder.
func (s CaseStage) ToRecord() (Record, error) { return toRecord(s) }

// CaseProcessStage is a record in the case_process_stages collection:
// one step a case has gone through.
type CaseProcessStage struct {
	ID        string `json:"id,omitempty"`
	CaseID    string `json:"case_id"`
	StageID   string `json:"stage_id"`
	Note      string `json:"note,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// ToRecord implements Recorder.
func (s CaseProcessStage) ToRecord() (Record, error) { return toRecord(s) }

// FinalStage closes a case when it is reached.
const FinalStage = "Sonuç"

// DefaultCaseStages returns the stages seeded into an empty case_stages
// collection.
func DefaultCaseStages() []CaseStage {
	return []CaseStage{
		{Name: "Açılış", Description: "Dava dosyası açıldı", OrderIndex: 1},
		{Name: "İnceleme", Description: "Belgeler inceleniyor", OrderIndex: 2},
		{Name: "Hazırlık", Description: "Duruşma hazırlığı", OrderIndex: 3},
		{Name: "Duruşma", Description: "Mahkeme duruşması", OrderIndex: 4},
		{Name: "Karar", Description: "Mahkeme kararı", OrderIndex: 5},
		{Name: "Temyiz", Description: "Temyiz süreci", OrderIndex: 6},
		{Name: FinalStage, Description: "Dava sonuçlandı", OrderIndex: 7},
	}
}
