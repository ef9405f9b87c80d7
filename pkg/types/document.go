package types

// Document is a record in the documents collection. Only metadata is
// stored; the file itself lives at FilePath.
type Document struct {
	ID          string `json:"id,omitempty"`
	LawyerID    string `json:"lawyer_id"`
	CaseID      string `json:"case_id,omitempty"`
	Title       string `json:"title"`
	FileName    string `json:"file_name"`
	FilePath    string `json:"file_path"`
	FileSize    int64  `json:"file_size"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// ToRecord implements Recorder.
func (d Document) ToRecord() (Record, error) { return toRecord(d) }

// DocumentCategories lists the document categories offered by the office.
var DocumentCategories = []string{
	"Dava Dosyası",
	"Sözleşme",
	"Fatura",
	"Makbuz",
	"Kimlik Belgesi",
	"Tapu",
	"Diğer",
}
