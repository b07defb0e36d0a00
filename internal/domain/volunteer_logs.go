package domain

import "time"

// Provenance values stamped on records produced by the extraction pipeline,
// distinguishing them from forms entered by a person.
const (
	OCRPreparerName = "OCR/System"
	OCRSource       = "ocr_upload"
)

// PartnershipEvent is one event line on a partnership agreement form.
type PartnershipEvent struct {
	EventDate  string  `json:"event_date"`
	Site       string  `json:"site"`
	Zip        string  `json:"zip"`
	Hours      float64 `json:"hours"`
	Volunteers int     `json:"volunteers"`
}

// PartnershipLog is a partnership agreement record. Rows with
// PreparerName=OCRPreparerName were built by the classifier from an
// extraction payload rather than submitted by a person.
type PartnershipLog struct {
	ID             int64              `gorm:"column:id;primaryKey" json:"id"`
	FirstName      string             `gorm:"column:first_name" json:"first_name"`
	LastName       string             `gorm:"column:last_name" json:"last_name"`
	Email          string             `gorm:"column:email" json:"email"`
	Phone          string             `gorm:"column:phone" json:"phone"`
	Organization   string             `gorm:"column:organization" json:"organization"`
	PositionTitle  string             `gorm:"column:position_title" json:"position_title"`
	FamiliesServed int                `gorm:"column:families_served" json:"families_served"`
	Events         []PartnershipEvent `gorm:"column:events;serializer:json" json:"events"`
	PreparerName   string             `gorm:"column:preparer_name" json:"preparer_name"`
	Source         string             `gorm:"column:source" json:"source"`
	SourceFileID   *int64             `gorm:"column:source_file_id" json:"source_file_id,omitempty"`
	CreatedAt      time.Time          `gorm:"column:created_at" json:"created_at"`
}

func (PartnershipLog) TableName() string { return "partnership_logs" }

// ActivityEntry is one activity line on an individual volunteer log form.
type ActivityEntry struct {
	ActivityDate string  `json:"activity_date"`
	Activity     string  `json:"activity"`
	Organization string  `json:"organization"`
	Location     string  `json:"location"`
	Hours        float64 `json:"hours"`
	Description  string  `json:"description"`
}

// ActivityLog is an individual volunteer activity record.
type ActivityLog struct {
	ID            int64           `gorm:"column:id;primaryKey" json:"id"`
	VolunteerName string          `gorm:"column:volunteer_name" json:"volunteer_name"`
	Email         string          `gorm:"column:email" json:"email"`
	Phone         string          `gorm:"column:phone" json:"phone"`
	Organization  string          `gorm:"column:organization" json:"organization"`
	PositionTitle string          `gorm:"column:position_title" json:"position_title"`
	Entries       []ActivityEntry `gorm:"column:entries;serializer:json" json:"entries"`
	PreparerName  string          `gorm:"column:preparer_name" json:"preparer_name"`
	Source        string          `gorm:"column:source" json:"source"`
	SourceFileID  *int64          `gorm:"column:source_file_id" json:"source_file_id,omitempty"`
	CreatedAt     time.Time       `gorm:"column:created_at" json:"created_at"`
}

func (ActivityLog) TableName() string { return "activity_logs" }
