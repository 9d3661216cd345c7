package model

// Review is the persisted document shape of a code review. The nested
// code_review object is stored as a JSON text column so filters can reach
// into it with json_extract; language is stored normalized (lowercase,
// trimmed). Timestamps are RFC3339Nano UTC strings.
type Review struct {
	ReviewID       string  `gorm:"column:review_id;primaryKey"`
	UserID         string  `gorm:"column:user_id;type:text;not null;index"`
	Language       string  `gorm:"column:language;type:text;not null;index"`
	Status         string  `gorm:"column:status;type:text;not null;index"`
	CodeSubmission string  `gorm:"column:code_submission;type:text;not null"`
	CodeReview     *string `gorm:"column:code_review;type:text"`
	CreatedAt      string  `gorm:"column:created_at;type:text;not null;index"`
	UpdatedAt      string  `gorm:"column:updated_at;type:text;not null;index"`
}

func (Review) TableName() string {
	return "reviews"
}
