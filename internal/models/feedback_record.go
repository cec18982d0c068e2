package models

const (
	MinRating = 1
	MaxRating = 5
)

type FeedbackRecord struct {
	Date     string `json:"date" gorm:"size:10;not null"`
	Rating   int    `json:"rating" gorm:"not null"` // 1..5
	Feedback string `json:"feedback" gorm:"type:text"`
}

func (FeedbackRecord) TableName() string { return "cafe_feedback" }
