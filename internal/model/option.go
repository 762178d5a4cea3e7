package model

import "time"

type Option struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	QuestionID  uint      `json:"question_id" gorm:"not null;index"`
	Label       string    `json:"label" gorm:"type:text;not null"`
	IsCorrect   bool      `json:"is_correct" gorm:"not null;default:false"`
	OrderInList int       `json:"order_in_list"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
