package model

import "time"

// Application is a developer's request to work on a task.
type Application struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	UserID         uint       `json:"user" gorm:"index:idx_application_user_task,unique"`
	User           *User      `json:"-" gorm:"foreignKey:UserID"`
	TaskID         uint       `json:"task" gorm:"index:idx_application_user_task,unique"`
	Accepted       bool       `json:"accepted"`
	Responded      bool       `json:"responded"`
	Pitch          string     `json:"pitch" gorm:"size:1000"`
	HoursNeeded    *uint      `json:"hours_needed"`
	HoursAvailable *uint      `json:"hours_available"`
	DeliverAt      *time.Time `json:"deliver_at"`
	CreatedAt      time.Time  `json:"created_at" gorm:"autoCreateTime"`
}
