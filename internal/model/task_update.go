package model

import "time"

const DefaultTaskUpdateStatus = "on schedule"

// TaskUpdate is a progress report on a task.
type TaskUpdate struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	TaskID         uint      `json:"task" gorm:"index"`
	MilestoneID    *uint     `json:"milestone"`
	UserID         uint      `json:"user"`
	Status         string    `json:"status" gorm:"size:50;default:on schedule"`
	Accomplished   string    `json:"accomplished" gorm:"size:400"`
	PercentageDone *uint     `json:"percentage_done"`
	NextSteps      string    `json:"next_steps" gorm:"size:400"`
	OtherRemarks   string    `json:"other_remarks" gorm:"size:400"`
	Created        time.Time `json:"created" gorm:"autoCreateTime"`
	Updated        time.Time `json:"updated" gorm:"autoUpdateTime"`
}
