package model

import "time"

type MilestoneState int

const (
	MilestoneCompleted MilestoneState = iota
	MilestoneOverdue
	MilestoneActive
	MilestoneClosed
)

var milestoneStateNames = map[MilestoneState]string{
	MilestoneCompleted: "completed",
	MilestoneOverdue:   "overdue",
	MilestoneActive:    "active",
	MilestoneClosed:    "closed",
}

func (s MilestoneState) String() string {
	return milestoneStateNames[s]
}

func (s MilestoneState) Valid() bool {
	_, ok := milestoneStateNames[s]
	return ok
}

type MilestoneType int

const (
	MilestoneInterval MilestoneType = iota + 1
	MilestoneUpdate
	MilestoneUpdateRequest
	MilestoneStart
)

var milestoneTypeNames = map[MilestoneType]string{
	MilestoneInterval:      "interval",
	MilestoneUpdate:        "update",
	MilestoneUpdateRequest: "update_request",
	MilestoneStart:         "start",
}

func (t MilestoneType) String() string {
	return milestoneTypeNames[t]
}

func (t MilestoneType) Valid() bool {
	_, ok := milestoneTypeNames[t]
	return ok
}

// ParseMilestoneType maps "interval", "update", ... to their type.
func ParseMilestoneType(s string) (MilestoneType, bool) {
	for k, v := range milestoneTypeNames {
		if v == s {
			return k, true
		}
	}
	return 0, false
}

type Milestone struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	TaskID         uint           `json:"task" gorm:"index:idx_milestone_task_title_order,unique"`
	UserID         uint           `json:"user"`
	Title          string         `json:"title" gorm:"size:50;index:idx_milestone_task_title_order,unique"`
	Order          int16          `json:"order" gorm:"column:sort_order;index:idx_milestone_task_title_order,unique"`
	Type           MilestoneType  `json:"type" gorm:"index:idx_milestone_due"`
	State          MilestoneState `json:"state"`
	DueDate        *time.Time     `json:"due_date" gorm:"index:idx_milestone_due"`
	Description    string         `json:"description" gorm:"type:text"`
	PercentageDone *uint          `json:"percentage_done"`
	UpdateSent     *bool          `json:"update_sent"`
	Created        time.Time      `json:"created" gorm:"autoCreateTime"`
	Updated        time.Time      `json:"updated" gorm:"autoUpdateTime"`
}

// EffectiveState reports an active milestone whose due date has passed as
// overdue; other states are stored as they are.
func (m *Milestone) EffectiveState(now time.Time) MilestoneState {
	if m.State == MilestoneActive && m.DueDate != nil && m.DueDate.Before(now) {
		return MilestoneOverdue
	}
	return m.State
}

func (m *Milestone) Sent() bool {
	return m.UpdateSent != nil && *m.UpdateSent
}
