package model

import "time"

const DefaultParticipationRole = "Developer"

type Participation struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	TaskID       uint      `json:"task" gorm:"index:idx_participation_user_task,unique"`
	UserID       uint      `json:"user" gorm:"index:idx_participation_user_task,unique"`
	User         *User     `json:"-" gorm:"foreignKey:UserID"`
	Accepted     bool      `json:"accepted"`
	Responded    bool      `json:"responded"`
	Assignee     bool      `json:"assignee"`
	Role         string    `json:"role" gorm:"size:100;default:Developer"`
	Share        *int      `json:"share"`
	Satisfaction *int16    `json:"satisfaction"`
	CreatedByID  uint      `json:"created_by"`
	CreatedAt    time.Time `json:"-" gorm:"autoCreateTime"`
}

// Active participants have accepted or not answered yet.
func (p *Participation) Active() bool {
	return p.Accepted || !p.Responded
}
