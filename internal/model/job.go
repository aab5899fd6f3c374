package model

import "time"

// JobItem holds the persisted snapshot of one background job manager.
type JobItem struct {
	Key         string `json:"key" gorm:"primaryKey;size:64"`
	PersistData string `gorm:"type:text" json:"persist_data"`
}

// JobRecord stores job list snapshot for indexed pagination.
type JobRecord struct {
	JobID     string     `gorm:"column:job_id;primaryKey;size:64" json:"job_id"`
	Type      string     `gorm:"column:type;primaryKey;size:64;index:idx_job_type_state" json:"type"`
	Name      string     `gorm:"column:name;size:1024" json:"name"`
	Creator   string     `gorm:"column:creator;size:255;index:idx_job_creator" json:"creator"`
	CreatorID uint       `gorm:"column:creator_id;index:idx_job_creator_id" json:"creator_id"`
	TaskID    uint       `gorm:"column:task_id;index:idx_job_task_id" json:"task_id"`
	State     int        `gorm:"column:state;index:idx_job_type_state" json:"state"`
	Status    string     `gorm:"column:status;size:255" json:"status"`
	Progress  float64    `gorm:"column:progress" json:"progress"`
	StartTime *time.Time `gorm:"column:start_time;index:idx_job_start_time" json:"start_time"`
	EndTime   *time.Time `gorm:"column:end_time;index:idx_job_end_time" json:"end_time"`
	Error     string     `gorm:"column:error;size:1024" json:"error"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (JobRecord) TableName() string {
	return "job_records"
}
