package job

import (
	"time"

	"github.com/OpenListTeam/tache"

	"github.com/tunga-io/tunga/internal/model"
)

// Extension adds ownership and timing to tache.Base.
type Extension struct {
	tache.Base
	Creator   *model.User `json:"creator"`
	TaskID    uint        `json:"task_id"`
	StartTime *time.Time  `json:"start_time"`
	EndTime   *time.Time  `json:"end_time"`
}

func (e *Extension) SetCreator(creator *model.User) {
	e.Creator = creator
	e.Persist()
}

func (e *Extension) GetCreator() *model.User {
	return e.Creator
}

func (e *Extension) GetTaskID() uint {
	return e.TaskID
}

func (e *Extension) SetStartTime(t time.Time) {
	e.StartTime = &t
}

func (e *Extension) GetStartTime() *time.Time {
	return e.StartTime
}

func (e *Extension) SetEndTime(t time.Time) {
	e.EndTime = &t
}

func (e *Extension) GetEndTime() *time.Time {
	return e.EndTime
}

func (e *Extension) ClearEndTime() {
	e.EndTime = nil
}

type ExtensionInfo interface {
	tache.TaskWithInfo
	GetCreator() *model.User
	GetTaskID() uint
	GetStartTime() *time.Time
	GetEndTime() *time.Time
}

type Manager[T tache.Task] interface {
	Add(task T)
	Cancel(id string)
	CancelAll()
	CancelByCondition(condition func(task T) bool)
	GetAll() []T
	GetByID(id string) (T, bool)
	GetByState(state ...tache.State) []T
	GetByCondition(condition func(task T) bool) []T
	Remove(id string)
	RemoveAll()
	RemoveByState(state ...tache.State)
	RemoveByCondition(condition func(task T) bool)
	Retry(id string)
	RetryAllFailed()
}
