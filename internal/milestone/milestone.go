package milestone

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/tunga-io/tunga/internal/model"
)

const (
	TitleStart        = "Task Created"
	TitleDevsSelected = "Dev(s) Selected"
	TitleDeadline     = "Deadline"
	TitleUpdate       = "Update"
)

// Orders keep the (task, title, order) key unique for every milestone the
// scheduler creates. Scheduled updates take 2..998, reports 1000 and up.
const (
	OrderStart         int16 = 0
	OrderDevsSelected  int16 = 1
	OrderScheduledBase int16 = 2
	OrderDeadline      int16 = 999
	OrderReportBase    int16 = 1000

	MaxScheduledUpdates = int(OrderDeadline - OrderScheduledBase)
)

// IntervalSeconds approximates each update schedule unit in seconds.
var IntervalSeconds = map[int]int64{
	model.UpdateScheduleHourly:    3600,
	model.UpdateScheduleDaily:     86400,
	model.UpdateScheduleWeekly:    604800,
	model.UpdateScheduleMonthly:   2592000,
	model.UpdateScheduleQuarterly: 7776000,
	model.UpdateScheduleAnnually:  31536000,
}

// Store persists milestones keyed by (task, title, order).
type Store interface {
	// Ensure inserts m unless its key already exists. On an existing row the
	// refresh columns are overwritten and m is filled from storage.
	Ensure(ctx context.Context, m *model.Milestone, refresh ...string) (created bool, err error)
	Find(ctx context.Context, taskID uint, title string, order int16) (*model.Milestone, error)
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func newMilestone(task *model.Task, title string, order int16, typ model.MilestoneType) model.Milestone {
	return model.Milestone{
		TaskID: task.ID,
		UserID: task.UserID,
		Title:  title,
		Order:  order,
		Type:   typ,
		State:  model.MilestoneActive,
	}
}

// StartMilestone opens every task.
func StartMilestone(task *model.Task) model.Milestone {
	m := newMilestone(task, TitleStart, OrderStart, model.MilestoneStart)
	created := task.CreatedAt
	m.DueDate = &created
	m.Description = timestamp(created)
	return m
}

// DevsSelectedMilestone marks that the task has participants.
func DevsSelectedMilestone(task *model.Task, participants []model.User) model.Milestone {
	names := make([]string, 0, len(participants))
	for _, u := range participants {
		names = append(names, u.FirstName)
	}
	m := newMilestone(task, TitleDevsSelected, OrderDevsSelected, model.MilestoneUpdate)
	created := task.CreatedAt
	m.DueDate = &created
	m.Description = strings.Join(names, " ")
	return m
}

func DeadlineMilestone(task *model.Task) model.Milestone {
	m := newMilestone(task, TitleDeadline, OrderDeadline, model.MilestoneUpdate)
	deadline := *task.Deadline
	m.DueDate = &deadline
	m.Description = timestamp(deadline)
	return m
}

// UpdateStep is the reporting interval of the task, zero when unset.
func UpdateStep(task *model.Task) time.Duration {
	if task.UpdateInterval == nil || task.UpdateIntervalUnits == nil {
		return 0
	}
	seconds, ok := IntervalSeconds[*task.UpdateIntervalUnits]
	if !ok {
		return 0
	}
	total := seconds * int64(*task.UpdateInterval)
	if total <= 0 || total > math.MaxInt64/int64(time.Second) {
		return 0
	}
	return time.Duration(total) * time.Second
}

// ScheduledUpdates spaces "Update" milestones one step apart from anchor,
// stopping before the deadline, which has a milestone of its own.
func ScheduledUpdates(task *model.Task, anchor time.Time) []model.Milestone {
	step := UpdateStep(task)
	if step <= 0 || task.Deadline == nil {
		return nil
	}
	var res []model.Milestone
	for i := 1; i <= MaxScheduledUpdates; i++ {
		due := anchor.Add(time.Duration(i) * step)
		if !due.Before(*task.Deadline) {
			break
		}
		m := newMilestone(task, TitleUpdate, OrderScheduledBase+int16(i-1), model.MilestoneUpdate)
		m.DueDate = &due
		m.Description = timestamp(*task.Deadline)
		res = append(res, m)
	}
	return res
}

// ReportMilestone is the next checkpoint opened by the seq-th report on the
// task (seq counts from zero).
func ReportMilestone(task *model.Task, seq int) model.Milestone {
	order := int(OrderReportBase) + seq
	if order > math.MaxInt16 {
		order = math.MaxInt16
	}
	return newMilestone(task, TitleUpdate, int16(order), model.MilestoneUpdate)
}

// IsDue reports whether a reminder should go out for m.
func IsDue(m *model.Milestone, now time.Time, types []model.MilestoneType) bool {
	if m.Sent() || m.DueDate == nil || m.DueDate.After(now) {
		return false
	}
	for _, t := range types {
		if m.Type == t {
			return true
		}
	}
	return false
}
