package milestone

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/tunga-io/tunga/internal/model"
)

// Scheduler keeps a task's milestones in line with its lifecycle events. It
// is called explicitly by the task workflows.
type Scheduler struct {
	store Store
}

func NewScheduler(store Store) *Scheduler {
	return &Scheduler{store: store}
}

// TaskCreated opens the start milestone of a new task.
func (s *Scheduler) TaskCreated(ctx context.Context, task *model.Task) error {
	m := StartMilestone(task)
	_, err := s.store.Ensure(ctx, &m)
	return errors.WithMessage(err, "start milestone")
}

// TaskSaved runs after every task save. participants are the users of all
// participation rows of the task.
func (s *Scheduler) TaskSaved(ctx context.Context, task *model.Task, participants []model.User) error {
	if len(participants) > 0 {
		m := DevsSelectedMilestone(task, participants)
		if _, err := s.store.Ensure(ctx, &m, "description"); err != nil {
			return errors.WithMessage(err, "dev(s) selected milestone")
		}
	}
	if task.Deadline == nil {
		return nil
	}
	m := DeadlineMilestone(task)
	if _, err := s.store.Ensure(ctx, &m, "due_date", "description"); err != nil {
		return errors.WithMessage(err, "deadline milestone")
	}
	if len(participants) == 0 || UpdateStep(task) <= 0 {
		return nil
	}
	anchor, err := s.store.Find(ctx, task.ID, TitleDevsSelected, OrderDevsSelected)
	if err != nil {
		return errors.WithMessage(err, "find dev(s) selected milestone")
	}
	updates := ScheduledUpdates(task, anchor.Created)
	if len(updates) == MaxScheduledUpdates {
		log.Warnf("task %d: update schedule truncated at %d milestones", task.ID, MaxScheduledUpdates)
	}
	for i := range updates {
		if _, err := s.store.Ensure(ctx, &updates[i], "due_date", "description"); err != nil {
			return errors.WithMessagef(err, "update milestone %d", updates[i].Order)
		}
	}
	return nil
}

// TaskUpdateCreated opens the checkpoint that follows the seq-th report.
func (s *Scheduler) TaskUpdateCreated(ctx context.Context, task *model.Task, seq int) (*model.Milestone, error) {
	m := ReportMilestone(task, seq)
	if _, err := s.store.Ensure(ctx, &m); err != nil {
		return nil, errors.WithMessage(err, "report milestone")
	}
	return &m, nil
}
