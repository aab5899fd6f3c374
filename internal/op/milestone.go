package op

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/tunga-io/tunga/internal/db"
	"github.com/tunga-io/tunga/internal/errs"
	"github.com/tunga-io/tunga/internal/model"
	"github.com/tunga-io/tunga/internal/perm"
)

type MilestoneInput struct {
	Title          *string               `json:"title"`
	Type           *model.MilestoneType  `json:"type"`
	State          *model.MilestoneState `json:"state"`
	DueDate        *time.Time            `json:"due_date"`
	Description    *string               `json:"description"`
	Order          *int16                `json:"order"`
	PercentageDone *uint                 `json:"percentage_done"`

	Keys []string `json:"-"`
}

func (in *MilestoneInput) apply(m *model.Milestone) error {
	if in.Title != nil {
		m.Title = strings.TrimSpace(*in.Title)
	}
	if in.Type != nil {
		m.Type = *in.Type
	}
	if in.State != nil {
		m.State = *in.State
	}
	if in.DueDate != nil {
		m.DueDate = in.DueDate
	} else {
		for _, k := range in.Keys {
			if k == "due_date" {
				m.DueDate = nil
			}
		}
	}
	if in.Description != nil {
		m.Description = *in.Description
	}
	if in.Order != nil {
		m.Order = *in.Order
	}
	if in.PercentageDone != nil {
		m.PercentageDone = in.PercentageDone
	}
	switch {
	case m.Title == "":
		return invalid("title is required")
	case len(m.Title) > 50:
		return invalid("title is longer than 50 characters")
	case !m.Type.Valid():
		return invalid("unknown milestone type %d", m.Type)
	case !m.State.Valid():
		return invalid("unknown milestone state %d", m.State)
	case m.State == model.MilestoneOverdue:
		return invalid("overdue is derived from the due date")
	case m.PercentageDone != nil && *m.PercentageDone > 100:
		return invalid("percentage_done must be between 0 and 100")
	}
	return nil
}

func ListMilestones(ctx context.Context, actor *model.User, taskID uint) ([]model.Milestone, error) {
	if _, _, err := readableTask(ctx, actor, taskID); err != nil {
		return nil, err
	}
	return db.ListMilestonesByTask(ctx, taskID)
}

func CreateMilestone(ctx context.Context, actor *model.User, taskID uint, in MilestoneInput) (*model.Milestone, error) {
	task, _, err := readableTask(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	if !perm.CanWriteMilestone(actor, task) {
		return nil, errors.WithStack(errs.PermissionDenied)
	}
	m := &model.Milestone{
		TaskID: task.ID,
		UserID: task.UserID,
		Type:   model.MilestoneInterval,
		State:  model.MilestoneActive,
	}
	if err = in.apply(m); err != nil {
		return nil, err
	}
	if m.Type == model.MilestoneStart {
		return nil, invalid("a task has exactly one start milestone")
	}
	if err = db.CreateMilestone(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// milestoneOf loads milestone id and its task when actor may read both.
func milestoneOf(ctx context.Context, actor *model.User, id uint) (*model.Milestone, *model.Task, error) {
	m, err := db.GetMilestoneByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	task, rel, err := readableTask(ctx, actor, m.TaskID)
	if err != nil {
		return nil, nil, err
	}
	if !perm.CanReadMilestone(actor, task, rel) {
		return nil, nil, errors.WithStack(errs.ObjectNotFound)
	}
	return m, task, nil
}

func GetMilestone(ctx context.Context, actor *model.User, id uint) (*model.Milestone, error) {
	m, _, err := milestoneOf(ctx, actor, id)
	return m, err
}

func UpdateMilestone(ctx context.Context, actor *model.User, id uint, in MilestoneInput) (*model.Milestone, error) {
	m, task, err := milestoneOf(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !perm.CanWriteMilestone(actor, task) {
		return nil, errors.WithStack(errs.PermissionDenied)
	}
	wasStart := m.Type == model.MilestoneStart
	if err = in.apply(m); err != nil {
		return nil, err
	}
	if wasStart != (m.Type == model.MilestoneStart) {
		return nil, invalid("the start milestone keeps its type")
	}
	if err = db.UpdateMilestone(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func DeleteMilestone(ctx context.Context, actor *model.User, id uint) error {
	m, task, err := milestoneOf(ctx, actor, id)
	if err != nil {
		return err
	}
	if !perm.CanWriteMilestone(actor, task) {
		return errors.WithStack(errs.PermissionDenied)
	}
	if m.Type == model.MilestoneStart {
		return invalid("the start milestone cannot be deleted")
	}
	return db.DeleteMilestoneByID(ctx, id)
}
