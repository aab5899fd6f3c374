package op

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/tunga-io/tunga/internal/conf"
	"github.com/tunga-io/tunga/internal/db"
	"github.com/tunga-io/tunga/internal/errs"
	"github.com/tunga-io/tunga/internal/job"
	"github.com/tunga-io/tunga/internal/model"
	"github.com/tunga-io/tunga/internal/notify"
	"github.com/tunga-io/tunga/internal/perm"
)

type TaskUpdateInput struct {
	MilestoneID    *uint  `json:"milestone"`
	Status         string `json:"status"`
	Accomplished   string `json:"accomplished"`
	PercentageDone *uint  `json:"percentage_done"`
	NextSteps      string `json:"next_steps"`
	OtherRemarks   string `json:"other_remarks"`
}

// CreateTaskUpdate stores a progress report, copies its completion to the
// reported milestone, opens the next checkpoint and tells the task owner.
func CreateTaskUpdate(ctx context.Context, actor *model.User, taskID uint, in TaskUpdateInput) (*model.TaskUpdate, error) {
	task, rel, err := readableTask(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	if !perm.CanReportProgress(actor, task, rel) {
		return nil, errors.WithStack(errs.PermissionDenied)
	}
	if in.PercentageDone != nil && *in.PercentageDone > 100 {
		return nil, invalid("percentage_done must be between 0 and 100")
	}
	if in.MilestoneID != nil {
		m, err := db.GetMilestoneByID(ctx, *in.MilestoneID)
		if err != nil {
			if errs.IsObjectNotFound(err) {
				return nil, invalid("milestone %d does not exist", *in.MilestoneID)
			}
			return nil, err
		}
		if m.TaskID != task.ID {
			return nil, invalid("milestone %d belongs to another task", m.ID)
		}
	}
	u := &model.TaskUpdate{
		TaskID:         task.ID,
		MilestoneID:    in.MilestoneID,
		UserID:         actor.ID,
		Status:         strings.TrimSpace(in.Status),
		Accomplished:   in.Accomplished,
		PercentageDone: in.PercentageDone,
		NextSteps:      in.NextSteps,
		OtherRemarks:   in.OtherRemarks,
	}
	if u.Status == "" {
		u.Status = model.DefaultTaskUpdateStatus
	}
	if err = db.CreateTaskUpdate(ctx, u); err != nil {
		return nil, err
	}
	if u.MilestoneID != nil && u.PercentageDone != nil {
		if err = db.SetMilestoneProgress(ctx, *u.MilestoneID, *u.PercentageDone); err != nil {
			return nil, err
		}
	}
	seq, err := db.TaskUpdateSequence(ctx, u)
	if err != nil {
		return nil, err
	}
	if _, err = scheduler.TaskUpdateCreated(ctx, task, seq); err != nil {
		log.Warnf("task %d: failed open next update milestone: %+v", task.ID, err)
	}
	notifyOwner(task, actor, u)
	return u, nil
}

func notifyOwner(task *model.Task, reporter *model.User, u *model.TaskUpdate) {
	owner := task.User
	if owner == nil || owner.Email == "" || owner.ID == reporter.ID {
		return
	}
	prefix, base := "", "http://tunga.io"
	if conf.Conf != nil {
		prefix, base = conf.Conf.Mail.SubjectPrefix, conf.Conf.Reminder.TaskURLBase
	}
	url := fmt.Sprintf("%s/task/%d/", strings.TrimRight(base, "/"), task.ID)
	j := job.Enqueue(reporter, task.ID, notify.TaskUpdateMessage(prefix, owner, reporter, task, u, url))
	log.Debugf("task %d: queued owner notification %s", task.ID, j.GetID())
}

func ListTaskUpdates(ctx context.Context, actor *model.User, taskID uint, page, pageSize int) ([]model.TaskUpdate, int64, error) {
	if _, _, err := readableTask(ctx, actor, taskID); err != nil {
		return nil, 0, err
	}
	return db.ListTaskUpdates(ctx, taskID, page, pageSize)
}
