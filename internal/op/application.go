package op

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

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

const maxPitchLength = 1000

type ApplicationInput struct {
	Pitch          *string    `json:"pitch"`
	HoursNeeded    *uint      `json:"hours_needed"`
	HoursAvailable *uint      `json:"hours_available"`
	DeliverAt      *time.Time `json:"deliver_at"`
	Accepted       *bool      `json:"accepted"`
}

func (in ApplicationInput) touchesProposal() bool {
	return in.Pitch != nil || in.HoursNeeded != nil || in.HoursAvailable != nil || in.DeliverAt != nil
}

func (in ApplicationInput) apply(a *model.Application) error {
	if in.Pitch != nil {
		pitch := strings.TrimSpace(*in.Pitch)
		if pitch == "" {
			return invalid("pitch may not be blank")
		}
		if utf8.RuneCountInString(pitch) > maxPitchLength {
			return invalid("pitch is longer than %d characters", maxPitchLength)
		}
		a.Pitch = pitch
	}
	if in.HoursNeeded != nil {
		a.HoursNeeded = in.HoursNeeded
	}
	if in.HoursAvailable != nil {
		a.HoursAvailable = in.HoursAvailable
	}
	if in.DeliverAt != nil {
		a.DeliverAt = in.DeliverAt
	}
	return nil
}

// CreateApplication records actor's request to work on a task that is open
// for applications and tells the owner about it.
func CreateApplication(ctx context.Context, actor *model.User, taskID uint, in ApplicationInput) (*model.Application, error) {
	task, _, err := readableTask(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	if !perm.CanApply(actor) {
		return nil, errors.WithStack(errs.PermissionDenied)
	}
	if !task.Apply || task.Closed {
		return nil, invalid("task %d is not accepting applications", task.ID)
	}
	switch {
	case in.Pitch == nil:
		return nil, invalid("pitch is required")
	case in.HoursNeeded == nil:
		return nil, invalid("hours_needed is required")
	case in.HoursAvailable == nil:
		return nil, invalid("hours_available is required")
	case in.DeliverAt == nil:
		return nil, invalid("deliver_at is required")
	}
	a := &model.Application{TaskID: task.ID, UserID: actor.ID}
	if err = in.apply(a); err != nil {
		return nil, err
	}
	if err = db.CreateApplication(ctx, a); err != nil {
		return nil, err
	}
	a.User = actor
	notifyApplication(task, actor, a)
	return a, nil
}

func notifyApplication(task *model.Task, applicant *model.User, a *model.Application) {
	owner := task.User
	if owner == nil || owner.Email == "" || owner.ID == applicant.ID {
		return
	}
	prefix, base := "", "http://tunga.io"
	if conf.Conf != nil {
		prefix, base = conf.Conf.Mail.SubjectPrefix, conf.Conf.Reminder.TaskURLBase
	}
	url := fmt.Sprintf("%s/task/%d/applications/", strings.TrimRight(base, "/"), task.ID)
	j := job.Enqueue(applicant, task.ID, notify.ApplicationMessage(prefix, owner, applicant, task, a, url))
	log.Debugf("task %d: queued application notification %s", task.ID, j.GetID())
}

// ListApplications shows owners and staff every application on the task and
// everyone else only their own.
func ListApplications(ctx context.Context, actor *model.User, taskID uint, responded *bool, page, pageSize int) ([]model.Application, int64, error) {
	task, _, err := readableTask(ctx, actor, taskID)
	if err != nil {
		return nil, 0, err
	}
	f := db.ApplicationFilter{TaskID: task.ID, Responded: responded}
	if !perm.CanRespondApplication(actor, task) {
		f.UserID = actor.ID
	}
	return db.ListApplications(ctx, f, page, pageSize)
}

// readableApplication loads an application with its task. Applications the
// actor may not see look missing.
func readableApplication(ctx context.Context, actor *model.User, id uint) (*model.Application, *model.Task, error) {
	a, err := db.GetApplicationByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	task, err := db.GetTaskByID(ctx, a.TaskID)
	if err != nil {
		return nil, nil, err
	}
	if !perm.CanReadApplication(actor, task, a) {
		return nil, nil, errors.WithStack(errs.ObjectNotFound)
	}
	return a, task, nil
}

func GetApplication(ctx context.Context, actor *model.User, id uint) (*model.Application, error) {
	a, _, err := readableApplication(ctx, actor, id)
	return a, err
}

// UpdateApplication edits the proposal or records the owner's answer.
// Accepting makes the applicant an accepted participant of the task.
func UpdateApplication(ctx context.Context, actor *model.User, id uint, in ApplicationInput) (*model.Application, error) {
	a, task, err := readableApplication(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !perm.CanUpdateApplication(actor, task, a) {
		return nil, errors.WithStack(errs.PermissionDenied)
	}
	if in.touchesProposal() && !actor.IsAdmin() && a.UserID != actor.ID {
		return nil, errors.WithStack(errs.PermissionDenied)
	}
	if in.Accepted != nil && !perm.CanRespondApplication(actor, task) {
		return nil, errors.WithStack(errs.PermissionDenied)
	}
	if err = in.apply(a); err != nil {
		return nil, err
	}
	if in.Accepted != nil {
		a.Accepted, a.Responded = *in.Accepted, true
	}
	if err = db.UpdateApplication(ctx, a); err != nil {
		return nil, err
	}
	if in.Accepted != nil && *in.Accepted {
		p := &model.Participation{
			TaskID:      task.ID,
			UserID:      a.UserID,
			Accepted:    true,
			Responded:   true,
			Role:        model.DefaultParticipationRole,
			CreatedByID: actor.ID,
		}
		if err = db.UpsertParticipation(ctx, p, []string{"accepted", "responded"}); err != nil {
			return nil, err
		}
		if err = taskSaved(ctx, task); err != nil {
			return nil, err
		}
		log.Infof("task %d: application %d accepted by %s", task.ID, a.ID, actor.Username)
	}
	return a, nil
}

func DeleteApplication(ctx context.Context, actor *model.User, id uint) error {
	a, _, err := readableApplication(ctx, actor, id)
	if err != nil {
		return err
	}
	if !perm.CanDeleteApplication(actor, a) {
		return errors.WithStack(errs.PermissionDenied)
	}
	return db.DeleteApplicationByID(ctx, a.ID)
}
