package op

import (
	"context"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/tunga-io/tunga/internal/db"
	"github.com/tunga-io/tunga/internal/errs"
	"github.com/tunga-io/tunga/internal/milestone"
	"github.com/tunga-io/tunga/internal/model"
	"github.com/tunga-io/tunga/internal/perm"
)

// TaskInput carries a create or partial update of a task. Keys lists the
// fields present in the request, so nullable fields can be cleared.
type TaskInput struct {
	Title                 *string    `json:"title"`
	Description           *string    `json:"description"`
	URL                   *string    `json:"url"`
	Fee                   *int64     `json:"fee"`
	Currency              *string    `json:"currency"`
	Deadline              *time.Time `json:"deadline"`
	Skills                *string    `json:"skills"`
	Visibility            *int       `json:"visibility"`
	UpdateInterval        *uint      `json:"update_interval"`
	UpdateIntervalUnits   *int       `json:"update_interval_units"`
	Apply                 *bool      `json:"apply"`
	Closed                *bool      `json:"closed"`
	Paid                  *bool      `json:"paid"`
	Satisfaction          *int16     `json:"satisfaction"`
	Participants          []uint     `json:"participants"`
	Assignee              *uint      `json:"assignee"`
	ConfirmedParticipants []uint     `json:"confirmed_participants"`
	RejectedParticipants  []uint     `json:"rejected_participants"`

	Keys []string `json:"-"`
}

func (in *TaskInput) has(key string) bool {
	for _, k := range in.Keys {
		if k == key {
			return true
		}
	}
	return false
}

func (in *TaskInput) apply(t *model.Task) error {
	stamp := now()
	if in.Title != nil {
		t.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.URL != nil {
		t.URL = strings.TrimSpace(*in.URL)
	}
	if in.Fee != nil {
		t.Fee = *in.Fee
	}
	if in.Currency != nil {
		t.Currency = strings.ToUpper(*in.Currency)
	}
	if in.Deadline != nil || in.has("deadline") {
		t.Deadline = in.Deadline
	}
	if in.Skills != nil {
		t.Skills = *in.Skills
	}
	if in.Visibility != nil {
		t.Visibility = *in.Visibility
	}
	if in.UpdateInterval != nil || in.has("update_interval") {
		t.UpdateInterval = in.UpdateInterval
	}
	if in.UpdateIntervalUnits != nil || in.has("update_interval_units") {
		t.UpdateIntervalUnits = in.UpdateIntervalUnits
	}
	if in.Apply != nil {
		if t.Apply && !*in.Apply {
			t.ApplyClosedAt = &stamp
		}
		t.Apply = *in.Apply
	}
	if in.Closed != nil {
		if !t.Closed && *in.Closed {
			t.ClosedAt = &stamp
		}
		t.Closed = *in.Closed
	}
	if in.Paid != nil {
		if !t.Paid && *in.Paid {
			t.PaidAt = &stamp
		}
		t.Paid = *in.Paid
	}
	if in.Satisfaction != nil {
		t.Satisfaction = in.Satisfaction
	}
	return validateTask(t)
}

func validateTask(t *model.Task) error {
	if t.Title == "" {
		return invalid("title is required")
	}
	if len(t.Title) > 200 {
		return invalid("title is longer than 200 characters")
	}
	if t.Fee < 0 {
		return invalid("fee must not be negative")
	}
	if !model.ValidCurrency(t.Currency) {
		return invalid("unknown currency %q", t.Currency)
	}
	switch t.Visibility {
	case model.VisibilityDeveloper, model.VisibilityMyTeam, model.VisibilityCustom:
	default:
		return invalid("unknown visibility %d", t.Visibility)
	}
	if t.UpdateIntervalUnits != nil {
		if _, ok := milestone.IntervalSeconds[*t.UpdateIntervalUnits]; !ok {
			return invalid("unknown update interval units %d", *t.UpdateIntervalUnits)
		}
	}
	if t.Satisfaction != nil && (*t.Satisfaction < 1 || *t.Satisfaction > 5) {
		return invalid("satisfaction must be between 1 and 5")
	}
	return nil
}

func CreateTask(ctx context.Context, actor *model.User, in TaskInput) (*model.Task, error) {
	if !perm.CanCreateTask(actor) {
		return nil, errors.WithStack(errs.PermissionDenied)
	}
	task := &model.Task{
		UserID:     actor.ID,
		Currency:   model.CurrencyEUR,
		Visibility: model.VisibilityDeveloper,
		Apply:      true,
		CreatedAt:  now(),
	}
	if err := in.apply(task); err != nil {
		return nil, err
	}
	if err := db.CreateTask(ctx, task); err != nil {
		return nil, err
	}
	task.User = actor
	if err := saveParticipants(ctx, actor, task, in); err != nil {
		return nil, err
	}
	if err := scheduler.TaskCreated(ctx, task); err != nil {
		return nil, err
	}
	if err := taskSaved(ctx, task); err != nil {
		return nil, err
	}
	log.Infof("task %d created by %s", task.ID, actor.Username)
	return task, nil
}

func UpdateTask(ctx context.Context, actor *model.User, id uint, in TaskInput) (*model.Task, error) {
	task, err := db.GetTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rel, err := relation(ctx, actor, task)
	if err != nil {
		return nil, err
	}
	if !perm.CanUpdateTask(actor, task, rel, in.Keys) {
		if !perm.CanReadTask(actor, task, rel) {
			return nil, errors.WithStack(errs.ObjectNotFound)
		}
		return nil, errors.WithStack(errs.PermissionDenied)
	}
	if err = in.apply(task); err != nil {
		return nil, err
	}
	if err = db.UpdateTask(ctx, task); err != nil {
		return nil, err
	}
	if err = saveParticipants(ctx, actor, task, in); err != nil {
		return nil, err
	}
	if err = taskSaved(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// taskSaved hands the current participants to the scheduler.
func taskSaved(ctx context.Context, task *model.Task) error {
	ps, err := db.GetParticipations(ctx, task.ID)
	if err != nil {
		return err
	}
	users := make([]model.User, 0, len(ps))
	for _, p := range ps {
		if p.User != nil {
			users = append(users, *p.User)
		}
	}
	return scheduler.TaskSaved(ctx, task, users)
}

func GetTask(ctx context.Context, actor *model.User, id uint) (*model.Task, error) {
	task, _, err := readableTask(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	task.Participation, err = db.GetParticipations(ctx, id)
	return task, err
}

func ListTasks(ctx context.Context, actor *model.User, f db.TaskFilter, page, pageSize int) ([]model.Task, int64, error) {
	f.Viewer = actor
	return db.ListTasks(ctx, f, page, pageSize)
}

func DeleteTask(ctx context.Context, actor *model.User, id uint) error {
	task, err := db.GetTaskByID(ctx, id)
	if err != nil {
		return err
	}
	if !perm.CanWriteTask(actor, task) {
		return errors.WithStack(errs.PermissionDenied)
	}
	return db.DeleteTaskByID(ctx, id)
}

// Assignee is the single active participant flagged as assignee, if any.
func Assignee(ps []model.Participation) *model.Participation {
	for i := range ps {
		if ps[i].Assignee && ps[i].Active() {
			return &ps[i]
		}
	}
	return nil
}

var updateKeys = mapset.NewSet(
	"title", "description", "url", "fee", "currency", "deadline", "skills", "visibility",
	"update_interval", "update_interval_units", "apply", "closed", "paid", "satisfaction",
	"participants", "assignee", "confirmed_participants", "rejected_participants",
)

// TaskKeys keeps the request keys TaskInput understands.
func TaskKeys(keys []string) []string {
	res := make([]string, 0, len(keys))
	for _, k := range keys {
		if updateKeys.Contains(k) {
			res = append(res, k)
		}
	}
	return res
}
