package op

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/tunga-io/tunga/internal/db"
	"github.com/tunga-io/tunga/internal/errs"
	"github.com/tunga-io/tunga/internal/milestone"
	"github.com/tunga-io/tunga/internal/model"
	"github.com/tunga-io/tunga/internal/notify"
	"github.com/tunga-io/tunga/internal/perm"
	"github.com/tunga-io/tunga/internal/share"
)

var (
	resolver  = &share.Resolver{PlatformPercentage: 10}
	scheduler = milestone.NewScheduler(db.MilestoneStore{})
	mailer    notify.Mailer = notify.LogMailer{}
	now       = time.Now
)

func SetResolver(r *share.Resolver) {
	resolver = r
}

func SetMailer(m notify.Mailer) {
	mailer = m
}

func relation(ctx context.Context, actor *model.User, task *model.Task) (perm.Relation, error) {
	var rel perm.Relation
	if actor == nil {
		return rel, nil
	}
	p, err := db.GetParticipation(ctx, task.ID, actor.ID)
	switch {
	case err == nil:
		rel.Participation = p
	case !errs.IsObjectNotFound(err):
		return rel, err
	}
	if task.Visibility == model.VisibilityMyTeam && actor.ID != task.UserID {
		rel.Connected, err = db.IsConnected(actor.ID, task.UserID)
		if err != nil {
			return rel, err
		}
	}
	return rel, nil
}

// readableTask loads task id when actor may read it.
func readableTask(ctx context.Context, actor *model.User, id uint) (*model.Task, perm.Relation, error) {
	task, err := db.GetTaskByID(ctx, id)
	if err != nil {
		return nil, perm.Relation{}, err
	}
	rel, err := relation(ctx, actor, task)
	if err != nil {
		return nil, rel, err
	}
	if !perm.CanReadTask(actor, task, rel) {
		// unreadable tasks look missing
		return nil, rel, errors.WithStack(errs.ObjectNotFound)
	}
	return task, rel, nil
}

func invalid(format string, args ...interface{}) error {
	return errors.Wrapf(errs.InvalidArgument, format, args...)
}
