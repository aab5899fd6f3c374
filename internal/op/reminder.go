package op

import (
	"context"
	"sync"
	"time"

	"github.com/avast/retry-go"
	log "github.com/sirupsen/logrus"

	"github.com/tunga-io/tunga/internal/conf"
	"github.com/tunga-io/tunga/internal/db"
	"github.com/tunga-io/tunga/internal/milestone"
	"github.com/tunga-io/tunga/internal/model"
	"github.com/tunga-io/tunga/internal/notify"
)

// SweepResult counts what one reminder sweep did.
type SweepResult struct {
	Due    int `json:"due"`
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

func reminderTypes() []model.MilestoneType {
	names := []string{"interval", "start"}
	if conf.Conf != nil && len(conf.Conf.Reminder.Types) > 0 {
		names = conf.Conf.Reminder.Types
	}
	types := make([]model.MilestoneType, 0, len(names))
	for _, name := range names {
		t, ok := model.ParseMilestoneType(name)
		if !ok {
			log.Warnf("ignoring unknown reminder milestone type %q", name)
			continue
		}
		types = append(types, t)
	}
	return types
}

// sweepMu serialises sweeps within the process, so the server ticker and an
// on-demand sweep never both mail the same milestone.
var sweepMu sync.Mutex

// SendDueReminders asks task owners for an update on every due milestone.
// A milestone is marked sent only once its reminder went out, so failed
// ones are retried by the next sweep.
func SendDueReminders(ctx context.Context, at time.Time) (SweepResult, error) {
	sweepMu.Lock()
	defer sweepMu.Unlock()
	var res SweepResult
	types := reminderTypes()
	due, err := db.ListDueMilestones(ctx, types, at)
	if err != nil {
		return res, err
	}
	attempts, delay := uint(3), time.Second
	prefix, base := "", "http://tunga.io"
	if c := conf.Conf; c != nil {
		if c.Reminder.Attempts > 0 {
			attempts = c.Reminder.Attempts
		}
		delay = c.Reminder.Delay.Std()
		prefix, base = c.Mail.SubjectPrefix, c.Reminder.TaskURLBase
	}
	for i := range due {
		if ctx.Err() != nil {
			break
		}
		m := &due[i]
		if !milestone.IsDue(m, at, types) {
			continue
		}
		res.Due++
		if err := remind(ctx, m, prefix, base, attempts, delay); err != nil {
			res.Failed++
			log.Warnf("milestone %d: reminder not sent: %+v", m.ID, err)
			continue
		}
		marked, err := db.MarkMilestoneSent(ctx, m.ID)
		if err != nil {
			res.Failed++
			log.Errorf("milestone %d: reminder sent but not recorded: %+v", m.ID, err)
			continue
		}
		if !marked {
			log.Debugf("milestone %d was marked sent by another sweep", m.ID)
		}
		res.Sent++
	}
	if res.Due > 0 {
		log.Infof("reminder sweep: %d due, %d sent, %d failed", res.Due, res.Sent, res.Failed)
	}
	return res, nil
}

func remind(ctx context.Context, m *model.Milestone, prefix, base string, attempts uint, delay time.Duration) error {
	task, err := db.GetTaskByID(ctx, m.TaskID)
	if err != nil {
		return err
	}
	owner, err := db.GetUserByID(m.UserID)
	if err != nil {
		return err
	}
	msg := notify.ReminderMessage(prefix, owner, task, m, notify.UpdateURL(base, m))
	return retry.Do(
		func() error {
			return mailer.Send(ctx, msg)
		},
		retry.Attempts(attempts),
		retry.Delay(delay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Debugf("milestone %d: reminder attempt %d failed: %v", m.ID, n+1, err)
		}),
	)
}
