package job

import (
	"fmt"
	"time"

	"github.com/OpenListTeam/tache"
	"github.com/pkg/errors"

	"github.com/tunga-io/tunga/internal/model"
	"github.com/tunga-io/tunga/internal/notify"
)

const NotifyType = "notify"

var (
	NotifyManager *tache.Manager[*NotifyJob]
	// Mailer delivers notification jobs; set at bootstrap.
	Mailer notify.Mailer
)

// NotifyJob emails a task owner outside the request that triggered it.
type NotifyJob struct {
	Extension
	Message notify.Message `json:"message"`
	status  string
}

func (j *NotifyJob) GetName() string {
	return fmt.Sprintf("notify %v: %s", j.Message.To, j.Message.Subject)
}

func (j *NotifyJob) GetStatus() string {
	return j.status
}

func (j *NotifyJob) Run() error {
	if Mailer == nil {
		return errors.New("no mailer configured")
	}
	j.ClearEndTime()
	j.SetStartTime(time.Now())
	defer func() { j.SetEndTime(time.Now()) }()
	j.status = "sending"
	if err := Mailer.Send(j.Ctx(), j.Message); err != nil {
		j.status = "failed"
		return err
	}
	j.status = "sent"
	j.SetProgress(100)
	return nil
}

// Enqueue schedules msg for delivery about task taskID.
func Enqueue(creator *model.User, taskID uint, msg notify.Message) *NotifyJob {
	j := &NotifyJob{Message: msg}
	j.Creator = creator
	j.TaskID = taskID
	if NotifyManager != nil {
		NotifyManager.Add(j)
	}
	return j
}
