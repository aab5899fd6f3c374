package op

import (
	"context"

	"github.com/tunga-io/tunga/internal/db"
	"github.com/tunga-io/tunga/internal/model"
	"github.com/tunga-io/tunga/pkg/utils"
)

// TaskMeta is the payment metadata of a task. Participation and Payment are
// JSON documents encoded as strings.
type TaskMeta struct {
	Task          uint   `json:"task"`
	Participation string `json:"participation"`
	Payment       string `json:"payment"`
}

// GetTaskMeta resolves the revenue split of task id. base is the site URL
// task links are built on.
func GetTaskMeta(ctx context.Context, actor *model.User, id uint, base string) (*TaskMeta, error) {
	task, _, err := readableTask(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	accepted, err := db.GetAcceptedParticipations(ctx, id)
	if err != nil {
		return nil, err
	}
	participation, err := utils.Json.MarshalToString(resolver.Resolve(ctx, task, accepted))
	if err != nil {
		return nil, err
	}
	payment, err := utils.Json.MarshalToString(resolver.Payment(task, base))
	if err != nil {
		return nil, err
	}
	return &TaskMeta{Task: task.ID, Participation: participation, Payment: payment}, nil
}
