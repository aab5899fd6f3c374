package op

import (
	"context"

	mapset "github.com/deckarep/golang-set/v2"
	log "github.com/sirupsen/logrus"

	"github.com/tunga-io/tunga/internal/db"
	"github.com/tunga-io/tunga/internal/model"
)

// saveParticipants creates or updates one participation per listed user.
// Unknown users and rows that fail to save are skipped.
func saveParticipants(ctx context.Context, actor *model.User, task *model.Task, in TaskInput) error {
	if len(in.Participants) == 0 {
		return nil
	}
	confirmed := mapset.NewSet(in.ConfirmedParticipants...)
	rejected := mapset.NewSet(in.RejectedParticipants...)
	users, err := db.GetUsersByIDs(mapset.NewSet(in.Participants...).ToSlice())
	if err != nil {
		return err
	}
	createdBy := task.UserID
	if actor != nil {
		createdBy = actor.ID
	}
	changedAssignee := false
	for _, u := range users {
		p := &model.Participation{
			TaskID:      task.ID,
			UserID:      u.ID,
			Role:        model.DefaultParticipationRole,
			CreatedByID: createdBy,
		}
		columns := []string{"created_by_id"}
		if in.Assignee != nil {
			p.Assignee = u.ID == *in.Assignee
			columns = append(columns, "assignee")
		}
		if rejected.Contains(u.ID) {
			p.Accepted, p.Responded = false, true
		}
		if confirmed.Contains(u.ID) {
			p.Accepted, p.Responded = true, true
		}
		if rejected.Contains(u.ID) || confirmed.Contains(u.ID) {
			columns = append(columns, "accepted", "responded")
		}
		if err := db.UpsertParticipation(ctx, p, columns); err != nil {
			log.Warnf("task %d: failed save participant %d: %+v", task.ID, u.ID, err)
			continue
		}
		if in.Assignee != nil && u.ID == *in.Assignee {
			changedAssignee = true
		}
	}
	if changedAssignee {
		return db.ClearOtherAssignees(ctx, task.ID, *in.Assignee)
	}
	return nil
}
