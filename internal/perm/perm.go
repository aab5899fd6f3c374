// Package perm decides what a user may do with tasks and their milestones.
// Callers load the Relation; the functions here only read it.
package perm

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/tunga-io/tunga/internal/model"
)

// Relation is what the store knows about an actor and a task.
type Relation struct {
	// Participation of the actor on the task, nil when there is none.
	Participation *model.Participation
	// Connected is set when actor and task owner share a connection that
	// was not rejected.
	Connected bool
}

func (r Relation) activeParticipant() bool {
	return r.Participation != nil && r.Participation.Active()
}

// ParticipantKeys may be changed by active participants without owning the
// task.
var ParticipantKeys = mapset.NewSet("assignee", "participants", "confirmed_participants", "rejected_participants")

func CanCreateTask(actor *model.User) bool {
	return actor.IsAdmin() || actor.IsProjectOwner()
}

// CanWriteTask allows full edits and deletion.
func CanWriteTask(actor *model.User, task *model.Task) bool {
	if actor == nil {
		return false
	}
	return actor.IsAdmin() || actor.ID == task.UserID
}

// CanUpdateTask allows an edit touching changedKeys.
func CanUpdateTask(actor *model.User, task *model.Task, rel Relation, changedKeys []string) bool {
	if CanWriteTask(actor, task) {
		return true
	}
	if actor == nil || len(changedKeys) == 0 {
		return false
	}
	if !ParticipantKeys.Contains(changedKeys...) {
		return false
	}
	return rel.activeParticipant()
}

func CanReadTask(actor *model.User, task *model.Task, rel Relation) bool {
	if actor == nil {
		return false
	}
	if CanWriteTask(actor, task) || rel.activeParticipant() {
		return true
	}
	switch task.Visibility {
	case model.VisibilityDeveloper:
		return actor.IsDeveloper()
	case model.VisibilityMyTeam:
		return rel.Connected
	}
	return false
}

// CanWriteParticipation allows changing p, which belongs to task.
func CanWriteParticipation(actor *model.User, task *model.Task, p *model.Participation) bool {
	if CanWriteTask(actor, task) {
		return true
	}
	return actor != nil && p != nil && p.UserID == actor.ID
}

func CanReadMilestone(actor *model.User, task *model.Task, rel Relation) bool {
	return CanReadTask(actor, task, rel)
}

func CanWriteMilestone(actor *model.User, task *model.Task) bool {
	return CanWriteTask(actor, task)
}

// CanReportProgress allows posting a task update.
func CanReportProgress(actor *model.User, task *model.Task, rel Relation) bool {
	return CanWriteTask(actor, task) || (actor != nil && rel.activeParticipant())
}

// CanApply allows sending applications for tasks.
func CanApply(actor *model.User) bool {
	return actor.IsAdmin() || actor.IsDeveloper()
}

// CanReadApplication allows the applicant and the task owner to see a.
func CanReadApplication(actor *model.User, task *model.Task, a *model.Application) bool {
	if actor == nil {
		return false
	}
	return CanWriteTask(actor, task) || a.UserID == actor.ID
}

// CanUpdateApplication allows an edit of the pitch and estimates.
func CanUpdateApplication(actor *model.User, task *model.Task, a *model.Application) bool {
	return CanReadApplication(actor, task, a)
}

// CanRespondApplication allows accepting or rejecting an application.
func CanRespondApplication(actor *model.User, task *model.Task) bool {
	return CanWriteTask(actor, task)
}

// CanDeleteApplication allows withdrawing a.
func CanDeleteApplication(actor *model.User, a *model.Application) bool {
	if actor == nil {
		return false
	}
	return actor.IsAdmin() || a.UserID == actor.ID
}
