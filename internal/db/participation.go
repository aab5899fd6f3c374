package db

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tunga-io/tunga/internal/errs"
	"github.com/tunga-io/tunga/internal/model"
)

func GetParticipations(ctx context.Context, taskID uint) ([]model.Participation, error) {
	var res []model.Participation
	err := db.WithContext(ctx).Preload("User").
		Where("task_id = ?", taskID).
		Order("id").
		Find(&res).Error
	return res, errors.WithStack(err)
}

// GetAcceptedParticipations returns accepted participants ordered by their
// stored share, lowest first.
func GetAcceptedParticipations(ctx context.Context, taskID uint) ([]model.Participation, error) {
	var res []model.Participation
	err := db.WithContext(ctx).Preload("User").
		Where("task_id = ? AND accepted = ?", taskID, true).
		Order("share ASC").
		Order("id ASC").
		Find(&res).Error
	return res, errors.WithStack(err)
}

func GetParticipation(ctx context.Context, taskID, userID uint) (*model.Participation, error) {
	var p model.Participation
	err := db.WithContext(ctx).Where("task_id = ? AND user_id = ?", taskID, userID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.WithStack(errs.ObjectNotFound)
		}
		return nil, errors.WithStack(err)
	}
	return &p, nil
}

// UpsertParticipation creates the (task, user) participation or overwrites
// the given columns on the existing row.
func UpsertParticipation(ctx context.Context, p *model.Participation, columns []string) error {
	conflict := clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "task_id"}},
	}
	if len(columns) == 0 {
		conflict.DoNothing = true
	} else {
		conflict.DoUpdates = clause.AssignmentColumns(columns)
	}
	return errors.WithStack(db.WithContext(ctx).Omit("User").Clauses(conflict).Create(p).Error)
}

// ClearOtherAssignees keeps assigneeID as the only assignee of the task.
func ClearOtherAssignees(ctx context.Context, taskID, assigneeID uint) error {
	return errors.WithStack(db.WithContext(ctx).Model(&model.Participation{}).
		Where("task_id = ? AND user_id <> ?", taskID, assigneeID).
		Update("assignee", false).Error)
}

func CountParticipations(ctx context.Context, taskID uint) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&model.Participation{}).Where("task_id = ?", taskID).Count(&n).Error
	return n, errors.WithStack(err)
}
