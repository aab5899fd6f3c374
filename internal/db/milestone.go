package db

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tunga-io/tunga/internal/errs"
	"github.com/tunga-io/tunga/internal/model"
)

var milestoneKey = []clause.Column{{Name: "task_id"}, {Name: "title"}, {Name: "sort_order"}}

// MilestoneStore persists milestones for the scheduler.
type MilestoneStore struct{}

func (MilestoneStore) Ensure(ctx context.Context, m *model.Milestone, refresh ...string) (bool, error) {
	res := db.WithContext(ctx).Clauses(clause.OnConflict{Columns: milestoneKey, DoNothing: true}).Create(m)
	if res.Error != nil && !errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return false, errors.Wrapf(res.Error, "failed ensure milestone %q of task %d", m.Title, m.TaskID)
	}
	if res.Error == nil && res.RowsAffected > 0 {
		return true, nil
	}
	existing, err := findMilestone(ctx, m.TaskID, m.Title, m.Order)
	if err != nil {
		return false, err
	}
	if len(refresh) > 0 {
		values := map[string]interface{}{}
		for _, col := range refresh {
			switch col {
			case "due_date":
				values[col] = m.DueDate
				existing.DueDate = m.DueDate
			case "description":
				values[col] = m.Description
				existing.Description = m.Description
			}
		}
		err = db.WithContext(ctx).Model(existing).Updates(values).Error
		if err != nil {
			return false, errors.Wrapf(err, "failed refresh milestone %d", existing.ID)
		}
	}
	*m = *existing
	return false, nil
}

func (MilestoneStore) Find(ctx context.Context, taskID uint, title string, order int16) (*model.Milestone, error) {
	return findMilestone(ctx, taskID, title, order)
}

func findMilestone(ctx context.Context, taskID uint, title string, order int16) (*model.Milestone, error) {
	var m model.Milestone
	err := db.WithContext(ctx).
		Where("task_id = ? AND title = ? AND sort_order = ?", taskID, title, order).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.WithStack(errs.ObjectNotFound)
		}
		return nil, errors.Wrapf(err, "failed find milestone %q of task %d", title, taskID)
	}
	return &m, nil
}

func GetMilestoneByID(ctx context.Context, id uint) (*model.Milestone, error) {
	var m model.Milestone
	if err := db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.WithStack(errs.ObjectNotFound)
		}
		return nil, errors.Wrapf(err, "failed get milestone %d", id)
	}
	return &m, nil
}

func ListMilestonesByTask(ctx context.Context, taskID uint) ([]model.Milestone, error) {
	var res []model.Milestone
	err := db.WithContext(ctx).Where("task_id = ?", taskID).
		Order("sort_order").
		Order("id").
		Find(&res).Error
	return res, errors.WithStack(err)
}

func CreateMilestone(ctx context.Context, m *model.Milestone) error {
	err := db.WithContext(ctx).Create(m).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Wrap(errs.InvalidArgument, "milestone with this title and order already exists")
	}
	return errors.WithStack(err)
}

func UpdateMilestone(ctx context.Context, m *model.Milestone) error {
	err := db.WithContext(ctx).Save(m).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Wrap(errs.InvalidArgument, "milestone with this title and order already exists")
	}
	return errors.WithStack(err)
}

func DeleteMilestoneByID(ctx context.Context, id uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&model.TaskUpdate{}).Where("milestone_id = ?", id).Update("milestone_id", nil).Error
		if err != nil {
			return errors.WithStack(err)
		}
		return errors.WithStack(tx.Delete(&model.Milestone{}, id).Error)
	})
}

// SetMilestoneProgress copies a report's completion onto its milestone.
func SetMilestoneProgress(ctx context.Context, id uint, percentage uint) error {
	updates := map[string]interface{}{"percentage_done": percentage}
	if percentage >= 100 {
		updates["state"] = model.MilestoneCompleted
	}
	return errors.WithStack(db.WithContext(ctx).Model(&model.Milestone{}).Where("id = ?", id).Updates(updates).Error)
}

// ListDueMilestones returns unsent milestones of the given types due at now.
func ListDueMilestones(ctx context.Context, types []model.MilestoneType, now time.Time) ([]model.Milestone, error) {
	var res []model.Milestone
	if len(types) == 0 {
		return res, nil
	}
	err := db.WithContext(ctx).
		Where("type IN ?", types).
		Where("due_date IS NOT NULL AND due_date <= ?", now).
		Where("update_sent IS NULL OR update_sent = ?", false).
		Order("due_date").
		Order("id").
		Find(&res).Error
	return res, errors.WithStack(err)
}

// MarkMilestoneSent flips update_sent once; false means another sweep got
// there first.
func MarkMilestoneSent(ctx context.Context, id uint) (bool, error) {
	res := db.WithContext(ctx).Model(&model.Milestone{}).
		Where("id = ? AND (update_sent IS NULL OR update_sent = ?)", id, false).
		Update("update_sent", true)
	if res.Error != nil {
		return false, errors.Wrapf(res.Error, "failed mark milestone %d sent", id)
	}
	return res.RowsAffected > 0, nil
}
