package db

import (
	"context"

	"github.com/pkg/errors"

	"github.com/tunga-io/tunga/internal/model"
)

func CreateTaskUpdate(ctx context.Context, u *model.TaskUpdate) error {
	return errors.WithStack(db.WithContext(ctx).Create(u).Error)
}

func ListTaskUpdates(ctx context.Context, taskID uint, page, pageSize int) ([]model.TaskUpdate, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	tx := db.WithContext(ctx).Model(&model.TaskUpdate{}).Where("task_id = ?", taskID)
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, errors.WithStack(err)
	}
	var res []model.TaskUpdate
	err := tx.Order("created DESC").Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&res).Error
	return res, total, errors.WithStack(err)
}

// TaskUpdateSequence is the zero-based position of u among its task's reports.
func TaskUpdateSequence(ctx context.Context, u *model.TaskUpdate) (int, error) {
	var n int64
	err := db.WithContext(ctx).Model(&model.TaskUpdate{}).
		Where("task_id = ? AND id < ?", u.TaskID, u.ID).
		Count(&n).Error
	return int(n), errors.WithStack(err)
}
