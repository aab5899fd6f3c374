package db

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/tunga-io/tunga/internal/errs"
	"github.com/tunga-io/tunga/internal/model"
)

func CreateTask(ctx context.Context, t *model.Task) error {
	err := db.WithContext(ctx).Omit("Participation", "User").Create(t).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.WithStack(errs.DuplicateTask)
	}
	return errors.WithStack(err)
}

func GetTaskByID(ctx context.Context, id uint) (*model.Task, error) {
	var t model.Task
	err := db.WithContext(ctx).Preload("User").First(&t, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.WithStack(errs.ObjectNotFound)
		}
		return nil, errors.Wrapf(err, "failed get task %d", id)
	}
	return &t, nil
}

func UpdateTask(ctx context.Context, t *model.Task) error {
	err := db.WithContext(ctx).Omit("Participation", "User").Save(t).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.WithStack(errs.DuplicateTask)
	}
	return errors.WithStack(err)
}

func DeleteTaskByID(ctx context.Context, id uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{&model.TaskUpdate{}, &model.Milestone{}, &model.Participation{}, &model.Application{}} {
			if err := tx.Where("task_id = ?", id).Delete(m).Error; err != nil {
				return errors.WithStack(err)
			}
		}
		res := tx.Delete(&model.Task{}, id)
		if res.Error != nil {
			return errors.WithStack(res.Error)
		}
		if res.RowsAffected == 0 {
			return errors.WithStack(errs.ObjectNotFound)
		}
		return nil
	})
}

// TaskFilter narrows ListTasks to the tasks a viewer may read.
type TaskFilter struct {
	Viewer  *model.User
	Search  string
	Closed  *bool
	OwnerID uint
}

// ListTasks pages through tasks newest first.
func ListTasks(ctx context.Context, f TaskFilter, page, pageSize int) ([]model.Task, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	tx := db.WithContext(ctx).Model(&model.Task{})
	if v := f.Viewer; v != nil && !v.IsAdmin() {
		active := db.Model(&model.Participation{}).Select("task_id").
			Where("user_id = ? AND (accepted = ? OR responded = ?)", v.ID, true, false)
		team := db.Model(&model.Connection{}).Select("to_user_id").
			Where("from_user_id = ? AND (accepted IS NULL OR accepted = ?)", v.ID, true)
		teamRev := db.Model(&model.Connection{}).Select("from_user_id").
			Where("to_user_id = ? AND (accepted IS NULL OR accepted = ?)", v.ID, true)
		cond := db.Where("user_id = ?", v.ID).
			Or("id IN (?)", active).
			Or("visibility = ? AND (user_id IN (?) OR user_id IN (?))", model.VisibilityMyTeam, team, teamRev)
		if v.IsDeveloper() {
			cond = cond.Or("visibility = ?", model.VisibilityDeveloper)
		}
		tx = tx.Where(cond)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		tx = tx.Where("title LIKE ? OR description LIKE ? OR skills LIKE ?", like, like, like)
	}
	if f.Closed != nil {
		tx = tx.Where("closed = ?", *f.Closed)
	}
	if f.OwnerID != 0 {
		tx = tx.Where("user_id = ?", f.OwnerID)
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, errors.WithStack(err)
	}
	var tasks []model.Task
	err := tx.Order("created_at DESC").Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&tasks).Error
	return tasks, total, errors.WithStack(err)
}
