package db

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/tunga-io/tunga/internal/errs"
	"github.com/tunga-io/tunga/internal/model"
)

func CreateApplication(ctx context.Context, a *model.Application) error {
	err := db.WithContext(ctx).Omit("User").Create(a).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.WithStack(errs.DuplicateApply)
	}
	return errors.WithStack(err)
}

func GetApplicationByID(ctx context.Context, id uint) (*model.Application, error) {
	var a model.Application
	if err := db.WithContext(ctx).Preload("User").First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.WithStack(errs.ObjectNotFound)
		}
		return nil, errors.Wrapf(err, "failed get application %d", id)
	}
	return &a, nil
}

// ApplicationFilter narrows ListApplications. Zero fields match everything.
type ApplicationFilter struct {
	TaskID    uint
	UserID    uint
	Responded *bool
}

func ListApplications(ctx context.Context, f ApplicationFilter, page, pageSize int) ([]model.Application, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	tx := db.WithContext(ctx).Model(&model.Application{})
	if f.TaskID != 0 {
		tx = tx.Where("task_id = ?", f.TaskID)
	}
	if f.UserID != 0 {
		tx = tx.Where("user_id = ?", f.UserID)
	}
	if f.Responded != nil {
		tx = tx.Where("responded = ?", *f.Responded)
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, errors.WithStack(err)
	}
	var res []model.Application
	err := tx.Preload("User").
		Order("created_at DESC").Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&res).Error
	return res, total, errors.WithStack(err)
}

func UpdateApplication(ctx context.Context, a *model.Application) error {
	return errors.WithStack(db.WithContext(ctx).Omit("User").Save(a).Error)
}

func DeleteApplicationByID(ctx context.Context, id uint) error {
	res := db.WithContext(ctx).Delete(&model.Application{}, id)
	if res.Error != nil {
		return errors.WithStack(res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.WithStack(errs.ObjectNotFound)
	}
	return nil
}
