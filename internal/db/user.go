package db

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/tunga-io/tunga/internal/errs"
	"github.com/tunga-io/tunga/internal/model"
)

func GetUserByID(id uint) (*model.User, error) {
	var u model.User
	if err := db.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.WithStack(errs.ObjectNotFound)
		}
		return nil, errors.Wrapf(err, "failed get user")
	}
	return &u, nil
}

func GetUserByName(username string) (*model.User, error) {
	user := model.User{Username: username}
	if err := db.Where(user).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.WithStack(errs.ObjectNotFound)
		}
		return nil, errors.Wrapf(err, "failed find user")
	}
	return &user, nil
}

func GetUsersByIDs(ids []uint) ([]model.User, error) {
	var users []model.User
	if len(ids) == 0 {
		return users, nil
	}
	err := db.Where("id IN ?", ids).Order("id").Find(&users).Error
	return users, errors.WithStack(err)
}

func CreateUser(u *model.User) error {
	return errors.WithStack(db.Create(u).Error)
}

func CountUsers() (int64, error) {
	var n int64
	err := db.Model(&model.User{}).Count(&n).Error
	return n, errors.WithStack(err)
}

func CreateConnection(c *model.Connection) error {
	return errors.WithStack(db.Create(c).Error)
}

// IsConnected reports whether a and b share a connection that was not
// rejected, in either direction.
func IsConnected(a, b uint) (bool, error) {
	var n int64
	err := db.Model(&model.Connection{}).
		Where("((from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?))", a, b, b, a).
		Where("accepted IS NULL OR accepted = ?", true).
		Count(&n).Error
	return n > 0, errors.WithStack(err)
}
