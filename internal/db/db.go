package db

import (
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/tunga-io/tunga/internal/conf"
	"github.com/tunga-io/tunga/internal/model"
)

var db *gorm.DB

func Init(d *gorm.DB) {
	db = d
	err := AutoMigrate(
		new(model.User),
		new(model.Connection),
		new(model.Task),
		new(model.Participation),
		new(model.Milestone),
		new(model.TaskUpdate),
		new(model.Application),
		new(model.JobItem),
		new(model.JobRecord),
	)
	if err != nil {
		log.Fatalf("failed migrate database: %s", err.Error())
	}
}

func AutoMigrate(dst ...interface{}) error {
	var err error
	if conf.Conf != nil && conf.Conf.Database.Type == "mysql" {
		err = db.Set("gorm:table_options", "ENGINE=InnoDB CHARSET=utf8mb4").AutoMigrate(dst...)
	} else {
		err = db.AutoMigrate(dst...)
	}
	return err
}

func GetDb() *gorm.DB {
	return db
}

func Close() {
	log.Info("closing db")
	sqlDB, err := db.DB()
	if err != nil {
		log.Errorf("failed to get db: %s", err.Error())
		return
	}
	err = sqlDB.Close()
	if err != nil {
		log.Errorf("failed to close db: %s", err.Error())
		return
	}
}
