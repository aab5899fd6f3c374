package cmd

import (
	"github.com/tunga-io/tunga/internal/bootstrap"
	"github.com/tunga-io/tunga/internal/bootstrap/data"
	"github.com/tunga-io/tunga/internal/db"
)

func Init() {
	bootstrap.InitConfig()
	bootstrap.InitLog()
	bootstrap.InitDB()
	data.InitData()
	bootstrap.InitCollaborators()
	bootstrap.InitJobManager()
}

func Release() {
	db.Close()
}
