package bootstrap

import (
	"github.com/OpenListTeam/tache"

	"github.com/tunga-io/tunga/internal/conf"
	"github.com/tunga-io/tunga/internal/db"
	"github.com/tunga-io/tunga/internal/job"
	"github.com/tunga-io/tunga/pkg/utils"
)

func jobFilterNegative(num int) int {
	if num < 1 {
		num = 1
	}
	return num
}

func syncJobIndex[T job.ExtensionInfo](typ string, manager job.Manager[T]) {
	if err := db.UpsertJobRecordsFromJobs(typ, manager.GetAll()); err != nil {
		utils.Log.Warnf("failed to sync job index for %s: %+v", typ, err)
	}
}

func InitJobManager() {
	c := conf.Conf.Jobs.Notify
	job.NotifyManager = tache.NewManager[*job.NotifyJob](
		tache.WithWorks(jobFilterNegative(c.Workers)),
		tache.WithPersistFunction(
			db.GetJobPersistReadFunc(job.NotifyType, c.TaskPersistant),
			db.UpdateJobDataAndIndexFunc[*job.NotifyJob](job.NotifyType, c.TaskPersistant),
		),
		tache.WithMaxRetry(c.MaxRetry),
	)
	// sync existing jobs into index so first page reads fast
	syncJobIndex[*job.NotifyJob](job.NotifyType, job.NotifyManager)
}
