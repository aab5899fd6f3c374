package data

import (
	"github.com/tunga-io/tunga/internal/db"
	"github.com/tunga-io/tunga/internal/job"
	"github.com/tunga-io/tunga/internal/model"
	"github.com/tunga-io/tunga/pkg/utils"
)

var initialJobItems []model.JobItem

func initJobs() {
	InitialJobs()

	for i := range initialJobItems {
		item := &initialJobItems[i]
		existing, _ := db.GetJobItemByType(item.Key)
		if existing == nil {
			if err := db.CreateJobItem(item); err != nil {
				utils.Log.Warnf("failed create job item %s: %+v", item.Key, err)
			}
		}
	}
}

func InitialJobs() []model.JobItem {
	initialJobItems = []model.JobItem{
		{Key: job.NotifyType, PersistData: "[]"},
	}
	return initialJobItems
}
