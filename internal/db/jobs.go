package db

import (
	"math"

	"github.com/OpenListTeam/tache"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tunga-io/tunga/internal/job"
	"github.com/tunga-io/tunga/internal/model"
	"github.com/tunga-io/tunga/pkg/utils"
)

func GetJobItemByType(typ string) (*model.JobItem, error) {
	item := model.JobItem{Key: typ}
	if err := db.Where(item).First(&item).Error; err != nil {
		return nil, errors.Wrapf(err, "failed find job item")
	}
	return &item, nil
}

func UpdateJobItem(t *model.JobItem) error {
	return errors.WithStack(db.Model(&model.JobItem{}).Where("key = ?", t.Key).Update("persist_data", t.PersistData).Error)
}

func CreateJobItem(t *model.JobItem) error {
	return errors.WithStack(db.Create(t).Error)
}

// GetJobPersistReadFunc always returns a reader so the index is rebuilt even
// when persistence is off.
func GetJobPersistReadFunc(typ string, persistEnabled bool) func() ([]byte, error) {
	if !persistEnabled {
		return func() ([]byte, error) {
			return []byte("[]"), nil
		}
	}
	return func() ([]byte, error) {
		item, err := GetJobItemByType(typ)
		if err != nil {
			return []byte("[]"), nil
		}
		return []byte(item.PersistData), nil
	}
}

func convertToRecord(typ string, j job.ExtensionInfo) model.JobRecord {
	progress := j.GetProgress()
	if math.IsNaN(progress) {
		progress = 100
	}
	r := model.JobRecord{
		JobID:     j.GetID(),
		Type:      typ,
		Name:      j.GetName(),
		TaskID:    j.GetTaskID(),
		State:     int(j.GetState()),
		Status:    j.GetStatus(),
		Progress:  progress,
		StartTime: j.GetStartTime(),
		EndTime:   j.GetEndTime(),
	}
	if creator := j.GetCreator(); creator != nil {
		r.Creator = creator.Username
		r.CreatorID = creator.ID
	}
	if err := j.GetErr(); err != nil {
		r.Error = err.Error()
	}
	return r
}

func ReplaceJobRecords(typ string, records []model.JobRecord) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("type = ?", typ).Delete(&model.JobRecord{}).Error; err != nil {
			return errors.WithStack(err)
		}
		if len(records) == 0 {
			return nil
		}
		return errors.WithStack(tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "job_id"}, {Name: "type"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "creator", "creator_id", "task_id", "state", "status", "progress", "start_time", "end_time", "error", "updated_at"}),
		}).CreateInBatches(records, 500).Error)
	})
}

func UpsertJobRecordsFromJobs[T job.ExtensionInfo](typ string, jobs []T) error {
	records := make([]model.JobRecord, 0, len(jobs))
	for i := range jobs {
		records = append(records, convertToRecord(typ, jobs[i]))
	}
	return ReplaceJobRecords(typ, records)
}

// UpdateJobDataAndIndexFunc persists the manager snapshot and refreshes the
// list index from it.
func UpdateJobDataAndIndexFunc[T job.ExtensionInfo](typ string, persistEnabled bool) func([]byte) error {
	return func(data []byte) error {
		content := string(data)
		if content == "null" || content == "" {
			content = "[]"
		}
		if persistEnabled {
			if err := UpdateJobItem(&model.JobItem{Key: typ, PersistData: content}); err != nil {
				return err
			}
		}
		var jobs []T
		if err := utils.Json.Unmarshal([]byte(content), &jobs); err != nil {
			utils.Log.Warnf("failed to unmarshal jobs for indexing, type=%s: %+v", typ, err)
			return nil
		}
		if err := UpsertJobRecordsFromJobs(typ, jobs); err != nil {
			utils.Log.Warnf("failed to update job index, type=%s: %+v", typ, err)
		}
		return nil
	}
}

// JobRecordFilter narrows ListJobRecords.
type JobRecordFilter struct {
	States    []tache.State
	CreatorID uint
	TaskID    uint
	Keyword   string
}

func ListJobRecords(typ string, f JobRecordFilter, page, pageSize int) ([]model.JobRecord, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	tx := db.Model(&model.JobRecord{}).Where("type = ?", typ)
	if len(f.States) > 0 {
		tx = tx.Where("state IN ?", f.States)
	}
	if f.CreatorID != 0 {
		tx = tx.Where("creator_id = ?", f.CreatorID)
	}
	if f.TaskID != 0 {
		tx = tx.Where("task_id = ?", f.TaskID)
	}
	if f.Keyword != "" {
		tx = tx.Where("name LIKE ?", "%"+f.Keyword+"%")
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, errors.WithStack(err)
	}
	var records []model.JobRecord
	err := tx.Order("COALESCE(end_time, start_time) DESC").
		Order("job_id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&records).Error
	return records, total, errors.WithStack(err)
}
