package handles

import (
	"math"
	"time"

	"github.com/OpenListTeam/tache"
	"github.com/gin-gonic/gin"

	"github.com/tunga-io/tunga/internal/db"
	"github.com/tunga-io/tunga/internal/job"
	"github.com/tunga-io/tunga/internal/model"
	"github.com/tunga-io/tunga/server/common"
)

type JobInfo struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Creator   string      `json:"creator"`
	TaskID    uint        `json:"task_id"`
	State     tache.State `json:"state"`
	Status    string      `json:"status"`
	Progress  float64     `json:"progress"`
	StartTime *time.Time  `json:"start_time"`
	EndTime   *time.Time  `json:"end_time"`
	Error     string      `json:"error"`
}

var (
	undoneStates = []tache.State{
		tache.StatePending,
		tache.StateRunning,
		tache.StateCanceling,
		tache.StateErrored,
		tache.StateFailing,
		tache.StateWaitingRetry,
		tache.StateBeforeRetry,
	}
	doneStates = []tache.State{
		tache.StateCanceled,
		tache.StateFailed,
		tache.StateSucceeded,
	}
)

func jobInfo[T job.ExtensionInfo](j T) JobInfo {
	info := JobInfo{
		ID:        j.GetID(),
		Name:      j.GetName(),
		TaskID:    j.GetTaskID(),
		State:     j.GetState(),
		Status:    j.GetStatus(),
		Progress:  j.GetProgress(),
		StartTime: j.GetStartTime(),
		EndTime:   j.GetEndTime(),
	}
	// NaN progress reads as done
	if math.IsNaN(info.Progress) {
		info.Progress = 100
	}
	if c := j.GetCreator(); c != nil {
		info.Creator = c.Username
	}
	if err := j.GetErr(); err != nil {
		info.Error = err.Error()
	}
	return info
}

func recordInfo(r model.JobRecord) JobInfo {
	return JobInfo{
		ID:        r.JobID,
		Name:      r.Name,
		Creator:   r.Creator,
		TaskID:    r.TaskID,
		State:     tache.State(r.State),
		Status:    r.Status,
		Progress:  r.Progress,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Error:     r.Error,
	}
}

type ListJobReq struct {
	PageReq
	Task    uint   `form:"task"`
	Keyword string `form:"keyword"`
}

// listJobs pages through the job index table, which the manager keeps in sync
// on every persist.
func listJobs(typ string, states []tache.State) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ListJobReq
		if err := c.ShouldBindQuery(&req); err != nil {
			common.ErrorResp(c, err, 400)
			return
		}
		req.Validate()
		records, total, err := db.ListJobRecords(typ, db.JobRecordFilter{
			States:  states,
			TaskID:  req.Task,
			Keyword: req.Keyword,
		}, req.Page, req.PerPage)
		if err != nil {
			common.ErrorResp(c, err, 500, true)
			return
		}
		content := make([]JobInfo, 0, len(records))
		for _, r := range records {
			content = append(content, recordInfo(r))
		}
		common.SuccessResp(c, common.PageResp{
			Content: content,
			Total:   total,
		})
	}
}

// withJob resolves the "jid" query value against manager before calling fn.
func withJob[T job.ExtensionInfo](manager job.Manager[T], fn func(c *gin.Context, j T)) gin.HandlerFunc {
	return func(c *gin.Context) {
		j, ok := manager.GetByID(c.Query("jid"))
		if !ok {
			common.ErrorStrResp(c, "job not found", 404)
			return
		}
		fn(c, j)
	}
}

func jobRoute[T job.ExtensionInfo](g *gin.RouterGroup, manager job.Manager[T], typ string) {
	g.GET("/undone", listJobs(typ, undoneStates))
	g.GET("/done", listJobs(typ, doneStates))
	g.POST("/info", withJob(manager, func(c *gin.Context, j T) {
		common.SuccessResp(c, jobInfo(j))
	}))
	g.POST("/cancel", withJob(manager, func(c *gin.Context, j T) {
		manager.Cancel(j.GetID())
		common.SuccessResp(c)
	}))
	g.POST("/delete", withJob(manager, func(c *gin.Context, j T) {
		manager.Remove(j.GetID())
		common.SuccessResp(c)
	}))
	g.POST("/retry", withJob(manager, func(c *gin.Context, j T) {
		manager.Retry(j.GetID())
		common.SuccessResp(c)
	}))
	g.POST("/clear_done", func(c *gin.Context) {
		manager.RemoveByState(doneStates...)
		common.SuccessResp(c)
	})
	g.POST("/retry_failed", func(c *gin.Context) {
		manager.RetryAllFailed()
		common.SuccessResp(c)
	})
}

func SetupJobRoute(g *gin.RouterGroup) {
	jobRoute[*job.NotifyJob](g.Group("/notify"), job.NotifyManager, job.NotifyType)
}
