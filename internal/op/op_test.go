package op

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tunga-io/tunga/internal/conf"
	"github.com/tunga-io/tunga/internal/db"
	"github.com/tunga-io/tunga/internal/errs"
	"github.com/tunga-io/tunga/internal/model"
	"github.com/tunga-io/tunga/internal/notify"
	"github.com/tunga-io/tunga/internal/share"
	"github.com/tunga-io/tunga/pkg/utils"
)

type recordingMailer struct {
	mu      sync.Mutex
	sent    []notify.Message
	fail    error
	failFor string
}

func (r *recordingMailer) Send(ctx context.Context, msg notify.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	if r.failFor != "" && utils.SliceContains(msg.To, r.failFor) {
		return errors.Errorf("mailbox %s unavailable", r.failFor)
	}
	r.sent = append(r.sent, msg)
	return nil
}

type fixture struct {
	owner, ada, linus, stranger *model.User
	mailer                      *recordingMailer
	clock                       time.Time
}

func setup(t *testing.T) *fixture {
	t.Helper()
	conf.Conf = conf.DefaultConfig(t.TempDir())
	conf.Conf.Reminder.Delay = 0
	conf.Conf.Reminder.Attempts = 2

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dB, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	db.Init(dB)
	t.Cleanup(db.Close)

	f := &fixture{
		owner:    &model.User{Username: "owner", FirstName: "Olu", Email: "owner@example.com", Type: model.UserTypeProjectOwner},
		ada:      &model.User{Username: "ada", FirstName: "Ada", Email: "ada@example.com", Type: model.UserTypeDeveloper},
		linus:    &model.User{Username: "linus", FirstName: "Linus", Email: "linus@example.com", Type: model.UserTypeDeveloper},
		stranger: &model.User{Username: "stranger", Email: "s@example.com", Type: model.UserTypeProjectOwner},
		mailer:   &recordingMailer{},
		clock:    time.Date(2016, 6, 11, 9, 38, 0, 0, time.UTC),
	}
	for _, u := range []*model.User{f.owner, f.ada, f.linus, f.stranger} {
		require.NoError(t, db.CreateUser(u))
	}
	mailer = f.mailer
	resolver = &share.Resolver{PlatformEmail: "admin@tunga.io", PlatformPercentage: 10}
	now = func() time.Time { return f.clock }
	t.Cleanup(func() { now = time.Now })
	return f
}

func str(s string) *string { return &s }

func (f *fixture) createTask(t *testing.T, in TaskInput) *model.Task {
	t.Helper()
	if in.Title == nil {
		in.Title = str("Build API")
	}
	task, err := CreateTask(context.Background(), f.owner, in)
	require.NoError(t, err)
	return task
}

func milestones(t *testing.T, taskID uint) []model.Milestone {
	t.Helper()
	ms, err := db.ListMilestonesByTask(context.Background(), taskID)
	require.NoError(t, err)
	return ms
}

func TestCreateTaskWithoutParticipants(t *testing.T) {
	f := setup(t)
	task := f.createTask(t, TaskInput{})

	ms := milestones(t, task.ID)
	require.Len(t, ms, 1)
	assert.Equal(t, model.MilestoneStart, ms[0].Type)
	assert.Equal(t, int16(0), ms[0].Order)
	assert.Equal(t, model.MilestoneActive, ms[0].State)
	assert.Equal(t, f.owner.ID, ms[0].UserID)
}

func TestCreateTaskPermissions(t *testing.T) {
	f := setup(t)
	_, err := CreateTask(context.Background(), f.ada, TaskInput{Title: str("x")})
	assert.True(t, errors.Is(err, errs.PermissionDenied))

	_, err = CreateTask(context.Background(), f.owner, TaskInput{Title: str("x"), Currency: str("GBP")})
	assert.True(t, errors.Is(err, errs.InvalidArgument))

	f.createTask(t, TaskInput{Title: str("dup")})
	_, err = CreateTask(context.Background(), f.owner, TaskInput{Title: str("dup")})
	assert.True(t, errors.Is(err, errs.DuplicateTask))
}

func TestParticipantsAddedLater(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	task := f.createTask(t, TaskInput{})

	in := TaskInput{Participants: []uint{f.ada.ID, f.linus.ID}, Keys: []string{"participants"}}
	_, err := UpdateTask(ctx, f.owner, task.ID, in)
	require.NoError(t, err)
	_, err = UpdateTask(ctx, f.owner, task.ID, in)
	require.NoError(t, err)

	ms := milestones(t, task.ID)
	require.Len(t, ms, 2)
	assert.Equal(t, "Task Created", ms[0].Title)
	assert.Equal(t, "Dev(s) Selected", ms[1].Title)
	assert.Equal(t, "Ada Linus", ms[1].Description)
}

func TestSaveParticipantRules(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	task := f.createTask(t, TaskInput{
		Participants: []uint{f.ada.ID, f.linus.ID, 9999},
		Assignee:     &f.ada.ID,
	})

	ps, err := db.GetParticipations(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.True(t, ps[0].Assignee)
	assert.False(t, ps[1].Assignee)
	assert.Equal(t, model.DefaultParticipationRole, ps[0].Role)
	assert.Equal(t, f.owner.ID, ps[0].CreatedByID)

	// linus confirms and takes over as assignee; ada is rejected
	_, err = UpdateTask(ctx, f.linus, task.ID, TaskInput{
		Participants:          []uint{f.ada.ID, f.linus.ID},
		Assignee:              &f.linus.ID,
		ConfirmedParticipants: []uint{f.linus.ID},
		RejectedParticipants:  []uint{f.ada.ID},
		Keys:                  []string{"participants", "assignee", "confirmed_participants", "rejected_participants"},
	})
	require.NoError(t, err)

	ps, err = db.GetParticipations(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, ps[0].Accepted)
	assert.True(t, ps[0].Responded)
	assert.False(t, ps[0].Assignee)
	assert.True(t, ps[1].Accepted)
	assert.True(t, ps[1].Assignee)
	require.NotNil(t, Assignee(ps))
	assert.Equal(t, f.linus.ID, Assignee(ps).UserID)

	// participants may not touch anything else
	_, err = UpdateTask(ctx, f.linus, task.ID, TaskInput{Title: str("mine"), Keys: []string{"title"}})
	assert.True(t, errors.Is(err, errs.PermissionDenied))
}

func TestScheduledUpdateMilestones(t *testing.T) {
	f := setup(t)
	now = time.Now
	deadline := time.Now().Add(72 * time.Hour)
	interval, units := uint(1), model.UpdateScheduleDaily
	task := f.createTask(t, TaskInput{
		Deadline:            &deadline,
		UpdateInterval:      &interval,
		UpdateIntervalUnits: &units,
		Participants:        []uint{f.ada.ID},
	})

	var titles []string
	for _, m := range milestones(t, task.ID) {
		titles = append(titles, m.Title)
	}
	assert.Equal(t, []string{"Task Created", "Dev(s) Selected", "Update", "Update", "Deadline"}, titles)

	moved := deadline.Add(24 * time.Hour)
	_, err := UpdateTask(context.Background(), f.owner, task.ID, TaskInput{Deadline: &moved, Keys: []string{"deadline"}})
	require.NoError(t, err)
	ms := milestones(t, task.ID)
	last := ms[len(ms)-1]
	assert.Equal(t, "Deadline", last.Title)
	assert.WithinDuration(t, moved, *last.DueDate, time.Second)
	assert.Len(t, ms, 6)
}

func TestReminderSweepSendsOnce(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	task := f.createTask(t, TaskInput{})
	at := f.clock.Add(time.Minute)

	res, err := SendDueReminders(ctx, at)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Due: 1, Sent: 1}, res)

	res, err = SendDueReminders(ctx, at)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{}, res)

	require.Len(t, f.mailer.sent, 1)
	msg := f.mailer.sent[0]
	assert.Equal(t, []string{"owner@example.com"}, msg.To)
	assert.Contains(t, msg.Subject, "Please Send Us An Update On Your Task")
	ms := milestones(t, task.ID)
	assert.Contains(t, msg.Text, notify.UpdateURL("http://tunga.io", &ms[0]))
	assert.True(t, ms[0].Sent())
}

func TestReminderSweepFailureLeavesUnsent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	task := f.createTask(t, TaskInput{})
	at := f.clock.Add(time.Minute)

	f.mailer.fail = errors.New("relay down")
	res, err := SendDueReminders(ctx, at)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Due: 1, Failed: 1}, res)
	assert.False(t, milestones(t, task.ID)[0].Sent())

	f.mailer.fail = nil
	res, err = SendDueReminders(ctx, at)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
}

func TestReminderSweepContinuesAfterFailure(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ours := f.createTask(t, TaskInput{})
	theirs, err := CreateTask(ctx, f.stranger, TaskInput{Title: str("Fix login")})
	require.NoError(t, err)
	at := f.clock.Add(time.Minute)

	f.mailer.failFor = f.owner.Email
	res, err := SendDueReminders(ctx, at)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Due: 2, Sent: 1, Failed: 1}, res)

	assert.False(t, milestones(t, ours.ID)[0].Sent())
	assert.True(t, milestones(t, theirs.ID)[0].Sent())
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, []string{f.stranger.Email}, f.mailer.sent[0].To)
}

func TestConcurrentSweepsSendOnce(t *testing.T) {
	f := setup(t)
	task := f.createTask(t, TaskInput{})
	at := f.clock.Add(time.Minute)

	var wg sync.WaitGroup
	results := make([]SweepResult, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := SendDueReminders(context.Background(), at)
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	wg.Wait()

	sent := 0
	for _, res := range results {
		sent += res.Sent
	}
	assert.Equal(t, 1, sent)
	assert.Len(t, f.mailer.sent, 1)
	assert.True(t, milestones(t, task.ID)[0].Sent())
}

func TestReminderSweepSkipsFutureAndOtherTypes(t *testing.T) {
	f := setup(t)
	f.createTask(t, TaskInput{})

	res, err := SendDueReminders(context.Background(), f.clock.Add(-time.Minute))
	require.NoError(t, err)
	assert.Zero(t, res.Due)

	conf.Conf.Reminder.Types = []string{"interval"}
	res, err = SendDueReminders(context.Background(), f.clock.Add(time.Minute))
	require.NoError(t, err)
	assert.Zero(t, res.Due)
	assert.Empty(t, f.mailer.sent)
}

func TestCreateTaskUpdate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	task := f.createTask(t, TaskInput{Participants: []uint{f.ada.ID}, ConfirmedParticipants: []uint{f.ada.ID}})
	start := milestones(t, task.ID)[0]

	done := uint(100)
	u, err := CreateTaskUpdate(ctx, f.ada, task.ID, TaskUpdateInput{MilestoneID: &start.ID, PercentageDone: &done})
	require.NoError(t, err)
	assert.Equal(t, model.DefaultTaskUpdateStatus, u.Status)

	m, err := db.GetMilestoneByID(ctx, start.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MilestoneCompleted, m.State)
	require.NotNil(t, m.PercentageDone)
	assert.EqualValues(t, 100, *m.PercentageDone)

	_, err = CreateTaskUpdate(ctx, f.ada, task.ID, TaskUpdateInput{Accomplished: "tests"})
	require.NoError(t, err)

	var reports []model.Milestone
	for _, m := range milestones(t, task.ID) {
		if m.Title == "Update" {
			reports = append(reports, m)
		}
	}
	require.Len(t, reports, 2)
	assert.Equal(t, int16(1000), reports[0].Order)
	assert.Equal(t, int16(1001), reports[1].Order)
	assert.Nil(t, reports[0].DueDate)

	updates, total, err := ListTaskUpdates(ctx, f.owner, task.ID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, updates, 2)

	over := uint(101)
	_, err = CreateTaskUpdate(ctx, f.ada, task.ID, TaskUpdateInput{PercentageDone: &over})
	assert.True(t, errors.Is(err, errs.InvalidArgument))
	_, err = CreateTaskUpdate(ctx, f.linus, task.ID, TaskUpdateInput{})
	assert.Error(t, err)
}

func TestGetTaskMeta(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	task := f.createTask(t, TaskInput{
		Fee:                   ptrTo(int64(300)),
		Participants:          []uint{f.ada.ID, f.linus.ID},
		ConfirmedParticipants: []uint{f.ada.ID, f.linus.ID},
	})

	meta, err := GetTaskMeta(ctx, f.owner, task.ID, "http://localhost:8000")
	require.NoError(t, err)
	assert.Equal(t, task.ID, meta.Task)

	var participation share.Meta
	require.NoError(t, utils.Json.UnmarshalFromString(meta.Participation, &participation))
	require.Len(t, participation.Participants, 3)
	assert.Equal(t, "mailto:admin@tunga.io", participation.Participants[0].ID)
	assert.Equal(t, 45, participation.Participants[1].Share)
	assert.Equal(t, 45, participation.Participants[2].Share)

	var payment share.Payment
	require.NoError(t, utils.Json.UnmarshalFromString(meta.Payment, &payment))
	assert.Equal(t, share.Payment{TaskURL: fmt.Sprintf("http://localhost:8000/task/%d/", task.ID), Amount: 300, Currency: "EUR"}, payment)

	_, err = GetTaskMeta(ctx, f.stranger, task.ID, "")
	assert.True(t, errs.IsObjectNotFound(err))
}

func TestTaskVisibility(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	custom := model.VisibilityCustom
	task := f.createTask(t, TaskInput{Visibility: &custom, Participants: []uint{f.ada.ID}})

	_, err := GetTask(ctx, f.ada, task.ID)
	assert.NoError(t, err)
	_, err = GetTask(ctx, f.linus, task.ID)
	assert.True(t, errs.IsObjectNotFound(err))

	tasks, total, err := ListTasks(ctx, f.linus, db.TaskFilter{}, 1, 20)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, tasks)

	tasks, total, err = ListTasks(ctx, f.ada, db.TaskFilter{}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, task.ID, tasks[0].ID)

	team := model.VisibilityMyTeam
	_, err = UpdateTask(ctx, f.owner, task.ID, TaskInput{Visibility: &team, Keys: []string{"visibility"}})
	require.NoError(t, err)
	require.NoError(t, db.CreateConnection(&model.Connection{FromUserID: f.owner.ID, ToUserID: f.stranger.ID}))
	_, err = GetTask(ctx, f.stranger, task.ID)
	assert.NoError(t, err)
}

func TestMilestoneCRUD(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	task := f.createTask(t, TaskInput{})
	due := f.clock.Add(48 * time.Hour)

	m, err := CreateMilestone(ctx, f.owner, task.ID, MilestoneInput{Title: str("Design review"), DueDate: &due})
	require.NoError(t, err)
	assert.Equal(t, model.MilestoneInterval, m.Type)

	_, err = CreateMilestone(ctx, f.ada, task.ID, MilestoneInput{Title: str("x")})
	assert.Error(t, err)

	start := model.MilestoneStart
	_, err = CreateMilestone(ctx, f.owner, task.ID, MilestoneInput{Title: str("again"), Type: &start})
	assert.True(t, errors.Is(err, errs.InvalidArgument))

	closed := model.MilestoneClosed
	m, err = UpdateMilestone(ctx, f.owner, m.ID, MilestoneInput{State: &closed, Keys: []string{"state", "due_date"}})
	require.NoError(t, err)
	assert.Equal(t, model.MilestoneClosed, m.State)
	assert.Nil(t, m.DueDate)

	ms := milestones(t, task.ID)
	require.Len(t, ms, 2)
	assert.True(t, errors.Is(DeleteMilestone(ctx, f.owner, ms[0].ID), errs.InvalidArgument))
	require.NoError(t, DeleteMilestone(ctx, f.owner, m.ID))
	assert.Len(t, milestones(t, task.ID), 1)
}

func TestDeleteTask(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	task := f.createTask(t, TaskInput{Participants: []uint{f.ada.ID}})

	assert.True(t, errors.Is(DeleteTask(ctx, f.ada, task.ID), errs.PermissionDenied))
	require.NoError(t, DeleteTask(ctx, f.owner, task.ID))
	assert.Empty(t, milestones(t, task.ID))
	_, err := db.GetTaskByID(ctx, task.ID)
	assert.True(t, errs.IsObjectNotFound(err))
}

func proposal(pitch string) ApplicationInput {
	deliver := time.Date(2016, 7, 1, 12, 0, 0, 0, time.UTC)
	return ApplicationInput{
		Pitch:          &pitch,
		HoursNeeded:    ptrTo(uint(40)),
		HoursAvailable: ptrTo(uint(20)),
		DeliverAt:      &deliver,
	}
}

func TestCreateApplication(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	task := f.createTask(t, TaskInput{})

	_, err := CreateApplication(ctx, f.stranger, task.ID, proposal("hire me"))
	assert.True(t, errs.IsObjectNotFound(err))
	_, err = CreateApplication(ctx, f.owner, task.ID, proposal("hire me"))
	assert.True(t, errors.Is(err, errs.PermissionDenied))

	missing := proposal("hire me")
	missing.DeliverAt = nil
	_, err = CreateApplication(ctx, f.ada, task.ID, missing)
	assert.True(t, errors.Is(err, errs.InvalidArgument))
	_, err = CreateApplication(ctx, f.ada, task.ID, proposal("   "))
	assert.True(t, errors.Is(err, errs.InvalidArgument))
	_, err = CreateApplication(ctx, f.ada, task.ID, proposal(strings.Repeat("x", 1001)))
	assert.True(t, errors.Is(err, errs.InvalidArgument))

	a, err := CreateApplication(ctx, f.ada, task.ID, proposal(" I know Go "))
	require.NoError(t, err)
	assert.Equal(t, "I know Go", a.Pitch)
	assert.False(t, a.Responded)
	_, err = CreateApplication(ctx, f.ada, task.ID, proposal("again"))
	assert.True(t, errors.Is(err, errs.DuplicateApply))

	closed := f.createTask(t, TaskInput{Title: str("Closed"), Closed: ptrTo(true)})
	_, err = CreateApplication(ctx, f.ada, closed.ID, proposal("hire me"))
	assert.True(t, errors.Is(err, errs.InvalidArgument))
	shut := f.createTask(t, TaskInput{Title: str("Shut"), Apply: ptrTo(false)})
	_, err = CreateApplication(ctx, f.ada, shut.ID, proposal("hire me"))
	assert.True(t, errors.Is(err, errs.InvalidArgument))
}

func TestApplicationVisibility(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	task := f.createTask(t, TaskInput{})
	fromAda, err := CreateApplication(ctx, f.ada, task.ID, proposal("ada"))
	require.NoError(t, err)
	_, err = CreateApplication(ctx, f.linus, task.ID, proposal("linus"))
	require.NoError(t, err)

	all, total, err := ListApplications(ctx, f.owner, task.ID, nil, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, all, 2)

	own, total, err := ListApplications(ctx, f.ada, task.ID, nil, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, own, 1)
	assert.Equal(t, fromAda.ID, own[0].ID)

	_, total, err = ListApplications(ctx, f.owner, task.ID, ptrTo(true), 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)

	_, err = GetApplication(ctx, f.linus, fromAda.ID)
	assert.True(t, errs.IsObjectNotFound(err))
	got, err := GetApplication(ctx, f.owner, fromAda.ID)
	require.NoError(t, err)
	assert.Equal(t, f.ada.ID, got.UserID)
}

func TestRespondToApplication(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	task := f.createTask(t, TaskInput{})
	a, err := CreateApplication(ctx, f.ada, task.ID, proposal("ada"))
	require.NoError(t, err)

	_, err = UpdateApplication(ctx, f.ada, a.ID, ApplicationInput{Accepted: ptrTo(true)})
	assert.True(t, errors.Is(err, errs.PermissionDenied))
	_, err = UpdateApplication(ctx, f.owner, a.ID, ApplicationInput{Pitch: str("rewritten")})
	assert.True(t, errors.Is(err, errs.PermissionDenied))

	a, err = UpdateApplication(ctx, f.ada, a.ID, ApplicationInput{HoursNeeded: ptrTo(uint(60))})
	require.NoError(t, err)
	assert.EqualValues(t, 60, *a.HoursNeeded)

	a, err = UpdateApplication(ctx, f.owner, a.ID, ApplicationInput{Accepted: ptrTo(true)})
	require.NoError(t, err)
	assert.True(t, a.Accepted)
	assert.True(t, a.Responded)

	p, err := db.GetParticipation(ctx, task.ID, f.ada.ID)
	require.NoError(t, err)
	assert.True(t, p.Accepted)
	assert.True(t, p.Responded)
	assert.Equal(t, f.owner.ID, p.CreatedByID)
}

func TestWithdrawApplication(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	task := f.createTask(t, TaskInput{})
	a, err := CreateApplication(ctx, f.ada, task.ID, proposal("ada"))
	require.NoError(t, err)

	assert.True(t, errors.Is(DeleteApplication(ctx, f.owner, a.ID), errs.PermissionDenied))
	assert.True(t, errs.IsObjectNotFound(DeleteApplication(ctx, f.linus, a.ID)))
	require.NoError(t, DeleteApplication(ctx, f.ada, a.ID))
	_, err = db.GetApplicationByID(ctx, a.ID)
	assert.True(t, errs.IsObjectNotFound(err))
}

func ptrTo[T any](v T) *T {
	return &v
}
