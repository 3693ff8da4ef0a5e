package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"task-tracker-api/internal/auth"
	"task-tracker-api/internal/models"
	"task-tracker-api/internal/realtime"
	"task-tracker-api/internal/repository"
	"task-tracker-api/internal/rules"
	"task-tracker-api/internal/testutil"

	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2030, time.January, 10, 12, 0, 0, 0, time.UTC)

type recorder struct {
	mu   sync.Mutex
	msgs [][]byte
}

func (r *recorder) Send(message []byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, message)
	return true
}

func (r *recorder) Close() {}

func (r *recorder) events(t *testing.T) []realtime.Event {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]realtime.Event, 0, len(r.msgs))
	for _, m := range r.msgs {
		var ev realtime.Event
		require.NoError(t, json.Unmarshal(m, &ev))
		out = append(out, ev)
	}
	return out
}

func newTestService(t *testing.T) (*Service, *realtime.Hub) {
	t.Helper()
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	hub := realtime.NewHub()
	svc := NewService(repository.New(db), nil,
		WithHub(hub),
		WithClock(func() time.Time { return fixedNow }),
	)
	return svc, hub
}

func addWorker(t *testing.T, svc *Service, username string) *models.Worker {
	t.Helper()
	w := &models.Worker{Username: username, Password: "x"}
	require.NoError(t, svc.Repos().Workers.Create(context.Background(), w))
	return w
}

func addTeam(t *testing.T, svc *Service, name string, members ...uint) *models.Team {
	t.Helper()
	team, err := svc.SaveTeam(context.Background(), 0, TeamInput{Name: name, MemberIDs: members})
	require.NoError(t, err)
	return team
}

func addProject(t *testing.T, svc *Service, name, deadline string, teams ...uint) *models.Project {
	t.Helper()
	p, err := svc.SaveProject(context.Background(), 0, ProjectInput{Name: name, Deadline: deadline, TeamIDs: teams})
	require.NoError(t, err)
	return p
}

func addTask(t *testing.T, svc *Service, name string, projectID *uint) *models.Task {
	t.Helper()
	task := &models.Task{
		Name:      name,
		Deadline:  fixedNow.AddDate(0, 0, 2),
		Priority:  models.PriorityMedium,
		ProjectID: projectID,
	}
	require.NoError(t, svc.Repos().Tasks.Create(context.Background(), task, nil))
	return task
}

func requireFieldError(t *testing.T, err error, field, msg string) {
	t.Helper()
	fe, ok := AsFieldErrors(err)
	require.True(t, ok, "expected field errors, got %v", err)
	require.Contains(t, fe[field], msg)
}

func TestToggleTaskAssignment_ProjectlessTaskRoundTrips(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	w := addWorker(t, svc, "alice")
	task := addTask(t, svc, "Write docs", nil)

	res, err := svc.ToggleTaskAssignment(ctx, w.ID, task.ID)
	require.NoError(t, err)
	require.Equal(t, rules.ActionAdd, res.Action)
	require.False(t, res.Rejected())

	assigned, err := svc.Repos().Tasks.IsAssigned(ctx, task.ID, w.ID)
	require.NoError(t, err)
	require.True(t, assigned)

	res, err = svc.ToggleTaskAssignment(ctx, w.ID, task.ID)
	require.NoError(t, err)
	require.Equal(t, rules.ActionRemove, res.Action)

	assigned, err = svc.Repos().Tasks.IsAssigned(ctx, task.ID, w.ID)
	require.NoError(t, err)
	require.False(t, assigned)
}

func TestToggleTaskAssignment_RequiresProjectTeam(t *testing.T) {
	ctx := context.Background()
	svc, hub := newTestService(t)
	a := addWorker(t, svc, "worker_a")
	b := addWorker(t, svc, "worker_b")
	x := addTeam(t, svc, "Team X", a.ID)
	addTeam(t, svc, "Team Y", b.ID)
	p := addProject(t, svc, "Project P", "2030-02-01", x.ID)
	task := addTask(t, svc, "T", &p.ID)

	feedA := &recorder{}
	hub.Register(a.ID, feedA)

	res, err := svc.ToggleTaskAssignment(ctx, a.ID, task.ID)
	require.NoError(t, err)
	require.Equal(t, rules.ActionAdd, res.Action)

	res, err = svc.ToggleTaskAssignment(ctx, b.ID, task.ID)
	require.NoError(t, err)
	require.Equal(t, rules.ActionNone, res.Action)
	require.True(t, res.Rejected())
	require.Equal(t, rules.NoticeTeamMembershipRequired, res.Notice)

	ids, err := svc.Repos().Tasks.AssigneeIDs(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, []uint{a.ID}, ids)

	evs := feedA.events(t)
	require.Len(t, evs, 1)
	require.Equal(t, realtime.EventTaskAssigned, evs[0].Type)
	require.Equal(t, task.ID, evs[0].TaskID)
}

func TestToggleTaskAssignment_RemovalAlwaysAllowed(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	a := addWorker(t, svc, "alice")
	x := addTeam(t, svc, "Team X", a.ID)
	p := addProject(t, svc, "P", "2030-02-01", x.ID)
	task := addTask(t, svc, "T", &p.ID)

	_, err := svc.ToggleTaskAssignment(ctx, a.ID, task.ID)
	require.NoError(t, err)

	// leaving the team does not block leaving the task
	_, err = svc.ToggleTeamMembership(ctx, a.ID, x.ID)
	require.NoError(t, err)

	res, err := svc.ToggleTaskAssignment(ctx, a.ID, task.ID)
	require.NoError(t, err)
	require.Equal(t, rules.ActionRemove, res.Action)
}

func TestToggleTaskAssignment_NotFound(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	w := addWorker(t, svc, "alice")
	task := addTask(t, svc, "T", nil)

	_, err := svc.ToggleTaskAssignment(ctx, w.ID, task.ID+100)
	require.True(t, IsNotFound(err))

	_, err = svc.ToggleTaskAssignment(ctx, w.ID+100, task.ID)
	require.True(t, IsNotFound(err))
}

func TestToggleTeamMembership(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	w := addWorker(t, svc, "alice")
	team := addTeam(t, svc, "Backend")

	action, err := svc.ToggleTeamMembership(ctx, w.ID, team.ID)
	require.NoError(t, err)
	require.Equal(t, rules.ActionAdd, action)

	member, err := svc.Repos().Teams.IsMember(ctx, team.ID, w.ID)
	require.NoError(t, err)
	require.True(t, member)

	action, err = svc.ToggleTeamMembership(ctx, w.ID, team.ID)
	require.NoError(t, err)
	require.Equal(t, rules.ActionRemove, action)

	_, err = svc.ToggleTeamMembership(ctx, w.ID, team.ID+100)
	require.True(t, IsNotFound(err))
}

func TestToggleTeamMembership_NotifiesTeam(t *testing.T) {
	ctx := context.Background()
	svc, hub := newTestService(t)
	lead := addWorker(t, svc, "lead")
	joiner := addWorker(t, svc, "joiner")
	bystander := addWorker(t, svc, "bystander")
	team := addTeam(t, svc, "Core", lead.ID)

	leadFeed, joinerFeed, bystanderFeed := &recorder{}, &recorder{}, &recorder{}
	hub.Register(lead.ID, leadFeed)
	hub.Register(joiner.ID, joinerFeed)
	hub.Register(bystander.ID, bystanderFeed)

	_, err := svc.ToggleTeamMembership(ctx, joiner.ID, team.ID)
	require.NoError(t, err)
	_, err = svc.ToggleTeamMembership(ctx, joiner.ID, team.ID)
	require.NoError(t, err)

	got := leadFeed.events(t)
	require.Len(t, got, 2)
	require.Equal(t, realtime.EventTeamJoined, got[0].Type)
	require.Equal(t, realtime.EventTeamLeft, got[1].Type)
	require.Equal(t, joiner.ID, got[1].ActorID)

	// the leaver is no longer a member but still hears about it, once
	require.Len(t, joinerFeed.events(t), 2)
	require.Empty(t, bystanderFeed.events(t))
}

func TestCompleteTask_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	w := addWorker(t, svc, "alice")
	task := addTask(t, svc, "T", nil)

	got, err := svc.CompleteTask(ctx, w.ID, task.ID)
	require.NoError(t, err)
	require.True(t, got.IsCompleted)

	got, err = svc.CompleteTask(ctx, w.ID, task.ID)
	require.NoError(t, err)
	require.True(t, got.IsCompleted)

	_, err = svc.CompleteTask(ctx, w.ID, task.ID+100)
	require.True(t, IsNotFound(err))
}

func TestCompleteProject_Scenarios(t *testing.T) {
	ctx := context.Background()
	svc, hub := newTestService(t)
	actor := addWorker(t, svc, "lead")
	member := addWorker(t, svc, "dev")
	team := addTeam(t, svc, "Core", member.ID)

	p := addProject(t, svc, "P", "2030-02-01", team.ID)
	t1 := addTask(t, svc, "T1", &p.ID)
	t2 := addTask(t, svc, "T2", &p.ID)
	q := addProject(t, svc, "Q", "2030-02-01")
	t3 := addTask(t, svc, "T3", &q.ID)
	addTask(t, svc, "T4", &q.ID)

	for _, id := range []uint{t1.ID, t2.ID, t3.ID} {
		_, err := svc.CompleteTask(ctx, actor.ID, id)
		require.NoError(t, err)
	}

	feed := &recorder{}
	hub.Register(member.ID, feed)

	res, err := svc.CompleteProject(ctx, actor.ID, p.ID)
	require.NoError(t, err)
	require.True(t, res.Completed)
	require.Empty(t, res.Notice)
	got, err := svc.Repos().Projects.Find(ctx, p.ID)
	require.NoError(t, err)
	require.True(t, got.IsCompleted)

	evs := feed.events(t)
	require.Len(t, evs, 1)
	require.Equal(t, realtime.EventProjectCompleted, evs[0].Type)

	// a second completion is a no-op
	res, err = svc.CompleteProject(ctx, actor.ID, p.ID)
	require.NoError(t, err)
	require.True(t, res.Completed)
	require.Len(t, feed.events(t), 1)

	res, err = svc.CompleteProject(ctx, actor.ID, q.ID)
	require.NoError(t, err)
	require.False(t, res.Completed)
	require.Equal(t, int64(1), res.OpenTasks)
	require.Equal(t, rules.NoticeProjectHasOpenTasks, res.Notice)
	got, err = svc.Repos().Projects.Find(ctx, q.ID)
	require.NoError(t, err)
	require.False(t, got.IsCompleted)

	_, err = svc.CompleteProject(ctx, actor.ID, q.ID+100)
	require.True(t, IsNotFound(err))
}

func TestCompleteProject_EmptyProjectCompletes(t *testing.T) {
	svc, _ := newTestService(t)
	actor := addWorker(t, svc, "lead")
	p := addProject(t, svc, "Empty", "2030-02-01")

	res, err := svc.CompleteProject(context.Background(), actor.ID, p.ID)
	require.NoError(t, err)
	require.True(t, res.Completed)
}

func TestCreateProjectTask_DeadlineChecks(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	p := addProject(t, svc, "P", "2030-01-20")

	_, err := svc.CreateProjectTask(ctx, p.ID, TaskInput{Name: "late", Deadline: "2030-01-21"})
	requireFieldError(t, err, "deadline", rules.MsgDeadlineAfterProject)

	_, err = svc.CreateProjectTask(ctx, p.ID, TaskInput{Name: "past", Deadline: "2030-01-09"})
	requireFieldError(t, err, "deadline", rules.MsgDeadlineInPast)

	task, err := svc.CreateProjectTask(ctx, p.ID, TaskInput{Name: "ok", Deadline: "2030-01-20"})
	require.NoError(t, err)
	require.NotNil(t, task.ProjectID)
	require.Equal(t, p.ID, *task.ProjectID)
	require.Equal(t, models.PriorityMedium, task.Priority)

	_, err = svc.CreateProjectTask(ctx, p.ID+100, TaskInput{Name: "x", Deadline: "2030-01-15"})
	require.True(t, IsNotFound(err))
}

func TestCreateTask_FreeStandingOnlyChecksPast(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	task, err := svc.CreateTask(ctx, TaskInput{Name: "far", Deadline: "2031-06-01", Priority: "Urgent"})
	require.NoError(t, err)
	require.Nil(t, task.ProjectID)
	require.Equal(t, models.PriorityUrgent, task.Priority)

	_, err = svc.CreateTask(ctx, TaskInput{Name: "past", Deadline: "2029-12-31"})
	requireFieldError(t, err, "deadline", rules.MsgDeadlineInPast)

	_, err = svc.CreateTask(ctx, TaskInput{Name: "bad", Deadline: "soon"})
	requireFieldError(t, err, "deadline", rules.MsgInvalidDate)

	_, err = svc.CreateTask(ctx, TaskInput{Name: "bad", Deadline: "2031-06-01", Priority: "Whenever"})
	fe, ok := AsFieldErrors(err)
	require.True(t, ok)
	require.NotEmpty(t, fe["priority"])

	_, err = svc.CreateTask(ctx, TaskInput{Deadline: "2031-06-01"})
	requireFieldError(t, err, "name", "This field is required.")
}

func TestCreateProjectTask_AssigneesMustBeCandidates(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	a := addWorker(t, svc, "alice")
	b := addWorker(t, svc, "bob")
	team := addTeam(t, svc, "Core", a.ID)
	p := addProject(t, svc, "P", "2030-02-01", team.ID)

	_, err := svc.CreateProjectTask(ctx, p.ID, TaskInput{
		Name: "T", Deadline: "2030-01-15", AssigneeIDs: []uint{a.ID, b.ID},
	})
	requireFieldError(t, err, "assignees", "Select a valid choice. 2 is not one of the available choices.")

	page, err := svc.Repos().Tasks.List(ctx, repository.ListQuery{})
	require.NoError(t, err)
	require.Zero(t, page.Total)

	task, err := svc.CreateProjectTask(ctx, p.ID, TaskInput{
		Name: "T", Deadline: "2030-01-15", AssigneeIDs: []uint{a.ID},
	})
	require.NoError(t, err)
	require.Len(t, task.Assignees, 1)
	require.Equal(t, "alice", task.Assignees[0].Username)
}

func TestUpdateProjectTask(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	p := addProject(t, svc, "P", "2030-02-01")
	other := addProject(t, svc, "Other", "2030-02-01")
	task, err := svc.CreateProjectTask(ctx, p.ID, TaskInput{Name: "T", Deadline: "2030-01-15"})
	require.NoError(t, err)

	updated, err := svc.UpdateProjectTask(ctx, p.ID, task.ID, TaskInput{Name: "T2", Deadline: "2030-01-16", Priority: "Low"})
	require.NoError(t, err)
	require.Equal(t, "T2", updated.Name)
	require.Equal(t, models.PriorityLow, updated.Priority)

	_, err = svc.UpdateProjectTask(ctx, other.ID, task.ID, TaskInput{Name: "T3", Deadline: "2030-01-16"})
	require.True(t, IsNotFound(err))
}

func TestUpdateTask_ReplacesAssignees(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	a := addWorker(t, svc, "alice")
	b := addWorker(t, svc, "bob")
	tt, err := svc.SaveTaskType(ctx, 0, TaskTypeInput{Name: "Bug"})
	require.NoError(t, err)

	task, err := svc.CreateTask(ctx, TaskInput{Name: "T", Deadline: "2030-01-15", AssigneeIDs: []uint{a.ID}})
	require.NoError(t, err)

	task, err = svc.UpdateTask(ctx, task.ID, TaskInput{
		Name: "T", Deadline: "2030-01-15", TaskTypeID: &tt.ID, AssigneeIDs: []uint{b.ID, b.ID},
	})
	require.NoError(t, err)
	require.Len(t, task.Assignees, 1)
	require.Equal(t, b.ID, task.Assignees[0].ID)
	require.NotNil(t, task.TaskType)
	require.Equal(t, "Bug", task.TaskType.Name)

	missing := uint(999)
	_, err = svc.UpdateTask(ctx, task.ID, TaskInput{Name: "T", Deadline: "2030-01-15", TaskTypeID: &missing})
	requireFieldError(t, err, "taskType", msgInvalidChoice)

	_, err = svc.UpdateTask(ctx, task.ID+100, TaskInput{Name: "T", Deadline: "2030-01-15"})
	require.True(t, IsNotFound(err))
}

func TestSavePosition_Validation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	p, err := svc.SavePosition(ctx, 0, PositionInput{Name: "Valid Name"})
	require.NoError(t, err)
	require.NotZero(t, p.ID)

	_, err = svc.SavePosition(ctx, 0, PositionInput{Name: "abc123"})
	requireFieldError(t, err, "name", rules.MsgPositionCharset)

	_, err = svc.SavePosition(ctx, 0, PositionInput{Name: "A"})
	requireFieldError(t, err, "name", rules.MsgPositionTooShort)

	_, err = svc.SavePosition(ctx, 0, PositionInput{Name: "Valid Name"})
	requireFieldError(t, err, "name", "Position with this Name already exists.")

	renamed, err := svc.SavePosition(ctx, p.ID, PositionInput{Name: "Renamed"})
	require.NoError(t, err)
	require.Equal(t, "Renamed", renamed.Name)

	// keeping its own name is not a conflict
	_, err = svc.SavePosition(ctx, p.ID, PositionInput{Name: "Renamed"})
	require.NoError(t, err)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	pos, err := svc.SavePosition(ctx, 0, PositionInput{Name: "Developer"})
	require.NoError(t, err)

	w, err := svc.RegisterWorker(ctx, RegisterInput{
		Username:   "alice",
		FirstName:  "Alice",
		PositionID: &pos.ID,
		Password1:  "worker1qazcde3",
		Password2:  "worker1qazcde3",
	})
	require.NoError(t, err)
	require.NotEqual(t, "worker1qazcde3", w.Password)

	_, err = svc.RegisterWorker(ctx, RegisterInput{
		Username: "alice", Password1: "worker1qazcde3", Password2: "different1",
	})
	requireFieldError(t, err, "username", msgUsernameTaken)
	requireFieldError(t, err, "password2", "The two password fields didn't match.")

	got, err := svc.Authenticate(ctx, "alice", "worker1qazcde3")
	require.NoError(t, err)
	require.Equal(t, w.ID, got.ID)

	_, err = svc.Authenticate(ctx, "alice", "nope")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "nobody", "nope")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestUpdateWorker(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	a := addWorker(t, svc, "alice")
	addWorker(t, svc, "bob")

	w, err := svc.UpdateWorker(ctx, a.ID, WorkerInput{Username: "alice2", FirstName: "Alice"})
	require.NoError(t, err)
	require.Equal(t, "alice2", w.Username)
	require.Equal(t, "Alice", w.FirstName)

	_, err = svc.UpdateWorker(ctx, a.ID, WorkerInput{Username: "bob"})
	requireFieldError(t, err, "username", msgUsernameTaken)

	missing := uint(42)
	_, err = svc.UpdateWorker(ctx, a.ID, WorkerInput{Username: "alice3", PositionID: &missing})
	requireFieldError(t, err, "position", msgInvalidChoice)

	_, err = svc.UpdateWorker(ctx, a.ID+100, WorkerInput{Username: "ghost"})
	require.True(t, IsNotFound(err))
}

func TestSaveTeamAndProject_ReplaceLinks(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	a := addWorker(t, svc, "alice")
	b := addWorker(t, svc, "bob")

	team := addTeam(t, svc, "Core", a.ID, b.ID)
	require.Len(t, team.Members, 2)

	team, err := svc.SaveTeam(ctx, team.ID, TeamInput{Name: "Core", MemberIDs: []uint{b.ID}})
	require.NoError(t, err)
	require.Len(t, team.Members, 1)
	require.Equal(t, "bob", team.Members[0].Username)

	_, err = svc.SaveTeam(ctx, 0, TeamInput{Name: "Ghosts", MemberIDs: []uint{77}})
	requireFieldError(t, err, "members", "Select a valid choice. 77 is not one of the available choices.")

	p := addProject(t, svc, "P", "2030-03-01", team.ID)
	require.Len(t, p.Teams, 1)

	p, err = svc.SaveProject(ctx, p.ID, ProjectInput{Name: "P2", Deadline: "2030-04-01"})
	require.NoError(t, err)
	require.Equal(t, "P2", p.Name)
	require.Empty(t, p.Teams)
	require.Equal(t, time.Date(2030, time.April, 1, 0, 0, 0, 0, time.UTC), p.Deadline.UTC())

	_, err = svc.SaveProject(ctx, 0, ProjectInput{Name: "Bad", Deadline: "whenever"})
	requireFieldError(t, err, "deadline", rules.MsgInvalidDate)
}

func TestUpdateTask_KeepsProjectAndItsChecks(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	member := addWorker(t, svc, "member")
	outsider := addWorker(t, svc, "outsider")
	team := addTeam(t, svc, "Core", member.ID)
	p := addProject(t, svc, "P", "2030-01-20", team.ID)

	task, err := svc.CreateProjectTask(ctx, p.ID, TaskInput{Name: "T", Deadline: "2030-01-15"})
	require.NoError(t, err)

	_, err = svc.UpdateTask(ctx, task.ID, TaskInput{Name: "T", Deadline: "2030-06-01", AssigneeIDs: []uint{outsider.ID}})
	requireFieldError(t, err, "deadline", rules.MsgDeadlineAfterProject)
	requireFieldError(t, err, "assignees", fmt.Sprintf(msgMissingItemFmt, outsider.ID))

	got, err := svc.Repos().Tasks.Get(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ProjectID)
	require.Equal(t, p.ID, *got.ProjectID)
	require.Empty(t, got.Assignees)

	updated, err := svc.UpdateTask(ctx, task.ID, TaskInput{Name: "T renamed", Deadline: "2030-01-18", AssigneeIDs: []uint{member.ID}})
	require.NoError(t, err)
	require.NotNil(t, updated.ProjectID)
	require.Equal(t, p.ID, *updated.ProjectID)
	require.Len(t, updated.Assignees, 1)
}
