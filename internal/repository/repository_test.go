package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"task-tracker-api/internal/models"
	"task-tracker-api/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newRepos(t *testing.T) (*Repositories, *gorm.DB) {
	t.Helper()
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	return New(db), db
}

func seedWorker(t *testing.T, repos *Repositories, username string, positionID *uint) *models.Worker {
	t.Helper()
	w := &models.Worker{Username: username, Password: "x", PositionID: positionID}
	require.NoError(t, repos.Workers.Create(context.Background(), w))
	return w
}

func day(offset int) time.Time {
	return time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, offset)
}

func TestPositionDelete_NullsWorkerPosition(t *testing.T) {
	ctx := context.Background()
	repos, _ := newRepos(t)

	pos := &models.Position{Name: "Developer"}
	require.NoError(t, repos.Positions.Create(ctx, pos))
	w := seedWorker(t, repos, "alice", &pos.ID)

	require.NoError(t, repos.Positions.Delete(ctx, pos.ID))

	got, err := repos.Workers.Get(ctx, w.ID)
	require.NoError(t, err)
	require.Nil(t, got.PositionID)
	require.Nil(t, got.Position)

	_, err = repos.Positions.Get(ctx, pos.ID)
	require.ErrorIs(t, err, ErrNotFound)

	err = repos.Positions.Delete(ctx, pos.ID)
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestTaskTypeAndProjectDelete_NullTaskForeignKeys(t *testing.T) {
	ctx := context.Background()
	repos, _ := newRepos(t)

	tt := &models.TaskType{Name: "Bug"}
	require.NoError(t, repos.TaskTypes.Create(ctx, tt))
	p := &models.Project{Name: "Apollo", Deadline: day(30)}
	require.NoError(t, repos.Projects.Create(ctx, p, nil))

	task := &models.Task{Name: "Fix", Deadline: day(5), Priority: models.PriorityHigh, TaskTypeID: &tt.ID, ProjectID: &p.ID}
	require.NoError(t, repos.Tasks.Create(ctx, task, nil))

	require.NoError(t, repos.TaskTypes.Delete(ctx, tt.ID))
	require.NoError(t, repos.Projects.Delete(ctx, p.ID))

	got, err := repos.Tasks.Get(ctx, task.ID)
	require.NoError(t, err)
	require.Nil(t, got.TaskTypeID)
	require.Nil(t, got.ProjectID)
}

func TestWorkerDelete_RemovesJoinRows(t *testing.T) {
	ctx := context.Background()
	repos, db := newRepos(t)

	w := seedWorker(t, repos, "bob", nil)
	team := &models.Team{Name: "Core"}
	require.NoError(t, repos.Teams.Create(ctx, team, []uint{w.ID}))
	task := &models.Task{Name: "Write docs", Deadline: day(1), Priority: models.PriorityLow}
	require.NoError(t, repos.Tasks.Create(ctx, task, []uint{w.ID, w.ID}))

	require.NoError(t, repos.Workers.Delete(ctx, w.ID))

	var n int64
	require.NoError(t, db.Table(teamMembersTable).Count(&n).Error)
	require.Zero(t, n)
	require.NoError(t, db.Table(taskAssigneesTable).Count(&n).Error)
	require.Zero(t, n)
}

func TestList_SearchAndPaginate(t *testing.T) {
	ctx := context.Background()
	repos, _ := newRepos(t)

	for i := 0; i < 7; i++ {
		seedWorker(t, repos, fmt.Sprintf("worker_%d", i), nil)
	}
	seedWorker(t, repos, "Admin.User", nil)

	page, err := repos.Workers.List(ctx, ListQuery{Page: 1})
	require.NoError(t, err)
	require.Len(t, page.Items, DefaultPageSize)
	require.Equal(t, int64(8), page.Total)
	require.Equal(t, 2, page.NumPages)
	require.True(t, page.HasNext)
	require.Equal(t, "Admin.User", page.Items[0].Username)

	page, err = repos.Workers.List(ctx, ListQuery{Page: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	require.False(t, page.HasNext)
	require.True(t, page.HasPrevious)

	page, err = repos.Workers.List(ctx, ListQuery{Search: "ADMIN"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	// underscores are matched literally
	page, err = repos.Workers.List(ctx, ListQuery{Search: "r_1"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, "worker_1", page.Items[0].Username)

	page, err = repos.Workers.List(ctx, ListQuery{Page: 9})
	require.NoError(t, err)
	require.Empty(t, page.Items)
	require.NotNil(t, page.Items)
}

func TestProjectList_OrderingAndPageSize(t *testing.T) {
	ctx := context.Background()
	repos, _ := newRepos(t)

	done := &models.Project{Name: "Done early", Deadline: day(1), IsCompleted: true}
	require.NoError(t, repos.Projects.Create(ctx, done, nil))
	late := &models.Project{Name: "B late", Deadline: day(20)}
	require.NoError(t, repos.Projects.Create(ctx, late, nil))
	soonB := &models.Project{Name: "B soon", Deadline: day(10)}
	require.NoError(t, repos.Projects.Create(ctx, soonB, nil))
	soonA := &models.Project{Name: "A soon", Deadline: day(10)}
	require.NoError(t, repos.Projects.Create(ctx, soonA, nil))

	page, err := repos.Projects.List(ctx, ListQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, ProjectPageSize)
	require.Equal(t, []string{"A soon", "B soon", "B late"},
		[]string{page.Items[0].Name, page.Items[1].Name, page.Items[2].Name})

	page, err = repos.Projects.List(ctx, ListQuery{Page: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, "Done early", page.Items[0].Name)
}

func TestTaskList_Ordering(t *testing.T) {
	ctx := context.Background()
	repos, _ := newRepos(t)

	mk := func(name string, d time.Time, completed bool) {
		require.NoError(t, repos.Tasks.Create(ctx, &models.Task{
			Name: name, Deadline: d, Priority: models.PriorityMedium, IsCompleted: completed,
		}, nil))
	}
	mk("zeta", day(1), false)
	mk("alpha", day(2), true)
	mk("beta", day(1), true)

	page, err := repos.Tasks.List(ctx, ListQuery{})
	require.NoError(t, err)
	require.Equal(t, "beta", page.Items[0].Name)
	require.Equal(t, "zeta", page.Items[1].Name)
	require.Equal(t, "alpha", page.Items[2].Name)

	completed, err := repos.Tasks.ListCompleted(ctx, ListQuery{})
	require.NoError(t, err)
	require.Equal(t, int64(2), completed.Total)
}

func TestProjectCandidatesAndMembership(t *testing.T) {
	ctx := context.Background()
	repos, _ := newRepos(t)

	a := seedWorker(t, repos, "a", nil)
	b := seedWorker(t, repos, "b", nil)
	c := seedWorker(t, repos, "c", nil)

	x := &models.Team{Name: "X"}
	require.NoError(t, repos.Teams.Create(ctx, x, []uint{a.ID, c.ID}))
	y := &models.Team{Name: "Y"}
	require.NoError(t, repos.Teams.Create(ctx, y, []uint{b.ID, c.ID}))

	p := &models.Project{Name: "P", Deadline: day(10)}
	require.NoError(t, repos.Projects.Create(ctx, p, []uint{x.ID}))

	candidates, err := repos.Projects.Candidates(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	require.Equal(t, "a", candidates[0].Username)
	require.Equal(t, "c", candidates[1].Username)

	ids, err := repos.Projects.TeamMemberIDs(ctx, p.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []uint{a.ID, c.ID}, ids)

	ok, err := repos.Workers.InProjectTeam(ctx, a.ID, p.ID)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = repos.Workers.InProjectTeam(ctx, b.ID, p.ID)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, repos.Teams.AddMember(ctx, y.ID, a.ID))
	require.NoError(t, repos.Teams.AddMember(ctx, y.ID, a.ID))
	members, err := repos.Teams.MemberIDs(ctx, y.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []uint{a.ID, b.ID, c.ID}, members)

	require.NoError(t, repos.Teams.RemoveMember(ctx, y.ID, a.ID))
	isMember, err := repos.Teams.IsMember(ctx, y.ID, a.ID)
	require.NoError(t, err)
	require.False(t, isMember)
}

func TestTransaction_RollsBack(t *testing.T) {
	ctx := context.Background()
	repos, _ := newRepos(t)

	boom := errors.New("boom")
	err := repos.Transaction(ctx, func(tx *Repositories) error {
		require.NoError(t, tx.TaskTypes.Create(ctx, &models.TaskType{Name: "Temp"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	page, err := repos.TaskTypes.List(ctx, ListQuery{})
	require.NoError(t, err)
	require.Zero(t, page.Total)
}

func TestMissingIDsAndStats(t *testing.T) {
	ctx := context.Background()
	repos, _ := newRepos(t)

	w := seedWorker(t, repos, "w", nil)
	missing, err := repos.Workers.MissingIDs(ctx, []uint{w.ID, 999, 999})
	require.NoError(t, err)
	require.Equal(t, []uint{999}, missing)

	require.NoError(t, repos.Projects.Create(ctx, &models.Project{Name: "P", Deadline: day(3)}, nil))
	require.NoError(t, repos.Teams.Create(ctx, &models.Team{Name: "T"}, nil))
	require.NoError(t, repos.Tasks.Create(ctx, &models.Task{Name: "done", Deadline: day(1), Priority: models.PriorityLow, IsCompleted: true}, nil))
	require.NoError(t, repos.Tasks.Create(ctx, &models.Task{Name: "open", Deadline: day(1), Priority: models.PriorityLow}, nil))

	stats, err := repos.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, Stats{Projects: 1, Teams: 1, CompletedTasks: 1}, stats)
}
