package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func TestProjectProgress(t *testing.T) {
	assert.Equal(t, 0.0, ProjectProgress(nil))

	tasks := []TaskSnapshot{
		{Status: "COMPLETED"},
		{Status: "COMPLETED"},
		{Status: "IN_PROGRESS"},
	}
	// 2/3 rounds half-up to 66.67
	assert.Equal(t, 66.67, ProjectProgress(tasks))

	allDone := []TaskSnapshot{{Status: "COMPLETED"}}
	assert.Equal(t, 100.0, ProjectProgress(allDone))
}

func TestWeightedProjectProgress(t *testing.T) {
	assert.Equal(t, 0.0, WeightedProjectProgress(nil))

	tasks := []TaskSnapshot{
		{Status: "TODO"},
		{Status: "IN_PROGRESS"},
		{Status: "REVIEW"},
		{Status: "COMPLETED"},
	}
	// (0 + 50 + 80 + 100) / 4
	assert.Equal(t, 57.5, WeightedProjectProgress(tasks))
}

func TestTimeProgressHalfway(t *testing.T) {
	p := ProjectSnapshot{
		Status:    "IN_PROGRESS",
		StartDate: datePtr(2024, time.January, 1),
		EndDate:   datePtr(2024, time.January, 31),
	}
	pct, ok := TimeProgress(p, date(2024, time.January, 16))
	assert.True(t, ok)
	assert.Equal(t, 50.0, pct)
}

func TestTimeProgressClampsAndUndefined(t *testing.T) {
	p := ProjectSnapshot{
		StartDate: datePtr(2024, time.January, 1),
		EndDate:   datePtr(2024, time.January, 10),
	}

	pct, ok := TimeProgress(p, date(2024, time.March, 1))
	assert.True(t, ok)
	assert.Equal(t, 100.0, pct)

	pct, ok = TimeProgress(p, date(2023, time.December, 1))
	assert.True(t, ok)
	assert.Equal(t, 0.0, pct)

	_, ok = TimeProgress(ProjectSnapshot{EndDate: datePtr(2024, time.January, 10)}, date(2024, time.January, 5))
	assert.False(t, ok)

	// zero-length span is undefined
	same := ProjectSnapshot{StartDate: datePtr(2024, time.January, 1), EndDate: datePtr(2024, time.January, 1)}
	_, ok = TimeProgress(same, date(2024, time.January, 1))
	assert.False(t, ok)
}

func TestProjectIsOverdue(t *testing.T) {
	today := date(2024, time.June, 15)

	p := ProjectSnapshot{Status: "IN_PROGRESS", EndDate: datePtr(2024, time.June, 14)}
	assert.True(t, ProjectIsOverdue(p, today))

	p.Status = "COMPLETED"
	assert.False(t, ProjectIsOverdue(p, today))

	p.Status = "CANCELLED"
	assert.False(t, ProjectIsOverdue(p, today))

	// end date today is not yet overdue
	p = ProjectSnapshot{Status: "IN_PROGRESS", EndDate: datePtr(2024, time.June, 15)}
	assert.False(t, ProjectIsOverdue(p, today))

	assert.False(t, ProjectIsOverdue(ProjectSnapshot{Status: "IN_PROGRESS"}, today))
}

func TestDaysRemaining(t *testing.T) {
	today := date(2024, time.June, 15)

	d, ok := DaysRemaining(datePtr(2024, time.June, 20), today)
	assert.True(t, ok)
	assert.Equal(t, 5, d)

	d, ok = DaysRemaining(datePtr(2024, time.June, 10), today)
	assert.True(t, ok)
	assert.Equal(t, -5, d)

	_, ok = DaysRemaining(nil, today)
	assert.False(t, ok)
}

func TestProjectHealthOrdering(t *testing.T) {
	today := date(2024, time.June, 15)

	// overdue wins over everything
	overdue := ProjectSnapshot{Status: "IN_PROGRESS", StartDate: datePtr(2024, time.January, 1), EndDate: datePtr(2024, time.June, 1)}
	done := []TaskSnapshot{{Status: "COMPLETED"}}
	assert.Equal(t, HealthCritical, ProjectHealth(overdue, done, today))

	// time progress far ahead of work progress
	lagging := ProjectSnapshot{Status: "IN_PROGRESS", StartDate: datePtr(2024, time.June, 1), EndDate: datePtr(2024, time.June, 21)}
	todo := []TaskSnapshot{{Status: "TODO"}, {Status: "TODO"}} // progress 0, timeProgress 70
	assert.Equal(t, HealthWarning, ProjectHealth(lagging, todo, today))

	// nearly done is good regardless of time progress
	nearlyDone := []TaskSnapshot{
		{Status: "COMPLETED"}, {Status: "COMPLETED"}, {Status: "COMPLETED"},
		{Status: "COMPLETED"}, {Status: "COMPLETED"}, {Status: "COMPLETED"},
		{Status: "COMPLETED"}, {Status: "COMPLETED"}, {Status: "COMPLETED"},
		{Status: "IN_PROGRESS"},
	}
	ahead := ProjectSnapshot{Status: "IN_PROGRESS", StartDate: datePtr(2024, time.June, 1), EndDate: datePtr(2024, time.June, 21)}
	assert.Equal(t, HealthGood, ProjectHealth(ahead, nearlyDone, today))

	// no dates: time progress counts as 0, on-track
	assert.Equal(t, HealthGood, ProjectHealth(ProjectSnapshot{Status: "PLANNING"}, nil, today))
}

func TestTaskIsOverdueAndPriority(t *testing.T) {
	today := date(2024, time.June, 15)

	yesterday := TaskSnapshot{Status: "IN_PROGRESS", DueDate: datePtr(2024, time.June, 14)}
	assert.True(t, TaskIsOverdue(yesterday, today))
	assert.Equal(t, PriorityCritical, TaskPriority(yesterday, today))

	dueToday := TaskSnapshot{Status: "TODO", DueDate: datePtr(2024, time.June, 15)}
	assert.False(t, TaskIsOverdue(dueToday, today))
	assert.Equal(t, PriorityCritical, TaskPriority(dueToday, today))

	dueTomorrow := TaskSnapshot{Status: "TODO", DueDate: datePtr(2024, time.June, 16)}
	assert.Equal(t, PriorityHigh, TaskPriority(dueTomorrow, today))

	dueThisWeek := TaskSnapshot{Status: "TODO", DueDate: datePtr(2024, time.June, 20)}
	assert.Equal(t, PriorityMedium, TaskPriority(dueThisWeek, today))

	dueLater := TaskSnapshot{Status: "TODO", DueDate: datePtr(2024, time.July, 20)}
	assert.Equal(t, PriorityLow, TaskPriority(dueLater, today))

	completed := TaskSnapshot{Status: "COMPLETED", DueDate: datePtr(2024, time.June, 1)}
	assert.False(t, TaskIsOverdue(completed, today))
	assert.Equal(t, PriorityCompleted, TaskPriority(completed, today))

	noDue := TaskSnapshot{Status: "TODO"}
	assert.Equal(t, PriorityLow, TaskPriority(noDue, today))
}

func TestWorkloadPercentage(t *testing.T) {
	assert.Equal(t, 0.0, WorkloadPercentage(0))
	assert.Equal(t, 40.0, WorkloadPercentage(2))
	assert.Equal(t, 100.0, WorkloadPercentage(5))
	assert.Equal(t, 100.0, WorkloadPercentage(9))
}

func TestActiveTaskCount(t *testing.T) {
	tasks := []TaskSnapshot{
		{Status: "IN_PROGRESS"},
		{Status: "IN_PROGRESS"},
		{Status: "REVIEW"},
		{Status: "COMPLETED"},
	}
	assert.Equal(t, 2, ActiveTaskCount(tasks))
}

func TestJoinNames(t *testing.T) {
	assert.Equal(t, "", JoinNames(nil))
	assert.Equal(t, "Nadia Alami, Karim Bensaid", JoinNames([]string{"Nadia Alami", "Karim Bensaid"}))
}

func TestRound2HalfUp(t *testing.T) {
	assert.Equal(t, 66.67, Round2(66.666666))
	assert.Equal(t, 57.5, Round2(57.5))
	assert.Equal(t, 0.13, Round2(0.125))
}
