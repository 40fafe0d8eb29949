// Package metrics computes read-time derived values for projects, tasks and
// technicians. Every function is pure: the caller supplies the "today" used
// for date math, and nothing here is ever persisted.
package metrics

import (
	"math"
	"strings"
	"time"
)

// Health statuses
const (
	HealthGood     = "GOOD"
	HealthWarning  = "WARNING"
	HealthCritical = "CRITICAL"
)

// Task priorities
const (
	PriorityCompleted = "COMPLETED"
	PriorityCritical  = "CRITICAL"
	PriorityHigh      = "HIGH"
	PriorityMedium    = "MEDIUM"
	PriorityLow       = "LOW"
)

const (
	statusCompleted  = "COMPLETED"
	statusCancelled  = "CANCELLED"
	statusTodo       = "TODO"
	statusInProgress = "IN_PROGRESS"
	statusReview     = "REVIEW"
)

// Per-status weights giving partial credit to in-flight tasks
var statusWeights = map[string]float64{
	statusTodo:       0,
	statusInProgress: 50,
	statusReview:     80,
	statusCompleted:  100,
}

// Number of IN_PROGRESS tasks considered a full technician workload
const fullWorkloadTasks = 5

// ProjectSnapshot is the immutable project state the metrics read
type ProjectSnapshot struct {
	Status    string
	StartDate *time.Time
	EndDate   *time.Time
}

// TaskSnapshot is the immutable task state the metrics read
type TaskSnapshot struct {
	Status  string
	DueDate *time.Time
}

// Round2 rounds to 2 decimal places, half-up
func Round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// ProjectProgress is the share of COMPLETED tasks, in percent
func ProjectProgress(tasks []TaskSnapshot) float64 {
	if len(tasks) == 0 {
		return 0
	}
	completed := 0
	for _, t := range tasks {
		if t.Status == statusCompleted {
			completed++
		}
	}
	return Round2(float64(completed) / float64(len(tasks)) * 100)
}

// WeightedProjectProgress is the mean per-status weight across tasks
func WeightedProjectProgress(tasks []TaskSnapshot) float64 {
	if len(tasks) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range tasks {
		sum += statusWeights[t.Status]
	}
	return Round2(sum / float64(len(tasks)))
}

// ProjectIsOverdue reports whether the project slipped past its end date
// without reaching a terminal status
func ProjectIsOverdue(p ProjectSnapshot, today time.Time) bool {
	if p.EndDate == nil {
		return false
	}
	if p.Status == statusCompleted || p.Status == statusCancelled {
		return false
	}
	return daysBetween(today, *p.EndDate) < 0
}

// DaysRemaining is the whole-day distance to the project end date, negative
// once past it. The second return is false when no end date is set.
func DaysRemaining(endDate *time.Time, today time.Time) (int, bool) {
	if endDate == nil {
		return 0, false
	}
	return daysBetween(today, *endDate), true
}

// TimeProgress is the elapsed share of the project's planned duration,
// clamped to [0, 100]. The second return is false when either date is
// missing or the planned duration is not positive.
func TimeProgress(p ProjectSnapshot, today time.Time) (float64, bool) {
	if p.StartDate == nil || p.EndDate == nil {
		return 0, false
	}
	total := daysBetween(*p.StartDate, *p.EndDate)
	if total <= 0 {
		return 0, false
	}
	elapsed := daysBetween(*p.StartDate, today)
	if elapsed < 0 {
		elapsed = 0
	}
	pct := float64(elapsed) / float64(total) * 100
	if pct > 100 {
		pct = 100
	}
	return Round2(pct), true
}

// ProjectHealth classifies schedule risk. Rules are evaluated in priority
// order and the first match wins; an undefined time progress counts as 0.
func ProjectHealth(p ProjectSnapshot, tasks []TaskSnapshot, today time.Time) string {
	if ProjectIsOverdue(p, today) {
		return HealthCritical
	}
	progress := ProjectProgress(tasks)
	timeProgress, _ := TimeProgress(p, today)
	if timeProgress > progress+20 {
		return HealthWarning
	}
	if progress >= 90 {
		return HealthGood
	}
	if timeProgress <= progress+10 {
		return HealthGood
	}
	return HealthWarning
}

// TaskIsOverdue reports whether a non-completed task slipped past its due date
func TaskIsOverdue(t TaskSnapshot, today time.Time) bool {
	if t.DueDate == nil || t.Status == statusCompleted {
		return false
	}
	return daysBetween(today, *t.DueDate) < 0
}

// TaskDaysRemaining is the whole-day distance to the due date; false when
// the task has no due date
func TaskDaysRemaining(t TaskSnapshot, today time.Time) (int, bool) {
	if t.DueDate == nil {
		return 0, false
	}
	return daysBetween(today, *t.DueDate), true
}

// TaskPriority ranks urgency from the due date distance
func TaskPriority(t TaskSnapshot, today time.Time) string {
	if t.Status == statusCompleted {
		return PriorityCompleted
	}
	remaining, ok := TaskDaysRemaining(t, today)
	if !ok {
		return PriorityLow
	}
	switch {
	case remaining <= 0:
		return PriorityCritical
	case remaining <= 1:
		return PriorityHigh
	case remaining <= 7:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// WorkloadPercentage maps a technician's IN_PROGRESS task count onto a
// 0-100 scale, saturating at fullWorkloadTasks
func WorkloadPercentage(activeTaskCount int) float64 {
	pct := float64(activeTaskCount) / float64(fullWorkloadTasks) * 100
	if pct > 100 {
		pct = 100
	}
	return Round2(pct)
}

// ActiveTaskCount counts IN_PROGRESS tasks in a technician's assignment set
func ActiveTaskCount(tasks []TaskSnapshot) int {
	n := 0
	for _, t := range tasks {
		if t.Status == statusInProgress {
			n++
		}
	}
	return n
}

// JoinNames renders a technician name set for display
func JoinNames(names []string) string {
	return strings.Join(names, ", ")
}

// daysBetween is the whole-day difference to - from, ignoring time of day
func daysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
