package workflows

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"geo-survey/survey-portal/survey-portal-backend/pkg/apperrors"
)

func TestProjectTransitions(t *testing.T) {
	sm := NewProjectStateMachine()

	cases := []struct {
		from    string
		to      string
		allowed bool
	}{
		{ProjectPlanning, ProjectInProgress, true},
		{ProjectPlanning, ProjectCancelled, true},
		{ProjectPlanning, ProjectCompleted, false},
		{ProjectPlanning, ProjectOnHold, false},
		{ProjectInProgress, ProjectOnHold, true},
		{ProjectInProgress, ProjectCompleted, true},
		{ProjectInProgress, ProjectCancelled, true},
		{ProjectInProgress, ProjectPlanning, false},
		{ProjectOnHold, ProjectInProgress, true},
		{ProjectOnHold, ProjectCancelled, true},
		{ProjectOnHold, ProjectCompleted, false},
		{ProjectCompleted, ProjectInProgress, false},
		{ProjectCancelled, ProjectPlanning, false},
	}

	for _, tc := range cases {
		assert.Equalf(t, tc.allowed, sm.CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTaskTransitions(t *testing.T) {
	sm := NewTaskStateMachine()

	cases := []struct {
		from    string
		to      string
		allowed bool
	}{
		{TaskTodo, TaskInProgress, true},
		{TaskTodo, TaskCompleted, true},
		{TaskTodo, TaskReview, false},
		{TaskInProgress, TaskReview, true},
		{TaskInProgress, TaskCompleted, true},
		{TaskInProgress, TaskTodo, true},
		{TaskReview, TaskCompleted, true},
		{TaskReview, TaskInProgress, true},
		{TaskReview, TaskTodo, true},
		{TaskCompleted, TaskTodo, false},
		{TaskCompleted, TaskInProgress, false},
		{TaskCompleted, TaskReview, false},
	}

	for _, tc := range cases {
		assert.Equalf(t, tc.allowed, sm.CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestCheckTransitionNamesAllowedSet(t *testing.T) {
	sm := NewProjectStateMachine()

	err := sm.CheckTransition(ProjectPlanning, ProjectCompleted)
	assert.Error(t, err)
	assert.Equal(t, apperrors.KindStateConflict, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "IN_PROGRESS")
	assert.Contains(t, err.Error(), "CANCELLED")

	assert.NoError(t, sm.CheckTransition(ProjectPlanning, ProjectInProgress))
}

func TestCheckTransitionTerminal(t *testing.T) {
	sm := NewTaskStateMachine()

	err := sm.CheckTransition(TaskCompleted, TaskInProgress)
	assert.Error(t, err)
	assert.Equal(t, apperrors.KindStateConflict, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "terminal")
}

func TestIsValidStatus(t *testing.T) {
	assert.True(t, NewProjectStateMachine().IsValidStatus(ProjectOnHold))
	assert.False(t, NewProjectStateMachine().IsValidStatus("ARCHIVED"))
	assert.True(t, NewTaskStateMachine().IsValidStatus(TaskReview))
	assert.False(t, NewTaskStateMachine().IsValidStatus("ON_HOLD"))
}
