package workflows

import (
	"strings"

	"geo-survey/survey-portal/survey-portal-backend/pkg/apperrors"
)

// Project statuses
const (
	ProjectPlanning   = "PLANNING"
	ProjectInProgress = "IN_PROGRESS"
	ProjectOnHold     = "ON_HOLD"
	ProjectCompleted  = "COMPLETED"
	ProjectCancelled  = "CANCELLED"
)

// Task statuses
const (
	TaskTodo       = "TODO"
	TaskInProgress = "IN_PROGRESS"
	TaskReview     = "REVIEW"
	TaskCompleted  = "COMPLETED"
)

// StateMachine enforces status transitions
type StateMachine struct {
	entity             string
	allowedTransitions map[string][]string
}

// NewProjectStateMachine builds the machine for project statuses
func NewProjectStateMachine() *StateMachine {
	return &StateMachine{
		entity: "project",
		allowedTransitions: map[string][]string{
			ProjectPlanning:   {ProjectInProgress, ProjectCancelled},
			ProjectInProgress: {ProjectOnHold, ProjectCompleted, ProjectCancelled},
			ProjectOnHold:     {ProjectInProgress, ProjectCancelled},
			ProjectCompleted:  {}, // terminal
			ProjectCancelled:  {}, // terminal
		},
	}
}

// NewTaskStateMachine builds the machine for task statuses
func NewTaskStateMachine() *StateMachine {
	return &StateMachine{
		entity: "task",
		allowedTransitions: map[string][]string{
			TaskTodo:       {TaskInProgress, TaskCompleted},
			TaskInProgress: {TaskReview, TaskCompleted, TaskTodo},
			TaskReview:     {TaskCompleted, TaskInProgress, TaskTodo},
			TaskCompleted:  {}, // terminal
		},
	}
}

// IsValidStatus reports whether status is a known state of this machine
func (sm *StateMachine) IsValidStatus(status string) bool {
	_, exists := sm.allowedTransitions[status]
	return exists
}

// CanTransition checks if a status transition is allowed
func (sm *StateMachine) CanTransition(from, to string) bool {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return false
	}
	for _, allowedTo := range allowed {
		if allowedTo == to {
			return true
		}
	}
	return false
}

// GetAllowedTransitions returns the allowed next statuses for a given status
func (sm *StateMachine) GetAllowedTransitions(from string) []string {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return []string{}
	}
	return allowed
}

// CheckTransition returns a state-conflict error naming the allowed set when
// the transition is not permitted
func (sm *StateMachine) CheckTransition(from, to string) error {
	if sm.CanTransition(from, to) {
		return nil
	}
	allowed := sm.GetAllowedTransitions(from)
	if len(allowed) == 0 {
		return apperrors.StateConflictf("%s status %s is terminal, no transitions allowed", sm.entity, from)
	}
	return apperrors.StateConflictf("%s status cannot change from %s to %s, allowed: %s",
		sm.entity, from, to, strings.Join(allowed, ", "))
}
