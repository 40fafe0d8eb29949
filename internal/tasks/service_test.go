package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"geo-survey/survey-portal/survey-portal-backend/internal/projects"
	"geo-survey/survey-portal/survey-portal-backend/internal/users"
	"geo-survey/survey-portal/survey-portal-backend/pkg/apperrors"
	"geo-survey/survey-portal/survey-portal-backend/pkg/workflows"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, task *Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Task), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, task *Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) List(ctx context.Context, filter TaskFilter) ([]Task, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]Task), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) AddTechnicien(ctx context.Context, task *Task, technicien *users.User) error {
	args := m.Called(ctx, task, technicien)
	return args.Error(0)
}

func (m *MockRepository) RemoveTechnicien(ctx context.Context, task *Task, technicien *users.User) error {
	args := m.Called(ctx, task, technicien)
	return args.Error(0)
}

func (m *MockRepository) ReplaceTechniciens(ctx context.Context, task *Task, techniciens []users.User) error {
	args := m.Called(ctx, task, techniciens)
	return args.Error(0)
}

func (m *MockRepository) CountByTechnicienAndStatus(ctx context.Context, technicienID uuid.UUID, status string) (int64, error) {
	args := m.Called(ctx, technicienID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) Transaction(ctx context.Context, fn func(Repository) error) error {
	m.Called(ctx)
	return fn(m)
}

type mockProjectReader struct {
	mock.Mock
}

func (m *mockProjectReader) GetProject(ctx context.Context, id uuid.UUID) (*projects.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*projects.Project), args.Error(1)
}

type mockDirectory struct {
	mock.Mock
}

func (m *mockDirectory) GetActiveByRole(ctx context.Context, id uuid.UUID, role string) (*users.User, error) {
	args := m.Called(ctx, id, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*users.User), args.Error(1)
}

func newTestService(repo *MockRepository, reader *mockProjectReader, directory *mockDirectory) *Service {
	return NewService(repo, reader, directory, nil, zap.NewNop())
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func technicien(name string) *users.User {
	return &users.User{ID: uuid.New(), Role: users.RoleTechnicien, IsActive: true, FirstName: name, LastName: "Tech"}
}

func TestCreateTaskUnderTerminalProject(t *testing.T) {
	repo := new(MockRepository)
	reader := new(mockProjectReader)
	service := newTestService(repo, reader, new(mockDirectory))
	ctx := context.Background()

	projectID := uuid.New()
	reader.On("GetProject", ctx, projectID).
		Return(&projects.Project{ID: projectID, Status: workflows.ProjectCancelled}, nil)

	_, err := service.CreateTask(ctx, CreateTaskRequest{Title: "Stake out boundary", ProjectID: projectID})
	assert.Error(t, err)
	assert.Equal(t, apperrors.KindStateConflict, apperrors.KindOf(err))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateTaskDueDateBeyondProjectEnd(t *testing.T) {
	repo := new(MockRepository)
	reader := new(mockProjectReader)
	service := newTestService(repo, reader, new(mockDirectory))
	ctx := context.Background()

	projectID := uuid.New()
	reader.On("GetProject", ctx, projectID).Return(&projects.Project{
		ID:      projectID,
		Status:  workflows.ProjectInProgress,
		EndDate: datePtr(2024, time.June, 30),
	}, nil)

	_, err := service.CreateTask(ctx, CreateTaskRequest{
		Title:     "Stake out boundary",
		ProjectID: projectID,
		DueDate:   datePtr(2024, time.July, 15),
	})
	assert.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "project end date")
}

func TestCreateTaskWithInactiveTechnicien(t *testing.T) {
	repo := new(MockRepository)
	reader := new(mockProjectReader)
	directory := new(mockDirectory)
	service := newTestService(repo, reader, directory)
	ctx := context.Background()

	projectID, technicienID := uuid.New(), uuid.New()
	reader.On("GetProject", ctx, projectID).
		Return(&projects.Project{ID: projectID, Status: workflows.ProjectInProgress}, nil)
	directory.On("GetActiveByRole", ctx, technicienID, users.RoleTechnicien).
		Return(nil, apperrors.Validationf("technicien is not active"))

	_, err := service.CreateTask(ctx, CreateTaskRequest{
		Title:         "Stake out boundary",
		ProjectID:     projectID,
		TechnicienIDs: []uuid.UUID{technicienID},
	})
	assert.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestStartTaskWithoutTechnicien(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo, new(mockProjectReader), new(mockDirectory))
	ctx := context.Background()

	id := uuid.New()
	repo.On("Transaction", ctx).Return(nil)
	repo.On("GetByID", ctx, id).Return(&Task{ID: id, Status: workflows.TaskTodo}, nil)

	_, err := service.ChangeStatus(ctx, id, workflows.TaskInProgress)
	assert.Error(t, err)
	assert.Equal(t, apperrors.KindStateConflict, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "technician")
}

func TestStartTaskWithTechnicien(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo, new(mockProjectReader), new(mockDirectory))
	ctx := context.Background()

	id := uuid.New()
	task := &Task{ID: id, Status: workflows.TaskTodo, Techniciens: []users.User{*technicien("Karim")}}
	repo.On("Transaction", ctx).Return(nil)
	repo.On("GetByID", ctx, id).Return(task, nil)
	repo.On("Update", ctx, mock.AnythingOfType("*tasks.Task")).Return(nil)

	updated, err := service.ChangeStatus(ctx, id, workflows.TaskInProgress)
	assert.NoError(t, err)
	assert.Equal(t, workflows.TaskInProgress, updated.Status)
}

func TestCompleteTaskStampsOnceAndForcesProgress(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo, new(mockProjectReader), new(mockDirectory))
	ctx := context.Background()

	id := uuid.New()
	task := &Task{
		ID:                 id,
		Status:             workflows.TaskInProgress,
		ProgressPercentage: 60,
		Techniciens:        []users.User{*technicien("Karim")},
	}
	repo.On("Transaction", ctx).Return(nil)
	repo.On("GetByID", ctx, id).Return(task, nil)
	repo.On("Update", ctx, mock.AnythingOfType("*tasks.Task")).Return(nil)

	updated, err := service.ChangeStatus(ctx, id, workflows.TaskCompleted)
	assert.NoError(t, err)
	assert.Equal(t, workflows.TaskCompleted, updated.Status)
	assert.Equal(t, 100, updated.ProgressPercentage)
	assert.NotNil(t, updated.CompletedAt)

	// re-completing a terminal task is rejected
	_, err = service.ChangeStatus(ctx, id, workflows.TaskCompleted)
	assert.Error(t, err)
	assert.Equal(t, apperrors.KindStateConflict, apperrors.KindOf(err))
}

func TestAssignInactiveTechnicien(t *testing.T) {
	repo := new(MockRepository)
	directory := new(mockDirectory)
	service := newTestService(repo, new(mockProjectReader), directory)
	ctx := context.Background()

	taskID, technicienID := uuid.New(), uuid.New()
	repo.On("Transaction", ctx).Return(nil)
	repo.On("GetByID", ctx, taskID).Return(&Task{ID: taskID, Status: workflows.TaskTodo}, nil)
	directory.On("GetActiveByRole", ctx, technicienID, users.RoleTechnicien).
		Return(nil, apperrors.Validationf("technicien is not active"))

	_, err := service.AssignTechnicien(ctx, taskID, technicienID)
	assert.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	repo.AssertNotCalled(t, "AddTechnicien", mock.Anything, mock.Anything, mock.Anything)
}

func TestUnassignLastTechnicienFromActiveTask(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo, new(mockProjectReader), new(mockDirectory))
	ctx := context.Background()

	taskID := uuid.New()
	tech := technicien("Karim")
	task := &Task{ID: taskID, Status: workflows.TaskInProgress, Techniciens: []users.User{*tech}}
	repo.On("Transaction", ctx).Return(nil)
	repo.On("GetByID", ctx, taskID).Return(task, nil)

	_, err := service.UnassignTechnicien(ctx, taskID, tech.ID)
	assert.Error(t, err)
	assert.Equal(t, apperrors.KindStateConflict, apperrors.KindOf(err))
	repo.AssertNotCalled(t, "RemoveTechnicien", mock.Anything, mock.Anything, mock.Anything)
}

func TestUnassignFromTodoTask(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo, new(mockProjectReader), new(mockDirectory))
	ctx := context.Background()

	taskID := uuid.New()
	tech := technicien("Karim")
	task := &Task{ID: taskID, Status: workflows.TaskTodo, Techniciens: []users.User{*tech}}
	repo.On("Transaction", ctx).Return(nil)
	repo.On("GetByID", ctx, taskID).Return(task, nil)
	repo.On("RemoveTechnicien", ctx, mock.AnythingOfType("*tasks.Task"), mock.AnythingOfType("*users.User")).Return(nil)

	updated, err := service.UnassignTechnicien(ctx, taskID, tech.ID)
	assert.NoError(t, err)
	assert.Empty(t, updated.Techniciens)
}

func TestReassignEmptySetOnInProgressTask(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo, new(mockProjectReader), new(mockDirectory))
	ctx := context.Background()

	taskID := uuid.New()
	task := &Task{ID: taskID, Status: workflows.TaskInProgress, Techniciens: []users.User{*technicien("Karim")}}
	repo.On("Transaction", ctx).Return(nil)
	repo.On("GetByID", ctx, taskID).Return(task, nil)

	_, err := service.ReassignTechniciens(ctx, taskID, nil)
	assert.Error(t, err)
	assert.Equal(t, apperrors.KindStateConflict, apperrors.KindOf(err))
}

func TestDeleteTaskOnlyFromTodo(t *testing.T) {
	ctx := context.Background()

	t.Run("todo task deletes", func(t *testing.T) {
		repo := new(MockRepository)
		service := newTestService(repo, new(mockProjectReader), new(mockDirectory))

		id := uuid.New()
		repo.On("Transaction", ctx).Return(nil)
		repo.On("GetByID", ctx, id).Return(&Task{ID: id, Status: workflows.TaskTodo}, nil)
		repo.On("Delete", ctx, id).Return(nil)

		assert.NoError(t, service.DeleteTask(ctx, id))
	})

	t.Run("review task does not delete", func(t *testing.T) {
		repo := new(MockRepository)
		service := newTestService(repo, new(mockProjectReader), new(mockDirectory))

		id := uuid.New()
		repo.On("Transaction", ctx).Return(nil)
		repo.On("GetByID", ctx, id).Return(&Task{ID: id, Status: workflows.TaskReview}, nil)

		err := service.DeleteTask(ctx, id)
		assert.Error(t, err)
		assert.Equal(t, apperrors.KindStateConflict, apperrors.KindOf(err))
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestUpdateCompletedTaskProgressRejected(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo, new(mockProjectReader), new(mockDirectory))
	ctx := context.Background()

	id := uuid.New()
	now := time.Now()
	repo.On("Transaction", ctx).Return(nil)
	repo.On("GetByID", ctx, id).Return(&Task{
		ID: id, Status: workflows.TaskCompleted, ProgressPercentage: 100, CompletedAt: &now,
	}, nil)

	progress := 50
	_, err := service.UpdateTask(ctx, id, UpdateTaskRequest{ProgressPercentage: &progress})
	assert.Error(t, err)
	assert.Equal(t, apperrors.KindStateConflict, apperrors.KindOf(err))
}
