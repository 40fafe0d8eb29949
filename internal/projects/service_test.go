package projects

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"geo-survey/survey-portal/survey-portal-backend/internal/users"
	"geo-survey/survey-portal/survey-portal-backend/pkg/apperrors"
	"geo-survey/survey-portal/survey-portal-backend/pkg/workflows"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, project *Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Project), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, project *Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) List(ctx context.Context, filter ProjectFilter) ([]Project, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]Project), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) CountTasks(ctx context.Context, projectID uuid.UUID) (int64, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) CountTasksNotInStatus(ctx context.Context, projectID uuid.UUID, status string) (int64, error) {
	args := m.Called(ctx, projectID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) TaskSummaries(ctx context.Context, projectID uuid.UUID) ([]TaskSummary, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]TaskSummary), args.Error(1)
}

func (m *MockRepository) TechnicianNames(ctx context.Context, projectID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRepository) Transaction(ctx context.Context, fn func(Repository) error) error {
	m.Called(ctx)
	return fn(m)
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

func (m *mockDirectory) GetUser(ctx context.Context, id uuid.UUID) (*users.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*users.User), args.Error(1)
}

func newTestService(repo *MockRepository, directory *mockDirectory) *Service {
	return NewService(repo, directory, nil, zap.NewNop())
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func validCreateRequest(clientID, topographeID uuid.UUID) CreateProjectRequest {
	return CreateProjectRequest{
		Name:         "Cadastral survey Sidi Moumen",
		Description:  "Boundary survey for subdivision",
		ClientID:     clientID,
		TopographeID: topographeID,
		StartDate:    datePtr(2024, time.January, 1),
		EndDate:      datePtr(2024, time.January, 31),
	}
}

func TestCreateProject(t *testing.T) {
	repo := new(MockRepository)
	directory := new(mockDirectory)
	service := newTestService(repo, directory)
	ctx := context.Background()

	clientID, topographeID := uuid.New(), uuid.New()
	directory.On("GetActiveByRole", ctx, clientID, users.RoleClient).
		Return(&users.User{ID: clientID, Role: users.RoleClient, IsActive: true}, nil)
	directory.On("GetActiveByRole", ctx, topographeID, users.RoleTopographe).
		Return(&users.User{ID: topographeID, Role: users.RoleTopographe, IsActive: true}, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*projects.Project")).Return(nil)

	project, err := service.CreateProject(ctx, validCreateRequest(clientID, topographeID))
	assert.NoError(t, err)
	assert.Equal(t, workflows.ProjectPlanning, project.Status)
	repo.AssertCalled(t, "Create", ctx, mock.AnythingOfType("*projects.Project"))
}

func TestCreateProjectInactiveClient(t *testing.T) {
	repo := new(MockRepository)
	directory := new(mockDirectory)
	service := newTestService(repo, directory)
	ctx := context.Background()

	clientID, topographeID := uuid.New(), uuid.New()
	directory.On("GetActiveByRole", ctx, clientID, users.RoleClient).
		Return(nil, apperrors.Validationf("client is not active"))

	_, err := service.CreateProject(ctx, validCreateRequest(clientID, topographeID))
	assert.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateProjectEndBeforeStart(t *testing.T) {
	repo := new(MockRepository)
	directory := new(mockDirectory)
	service := newTestService(repo, directory)
	ctx := context.Background()

	clientID, topographeID := uuid.New(), uuid.New()
	directory.On("GetActiveByRole", ctx, mock.Anything, mock.Anything).
		Return(&users.User{IsActive: true}, nil)

	req := validCreateRequest(clientID, topographeID)
	req.StartDate = datePtr(2024, time.February, 1)
	req.EndDate = datePtr(2024, time.January, 1)

	_, err := service.CreateProject(ctx, req)
	assert.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestUpdateProjectIllegalTransition(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo, new(mockDirectory))
	ctx := context.Background()

	id := uuid.New()
	repo.On("Transaction", ctx).Return(nil)
	repo.On("GetByID", ctx, id).Return(&Project{ID: id, Status: workflows.ProjectPlanning}, nil)

	status := workflows.ProjectCompleted
	_, err := service.UpdateProject(ctx, id, UpdateProjectRequest{Status: &status})
	assert.Error(t, err)
	assert.Equal(t, apperrors.KindStateConflict, apperrors.KindOf(err))
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCompleteProjectWithUnfinishedTasks(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo, new(mockDirectory))
	ctx := context.Background()

	id := uuid.New()
	repo.On("Transaction", ctx).Return(nil)
	repo.On("GetByID", ctx, id).Return(&Project{ID: id, Status: workflows.ProjectInProgress}, nil)
	repo.On("CountTasksNotInStatus", ctx, id, workflows.TaskCompleted).Return(int64(2), nil)

	_, err := service.ChangeStatus(ctx, id, workflows.ProjectCompleted)
	assert.Error(t, err)
	assert.Equal(t, apperrors.KindStateConflict, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "not completed")
}

func TestCompleteProjectWhenAllTasksDone(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo, new(mockDirectory))
	ctx := context.Background()

	id := uuid.New()
	repo.On("Transaction", ctx).Return(nil)
	repo.On("GetByID", ctx, id).Return(&Project{ID: id, Status: workflows.ProjectInProgress}, nil)
	repo.On("CountTasksNotInStatus", ctx, id, workflows.TaskCompleted).Return(int64(0), nil)
	repo.On("Update", ctx, mock.AnythingOfType("*projects.Project")).Return(nil)

	project, err := service.ChangeStatus(ctx, id, workflows.ProjectCompleted)
	assert.NoError(t, err)
	assert.Equal(t, workflows.ProjectCompleted, project.Status)
}

func TestDeleteProjectPreconditions(t *testing.T) {
	ctx := context.Background()

	t.Run("in progress project cannot be deleted", func(t *testing.T) {
		repo := new(MockRepository)
		service := newTestService(repo, new(mockDirectory))

		id := uuid.New()
		repo.On("Transaction", ctx).Return(nil)
		repo.On("GetByID", ctx, id).Return(&Project{ID: id, Status: workflows.ProjectInProgress}, nil)

		err := service.DeleteProject(ctx, id)
		assert.Error(t, err)
		assert.Equal(t, apperrors.KindStateConflict, apperrors.KindOf(err))
	})

	t.Run("planning project with tasks cannot be deleted", func(t *testing.T) {
		repo := new(MockRepository)
		service := newTestService(repo, new(mockDirectory))

		id := uuid.New()
		repo.On("Transaction", ctx).Return(nil)
		repo.On("GetByID", ctx, id).Return(&Project{ID: id, Status: workflows.ProjectPlanning}, nil)
		repo.On("CountTasks", ctx, id).Return(int64(3), nil)

		err := service.DeleteProject(ctx, id)
		assert.Error(t, err)
		assert.Equal(t, apperrors.KindStateConflict, apperrors.KindOf(err))
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("empty planning project deletes", func(t *testing.T) {
		repo := new(MockRepository)
		service := newTestService(repo, new(mockDirectory))

		id := uuid.New()
		repo.On("Transaction", ctx).Return(nil)
		repo.On("GetByID", ctx, id).Return(&Project{ID: id, Status: workflows.ProjectPlanning}, nil)
		repo.On("CountTasks", ctx, id).Return(int64(0), nil)
		repo.On("Delete", ctx, id).Return(nil)

		assert.NoError(t, service.DeleteProject(ctx, id))
		repo.AssertCalled(t, "Delete", ctx, id)
	})
}

func TestGetProjectNotFound(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo, new(mockDirectory))
	ctx := context.Background()

	id := uuid.New()
	repo.On("GetByID", ctx, id).Return(nil, nil)

	_, err := service.GetProject(ctx, id)
	assert.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}
