package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/workstream/task-assignment-api/internal/dto"
	apperrors "github.com/workstream/task-assignment-api/internal/errors"
	"github.com/workstream/task-assignment-api/internal/models"
	"github.com/workstream/task-assignment-api/internal/repository"
	"github.com/workstream/task-assignment-api/internal/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TaskServiceTestSuite defines the test suite for TaskService
type TaskServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *TaskService
}

// SetupTest runs before each test
func (suite *TaskServiceTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.RevokedToken{},
	)
	suite.Require().NoError(err)

	taskRepo := repository.NewTaskRepository(suite.db)
	userRepo := repository.NewUserRepository(suite.db)
	suite.service = NewTaskService(taskRepo, userRepo)
}

// TearDownTest runs after each test
func (suite *TaskServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper functions to create test data

func (suite *TaskServiceTestSuite) createTestUser(username string, role models.Role) *models.User {
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashedpassword",
		Role:         role,
		IsActive:     true,
	}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *TaskServiceTestSuite) createTestTask(title string, assigneeID, assignerID uint64, status models.TaskStatus) *models.Task {
	task := &models.Task{
		Title:        title,
		Description:  "Test Description",
		AssignedToID: assigneeID,
		AssignedByID: assignerID,
		DueDate:      time.Now().Add(48 * time.Hour),
		Status:       status,
	}
	suite.Require().NoError(suite.db.Create(task).Error)
	return task
}

func (suite *TaskServiceTestSuite) parsePatch(raw map[string]any) *dto.TaskPatch {
	patch, err := dto.ParseTaskPatch(raw)
	suite.Require().NoError(err)
	return patch
}

func (suite *TaskServiceTestSuite) assertErrorKind(err error, kind apperrors.Kind) {
	suite.Require().Error(err)
	var appErr *apperrors.AppError
	suite.Require().True(errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(suite.T(), kind, appErr.Kind)
}

func defaultPagination() utils.PaginationParams {
	return utils.PaginationParams{Page: 1, PerPage: 10}
}

// Create

func (suite *TaskServiceTestSuite) TestCreateTask_RoundTrip() {
	admin := suite.createTestUser("admin", models.RoleAdmin)
	worker := suite.createTestUser("worker", models.RoleUser)
	dueDate := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

	task, err := suite.service.CreateTask(admin, CreateTaskInput{
		Title:        "Prepare report",
		Description:  "Quarterly figures",
		AssignedToID: worker.ID,
		DueDate:      dueDate,
	})
	suite.Require().NoError(err)

	fetched, err := suite.service.GetTask(admin, task.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "Prepare report", fetched.Title)
	assert.Equal(suite.T(), "Quarterly figures", fetched.Description)
	assert.Equal(suite.T(), worker.ID, fetched.AssignedToID)
	assert.Equal(suite.T(), admin.ID, fetched.AssignedByID)
	assert.Equal(suite.T(), models.TaskStatusPending, fetched.Status)
	assert.True(suite.T(), fetched.DueDate.Equal(dueDate))
}

func (suite *TaskServiceTestSuite) TestCreateTask_RegularUserForbidden() {
	worker := suite.createTestUser("worker", models.RoleUser)

	_, err := suite.service.CreateTask(worker, CreateTaskInput{
		Title:        "Task",
		Description:  "Desc",
		AssignedToID: worker.ID,
		DueDate:      time.Now(),
	})
	suite.assertErrorKind(err, apperrors.KindPermission)
}

func (suite *TaskServiceTestSuite) TestCreateTask_UnknownAssignee() {
	admin := suite.createTestUser("admin", models.RoleAdmin)

	_, err := suite.service.CreateTask(admin, CreateTaskInput{
		Title:        "Task",
		Description:  "Desc",
		AssignedToID: 9999,
		DueDate:      time.Now(),
	})
	suite.assertErrorKind(err, apperrors.KindValidation)
}

func (suite *TaskServiceTestSuite) TestCreateTask_MissingFields() {
	admin := suite.createTestUser("admin", models.RoleAdmin)
	worker := suite.createTestUser("worker", models.RoleUser)

	_, err := suite.service.CreateTask(admin, CreateTaskInput{
		Description:  "Desc",
		AssignedToID: worker.ID,
		DueDate:      time.Now(),
	})
	suite.assertErrorKind(err, apperrors.KindValidation)
}

// Start

func (suite *TaskServiceTestSuite) TestStartTask_Success() {
	admin := suite.createTestUser("admin", models.RoleAdmin)
	worker := suite.createTestUser("worker", models.RoleUser)
	task := suite.createTestTask("T", worker.ID, admin.ID, models.TaskStatusPending)

	started, err := suite.service.StartTask(worker, task.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.TaskStatusInProgress, started.Status)
}

func (suite *TaskServiceTestSuite) TestStartTask_TwiceFailsWithStatusMessage() {
	admin := suite.createTestUser("admin", models.RoleAdmin)
	worker := suite.createTestUser("worker", models.RoleUser)
	task := suite.createTestTask("T", worker.ID, admin.ID, models.TaskStatusPending)

	_, err := suite.service.StartTask(worker, task.ID)
	suite.Require().NoError(err)

	_, err = suite.service.StartTask(worker, task.ID)
	suite.assertErrorKind(err, apperrors.KindValidation)
	assert.Contains(suite.T(), err.Error(), "cannot be started from in_progress status")
}

func (suite *TaskServiceTestSuite) TestStartTask_SecondActiveTaskConflicts() {
	admin := suite.createTestUser("admin", models.RoleAdmin)
	worker := suite.createTestUser("worker", models.RoleUser)
	suite.createTestTask("Busy", worker.ID, admin.ID, models.TaskStatusInProgress)
	second := suite.createTestTask("Next", worker.ID, admin.ID, models.TaskStatusPending)

	_, err := suite.service.StartTask(worker, second.ID)
	suite.assertErrorKind(err, apperrors.KindConflict)
	assert.Contains(suite.T(), err.Error(), "one task at a time")

	// The target task must be unchanged
	var reloaded models.Task
	suite.Require().NoError(suite.db.First(&reloaded, second.ID).Error)
	assert.Equal(suite.T(), models.TaskStatusPending, reloaded.Status)
}

func (suite *TaskServiceTestSuite) TestStartTask_NotAssignee() {
	admin := suite.createTestUser("admin", models.RoleAdmin)
	worker := suite.createTestUser("worker", models.RoleUser)
	other := suite.createTestUser("other", models.RoleUser)
	task := suite.createTestTask("T", worker.ID, admin.ID, models.TaskStatusPending)

	_, err := suite.service.StartTask(other, task.ID)
	suite.assertErrorKind(err, apperrors.KindPermission)
}

func (suite *TaskServiceTestSuite) TestStartTask_NotFound() {
	worker := suite.createTestUser("worker", models.RoleUser)

	_, err := suite.service.StartTask(worker, 12345)
	suite.assertErrorKind(err, apperrors.KindNotFound)
}

// Update

func (suite *TaskServiceTestSuite) TestUpdateTask_CompletionRequiresReportAndHours() {
	admin := suite.createTestUser("admin", models.RoleAdmin)
	worker := suite.createTestUser("worker", models.RoleUser)
	task := suite.createTestTask("T", worker.ID, admin.ID, models.TaskStatusInProgress)

	_, err := suite.service.UpdateTask(worker, task.ID, suite.parsePatch(map[string]any{
		"status": "completed",
	}))
	suite.assertErrorKind(err, apperrors.KindValidation)
	assert.Contains(suite.T(), err.Error(), "Completion report is required")

	updated, err := suite.service.UpdateTask(worker, task.ID, suite.parsePatch(map[string]any{
		"status":            "completed",
		"completion_report": "done",
		"worked_hours":      3.5,
	}))
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.TaskStatusCompleted, updated.Status)
	suite.Require().NotNil(updated.WorkedHours)
	assert.Equal(suite.T(), 3.5, *updated.WorkedHours)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_CompletedIsTerminal() {
	admin := suite.createTestUser("admin", models.RoleAdmin)
	worker := suite.createTestUser("worker", models.RoleUser)
	report := "done"
	hours := 2.0
	task := &models.Task{
		Title:            "T",
		Description:      "D",
		AssignedToID:     worker.ID,
		AssignedByID:     admin.ID,
		DueDate:          time.Now(),
		Status:           models.TaskStatusCompleted,
		CompletionReport: &report,
		WorkedHours:      &hours,
	}
	suite.Require().NoError(suite.db.Create(task).Error)

	for _, next := range []string{"pending", "in_progress", "paused"} {
		_, err := suite.service.UpdateTask(admin, task.ID, suite.parsePatch(map[string]any{
			"status": next,
		}))
		suite.assertErrorKind(err, apperrors.KindValidation)
	}
}

func (suite *TaskServiceTestSuite) TestUpdateTask_NegativeWorkedHours() {
	admin := suite.createTestUser("admin", models.RoleAdmin)
	worker := suite.createTestUser("worker", models.RoleUser)
	task := suite.createTestTask("T", worker.ID, admin.ID, models.TaskStatusInProgress)

	_, err := suite.service.UpdateTask(worker, task.ID, suite.parsePatch(map[string]any{
		"status":            "completed",
		"completion_report": "done",
		"worked_hours":      -0.01,
	}))
	suite.assertErrorKind(err, apperrors.KindValidation)
	assert.Contains(suite.T(), err.Error(), "cannot be negative")
}

func (suite *TaskServiceTestSuite) TestUpdateTask_RegularUserFieldScope() {
	admin := suite.createTestUser("admin", models.RoleAdmin)
	worker := suite.createTestUser("worker", models.RoleUser)
	task := suite.createTestTask("Original", worker.ID, admin.ID, models.TaskStatusPending)

	_, err := suite.service.UpdateTask(worker, task.ID, suite.parsePatch(map[string]any{
		"title":  "Hijacked",
		"status": "paused",
	}))
	suite.assertErrorKind(err, apperrors.KindPermission)

	// The whole request is rejected; nothing is applied
	var reloaded models.Task
	suite.Require().NoError(suite.db.First(&reloaded, task.ID).Error)
	assert.Equal(suite.T(), "Original", reloaded.Title)
	assert.Equal(suite.T(), models.TaskStatusPending, reloaded.Status)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_AdminCanChangeAnyField() {
	admin := suite.createTestUser("admin", models.RoleAdmin)
	worker := suite.createTestUser("worker", models.RoleUser)
	task := suite.createTestTask("Original", worker.ID, admin.ID, models.TaskStatusPending)

	updated, err := suite.service.UpdateTask(admin, task.ID, suite.parsePatch(map[string]any{
		"title":    "Renamed",
		"due_date": "2026-10-01",
	}))
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "Renamed", updated.Title)
	assert.Equal(suite.T(), time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC).Format("2006-01-02"), updated.DueDate.Format("2006-01-02"))
}

func (suite *TaskServiceTestSuite) TestUpdateTask_OutOfScopeIsNotFound() {
	admin := suite.createTestUser("admin", models.RoleAdmin)
	worker := suite.createTestUser("worker", models.RoleUser)
	stranger := suite.createTestUser("stranger", models.RoleUser)
	otherAdmin := suite.createTestUser("otheradmin", models.RoleAdmin)
	task := suite.createTestTask("T", worker.ID, admin.ID, models.TaskStatusPending)

	// Regular user outside the task: not found, never forbidden
	_, err := suite.service.UpdateTask(stranger, task.ID, suite.parsePatch(map[string]any{
		"status": "paused",
	}))
	suite.assertErrorKind(err, apperrors.KindNotFound)

	// Admin outside the task's assignee/assigner pair: same
	_, err = suite.service.UpdateTask(otherAdmin, task.ID, suite.parsePatch(map[string]any{
		"title": "X",
	}))
	suite.assertErrorKind(err, apperrors.KindNotFound)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_IntoInProgressHitsActiveGuard() {
	admin := suite.createTestUser("admin", models.RoleAdmin)
	worker := suite.createTestUser("worker", models.RoleUser)
	suite.createTestTask("Busy", worker.ID, admin.ID, models.TaskStatusInProgress)
	task := suite.createTestTask("Next", worker.ID, admin.ID, models.TaskStatusPending)

	_, err := suite.service.UpdateTask(admin, task.ID, suite.parsePatch(map[string]any{
		"status": "in_progress",
	}))
	suite.assertErrorKind(err, apperrors.KindConflict)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_EmptyPayload() {
	admin := suite.createTestUser("admin", models.RoleAdmin)
	worker := suite.createTestUser("worker", models.RoleUser)
	task := suite.createTestTask("T", worker.ID, admin.ID, models.TaskStatusPending)

	_, err := suite.service.UpdateTask(admin, task.ID, suite.parsePatch(map[string]any{}))
	suite.assertErrorKind(err, apperrors.KindValidation)
}

// Delete

func (suite *TaskServiceTestSuite) TestDeleteTask_SuperAdminOnly() {
	admin := suite.createTestUser("admin", models.RoleAdmin)
	super := suite.createTestUser("root", models.RoleSuperAdmin)
	worker := suite.createTestUser("worker", models.RoleUser)
	task := suite.createTestTask("T", worker.ID, admin.ID, models.TaskStatusPending)

	err := suite.service.DeleteTask(admin, task.ID)
	suite.assertErrorKind(err, apperrors.KindPermission)

	suite.Require().NoError(suite.service.DeleteTask(super, task.ID))

	err = suite.service.DeleteTask(super, task.ID)
	suite.assertErrorKind(err, apperrors.KindNotFound)
}

// List / visibility

func (suite *TaskServiceTestSuite) TestListTasks_Visibility() {
	super := suite.createTestUser("root", models.RoleSuperAdmin)
	adminA := suite.createTestUser("adminA", models.RoleAdmin)
	adminB := suite.createTestUser("adminB", models.RoleAdmin)
	workerA := suite.createTestUser("workerA", models.RoleUser)
	workerB := suite.createTestUser("workerB", models.RoleUser)

	suite.createTestTask("A1", workerA.ID, adminA.ID, models.TaskStatusPending)
	suite.createTestTask("B1", workerB.ID, adminB.ID, models.TaskStatusPending)
	suite.createTestTask("A2", adminA.ID, adminB.ID, models.TaskStatusPending)

	input := ListTasksInput{Pagination: defaultPagination()}

	superTasks, _, err := suite.service.ListTasks(super, input)
	suite.Require().NoError(err)
	assert.Len(suite.T(), superTasks, 3)

	adminTasks, _, err := suite.service.ListTasks(adminA, input)
	suite.Require().NoError(err)
	assert.Len(suite.T(), adminTasks, 2)
	for _, task := range adminTasks {
		assert.True(suite.T(), task.AssignedToID == adminA.ID || task.AssignedByID == adminA.ID)
	}

	workerTasks, _, err := suite.service.ListTasks(workerA, input)
	suite.Require().NoError(err)
	assert.Len(suite.T(), workerTasks, 1)
	assert.Equal(suite.T(), "A1", workerTasks[0].Title)
}

func (suite *TaskServiceTestSuite) TestListTasks_Filters() {
	admin := suite.createTestUser("admin", models.RoleAdmin)
	worker := suite.createTestUser("worker", models.RoleUser)
	suite.createTestTask("Write MONTHLY summary", worker.ID, admin.ID, models.TaskStatusPending)
	suite.createTestTask("Fix login bug", worker.ID, admin.ID, models.TaskStatusPaused)

	status := models.TaskStatusPaused
	tasks, _, err := suite.service.ListTasks(admin, ListTasksInput{
		Status:     &status,
		Pagination: defaultPagination(),
	})
	suite.Require().NoError(err)
	suite.Require().Len(tasks, 1)
	assert.Equal(suite.T(), "Fix login bug", tasks[0].Title)

	// Case-insensitive substring search over title and description
	tasks, _, err = suite.service.ListTasks(admin, ListTasksInput{
		Search:     "monthly",
		Pagination: defaultPagination(),
	})
	suite.Require().NoError(err)
	suite.Require().Len(tasks, 1)
	assert.Equal(suite.T(), "Write MONTHLY summary", tasks[0].Title)
}

func (suite *TaskServiceTestSuite) TestListTasks_OrderingAndPageClamp() {
	admin := suite.createTestUser("admin", models.RoleAdmin)
	worker := suite.createTestUser("worker", models.RoleUser)
	for i := 1; i <= 5; i++ {
		suite.createTestTask(fmt.Sprintf("Task %d", i), worker.ID, admin.ID, models.TaskStatusPending)
	}

	tasks, meta, err := suite.service.ListTasks(admin, ListTasksInput{
		Pagination: utils.PaginationParams{Page: 1, PerPage: 2},
	})
	suite.Require().NoError(err)
	suite.Require().Len(tasks, 2)
	assert.Equal(suite.T(), "Task 5", tasks[0].Title)
	assert.Equal(suite.T(), "Task 4", tasks[1].Title)
	assert.Equal(suite.T(), int64(5), meta.TotalItems)
	assert.Equal(suite.T(), 3, meta.TotalPages)

	// Out-of-range pages clamp to the last page
	tasks, meta, err = suite.service.ListTasks(admin, ListTasksInput{
		Pagination: utils.PaginationParams{Page: 99, PerPage: 2},
	})
	suite.Require().NoError(err)
	suite.Require().Len(tasks, 1)
	assert.Equal(suite.T(), "Task 1", tasks[0].Title)
	assert.Equal(suite.T(), 3, meta.CurrentPage)
}

func (suite *TaskServiceTestSuite) TestGetTask_OutOfScopeIsNotFound() {
	admin := suite.createTestUser("admin", models.RoleAdmin)
	worker := suite.createTestUser("worker", models.RoleUser)
	stranger := suite.createTestUser("stranger", models.RoleUser)
	task := suite.createTestTask("T", worker.ID, admin.ID, models.TaskStatusPending)

	_, err := suite.service.GetTask(stranger, task.ID)
	suite.assertErrorKind(err, apperrors.KindNotFound)
}

// TestTaskServiceTestSuite runs the test suite
func TestTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceTestSuite))
}
