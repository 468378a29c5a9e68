package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/taskhive/project-management-api/internal/constants"
	"github.com/taskhive/project-management-api/internal/database"
	"github.com/taskhive/project-management-api/internal/dto"
	"github.com/taskhive/project-management-api/internal/middleware"
	"github.com/taskhive/project-management-api/internal/models"
	"github.com/taskhive/project-management-api/internal/repository"
	"github.com/taskhive/project-management-api/internal/services"
	"github.com/taskhive/project-management-api/internal/token"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// PermissionFlowTestSuite drives requests through the real router with the
// real auth and permission middleware, so the whole chain from token to
// permission flag is covered.
type PermissionFlowTestSuite struct {
	suite.Suite
	db           *gorm.DB
	router       *gin.Engine
	tokenService *token.Service
	authService  *services.AuthService
}

// SetupTest runs before each test
func (suite *PermissionFlowTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Task{},
	)
	suite.Require().NoError(err)
	suite.Require().NoError(database.AddIndexes(suite.db))

	database.SetDB(suite.db)

	userRepo := repository.NewUserRepository(suite.db)
	projectRepo := repository.NewProjectRepository(suite.db)
	taskRepo := repository.NewTaskRepository(suite.db)

	suite.tokenService = token.NewService("test-secret", constants.TokenLifetime)
	suite.authService = services.NewAuthService(userRepo, suite.tokenService)
	permissionService := services.NewPermissionService(projectRepo)
	projectService := services.NewProjectService(projectRepo)
	memberService := services.NewMemberService(projectRepo, userRepo)
	taskService := services.NewTaskService(taskRepo, projectRepo)

	authHandler := NewAuthHandler(suite.authService)
	projectHandler := NewProjectHandler(projectService)
	memberHandler := NewMemberHandler(memberService)
	taskHandler := NewTaskHandler(taskService)

	requireAuth := middleware.RequireAuth(suite.tokenService, userRepo)
	requireView := middleware.RequireProjectPermission(permissionService, services.ActionView)
	requireCreateTask := middleware.RequireProjectPermission(permissionService, services.ActionCreateTask)
	requireManageMembers := middleware.RequireProjectPermission(permissionService, services.ActionManageMembers)

	gin.SetMode(gin.TestMode)
	suite.router = gin.New()

	api := suite.router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", requireAuth, authHandler.GetCurrentUser)
		}

		projects := api.Group("/projects")
		projects.Use(requireAuth)
		{
			projects.POST("", projectHandler.CreateProject)
			projects.GET("", projectHandler.ListProjects)
			projects.GET("/:id", requireView, projectHandler.GetProject)
			projects.PATCH("/:id", projectHandler.UpdateProject)
			projects.DELETE("/:id", projectHandler.DeleteProject)

			projects.GET("/:id/members", requireView, memberHandler.ListMembers)
			projects.POST("/:id/members", requireManageMembers, memberHandler.AddMember)
			projects.PATCH("/:id/members/:user_id", requireManageMembers, memberHandler.UpdateMember)
			projects.DELETE("/:id/members/:user_id", requireManageMembers, memberHandler.RemoveMember)

			projects.GET("/:id/tasks", requireView, taskHandler.ListTasks)
			projects.POST("/:id/tasks", requireCreateTask, taskHandler.CreateTask)
		}

		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.GET("/:id", middleware.RequireTaskPermission(permissionService, taskRepo, services.ActionView), taskHandler.GetTask)
			tasks.PATCH("/:id", middleware.RequireTaskPermission(permissionService, taskRepo, services.ActionUpdateTask), taskHandler.UpdateTask)
			tasks.DELETE("/:id", middleware.RequireTaskPermission(permissionService, taskRepo, services.ActionDeleteTask), taskHandler.DeleteTask)
		}
	}
}

// TearDownTest runs after each test
func (suite *PermissionFlowTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// registerUser creates an account and returns the user with a valid token.
func (suite *PermissionFlowTestSuite) registerUser(username string) (*models.User, string) {
	user, err := suite.authService.Register(services.RegisterInput{
		Username: username,
		Password: "supersecret",
	})
	suite.Require().NoError(err)

	tok, err := suite.tokenService.Issue(user.ID)
	suite.Require().NoError(err)

	return user, tok
}

// doRequest performs a request against the router, optionally authenticated.
func (suite *PermissionFlowTestSuite) doRequest(method, url, tok string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		suite.Require().NoError(err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, url, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *PermissionFlowTestSuite) createProjectVia(tok, name string) dto.ProjectDTO {
	w := suite.doRequest("POST", "/api/projects", tok, map[string]string{
		"name": name,
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var project dto.ProjectDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &project))
	return project
}

func (suite *PermissionFlowTestSuite) errorCode(w *httptest.ResponseRecorder) string {
	var body struct {
		Code string `json:"code"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	return body.Code
}

// TestCreateTaskRequiresFlag covers the permission flip: a non-member is
// denied, gains the can_create_task flag, and then succeeds.
func (suite *PermissionFlowTestSuite) TestCreateTaskRequiresFlag() {
	_, ownerTok := suite.registerUser("alice")
	member, memberTok := suite.registerUser("bob")

	project := suite.createProjectVia(ownerTok, "Alpha")
	taskURL := fmt.Sprintf("/api/projects/%d/tasks", project.ID)

	taskPayload := map[string]string{"title": "Write the report"}

	// Not a member yet
	w := suite.doRequest("POST", taskURL, memberTok, taskPayload)
	suite.Equal(http.StatusForbidden, w.Code)

	// Member without the flag
	w = suite.doRequest("POST", fmt.Sprintf("/api/projects/%d/members", project.ID), ownerTok, map[string]interface{}{
		"user_id": member.ID,
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = suite.doRequest("POST", taskURL, memberTok, taskPayload)
	suite.Equal(http.StatusForbidden, w.Code)

	// Flip the flag
	w = suite.doRequest("PATCH", fmt.Sprintf("/api/projects/%d/members/%d", project.ID, member.ID), ownerTok, map[string]interface{}{
		"can_create_task": true,
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = suite.doRequest("POST", taskURL, memberTok, taskPayload)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var created dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &created))
	suite.Require().NotNil(created.ProjectID)
	suite.Equal(project.ID, *created.ProjectID)
	suite.Equal(member.ID, created.CreatorID)
}

// TestOwnerBypassesFlags checks the owner needs no membership row.
func (suite *PermissionFlowTestSuite) TestOwnerBypassesFlags() {
	_, ownerTok := suite.registerUser("alice")
	project := suite.createProjectVia(ownerTok, "Alpha")

	w := suite.doRequest("POST", fmt.Sprintf("/api/projects/%d/tasks", project.ID), ownerTok, map[string]string{
		"title": "Owner task",
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var created dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &created))

	taskURL := fmt.Sprintf("/api/tasks/%d", created.ID)

	w = suite.doRequest("PATCH", taskURL, ownerTok, map[string]string{
		"status": "Done",
	})
	suite.Equal(http.StatusOK, w.Code, w.Body.String())

	w = suite.doRequest("DELETE", taskURL, ownerTok, nil)
	suite.Equal(http.StatusNoContent, w.Code)
}

// TestMembershipGrantsViewOnly checks a member with no flags can read but not
// write.
func (suite *PermissionFlowTestSuite) TestMembershipGrantsViewOnly() {
	_, ownerTok := suite.registerUser("alice")
	member, memberTok := suite.registerUser("bob")

	project := suite.createProjectVia(ownerTok, "Alpha")

	w := suite.doRequest("POST", fmt.Sprintf("/api/projects/%d/tasks", project.ID), ownerTok, map[string]string{
		"title": "Owner task",
	})
	suite.Require().Equal(http.StatusCreated, w.Code)
	var created dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &created))

	w = suite.doRequest("POST", fmt.Sprintf("/api/projects/%d/members", project.ID), ownerTok, map[string]interface{}{
		"user_id": member.ID,
	})
	suite.Require().Equal(http.StatusCreated, w.Code)

	w = suite.doRequest("GET", fmt.Sprintf("/api/projects/%d/tasks", project.ID), memberTok, nil)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.doRequest("GET", fmt.Sprintf("/api/tasks/%d", created.ID), memberTok, nil)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.doRequest("PATCH", fmt.Sprintf("/api/tasks/%d", created.ID), memberTok, map[string]string{
		"title": "Hijacked",
	})
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.doRequest("DELETE", fmt.Sprintf("/api/tasks/%d", created.ID), memberTok, nil)
	suite.Equal(http.StatusForbidden, w.Code)
}

// TestManageMembersFlag checks member management is gated separately from task
// flags.
func (suite *PermissionFlowTestSuite) TestManageMembersFlag() {
	_, ownerTok := suite.registerUser("alice")
	member, memberTok := suite.registerUser("bob")
	third, _ := suite.registerUser("carol")

	project := suite.createProjectVia(ownerTok, "Alpha")
	membersURL := fmt.Sprintf("/api/projects/%d/members", project.ID)

	w := suite.doRequest("POST", membersURL, ownerTok, map[string]interface{}{
		"user_id":         member.ID,
		"can_create_task": true,
	})
	suite.Require().Equal(http.StatusCreated, w.Code)

	// create-task flag does not grant member management
	w = suite.doRequest("POST", membersURL, memberTok, map[string]interface{}{
		"user_id": third.ID,
	})
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.doRequest("PATCH", fmt.Sprintf("%s/%d", membersURL, member.ID), ownerTok, map[string]interface{}{
		"can_add_members": true,
	})
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.doRequest("POST", membersURL, memberTok, map[string]interface{}{
		"user_id": third.ID,
	})
	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
}

// TestDeleteTaskTwice checks a repeated delete reports the earlier deletion
// instead of pretending the task never existed.
func (suite *PermissionFlowTestSuite) TestDeleteTaskTwice() {
	_, ownerTok := suite.registerUser("alice")
	project := suite.createProjectVia(ownerTok, "Alpha")

	w := suite.doRequest("POST", fmt.Sprintf("/api/projects/%d/tasks", project.ID), ownerTok, map[string]string{
		"title": "Doomed task",
	})
	suite.Require().Equal(http.StatusCreated, w.Code)
	var created dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &created))

	taskURL := fmt.Sprintf("/api/tasks/%d", created.ID)

	w = suite.doRequest("DELETE", taskURL, ownerTok, nil)
	suite.Require().Equal(http.StatusNoContent, w.Code)

	w = suite.doRequest("DELETE", taskURL, ownerTok, nil)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("ALREADY_DELETED", suite.errorCode(w))

	// Reads hide the deleted task
	w = suite.doRequest("GET", taskURL, ownerTok, nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

// TestDeletedProjectStillAuthorizes checks soft-deleting a project hides it
// from reads without breaking authorization for its surviving tasks.
func (suite *PermissionFlowTestSuite) TestDeletedProjectStillAuthorizes() {
	_, ownerTok := suite.registerUser("alice")
	project := suite.createProjectVia(ownerTok, "Alpha")

	w := suite.doRequest("POST", fmt.Sprintf("/api/projects/%d/tasks", project.ID), ownerTok, map[string]string{
		"title": "Survivor",
	})
	suite.Require().Equal(http.StatusCreated, w.Code)
	var created dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &created))

	w = suite.doRequest("DELETE", fmt.Sprintf("/api/projects/%d", project.ID), ownerTok, nil)
	suite.Require().Equal(http.StatusNoContent, w.Code)

	w = suite.doRequest("GET", fmt.Sprintf("/api/projects/%d", project.ID), ownerTok, nil)
	suite.Equal(http.StatusNotFound, w.Code)

	// The task remains reachable; its project still resolves for the check.
	w = suite.doRequest("GET", fmt.Sprintf("/api/tasks/%d", created.ID), ownerTok, nil)
	suite.Equal(http.StatusOK, w.Code, w.Body.String())
}

// TestUpdateTaskClearsDueDate checks an explicit null clears the due date
// while an absent field leaves it untouched.
func (suite *PermissionFlowTestSuite) TestUpdateTaskClearsDueDate() {
	_, ownerTok := suite.registerUser("alice")
	project := suite.createProjectVia(ownerTok, "Alpha")

	w := suite.doRequest("POST", fmt.Sprintf("/api/projects/%d/tasks", project.ID), ownerTok, map[string]string{
		"title":    "Dated task",
		"due_date": "2026-09-15T12:00:00Z",
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var created dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &created))
	suite.Require().NotNil(created.DueDate)

	taskURL := fmt.Sprintf("/api/tasks/%d", created.ID)

	// Unrelated update keeps the due date
	w = suite.doRequest("PATCH", taskURL, ownerTok, map[string]interface{}{
		"description": "still dated",
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var updated dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &updated))
	suite.NotNil(updated.DueDate)

	// Explicit null clears it
	w = suite.doRequest("PATCH", taskURL, ownerTok, map[string]interface{}{
		"due_date": nil,
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &updated))
	suite.Nil(updated.DueDate)
}

// TestUnauthenticatedRejected checks protected routes without a usable token.
func (suite *PermissionFlowTestSuite) TestUnauthenticatedRejected() {
	w := suite.doRequest("GET", "/api/projects", "", nil)
	suite.Equal(http.StatusUnauthorized, w.Code)

	w = suite.doRequest("GET", "/api/projects", "not-a-token", nil)
	suite.Equal(http.StatusUnauthorized, w.Code)

	w = suite.doRequest("GET", "/api/auth/me", "", nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

// TestRemovedMemberLosesAccess checks removal closes the door immediately.
func (suite *PermissionFlowTestSuite) TestRemovedMemberLosesAccess() {
	_, ownerTok := suite.registerUser("alice")
	member, memberTok := suite.registerUser("bob")

	project := suite.createProjectVia(ownerTok, "Alpha")
	tasksURL := fmt.Sprintf("/api/projects/%d/tasks", project.ID)

	w := suite.doRequest("POST", fmt.Sprintf("/api/projects/%d/members", project.ID), ownerTok, map[string]interface{}{
		"user_id":         member.ID,
		"can_create_task": true,
	})
	suite.Require().Equal(http.StatusCreated, w.Code)

	w = suite.doRequest("GET", tasksURL, memberTok, nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.doRequest("DELETE", fmt.Sprintf("/api/projects/%d/members/%d", project.ID, member.ID), ownerTok, nil)
	suite.Require().Equal(http.StatusNoContent, w.Code)

	w = suite.doRequest("GET", tasksURL, memberTok, nil)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.doRequest("POST", tasksURL, memberTok, map[string]string{"title": "Too late"})
	suite.Equal(http.StatusForbidden, w.Code)
}

// TestSuite runs the test suite
func TestPermissionFlowTestSuite(t *testing.T) {
	suite.Run(t, new(PermissionFlowTestSuite))
}
