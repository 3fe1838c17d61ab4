// Package handler exposes the HTTP surface of the visitor monitoring API.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jfks18/apiVisitor/internal/account"
	"github.com/jfks18/apiVisitor/internal/directory"
	"github.com/jfks18/apiVisitor/internal/visit"
	"github.com/jfks18/apiVisitor/internal/visitor"
)

// Handler carries the injected collaborators of every endpoint.
type Handler struct {
	visits    *visit.Service
	visitRepo *visit.Repository
	visitors  *visitor.Repository
	directory *directory.Repository
	accounts  *account.Service
	accRepo   *account.Repository
	logger    *zap.Logger
	loc       *time.Location
}

// New builds the handler set.
func New(
	visits *visit.Service,
	visitRepo *visit.Repository,
	visitors *visitor.Repository,
	dir *directory.Repository,
	accounts *account.Service,
	accRepo *account.Repository,
	logger *zap.Logger,
	loc *time.Location,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		visits:    visits,
		visitRepo: visitRepo,
		visitors:  visitors,
		directory: dir,
		accounts:  accounts,
		accRepo:   accRepo,
		logger:    logger,
		loc:       loc,
	}
}

// Register mounts every API route on the engine.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Visitor Monitoring API"})
	})

	api := r.Group("/api")

	api.POST("/visitorsdata", h.CreateVisitor)
	api.GET("/visitorsdata/:visitorsID", h.GetVisitor)

	api.POST("/visitorslog", h.CreateLog)
	api.GET("/visitorslog", h.ListLogs)
	api.GET("/visitorslog/:visitorsID", h.LogsByVisitor)
	api.POST("/visitorslog/timein", h.TimeIn)
	api.POST("/visitorslog/timeout", h.TimeOut)
	api.POST("/visitorslog/scan", h.Scan)

	api.GET("/visitors", h.ListVisitorsJoined)
	api.GET("/visitors-joined", h.ListVisitorsJoined)
	api.GET("/visitors/export", h.ExportVisitors)

	api.GET("/office_visits", h.ListOfficeVisits)
	api.GET("/office_visits/by-professor/:prof_id", h.OfficeVisitsByProfessor)
	api.GET("/office_visits/:id", h.GetOfficeVisit)
	api.POST("/office_visits", h.CreateOfficeVisit)
	api.PUT("/office_visits/:id", h.UpdateOfficeVisit)
	api.DELETE("/office_visits/:id", h.DeleteOfficeVisit)
	api.POST("/office_visits/scan", h.TagScan)

	api.POST("/login", h.Login)
	api.POST("/logout", h.Logout)
	api.POST("/users", h.CreateUser)
	api.GET("/users", h.ListUsers)
	api.GET("/users/:id", h.GetUser)
	api.PUT("/users/:id", h.UpdateUser)
	api.DELETE("/users/:id", h.DeleteUser)
	api.POST("/password-reset/request", h.RequestPasswordReset)
	api.POST("/password-reset/confirm", h.ConfirmPasswordReset)
	api.POST("/email/send", h.SendEmail)

	api.GET("/professor-users", h.ListProfessorUsers)
	api.GET("/professor-users/:prof_id", h.GetProfessorUser)
	api.POST("/professor-users", h.LinkProfessorUser)
	api.PUT("/professor-users/by-professor/:prof_id", h.UpdateProfessorAndUsers)
	api.PUT("/professor-users/:userId", h.UpdateProfessorLink)
	api.DELETE("/professor-users/:userId", h.UnlinkProfessorUser)

	api.POST("/offices", h.CreateOffice)
	api.GET("/offices", h.ListOffices)
	api.PUT("/offices/:id", h.UpdateOffice)
	api.DELETE("/offices/:id", h.DeleteOffice)

	api.POST("/professors", h.CreateProfessor)
	api.GET("/professors", h.ListProfessors)
	api.GET("/professors/department/:departmentId", h.ProfessorsByDepartment)
	api.PUT("/professors/:id", h.UpdateProfessor)
	api.DELETE("/professors/:id", h.DeleteProfessor)

	api.GET("/departments", h.ListDepartments)
	api.POST("/departments", h.CreateDepartment)
	api.DELETE("/departments/:id", h.DeleteDepartment)

	api.GET("/roles", h.ListRoles)

	api.GET("/services", h.ListServices)
	api.GET("/services/:id", h.GetService)
	api.POST("/services", h.CreateService)
	api.PUT("/services/:id", h.UpdateService)
	api.DELETE("/services/:id", h.DeleteService)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	})
}

// internalError logs the failure with context and returns the generic 500
// body; store and mail details never leak to the caller.
func (h *Handler) internalError(c *gin.Context, action string, err error) {
	h.logger.Error(action, zap.Error(err), zap.String("path", c.FullPath()))
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
}
