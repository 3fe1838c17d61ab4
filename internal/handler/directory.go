package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jfks18/apiVisitor/internal/directory"
)

type officeRequest struct {
	Department string `json:"department" binding:"required"`
}

// CreateOffice adds an office.
func (h *Handler) CreateOffice(c *gin.Context) {
	var req officeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "department is required"})
		return
	}
	id, err := h.directory.CreateOffice(c.Request.Context(), req.Department)
	if err != nil {
		h.internalError(c, "create office", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Office created", "id": id})
}

// ListOffices lists every office.
func (h *Handler) ListOffices(c *gin.Context) {
	offices, err := h.directory.ListOffices(c.Request.Context())
	if err != nil {
		h.internalError(c, "list offices", err)
		return
	}
	if offices == nil {
		offices = []directory.Office{}
	}
	c.JSON(http.StatusOK, offices)
}

// UpdateOffice renames an office.
func (h *Handler) UpdateOffice(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return
	}
	var req officeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "department is required"})
		return
	}
	affected, err := h.directory.UpdateOffice(c.Request.Context(), id, req.Department)
	if err != nil {
		h.internalError(c, "update office", err)
		return
	}
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Office not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Office updated"})
}

// DeleteOffice removes an office.
func (h *Handler) DeleteOffice(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return
	}
	affected, err := h.directory.DeleteOffice(c.Request.Context(), id)
	if err != nil {
		h.internalError(c, "delete office", err)
		return
	}
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Office not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Office deleted"})
}

type professorRequest struct {
	FirstName  string `json:"first_name" binding:"required"`
	LastName   string `json:"last_name" binding:"required"`
	MiddleName string `json:"middle_name"`
	BirthDate  string `json:"birth_date"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Position   string `json:"position"`
	Department string `json:"department"`
}

// CreateProfessor adds a professor.
func (h *Handler) CreateProfessor(c *gin.Context) {
	var req professorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "first_name and last_name are required"})
		return
	}
	id, err := h.directory.CreateProfessor(c.Request.Context(), directory.Professor{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		MiddleName: req.MiddleName,
		BirthDate:  req.BirthDate,
		Phone:      req.Phone,
		Email:      req.Email,
		Position:   req.Position,
		Department: req.Department,
	})
	if err != nil {
		h.internalError(c, "create professor", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Professor created", "id": id})
}

// ListProfessors lists every professor.
func (h *Handler) ListProfessors(c *gin.Context) {
	profs, err := h.directory.ListProfessors(c.Request.Context())
	if err != nil {
		h.internalError(c, "list professors", err)
		return
	}
	if profs == nil {
		profs = []directory.Professor{}
	}
	c.JSON(http.StatusOK, profs)
}

// ProfessorsByDepartment lists a department's professors together with
// the latest linked account's id and status.
func (h *Handler) ProfessorsByDepartment(c *gin.Context) {
	profs, err := h.directory.ProfessorsByDepartment(c.Request.Context(), c.Param("departmentId"))
	if err != nil {
		h.internalError(c, "list department professors", err)
		return
	}
	if profs == nil {
		profs = []directory.ProfessorWithUser{}
	}
	c.JSON(http.StatusOK, profs)
}

type updateProfessorRequest struct {
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	MiddleName *string `json:"middle_name"`
	BirthDate  *string `json:"birth_date"`
	Phone      *string `json:"phone"`
	Email      *string `json:"email"`
	Position   *string `json:"position"`
	Department *string `json:"department"`
}

// UpdateProfessor applies a partial update to one professor.
func (h *Handler) UpdateProfessor(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return
	}
	var req updateProfessorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	u := directory.ProfessorUpdate{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		MiddleName: req.MiddleName,
		BirthDate:  req.BirthDate,
		Phone:      req.Phone,
		Email:      req.Email,
		Position:   req.Position,
		Department: req.Department,
	}
	if u == (directory.ProfessorUpdate{}) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No fields provided to update"})
		return
	}
	affected, err := h.directory.UpdateProfessor(c.Request.Context(), id, u)
	if err != nil {
		h.internalError(c, "update professor", err)
		return
	}
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Professor not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Professor updated"})
}

// DeleteProfessor removes one professor.
func (h *Handler) DeleteProfessor(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return
	}
	affected, err := h.directory.DeleteProfessor(c.Request.Context(), id)
	if err != nil {
		h.internalError(c, "delete professor", err)
		return
	}
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Professor not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Professor deleted"})
}

// ListDepartments lists every department.
func (h *Handler) ListDepartments(c *gin.Context) {
	depts, err := h.directory.ListDepartments(c.Request.Context())
	if err != nil {
		h.internalError(c, "list departments", err)
		return
	}
	if depts == nil {
		depts = []directory.Department{}
	}
	c.JSON(http.StatusOK, depts)
}

type departmentRequest struct {
	DeptName string `json:"dept_name" binding:"required"`
}

// CreateDepartment adds a department.
func (h *Handler) CreateDepartment(c *gin.Context) {
	var req departmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "dept_name is required"})
		return
	}
	id, err := h.directory.CreateDepartment(c.Request.Context(), req.DeptName)
	if err != nil {
		h.internalError(c, "create department", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Department created", "id": id})
}

// DeleteDepartment removes a department.
func (h *Handler) DeleteDepartment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return
	}
	affected, err := h.directory.DeleteDepartment(c.Request.Context(), id)
	if err != nil {
		h.internalError(c, "delete department", err)
		return
	}
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Department not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Department deleted"})
}

// ListRoles lists every role.
func (h *Handler) ListRoles(c *gin.Context) {
	roles, err := h.directory.ListRoles(c.Request.Context())
	if err != nil {
		h.internalError(c, "list roles", err)
		return
	}
	if roles == nil {
		roles = []directory.Role{}
	}
	c.JSON(http.StatusOK, roles)
}

// ListServices lists services, optionally filtered by dept_id.
func (h *Handler) ListServices(c *gin.Context) {
	services, err := h.directory.ListServices(c.Request.Context(), c.Query("dept_id"))
	if err != nil {
		h.internalError(c, "list services", err)
		return
	}
	if services == nil {
		services = []directory.Service{}
	}
	c.JSON(http.StatusOK, services)
}

// GetService keys on dept_id: it returns the first service recorded for
// that department.
func (h *Handler) GetService(c *gin.Context) {
	svc, err := h.directory.ServiceByDepartment(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.internalError(c, "get service", err)
		return
	}
	if svc == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Service not found"})
		return
	}
	c.JSON(http.StatusOK, svc)
}

type createServiceRequest struct {
	SrvcName string `json:"srvc_name" binding:"required"`
	DeptID   int64  `json:"dept_id" binding:"required"`
}

// CreateService adds a service under a department.
func (h *Handler) CreateService(c *gin.Context) {
	var req createServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "srvc_name and dept_id are required"})
		return
	}
	id, err := h.directory.CreateService(c.Request.Context(), req.SrvcName, req.DeptID)
	if err != nil {
		h.internalError(c, "create service", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Service created", "id": id})
}

type updateServiceRequest struct {
	SrvcName *string `json:"srvc_name"`
	DeptID   *int64  `json:"dept_id"`
}

// UpdateService applies a partial update to one service.
func (h *Handler) UpdateService(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return
	}
	var req updateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if req.SrvcName == nil && req.DeptID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No fields provided to update"})
		return
	}
	affected, err := h.directory.UpdateService(c.Request.Context(), id, directory.ServiceUpdate{
		SrvcName: req.SrvcName,
		DeptID:   req.DeptID,
	})
	if err != nil {
		h.internalError(c, "update service", err)
		return
	}
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Service not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Service updated"})
}

// DeleteService removes one service.
func (h *Handler) DeleteService(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return
	}
	affected, err := h.directory.DeleteService(c.Request.Context(), id)
	if err != nil {
		h.internalError(c, "delete service", err)
		return
	}
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Service not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Service deleted"})
}
