package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jfks18/apiVisitor/internal/report"
	"github.com/jfks18/apiVisitor/internal/visitor"
)

type createVisitorRequest struct {
	VisitorsID     string   `json:"visitorsID"`
	FirstName      *string  `json:"first_name"`
	MiddleName     *string  `json:"middle_name"`
	LastName       *string  `json:"last_name"`
	Suffix         *string  `json:"suffix"`
	Gender         *string  `json:"gender"`
	BirthDate      *string  `json:"birth_date"`
	Address        *string  `json:"address"`
	Phone          *string  `json:"phone"`
	FacultyToVisit []string `json:"faculty_to_visit"`
}

// CreateVisitor registers a visitor profile. When no visitorsID is sent
// the server issues one.
func (h *Handler) CreateVisitor(c *gin.Context) {
	var req createVisitorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	id, visitorsID, err := h.visitors.Create(c.Request.Context(), visitor.Profile{
		VisitorsID:     req.VisitorsID,
		FirstName:      req.FirstName,
		MiddleName:     req.MiddleName,
		LastName:       req.LastName,
		Suffix:         req.Suffix,
		Gender:         req.Gender,
		BirthDate:      req.BirthDate,
		Address:        req.Address,
		Phone:          req.Phone,
		FacultyToVisit: req.FacultyToVisit,
	})
	if err != nil {
		h.internalError(c, "create visitor", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Visitor created", "id": id, "visitorsID": visitorsID})
}

// GetVisitor returns one profile by visitorsID.
func (h *Handler) GetVisitor(c *gin.Context) {
	p, err := h.visitors.Get(c.Request.Context(), c.Param("visitorsID"))
	if err != nil {
		h.internalError(c, "get visitor", err)
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Visitor not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// ListVisitorsJoined returns profiles joined with their logs. A visitor
// with several logs appears once per log. Filters mirror the log listing:
// start_date/end_date win over created_at.
func (h *Handler) ListVisitorsJoined(c *gin.Context) {
	rows, err := h.visitors.ListJoined(c.Request.Context(), visitor.JoinedFilter{
		CreatedAt: c.Query("created_at"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	})
	if err != nil {
		h.internalError(c, "list visitors joined", err)
		return
	}
	if rows == nil {
		rows = []visitor.JoinedRow{}
	}
	c.JSON(http.StatusOK, rows)
}

// ExportVisitors streams the joined visitor/log listing as an XLSX file,
// honoring the same date filters as the JSON listing.
func (h *Handler) ExportVisitors(c *gin.Context) {
	rows, err := h.visitors.ListJoined(c.Request.Context(), visitor.JoinedFilter{
		CreatedAt: c.Query("created_at"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	})
	if err != nil {
		h.internalError(c, "export visitors", err)
		return
	}
	data, err := report.VisitorsWorkbook(rows, h.loc)
	if err != nil {
		h.internalError(c, "build visitors workbook", err)
		return
	}
	name := fmt.Sprintf("visitors-%s.xlsx", time.Now().In(h.loc).Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
