package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jfks18/apiVisitor/internal/visit"
)

type createLogRequest struct {
	VisitorsID string `json:"visitorsID" binding:"required"`
}

// CreateLog opens a fresh log row for the visitor. Repeated calls stack
// rows; the scan endpoints work against the latest one.
func (h *Handler) CreateLog(c *gin.Context) {
	var req createLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "visitorsID is required"})
		return
	}
	if _, err := h.visits.CreateLog(c.Request.Context(), req.VisitorsID); err != nil {
		h.internalError(c, "create log", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Visitor log saved", "visitorsID": req.VisitorsID})
}

// ListLogs lists logs filtered by visitorsID, a single day, or a date
// range. start_date/end_date together win over created_at.
func (h *Handler) ListLogs(c *gin.Context) {
	f := visit.LogFilter{
		VisitorsID: c.Query("visitorsID"),
		CreatedAt:  c.Query("created_at"),
		StartDate:  c.Query("start_date"),
		EndDate:    c.Query("end_date"),
	}
	logs, err := h.visitRepo.ListLogs(c.Request.Context(), f)
	if err != nil {
		h.internalError(c, "list logs", err)
		return
	}
	if logs == nil {
		logs = []visit.Log{}
	}
	c.JSON(http.StatusOK, logs)
}

// LogsByVisitor lists every log for one visitor, newest first.
func (h *Handler) LogsByVisitor(c *gin.Context) {
	logs, err := h.visitRepo.LogsByVisitor(c.Request.Context(), c.Param("visitorsID"))
	if err != nil {
		h.internalError(c, "list visitor logs", err)
		return
	}
	if len(logs) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "No visitor logs found for this visitorsID"})
		return
	}
	c.JSON(http.StatusOK, logs)
}

type scanRequest struct {
	VisitorsID string `json:"visitorsID" binding:"required"`
}

// Scan is the kiosk badge scan. It advances whichever half of the cycle
// is open: time-in first, then time-out, then reports the state.
func (h *Handler) Scan(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "visitorsID is required"})
		return
	}
	res, err := h.visits.ScanAttendance(c.Request.Context(), req.VisitorsID)
	switch {
	case errors.Is(err, visit.ErrCycleComplete):
		scanOutcomes.WithLabelValues("attendance", "cycle_complete").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"message": "Already timed in and out. Please wait for a new log to be created by the system."})
		return
	case errors.Is(err, visit.ErrNoOpenLog):
		scanOutcomes.WithLabelValues("attendance", "no_open_log").Inc()
		c.JSON(http.StatusNotFound, gin.H{"message": "No log found to update time in or out."})
		return
	case err != nil:
		scanOutcomes.WithLabelValues("attendance", "error").Inc()
		h.internalError(c, "scan attendance", err)
		return
	}
	if res.Direction == visit.ScanTimeIn {
		scanOutcomes.WithLabelValues("attendance", "time_in").Inc()
		c.JSON(http.StatusOK, gin.H{"message": "Time in recorded", "visitorsID": req.VisitorsID, "timeIn": res.Time})
		return
	}
	scanOutcomes.WithLabelValues("attendance", "time_out").Inc()
	c.JSON(http.StatusOK, gin.H{"message": "Time out recorded", "visitorsID": req.VisitorsID, "timeOut": res.Time})
}

// TimeIn is the front-desk time-in endpoint.
func (h *Handler) TimeIn(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "visitorsID is required"})
		return
	}
	timeIn, err := h.visits.RecordTimeIn(c.Request.Context(), req.VisitorsID)
	if err != nil {
		h.internalError(c, "record time in", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Time in recorded", "visitorsID": req.VisitorsID, "timeIn": timeIn})
}

// TimeOut is the gated front-desk time-out. It refuses until every office
// visit the visitor created today is tagged, and tells the caller the
// tagging progress when it refuses.
func (h *Handler) TimeOut(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "visitorsID is required"})
		return
	}
	timeOut, err := h.visits.RequestTimeOut(c.Request.Context(), req.VisitorsID)
	if err != nil {
		var noVisits *visit.NoVisitsTodayError
		var incomplete *visit.IncompleteTaggingError
		switch {
		case errors.As(err, &noVisits):
			c.JSON(http.StatusBadRequest, gin.H{
				"message":    "No office visits found for today for this visitor",
				"visitorsID": req.VisitorsID,
				"date":       noVisits.Date,
			})
		case errors.As(err, &incomplete):
			c.JSON(http.StatusBadRequest, gin.H{
				"message":    "Not all offices have been tagged for today",
				"visitorsID": req.VisitorsID,
				"date":       incomplete.Date,
				"tagged":     incomplete.Tagged,
				"total":      incomplete.Total,
			})
		default:
			h.internalError(c, "record time out", err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Time out recorded", "visitorsID": req.VisitorsID, "timeOut": timeOut})
}

type createOfficeVisitRequest struct {
	VisitorsID string `json:"visitorsID" binding:"required"`
	DeptID     string `json:"dept_id" binding:"required"`
	ProfID     string `json:"prof_id"`
	Purpose    string `json:"purpose"`
}

// CreateOfficeVisit records a declared stop at an office, untagged.
func (h *Handler) CreateOfficeVisit(c *gin.Context) {
	var req createOfficeVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "visitorsID and dept_id are required"})
		return
	}
	id, err := h.visitRepo.CreateOfficeVisit(c.Request.Context(), visit.OfficeVisit{
		VisitorsID: req.VisitorsID,
		DeptID:     req.DeptID,
		ProfID:     req.ProfID,
		Purpose:    req.Purpose,
	})
	if err != nil {
		h.internalError(c, "create office visit", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Office visit created", "id": id})
}

// ListOfficeVisits lists visits with optional visitorsID/dept_id/prof_id
// filters.
func (h *Handler) ListOfficeVisits(c *gin.Context) {
	visits, err := h.visitRepo.ListOfficeVisits(c.Request.Context(),
		c.Query("visitorsID"), c.Query("dept_id"), c.Query("prof_id"))
	if err != nil {
		h.internalError(c, "list office visits", err)
		return
	}
	if visits == nil {
		visits = []visit.OfficeVisit{}
	}
	c.JSON(http.StatusOK, visits)
}

// GetOfficeVisit keys on prof_id, not the row id: it returns the first
// visit recorded for that professor.
func (h *Handler) GetOfficeVisit(c *gin.Context) {
	v, err := h.visitRepo.FirstVisitByProfessor(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.internalError(c, "get office visit", err)
		return
	}
	if v == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "No visit found"})
		return
	}
	c.JSON(http.StatusOK, v)
}

// OfficeVisitsByProfessor lists every visit recorded for a professor.
func (h *Handler) OfficeVisitsByProfessor(c *gin.Context) {
	visits, err := h.visitRepo.VisitsByProfessor(c.Request.Context(), c.Param("prof_id"))
	if err != nil {
		h.internalError(c, "list professor visits", err)
		return
	}
	if visits == nil {
		visits = []visit.OfficeVisit{}
	}
	c.JSON(http.StatusOK, visits)
}

type updateOfficeVisitRequest struct {
	VisitorsID *string `json:"visitorsID"`
	DeptID     *string `json:"dept_id"`
	ProfID     *string `json:"prof_id"`
	Purpose    *string `json:"purpose"`
}

// UpdateOfficeVisit applies a partial update to one visit row.
func (h *Handler) UpdateOfficeVisit(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return
	}
	var req updateOfficeVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	u := visit.OfficeVisitUpdate{
		VisitorsID: req.VisitorsID,
		DeptID:     req.DeptID,
		ProfID:     req.ProfID,
		Purpose:    req.Purpose,
	}
	if u.VisitorsID == nil && u.DeptID == nil && u.ProfID == nil && u.Purpose == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No fields provided to update"})
		return
	}
	affected, err := h.visitRepo.UpdateOfficeVisit(c.Request.Context(), id, u)
	if err != nil {
		h.internalError(c, "update office visit", err)
		return
	}
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "No visit found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Office visit updated"})
}

// DeleteOfficeVisit removes one visit row.
func (h *Handler) DeleteOfficeVisit(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return
	}
	affected, err := h.visitRepo.DeleteOfficeVisit(c.Request.Context(), id)
	if err != nil {
		h.internalError(c, "delete office visit", err)
		return
	}
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "No visit found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Office visit deleted"})
}

type tagScanRequest struct {
	VisitorsID string `json:"visitorsID" binding:"required"`
	DeptID     string `json:"dept_id" binding:"required"`
}

// TagScan is the office-side QR scan: it tags the visitor's latest visit
// after checking the scanning office matches the visit's department.
func (h *Handler) TagScan(c *gin.Context) {
	var req tagScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "visitorsID and dept_id are required"})
		return
	}
	id, err := h.visits.TagOfficeVisit(c.Request.Context(), req.VisitorsID, req.DeptID)
	switch {
	case errors.Is(err, visit.ErrNoVisitFound):
		scanOutcomes.WithLabelValues("tag", "no_visit").Inc()
		c.JSON(http.StatusNotFound, gin.H{"message": "No visit found for this visitorsID"})
		return
	case errors.Is(err, visit.ErrDepartmentMismatch):
		scanOutcomes.WithLabelValues("tag", "dept_mismatch").Inc()
		c.JSON(http.StatusForbidden, gin.H{"message": "Department mismatch"})
		return
	case err != nil:
		scanOutcomes.WithLabelValues("tag", "error").Inc()
		h.internalError(c, "tag office visit", err)
		return
	}
	scanOutcomes.WithLabelValues("tag", "tagged").Inc()
	c.JSON(http.StatusOK, gin.H{"message": "QR tagged updated", "id": id})
}
