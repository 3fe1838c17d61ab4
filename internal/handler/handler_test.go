package handler

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jfks18/apiVisitor/internal/account"
	"github.com/jfks18/apiVisitor/internal/directory"
	"github.com/jfks18/apiVisitor/internal/visit"
	"github.com/jfks18/apiVisitor/internal/visitor"
)

func newTestServer(t *testing.T) (*gin.Engine, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	loc := time.FixedZone("Asia/Manila", 8*3600)
	logger := zap.NewNop()

	visitRepo := visit.NewRepository(db)
	visits := visit.NewService(visitRepo, loc, logger)
	visitors := visitor.NewRepository(db)
	dir := directory.NewRepository(db)
	accRepo := account.NewRepository(db)
	accounts := account.NewService(accRepo, nil, logger, "test-key", time.Minute)

	h := New(visits, visitRepo, visitors, dir, accounts, accRepo, logger, loc)
	r := gin.New()
	h.Register(r)
	return r, mock, db
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	return m
}

func TestScanRecordsTimeIn(t *testing.T) {
	r, mock, _ := newTestServer(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT logid, "visitorsID", "timeIn", "timeOut", "createdAt"`)).
		WithArgs("VIS-1").
		WillReturnRows(sqlmock.NewRows([]string{"logid", "visitorsID", "timeIn", "timeOut", "createdAt"}).
			AddRow(int64(7), "VIS-1", nil, nil, time.Now()))
	mock.ExpectExec(regexp.QuoteMeta(`SET "timeIn"`)).
		WithArgs(sqlmock.AnyArg(), "VIS-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := doJSON(t, r, http.MethodPost, "/api/visitorslog/scan", gin.H{"visitorsID": "VIS-1"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Time in recorded", body["message"])
	assert.Equal(t, "VIS-1", body["visitorsID"])
	assert.NotEmpty(t, body["timeIn"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScanCompletedCycleRejected(t *testing.T) {
	r, mock, _ := newTestServer(t)

	in, out := "08:00:00", "12:00:00"
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT logid, "visitorsID", "timeIn", "timeOut", "createdAt"`)).
		WithArgs("VIS-1").
		WillReturnRows(sqlmock.NewRows([]string{"logid", "visitorsID", "timeIn", "timeOut", "createdAt"}).
			AddRow(int64(7), "VIS-1", in, out, time.Now()))

	w := doJSON(t, r, http.MethodPost, "/api/visitorslog/scan", gin.H{"visitorsID": "VIS-1"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Already timed in and out. Please wait for a new log to be created by the system.", decodeBody(t, w)["message"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScanNoOpenLog(t *testing.T) {
	r, mock, _ := newTestServer(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT logid, "visitorsID", "timeIn", "timeOut", "createdAt"`)).
		WithArgs("VIS-404").
		WillReturnRows(sqlmock.NewRows([]string{"logid", "visitorsID", "timeIn", "timeOut", "createdAt"}))
	mock.ExpectExec(regexp.QuoteMeta(`SET "timeIn"`)).
		WithArgs(sqlmock.AnyArg(), "VIS-404").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`SET "timeOut"`)).
		WithArgs(sqlmock.AnyArg(), "VIS-404").
		WillReturnResult(sqlmock.NewResult(0, 0))

	w := doJSON(t, r, http.MethodPost, "/api/visitorslog/scan", gin.H{"visitorsID": "VIS-404"})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No log found to update time in or out.", decodeBody(t, w)["message"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScanMissingVisitorsID(t *testing.T) {
	r, _, _ := newTestServer(t)

	w := doJSON(t, r, http.MethodPost, "/api/visitorslog/scan", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimeOutBlockedUntilAllTagged(t *testing.T) {
	r, mock, _ := newTestServer(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM office_visits`)).
		WithArgs("VIS-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"total", "tagged"}).AddRow(3, 1))

	w := doJSON(t, r, http.MethodPost, "/api/visitorslog/timeout", gin.H{"visitorsID": "VIS-1"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Not all offices have been tagged for today", body["message"])
	assert.Equal(t, "VIS-1", body["visitorsID"])
	assert.Equal(t, float64(1), body["tagged"])
	assert.Equal(t, float64(3), body["total"])
	assert.NotEmpty(t, body["date"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeOutNoVisitsToday(t *testing.T) {
	r, mock, _ := newTestServer(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM office_visits`)).
		WithArgs("VIS-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"total", "tagged"}).AddRow(0, 0))

	w := doJSON(t, r, http.MethodPost, "/api/visitorslog/timeout", gin.H{"visitorsID": "VIS-1"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "No office visits found for today for this visitor", body["message"])
	assert.Equal(t, "VIS-1", body["visitorsID"])
	// the reported date is the day the census ran against, not a second
	// clock read in the handler
	assert.Equal(t, time.Now().In(time.FixedZone("Asia/Manila", 8*3600)).Format("2006-01-02"), body["date"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeOutSucceedsWhenAllTagged(t *testing.T) {
	r, mock, _ := newTestServer(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM office_visits`)).
		WithArgs("VIS-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"total", "tagged"}).AddRow(2, 2))
	mock.ExpectExec(regexp.QuoteMeta(`SET "timeOut"`)).
		WithArgs(sqlmock.AnyArg(), "VIS-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := doJSON(t, r, http.MethodPost, "/api/visitorslog/timeout", gin.H{"visitorsID": "VIS-1"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Time out recorded", body["message"])
	assert.Equal(t, "VIS-1", body["visitorsID"])
	assert.NotEmpty(t, body["timeOut"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTagScanDepartmentMismatch(t *testing.T) {
	r, mock, _ := newTestServer(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, dept_id`)).
		WithArgs("VIS-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "dept_id"}).AddRow(int64(9), "5"))

	w := doJSON(t, r, http.MethodPost, "/api/office_visits/scan", gin.H{"visitorsID": "VIS-1", "dept_id": "7"})
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Department mismatch", decodeBody(t, w)["message"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTagScanTagsLatestVisit(t *testing.T) {
	r, mock, _ := newTestServer(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, dept_id`)).
		WithArgs("VIS-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "dept_id"}).AddRow(int64(9), "5"))
	mock.ExpectExec(regexp.QuoteMeta(`SET qr_tagged = 1`)).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := doJSON(t, r, http.MethodPost, "/api/office_visits/scan", gin.H{"visitorsID": "VIS-1", "dept_id": "5"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "QR tagged updated", body["message"])
	assert.Equal(t, float64(9), body["id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTagScanNoVisitFound(t *testing.T) {
	r, mock, _ := newTestServer(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, dept_id`)).
		WithArgs("VIS-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "dept_id"}))

	w := doJSON(t, r, http.MethodPost, "/api/office_visits/scan", gin.H{"visitorsID": "VIS-1", "dept_id": "5"})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No visit found for this visitorsID", decodeBody(t, w)["message"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateLogEndpoint(t *testing.T) {
	r, mock, _ := newTestServer(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO visitorslog`)).
		WithArgs("VIS-1").
		WillReturnRows(sqlmock.NewRows([]string{"logid"}).AddRow(int64(42)))

	w := doJSON(t, r, http.MethodPost, "/api/visitorslog", gin.H{"visitorsID": "VIS-1"})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Visitor log saved", body["message"])
	assert.Equal(t, "VIS-1", body["visitorsID"])
	assert.NotContains(t, body, "logid")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListLogsEmptyReturnsArray(t *testing.T) {
	r, mock, _ := newTestServer(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM visitorslog`)).
		WillReturnRows(sqlmock.NewRows([]string{"logid", "visitorsID", "timeIn", "timeOut", "createdAt"}))

	w := doJSON(t, r, http.MethodGet, "/api/visitorslog", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginInvalidCredentials(t *testing.T) {
	r, mock, _ := newTestServer(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE username`)).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "username", "email", "phone", "dept_id", "token", "role", "prof_id", "status", "createdAt", "password",
		}))

	w := doJSON(t, r, http.MethodPost, "/api/login", gin.H{"username": "ghost", "password": "nope"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid username or password", decodeBody(t, w)["message"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProfessorAndUsersNestedBody(t *testing.T) {
	r, mock, _ := newTestServer(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE professors SET`)).
		WithArgs("Ana", int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET`)).
		WithArgs("active", int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	w := doJSON(t, r, http.MethodPut, "/api/professor-users/by-professor/5", gin.H{
		"professor": gin.H{"first_name": "Ana"},
		"user":      gin.H{"status": "active"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Professor/users updated", body["message"])
	assert.Equal(t, float64(5), body["prof_id"])
	assert.Equal(t, float64(1), body["updatedProfessor"])
	assert.Equal(t, float64(2), body["updatedUsers"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProfessorAndUsersEmptyBodyRejected(t *testing.T) {
	r, _, _ := newTestServer(t)

	w := doJSON(t, r, http.MethodPut, "/api/professor-users/by-professor/5", gin.H{})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No fields provided to update for professor or user", decodeBody(t, w)["message"])
}

func TestHealthEndpoint(t *testing.T) {
	r, _, _ := newTestServer(t)

	w := doJSON(t, r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeBody(t, w)["status"])
}
