package account

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/jfks18/apiVisitor/internal/directory"
	"github.com/jfks18/apiVisitor/internal/mailer"
)

type fakeSender struct {
	sent []mailer.Message
	fail error
}

func (f *fakeSender) Send(m mailer.Message) error {
	if f.fail != nil {
		return f.fail
	}
	f.sent = append(f.sent, m)
	return nil
}

func setupService(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *fakeSender, *Service) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sender := &fakeSender{}
	svc := NewService(NewRepository(db), sender, zap.NewNop(), "test-reset-key", 30*time.Minute)
	return db, mock, sender, svc
}

func userRowsWithPassword(username, hash string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "username", "email", "phone", "dept_id", "token", "role", "prof_id", "status", "createdAt", "password"}).
		AddRow(int64(3), username, "admin@example.com", nil, nil, nil, int64(1), nil, "inactive", time.Now(), hash)
}

func userRows(username string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "username", "email", "phone", "dept_id", "token", "role", "prof_id", "status", "createdAt"}).
		AddRow(int64(3), username, "admin@example.com", nil, nil, "sometoken", int64(1), nil, "active", time.Now())
}

func TestLogin_Success(t *testing.T) {
	db, mock, _, svc := setupService(t)
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE username = $1`)).
		WithArgs("admin").
		WillReturnRows(userRowsWithPassword("admin", string(hash)))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET token = $1, status = $2`)).
		WithArgs(sqlmock.AnyArg(), "active", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = $1`)).
		WithArgs(int64(3)).
		WillReturnRows(userRows("admin"))

	user, err := svc.Login(context.Background(), "admin", "secret")
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Username)
	require.NotNil(t, user.Status)
	assert.Equal(t, "active", *user.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_WrongPassword(t *testing.T) {
	db, mock, _, svc := setupService(t)
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE username = $1`)).
		WithArgs("admin").
		WillReturnRows(userRowsWithPassword("admin", string(hash)))

	_, err = svc.Login(context.Background(), "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_UnknownUser(t *testing.T) {
	db, mock, _, svc := setupService(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE username = $1`)).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := svc.Login(context.Background(), "ghost", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogout(t *testing.T) {
	db, mock, _, svc := setupService(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET token = NULL`)).
		WithArgs("admin").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, svc.Logout(context.Background(), "admin"))

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET token = NULL`)).
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, svc.Logout(context.Background(), "ghost"), ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_GeneratesPasswordAndEmails(t *testing.T) {
	db, mock, sender, svc := setupService(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))

	res, err := svc.CreateUser(context.Background(), CreateUserInput{
		Username: "frontdesk",
		Email:    "frontdesk@example.com",
		Phone:    "0917",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9), res.ID)
	assert.Equal(t, "inactive", res.Status)
	assert.Equal(t, int64(2), res.Role)
	assert.True(t, res.EmailSent)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"frontdesk@example.com"}, sender.sent[0].To)
	assert.Contains(t, sender.sent[0].Text, "Username: frontdesk")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_EmailFailureStillCreates(t *testing.T) {
	db, mock, sender, svc := setupService(t)
	defer db.Close()
	sender.fail = errors.New("smtp refused")

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(10)))

	res, err := svc.CreateUser(context.Background(), CreateUserInput{
		Username: "guard",
		Email:    "guard@example.com",
		Phone:    "0918",
	})
	require.NoError(t, err)
	assert.False(t, res.EmailSent)
	assert.Equal(t, "smtp refused", res.EmailErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPasswordResetRoundTrip(t *testing.T) {
	db, mock, sender, svc := setupService(t)
	defer db.Close()
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("old"), bcrypt.MinCost)
	require.NoError(t, err)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE username = $1`)).
		WithArgs("admin").
		WillReturnRows(userRowsWithPassword("admin", string(hash)))

	require.NoError(t, svc.RequestPasswordReset(ctx, "admin"))
	require.Len(t, sender.sent, 1)

	token, _, err := signResetToken("admin", "test-reset-key", 30*time.Minute)
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET password = $1 WHERE username = $2`)).
		WithArgs(sqlmock.AnyArg(), "admin").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, svc.ConfirmPasswordReset(ctx, token, "newpassword"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmPasswordReset_BadToken(t *testing.T) {
	db, _, _, svc := setupService(t)
	defer db.Close()

	err := svc.ConfirmPasswordReset(context.Background(), "not-a-token", "x")
	assert.ErrorIs(t, err, ErrInvalidResetToken)

	expired, _, err := signResetToken("admin", "test-reset-key", -time.Minute)
	require.NoError(t, err)
	err = svc.ConfirmPasswordReset(context.Background(), expired, "x")
	assert.ErrorIs(t, err, ErrInvalidResetToken)

	wrongKey, _, err := signResetToken("admin", "other-key", time.Minute)
	require.NoError(t, err)
	err = svc.ConfirmPasswordReset(context.Background(), wrongKey, "x")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestUpdateProfessorAndUsers_Transactional(t *testing.T) {
	db, mock, _, svc := setupService(t)
	defer db.Close()
	_ = svc

	repo := NewRepository(db)
	email := "prof@example.com"
	status := "active"

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE professors SET email = $1 WHERE id = $2`)).
		WithArgs(email, int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET status = $1 WHERE prof_id = $2`)).
		WithArgs(status, int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	updatedProf, updatedUsers, err := repo.UpdateProfessorAndUsers(context.Background(), 4,
		directory.ProfessorUpdate{Email: &email},
		UserUpdate{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, int64(1), updatedProf)
	assert.Equal(t, int64(2), updatedUsers)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProfessorAndUsers_RollsBackWhenUserUpdateFails(t *testing.T) {
	db, mock, _, _ := setupService(t)
	defer db.Close()

	repo := NewRepository(db)
	email := "prof@example.com"
	status := "active"
	boom := errors.New("constraint violation")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE professors SET email = $1 WHERE id = $2`)).
		WithArgs(email, int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET status = $1 WHERE prof_id = $2`)).
		WithArgs(status, int64(4)).
		WillReturnError(boom)
	mock.ExpectRollback()

	_, _, err := repo.UpdateProfessorAndUsers(context.Background(), 4,
		directory.ProfessorUpdate{Email: &email},
		UserUpdate{Status: &status})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProfessorAndUsers_ProfessorMissing(t *testing.T) {
	db, mock, _, _ := setupService(t)
	defer db.Close()

	repo := NewRepository(db)
	email := "prof@example.com"

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE professors SET email = $1 WHERE id = $2`)).
		WithArgs(email, int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, _, err := repo.UpdateProfessorAndUsers(context.Background(), 99,
		directory.ProfessorUpdate{Email: &email}, UserUpdate{})
	assert.ErrorIs(t, err, ErrProfessorNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
