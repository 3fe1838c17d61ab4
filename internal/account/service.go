package account

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/jfks18/apiVisitor/internal/mailer"
)

const bcryptCost = 10

// Service handles login sessions, account provisioning, and password
// resets. Sessions use opaque random tokens stored on the user row; only
// the reset flow uses signed tokens, because those travel by email.
type Service struct {
	repo          *Repository
	mail          mailer.Sender
	logger        *zap.Logger
	resetTokenKey string
	resetTokenTTL time.Duration
}

// NewService creates the account service. mail may be nil when SMTP is not
// configured; flows that must email then report failure per request.
func NewService(repo *Repository, mail mailer.Sender, logger *zap.Logger, resetTokenKey string, resetTokenTTL time.Duration) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:          repo,
		mail:          mail,
		logger:        logger,
		resetTokenKey: resetTokenKey,
		resetTokenTTL: resetTokenTTL,
	}
}

// Login verifies credentials, issues a fresh opaque session token, marks
// the account active, and returns the sanitized user record.
func (s *Service) Login(ctx context.Context, username, password string) (*User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := randomHex(32)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetToken(ctx, user.ID, token, "active"); err != nil {
		return nil, err
	}
	updated, err := s.repo.GetByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrUserNotFound
	}
	s.logger.Info("login successful", zap.String("username", username))
	return updated, nil
}

// Logout clears the session token and marks the account inactive.
func (s *Service) Logout(ctx context.Context, username string) error {
	affected, err := s.repo.ClearToken(ctx, username)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// CreateUserInput is the provisioning request. Password is optional: when
// blank a temporary one is generated and emailed.
type CreateUserInput struct {
	Username string
	Email    string
	Phone    string
	Password string
	DeptID   *int64
	Status   string
	Role     *int64
}

// CreateUserResult reports the insert plus the credential-email outcome.
// The email failing does not fail the creation; the caller is told.
type CreateUserResult struct {
	ID        int64
	Status    string
	Role      int64
	EmailSent bool
	EmailErr  string
}

// CreateUser provisions an account, hashing the (possibly generated)
// password and emailing the credentials to the new user.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (CreateUserResult, error) {
	plain := in.Password
	if plain == "" {
		generated, err := randomHex(8)
		if err != nil {
			return CreateUserResult{}, err
		}
		plain = generated
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return CreateUserResult{}, err
	}

	status := in.Status
	if status == "" {
		status = "inactive"
	}
	role := int64(2)
	if in.Role != nil {
		role = *in.Role
	}

	id, err := s.repo.Create(ctx, in.Username, &in.Email, &in.Phone, string(hash), in.DeptID, status, role)
	if err != nil {
		return CreateUserResult{}, err
	}

	result := CreateUserResult{ID: id, Status: status, Role: role}
	msg := mailer.Message{
		To:      []string{in.Email},
		Subject: "Your account has been created",
		Text: fmt.Sprintf("Hello %s,\n\nYour account has been created.\n\nUsername: %s\nPassword: %s\n\nFor your security, please sign in and change your password immediately.",
			in.Username, in.Username, plain),
		HTML: fmt.Sprintf("<p>Hello %s,</p><p>Your account has been created.</p><p><b>Username:</b> %s<br/><b>Password:</b> %s</p><p>For your security, please sign in and change your password immediately.</p>",
			in.Username, in.Username, plain),
	}
	if err := s.sendMail(msg); err != nil {
		s.logger.Error("credential email failed", zap.String("username", in.Username), zap.Error(err))
		result.EmailErr = err.Error()
	} else {
		result.EmailSent = true
	}
	return result, nil
}

// UpdateUser applies a partial update, hashing PlainPassword when given.
func (s *Service) UpdateUser(ctx context.Context, id int64, u UserUpdate, plainPassword *string) (int64, error) {
	if plainPassword != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*plainPassword), bcryptCost)
		if err != nil {
			return 0, err
		}
		hashStr := string(hash)
		u.PasswordHash = &hashStr
	}
	return s.repo.Update(ctx, id, u)
}

// RequestPasswordReset emails the user a short-lived signed reset token.
func (s *Service) RequestPasswordReset(ctx context.Context, username string) error {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if user.Email == nil || *user.Email == "" {
		return ErrNoEmailOnFile
	}

	token, exp, err := signResetToken(user.Username, s.resetTokenKey, s.resetTokenTTL)
	if err != nil {
		return err
	}
	msg := mailer.Message{
		To:      []string{*user.Email},
		Subject: "Password reset requested",
		Text: fmt.Sprintf("Hello %s,\n\nUse this token to reset your password before %s:\n\n%s\n\nIf you did not request a reset, ignore this message.",
			user.Username, exp.Format(time.RFC1123), token),
	}
	if err := s.sendMail(msg); err != nil {
		return err
	}
	s.logger.Info("password reset requested", zap.String("username", username))
	return nil
}

// ConfirmPasswordReset validates the token and stores the new password.
func (s *Service) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	username, err := parseResetToken(token, s.resetTokenKey)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return err
	}
	affected, err := s.repo.SetPasswordByUsername(ctx, username, string(hash))
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	s.logger.Info("password reset completed", zap.String("username", username))
	return nil
}

// SendMail exposes the raw one-way sender for the email endpoint.
func (s *Service) SendMail(m mailer.Message) error {
	return s.sendMail(m)
}

func (s *Service) sendMail(m mailer.Message) error {
	if s.mail == nil {
		return fmt.Errorf("smtp not configured")
	}
	return s.mail.Send(m)
}

func randomHex(nBytes int) (string, error) {
	buf := make([]byte, nBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
