package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/jfks18/apiVisitor/internal/account"
	"github.com/jfks18/apiVisitor/internal/directory"
	"github.com/jfks18/apiVisitor/internal/mailer"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and returns the user with a fresh session
// token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username and password are required"})
		return
	}
	user, err := h.accounts.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, account.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid username or password"})
			return
		}
		h.internalError(c, "login", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "user": user})
}

type logoutRequest struct {
	Username string `json:"username" binding:"required"`
}

// Logout clears the session token and marks the account inactive.
func (h *Handler) Logout(c *gin.Context) {
	var req logoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username is required"})
		return
	}
	if err := h.accounts.Logout(c.Request.Context(), req.Username); err != nil {
		if errors.Is(err, account.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		h.internalError(c, "logout", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

type createUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	DeptID   *int64 `json:"dept_id"`
	Status   string `json:"status"`
	Role     *int64 `json:"role"`
}

// CreateUser provisions an account. Leaving password blank makes the
// server generate a temporary one and email it; the email outcome is
// reported alongside the created record.
func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username is required"})
		return
	}
	res, err := h.accounts.CreateUser(c.Request.Context(), account.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		DeptID:   req.DeptID,
		Status:   req.Status,
		Role:     req.Role,
	})
	if err != nil {
		if errors.Is(err, account.ErrDuplicateUser) {
			c.JSON(http.StatusConflict, gin.H{"message": "Username or email already exists"})
			return
		}
		h.internalError(c, "create user", err)
		return
	}
	body := gin.H{
		"message":   "User created",
		"id":        res.ID,
		"status":    res.Status,
		"role":      res.Role,
		"emailSent": res.EmailSent,
	}
	if res.EmailErr != "" {
		body["emailError"] = res.EmailErr
	}
	c.JSON(http.StatusCreated, body)
}

// ListUsers lists accounts, optionally filtered by dept_id.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.accRepo.List(c.Request.Context(), c.Query("dept_id"))
	if err != nil {
		h.internalError(c, "list users", err)
		return
	}
	if users == nil {
		users = []account.User{}
	}
	c.JSON(http.StatusOK, users)
}

// GetUser returns one account by id.
func (h *Handler) GetUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return
	}
	user, err := h.accRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.internalError(c, "get user", err)
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

type updateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Password *string `json:"password"`
	DeptID   *int64  `json:"dept_id"`
	Status   *string `json:"status"`
	Role     *int64  `json:"role"`
}

// UpdateUser applies a partial update; a supplied password is re-hashed.
func (h *Handler) UpdateUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	u := account.UserUpdate{
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		DeptID:   req.DeptID,
		Status:   req.Status,
		Role:     req.Role,
	}
	affected, err := h.accounts.UpdateUser(c.Request.Context(), id, u, req.Password)
	if err != nil {
		h.internalError(c, "update user", err)
		return
	}
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User updated"})
}

// DeleteUser removes one account.
func (h *Handler) DeleteUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return
	}
	affected, err := h.accRepo.Delete(c.Request.Context(), id)
	if err != nil {
		h.internalError(c, "delete user", err)
		return
	}
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

type sendEmailRequest struct {
	To      string `json:"to" binding:"required"`
	Subject string `json:"subject" binding:"required"`
	Text    string `json:"text"`
	HTML    string `json:"html"`
	From    string `json:"from"`
}

// SendEmail relays an arbitrary message through the configured SMTP
// account. Delivery is synchronous: the response reports the real outcome.
func (h *Handler) SendEmail(c *gin.Context) {
	var req sendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "to and subject are required"})
		return
	}
	err := h.accounts.SendMail(mailer.Message{
		To:      []string{req.To},
		Subject: req.Subject,
		Text:    req.Text,
		HTML:    req.HTML,
		From:    req.From,
	})
	if err != nil {
		h.internalError(c, "send email", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email sent"})
}

type passwordResetRequest struct {
	Username string `json:"username" binding:"required"`
}

// RequestPasswordReset emails a short-lived reset token to the account's
// address. Unknown usernames get the same response as known ones.
func (h *Handler) RequestPasswordReset(c *gin.Context) {
	var req passwordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username is required"})
		return
	}
	err := h.accounts.RequestPasswordReset(c.Request.Context(), req.Username)
	switch {
	case errors.Is(err, account.ErrUserNotFound):
		// same body as success so the endpoint cannot be used to probe usernames
	case errors.Is(err, account.ErrNoEmailOnFile):
		c.JSON(http.StatusBadRequest, gin.H{"message": "No email address on file for this account"})
		return
	case err != nil:
		h.internalError(c, "request password reset", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "If the account exists, a reset email has been sent"})
}

type passwordResetConfirm struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ConfirmPasswordReset sets a new password given a valid reset token.
func (h *Handler) ConfirmPasswordReset(c *gin.Context) {
	var req passwordResetConfirm
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "token and password are required"})
		return
	}
	err := h.accounts.ConfirmPasswordReset(c.Request.Context(), req.Token, req.Password)
	switch {
	case errors.Is(err, account.ErrInvalidResetToken):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid or expired reset token"})
		return
	case errors.Is(err, account.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	case err != nil:
		h.internalError(c, "confirm password reset", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

// ListProfessorUsers lists users linked to professors, joined with the
// professor record.
func (h *Handler) ListProfessorUsers(c *gin.Context) {
	rows, err := h.accRepo.ListProfessorUsers(c.Request.Context())
	if err != nil {
		h.internalError(c, "list professor users", err)
		return
	}
	if rows == nil {
		rows = []account.ProfessorUser{}
	}
	c.JSON(http.StatusOK, rows)
}

// GetProfessorUser returns the joined record for one professor id.
func (h *Handler) GetProfessorUser(c *gin.Context) {
	profID, err := strconv.ParseInt(c.Param("prof_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid prof_id"})
		return
	}
	pu, err := h.accRepo.GetProfessorUser(c.Request.Context(), profID)
	if err != nil {
		h.internalError(c, "get professor user", err)
		return
	}
	if pu == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "No user linked to this professor"})
		return
	}
	c.JSON(http.StatusOK, pu)
}

type professorLinkRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
	ProfID int64 `json:"prof_id" binding:"required"`
}

// LinkProfessorUser points an existing user at an existing professor.
func (h *Handler) LinkProfessorUser(c *gin.Context) {
	var req professorLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "user_id and prof_id are required"})
		return
	}
	ok, err := h.accRepo.UserExists(c.Request.Context(), req.UserID)
	if err != nil {
		h.internalError(c, "link professor user", err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	ok, err = h.accRepo.ProfessorExists(c.Request.Context(), req.ProfID)
	if err != nil {
		h.internalError(c, "link professor user", err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "Professor not found"})
		return
	}
	if _, err := h.accRepo.SetProfessorLink(c.Request.Context(), req.UserID, req.ProfID); err != nil {
		h.internalError(c, "link professor user", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Professor linked to user"})
}

type updateProfessorLinkRequest struct {
	ProfID int64 `json:"prof_id" binding:"required"`
}

// UpdateProfessorLink re-points a user's professor link.
func (h *Handler) UpdateProfessorLink(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid userId"})
		return
	}
	var req updateProfessorLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "prof_id is required"})
		return
	}
	ok, err := h.accRepo.ProfessorExists(c.Request.Context(), req.ProfID)
	if err != nil {
		h.internalError(c, "update professor link", err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "Professor not found"})
		return
	}
	affected, err := h.accRepo.SetProfessorLink(c.Request.Context(), userID, req.ProfID)
	if err != nil {
		h.internalError(c, "update professor link", err)
		return
	}
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Professor link updated"})
}

// UnlinkProfessorUser clears a user's professor link.
func (h *Handler) UnlinkProfessorUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid userId"})
		return
	}
	affected, err := h.accRepo.ClearProfessorLink(c.Request.Context(), userID)
	if err != nil {
		h.internalError(c, "unlink professor user", err)
		return
	}
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Professor link removed"})
}

type updateProfessorUsersRequest struct {
	Professor *struct {
		FirstName  *string `json:"first_name"`
		LastName   *string `json:"last_name"`
		MiddleName *string `json:"middle_name"`
		BirthDate  *string `json:"birth_date"`
		Phone      *string `json:"phone"`
		Email      *string `json:"email"`
		Position   *string `json:"position"`
		Department *string `json:"department"`
	} `json:"professor"`
	User *struct {
		Username *string `json:"username"`
		Email    *string `json:"email"`
		Phone    *string `json:"phone"`
		DeptID   *int64  `json:"dept_id"`
		Status   *string `json:"status"`
		Role     *int64  `json:"role"`
		Password *string `json:"password"`
	} `json:"user"`
}

// UpdateProfessorAndUsers updates a professor and every account linked to
// it in one transaction: either both writes land or neither does.
func (h *Handler) UpdateProfessorAndUsers(c *gin.Context) {
	profID, err := strconv.ParseInt(c.Param("prof_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "prof_id is required"})
		return
	}
	var req updateProfessorUsersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	var prof directory.ProfessorUpdate
	if req.Professor != nil {
		prof = directory.ProfessorUpdate{
			FirstName:  req.Professor.FirstName,
			LastName:   req.Professor.LastName,
			MiddleName: req.Professor.MiddleName,
			BirthDate:  req.Professor.BirthDate,
			Phone:      req.Professor.Phone,
			Email:      req.Professor.Email,
			Position:   req.Professor.Position,
			Department: req.Professor.Department,
		}
	}
	var user account.UserUpdate
	if req.User != nil {
		user = account.UserUpdate{
			Username: req.User.Username,
			Email:    req.User.Email,
			Phone:    req.User.Phone,
			DeptID:   req.User.DeptID,
			Status:   req.User.Status,
			Role:     req.User.Role,
		}
		if req.User.Password != nil {
			hashed, err := bcrypt.GenerateFromPassword([]byte(*req.User.Password), 10)
			if err != nil {
				h.internalError(c, "hash password", err)
				return
			}
			s := string(hashed)
			user.PasswordHash = &s
		}
	}
	if prof == (directory.ProfessorUpdate{}) && user == (account.UserUpdate{}) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No fields provided to update for professor or user"})
		return
	}
	updatedProfessor, updatedUsers, err := h.accRepo.UpdateProfessorAndUsers(c.Request.Context(), profID, prof, user)
	if err != nil {
		if errors.Is(err, account.ErrProfessorNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Professor not found"})
			return
		}
		h.internalError(c, "update professor and users", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":          "Professor/users updated",
		"prof_id":          profID,
		"updatedProfessor": updatedProfessor,
		"updatedUsers":     updatedUsers,
	})
}
