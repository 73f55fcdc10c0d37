package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"
)

// DemoUser is returned by /api/me for tokens that carry no claims
var DemoUser = UserDetail{
	ID:    "u_1",
	Email: "demo@starlab.dev",
	Name:  "Star Demo",
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"max=100"`
}

// LoginResponse represents a login response
type LoginResponse struct {
	Token string      `json:"token"`
	User  *UserDetail `json:"user"`
}

// UserDetail represents user information returned in responses
type UserDetail struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// @Summary Demo login
// @Description Issues a signed demo token for any well-formed email
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login request"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} map[string]interface{}
// @Router /api/login [post]
func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	if err := s.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": validationMessage(err)})
		return
	}

	user := UserDetail{
		ID:    "u_" + strings.ToLower(ulid.Make().String()),
		Email: req.Email,
		Name:  req.Name,
	}
	if strings.EqualFold(req.Email, DemoUser.Email) {
		user.ID = DemoUser.ID
		if user.Name == "" {
			user.Name = DemoUser.Name
		}
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Name)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to issue token")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to issue token"})
		return
	}

	s.metrics.Logins.Inc()
	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("Issued demo token")

	c.JSON(http.StatusOK, LoginResponse{
		Token: token,
		User:  &user,
	})
}

// @Summary Get current user
// @Tags auth
// @Produce json
// @Success 200 {object} UserDetail
// @Failure 401 {object} map[string]interface{}
// @Router /api/me [get]
func (s *Server) me(c *gin.Context) {
	claims, ok := GetClaims(c)
	if !ok {
		c.JSON(http.StatusOK, DemoUser)
		return
	}

	c.JSON(http.StatusOK, UserDetail{
		ID:    claims.UserID,
		Email: claims.Email,
		Name:  claims.Name,
	})
}

// validationMessage renders the first failed constraint
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request"
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
