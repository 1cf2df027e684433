package handlers

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"fabtrack/models"
	"fabtrack/storage"
	"fabtrack/utils"

	"github.com/gin-gonic/gin"
)

// CreateUser godoc
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        user  body  object  true  "User"
// @Success      201  {object}  models.User
// @Failure      400  {object}  models.ErrorResponse
// @Router       /api/users [post]
func CreateUser(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			EmployeeId string `json:"employee_id"`
			Email      string `json:"email" binding:"required"`
			Password   string `json:"password" binding:"required"`
			FirstName  string `json:"first_name" binding:"required"`
			LastName   string `json:"last_name" binding:"required"`
			RoleID     int    `json:"role_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body", Details: err.Error()})
			return
		}

		hashed, err := utils.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to hash password"})
			return
		}

		var userID int
		now := time.Now()
		err = db.QueryRow(`
			INSERT INTO users (employee_id, email, password, first_name, last_name, role_id, suspended, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, false, $7, $7)
			RETURNING id`,
			req.EmployeeId, strings.ToLower(req.Email), hashed, req.FirstName, req.LastName, req.RoleID, now,
		).Scan(&userID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Failed to create user", Details: err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"id":       userID,
			"email":    strings.ToLower(req.Email),
			"message":  "User created",
			"role_id":  req.RoleID,
			"employee": req.EmployeeId,
		})
	}
}

// GetCurrentUser godoc
// @Summary      Get the user behind the current session
// @Tags         users
// @Produce      json
// @Param        Authorization  header  string  true  "Session token"
// @Success      200  {object}  models.User
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/users/me [get]
func GetCurrentUser(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := strings.TrimSpace(c.GetHeader("Authorization"))
		user, err := storage.GetUserBySessionID(db, sessionID)
		if err != nil || user == nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid session"})
			return
		}
		c.JSON(http.StatusOK, user)
	}
}
