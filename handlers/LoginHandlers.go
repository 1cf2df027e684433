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
	"github.com/golang-jwt/jwt/v5"
)

const maxSessions = 3

// LoginHandler handles user authentication
// @Summary Login user
// @Description Authenticate user and return session token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login credentials"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/login [post]
func LoginHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var loginData models.LoginRequest
		if err := c.ShouldBindJSON(&loginData); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
			return
		}

		user, err := storage.GetUserByEmail(db, loginData.Email)
		if err != nil || !utils.ValidatePassword(user.Password, loginData.Password) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}

		if user.Suspended {
			c.JSON(http.StatusForbidden, gin.H{"error": "Account is suspended"})
			return
		}

		// Device limit check runs before any token is generated. No device is
		// logged out automatically; the user must free a slot themselves.
		sessionCount, err := storage.GetUserSessionCount(db, user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check active sessions", "details": err.Error()})
			return
		}
		if sessionCount >= maxSessions {
			devices, err := storage.GetActiveDevices(db, user.ID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get active devices", "details": err.Error()})
				return
			}
			c.JSON(http.StatusConflict, gin.H{
				"error":           "Maximum device limit reached",
				"message":         "You have reached the maximum limit of 3 active devices. Please logout from one device to continue.",
				"max_devices":     maxSessions,
				"current_devices": sessionCount,
				"active_devices":  devices,
				"requires_logout": true,
			})
			return
		}

		newToken, err := utils.GenerateJWT(user.Email)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}

		refreshToken, err := utils.GenerateRefreshToken(user.Email, newToken)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate refresh token"})
			return
		}

		// Access token expires in 15 minutes, refresh token in 15 days
		session := &models.Session{
			UserID:                user.ID,
			SessionID:             newToken,
			HostName:              user.Email,
			IPAddress:             loginData.IP,
			Timestamp:             time.Now(),
			ExpiresAt:             time.Now().Add(15 * time.Minute),
			RefreshToken:          refreshToken,
			RefreshTokenExpiresAt: time.Now().Add(15 * 24 * time.Hour),
		}

		if err := storage.SaveSession(db, session, true); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session", "details": err.Error()})
			return
		}

		var roleName string
		err = db.QueryRow("SELECT r.role_name FROM users u JOIN roles r ON u.role_id = r.role_id WHERE u.id = $1", user.ID).Scan(&roleName)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user role", "details": err.Error()})
			return
		}

		_ = SaveActivityLog(db, models.ActivityLog{
			EventContext: "Login",
			EventName:    "user_login",
			Description:  "User logged in",
			UserName:     user.FirstName + " " + user.LastName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
		})

		c.JSON(http.StatusOK, models.LoginResponse{
			Message:      "Login successful",
			AccessToken:  newToken,
			RefreshToken: refreshToken,
			Role:         roleName,
			ExpiresIn:    900,
		})
	}
}

// RefreshTokenHandler exchanges a refresh token for a new access token
// @Summary Refresh access token
// @Description Issue a new access token for the session bound to the refresh token
// @Tags Authentication
// @Accept json
// @Produce json
// @Success 200 {object} models.LoginResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/refresh [post]
func RefreshTokenHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			RefreshToken string `json:"refresh_token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
			return
		}

		parsedToken, err := utils.ValidateJWT(body.RefreshToken)
		if err != nil || !parsedToken.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired refresh token"})
			return
		}

		claims, ok := parsedToken.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}
		email, _ := claims["email"].(string)
		sessionID, _ := claims["sessionId"].(string)
		if email == "" || sessionID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}

		// The refresh token must match the one stored for its session
		stored, err := storage.GetRefreshTokenBySession(db, sessionID)
		if err != nil || stored != body.RefreshToken {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token not recognized"})
			return
		}

		newToken, err := utils.GenerateJWT(email)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}

		// Rotate the session ID to the new access token
		_, err = db.Exec(`
			UPDATE session SET session_id = $1, expires_at = $2
			WHERE session_id = $3`,
			newToken, time.Now().Add(15*time.Minute), sessionID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rotate session"})
			return
		}

		newRefresh, err := utils.GenerateRefreshToken(email, newToken)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate refresh token"})
			return
		}
		_, err = db.Exec(`
			UPDATE session SET refresh_token = $1, refresh_token_expires_at = $2
			WHERE session_id = $3`,
			newRefresh, time.Now().Add(15*24*time.Hour), newToken)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store refresh token"})
			return
		}

		c.JSON(http.StatusOK, models.LoginResponse{
			Message:      "Token refreshed",
			AccessToken:  newToken,
			RefreshToken: newRefresh,
			ExpiresIn:    900,
		})
	}
}

// LogoutHandler deletes the calling session
// @Summary Logout
// @Description Delete the session identified by the Authorization header
// @Tags Authentication
// @Produce json
// @Param Authorization header string true "Session token"
// @Success 200 {object} object
// @Failure 401 {object} models.ErrorResponse
// @Router /api/logout [post]
func LogoutHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := strings.TrimSpace(c.GetHeader("Authorization"))
		if sessionID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Session ID required"})
			return
		}

		user, err := storage.GetUserBySessionID(db, sessionID)
		if err != nil || user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		if err := storage.DeleteSessionByID(db, sessionID, user.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete session"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}

// GetActiveDevicesHandler lists the caller's active sessions
// @Summary List active devices
// @Tags Authentication
// @Produce json
// @Param Authorization header string true "Session token"
// @Success 200 {object} object
// @Failure 401 {object} models.ErrorResponse
// @Router /api/devices [get]
func GetActiveDevicesHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := strings.TrimSpace(c.GetHeader("Authorization"))
		user, err := storage.GetUserBySessionID(db, sessionID)
		if err != nil || user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		devices, err := storage.GetActiveDevices(db, user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get active devices"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"devices":     devices,
			"max_devices": maxSessions,
		})
	}
}

// LogoutDeviceHandler deletes another session of the same user
// @Summary Logout a specific device
// @Tags Authentication
// @Produce json
// @Param Authorization header string true  "Session token"
// @Param session_id    path   string true  "Session ID of the device to log out"
// @Success 200 {object} object
// @Failure 401 {object} models.ErrorResponse
// @Router /api/devices/{session_id} [delete]
func LogoutDeviceHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := strings.TrimSpace(c.GetHeader("Authorization"))
		user, err := storage.GetUserBySessionID(db, sessionID)
		if err != nil || user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		target := c.Param("session_id")
		if err := storage.DeleteSessionByID(db, target, user.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete session"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Device logged out"})
	}
}
