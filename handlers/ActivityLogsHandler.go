package handlers

import (
	"database/sql"
	"math"
	"net/http"
	"strconv"
	"strings"

	"fabtrack/models"

	"github.com/gin-gonic/gin"
)

// Helper to fetch session details
func GetSessionDetails(db *sql.DB, sessionID string) (models.Session, string, error) {
	var session models.Session
	var userName string

	query := `
        SELECT s.user_id, CONCAT(u.first_name, ' ', u.last_name) AS user_name, s.host_name, s.ip_address
        FROM session s
        JOIN users u ON s.user_id = u.id
        WHERE s.session_id = $1`

	err := db.QueryRow(query, sessionID).Scan(
		&session.UserID,
		&userName,
		&session.HostName,
		&session.IPAddress,
	)
	if err != nil {
		return models.Session{}, "", err
	}
	return session, userName, nil
}

// Helper to save activity logs
func SaveActivityLog(db *sql.DB, log models.ActivityLog) error {
	query := `
    INSERT INTO activity_logs (
        created_at, user_name, host_name, event_context, ip_address,
        description, event_name, project_id
    ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := db.Exec(query,
		log.CreatedAt, log.UserName, log.HostName, log.EventContext, log.IPAddress,
		log.Description, log.EventName, log.ProjectID,
	)
	return err
}

// GetActivityLogsHandler godoc
// @Summary      Get activity logs
// @Tags         activity-logs
// @Param        page   query  int     false  "Page"
// @Param        limit  query  int     false  "Limit"
// @Param        event  query  string  false  "Filter by event name"
// @Success      200    {object}  object
// @Router       /api/logs [get]
func GetActivityLogsHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		pageStr := c.DefaultQuery("page", "1")
		limitStr := c.DefaultQuery("limit", "10")

		page, err := strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			page = 1
		}

		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			limit = 10
		}

		offset := (page - 1) * limit

		conditions := []string{}
		args := []interface{}{}

		if event := strings.TrimSpace(c.Query("event")); event != "" {
			args = append(args, event)
			conditions = append(conditions, "event_name = $"+strconv.Itoa(len(args)))
		}
		if projectStr := strings.TrimSpace(c.Query("project_id")); projectStr != "" {
			projectID, convErr := strconv.Atoi(projectStr)
			if convErr != nil {
				c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid project_id"})
				return
			}
			args = append(args, projectID)
			conditions = append(conditions, "project_id = $"+strconv.Itoa(len(args)))
		}

		where := ""
		if len(conditions) > 0 {
			where = " WHERE " + strings.Join(conditions, " AND ")
		}

		var totalRecords int
		if err := db.QueryRow("SELECT COUNT(*) FROM activity_logs"+where, args...).Scan(&totalRecords); err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Error counting logs"})
			return
		}

		args = append(args, limit, offset)
		query := `
            SELECT id, created_at, user_name, host_name, event_context, ip_address,
                   description, event_name, project_id
            FROM activity_logs` + where + `
            ORDER BY created_at DESC
            LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

		rows, err := db.Query(query, args...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Error fetching logs"})
			return
		}
		defer rows.Close()

		logs := []models.ActivityLog{}
		for rows.Next() {
			var log models.ActivityLog
			if err := rows.Scan(
				&log.ID, &log.CreatedAt, &log.UserName, &log.HostName, &log.EventContext,
				&log.IPAddress, &log.Description, &log.EventName, &log.ProjectID,
			); err != nil {
				c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Error scanning logs"})
				return
			}
			logs = append(logs, log)
		}

		totalPages := int(math.Ceil(float64(totalRecords) / float64(limit)))

		c.JSON(http.StatusOK, gin.H{
			"logs":          logs,
			"total_records": totalRecords,
			"total_pages":   totalPages,
			"current_page":  page,
		})
	}
}
