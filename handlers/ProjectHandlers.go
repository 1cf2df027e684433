package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"fabtrack/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateProject godoc
// @Summary      Create a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        project  body  models.ProjectRequest  true  "Project"
// @Success      201  {object}  models.Project
// @Failure      400  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /api/projects [post]
func CreateProject(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ProjectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body", Details: err.Error()})
			return
		}

		actor, err := actingUserFromSession(c, db)
		if err != nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid session"})
			return
		}

		erectable := true
		if req.Erectable != nil {
			erectable = *req.Erectable
		}

		now := time.Now()
		project := models.Project{
			ProjectNumber:      req.ProjectNumber,
			Name:               req.Name,
			ClientName:         req.ClientName,
			StructureType:      req.StructureType,
			Galvanized:         req.Galvanized,
			Erectable:          erectable,
			ContractualTonnage: req.ContractualTonnage,
			CreatedBy:          actor.Name,
			CreatedAt:          now,
			UpdatedAt:          now,
		}

		if err := gdb.WithContext(c.Request.Context()).Create(&project).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusConflict, models.ErrorResponse{Error: "Project number already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create project"})
			return
		}

		_ = SaveActivityLog(db, models.ActivityLog{
			CreatedAt:    time.Now(),
			UserName:     actor.Name,
			HostName:     actor.Host,
			EventContext: "Projects",
			IPAddress:    actor.IP,
			Description:  fmt.Sprintf("Created project %s (%s)", project.ProjectNumber, project.Name),
			EventName:    "project_created",
			ProjectID:    int(project.ID),
		})

		c.JSON(http.StatusCreated, project)
	}
}

// GetProjects godoc
// @Summary      List projects
// @Tags         projects
// @Produce      json
// @Success      200  {array}  models.Project
// @Router       /api/projects [get]
func GetProjects(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var projects []models.Project
		if err := gdb.WithContext(c.Request.Context()).Order("project_number ASC").Find(&projects).Error; err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch projects"})
			return
		}
		c.JSON(http.StatusOK, projects)
	}
}

// GetProject godoc
// @Summary      Get one project
// @Tags         projects
// @Produce      json
// @Param        id  path  int  true  "Project ID"
// @Success      200  {object}  models.Project
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/projects/{id} [get]
func GetProject(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid project ID"})
			return
		}

		var project models.Project
		if err := gdb.WithContext(c.Request.Context()).First(&project, uint(id)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Project not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch project"})
			return
		}

		c.JSON(http.StatusOK, project)
	}
}

// CreateBuilding godoc
// @Summary      Create a building under a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        id        path  int                     true  "Project ID"
// @Param        building  body  models.BuildingRequest  true  "Building"
// @Success      201  {object}  models.Building
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/projects/{id}/buildings [post]
func CreateBuilding(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid project ID"})
			return
		}

		var req models.BuildingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body", Details: err.Error()})
			return
		}

		var project models.Project
		if err := gdb.WithContext(c.Request.Context()).First(&project, uint(projectID)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Project not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch project"})
			return
		}

		actor, err := actingUserFromSession(c, db)
		if err != nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid session"})
			return
		}

		now := time.Now()
		building := models.Building{
			ProjectID:   project.ID,
			Name:        req.Name,
			Designation: req.Designation,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := gdb.WithContext(c.Request.Context()).Create(&building).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusConflict, models.ErrorResponse{Error: "Building designation already exists in this project"})
				return
			}
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create building"})
			return
		}

		_ = SaveActivityLog(db, models.ActivityLog{
			CreatedAt:    time.Now(),
			UserName:     actor.Name,
			HostName:     actor.Host,
			EventContext: "Projects",
			IPAddress:    actor.IP,
			Description:  fmt.Sprintf("Created building %s under project %s", building.Designation, project.ProjectNumber),
			EventName:    "building_created",
			ProjectID:    int(project.ID),
		})

		c.JSON(http.StatusCreated, building)
	}
}

// GetBuildings godoc
// @Summary      List buildings of a project
// @Tags         projects
// @Produce      json
// @Param        id  path  int  true  "Project ID"
// @Success      200  {array}  models.Building
// @Router       /api/projects/{id}/buildings [get]
func GetBuildings(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid project ID"})
			return
		}

		var buildings []models.Building
		if err := gdb.WithContext(c.Request.Context()).
			Where("project_id = ?", uint(projectID)).
			Order("designation ASC").
			Find(&buildings).Error; err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch buildings"})
			return
		}

		c.JSON(http.StatusOK, buildings)
	}
}
