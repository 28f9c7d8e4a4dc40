package api

import (
	"landestate/internal/domain" // Importing domain models
	"landestate/internal/utils"  // Utility functions
	"net/http"                   // HTTP status codes
	"time"                       // Scheduling dates

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging
	"gorm.io/gorm"                 // GORM ORM library
	"gorm.io/gorm/clause"          // Association handling
)

// CreateMaintenanceRequest is the body of a new maintenance record
type CreateMaintenanceRequest struct {
	Title         string     `json:"title" binding:"required,max=150"`
	Description   string     `json:"description" binding:"max=5000"`
	Status        string     `json:"status" binding:"omitempty,oneof=pending in-progress completed cancelled"`
	Priority      string     `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	Cost          float64    `json:"cost" binding:"gte=0"`
	ScheduledDate *time.Time `json:"scheduledDate"`
	RoomID        *uint      `json:"roomId"`
}

// UpdateMaintenanceRequest is a partial update of a maintenance record
type UpdateMaintenanceRequest struct {
	Title         *string    `json:"title" binding:"omitempty,min=1,max=150"`
	Description   *string    `json:"description" binding:"omitempty,max=5000"`
	Status        *string    `json:"status" binding:"omitempty,oneof=pending in-progress completed cancelled"`
	Priority      *string    `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	Cost          *float64   `json:"cost" binding:"omitempty,gte=0"`
	ScheduledDate *time.Time `json:"scheduledDate"`
	RoomID        *uint      `json:"roomId"`
}

// roomInProperty reports whether the room exists and belongs to the property
func roomInProperty(db *gorm.DB, roomID, propertyID uint) (bool, error) {
	var count int64
	err := db.Model(&domain.Room{}).Where("id = ? AND property_id = ?", roomID, propertyID).Count(&count).Error
	return count > 0, err
}

// ListMaintenanceHandler lists a property's maintenance records, optionally filtered by status
func ListMaintenanceHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		property, ok := propertyFromParam(c, db, false)
		if !ok {
			return
		}
		query := db.Preload("Room").Where("property_id = ?", property.ID)
		if status := c.Query("status"); status != "" {
			if !utils.OneOf(status, domain.MaintenanceStatuses) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
				return
			}
			query = query.Where("status = ?", status)
		}
		records := []domain.MaintenanceRecord{}
		if err := query.Order("created_at DESC, id DESC").Find(&records).Error; err != nil {
			serverError(c, "Failed to load maintenance records", err, logrus.Fields{"property_id": property.ID})
			return
		}
		c.JSON(http.StatusOK, records)
	}
}

// CreateMaintenanceHandler adds a maintenance record to a property
func CreateMaintenanceHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateMaintenanceRequest
		if !bindJSON(c, &req) {
			return
		}
		property, ok := propertyFromParam(c, db, false)
		if !ok {
			return
		}
		if req.RoomID != nil && !checkRoom(c, db, *req.RoomID, property.ID) {
			return
		}
		record := domain.MaintenanceRecord{
			PropertyID:    property.ID,
			RoomID:        req.RoomID,
			Title:         utils.Sanitize(req.Title),
			Description:   utils.Sanitize(req.Description),
			Status:        req.Status,
			Priority:      req.Priority,
			Cost:          req.Cost,
			ScheduledDate: req.ScheduledDate,
		}
		if err := db.Create(&record).Error; err != nil {
			serverError(c, "Failed to create maintenance record", err, logrus.Fields{"property_id": property.ID})
			return
		}
		invalidateOwner(c, rdb, property.UserID)
		c.JSON(http.StatusCreated, record)
	}
}

// UpdateMaintenanceHandler applies a partial update; completion stamps completedDate
func UpdateMaintenanceHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateMaintenanceRequest
		if !bindJSON(c, &req) {
			return
		}
		record, property, ok := loadMaintenance(c, db)
		if !ok {
			return
		}
		if req.RoomID != nil {
			if !checkRoom(c, db, *req.RoomID, property.ID) {
				return
			}
			record.RoomID = req.RoomID
		}
		if req.Title != nil {
			record.Title = utils.Sanitize(*req.Title)
		}
		if req.Description != nil {
			record.Description = utils.Sanitize(*req.Description)
		}
		if req.Status != nil {
			record.Status = *req.Status
		}
		if req.Priority != nil {
			record.Priority = *req.Priority
		}
		if req.Cost != nil {
			record.Cost = *req.Cost
		}
		if req.ScheduledDate != nil {
			record.ScheduledDate = req.ScheduledDate
		}
		if err := db.Omit(clause.Associations).Save(record).Error; err != nil {
			serverError(c, "Failed to update maintenance record", err, logrus.Fields{"record_id": record.ID})
			return
		}
		invalidateOwner(c, rdb, property.UserID)
		c.JSON(http.StatusOK, record)
	}
}

// DeleteMaintenanceHandler removes a maintenance record
func DeleteMaintenanceHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		record, property, ok := loadMaintenance(c, db)
		if !ok {
			return
		}
		if err := db.Delete(record).Error; err != nil {
			serverError(c, "Failed to delete maintenance record", err, logrus.Fields{"record_id": record.ID})
			return
		}
		invalidateOwner(c, rdb, property.UserID)
		c.JSON(http.StatusOK, gin.H{"message": "Maintenance record deleted"})
	}
}

func loadMaintenance(c *gin.Context, db *gorm.DB) (*domain.MaintenanceRecord, *domain.Property, bool) {
	recordID, ok := paramID(c, "recordId")
	if !ok {
		return nil, nil, false
	}
	var record domain.MaintenanceRecord
	if err := db.First(&record, recordID).Error; err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Maintenance record not found"})
			return nil, nil, false
		}
		serverError(c, "Failed to load maintenance record", err, logrus.Fields{"record_id": recordID})
		return nil, nil, false
	}
	property, ok := loadProperty(c, db, record.PropertyID, false)
	if !ok {
		return nil, nil, false
	}
	return &record, property, true
}

func checkRoom(c *gin.Context, db *gorm.DB, roomID, propertyID uint) bool {
	ok, err := roomInProperty(db, roomID, propertyID)
	if err != nil {
		serverError(c, "Failed to load room", err, logrus.Fields{"room_id": roomID})
		return false
	}
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Room does not belong to this property"})
		return false
	}
	return true
}
