package api

import (
	"landestate/internal/domain" // Importing domain models
	"landestate/internal/utils"  // Utility functions
	"net/http"                   // HTTP status codes
	"time"                       // Rent due dates

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging
	"gorm.io/gorm"                 // GORM ORM library
)

// CreateRoomRequest is the body of a new room
type CreateRoomRequest struct {
	RoomNumber    string     `json:"roomNumber" binding:"required,max=32"`
	Type          string     `json:"type" binding:"max=50"`
	Size          float64    `json:"size" binding:"gte=0"`
	Rent          float64    `json:"rent" binding:"gte=0"`
	Status        string     `json:"status" binding:"omitempty,oneof=vacant occupied maintenance"`
	Tenant        *string    `json:"tenant" binding:"omitempty,max=100"`
	TenantContact *string    `json:"tenantContact" binding:"omitempty,max=100"`
	RentDueDate   *time.Time `json:"rentDueDate"`
}

// UpdateRoomRequest is a partial update; a switch to vacant clears the tenant
type UpdateRoomRequest struct {
	RoomNumber    *string    `json:"roomNumber" binding:"omitempty,min=1,max=32"`
	Type          *string    `json:"type" binding:"omitempty,max=50"`
	Size          *float64   `json:"size" binding:"omitempty,gte=0"`
	Rent          *float64   `json:"rent" binding:"omitempty,gte=0"`
	Status        *string    `json:"status" binding:"omitempty,oneof=vacant occupied maintenance"`
	Tenant        *string    `json:"tenant" binding:"omitempty,max=100"`
	TenantContact *string    `json:"tenantContact" binding:"omitempty,max=100"`
	RentDueDate   *time.Time `json:"rentDueDate"`
}

// sanitizedPtr sanitizes an optional string, mapping blank to nil
func sanitizedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := utils.Sanitize(*s)
	if v == "" {
		return nil
	}
	return &v
}

// ListRoomsHandler lists the rooms of a property
func ListRoomsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		property, ok := propertyFromParam(c, db, false)
		if !ok {
			return
		}
		rooms := []domain.Room{}
		if err := db.Where("property_id = ?", property.ID).Order("room_number").Find(&rooms).Error; err != nil {
			serverError(c, "Failed to load rooms", err, logrus.Fields{"property_id": property.ID})
			return
		}
		c.JSON(http.StatusOK, rooms)
	}
}

// CreateRoomHandler adds a room to a property
func CreateRoomHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateRoomRequest
		if !bindJSON(c, &req) {
			return
		}
		property, ok := propertyFromParam(c, db, false)
		if !ok {
			return
		}
		room := domain.Room{
			PropertyID:    property.ID,
			RoomNumber:    utils.Sanitize(req.RoomNumber),
			Type:          utils.Sanitize(req.Type),
			Size:          req.Size,
			Rent:          req.Rent,
			Status:        req.Status,
			Tenant:        sanitizedPtr(req.Tenant),
			TenantContact: sanitizedPtr(req.TenantContact),
			RentDueDate:   req.RentDueDate,
		}
		if err := db.Create(&room).Error; err != nil {
			serverError(c, "Failed to create room", err, logrus.Fields{"property_id": property.ID})
			return
		}
		invalidateOwner(c, rdb, property.UserID)
		c.JSON(http.StatusCreated, room)
	}
}

// loadRoom fetches the room named by :roomId and checks access through its property
func loadRoom(c *gin.Context, db *gorm.DB) (*domain.Room, *domain.Property, bool) {
	roomID, ok := paramID(c, "roomId")
	if !ok {
		return nil, nil, false
	}
	var room domain.Room
	if err := db.First(&room, roomID).Error; err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
			return nil, nil, false
		}
		serverError(c, "Failed to load room", err, logrus.Fields{"room_id": roomID})
		return nil, nil, false
	}
	property, ok := loadProperty(c, db, room.PropertyID, false)
	if !ok {
		return nil, nil, false
	}
	return &room, property, true
}

// UpdateRoomHandler applies a partial update to a room
func UpdateRoomHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateRoomRequest
		if !bindJSON(c, &req) {
			return
		}
		room, property, ok := loadRoom(c, db)
		if !ok {
			return
		}
		if req.RoomNumber != nil {
			room.RoomNumber = utils.Sanitize(*req.RoomNumber)
		}
		if req.Type != nil {
			room.Type = utils.Sanitize(*req.Type)
		}
		if req.Size != nil {
			room.Size = *req.Size
		}
		if req.Rent != nil {
			room.Rent = *req.Rent
		}
		if req.Status != nil {
			room.Status = *req.Status
		}
		if req.Tenant != nil {
			room.Tenant = sanitizedPtr(req.Tenant)
		}
		if req.TenantContact != nil {
			room.TenantContact = sanitizedPtr(req.TenantContact)
		}
		if req.RentDueDate != nil {
			room.RentDueDate = req.RentDueDate
		}
		// BeforeSave clears tenant data when the room ends up vacant
		if err := db.Save(room).Error; err != nil {
			serverError(c, "Failed to update room", err, logrus.Fields{"room_id": room.ID})
			return
		}
		invalidateOwner(c, rdb, property.UserID)
		c.JSON(http.StatusOK, room)
	}
}

// DeleteRoomHandler removes a room; maintenance records keep their history without it
func DeleteRoomHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		room, property, ok := loadRoom(c, db)
		if !ok {
			return
		}
		err := db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&domain.MaintenanceRecord{}).Where("room_id = ?", room.ID).
				Update("room_id", nil).Error; err != nil {
				return err
			}
			return tx.Delete(room).Error
		})
		if err != nil {
			serverError(c, "Failed to delete room", err, logrus.Fields{"room_id": room.ID})
			return
		}
		invalidateOwner(c, rdb, property.UserID)
		c.JSON(http.StatusOK, gin.H{"message": "Room deleted"})
	}
}
