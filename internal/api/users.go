package api

import (
	"landestate/internal/domain"    // Importing domain models
	"landestate/internal/messaging" // Conversations and messages
	"landestate/internal/utils"     // Utility functions
	"net/http"                      // HTTP status codes

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging
	"gorm.io/gorm"                 // GORM ORM library
	"gorm.io/gorm/clause"          // Association handling
)

// UpdateUserRequest is a partial profile update; absent fields are kept
type UpdateUserRequest struct {
	Name         *string `json:"name" binding:"omitempty,personname"`
	Email        *string `json:"email" binding:"omitempty,email,max=255"`
	Phone        *string `json:"phone" binding:"omitempty,phone"`
	Address      *string `json:"address" binding:"omitempty,max=255"`
	ProfileImage *string `json:"profileImage" binding:"omitempty,url"`
	Password     *string `json:"password" binding:"omitempty,password"`
}

// DashboardStats is the landlord overview
type DashboardStats struct {
	Properties          int64            `json:"properties"`          // Owned properties
	Rooms               int64            `json:"rooms"`               // Rooms across all properties
	RoomsByStatus       map[string]int64 `json:"roomsByStatus"`       // Room count per status
	OccupancyRate       float64          `json:"occupancyRate"`       // Occupied rooms in percent
	MonthlyRent         float64          `json:"monthlyRent"`         // Rent of occupied rooms
	MaintenanceByStatus map[string]int64 `json:"maintenanceByStatus"` // Record count per status
	OpenMaintenanceCost float64          `json:"openMaintenanceCost"` // Cost of pending and in-progress work
	Employees           int64            `json:"employees"`           // Managed employees
	UnreadMessages      int64            `json:"unreadMessages"`      // Never cached
}

// GetUserHandler returns the authenticated landlord's profile
func GetUserHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := paramID(c, "id")
		if !ok {
			return
		}
		var user domain.User
		if err := db.First(&user, userID).Error; err != nil {
			if isNotFound(err) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			serverError(c, "Failed to load user", err, logrus.Fields{"user_id": userID})
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// UpdateUserHandler applies a partial profile update
func UpdateUserHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req UpdateUserRequest
		if !bindJSON(c, &req) {
			return
		}
		var user domain.User
		if err := db.First(&user, userID).Error; err != nil {
			if isNotFound(err) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			serverError(c, "Failed to load user", err, logrus.Fields{"user_id": userID})
			return
		}

		if req.Email != nil && *req.Email != "" {
			email := domain.NormalizeEmail(*req.Email)
			if email != user.Email {
				var count int64
				if err := db.Model(&domain.User{}).Where("email = ? AND id <> ?", email, user.ID).Count(&count).Error; err != nil {
					serverError(c, "Failed to update user", err, logrus.Fields{"user_id": userID})
					return
				}
				if count > 0 {
					c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
					return
				}
				user.Email = email
			}
		}
		if req.Name != nil && *req.Name != "" {
			user.Name = utils.Sanitize(*req.Name)
		}
		if req.Phone != nil {
			user.Phone = utils.Sanitize(*req.Phone)
		}
		if req.Address != nil {
			user.Address = utils.Sanitize(*req.Address)
		}
		if req.ProfileImage != nil {
			user.ProfileImage = *req.ProfileImage
		}
		if req.Password != nil && *req.Password != "" {
			if err := user.SetPassword(*req.Password); err != nil {
				serverError(c, "Failed to update user", err, logrus.Fields{"user_id": userID})
				return
			}
		}

		if err := db.Omit(clause.Associations).Save(&user).Error; err != nil {
			if isDuplicate(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
				return
			}
			serverError(c, "Failed to update user", err, logrus.Fields{"user_id": userID})
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// DeleteUserHandler removes the landlord and everything it owns in one transaction
func DeleteUserHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := paramID(c, "id")
		if !ok {
			return
		}
		var user domain.User
		if err := db.First(&user, userID).Error; err != nil {
			if isNotFound(err) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			serverError(c, "Failed to load user", err, logrus.Fields{"user_id": userID})
			return
		}

		err := db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			var propertyIDs []uint
			if err := tx.Model(&domain.Property{}).Where("user_id = ?", user.ID).Pluck("id", &propertyIDs).Error; err != nil {
				return err
			}
			if len(propertyIDs) > 0 {
				if err := deletePropertyRows(tx, propertyIDs...); err != nil {
					return err
				}
			}

			var employees []domain.Employee
			if err := tx.Where("manager_id = ?", user.ID).Find(&employees).Error; err != nil {
				return err
			}
			for i := range employees {
				if err := messaging.DeleteParticipantData(tx, employees[i].Participant()); err != nil {
					return err
				}
			}
			if err := tx.Where("manager_id = ?", user.ID).Delete(&domain.Employee{}).Error; err != nil {
				return err
			}

			if err := messaging.DeleteParticipantData(tx, user.Participant()); err != nil {
				return err
			}
			return tx.Delete(&user).Error
		})
		if err != nil {
			serverError(c, "Failed to delete user", err, logrus.Fields{"user_id": userID})
			return
		}

		if err := utils.InvalidateOwner(c.Request.Context(), rdb, user.ID); err != nil {
			logrus.WithField("user_id", user.ID).Warn("Failed to invalidate cache: ", err)
		}
		logrus.WithField("user_id", user.ID).Info("User deleted")
		c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
	}
}

// DashboardHandler returns aggregated stats for the landlord, cached per owner
func DashboardHandler(db *gorm.DB, rdb *redis.Client, msgs *messaging.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := paramID(c, "id")
		if !ok {
			return
		}
		ctx := c.Request.Context()
		cacheKey := utils.DashboardCacheKey(userID)

		var stats DashboardStats
		found, err := utils.GetCache(ctx, rdb, cacheKey, &stats)
		if err != nil {
			logrus.WithField("key", cacheKey).Warn("Cache read failed: ", err)
		}
		if !found {
			computed, err := dashboardStats(db.WithContext(ctx), userID)
			if err != nil {
				serverError(c, "Failed to load dashboard", err, logrus.Fields{"user_id": userID})
				return
			}
			stats = *computed
			if err := utils.SetCache(ctx, rdb, cacheKey, stats, utils.CacheTTL); err != nil {
				logrus.WithField("key", cacheKey).Warn("Cache write failed: ", err)
			}
		}

		// Unread counts move with every message, so they are read live
		unread, err := msgs.UnreadCount(ctx, domain.UserParticipant(userID))
		if err != nil {
			serverError(c, "Failed to load dashboard", err, logrus.Fields{"user_id": userID})
			return
		}
		stats.UnreadMessages = unread
		c.JSON(http.StatusOK, stats)
	}
}

type statusCount struct {
	Status string
	Count  int64
}

type sumResult struct {
	Total float64
}

func dashboardStats(db *gorm.DB, userID uint) (*DashboardStats, error) {
	stats := &DashboardStats{
		RoomsByStatus:       map[string]int64{},
		MaintenanceByStatus: map[string]int64{},
	}
	for _, s := range domain.RoomStatuses {
		stats.RoomsByStatus[s] = 0
	}
	for _, s := range domain.MaintenanceStatuses {
		stats.MaintenanceByStatus[s] = 0
	}

	if err := db.Model(&domain.Property{}).Where("user_id = ?", userID).Count(&stats.Properties).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.Employee{}).Where("manager_id = ?", userID).Count(&stats.Employees).Error; err != nil {
		return nil, err
	}

	ownedRooms := func() *gorm.DB {
		return db.Model(&domain.Room{}).
			Joins("JOIN properties ON properties.id = rooms.property_id").
			Where("properties.user_id = ?", userID)
	}
	var rooms []statusCount
	if err := ownedRooms().Select("rooms.status AS status, COUNT(*) AS count").Group("rooms.status").Scan(&rooms).Error; err != nil {
		return nil, err
	}
	for _, r := range rooms {
		stats.RoomsByStatus[r.Status] = r.Count
		stats.Rooms += r.Count
	}
	if stats.Rooms > 0 {
		stats.OccupancyRate = float64(stats.RoomsByStatus[domain.RoomOccupied]) * 100 / float64(stats.Rooms)
	}
	var rent sumResult
	if err := ownedRooms().Select("COALESCE(SUM(rooms.rent), 0) AS total").
		Where("rooms.status = ?", domain.RoomOccupied).Scan(&rent).Error; err != nil {
		return nil, err
	}
	stats.MonthlyRent = rent.Total

	ownedRecords := func() *gorm.DB {
		return db.Model(&domain.MaintenanceRecord{}).
			Joins("JOIN properties ON properties.id = maintenance_records.property_id").
			Where("properties.user_id = ?", userID)
	}
	var records []statusCount
	if err := ownedRecords().Select("maintenance_records.status AS status, COUNT(*) AS count").
		Group("maintenance_records.status").Scan(&records).Error; err != nil {
		return nil, err
	}
	for _, r := range records {
		stats.MaintenanceByStatus[r.Status] = r.Count
	}
	var cost sumResult
	if err := ownedRecords().Select("COALESCE(SUM(maintenance_records.cost), 0) AS total").
		Where("maintenance_records.status IN ?", []string{domain.MaintenancePending, domain.MaintenanceInProgress}).
		Scan(&cost).Error; err != nil {
		return nil, err
	}
	stats.OpenMaintenanceCost = cost.Total
	return stats, nil
}
