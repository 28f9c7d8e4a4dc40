package api

import (
	"errors"                         // Error inspection
	"landestate/internal/domain"     // Importing domain models
	"landestate/internal/middleware" // Authenticated principal
	"landestate/internal/utils"      // Utility functions
	"net/http"                       // HTTP status codes
	"strings"                        // Type list message

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging
	"gorm.io/datatypes"            // JSON column types
	"gorm.io/gorm"                 // GORM ORM library
	"gorm.io/gorm/clause"          // Association handling
)

var errEmployeeNotManaged = errors.New("employee not managed by owner")

// checkPropertyType answers 400 unless t is one of domain.PropertyTypes
func checkPropertyType(c *gin.Context, t string) bool {
	if utils.OneOf(t, domain.PropertyTypes) {
		return true
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "type must be one of: " + strings.Join(domain.PropertyTypes, ", ")})
	return false
}

// CreatePropertyRequest is the body of a new listing
type CreatePropertyRequest struct {
	Name        string   `json:"name" binding:"required,max=150"`
	Address     string   `json:"address" binding:"required,max=255"`
	City        string   `json:"city" binding:"max=100"`
	State       string   `json:"state" binding:"max=100"`
	ZipCode     string   `json:"zipCode" binding:"max=20"`
	Type        string   `json:"type" binding:"required"`
	Description string   `json:"description" binding:"max=5000"`
	Images      []string `json:"images"`
	EmployeeID  *uint    `json:"employeeId"`
}

// UpdatePropertyRequest is a partial update; absent fields are kept
type UpdatePropertyRequest struct {
	Name        *string   `json:"name" binding:"omitempty,min=1,max=150"`
	Address     *string   `json:"address" binding:"omitempty,min=1,max=255"`
	City        *string   `json:"city" binding:"omitempty,max=100"`
	State       *string   `json:"state" binding:"omitempty,max=100"`
	ZipCode     *string   `json:"zipCode" binding:"omitempty,max=20"`
	Type        *string   `json:"type"`
	Description *string   `json:"description" binding:"omitempty,max=5000"`
	Images      *[]string `json:"images"`
}

// AssignEmployeeRequest assigns an employee, or unassigns with null
type AssignEmployeeRequest struct {
	EmployeeID *uint `json:"employeeId"`
}

// currentPrincipal returns the authenticated participant or answers 401
func currentPrincipal(c *gin.Context) (domain.Participant, bool) {
	p, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	}
	return p, ok
}

// canAccessProperty reports whether p owns the property or is its assigned employee
func canAccessProperty(p domain.Participant, property *domain.Property, ownerOnly bool) bool {
	switch p.Kind {
	case domain.KindUser:
		return property.UserID == p.ID
	case domain.KindEmployee:
		return !ownerOnly && property.EmployeeID != nil && *property.EmployeeID == p.ID
	}
	return false
}

// loadProperty fetches a property by id and checks the principal may act on it.
// It writes the error response itself and returns false on any failure.
func loadProperty(c *gin.Context, db *gorm.DB, propertyID uint, ownerOnly bool) (*domain.Property, bool) {
	p, ok := currentPrincipal(c)
	if !ok {
		return nil, false
	}
	var property domain.Property
	if err := db.First(&property, propertyID).Error; err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return nil, false
		}
		serverError(c, "Failed to load property", err, logrus.Fields{"property_id": propertyID})
		return nil, false
	}
	if !canAccessProperty(p, &property, ownerOnly) {
		middleware.Logger(c).WithField("property_id", propertyID).Warn("Property access denied")
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this property"})
		return nil, false
	}
	return &property, true
}

// propertyFromParam loads the property named by :propertyId
func propertyFromParam(c *gin.Context, db *gorm.DB, ownerOnly bool) (*domain.Property, bool) {
	propertyID, ok := paramID(c, "propertyId")
	if !ok {
		return nil, false
	}
	return loadProperty(c, db, propertyID, ownerOnly)
}

// checkManagedEmployee verifies the employee exists and is managed by ownerID
func checkManagedEmployee(db *gorm.DB, employeeID, ownerID uint) error {
	var count int64
	if err := db.Model(&domain.Employee{}).Where("id = ? AND manager_id = ?", employeeID, ownerID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errEmployeeNotManaged
	}
	return nil
}

// deletePropertyRows removes properties with their maintenance records and rooms
func deletePropertyRows(tx *gorm.DB, propertyIDs ...uint) error {
	if err := tx.Where("property_id IN ?", propertyIDs).Delete(&domain.MaintenanceRecord{}).Error; err != nil {
		return err
	}
	if err := tx.Where("property_id IN ?", propertyIDs).Delete(&domain.Room{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", propertyIDs).Delete(&domain.Property{}).Error
}

// invalidateOwner drops the owner's cached read models; failures only log
func invalidateOwner(c *gin.Context, rdb *redis.Client, ownerID uint) {
	if err := utils.InvalidateOwner(c.Request.Context(), rdb, ownerID); err != nil {
		middleware.Logger(c).WithFields(logrus.Fields{"user_id": ownerID, "error": err.Error()}).Warn("Failed to invalidate cache")
	}
}

// ListPropertiesHandler lists the landlord's properties with rooms and assigned employee
func ListPropertiesHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := paramID(c, "id")
		if !ok {
			return
		}
		ctx := c.Request.Context()
		cacheKey := utils.PropertiesCacheKey(userID)

		properties := []domain.Property{}
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &properties); err != nil {
			logrus.WithField("key", cacheKey).Warn("Cache read failed: ", err)
		} else if found {
			c.JSON(http.StatusOK, properties)
			return
		}

		if err := db.WithContext(ctx).Preload("Rooms").Preload("Employee").
			Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&properties).Error; err != nil {
			serverError(c, "Failed to load properties", err, logrus.Fields{"user_id": userID})
			return
		}
		if err := utils.SetCache(ctx, rdb, cacheKey, properties, utils.CacheTTL); err != nil {
			logrus.WithField("key", cacheKey).Warn("Cache write failed: ", err)
		}
		c.JSON(http.StatusOK, properties)
	}
}

// CreatePropertyHandler adds a property owned by the landlord
func CreatePropertyHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req CreatePropertyRequest
		if !bindJSON(c, &req) || !checkPropertyType(c, req.Type) {
			return
		}
		if msg := utils.ValidateImages(req.Images); msg != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}
		if req.EmployeeID != nil {
			if err := checkManagedEmployee(db, *req.EmployeeID, userID); err != nil {
				if errors.Is(err, errEmployeeNotManaged) {
					c.JSON(http.StatusBadRequest, gin.H{"error": "Employee not found or not managed by you"})
					return
				}
				serverError(c, "Failed to create property", err, logrus.Fields{"user_id": userID})
				return
			}
		}

		property := domain.Property{
			UserID:      userID,
			EmployeeID:  req.EmployeeID,
			Name:        utils.Sanitize(req.Name),
			Address:     utils.Sanitize(req.Address),
			City:        utils.Sanitize(req.City),
			State:       utils.Sanitize(req.State),
			ZipCode:     utils.Sanitize(req.ZipCode),
			Type:        req.Type,
			Description: utils.Sanitize(req.Description),
			Images:      datatypes.JSONSlice[string](req.Images),
		}
		if err := db.Create(&property).Error; err != nil {
			serverError(c, "Failed to create property", err, logrus.Fields{"user_id": userID})
			return
		}
		invalidateOwner(c, rdb, userID)
		logrus.WithFields(logrus.Fields{"user_id": userID, "property_id": property.ID}).Info("Property created")
		c.JSON(http.StatusCreated, property)
	}
}

// GetPropertyHandler returns one property with rooms and maintenance records
func GetPropertyHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		property, ok := propertyFromParam(c, db, false)
		if !ok {
			return
		}
		var full domain.Property
		if err := db.Preload("Rooms").Preload("MaintenanceRecords").Preload("Employee").
			First(&full, property.ID).Error; err != nil {
			serverError(c, "Failed to load property", err, logrus.Fields{"property_id": property.ID})
			return
		}
		c.JSON(http.StatusOK, full)
	}
}

// UpdatePropertyHandler applies a partial update; owner only
func UpdatePropertyHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdatePropertyRequest
		if !bindJSON(c, &req) {
			return
		}
		if req.Type != nil && !checkPropertyType(c, *req.Type) {
			return
		}
		property, ok := propertyFromParam(c, db, true)
		if !ok {
			return
		}
		if req.Images != nil {
			if msg := utils.ValidateImages(*req.Images); msg != "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": msg})
				return
			}
			property.Images = datatypes.JSONSlice[string](*req.Images)
		}
		setSanitized(&property.Name, req.Name)
		setSanitized(&property.Address, req.Address)
		setSanitized(&property.City, req.City)
		setSanitized(&property.State, req.State)
		setSanitized(&property.ZipCode, req.ZipCode)
		setSanitized(&property.Description, req.Description)
		if req.Type != nil {
			property.Type = *req.Type
		}

		if err := db.Omit(clause.Associations).Save(property).Error; err != nil {
			serverError(c, "Failed to update property", err, logrus.Fields{"property_id": property.ID})
			return
		}
		invalidateOwner(c, rdb, property.UserID)
		c.JSON(http.StatusOK, property)
	}
}

// DeletePropertyHandler removes a property with its rooms and maintenance records; owner only
func DeletePropertyHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		property, ok := propertyFromParam(c, db, true)
		if !ok {
			return
		}
		err := db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			return deletePropertyRows(tx, property.ID)
		})
		if err != nil {
			serverError(c, "Failed to delete property", err, logrus.Fields{"property_id": property.ID})
			return
		}
		invalidateOwner(c, rdb, property.UserID)
		c.JSON(http.StatusOK, gin.H{"message": "Property deleted"})
	}
}

// AssignEmployeeHandler sets or clears the property's managing employee; owner only
func AssignEmployeeHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AssignEmployeeRequest
		if !bindJSON(c, &req) {
			return
		}
		property, ok := propertyFromParam(c, db, true)
		if !ok {
			return
		}
		if req.EmployeeID != nil {
			if err := checkManagedEmployee(db, *req.EmployeeID, property.UserID); err != nil {
				if errors.Is(err, errEmployeeNotManaged) {
					c.JSON(http.StatusBadRequest, gin.H{"error": "Employee not found or not managed by you"})
					return
				}
				serverError(c, "Failed to assign employee", err, logrus.Fields{"property_id": property.ID})
				return
			}
		}
		if err := db.Model(property).Update("employee_id", req.EmployeeID).Error; err != nil {
			serverError(c, "Failed to assign employee", err, logrus.Fields{"property_id": property.ID})
			return
		}
		var updated domain.Property
		if err := db.Preload("Employee").First(&updated, property.ID).Error; err != nil {
			serverError(c, "Failed to load property", err, logrus.Fields{"property_id": property.ID})
			return
		}
		invalidateOwner(c, rdb, property.UserID)
		c.JSON(http.StatusOK, updated)
	}
}

func setSanitized(dst *string, src *string) {
	if src != nil {
		*dst = utils.Sanitize(*src)
	}
}
