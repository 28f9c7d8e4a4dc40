package api

import (
	"landestate/internal/domain"    // Importing domain models
	"landestate/internal/messaging" // Conversations and messages
	"landestate/internal/utils"     // Utility functions
	"net/http"                      // HTTP status codes
	"time"                          // Hire dates

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging
	"gorm.io/gorm"                 // GORM ORM library
	"gorm.io/gorm/clause"          // Association handling
)

// CreateEmployeeRequest is the body used by a landlord to add staff
type CreateEmployeeRequest struct {
	Name     string     `json:"name" binding:"required,personname"`     // Display name
	Email    string     `json:"email" binding:"required,email,max=255"` // Login email
	Password string     `json:"password" binding:"required,password"`   // Initial password
	Phone    string     `json:"phone" binding:"omitempty,phone"`        // Optional phone
	Position string     `json:"position" binding:"max=100"`             // Job title
	HireDate *time.Time `json:"hireDate"`                               // Defaults to today
}

// UpdateEmployeeRequest is a partial update made by the managing landlord
type UpdateEmployeeRequest struct {
	Name         *string `json:"name" binding:"omitempty,personname"`
	Email        *string `json:"email" binding:"omitempty,email,max=255"`
	Phone        *string `json:"phone" binding:"omitempty,phone"`
	Position     *string `json:"position" binding:"omitempty,max=100"`
	ProfileImage *string `json:"profileImage" binding:"omitempty,url"`
	Password     *string `json:"password" binding:"omitempty,password"`
	IsActive     *bool   `json:"isActive"`
}

// UpdateEmployeeSelfRequest is the subset an employee may change on its own account
type UpdateEmployeeSelfRequest struct {
	Name         *string `json:"name" binding:"omitempty,personname"`
	Phone        *string `json:"phone" binding:"omitempty,phone"`
	ProfileImage *string `json:"profileImage" binding:"omitempty,url"`
	Password     *string `json:"password" binding:"omitempty,password"`
}

// employeeEmailTaken reports whether another employee already uses the email
func employeeEmailTaken(db *gorm.DB, email string, exceptID uint) (bool, error) {
	var count int64
	err := db.Model(&domain.Employee{}).Where("email = ? AND id <> ?", email, exceptID).Count(&count).Error
	return count > 0, err
}

// findManagedEmployee loads an employee only when userID manages it; writes the error response otherwise
func findManagedEmployee(c *gin.Context, db *gorm.DB, userID uint) (*domain.Employee, bool) {
	employeeID, ok := paramID(c, "employeeId")
	if !ok {
		return nil, false
	}
	var employee domain.Employee
	if err := db.Where("id = ? AND manager_id = ?", employeeID, userID).First(&employee).Error; err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Employee not found"})
			return nil, false
		}
		serverError(c, "Failed to load employee", err, logrus.Fields{"employee_id": employeeID})
		return nil, false
	}
	return &employee, true
}

// ListEmployeesHandler lists the employees a landlord manages
func ListEmployeesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := paramID(c, "id")
		if !ok {
			return
		}
		employees := []domain.Employee{}
		if err := db.Where("manager_id = ?", userID).Order("name").Find(&employees).Error; err != nil {
			serverError(c, "Failed to load employees", err, logrus.Fields{"user_id": userID})
			return
		}
		c.JSON(http.StatusOK, employees)
	}
}

// CreateEmployeeHandler adds an employee managed by the landlord
func CreateEmployeeHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req CreateEmployeeRequest
		if !bindJSON(c, &req) {
			return
		}
		email := domain.NormalizeEmail(req.Email)
		taken, err := employeeEmailTaken(db, email, 0)
		if err != nil {
			serverError(c, "Failed to create employee", err, logrus.Fields{"user_id": userID})
			return
		}
		if taken {
			c.JSON(http.StatusConflict, gin.H{"error": "An employee with this email already exists"})
			return
		}
		employee := domain.Employee{
			ManagerID: userID,
			Name:      utils.Sanitize(req.Name),
			Email:     email,
			Phone:     utils.Sanitize(req.Phone),
			Position:  utils.Sanitize(req.Position),
			IsActive:  true,
		}
		if req.HireDate != nil {
			employee.HireDate = req.HireDate.UTC()
		}
		if err := employee.SetPassword(req.Password); err != nil {
			serverError(c, "Failed to create employee", err, logrus.Fields{"user_id": userID})
			return
		}
		if err := db.Create(&employee).Error; err != nil {
			if isDuplicate(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "An employee with this email already exists"})
				return
			}
			serverError(c, "Failed to create employee", err, logrus.Fields{"user_id": userID})
			return
		}
		invalidateOwner(c, rdb, userID)
		logrus.WithFields(logrus.Fields{"user_id": userID, "employee_id": employee.ID}).Info("Employee created")
		c.JSON(http.StatusCreated, employee)
	}
}

// UpdateManagedEmployeeHandler lets a landlord edit, deactivate or reset one of its employees
func UpdateManagedEmployeeHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req UpdateEmployeeRequest
		if !bindJSON(c, &req) {
			return
		}
		employee, ok := findManagedEmployee(c, db, userID)
		if !ok {
			return
		}
		if req.Email != nil && *req.Email != "" {
			email := domain.NormalizeEmail(*req.Email)
			taken, err := employeeEmailTaken(db, email, employee.ID)
			if err != nil {
				serverError(c, "Failed to update employee", err, logrus.Fields{"employee_id": employee.ID})
				return
			}
			if taken {
				c.JSON(http.StatusConflict, gin.H{"error": "An employee with this email already exists"})
				return
			}
			employee.Email = email
		}
		if req.Position != nil {
			employee.Position = utils.Sanitize(*req.Position)
		}
		if req.IsActive != nil {
			employee.IsActive = *req.IsActive
		}
		if err := applyEmployeeSelfFields(employee, req.Name, req.Phone, req.ProfileImage, req.Password); err != nil {
			serverError(c, "Failed to update employee", err, logrus.Fields{"employee_id": employee.ID})
			return
		}
		saveEmployee(c, db, rdb, employee)
	}
}

// DeleteEmployeeHandler removes an employee, unassigns its properties and drops its conversations
func DeleteEmployeeHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := paramID(c, "id")
		if !ok {
			return
		}
		employee, ok := findManagedEmployee(c, db, userID)
		if !ok {
			return
		}
		err := db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&domain.Property{}).Where("employee_id = ?", employee.ID).
				Update("employee_id", nil).Error; err != nil {
				return err
			}
			if err := messaging.DeleteParticipantData(tx, employee.Participant()); err != nil {
				return err
			}
			return tx.Delete(employee).Error
		})
		if err != nil {
			serverError(c, "Failed to delete employee", err, logrus.Fields{"employee_id": employee.ID})
			return
		}
		invalidateOwner(c, rdb, userID)
		c.JSON(http.StatusOK, gin.H{"message": "Employee deleted"})
	}
}

// GetEmployeeHandler returns the authenticated employee's profile
func GetEmployeeHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		employee, ok := loadSelfEmployee(c, db)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, employee)
	}
}

// UpdateEmployeeSelfHandler lets an employee edit its own name, phone, image and password
func UpdateEmployeeSelfHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateEmployeeSelfRequest
		if !bindJSON(c, &req) {
			return
		}
		employee, ok := loadSelfEmployee(c, db)
		if !ok {
			return
		}
		if err := applyEmployeeSelfFields(employee, req.Name, req.Phone, req.ProfileImage, req.Password); err != nil {
			serverError(c, "Failed to update employee", err, logrus.Fields{"employee_id": employee.ID})
			return
		}
		saveEmployee(c, db, rdb, employee)
	}
}

// AssignedPropertiesHandler lists the properties an employee manages, with rooms
func AssignedPropertiesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		employeeID, ok := paramID(c, "id")
		if !ok {
			return
		}
		properties := []domain.Property{}
		if err := db.Preload("Rooms").Where("employee_id = ?", employeeID).Order("name").Find(&properties).Error; err != nil {
			serverError(c, "Failed to load properties", err, logrus.Fields{"employee_id": employeeID})
			return
		}
		c.JSON(http.StatusOK, properties)
	}
}

func loadSelfEmployee(c *gin.Context, db *gorm.DB) (*domain.Employee, bool) {
	employeeID, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}
	var employee domain.Employee
	if err := db.First(&employee, employeeID).Error; err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Employee not found"})
			return nil, false
		}
		serverError(c, "Failed to load employee", err, logrus.Fields{"employee_id": employeeID})
		return nil, false
	}
	return &employee, true
}

func applyEmployeeSelfFields(e *domain.Employee, name, phone, image, password *string) error {
	if name != nil && *name != "" {
		e.Name = utils.Sanitize(*name)
	}
	if phone != nil {
		e.Phone = utils.Sanitize(*phone)
	}
	if image != nil {
		e.ProfileImage = *image
	}
	if password != nil && *password != "" {
		return e.SetPassword(*password)
	}
	return nil
}

// saveEmployee persists e and drops its manager's cached dashboard and property list
func saveEmployee(c *gin.Context, db *gorm.DB, rdb *redis.Client, e *domain.Employee) {
	if err := db.Omit(clause.Associations).Save(e).Error; err != nil {
		if isDuplicate(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "An employee with this email already exists"})
			return
		}
		serverError(c, "Failed to update employee", err, logrus.Fields{"employee_id": e.ID})
		return
	}
	invalidateOwner(c, rdb, e.ManagerID)
	c.JSON(http.StatusOK, e)
}
