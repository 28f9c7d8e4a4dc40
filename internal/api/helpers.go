package api

import (
	"errors"                         // Error inspection
	"landestate/internal/middleware" // Request-scoped logger
	"landestate/internal/utils"      // Validation helpers
	"net/http"                       // HTTP status codes
	"reflect"                        // Struct tag lookup
	"strconv"                        // String conversion
	"strings"                        // String manipulation

	"github.com/gin-gonic/gin"               // Gin web framework
	"github.com/gin-gonic/gin/binding"       // Gin request binding
	"github.com/go-playground/validator/v10" // Binding validator
	"github.com/sirupsen/logrus"             // Logging
	"gorm.io/gorm"                           // GORM ORM library
)

// RegisterValidators adds the custom binding tags used by request structs
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	// Report json field names in validation errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool { return utils.IsValidPhone(fl.Field().String()) })
	_ = v.RegisterValidation("personname", func(fl validator.FieldLevel) bool { return utils.IsValidName(fl.Field().String()) })
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool { return utils.IsValidPassword(fl.Field().String()) })
}

// validationMessage turns a binding error into a human-readable message
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "phone":
		return "Invalid phone number"
	case "personname":
		return "Name must be 2-100 letters"
	case "password":
		return "Password must be 8-72 characters and contain a letter and a digit"
	case "oneof":
		return fe.Field() + " must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gte", "min":
		return fe.Field() + " must be at least " + fe.Param()
	case "lte", "max":
		return fe.Field() + " must be at most " + fe.Param()
	}
	return "Invalid " + fe.Field()
}

// bindJSON binds the request body and writes a 400 on failure
func bindJSON(c *gin.Context, dest any) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(err)})
		return false
	}
	return true
}

// paramID parses a numeric route parameter and writes a 400 on failure
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// serverError logs the failure with context and answers with a fixed message
func serverError(c *gin.Context, message string, err error, fields logrus.Fields) {
	entry := middleware.Logger(c)
	if fields != nil {
		entry = entry.WithFields(fields)
	}
	entry.WithField("error", err.Error()).Error(message)
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}

// isNotFound reports whether err is GORM's missing-row error
func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// isDuplicate reports whether err is a uniqueness violation from any supported driver
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
