package api

import (
	"html/template"                  // Reset form templates
	"landestate/internal/config"     // Application configuration
	"landestate/internal/domain"     // Participant kinds
	"landestate/internal/messaging"  // Conversations and messages
	"landestate/internal/middleware" // Custom middleware
	"landestate/internal/queue"      // Event publishing

	"github.com/gin-gonic/gin"                                // Gin web framework
	"github.com/prometheus/client_golang/prometheus/promhttp" // Metrics endpoint
	"github.com/redis/go-redis/v9"                            // Redis client
	"gorm.io/gorm"                                            // GORM ORM library
)

// Deps are the shared resources handlers are built from
type Deps struct {
	DB        *gorm.DB        // Database handle
	Redis     *redis.Client   // Optional cache
	Publisher queue.Publisher // Notification events
	Config    *config.Config  // Application configuration
}

// NewRouter builds the gin engine with every route
func NewRouter(d Deps) *gin.Engine {
	RegisterValidators()
	msgs := messaging.NewService(d.DB, d.Publisher)
	db, rdb, cfg, pub := d.DB, d.Redis, d.Config, d.Publisher

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestIDMiddleware(), middleware.RequestLogger(), middleware.MetricsMiddleware())
	r.SetHTMLTemplate(template.Must(template.New("reset").Parse(resetTemplates)))

	r.GET("/health", HealthHandler(db))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := r.Group("/api")

	// Public auth routes
	apiGroup.POST("/users/signup", SignupHandler(db, cfg))
	apiGroup.POST("/users/login", UserLoginHandler(db, cfg))
	apiGroup.POST("/users/forgot-password", ForgotPasswordHandler(db, pub, cfg))
	apiGroup.GET("/users/reset-password/:token", ResetPasswordFormHandler(db))
	apiGroup.POST("/users/reset-password/:token", ResetPasswordHandler(db))
	apiGroup.POST("/employees/login", EmployeeLoginHandler(db, cfg))

	// Everything below requires a token
	authed := apiGroup.Group("", middleware.JWTAuthMiddleware(cfg.JWTSecret))

	// Landlord account routes, only for the account itself
	self := authed.Group("/users/:id", middleware.RequireSelf(domain.KindUser, "id"))
	self.GET("", GetUserHandler(db))
	self.PUT("", UpdateUserHandler(db))
	self.DELETE("", DeleteUserHandler(db, rdb))
	self.GET("/dashboard", DashboardHandler(db, rdb, msgs))
	self.GET("/employees", ListEmployeesHandler(db))
	self.POST("/employees", CreateEmployeeHandler(db, rdb))
	self.PUT("/employees/:employeeId", UpdateManagedEmployeeHandler(db, rdb))
	self.DELETE("/employees/:employeeId", DeleteEmployeeHandler(db, rdb))
	self.GET("/properties", ListPropertiesHandler(db, rdb))
	self.POST("/properties", CreatePropertyHandler(db, rdb))

	// Employee account routes
	employeeSelf := authed.Group("/employees/:id", middleware.RequireSelf(domain.KindEmployee, "id"))
	employeeSelf.GET("", GetEmployeeHandler(db))
	employeeSelf.PUT("", UpdateEmployeeSelfHandler(db, rdb))
	employeeSelf.GET("/properties", AssignedPropertiesHandler(db))

	// Properties, rooms and maintenance; access checked per property
	authed.GET("/properties/:propertyId", GetPropertyHandler(db))
	owner := authed.Group("/properties/:propertyId", middleware.RequireKind(domain.KindUser))
	owner.PUT("", UpdatePropertyHandler(db, rdb))
	owner.DELETE("", DeletePropertyHandler(db, rdb))
	owner.PUT("/assign", AssignEmployeeHandler(db, rdb))
	authed.GET("/properties/:propertyId/rooms", ListRoomsHandler(db))
	authed.POST("/properties/:propertyId/rooms", CreateRoomHandler(db, rdb))
	authed.PUT("/rooms/:roomId", UpdateRoomHandler(db, rdb))
	authed.DELETE("/rooms/:roomId", DeleteRoomHandler(db, rdb))
	authed.GET("/properties/:propertyId/maintenance", ListMaintenanceHandler(db))
	authed.POST("/properties/:propertyId/maintenance", CreateMaintenanceHandler(db, rdb))
	authed.PUT("/maintenance/:recordId", UpdateMaintenanceHandler(db, rdb))
	authed.DELETE("/maintenance/:recordId", DeleteMaintenanceHandler(db, rdb))

	// Messaging for users and employees alike
	messages := authed.Group("/messages")
	messages.GET("/contacts", ContactsHandler(msgs))
	messages.GET("/conversations", ConversationsHandler(msgs))
	messages.GET("/conversations/:conversationId", ConversationMessagesHandler(msgs))
	messages.GET("/with/:type/:id", MessagesWithHandler(msgs))
	messages.GET("/unread-count", UnreadCountHandler(msgs))
	messages.POST("", SendMessageHandler(msgs))
	messages.PUT("/:messageId/read", MarkReadHandler(msgs))

	return r
}
