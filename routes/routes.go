package routes

import (
	"agromandi/admin"
	"agromandi/auth"
	"agromandi/bids"
	"agromandi/farmer"
	"agromandi/messages"
	"agromandi/middleware"
	"agromandi/models"
	"agromandi/products"
	"agromandi/ratelim"
	"agromandi/transport"

	"github.com/julienschmidt/httprouter"
)

func AddAuthRoutes(router *httprouter.Router) {
	router.POST("/api/auth/register", ratelim.RateLimit(auth.Register))
	router.POST("/api/auth/login", ratelim.RateLimit(auth.Login))
	router.POST("/api/auth/logout", middleware.Authenticate(auth.LogoutUser))
	router.POST("/api/auth/token/refresh", ratelim.RateLimit(middleware.Authenticate(auth.RefreshToken)))
	router.GET("/api/user", middleware.Authenticate(auth.CurrentUser))
}

func AddProductRoutes(router *httprouter.Router) {
	router.GET("/api/products", ratelim.RateLimit(middleware.OptionalAuth(products.GetProducts)))
	router.GET("/api/products/:id", ratelim.RateLimit(middleware.OptionalAuth(products.GetProduct)))
	router.POST("/api/products", ratelim.RateLimit(middleware.Authenticate(
		middleware.RequireRole(products.CreateProduct, models.RoleFarmer))))
	router.PATCH("/api/products/:id", ratelim.RateLimit(middleware.Authenticate(products.EditProduct)))
	router.GET("/api/user/products", middleware.Authenticate(products.GetUserProducts))
}

func AddBidRoutes(router *httprouter.Router) {
	router.POST("/api/bids", ratelim.RateLimit(middleware.Authenticate(
		middleware.RequireRole(bids.CreateBid, models.RoleBuyer, models.RoleMiddleman))))
	router.GET("/api/products/:id/bids", middleware.Authenticate(bids.GetProductBids))
	router.GET("/api/user/bids", middleware.Authenticate(bids.GetUserBids))
	router.PATCH("/api/bids/:id/status", ratelim.RateLimit(middleware.Authenticate(
		middleware.RequireRole(bids.UpdateBidStatus, models.RoleFarmer))))
}

func AddTransportRoutes(router *httprouter.Router) {
	router.POST("/api/transport", ratelim.RateLimit(middleware.Authenticate(
		middleware.RequireRole(transport.CreateTransportRequest,
			models.RoleFarmer, models.RoleBuyer, models.RoleMiddleman))))
	router.GET("/api/transport/requester", middleware.Authenticate(transport.GetRequesterTransportRequests))
	router.GET("/api/transport/transporter", middleware.Authenticate(
		middleware.RequireRole(transport.GetTransporterTransportRequests, models.RoleTransporter)))
	router.GET("/api/transport/available", middleware.Authenticate(
		middleware.RequireRole(transport.GetAvailableTransportRequests, models.RoleTransporter)))
	router.PATCH("/api/transport/:id/status", ratelim.RateLimit(middleware.Authenticate(transport.UpdateTransportStatus)))
}

func AddMessageRoutes(router *httprouter.Router) {
	router.POST("/api/messages", ratelim.RateLimit(middleware.Authenticate(messages.SendMessage)))
	// "/api/messages/unread" is served by GetConversation, which
	// forwards the reserved segment to GetUnreadMessages.
	router.GET("/api/messages/:userId", middleware.Authenticate(messages.GetConversation))
	router.PATCH("/api/messages/:id/read", middleware.Authenticate(messages.MarkMessageRead))
}

func AddFarmerRoutes(router *httprouter.Router) {
	router.PATCH("/api/farmer/profile", ratelim.RateLimit(middleware.Authenticate(
		middleware.RequireRole(farmer.UpdateProfile, models.RoleFarmer))))
	router.POST("/api/farmer/verification", ratelim.RateLimit(middleware.Authenticate(
		middleware.RequireRole(farmer.SubmitVerification, models.RoleFarmer))))
	router.PATCH("/api/farmer/certifications", ratelim.RateLimit(middleware.Authenticate(
		middleware.RequireRole(farmer.UpdateCertifications, models.RoleFarmer))))
}

func AddAdminRoutes(router *httprouter.Router) {
	router.GET("/api/admin/verifications", middleware.Authenticate(
		middleware.RequireRole(admin.GetPendingVerifications, models.RoleAdmin)))
	router.PATCH("/api/admin/verifications/:userId", ratelim.RateLimit(middleware.Authenticate(
		middleware.RequireRole(admin.ReviewVerification, models.RoleAdmin))))
}

func RoutesWrapper(router *httprouter.Router) {
	AddAuthRoutes(router)
	AddProductRoutes(router)
	AddBidRoutes(router)
	AddTransportRoutes(router)
	AddMessageRoutes(router)
	AddFarmerRoutes(router)
	AddAdminRoutes(router)
}
