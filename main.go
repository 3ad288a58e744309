package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("user index warning: %v", err)
	}
	if err := database.EnsureProductIndexes(db); err != nil {
		log.Printf("product index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("order index warning: %v", err)
	}

	r := gin.Default()

	r.POST("/auth/register", handlers.Register(db, config.AppEnv.JWTSecret, config.AppEnv.AccessTokenTTL))
	r.POST("/auth/login", handlers.Login(db, config.AppEnv.JWTSecret, config.AppEnv.AccessTokenTTL))
	r.GET("/auth/me", middleware.UserAuth(config.AppEnv.JWTSecret), handlers.GetMe(db))
	r.PUT("/auth/profile", middleware.UserAuth(config.AppEnv.JWTSecret), handlers.UpdateProfile(db, config.AppEnv.JWTSecret, config.AppEnv.AccessTokenTTL))

	r.GET("/products", handlers.GetProducts(db))
	r.GET("/products/:id", handlers.GetProduct(db))

	r.GET("/cart", handlers.GetCart())
	r.POST("/cart/items", handlers.AddCartItem(db))
	r.PUT("/cart/items/:id", handlers.SetCartItemQuantity(db))
	r.DELETE("/cart/items/:id", handlers.RemoveCartItem())
	r.DELETE("/cart", handlers.ClearCart())

	r.GET("/checkout/:stage", handlers.CheckoutGate(config.AppEnv.JWTSecret))
	r.POST("/checkout/shipping", handlers.SaveShippingAddress(config.AppEnv.JWTSecret))
	r.POST("/checkout/payment", handlers.SavePaymentMethod(config.AppEnv.JWTSecret))

	orders := r.Group("/orders")
	orders.Use(middleware.UserAuth(config.AppEnv.JWTSecret))
	{
		orders.POST("", handlers.CreateOrder(db))
		orders.GET("/history", handlers.GetOrderHistory(db))
		orders.GET("/:id", handlers.GetOrder(db))
		orders.PUT("/:id/pay", handlers.PayOrder(db))
	}

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(config.AppEnv.JWTSecret))
	{
		admin.GET("/orders", handlers.GetAllOrders(db))
		admin.PUT("/orders/:id/deliver", handlers.DeliverOrder(db))
		admin.DELETE("/orders/:id", handlers.DeleteOrder(db))

		admin.GET("/products", handlers.GetAllProducts(db))
		admin.POST("/products", handlers.CreateProduct(db))
		admin.PUT("/products/:id", handlers.UpdateProduct(db))
		admin.DELETE("/products/:id", handlers.DeleteProduct(db))
	}

	r.Run(":" + config.AppEnv.Port)
}
