package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/cmd/fx/catalog_fx"
	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/cmd/fx/controllers_fx"
	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/cmd/fx/db_fx"
	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/cmd/fx/gemini_fx"
	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/cmd/fx/geo_fx"
	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/cmd/fx/pipeline_fx"
	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/internal/api/controllers"
	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/pkg/middleware"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	app := fx.New(
		db_fx.Module,
		catalog_fx.Module,
		gemini_fx.Module,
		geo_fx.Module,
		pipeline_fx.Module,
		controllers_fx.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, engine *gin.Engine) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := os.Getenv("PORT")
				if port == "" {
					port = "8080"
				}
				log.Printf("Starting HTTP server at :%s", port)
				if err := engine.Run(":" + port); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Println("Stopping HTTP server")
			return nil
		},
	})
}

func ProvideRouter(itineraryController *controllers.ItineraryController) *gin.Engine {
	r := gin.Default()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.TraceIDMiddleware())

	RegisterRoutes(r, itineraryController)

	return r
}

func RegisterRoutes(r *gin.Engine, itineraryController *controllers.ItineraryController) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	itineraryGroup := r.Group("/itineraries")
	itineraryGroup.Use(middleware.BearerAuthMiddleware())
	itineraryGroup.POST("/generate", itineraryController.GenerateItinerary)
}
