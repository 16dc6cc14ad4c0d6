package main

import (
	"log"
	"os"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"filmkiste/auth"
	"filmkiste/common"
	"filmkiste/database"
	"filmkiste/movies"
	"filmkiste/store"
)

func main() {
	// .env is optional, real deployments set the environment directly
	_ = godotenv.Load()

	db := common.ConnectDb()
	if db == nil {
		log.Fatal("Failed to connect to database")
	}

	if err := database.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	st := store.New(db)

	if err := st.SeedDemo(); err != nil {
		log.Fatal("Failed to seed demo data:", err)
	}

	router := gin.Default()

	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		log.Fatal("SESSION_SECRET environment variable not set")
	}

	cookieStore := cookie.NewStore([]byte(sessionSecret))
	cookieStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   false,
	})

	router.Use(sessions.Sessions("filmkiste-session", cookieStore))

	router.LoadHTMLGlob("*/views/*.html")

	router.Static("/public", "./public")

	authModule := auth.NewAuthModule(st)
	authModule.RegisterRoutes(router)

	moviesModule := movies.NewMoviesModule(st)
	moviesModule.RegisterRoutes(router)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting server on port %s...", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
