// cmd/server/main.go
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/habitforge/habitforge-web/config"
	"github.com/habitforge/habitforge-web/internal/api"
	"github.com/habitforge/habitforge-web/internal/auth"
	"github.com/habitforge/habitforge-web/internal/database"
	"github.com/habitforge/habitforge-web/internal/logger"
	"github.com/habitforge/habitforge-web/internal/services"
	"github.com/habitforge/habitforge-web/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.GlobalLogLevel = logger.LogLevel(cfg.Log.Level)

	// Initialize database
	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize services
	userService := services.NewUserService(db)
	habitService := services.NewHabitService(db)
	achievementService := services.NewAchievementService(db)
	rankingService := services.NewRankingService(db)
	progressService := services.NewProgressService(db)
	sweepService := services.NewSweepService(db)

	if err := achievementService.SeedDefaultAchievements(); err != nil {
		log.Fatalf("Failed to seed achievements: %v", err)
	}

	// Initialize auth with user service
	auth.Init(userService)

	// Realtime hub
	hub := websocket.NewHub()
	go hub.Run()

	rewardService := services.NewRewardService(db, achievementService, hub)

	r := mux.NewRouter()

	// Public routes (no authentication required)
	r.HandleFunc("/api/auth/register", auth.RegisterHandler).Methods("POST")
	r.HandleFunc("/api/auth/login", auth.LoginHandler).Methods("POST")
	r.HandleFunc("/api/auth/logout", auth.LogoutHandler).Methods("POST")
	r.HandleFunc("/api/health", healthHandler).Methods("GET")

	// Authenticated routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(auth.AuthMiddleware)
	authRouter.HandleFunc("/api/auth/me", auth.MeHandler).Methods("GET")

	apiRouter := authRouter.PathPrefix("/api/v1").Subrouter()
	handler := api.NewHandler(userService, habitService, rewardService, achievementService, rankingService, progressService)
	api.RegisterRoutes(apiRouter, handler)

	// WebSocket routes
	websocket.RegisterRoutes(authRouter, hub)

	// Scheduled sweeps
	go runStreakSweepLoop(sweepService, cfg.Scheduler.StreakSweepInterval)
	go runWeeklyResetLoop(sweepService, time.Weekday(cfg.Scheduler.WeeklyResetWeekday))

	// CORS setup for browser clients
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Server.Port
	}

	log.Printf("🔥 HabitForge server starting on port %s", port)
	log.Printf("🗄️ Database: %s", cfg.Database.Path)

	if err := http.ListenAndServe(":"+port, c.Handler(r)); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "ok",
	})
}

// runStreakSweepLoop expires stale streaks on a fixed interval. The sweep also
// runs once at startup so a long downtime does not leave dead streaks standing.
func runStreakSweepLoop(sweeps *services.SweepService, intervalMinutes int) {
	if intervalMinutes <= 0 {
		intervalMinutes = 60
	}

	if _, err := sweeps.RunStreakExpirySweep(); err != nil {
		log.Printf("Streak sweep failed: %v", err)
	}

	ticker := time.NewTicker(time.Duration(intervalMinutes) * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		if _, err := sweeps.RunStreakExpirySweep(); err != nil {
			log.Printf("Streak sweep failed: %v", err)
		}
	}
}

// runWeeklyResetLoop fires the ranking reset in the first hour of the configured
// weekday. The day guard keeps the reset from running twice inside that hour.
func runWeeklyResetLoop(sweeps *services.SweepService, weekday time.Weekday) {
	var lastRun time.Time

	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		if now.Weekday() != weekday || now.Hour() != 0 {
			continue
		}
		if lastRun.Year() == now.Year() && lastRun.YearDay() == now.YearDay() {
			continue
		}

		if _, err := sweeps.RunWeeklyResetSweep(); err != nil {
			log.Printf("Weekly reset failed: %v", err)
			continue
		}
		lastRun = now
	}
}
