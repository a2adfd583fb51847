package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UtiliTrack/UT-Backend/internal/approvals"
	"github.com/UtiliTrack/UT-Backend/internal/attendance"
	"github.com/UtiliTrack/UT-Backend/internal/auth"
	"github.com/UtiliTrack/UT-Backend/internal/config"
	"github.com/UtiliTrack/UT-Backend/internal/db"
	"github.com/UtiliTrack/UT-Backend/internal/geofence"
	"github.com/UtiliTrack/UT-Backend/internal/middleware"
	"github.com/UtiliTrack/UT-Backend/internal/tracking"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/thejerf/suture/v4"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "Server is up!")
}

func main() {
	_ = godotenv.Load(".env.local")
	config.Load()
	db.Connect()

	port := os.Getenv("PORT")
	if port == "" {
		port = "5050"
	}

	auth.Init()
	geofence.Init()
	attendance.Init()
	approvals.Init()
	tracking.Init()

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Get("/", RootHandler)

	r.Mount("/auth", auth.SetupRoutes())
	r.Mount("/geofence", geofence.SetupRoutes())
	r.Mount("/kmz", geofence.SetupImportRoutes())
	r.Mount("/attendance", attendance.SetupRoutes())
	r.Mount("/approvals", approvals.SetupRoutes())
	r.Mount("/leave", approvals.SetupLeaveRoutes())
	r.Mount("/live-tracking", tracking.SetupRoutes())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// The sweeper runs supervised: a panic inside a sweep restarts the
	// service instead of taking the process down.
	supervisor := suture.NewSimple("ut-backend")
	supervisor.Add(attendance.NewDefaultSweeper())
	supervisorDone := supervisor.ServeBackground(ctx)

	server := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: r,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Println("HTTP shutdown error: ", err)
		}
	}()

	log.Printf("Server listening on port :%s...", port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("Server error: ", err)
	}

	// Wait for the supervisor tree to wind down before exiting.
	<-supervisorDone
	log.Println("Shutdown complete")
}
