package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/studentcouncil/portal/internal/config"
	"github.com/studentcouncil/portal/internal/database"
	"github.com/studentcouncil/portal/internal/notify"
	"github.com/studentcouncil/portal/internal/render"
	postgresrepo "github.com/studentcouncil/portal/internal/repository/postgres"
	"github.com/studentcouncil/portal/internal/service"
	"github.com/studentcouncil/portal/internal/transport/http/handlers"
	"github.com/studentcouncil/portal/internal/transport/http/middleware"
	"github.com/studentcouncil/portal/internal/transport/ws"
)

func main() {
	cfg := config.Load()

	// Database
	pool, err := database.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()
	if err := database.EnsureSchema(context.Background(), pool); err != nil {
		log.Fatal(err)
	}
	log.Println("Connected to database")

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	meetingRepo := postgresrepo.NewMeetingRepo(pool)
	archiveRepo := postgresrepo.NewArchiveRepo(pool)
	perfRepo := postgresrepo.NewPerformanceRepo(pool)
	discussionRepo := postgresrepo.NewDiscussionRepo(pool)

	// Services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret)
	memberService := service.NewMemberService(userRepo, perfRepo)
	meetingService := service.NewMeetingService(meetingRepo, archiveRepo, userRepo)
	meetingService.SetPerformanceTracker(memberService)
	discussionService := service.NewDiscussionService(discussionRepo, meetingRepo)
	documentService := service.NewDocumentService(meetingRepo, userRepo, render.NewMinutesRenderer())

	// Email notifications: real SMTP when configured, log-only otherwise.
	if cfg.SMTPHost != "" {
		meetingService.SetNotifier(notify.NewEmailNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom))
	} else {
		meetingService.SetNotifier(notify.NewLogNotifier())
		log.Println("SMTP not configured, notifications go to the log")
	}

	// WebSocket hub for real-time discussion
	hub := ws.NewHub()
	go hub.Run()
	discussionService.SetBroadcaster(ws.NewHubBroadcaster(hub))

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	meetingHandler := handlers.NewMeetingHandler(meetingService, documentService)
	memberHandler := handlers.NewMemberHandler(memberService)
	discussionHandler := handlers.NewDiscussionHandler(discussionService)

	// Auth middleware
	auth := middleware.Auth(cfg.JWTSecret)

	// Routes
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)

	// Protected - Meetings
	mux.Handle("POST /api/v1/meetings", auth(http.HandlerFunc(meetingHandler.Create)))
	mux.Handle("GET /api/v1/meetings", auth(http.HandlerFunc(meetingHandler.List)))
	mux.Handle("GET /api/v1/meetings/{id}", auth(http.HandlerFunc(meetingHandler.Get)))
	mux.Handle("PATCH /api/v1/meetings/{id}", auth(http.HandlerFunc(meetingHandler.Update)))
	mux.Handle("DELETE /api/v1/meetings/{id}", auth(http.HandlerFunc(meetingHandler.Delete)))
	mux.Handle("PUT /api/v1/meetings/{id}/minutes", auth(http.HandlerFunc(meetingHandler.UpdateMinutes)))
	mux.Handle("POST /api/v1/meetings/{id}/publish", auth(http.HandlerFunc(meetingHandler.Publish)))
	mux.Handle("POST /api/v1/meetings/{id}/archive", auth(http.HandlerFunc(meetingHandler.Archive)))
	mux.Handle("POST /api/v1/meetings/{id}/restore", auth(http.HandlerFunc(meetingHandler.Restore)))
	mux.Handle("POST /api/v1/meetings/{id}/attendees", auth(http.HandlerFunc(meetingHandler.AddAttendee)))
	mux.Handle("POST /api/v1/meetings/{id}/action-items/{itemId}/complete", auth(http.HandlerFunc(meetingHandler.CompleteActionItem)))
	mux.Handle("GET /api/v1/meetings/{id}/document", auth(http.HandlerFunc(meetingHandler.Document)))

	// Protected - Discussion
	mux.Handle("POST /api/v1/meetings/{id}/messages", auth(http.HandlerFunc(discussionHandler.Post)))
	mux.Handle("GET /api/v1/meetings/{id}/messages", auth(http.HandlerFunc(discussionHandler.List)))
	mux.Handle("DELETE /api/v1/messages/{msgId}", auth(http.HandlerFunc(discussionHandler.Delete)))

	// Protected - Members
	mux.Handle("GET /api/v1/members", auth(http.HandlerFunc(memberHandler.List)))
	mux.Handle("GET /api/v1/members/{id}", auth(http.HandlerFunc(memberHandler.Get)))
	mux.Handle("GET /api/v1/members/{id}/performance", auth(http.HandlerFunc(memberHandler.GetPerformance)))
	mux.Handle("GET /api/v1/performance", auth(http.HandlerFunc(memberHandler.ListPerformance)))

	// WebSocket
	mux.HandleFunc("GET /ws", ws.ServeWS(hub, cfg.JWTSecret))

	// Start server with CORS
	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("Starting server on %s", addr)
	log.Fatal(http.ListenAndServe(addr, middleware.CORS(mux)))
}
