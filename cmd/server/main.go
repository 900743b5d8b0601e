package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/commune-hq/commune/internal/config"
	"github.com/commune-hq/commune/internal/database"
	postgresrepo "github.com/commune-hq/commune/internal/repository/postgres"
	"github.com/commune-hq/commune/internal/service"
	"github.com/commune-hq/commune/internal/session"
	"github.com/commune-hq/commune/internal/transport/http/handlers"
	"github.com/commune-hq/commune/internal/transport/http/middleware"
	"github.com/commune-hq/commune/internal/transport/ws"
	"github.com/commune-hq/commune/internal/webapp"
)

const reaperInterval = 15 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("configuration error")
	}

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	ctx := context.Background()

	// Database
	pool, err := database.Connect(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("database connection failed")
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logrus.WithError(err).Fatal("schema migration failed")
	}
	logrus.Info("connected to database, schema up to date")

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	profileRepo := postgresrepo.NewProfileRepo(pool)
	skillRepo := postgresrepo.NewSkillRepo(pool)
	categoryRepo := postgresrepo.NewCategoryRepo(pool)
	serviceRepo := postgresrepo.NewServiceRepo(pool)
	postRepo := postgresrepo.NewPostRepo(pool)
	instanceRepo := postgresrepo.NewInstanceRepo(pool)
	activityRepo := postgresrepo.NewActivityRepo(pool)
	sessionRepo := postgresrepo.NewSessionRepo(pool)

	// Sessions
	sessions := session.NewManager(sessionRepo, cfg.SessionTTL)
	go sessions.RunReaper(ctx, reaperInterval)

	// WebSocket hub for the admin activity stream
	hub := ws.NewHub()
	go hub.Run(ctx)

	// Services
	authService := service.NewAuthService(userRepo, sessions)
	profileService := service.NewProfileService(userRepo, profileRepo, skillRepo)
	directoryService := service.NewDirectoryService(serviceRepo, categoryRepo)
	postService := service.NewPostService(postRepo, cfg.Domain)
	instanceService := service.NewInstanceService(instanceRepo, activityRepo, ws.NewHubNotifier(hub), cfg.FederationSecret)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(profileService)
	directoryHandler := handlers.NewDirectoryHandler(directoryService)
	postHandler := handlers.NewPostHandler(postService)
	instanceHandler := handlers.NewInstanceHandler(instanceService)
	pages := webapp.NewHandler(sessions, profileService, instanceService)

	auth := middleware.Auth(sessions)

	mux := http.NewServeMux()

	// Ops
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	// Auth
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.Handle("POST /api/v1/auth/logout", auth(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("GET /api/v1/auth/me", auth(http.HandlerFunc(authHandler.Me)))

	// Users & profiles
	mux.HandleFunc("GET /api/v1/users/{id}", userHandler.GetProfile)
	mux.Handle("PATCH /api/v1/users/{id}", auth(http.HandlerFunc(userHandler.UpdateProfile)))
	mux.Handle("DELETE /api/v1/users/{id}", auth(http.HandlerFunc(userHandler.DeleteUser)))
	mux.HandleFunc("GET /api/v1/users/{id}/experiences", userHandler.ListExperiences)
	mux.Handle("POST /api/v1/experiences", auth(http.HandlerFunc(userHandler.AddExperience)))
	mux.Handle("PATCH /api/v1/experiences/{eid}", auth(http.HandlerFunc(userHandler.UpdateExperience)))
	mux.Handle("DELETE /api/v1/experiences/{eid}", auth(http.HandlerFunc(userHandler.DeleteExperience)))
	mux.HandleFunc("GET /api/v1/users/{id}/educations", userHandler.ListEducations)
	mux.Handle("POST /api/v1/educations", auth(http.HandlerFunc(userHandler.AddEducation)))
	mux.Handle("PATCH /api/v1/educations/{eid}", auth(http.HandlerFunc(userHandler.UpdateEducation)))
	mux.Handle("DELETE /api/v1/educations/{eid}", auth(http.HandlerFunc(userHandler.DeleteEducation)))

	// Skills
	mux.HandleFunc("GET /api/v1/skills", userHandler.ListSkills)
	mux.HandleFunc("GET /api/v1/users/{id}/skills", userHandler.ListUserSkills)
	mux.Handle("POST /api/v1/skills", auth(http.HandlerFunc(userHandler.AddSkill)))
	mux.Handle("POST /api/v1/users/{id}/skills/{sid}/endorse", auth(http.HandlerFunc(userHandler.Endorse)))
	mux.Handle("DELETE /api/v1/skills/{sid}", auth(http.HandlerFunc(userHandler.RemoveSkill)))

	// Categories & services
	mux.HandleFunc("GET /api/v1/categories", directoryHandler.ListCategories)
	mux.Handle("POST /api/v1/categories", auth(http.HandlerFunc(directoryHandler.CreateCategory)))
	mux.Handle("DELETE /api/v1/categories/{id}", auth(http.HandlerFunc(directoryHandler.DeleteCategory)))
	mux.HandleFunc("GET /api/v1/services", directoryHandler.ListServices)
	mux.HandleFunc("GET /api/v1/services/{id}", directoryHandler.GetService)
	mux.Handle("POST /api/v1/services", auth(http.HandlerFunc(directoryHandler.CreateService)))
	mux.Handle("PATCH /api/v1/services/{id}", auth(http.HandlerFunc(directoryHandler.UpdateService)))
	mux.Handle("DELETE /api/v1/services/{id}", auth(http.HandlerFunc(directoryHandler.DeleteService)))

	// Posts, comments, reactions
	mux.HandleFunc("GET /api/v1/posts", postHandler.Feed)
	mux.HandleFunc("GET /api/v1/posts/{id}", postHandler.Get)
	mux.HandleFunc("GET /api/v1/users/{id}/posts", postHandler.ListByUser)
	mux.Handle("POST /api/v1/posts", auth(http.HandlerFunc(postHandler.Create)))
	mux.Handle("PATCH /api/v1/posts/{id}", auth(http.HandlerFunc(postHandler.Update)))
	mux.Handle("DELETE /api/v1/posts/{id}", auth(http.HandlerFunc(postHandler.Delete)))
	mux.HandleFunc("GET /api/v1/posts/{id}/comments", postHandler.ListComments)
	mux.Handle("POST /api/v1/posts/{id}/comments", auth(http.HandlerFunc(postHandler.AddComment)))
	mux.Handle("DELETE /api/v1/comments/{cid}", auth(http.HandlerFunc(postHandler.DeleteComment)))
	mux.HandleFunc("GET /api/v1/posts/{id}/reactions", postHandler.ListReactions)
	mux.Handle("PUT /api/v1/posts/{id}/reactions", auth(http.HandlerFunc(postHandler.React)))
	mux.Handle("DELETE /api/v1/posts/{id}/reactions", auth(http.HandlerFunc(postHandler.Unreact)))

	// Instances & federation
	mux.HandleFunc("GET /api/v1/instances", instanceHandler.List)
	mux.HandleFunc("GET /api/v1/instances/{id}", instanceHandler.Get)
	mux.Handle("POST /api/v1/instances", auth(http.HandlerFunc(instanceHandler.Create)))
	mux.Handle("PATCH /api/v1/instances/{id}/settings", auth(http.HandlerFunc(instanceHandler.UpdateSettings)))
	mux.Handle("GET /api/v1/instances/{id}/activities", auth(http.HandlerFunc(instanceHandler.Activities)))
	mux.Handle("GET /api/v1/instances/{id}/federation", auth(http.HandlerFunc(instanceHandler.ListFederation)))
	mux.Handle("POST /api/v1/instances/{id}/federation", auth(http.HandlerFunc(instanceHandler.RequestFederation)))
	mux.Handle("POST /api/v1/federation/accept", auth(http.HandlerFunc(instanceHandler.AcceptFederation)))
	mux.Handle("PATCH /api/v1/instances/{id}/federation/{fid}", auth(http.HandlerFunc(instanceHandler.UpdateFederationStatus)))
	mux.Handle("DELETE /api/v1/instances/{id}/federation/{fid}", auth(http.HandlerFunc(instanceHandler.RemoveFederation)))

	// Web client pages (catch-all)
	mux.Handle("/", pages)

	// The websocket route sits outside the metrics wrapper: the upgrade
	// needs the raw ResponseWriter to hijack the connection.
	root := http.NewServeMux()
	root.HandleFunc("GET /ws", ws.ServeWS(hub, sessions, instanceService))
	root.Handle("/", middleware.Instrument(mux))

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	logrus.WithField("addr", addr).Info("starting server")
	logrus.Fatal(http.ListenAndServe(addr, middleware.CORS(root)))
}
