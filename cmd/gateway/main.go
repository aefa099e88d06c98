package main

import (
	"context"
	"log"
	"net/http"
	"time"

	api "github.com/brightboard/brightboard-lms/internal/api/http"
	auth "github.com/brightboard/brightboard-lms/internal/auth/middleware"
	"github.com/brightboard/brightboard-lms/internal/awards"
	"github.com/brightboard/brightboard-lms/internal/classroom"
	"github.com/brightboard/brightboard-lms/internal/config"
	"github.com/brightboard/brightboard-lms/internal/db"
	"github.com/brightboard/brightboard-lms/internal/genai"
	"github.com/brightboard/brightboard-lms/internal/grading"
	"github.com/brightboard/brightboard-lms/internal/notify"
	"github.com/brightboard/brightboard-lms/internal/quiz"
	rbac "github.com/brightboard/brightboard-lms/internal/rbac"
	storage "github.com/brightboard/brightboard-lms/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	// --- Stores & services ---
	quizStore := quiz.NewSQLStore(dbh)
	classStore := classroom.NewSQLStore(dbh)
	classSvc := classroom.NewService(classStore, nil)
	notifier := notify.NewRepo(dbh)
	users := api.NewUserDirectory(dbh)

	var gen genai.Generator
	if cfg.GenAIKey == "" && cfg.Mode == config.ModeOffline {
		// Offline without an API key: quizzes, grading fallback and awards
		// still work; generation endpoints report failure.
		log.Printf("GENAI_API_KEY not set; generation disabled")
		gen = genai.Disabled()
	} else {
		client, err := genai.NewClient(genai.Config{
			BaseURL: cfg.GenAIBaseURL,
			APIKey:  cfg.GenAIKey,
			Model:   cfg.GenAIModel,
			Timeout: cfg.GenAITimeout,
		})
		if err != nil {
			log.Fatalf("genai client: %v", err)
		}
		gen = client
	}
	quizGen := genai.NewQuizGenerator(gen)
	scorer := grading.NewScorer(gen)
	quizSvc := quiz.NewService(quizStore, classStore, scorer, nil)
	awardsEngine := awards.NewEngine(quizStore, classStore, classStore)

	var quoteCache genai.QuoteCache
	if cfg.RedisAddr != "" {
		quoteCache = genai.NewRedisQuoteCache(cfg.RedisAddr)
	}

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	authSvc := auth.NewAuthService(cfg.AuthSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second)) // generation calls are slow

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/register", auth.RegisterHandler(authSvc, dbh))
	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Use(auth.AttachRoleFromDB(dbh, cfg.Mode == config.ModeOffline))

		// Classrooms
		pr.With(rbac.Require("classroom:create")).
			Post("/classrooms", api.CreateClassroomHandler(classSvc))
		pr.With(rbac.Require("classroom:join")).
			Post("/classrooms/join", api.JoinClassroomHandler(classSvc))
		pr.With(rbac.Require("classroom:view")).
			Get("/classrooms", api.ListClassroomsHandler(classStore))
		pr.With(rbac.Require("classroom:view")).
			Get("/classrooms/{classroomID}", api.GetClassroomHandler(classStore))

		// Materials
		pr.With(rbac.Require("material:upload")).
			Post("/classrooms/{classroomID}/materials", api.UploadMaterialHandler(classStore, bs, notifier))
		pr.With(rbac.Require("material:view")).
			Get("/classrooms/{classroomID}/materials", api.ListMaterialsHandler(classStore))
		pr.With(rbac.Require("material:view")).
			Get("/materials/{materialID}/file", api.DownloadMaterialHandler(classStore, bs))

		// Teacher quiz authoring
		pr.With(rbac.Require("quiz:create")).
			Post("/classrooms/{classroomID}/quizzes", api.CreateQuizHandler(quizSvc, classStore))
		pr.With(rbac.Require("quiz:edit")).
			Put("/quizzes/{quizID}", api.UpdateQuizHandler(quizSvc, quizStore))
		pr.With(rbac.Require("quiz:publish")).
			Post("/quizzes/{quizID}/publish", api.PublishQuizHandler(quizStore, classStore, notifier))
		pr.With(rbac.Require("quiz:delete")).
			Delete("/quizzes/{quizID}", api.DeleteQuizHandler(quizStore))
		pr.With(rbac.Require("quiz:view")).
			Get("/classrooms/{classroomID}/quizzes", api.ListQuizzesHandler(quizStore, classStore))
		pr.With(rbac.Require("quiz:view")).
			Get("/quizzes/{quizID}", api.GetQuizHandler(quizStore, classStore))

		// Student attempt flow
		pr.With(rbac.Require("quiz:attempt")).
			Post("/quizzes/{quizID}/attempts", api.StartAttemptHandler(quizSvc))
		pr.With(rbac.Require("quiz:attempt")).
			Post("/evaluations/{evalID}/submit", api.SubmitAttemptHandler(quizSvc))
		pr.With(rbac.Require("evaluation:view-own")).
			Get("/evaluations/{evalID}", api.GetEvaluationHandler(quizStore))
		pr.With(rbac.Require("evaluation:view-own")).
			Get("/evaluations", api.ListMyEvaluationsHandler(quizStore))

		// AI generation
		pr.With(rbac.Require("quiz:generate")).
			Post("/classrooms/{classroomID}/ai-quizzes", api.GenerateQuizHandler(quizGen, quizSvc, classStore))
		pr.With(rbac.Require("studyguide:generate")).
			Post("/classrooms/{classroomID}/study-guide", api.StudyGuideHandler(quizGen, classStore))
		pr.Get("/daily-quote", api.DailyQuoteHandler(quizGen, quoteCache))

		// Teacher results
		pr.With(rbac.Require("results:view")).
			Get("/quizzes/{quizID}/results", api.QuizResultsHandler(quizStore))
		pr.With(rbac.Require("results:export")).
			Get("/quizzes/{quizID}/results.csv", api.ExportResultsCSVHandler(quizStore, users))
		pr.With(rbac.Require("results:view")).
			Get("/classrooms/{classroomID}/progress", api.ClassroomProgressHandler(quizStore, classStore))
		pr.With(rbac.Require("results:export")).
			Get("/classrooms/{classroomID}/evaluations.csv", api.ExportEvaluationsCSVHandler(quizStore, classStore, users))

		// Awards & rankings
		pr.With(rbac.RequireAny("awards:view-own", "results:view")).
			Get("/classrooms/{classroomID}/awards", api.MyAwardsHandler(awardsEngine, classStore))
		pr.With(rbac.Require("rankings:view")).
			Get("/classrooms/{classroomID}/rankings", api.RankingsHandler(awardsEngine, classStore))

		// Notifications
		pr.With(rbac.Require("notifications:view")).
			Get("/notifications", api.ListNotificationsHandler(notifier))
		pr.With(rbac.Require("notifications:view")).
			Post("/notifications/{notificationID}/read", api.MarkNotificationReadHandler(notifier))

		// Users (teacher/admin)
		pr.With(rbac.Require("users:bulk_upsert")).
			Post("/users/bulk", api.BulkUpsertUsersHandler(dbh))
		pr.With(rbac.Require("users:list")).
			Get("/users", api.ListUsersHandler(dbh))
		pr.With(rbac.Require("user:change_password")).
			Post("/users/change-password", api.ChangePasswordHandler(dbh))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
