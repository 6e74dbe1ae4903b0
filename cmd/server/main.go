package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/restaurant-eugene/booking-api/internal/booking"
	"github.com/restaurant-eugene/booking-api/internal/config"
	"github.com/restaurant-eugene/booking-api/internal/database"
	"github.com/restaurant-eugene/booking-api/internal/handler"
	"github.com/restaurant-eugene/booking-api/internal/middleware"
	"github.com/restaurant-eugene/booking-api/internal/queue"
	"github.com/restaurant-eugene/booking-api/internal/render"
	"github.com/restaurant-eugene/booking-api/internal/repository"
	"github.com/restaurant-eugene/booking-api/internal/router"
	"github.com/restaurant-eugene/booking-api/internal/session"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments use the environment

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional; carts fall back to process memory and the
	// limiter and cache disable themselves when it is absent.
	rdb := config.NewRedisClient()

	// Repositories.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	clients := repository.NewClientRepo(db)
	menu := repository.NewMenuRepo(db)
	reservations := repository.NewReservationRepo(db)
	slots := repository.NewSlotRepo(db)

	// Booking engine.
	guard := booking.NewCapacityGuard(slots, cfg.SlotCapacity)
	builder := booking.NewOrderBuilder(menu, reservations, guard)
	machine := booking.NewServingStateMachine(reservations, guard)

	carts := session.NewCartStore(rdb)
	eventsOn := cfg.AMQPURL != ""

	// Handlers.
	authH := handler.NewAuthHandler(cfg, users, tokens, clients)
	cartH := handler.NewCartHandler(carts, menu)
	resH := handler.NewReservationHandler(builder, machine, reservations, clients, carts, eventsOn)
	scanH := handler.NewScanHandler(machine, reservations, clients, slots, cfg.SlotCapacity, eventsOn)
	menuH := handler.NewMenuHandler(menu)

	// Background ticket worker: renders PDFs, mails them, keeps the
	// audit log. Only started when a broker is configured.
	if eventsOn {
		worker := &queue.TicketWorker{
			Mailer: render.Mailer{
				Host: cfg.SMTPHost,
				Port: cfg.SMTPPort,
				User: cfg.SMTPUser,
				Pass: cfg.SMTPPass,
				From: cfg.MailFrom,
			},
		}
		go worker.Start()
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, menuH, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	router.RegisterCheckout(e, cartH, resH, cfg.JWTSecret)
	router.RegisterCustomer(e, resH, cfg.JWTSecret)
	router.RegisterStaff(e, scanH, menuH, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
