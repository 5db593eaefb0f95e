package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/MustafaTarek77/Order-Management-System/handlers"
	"github.com/MustafaTarek77/Order-Management-System/internal/cart"
	"github.com/MustafaTarek77/Order-Management-System/internal/consul"
	"github.com/MustafaTarek77/Order-Management-System/internal/orders"
	"github.com/MustafaTarek77/Order-Management-System/internal/stores/kafka"
	"github.com/MustafaTarek77/Order-Management-System/internal/stores/postgres"
	"github.com/MustafaTarek77/Order-Management-System/internal/users"

	"github.com/joho/godotenv"
)

func main() {
	if err := startApp(); err != nil {
		slog.Error("failed to start app", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func startApp() error {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment")
	}

	db, err := postgres.OpenDB()
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := postgres.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	s, err := postgres.NewStore(db)
	if err != nil {
		return err
	}
	cConf, err := cart.NewConf(s)
	if err != nil {
		return err
	}
	oConf, err := orders.NewConf(s)
	if err != nil {
		return err
	}
	uConf, err := users.NewConf(s)
	if err != nil {
		return err
	}

	// Kafka is optional; without brokers order events are skipped.
	var k *kafka.Conf
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		k, err = kafka.NewConf(strings.Split(brokers, ","))
		if err != nil {
			return fmt.Errorf("failed to connect to kafka: %w", err)
		}
		defer k.Close()
	}

	port, err := strconv.Atoi(getEnv("SERVICE_PORT", "8080"))
	if err != nil {
		return fmt.Errorf("invalid SERVICE_PORT: %w", err)
	}

	// Register with consul when a service name is configured so the
	// gateway can discover this instance.
	if serviceName := os.Getenv("SERVICE_NAME"); serviceName != "" {
		client, err := consul.NewClient()
		if err != nil {
			return err
		}
		address := getEnv("SERVICE_ADDRESS", "localhost")
		if err := consul.RegisterService(client, serviceName, address, port); err != nil {
			return err
		}
		slog.Info("registered with consul", slog.String("service", serviceName))
	}

	prefix := getEnv("SERVICE_ENDPOINT_PREFIX", "/api")
	api := handlers.API(prefix, cConf, oConf, uConf, k)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      api,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", slog.Int("port", port))
		serverErr <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdown:
		slog.Info("shutdown started", slog.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			server.Close()
			return fmt.Errorf("failed to shut down gracefully: %w", err)
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
