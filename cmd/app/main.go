package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"deliveries/cmd"
	inhttp "deliveries/internal/adapters/in/http"
	inkafka "deliveries/internal/adapters/in/kafka"
	outkafka "deliveries/internal/adapters/out/kafka"
	"deliveries/internal/adapters/out/postgres/deliveryrepo"
	"deliveries/internal/adapters/out/postgres/outboxrepo"
	outredis "deliveries/internal/adapters/out/redis"
	"deliveries/internal/jobs"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	configs := getConfigs()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := openDatabase(configs)
	if err != nil {
		logger.Error("Failed to open database", "error", err)
		os.Exit(1)
	}

	publisher, err := outkafka.NewPublisher(configs.KafkaBrokers, configs.KafkaEventsTopic)
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer func() { _ = publisher.Close() }()

	var cache *outredis.DeliveryCache
	if configs.RedisAddr != "" {
		cache, err = outredis.NewDeliveryCache(ctx, configs.RedisAddr, configs.CacheTTL)
		if err != nil {
			logger.Error("Failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer func() { _ = cache.Close() }()
	} else {
		logger.Warn("REDIS_ADDR is empty, running without the read cache")
	}

	root := cmd.NewCompositionRoot(configs, gormDB, publisher, cache, logger)

	jobManager := jobs.NewJobManager(root.CreateEventDispatcher(), configs.RelayBatchSize, logger)
	if err = jobManager.StartAll(); err != nil {
		logger.Error("Failed to start jobs", "error", err)
		os.Exit(1)
	}
	defer jobManager.StopAll()

	consumer, err := newCommandConsumer(configs, root, publisher, logger)
	if err != nil {
		logger.Error("Failed to create command consumer", "error", err)
		os.Exit(1)
	}

	go func() {
		if runErr := consumer.Run(ctx); runErr != nil && ctx.Err() == nil {
			logger.Error("Command consumer stopped", "error", runErr)
		}
	}()

	startWebServer(ctx, root, configs.HTTPPort, logger)
}

func openDatabase(configs cmd.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		configs.DBHost, configs.DBPort, configs.DBUser, configs.DBPassword, configs.DBName, configs.DBSslMode)

	// TranslateError maps duplicate-key violations onto gorm.ErrDuplicatedKey,
	// which the repository needs for its concurrent-insert check.
	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err = gormDB.AutoMigrate(
		&deliveryrepo.DeliveryDTO{},
		&deliveryrepo.RegistrationDTO{},
		&outboxrepo.OutboxMessageDTO{},
	); err != nil {
		return nil, err
	}

	return gormDB, nil
}

func newCommandConsumer(
	configs cmd.Config,
	root cmd.CompositionRoot,
	publisher *outkafka.Publisher,
	logger *slog.Logger,
) (*inkafka.Consumer, error) {
	startHandler := root.CreateStartDeliveryCommandHandler()
	completeHandler := root.CreateCompleteDeliveryCommandHandler()
	failHandler := root.CreateFailDeliveryCommandHandler()
	addRegistrationHandler := root.CreateAddDeliveryRegistrationCommandHandler()

	return inkafka.NewConsumer(
		inkafka.Config{
			Brokers:               configs.KafkaBrokers,
			GroupID:               configs.KafkaConsumerGroup,
			StartDeliveryTopic:    configs.KafkaStartDeliveryTopic,
			CompleteDeliveryTopic: configs.KafkaCompleteDeliveryTopic,
			FailDeliveryTopic:     configs.KafkaFailDeliveryTopic,
			AddRegistrationTopic:  configs.KafkaAddRegistrationTopic,
			MaxInFlight:           configs.ConsumerMaxInFlight,
		},
		inkafka.Handlers{
			StartDelivery:    &startHandler,
			CompleteDelivery: &completeHandler,
			FailDelivery:     &failHandler,
			AddRegistration:  &addRegistrationHandler,
		},
		publisher,
		logger,
	)
}

func startWebServer(ctx context.Context, root cmd.CompositionRoot, port string, logger *slog.Logger) {
	e := echo.New()
	e.HideBanner = true

	server := inhttp.NewServer(root.CreateGetDeliveryQueryHandler())
	server.RegisterRoutes(e)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("Web server shutdown failed", "error", err)
		}
	}()

	if err := e.Start(fmt.Sprintf("0.0.0.0:%s", port)); err != nil && err != http.ErrServerClosed {
		logger.Error("Web server stopped", "error", err)
	}
}

func getConfigs() cmd.Config {
	return cmd.Config{
		HTTPPort:   goDotEnvVariable("HTTP_PORT"),
		DBHost:     goDotEnvVariable("DB_HOST"),
		DBPort:     goDotEnvVariable("DB_PORT"),
		DBUser:     goDotEnvVariable("DB_USER"),
		DBPassword: goDotEnvVariable("DB_PASSWORD"),
		DBName:     goDotEnvVariable("DB_NAME"),
		DBSslMode:  goDotEnvVariable("DB_SSLMODE"),

		KafkaBrokers:       strings.Split(goDotEnvVariable("KAFKA_BROKERS"), ","),
		KafkaConsumerGroup: goDotEnvVariable("KAFKA_CONSUMER_GROUP"),

		KafkaStartDeliveryTopic:    goDotEnvVariable("KAFKA_START_DELIVERY_TOPIC"),
		KafkaCompleteDeliveryTopic: goDotEnvVariable("KAFKA_COMPLETE_DELIVERY_TOPIC"),
		KafkaFailDeliveryTopic:     goDotEnvVariable("KAFKA_FAIL_DELIVERY_TOPIC"),
		KafkaAddRegistrationTopic:  goDotEnvVariable("KAFKA_ADD_REGISTRATION_TOPIC"),
		KafkaEventsTopic:           goDotEnvVariable("KAFKA_EVENTS_TOPIC"),

		RedisAddr: os.Getenv("REDIS_ADDR"),
		CacheTTL:  durationEnvVariable("CACHE_TTL", 5*time.Minute),

		ConsumerMaxInFlight: intEnvVariable("CONSUMER_MAX_IN_FLIGHT", 0),
		RelayBatchSize:      intEnvVariable("RELAY_BATCH_SIZE", 100),
	}
}

func goDotEnvVariable(key string) string {
	err := godotenv.Load(".env")
	if err != nil {
		log.Fatalf("Error loading .env file")
	}
	return os.Getenv(key)
}

func intEnvVariable(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Fatalf("Invalid %s value: %s", key, raw)
	}
	return value
}

func durationEnvVariable(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}

	value, err := time.ParseDuration(raw)
	if err != nil {
		log.Fatalf("Invalid %s value: %s", key, raw)
	}
	return value
}
