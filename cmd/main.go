package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Shopify/sarama"
	"github.com/go-playground/validator/v10"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/practice-sem-2/messaging-service/internal/auth"
	"github.com/practice-sem-2/messaging-service/internal/server"
	storage "github.com/practice-sem-2/messaging-service/internal/storages"
	usecase "github.com/practice-sem-2/messaging-service/internal/usecases"
	"github.com/practice-sem-2/messaging-service/internal/weather"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

func initLogger(level string) *logrus.Logger {

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{
		PrettyPrint: true,
	})

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
		logger.
			WithField("log_level", level).
			Warning("specified invalid log level")
	} else {
		logger.SetLevel(logLevel)
		logger.
			WithField("log_level", level).
			Infof("specified %s log level", logLevel.String())
	}

	return logger
}

func initDB(dsn string, logger *logrus.Logger) *sqlx.DB {
	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		logger.Fatalf("can't connect to database: %s", err.Error())
	}

	err = db.Ping()

	if err != nil {
		logger.Fatalf("database ping failed: %s", err.Error())
	}

	logger.Info("successfully connected to database")
	return db
}

func initProducer(logger *logrus.Logger) sarama.SyncProducer {
	brokers := viper.GetString("KAFKA_BROKERS")
	if len(brokers) == 0 {
		logger.Warning("KAFKA_BROKERS is not defined, update events are disabled")
		return nil
	}

	addrs := strings.Split(brokers, ",")
	config := sarama.NewConfig()
	config.Producer.Partitioner = sarama.NewHashPartitioner
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Timeout = 10 * time.Second
	config.Producer.Return.Successes = true
	producer, err := sarama.NewSyncProducer(addrs, config)

	if err != nil {
		logger.WithError(err).Fatalf("can't create producer")
	}

	return producer
}

func initRedis(logger *logrus.Logger) *redis.Client {
	addr := viper.GetString("REDIS_ADDR")
	if addr == "" {
		logger.Warning("REDIS_ADDR is not defined, weather caching is disabled")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: viper.GetString("REDIS_PASSWORD"),
	})

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		logger.Fatalf("can't connect to redis: %s", err.Error())
	}

	return rdb
}

func main() {
	// .env is optional, the environment may be set directly
	_ = godotenv.Load()
	viper.AutomaticEnv()

	var host string
	var port int
	var logLevel string

	flag.IntVar(&port, "port", 80, "port on which server will be started")
	flag.StringVar(&host, "host", "0.0.0.0", "host on which server will be started")
	flag.StringVar(&logLevel, "log", "info", "log level")

	flag.Parse()

	logger := initLogger(logLevel)

	db := initDB(viper.GetString("DB_DSN"), logger)
	defer func(db *sqlx.DB) {
		err := db.Close()
		if err != nil {
			logger.Fatalf("during db connection close an error occurred: %s", err.Error())
		}
	}(db)

	producer := initProducer(logger)
	if producer != nil {
		defer func(p sarama.SyncProducer) {
			if err := p.Close(); err != nil {
				logger.Errorf("during producer close an error occurred: %s", err.Error())
			}
		}(producer)
	}

	rdb := initRedis(logger)
	if rdb != nil {
		defer rdb.Close()
	}

	store := storage.NewRegistry(db, producer, &storage.UpdatesStoreConfig{
		UpdatesTopic: viper.GetString("UPDATES_TOPIC"),
	})

	chatsUsecase := usecase.NewChatsUsecase(store)

	cacheTTL := viper.GetDuration("WEATHER_CACHE_TTL")
	if cacheTTL == 0 {
		cacheTTL = 10 * time.Minute
	}
	var weatherCache usecase.WeatherCache
	if rdb != nil {
		weatherCache = rdb
	}
	weatherUsecase := usecase.NewWeatherUsecase(
		weather.NewGoogleResolver(viper.GetString("GOOGLE_GEOCODER_API_KEY")),
		weather.NewOpenWeatherClient(nil, viper.GetString("OPENWEATHER_API_KEY")),
		weatherCache,
		cacheTTL,
	)

	secret := viper.GetString("JWT_SECRET")
	if secret == "" {
		logger.Fatal("JWT_SECRET environment variable must be defined")
	}

	validate := validator.New()
	srv := server.NewServer(chatsUsecase, weatherUsecase, auth.NewVerifier(secret), validate, logger)

	address := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:         address,
		Handler:      srv.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	osSignal := make(chan os.Signal, 1)
	signal.Notify(osSignal,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)

	go func() {
		sig := <-osSignal
		logger.Infof("%s caught. Gracefully shutdown", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(ctx); err != nil {
			logger.Errorf("http server shutdown error: %s", err.Error())
		}
	}()

	logger.Infof("start listening on %s", address)
	err := httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("http serving error: %s", err.Error())
	}
}
