package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"twotier-board/internal/app"
	"twotier-board/internal/cache"
	"twotier-board/internal/config"
	mysqlClient "twotier-board/internal/platform/mysql"
	rabbitmqClient "twotier-board/internal/platform/rabbitmq"
	redisClient "twotier-board/internal/platform/redis"
	"twotier-board/internal/repository"
)

// App is built once at startup and handed to the transport layer.
type App struct {
	Config   *config.Config
	MySQL    *gorm.DB
	Redis    *redis.Client
	MQConn   *amqp.Connection
	Messages *app.MessageService

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrSchemaBootstrap, err)
	}

	a, err := NewWithDB(ctx, cfg, mysqlDB)
	if err != nil {
		_ = mysqlClient.Close(mysqlDB)
		return nil, err
	}
	return a, nil
}

// NewWithDB wires an App around an already open database handle, which New
// uses after dialing MySQL and tests use with sqlite. The caller keeps
// ownership of db when an error is returned. Redis and RabbitMQ are still
// connected when cfg enables them.
func NewWithDB(ctx context.Context, cfg *config.Config, db *gorm.DB) (*App, error) {
	a := &App{Config: cfg, MySQL: db}
	if err := a.wire(ctx); err != nil {
		_ = a.closeBrokers()
		return nil, err
	}
	return a, nil
}

func (a *App) wire(ctx context.Context) error {
	messageRepo := repository.NewMessageRepository(a.MySQL)
	if err := messageRepo.EnsureSchema(ctx); err != nil {
		return err
	}

	var listCache app.ListCache
	if a.Config.RedisEnabled() {
		redisCli, err := redisClient.New(ctx, a.Config.Redis)
		if err != nil {
			return err
		}
		a.Redis = redisCli
		listCache = cache.NewListCache(
			redisCli,
			time.Duration(a.Config.Redis.ListTTLSeconds)*time.Second,
			time.Duration(a.Config.Redis.DirtyTTLSeconds)*time.Second,
		)
		log.Printf("message list cache enabled at %s", a.Config.Redis.Addr)
	}

	var publisher app.EventPublisher
	if a.Config.RabbitMQEnabled() {
		mqConn, err := rabbitmqClient.New(ctx, a.Config.RabbitMQ.URL, a.Config.RabbitMQ.MessageEventQueue)
		if err != nil {
			return err
		}
		a.MQConn = mqConn
		publisher = rabbitmqClient.NewEventPublisher(mqConn, a.Config.RabbitMQ.MessageEventQueue)
		log.Printf("message events enabled on queue %s", a.Config.RabbitMQ.MessageEventQueue)
	}

	a.Messages = app.NewMessageService(messageRepo, listCache, publisher)
	a.StartedAt = time.Now()
	return nil
}

func (a *App) Close() error {
	closeErr := a.closeBrokers()
	if a.MySQL != nil {
		if err := mysqlClient.Close(a.MySQL); err != nil {
			closeErr = errors.Join(closeErr, fmt.Errorf("close mysql failed: %w", err))
		}
	}
	return closeErr
}

func (a *App) closeBrokers() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = errors.Join(closeErr, fmt.Errorf("close redis failed: %w", err))
		}
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = errors.Join(closeErr, fmt.Errorf("close rabbitmq failed: %w", err))
		}
	}
	return closeErr
}
