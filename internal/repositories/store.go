package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// StoreConfig selects and configures a storage backend.
type StoreConfig struct {
	// Driver is one of "mongo", "postgres", "sqlite" or "memory".
	Driver        string
	DSN           string
	MongoURI      string
	MongoDatabase string
}

// Store bundles the repositories of one backend with its lifecycle hooks.
type Store struct {
	Users    UserRepository
	Products ProductRepository
	Cart     CartRepository
	Orders   OrderRepository

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// Ping checks that the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases the backend connections.
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// NewMemoryStore returns a Store backed by process memory.
func NewMemoryStore() *Store {
	return &Store{
		Users:    NewMemoryUserRepository(),
		Products: NewMemoryProductRepository(),
		Cart:     NewMemoryCartRepository(),
		Orders:   NewMemoryOrderRepository(),
	}
}

// NewGORMStore returns a Store on top of an open, migrated GORM connection.
func NewGORMStore(db *gorm.DB) *Store {
	return &Store{
		Users:    NewGORMUserRepository(db),
		Products: NewGORMProductRepository(db),
		Cart:     NewGORMCartRepository(db),
		Orders:   NewGORMOrderRepository(db),
		ping: func(ctx context.Context) error {
			return PingGORM(ctx, db)
		},
		close: func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}

// OpenStore opens the backend named by cfg.Driver.
func OpenStore(ctx context.Context, cfg StoreConfig) (*Store, error) {
	switch cfg.Driver {
	case "memory":
		return NewMemoryStore(), nil
	case "postgres", "sqlite":
		db, err := OpenGORM(cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return NewGORMStore(db), nil
	case "mongo":
		client, db, err := OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return &Store{
			Users:    NewMongoUserRepository(db),
			Products: NewMongoProductRepository(db),
			Cart:     NewMongoCartRepository(db),
			Orders:   NewMongoOrderRepository(db),
			ping: func(ctx context.Context) error {
				return client.Ping(ctx, nil)
			},
			close: client.Disconnect,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}
