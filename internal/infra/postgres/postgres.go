package postgres

import (
	"fmt"
	"sync/atomic"

	"paywatch/internal/config"
	"paywatch/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Init(config *config.Config) *gorm.DB {
	dbConfig := config.Postgres
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s", dbConfig.Host, dbConfig.User, dbConfig.Password, dbConfig.Db_name, dbConfig.Port, dbConfig.Ssl_mode)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic("Gorm error: " + err.Error())
	}

	if err := migrate(db); err != nil {
		panic("Auto migrate error: " + err.Error())
	}

	return db
}

var testDbSeq atomic.Uint64

// InitTest returns an in-memory database with the full schema. The
// named DSN keeps all pooled connections on the same database while
// isolating each call.
func InitTest() *gorm.DB {
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", testDbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic("Gorm error: " + err.Error())
	}

	if err := migrate(db); err != nil {
		panic("Auto migrate error: " + err.Error())
	}

	return db
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Checkpoints{},
		&domain.RawEvents{},
		&domain.Merchants{},
		&domain.PaymentIntents{},
		&domain.WebhookSubscriptions{},
		&domain.WebhookDeliveries{},
	)
}

func DropTables(db *gorm.DB) error {
	return db.Migrator().DropTable(
		&domain.Checkpoints{},
		&domain.RawEvents{},
		&domain.Merchants{},
		&domain.PaymentIntents{},
		&domain.WebhookSubscriptions{},
		&domain.WebhookDeliveries{},
	)
}
