package db

import (
	"votebox/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open connects to postgres and migrates the schema. The handle is returned
// rather than stored in a package global so stores receive it explicitly.
func Open(dsn string) (*gorm.DB, error) {
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	logrus.Info("Database connection established")

	if err := conn.AutoMigrate(
		&models.User{},
		&models.Option{},
	); err != nil {
		return nil, err
	}
	logrus.Info("Database migration completed")

	return conn, nil
}
