package db

import (
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func Connect(dsn string) *gorm.DB {
	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	sqlDB, _ := gdb.DB()
	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("database ping failed: %v", err)
	}

	log.Println("database connected")
	return gdb
}

func AutoMigrate(gdb *gorm.DB, models ...interface{}) {
	if err := gdb.AutoMigrate(models...); err != nil {
		log.Fatalf("automigrate failed: %v", err)
	}
}
