package services

import (
	"testing"
	"time"

	"parkhub/database"
	"parkhub/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB 以記憶體資料庫取代全域 DB
func setupTestDB(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// 記憶體資料庫跟著連線走，限制連線池只留一條
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.ParkingLot{},
		&models.ParkingSession{},
		&models.Notification{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	database.DB = db
}

func createTestLot(t *testing.T, totalSpots, occupiedSpots int, pricePerHour float64) *models.ParkingLot {
	t.Helper()
	lot := &models.ParkingLot{
		Name:          "測試停車場",
		Address:       "台北市信義區",
		Type:          "car",
		TotalSpots:    totalSpots,
		OccupiedSpots: occupiedSpots,
		Status:        ResolveLotStatus(occupiedSpots, totalSpots),
		PricePerHour:  pricePerHour,
		Latitude:      25.033,
		Longitude:     121.565,
	}
	if err := database.DB.Create(lot).Error; err != nil {
		t.Fatalf("Failed to create test parking lot: %v", err)
	}
	return lot
}

func createTestUser(t *testing.T, email string) *models.User {
	t.Helper()
	user := &models.User{
		Name:     "測試使用者",
		Email:    email,
		Password: "hashed-password",
		Role:     "driver",
	}
	if err := database.DB.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

func createTestSession(t *testing.T, userID, lotID int, status string, slots int, startTime *time.Time, createdAt time.Time) *models.ParkingSession {
	t.Helper()
	session := &models.ParkingSession{
		UserID:       userID,
		ParkingLotID: lotID,
		Status:       status,
		Slots:        slots,
		StartTime:    startTime,
		QRCode:       uuid.NewString(),
		CreatedAt:    createdAt,
	}
	if err := database.DB.Create(session).Error; err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}
	return session
}

func fetchLot(t *testing.T, lotID int) *models.ParkingLot {
	t.Helper()
	var lot models.ParkingLot
	if err := database.DB.First(&lot, lotID).Error; err != nil {
		t.Fatalf("Failed to fetch parking lot %d: %v", lotID, err)
	}
	return &lot
}
