package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sort"

	"parkhub/database"
	"parkhub/models"

	"gorm.io/gorm"
)

var (
	ErrLotNotFound          = errors.New("parking lot not found")
	ErrInsufficientCapacity = errors.New("not enough free slots in parking lot")
)

// ResolveLotStatus 依佔用數推導停車場狀態
func ResolveLotStatus(occupiedSpots, totalSpots int) string {
	if occupiedSpots >= totalSpots {
		return models.LotStatusFull
	}
	return models.LotStatusAvailable
}

// SynchronizeLotOccupancy 調整停車場佔用數並重算狀態。
// 停車場不存在時視為 no-op（孤兒 session 不應讓原操作失敗）。
func SynchronizeLotOccupancy(lotID int, delta int) (*models.ParkingLot, error) {
	return syncLotOccupancy(database.DB, lotID, delta)
}

// syncLotOccupancy 以單一 UPDATE 調整佔用數，避免先讀後寫的競爭
func syncLotOccupancy(db *gorm.DB, lotID int, delta int) (*models.ParkingLot, error) {
	result := db.Model(&models.ParkingLot{}).
		Where("parking_lot_id = ?", lotID).
		Update("occupied_spots", gorm.Expr("occupied_spots + ?", delta))
	if result.Error != nil {
		log.Printf("Failed to adjust occupancy for parking lot %d: %v", lotID, result.Error)
		return nil, fmt.Errorf("failed to adjust occupancy for parking lot %d: %w", lotID, result.Error)
	}
	if result.RowsAffected == 0 {
		log.Printf("Parking lot %d not found during occupancy sync, skipping", lotID)
		return nil, nil
	}

	return resyncLotStatus(db, lotID)
}

// ReserveLotSlots 有條件地預留車位：只有在 occupied_spots + slots <= total_spots
// 時才累加，整個檢查加累加在同一條 UPDATE 內完成，關閉超賣競爭
func ReserveLotSlots(lotID int, slots int) (*models.ParkingLot, error) {
	return reserveLotSlots(database.DB, lotID, slots)
}

func reserveLotSlots(db *gorm.DB, lotID int, slots int) (*models.ParkingLot, error) {
	result := db.Model(&models.ParkingLot{}).
		Where("parking_lot_id = ? AND occupied_spots + ? <= total_spots", lotID, slots).
		Update("occupied_spots", gorm.Expr("occupied_spots + ?", slots))
	if result.Error != nil {
		log.Printf("Failed to reserve %d slots in parking lot %d: %v", slots, lotID, result.Error)
		return nil, fmt.Errorf("failed to reserve slots in parking lot %d: %w", lotID, result.Error)
	}
	if result.RowsAffected == 0 {
		// 區分「停車場不存在」與「容量不足」
		var lot models.ParkingLot
		if err := db.First(&lot, lotID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrLotNotFound
			}
			return nil, fmt.Errorf("failed to verify parking lot %d: %w", lotID, err)
		}
		log.Printf("Parking lot %d has insufficient capacity: occupied=%d, total=%d, requested=%d",
			lotID, lot.OccupiedSpots, lot.TotalSpots, slots)
		return nil, ErrInsufficientCapacity
	}

	return resyncLotStatus(db, lotID)
}

// resyncLotStatus 重新取回停車場並在狀態改變時寫回。
// 狀態欄位僅供查詢參考，與佔用數之間允許短暫不一致，下一次變動會再修正。
func resyncLotStatus(db *gorm.DB, lotID int) (*models.ParkingLot, error) {
	var lot models.ParkingLot
	if err := db.First(&lot, lotID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch parking lot %d: %w", lotID, err)
	}

	status := ResolveLotStatus(lot.OccupiedSpots, lot.TotalSpots)
	if status != lot.Status {
		if err := db.Model(&models.ParkingLot{}).
			Where("parking_lot_id = ?", lotID).
			Update("status", status).Error; err != nil {
			return nil, fmt.Errorf("failed to update status for parking lot %d: %w", lotID, err)
		}
		log.Printf("Parking lot %d status changed: %s -> %s", lotID, lot.Status, status)
		lot.Status = status
	}
	return &lot, nil
}

// haversineKm 計算兩座標間的球面距離（公里）
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371.0
	dLat := (lat2 - lat1) * math.Pi / 180.0
	dLon := (lon2 - lon1) * math.Pi / 180.0
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180.0)*math.Cos(lat2*math.Pi/180.0)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// ListParkingLots 查詢所有停車場；帶座標時附上距離並由近到遠排序
func ListParkingLots(latitude, longitude *float64) ([]models.ParkingLotResponse, error) {
	var lots []models.ParkingLot
	if err := database.DB.Find(&lots).Error; err != nil {
		log.Printf("Failed to query parking lots: %v", err)
		return nil, fmt.Errorf("failed to query parking lots: %w", err)
	}

	responses := make([]models.ParkingLotResponse, len(lots))
	for i, lot := range lots {
		responses[i] = lot.ToResponse()
		if latitude != nil && longitude != nil {
			distance := haversineKm(*latitude, *longitude, lot.Latitude, lot.Longitude)
			responses[i].Distance = &distance
		}
	}

	if latitude != nil && longitude != nil {
		sort.Slice(responses, func(i, j int) bool {
			return *responses[i].Distance < *responses[j].Distance
		})
	}

	log.Printf("Successfully retrieved %d parking lots", len(responses))
	return responses, nil
}

// GetParkingLotByID 查詢特定停車場
func GetParkingLotByID(id int) (*models.ParkingLot, error) {
	var lot models.ParkingLot
	if err := database.DB.First(&lot, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("Failed to get parking lot by ID %d: %v", id, err)
		return nil, fmt.Errorf("failed to get parking lot by ID %d: %w", id, err)
	}
	return &lot, nil
}

// CreateParkingLot 建立停車場
func CreateParkingLot(lot *models.ParkingLot) error {
	if lot.Latitude < -90 || lot.Latitude > 90 {
		return fmt.Errorf("invalid latitude: must be between -90 and 90")
	}
	if lot.Longitude < -180 || lot.Longitude > 180 {
		return fmt.Errorf("invalid longitude: must be between -180 and 180")
	}

	lot.Status = ResolveLotStatus(lot.OccupiedSpots, lot.TotalSpots)
	if err := database.DB.Create(lot).Error; err != nil {
		log.Printf("Failed to create parking lot: %v", err)
		return fmt.Errorf("failed to create parking lot: %w", err)
	}

	log.Printf("Successfully created parking lot with ID %d", lot.ParkingLotID)
	return nil
}

// UpdateParkingLot 更新停車場欄位，容量改變時重算狀態
func UpdateParkingLot(id int, req *models.UpdateParkingLotRequest) (*models.ParkingLot, error) {
	var lot models.ParkingLot
	if err := database.DB.First(&lot, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLotNotFound
		}
		return nil, fmt.Errorf("failed to get parking lot by ID %d: %w", id, err)
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Type != nil {
		updates["type"] = *req.Type
	}
	if req.TotalSpots != nil {
		updates["total_spots"] = *req.TotalSpots
		updates["status"] = ResolveLotStatus(lot.OccupiedSpots, *req.TotalSpots)
	}
	if req.PricePerHour != nil {
		updates["price_per_hour"] = *req.PricePerHour
	}
	if req.Longitude != nil {
		updates["longitude"] = *req.Longitude
	}
	if req.Latitude != nil {
		updates["latitude"] = *req.Latitude
	}
	if len(updates) == 0 {
		return &lot, nil
	}

	if err := database.DB.Model(&lot).Updates(updates).Error; err != nil {
		log.Printf("Failed to update parking lot %d: %v", id, err)
		return nil, fmt.Errorf("failed to update parking lot %d: %w", id, err)
	}

	// 重新取回更新後的資料
	if err := database.DB.First(&lot, id).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch parking lot %d: %w", id, err)
	}

	log.Printf("Successfully updated parking lot %d", id)
	return &lot, nil
}
