package models

// 停車場狀態：occupied_spots >= total_spots 時為 full，否則 available
const (
	LotStatusAvailable = "available"
	LotStatusFull      = "full"
)

// ParkingLot 定義停車場模型，佔用數為共用計數器
type ParkingLot struct {
	ParkingLotID  int     `json:"parking_lot_id" gorm:"primaryKey;autoIncrement"`
	Name          string  `json:"name" gorm:"type:varchar(100);not null" binding:"required,max=100"`
	Address       string  `json:"address" gorm:"type:varchar(100)" binding:"omitempty,max=100"`
	Type          string  `json:"type" gorm:"type:varchar(20);default:car" binding:"omitempty,oneof=car bike"`
	TotalSpots    int     `json:"total_spots" gorm:"type:INT;not null" binding:"gte=0"`
	OccupiedSpots int     `json:"occupied_spots" gorm:"type:INT;not null;default:0"`
	Status        string  `json:"status" gorm:"type:varchar(20);not null;default:available"`
	PricePerHour  float64 `json:"price_per_hour" gorm:"type:decimal(10,2);default:0.0" binding:"gte=0"`
	Longitude     float64 `json:"longitude" gorm:"type:decimal(9,6);default:0.0" binding:"omitempty,gte=-180,lte=180"`
	Latitude      float64 `json:"latitude" gorm:"type:decimal(9,6);default:0.0" binding:"omitempty,gte=-90,lte=90"`
}

func (ParkingLot) TableName() string {
	return "parking_lot"
}

// ParkingLotResponse 定義停車場回應結構，Distance 僅在帶座標查詢時出現
type ParkingLotResponse struct {
	ParkingLotID  int      `json:"parking_lot_id"`
	Name          string   `json:"name"`
	Address       string   `json:"address"`
	Type          string   `json:"type"`
	TotalSpots    int      `json:"total_spots"`
	OccupiedSpots int      `json:"occupied_spots"`
	Status        string   `json:"status"`
	PricePerHour  float64  `json:"price_per_hour"`
	Longitude     float64  `json:"longitude"`
	Latitude      float64  `json:"latitude"`
	Distance      *float64 `json:"distance,omitempty"` // 距離（公里）
}

func (p *ParkingLot) ToResponse() ParkingLotResponse {
	return ParkingLotResponse{
		ParkingLotID:  p.ParkingLotID,
		Name:          p.Name,
		Address:       p.Address,
		Type:          p.Type,
		TotalSpots:    p.TotalSpots,
		OccupiedSpots: p.OccupiedSpots,
		Status:        p.Status,
		PricePerHour:  p.PricePerHour,
		Longitude:     p.Longitude,
		Latitude:      p.Latitude,
	}
}

// UpdateParkingLotRequest 用於 PUT 更新
type UpdateParkingLotRequest struct {
	Name         *string  `json:"name" binding:"omitempty,max=100"`
	Address      *string  `json:"address" binding:"omitempty,max=100"`
	Type         *string  `json:"type" binding:"omitempty,oneof=car bike"`
	TotalSpots   *int     `json:"total_spots" binding:"omitempty,gte=0"`
	PricePerHour *float64 `json:"price_per_hour" binding:"omitempty,gte=0"`
	Longitude    *float64 `json:"longitude" binding:"omitempty,gte=-180,lte=180"`
	Latitude     *float64 `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
}
