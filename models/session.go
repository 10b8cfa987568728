package models

import "time"

// 停車工作階段狀態機：booked → active → completed；booked → canceled
// completed / canceled 為終態，不可再變更
const (
	SessionStatusBooked    = "booked"
	SessionStatusActive    = "active"
	SessionStatusCompleted = "completed"
	SessionStatusCanceled  = "canceled"
)

type ParkingSession struct {
	SessionID    int        `json:"session_id" gorm:"primaryKey;autoIncrement"`
	UserID       int        `json:"user_id" gorm:"index;not null;type:INT"`
	ParkingLotID int        `json:"parking_lot_id" gorm:"index;not null;type:INT"`
	Status       string     `json:"status" gorm:"type:varchar(20);not null;index"`
	VehicleType  string     `json:"vehicle_type" gorm:"type:varchar(20)"`
	Slots        int        `json:"slots" gorm:"type:INT;not null;default:1"` // 預約佔用的車位數
	StartTime    *time.Time `json:"start_time" gorm:"type:datetime"`
	EndTime      *time.Time `json:"end_time" gorm:"type:datetime"`
	TotalAmount  float64    `json:"total_amount" gorm:"type:decimal(10,2);default:0.0"`
	QRCode       string     `json:"qr_code" gorm:"type:varchar(64);uniqueIndex"` // 警衛掃描用
	CreatedAt    time.Time  `json:"created_at"`
	User         User       `json:"-" gorm:"foreignKey:UserID;references:UserID"`
	ParkingLot   ParkingLot `json:"-" gorm:"foreignKey:ParkingLotID;references:ParkingLotID"`
}

func (ParkingSession) TableName() string {
	return "parking_session"
}

type SimpleSessionResponse struct {
	SessionID    int        `json:"session_id"`
	UserID       int        `json:"user_id"`
	ParkingLotID int        `json:"parking_lot_id"`
	Status       string     `json:"status"`
	VehicleType  string     `json:"vehicle_type"`
	Slots        int        `json:"slots"`
	StartTime    *time.Time `json:"start_time"`
	EndTime      *time.Time `json:"end_time"`
	TotalAmount  float64    `json:"total_amount"`
	QRCode       string     `json:"qr_code"`
	CreatedAt    time.Time  `json:"created_at"`
}

type SessionResponse struct {
	SessionID    int                `json:"session_id"`
	UserID       int                `json:"user_id"`
	ParkingLotID int                `json:"parking_lot_id"`
	Status       string             `json:"status"`
	VehicleType  string             `json:"vehicle_type"`
	Slots        int                `json:"slots"`
	StartTime    *time.Time         `json:"start_time"`
	EndTime      *time.Time         `json:"end_time"`
	TotalAmount  float64            `json:"total_amount"`
	QRCode       string             `json:"qr_code"`
	CreatedAt    time.Time          `json:"created_at"`
	ParkingLot   ParkingLotResponse `json:"parking_lot"`
}

func (s *ParkingSession) ToSimpleResponse() SimpleSessionResponse {
	return SimpleSessionResponse{
		SessionID:    s.SessionID,
		UserID:       s.UserID,
		ParkingLotID: s.ParkingLotID,
		Status:       s.Status,
		VehicleType:  s.VehicleType,
		Slots:        s.Slots,
		StartTime:    s.StartTime,
		EndTime:      s.EndTime,
		TotalAmount:  s.TotalAmount,
		QRCode:       s.QRCode,
		CreatedAt:    s.CreatedAt,
	}
}

func (s *ParkingSession) ToResponse() SessionResponse {
	return SessionResponse{
		SessionID:    s.SessionID,
		UserID:       s.UserID,
		ParkingLotID: s.ParkingLotID,
		Status:       s.Status,
		VehicleType:  s.VehicleType,
		Slots:        s.Slots,
		StartTime:    s.StartTime,
		EndTime:      s.EndTime,
		TotalAmount:  s.TotalAmount,
		QRCode:       s.QRCode,
		CreatedAt:    s.CreatedAt,
		ParkingLot:   s.ParkingLot.ToResponse(),
	}
}
