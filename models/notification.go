package models

import "time"

// 通知類型
const (
	NotificationTypeCheckin  = "checkin"
	NotificationTypeCheckout = "checkout"
	NotificationTypeBooking  = "booking"
)

// Notification 使用者通知，只新增不修改；實際發送（email/push）由外部系統處理
type Notification struct {
	NotificationID int       `json:"notification_id" gorm:"primaryKey;autoIncrement"`
	UserID         int       `json:"user_id" gorm:"index;not null;type:INT"`
	Type           string    `json:"type" gorm:"type:varchar(20);not null"`
	Title          string    `json:"title" gorm:"type:varchar(100);not null"`
	Message        string    `json:"message" gorm:"type:varchar(255)"`
	ParkingLotID   int       `json:"parking_lot_id" gorm:"type:INT"`
	SessionID      int       `json:"session_id" gorm:"type:INT"`
	IsRead         bool      `json:"is_read" gorm:"default:false"`
	CreatedAt      time.Time `json:"created_at"`
}

func (Notification) TableName() string {
	return "notification"
}

type NotificationResponse struct {
	NotificationID int       `json:"notification_id"`
	UserID         int       `json:"user_id"`
	Type           string    `json:"type"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	ParkingLotID   int       `json:"parking_lot_id"`
	SessionID      int       `json:"session_id"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}

func (n *Notification) ToResponse() NotificationResponse {
	return NotificationResponse{
		NotificationID: n.NotificationID,
		UserID:         n.UserID,
		Type:           n.Type,
		Title:          n.Title,
		Message:        n.Message,
		ParkingLotID:   n.ParkingLotID,
		SessionID:      n.SessionID,
		IsRead:         n.IsRead,
		CreatedAt:      n.CreatedAt,
	}
}
