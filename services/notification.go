package services

import (
	"fmt"
	"log"

	"parkhub/database"
	"parkhub/models"
)

// CreateNotification 新增一筆通知記錄
func CreateNotification(userID int, notificationType, title, message string, lotID, sessionID int) (*models.Notification, error) {
	notification := &models.Notification{
		UserID:       userID,
		Type:         notificationType,
		Title:        title,
		Message:      message,
		ParkingLotID: lotID,
		SessionID:    sessionID,
	}
	if err := database.DB.Create(notification).Error; err != nil {
		log.Printf("Failed to create %s notification for user %d: %v", notificationType, userID, err)
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return notification, nil
}

// emitNotification 在 session／停車場異動提交後呼叫。
// 通知寫入失敗只記錄日誌，不影響已完成的異動。
func emitNotification(userID int, notificationType, title, message string, lotID, sessionID int) {
	if _, err := CreateNotification(userID, notificationType, title, message, lotID, sessionID); err != nil {
		log.Printf("Notification emission failed for session %d, continuing: %v", sessionID, err)
	}
}

// ListNotifications 查詢使用者通知，由新到舊
func ListNotifications(userID int) ([]models.Notification, error) {
	var notifications []models.Notification
	if err := database.DB.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notifications).Error; err != nil {
		log.Printf("Failed to query notifications for user %d: %v", userID, err)
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	return notifications, nil
}
