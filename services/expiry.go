package services

import (
	"fmt"
	"log"
	"time"

	"parkhub/database"
	"parkhub/models"

	"gorm.io/gorm"
)

// CheckExpiredBookings 取消預約時段已過仍未入場的 booked session 並釋放車位。
// 由 main 的定時任務每 5 分鐘執行一次。
func CheckExpiredBookings() error {
	now := time.Now().UTC()

	var expired []models.ParkingSession
	if err := database.DB.
		Where("status = ? AND end_time IS NOT NULL AND end_time < ?", models.SessionStatusBooked, now).
		Find(&expired).Error; err != nil {
		log.Printf("Failed to query expired bookings: %v", err)
		return fmt.Errorf("failed to query expired bookings: %w", err)
	}

	if len(expired) == 0 {
		return nil
	}

	for _, session := range expired {
		session := session
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			// 再次帶狀態條件更新，避免與同時進行的入場／取消互相覆蓋
			result := tx.Model(&models.ParkingSession{}).
				Where("session_id = ? AND status = ?", session.SessionID, models.SessionStatusBooked).
				Updates(map[string]interface{}{
					"status":   models.SessionStatusCanceled,
					"end_time": now,
				})
			if result.Error != nil {
				return fmt.Errorf("failed to cancel expired booking %d: %w", session.SessionID, result.Error)
			}
			if result.RowsAffected == 0 {
				return nil // 已被別的操作處理掉
			}
			if _, err := syncLotOccupancy(tx, session.ParkingLotID, -releasedSlots(&session)); err != nil {
				return err
			}
			return nil
		})
		if err != nil {
			log.Printf("Failed to expire booking %d: %v", session.SessionID, err)
			continue
		}

		emitNotification(session.UserID, models.NotificationTypeBooking, "預約已逾期",
			"您的停車預約已超過結束時間，系統已自動取消", session.ParkingLotID, session.SessionID)
		log.Printf("Expired booking %d canceled, released %d slots at parking lot %d",
			session.SessionID, releasedSlots(&session), session.ParkingLotID)
	}

	return nil
}
