package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"parkhub/database"
	"parkhub/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrActiveSessionExists = errors.New("an active parking session already exists")
	ErrNoActiveSession     = errors.New("no active parking session found")
	ErrBookingNotFound     = errors.New("booking not found or not cancelable")
)

// CalculateSessionCost 依進出場時間與時薪計算費用，不足一小時以一小時計
func CalculateSessionCost(startTime, endTime time.Time, pricePerHour float64) (float64, error) {
	if endTime.Before(startTime) {
		log.Printf("end_time %v is before start_time %v", endTime, startTime)
		return 0, fmt.Errorf("end_time %v cannot be earlier than start_time %v", endTime, startTime)
	}
	if pricePerHour < 0 {
		return 0, fmt.Errorf("invalid price_per_hour: %.2f", pricePerHour)
	}

	durationMinutes := endTime.Sub(startTime).Minutes()
	durationHours := math.Ceil(durationMinutes / 60.0)
	if durationHours < 1 {
		durationHours = 1 // 最低計費一小時
	}

	return durationHours * pricePerHour, nil
}

// releasedSlots 結束 session 時要釋放的車位數
func releasedSlots(session *models.ParkingSession) int {
	if session.Slots < 1 {
		return 1
	}
	return session.Slots
}

// StartSession 使用者自行開始停車（直接 active，佔 1 位）
func StartSession(userID, lotID int, vehicleType string) (*models.ParkingSession, error) {
	existing, err := GetActiveSession(userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		log.Printf("User %d already has an active session %d", userID, existing.SessionID)
		return nil, ErrActiveSessionExists
	}

	now := time.Now().UTC()
	session := &models.ParkingSession{
		UserID:       userID,
		ParkingLotID: lotID,
		Status:       models.SessionStatusActive,
		VehicleType:  vehicleType,
		Slots:        1,
		StartTime:    &now,
		QRCode:       uuid.NewString(),
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := reserveLotSlots(tx, lotID, 1); err != nil {
			return err
		}
		if err := tx.Create(session).Error; err != nil {
			return fmt.Errorf("failed to create parking session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("User %d started session %d at parking lot %d", userID, session.SessionID, lotID)
	return session, nil
}

// BookParking 預約停車位（booked，佔 slots 位）。
// 容量檢查與累加在同一條 UPDATE 完成，兩個併發預約不會同時通過
func BookParking(userID, lotID, slots int, startTime, endTime time.Time) (*models.ParkingSession, error) {
	if slots < 1 {
		return nil, fmt.Errorf("slots must be a positive whole number")
	}
	if !endTime.After(startTime) {
		return nil, fmt.Errorf("end_time must be after start_time")
	}

	session := &models.ParkingSession{
		UserID:       userID,
		ParkingLotID: lotID,
		Status:       models.SessionStatusBooked,
		Slots:        slots,
		StartTime:    &startTime,
		EndTime:      &endTime,
		QRCode:       uuid.NewString(),
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := reserveLotSlots(tx, lotID, slots); err != nil {
			return err
		}
		if err := tx.Create(session).Error; err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	emitNotification(userID, models.NotificationTypeBooking, "預約成功",
		fmt.Sprintf("已為您保留 %d 個車位", slots), lotID, session.SessionID)

	log.Printf("User %d booked %d slots at parking lot %d (session %d)", userID, slots, lotID, session.SessionID)
	return session, nil
}

// GetActiveSession 查詢使用者目前 active 的 session，不存在時回傳 nil
func GetActiveSession(userID int) (*models.ParkingSession, error) {
	var session models.ParkingSession
	if err := database.DB.
		Where("user_id = ? AND status = ?", userID, models.SessionStatusActive).
		Order("created_at DESC").
		First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("Failed to query active session for user %d: %v", userID, err)
		return nil, fmt.Errorf("failed to query active session: %w", err)
	}
	return &session, nil
}

// ListBookings 查詢使用者所有 session，由新到舊，並帶出停車場資料
func ListBookings(userID int) ([]models.ParkingSession, error) {
	var sessions []models.ParkingSession
	if err := database.DB.
		Preload("ParkingLot").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&sessions).Error; err != nil {
		log.Printf("Failed to query bookings for user %d: %v", userID, err)
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	log.Printf("Successfully fetched %d sessions for user %d", len(sessions), userID)
	return sessions, nil
}

// CancelBooking 取消自己的預約並釋放車位
func CancelBooking(userID, bookingID int) (*models.ParkingSession, error) {
	var session models.ParkingSession
	if err := database.DB.
		Where("session_id = ? AND user_id = ? AND status = ?", bookingID, userID, models.SessionStatusBooked).
		First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		log.Printf("Failed to query booking %d for user %d: %v", bookingID, userID, err)
		return nil, fmt.Errorf("failed to query booking: %w", err)
	}

	canceled, err := cancelBookingSession(&session)
	if err != nil {
		return nil, err
	}

	emitNotification(userID, models.NotificationTypeBooking, "預約已取消",
		"您的停車預約已取消", canceled.ParkingLotID, canceled.SessionID)

	log.Printf("User %d canceled booking %d, released %d slots", userID, bookingID, releasedSlots(canceled))
	return canceled, nil
}

// cancelBookingSession 取消預約並釋放車位。
// 帶狀態條件更新，和並行的入場／結算／逾期掃描互搶時只有一方會成功
func cancelBookingSession(session *models.ParkingSession) (*models.ParkingSession, error) {
	now := time.Now().UTC()
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.ParkingSession{}).
			Where("session_id = ? AND status = ?", session.SessionID, models.SessionStatusBooked).
			Updates(map[string]interface{}{
				"status":   models.SessionStatusCanceled,
				"end_time": now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to cancel booking %d: %w", session.SessionID, result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrBookingNotFound // 已被別的操作處理掉
		}
		if _, err := syncLotOccupancy(tx, session.ParkingLotID, -releasedSlots(session)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	session.Status = models.SessionStatusCanceled
	session.EndTime = &now
	return session, nil
}

// settleSession 結算 active session：計費、寫入出場時間並釋放車位
func settleSession(session *models.ParkingSession) error {
	now := time.Now().UTC()
	startTime := now
	if session.StartTime != nil {
		startTime = *session.StartTime
	}

	// 孤兒 session（停車場已刪除）照樣結束，只是費用記 0
	var totalAmount float64
	lot, err := GetParkingLotByID(session.ParkingLotID)
	if err != nil {
		return err
	}
	if lot == nil {
		log.Printf("Parking lot %d no longer exists, settling session %d with zero amount",
			session.ParkingLotID, session.SessionID)
	} else {
		totalAmount, err = CalculateSessionCost(startTime, now, lot.PricePerHour)
		if err != nil {
			return fmt.Errorf("failed to calculate session cost: %w", err)
		}
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		// 帶狀態條件更新，兩個併發結算（警衛出場對上使用者自行結束）只有一方會成功，
		// 車位不會被釋放兩次
		result := tx.Model(&models.ParkingSession{}).
			Where("session_id = ? AND status = ?", session.SessionID, models.SessionStatusActive).
			Updates(map[string]interface{}{
				"status":       models.SessionStatusCompleted,
				"end_time":     now,
				"total_amount": totalAmount,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to settle session %d: %w", session.SessionID, result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNoActiveSession // 已被並行的結算處理掉
		}
		if _, err := syncLotOccupancy(tx, session.ParkingLotID, -releasedSlots(session)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	session.Status = models.SessionStatusCompleted
	session.EndTime = &now
	session.TotalAmount = totalAmount

	log.Printf("Session %d settled: parked %.2f hours, total amount %.2f",
		session.SessionID, now.Sub(startTime).Hours(), totalAmount)
	return nil
}

// CompleteSession 使用者自行結束停車並結算
func CompleteSession(userID int) (*models.ParkingSession, error) {
	session, err := GetActiveSession(userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNoActiveSession
	}

	if err := settleSession(session); err != nil {
		return nil, err
	}

	emitNotification(userID, models.NotificationTypeCheckout, "停車結束",
		fmt.Sprintf("本次停車費用 %.2f 元", session.TotalAmount), session.ParkingLotID, session.SessionID)

	return session, nil
}

// activateBooking 把 booked session 轉成 active。
// 帶狀態條件更新：預約同時被取消或逾期掃描處理掉時回報 ErrBookingNotFound
func activateBooking(booked *models.ParkingSession) error {
	now := time.Now().UTC()
	result := database.DB.Model(&models.ParkingSession{}).
		Where("session_id = ? AND status = ?", booked.SessionID, models.SessionStatusBooked).
		Updates(map[string]interface{}{
			"status":     models.SessionStatusActive,
			"start_time": now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to activate booking %d: %w", booked.SessionID, result.Error)
	}
	if result.RowsAffected == 0 {
		log.Printf("Booking %d no longer booked, activation skipped", booked.SessionID)
		return ErrBookingNotFound
	}
	booked.Status = models.SessionStatusActive
	booked.StartTime = &now
	return nil
}

// GuardEntry 警衛掃描入場：有預約就啟用（不動佔用數，預約時已保留），
// 沒有預約則建立 walk-in session 並佔 1 位
func GuardEntry(userID, lotID int) (*models.ParkingSession, error) {
	var booked models.ParkingSession
	err := database.DB.
		Where("user_id = ? AND parking_lot_id = ? AND status = ?", userID, lotID, models.SessionStatusBooked).
		Order("created_at DESC"). // 同一組合有多筆預約時取最新一筆
		First(&booked).Error

	now := time.Now().UTC()
	var session *models.ParkingSession

	switch {
	case err == nil:
		if activateErr := activateBooking(&booked); activateErr != nil {
			return nil, activateErr
		}
		session = &booked
		log.Printf("Guard entry: activated booking %d for user %d at parking lot %d", booked.SessionID, userID, lotID)

	case errors.Is(err, gorm.ErrRecordNotFound):
		// walk-in 路徑
		session = &models.ParkingSession{
			UserID:       userID,
			ParkingLotID: lotID,
			Status:       models.SessionStatusActive,
			Slots:        1,
			StartTime:    &now,
			QRCode:       uuid.NewString(),
		}
		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			if _, err := reserveLotSlots(tx, lotID, 1); err != nil {
				return err
			}
			if err := tx.Create(session).Error; err != nil {
				return fmt.Errorf("failed to create walk-in session: %w", err)
			}
			return nil
		})
		if txErr != nil {
			return nil, txErr
		}
		log.Printf("Guard entry: created walk-in session %d for user %d at parking lot %d", session.SessionID, userID, lotID)

	default:
		log.Printf("Failed to query booked session for user %d at parking lot %d: %v", userID, lotID, err)
		return nil, fmt.Errorf("failed to query booked session: %w", err)
	}

	emitNotification(userID, models.NotificationTypeCheckin, "入場成功",
		"您的車輛已入場", lotID, session.SessionID)

	return session, nil
}

// GuardExit 警衛掃描出場：結算該使用者在此停車場的 active session
func GuardExit(userID, lotID int) (*models.ParkingSession, error) {
	var session models.ParkingSession
	if err := database.DB.
		Where("user_id = ? AND parking_lot_id = ? AND status = ?", userID, lotID, models.SessionStatusActive).
		Order("created_at DESC").
		First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveSession
		}
		log.Printf("Failed to query active session for user %d at parking lot %d: %v", userID, lotID, err)
		return nil, fmt.Errorf("failed to query active session: %w", err)
	}

	if err := settleSession(&session); err != nil {
		return nil, err
	}

	emitNotification(userID, models.NotificationTypeCheckout, "出場成功",
		fmt.Sprintf("本次停車費用 %.2f 元", session.TotalAmount), lotID, session.SessionID)

	return &session, nil
}
