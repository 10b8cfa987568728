package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"parkhub/models"
	"parkhub/services"

	"github.com/gin-gonic/gin"
)

// StartSessionInput 定義用於綁定請求的輸入結構體
type StartSessionInput struct {
	ParkingLotID int    `json:"parking_lot_id" binding:"required,gt=0"`
	VehicleType  string `json:"vehicle_type" binding:"omitempty,oneof=car bike"`
}

// BookParkingInput 預約輸入，Slots 未帶時預設 1
type BookParkingInput struct {
	ParkingLotID int    `json:"parking_lot_id" binding:"required,gt=0"`
	Slots        *int   `json:"slots"`
	StartTime    string `json:"start_time" binding:"required"`
	EndTime      string `json:"end_time" binding:"required"`
}

// parseSessionTime 解析時間字符串，接受 RFC 3339 或不帶時區格式（視為 UTC）
func parseSessionTime(timeStr string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, timeStr)
	if err == nil {
		return t.UTC(), nil
	}
	t, err = time.Parse("2006-01-02T15:04:05", timeStr)
	if err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("time must be in 'YYYY-MM-DDThh:mm:ss' or RFC 3339 format")
}

// currentUserID 從中介層注入的上下文取出 user_id
func currentUserID(c *gin.Context) (int, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		ErrorResponse(c, http.StatusUnauthorized, "未授權")
		return 0, false
	}
	userIDInt, ok := userID.(int)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "未授權")
		return 0, false
	}
	return userIDInt, true
}

// StartSession 使用者直接開始停車
func StartSession(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input StartSessionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Printf("Invalid input data: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料")
		return
	}

	session, err := services.StartSession(userID, input.ParkingLotID, input.VehicleType)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrActiveSessionExists):
			ErrorResponse(c, http.StatusBadRequest, "已有進行中的停車")
		case errors.Is(err, services.ErrLotNotFound):
			ErrorResponse(c, http.StatusNotFound, "停車場不存在")
		case errors.Is(err, services.ErrInsufficientCapacity):
			ErrorResponse(c, http.StatusBadRequest, "停車場已滿")
		default:
			log.Printf("Failed to start session for user %d: %v", userID, err)
			ErrorResponse(c, http.StatusInternalServerError, "開始停車失敗")
		}
		return
	}

	SuccessResponse(c, http.StatusCreated, "停車開始", session.ToSimpleResponse())
}

// BookParking 預約停車位資料檢查
func BookParking(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input BookParkingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Printf("Invalid input data: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "請提供停車場 ID、開始時間和結束時間")
		return
	}

	slots := 1
	if input.Slots != nil {
		slots = *input.Slots
	}
	if slots < 1 {
		ErrorResponse(c, http.StatusBadRequest, "slots must be a positive whole number")
		return
	}

	startTime, err := parseSessionTime(input.StartTime)
	if err != nil {
		log.Printf("Failed to parse start_time %s: %v", input.StartTime, err)
		ErrorResponse(c, http.StatusBadRequest, "無效的開始時間格式")
		return
	}

	endTime, err := parseSessionTime(input.EndTime)
	if err != nil {
		log.Printf("Failed to parse end_time %s: %v", input.EndTime, err)
		ErrorResponse(c, http.StatusBadRequest, "無效的結束時間格式")
		return
	}

	if !endTime.After(startTime) {
		ErrorResponse(c, http.StatusBadRequest, "結束時間必須晚於開始時間")
		return
	}

	session, err := services.BookParking(userID, input.ParkingLotID, slots, startTime, endTime)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLotNotFound):
			ErrorResponse(c, http.StatusNotFound, "停車場不存在")
		case errors.Is(err, services.ErrInsufficientCapacity):
			ErrorResponse(c, http.StatusBadRequest, "停車場剩餘車位不足")
		default:
			log.Printf("Failed to book parking for user %d: %v", userID, err)
			ErrorResponse(c, http.StatusInternalServerError, "預約失敗")
		}
		return
	}

	SuccessResponse(c, http.StatusCreated, "預約成功", session.ToSimpleResponse())
}

// GetActiveSession 查詢目前進行中的停車，不存在時 data 為空
func GetActiveSession(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	session, err := services.GetActiveSession(userID)
	if err != nil {
		log.Printf("Failed to get active session for user %d: %v", userID, err)
		ErrorResponse(c, http.StatusInternalServerError, "查詢失敗")
		return
	}
	if session == nil {
		SuccessResponse(c, http.StatusOK, "目前沒有進行中的停車", nil)
		return
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", session.ToSimpleResponse())
}

// GetBookings 查詢自己的所有 session，由新到舊
func GetBookings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	sessions, err := services.ListBookings(userID)
	if err != nil {
		log.Printf("Failed to list bookings for user %d: %v", userID, err)
		ErrorResponse(c, http.StatusInternalServerError, "查詢失敗")
		return
	}

	responses := make([]models.SessionResponse, len(sessions))
	for i, session := range sessions {
		responses[i] = session.ToResponse()
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", responses)
}

// CancelBooking 取消自己的預約
func CancelBooking(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	bookingID, err := strconv.Atoi(c.Param("bookingId"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的預約ID")
		return
	}

	session, err := services.CancelBooking(userID, bookingID)
	if err != nil {
		if errors.Is(err, services.ErrBookingNotFound) {
			ErrorResponse(c, http.StatusNotFound, "預約不存在或無法取消")
			return
		}
		log.Printf("Failed to cancel booking %d for user %d: %v", bookingID, userID, err)
		ErrorResponse(c, http.StatusInternalServerError, "取消預約失敗")
		return
	}

	SuccessResponse(c, http.StatusOK, "預約已取消", session.ToSimpleResponse())
}

// CompleteSession 結束自己的停車並結算
func CompleteSession(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	session, err := services.CompleteSession(userID)
	if err != nil {
		if errors.Is(err, services.ErrNoActiveSession) {
			ErrorResponse(c, http.StatusNotFound, "沒有進行中的停車")
			return
		}
		log.Printf("Failed to complete session for user %d: %v", userID, err)
		ErrorResponse(c, http.StatusInternalServerError, "結算失敗")
		return
	}

	SuccessResponse(c, http.StatusOK, "停車已結束", session.ToSimpleResponse())
}
