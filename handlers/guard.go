package handlers

import (
	"errors"
	"log"
	"net/http"

	"parkhub/services"

	"github.com/gin-gonic/gin"
)

// GuardScanInput 警衛掃描 QR 後送出的資料
type GuardScanInput struct {
	UserID       int `json:"user_id" binding:"required,gt=0"`
	ParkingLotID int `json:"parking_lot_id" binding:"required,gt=0"`
}

// GuardEntry 警衛入場掃描：啟用預約或建立 walk-in session
func GuardEntry(c *gin.Context) {
	var input GuardScanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Printf("Invalid input data: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "請提供使用者 ID 和停車場 ID")
		return
	}

	session, err := services.GuardEntry(input.UserID, input.ParkingLotID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLotNotFound):
			ErrorResponse(c, http.StatusNotFound, "停車場不存在")
		case errors.Is(err, services.ErrInsufficientCapacity):
			ErrorResponse(c, http.StatusBadRequest, "停車場已滿")
		default:
			log.Printf("Guard entry failed for user %d at parking lot %d: %v", input.UserID, input.ParkingLotID, err)
			ErrorResponse(c, http.StatusInternalServerError, "入場失敗")
		}
		return
	}

	SuccessResponse(c, http.StatusOK, "入場成功", session.ToSimpleResponse())
}

// GuardExit 警衛出場掃描：結算該使用者的 active session
func GuardExit(c *gin.Context) {
	var input GuardScanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Printf("Invalid input data: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "請提供使用者 ID 和停車場 ID")
		return
	}

	session, err := services.GuardExit(input.UserID, input.ParkingLotID)
	if err != nil {
		if errors.Is(err, services.ErrNoActiveSession) {
			ErrorResponse(c, http.StatusNotFound, "沒有進行中的停車")
			return
		}
		log.Printf("Guard exit failed for user %d at parking lot %d: %v", input.UserID, input.ParkingLotID, err)
		ErrorResponse(c, http.StatusInternalServerError, "出場失敗")
		return
	}

	SuccessResponse(c, http.StatusOK, "出場成功", session.ToSimpleResponse())
}
