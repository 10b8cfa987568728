package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"parkhub/models"
	"parkhub/services"

	"github.com/gin-gonic/gin"
)

// GetParkingLots 查詢所有停車場；帶 lat/lon 時附上距離並由近到遠排序
func GetParkingLots(c *gin.Context) {
	var latitude, longitude *float64

	latStr := c.Query("lat")
	lonStr := c.Query("lon")
	if latStr != "" && lonStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, "無效的緯度")
			return
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, "無效的經度")
			return
		}
		latitude = &lat
		longitude = &lon
	}

	lots, err := services.ListParkingLots(latitude, longitude)
	if err != nil {
		log.Printf("Failed to list parking lots: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "查詢停車場失敗")
		return
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", lots)
}

// GetParkingLot 查詢特定停車場
func GetParkingLot(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的停車場ID")
		return
	}

	lot, err := services.GetParkingLotByID(id)
	if err != nil {
		log.Printf("Failed to get parking lot %d: %v", id, err)
		ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤")
		return
	}
	if lot == nil {
		ErrorResponse(c, http.StatusNotFound, "停車場不存在")
		return
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", lot.ToResponse())
}

// CreateParkingLot 建立停車場（admin）
func CreateParkingLot(c *gin.Context) {
	var lot models.ParkingLot
	if err := c.ShouldBindJSON(&lot); err != nil {
		log.Printf("Invalid input data: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料")
		return
	}

	if err := services.CreateParkingLot(&lot); err != nil {
		log.Printf("Failed to create parking lot: %v", err)
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	SuccessResponse(c, http.StatusCreated, "停車場建立成功", lot.ToResponse())
}

// UpdateParkingLot 更新停車場（admin）
func UpdateParkingLot(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的停車場ID")
		return
	}

	var req models.UpdateParkingLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("Invalid input data: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料")
		return
	}

	lot, err := services.UpdateParkingLot(id, &req)
	if err != nil {
		if errors.Is(err, services.ErrLotNotFound) {
			ErrorResponse(c, http.StatusNotFound, "停車場不存在")
			return
		}
		log.Printf("Failed to update parking lot %d: %v", id, err)
		ErrorResponse(c, http.StatusInternalServerError, "更新停車場失敗")
		return
	}

	SuccessResponse(c, http.StatusOK, "停車場更新成功", lot.ToResponse())
}
