package handlers

import (
	"log"
	"net/http"

	"parkhub/models"
	"parkhub/services"

	"github.com/gin-gonic/gin"
)

// GetNotifications 查詢自己的通知，由新到舊
func GetNotifications(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	notifications, err := services.ListNotifications(userID)
	if err != nil {
		log.Printf("Failed to list notifications for user %d: %v", userID, err)
		ErrorResponse(c, http.StatusInternalServerError, "查詢通知失敗")
		return
	}

	responses := make([]models.NotificationResponse, len(notifications))
	for i, notification := range notifications {
		responses[i] = notification.ToResponse()
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", responses)
}
