package handlers

import (
	"log"
	"net/http"
	"regexp"

	"parkhub/models"
	"parkhub/services"
	"parkhub/utils"

	"github.com/gin-gonic/gin"
)

// 電子郵件驗證 regex
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// RegisterUser 註冊使用者資料檢查
func RegisterUser(c *gin.Context) {
	var user models.User
	if err := c.ShouldBindJSON(&user); err != nil {
		log.Printf("Invalid input data: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料")
		return
	}

	// 驗證電子郵件
	if user.Email == "" || !emailRegex.MatchString(user.Email) {
		ErrorResponse(c, http.StatusBadRequest, "請提供有效的電子郵件地址")
		return
	}

	// 驗證密碼（最少 8 個字元，至少一個字母和一個數字）
	if len(user.Password) < 8 ||
		!regexp.MustCompile(`[a-zA-Z]`).MatchString(user.Password) ||
		!regexp.MustCompile(`[0-9]`).MatchString(user.Password) {
		ErrorResponse(c, http.StatusBadRequest, "密碼必須至少8個字符，包含字母和數字")
		return
	}

	if err := services.RegisterUser(&user); err != nil {
		log.Printf("Failed to register user: %v", err)
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	SuccessResponse(c, http.StatusCreated, "註冊成功", user.ToResponse())
}

// LoginUser 登入並簽發 token
func LoginUser(c *gin.Context) {
	var loginData struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&loginData); err != nil {
		log.Printf("Invalid input data: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料")
		return
	}

	if !emailRegex.MatchString(loginData.Email) {
		ErrorResponse(c, http.StatusBadRequest, "請提供有效的電子郵件地址")
		return
	}

	user, err := services.LoginUser(loginData.Email, loginData.Password)
	if err != nil {
		log.Printf("Login failed for email %s: %v", loginData.Email, err)
		ErrorResponse(c, http.StatusUnauthorized, "登入失敗，檢查電子郵件或密碼")
		return
	}

	token, err := utils.GenerateToken(user.UserID, user.Role)
	if err != nil {
		log.Printf("Failed to generate token for user %d: %v", user.UserID, err)
		ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤")
		return
	}

	SuccessResponse(c, http.StatusOK, "登入成功", gin.H{
		"token": token,
		"user":  user.ToResponse(),
	})
}

// GetUserProfile 查詢自己的個人資料
func GetUserProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := services.GetUserByID(userID)
	if err != nil {
		log.Printf("Failed to get profile for user %d: %v", userID, err)
		ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤")
		return
	}
	if user == nil {
		ErrorResponse(c, http.StatusNotFound, "使用者不存在")
		return
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", user.ToResponse())
}
