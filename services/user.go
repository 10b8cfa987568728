package services

import (
	"errors"
	"fmt"
	"log"

	"parkhub/database"
	"parkhub/models"
	"parkhub/utils"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// RegisterUser 註冊使用者
func RegisterUser(user *models.User) error {
	// 檢查是否有重複的 email
	var existingUser models.User
	if err := database.DB.Where("email = ?", user.Email).First(&existingUser).Error; err == nil {
		return fmt.Errorf("email %s is already in use", user.Email)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Failed to check for duplicate email: %v", err)
		return fmt.Errorf("failed to check for duplicate email: %w", err)
	}

	if user.Role == "" {
		user.Role = "driver"
	}
	if user.Role != "driver" && user.Role != "guard" && user.Role != "admin" {
		return fmt.Errorf("invalid role: must be 'driver', 'guard' or 'admin'")
	}

	// 哈希密碼
	hashedPassword, err := utils.HashPassword(user.Password)
	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = hashedPassword

	// 使用 GORM 插入數據
	if err := database.DB.Create(user).Error; err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return fmt.Errorf("email %s is already in use", user.Email)
		}
		log.Printf("Failed to register user: %v", err)
		return fmt.Errorf("failed to register user: %w", err)
	}

	log.Printf("Successfully registered user with ID %d", user.UserID)
	return nil
}

// LoginUser 驗證登入憑證
func LoginUser(email, password string) (*models.User, error) {
	var user models.User
	if err := database.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("User with email %s not found", email)
			return nil, ErrInvalidCredentials
		}
		log.Printf("Failed to login user: %v", err)
		return nil, fmt.Errorf("failed to login user: %w", err)
	}

	// 驗證密碼
	if !utils.CheckPasswordHash(password, user.Password) {
		log.Printf("Invalid password for email %s", email)
		return nil, ErrInvalidCredentials
	}

	log.Printf("User with ID %d logged in successfully", user.UserID)
	return &user, nil
}

// GetUserByID 根據ID查詢使用者
func GetUserByID(id int) (*models.User, error) {
	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("Failed to get user by ID %d: %v", id, err)
		return nil, fmt.Errorf("failed to get user by ID %d: %w", id, err)
	}
	return &user, nil
}
