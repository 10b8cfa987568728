package routes

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"parkhub/handlers"
	"parkhub/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware 驗證 JWT token，並提取 user_id 和 role
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			handlers.ErrorResponse(c, http.StatusUnauthorized, "缺少 Authorization 標頭")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			handlers.ErrorResponse(c, http.StatusUnauthorized, "無效的 Authorization 格式")
			c.Abort()
			return
		}

		// 明確要求檢查 exp 字段
		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return utils.JWTSecret, nil
		}, jwt.WithExpirationRequired())

		if err != nil {
			log.Printf("Token parsing error: %v", err)
			if errors.Is(err, jwt.ErrTokenExpired) {
				handlers.ErrorResponse(c, http.StatusUnauthorized, "token 已過期")
			} else {
				handlers.ErrorResponse(c, http.StatusUnauthorized, "無效的 token")
			}
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !token.Valid {
			handlers.ErrorResponse(c, http.StatusUnauthorized, "無效的 token 內容")
			c.Abort()
			return
		}

		// 確認 user_id 字段
		userID, ok := claims["user_id"].(float64)
		if !ok {
			log.Printf("Missing or invalid user_id in token")
			handlers.ErrorResponse(c, http.StatusUnauthorized, "無效的使用者 ID")
			c.Abort()
			return
		}

		// 確認 role 字段
		role, ok := claims["role"].(string)
		if !ok || (role != "driver" && role != "guard" && role != "admin") {
			log.Printf("Missing or invalid role in token: %v", claims["role"])
			handlers.ErrorResponse(c, http.StatusUnauthorized, "無效的角色")
			c.Abort()
			return
		}

		c.Set("user_id", int(userID))
		c.Set("role", role) // 將 role 存入上下文
		c.Next()
	}
}

// RoleMiddleware 檢查使用者角色是否符合要求
func RoleMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			handlers.ErrorResponse(c, http.StatusUnauthorized, "無法獲取角色資訊")
			c.Abort()
			return
		}

		roleStr, ok := role.(string)
		if !ok {
			handlers.ErrorResponse(c, http.StatusUnauthorized, "無效的角色類型")
			c.Abort()
			return
		}

		// 允許 admin 角色訪問所有端點
		if roleStr == "admin" {
			c.Next()
			return
		}

		for _, allowedRole := range allowedRoles {
			if roleStr == allowedRole {
				c.Next()
				return
			}
		}

		handlers.ErrorResponse(c, http.StatusForbidden, "權限不足")
		c.Abort()
	}
}

func Path(router *gin.RouterGroup) {
	// 版本控制
	v1 := router.Group("/v1")
	{
		// 測試路由
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(200, gin.H{"message": "pong"})
		})

		// 使用者路由
		users := v1.Group("/users")
		{
			// 公開路由：不需要 token 驗證
			users.POST("/register", handlers.RegisterUser) // 註冊使用者
			users.POST("/login", handlers.LoginUser)       // 登入並獲取 token
		}

		// 受保護路由：需要 token 驗證
		authed := v1.Group("")
		authed.Use(AuthMiddleware())
		{
			// 查看個人資料：任何已認證的用戶都可以訪問
			authed.GET("/profile", handlers.GetUserProfile)

			// 停車場
			authed.GET("/lots", handlers.GetParkingLots)                             // 查詢停車場（可帶座標排序）
			authed.GET("/lots/:id", handlers.GetParkingLot)                          // 查詢特定停車場
			authed.POST("/lots", RoleMiddleware("admin"), handlers.CreateParkingLot) // 建立停車場
			authed.PUT("/lots/:id", RoleMiddleware("admin"), handlers.UpdateParkingLot)

			// 停車 session
			authed.GET("/active-session", handlers.GetActiveSession)            // 查詢進行中的停車
			authed.POST("/start-session", handlers.StartSession)                // 直接開始停車
			authed.POST("/book", handlers.BookParking)                          // 預約停車位
			authed.GET("/bookings", handlers.GetBookings)                       // 查詢自己的所有紀錄
			authed.PATCH("/bookings/:bookingId/cancel", handlers.CancelBooking) // 取消預約
			authed.POST("/complete-session", handlers.CompleteSession)          // 結束停車並結算

			// 通知
			authed.GET("/notifications", handlers.GetNotifications)

			// 警衛路由：僅 guard 和 admin 可以操作
			guard := authed.Group("/guard")
			guard.Use(RoleMiddleware("guard"))
			{
				guard.POST("/entry", handlers.GuardEntry) // 入場掃描
				guard.POST("/exit", handlers.GuardExit)   // 出場掃描
			}
		}
	}
}
