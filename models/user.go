package models

type User struct {
	UserID       int              `json:"user_id" gorm:"primaryKey;autoIncrement"`
	Name         string           `json:"name" gorm:"type:varchar(50);not null" binding:"required,max=50"`
	Email        string           `json:"email" gorm:"type:varchar(100);not null;uniqueIndex"`
	Phone        string           `json:"phone" gorm:"type:varchar(20)"`
	Password     string           `json:"password" gorm:"type:varchar(100);not null"`
	Role         string           `json:"role" gorm:"type:varchar(20);not null;default:driver" binding:"omitempty,oneof=driver guard admin"`
	LicensePlate string           `json:"license_plate" gorm:"type:varchar(20)"`
	VehicleType  string           `json:"vehicle_type" gorm:"type:varchar(20)" binding:"omitempty,oneof=car bike"`
	Sessions     []ParkingSession `json:"-" gorm:"foreignKey:UserID;references:UserID"`
}

func (User) TableName() string {
	return "user"
}

// UserResponse 回應結構不包含密碼雜湊
type UserResponse struct {
	UserID       int    `json:"user_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Role         string `json:"role"`
	LicensePlate string `json:"license_plate"`
	VehicleType  string `json:"vehicle_type"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		UserID:       u.UserID,
		Name:         u.Name,
		Email:        u.Email,
		Phone:        u.Phone,
		Role:         u.Role,
		LicensePlate: u.LicensePlate,
		VehicleType:  u.VehicleType,
	}
}
