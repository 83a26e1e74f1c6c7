package models

import (
	"time"
)

// Role 员工角色
type Role struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"type:varchar(30);uniqueIndex;not null" json:"name"`
	Description *string   `gorm:"type:varchar(255)" json:"description,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 表名
func (Role) TableName() string {
	return "roles"
}

// 角色名称
const (
	RoleAdmin        = "Admin"
	RoleReceptionist = "Recepcionista"
	RoleCleaning     = "Limpieza"
	RoleMaintenance  = "Mantenimiento"
)

// RoleNames 所有角色，按种子顺序
var RoleNames = []string{RoleAdmin, RoleReceptionist, RoleCleaning, RoleMaintenance}

// Employee 员工
type Employee struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AuthID    *string   `gorm:"type:varchar(36);uniqueIndex" json:"auth_id,omitempty"`
	Email     string    `gorm:"type:varchar(120);index;not null" json:"email"`
	FirstName string    `gorm:"type:varchar(80);not null" json:"first_name"`
	LastName  string    `gorm:"type:varchar(80)" json:"last_name"`
	Phone     *string   `gorm:"type:varchar(30)" json:"phone,omitempty"`
	RoleID    int64     `gorm:"index;not null" json:"role_id"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// 关联
	Role *Role `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}

// TableName 表名
func (Employee) TableName() string {
	return "employees"
}

// FullName 员工全名
func (e *Employee) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

// RoleName 角色名，未加载时为空
func (e *Employee) RoleName() string {
	if e.Role == nil {
		return ""
	}
	return e.Role.Name
}

// AuthAccount 登录账号（身份提供方）
type AuthAccount struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	AuthID       string     `gorm:"type:varchar(36);uniqueIndex;not null" json:"auth_id"`
	Email        string     `gorm:"type:varchar(120);uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"type:varchar(255);not null" json:"-"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	LastLoginIP  *string    `gorm:"type:varchar(45)" json:"last_login_ip,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (AuthAccount) TableName() string {
	return "auth_accounts"
}

// OperationLog 员工操作日志
type OperationLog struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	EmployeeID int64     `gorm:"index;not null" json:"employee_id"`
	Module     string    `gorm:"type:varchar(50);not null" json:"module"`
	Action     string    `gorm:"type:varchar(50);not null" json:"action"`
	TargetType *string   `gorm:"type:varchar(50)" json:"target_type,omitempty"`
	TargetID   *int64    `json:"target_id,omitempty"`
	BeforeData JSON      `gorm:"type:jsonb" json:"before_data,omitempty"`
	AfterData  JSON      `gorm:"type:jsonb" json:"after_data,omitempty"`
	StatusCode int       `gorm:"not null;default:0" json:"status_code"`
	IP         string    `gorm:"type:varchar(45);not null" json:"ip"`
	UserAgent  *string   `gorm:"type:varchar(255)" json:"user_agent,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`

	// 关联
	Employee *Employee `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
}

// TableName 表名
func (OperationLog) TableName() string {
	return "operation_logs"
}
