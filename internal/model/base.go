package model

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel 통용 감사 필드
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedBy *string   `gorm:"type:varchar(50)"                   json:"created_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	UpdatedBy *string   `gorm:"type:varchar(50)"                   json:"updated_by,omitempty"`
}

// SoftDelete 소프트 삭제 필드
type SoftDelete struct {
	DeletedAt gorm.DeletedAt `gorm:"index"           json:"deleted_at,omitempty"`
	DeletedBy *string        `gorm:"type:varchar(50)" json:"deleted_by,omitempty"`
}

// DateLayout 날짜 문자열 형식 (request_date, accumulate_date 등)
const DateLayout = "2006-01-02"
