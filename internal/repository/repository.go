package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 저장소 묶음
type Repository struct {
	db *gorm.DB

	TransportRequest TransportRequestRepository
	Employee         EmployeeRepository
}

// NewRepository 저장소 묶음 생성
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:               db,
		TransportRequest: NewTransportRequestRepo(db),
		Employee:         NewEmployeeRepo(db),
	}
}

// Transaction fn 을 하나의 DB 트랜잭션으로 실행한다. fn 이 받는 Repository 는
// 트랜잭션에 묶여 있으며 fn 이 오류를 돌려주면 전체가 롤백된다.
// DB 가 없는(테스트용으로 직접 조립한) Repository 는 fn 을 그대로 호출한다.
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}
