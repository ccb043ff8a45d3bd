package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/seunghochoi2018/soslab/internal/model"
	pkgerrors "github.com/seunghochoi2018/soslab/pkg/errors"
)

// EmployeeRepository 직원 데이터 접근
type EmployeeRepository interface {
	List(ctx context.Context) ([]model.Employee, error)
	GetByID(ctx context.Context, id string) (*model.Employee, error)
	Create(ctx context.Context, e *model.Employee) error
	Update(ctx context.Context, e *model.Employee) error
	Delete(ctx context.Context, id string) error
	// AddPoints total_points 에 delta 를 더한다 (SQL 측 가산, 누계 재계산 없음)
	AddPoints(ctx context.Context, id string, delta int64) error
}

type employeeRepo struct {
	db *gorm.DB
}

// NewEmployeeRepo EmployeeRepository 생성
func NewEmployeeRepo(db *gorm.DB) EmployeeRepository {
	return &employeeRepo{db: db}
}

func (r *employeeRepo) List(ctx context.Context) ([]model.Employee, error) {
	var rows []model.Employee
	err := r.db.WithContext(ctx).Order("employee_id ASC").Find(&rows).Error
	return rows, err
}

func (r *employeeRepo) GetByID(ctx context.Context, id string) (*model.Employee, error) {
	var e model.Employee
	if err := r.db.WithContext(ctx).Where("employee_id = ?", id).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *employeeRepo) Create(ctx context.Context, e *model.Employee) error {
	if e.Version == 0 {
		e.Version = 1
	}
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *employeeRepo) Update(ctx context.Context, e *model.Employee) error {
	oldVersion := e.Version
	result := r.db.WithContext(ctx).
		Model(&model.Employee{}).
		Where("employee_id = ? AND version = ?", e.EmployeeID, oldVersion).
		Updates(map[string]interface{}{
			"name":       e.Name,
			"department": e.Department,
			"updated_by": e.UpdatedBy,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	e.Version = oldVersion + 1
	return nil
}

func (r *employeeRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("employee_id = ?", id).Delete(&model.Employee{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *employeeRepo) AddPoints(ctx context.Context, id string, delta int64) error {
	result := r.db.WithContext(ctx).
		Model(&model.Employee{}).
		Where("employee_id = ?", id).
		Updates(map[string]interface{}{
			"total_points": gorm.Expr("total_points + ?", delta),
			"version":      gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
