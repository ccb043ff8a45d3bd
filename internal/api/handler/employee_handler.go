package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/seunghochoi2018/soslab/internal/dto"
	"github.com/seunghochoi2018/soslab/internal/service"
	pkgerrors "github.com/seunghochoi2018/soslab/pkg/errors"
	"github.com/seunghochoi2018/soslab/pkg/redis"
	"github.com/seunghochoi2018/soslab/pkg/response"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// EmployeeHandler 직원 HTTP 처리기
type EmployeeHandler struct {
	employeeSvc service.EmployeeService
}

// NewEmployeeHandler EmployeeHandler 생성
func NewEmployeeHandler(employeeSvc service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employeeSvc: employeeSvc}
}

// List 직원 목록 (누계 내림차순)
// GET /api/v1/employees
func (h *EmployeeHandler) List(c *gin.Context) {
	list, err := h.employeeSvc.List(c.Request.Context())
	if err != nil {
		handleEmployeeError(c, err)
		return
	}
	response.OK(c, list)
}

// Get 직원 상세
// GET /api/v1/employees/:id
func (h *EmployeeHandler) Get(c *gin.Context) {
	emp, err := h.employeeSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleEmployeeError(c, err)
		return
	}
	response.OK(c, emp)
}

// Create 직원 등록
// POST /api/v1/employees
func (h *EmployeeHandler) Create(c *gin.Context) {
	username, ok := MustGetUsername(c)
	if !ok {
		return
	}

	var req dto.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParam, "입력값이 올바르지 않습니다")
		return
	}

	emp, err := h.employeeSvc.Create(c.Request.Context(), &req, username)
	if err != nil {
		handleEmployeeError(c, err)
		return
	}
	response.Created(c, emp)
}

// Update 직원 이름/부서 수정
// PUT /api/v1/employees/:id
func (h *EmployeeHandler) Update(c *gin.Context) {
	username, ok := MustGetUsername(c)
	if !ok {
		return
	}

	var req dto.UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParam, "입력값이 올바르지 않습니다")
		return
	}

	emp, err := h.employeeSvc.Update(c.Request.Context(), c.Param("id"), &req, username)
	if err != nil {
		handleEmployeeError(c, err)
		return
	}
	response.OK(c, emp)
}

// Delete 직원 삭제
// DELETE /api/v1/employees/:id
func (h *EmployeeHandler) Delete(c *gin.Context) {
	if err := h.employeeSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleEmployeeError(c, err)
		return
	}
	response.OK(c, nil)
}

// Import 엑셀/CSV 일괄 등록
// POST /api/v1/employees/import (multipart, field "file")
func (h *EmployeeHandler) Import(c *gin.Context) {
	username, ok := MustGetUsername(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, response.CodeInvalidParam, "업로드할 파일이 필요합니다")
		return
	}
	defer file.Close()

	rows, err := h.employeeSvc.ParseImportFile(file, header.Filename)
	if err != nil {
		handleEmployeeError(c, err)
		return
	}

	result, err := h.employeeSvc.Import(c.Request.Context(), rows, username)
	if err != nil {
		handleEmployeeError(c, err)
		return
	}
	response.OK(c, result)
}

// Template 일괄 등록 양식 내려받기
// GET /api/v1/employees/template
func (h *EmployeeHandler) Template(c *gin.Context) {
	buf, filename, err := h.employeeSvc.Template()
	if err != nil {
		response.InternalError(c)
		return
	}
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxMIME, buf.Bytes())
}

// AdjustPoints 포인트 수동 조정
// POST /api/v1/employees/:id/points
func (h *EmployeeHandler) AdjustPoints(c *gin.Context) {
	username, ok := MustGetUsername(c)
	if !ok {
		return
	}

	var req dto.AdjustPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParam, "입력값이 올바르지 않습니다")
		return
	}

	result, err := h.employeeSvc.AdjustPoints(c.Request.Context(), c.Param("id"), &req, username)
	if err != nil {
		handleEmployeeError(c, err)
		return
	}
	response.OK(c, result)
}

func handleEmployeeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.NotFound(c, response.CodeEmployeeNotFound, err.Error())
	case errors.Is(err, service.ErrEmployeeExists):
		response.Conflict(c, response.CodeEmployeeExists, err.Error())
	case errors.Is(err, service.ErrZeroAdjustment):
		response.BadRequest(c, response.CodeZeroAdjustment, err.Error())
	case errors.Is(err, service.ErrImportFileType),
		errors.Is(err, service.ErrImportNoData),
		errors.Is(err, service.ErrImportTooManyRows),
		errors.Is(err, service.ErrImportBadHeader):
		response.BadRequest(c, response.CodeImportInvalid, err.Error())
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, response.CodeEmployeeConflict, err.Error())
	case errors.Is(err, redis.ErrLockTimeout):
		response.Conflict(c, response.CodeEmployeeLockTimeout, "")
	default:
		response.InternalError(c)
	}
}
