package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apppayroll "github.com/hrmax/backend/internal/application/payroll"
	"github.com/hrmax/backend/internal/domain/payroll"
	"github.com/hrmax/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// RunHandler handles payroll run API endpoints
type RunHandler struct {
	BaseHandler
	runService *apppayroll.RunService
}

// NewRunHandler creates a new RunHandler
func NewRunHandler(runService *apppayroll.RunService) *RunHandler {
	return &RunHandler{runService: runService}
}

// PreviewRequest asks for one employee's calculation without persisting it
type PreviewRequest struct {
	EmployeeID string `json:"employeeId" binding:"required,uuid"`
	PeriodID   string `json:"periodId" binding:"required,uuid"`
}

// ExecuteRunRequest starts a batch payroll run for a period
type ExecuteRunRequest struct {
	PeriodID string `json:"periodId" binding:"required,uuid"`
}

// ListRunsRequest filters the run listing
type ListRunsRequest struct {
	PeriodID string `form:"period_id" binding:"omitempty,uuid"`
}

// RunResponse is the wire representation of a payroll run
type RunResponse struct {
	ID              uuid.UUID          `json:"id"`
	RunNumber       string             `json:"numero"`
	PeriodID        uuid.UUID          `json:"periodId"`
	Status          payroll.RunStatus  `json:"estado"`
	TotalEmployees  int                `json:"totalEmpleados"`
	Succeeded       int                `json:"exitosos"`
	Failed          int                `json:"fallidos"`
	TotalEarnings   decimal.Decimal    `json:"totalPercepciones"`
	TotalDeductions decimal.Decimal    `json:"totalDeducciones"`
	TotalNetPay     decimal.Decimal    `json:"totalNeto"`
	Errors          []payroll.RunError `json:"errores,omitempty"`
	StartedAt       *time.Time         `json:"startedAt,omitempty"`
	CompletedAt     *time.Time         `json:"completedAt,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
}

func toRunResponse(run *payroll.PayrollRun) RunResponse {
	return RunResponse{
		ID:              run.ID,
		RunNumber:       run.RunNumber,
		PeriodID:        run.PeriodID,
		Status:          run.Status,
		TotalEmployees:  run.TotalEmployees,
		Succeeded:       run.Succeeded,
		Failed:          run.Failed,
		TotalEarnings:   run.TotalEarnings,
		TotalDeductions: run.TotalDeductions,
		TotalNetPay:     run.TotalNetPay,
		Errors:          run.Errors,
		StartedAt:       run.StartedAt,
		CompletedAt:     run.CompletedAt,
		CreatedAt:       run.CreatedAt,
	}
}

// ResultResponse is the wire representation of one employee's calculation
type ResultResponse struct {
	EmployeeID         uuid.UUID                  `json:"employeeId"`
	PeriodID           uuid.UUID                  `json:"periodId"`
	Earnings           []payroll.EarningLine      `json:"percepciones"`
	Deductions         []payroll.DeductionLine    `json:"deducciones"`
	OtherPayments      []payroll.OtherPaymentLine `json:"otrosPagos"`
	TotalEarnings      decimal.Decimal            `json:"totalPercepciones"`
	TotalDeductions    decimal.Decimal            `json:"totalDeducciones"`
	TotalOtherPayments decimal.Decimal            `json:"totalOtrosPagos"`
	TaxableBase        decimal.Decimal            `json:"baseGravable"`
	NetPay             decimal.Decimal            `json:"netoPagar"`
	Trail              []payroll.TrailEntry       `json:"auditoria"`
}

func toResultResponse(result *payroll.Result) ResultResponse {
	return ResultResponse{
		EmployeeID:         result.EmployeeID,
		PeriodID:           result.PeriodID,
		Earnings:           result.Earnings,
		Deductions:         result.Deductions,
		OtherPayments:      result.OtherPayments,
		TotalEarnings:      result.TotalEarnings,
		TotalDeductions:    result.TotalDeductions,
		TotalOtherPayments: result.TotalOtherPayments,
		TaxableBase:        result.TaxableBase,
		NetPay:             result.NetPay,
		Trail:              result.Trail,
	}
}

// PayslipResponse is the wire representation of a persisted payslip
type PayslipResponse struct {
	ID                 uuid.UUID                  `json:"id"`
	RunID              uuid.UUID                  `json:"runId"`
	EmployeeID         uuid.UUID                  `json:"employeeId"`
	PeriodID           uuid.UUID                  `json:"periodId"`
	Earnings           []payroll.EarningLine      `json:"percepciones"`
	Deductions         []payroll.DeductionLine    `json:"deducciones"`
	OtherPayments      []payroll.OtherPaymentLine `json:"otrosPagos"`
	TotalEarnings      decimal.Decimal            `json:"totalPercepciones"`
	TotalDeductions    decimal.Decimal            `json:"totalDeducciones"`
	TotalOtherPayments decimal.Decimal            `json:"totalOtrosPagos"`
	TaxableBase        decimal.Decimal            `json:"baseGravable"`
	NetPay             decimal.Decimal            `json:"netoPagar"`
	Trail              []payroll.TrailEntry       `json:"auditoria"`
}

func toPayslipResponse(slip *payroll.Payslip) PayslipResponse {
	return PayslipResponse{
		ID:                 slip.ID,
		RunID:              slip.RunID,
		EmployeeID:         slip.EmployeeID,
		PeriodID:           slip.PeriodID,
		Earnings:           slip.Earnings,
		Deductions:         slip.Deductions,
		OtherPayments:      slip.OtherPayments,
		TotalEarnings:      slip.TotalEarnings,
		TotalDeductions:    slip.TotalDeductions,
		TotalOtherPayments: slip.TotalOtherPayments,
		TaxableBase:        slip.TaxableBase,
		NetPay:             slip.NetPay,
		Trail:              slip.Trail,
	}
}

// Preview runs the engine for one employee without persisting anything
func (h *RunHandler) Preview(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant ID")
		return
	}

	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.runService.Preview(c.Request.Context(), tenantID,
		uuid.MustParse(req.EmployeeID), uuid.MustParse(req.PeriodID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toResultResponse(result))
}

// Execute runs payroll for every active employee of the period
func (h *RunHandler) Execute(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant ID")
		return
	}

	var req ExecuteRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	run, err := h.runService.Execute(c.Request.Context(), tenantID, uuid.MustParse(req.PeriodID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toRunResponse(run))
}

// List returns the tenant's runs, optionally filtered by period
func (h *RunHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant ID")
		return
	}

	var req ListRunsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	var periodID *uuid.UUID
	if req.PeriodID != "" {
		id := uuid.MustParse(req.PeriodID)
		periodID = &id
	}

	runs, err := h.runService.ListRuns(c.Request.Context(), tenantID, periodID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]RunResponse, len(runs))
	for i := range runs {
		responses[i] = toRunResponse(&runs[i])
	}
	h.Success(c, responses)
}

// Get returns a single run by ID
func (h *RunHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant ID")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	run, err := h.runService.GetRun(c.Request.Context(), tenantID, uuid.MustParse(uri.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toRunResponse(run))
}

// Payslips returns every payslip of a run
func (h *RunHandler) Payslips(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant ID")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payslips, err := h.runService.GetPayslips(c.Request.Context(), tenantID, uuid.MustParse(uri.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]PayslipResponse, len(payslips))
	for i := range payslips {
		responses[i] = toPayslipResponse(&payslips[i])
	}
	h.Success(c, responses)
}

// payslipURI binds the run and employee path parameters
type payslipURI struct {
	ID         string `uri:"id" binding:"required,uuid"`
	EmployeeID string `uri:"employee_id" binding:"required,uuid"`
}

// Payslip returns one employee's payslip inside a run
func (h *RunHandler) Payslip(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant ID")
		return
	}

	var uri payslipURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	slip, err := h.runService.GetPayslip(c.Request.Context(), tenantID,
		uuid.MustParse(uri.ID), uuid.MustParse(uri.EmployeeID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPayslipResponse(slip))
}

// RegisterRoutes registers all payroll run routes
func (h *RunHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payrollGroup := rg.Group("/payroll")
	{
		payrollGroup.POST("/preview", h.Preview)
		payrollGroup.POST("/runs", h.Execute)
		payrollGroup.GET("/runs", h.List)
		payrollGroup.GET("/runs/:id", h.Get)
		payrollGroup.GET("/runs/:id/payslips", h.Payslips)
		payrollGroup.GET("/runs/:id/payslips/:employee_id", h.Payslip)
	}
}
