package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/staffbridge/hr-payroll/internal/application/port"
	"github.com/staffbridge/hr-payroll/internal/domain/workflow"
	"github.com/staffbridge/hr-payroll/pkg/utils"
)

// ReportService renders company-level reports as Excel workbooks
type ReportService interface {
	PayrollRegister(ctx context.Context, actor workflow.Actor, period string) ([]byte, string, error)
}

type reportServiceImpl struct {
	payslips port.PayslipRepository
	logger   *zap.Logger
}

// NewReportService creates a new ReportService
func NewReportService(payslips port.PayslipRepository, logger *zap.Logger) ReportService {
	return &reportServiceImpl{
		payslips: payslips,
		logger:   logger,
	}
}

var payrollRegisterHeaders = []string{
	"Employee", "Period", "Gross Pay", "Pension", "Tax", "Loan Deduction", "Net Pay",
}

// PayrollRegister builds the payroll register workbook for one period and
// returns the file contents plus a suggested filename
func (s *reportServiceImpl) PayrollRegister(ctx context.Context, actor workflow.Actor, period string) ([]byte, string, error) {
	if err := utils.ValidatePeriod(period); err != nil {
		return nil, "", fmt.Errorf("%w: %s", ErrValidation, err)
	}

	slips, err := s.payslips.ListByPeriod(ctx, actor.Company, period)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Payroll Register"
	f.SetSheetName(f.GetSheetName(0), sheet)

	for i, h := range payrollRegisterHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		s.setCell(f, sheet, cell, h)
	}

	var totalGross, totalNet int64
	for row, slip := range slips {
		values := []interface{}{
			slip.EmployeeName,
			slip.Period,
			slip.GrossPay,
			slip.Pension,
			slip.Tax,
			slip.LoanDeduction,
			slip.NetPay,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			s.setCell(f, sheet, cell, v)
		}
		totalGross += slip.GrossPay
		totalNet += slip.NetPay
	}

	totalRow := len(slips) + 2
	s.setCell(f, sheet, fmt.Sprintf("A%d", totalRow), "TOTAL")
	s.setCell(f, sheet, fmt.Sprintf("C%d", totalRow), totalGross)
	s.setCell(f, sheet, fmt.Sprintf("G%d", totalRow), totalNet)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.Info("Payroll register generated",
		zap.String("company_id", actor.Company),
		zap.String("period", period),
		zap.Int("rows", len(slips)))

	filename := fmt.Sprintf("payroll-register-%s.xlsx", period)
	return buf.Bytes(), filename, nil
}

func (s *reportServiceImpl) setCell(f *excelize.File, sheet, cell string, value interface{}) {
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		s.logger.Warn("Failed to set cell value",
			zap.String("sheet", sheet),
			zap.String("cell", cell),
			zap.Error(err))
	}
}
