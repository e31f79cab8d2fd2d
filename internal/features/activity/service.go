package activity

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"go-helpdesk/internal/engine"
)

// Service is the activity feed: it receives every execution report the
// dispatcher produces, persists it, and pushes it to live subscribers.
type Service interface {
	Record(ctx context.Context, report engine.ExecutionReport)
	List(ctx context.Context, filter Filter) ([]engine.ExecutionReport, error)
	ExportToExcel(ctx context.Context, filter Filter) ([]byte, string, error)
}

type ServiceImpl struct {
	Repo   Repository
	Hub    *Hub
	Logger *zap.Logger
}

func NewService(repo Repository, hub *Hub, logger *zap.Logger) Service {
	return &ServiceImpl{
		Repo:   repo,
		Hub:    hub,
		Logger: logger,
	}
}

// Record never returns an error: a lost activity record must not disturb the
// dispatch that produced it.
func (s *ServiceImpl) Record(ctx context.Context, report engine.ExecutionReport) {
	if err := s.Repo.Insert(ctx, report); err != nil {
		s.Logger.Error("persist execution report",
			zap.String("report_id", report.ID),
			zap.String("rule_id", report.RuleID),
			zap.Error(err),
		)
	}
	s.Hub.Broadcast(report)
}

func (s *ServiceImpl) List(ctx context.Context, filter Filter) ([]engine.ExecutionReport, error) {
	return s.Repo.List(ctx, filter)
}

func (s *ServiceImpl) ExportToExcel(ctx context.Context, filter Filter) ([]byte, string, error) {
	reports, err := s.Repo.List(ctx, filter)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Rule Activity"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	columns := []string{"Executed At", "Trigger", "Rule", "Ticket", "Fired", "Skip Reason", "Failed", "Partial", "Actions"}
	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, report := range reports {
		row := []interface{}{
			report.ExecutedAt.Format("2006-01-02 15:04:05"),
			report.Trigger,
			report.RuleName,
			report.TicketID,
			report.Fired,
			report.SkipReason,
			report.Failed,
			report.PartialFailure,
			summarizeActions(report.Actions),
		}
		for colIdx, val := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, val)
		}
	}

	for i := range columns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, 18)
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}
	return buffer.Bytes(), "rule_activity.xlsx", nil
}

func summarizeActions(outcomes []engine.ActionOutcome) string {
	parts := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		status := "ok"
		if !o.OK {
			status = "failed"
		}
		parts = append(parts, fmt.Sprintf("%s=%s", o.Type, status))
	}
	return strings.Join(parts, ", ")
}
