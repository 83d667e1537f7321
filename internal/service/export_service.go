package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/model"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/repository"
	pkgerrors "github.com/SanghaLM/Code-to-Give-Team10-sub000/pkg/errors"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = pkgerrors.New(pkgerrors.KindInternal, 18001, "Failed to generate export file")

const (
	sheetSummary     = "Summary"
	sheetSubmissions = "Submissions"
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response。
type ExportService interface {
	// ExportHomework 导出作业统计与提交明细为 Excel
	ExportHomework(ctx context.Context, p Principal, homeworkID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo    *repository.Repository
	metrics MetricsService
	logger  *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, metrics MetricsService, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, metrics: metrics, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportHomework 导出作业提交为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "Summary"：作业标题、截止时间与统计指标（与 metrics 接口一致）
//   - Sheet "Submissions"：每个提交一行
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportHomework(ctx context.Context, p Principal, homeworkID string) (*bytes.Buffer, string, error) {
	if !model.IsValidID(homeworkID) {
		return nil, "", ErrInvalidID
	}

	hw, err := s.repo.Homework.GetByID(ctx, homeworkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrHomeworkNotFound
		}
		s.logger.Error("查询作业失败", zap.String("homework_id", homeworkID), zap.Error(err))
		return nil, "", err
	}

	metrics, err := s.metrics.HomeworkMetrics(ctx, p, homeworkID)
	if err != nil {
		return nil, "", err
	}

	subs, err := s.repo.Submission.ListByHomework(ctx, homeworkID, parentScope(p))
	if err != nil {
		s.logger.Error("查询提交列表失败", zap.String("homework_id", homeworkID), zap.Error(err))
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, _ := f.NewSheet(sheetSummary)
	f.SetActiveSheet(idx)
	_, _ = f.NewSheet(sheetSubmissions)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// ── Summary ──
	summary := [][2]interface{}{
		{"Homework", hw.Title},
		{"Due Date", formatTime(hw.DueDate)},
		{"Words", len(hw.Words)},
		{"Assigned Students", len(hw.Assignees)},
		{"Total Submissions", metrics.TotalSubmissions},
		{"Completed Submissions", metrics.CompletedSubmissions},
		{"Completion Rate (%)", metrics.CompletionRate},
		{"Parent Participation Rate (%)", metrics.ParentParticipationRate},
		{"Average Score", metrics.AverageScore},
		{"Average Time Taken (s)", metrics.AverageTimeTakenSeconds},
	}
	f.SetColWidth(sheetSummary, "A", "A", 30)
	f.SetColWidth(sheetSummary, "B", "B", 40)
	for i, kv := range summary {
		row := i + 1
		f.SetCellValue(sheetSummary, cell("A", row), kv[0])
		f.SetCellValue(sheetSummary, cell("B", row), kv[1])
	}
	f.SetCellStyle(sheetSummary, "A1", cell("A", len(summary)), headerStyle)

	// ── Submissions ──
	headers := []string{"Student", "Student ID", "Parent ID", "Status", "Recordings",
		"Recording Average", "Teacher Score", "Teacher Feedback", "Time Taken (s)", "Completed At"}
	for i, h := range headers {
		f.SetCellValue(sheetSubmissions, cell(colName(i), 1), h)
		f.SetColWidth(sheetSubmissions, colName(i), colName(i), 20)
	}
	f.SetCellStyle(sheetSubmissions, "A1", cell(colName(len(headers)-1), 1), headerStyle)

	for i := range subs {
		sub := &subs[i]
		row := i + 2
		name := ""
		if sub.Student != nil {
			name = sub.Student.Name
		}
		values := []interface{}{
			name,
			sub.StudentID,
			sub.ParentID,
			sub.Status,
			len(sub.Recordings),
			fmt.Sprintf("%.2f", sub.RecordingAverage()),
			optionalFloat(sub.Score),
			optionalString(sub.Feedback),
			optionalInt(sub.TimeTakenSeconds),
			optionalString(formatTimePtr(sub.CompletedAt)),
		}
		for col, v := range values {
			f.SetCellValue(sheetSubmissions, cell(colName(col), row), v)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("homework_%s.xlsx", hw.HomeworkID)
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func optionalString(s *string) interface{} {
	if s == nil {
		return "-"
	}
	return *s
}

func optionalFloat(v *float64) interface{} {
	if v == nil {
		return "-"
	}
	return *v
}

func optionalInt(v *int) interface{} {
	if v == nil {
		return "-"
	}
	return *v
}
