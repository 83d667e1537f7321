package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/model"
)

func setupTestExportService(f *submissionFixture) ExportService {
	metrics := NewMetricsService(f.env.repo, f.env.logger)
	return NewExportService(f.env.repo, metrics, f.env.logger)
}

func TestExportService_ExportHomework_NotFound(t *testing.T) {
	f := setupSubmissionFixture(70)
	svc := setupTestExportService(f)

	_, _, err := svc.ExportHomework(context.Background(), Principal{Role: model.RoleTeacher}, "6f1c1c8e-7d4b-4c4e-9f4a-1d2b3c4d5e6f")
	if !errors.Is(err, ErrHomeworkNotFound) {
		t.Errorf("期望 ErrHomeworkNotFound，实际 %v", err)
	}
}

func TestExportService_ExportHomework(t *testing.T) {
	f := setupSubmissionFixture(70)
	svc := setupTestExportService(f)
	ctx := context.Background()

	if _, err := f.upload(0, false); err != nil {
		t.Fatalf("上传失败: %v", err)
	}

	buf, filename, err := svc.ExportHomework(ctx, Principal{ID: f.teacher.TeacherID, Role: model.RoleTeacher}, f.hw.HomeworkID)
	if err != nil {
		t.Fatalf("导出失败: %v", err)
	}
	if !strings.HasSuffix(filename, ".xlsx") || !strings.Contains(filename, f.hw.HomeworkID) {
		t.Errorf("文件名不正确: %s", filename)
	}

	wb, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("读取导出文件失败: %v", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "Summary" || sheets[1] != "Submissions" {
		t.Errorf("Sheet 列表不正确: %v", sheets)
	}

	title, _ := wb.GetCellValue("Summary", "B1")
	if title != "Animals" {
		t.Errorf("作业标题不正确: %q", title)
	}
	rate, _ := wb.GetCellValue("Summary", "B7")
	if rate != "0.00" {
		t.Errorf("完成率期望 0.00，实际 %q", rate)
	}

	rows, err := wb.GetRows("Submissions")
	if err != nil {
		t.Fatalf("读取提交明细失败: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("期望表头 + 1 行提交，实际 %d 行", len(rows))
	}
	if rows[1][1] != f.child.ChildID || rows[1][3] != model.SubmissionInProgress || rows[1][5] != "70.00" {
		t.Errorf("提交明细不正确: %v", rows[1])
	}
}
