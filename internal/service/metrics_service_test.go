package service

import (
	"context"
	"errors"
	"testing"

	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/dto"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/model"
	pkgerrors "github.com/SanghaLM/Code-to-Give-Team10-sub000/pkg/errors"
)

func submitReq(studentID string) *dto.SubmitHomeworkRequest {
	return &dto.SubmitHomeworkRequest{StudentID: studentID, TimeTaken: intPtr(60)}
}

func recording(child, parent *int) model.Recording {
	r := model.Recording{ChildScore: child, ParentScore: parent}
	if child != nil {
		url := "/uploads/child.webm"
		r.ChildAudioURL = &url
	}
	if parent != nil {
		url := "/uploads/parent.webm"
		r.ParentAudioURL = &url
	}
	return r
}

func TestComputeHomeworkMetrics_Empty(t *testing.T) {
	m := ComputeHomeworkMetrics(nil)
	if m.TotalSubmissions != 0 {
		t.Errorf("期望 0 个提交，实际 %d", m.TotalSubmissions)
	}
	for name, v := range map[string]string{
		"completionRate":          m.CompletionRate,
		"parentParticipationRate": m.ParentParticipationRate,
		"averageScore":            m.AverageScore,
		"averageTimeTakenSeconds": m.AverageTimeTakenSeconds,
	} {
		if v != "0.00" {
			t.Errorf("%s 期望 \"0.00\"，实际 %q", name, v)
		}
	}
}

func TestComputeHomeworkMetrics(t *testing.T) {
	done := model.Submission{
		Status:           model.SubmissionCompleted,
		TimeTakenSeconds: intPtr(100),
		// 家长分优先：90
		Recordings: []model.Recording{recording(intPtr(40), intPtr(90))},
	}
	done2 := model.Submission{
		Status:           model.SubmissionCompleted,
		TimeTakenSeconds: intPtr(50),
		Recordings:       []model.Recording{recording(intPtr(60), nil), recording(intPtr(80), nil)},
	}
	pending := model.Submission{Status: model.SubmissionInProgress}

	m := ComputeHomeworkMetrics([]model.Submission{done, done2, pending})

	if m.TotalSubmissions != 3 || m.CompletedSubmissions != 2 {
		t.Errorf("计数不正确: %+v", m)
	}
	if m.CompletionRate != "66.67" {
		t.Errorf("completionRate 期望 66.67，实际 %s", m.CompletionRate)
	}
	if m.ParentParticipationRate != "33.33" {
		t.Errorf("parentParticipationRate 期望 33.33，实际 %s", m.ParentParticipationRate)
	}
	// (90 + 70 + 0) / 3
	if m.AverageScore != "53.33" {
		t.Errorf("averageScore 期望 53.33，实际 %s", m.AverageScore)
	}
	if m.AverageTimeTakenSeconds != "50.00" {
		t.Errorf("averageTimeTakenSeconds 期望 50.00，实际 %s", m.AverageTimeTakenSeconds)
	}
}

func TestComputeHomeworkMetrics_ParentParticipationNeedsAudio(t *testing.T) {
	// 只有家长分、没有家长录音引用时不计入家长参与
	scoreOnly := model.Submission{
		Status:     model.SubmissionCompleted,
		Recordings: []model.Recording{{ChildScore: intPtr(60), ParentScore: intPtr(90)}},
	}
	withAudio := model.Submission{
		Status:     model.SubmissionCompleted,
		Recordings: []model.Recording{recording(nil, intPtr(80))},
	}

	m := ComputeHomeworkMetrics([]model.Submission{scoreOnly, withAudio})
	if m.ParentParticipationRate != "50.00" {
		t.Errorf("parentParticipationRate 期望 50.00，实际 %s", m.ParentParticipationRate)
	}
}

func TestComputeStudentProgress(t *testing.T) {
	subs := []model.Submission{
		{Status: model.SubmissionCompleted, Score: floatPtr(80)},
		{Status: model.SubmissionCompleted},
		{Status: model.SubmissionInProgress, Score: floatPtr(100)},
	}
	p := ComputeStudentProgress(4, subs)
	if p.TotalCompleted != 2 || p.CompletionRate != 50 {
		t.Errorf("完成率不正确: %+v", p)
	}
	// 缺失的 score 按 0 计入
	if p.AvgScore != 40 {
		t.Errorf("avgScore 期望 40，实际 %v", p.AvgScore)
	}
	if len(p.Submissions) != 3 {
		t.Errorf("期望返回全部提交，实际 %d", len(p.Submissions))
	}

	empty := ComputeStudentProgress(0, nil)
	if empty.CompletionRate != 0 || empty.AvgScore != 0 {
		t.Errorf("无作业时应为 0: %+v", empty)
	}
}

func TestMetricsService_HomeworkMetrics_Scope(t *testing.T) {
	f := setupSubmissionFixture(80)
	svc := NewMetricsService(f.env.repo, f.env.logger)
	ctx := context.Background()

	if _, err := f.upload(0, true); err != nil {
		t.Fatalf("上传失败: %v", err)
	}

	teacherView, err := svc.HomeworkMetrics(ctx, Principal{ID: f.teacher.TeacherID, Role: model.RoleTeacher}, f.hw.HomeworkID)
	if err != nil {
		t.Fatalf("查询统计失败: %v", err)
	}
	if teacherView.TotalSubmissions != 1 || teacherView.ParentParticipationRate != "100.00" || teacherView.AverageScore != "80.00" {
		t.Errorf("教师视角统计不正确: %+v", teacherView)
	}

	other := f.env.addParent("lee")
	parentView, _ := svc.HomeworkMetrics(ctx, Principal{ID: other.ParentID, Role: model.RoleParent}, f.hw.HomeworkID)
	if parentView.TotalSubmissions != 0 || parentView.CompletionRate != "0.00" {
		t.Errorf("其他家长应只统计自己的提交: %+v", parentView)
	}

	if _, err := svc.HomeworkMetrics(ctx, Principal{Role: model.RoleTeacher}, "6f1c1c8e-7d4b-4c4e-9f4a-1d2b3c4d5e6f"); !errors.Is(err, ErrHomeworkNotFound) {
		t.Errorf("期望 ErrHomeworkNotFound，实际 %v", err)
	}
}

func TestMetricsService_StudentProgress(t *testing.T) {
	f := setupSubmissionFixture(70)
	svc := NewMetricsService(f.env.repo, f.env.logger)
	ctx := context.Background()
	teacher := Principal{ID: f.teacher.TeacherID, Role: model.RoleTeacher}

	_, err := svc.StudentProgress(ctx, teacher, f.child.ChildID)
	if pkgerrors.KindOf(err) != pkgerrors.KindForbidden {
		t.Fatalf("未绑定教师期望 Forbidden，实际 %v", err)
	}

	f.env.approve(f.teacher.TeacherID, f.child.ChildID)
	if _, err := f.upload(0, false); err != nil {
		t.Fatalf("上传失败: %v", err)
	}
	if _, err := f.svc.Submit(ctx, f.parent.ParentID, f.hw.HomeworkID, submitReq(f.child.ChildID)); err != nil {
		t.Fatalf("提交失败: %v", err)
	}
	f.env.addHomework(f.teacher.TeacherID, f.child.ChildID)

	p, err := svc.StudentProgress(ctx, teacher, f.child.ChildID)
	if err != nil {
		t.Fatalf("查询进度失败: %v", err)
	}
	if p.TotalAssigned != 2 || p.TotalCompleted != 1 || p.CompletionRate != 50 {
		t.Errorf("进度不正确: %+v", p)
	}
	// 未评分的已完成提交记 0
	if p.AvgScore != 0 {
		t.Errorf("avgScore 期望 0，实际 %v", p.AvgScore)
	}
	if p.Name != "Ming" {
		t.Errorf("学生姓名不正确: %s", p.Name)
	}

	// 管理员无需绑定
	admin := f.env.addTeacher("boss", model.RoleAdmin)
	if _, err := svc.StudentProgress(ctx, Principal{ID: admin.TeacherID, Role: model.RoleAdmin}, f.child.ChildID); err != nil {
		t.Errorf("管理员查询失败: %v", err)
	}
	if _, err := svc.StudentProgress(ctx, teacher, "6f1c1c8e-7d4b-4c4e-9f4a-1d2b3c4d5e6f"); !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("期望 ErrStudentNotFound，实际 %v", err)
	}
}

func TestFormatRatio(t *testing.T) {
	if got := formatRatio(2*100, 3); got != "66.67" {
		t.Errorf("期望 66.67，实际 %s", got)
	}
	if got := formatRatio(5, 0); got != "0.00" {
		t.Errorf("期望 0.00，实际 %s", got)
	}
}
