package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/SanghaLM/Code-to-Give-Team10-sub000/config"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/dto"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/model"
	pkgerrors "github.com/SanghaLM/Code-to-Give-Team10-sub000/pkg/errors"
)

func setupTestHomeworkService(feature config.FeatureConfig) (HomeworkService, *testEnv) {
	env := newTestEnv()
	return NewHomeworkService(env.repo, env.policy(feature), env.logger), env
}

func sampleWords() []dto.WordInput {
	return []dto.WordInput{
		{Word: "apple", Example: "I eat an apple."},
		{Word: "ball", Example: "Kick the ball."},
	}
}

func TestHomeworkService_Create(t *testing.T) {
	svc, env := setupTestHomeworkService(config.FeatureConfig{ValidateAssignees: true})
	ctx := context.Background()
	teacher := env.addTeacher("wong", model.RoleTeacher)
	parent := env.addParent("chan")
	child := env.addChild(parent.ParentID, "Ming")

	hw, err := svc.Create(ctx, teacher.TeacherID, &dto.CreateHomeworkRequest{
		Title:      "Fruits",
		Words:      sampleWords(),
		AssignedTo: []string{child.ChildID, child.ChildID},
		DueDate:    time.Now().Add(48 * time.Hour),
	})
	if err != nil {
		t.Fatalf("创建作业失败: %v", err)
	}
	if hw.TeacherID != teacher.TeacherID || hw.Version != 1 {
		t.Errorf("作业元信息不正确: %+v", hw)
	}
	if len(hw.Words) != 2 || hw.Words[0].WordID == "" || hw.Words[0].WordID == hw.Words[1].WordID {
		t.Errorf("单词应生成互不相同的 ID: %+v", hw.Words)
	}
	if len(hw.AssignedTo) != 1 {
		t.Errorf("assignedTo 应去重，实际 %v", hw.AssignedTo)
	}
}

func TestHomeworkService_Create_Validation(t *testing.T) {
	svc, env := setupTestHomeworkService(config.FeatureConfig{ValidateAssignees: true})
	ctx := context.Background()
	teacher := env.addTeacher("wong", model.RoleTeacher)

	tests := []struct {
		name string
		req  dto.CreateHomeworkRequest
		want error
	}{
		{"标题为空", dto.CreateHomeworkRequest{Title: "  ", Words: sampleWords()}, ErrHomeworkTitle},
		{"无单词", dto.CreateHomeworkRequest{Title: "x"}, ErrHomeworkNoWords},
		{"未知学生", dto.CreateHomeworkRequest{Title: "x", Words: sampleWords(), AssignedTo: []string{uuid.NewString()}}, ErrUnknownAssignee},
		{"创建时携带单词 ID", dto.CreateHomeworkRequest{Title: "x", Words: []dto.WordInput{
			{WordID: "6f1c1c8e-7d4b-4c4e-9f4a-1d2b3c4d5e6f", Word: "a"},
		}}, ErrUnknownWordID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, teacher.TeacherID, &tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("期望 %v，实际 %v", tt.want, err)
			}
		})
	}
}

func TestHomeworkService_Create_AssigneeCheckDisabled(t *testing.T) {
	svc, env := setupTestHomeworkService(config.FeatureConfig{ValidateAssignees: false})
	teacher := env.addTeacher("wong", model.RoleTeacher)

	_, err := svc.Create(context.Background(), teacher.TeacherID, &dto.CreateHomeworkRequest{
		Title: "x", Words: sampleWords(), AssignedTo: []string{uuid.NewString()},
	})
	if err != nil {
		t.Errorf("关闭校验时应允许未知学生，实际 %v", err)
	}
}

func TestHomeworkService_Update(t *testing.T) {
	svc, env := setupTestHomeworkService(config.FeatureConfig{})
	ctx := context.Background()
	owner := env.addTeacher("wong", model.RoleTeacher)
	other := env.addTeacher("ho", model.RoleTeacher)
	admin := env.addTeacher("boss", model.RoleAdmin)
	hw := env.addHomework(owner.TeacherID)
	keptWordID := hw.Words[0].WordID

	title := "Farm Animals"
	words := []dto.WordInput{
		{WordID: keptWordID, Word: "cat", Example: "A cat."},
		{Word: "cow", Example: "A cow."},
	}

	// 非所属教师
	_, err := svc.Update(ctx, Principal{ID: other.TeacherID, Role: model.RoleTeacher}, hw.HomeworkID, &dto.UpdateHomeworkRequest{Title: &title})
	if pkgerrors.KindOf(err) != pkgerrors.KindForbidden {
		t.Errorf("期望 Forbidden，实际 %v", err)
	}

	updated, err := svc.Update(ctx, Principal{ID: owner.TeacherID, Role: model.RoleTeacher}, hw.HomeworkID, &dto.UpdateHomeworkRequest{
		Title: &title, Words: &words,
	})
	if err != nil {
		t.Fatalf("更新失败: %v", err)
	}
	if updated.Title != title || updated.Version != 2 {
		t.Errorf("更新结果不正确: %+v", updated)
	}
	if len(updated.Words) != 2 || updated.Words[0].WordID != keptWordID {
		t.Errorf("携带 wordId 的单词应保留原标识: %+v", updated.Words)
	}

	// 过期版本号
	stale := 1
	_, err = svc.Update(ctx, Principal{ID: owner.TeacherID, Role: model.RoleTeacher}, hw.HomeworkID, &dto.UpdateHomeworkRequest{Title: &title, Version: &stale})
	if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Errorf("期望 ErrOptimisticLock，实际 %v", err)
	}

	// 管理员可修改任意作业
	if _, err := svc.Update(ctx, Principal{ID: admin.TeacherID, Role: model.RoleAdmin}, hw.HomeworkID, &dto.UpdateHomeworkRequest{Title: &title}); err != nil {
		t.Errorf("管理员更新失败: %v", err)
	}
}

func TestHomeworkService_Delete(t *testing.T) {
	svc, env := setupTestHomeworkService(config.FeatureConfig{})
	ctx := context.Background()
	owner := env.addTeacher("wong", model.RoleTeacher)
	other := env.addTeacher("ho", model.RoleTeacher)
	hw := env.addHomework(owner.TeacherID)

	if err := svc.Delete(ctx, Principal{ID: other.TeacherID, Role: model.RoleTeacher}, hw.HomeworkID); !errors.Is(err, ErrHomeworkNotOwner) {
		t.Errorf("期望 ErrHomeworkNotOwner，实际 %v", err)
	}
	if err := svc.Delete(ctx, Principal{ID: owner.TeacherID, Role: model.RoleTeacher}, hw.HomeworkID); err != nil {
		t.Fatalf("删除失败: %v", err)
	}
	if _, err := svc.GetByID(ctx, hw.HomeworkID); !errors.Is(err, ErrHomeworkNotFound) {
		t.Errorf("删除后期望 NotFound，实际 %v", err)
	}
}

func TestHomeworkService_GetAssignedAndStart(t *testing.T) {
	svc, env := setupTestHomeworkService(config.FeatureConfig{})
	ctx := context.Background()
	teacher := env.addTeacher("wong", model.RoleTeacher)
	parent := env.addParent("chan")
	other := env.addParent("lee")
	child := env.addChild(parent.ParentID, "Ming")
	env.addHomework(teacher.TeacherID, child.ChildID)
	hw := env.addHomework(teacher.TeacherID)

	list, err := svc.GetAssigned(ctx, parent.ParentID, child.ChildID)
	if err != nil || len(list) != 1 {
		t.Fatalf("期望 1 份作业，实际 %d (%v)", len(list), err)
	}
	if _, err := svc.GetAssigned(ctx, other.ParentID, child.ChildID); !errors.Is(err, ErrChildNotFound) {
		t.Errorf("他人孩子期望 ErrChildNotFound，实际 %v", err)
	}

	start, err := svc.Start(ctx, hw.HomeworkID)
	if err != nil {
		t.Fatalf("开始作业失败: %v", err)
	}
	if start.Mode != ModeParentGuided || len(start.Words) != 3 || start.Words[0].Word != "cat" {
		t.Errorf("开始作业响应不正确: %+v", start)
	}
	if _, err := svc.Start(ctx, "not-a-uuid"); !errors.Is(err, ErrInvalidID) {
		t.Errorf("期望 ErrInvalidID，实际 %v", err)
	}
}

func TestHomeworkService_GetByIDAndListMine(t *testing.T) {
	svc, env := setupTestHomeworkService(config.FeatureConfig{})
	ctx := context.Background()
	teacher := env.addTeacher("wong", model.RoleTeacher)
	other := env.addTeacher("lee", model.RoleTeacher)
	hw := env.addHomework(teacher.TeacherID)
	env.addHomework(other.TeacherID)

	detail, err := svc.GetByID(ctx, hw.HomeworkID)
	if err != nil {
		t.Fatalf("查询作业失败: %v", err)
	}
	if detail.Title != "Animals" || len(detail.Words) != 3 {
		t.Errorf("作业详情不正确: %+v", detail)
	}

	if _, err := svc.GetByID(ctx, "not-a-uuid"); !errors.Is(err, ErrInvalidID) && !errors.Is(err, ErrHomeworkNotFound) {
		t.Errorf("非法 ID 应被拒绝，实际 %v", err)
	}

	mine, err := svc.ListMine(ctx, teacher.TeacherID)
	if err != nil {
		t.Fatalf("查询我的作业失败: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != hw.HomeworkID {
		t.Errorf("只应返回本人布置的作业: %+v", mine)
	}
}

func TestHomeworkService_Update_WordIDs(t *testing.T) {
	svc, env := setupTestHomeworkService(config.FeatureConfig{})
	ctx := context.Background()
	owner := env.addTeacher("wong", model.RoleTeacher)
	hw := env.addHomework(owner.TeacherID)
	foreign := env.addHomework(owner.TeacherID)
	p := Principal{ID: owner.TeacherID, Role: model.RoleTeacher}

	tests := []struct {
		name  string
		words []dto.WordInput
		want  error
	}{
		{"其他作业的单词 ID", []dto.WordInput{{WordID: foreign.Words[0].WordID, Word: "cat"}}, ErrUnknownWordID},
		{"不存在的单词 ID", []dto.WordInput{{WordID: uuid.NewString(), Word: "cat"}}, ErrUnknownWordID},
		{"重复单词 ID", []dto.WordInput{
			{WordID: hw.Words[0].WordID, Word: "cat"},
			{WordID: hw.Words[0].WordID, Word: "dog"},
		}, ErrDuplicateWordID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			words := tt.words
			_, err := svc.Update(ctx, p, hw.HomeworkID, &dto.UpdateHomeworkRequest{Words: &words})
			if !errors.Is(err, tt.want) {
				t.Errorf("期望 %v，实际 %v", tt.want, err)
			}
			if pkgerrors.KindOf(err) != pkgerrors.KindValidation {
				t.Errorf("期望 Validation，实际 %v", pkgerrors.KindOf(err))
			}
		})
	}

	stored, _ := env.homeworks.GetByID(ctx, hw.HomeworkID)
	if stored.Version != 1 || len(stored.Words) != 3 {
		t.Errorf("校验失败时作业不应被修改: version=%d words=%d", stored.Version, len(stored.Words))
	}
}
