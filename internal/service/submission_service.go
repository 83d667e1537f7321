package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/dto"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/model"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/repository"
	pkgerrors "github.com/SanghaLM/Code-to-Give-Team10-sub000/pkg/errors"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/pkg/storage"
)

// 并发首次上传争用唯一键时的最大尝试次数
const maxIngestAttempts = 3

// ── 提交模块业务错误 ──

var (
	ErrWordNotFound         = pkgerrors.New(pkgerrors.KindNotFound, 15001, "Word not found in homework")
	ErrHomeworkNotAssigned  = pkgerrors.New(pkgerrors.KindForbidden, 15002, "Homework is not assigned to this student")
	ErrNoRecordings         = pkgerrors.New(pkgerrors.KindInvalidState, 15003, "No recordings found")
	ErrSubmissionNotFound   = pkgerrors.New(pkgerrors.KindNotFound, 15004, "Submission not found")
	ErrRecordingFileMissing = pkgerrors.New(pkgerrors.KindValidation, 15005, "Audio file is required")
)

var tracer = otel.Tracer("github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/service")

// RecordingUpload 一次单词录音上传
type RecordingUpload struct {
	HomeworkID  string
	WordID      string
	StudentID   string
	IsParent    bool
	File        io.Reader
	Filename    string
	ContentType string
}

// SubmissionService 提交与录音业务接口
//
// 提交状态机：(absent) ──首次上传──▶ in-progress ──submit──▶ completed，无回退。
type SubmissionService interface {
	UploadRecording(ctx context.Context, parentID string, in *RecordingUpload) (*dto.UploadRecordingResponse, error)
	Submit(ctx context.Context, parentID, homeworkID string, req *dto.SubmitHomeworkRequest) (*dto.SubmitHomeworkResponse, error)
	// ListByHomework 教师可见全部提交，家长仅可见自己的提交
	ListByHomework(ctx context.Context, p Principal, homeworkID string) ([]dto.SubmissionResponse, error)
}

type submissionService struct {
	repo   *repository.Repository
	store  storage.Storage
	scorer Scorer
	logger *zap.Logger
}

// NewSubmissionService 创建 SubmissionService 实例
func NewSubmissionService(repo *repository.Repository, store storage.Storage, scorer Scorer, logger *zap.Logger) SubmissionService {
	return &submissionService{repo: repo, store: store, scorer: scorer, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// UploadRecording 单词录音上传与评分
// ═══════════════════════════════════════════════════════════
//
// 流程：
//  1. 校验标识、作业与单词、学生归属
//  2. 保存录音文件，取得引用
//  3. 按引用评分并选择反馈短语
//  4. 单事务内 find-or-create 提交（行锁）并追加录音
//  5. 事务失败时删除已保存的文件，不留下孤立文件或半条录音

func (s *submissionService) UploadRecording(ctx context.Context, parentID string, in *RecordingUpload) (*dto.UploadRecordingResponse, error) {
	ctx, span := tracer.Start(ctx, "SubmissionService.UploadRecording")
	defer span.End()
	span.SetAttributes(
		attribute.String("homework.id", in.HomeworkID),
		attribute.String("word.id", in.WordID),
		attribute.Bool("recording.is_parent", in.IsParent),
	)

	// 1. 校验
	if !model.IsValidID(in.HomeworkID) || !model.IsValidID(in.WordID) || !model.IsValidID(in.StudentID) {
		return nil, ErrInvalidID
	}
	if in.File == nil {
		return nil, ErrRecordingFileMissing
	}

	hw, err := s.loadHomework(ctx, in.HomeworkID)
	if err != nil {
		return nil, err
	}
	if _, ok := hw.FindWord(in.WordID); !ok {
		return nil, ErrWordNotFound
	}
	if _, err := loadOwnedChild(ctx, s.repo, s.logger, parentID, in.StudentID); err != nil {
		return nil, err
	}
	if !hw.IsAssignedTo(in.StudentID) {
		return nil, ErrHomeworkNotAssigned
	}

	// 2. 保存录音文件
	obj, err := s.store.Save(ctx, recordingKey(in), in.File, in.ContentType)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store artifact")
		s.logger.Error("保存录音文件失败", zap.String("homework_id", in.HomeworkID), zap.Error(err))
		return nil, err
	}

	// 3. 评分
	score := s.scorer.Score(ctx, obj.URL)
	phrase := FeedbackPhrase(score)

	rec := &model.Recording{
		WordID:   in.WordID,
		Feedback: phrase,
	}
	if in.IsParent {
		rec.ParentAudioURL = &obj.URL
		rec.ParentScore = &score
	} else {
		rec.ChildAudioURL = &obj.URL
		rec.ChildScore = &score
	}

	// 4. 写入提交与录音
	var sub *model.Submission
	for attempt := 1; attempt <= maxIngestAttempts; attempt++ {
		rec.RecordingID = ""
		sub, err = s.appendRecording(ctx, parentID, in, rec)
		if err == nil || !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
		s.logger.Warn("并发创建提交冲突，重试", zap.Int("attempt", attempt), zap.String("homework_id", in.HomeworkID))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "append recording")
		s.logger.Error("写入录音失败", zap.String("homework_id", in.HomeworkID), zap.Error(err))
		// 5. 回收已保存的文件
		if delErr := s.store.Delete(context.WithoutCancel(ctx), obj.Key); delErr != nil {
			s.logger.Warn("删除孤立录音文件失败", zap.String("key", obj.Key), zap.Error(delErr))
		}
		return nil, err
	}

	span.SetAttributes(attribute.Int("recording.score", score))
	return &dto.UploadRecordingResponse{
		Score:        score,
		Feedback:     phrase,
		RetriesLeft:  RetriesLeft,
		SubmissionID: sub.SubmissionID,
		RecordingID:  rec.RecordingID,
		AudioURL:     obj.URL,
	}, nil
}

// appendRecording 单事务内 find-or-create 提交并追加录音；已完成的提交仍可追加，状态不变
func (s *submissionService) appendRecording(ctx context.Context, parentID string, in *RecordingUpload, rec *model.Recording) (*model.Submission, error) {
	var sub *model.Submission
	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		var err error
		sub, err = txRepo.Submission.GetByKeyForUpdate(ctx, in.HomeworkID, in.StudentID, parentID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sub = &model.Submission{
				HomeworkID: in.HomeworkID,
				StudentID:  in.StudentID,
				ParentID:   parentID,
				Status:     model.SubmissionInProgress,
			}
			sub.CreatedBy = &parentID
			sub.UpdatedBy = &parentID
			err = txRepo.Submission.Create(ctx, sub)
		}
		if err != nil {
			return err
		}

		count, err := txRepo.Submission.CountRecordings(ctx, sub.SubmissionID)
		if err != nil {
			return err
		}
		rec.SubmissionID = sub.SubmissionID
		rec.Position = int(count) + 1
		return txRepo.Submission.AppendRecording(ctx, rec)
	})
	return sub, err
}

// recordingKey 录音对象键：recordings/<homework>/<student>/<uuid><ext>
func recordingKey(in *RecordingUpload) string {
	ext := strings.ToLower(filepath.Ext(in.Filename))
	if len(ext) > 8 {
		ext = ""
	}
	return fmt.Sprintf("recordings/%s/%s/%s%s", in.HomeworkID, in.StudentID, uuid.NewString(), ext)
}

// ═══════════════════════════════════════════════════════════
// Submit 提交作业
// ═══════════════════════════════════════════════════════════

func (s *submissionService) Submit(ctx context.Context, parentID, homeworkID string, req *dto.SubmitHomeworkRequest) (*dto.SubmitHomeworkResponse, error) {
	if !model.IsValidID(homeworkID) || !model.IsValidID(req.StudentID) {
		return nil, ErrInvalidID
	}
	if _, err := loadOwnedChild(ctx, s.repo, s.logger, parentID, req.StudentID); err != nil {
		return nil, err
	}
	if _, err := s.loadHomework(ctx, homeworkID); err != nil {
		return nil, err
	}

	var sub *model.Submission
	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		locked, err := txRepo.Submission.GetByKeyForUpdate(ctx, homeworkID, req.StudentID, parentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoRecordings
			}
			return err
		}
		count, err := txRepo.Submission.CountRecordings(ctx, locked.SubmissionID)
		if err != nil {
			return err
		}
		if count == 0 {
			return ErrNoRecordings
		}

		// completedAt 只写一次；重复提交直接返回当前结果
		if !locked.IsCompleted() {
			now := time.Now()
			locked.Status = model.SubmissionCompleted
			locked.CompletedAt = &now
			locked.TimeTakenSeconds = req.TimeTaken
			locked.UpdatedBy = &parentID
			if err := txRepo.Submission.Update(ctx, locked); err != nil {
				return err
			}
		}

		sub, err = txRepo.Submission.GetByID(ctx, locked.SubmissionID)
		return err
	})
	if err != nil {
		if !errors.Is(err, ErrNoRecordings) {
			s.logger.Error("提交作业失败", zap.String("homework_id", homeworkID), zap.Error(err))
		}
		return nil, err
	}

	completedAt := ""
	if sub.CompletedAt != nil {
		completedAt = formatTime(*sub.CompletedAt)
	}
	return &dto.SubmitHomeworkResponse{
		SubmissionID: sub.SubmissionID,
		Status:       sub.Status,
		AverageScore: sub.RecordingAverage(),
		CompletedAt:  completedAt,
		TimeTaken:    sub.TimeTakenSeconds,
	}, nil
}

// ═══════════════════════════════════════════════════════════
// ListByHomework
// ═══════════════════════════════════════════════════════════

func (s *submissionService) ListByHomework(ctx context.Context, p Principal, homeworkID string) ([]dto.SubmissionResponse, error) {
	if !model.IsValidID(homeworkID) {
		return nil, ErrInvalidID
	}

	subs, err := s.repo.Submission.ListByHomework(ctx, homeworkID, parentScope(p))
	if err != nil {
		s.logger.Error("查询提交列表失败", zap.String("homework_id", homeworkID), zap.Error(err))
		return nil, err
	}
	return toSubmissionResponses(subs), nil
}

// ── 内部辅助 ──

func (s *submissionService) loadHomework(ctx context.Context, id string) (*model.Homework, error) {
	hw, err := s.repo.Homework.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHomeworkNotFound
		}
		s.logger.Error("查询作业失败", zap.String("homework_id", id), zap.Error(err))
		return nil, err
	}
	return hw, nil
}

// parentScope 家长仅能看到自己的提交；教师返回空串表示不过滤
func parentScope(p Principal) string {
	if p.IsParent() {
		return p.ID
	}
	return ""
}

func toRecordingResponse(r *model.Recording) dto.RecordingResponse {
	return dto.RecordingResponse{
		ID:             r.RecordingID,
		WordID:         r.WordID,
		ChildAudioURL:  r.ChildAudioURL,
		ChildScore:     r.ChildScore,
		ParentAudioURL: r.ParentAudioURL,
		ParentScore:    r.ParentScore,
		Feedback:       r.Feedback,
		CreatedAt:      formatTime(r.CreatedAt),
	}
}

func toSubmissionResponse(sub *model.Submission) dto.SubmissionResponse {
	recs := make([]dto.RecordingResponse, 0, len(sub.Recordings))
	for i := range sub.Recordings {
		recs = append(recs, toRecordingResponse(&sub.Recordings[i]))
	}
	resp := dto.SubmissionResponse{
		ID:           sub.SubmissionID,
		HomeworkID:   sub.HomeworkID,
		StudentID:    sub.StudentID,
		ParentID:     sub.ParentID,
		Status:       sub.Status,
		TimeTaken:    sub.TimeTakenSeconds,
		CompletedAt:  formatTimePtr(sub.CompletedAt),
		Score:        sub.Score,
		Feedback:     sub.Feedback,
		AverageScore: sub.RecordingAverage(),
		Recordings:   recs,
	}
	if sub.Student != nil {
		resp.StudentName = sub.Student.Name
	}
	return resp
}

func toSubmissionResponses(subs []model.Submission) []dto.SubmissionResponse {
	out := make([]dto.SubmissionResponse, 0, len(subs))
	for i := range subs {
		out = append(out, toSubmissionResponse(&subs[i]))
	}
	return out
}
