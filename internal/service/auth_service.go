package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/dto"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/model"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/repository"
	pkgerrors "github.com/SanghaLM/Code-to-Give-Team10-sub000/pkg/errors"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/pkg/jwt"
)

// ── 认证模块业务错误 ──

var (
	ErrInvalidCredentials = pkgerrors.New(pkgerrors.KindValidation, 11001, "Invalid username/email or password")
	ErrUsernameTaken      = pkgerrors.New(pkgerrors.KindConflict, 11002, "Username already exists")
	ErrEmailTaken         = pkgerrors.New(pkgerrors.KindConflict, 11003, "Email already exists")
	ErrUserNotFound       = pkgerrors.New(pkgerrors.KindNotFound, 11004, "User not found")
)

// AuthService 认证业务接口
type AuthService interface {
	RegisterParent(ctx context.Context, req *dto.RegisterParentRequest) (*dto.TokenResponse, error)
	LoginParent(ctx context.Context, req *dto.LoginParentRequest) (*dto.TokenResponse, error)
	RegisterTeacher(ctx context.Context, req *dto.RegisterTeacherRequest) (*dto.TokenResponse, error)
	LoginTeacher(ctx context.Context, req *dto.LoginTeacherRequest) (*dto.TokenResponse, error)
	// Logout 将 Token 的 jti 加入黑名单直至其过期
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	GetCurrentUser(ctx context.Context, p Principal) (*dto.PrincipalResponse, error)
}

type authService struct {
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

// ────────────────────── Parent ──────────────────────

func (s *authService) RegisterParent(ctx context.Context, req *dto.RegisterParentRequest) (*dto.TokenResponse, error) {
	username := strings.TrimSpace(req.Username)

	_, err := s.repo.Parent.GetByUsername(ctx, username)
	if err == nil {
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询家长失败", zap.Error(err))
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	parent := &model.Parent{
		Name:         strings.TrimSpace(req.Name),
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := s.repo.Parent.Create(ctx, parent); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		s.logger.Error("创建家长失败", zap.Error(err))
		return nil, err
	}

	return s.issueToken(parentPrincipal(parent))
}

func (s *authService) LoginParent(ctx context.Context, req *dto.LoginParentRequest) (*dto.TokenResponse, error) {
	parent, err := s.repo.Parent.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询家长失败", zap.Error(err))
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(parent.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueToken(parentPrincipal(parent))
}

// ────────────────────── Teacher ──────────────────────

func (s *authService) RegisterTeacher(ctx context.Context, req *dto.RegisterTeacherRequest) (*dto.TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	_, err := s.repo.Teacher.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询教师失败", zap.Error(err))
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = model.RoleTeacher
	}

	teacher := &model.Teacher{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.repo.Teacher.Create(ctx, teacher); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		s.logger.Error("创建教师失败", zap.Error(err))
		return nil, err
	}

	return s.issueToken(teacherPrincipal(teacher))
}

func (s *authService) LoginTeacher(ctx context.Context, req *dto.LoginTeacherRequest) (*dto.TokenResponse, error) {
	teacher, err := s.repo.Teacher.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询教师失败", zap.Error(err))
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(teacher.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueToken(teacherPrincipal(teacher))
}

// ────────────────────── Session ──────────────────────

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.blacklist == nil || jti == "" {
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, jti, time.Until(expiresAt)); err != nil {
		s.logger.Error("Token 加入黑名单失败", zap.String("jti", jti), zap.Error(err))
		return err
	}
	return nil
}

func (s *authService) GetCurrentUser(ctx context.Context, p Principal) (*dto.PrincipalResponse, error) {
	if p.IsParent() {
		parent, err := s.repo.Parent.GetByID(ctx, p.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			s.logger.Error("查询家长失败", zap.Error(err))
			return nil, err
		}
		resp := parentPrincipal(parent)
		return &resp, nil
	}

	teacher, err := s.repo.Teacher.GetByID(ctx, p.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询教师失败", zap.Error(err))
		return nil, err
	}
	resp := teacherPrincipal(teacher)
	return &resp, nil
}

// ── 内部辅助 ──

func (s *authService) issueToken(user dto.PrincipalResponse) (*dto.TokenResponse, error) {
	token, err := s.jwtMgr.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}
	return &dto.TokenResponse{
		AccessToken: token,
		ExpiresIn:   int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:        user,
	}, nil
}

func parentPrincipal(p *model.Parent) dto.PrincipalResponse {
	return dto.PrincipalResponse{
		ID:       p.ParentID,
		Name:     p.Name,
		Role:     model.RoleParent,
		Username: p.Username,
	}
}

func teacherPrincipal(t *model.Teacher) dto.PrincipalResponse {
	return dto.PrincipalResponse{
		ID:    t.TeacherID,
		Name:  t.Name,
		Role:  t.Role,
		Email: t.Email,
	}
}
