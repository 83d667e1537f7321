package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SanghaLM/Code-to-Give-Team10-sub000/config"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/dto"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/model"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/pkg/jwt"
)

func setupTestAuthService(blacklist TokenBlacklist) (AuthService, *testEnv, *jwt.Manager) {
	env := newTestEnv()
	jwtMgr := jwt.NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret-key-at-least-16",
		AccessTokenTTL: time.Hour,
	})
	return NewAuthService(env.repo, jwtMgr, blacklist, env.logger), env, jwtMgr
}

func TestAuthService_RegisterAndLoginParent(t *testing.T) {
	svc, _, jwtMgr := setupTestAuthService(nil)
	ctx := context.Background()

	resp, err := svc.RegisterParent(ctx, &dto.RegisterParentRequest{
		Name: "Mrs Chan", Username: "chan", Password: "password123",
	})
	if err != nil {
		t.Fatalf("注册失败: %v", err)
	}
	if resp.User.Role != model.RoleParent {
		t.Errorf("期望角色 parent，实际 %s", resp.User.Role)
	}
	if resp.ExpiresIn != 3600 {
		t.Errorf("期望 ExpiresIn=3600，实际 %d", resp.ExpiresIn)
	}

	claims, err := jwtMgr.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("解析 Token 失败: %v", err)
	}
	if claims.UserID != resp.User.ID {
		t.Errorf("Token UserID 不匹配")
	}

	if _, err := svc.LoginParent(ctx, &dto.LoginParentRequest{Username: "chan", Password: "password123"}); err != nil {
		t.Errorf("登录失败: %v", err)
	}
	if _, err := svc.LoginParent(ctx, &dto.LoginParentRequest{Username: "chan", Password: "wrong-password"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际 %v", err)
	}
	if _, err := svc.LoginParent(ctx, &dto.LoginParentRequest{Username: "nobody", Password: "password123"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("未知用户期望 ErrInvalidCredentials，实际 %v", err)
	}
}

func TestAuthService_RegisterParent_Duplicate(t *testing.T) {
	svc, _, _ := setupTestAuthService(nil)
	ctx := context.Background()
	req := &dto.RegisterParentRequest{Name: "A", Username: "dup", Password: "password123"}

	if _, err := svc.RegisterParent(ctx, req); err != nil {
		t.Fatalf("首次注册失败: %v", err)
	}
	if _, err := svc.RegisterParent(ctx, req); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("期望 ErrUsernameTaken，实际 %v", err)
	}
}

func TestAuthService_RegisterTeacher_DefaultRoleAndEmailCase(t *testing.T) {
	svc, _, _ := setupTestAuthService(nil)
	ctx := context.Background()

	resp, err := svc.RegisterTeacher(ctx, &dto.RegisterTeacherRequest{
		Name: "Ms Wong", Email: "Wong@School.HK", Password: "password123",
	})
	if err != nil {
		t.Fatalf("注册教师失败: %v", err)
	}
	if resp.User.Role != model.RoleTeacher {
		t.Errorf("期望默认角色 teacher，实际 %s", resp.User.Role)
	}
	if resp.User.Email != "wong@school.hk" {
		t.Errorf("期望邮箱小写化，实际 %s", resp.User.Email)
	}

	_, err = svc.RegisterTeacher(ctx, &dto.RegisterTeacherRequest{
		Name: "Other", Email: "wong@school.hk", Password: "password123",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("期望 ErrEmailTaken，实际 %v", err)
	}

	if _, err := svc.LoginTeacher(ctx, &dto.LoginTeacherRequest{Email: "WONG@school.hk", Password: "password123"}); err != nil {
		t.Errorf("大小写不敏感登录失败: %v", err)
	}
}

func TestAuthService_GetCurrentUser(t *testing.T) {
	svc, env, _ := setupTestAuthService(nil)
	ctx := context.Background()
	parent := env.addParent("lee")
	teacher := env.addTeacher("ho", model.RoleAdmin)

	me, err := svc.GetCurrentUser(ctx, Principal{ID: parent.ParentID, Role: model.RoleParent})
	if err != nil || me.Username != "lee" {
		t.Errorf("家长信息不正确: %+v, %v", me, err)
	}
	me, err = svc.GetCurrentUser(ctx, Principal{ID: teacher.TeacherID, Role: model.RoleAdmin})
	if err != nil || me.Role != model.RoleAdmin {
		t.Errorf("管理员信息不正确: %+v, %v", me, err)
	}
	if _, err := svc.GetCurrentUser(ctx, Principal{ID: "missing", Role: model.RoleTeacher}); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际 %v", err)
	}
}

func TestAuthService_Logout(t *testing.T) {
	bl := &fakeBlacklist{}
	svc, _, _ := setupTestAuthService(bl)

	if err := svc.Logout(context.Background(), "jti-1", time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("注销失败: %v", err)
	}
	ttl, ok := bl.tokens["jti-1"]
	if !ok {
		t.Fatal("jti 未加入黑名单")
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("黑名单 TTL 异常: %v", ttl)
	}

	// Redis 不可用时注销为空操作
	noRedis, _, _ := setupTestAuthService(nil)
	if err := noRedis.Logout(context.Background(), "jti-2", time.Now().Add(time.Minute)); err != nil {
		t.Errorf("无黑名单时期望无错误，实际 %v", err)
	}
}
