package config

import (
	"testing"
)

func validConfig() *Config {
	return &Config{
		Server:   ServerConfig{Port: 8080},
		Database: DatabaseConfig{Driver: "postgres"},
		Auth:     AuthConfig{JWTSecret: "0123456789abcdef"},
		Storage:  StorageConfig{Driver: "local"},
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("期望校验通过: %v", err)
	}
}

func TestValidate_ShortSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.JWTSecret = "short"
	if err := cfg.Validate(); err == nil {
		t.Fatal("期望 jwt_secret 过短时报错")
	}
}

func TestValidate_BadPort(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Fatal("期望端口越界时报错")
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Driver = "mysql"
	if err := cfg.Validate(); err == nil {
		t.Fatal("期望不支持的数据库驱动报错")
	}
}

func TestValidate_GCSRequiresBucket(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Driver = "gcs"
	if err := cfg.Validate(); err == nil {
		t.Fatal("期望 gcs 驱动缺少 bucket 时报错")
	}
	cfg.Storage.GCSBucket = "recordings"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("期望校验通过: %v", err)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("HW_AUTH_JWT_SECRET", "env-secret-0123456789")
	t.Setenv("HW_SERVER_PORT", "9090")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("期望 port=9090，实际=%d", cfg.Server.Port)
	}
	if !cfg.Feature.ValidateAssignees {
		t.Error("期望 validate_assignees 默认开启")
	}
	if cfg.Feature.StrictGrading {
		t.Error("期望 strict_grading 默认关闭")
	}
}
