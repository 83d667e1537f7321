package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocal_SaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocal(dir, "/uploads/")
	if err != nil {
		t.Fatalf("NewLocal 失败: %v", err)
	}

	obj, err := s.Save(context.Background(), "recordings/hw-1/a.m4a", strings.NewReader("audio"), "audio/mp4")
	if err != nil {
		t.Fatalf("Save 失败: %v", err)
	}
	if obj.URL != "/uploads/recordings/hw-1/a.m4a" {
		t.Errorf("URL 不符合预期: %s", obj.URL)
	}

	data, err := os.ReadFile(filepath.Join(dir, "recordings", "hw-1", "a.m4a"))
	if err != nil || string(data) != "audio" {
		t.Fatalf("文件内容不符合预期: %q (err=%v)", data, err)
	}

	if err := s.Delete(context.Background(), obj.Key); err != nil {
		t.Fatalf("Delete 失败: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "recordings", "hw-1", "a.m4a")); !os.IsNotExist(err) {
		t.Error("删除后文件仍存在")
	}

	// 重复删除不报错
	if err := s.Delete(context.Background(), obj.Key); err != nil {
		t.Errorf("重复删除应忽略: %v", err)
	}
}

func TestLocal_RejectsTraversal(t *testing.T) {
	s, _ := NewLocal(t.TempDir(), "/uploads")
	if _, err := s.Save(context.Background(), "../escape.m4a", strings.NewReader("x"), ""); err == nil {
		t.Error("包含 .. 的存储键应被拒绝")
	}
}
