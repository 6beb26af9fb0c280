package database

import (
	"io/fs"
	"strings"
	"testing"
)

// 每个 up 迁移都必须有对应的 down 迁移
func TestMigrations_Paired(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		t.Fatalf("读取迁移目录失败: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("迁移目录为空")
	}

	names := make(map[string]bool, len(entries))
	for _, e := range entries {
		names[e.Name()] = true
	}
	for name := range names {
		if strings.HasSuffix(name, ".up.sql") {
			down := strings.TrimSuffix(name, ".up.sql") + ".down.sql"
			if !names[down] {
				t.Errorf("%s 缺少对应的 %s", name, down)
			}
		}
	}
}
