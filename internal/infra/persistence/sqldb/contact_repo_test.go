package sqldb

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/anzhiyu-c/anheyu-cms/pkg/constant"
	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/model"
)

// newTestDB 打开一个迁移完毕的内存 SQLite 库。
// 内存库随连接销毁，连接池必须限制为单连接。
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("打开内存数据库失败: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := Migrate(context.Background(), db, "sqlite"); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func TestContactStoreCreateDefaults(t *testing.T) {
	store := NewContactStore(newTestDB(t), "sqlite")

	created, err := store.Create(context.Background(), &model.Contact{
		Name:            "张三",
		Email:           "zhangsan@example.com",
		ProductQuestion: constant.ContactQuestionPricing,
		Message:         "想了解一下报价",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if created.Status != constant.ContactStatusPending {
		t.Errorf("默认状态 = %q, 期望 %q", created.Status, constant.ContactStatusPending)
	}
	if created.Priority != constant.ContactPriorityMedium {
		t.Errorf("默认优先级 = %q, 期望 %q", created.Priority, constant.ContactPriorityMedium)
	}
	if created.ProductQuestion != constant.ContactQuestionPricing {
		t.Errorf("咨询类别 = %q, 期望 %q", created.ProductQuestion, constant.ContactQuestionPricing)
	}
	if created.IsRead {
		t.Error("新留言应为未读")
	}
}

func TestCategoryStoreStats(t *testing.T) {
	store := NewCategoryStore(newTestDB(t), "sqlite")
	ctx := context.Background()

	if _, err := store.Create(ctx, &model.Category{Name: "教程", Slug: "tutorial", IsActive: true}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.Create(ctx, &model.Category{Name: "归档", Slug: "archive", IsActive: false}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 2 || stats.Active != 1 || stats.Inactive != 1 {
		t.Errorf("stats = %+v, 期望 total=2 active=1 inactive=1", stats)
	}
}
