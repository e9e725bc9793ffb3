package sqldb

import (
	"reflect"
	"testing"

	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/model"
)

func TestCondBuilder(t *testing.T) {
	var b condBuilder
	b.add("status = ?", "published")
	b.addIn("category_id", []uint{1, 2})
	b.addTagsAnyOf("tags", []string{"go"})

	where, args := b.where()
	expected := " WHERE status = ? AND category_id IN (?,?) AND (tags LIKE ? ESCAPE '!')"
	if where != expected {
		t.Errorf("where = %q, 期望 %q", where, expected)
	}
	expectedArgs := []any{"published", uint(1), uint(2), "%,go,%"}
	if !reflect.DeepEqual(args, expectedArgs) {
		t.Errorf("args = %v, 期望 %v", args, expectedArgs)
	}
}

func TestCondBuilderEmpty(t *testing.T) {
	var b condBuilder
	where, args := b.where()
	if where != "" || args != nil {
		t.Errorf("空条件应产生空 WHERE, 实际 %q %v", where, args)
	}
}

func TestAddInEmptySet(t *testing.T) {
	var b condBuilder
	b.addIn("id", nil)
	where, _ := b.where()
	// 空集合是明确的"无匹配"，区别于不加条件
	if where != " WHERE 1 = 0" {
		t.Errorf("where = %q", where)
	}
}

func TestOrderByWhitelist(t *testing.T) {
	allowed := map[string]string{
		"published_at": "published_at",
		"views":        "view_count",
	}
	sort := []model.SortField{
		{Field: "score", Direction: model.SortDesc}, // 不在白名单，跳过
		{Field: "views", Direction: model.SortDesc},
		{Field: "published_at", Direction: model.SortAsc},
	}
	got := orderBy(sort, allowed)
	expected := " ORDER BY view_count DESC, published_at ASC"
	if got != expected {
		t.Errorf("orderBy = %q, 期望 %q", got, expected)
	}

	if got := orderBy([]model.SortField{{Field: "evil; DROP TABLE", Direction: model.SortAsc}}, allowed); got != "" {
		t.Errorf("白名单外的字段应全部跳过, 实际 %q", got)
	}
}

func TestRebind(t *testing.T) {
	q := "SELECT * FROM posts WHERE a = ? AND b = ?"
	if got := rebind("postgres", q); got != "SELECT * FROM posts WHERE a = $1 AND b = $2" {
		t.Errorf("postgres rebind = %q", got)
	}
	if got := rebind("mysql", q); got != q {
		t.Errorf("mysql 不应重写占位符: %q", got)
	}
}

func TestWrapTags(t *testing.T) {
	if got := wrapTags([]string{"go", "web"}); got != ",go,web," {
		t.Errorf("wrapTags = %q", got)
	}
	if got := wrapTags(nil); got != "" {
		t.Errorf("空标签应存为空串, 实际 %q", got)
	}
	if got := unwrapTags(",go,web,"); !reflect.DeepEqual(got, []string{"go", "web"}) {
		t.Errorf("unwrapTags = %v", got)
	}
	if got := unwrapTags(""); got != nil {
		t.Errorf("空串应还原为 nil, 实际 %v", got)
	}
}

func TestEscapeLike(t *testing.T) {
	// 转义字符是 '!' 而非反斜杠，SQLite 的 LIKE 没有默认转义字符
	if got := escapeLike("100%_done"); got != "100!%!_done" {
		t.Errorf("escapeLike = %q", got)
	}
	if got := escapeLike("wow!"); got != "wow!!" {
		t.Errorf("转义字符自身应被双写, 实际 %q", got)
	}
}

func TestCategoryCondsSearchNameOrDescription(t *testing.T) {
	s := &categoryStore{dialect: "sqlite"}
	where, args := s.conds(&model.Predicate{Search: "工具"}).where()

	expected := " WHERE (LOWER(name) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!')"
	if where != expected {
		t.Errorf("where = %q, 期望 %q", where, expected)
	}
	if !reflect.DeepEqual(args, []any{"%工具%", "%工具%"}) {
		t.Errorf("args = %v, 名称与描述应使用同一模式", args)
	}
}

func TestContactCondsProductQuestion(t *testing.T) {
	s := &contactStore{dialect: "sqlite"}
	where, args := s.conds(&model.Predicate{ProductQuestion: "Pricing"}).where()

	if where != " WHERE product_question = ?" {
		t.Errorf("where = %q", where)
	}
	if !reflect.DeepEqual(args, []any{"Pricing"}) {
		t.Errorf("args = %v", args)
	}
}
