/*
 * @Description: 启动时的数据库表结构迁移
 * @Author: 安知鱼
 * @Date: 2025-07-14 09:31:40
 * @LastEditTime: 2025-09-10 15:44:28
 * @LastEditors: 安知鱼
 */
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
)

// Migrate 在启动时创建缺失的数据表。
// DDL 针对三种方言分别处理自增主键的写法，已存在的表不做变更。
func Migrate(ctx context.Context, db *sql.DB, dialect string) error {
	log.Println("⚡ 开始数据库表结构迁移...")

	for _, stmt := range schemaStatements(dialect) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("执行建表语句失败: %w", err)
		}
	}

	log.Println("✅ 数据库表结构迁移成功")
	return nil
}

func schemaStatements(dialect string) []string {
	pk := "INTEGER PRIMARY KEY AUTOINCREMENT"
	switch dialect {
	case "mysql":
		pk = "BIGINT UNSIGNED PRIMARY KEY AUTO_INCREMENT"
	case "postgres":
		pk = "BIGSERIAL PRIMARY KEY"
	}

	tables := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id {{pk}},
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			username VARCHAR(64) NOT NULL UNIQUE,
			nickname VARCHAR(64) NOT NULL DEFAULT '',
			email VARCHAR(255) NOT NULL DEFAULT '',
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(32) NOT NULL DEFAULT 'admin',
			last_login_at TIMESTAMP NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE TABLE IF NOT EXISTS categories (
			id {{pk}},
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			name VARCHAR(64) NOT NULL,
			slug VARCHAR(64) NOT NULL UNIQUE,
			description VARCHAR(255) NOT NULL DEFAULT '',
			color VARCHAR(16) NOT NULL DEFAULT '',
			icon VARCHAR(64) NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			sort_order INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS posts (
			id {{pk}},
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			title VARCHAR(255) NOT NULL,
			slug VARCHAR(255) NOT NULL UNIQUE,
			excerpt TEXT NOT NULL,
			blocks TEXT NOT NULL,
			faqs TEXT NOT NULL,
			tags TEXT NOT NULL,
			seo TEXT NOT NULL,
			category_id INTEGER NULL,
			author_id INTEGER NOT NULL,
			status VARCHAR(16) NOT NULL DEFAULT 'draft',
			is_featured BOOLEAN NOT NULL DEFAULT FALSE,
			cover_image TEXT NOT NULL,
			view_count INTEGER NOT NULL DEFAULT 0,
			word_count INTEGER NOT NULL DEFAULT 0,
			read_time INTEGER NOT NULL DEFAULT 0,
			published_at TIMESTAMP NULL,
			scheduled_at TIMESTAMP NULL
		)`,
		`CREATE TABLE IF NOT EXISTS contacts (
			id {{pk}},
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			name VARCHAR(100) NOT NULL,
			email VARCHAR(255) NOT NULL,
			phone VARCHAR(30) NOT NULL DEFAULT '',
			product_question VARCHAR(50) NOT NULL,
			message TEXT NOT NULL,
			status VARCHAR(16) NOT NULL DEFAULT 'pending',
			priority VARCHAR(16) NOT NULL DEFAULT 'medium',
			is_read BOOLEAN NOT NULL DEFAULT FALSE,
			assigned_to INTEGER NULL,
			notes TEXT NOT NULL,
			replied_at TIMESTAMP NULL,
			ip_address VARCHAR(64) NOT NULL DEFAULT '',
			user_agent VARCHAR(255) NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_status ON posts (status)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_category ON posts (category_id)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_published_at ON posts (published_at)`,
		`CREATE INDEX IF NOT EXISTS idx_contacts_status ON contacts (status)`,
	}

	stmts := make([]string, 0, len(tables))
	for _, t := range tables {
		stmt := strings.ReplaceAll(t, "{{pk}}", pk)
		// MySQL 8.0 以下不支持 CREATE INDEX IF NOT EXISTS，索引缺失不影响功能
		if dialect == "mysql" && strings.HasPrefix(stmt, "CREATE INDEX") {
			continue
		}
		stmts = append(stmts, stmt)
	}
	return stmts
}
