package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Schema 描述需要迁移的模型及 PostgreSQL 专属补丁
type Schema struct {
	Models []interface{}
	// Tables 为就绪检查所需的表名
	Tables []string
	// PostgresPatches 只在 PostgreSQL 上执行，必须可重复执行
	PostgresPatches []string
}

// Migrate 执行 AutoMigrate 并应用补丁
func Migrate(ctx context.Context, db *gorm.DB, schema Schema) error {
	tx := db.WithContext(ctx)
	if err := tx.AutoMigrate(schema.Models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if !IsPostgres(db) {
		return nil
	}
	for _, sql := range schema.PostgresPatches {
		if err := tx.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}

// MissingTables 返回尚未创建的表
func MissingTables(ctx context.Context, db *gorm.DB, tables []string) []string {
	migrator := db.WithContext(ctx).Migrator()
	missing := make([]string, 0)
	for _, table := range tables {
		if !migrator.HasTable(table) {
			missing = append(missing, table)
		}
	}
	return missing
}
