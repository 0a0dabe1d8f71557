package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

// SubscriberRepository 邮件简报订阅者
type SubscriberRepository struct {
	db    DB
	table string
	sql   sq.StatementBuilderType
}

// NewSubscriberRepository 创建订阅者仓库
func NewSubscriberRepository(db DB, table string) *SubscriberRepository {
	return &SubscriberRepository{
		db:    db,
		table: table,
		sql:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// EnsureSchema 表不存在时创建
func (r *SubscriberRepository) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	email TEXT PRIMARY KEY,
	unsubscribed BOOLEAN NOT NULL DEFAULT false,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`, pgx.Identifier{r.table}.Sanitize())
	if _, err := r.db.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("创建订阅表失败: %w", err)
	}
	return nil
}

// ActiveEmails 列出未退订的邮箱
func (r *SubscriberRepository) ActiveEmails(ctx context.Context) ([]string, error) {
	query, args, err := r.sql.Select("email").
		From(r.table).
		Where(sq.Eq{"unsubscribed": false}).
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("查询订阅者失败: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("读取订阅者失败: %w", err)
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}
