package models

import (
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/database"
)

// Schema 前台系统的表结构
func Schema() database.Schema {
	return database.Schema{
		Models: []interface{}{
			&RoomStatus{},
			&Role{},
			&PaymentMethod{},
			&AuthAccount{},
			&Employee{},
			&AccommodationType{},
			&Room{},
			&RoomRate{},
			&Guest{},
			&Stay{},
			&Payment{},
			&RoomHistory{},
			&PriceOverride{},
			&Setting{},
			&OutboxEvent{},
			&OperationLog{},
		},
		Tables: RequiredTables,
		PostgresPatches: []string{
			`CREATE EXTENSION IF NOT EXISTS btree_gist`,
			excludeOverlap("stays_room_no_overlap", "room_id"),
			excludeOverlap("stays_accommodation_no_overlap", "accommodation_type_id"),
		},
	}
}

// RequiredTables 服务运行所需的表
var RequiredTables = []string{
	"rooms",
	"room_rates",
	"accommodation_types",
	"room_statuses",
	"stays",
	"guests",
	"payments",
	"payment_methods",
	"room_history",
	"price_overrides",
	"employees",
	"roles",
	"auth_accounts",
	"settings",
	"outbox_events",
	"operation_logs",
}

// excludeOverlap 同一目标的有效住宿日期区间 [入住, 退房) 不得重叠
func excludeOverlap(name, column string) string {
	return `DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '` + name + `') THEN
		ALTER TABLE stays ADD CONSTRAINT ` + name + `
			EXCLUDE USING gist (
				` + column + ` WITH =,
				daterange(check_in_date, check_out_date, '[)') WITH &&
			) WHERE (is_active AND ` + column + ` IS NOT NULL);
	END IF;
END
$$`
}
