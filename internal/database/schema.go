package database

import (
	"context"
	"database/sql"
)

// travelPlansDDL creates the saved-plan table. Ids are uuid strings
// generated by the application; timestamps are written by the application
// in UTC.
const travelPlansDDL = `CREATE TABLE IF NOT EXISTS travel_plans (
	id          CHAR(36)     NOT NULL PRIMARY KEY,
	user_id     VARCHAR(255) NOT NULL,
	title       VARCHAR(255) NOT NULL DEFAULT '',
	destination VARCHAR(255) NOT NULL DEFAULT '',
	departure   VARCHAR(255) NOT NULL DEFAULT '',
	num_days    INT          NOT NULL DEFAULT 0,
	num_people  INT          NOT NULL DEFAULT 0,
	budget      DOUBLE       NOT NULL DEFAULT 0,
	start_date  VARCHAR(64)  NOT NULL DEFAULT '',
	end_date    VARCHAR(64)  NOT NULL DEFAULT '',
	plan_data   LONGTEXT,
	created_at  DATETIME(6)  NOT NULL,
	updated_at  DATETIME(6)  NOT NULL,
	INDEX idx_travel_plans_user_created (user_id, created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// EnsureSchema creates missing tables. It is safe to run on every start.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, travelPlansDDL)
	return err
}
