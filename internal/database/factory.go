package database

import (
	"github.com/Lumos-Labs-HQ/dbfill/internal/database/mysql"
	"github.com/Lumos-Labs-HQ/dbfill/internal/database/postgres"
	"github.com/Lumos-Labs-HQ/dbfill/internal/database/sqlite"
)

func NewAdapter(provider string) Adapter {
	switch provider {
	case "postgresql", "postgres":
		return postgres.New()
	case "mysql":
		return mysql.New()
	case "sqlite", "sqlite3":
		return sqlite.New()
	default:
		return postgres.New()
	}
}
