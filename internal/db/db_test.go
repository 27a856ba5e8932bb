package db

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/go-chantiers/auth"
	"github.com/diewo77/go-chantiers/internal/config"
	"github.com/diewo77/go-chantiers/internal/logging"
	"github.com/diewo77/go-chantiers/internal/models"
)

func TestNormalizeDSN(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{`"postgres://u:p@h:5432/db?sslmode=require"`, "postgres://u:p@h:5432/db?sslmode=require"},
		{"host=db   user=app dbname=chantiers", "host=db user=app dbname=chantiers sslmode=disable"},
		{"host=db user=app dbname=chantiers sslmode=require", "host=db user=app dbname=chantiers sslmode=require"},
		{"garbage", "garbage"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeDSN(tt.in), tt.in)
	}
}

func TestToURLDSNAndMask(t *testing.T) {
	u := ToURLDSN("host=db port=5432 user=app password=s3cret dbname=chantiers sslmode=disable")
	assert.Equal(t, "postgres://app:s3cret@db:5432/chantiers?sslmode=disable", u)
	assert.Equal(t, "host=db", ToURLDSN("host=db"))

	assert.NotContains(t, MaskDSN(u), "s3cret")
	assert.Equal(t, "host=db password=*** dbname=x", MaskDSN("host=db password=s3cret dbname=x"))
}

func TestMigrateAndSeedSQLite(t *testing.T) {
	cfg := config.DatabaseConfig{Path: fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())}
	conn, err := Connect(cfg, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, "file:x?mode=memory&_foreign_keys=on", sqliteDSN("file:x?mode=memory"))

	require.NoError(t, Migrate(conn, cfg))
	require.NoError(t, Ping(t.Context(), conn))

	require.NoError(t, Seed(conn))
	require.NoError(t, Seed(conn))

	var users []models.User
	require.NoError(t, conn.Find(&users).Error)
	require.Len(t, users, 1)
	admin := users[0]
	assert.Equal(t, SeedAdminEmail, admin.Email)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.True(t, auth.CheckPassword(admin.HashedPassword, SeedAdminPassword))
	require.NotNil(t, admin.CompanyID)

	var companies int64
	conn.Model(&models.Company{}).Count(&companies)
	assert.Equal(t, int64(1), companies)
}
