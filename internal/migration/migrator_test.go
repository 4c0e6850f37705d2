package migration

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/mindflow/config"
)

func TestParseDatabaseType(t *testing.T) {
	tests := []struct {
		input   string
		want    DatabaseType
		wantErr bool
	}{
		{"postgres", DatabaseTypePostgres, false},
		{"PostgreSQL", DatabaseTypePostgres, false},
		{"pg", DatabaseTypePostgres, false},
		{"mysql", DatabaseTypeMySQL, false},
		{"mariadb", DatabaseTypeMySQL, false},
		{"sqlite", DatabaseTypeSQLite, false},
		{" sqlite3 ", DatabaseTypeSQLite, false},
		{"oracle", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDatabaseType(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildDatabaseURL(t *testing.T) {
	assert.Equal(t, "postgres://u:p@db:5432/mindflow?sslmode=disable",
		BuildDatabaseURL(DatabaseTypePostgres, "db", 5432, "mindflow", "u", "p", "disable"))
	assert.Equal(t, "postgres://u:p@db:5432/mindflow?sslmode=require",
		BuildDatabaseURL(DatabaseTypePostgres, "db", 5432, "mindflow", "u", "p", ""))
	assert.Equal(t, "u:p@tcp(db:3306)/mindflow?parseTime=true&multiStatements=true",
		BuildDatabaseURL(DatabaseTypeMySQL, "db", 3306, "mindflow", "u", "p", ""))
	assert.Equal(t, "file:mindflow.db?mode=rwc&_foreign_keys=on",
		BuildDatabaseURL(DatabaseTypeSQLite, "", 0, "mindflow.db", "", "", ""))
	assert.Empty(t, BuildDatabaseURL("oracle", "", 0, "", "", "", ""))
}

func TestEmbeddedMigrations(t *testing.T) {
	for _, dt := range []DatabaseType{DatabaseTypePostgres, DatabaseTypeMySQL, DatabaseTypeSQLite} {
		t.Run(string(dt), func(t *testing.T) {
			files, err := availableMigrations(dt)
			require.NoError(t, err)
			require.Len(t, files, 2)
			assert.Equal(t, migrationFile{version: 1, name: "ledger_schema"}, files[0])
			assert.Equal(t, migrationFile{version: 2, name: "seed_badges"}, files[1])
		})
	}
}

func TestNewMigrator_InvalidConfig(t *testing.T) {
	_, err := NewMigrator(nil, nil)
	assert.ErrorContains(t, err, "config is required")

	_, err = NewMigrator(&Config{DatabaseType: DatabaseTypeSQLite}, nil)
	assert.ErrorContains(t, err, "database URL is required")

	_, err = NewMigrator(&Config{DatabaseType: "oracle", DatabaseURL: "x"}, nil)
	assert.ErrorContains(t, err, "unsupported database type")

	_, err = NewMigratorFromDatabaseConfig(config.DatabaseConfig{Driver: "oracle"}, nil)
	assert.ErrorContains(t, err, "invalid database type")
}

func TestMigrator_SQLite_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("sqlite3 driver requires cgo")
	}

	dbPath := filepath.Join(t.TempDir(), "ledger.db")
	m, err := NewMigratorFromDatabaseConfig(config.DatabaseConfig{Driver: "sqlite", Name: dbPath}, zap.NewNop())
	require.NoError(t, err)
	defer m.Close()

	ctx := context.Background()

	version, dirty, err := m.Version(ctx)
	require.NoError(t, err)
	assert.Zero(t, version)
	assert.False(t, dirty)

	require.NoError(t, m.Up(ctx))
	// 重复执行视为无变化
	require.NoError(t, m.Up(ctx))

	info, err := m.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(2), info.CurrentVersion)
	assert.Equal(t, 2, info.AppliedMigrations)
	assert.Zero(t, info.PendingMigrations)

	db, err := sql.Open("sqlite3", "file:"+dbPath)
	require.NoError(t, err)
	defer db.Close()

	var badges int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM badges").Scan(&badges))
	assert.Equal(t, 10, badges)

	require.NoError(t, m.Down(ctx))
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM badges").Scan(&badges))
	assert.Zero(t, badges)

	version, _, err = m.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
}

// fakeMigrator 记录调用，供 CLI 测试使用
type fakeMigrator struct {
	version uint
	dirty   bool
	calls   []string
	err     error
}

func (f *fakeMigrator) record(name string) error {
	f.calls = append(f.calls, name)
	return f.err
}

func (f *fakeMigrator) Up(context.Context) error {
	f.version = 2
	return f.record("up")
}
func (f *fakeMigrator) Down(context.Context) error {
	if f.version > 0 {
		f.version--
	}
	return f.record("down")
}
func (f *fakeMigrator) DownAll(context.Context) error {
	f.version = 0
	return f.record("downAll")
}
func (f *fakeMigrator) Steps(_ context.Context, n int) error {
	f.version = uint(int(f.version) + n)
	return f.record("steps")
}
func (f *fakeMigrator) Goto(_ context.Context, v uint) error {
	f.version = v
	return f.record("goto")
}
func (f *fakeMigrator) Force(_ context.Context, v int) error {
	f.version = uint(v)
	return f.record("force")
}
func (f *fakeMigrator) Version(context.Context) (uint, bool, error) {
	return f.version, f.dirty, nil
}
func (f *fakeMigrator) Status(context.Context) ([]MigrationStatus, error) {
	return []MigrationStatus{
		{Version: 1, Name: "ledger_schema", Applied: f.version >= 1},
		{Version: 2, Name: "seed_badges", Applied: f.version >= 2, Dirty: f.dirty && f.version == 2},
	}, nil
}
func (f *fakeMigrator) Info(ctx context.Context) (*MigrationInfo, error) {
	return &MigrationInfo{CurrentVersion: f.version, Dirty: f.dirty, TotalMigrations: 2}, nil
}
func (f *fakeMigrator) Close() error { return nil }

func TestCLI_Run(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		args     []string
		start    uint
		contains string
		version  uint
	}{
		{"default is status", nil, 1, "Total: 2, Applied: 1, Pending: 1", 1},
		{"up", []string{"up"}, 0, "Migrations complete. Current version: 2", 2},
		{"down", []string{"down"}, 2, "Rollback complete. Current version: 1", 1},
		{"reset", []string{"reset"}, 2, "All migrations rolled back.", 0},
		{"steps back", []string{"steps", "-1"}, 2, "Rolling back 1 migration(s)...", 1},
		{"goto", []string{"goto", "1"}, 2, "Migrating to version 1...", 1},
		{"force", []string{"force", "2"}, 0, "Version forced to 2", 2},
		{"version empty", []string{"version"}, 0, "No migrations applied yet.", 0},
		{"info", []string{"info"}, 2, "Current Version:    2", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm := &fakeMigrator{version: tt.start}
			cli := NewCLI(fm)
			var buf bytes.Buffer
			cli.SetOutput(&buf)

			require.NoError(t, cli.Run(ctx, tt.args))
			assert.Contains(t, buf.String(), tt.contains)
			assert.Equal(t, tt.version, fm.version)
		})
	}
}

func TestCLI_RunErrors(t *testing.T) {
	ctx := context.Background()
	cli := NewCLI(&fakeMigrator{})
	cli.SetOutput(&bytes.Buffer{})

	assert.ErrorContains(t, cli.Run(ctx, []string{"steps"}), "requires a numeric argument")
	assert.ErrorContains(t, cli.Run(ctx, []string{"goto", "abc"}), "invalid number")
	assert.ErrorContains(t, cli.Run(ctx, []string{"goto", "-3"}), "non-negative")
	assert.ErrorContains(t, cli.Run(ctx, []string{"sideways"}), "unknown migrate command")

	failing := NewCLI(&fakeMigrator{err: errors.New("locked")})
	failing.SetOutput(&bytes.Buffer{})
	assert.ErrorContains(t, failing.Run(ctx, []string{"up"}), "locked")
}

func TestCLI_StatusMarksDirty(t *testing.T) {
	var buf bytes.Buffer
	cli := NewCLI(&fakeMigrator{version: 2, dirty: true})
	cli.SetOutput(&buf)

	require.NoError(t, cli.RunStatus(context.Background()))
	assert.Regexp(t, `000002\s+seed_badges\s+Dirty`, buf.String())
	assert.Regexp(t, `000001\s+ledger_schema\s+Applied`, buf.String())

	buf.Reset()
	require.NoError(t, cli.RunVersion(context.Background()))
	assert.Equal(t, "Current version: 2 (dirty)\n", buf.String())
}
