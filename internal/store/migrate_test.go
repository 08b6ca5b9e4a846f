package store

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMigrate struct {
	upErr      error
	downErr    error
	version    uint
	dirty      bool
	versionErr error
	closed     bool
}

func (f *fakeMigrate) Up() error   { return f.upErr }
func (f *fakeMigrate) Down() error { return f.downErr }
func (f *fakeMigrate) Version() (uint, bool, error) {
	return f.version, f.dirty, f.versionErr
}
func (f *fakeMigrate) Close() (error, error) {
	f.closed = true
	return nil, nil
}

func TestMigrator_NoChangeIsNotError(t *testing.T) {
	m := &Migrator{m: &fakeMigrate{upErr: migrate.ErrNoChange, downErr: migrate.ErrNoChange}}
	assert.NoError(t, m.Up())
	assert.NoError(t, m.Down())
}

func TestMigrator_UpFailure(t *testing.T) {
	m := &Migrator{m: &fakeMigrate{upErr: errors.New("syntax error at or near")}}
	err := m.Up()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "syntax error")
}

func TestMigrator_Version(t *testing.T) {
	m := &Migrator{m: &fakeMigrate{versionErr: migrate.ErrNilVersion}}
	v, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Zero(t, v)
	assert.False(t, dirty)

	m = &Migrator{m: &fakeMigrate{version: 3, dirty: true}}
	v, dirty, err = m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(3), v)
	assert.True(t, dirty)
}

func TestMigrator_Close(t *testing.T) {
	f := &fakeMigrate{}
	m := &Migrator{m: f}
	require.NoError(t, m.Close())
	assert.True(t, f.closed)
}

func TestToMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@h:5432/db", toMigrateURL("postgres://u:p@h:5432/db"))
	assert.Equal(t, "pgx5://u:p@h/db", toMigrateURL("postgresql://u:p@h/db"))
	assert.Equal(t, "pgx5://h/db", toMigrateURL("pgx5://h/db"))
}

func TestOpen_Memory(t *testing.T) {
	s, err := Open(context.Background(), Config{Driver: "memory"})
	require.NoError(t, err)
	defer s.Close()
	assert.NoError(t, s.Ping(context.Background()))
	assert.NotNil(t, s.Employees())
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "mongo"})
	assert.Error(t, err)
}
