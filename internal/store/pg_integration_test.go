//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dropDatabas3/essgate/internal/domain/repository"
	"github.com/dropDatabas3/essgate/internal/store"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:18-alpine",
		postgres.WithDatabase("essgate_test"),
		postgres.WithUsername("essgate"),
		postgres.WithPassword("essgate"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

func TestPostgresStore_DeviceAndCredentials(t *testing.T) {
	dsn := startPostgres(t)
	ctx := context.Background()

	m, err := store.NewMigrator(dsn)
	require.NoError(t, err)
	require.NoError(t, m.Up())
	v, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(3), v)
	assert.False(t, dirty)
	require.NoError(t, m.Close())

	st, err := store.Open(ctx, store.Config{Driver: "postgres", DSN: dsn, ConnectRetries: 3})
	require.NoError(t, err)
	defer st.Close()

	_, err = st.Users().Create(ctx, repository.CreateUserInput{ID: "ana@acme.test", FullName: "Ana", Roles: []string{"Employee"}})
	require.NoError(t, err)
	enc := "enc"
	_, err = st.Employees().Create(ctx, repository.CreateEmployeeInput{
		ID: "HR-EMP-00001", EmployeeName: "Ana", UserID: "ana@acme.test",
		AppID: "ana01", AppPasswordEnc: &enc, AllowESS: true, RequirePasswordReset: true,
	})
	require.NoError(t, err)

	dev := repository.BoundDevice{ID: "dev-1", Model: "Pixel 8", Brand: "Google", RegisteredOn: time.Now().UTC().Truncate(time.Microsecond)}
	require.NoError(t, st.Employees().BindDevice(ctx, "HR-EMP-00001", dev))
	assert.ErrorIs(t, st.Employees().BindDevice(ctx, "HR-EMP-00001", dev), repository.ErrDeviceAlreadyBound)

	e, err := st.Employees().GetByUserID(ctx, "ana@acme.test")
	require.NoError(t, err)
	require.NotNil(t, e.Device)
	assert.True(t, e.Device.Matches("dev-1", "Pixel 8", "Google"))

	require.NoError(t, st.Employees().ClearDevice(ctx, "HR-EMP-00001"))
	e, err = st.Employees().GetByAppID(ctx, "ana01")
	require.NoError(t, err)
	assert.Nil(t, e.Device)

	require.NoError(t, st.Employees().UpdateAppPassword(ctx, "HR-EMP-00001", "enc2", true))
	e, _ = st.Employees().GetByID(ctx, "HR-EMP-00001")
	assert.Equal(t, "enc2", *e.AppPasswordEnc)
	assert.False(t, e.RequirePasswordReset)

	require.NoError(t, st.Users().UpdateAPICredentials(ctx, "ana@acme.test", "k123", "s-enc"))
	u, err := st.Users().GetByAPIKey(ctx, "k123")
	require.NoError(t, err)
	assert.Equal(t, []string{"Employee"}, u.Roles)

	require.NoError(t, st.ErrorLogs().Insert(ctx, repository.ErrorLog{
		ID: "6f1c1a0e-8c1b-4f43-9d3c-2d1f3e0b9a11", Title: "Mobile App Login Error", Detail: "boom", CreatedAt: time.Now().UTC(),
	}))
	logs, err := st.ErrorLogs().Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}
