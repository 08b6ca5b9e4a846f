package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/essgate/internal/domain/repository"
)

func seedEmployee(t *testing.T, r *EmployeeRepo) *repository.Employee {
	t.Helper()
	enc := "enc"
	e, err := r.Create(context.Background(), repository.CreateEmployeeInput{
		ID:                   "HR-EMP-00001",
		EmployeeName:         "Ana Pérez",
		UserID:               "ana@acme.test",
		AppID:                "ana01",
		AppPasswordEnc:       &enc,
		AllowESS:             true,
		RequirePasswordReset: true,
	})
	require.NoError(t, err)
	return e
}

func TestEmployeeRepo_Lookups(t *testing.T) {
	ctx := context.Background()
	r := NewEmployeeRepo()
	seedEmployee(t, r)

	e, err := r.GetByAppID(ctx, "ana01")
	require.NoError(t, err)
	assert.Equal(t, "HR-EMP-00001", e.ID)

	e, err = r.GetByUserID(ctx, "ana@acme.test")
	require.NoError(t, err)
	assert.Equal(t, "ana01", e.AppID)

	_, err = r.GetByAppID(ctx, "nobody")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = r.GetByUserID(ctx, "")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = r.Create(ctx, repository.CreateEmployeeInput{ID: "HR-EMP-00002", AppID: "ana01"})
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestEmployeeRepo_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	r := NewEmployeeRepo()
	seedEmployee(t, r)

	e, err := r.GetByID(ctx, "HR-EMP-00001")
	require.NoError(t, err)
	*e.AppPasswordEnc = "mutated"
	e.AllowESS = false

	again, err := r.GetByID(ctx, "HR-EMP-00001")
	require.NoError(t, err)
	assert.Equal(t, "enc", *again.AppPasswordEnc)
	assert.True(t, again.AllowESS)
}

func TestEmployeeRepo_DeviceLifecycle(t *testing.T) {
	ctx := context.Background()
	r := NewEmployeeRepo()
	seedEmployee(t, r)

	dev := repository.BoundDevice{ID: "dev-1", Model: "Pixel 8", Brand: "Google", RegisteredOn: time.Now()}
	require.NoError(t, r.BindDevice(ctx, "HR-EMP-00001", dev))

	err := r.BindDevice(ctx, "HR-EMP-00001", repository.BoundDevice{ID: "dev-2"})
	assert.ErrorIs(t, err, repository.ErrDeviceAlreadyBound)

	e, _ := r.GetByID(ctx, "HR-EMP-00001")
	require.NotNil(t, e.Device)
	assert.Equal(t, "dev-1", e.Device.ID)

	require.NoError(t, r.ClearDevice(ctx, "HR-EMP-00001"))
	e, _ = r.GetByID(ctx, "HR-EMP-00001")
	assert.Nil(t, e.Device)

	require.NoError(t, r.BindDevice(ctx, "HR-EMP-00001", repository.BoundDevice{ID: "dev-2"}))

	assert.ErrorIs(t, r.ClearDevice(ctx, "missing"), repository.ErrNotFound)
	assert.ErrorIs(t, r.BindDevice(ctx, "missing", dev), repository.ErrNotFound)
}

func TestEmployeeRepo_ConcurrentBindOnlyOneWins(t *testing.T) {
	ctx := context.Background()
	r := NewEmployeeRepo()
	seedEmployee(t, r)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.BindDevice(ctx, "HR-EMP-00001", repository.BoundDevice{ID: "dev"}) == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestEmployeeRepo_UpdateAppPassword(t *testing.T) {
	ctx := context.Background()
	r := NewEmployeeRepo()
	seedEmployee(t, r)

	require.NoError(t, r.UpdateAppPassword(ctx, "HR-EMP-00001", "new", false))
	e, _ := r.GetByID(ctx, "HR-EMP-00001")
	assert.Equal(t, "new", *e.AppPasswordEnc)
	assert.True(t, e.RequirePasswordReset)

	require.NoError(t, r.UpdateAppPassword(ctx, "HR-EMP-00001", "newer", true))
	e, _ = r.GetByID(ctx, "HR-EMP-00001")
	assert.False(t, e.RequirePasswordReset)
}

func TestUserRepo_Credentials(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepo()
	_, err := r.Create(ctx, repository.CreateUserInput{ID: "ana@acme.test", Roles: []string{"Employee"}})
	require.NoError(t, err)
	_, err = r.Create(ctx, repository.CreateUserInput{ID: "bob@acme.test"})
	require.NoError(t, err)

	require.NoError(t, r.UpdateAPICredentials(ctx, "ana@acme.test", "key-a", "sec"))
	u, err := r.GetByAPIKey(ctx, "key-a")
	require.NoError(t, err)
	assert.Equal(t, "ana@acme.test", u.ID)

	assert.ErrorIs(t, r.UpdateAPICredentials(ctx, "bob@acme.test", "key-a", "x"), repository.ErrConflict)
	assert.ErrorIs(t, r.UpdateAPICredentials(ctx, "nobody", "k", "x"), repository.ErrNotFound)

	_, err = r.GetByAPIKey(ctx, "")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestErrorLogRepo_RecentNewestFirst(t *testing.T) {
	ctx := context.Background()
	r := NewErrorLogRepo()
	for _, title := range []string{"a", "b", "c"} {
		require.NoError(t, r.Insert(ctx, repository.ErrorLog{Title: title}))
	}

	got, err := r.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].Title)
	assert.Equal(t, "b", got[1].Title)

	all, _ := r.Recent(ctx, 0)
	assert.Len(t, all, 3)
}
