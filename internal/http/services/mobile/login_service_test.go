package mobile

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/essgate/internal/domain/repository"
	dto "github.com/dropDatabas3/essgate/internal/http/dto/mobile"
	"github.com/dropDatabas3/essgate/internal/session"
)

func loginReq(appID, pwd, dev, model, brand string) dto.LoginRequest {
	return dto.LoginRequest{AppID: appID, AppPassword: pwd, DeviceID: dev, DeviceModel: model, DeviceBrand: brand}
}

func TestLogin_Rejections(t *testing.T) {
	f := newFixture(t)
	f.addEmployee(t, "HR-EMP-00001", "ana", "ana@acme.test", "1234")
	f.addEmployee(t, "HR-EMP-00002", "off", "ana@acme.test", "1234", func(in *repository.CreateEmployeeInput) { in.AllowESS = false })
	f.addEmployee(t, "HR-EMP-00003", "nopwd", "ana@acme.test", "")

	tests := []struct {
		name string
		in   dto.LoginRequest
		want error
	}{
		{"blank app id", loginReq("   ", "1234", "d1", "m", "b"), ErrAppIDRequired},
		{"unknown app id", loginReq("ghost", "1234", "d1", "m", "b"), ErrInvalidAppID},
		{"ess disabled", loginReq("off", "1234", "d1", "m", "b"), ErrESSDisabled},
		{"password not set", loginReq("nopwd", "1234", "d1", "m", "b"), ErrPasswordNotSet},
		{"wrong password", loginReq("ana", "9999", "d1", "m", "b"), ErrInvalidPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.svc.Login.Login(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, res)
		})
	}

	// ningún rechazo registra dispositivo
	assert.Nil(t, f.employee(t, "HR-EMP-00001").Device)
}

func TestLogin_FirstLoginBindsDevice(t *testing.T) {
	f := newFixture(t)
	f.addEmployee(t, "HR-EMP-00001", "ana", "ana@acme.test", "1234", func(in *repository.CreateEmployeeInput) {
		in.RequirePasswordReset = true
	})

	res, err := f.svc.Login.Login(context.Background(), loginReq("  ana ", "1234", "dev-1", "Pixel 8", "Google"))
	require.NoError(t, err)

	d := res.Data
	assert.Equal(t, "HR-EMP-00001", d.EmployeeID)
	assert.Equal(t, "Employee HR-EMP-00001", d.EmployeeName)
	assert.Equal(t, "ana@acme.test", d.User)
	assert.Equal(t, "dev-1", d.DeviceID)
	assert.Equal(t, "ana", d.AppID)
	assert.True(t, d.RequirePasswordReset)
	assert.Len(t, d.APIKey, CredentialLength)
	assert.Len(t, d.APISecret, CredentialLength)

	dev := f.employee(t, "HR-EMP-00001").Device
	require.NotNil(t, dev)
	assert.Equal(t, repository.BoundDevice{ID: "dev-1", Model: "Pixel 8", Brand: "Google", RegisteredOn: fixedNow}, *dev)

	// la sesión abierta es válida
	id, err := f.sessions.Authenticate(context.Background(), res.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, "ana@acme.test", id.UserID)
	assert.False(t, res.SessionExpiresAt.IsZero())
}

func TestLogin_DeviceMismatch(t *testing.T) {
	f := newFixture(t)
	f.addEmployee(t, "HR-EMP-00001", "ana", "ana@acme.test", "1234")
	ctx := context.Background()

	_, err := f.svc.Login.Login(ctx, loginReq("ana", "1234", "dev-1", "Pixel 8", "Google"))
	require.NoError(t, err)
	bound := *f.employee(t, "HR-EMP-00001").Device

	tests := []struct {
		name string
		in   dto.LoginRequest
	}{
		{"other id", loginReq("ana", "1234", "dev-2", "Pixel 8", "Google")},
		{"other model", loginReq("ana", "1234", "dev-1", "Pixel 9", "Google")},
		{"other brand", loginReq("ana", "1234", "dev-1", "Pixel 8", "google")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Login.Login(ctx, tt.in)
			assert.ErrorIs(t, err, ErrDeviceMismatch)
			assert.Equal(t, bound, *f.employee(t, "HR-EMP-00001").Device)
		})
	}

	_, err = f.svc.Login.Login(ctx, loginReq("ana", "1234", "dev-1", "Pixel 8", "Google"))
	assert.NoError(t, err, "mismo dispositivo sigue entrando")
}

func TestLogin_CredentialsRotate(t *testing.T) {
	f := newFixture(t)
	f.addEmployee(t, "HR-EMP-00001", "ana", "ana@acme.test", "1234")
	ctx := context.Background()
	in := loginReq("ana", "1234", "dev-1", "m", "b")

	first, err := f.svc.Login.Login(ctx, in)
	require.NoError(t, err)
	second, err := f.svc.Login.Login(ctx, in)
	require.NoError(t, err)

	assert.NotEmpty(t, first.Data.APISecret)
	assert.Equal(t, first.Data.APIKey, second.Data.APIKey, "api_key estable")
	assert.NotEqual(t, first.Data.APISecret, second.Data.APISecret, "api_secret rota")

	u, err := f.store.Users().GetByID(ctx, "ana@acme.test")
	require.NoError(t, err)
	assert.NotEqual(t, second.Data.APISecret, u.APISecretEnc, "se guarda cifrado")
}

func TestLogin_EmployeeWithoutUserIsInternal(t *testing.T) {
	f := newFixture(t)
	f.addEmployee(t, "HR-EMP-00009", "orphan", "", "1234")

	_, err := f.svc.Login.Login(context.Background(), loginReq("orphan", "1234", "d", "m", "b"))
	require.Error(t, err)
	assert.False(t, isClientError(err))
}

func TestLogin_ConcurrentFirstLoginsBindOnce(t *testing.T) {
	f := newFixture(t)
	f.addEmployee(t, "HR-EMP-00001", "ana", "ana@acme.test", "1234")

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			dev := string(rune('a' + i))
			_, errs[i] = f.svc.Login.Login(context.Background(), loginReq("ana", "1234", dev, "m", "b"))
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, ErrDeviceMismatch)
	}
	assert.Equal(t, 1, ok)
	require.NotNil(t, f.employee(t, "HR-EMP-00001").Device)
}

func TestLogin_BlankDeviceIDLeavesAccountUnbound(t *testing.T) {
	f := newFixture(t)
	f.addEmployee(t, "HR-EMP-00001", "ana", "ana@acme.test", "1234")
	ctx := context.Background()

	res, err := f.svc.Login.Login(ctx, loginReq("ana", "1234", "", "Pixel 8", "Google"))
	require.NoError(t, err)
	assert.Empty(t, res.Data.DeviceID)
	assert.NotEmpty(t, res.Data.APISecret)
	assert.Nil(t, f.employee(t, "HR-EMP-00001").Device)

	// el primer login con device_id sigue vinculando
	_, err = f.svc.Login.Login(ctx, loginReq("ana", "1234", "dev-1", "Pixel 8", "Google"))
	require.NoError(t, err)
	require.NotNil(t, f.employee(t, "HR-EMP-00001").Device)

	// ya vinculado, sin device_id no coincide
	_, err = f.svc.Login.Login(ctx, loginReq("ana", "1234", "", "Pixel 8", "Google"))
	assert.ErrorIs(t, err, ErrDeviceMismatch)
}

type failingCredentials struct{ err error }

func (c failingCredentials) Issue(context.Context, string) (*Credentials, error) { return nil, c.err }

// trackingSessions recuerda los tokens abiertos para verificar su estado después.
type trackingSessions struct {
	*session.Manager
	tokens []string
}

func (s *trackingSessions) Login(ctx context.Context, userID string) (*session.Session, error) {
	sess, err := s.Manager.Login(ctx, userID)
	if err == nil {
		s.tokens = append(s.tokens, sess.Token)
	}
	return sess, err
}

func TestLogin_IssueFailureRevokesSession(t *testing.T) {
	f := newFixture(t)
	f.addEmployee(t, "HR-EMP-00001", "ana", "ana@acme.test", "1234")
	ctx := context.Background()

	tracked := &trackingSessions{Manager: f.sessions}
	deps := f.deps
	deps.Sessions = tracked
	issueErr := errors.New("credential store down")
	svc := NewLoginService(deps, failingCredentials{err: issueErr})

	res, err := svc.Login(ctx, loginReq("ana", "1234", "dev-1", "m", "b"))
	require.ErrorIs(t, err, issueErr)
	assert.Nil(t, res)

	require.Len(t, tracked.tokens, 1)
	_, err = f.sessions.Authenticate(ctx, tracked.tokens[0])
	assert.ErrorIs(t, err, session.ErrInvalidSession, "la sesión no queda viva")
}
