package mobile

import (
	"context"
	"encoding/base64"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/essgate/internal/cache"
	"github.com/dropDatabas3/essgate/internal/domain/repository"
	"github.com/dropDatabas3/essgate/internal/jwt"
	"github.com/dropDatabas3/essgate/internal/permission"
	"github.com/dropDatabas3/essgate/internal/security/password"
	"github.com/dropDatabas3/essgate/internal/security/secretbox"
	"github.com/dropDatabas3/essgate/internal/session"
	"github.com/dropDatabas3/essgate/internal/store/memory"
)

var fixedNow = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

type notice struct {
	kind, to, employeeID, actor string
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []notice
}

func (n *recordingNotifier) DeviceReset(_ context.Context, to, _, employeeID, actorID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice{"device_reset", to, employeeID, actorID})
}

func (n *recordingNotifier) PasswordChanged(_ context.Context, to, _, employeeID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice{"password_changed", to, employeeID, ""})
}

type fixture struct {
	store    *memory.Store
	box      *secretbox.Box
	sessions *session.Manager
	notifier *recordingNotifier
	deps     Deps
	svc      Services
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	box, err := secretbox.New(base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef")))
	require.NoError(t, err)
	ks, err := jwt.NewEphemeral()
	require.NoError(t, err)
	c := cache.NewMemory("test", time.Hour, 0)
	t.Cleanup(func() { _ = c.Close() })

	st := memory.New()
	f := &fixture{
		store:    st,
		box:      box,
		sessions: session.NewManager(jwt.NewIssuer("essgate-test", ks), c, time.Hour),
		notifier: &recordingNotifier{},
	}

	for _, u := range []repository.CreateUserInput{
		{ID: "ana@acme.test", FullName: "Ana Pérez", Roles: []string{"Employee"}},
		{ID: "hr@acme.test", FullName: "HR", Roles: []string{"HR Manager"}},
		{ID: "nobody@acme.test", FullName: "No Employee", Roles: []string{"Employee"}},
	} {
		_, err := st.Users().Create(ctx, u)
		require.NoError(t, err)
	}

	checker := permission.NewRoleChecker(st.Users(), map[string][]string{
		"HR Manager": {"Employee:read", "Employee:write"},
		"Employee":   {"Employee:read"},
	})
	f.deps = Deps{
		Employees:   st.Employees(),
		Users:       st.Users(),
		Sessions:    f.sessions,
		Permissions: checker,
		Box:         box,
		Policy:      password.Policy{MinLength: 4},
		Notifier:    f.notifier,
		Now:         func() time.Time { return fixedNow },
	}
	f.svc = NewServices(f.deps)
	return f
}

// addEmployee crea un empleado con ESS habilitado y password (si pwd != "").
func (f *fixture) addEmployee(t *testing.T, id, appID, userID, pwd string, mut ...func(*repository.CreateEmployeeInput)) {
	t.Helper()
	in := repository.CreateEmployeeInput{
		ID:           id,
		EmployeeName: "Employee " + id,
		UserID:       userID,
		CompanyEmail: appID + "@acme.test",
		AppID:        appID,
		AllowESS:     true,
	}
	if pwd != "" {
		enc, err := f.box.Encrypt(secretbox.PurposeAppPassword, pwd)
		require.NoError(t, err)
		in.AppPasswordEnc = &enc
	}
	for _, m := range mut {
		m(&in)
	}
	_, err := f.store.Employees().Create(context.Background(), in)
	require.NoError(t, err)
}

func (f *fixture) employee(t *testing.T, id string) *repository.Employee {
	t.Helper()
	e, err := f.store.Employees().GetByID(context.Background(), id)
	require.NoError(t, err)
	return e
}
