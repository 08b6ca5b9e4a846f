// Package memory implementa los repositorios en proceso (dev y tests).
//
// Cada repo guarda copias: lo que devuelve Get no comparte punteros con el estado interno.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dropDatabas3/essgate/internal/domain/repository"
)

type Store struct {
	employees *EmployeeRepo
	users     *UserRepo
	errorLogs *ErrorLogRepo
}

func New() *Store {
	return &Store{
		employees: NewEmployeeRepo(),
		users:     NewUserRepo(),
		errorLogs: NewErrorLogRepo(),
	}
}

func (s *Store) Employees() repository.EmployeeRepository { return s.employees }
func (s *Store) Users() repository.UserRepository         { return s.users }
func (s *Store) ErrorLogs() repository.ErrorLogRepository { return s.errorLogs }

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close()                     {}

// ─── Employees ───

type EmployeeRepo struct {
	mu   sync.RWMutex
	byID map[string]*repository.Employee
}

func NewEmployeeRepo() *EmployeeRepo {
	return &EmployeeRepo{byID: make(map[string]*repository.Employee)}
}

func cloneEmployee(e *repository.Employee) *repository.Employee {
	out := *e
	if e.AppPasswordEnc != nil {
		p := *e.AppPasswordEnc
		out.AppPasswordEnc = &p
	}
	if e.Device != nil {
		d := *e.Device
		out.Device = &d
	}
	return &out
}

func (r *EmployeeRepo) GetByID(_ context.Context, id string) (*repository.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneEmployee(e), nil
}

func (r *EmployeeRepo) GetByAppID(_ context.Context, appID string) (*repository.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.byID {
		if e.AppID == appID {
			return cloneEmployee(e), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *EmployeeRepo) GetByUserID(_ context.Context, userID string) (*repository.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	// Mismo criterio que pg: primero por id.
	ids := make([]string, 0, len(r.byID))
	for id, e := range r.byID {
		if userID != "" && e.UserID == userID {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, repository.ErrNotFound
	}
	sort.Strings(ids)
	return cloneEmployee(r.byID[ids[0]]), nil
}

func (r *EmployeeRepo) Create(_ context.Context, in repository.CreateEmployeeInput) (*repository.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[in.ID]; ok {
		return nil, repository.ErrConflict
	}
	for _, e := range r.byID {
		if e.AppID == in.AppID {
			return nil, repository.ErrConflict
		}
	}
	e := &repository.Employee{
		ID:                   in.ID,
		EmployeeName:         in.EmployeeName,
		UserID:               in.UserID,
		CompanyEmail:         in.CompanyEmail,
		AppID:                in.AppID,
		AppPasswordEnc:       in.AppPasswordEnc,
		AllowESS:             in.AllowESS,
		RequirePasswordReset: in.RequirePasswordReset,
	}
	r.byID[in.ID] = cloneEmployee(e)
	return e, nil
}

func (r *EmployeeRepo) BindDevice(_ context.Context, id string, dev repository.BoundDevice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	if e.Device != nil {
		return repository.ErrDeviceAlreadyBound
	}
	d := dev
	e.Device = &d
	return nil
}

func (r *EmployeeRepo) ClearDevice(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	e.Device = nil
	return nil
}

func (r *EmployeeRepo) UpdateAppPassword(_ context.Context, id, passwordEnc string, clearReset bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	p := passwordEnc
	e.AppPasswordEnc = &p
	if clearReset {
		e.RequirePasswordReset = false
	}
	return nil
}

// ─── Users ───

type UserRepo struct {
	mu   sync.RWMutex
	byID map[string]*repository.User
}

func NewUserRepo() *UserRepo {
	return &UserRepo{byID: make(map[string]*repository.User)}
}

func cloneUser(u *repository.User) *repository.User {
	out := *u
	out.Roles = append([]string(nil), u.Roles...)
	return &out
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*repository.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepo) GetByAPIKey(_ context.Context, apiKey string) (*repository.User, error) {
	if apiKey == "" {
		return nil, repository.ErrNotFound
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.byID {
		if u.APIKey == apiKey {
			return cloneUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepo) Create(_ context.Context, in repository.CreateUserInput) (*repository.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[in.ID]; ok {
		return nil, repository.ErrConflict
	}
	u := &repository.User{ID: in.ID, FullName: in.FullName, Roles: append([]string{}, in.Roles...)}
	r.byID[in.ID] = u
	return cloneUser(u), nil
}

func (r *UserRepo) UpdateAPICredentials(_ context.Context, id, apiKey, apiSecretEnc string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	for otherID, o := range r.byID {
		if otherID != id && apiKey != "" && o.APIKey == apiKey {
			return repository.ErrConflict
		}
	}
	u.APIKey = apiKey
	u.APISecretEnc = apiSecretEnc
	return nil
}

// ─── Error log ───

// maxErrorLogs acota la memoria usada por el log en proceso.
const maxErrorLogs = 1000

type ErrorLogRepo struct {
	mu      sync.Mutex
	entries []repository.ErrorLog
}

func NewErrorLogRepo() *ErrorLogRepo { return &ErrorLogRepo{} }

func (r *ErrorLogRepo) Insert(_ context.Context, e repository.ErrorLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	if len(r.entries) > maxErrorLogs {
		r.entries = r.entries[len(r.entries)-maxErrorLogs:]
	}
	return nil
}

func (r *ErrorLogRepo) Recent(_ context.Context, n int) ([]repository.ErrorLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n <= 0 || n > len(r.entries) {
		n = len(r.entries)
	}
	out := make([]repository.ErrorLog, 0, n)
	for i := len(r.entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, r.entries[i])
	}
	return out, nil
}
