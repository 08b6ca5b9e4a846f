package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--env-file", "does-not-exist.env"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestDeviceReset(t *testing.T) {
	var gotAuth string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/mobile/device/reset", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		if gotBody["employee_id"] == "HR-EMP-404" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"success":false,"message":"Employee record not found"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"message":"Device ID reset successfully"}`))
	}))
	defer srv.Close()

	t.Run("api token", func(t *testing.T) {
		out, err := runCmd(t, "device", "reset", "HR-EMP-00001", "--url", srv.URL, "--token", "key:secret")
		require.NoError(t, err)
		assert.Contains(t, out, "Device ID reset successfully")
		assert.Equal(t, "token key:secret", gotAuth)
		assert.Equal(t, "HR-EMP-00001", gotBody["employee_id"])
	})

	t.Run("session token", func(t *testing.T) {
		_, err := runCmd(t, "device", "reset", "HR-EMP-00001", "--url", srv.URL, "--token", "eyJhbGciOi.x.y")
		require.NoError(t, err)
		assert.Equal(t, "Bearer eyJhbGciOi.x.y", gotAuth)
	})

	t.Run("error del gateway", func(t *testing.T) {
		_, err := runCmd(t, "device", "reset", "HR-EMP-404", "--url", srv.URL, "--token", "k:s")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status=404")
		assert.Contains(t, err.Error(), "Employee record not found")
	})

	t.Run("sin token", func(t *testing.T) {
		t.Setenv("ESSCTL_TOKEN", "")
		_, err := runCmd(t, "device", "reset", "HR-EMP-00001", "--url", srv.URL)
		require.Error(t, err)
	})
}

func TestMigrateDown_RequiresConfirmation(t *testing.T) {
	_, err := runCmd(t, "migrate", "down")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
}

func TestStoreCommands_RequirePostgres(t *testing.T) {
	t.Setenv("SECRETBOX_MASTER_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("STORAGE_DRIVER", "memory")

	_, err := runCmd(t, "migrate", "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres")

	_, err = runCmd(t, "employee", "seed", "--id", "E1", "--app-id", "e1", "--user", "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres")
}
