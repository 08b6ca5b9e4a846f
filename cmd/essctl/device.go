package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// client habla con la API móvil del gateway.
type client struct {
	BaseURL string
	// Token: session JWT (Bearer) o "api_key:api_secret" (esquema token).
	Token string
	HTTP  *http.Client
}

func (c *client) authorization() string {
	if strings.Contains(c.Token, ":") {
		return "token " + c.Token
	}
	return "Bearer " + c.Token
}

// postJSON devuelve el status y el mensaje del sobre de respuesta.
func (c *client) postJSON(path string, payload any) (int, string, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return 0, "", err
	}
	req, err := http.NewRequest(http.MethodPost, strings.TrimRight(c.BaseURL, "/")+path, bytes.NewReader(b))
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.authorization())

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var env struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &env) != nil || env.Message == "" {
		env.Message = strings.TrimSpace(string(raw))
	}
	return resp.StatusCode, env.Message, nil
}

func newDeviceCmd() *cobra.Command {
	cl := &client{
		BaseURL: envOr("ESSCTL_URL", "http://localhost:8080"),
		Token:   envOr("ESSCTL_TOKEN", ""),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}

	cmd := &cobra.Command{
		Use:   "device",
		Short: "Operaciones sobre el dispositivo vinculado (vía API)",
	}
	cmd.PersistentFlags().StringVar(&cl.BaseURL, "url", cl.BaseURL, "URL base del gateway (env ESSCTL_URL)")
	cmd.PersistentFlags().StringVar(&cl.Token, "token", cl.Token, "session token o api_key:api_secret (env ESSCTL_TOKEN)")

	cmd.AddCommand(&cobra.Command{
		Use:   "reset <employee_id>",
		Short: "Desvincula el dispositivo del empleado (requiere permiso de escritura sobre Employee)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cl.Token == "" {
				return fmt.Errorf("falta token (flag --token o env ESSCTL_TOKEN)")
			}
			status, msg, err := cl.postJSON("/api/v1/mobile/device/reset", map[string]string{"employee_id": args[0]})
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("device reset falló: status=%d message=%s", status, msg)
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	})
	return cmd
}
