package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/essgate/internal/domain/repository"
	"github.com/dropDatabas3/essgate/internal/security/secretbox"
	"github.com/dropDatabas3/essgate/internal/store"
	"github.com/dropDatabas3/essgate/internal/store/seed"
)

type seedEmployeeOpts struct {
	user         seed.User
	id           string
	name         string
	email        string
	appID        string
	appPassword  string
	allowESS     bool
	requireReset bool
}

func newEmployeeCmd(opts *globalOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "employee",
		Short: "Alta de empleados y usuarios",
	}

	var eo seedEmployeeOpts
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Crea el usuario (si falta) y el empleado con su app password",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(eo.id) == "" || strings.TrimSpace(eo.appID) == "" || strings.TrimSpace(eo.user.ID) == "" {
				return fmt.Errorf("--id, --app-id y --user son requeridos")
			}
			return withStores(cmd.Context(), opts, func(ctx context.Context, st store.Stores, box *secretbox.Box) error {
				if err := seed.EnsureUser(ctx, st.Users(), eo.user); err != nil {
					return err
				}
				in := repository.CreateEmployeeInput{
					ID:                   eo.id,
					EmployeeName:         eo.name,
					UserID:               eo.user.ID,
					CompanyEmail:         eo.email,
					AppID:                eo.appID,
					AllowESS:             eo.allowESS,
					RequirePasswordReset: eo.requireReset,
				}
				if eo.appPassword != "" {
					enc, err := box.Encrypt(secretbox.PurposeAppPassword, eo.appPassword)
					if err != nil {
						return err
					}
					in.AppPasswordEnc = &enc
				}
				emp, err := st.Employees().Create(ctx, in)
				if err != nil {
					return fmt.Errorf("employee %s: %w", eo.id, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "employee=%s app_id=%s user=%s allow_ess=%t\n", emp.ID, emp.AppID, emp.UserID, emp.AllowESS)
				return nil
			})
		},
	}
	f := seedCmd.Flags()
	f.StringVar(&eo.id, "id", "", "ID del empleado (ej. HR-EMP-00001)")
	f.StringVar(&eo.name, "name", "", "nombre del empleado")
	f.StringVar(&eo.email, "email", "", "email corporativo (avisos de seguridad)")
	f.StringVar(&eo.appID, "app-id", "", "identificador de login de la app")
	f.StringVar(&eo.appPassword, "app-password", "", "app password inicial (vacío = sin password)")
	f.BoolVar(&eo.allowESS, "allow-ess", true, "habilitar acceso a la app")
	f.BoolVar(&eo.requireReset, "require-reset", true, "forzar cambio de password en el primer login")
	f.StringVar(&eo.user.ID, "user", "", "usuario vinculado (se crea si no existe)")
	f.StringVar(&eo.user.FullName, "user-name", "", "nombre del usuario")
	f.StringSliceVar(&eo.user.Roles, "roles", []string{"Employee"}, "roles del usuario nuevo")

	var uo seed.User
	user := &cobra.Command{
		Use:   "user",
		Short: "Crea un usuario sin empleado (ej. operador de RRHH)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(uo.ID) == "" {
				return fmt.Errorf("--id es requerido")
			}
			return withStores(cmd.Context(), opts, func(ctx context.Context, st store.Stores, _ *secretbox.Box) error {
				if err := seed.EnsureUser(ctx, st.Users(), uo); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "user=%s roles=%s\n", uo.ID, strings.Join(uo.Roles, ","))
				return nil
			})
		},
	}
	user.Flags().StringVar(&uo.ID, "id", "", "ID del usuario (ej. email)")
	user.Flags().StringVar(&uo.FullName, "name", "", "nombre completo")
	user.Flags().StringSliceVar(&uo.Roles, "roles", []string{"HR Manager"}, "roles")

	cmd.AddCommand(seedCmd, user)
	return cmd
}

// withStores abre el store de postgres. El driver memory no persiste entre procesos:
// se puebla con storage.seed_file al arrancar el servicio.
func withStores(ctx context.Context, opts *globalOpts, fn func(context.Context, store.Stores, *secretbox.Box) error) error {
	cfg, err := opts.load()
	if err != nil {
		return err
	}
	if err := requirePostgres(cfg); err != nil {
		return err
	}
	box, err := secretbox.New(cfg.Security.SecretBoxMasterKey)
	if err != nil {
		return fmt.Errorf("secretbox: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	st, err := store.Open(ctx, store.Config{
		Driver: cfg.Storage.Driver,
		DSN:    cfg.Storage.DSN,
	})
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(ctx, st, box)
}
