package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/accountsd/internal/domain"
	"github.com/dropDatabas3/accountsd/internal/jwt"
)

func main() {
	if err := newRootCmd(os.Getenv).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func newRootCmd(getenv func(string) string) *cobra.Command {
	envOr := func(k, def string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return def
	}
	var (
		baseURL = envOr("ACCOUNTSD_URL", "http://localhost:8080")
		token   = envOr("ACCOUNTSD_TOKEN", "")
		secret  = envOr("ADMIN_JWT_SECRET", "")
		issuer  = envOr("ADMIN_JWT_ISSUER", "")
		out     = envOr("ACCOUNTSD_OUT", "text")
	)
	cl := &client{HTTP: &http.Client{Timeout: 30 * time.Second}}

	root := &cobra.Command{
		Use:           "accountsctl",
		Short:         "CLI de administración para accountsd",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&baseURL, "url", baseURL, "URL base de accountsd (env ACCOUNTSD_URL)")
	root.PersistentFlags().StringVar(&token, "token", token, "Bearer token de admin (env ACCOUNTSD_TOKEN)")
	root.PersistentFlags().StringVar(&secret, "jwt-secret", secret, "Secreto HS256 para firmar un token local si no hay --token (env ADMIN_JWT_SECRET)")
	root.PersistentFlags().StringVar(&out, "out", out, "Formato de salida: json|text")

	// authed resuelve el token antes de cada comando que llama a la API.
	authed := func(cmd *cobra.Command, args []string) error {
		cl.BaseURL, cl.OutFormat = baseURL, out
		if token != "" {
			cl.Token = token
			return nil
		}
		if secret == "" {
			return fmt.Errorf("falta token (--token / ACCOUNTSD_TOKEN) o secreto (--jwt-secret / ADMIN_JWT_SECRET)")
		}
		t, err := jwt.NewIssuer(secret, issuer).Sign(jwt.Principal{Subject: "accountsctl", Roles: []string{jwt.RoleAdmin}}, 5*time.Minute)
		if err != nil {
			return err
		}
		cl.Token = t
		return nil
	}

	root.AddCommand(accountsCmd(cl, authed), resetCmd(cl, authed), tokenCmd(&secret, &issuer))
	return root
}

func accountsCmd(cl *client, pre func(*cobra.Command, []string) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:               "accounts",
		Short:             "Cuentas por clase (customer | staff | admin)",
		PersistentPreRunE: pre,
	}

	list := &cobra.Command{
		Use:  "list <class>",
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return cl.call(c.OutOrStdout(), "list", http.MethodGet, accountPath(args[0]), nil)
		},
	}
	get := &cobra.Command{
		Use:  "get <class> <username>",
		Args: cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return cl.call(c.OutOrStdout(), "get", http.MethodGet, accountPath(args[0], args[1]), nil)
		},
	}

	var name, email, password string
	var welcome bool
	create := &cobra.Command{
		Use:  "create <class>",
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			if email == "" || password == "" {
				return fmt.Errorf("--email y --password son requeridos")
			}
			payload := map[string]any{"name": name, "email": email, "password": password, "sendWelcomeEmail": welcome}
			return cl.call(c.OutOrStdout(), "create", http.MethodPost, accountPath(args[0]), payload)
		},
	}
	create.Flags().StringVar(&name, "name", "", "Nombre visible")
	create.Flags().StringVar(&email, "email", "", "Email (será el username)")
	create.Flags().StringVar(&password, "password", "", "Contraseña temporal")
	create.Flags().BoolVar(&welcome, "welcome", false, "Enviar email de bienvenida")

	del := &cobra.Command{
		Use:  "delete <class> <username>",
		Args: cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return cl.call(c.OutOrStdout(), "delete", http.MethodDelete, accountPath(args[0], args[1]), nil)
		},
	}

	status := func(use string, enabled bool) *cobra.Command {
		return &cobra.Command{
			Use:  use + " <class> <username>",
			Args: cobra.ExactArgs(2),
			RunE: func(c *cobra.Command, args []string) error {
				return cl.call(c.OutOrStdout(), use, http.MethodPatch, accountPath(args[0], args[1], "status"), map[string]bool{"enabled": enabled})
			},
		}
	}

	creds := &cobra.Command{
		Use:  "credentials <class> <username>",
		Args: cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return cl.call(c.OutOrStdout(), "credentials", http.MethodGet, accountPath(args[0], args[1], "credentials"), nil)
		},
	}

	cmd.AddCommand(list, get, create, del, status("enable", true), status("disable", false), creds)
	return cmd
}

func resetCmd(cl *client, pre func(*cobra.Command, []string) error) *cobra.Command {
	cmd := &cobra.Command{Use: "reset", Short: "Flujo de reset de contraseña", PersistentPreRunE: pre}
	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Conteo de tokens por estado",
		RunE: func(c *cobra.Command, args []string) error {
			return cl.call(c.OutOrStdout(), "stats", http.MethodGet, "/v1/password-reset/stats", nil)
		},
	})
	return cmd
}

// tokenCmd firma un token localmente; no llama a la API.
func tokenCmd(secret, issuer *string) *cobra.Command {
	var (
		subject, username, class string
		admin                    bool
		ttl                      time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Firma un JWT HS256 para pruebas",
		RunE: func(c *cobra.Command, args []string) error {
			if *secret == "" {
				return fmt.Errorf("--jwt-secret es requerido")
			}
			p := jwt.Principal{Subject: subject, Username: username}
			if class != "" {
				tc, err := domain.ParseTenantClass(class)
				if err != nil {
					return err
				}
				p.TenantClass = tc
			}
			if admin {
				p.Roles = []string{jwt.RoleAdmin}
			}
			t, err := jwt.NewIssuer(*secret, *issuer).Sign(p, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.OutOrStdout(), t)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "sub", "accountsctl", "Subject")
	cmd.Flags().StringVar(&username, "username", "", "Username del IdP")
	cmd.Flags().StringVar(&class, "class", "", "Clase de tenant del usuario")
	cmd.Flags().BoolVar(&admin, "admin", false, "Incluir rol de administración")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Vigencia del token")
	return cmd
}
