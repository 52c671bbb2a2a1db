// Package cli implements attendctl, the device side of signed check-ins.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"go-attendance/internal/keystore"
	"go-attendance/internal/shared/clock"
	"go-attendance/internal/signature"

	"github.com/spf13/cobra"
)

type deviceStatus struct {
	EmployeeID        string  `json:"employee_id"`
	Bound             bool    `json:"bound"`
	DeviceFingerprint *string `json:"device_fingerprint,omitempty"`
	BoundAt           *string `json:"bound_at,omitempty"`
}

type eventResult struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	OccurredAt string `json:"occurred_at"`
	WorkDate   string `json:"work_date"`
}

// env is what every command resolves before it runs.
type env struct {
	cfg    Config
	store  keystore.SQLiteStore
	device *signature.Device
	client *Client
}

func (e *env) close() {
	if e.store != nil {
		_ = e.store.Close()
	}
}

type root struct {
	configPath string
	out        io.Writer
	clk        clock.Clock
}

// NewRootCommand builds the attendctl command tree writing to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	r := &root{out: out, clk: clock.System()}

	cmd := &cobra.Command{
		Use:           "attendctl",
		Short:         "Bind this device and submit signed check-ins",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.PersistentFlags().StringVar(&r.configPath, "config", DefaultConfigPath(), "Path to the attendctl TOML config")

	cmd.AddCommand(
		r.configureCmd(),
		r.bindCmd(),
		r.submitCmd(signature.IntentCheckIn),
		r.submitCmd(signature.IntentCheckOut),
		r.signCmd(),
		r.statusCmd(),
	)
	return cmd
}

// Execute runs attendctl with the process arguments.
func Execute() {
	cmd := NewRootCommand(os.Stdout)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (r *root) load(needServer bool) (*env, error) {
	cfg, err := LoadConfig(r.configPath)
	if err != nil {
		return nil, err
	}
	if needServer {
		if err := cfg.validate(); err != nil {
			return nil, err
		}
	}
	zone, err := clock.NewZone(cfg.TZOffset, r.clk)
	if err != nil {
		return nil, fmt.Errorf("tz_offset: %w", err)
	}
	store, err := keystore.NewSQLiteStore(cfg.KeystorePath)
	if err != nil {
		return nil, err
	}
	return &env{
		cfg:    cfg,
		store:  store,
		device: signature.NewDevice(store, zone),
		client: NewClient(cfg.ServerURL, cfg.Token),
	}, nil
}

func (r *root) configureCmd() *cobra.Command {
	var in Config
	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Write server and identity settings to the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(r.configPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("server") {
				cfg.ServerURL = in.ServerURL
			}
			if flags.Changed("actor") {
				cfg.ActorID = in.ActorID
			}
			if flags.Changed("email") {
				cfg.Email = in.Email
			}
			if flags.Changed("token") {
				cfg.Token = in.Token
			}
			if flags.Changed("tz") {
				if _, err := clock.ParseOffset(in.TZOffset); err != nil {
					return fmt.Errorf("tz: %w", err)
				}
				cfg.TZOffset = in.TZOffset
			}
			if flags.Changed("keystore") {
				cfg.KeystorePath = in.KeystorePath
			}
			if err := SaveConfig(r.configPath, cfg); err != nil {
				return err
			}
			fmt.Fprintf(r.out, "Saved %s\n", r.configPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.ServerURL, "server", "", "Server base URL")
	cmd.Flags().StringVar(&in.ActorID, "actor", "", "Employee id this device acts for")
	cmd.Flags().StringVar(&in.Email, "email", "", "Employee email")
	cmd.Flags().StringVar(&in.Token, "token", "", "Bearer token")
	cmd.Flags().StringVar(&in.TZOffset, "tz", "", "Reporting offset, e.g. +05:30")
	cmd.Flags().StringVar(&in.KeystorePath, "keystore", "", "Path of the local key database")
	return cmd
}

func (r *root) bindCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "bind",
		Short: "Generate this device's key and register it with the server",
		Long: `Generate a signing key on this device and register its public half.
The server accepts a key only while the employee has none bound; after an
admin reset, run bind --force to discard the old local key.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := r.load(true)
			if err != nil {
				return err
			}
			defer e.close()
			ctx := cmd.Context()

			if force {
				if err := e.store.Clear(ctx); err != nil {
					return err
				}
			}
			pub, err := e.device.BindDevice(ctx, signature.Identity{ActorID: e.cfg.ActorID, Email: e.cfg.Email})
			if errors.Is(err, signature.ErrAlreadyBound) {
				return errors.New("this device already holds a key; use --force after an admin reset")
			}
			if err != nil {
				return err
			}

			var status deviceStatus
			err = e.client.Do(ctx, "POST", "/api/v1/devices/register", map[string]string{
				"email":              e.cfg.Email,
				"public_key":         pub,
				"device_fingerprint": fingerprint(),
			}, &status)
			if err != nil {
				// drop the key the server never accepted
				if clearErr := e.store.Clear(context.WithoutCancel(ctx)); clearErr != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: could not discard the unregistered key (%v); rerun bind with --force\n", clearErr)
				}
				return err
			}
			fmt.Fprintf(r.out, "Device bound for %s\n", status.EmployeeID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Discard an existing local key first")
	return cmd
}

func (r *root) submitCmd(intent signature.Intent) *cobra.Command {
	return &cobra.Command{
		Use:   string(intent),
		Short: fmt.Sprintf("Sign and submit a %s", intent),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := r.load(true)
			if err != nil {
				return err
			}
			defer e.close()
			ctx := cmd.Context()

			si, err := e.device.SignIntent(ctx, e.cfg.ActorID, intent)
			if errors.Is(err, signature.ErrNoBoundDevice) {
				return errors.New("this device is not bound; run 'attendctl bind'")
			}
			if err != nil {
				return err
			}

			var ev eventResult
			err = e.client.Do(ctx, "POST", "/api/v1/attendances/"+string(intent), map[string]string{
				"signature":      si.Signature,
				"data_to_verify": si.Message,
			}, &ev)
			if err != nil {
				return err
			}
			fmt.Fprintf(r.out, "Recorded %s at %s (event %s)\n", intent, ev.OccurredAt, ev.ID)
			return nil
		},
	}
}

func (r *root) signCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sign INTENT",
		Short: "Print today's signed message for an intent without submitting it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			intent, err := signature.ParseIntent(args[0])
			if err != nil {
				return err
			}
			e, err := r.load(false)
			if err != nil {
				return err
			}
			defer e.close()
			if e.cfg.ActorID == "" {
				return errors.New("actor_id is not set; run 'attendctl configure'")
			}

			si, err := e.device.SignIntent(cmd.Context(), e.cfg.ActorID, intent)
			if err != nil {
				return err
			}
			fmt.Fprintf(r.out, "message:   %s\nsignature: %s\n", si.Message, si.Signature)
			return nil
		},
	}
}

func (r *root) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the local key and the server's binding",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := r.load(false)
			if err != nil {
				return err
			}
			defer e.close()
			ctx := cmd.Context()

			bound, err := e.device.IsBound(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(r.out, "local key:   %s\n", yesNo(bound))

			if e.cfg.validate() != nil {
				fmt.Fprintln(r.out, "server:      not configured")
				return nil
			}
			var status deviceStatus
			if err := e.client.Do(ctx, "GET", "/api/v1/devices/me", nil, &status); err != nil {
				return err
			}
			fmt.Fprintf(r.out, "server key:  %s\n", yesNo(status.Bound))
			if status.BoundAt != nil {
				fmt.Fprintf(r.out, "bound at:    %s\n", *status.BoundAt)
			}
			return nil
		},
	}
}

func fingerprint() string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return host + "/" + runtime.GOOS + "-" + runtime.GOARCH
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
