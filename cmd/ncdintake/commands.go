package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/mrsinham/ncdintake/cmd/ncdintake/wizard"
	"github.com/mrsinham/ncdintake/internal/intake"
	"github.com/mrsinham/ncdintake/internal/stats"
	"github.com/mrsinham/ncdintake/internal/util"
)

// ErrNotLoggedIn wraps API failures of logged-out sessions.
var ErrNotLoggedIn = errors.New("not logged in, run: ncdintake login")

func wizardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wizard",
		Short: "Fill in an intake form interactively",
		Long: `Fill in an intake form step by step.

Flows: intake, vitals, consultation, consultation-edit, user.
Resume a saved draft with --from.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, true)
			if err != nil {
				return err
			}
			defer a.close()

			from, _ := cmd.Flags().GetString("from")
			demo, _ := cmd.Flags().GetBool("demo")

			flow, state, err := resolveFlow(cmd, a, from)
			if err != nil {
				return err
			}
			ctrl := intake.NewController(flow, a.client, a.controllerOptions())
			switch {
			case state != nil:
				ctrl.Restore(state)
			case demo:
				ctrl.Restore(util.Prefill(flow, nil, time.Now()))
			}

			draftPath := from
			if draftPath == "" {
				draftPath = wizard.DefaultDraftPath
			}
			res, err := wizard.Run(cmd.Context(), ctrl, wizard.Options{DraftPath: draftPath, Logger: a.log})
			if err != nil {
				return err
			}
			a.remember(flow.Registry)
			if res == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing submitted.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Notification)
			return nil
		},
	}
	cmd.Flags().String("flow", string(intake.FlowIntake), "Flow to run")
	cmd.Flags().String("registry", "", "Registry: diabetes, hypertension or asthma (default: last used)")
	cmd.Flags().String("from", "", "Resume from a YAML draft")
	cmd.Flags().Bool("demo", false, "Prefill the form with generated demo data")
	return cmd
}

// resolveFlow picks the flow from --from, or from --flow and --registry.
// Explicit flags override the draft.
func resolveFlow(cmd *cobra.Command, a *app, from string) (*intake.Flow, *intake.WizardState, error) {
	if from != "" {
		abs, err := filepath.Abs(from)
		if err != nil {
			return nil, nil, fmt.Errorf("resolving draft path: %w", err)
		}
		d, err := wizard.LoadDraft(abs)
		if err != nil {
			return nil, nil, err
		}
		if cmd.Flags().Changed("flow") {
			d.Flow, _ = cmd.Flags().GetString("flow")
		}
		if cmd.Flags().Changed("registry") {
			d.Registry, _ = cmd.Flags().GetString("registry")
		}
		flow, err := d.NewFlow()
		if err != nil {
			return nil, nil, err
		}
		return flow, d.State(), nil
	}

	name, _ := cmd.Flags().GetString("flow")
	kind, err := intake.ParseFlow(name)
	if err != nil {
		return nil, nil, err
	}
	var reg intake.Registry
	if kind != intake.FlowUser {
		if reg, err = a.registry(cmd); err != nil {
			return nil, nil, err
		}
	}
	flow, err := intake.NewFlow(kind, reg)
	return flow, nil, err
}

func submitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Validate a draft and submit it without the wizard",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _ := cmd.Flags().GetString("from")
			if from == "" {
				return fmt.Errorf("--from is required")
			}
			a, err := newApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.close()

			flow, state, err := resolveFlow(cmd, a, from)
			if err != nil {
				return err
			}
			ctrl := intake.NewController(flow, a.client, a.controllerOptions())
			ctrl.Restore(state)

			res, err := submitDraft(cmd.Context(), ctrl)
			if err != nil {
				return err
			}
			a.remember(flow.Registry)
			return report(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().String("flow", "", "Override the flow of the draft")
	cmd.Flags().String("registry", "", "Override the registry of the draft")
	cmd.Flags().String("from", "", "YAML draft to submit")
	return cmd
}

func consultCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consult",
		Short: "Manage recorded consultations",
	}

	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a consultation",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.close()

			reg, err := a.registry(cmd)
			if err != nil {
				return err
			}
			id, _ := cmd.Flags().GetString("id")
			phone, _ := cmd.Flags().GetString("phone")

			res, err := intake.DeleteConsultation(cmd.Context(), a.client, reg, phone, id)
			if err != nil {
				return err
			}
			return report(cmd.OutOrStdout(), res)
		},
	}
	deleteCmd.Flags().String("registry", "", "Registry: diabetes, hypertension or asthma (default: last used)")
	deleteCmd.Flags().String("id", "", "Consultation ID")
	deleteCmd.Flags().String("phone", "", "Patient phone number")
	cmd.AddCommand(deleteCmd)

	return cmd
}

func loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.close()

			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			if email == "" || password == "" {
				form := huh.NewForm(
					huh.NewGroup(
						huh.NewInput().Title("Email").Value(&email),
						huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&password),
					),
				).WithShowHelp(false)
				if err := form.RunWithContext(cmd.Context()); err != nil {
					return err
				}
			}

			res, err := a.client.Login(cmd.Context(), strings.TrimSpace(email), password)
			if err != nil {
				return err
			}
			a.sess.SetLogin(res.Name, res.Role, res.Token)
			if err := a.sess.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", res.Name, res.Role)
			return nil
		},
	}
	cmd.Flags().String("email", "", "Account email")
	cmd.Flags().String("password", "", "Account password (prompted when empty)")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.close()

			a.sess.Clear()
			if err := a.sess.Save(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarise the patients of a registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.close()

			reg, err := a.registry(cmd)
			if err != nil {
				return err
			}
			patients, err := a.client.ListPatients(cmd.Context(), string(reg))
			if err != nil {
				if !a.sess.LoggedIn() {
					return fmt.Errorf("%w: %w", ErrNotLoggedIn, err)
				}
				return err
			}
			a.remember(reg)
			return stats.Compute(string(reg), patients).Render(cmd.OutOrStdout())
		},
	}
	cmd.Flags().String("registry", "", "Registry: diabetes, hypertension or asthma (default: last used)")
	return cmd
}
