package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xavierca1/presale-funnel/internal/entity"
	"github.com/xavierca1/presale-funnel/internal/form"
	"github.com/xavierca1/presale-funnel/internal/infra/http/middleware"
	"github.com/xavierca1/presale-funnel/internal/leadclient"
	"github.com/xavierca1/presale-funnel/internal/tracking"
)

// backCommand, typed at any prompt, returns to the previous step.
const backCommand = ":back"

var (
	funnelAPIURL     string
	funnelLandingURL string
	funnelReferrer   string

	tokenSubject string
	tokenTTL     time.Duration
)

var funnelCmd = &cobra.Command{
	Use:   "funnel",
	Short: "Walk the booking funnel on the terminal and submit the lead",
	Long: `funnel asks for each booking step in turn, validates it the same way the site
does, and submits the completed record to a running lead API. Type :back to return to
the previous step; an empty answer keeps the value already entered.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := leadclient.New(funnelAPIURL, leadclient.WithLogger(logger.Named("leadclient")))
		tc := tracking.FromURL(funnelLandingURL, funnelReferrer)
		logger.Debug("funnel tracking context",
			zap.String("landing_page", tc.LandingPage),
			zap.Stringp("utm_source", tc.UTMSource))
		return runFunnel(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), client, tc)
	},
}

type tokenEnv struct {
	AdminJWTSecret string `env:"ADMIN_JWT_SECRET,required"`
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an operator bearer token for the admin API",
	RunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		cfg, err := env.ParseAs[tokenEnv]()
		if err != nil {
			return fmt.Errorf("parse env: %w", err)
		}
		token, err := middleware.IssueAdminToken(cfg.AdminJWTSecret, tokenSubject, tokenTTL, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	funnelCmd.Flags().StringVar(&funnelAPIURL, "api-url", "http://localhost:8080/api/leads", "Lead ingestion endpoint")
	funnelCmd.Flags().StringVar(&funnelLandingURL, "landing-url", "", "Landing page URL carrying utm_* parameters")
	funnelCmd.Flags().StringVar(&funnelReferrer, "referrer", "", "Referring page")

	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "operator", "Operator name recorded in the token")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 12*time.Hour, "Token lifetime")
}

// runFunnel drives a booking wizard from line input until it submits or input ends.
func runFunnel(ctx context.Context, in io.Reader, out io.Writer, submitter form.Submitter, tc entity.TrackingContext) error {
	wiz, err := form.NewWizard(form.BookingSchema, form.BookingSteps, tc, submitter)
	if err != nil {
		return err
	}
	scanner := bufio.NewScanner(in)

steps:
	for !wiz.Submitted() {
		step := wiz.Step()
		fmt.Fprintf(out, "\nStep %d of %d: %s\n", wiz.Index()+1, wiz.Len(), step.Name)

		for _, name := range step.Fields {
			field, _ := form.BookingSchema.Field(name)
			current := wiz.Values()[name]
			fmt.Fprint(out, prompt(field, current))

			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return err
				}
				return io.ErrUnexpectedEOF
			}
			line := scanner.Text()
			switch {
			case strings.TrimSpace(line) == backCommand:
				wiz.Back()
				continue steps
			case strings.TrimSpace(line) == "" && current != "":
			default:
				wiz.Set(name, line)
			}
		}

		res, err := wiz.Next(ctx)
		switch {
		case errors.Is(err, form.ErrAlreadySubmitted):
			break steps
		case err != nil:
			logger.Warn("lead submission failed", zap.Error(err))
			fmt.Fprintln(out, err.Error())
			continue
		}
		if !res.Valid {
			for _, field := range form.BookingSchema {
				if msg, ok := res.Errors[field.Name]; ok {
					fmt.Fprintf(out, "  %s\n", msg)
				}
			}
		}
	}

	fmt.Fprintf(out, "\nThanks! Your booking request is in (reference %s).\n", wiz.LeadID())
	return nil
}

func prompt(field form.Field, current string) string {
	var b strings.Builder
	b.WriteString(field.Label)
	if len(field.Rule.Allowed) > 0 {
		b.WriteString(" (" + strings.Join(field.Rule.Allowed, ", ") + ")")
	}
	if !field.Rule.Required {
		b.WriteString(" [optional]")
	}
	if current != "" {
		b.WriteString(" [" + current + "]")
	}
	b.WriteString(": ")
	return b.String()
}
