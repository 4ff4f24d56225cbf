// Command crm-check pushes a sample design partner lead to Kommo so the CRM
// credentials and pipeline status can be verified before a launch.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/workdora/waitlist/internal/config"
	"github.com/workdora/waitlist/internal/entity"
	"github.com/workdora/waitlist/internal/infra/integration/kommo"
	"github.com/workdora/waitlist/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		name         string
		email        string
		phone        string
		organization string
		tools        []string
		account      string
		timeout      time.Duration
	)

	cmd := &cobra.Command{
		Use:          "crm-check",
		Short:        "Create a sample design partner lead in Kommo",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := config.LoadKommo()
			if err != nil {
				return err
			}
			logger, err := logging.New("development", "debug")
			if err != nil {
				return err
			}
			defer logger.Sync()

			client := kommo.NewClient(cfg.BaseURL, cfg.APIToken, cfg.StatusID, logger)
			if !client.Configured() {
				return fmt.Errorf("KOMMO_BASE_URL and KOMMO_API_TOKEN must be set")
			}

			q := entity.Qualify(tools, organization, "")
			input := kommo.CreateLeadInput{
				Name:         name,
				Email:        email,
				Phone:        phone,
				Organization: organization,
				ToolsUsed:    entity.NormalizeTools(tools),
				Score:        q.Score,
				ReferralCode: entity.NewReferralCode(email),
				Tags:         []string{kommo.TagDesignPartner},
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Creating lead %q <%s> (tools: %s, score %d)\n",
				input.Name, input.Email, strings.Join(input.ToolsUsed, ", "), input.Score)

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			leadID, err := client.CreateLead(ctx, input)
			if err != nil {
				logger.Error("kommo lead creation failed", zap.Error(err))
				return err
			}

			fmt.Fprintf(out, "Lead #%d created\n", leadID)
			if account != "" {
				fmt.Fprintf(out, "https://%s.kommo.com/leads/detail/%d\n", account, leadID)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&name, "name", "Test Design Partner", "lead name")
	f.StringVar(&email, "email", "crm-check@workdora.com", "lead email")
	f.StringVar(&phone, "phone", "", "lead phone in E.164")
	f.StringVar(&organization, "organization", "Workdora QA", "lead organization")
	f.StringSliceVar(&tools, "tools", []string{entity.ToolSlack, entity.ToolAsana, entity.ToolHarvest}, "tools used")
	f.StringVar(&account, "account", os.Getenv("KOMMO_ACCOUNT_ID"), "kommo account subdomain, for the lead link")
	f.DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")

	return cmd
}
