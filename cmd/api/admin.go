package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/deskops/support-desk/internal/auth"
	"github.com/deskops/support-desk/internal/cache"
	"github.com/deskops/support-desk/internal/persistence"
	"github.com/deskops/support-desk/internal/service"
)

func newSeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed reference data",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "tags",
		Short: "Upsert the default tag set",
		RunE:  runSeedTags,
	})
	return cmd
}

func runSeedTags(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	rt, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer rt.close()
	if err := rt.requirePostgres("seed tags"); err != nil {
		return err
	}

	redis := persistence.NewRedis(ctx, rt.cfg.Redis, rt.logger)
	defer redis.Close()

	tagService := service.NewTagService(service.TagDependencies{
		Store:  rt.store,
		Cache:  cache.NewTagCache(redis.Handle(), rt.cfg.Redis.TagCacheTTL),
		Logger: rt.logger,
	})
	tags, err := tagService.SeedDefaultTags(ctx)
	if err != nil {
		return err
	}
	for _, tag := range tags {
		fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", tag.ID, tag.Name, tag.Colour)
	}
	return nil
}

func newAgentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Manage agents",
	}

	var name, email string
	create := &cobra.Command{
		Use:   "create",
		Short: "Register an agent",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			rt, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer rt.close()
			if err := rt.requirePostgres("agent create"); err != nil {
				return err
			}

			agents := service.NewAgentService(rt.store, nil, rt.logger)
			agent, err := agents.CreateAgent(ctx, name, email)
			if err != nil {
				return err
			}
			rt.logger.Info("agent created", zap.Int64("agent_id", agent.ID))
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", agent.ID, agent.Name, agent.Email)
			return nil
		},
	}
	create.Flags().StringVar(&name, "name", "", "Agent display name")
	create.Flags().StringVar(&email, "email", "", "Agent email address")
	_ = create.MarkFlagRequired("name")
	_ = create.MarkFlagRequired("email")

	cmd.AddCommand(create)
	return cmd
}

func newTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage bearer tokens",
	}

	var agentID int64
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Mint a bearer token for an agent",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			rt, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer rt.close()
			if err := rt.requirePostgres("token issue"); err != nil {
				return err
			}

			authCfg := rt.cfg.Auth
			tokens := auth.NewTokenManager(authCfg.JWTSecret, authCfg.Issuer, authCfg.AccessTokenTTLMinutes)
			agents := service.NewAgentService(rt.store, tokens, rt.logger)
			token, expiresAt, err := agents.IssueToken(ctx, agentID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\nexpires_at=%s\n", token, expiresAt.Format(time.RFC3339))
			return nil
		},
	}
	issue.Flags().Int64Var(&agentID, "agent-id", 0, "Agent id")
	_ = issue.MarkFlagRequired("agent-id")

	cmd.AddCommand(issue)
	return cmd
}
