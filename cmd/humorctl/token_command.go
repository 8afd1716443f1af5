package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jwong2529/humor-study/internal/domain/enums"
	pgrepo "github.com/jwong2529/humor-study/internal/repo/postgres"
	redrepo "github.com/jwong2529/humor-study/internal/repo/redis"
	authsvc "github.com/jwong2529/humor-study/internal/services/auth"
)

// newTokenCommand opens a study session for a profile. Sign-in itself happens
// outside this API, so operators mint tokens for participants here.
func newTokenCommand(ctx *commandContext) *cobra.Command {
	var (
		profileFlag string
		roleFlag    string
		labelFlag   string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Open a study session and print its access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profileID := uuid.New()
			if strings.TrimSpace(profileFlag) != "" {
				var err error
				profileID, err = uuid.Parse(strings.TrimSpace(profileFlag))
				if err != nil {
					return fmt.Errorf("invalid --profile: %w", err)
				}
			}
			role := enums.Role(strings.ToUpper(strings.TrimSpace(roleFlag)))
			if role != enums.RoleUser && role != enums.RoleAdmin {
				return fmt.Errorf("invalid --role %q", roleFlag)
			}

			pool, err := ctx.openPool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			if _, err := pgrepo.NewProfileRepo(pool).Ensure(cmd.Context(), profileID, role); err != nil {
				return fmt.Errorf("ensure profile: %w", err)
			}

			service, closeRedis, err := ctx.openSessionService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeRedis()

			issued, err := service.Issue(cmd.Context(), authsvc.IssueRequest{
				ProfileID: profileID,
				Role:      role,
				Label:     labelFlag,
			})
			if err != nil {
				return fmt.Errorf("open session: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "profile_id:   %s\n", issued.Session.ProfileID)
			fmt.Fprintf(out, "role:         %s\n", issued.Session.Role)
			fmt.Fprintf(out, "session_id:   %s\n", issued.Session.SID)
			if issued.Session.Label != "" {
				fmt.Fprintf(out, "label:        %s\n", issued.Session.Label)
			}
			fmt.Fprintf(out, "expires_at:   %s\n", issued.Session.ExpiresAt.Format(time.RFC3339))
			fmt.Fprintf(out, "access_token: %s\n", issued.Token)
			return nil
		},
	}

	cmd.Flags().StringVar(&profileFlag, "profile", "", "Profile UUID (default: a new random profile)")
	cmd.Flags().StringVar(&roleFlag, "role", string(enums.RoleUser), "Profile role (USER or ADMIN)")
	cmd.Flags().StringVar(&labelFlag, "label", "", "Free-text label stored with the session (cohort, tester)")
	cmd.AddCommand(newTokenRevokeCommand(ctx))
	return cmd
}

func newTokenRevokeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <session-id>",
		Short: "End a study session before it expires",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sid := strings.TrimSpace(args[0])
			if sid == "" {
				return fmt.Errorf("session id is required")
			}

			service, closeRedis, err := ctx.openSessionService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeRedis()

			if err := service.Revoke(cmd.Context(), sid); err != nil {
				if errors.Is(err, authsvc.ErrSessionNotFound) {
					return fmt.Errorf("session %s not found or already expired", sid)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "revoked %s\n", sid)
			return nil
		},
	}
}

func (c *commandContext) openSessionService(ctx context.Context) (*authsvc.Service, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	redisClient, err := redrepo.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, nil, err
	}
	service := authsvc.NewService(authsvc.NewSigner(cfg.Auth.JWTSecret), redrepo.NewSessionRepo(redisClient), cfg.Auth.SessionTTL)
	return service, func() { _ = redisClient.Close() }, nil
}
