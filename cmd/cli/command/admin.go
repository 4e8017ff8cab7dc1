package command

import (
	"context"
	"fmt"

	"yamdb/database"
	"yamdb/internal/config"
	"yamdb/internal/logging"
	"yamdb/internal/mail"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/middleware/auth"
	"yamdb/internal/permission"
	"yamdb/internal/validation"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// admin commands talk to the database directly and read the same
// environment as the api server (DATABASE_URL, REDIS_URL, ...).
var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administrative commands with direct database access",
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB, logger *logrus.Logger) error {
			return database.Migrate(db, logger)
		})
	},
}

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create a user with any role and print its confirmation code",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		email, _ := cmd.Flags().GetString("email")
		role, _ := cmd.Flags().GetString("role")
		superuser, _ := cmd.Flags().GetBool("superuser")

		return withDB(func(db *gorm.DB, _ *logrus.Logger) error {
			code, err := createUser(cmd.Context(), repository.NewUserRepository(db), username, email, role, superuser)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ User %s created as %s\nConfirmation code: %s\n", username, role, code)
			return nil
		})
	},
}

var setRoleCmd = &cobra.Command{
	Use:   "set-role [username] [role]",
	Short: "Change the role of an existing user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB, _ *logrus.Logger) error {
			if err := setRole(cmd.Context(), repository.NewUserRepository(db), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is now %s\n", args[0], args[1])
			return nil
		})
	},
}

var drainMailCmd = &cobra.Command{
	Use:   "drain-mail",
	Short: "Deliver every queued confirmation mail once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		logger := logging.New(cfg.LogLevel, cfg.LogFormat)

		client, err := mail.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()

		worker := mail.NewWorker(client, mail.NewSMTPSender(cfg.SMTPAddr, cfg.MailFrom), logger)
		n, err := worker.Drain(cmd.Context())
		if err != nil {
			return fmt.Errorf("drain outbox: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %d queued mails processed\n", n)
		return nil
	},
}

func withDB(fn func(db *gorm.DB, logger *logrus.Logger) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Connect(cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer database.Close(db)
	return fn(db, logger)
}

// createUser applies the same rules as the API and returns a fresh confirmation code.
func createUser(ctx context.Context, users repository.UserRepository, username, email, role string, superuser bool) (string, error) {
	r, err := permission.ParseRole(role)
	if err != nil {
		return "", err
	}
	if err := validation.Username(ctx, users, username, ""); err != nil {
		return "", err
	}
	if err := validation.Email(ctx, users, email, ""); err != nil {
		return "", err
	}

	code := auth.NewConfirmationCode()
	hash, err := auth.HashCode(code)
	if err != nil {
		return "", fmt.Errorf("hash confirmation code: %w", err)
	}

	user := &models.User{
		Username:         username,
		Email:            email,
		Role:             r.String(),
		IsSuperuser:      superuser,
		ConfirmationCode: hash,
	}
	if err := users.Create(ctx, user); err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}
	return code, nil
}

func setRole(ctx context.Context, users repository.UserRepository, username, role string) error {
	r, err := permission.ParseRole(role)
	if err != nil {
		return err
	}
	user, err := users.FindByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("find %s: %w", username, err)
	}
	user.Role = r.String()
	return users.Update(ctx, user)
}

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(migrateCmd, createUserCmd, setRoleCmd, drainMailCmd)

	createUserCmd.Flags().StringP("username", "u", "", "Username")
	createUserCmd.Flags().StringP("email", "e", "", "Email address")
	createUserCmd.Flags().String("role", string(permission.RoleAdmin), "user, moderator or admin")
	createUserCmd.Flags().Bool("superuser", false, "grant superuser (admin-equivalent) status")
	createUserCmd.MarkFlagRequired("username")
	createUserCmd.MarkFlagRequired("email")
}
