package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/optimumcare/clinic-site/internal/config"
	"github.com/optimumcare/clinic-site/internal/db"
	"github.com/optimumcare/clinic-site/internal/server"
	"github.com/optimumcare/clinic-site/internal/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var createStaffCmd = &cobra.Command{
	Use:   "create-staff",
	Short: "Create a staff account for the admin console",
	Long: `Creates a staff account. The password is read from --password or
STAFF_PASSWORD so it need not appear in shell history.`,
	RunE: runCreateStaff,
}

var (
	staffName        string
	staffEmail       string
	staffPassword    string
	staffRole        string
	staffDatabaseURL string
)

func init() {
	createStaffCmd.Flags().StringVar(&staffName, "name", "", "Display name (required)")
	createStaffCmd.Flags().StringVar(&staffEmail, "email", "", "Login email (required)")
	createStaffCmd.Flags().StringVar(&staffPassword, "password", "", "Password (default $STAFF_PASSWORD)")
	createStaffCmd.Flags().StringVar(&staffRole, "role", db.RoleStaff, "Role: admin or staff")
	createStaffCmd.Flags().StringVar(&staffDatabaseURL, "database-url", "", "PostgreSQL connection URL (default $DATABASE_URL)")

	for _, name := range []string{"name", "email"} {
		if err := createStaffCmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}

	rootCmd.AddCommand(createStaffCmd)
}

func staffRequestFromFlags() (*types.CreateStaffRequest, error) {
	password := staffPassword
	if password == "" {
		password = os.Getenv("STAFF_PASSWORD")
	}
	req := &types.CreateStaffRequest{
		Name:     staffName,
		Email:    staffEmail,
		Password: password,
		Role:     staffRole,
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid staff account: %w", err)
	}
	return req, nil
}

func runCreateStaff(_ *cobra.Command, _ []string) error {
	req, err := staffRequestFromFlags()
	if err != nil {
		return err
	}

	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return fmt.Errorf("failed to create password config: %w", err)
	}

	databaseURL, err := resolveDatabaseURL(staffDatabaseURL)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	user, err := server.NewStaffService(database, passwordConfig).Create(ctx, req)
	if err != nil {
		return err
	}

	logger.Info("staff account created",
		zap.String("staff_id", user.ID.String()),
		zap.String("email", user.Email),
		zap.String("role", user.Role),
	)
	_, _ = fmt.Fprintf(os.Stdout, "Created %s account for %s (%s)\n", user.Role, user.Name, user.Email)
	return nil
}
