package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	gormlogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/expense-tracker/internal/auth"
	authPostgres "github.com/frahmantamala/expense-tracker/internal/auth/postgres"
	"github.com/frahmantamala/expense-tracker/internal/core/storage"
)

var (
	addUserName   string
	addUserEmail  string
	addUserBudget float64
)

var addUserCmd = &cobra.Command{
	Use:   "adduser",
	Short: "Register a user from the command line",
	Long:  `Register a user with the same validation as POST /auth/register. The password is read from the terminal.`,
	RunE:  runAddUser,
}

func init() {
	addUserCmd.Flags().StringVar(&addUserName, "name", "", "Display name (3-35 letters and spaces)")
	addUserCmd.Flags().StringVar(&addUserEmail, "email", "", "Login email")
	addUserCmd.Flags().Float64Var(&addUserBudget, "budget", 0, "Monthly budget")
	_ = addUserCmd.MarkFlagRequired("name")
	_ = addUserCmd.MarkFlagRequired("email")
}

func runAddUser(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(".")
	if err != nil {
		return err
	}
	lg := setupLogger(cfg)

	password, err := readPassword(cmd)
	if err != nil {
		return err
	}

	db, err := storage.Open(cfg.Database, gormlogger.Silent)
	if err != nil {
		return err
	}
	defer db.Close()

	tokens := auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.AccessTokenDuration)
	svc := auth.NewService(authPostgres.NewRepository(db.Gorm, cfg.Database.QueryTimeout), tokens, cfg.Security.BCryptCost, lg)

	u, err := svc.Register(context.Background(), auth.RegisterDTO{
		Name:     addUserName,
		Email:    addUserEmail,
		Password: password,
		Budget:   addUserBudget,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "created user %d <%s>\n", u.ID, u.Email)
	return nil
}

// readPassword prompts without echo on a terminal and reads one line otherwise.
func readPassword(cmd *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(cmd.OutOrStdout(), "Password: ")
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(raw), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
