package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/jask/stockflow/internal/auth"
	"github.com/jask/stockflow/internal/config"
	"github.com/jask/stockflow/internal/database"
	"github.com/jask/stockflow/internal/database/repository"
	"github.com/jask/stockflow/internal/domain"
	"github.com/jask/stockflow/internal/logging"
	"github.com/jask/stockflow/internal/service"
	"github.com/jask/stockflow/internal/testdata"
	"github.com/jask/stockflow/internal/tui"
)

func main() {
	app := &cli.App{
		Name:   "stockflow",
		Usage:  "inventory and orders across the supply chain",
		Action: runTUI,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "start the terminal UI (default)",
				Action: runTUI,
			},
			{
				Name:   "migrate",
				Usage:  "apply database migrations and exit",
				Action: migrateOnly,
			},
			{
				Name:   "seed",
				Usage:  "create one demo user per role (password \"password\") with stock",
				Action: seed,
			},
			{
				Name:  "useradd",
				Usage: "register a user",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true, EnvVars: []string{"STOCKFLOW_NEW_PASSWORD"}},
					&cli.StringFlag{Name: "role", Aliases: []string{"r"}, Required: true, Usage: "customer, retailer, wholesaler or manufacturer"},
				},
				Action: userAdd,
			},
			{
				Name:   "users",
				Usage:  "list registered users",
				Action: listUsers,
			},
			{
				Name:      "import",
				Usage:     "import inventory rows (name, quantity, price) from a CSV file",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
				},
				Action: importCSV,
			},
			{
				Name:  "config",
				Usage: "print the effective configuration",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "write", Usage: "also save it to the config file"},
				},
				Action: showConfig,
			},
			{
				Name:  "reset",
				Usage: "delete all data, keeping the schema",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Usage: "confirm"},
				},
				Action: reset,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// env is everything a command needs, opened from config.
type env struct {
	cfg   config.Config
	db    *sqlx.DB
	close func()

	users         *repository.UserRepo
	products      *repository.ProductRepo
	orders        *repository.OrderRepo
	notifications *repository.NotificationRepo
}

func setup() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	closeLog, err := logging.Setup(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	if err := database.RunMigrations(cfg.Database.Path, cfg.Database.Migrations); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	log.WithField("db", cfg.Database.Path).Info("database ready")

	return &env{
		cfg: cfg,
		db:  db,
		close: func() {
			_ = db.Close()
			closeLog()
		},
		users:         repository.NewUserRepo(db),
		products:      repository.NewProductRepo(db),
		orders:        repository.NewOrderRepo(db),
		notifications: repository.NewNotificationRepo(db),
	}, nil
}

func (e *env) authenticator() *auth.Authenticator {
	return &auth.Authenticator{
		Users:             e.users,
		Passwords:         auth.BcryptManager{Cost: e.cfg.Auth.BcryptCost},
		MinPasswordLength: e.cfg.Auth.MinPasswordLength,
		Log:               log.StandardLogger(),
	}
}

func (e *env) catalog() *service.CatalogService {
	return &service.CatalogService{Products: e.products, Log: log.StandardLogger()}
}

func runTUI(c *cli.Context) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	loc, err := time.LoadLocation(e.cfg.UI.Timezone)
	if err != nil {
		log.WithError(err).Warn("using local timezone")
		loc = time.Local
	}

	services := tui.Services{
		Auth:    e.authenticator(),
		Catalog: e.catalog(),
		Workflow: &service.WorkflowService{
			DB:            e.db,
			Products:      e.products,
			Orders:        e.orders,
			Notifications: e.notifications,
			Log:           log.StandardLogger(),
		},
		Notifications: &service.NotificationService{Notifications: e.notifications, Log: log.StandardLogger()},
		Dashboard:     &service.DashboardService{Products: e.products, Orders: e.orders, Notifications: e.notifications},
	}

	p := tea.NewProgram(tui.New(c.Context, e.cfg, services, loc), tea.WithAltScreen(), tea.WithContext(c.Context))
	_, err = p.Run()
	return err
}

func migrateOnly(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return fmt.Errorf("mkdir db dir: %w", err)
	}
	if err := database.RunMigrations(cfg.Database.Path, cfg.Database.Migrations); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	v, dirty, err := database.Version(cfg.Database.Path, cfg.Database.Migrations)
	if err != nil {
		return err
	}
	fmt.Printf("schema version %d (dirty=%t) at %s\n", v, dirty, cfg.Database.Path)
	return nil
}

func seed(c *cli.Context) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	if err := testdata.Seed(c.Context, testdata.Services{Auth: e.authenticator(), Catalog: e.catalog()}); err != nil {
		return err
	}
	fmt.Printf("seeded users %q (password %q)\n", roleKeys(), testdata.DemoPassword)
	return nil
}

func userAdd(c *cli.Context) error {
	role, err := domain.ParseRole(c.String("role"))
	if err != nil {
		return err
	}
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	u, err := e.authenticator().Register(c.Context, c.String("username"), c.String("password"), role)
	if err != nil {
		return err
	}
	fmt.Printf("created %s (%s)\n", u.Username, u.Role.Label())
	return nil
}

func listUsers(c *cli.Context) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	users, err := e.users.List(c.Context)
	if err != nil {
		return err
	}
	for _, u := range users {
		fmt.Printf("%-20s %-14s joined %s\n", u.Username, u.Role.Label(), humanize.Time(u.CreatedAt))
	}
	return nil
}

func importCSV(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: stockflow import --username U FILE", 2)
	}
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	u, err := e.users.ByUsername(c.Context, c.String("username"))
	if err != nil {
		return err
	}
	if u == nil {
		return fmt.Errorf("no such user %q", c.String("username"))
	}
	f, err := os.Open(c.Args().First())
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := e.catalog().ImportCSV(c.Context, domain.Actor{Username: u.Username, Role: u.Role}, f)
	if err != nil {
		return err
	}
	fmt.Printf("%d imported, %d skipped, %d errors\n", res.Imported, res.Skipped, len(res.Errors))
	for _, lineErr := range res.Errors {
		fmt.Fprintln(os.Stderr, lineErr)
	}
	return nil
}

func reset(c *cli.Context) error {
	if !c.Bool("yes") {
		return cli.Exit("refusing to reset without --yes", 2)
	}
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	removed, err := (&service.MaintenanceService{DB: e.db, Log: log.StandardLogger()}).Reset(c.Context)
	if err != nil {
		return err
	}
	for _, table := range []string{"users", "products", "orders", "notifications"} {
		fmt.Printf("%-14s %d rows deleted\n", table, removed[table])
	}
	return nil
}

func showConfig(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	fmt.Printf("database.path = %q\n", cfg.Database.Path)
	fmt.Printf("database.migrations = %q\n", cfg.Database.Migrations)
	fmt.Printf("log.path = %q\n", cfg.Log.Path)
	fmt.Printf("log.level = %q\n", cfg.Log.Level)
	fmt.Printf("auth.bcrypt_cost = %d\n", cfg.Auth.BcryptCost)
	fmt.Printf("auth.min_password_length = %d\n", cfg.Auth.MinPasswordLength)
	fmt.Printf("ui.currency_symbol = %q\n", cfg.UI.CurrencySymbol)
	fmt.Printf("ui.timezone = %q\n", cfg.UI.Timezone)
	if c.Bool("write") {
		return config.Save(cfg)
	}
	return nil
}

func roleKeys() []string {
	keys := make([]string, 0, len(domain.Roles))
	for _, r := range domain.Roles {
		keys = append(keys, r.String())
	}
	return keys
}
