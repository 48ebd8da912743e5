package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/gigurra/billview/internal"
	"github.com/gigurra/billview/internal/api"
)

type Params struct {
	File       string `descr:"Bills file (.json or .xlsx, optionally .age encrypted, or prefixed like json:path). Reads from the API when omitted" positional:"true" optional:"true"`
	View       string `descr:"What to show" alts:"list,dashboard,calendar,stats,portion,export,pay,share,accounts,databases,serve" strict:"true" default:"list"`
	Config     string `descr:"Path to config file (default: ~/.billview/config.yaml)" optional:"true"`
	InitConfig bool   `descr:"Write a config template listing every bill to the config path and exit" optional:"true"`
	Output     string `descr:"Output format" alts:"table,json" strict:"true" default:"table"`
	Today      string `descr:"Treat this date (YYYY-MM-DD) as today" optional:"true"`
	Currency   string `descr:"Currency code for amounts (default: config, then system locale)" optional:"true"`
	Verbose    bool   `descr:"Log debug output to stderr" optional:"true"`

	// list filters
	Search  string   `descr:"Filter bills by name, amount or due date" optional:"true"`
	Range   string   `descr:"Due date window" alts:"all,overdue,this-week,next-week,next-21-days,next-30-days" strict:"true" default:"all"`
	Type    string   `descr:"Bill type" alts:"all,expense,deposit,bill" strict:"true" default:"all"`
	Account string   `descr:"Only bills paid from this account" optional:"true"`
	Date    string   `descr:"Only bills due on this date (YYYY-MM-DD)" optional:"true"`
	Sort    string   `descr:"Sort field" alts:"due,name,amount,type" strict:"true" default:"due"`
	Dir     string   `descr:"Sort direction" alts:"asc,desc" strict:"true" default:"asc"`
	Tags    []string `descr:"Only bills with these tags (comma-separated)" optional:"true"`

	Days int `descr:"Calendar length in days" default:"30"`
	Year int `descr:"Year for the stats comparison (default: this year)" optional:"true"`

	Out     string `descr:"Export file path (.xlsx, .csv or .json)" optional:"true"`
	Encrypt bool   `descr:"Encrypt the export with a passphrase" optional:"true"`

	Bill        int    `descr:"Bill id for pay, share and portion" optional:"true"`
	Amount      string `descr:"Payment amount (default: the bill's amount)" optional:"true"`
	PaymentDate string `descr:"Payment date (default: today)" optional:"true"`
	Notes       string `descr:"Payment notes" optional:"true"`
	NoAdvance   bool   `descr:"Record the payment without advancing the due date" optional:"true"`
	ShareWith   string `descr:"Username or email to share the bill with" optional:"true"`
	SplitType   string `descr:"How the shared bill is split" alts:"equal,percentage,fixed" strict:"true" optional:"true"`
	SplitValue  string `descr:"Percentage or fixed amount for the split" optional:"true"`

	Addr string `descr:"Listen address for the view server" default:":8080"`
}

func main() {
	boa.NewCmdT[Params]("billview").
		WithShort("View, filter and analyse recurring bills").
		WithLong("Reads bills from a bill-tracking backend or an exported file and shows due-date windows, calendars, payment statistics and shared-bill portions. Can also record payments, share bills, export data and serve the views as JSON.").
		WithRunFunc(func(params *Params) {
			if err := internal.LoadEnv(); err != nil {
				fail("loading .env", err)
			}
			logger := internal.SetupLogging(params.Verbose)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(params, logger)
			if err != nil {
				fail("starting up", err)
			}
			if err := a.run(ctx); err != nil {
				fail(a.params.View, err)
			}
		}).
		Run()
}

func fail(what string, err error) {
	fmt.Fprintf(os.Stderr, "Error %s: %v\n", what, err)
	os.Exit(1)
}

// app holds what every view needs. Exactly one of client and dataset is the
// bill source.
type app struct {
	params     *Params
	log        *slog.Logger
	cfg        *internal.Config
	configPath string
	cur        internal.Currency
	today      time.Time
	client     *api.Client
	dataset    *internal.Dataset
}

func newApp(params *Params, logger *slog.Logger) (*app, error) {
	a := &app{params: params, log: logger}

	a.configPath = params.Config
	if a.configPath == "" {
		a.configPath = internal.DefaultConfigPath()
	}
	if !params.InitConfig {
		cfg, err := internal.LoadConfigOrDefault(a.configPath)
		if err != nil {
			return nil, err
		}
		a.cfg = cfg
	} else {
		a.cfg = &internal.Config{}
	}
	a.cfg.ApplyEnv()

	code := params.Currency
	if code == "" {
		code = a.cfg.Currency
	}
	if code == "" {
		code = internal.DetectSystemCurrency()
	}
	if code == "" {
		code = "USD"
	}
	a.cur = internal.GetCurrency(code)

	a.today = internal.StartOfDay(time.Now())
	if params.Today != "" {
		t, ok := internal.ParseLocalDate(params.Today)
		if !ok {
			return nil, fmt.Errorf("invalid --today %q, want YYYY-MM-DD", params.Today)
		}
		a.today = t
	}

	if params.File != "" {
		ds, err := internal.LoadDataset(params.File, func() (string, error) {
			return askPassphrase(false)
		})
		if err != nil {
			return nil, err
		}
		logger.Debug("loaded bills from file", "file", params.File, "bills", len(ds.Bills), "payments", len(ds.Payments))
		a.dataset = &ds
		return a, nil
	}

	if a.cfg.APIURL == "" || a.cfg.Token == "" {
		return nil, errors.New("no bills file given and no API configured (set api_url and token in the config, or " +
			internal.EnvAPIURL + " and " + internal.EnvToken + ")")
	}
	a.client = api.New(a.cfg.APIURL, a.cfg.Token,
		api.WithDatabase(a.cfg.Database),
		api.WithLogger(logger))
	return a, nil
}

func (a *app) run(ctx context.Context) error {
	if a.params.InitConfig {
		return a.initConfig(ctx)
	}

	switch a.params.View {
	case "list":
		return a.listView(ctx)
	case "dashboard":
		return a.dashboardView(ctx)
	case "calendar":
		return a.calendarView(ctx)
	case "stats":
		return a.statsView(ctx)
	case "portion":
		return a.portionView(ctx)
	case "export":
		return a.exportView(ctx)
	case "pay":
		return a.payView(ctx)
	case "share":
		return a.shareView(ctx)
	case "accounts":
		return a.accountsView(ctx)
	case "databases":
		return a.databasesView(ctx)
	case "serve":
		return a.serve(ctx)
	}
	return fmt.Errorf("unknown view %q", a.params.View)
}

// bills returns every bill including archived ones; views drop archived bills
// themselves so that search can still find them.
func (a *app) bills(ctx context.Context) ([]internal.Bill, error) {
	if a.dataset != nil {
		return a.dataset.Bills, nil
	}
	return a.client.ListBills(ctx, true)
}

func (a *app) payments(ctx context.Context) ([]internal.Payment, error) {
	if a.dataset != nil {
		return a.dataset.Payments, nil
	}
	return a.client.ListAllPayments(ctx)
}

// requireAPI rejects views that write to the backend when reading a file.
func (a *app) requireAPI() error {
	if a.client == nil {
		return fmt.Errorf("--view %s needs the API, not a bills file", a.params.View)
	}
	return nil
}

func (a *app) requireBill() error {
	if a.params.Bill <= 0 {
		return fmt.Errorf("--view %s needs --bill <id>", a.params.View)
	}
	return nil
}

func (a *app) jsonOutput() bool {
	return a.params.Output == "json"
}

func (a *app) outputOptions(filter internal.BillFilter) internal.OutputOptions {
	return internal.OutputOptions{
		Filter:   filter,
		Tags:     a.params.Tags,
		Currency: a.cur,
		Today:    a.today,
	}
}

func (a *app) initConfig(ctx context.Context) error {
	if _, err := os.Stat(a.configPath); err == nil {
		return fmt.Errorf("config file %s already exists", a.configPath)
	}
	bills, err := a.bills(ctx)
	if err != nil {
		return err
	}
	cfg := internal.GenerateConfigTemplate(bills)
	if err := cfg.Save(a.configPath); err != nil {
		return err
	}
	fmt.Printf("Wrote config template with %d bills to %s\n", len(cfg.Descriptions), a.configPath)
	return nil
}
