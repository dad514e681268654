package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	cblog "github.com/charmbracelet/log"
	"github.com/darksworm/kubeportal/pkg/api"
	"github.com/darksworm/kubeportal/pkg/config"
	appcontext "github.com/darksworm/kubeportal/pkg/context"
	"github.com/darksworm/kubeportal/pkg/logging"
	"github.com/darksworm/kubeportal/pkg/navigation"
	"github.com/darksworm/kubeportal/pkg/route"
	"github.com/darksworm/kubeportal/pkg/services"
	"github.com/darksworm/kubeportal/pkg/store"
	"github.com/darksworm/kubeportal/pkg/theme"
	"github.com/darksworm/kubeportal/pkg/trust"
	"github.com/darksworm/kubeportal/pkg/tui/clipboard"
	"github.com/spf13/cobra"
)

// appVersion is shown by --version.
// Override at build time: go build -ldflags "-X main.appVersion=1.2.0"
var appVersion = "dev"

type options struct {
	configPath string
	server     string
	token      string
	storeToken bool
	insecure   bool
	timeout    string
	fanout     int
	theme      string
	location   string

	caCert     string
	caPath     string
	clientCert string
	clientKey  string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "kubeportal [location]",
		Short: "Terminal client for the Kubernetes provisioning portal",
		Long: "kubeportal browses applications, namespaces, L4 ingress and egress IPs per\n" +
			"environment and deletes apps or namespaces through the portal API.\n\n" +
			"An optional location opens a deep link, e.g. \"/apps/payments/namespaces?env=prod\".",
		Version:      appVersion,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.location = args[0]
			}
			return run(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "Path to config file (default $KUBEPORTAL_CONFIG or ~/.config/kubeportal/config.toml)")
	f.StringVar(&opts.server, "server", "", "Portal base URL, overrides server.url")
	f.StringVar(&opts.token, "token", "", "Bearer token, overrides server.token and $KUBEPORTAL_TOKEN")
	f.BoolVar(&opts.storeToken, "store-token", false, "Save --token in the system keychain for this server")
	f.BoolVar(&opts.insecure, "insecure", false, "Skip TLS certificate verification")
	f.StringVar(&opts.timeout, "timeout", "", "Request timeout, e.g. 30s (overrides api.timeout)")
	f.StringVar(&opts.theme, "theme", "", fmt.Sprintf("UI theme preset (%s)", strings.Join(theme.Names(), ", ")))
	f.StringVar(&opts.caCert, "ca-cert", "", "PEM file with extra CA certificates (default $SSL_CERT_FILE)")
	f.StringVar(&opts.caPath, "ca-path", "", "Colon separated directories of CA certificates (default $SSL_CERT_DIR)")
	f.StringVar(&opts.clientCert, "client-cert", "", "Client certificate for mutual TLS")
	f.StringVar(&opts.clientKey, "client-cert-key", "", "Private key for --client-cert")
	f.IntVar(&opts.fanout, "fanout", 8, "Max concurrent per-app requests when loading an environment (0 = unbounded)")
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

// apply lets flags win over the config file.
func (o *options) apply(cfg *config.Config) {
	if o.server != "" {
		cfg.Server.URL = o.server
	}
	if o.insecure {
		cfg.Server.Insecure = true
	}
	if o.timeout != "" {
		cfg.API.Timeout = o.timeout
	}
	if o.theme != "" {
		cfg.Appearance.Theme = o.theme
	}
	if o.caCert != "" {
		cfg.Server.CACert = o.caCert
	}
	if o.caPath != "" {
		cfg.Server.CAPath = o.caPath
	}
	if o.clientCert != "" {
		cfg.Server.ClientCert = o.clientCert
	}
	if o.clientKey != "" {
		cfg.Server.ClientKey = o.clientKey
	}
}

// trustOptions is the TLS material named by the config.
func trustOptions(s config.ServerConfig) trust.Options {
	return trust.Options{
		CAFile:     s.CACert,
		CADir:      s.CAPath,
		ClientCert: s.ClientCert,
		ClientKey:  s.ClientKey,
		Insecure:   s.Insecure,
	}
}

func run(ctx context.Context, opts *options) error {
	logFile, err := logging.Setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: logging disabled: %v\n", err)
	} else {
		defer logFile.Close()
	}
	log := cblog.With("component", "main")
	log.Info("kubeportal starting", "version", appVersion)

	cfgPath := opts.configPath
	if cfgPath == "" {
		cfgPath = config.GetConfigPath()
	}
	cfg, err := config.LoadConfigFromPath(cfgPath)
	if err != nil {
		return err
	}
	opts.apply(cfg)

	timeout, err := cfg.APITimeout()
	if err != nil {
		return err
	}
	appcontext.SetRequestTimeout(timeout)

	server, err := cfg.ToServer()
	if err != nil {
		return err
	}
	if to := trustOptions(cfg.Server); to.Custom() {
		hc, err := trust.NewHTTPClient(to)
		if err != nil {
			return err
		}
		api.SetHTTPClient(hc)
		log.Debug("custom TLS trust configured", "ca_cert", to.CAFile, "client_cert", to.ClientCert != "")
	}
	clipboard.SetCopyCommand(cfg.Clipboard.Command)
	applyTheme(theme.FromEnv(theme.FromName(cfg.Appearance.Theme)))

	if opts.token != "" {
		// Flag tokens never reach the config file.
		server.Token = opts.token
		if opts.storeToken {
			if err := config.Keychain.StoreToken(cfg.Server.URL, opts.token); err != nil {
				return err
			}
			log.Info("token stored in keychain", "server", server.BaseURL)
		}
	}

	saver := config.NewSaver(cfg, cfgPath)
	runner := services.NewRunner(server, saver.SavePortalConfig)
	runner.SetFanout(opts.fanout)

	location := opts.location
	if location == "" {
		location = route.Encode(route.Default(""))
	}
	log.Info("connecting", "server", server.BaseURL, "location", location)

	m := NewModel(ctx, Deps{
		Runner:   runner,
		Store:    store.NewStore(cfg.PortalConfig()),
		History:  navigation.NewMemoryHistory(location),
		Location: location,
	})
	defer m.Teardown()

	p := tea.NewProgram(m, tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		log.Error("program exited", "err", err)
		return err
	}
	log.Info("kubeportal exiting")
	return nil
}
