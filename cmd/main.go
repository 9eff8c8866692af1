/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"crypto/tls"
	"flag"
	"os"
	"time"

	// Import all Kubernetes client auth plugins (e.g. Azure, GCP, OIDC, etc.)
	// to ensure that exec-entrypoint and run can make use of them.
	_ "k8s.io/client-go/plugin/pkg/client/auth"

	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	"k8s.io/client-go/kubernetes"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	"sigs.k8s.io/controller-runtime/pkg/metrics/filters"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	guardianv1alpha1 "github.com/marcus-qen/nodeguardian/api/v1alpha1"
	"github.com/marcus-qen/nodeguardian/internal/action"
	"github.com/marcus-qen/nodeguardian/internal/alert"
	"github.com/marcus-qen/nodeguardian/internal/controller"
	"github.com/marcus-qen/nodeguardian/internal/cooldown"
	"github.com/marcus-qen/nodeguardian/internal/engine"
	"github.com/marcus-qen/nodeguardian/internal/lifecycle"
	_ "github.com/marcus-qen/nodeguardian/internal/metrics" // Register Prometheus metrics
	"github.com/marcus-qen/nodeguardian/internal/metricsource"
	"github.com/marcus-qen/nodeguardian/internal/nodeops"
	"github.com/marcus-qen/nodeguardian/internal/recovery"
	"github.com/marcus-qen/nodeguardian/internal/registry"
	"github.com/marcus-qen/nodeguardian/internal/runner"
	"github.com/marcus-qen/nodeguardian/internal/scheduler"
	"github.com/marcus-qen/nodeguardian/internal/selector"
	"github.com/marcus-qen/nodeguardian/internal/state"
	"github.com/marcus-qen/nodeguardian/internal/status"
	"github.com/marcus-qen/nodeguardian/internal/telemetry"
	// +kubebuilder:scaffold:imports
)

var (
	scheme   = runtime.NewScheme()
	setupLog = ctrl.Log.WithName("setup")
)

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))

	utilruntime.Must(guardianv1alpha1.AddToScheme(scheme))
	// +kubebuilder:scaffold:scheme
}

func main() {
	var metricsAddr string
	var metricsCertPath, metricsCertName, metricsCertKey string
	var enableLeaderElection bool
	var probeAddr string
	var secureMetrics bool
	var enableHTTP2 bool
	var otelEndpoint string
	var prometheusURL string
	var alertConfigPath string
	var maxConcurrentRuns int
	var staleRunAge time.Duration
	var drainTimeout time.Duration
	var tlsOpts []func(*tls.Config)
	flag.StringVar(&metricsAddr, "metrics-bind-address", "0", "The address the metrics endpoint binds to. "+
		"Use :8443 for HTTPS or :8080 for HTTP, or leave as 0 to disable the metrics service.")
	flag.StringVar(&probeAddr, "health-probe-bind-address", ":8081", "The address the probe endpoint binds to.")
	flag.BoolVar(&enableLeaderElection, "leader-elect", false,
		"Enable leader election for controller manager. "+
			"Enabling this will ensure there is only one active controller manager.")
	flag.BoolVar(&secureMetrics, "metrics-secure", true,
		"If set, the metrics endpoint is served securely via HTTPS. Use --metrics-secure=false to use HTTP instead.")
	flag.StringVar(&metricsCertPath, "metrics-cert-path", "",
		"The directory that contains the metrics server certificate.")
	flag.StringVar(&metricsCertName, "metrics-cert-name", "tls.crt", "The name of the metrics server certificate file.")
	flag.StringVar(&metricsCertKey, "metrics-cert-key", "tls.key", "The name of the metrics server key file.")
	flag.BoolVar(&enableHTTP2, "enable-http2", false,
		"If set, HTTP/2 will be enabled for the metrics and webhook servers")
	flag.StringVar(&otelEndpoint, "otel-endpoint", "",
		"OTLP gRPC endpoint for tracing (e.g. tempo:4317). Empty disables tracing. "+
			"Also configurable via OTEL_EXPORTER_OTLP_ENDPOINT env var.")
	flag.StringVar(&prometheusURL, "prometheus-url", envOrDefault("PROMETHEUS_URL", ""),
		"Prometheus base URL for node metrics (e.g. http://prometheus.monitoring:9090). "+
			"Empty falls back to the metrics.k8s.io API.")
	flag.StringVar(&alertConfigPath, "alert-config", os.Getenv("ALERT_CONFIG_PATH"),
		"Path to the alert channel configuration YAML. Empty leaves only the log channel.")
	flag.IntVar(&maxConcurrentRuns, "max-concurrent-runs", 10,
		"Cluster-wide maximum simultaneous rule evaluations.")
	flag.DurationVar(&staleRunAge, "stale-run-age", 10*time.Minute,
		"Age after which an in-flight evaluation mark is considered leaked and cleaned.")
	flag.DurationVar(&drainTimeout, "drain-timeout", 30*time.Second,
		"Maximum time to wait for in-flight evaluations on shutdown.")
	opts := zap.Options{
		Development: true,
	}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()

	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))

	// Allow env var override for OTLP endpoint
	if otelEndpoint == "" {
		otelEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	}

	// Initialise OpenTelemetry tracing
	shutdownTracer, err := telemetry.InitTraceProvider(context.Background(), otelEndpoint, "0.1.0")
	if err != nil {
		setupLog.Error(err, "Failed to initialise OTel tracing — continuing without traces")
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracer(ctx); err != nil {
				setupLog.Error(err, "Failed to shutdown OTel tracer")
			}
		}()
		if otelEndpoint != "" {
			setupLog.Info("OTel tracing enabled", "endpoint", otelEndpoint)
		}
	}

	// if the enable-http2 flag is false (the default), http/2 should be disabled
	// due to its vulnerabilities. More specifically, disabling http/2 will
	// prevent from being vulnerable to the HTTP/2 Stream Cancellation and
	// Rapid Reset CVEs. For more information see:
	// - https://github.com/advisories/GHSA-qppj-fm5r-hxr3
	// - https://github.com/advisories/GHSA-4374-p667-p6c8
	disableHTTP2 := func(c *tls.Config) {
		setupLog.Info("Disabling HTTP/2")
		c.NextProtos = []string{"http/1.1"}
	}

	if !enableHTTP2 {
		tlsOpts = append(tlsOpts, disableHTTP2)
	}

	metricsServerOptions := metricsserver.Options{
		BindAddress:   metricsAddr,
		SecureServing: secureMetrics,
		TLSOpts:       tlsOpts,
	}

	if secureMetrics {
		// FilterProvider is used to protect the metrics endpoint with authn/authz.
		metricsServerOptions.FilterProvider = filters.WithAuthenticationAndAuthorization
	}

	if len(metricsCertPath) > 0 {
		setupLog.Info("Initializing metrics certificate watcher using provided certificates",
			"metrics-cert-path", metricsCertPath, "metrics-cert-name", metricsCertName, "metrics-cert-key", metricsCertKey)

		metricsServerOptions.CertDir = metricsCertPath
		metricsServerOptions.CertName = metricsCertName
		metricsServerOptions.KeyName = metricsCertKey
	}

	mgr, err := ctrl.NewManager(ctrl.GetConfigOrDie(), ctrl.Options{
		Scheme:                 scheme,
		Metrics:                metricsServerOptions,
		HealthProbeBindAddress: probeAddr,
		LeaderElection:         enableLeaderElection,
		LeaderElectionID:       "f7c2d1a4.nodeguardian.k8s.io",
	})
	if err != nil {
		setupLog.Error(err, "Failed to start manager")
		os.Exit(1)
	}

	clientset, err := kubernetes.NewForConfig(mgr.GetConfig())
	if err != nil {
		setupLog.Error(err, "Failed to create kubernetes clientset")
		os.Exit(1)
	}

	// Metric gateways: Prometheus first when configured, metrics.k8s.io
	// as the fallback.
	var gateways []metricsource.Gateway
	if prometheusURL != "" {
		gateways = append(gateways, metricsource.NewPrometheusGateway(prometheusURL))
		setupLog.Info("Prometheus metric gateway enabled", "url", prometheusURL)
	}
	gateways = append(gateways, metricsource.NewFallbackGateway(clientset, mgr.GetClient()))
	chain := metricsource.NewChain(gateways...)

	// Evaluation stack
	clocks := engine.NewClockTracker()
	evaluator := engine.NewEvaluator(chain, clocks, ctrl.Log)
	stateStore := state.NewStore()
	ledger := cooldown.NewLedger()
	reg := registry.New()

	// Alerting
	alertCfg, err := alert.LoadConfig(alertConfigPath)
	if err != nil {
		setupLog.Error(err, "Failed to load alert config — continuing with log channel only")
	}
	channels := alert.BuildChannels(alertCfg, ctrl.Log)
	templates, err := alert.NewTemplateStore(mgr.GetClient())
	if err != nil {
		setupLog.Error(err, "Failed to load builtin alert templates")
		os.Exit(1)
	}
	var limiter *alert.RateLimiter
	if alertCfg.MaxAlertsPerHour > 0 {
		limiter = alert.NewRateLimiter(alertCfg.MaxAlertsPerHour)
	}
	dispatcher := alert.NewDispatcher(templates, channels, channels["log"], limiter, ctrl.Log)
	setupLog.Info("Alert dispatcher initialised",
		"channels", len(channels),
		"maxAlertsPerHour", alertCfg.MaxAlertsPerHour,
	)

	// Action execution and status publishing
	nodes := nodeops.NewClient(mgr.GetClient(), clientset)
	orchestrator := action.NewOrchestrator(nodes, dispatcher, ctrl.Log)
	publisher := status.NewPublisher(mgr.GetClient(), stateStore, ctrl.Log)

	// Runner (before scheduler, which needs it)
	recoveryEngine := recovery.NewEngine(evaluator, stateStore, ledger, orchestrator, publisher, ctrl.Log)
	ruleRunner := runner.New(evaluator, stateStore, ledger, orchestrator, recoveryEngine, publisher, ctrl.Log)

	// Scheduler
	schedCfg := scheduler.DefaultConfig()
	schedCfg.MaxConcurrentRuns = maxConcurrentRuns
	schedCfg.StaleRunAge = staleRunAge
	sched := scheduler.New(reg, selector.NewResolver(mgr.GetClient()), ruleRunner, ctrl.Log, schedCfg)
	if err := mgr.Add(sched); err != nil {
		setupLog.Error(err, "Failed to add scheduler")
		os.Exit(1)
	}

	// Graceful shutdown: drain in-flight evaluation runs
	shutdownMgr := lifecycle.NewShutdownManager(sched.RunTrackerRef(), drainTimeout, ctrl.Log)
	if err := mgr.Add(shutdownMgr); err != nil {
		setupLog.Error(err, "Failed to add shutdown manager")
		os.Exit(1)
	}

	if err := (&controller.NodeGuardianRuleReconciler{
		Client:    mgr.GetClient(),
		Scheme:    mgr.GetScheme(),
		Registry:  reg,
		Scheduler: sched,
		State:     stateStore,
		Ledger:    ledger,
		Clocks:    clocks,
		Publisher: publisher,
	}).SetupWithManager(mgr); err != nil {
		setupLog.Error(err, "Failed to create controller", "controller", "NodeGuardianRule")
		os.Exit(1)
	}
	if err := (&controller.AlertTemplateReconciler{
		Client: mgr.GetClient(),
		Scheme: mgr.GetScheme(),
	}).SetupWithManager(mgr); err != nil {
		setupLog.Error(err, "Failed to create controller", "controller", "AlertTemplate")
		os.Exit(1)
	}
	// +kubebuilder:scaffold:builder

	if err := mgr.AddHealthzCheck("healthz", healthz.Ping); err != nil {
		setupLog.Error(err, "Failed to set up health check")
		os.Exit(1)
	}
	if err := mgr.AddReadyzCheck("readyz", healthz.Ping); err != nil {
		setupLog.Error(err, "Failed to set up ready check")
		os.Exit(1)
	}

	setupLog.Info("Starting manager")
	if err := mgr.Start(ctrl.SetupSignalHandler()); err != nil {
		setupLog.Error(err, "Problem running manager")
		os.Exit(1)
	}
}

// envOrDefault reads an environment variable, returning a default if empty.
func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
