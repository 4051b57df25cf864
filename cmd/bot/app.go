package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/go-co-op/gocron"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/porterbot/porter/cmd/bot/config"
	"github.com/porterbot/porter/cmd/bot/monitoring"
	"github.com/porterbot/porter/pkg/dataaccess"
	"github.com/porterbot/porter/pkg/logging"
	"github.com/porterbot/porter/pkg/registry"
	"github.com/porterbot/porter/pkg/request"
)

const (
	// PathMetrics is the path for metrics.
	PathMetrics = "/metrics"

	// PathHealth is the path for the health check.
	PathHealth = "/health"
)

// IApp is the interface for the application, passed to every controller in
// place of any process wide singleton.
type IApp interface {
	// Session returns the discord session.
	Session() *discordgo.Session

	// Log returns the logger.
	Log() *slog.Logger

	// Registry returns the ticket registry.
	Registry() *registry.Registry

	// GuildDal returns the guild data access layer.
	GuildDal() dataaccess.GuildDal

	// AllowLimitNotify reports whether a ticket limit DM may be sent right
	// now. Throttled so a reaction spammer cannot turn the bot into a DM
	// spammer.
	AllowLimitNotify() bool
}

type App struct {
	// is the logger.
	*slog.Logger

	// r is the router for the application.
	r *mux.Router

	// svr is the server for the application.
	svr *http.Server

	// s is the discord session.
	s *discordgo.Session

	// sched runs the periodic background jobs.
	sched *gocron.Scheduler

	// limitNotify throttles ticket limit DMs.
	limitNotify *rate.Limiter

	// eventNotifier is the channel for notifying of events.
	eventNotifier chan any

	// regOnce guards the lazy registry construction.
	regOnce sync.Once
	reg     *registry.Registry
	dal     dataaccess.GuildDal

	// migrateOnce guards the startup schema migration.
	migrateOnce sync.Once
}

// NewApp creates a new instance of App.
func NewApp(l *slog.Logger, r *mux.Router) *App {
	return &App{
		Logger:      l,
		r:           r,
		sched:       gocron.NewScheduler(time.UTC),
		limitNotify: rate.NewLimiter(rate.Every(2*time.Second), 5),
	}
}

func (a *App) Run() error {
	// Register bot.
	if err := a.RegisterBot(); err != nil {
		return fmt.Errorf("error registering bot: %w", err)
	}

	a.s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		a.Info(fmt.Sprintf("Logged in as %s#%s", r.User.Username, r.User.Discriminator))

		// Schema migration runs once the gateway reports ready.
		a.migrateOnce.Do(func() {
			go func() {
				if err := registry.Migrate(context.Background(), a.GuildDal(), a.Log()); err != nil {
					a.Error("Error migrating schema", slog.String(logging.KeyError, err.Error()))
				}
			}()
		})
	})

	// Register slash commands.
	if err := a.registerSlashCommands(); err != nil {
		return fmt.Errorf("error registering slash commands: %w", err)
	}

	if err := a.RegisterDiscordHandlers(); err != nil {
		return fmt.Errorf("error registering discord handlers: %w", err)
	}

	// Start event listener.
	go a.eventListener()

	// Open websocket.
	if err := a.s.Open(); err != nil {
		return fmt.Errorf("error opening connection to Discord: %w", err)
	}

	a.Info("Bot is now running.")

	a.startJobs()
	a.generateServer()
	a.setupRoutes()
	a.runServer()

	// Register listener for shutdown signal.
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)

	// Process shutdown signal.
	for sig := range c {
		a.Info("Received shutdown signal", slog.String("signal", sig.String()))
		if err := a.ShutdownHook(); err != nil {
			a.Error("Error shutting down application", slog.String(logging.KeyError, err.Error()))
		}
		os.Exit(0)
	}
	return nil
}

func (a *App) ShutdownHook() error {
	// Reset the total number of guilds to 0.
	monitoring.TotalDiscordGuilds.Set(0)

	a.sched.Stop()

	// Unregister slash commands.
	if err := a.unregisterSlashCommands(); err != nil {
		return fmt.Errorf("error unregistering slash commands: %w", err)
	}

	// Close the connection to Discord.
	if err := a.s.Close(); err != nil {
		return fmt.Errorf("error closing connection to Discord: %w", err)
	}
	return nil
}

func (a *App) RegisterBot() error {
	// Default the number of guilds to 0.
	monitoring.TotalDiscordGuilds.Set(0)

	dg, err := discordgo.New("Bot " + config.BotToken)
	if err != nil {
		return fmt.Errorf("error creating Discord session: %w", err)
	}

	dg.Identify.Intents = discordgo.MakeIntent(discordgo.IntentsAll)

	if a.eventNotifier == nil {
		// Create event notifier. This is used to observe events. It is buffered to prevent blocking.
		a.eventNotifier = make(chan any, 100)
	}

	dg.SetEventNotifier(a.eventNotifier)

	a.s = dg
	return nil
}

// startJobs starts the periodic background jobs.
func (a *App) startJobs() {
	if _, err := a.sched.Every(5).Minutes().Do(a.reconcileGuildGauge); err != nil {
		a.Error("Error scheduling guild gauge reconcile", slog.String(logging.KeyError, err.Error()))
	}
	a.sched.StartAsync()
}

// reconcileGuildGauge refreshes the guild gauge from the API. Join and leave
// handlers keep it up to date between runs; this corrects any drift from
// missed events.
func (a *App) reconcileGuildGauge() {
	guilds, err := a.GetJoinedGuilds()
	if err != nil {
		a.Error("Error reconciling guild gauge", slog.String(logging.KeyError, err.Error()))
		return
	}
	monitoring.TotalDiscordGuilds.Set(float64(len(guilds)))
}

func (a *App) runServer() {
	go func() {
		a.Info("Starting monitoring server")
		if err := a.svr.ListenAndServe(); err != nil {
			a.Error("Error starting monitoring server", slog.String(logging.KeyError, err.Error()))
			a.Warn("Monitoring server will not be available")
		}
	}()
}

func (a *App) setupRoutes() {
	// PathMetrics is the path for metrics.
	a.r.HandleFunc(PathMetrics, promhttp.Handler().ServeHTTP).Methods(http.MethodGet)

	// PathHealth is the path for health check.
	a.r.HandleFunc(PathHealth, middlewareHttp(a.healthCheck(), a)).Methods(http.MethodGet)

	// NotFoundHandler is the handler for 404.
	a.r.NotFoundHandler = request.NotFoundHandler(a.Log())

	// MethodNotAllowedHandler is the handler for 405.
	a.r.MethodNotAllowedHandler = request.MethodNotAllowedHandler(a.Log())
}

func (a *App) generateServer() {
	a.svr = &http.Server{
		Addr:    ":" + config.MonitoringPort,
		Handler: a.r,
	}
}

func (a *App) GetJoinedGuilds() ([]*discordgo.UserGuild, error) {
	guilds, err := a.s.UserGuilds(0, "", "")
	if err != nil {
		return nil, fmt.Errorf("error getting guilds: %w", err)
	}
	return guilds, nil
}

func (a *App) RegisterDiscordHandlers() error {
	// Bot joined guild.
	a.s.AddHandler(guildJoinedHandler(a))

	// Bot left guild.
	a.s.AddHandler(guildLeaveHandler(a))

	// Reaction listener for opening tickets.
	a.s.AddHandler(reactionAddHandler(a))

	// Member leave listener for close on leave.
	a.s.AddHandler(memberLeaveHandler(a))

	// Interaction create handler.
	a.s.AddHandler(interactionHandler(a,
		// Slash Controllers
		map[string]commandController{
			ticketCmd.Name: ticketCmdController,
			setupCmd.Name:  setupCmdController,
		},
		// Component Controllers
		map[string]commandProcessor{
			QueuePrevButtonID:    queuePageHandler(-1),
			QueueNextButtonID:    queuePageHandler(1),
			PruneConfirmButtonID: pruneConfirmHandler,
			PruneCancelButtonID:  pruneCancelHandler,
		}))
	return nil
}

func (a *App) eventListener() {
	for e := range a.eventNotifier {
		switch t := e.(type) {
		case *discordgo.Event:
			if t.Type != "" {
				monitoring.TotalDiscordEvents.WithLabelValues(t.Type).Inc()
			} else {
				// If there is no type, then use the operation name.
				monitoring.TotalDiscordEvents.WithLabelValues(strings.ToUpper(t.Operation.String())).Inc()
			}
		default:
			a.Error("Unknown event type", slog.String("type", fmt.Sprintf("%T", e)))
			monitoring.TotalDiscordEvents.WithLabelValues("UNKNOWN").Inc()
		}
	}
}

func (a *App) registerSlashCommands() error {
	// Get all guilds the bot is in.
	guilds, err := a.GetJoinedGuilds()
	if err != nil {
		return fmt.Errorf("error getting guilds: %w", err)
	}

	// Register slash commands for each guild.
	for _, g := range guilds {
		// Register the ticket command.
		if _, err := a.Session().ApplicationCommandCreate(config.ApplicationId, g.ID, ticketCmd); err != nil {
			return fmt.Errorf("error creating ticket command for guild %s: %w", g.ID, err)
		}

		// Register the setup command.
		if _, err := a.Session().ApplicationCommandCreate(config.ApplicationId, g.ID, setupCmd); err != nil {
			return fmt.Errorf("error creating setup command for guild %s: %w", g.ID, err)
		}
	}
	return nil
}

func (a *App) unregisterSlashCommands() error {
	// Get all guilds the bot is in.
	guilds, err := a.GetJoinedGuilds()
	if err != nil {
		return fmt.Errorf("error getting guilds: %w", err)
	}

	// Delete slash commands for each guild.
	for _, guild := range guilds {
		// Delete the ticket command.
		if err := a.s.ApplicationCommandDelete(config.ApplicationId, guild.ID, ticketCmd.ID); err != nil {
			return fmt.Errorf("error deleting ticket command for guild %s: %w", guild.ID, err)
		}

		// Delete the setup command.
		if err := a.s.ApplicationCommandDelete(config.ApplicationId, guild.ID, setupCmd.ID); err != nil {
			return fmt.Errorf("error deleting setup command for guild %s: %w", guild.ID, err)
		}
	}
	return nil
}

func (a *App) Session() *discordgo.Session {
	return a.s
}

func (a *App) Log() *slog.Logger {
	return a.Logger
}

// Registry lazily builds the ticket registry over the guild DAL. The DAL is
// not created in NewApp because the Mongo connection is only established
// once the configuration has been parsed.
func (a *App) Registry() *registry.Registry {
	a.regOnce.Do(func() {
		a.dal = dataaccess.NewGuildDal(a.Logger)
		a.reg = registry.New(a.Logger, a.dal)
	})
	return a.reg
}

func (a *App) GuildDal() dataaccess.GuildDal {
	a.Registry()
	return a.dal
}

func (a *App) AllowLimitNotify() bool {
	return a.limitNotify.Allow()
}
