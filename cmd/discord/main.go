package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"musa/internal/command"
	musiccmd "musa/internal/command/music"
	"musa/internal/config"
	"musa/internal/discord"
	"musa/internal/logging"
	"musa/internal/music/player"
	"musa/internal/music/providers"
	"musa/internal/music/providers/archive"
	"musa/internal/music/providers/radio"
	"musa/internal/music/providers/youtube"
	"musa/internal/music/source_resolver"
	"musa/internal/version"
	"musa/internal/web"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatal(err)
	}
	logging.Init(cfg.LogLevel)
	logging.Event("starting", "app", version.AppName, "version", version.AppVersion)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := providers.NewRegistry()
	registry.Register(youtube.New(cfg.YouTubeProxy), cfg.EnableYouTube, cfg.YouTubePriority)
	registry.Register(archive.New(), cfg.EnableArchive, cfg.ArchivePriority)
	registry.Register(radio.New(), cfg.EnableRadio, cfg.RadioPriority)

	resolver := source_resolver.New(registry,
		cfg.MaxResultsPerSource,
		time.Duration(cfg.SearchTimeoutSeconds)*time.Second)

	bot, err := discord.NewBot(cfg, resolver, player.Options{
		IdleTimeout:  time.Duration(cfg.IdleDisconnectSeconds) * time.Second,
		EmptyTimeout: time.Duration(cfg.EmptyChannelSeconds) * time.Second,
	})
	if err != nil {
		log.Fatal(err)
	}

	command.Register(
		&musiccmd.MusicCommand{FindVoiceChannel: bot.FindUserVoiceChannel},
		command.WithGuildOnly(),
		command.WithCommandLogger(),
	)

	if cfg.StatusAddr != "" {
		go web.NewServer(resolver, bot.Players()).Run(ctx, cfg.StatusAddr)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- bot.Run(ctx)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		logging.Event("signal_received", "signal", s.String())
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			logging.Error("bot exited", "error", err)
			os.Exit(1)
		}
	}
}
