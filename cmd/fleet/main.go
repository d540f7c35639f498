package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/fireguard/internal/bootstrap"
	"github.com/gestaozabele/fireguard/internal/config"
	"github.com/gestaozabele/fireguard/internal/persist"
	"github.com/gestaozabele/fireguard/internal/remote"
	"github.com/gestaozabele/fireguard/internal/settings"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.LoadStore()
	if err != nil {
		log.Fatal().Err(err).Msg("configuração inválida")
	}

	ctx := context.Background()
	cmd := os.Args[1]
	args := os.Args[2:]

	if cmd == "schema" {
		fmt.Print(remote.Schema)
		return
	}

	local, closeLocal, err := bootstrap.OpenLocalStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("não foi possível abrir o espelho local")
	}
	defer closeLocal()

	conn := settings.NewService(settings.NewRepository(local), cfg.RemoteDSN)
	logger := log.With().Str("component", "persist").Logger()
	rem, closeRemote := bootstrap.ConnectRemote(ctx, conn, logger)
	store := persist.NewHandle(persist.New(local, rem, logger), closeRemote)
	defer store.Close()

	switch cmd {
	case "seed":
		err = store.Facade().Seed(ctx)
	case "probe":
		err = runProbe(ctx, store.Facade(), cfg)
	case "pending":
		err = printJSON(store.Facade().PendingSync(ctx))
	case "resync":
		err = runResync(ctx, store.Facade())
	case "list":
		err = runList(ctx, store.Facade(), args)
	case "migrate":
		err = runMigrate(ctx, conn, cfg)
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", cmd).Msg("comando falhou")
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "fleet CLI")
	fmt.Fprintln(os.Stderr, "uso:")
	fmt.Fprintln(os.Stderr, "  fleet seed                      grava tipos, checklist e usuários padrão")
	fmt.Fprintln(os.Stderr, "  fleet probe                     classifica a conexão remota (online/offline/local)")
	fmt.Fprintln(os.Stderr, "  fleet pending                   lista gravações remotas pendentes")
	fmt.Fprintln(os.Stderr, "  fleet resync                    reenvia as pendências ao banco remoto")
	fmt.Fprintln(os.Stderr, "  fleet list --entity extinguishers|inspections|types|checklist|users|config")
	fmt.Fprintln(os.Stderr, "  fleet migrate                   cria as tabelas no banco remoto")
	fmt.Fprintln(os.Stderr, "  fleet schema                    imprime o DDL de referência")
}

func runProbe(ctx context.Context, facade *persist.Facade, cfg *config.Config) error {
	state := facade.Probe(ctx, cfg.ProbeTimeout)
	fmt.Println(state)
	if state == persist.StateOffline {
		return errors.New("banco remoto offline")
	}
	return nil
}

func runResync(ctx context.Context, facade *persist.Facade) error {
	report, err := facade.Resync(ctx)
	if err != nil {
		return err
	}
	if err := printJSON(report); err != nil {
		return err
	}
	if len(report.Remaining) > 0 {
		return fmt.Errorf("%d pendências continuam sem reenvio", len(report.Remaining))
	}
	return nil
}

func runList(ctx context.Context, facade *persist.Facade, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	entity := fs.String("entity", "extinguishers", "coleção a listar")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch *entity {
	case "extinguishers":
		return printJSON(facade.GetExtinguishers(ctx))
	case "inspections":
		return printJSON(facade.GetInspections(ctx))
	case "types":
		return printJSON(facade.GetExtinguisherTypes(ctx))
	case "checklist":
		return printJSON(facade.GetChecklistItems(ctx))
	case "users":
		users := facade.GetUsers(ctx)
		public := make([]any, 0, len(users))
		for _, u := range users {
			public = append(public, u.Public())
		}
		return printJSON(public)
	case "config":
		return printJSON(facade.GetSystemConfig(ctx))
	default:
		return fmt.Errorf("coleção desconhecida: %s", *entity)
	}
}

func runMigrate(ctx context.Context, conn *settings.Service, cfg *config.Config) error {
	current, err := conn.Current(ctx)
	if err != nil {
		return err
	}
	repo, err := settings.Dial(ctx, current.DSN, cfg.ProbeTimeout)
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := repo.ApplySchema(ctx); err != nil {
		return fmt.Errorf("aplicar schema: %w", err)
	}
	log.Info().Msg("schema aplicado")
	return nil
}

func printJSON(v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}
