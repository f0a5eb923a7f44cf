package commands

import (
	"fmt"

	"github.com/stateset/stateset/internal/deploy"
	"github.com/stateset/stateset/internal/logger"
	"github.com/stateset/stateset/internal/output"
	"github.com/stateset/stateset/internal/remote"
	"github.com/stateset/stateset/internal/storage"
)

// app bundles the wired components commands operate on.
type app struct {
	log          logger.Logger
	snapshots    *storage.Store
	deployments  *deploy.Store
	remote       remote.Service
	orchestrator *deploy.Orchestrator
	resolver     *deploy.Resolver
	formatter    *output.Formatter
	format       string
}

// buildApp wires stores and services from the loaded configuration.
func buildApp() (*app, error) {
	snapshots, err := storage.NewStore(cfg.Storage.BaseDir)
	if err != nil {
		return nil, err
	}

	log := logger.New(cfg.Logging.Level)
	deployments := deploy.NewStore(cfg.Deploy.LogFile)
	svc := remote.NewClient(remote.ClientConfig{
		BaseURL: cfg.API.BaseURL,
		Token:   cfg.API.Token,
		OrgID:   cfg.API.OrgID,
	})

	return &app{
		log:          log,
		snapshots:    snapshots,
		deployments:  deployments,
		remote:       svc,
		orchestrator: deploy.NewOrchestrator(deployments, snapshots, svc, log),
		resolver:     deploy.NewResolver(snapshots, svc),
		formatter:    output.NewFormatter(cfg.Output.NoColor),
		format:       cfg.Output.Format,
	}, nil
}

// render writes a value in the selected output format, falling back to the
// provided table rendering.
func (a *app) render(v any, table string) error {
	switch a.format {
	case "json":
		s, err := output.FormatJSON(v)
		if err != nil {
			return err
		}
		fmt.Print(s)
	case "yaml":
		s, err := output.FormatYAML(v)
		if err != nil {
			return err
		}
		fmt.Print(s)
	default:
		fmt.Print(table)
	}
	return nil
}
