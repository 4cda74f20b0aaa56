package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"gasreport/pkg/domain"
)

// directoryFile is the YAML layout of `directory import` and `directory list`.
type directoryFile struct {
	Clients     []directoryClient   `yaml:"clients"`
	Technicians []domain.Technician `yaml:"technicians"`
}

type directoryClient struct {
	ID    string        `yaml:"id,omitempty"`
	Name  string        `yaml:"name"`
	Sites []domain.Site `yaml:"sites,omitempty"`
}

func directoryCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "directory",
		Short: "Manage the clients, sites and technicians reports refer to",
	}
	cmd.AddCommand(directoryListCommand(a), directoryImportCommand(a))
	return cmd
}

func directoryListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the directory as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			clients, err := a.directory.ListClients(ctx)
			if err != nil {
				return err
			}
			var out directoryFile
			for _, c := range clients {
				sites, err := a.directory.ListSites(ctx, c.ID)
				if err != nil {
					return err
				}
				out.Clients = append(out.Clients, directoryClient{ID: c.ID, Name: c.Name, Sites: sites})
			}
			if out.Technicians, err = a.directory.ListTechnicians(ctx); err != nil {
				return err
			}
			return writeYAML(cmd, out)
		},
	}
}

func directoryImportCommand(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Add the clients, sites and technicians of a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := os.ReadFile(file) // #nosec G304 -- operator supplied file
			if err != nil {
				return fmt.Errorf("read directory file: %w", err)
			}
			var in directoryFile
			if err := yaml.Unmarshal(data, &in); err != nil {
				return fmt.Errorf("parse directory file: %w", err)
			}
			ctx := cmd.Context()
			var sites int
			for _, c := range in.Clients {
				client, err := a.directory.AddClient(ctx, c.Name)
				if err != nil {
					return err
				}
				for _, s := range c.Sites {
					if _, err := a.directory.AddSite(ctx, client.ID, s.Name, s.Address); err != nil {
						return err
					}
					sites++
				}
			}
			for _, t := range in.Technicians {
				if _, err := a.directory.AddTechnician(ctx, t.Name); err != nil {
					return err
				}
			}
			a.logger.Info("directory imported",
				"clients", len(in.Clients),
				"sites", sites,
				"technicians", len(in.Technicians))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "directory YAML file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
