package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"gasreport/pkg/domain"
)

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "gasreport",
		Short:         "Compose and store gas detection maintenance reports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.Context(), cmd.ErrOrStderr())
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&a.metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")

	root.AddCommand(
		newReportCommand(a),
		editReportCommand(a),
		duplicateReportCommand(a),
		showReportCommand(a),
		photosCommand(a),
		directoryCommand(a),
	)
	return root
}

func variantFlag(cmd *cobra.Command, dst *string) {
	cmd.Flags().StringVar(dst, "variant", string(domain.VariantFixed), "report variant: fixed or portable")
}

func newReportCommand(a *app) *cobra.Command {
	var variant, draft string
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a report from a draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := domain.ParseVariant(variant)
			if err != nil {
				return err
			}
			session := a.service.StartNewReport(v)
			d, err := readDraft(draft, session.Tree().Snapshot())
			if err != nil {
				return err
			}
			return a.saveDraft(cmd, session, d, domain.SaveCreateNew)
		},
	}
	variantFlag(cmd, &variant)
	cmd.Flags().StringVarP(&draft, "file", "f", "", "draft YAML file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func editReportCommand(a *app) *cobra.Command {
	return existingReportCommand(a, "edit <id>", "Apply a draft to a stored report in place", domain.SaveUpdateInPlace)
}

func duplicateReportCommand(a *app) *cobra.Command {
	return existingReportCommand(a, "duplicate <id>", "Store a copy of a report, optionally changed by a draft", domain.SaveDuplicateAsNew)
}

// existingReportCommand hydrates a stored report, overlays the optional draft
// and saves it with mode.
func existingReportCommand(a *app, use, short string, mode domain.SaveMode) *cobra.Command {
	var variant, draft string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := domain.ParseVariant(variant)
			if err != nil {
				return err
			}
			session, err := a.service.StartEditReport(cmd.Context(), v, args[0])
			if err != nil {
				return err
			}
			d, err := readDraft(draft, session.Tree().Snapshot())
			if err != nil {
				return err
			}
			return a.saveDraft(cmd, session, d, mode)
		},
	}
	variantFlag(cmd, &variant)
	cmd.Flags().StringVarP(&draft, "file", "f", "", "draft YAML file")
	return cmd
}

func showReportCommand(a *app) *cobra.Command {
	var variant string
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a stored report as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := domain.ParseVariant(variant)
			if err != nil {
				return err
			}
			session, err := a.service.StartEditReport(cmd.Context(), v, args[0])
			if err != nil {
				return err
			}
			return writeYAML(cmd, session.Tree().Snapshot())
		},
	}
	variantFlag(cmd, &variant)
	return cmd
}

func photosCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "photos <id>",
		Short: "List the stored photo blobs of a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			infos, err := a.blobs.List(cmd.Context(), "interventions/"+args[0]+"/")
			if err != nil {
				return err
			}
			for _, info := range infos {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\n", info.Key, info.Size, info.ContentType)
			}
			return nil
		},
	}
}

func writeYAML(cmd *cobra.Command, v any) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
