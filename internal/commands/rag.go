package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adminfin-dev/adminfin/internal/api"
	"github.com/adminfin-dev/adminfin/internal/rag"
)

func newRAGCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rag",
		Short: "Ask questions about the launched invoices",
	}
	cmd.AddCommand(
		newRAGAskCommand(a),
		newRAGStatusCommand(a),
		newRAGExamplesCommand(a),
		newRAGIndexCommand(a),
	)
	return cmd
}

func newRAGAskCommand(a *app) *cobra.Command {
	var method string

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := rag.NewWidget(a.client, a.logger)
			// an unreachable status endpoint leaves the method unchecked;
			// the ask itself reports whether the service is down
			if _, err := w.Status(cmd.Context()); err != nil {
				a.logger.WithError(err).Warn("asking without RAG status")
			}
			if err := w.SetMethod(method); err != nil {
				return err
			}
			ans, err := w.Ask(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ans.Answer)
			fmt.Fprintf(out, "\nMétodo: %s\n", rag.MethodLabel(ans.Method))
			meta, err := rag.Metadata(ans)
			if err != nil {
				return err
			}
			if meta != "" {
				fmt.Fprintln(out, meta)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&method, "method", api.MethodSimple, "simple or embeddings")

	return cmd
}

func newRAGStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which methods are available and how much is indexed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := rag.NewWidget(a.client, a.logger).Status(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), rag.StatusText(st))
			return nil
		},
	}
}

func newRAGExamplesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "examples",
		Short: "List example questions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			examples, err := rag.NewWidget(a.client, a.logger).Examples(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(examples) == 0 {
				fmt.Fprintln(out, "Nenhum exemplo disponível")
				return nil
			}
			for i, q := range examples {
				fmt.Fprintf(out, "%d. %s\n", i+1, q)
			}
			return nil
		},
	}
}

func newRAGIndexCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Index every invoice for the embeddings method",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, ran, err := rag.NewWidget(a.client, a.logger).Index(cmd.Context(), a.confirmer(cmd))
			if err != nil {
				return err
			}
			if !ran {
				fmt.Fprintln(cmd.OutOrStdout(), "Operação cancelada")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), rag.IndexSummary(res))
			return nil
		},
	}
}
