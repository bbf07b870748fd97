package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackchart/pkg/chart/config"
	"github.com/matzehuels/stackchart/pkg/chart/format"
	"github.com/matzehuels/stackchart/pkg/chart/model"
	"github.com/matzehuels/stackchart/pkg/errors"
	"github.com/matzehuels/stackchart/pkg/pipeline"
	"github.com/matzehuels/stackchart/pkg/render/ordergraph"
)

// inspectCommand creates the inspect command, which prints the shaped model
// of a dataset without laying it out.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		dims       = defaultDims
		configPath string
		normalized bool
		orderGraph string
	)

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Show the groups, series and totals a dataset shapes into",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("normalized") {
				cfg.Normalized = normalized
			}
			opts := pipeline.Options{Input: args[0], Dims: dims, Config: &cfg, Logger: loggerFromContext(cmd.Context())}
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			ds, err := pipeline.Import(opts)
			if err != nil {
				return err
			}
			m := pipeline.Shape(cmd.Context(), ds, opts)
			fmt.Fprintln(cmd.OutOrStdout(), renderInspect(ds, m, cfg))
			if orderGraph == "" {
				return nil
			}
			if err := writeOrderGraph(cmd.Context(), ds, orderGraph); err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Info("wrote series order graph", "path", orderGraph, "cyclic", m.OrderFallback)
			return nil
		},
	}

	cmd.Flags().IntVar(&dims, "dims", dims, "number of leading CSV columns that are dimensions (0-2)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "chart configuration file (TOML)")
	cmd.Flags().BoolVar(&normalized, "normalized", false, "stack to 100% per group")
	cmd.Flags().StringVar(&orderGraph, "order-graph", "", "write the series precedence graph to a .svg or .dot file")

	cmd.ValidArgsFunction = completeDataset
	completeConfigFlag(cmd)
	_ = cmd.RegisterFlagCompletionFunc("order-graph", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"svg", "dot"}, cobra.ShellCompDirectiveFilterFileExt
	})

	return cmd
}

// writeOrderGraph draws the precedence edges the series order of ds is
// derived from. The extension of path selects DOT source or rendered SVG.
func writeOrderGraph(ctx context.Context, ds model.Dataset, path string) error {
	nodes, edges := model.SeriesPrecedence(ds)
	if len(nodes) == 0 {
		return errors.New(errors.ErrCodeUnsupported, "order graph needs a two-dimensional dataset")
	}
	dot := ordergraph.ToDOT(ordergraph.Build(nodes, edges))

	var data []byte
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".dot", ".gv":
		data = []byte(dot)
	case ".svg":
		svg, err := ordergraph.RenderSVG(ctx, dot)
		if err != nil {
			return err
		}
		data = svg
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "order graph path %q must end in .svg or .dot", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
	}
	return nil
}

// renderInspect formats the model as a summary followed by a group × series
// table.
func renderInspect(ds model.Dataset, m *model.Model, cfg config.Config) string {
	var b strings.Builder
	kv := func(key, value string) {
		b.WriteString(lipgloss.NewStyle().Foreground(colorGray).Width(12).Render(key))
		b.WriteString(" " + StyleValue.Render(value) + "\n")
	}

	kv("Rows", fmt.Sprint(len(ds.Rows)))
	kv("Dimensions", joinOrDash(ds.Dimensions))
	kv("Measures", joinOrDash(ds.Measures))
	if m.IsEmpty() {
		b.WriteString(StyleWarning.Render("Nothing to draw: the dataset is empty or malformed"))
		return b.String()
	}
	kv("Groups", fmt.Sprint(len(m.Groups)))
	kv("Series", joinOrDash(m.SeriesKeys))
	if m.OrderFallback {
		b.WriteString(StyleWarning.Render("Series order is cyclic; using encounter order") + "\n")
	}
	b.WriteString("\n")

	totals := format.New(cfg.TotalFormat)
	title := ""
	if len(m.DimTitles) > 0 {
		title = m.DimTitles[0]
	}
	headers := append([]string{title}, m.SeriesKeys...)
	headers = append(headers, "Total")

	rows := make([][]string, 0, len(m.Groups))
	for _, g := range m.Groups {
		row := []string{g.Key}
		for _, p := range g.Values {
			switch {
			case p.Placeholder:
				row = append(row, "—")
			case m.Normalized && p.PercentText != "":
				row = append(row, p.PercentText)
			default:
				row = append(row, p.DisplayText)
			}
		}
		row = append(row, totals.Format(g.Total()))
		rows = append(rows, row)
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle.Padding(0, 1)
			case col == 0:
				return StyleHighlight.Padding(0, 1)
			case col == len(headers)-1:
				return StyleNumber.Bold(true).Padding(0, 1)
			}
			return StyleValue.Padding(0, 1).Align(lipgloss.Right)
		})

	b.WriteString(t.Render())
	return b.String()
}

func joinOrDash(s []string) string {
	if len(s) == 0 {
		return "—"
	}
	return strings.Join(s, ", ")
}
