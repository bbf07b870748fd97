package cli

import (
	"context"
	"fmt"
	"math"
	"os"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackchart/pkg/chart/format"
	"github.com/matzehuels/stackchart/pkg/chart/instance"
	"github.com/matzehuels/stackchart/pkg/chart/intent"
	"github.com/matzehuels/stackchart/pkg/chart/model"
	"github.com/matzehuels/stackchart/pkg/pipeline"
	"github.com/matzehuels/stackchart/pkg/render/sink"
	"github.com/matzehuels/stackchart/pkg/render/styles"
)

// previewCommand creates the preview command: an interactive terminal view
// of one chart instance.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		dims       = defaultDims
		configPath string
		svgPath    string
	)

	cmd := &cobra.Command{
		Use:   "preview [file]",
		Short: "Browse a chart in the terminal and select groups",
		Long: `Preview draws the stacked groups of a dataset in the terminal.

Keys:
  ↑/↓ j/k   move between groups
  enter     toggle the selection of the current group
  n         toggle normalized stacking
  esc       clear the selection
  q         quit

With --svg the chart, including the selection, is written to a file after
every change.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			opts := pipeline.Options{Input: args[0], Dims: dims, Config: &cfg, Logger: loggerFromContext(ctx)}
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			ds, err := pipeline.Import(opts)
			if err != nil {
				return err
			}

			var instOpts []instance.Option
			instOpts = append(instOpts, instance.WithLogger(c.Logger))
			if svgPath != "" {
				instOpts = append(instOpts, instance.WithRenderer(func(_ context.Context, s instance.Snapshot) error {
					return writeSnapshotSVG(svgPath, s)
				}))
			}
			inst := instance.New(cfg, opts.Width, opts.Height, instOpts...)
			if err := inst.SetData(ctx, ds); err != nil {
				return err
			}

			m := newPreviewModel(ctx, inst)
			m.svgPath = svgPath
			_, err = tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
			return err
		},
	}

	cmd.Flags().IntVar(&dims, "dims", dims, "number of leading CSV columns that are dimensions (0-2)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "chart configuration file (TOML)")
	cmd.Flags().StringVar(&svgPath, "svg", "", "keep an SVG rendering of the chart up to date at this path")
	cmd.ValidArgsFunction = completeDataset
	completeConfigFlag(cmd)

	return cmd
}

func writeSnapshotSVG(path string, s instance.Snapshot) error {
	svg := sink.RenderSVG(s.Layout, sink.WithStyle(styles.Simple{}), sink.WithSelection(s.Selection))
	return os.WriteFile(path, svg, 0o644)
}

// =============================================================================
// previewModel - bubbletea model
// =============================================================================

var (
	previewCursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	previewSelectedStyle = lipgloss.NewStyle().Foreground(colorGreen)
	previewMutedStyle    = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	previewMinBar   = 10
	previewReserved = 24
)

type previewModel struct {
	ctx     context.Context
	inst    *instance.Instance
	cursor  int
	width   int
	svgPath string
	err     error
}

func newPreviewModel(ctx context.Context, inst *instance.Instance) previewModel {
	return previewModel{ctx: ctx, inst: inst, width: 80}
}

func (m previewModel) Init() tea.Cmd {
	return nil
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		groups := m.inst.Snapshot().Model.Groups
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(groups)-1 {
				m.cursor++
			}
		case "enter", " ":
			if m.cursor < len(groups) {
				in := intent.Select(0, groups[m.cursor].ElemID).WithMode(intent.Toggle)
				_, m.err = m.inst.Select(in)
				m.syncSVG()
			}
		case "esc":
			m.inst.ClearSelection()
			m.syncSVG()
		case "n":
			cfg := m.inst.Config()
			cfg.Normalized = !cfg.Normalized
			m.err = m.inst.Configure(m.ctx, cfg)
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	}
	return m, nil
}

// syncSVG rewrites the SVG after a selection change; data and configuration
// changes go through the instance renderer instead.
func (m *previewModel) syncSVG() {
	if m.svgPath != "" && m.err == nil {
		m.err = writeSnapshotSVG(m.svgPath, m.inst.Snapshot())
	}
}

func (m previewModel) View() string {
	snap := m.inst.Snapshot()
	cm := snap.Model

	var b strings.Builder
	title := "Preview"
	if cm != nil && cm.MeasureTitle != "" {
		title += ": " + cm.MeasureTitle
	}
	if cm != nil && cm.Normalized {
		title += " (normalized)"
	}
	b.WriteString(StyleTitle.Render(title) + "\n")
	b.WriteString(previewMutedStyle.Render("↑/↓ move  ⏎ select  n normalize  esc clear  q quit") + "\n\n")

	if cm.IsEmpty() {
		b.WriteString(StyleWarning.Render("Nothing to draw"))
		return b.String()
	}

	colors := seriesColors(snap)
	keyWidth := 0
	for _, g := range cm.Groups {
		keyWidth = max(keyWidth, lipgloss.Width(g.Key))
	}
	barWidth := max(previewMinBar, m.width-keyWidth-previewReserved)
	lo, hi := cm.Extent()
	span := hi - lo
	if span == 0 {
		span = 1
	}
	zero := int(math.Round(-lo / span * float64(barWidth)))

	for i, g := range cm.Groups {
		marker := "  "
		if i == m.cursor {
			marker = previewCursorStyle.Render("▸ ")
		}
		sel := " "
		if groupSelected(snap.Selection, g) {
			sel = previewSelectedStyle.Render("●")
		}
		key := lipgloss.NewStyle().Width(keyWidth).Render(g.Key)
		bar := stackedBar(g, colors, span, barWidth, zero)
		total := format.Auto(g.Total())
		fmt.Fprintf(&b, "%s%s %s %s %s\n", marker, sel, key, bar, previewMutedStyle.Render(total))
	}

	if len(cm.SeriesKeys) > 1 {
		b.WriteString("\n")
		for i, k := range cm.SeriesKeys {
			if i > 0 {
				b.WriteString("  ")
			}
			swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(colors[k])).Render("■")
			b.WriteString(swatch + " " + k)
		}
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString("\n" + styleIconError.Render(iconError) + " " + m.err.Error() + "\n")
	}
	return b.String()
}

// stackedBar draws one group as colored cells: negative slices left of the
// zero column, outermost first, then positive slices to the right.
func stackedBar(g model.Group, colors map[string]string, span float64, width, zero int) string {
	cells := func(v float64) int { return int(math.Round(math.Abs(v) / span * float64(width))) }
	seg := func(p model.DataPoint) string {
		n := cells(p.Value)
		if n == 0 || p.Placeholder {
			return ""
		}
		return lipgloss.NewStyle().Foreground(lipgloss.Color(colors[p.SeriesKey])).Render(strings.Repeat("█", n))
	}

	var neg, pos []string
	negCells := 0
	for _, p := range g.Values {
		if p.Value < 0 {
			neg = append(neg, seg(p))
			negCells += cells(p.Value)
		} else {
			pos = append(pos, seg(p))
		}
	}
	slices.Reverse(neg)

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", max(0, zero-negCells)))
	for _, s := range neg {
		b.WriteString(s)
	}
	b.WriteString(previewMutedStyle.Render("│"))
	for _, s := range pos {
		b.WriteString(s)
	}
	return b.String()
}

// seriesColors reads the palette assignment from the laid-out bars.
func seriesColors(s instance.Snapshot) map[string]string {
	colors := make(map[string]string)
	if s.Layout == nil {
		return colors
	}
	for _, bar := range s.Layout.Bars {
		if _, ok := colors[bar.Series]; !ok {
			colors[bar.Series] = bar.Color
		}
	}
	return colors
}

func groupSelected(sel []intent.Intent, g model.Group) bool {
	return slices.ContainsFunc(sel, func(in intent.Intent) bool {
		return in.DimensionIndex == 0 && slices.Equal(in.ElemID, g.ElemID)
	})
}
