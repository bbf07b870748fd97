package cli

import (
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackchart/pkg/chart/config"
	"github.com/matzehuels/stackchart/pkg/pipeline"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for stackchart.

Besides commands and flags, the scripts complete dataset files (.csv,
.json), configuration files (.toml), output formats, styles, chart kinds
and cache backends.

  $ source <(stackchart completion bash)
  $ stackchart completion zsh > "${fpath[1]}/_stackchart"
  $ stackchart completion fish | source
  PS> stackchart completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(w, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(w)
			case "fish":
				return cmd.Root().GenFishCompletion(w, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(w)
			}
			return nil
		},
	}
}

// =============================================================================
// Argument and flag completion
// =============================================================================

// completeDataset completes the single dataset argument with CSV and JSON
// files.
func completeDataset(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"csv", "json"}, cobra.ShellCompDirectiveFilterFileExt
}

// completeConfigFlag restricts --config to TOML files.
func completeConfigFlag(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("config", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"toml"}, cobra.ShellCompDirectiveFilterFileExt
	})
}

// completeChoices completes flag with a fixed set of values.
func completeChoices(cmd *cobra.Command, flag string, values []string) {
	_ = cmd.RegisterFlagCompletionFunc(flag, cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp))
}

// completeFormats completes a comma-separated format list, offering only
// formats not yet listed.
func completeFormats(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	done, prefix := "", toComplete
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		done, prefix = toComplete[:i+1], toComplete[i+1:]
	}
	listed := parseFormats(done)
	var out []string
	for _, f := range formatNames() {
		if strings.HasPrefix(f, prefix) && (done == "" || !slices.Contains(listed, f)) {
			out = append(out, done+f)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

func formatNames() []string {
	return slices.Sorted(maps.Keys(pipeline.ValidFormats))
}

func styleNames() []string {
	return slices.Sorted(maps.Keys(pipeline.ValidStyles))
}

func kindNames() []string {
	return []string{string(config.KindBar), string(config.KindArea)}
}
