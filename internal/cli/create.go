package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentx-labs/monogen/internal/branding"
	"github.com/agentx-labs/monogen/internal/naming"
	"github.com/agentx-labs/monogen/internal/prompter"
	"github.com/agentx-labs/monogen/internal/scaffold"
)

// Shared flags for all create subcommands.
var (
	createDescription string
	createNoTests     bool
	createOverwrite   bool
)

func init() {
	createCmd.PersistentFlags().StringVar(&createDescription, "description", "", "One-line description (default: \"<Title> module\" or \"<Title> agent\")")
	createCmd.PersistentFlags().BoolVar(&createNoTests, "no-tests", false, "Skip the tests directory and the CI pipeline entry")
	createCmd.PersistentFlags().BoolVar(&createOverwrite, "overwrite", false, "Write into an existing unit directory")
	rootCmd.AddCommand(createCmd)

	createCmd.AddCommand(createSubprojectCmd)
	createCmd.AddCommand(createAgentCmd)
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Scaffold a new unit in the monorepo",
	Long: `Create a subproject or an agent project from the built-in templates and
register it in pyproject.toml, the Makefile and the CI pipeline.

Missing arguments are asked for interactively.`,
}

// ─── create subproject ─────────────────────────────────────────────

var createSubprojectCmd = &cobra.Command{
	Use:   "subproject [name]",
	Short: "Scaffold a new Poetry subproject",
	Long: `Scaffold a subproject with its own dependency group, a starter module,
a sample test and a dev container.

Examples:
  ` + branding.CLIName() + ` create subproject "Data Pipeline"
  ` + branding.CLIName() + ` create subproject etl --no-tests`,
	Args: usageArgs(cobra.MaximumNArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := scaffold.DefaultOptions()
		opts.IncludeTests = !createNoTests
		opts.Overwrite = createOverwrite
		description := createDescription

		var name string
		if len(args) == 1 {
			name = args[0]
		} else {
			p := prompter.New(cmd.InOrStdin(), cmd.OutOrStdout())
			var err error
			if name, err = p.AskRequired("Subproject name"); err != nil {
				return err
			}
			if !cmd.Flags().Changed("description") {
				if description, err = p.Ask("Description", naming.Title(naming.Slugify(name))+" module"); err != nil {
					return err
				}
			}
			if !cmd.Flags().Changed("no-tests") {
				if opts.IncludeTests, err = p.AskYesNo("Include tests", true); err != nil {
					return err
				}
			}
		}

		result, err := env.generator().CreateUnit(scaffold.KindSubproject, name, description, opts)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		printResult(out, env.root, result)

		slug := result.Unit.Slug
		fmt.Fprintln(out, "\nNext steps:")
		fmt.Fprintf(out, "  1. Add dependencies with '%s dep add %s <package>'\n", branding.CLIName(), slug)
		fmt.Fprintf(out, "  2. Run 'make install-%s'\n", slug)
		if opts.IncludeTests {
			fmt.Fprintf(out, "  3. Run 'make test-%s'\n", slug)
		}
		return nil
	},
}

// ─── create agent ──────────────────────────────────────────────────

var (
	agentName        string
	agentTools       string
	agentFramework   string
	agentPersistence string
)

var createAgentCmd = &cobra.Command{
	Use:   "agent [name]",
	Short: "Scaffold a new agentic chatbot project",
	Long: `Scaffold an agent project wired to Semantic Kernel or LlamaIndex, with a
system prompt, one stub per declared tool, a Streamlit app and a run script.

Examples:
  ` + branding.CLIName() + ` create agent weather --tools "get_weather, get_forecast"
  ` + branding.CLIName() + ` create agent helper --framework llama-index --persistence memory`,
	Args: usageArgs(cobra.MaximumNArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := scaffold.DefaultOptions()
		opts.IncludeTests = !createNoTests
		opts.Overwrite = createOverwrite
		opts.AgentName = agentName
		opts.Tools = naming.SplitList(agentTools)

		framework := agentFramework
		if framework == "" {
			framework = env.settings.DefaultFramework
		}
		opts.Persistence = agentPersistence
		if opts.Persistence == "" {
			opts.Persistence = env.settings.DefaultPersistence
		}
		description := createDescription

		var name string
		if len(args) == 1 {
			name = args[0]
		} else {
			var err error
			if name, description, framework, err = askAgent(cmd, &opts, framework); err != nil {
				return err
			}
		}

		fw, err := scaffold.ParseFramework(framework)
		if err != nil {
			return err
		}
		opts.Framework = fw

		result, err := env.generator().CreateUnit(scaffold.KindAgent, name, description, opts)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		printResult(out, env.root, result)

		slug := result.Unit.Slug
		fmt.Fprintln(out, "\nNext steps:")
		fmt.Fprintf(out, "  1. Implement the tool stubs in %s/tools.py\n", slug)
		fmt.Fprintf(out, "  2. Refine the system prompt with '%s prompt edit %s'\n", branding.CLIName(), slug)
		fmt.Fprintf(out, "  3. Start the chat UI with './%s/run.sh'\n", slug)
		return nil
	},
}

func init() {
	createAgentCmd.Flags().StringVar(&agentName, "agent-name", "", "Display name of the agent (default: title of the project name)")
	createAgentCmd.Flags().StringVar(&agentTools, "tools", "", "Comma-separated tool names, e.g. \"get_weather, get_forecast\"")
	createAgentCmd.Flags().StringVar(&agentFramework, "framework", "", "Agent framework: semantic-kernel or llama-index")
	createAgentCmd.Flags().StringVar(&agentPersistence, "persistence", "", "Conversation persistence: json, memory or cosmos")
}

// askAgent collects the agent inputs that were not given as flags.
func askAgent(cmd *cobra.Command, opts *scaffold.Options, framework string) (name, description, fw string, err error) {
	p := prompter.New(cmd.InOrStdin(), cmd.OutOrStdout())
	flags := cmd.Flags()
	description = createDescription
	fw = framework

	if name, err = p.AskRequired("Project name"); err != nil {
		return
	}
	title := naming.Title(naming.Slugify(name))
	if !flags.Changed("agent-name") {
		if opts.AgentName, err = p.Ask("Agent name", title); err != nil {
			return
		}
	}
	if !flags.Changed("description") {
		if description, err = p.Ask("Description", title+" agent"); err != nil {
			return
		}
	}
	if !flags.Changed("tools") {
		var tools string
		if tools, err = p.Ask("Tools (comma-separated, empty for none)", ""); err != nil {
			return
		}
		opts.Tools = naming.SplitList(tools)
	}
	if !flags.Changed("framework") {
		fw, err = selectFramework(p, framework)
		if err != nil {
			return
		}
	}
	if !flags.Changed("no-tests") {
		if opts.IncludeTests, err = p.AskYesNo("Include tests", true); err != nil {
			return
		}
	}
	return
}

func selectFramework(p *prompter.Prompter, current string) (string, error) {
	def := 0
	if fw, err := scaffold.ParseFramework(current); err == nil {
		for i, f := range scaffold.Frameworks {
			if f == fw {
				def = i
			}
		}
	}
	items := []string{"Semantic Kernel", "LlamaIndex"}
	idx, err := p.Select("Agent framework:", items, def)
	if err != nil {
		return "", err
	}
	return string(scaffold.Frameworks[idx]), nil
}
