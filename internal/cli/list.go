package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/agentx-labs/monogen/internal/errors"
	"github.com/agentx-labs/monogen/internal/ledger"
	"github.com/agentx-labs/monogen/internal/manifest"
	"github.com/agentx-labs/monogen/internal/naming"
	"github.com/agentx-labs/monogen/internal/workspace"
)

var (
	listKindFilter string
	listJSON       bool
	showJSON       bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List generated units",
	Long:  `List every directory in the workspace that holds a unit.yaml.`,
	Args:  usageArgs(cobra.NoArgs),
	RunE:  runList,
}

var showCmd = &cobra.Command{
	Use:   "show <unit>",
	Short: "Show one unit and its declared dependencies",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE:  runShow,
}

func init() {
	listCmd.Flags().StringVar(&listKindFilter, "kind", "", "Filter by kind (subproject, agent)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
}

// listEntry represents a unit for display.
type listEntry struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	Framework  string `json:"framework,omitempty"`
	Registered bool   `json:"registered"`
	Error      string `json:"error,omitempty"`
}

func runList(cmd *cobra.Command, args []string) error {
	units, err := workspace.Units(env.fs, env.unitsDir())
	if err != nil {
		return err
	}
	manifestLedger, err := env.manifestLedger()
	if err != nil {
		return err
	}

	var entries []listEntry
	for _, u := range units {
		entry := listEntry{Name: u.Slug}
		if u.Err != nil {
			entry.Error = u.Err.Error()
		} else {
			entry.Kind = u.Manifest.Kind
			if u.Manifest.Agent != nil {
				entry.Framework = u.Manifest.Agent.Framework
			}
		}
		if listKindFilter != "" && entry.Kind != listKindFilter {
			continue
		}
		if entry.Registered, err = manifestLedger.HasSection(u.Slug); err != nil {
			return err
		}
		entries = append(entries, entry)
	}

	out := cmd.OutOrStdout()
	if listJSON {
		if entries == nil {
			entries = []listEntry{}
		}
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling list: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "No units found.")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tFRAMEWORK\tREGISTERED")
	for _, e := range entries {
		if e.Error != "" {
			fmt.Fprintf(tw, "%s\t%s\t\t\n", e.Name, render(styleRemoved, "invalid unit.yaml"))
			continue
		}
		fw := e.Framework
		if fw == "" {
			fw = "-"
		}
		reg := "yes"
		if !e.Registered {
			reg = render(styleWarn, "no")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Name, e.Kind, fw, reg)
	}
	return tw.Flush()
}

// showOutput is the JSON form of show.
type showOutput struct {
	Dir          string                 `json:"dir"`
	Manifest     *manifest.UnitManifest `json:"manifest"`
	Dependencies []string               `json:"dependencies"`
	Registered   bool                   `json:"registered"`
}

func runShow(cmd *cobra.Command, args []string) error {
	slug := naming.Slugify(args[0])
	u, err := workspace.Find(env.fs, env.unitsDir(), slug)
	if err != nil {
		return err
	}

	manifestLedger, err := env.manifestLedger()
	if err != nil {
		return err
	}
	manifestPath := manifestLedger.Path()
	registered := true
	deps, err := ledger.GroupDependencies(env.fs, manifestPath, slug)
	if errors.HasCode(err, errors.EUnknownUnit) {
		registered = false
	} else if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if showJSON {
		if deps == nil {
			deps = []string{}
		}
		data, err := json.MarshalIndent(showOutput{Dir: u.Dir, Manifest: u.Manifest, Dependencies: deps, Registered: registered}, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling unit: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	m := u.Manifest
	fmt.Fprintf(out, "%s (%s)\n", render(styleTitle, m.Title), m.Kind)
	fmt.Fprintf(out, "  Name:        %s\n", m.Name)
	fmt.Fprintf(out, "  Description: %s\n", m.Description)
	fmt.Fprintf(out, "  Directory:   %s\n", relToRoot(u.Dir))
	fmt.Fprintf(out, "  Tests:       %v\n", m.Tests)
	fmt.Fprintf(out, "  Created:     %s by %s %s\n", m.Generator.CreatedAt, m.Generator.Name, m.Generator.Version)
	if m.Agent != nil {
		fmt.Fprintf(out, "  Agent:       %s\n", m.Agent.Name)
		fmt.Fprintf(out, "  Framework:   %s\n", m.Agent.Framework)
		fmt.Fprintf(out, "  Persistence: %s\n", m.Agent.Persistence)
		if len(m.Agent.Tools) > 0 {
			fmt.Fprintln(out, "  Tools:")
			for _, t := range m.Agent.Tools {
				fmt.Fprintf(out, "    - %s (%s)\n", t.Title, t.Function)
			}
		}
	}
	switch {
	case !registered:
		fmt.Fprintf(out, "  Dependencies: %s\n", render(styleWarn, "no group in "+relToRoot(manifestPath)))
	case len(deps) == 0:
		fmt.Fprintln(out, "  Dependencies: (none)")
	default:
		fmt.Fprintln(out, "  Dependencies:")
		for _, d := range deps {
			fmt.Fprintf(out, "    - %s\n", d)
		}
	}
	return nil
}
