package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/chriscow/lv2host-go/pkg/host"
	"github.com/chriscow/lv2host-go/pkg/lv2/manifest"
	"github.com/chriscow/lv2host-go/pkg/version"
)

var (
	searchPaths []string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "lv2host",
	Short: "lv2host discovers installed LV2 plugins and exposes them as element types",
	Long: `lv2host scans the LV2 plugin search path, introspects every plugin's
port and parameter topology, and synthesizes one element type per plugin:
its pads, grouped channels and tunable parameter schema.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.GetVersionInfo())
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every discovered element type",
	RunE: func(cmd *cobra.Command, args []string) error {
		types, err := discover()
		if err != nil {
			return err
		}

		table := uitable.New()
		table.MaxColWidth = 60
		table.AddRow("TYPE", "CLASS", "PADS", "PARAMS", "NAME")
		for _, t := range types {
			d := t.Descriptor
			table.AddRow(t.Name, d.Category.String(), len(d.Pads), len(d.Params), d.Name)
		}
		fmt.Println(table)
		return nil
	},
}

var describeCmd = &cobra.Command{
	Use:   "describe <type>",
	Short: "Show the pads and parameters of one element type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := discover(); err != nil {
			return err
		}
		t, ok := host.DefaultRegistry().Get(args[0])
		if !ok {
			return fmt.Errorf("unknown element type %q", args[0])
		}
		d := t.Descriptor

		fmt.Printf("%s\n", t.Name)
		fmt.Printf("  uri:      %s\n", d.URI)
		fmt.Printf("  name:     %s\n", d.Name)
		fmt.Printf("  author:   %s\n", d.Author)
		fmt.Printf("  class:    %s\n", d.Category)
		fmt.Printf("  in-place: %v\n", d.InPlaceSafe)

		if len(d.Pads) > 0 {
			fmt.Println("  pads:")
			table := uitable.New()
			for _, pad := range d.Pads {
				table.AddRow("   ", pad.Name, pad.Direction.String(),
					fmt.Sprintf("slot %d", pad.Slot),
					fmt.Sprintf("%d ch", pad.Channels))
			}
			fmt.Println(table)
		}

		if len(d.Params) > 0 {
			fmt.Println("  parameters:")
			table := uitable.New()
			for i, p := range d.Params {
				access := "rw"
				if !p.Writable {
					access = "ro"
				}
				rng := fmt.Sprintf("[%g, %g] default %g", p.Min, p.Max, p.Default)
				if p.Kind == host.ParamBool {
					rng = "default false"
				}
				table.AddRow("   ", fmt.Sprintf("%d", i+1), p.Name, p.Kind.String(), access, rng)
			}
			fmt.Println(table)
		}
		return nil
	},
}

// discover builds the manifest world from the configured search paths and
// runs the startup scan.
func discover() ([]*host.ElementType, error) {
	paths := searchPaths
	if env := os.Getenv("LV2_PATH"); env != "" {
		paths = append(paths, filepath.SplitList(env)...)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no plugin search path: pass --path or set LV2_PATH")
	}

	world := manifest.NewWorld(paths, slog.Default())
	catalog := host.NewCatalog(world, host.DefaultRegistry(), slog.Default())
	return catalog.Discover()
}

func main() {
	rootCmd.PersistentFlags().StringArrayVar(&searchPaths, "path", nil, "plugin search path (repeatable)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(versionCmd, listCmd, describeCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
