package main

import (
	"fmt"
	"os"

	"github.com/mpalmer/gf/internal/config"
	"github.com/mpalmer/gf/internal/layout"
	"github.com/spf13/cobra"
)

// configCmd groups the config subcommands under "gf config ...".
func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect gf's merged settings",
	}
	cmd.AddCommand(configShowCmd())
	return cmd
}

// configShowCmd prints the merged settings gf would use in the current
// directory: a maintainer-facing window into what got loaded and from
// where, without spawning gdb.
func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the merged gf settings for the current directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			wd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("config show: getwd: %w", err)
			}
			loader := config.NewLoader(wd)
			cfg, err := loader.Load(wd)
			if err != nil {
				return fmt.Errorf("config show: %w", err)
			}

			trusted := loader.IsTrusted(wd)
			fmt.Printf("global settings: %s\n", config.GlobalPath())
			fmt.Printf("project settings: %s (trusted: %v)\n", config.ProjectPath(wd), trusted)
			fmt.Printf("[ui]\n  font_size = %d\n  scale = %g\n  layout = %s\n  maximize = %v\n",
				cfg.UI.FontSize, cfg.UI.Scale, cfg.UI.Layout, cfg.UI.Maximize)
			fmt.Printf("[gdb]\n  path = %s\n  arguments = %v\n  breakpoint_type = %s\n",
				cfg.GDB.Path, cfg.GDB.Arguments, cfg.GDB.BreakpointType)
			fmt.Printf("[pipe]\n  control = %s\n  logs = %v\n", cfg.Pipe.ControlPath, cfg.Pipe.LogPaths)
			fmt.Printf("[vim]\n  servername = %s\n", cfg.Vim.ServerName)
			fmt.Printf("[commands] %d preset(s)\n", len(cfg.Presets))
			return nil
		},
	}
}

// layoutCmd groups the layout subcommands under "gf layout ...".
func layoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Validate window layout grammar strings",
	}
	cmd.AddCommand(layoutCheckCmd())
	return cmd
}

// layoutCheckCmd parses a layout grammar string (either the argument
// itself or, if it names a readable file, that file's contents) and
// reports success or the fatal parse error spec.md §6/§8 names.
func layoutCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <grammar-or-file>",
		Short: "Validate a window layout grammar string",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := args[0]
			if data, err := os.ReadFile(src); err == nil {
				src = string(data)
			}
			node, err := layout.Parse(src)
			if err != nil {
				return fmt.Errorf("layout check: %w", err)
			}
			fmt.Printf("ok: %s\n", describe(node))
			return nil
		},
	}
}

func describe(n *layout.Node) string {
	switch n.Kind {
	case layout.Leaf:
		return n.Name
	case layout.Tabs:
		return fmt.Sprintf("tabs(%v)", n.Tabs)
	default:
		return fmt.Sprintf("split(%d%%, %s, %s)", n.Percent, describe(n.Children[0]), describe(n.Children[1]))
	}
}
