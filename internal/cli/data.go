package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lazypower/lineage/internal/api"
	"github.com/lazypower/lineage/internal/codec"
	"github.com/lazypower/lineage/internal/engine"
)

var exportFormat string

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the stored graph with a YAML or JSON family file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		src, err := codec.NewFile(args[0])
		if err != nil {
			return err
		}
		snap, err := src.LoadGraph(ctx)
		if err != nil {
			return err
		}

		eng := engine.New()
		if err := eng.Restore(snap); err != nil {
			return fmt.Errorf("import %s: %w", args[0], err)
		}

		dst, desc, closeFn, err := openProvider(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeFn()
		if err := eng.Save(ctx, dst); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "imported %d people, %d relationships into %s\n", len(snap.People), len(snap.Edges), desc)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the stored graph as a YAML or JSON family file (stdout by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		src, _, closeFn, err := openProvider(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeFn()
		eng := engine.New()
		if err := eng.Load(ctx, src); err != nil {
			return err
		}

		var c codec.Codec
		if len(args) == 1 && !cmd.Flags().Changed("format") {
			c, err = codec.ForPath(args[0])
		} else {
			c, err = codec.ForFormat(exportFormat)
		}
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := c.Encode(api.FromSnapshot(eng.Snapshot()), &buf); err != nil {
			return err
		}
		if len(args) == 0 {
			_, err := os.Stdout.Write(buf.Bytes())
			return err
		}
		if err := codec.WriteAtomic(args[0], buf.Bytes()); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "exported %d people to %s\n", eng.Len(), args[0])
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "yaml", "Output format: yaml or json")
}
