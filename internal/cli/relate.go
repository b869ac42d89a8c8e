package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lazypower/lineage/internal/api"
)

var (
	relMarried  string
	relDivorced string
	relNotes    string
)

var relateCmd = &cobra.Command{
	Use:   "relate",
	Short: "Record a parent or partner relationship",
}

var relateParentCmd = &cobra.Command{
	Use:   "parent <parent> <child>",
	Short: "Record that <parent> is a parent of <child>",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return relate(cmd, "parent_child", args[0], args[1])
	},
}

var relatePartnerCmd = &cobra.Command{
	Use:   "partner <person> <person>",
	Short: "Record a partnership between two people",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return relate(cmd, "partnership", args[0], args[1])
	},
}

func relate(cmd *cobra.Command, kind, refA, refB string) error {
	b, done, err := openBackend(cmd.Context())
	if err != nil {
		return err
	}
	defer done()

	from, to, err := resolvePair(b, refA, refB)
	if err != nil {
		return err
	}
	res, err := b.Relate(api.Relationship{
		Kind:     kind,
		From:     from.ID,
		To:       to.ID,
		Married:  relMarried,
		Divorced: relDivorced,
		Notes:    relNotes,
	})
	if err != nil {
		return err
	}
	if err := b.Save(); err != nil {
		return err
	}
	return emit(res, func() {
		fmt.Printf("%s  %s %s -> %s\n", res.Relationship.ID, kind, from.Name, to.Name)
		for _, a := range res.Advisories {
			fmt.Fprintf(os.Stderr, "warning: %s\n", a)
		}
	})
}

var unrelateCmd = &cobra.Command{
	Use:   "unrelate <relationship-id>",
	Short: "Remove one relationship",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, done, err := openBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer done()

		if err := b.Unrelate(args[0]); err != nil {
			return err
		}
		if err := b.Save(); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "removed relationship %s\n", args[0])
		return nil
	},
}

func init() {
	relatePartnerCmd.Flags().StringVar(&relMarried, "married", "", "Marriage date (YYYY-MM-DD)")
	relatePartnerCmd.Flags().StringVar(&relDivorced, "divorced", "", "Divorce date (YYYY-MM-DD)")
	for _, c := range []*cobra.Command{relateParentCmd, relatePartnerCmd} {
		c.Flags().StringVar(&relNotes, "notes", "", "Free-form notes")
	}
	relateCmd.AddCommand(relateParentCmd)
	relateCmd.AddCommand(relatePartnerCmd)
}
