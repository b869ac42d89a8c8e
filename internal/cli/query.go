package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lazypower/lineage/internal/api"
)

var maxDepth int

var ancestorsCmd = &cobra.Command{
	Use:   "ancestors <person>",
	Short: "List a person's ancestors by generation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return lineage(cmd, args[0], "ancestors", backend.Ancestors)
	},
}

var descendantsCmd = &cobra.Command{
	Use:   "descendants <person>",
	Short: "List a person's descendants by generation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return lineage(cmd, args[0], "descendants", backend.Descendants)
	},
}

func lineage(cmd *cobra.Command, ref, what string, walk func(backend, string, int) ([]api.Relative, error)) error {
	b, done, err := openBackend(cmd.Context())
	if err != nil {
		return err
	}
	defer done()

	p, err := resolve(b, ref)
	if err != nil {
		return err
	}
	rs, err := walk(b, p.ID, maxDepth)
	if err != nil {
		return err
	}
	return emit(rs, func() {
		fmt.Printf("## %s of %s\n\n", what, p.Name)
		printRelatives(rs, what)
	})
}

var commonCmd = &cobra.Command{
	Use:   "common <person> <person>",
	Short: "List the ancestors two people share",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, done, err := openBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer done()

		a, bp, err := resolvePair(b, args[0], args[1])
		if err != nil {
			return err
		}
		res, err := b.Common(a.ID, bp.ID)
		if err != nil {
			return err
		}
		return emit(res, func() {
			if len(res.All) == 0 {
				fmt.Printf("%s and %s share no ancestors\n", a.Name, bp.Name)
				return
			}
			lowest := make(map[string]bool, len(res.Lowest))
			for _, s := range res.Lowest {
				lowest[s.Person.ID] = true
			}
			for _, s := range res.All {
				mark := " "
				if lowest[s.Person.ID] {
					mark = "*"
				}
				fmt.Printf("%s %s  (%d up from %s, %d up from %s)\n", mark, describePerson(s.Person), s.DepthA, a.Name, s.DepthB, bp.Name)
			}
		})
	},
}

var pathCmd = &cobra.Command{
	Use:   "path <person> <person>",
	Short: "Show the shortest chain of relationships between two people",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, done, err := openBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer done()

		a, bp, err := resolvePair(b, args[0], args[1])
		if err != nil {
			return err
		}
		res, err := b.Path(a.ID, bp.ID)
		if err != nil {
			return err
		}
		return emit(res, func() { printPath(res, a, bp) })
	},
}

func printPath(p api.Path, a, b api.Person) {
	if !p.Connected {
		fmt.Printf("%s and %s are not connected\n", a.Name, b.Name)
		return
	}
	names := make(map[string]string, len(p.People))
	for _, q := range p.People {
		names[q.ID] = q.Name
	}
	fmt.Printf("%s is %s's %s\n", b.Name, a.Name, p.Description)
	for _, s := range p.Steps {
		fmt.Printf("  %s -%s-> %s\n", names[s.From], s.Direction, names[s.To])
	}
}

var kinCmd = &cobra.Command{
	Use:   "kin <person> <person>",
	Short: "Name how the first person is related to the second",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, done, err := openBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer done()

		a, bp, err := resolvePair(b, args[0], args[1])
		if err != nil {
			return err
		}
		k, err := b.Kinship(a.ID, bp.ID)
		if err != nil {
			return err
		}
		return emit(k, func() {
			fmt.Printf("%s is %s's %s\n", a.Name, bp.Name, k.Label)
			if k.Path.Connected && k.Path.Description != "" {
				fmt.Printf("  via %s\n", k.Path.Description)
			}
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the family graph",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, done, err := openBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer done()

		s, err := b.Stats()
		if err != nil {
			return err
		}
		return emit(s, func() {
			fmt.Printf("people:         %d (%d living, %d deceased)\n", s.People, s.Living, s.Deceased)
			fmt.Printf("parent-child:   %d\n", s.ParentChild)
			fmt.Printf("partnerships:   %d\n", s.Partnerships)
			fmt.Printf("roots:          %d\n", s.Roots)
			fmt.Printf("generations:    %d\n", s.Generations)
			if s.ExtraParented > 0 {
				fmt.Printf("extra-parented: %d\n", s.ExtraParented)
			}
			if len(s.BirthYears.Counts) > 0 {
				fmt.Printf("born:           %d-%d\n", s.BirthYears.Min, s.BirthYears.Max)
			}
			printCounts("birthplaces", s.BirthPlaces)
			printCounts("occupations", s.Occupations)
		})
	},
}

func printCounts(title string, cs []api.Count) {
	if len(cs) == 0 {
		return
	}
	fmt.Printf("%s:\n", title)
	for _, c := range cs {
		fmt.Printf("  %-20s %d\n", c.Value, c.Count)
	}
}

func init() {
	for _, c := range []*cobra.Command{ancestorsCmd, descendantsCmd} {
		c.Flags().IntVarP(&maxDepth, "max-depth", "d", 0, "Maximum generations to walk (0 uses the configured default)")
	}
}
