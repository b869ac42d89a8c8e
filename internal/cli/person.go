package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lazypower/lineage/internal/api"
)

var personFields api.Person

var personCmd = &cobra.Command{
	Use:   "person",
	Short: "Add, list, show, edit or remove people",
}

var personAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a person",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, done, err := openBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer done()

		in := personFields
		in.Name = args[0]
		p, err := b.AddPerson(in)
		if err != nil {
			return err
		}
		if err := b.Save(); err != nil {
			return err
		}
		return emit(p, func() { fmt.Println(describePerson(p)) })
	},
}

var personListCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List people, optionally matching a query",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, done, err := openBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer done()

		q := ""
		if len(args) == 1 {
			q = args[0]
		}
		ps, err := b.Search(q)
		if err != nil {
			return err
		}
		return emit(ps, func() { printPeople(ps) })
	},
}

var personShowCmd = &cobra.Command{
	Use:   "show <person>",
	Short: "Show a person with parents, partners and children",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, done, err := openBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer done()

		p, err := resolve(b, args[0])
		if err != nil {
			return err
		}
		fam, err := family(b, p.ID)
		if err != nil {
			return err
		}
		return emit(fam, func() {
			fmt.Println(describePerson(p))
			for _, f := range []struct{ label, value string }{
				{"born", p.Born},
				{"died", p.Died},
				{"birthplace", p.BirthPlace},
				{"occupation", p.Occupation},
				{"notes", p.Notes},
			} {
				if f.value != "" {
					fmt.Printf("  %-11s %s\n", f.label+":", f.value)
				}
			}
			for _, g := range []struct {
				label  string
				people []api.Person
			}{
				{"parents", fam.Parents},
				{"partners", fam.Partners},
				{"children", fam.Children},
			} {
				if len(g.people) == 0 {
					continue
				}
				fmt.Printf("  %s:\n", g.label)
				for _, q := range g.people {
					fmt.Printf("    %s\n", describePerson(q))
				}
			}
		})
	},
}

var personEditCmd = &cobra.Command{
	Use:   "edit <person>",
	Short: "Change a person's attributes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var patch api.PersonPatch
		set := func(flag string, dst **string) {
			if cmd.Flags().Changed(flag) {
				v, _ := cmd.Flags().GetString(flag)
				*dst = &v
			}
		}
		set("name", &patch.Name)
		set("sex", &patch.Sex)
		set("born", &patch.Born)
		set("died", &patch.Died)
		set("birthplace", &patch.BirthPlace)
		set("occupation", &patch.Occupation)
		set("notes", &patch.Notes)
		if patch.Empty() {
			return fmt.Errorf("nothing to change; pass at least one attribute flag")
		}

		b, done, err := openBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer done()

		cur, err := resolve(b, args[0])
		if err != nil {
			return err
		}
		p, err := b.EditPerson(cur.ID, patch)
		if err != nil {
			return err
		}
		if err := b.Save(); err != nil {
			return err
		}
		return emit(p, func() { fmt.Println(describePerson(p)) })
	},
}

var personRmCmd = &cobra.Command{
	Use:   "rm <person>",
	Short: "Remove a person and all of their relationships",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, done, err := openBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer done()

		p, err := resolve(b, args[0])
		if err != nil {
			return err
		}
		if err := b.RemovePerson(p.ID); err != nil {
			return err
		}
		if err := b.Save(); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "removed %s\n", describePerson(p))
		return nil
	},
}

// personFamily is a person with their immediate relations.
type personFamily struct {
	api.Person
	Parents  []api.Person `json:"parents"`
	Partners []api.Person `json:"partners"`
	Children []api.Person `json:"children"`
}

func family(b backend, id string) (personFamily, error) {
	p, err := b.Person(id)
	if err != nil {
		return personFamily{}, err
	}
	fam := personFamily{Person: p}
	if fam.Parents, err = b.Parents(id); err != nil {
		return personFamily{}, err
	}
	if fam.Partners, err = b.Partners(id); err != nil {
		return personFamily{}, err
	}
	if fam.Children, err = b.Children(id); err != nil {
		return personFamily{}, err
	}
	return fam, nil
}

func init() {
	for _, c := range []*cobra.Command{personAddCmd, personEditCmd} {
		c.Flags().StringVar(&personFields.Sex, "sex", "", "Sex: female, male or unknown")
		c.Flags().StringVar(&personFields.Born, "born", "", "Birth date (YYYY-MM-DD)")
		c.Flags().StringVar(&personFields.Died, "died", "", "Death date (YYYY-MM-DD)")
		c.Flags().StringVar(&personFields.BirthPlace, "birthplace", "", "Place of birth")
		c.Flags().StringVar(&personFields.Occupation, "occupation", "", "Occupation")
		c.Flags().StringVar(&personFields.Notes, "notes", "", "Free-form notes")
	}
	personEditCmd.Flags().String("name", "", "New name")

	personCmd.AddCommand(personAddCmd)
	personCmd.AddCommand(personListCmd)
	personCmd.AddCommand(personShowCmd)
	personCmd.AddCommand(personEditCmd)
	personCmd.AddCommand(personRmCmd)
}
