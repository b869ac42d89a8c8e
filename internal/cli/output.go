package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/lazypower/lineage/internal/api"
)

// emit prints v as JSON under --json, otherwise calls text.
func emit(v any, text func()) error {
	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text()
	return nil
}

// describePerson is the one-line form used in listings.
func describePerson(p api.Person) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s", p.ID, p.Name)
	if p.Born != "" || p.Died != "" {
		fmt.Fprintf(&b, " (%s - %s)", p.Born, p.Died)
	}
	if p.Sex != "" {
		fmt.Fprintf(&b, " [%s]", p.Sex)
	}
	return b.String()
}

func printPeople(ps []api.Person) {
	if len(ps) == 0 {
		fmt.Println("No people found")
		return
	}
	for _, p := range ps {
		fmt.Println(describePerson(p))
	}
}

func printRelatives(rs []api.Relative, what string) {
	if len(rs) == 0 {
		fmt.Printf("No %s found\n", what)
		return
	}
	for _, r := range rs {
		fmt.Printf("%s%s\n", strings.Repeat("  ", r.Depth-1), describePerson(r.Person))
	}
}
