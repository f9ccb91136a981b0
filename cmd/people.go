package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/facegate/facegate/internal/config"
	"github.com/facegate/facegate/internal/database"
	"github.com/facegate/facegate/internal/people"
)

var peopleCmd = &cobra.Command{
	Use:   "people",
	Short: "Manage registered people",
}

var peopleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all registered people",
	RunE:  runPeopleList,
}

var peopleShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one registered person",
	Args:  cobra.ExactArgs(1),
	RunE:  runPeopleShow,
}

var peopleDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a registered person",
	Long:  `Delete a person. A deleted person can no longer be recognized.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runPeopleDelete,
}

var peopleFindCmd = &cobra.Command{
	Use:   "find <name>",
	Short: "Find people by name",
	Long: `Find registered people whose name contains the given text.
Matching ignores case and diacritics, so "novak" finds "Novák".`,
	Args: cobra.ExactArgs(1),
	RunE: runPeopleFind,
}

func init() {
	rootCmd.AddCommand(peopleCmd)
	peopleCmd.AddCommand(peopleListCmd)
	peopleCmd.AddCommand(peopleShowCmd)
	peopleCmd.AddCommand(peopleDeleteCmd)
	peopleCmd.AddCommand(peopleFindCmd)
}

func runPeopleList(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.Close()

	snapshot, err := repos.people.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("listing people: %w", err)
	}

	if len(snapshot) == 0 {
		fmt.Println("No people registered")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tID CARD\tFAMILY\tDIM\tREGISTERED")
	for _, p := range snapshot {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			p.ID, p.Name, p.IDCardNumber, p.Family, p.Dim, p.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func runPeopleShow(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.Close()

	p, err := repos.people.Get(ctx, args[0])
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("person %s not found", args[0])
	}
	if err != nil {
		return err
	}

	fmt.Printf("ID:           %s\n", p.ID)
	fmt.Printf("Name:         %s\n", p.Name)
	fmt.Printf("Age:          %d\n", p.Age)
	fmt.Printf("ID card:      %s\n", p.IDCardNumber)
	fmt.Printf("Nationality:  %s\n", p.Nationality)
	fmt.Printf("Profession:   %s\n", p.Profession)
	fmt.Printf("Embedding:    %s, %d dimensions\n", p.Family, p.Dim)
	fmt.Printf("Registered:   %s\n", p.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Updated:      %s\n", p.UpdatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func runPeopleFind(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.Close()

	snapshot, err := repos.people.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("listing people: %w", err)
	}

	query := people.NormalizeName(args[0])
	var matches []database.Person
	for _, p := range snapshot {
		if strings.Contains(people.NormalizeName(p.Name), query) {
			matches = append(matches, p)
		}
	}

	if len(matches) == 0 {
		fmt.Printf("No people matching %q\n", args[0])
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tID CARD\tREGISTERED")
	for _, p := range matches {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			p.ID, p.Name, p.IDCardNumber, p.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func runPeopleDelete(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.Close()

	err = repos.people.Delete(ctx, args[0])
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("person %s not found", args[0])
	}
	if err != nil {
		return err
	}

	fmt.Printf("Deleted %s\n", args[0])
	return nil
}
