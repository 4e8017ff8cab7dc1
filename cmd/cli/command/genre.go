package command

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newSlugCmd builds the list/create/delete tree shared by categories and genres.
// kind is the API collection name.
func newSlugCmd(kind, singular string) *cobra.Command {
	parent := &cobra.Command{
		Use:   singular,
		Short: fmt.Sprintf("%s management commands", singular),
		Long:  fmt.Sprintf("List %s, or create and delete them as an admin.", kind),
	}

	list := &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List %s", kind),
		RunE: func(cmd *cobra.Command, args []string) error {
			search, _ := cmd.Flags().GetString("search")
			items, err := GetAuthenticatedClient().ListSlugs(cmd.Context(), kind, search)
			if err != nil {
				return fmt.Errorf("failed to list %s: %w", kind, err)
			}

			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintf(out, "No %s found.\n", kind)
				return nil
			}
			for _, it := range items {
				fmt.Fprintf(out, "%-20s %s\n", it.Slug, it.Name)
			}
			return nil
		},
	}
	list.Flags().String("search", "", "exact name to look for")

	create := &cobra.Command{
		Use:   "create [slug] [name]",
		Short: fmt.Sprintf("Create a %s (admin)", singular),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := GetAuthenticatedClient().CreateSlug(cmd.Context(), kind, args[1], args[0])
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", singular, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Created %s %s (%s)\n", singular, item.Slug, item.Name)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete [slug]",
		Short: fmt.Sprintf("Delete a %s (admin)", singular),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := GetAuthenticatedClient().DeleteSlug(cmd.Context(), kind, args[0]); err != nil {
				return fmt.Errorf("failed to delete %s: %w", singular, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %s %s\n", singular, args[0])
			return nil
		},
	}

	parent.AddCommand(list, create, del)
	return parent
}

func init() {
	rootCmd.AddCommand(newSlugCmd("genres", "genre"))
	rootCmd.AddCommand(newSlugCmd("categories", "category"))
}
