package command

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"yamdb/internal/microservices/http-api/dto"

	"github.com/spf13/cobra"
)

var titleCmd = &cobra.Command{
	Use:   "title",
	Short: "Title commands",
	Long:  `Browse titles with filters, show one title with its rating, or create one as an admin.`,
}

var listTitlesCmd = &cobra.Command{
	Use:   "list",
	Short: "List titles",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := url.Values{}
		for _, name := range []string{"name", "category", "genre", "year", "page"} {
			if v, _ := cmd.Flags().GetString(name); v != "" {
				filter.Set(name, v)
			}
		}

		result, err := GetAuthenticatedClient().ListTitles(cmd.Context(), filter)
		if err != nil {
			return fmt.Errorf("failed to list titles: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(result.Data) == 0 {
			fmt.Fprintln(out, "No titles found.")
			return nil
		}
		for i := range result.Data {
			printTitleLine(out, &result.Data[i])
		}
		p := result.Pagination
		fmt.Fprintf(out, "\nPage %d of %d (%d titles)\n", p.Page, p.TotalPages, p.Total)
		return nil
	},
}

var showTitleCmd = &cobra.Command{
	Use:   "show [title-id]",
	Short: "Show one title",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid title ID: %w", err)
		}

		t, err := GetAuthenticatedClient().GetTitle(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to get title: %w", err)
		}

		out := cmd.OutOrStdout()
		printTitleLine(out, t)
		if t.Description != "" {
			fmt.Fprintf(out, "\n%s\n", t.Description)
		}
		return nil
	},
}

var createTitleCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a title (admin)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.Join(args, " ")
		year, _ := cmd.Flags().GetInt("year")
		description, _ := cmd.Flags().GetString("description")
		category, _ := cmd.Flags().GetString("category")
		genres, _ := cmd.Flags().GetStringSlice("genre")

		req := dto.TitleRequest{Name: &name, Year: &year, Genre: genres}
		if description != "" {
			req.Description = &description
		}
		if category != "" {
			req.Category = &category
		}

		t, err := GetAuthenticatedClient().CreateTitle(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("failed to create title: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Title created with ID %d\n", t.ID)
		return nil
	},
}

func printTitleLine(out io.Writer, t *dto.TitleResponse) {
	rating := "-"
	if t.Rating != nil {
		rating = strconv.FormatFloat(*t.Rating, 'f', 1, 64)
	}
	category := "-"
	if t.Category != nil {
		category = t.Category.Slug
	}
	genres := make([]string, 0, len(t.Genre))
	for _, g := range t.Genre {
		genres = append(genres, g.Slug)
	}
	fmt.Fprintf(out, "[%d] %s (%d) | rating %s | %s | %s\n", t.ID, t.Name, t.Year, rating, category, strings.Join(genres, ","))
}

func init() {
	rootCmd.AddCommand(titleCmd)
	titleCmd.AddCommand(listTitlesCmd, showTitleCmd, createTitleCmd)

	listTitlesCmd.Flags().String("name", "", "substring of the title name")
	listTitlesCmd.Flags().String("category", "", "category slug")
	listTitlesCmd.Flags().String("genre", "", "genre slug")
	listTitlesCmd.Flags().String("year", "", "release year")
	listTitlesCmd.Flags().String("page", "", "page number")

	createTitleCmd.Flags().Int("year", 0, "release year")
	createTitleCmd.Flags().String("description", "", "description")
	createTitleCmd.Flags().String("category", "", "category slug")
	createTitleCmd.Flags().StringSlice("genre", nil, "genre slugs, comma separated")
	createTitleCmd.MarkFlagRequired("year")
}
