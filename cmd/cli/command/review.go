package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review commands",
	Long:  `List the reviews of a title, post your own (one per title) or delete one.`,
}

var listReviewsCmd = &cobra.Command{
	Use:   "list [title-id]",
	Short: "List reviews of a title",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleID, err := parseID(args[0], "title")
		if err != nil {
			return err
		}
		page, _ := cmd.Flags().GetInt("page")

		result, err := GetAuthenticatedClient().ListReviews(cmd.Context(), titleID, page)
		if err != nil {
			return fmt.Errorf("failed to list reviews: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(result.Data) == 0 {
			fmt.Fprintln(out, "No reviews yet.")
			return nil
		}
		for _, r := range result.Data {
			fmt.Fprintf(out, "[%d] %s %d/10 (%s)\n  %s\n", r.ID, r.Author, r.Score, r.PubDate.Format("2006-01-02 15:04:05"), r.Text)
		}
		return nil
	},
}

var addReviewCmd = &cobra.Command{
	Use:   "add [title-id] [score] [text...]",
	Short: "Review a title with a score from 1 to 10",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleID, err := parseID(args[0], "title")
		if err != nil {
			return err
		}
		score, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid score: %w", err)
		}

		r, err := GetAuthenticatedClient().CreateReview(cmd.Context(), titleID, strings.Join(args[2:], " "), score)
		if err != nil {
			return fmt.Errorf("failed to post review: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Review %d posted\n", r.ID)
		return nil
	},
}

var deleteReviewCmd = &cobra.Command{
	Use:   "delete [title-id] [review-id]",
	Short: "Delete a review (author, moderator or admin)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleID, err := parseID(args[0], "title")
		if err != nil {
			return err
		}
		reviewID, err := parseID(args[1], "review")
		if err != nil {
			return err
		}

		if err := GetAuthenticatedClient().DeleteReview(cmd.Context(), titleID, reviewID); err != nil {
			return fmt.Errorf("failed to delete review: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Review %d deleted\n", reviewID)
		return nil
	},
}

func parseID(raw, what string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s ID: %w", what, err)
	}
	return id, nil
}

func init() {
	rootCmd.AddCommand(reviewCmd)
	reviewCmd.AddCommand(listReviewsCmd, addReviewCmd, deleteReviewCmd)
	listReviewsCmd.Flags().Int("page", 1, "page number")
}
