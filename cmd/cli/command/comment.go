package command

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Comment commands",
	Long:  `List or post comments under a review.`,
}

var listCommentsCmd = &cobra.Command{
	Use:   "list [title-id] [review-id]",
	Short: "List comments on a review, newest first",
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
		page, _ := cmd.Flags().GetInt("page")

		result, err := GetAuthenticatedClient().ListComments(cmd.Context(), titleID, reviewID, page)
		if err != nil {
			return fmt.Errorf("failed to list comments: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(result.Data) == 0 {
			fmt.Fprintln(out, "No comments yet.")
			return nil
		}
		for _, c := range result.Data {
			fmt.Fprintf(out, "[%d] %s: %s\n", c.ID, c.Author, c.Text)
		}
		return nil
	},
}

var addCommentCmd = &cobra.Command{
	Use:   "add [title-id] [review-id] [text...]",
	Short: "Comment on a review",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleID, err := parseID(args[0], "title")
		if err != nil {
			return err
		}
		reviewID, err := parseID(args[1], "review")
		if err != nil {
			return err
		}

		c, err := GetAuthenticatedClient().CreateComment(cmd.Context(), titleID, reviewID, strings.Join(args[2:], " "))
		if err != nil {
			return fmt.Errorf("failed to post comment: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Comment %d posted\n", c.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(commentCmd)
	commentCmd.AddCommand(listCommentsCmd, addCommentCmd)
	listCommentsCmd.Flags().Int("page", 1, "page number")
}
