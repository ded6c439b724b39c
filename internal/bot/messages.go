package bot

import (
	"fmt"
	"strings"

	"github.com/alekspetrov/goaltrack/internal/storage"
)

const (
	msgWelcome = "Welcome!\n" +
		"To continue, link your tracker account using the verification code below."

	msgUnknownCommand = "Unknown command. Use /start for the list of commands."

	msgNoBoards        = "You have no boards."
	msgNoCategories    = "You have no categories."
	msgNoGoals         = "You have no goals."
	msgEmptyCategories = "Category list is empty."

	msgEnterTitle       = "Enter the goal title"
	msgEnterDescription = "Enter a description"
	msgEnterDueDate     = "Enter the deadline as YYYY-MM-DD"
	msgBadDueDate       = "That doesn't look like a date. Enter the deadline as YYYY-MM-DD"
	msgCreateFailed     = "Could not save the goal. Send the deadline again to retry."
	msgCancelled        = "Operation cancelled"
)

// formatGreeting builds the /start reply with the command summary.
func formatGreeting(firstName string) string {
	var b strings.Builder
	if firstName != "" {
		fmt.Fprintf(&b, "Hi, %s!\n", firstName)
	} else {
		b.WriteString("Hi!\n")
	}
	b.WriteString("I track goals on your boards. Commands:\n")
	b.WriteString("/board -> list your boards\n")
	b.WriteString("/category -> list your categories\n")
	b.WriteString("/goals -> list your goals\n")
	b.WriteString("/create -> create a new goal\n")
	b.WriteString("/cancel -> cancel goal creation\n")
	return b.String()
}

// formatVerificationCode builds the code reply for an unlinked identity.
func formatVerificationCode(code string) string {
	return fmt.Sprintf("Verification code: %s", code)
}

// formatBoards lists board titles.
func formatBoards(boards []storage.Board) string {
	var b strings.Builder
	b.WriteString("Your boards:\n")
	for _, board := range boards {
		fmt.Fprintf(&b, "%s\n", board.Title)
	}
	return b.String()
}

// formatCategories lists categories with ids.
func formatCategories(categories []storage.Category) string {
	lines := make([]string, 0, len(categories))
	for _, c := range categories {
		lines = append(lines, fmt.Sprintf("%d %s", c.ID, c.Title))
	}
	return "Your categories:\n" + strings.Join(lines, "\n")
}

// formatGoals lists goals with category, status, owner and due date.
func formatGoals(goals []storage.Goal, owner string) string {
	blocks := make([]string, 0, len(goals))
	for _, g := range goals {
		due := g.DueDate
		if due == "" {
			due = "none"
		}
		blocks = append(blocks, fmt.Sprintf(
			"Title: %s\nCategory: %s\nStatus: %s\nOwner: %s\nDue date: %s",
			g.Title, g.CategoryTitle, g.Status.Label(), owner, due))
	}
	return strings.Join(blocks, "\n\n")
}

// formatCategoryChoices builds the /create category selection prompt.
func formatCategoryChoices(categories []storage.Category) string {
	var b strings.Builder
	b.WriteString("Pick the category number for the new goal:\n")
	b.WriteString("========================\n")
	for _, c := range categories {
		fmt.Fprintf(&b, "%d: %s\n", c.ID, c.Title)
	}
	return b.String()
}

// formatCategorySelected confirms the chosen category and prompts for a title.
func formatCategorySelected(title string) string {
	return fmt.Sprintf("Selected category: %s.\n%s", title, msgEnterTitle)
}

// formatGoalCreated confirms the committed goal by title.
func formatGoalCreated(title string) string {
	return fmt.Sprintf("Goal %q created.", title)
}
