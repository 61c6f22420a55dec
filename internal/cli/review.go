package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"numis-cli/internal/model"
	"numis-cli/internal/review"
)

func newReviewCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Work the pending-review queues",
	}
	cmd.AddCommand(newReviewListCmd(app))
	cmd.AddCommand(newReviewCountsCmd(app))
	cmd.AddCommand(newReviewActionCmd(app, "approve", "Approve pending suggestions"))
	cmd.AddCommand(newReviewActionCmd(app, "reject", "Reject pending suggestions"))
	return cmd
}

func parseTabFlag(s string) (model.ReviewTab, error) {
	tab, err := model.ParseReviewTab(s)
	if err != nil {
		return "", errBadArg("tab", s, "expected vocabulary|ai|images|data")
	}
	return tab, nil
}

func parseSortFlag(s string) (review.Sort, error) {
	if strings.TrimSpace(s) == "" {
		return review.DefaultSort, nil
	}
	field, dir, _ := strings.Cut(strings.ToLower(s), ":")
	out := review.Sort{Desc: dir == "desc"}
	switch review.SortField(field) {
	case review.SortByConfidence, review.SortByField, review.SortByID:
		out.Field = review.SortField(field)
	default:
		return review.Sort{}, errBadArg("sort", s, "expected confidence|field|id, optionally with :desc")
	}
	if dir != "" && dir != "asc" && dir != "desc" {
		return review.Sort{}, errBadArg("sort", s, "direction must be asc or desc")
	}
	return out, nil
}

func newReviewListCmd(app *App) *cobra.Command {
	var tabName, filterExpr, sortSpec string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pending suggestions in one tab",
		RunE: func(cmd *cobra.Command, args []string) error {
			tab, err := parseTabFlag(tabName)
			if err != nil {
				return writeErr(cmd, err)
			}
			srt, err := parseSortFlag(sortSpec)
			if err != nil {
				return writeErr(cmd, err)
			}
			filter, err := review.CompileFilter(filterExpr)
			if err != nil {
				return writeErr(cmd, errBadArg("filter", filterExpr, err.Error()))
			}

			sess, err := newSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			items, err := sess.actions.Load(cmd.Context(), tab)
			if err != nil {
				return writeErr(cmd, err)
			}
			items, err = review.ApplyFilter(items, filter)
			if err != nil {
				return writeErr(cmd, err)
			}
			review.SortItems(items, srt)
			return writeOut(cmd, app, map[string]any{"data": items})
		},
	}

	cmd.Flags().StringVar(&tabName, "tab", "vocabulary", "Review tab (vocabulary|ai|images|data)")
	cmd.Flags().StringVar(&filterExpr, "filter", "", `Filter expression, e.g. 'confidence > 0.8 && field == "mint"'`)
	cmd.Flags().StringVar(&sortSpec, "sort", "", "Sort as field[:asc|:desc] (confidence|field|id)")
	return cmd
}

func newReviewCountsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "counts",
		Short: "Show pending totals per tab",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			counts, err := client.ReviewCounts(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": counts})
		},
	}
}

// newReviewActionCmd builds `review approve` / `review reject`. Both accept
// explicit item ids, or --all to act on the whole tab (optionally filtered).
func newReviewActionCmd(app *App, verb, short string) *cobra.Command {
	var tabName, filterExpr string
	var all bool

	cmd := &cobra.Command{
		Use:   verb + " [item-id...]",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			tab, err := parseTabFlag(tabName)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !all && len(args) == 0 {
				return writeErr(cmd, errBadArg("all", "false", "pass item ids or --all"))
			}

			sess, err := newSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			items, err := sess.actions.Load(cmd.Context(), tab)
			if err != nil {
				return writeErr(cmd, err)
			}

			var targets []model.ReviewItem
			if all {
				filter, err := review.CompileFilter(filterExpr)
				if err != nil {
					return writeErr(cmd, errBadArg("filter", filterExpr, err.Error()))
				}
				targets, err = review.ApplyFilter(items, filter)
				if err != nil {
					return writeErr(cmd, err)
				}
			} else {
				targets, err = pickByID(items, args)
				if err != nil {
					return writeErr(cmd, err)
				}
			}
			if len(targets) == 0 {
				return writeOut(cmd, app, map[string]any{"data": map[string]int{"acted": 0}})
			}

			if verb == "approve" {
				err = sess.actions.BulkApprove(cmd.Context(), tab, targets)
			} else {
				err = sess.actions.BulkReject(cmd.Context(), tab, targets)
			}
			if err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]int{"acted": len(targets)}})
		},
	}

	cmd.Flags().StringVar(&tabName, "tab", "vocabulary", "Review tab (vocabulary|ai|images|data)")
	cmd.Flags().BoolVar(&all, "all", false, "Act on every item in the tab")
	cmd.Flags().StringVar(&filterExpr, "filter", "", "With --all, only act on matching items")
	return cmd
}

func pickByID(items []model.ReviewItem, args []string) ([]model.ReviewItem, error) {
	byID := make(map[int64]model.ReviewItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	out := make([]model.ReviewItem, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, errBadArg("item-id", arg, "must be an integer")
		}
		it, ok := byID[id]
		if !ok {
			return nil, errBadArg("item-id", arg, "not in this tab's pending queue")
		}
		out = append(out, it)
	}
	return out, nil
}
