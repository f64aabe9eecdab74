package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tranvictor/shadowvote/common"
	"github.com/tranvictor/shadowvote/service"
	"github.com/tranvictor/shadowvote/ui"
)

var OneBased bool

func statusText(p common.Poll) ui.StyledText {
	if p.IsActive {
		return ui.Success("active")
	}
	return ui.Warn("closed")
}

func renderPolls(u ui.UI, polls []common.Poll) {
	if len(polls) == 0 {
		u.Info("There are no polls yet. Create one with:\n> shadowvote create \"<question>\" <option> <option>...")
		return
	}
	rows := make([][]string, 0, len(polls))
	for _, p := range polls {
		rows = append(rows, []string{
			p.ID,
			p.Question,
			ui.Count(p.TotalVotes()),
			u.Style(statusText(p)),
			p.Creator,
		})
	}
	u.Table([]string{"ID", "Question", "Votes", "Status", "Creator"}, rows)
}

func renderPoll(u ui.UI, p common.Poll) {
	total := p.TotalVotes()
	u.Section(p.Question)
	u.KeyValue([][2]string{
		{"ID", p.ID},
		{"Creator", p.Creator},
		{"Status", u.Style(statusText(p))},
		{"Total", ui.Votes(total)},
	})
	rows := make([][]string, 0, len(p.Options))
	for i, opt := range p.Options {
		count := 0
		if i < len(p.Counts) {
			count = p.Counts[i]
		}
		rows = append(rows, []string{
			strconv.Itoa(i),
			opt,
			ui.Count(count),
			common.FormatPercent(count, total),
			ui.Bar(count, total),
		})
	}
	u.Table([]string{"#", "Option", "Votes", "Share", ""}, rows)
}

// parseChoice reads a 0-based choice, or a 1-based one when oneBased.
func parseChoice(arg string, oneBased bool) (int, error) {
	choice, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, fmt.Errorf("choice must be an option number, got %q", arg)
	}
	if oneBased {
		choice--
	}
	return choice, nil
}

func runList(ctx context.Context, u ui.UI, svc *service.Service) error {
	polls, err := withSpinner(u, "Loading polls...", func() ([]common.Poll, error) {
		return svc.GetAllPolls(ctx)
	})
	if err != nil {
		return err
	}
	renderPolls(u, polls)
	return nil
}

func runShow(ctx context.Context, u ui.UI, svc *service.Service, id string) error {
	p, err := withSpinner(u, "Loading poll...", func() (common.Poll, error) {
		return svc.GetPoll(ctx, id)
	})
	if err != nil {
		return err
	}
	renderPoll(u, p)
	return nil
}

func runCreate(ctx context.Context, u ui.UI, svc *service.Service, question string, options []string) error {
	id, err := withSpinner(u, "Creating poll...", func() (common.PollID, error) {
		return svc.CreatePoll(ctx, question, options)
	})
	if err != nil {
		return err
	}
	pollID, known := id.Get()
	if !known {
		u.Success("Poll created.")
		u.Warn("Its id is unknown until the transaction is mined. Find it later with:\n> shadowvote list")
		return nil
	}
	u.Success("Poll %s created.", pollID)
	u.Info("Vote on it with:\n> shadowvote vote %s <choice>", pollID)
	return nil
}

// runVote asks for the choice when args doesn't carry one.
func runVote(ctx context.Context, u ui.UI, svc *service.Service, args []string, oneBased bool) error {
	id := args[0]
	var choice int
	if len(args) > 1 {
		var err error
		if choice, err = parseChoice(args[1], oneBased); err != nil {
			return err
		}
	} else {
		p, err := withSpinner(u, "Loading poll...", func() (common.Poll, error) {
			return svc.GetPoll(ctx, id)
		})
		if err != nil {
			return err
		}
		if !p.IsActive {
			return common.Wrap(common.OpVote, p.CheckVote(0))
		}
		u.Info("%s", p.Question)
		choice = u.Choose("Which option do you vote for?", p.Options)
	}

	_, err := withSpinner(u, "Submitting vote...", func() (struct{}, error) {
		return struct{}{}, svc.Vote(ctx, id, choice)
	})
	if err != nil {
		return err
	}
	u.Success("Your vote on poll %s is recorded.", id)
	return nil
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show all polls",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cmd.Context(), nil)
		if err != nil {
			return err
		}
		modeNotice(appUI, svc)
		return runList(cmd.Context(), appUI, svc)
	},
}

var showCmd = &cobra.Command{
	Use:   "show <poll id>",
	Short: "Show a poll with its results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cmd.Context(), nil)
		if err != nil {
			return err
		}
		return runShow(cmd.Context(), appUI, svc, args[0])
	},
}

var createCmd = &cobra.Command{
	Use:   "create <question> <option> <option> [option...]",
	Short: "Create a poll with 2 to 5 options",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cmd.Context(), nil)
		if err != nil {
			return err
		}
		modeNotice(appUI, svc)
		return runCreate(cmd.Context(), appUI, svc, args[0], args[1:])
	},
}

var voteCmd = &cobra.Command{
	Use:   "vote <poll id> [choice]",
	Short: "Vote on a poll",
	Long: `Vote for one option of a poll. Options are numbered from 0 as shown by
"shadowvote show", use --one-based to count from 1 instead. Without a choice
the options are listed and you pick one.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cmd.Context(), nil)
		if err != nil {
			return err
		}
		return runVote(cmd.Context(), appUI, svc, args, OneBased)
	},
}

func init() {
	voteCmd.Flags().BoolVar(&OneBased, "one-based", false, "choice counts options from 1")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(voteCmd)
}
