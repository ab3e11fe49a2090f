package playclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/okian/babellm/internal/domain/model"
	"github.com/okian/babellm/internal/domain/types"
	"github.com/okian/babellm/pkg/logger"
)

// Run plays one round against the service and prints the outcome.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	out := config.Out
	if out == nil {
		out = os.Stdout
	}
	log := config.Logger
	if log == nil {
		log = logger.Get().Named("play")
	}
	client := newHTTPClient(config.BaseURL, config.Timeout)

	log.Info(ctx, "starting babellm round",
		logger.String("baseURL", config.BaseURL),
		logger.String("question", config.QuestionID),
		logger.Strings("order", config.Order),
		logger.Bool("copy", config.Copy))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Create the round
	round, err := createRound(ctx, client, config.QuestionID)
	if err != nil {
		return stats, fmt.Errorf("round creation failed: %w", err)
	}
	stats.RoundID = round.RoundID
	fmt.Fprintf(out, "Q: %s\n", round.Question)

	// Step 3: Arrange the cards
	if err := arrange(ctx, client, round, config.Order, stats); err != nil {
		return stats, fmt.Errorf("arranging failed: %w", err)
	}

	// Step 4: Submit
	var ack types.SubmitResponse
	if err := client.postJSON(ctx, "/rounds/"+round.RoundID+"/submit", nil, &ack); err != nil {
		return stats, fmt.Errorf("submit failed: %w", err)
	}
	log.Debug(ctx, "round submitted", logger.String("round", ack.RoundID), logger.String("status", ack.Status))

	// Step 5: Watch the reveal
	results, err := watchReveal(ctx, client, round.RoundID, out, config.Verbose, stats)
	if err != nil {
		return stats, fmt.Errorf("reveal failed: %w", err)
	}
	displayResults(out, results)

	// Step 6: Share a perfect match
	if results.IsExactMatch && config.Copy {
		if err := shareResult(ctx, client, round.RoundID, config.Clipboard); err != nil {
			if !errors.Is(err, ErrClipboardWrite) {
				return stats, fmt.Errorf("share failed: %w", err)
			}
			log.Warn(ctx, "share text not copied", logger.Error(err))
			fmt.Fprintln(out, "Could not copy to the clipboard. Please try again.")
		} else {
			stats.Copied = true
			fmt.Fprintln(out, "Share text copied to the clipboard.")
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	log.Info(ctx, "round finished",
		logger.String("round", stats.RoundID),
		logger.Int("moves", stats.Moves),
		logger.Int("frames", stats.Frames),
		logger.Int("bursts", stats.Bursts),
		logger.Bool("exact", stats.Exact),
		logger.Duration("duration", stats.Duration))
	return stats, nil
}

// checkServiceHealth verifies the service is up and has started its quiz.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	var st types.Stats
	if err := client.getJSON(ctx, "/stats", &st); err != nil {
		return err
	}
	if !st.Started {
		return errors.New("service not started")
	}
	return nil
}

func createRound(ctx context.Context, client *HTTPClient, questionID string) (types.Round, error) {
	if questionID == "" {
		var qs []types.QuestionEntry
		if err := client.getJSON(ctx, "/questions", &qs); err != nil {
			return types.Round{}, err
		}
		if len(qs) == 0 {
			return types.Round{}, ErrNoQuestions
		}
		questionID = qs[0].ID
	}

	var round types.Round
	body := map[string]string{"question_id": questionID}
	if err := client.postJSON(ctx, "/rounds", body, &round); err != nil {
		return types.Round{}, err
	}
	return round, nil
}

// arrange moves the round's cards into the desired order one drag at a time.
func arrange(ctx context.Context, client *HTTPClient, round types.Round, desired []string, stats *Stats) error {
	current := model.Ordering(round.Order)
	moves, err := planMoves(current, targetOrder(current, desired))
	if err != nil {
		return err
	}
	for _, mv := range moves {
		var updated types.Round
		if err := client.postJSON(ctx, "/rounds/"+round.RoundID+"/move", mv, &updated); err != nil {
			return fmt.Errorf("move %s to %d: %w", mv.ID, mv.To, err)
		}
		stats.Moves++
	}
	return nil
}

// watchReveal consumes the reveal stream and returns the results it carried.
func watchReveal(ctx context.Context, client *HTTPClient, id string, out io.Writer, verbose bool, stats *Stats) (*types.Results, error) {
	body, err := client.stream(ctx, "/rounds/"+id+"/reveal")
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var results *types.Results
	err = readEvents(body, func(ev types.RevealEvent) error {
		stats.Events++
		switch ev.Type {
		case types.RevealEventStart:
			results = ev.Results
		case types.RevealEventFrame:
			stats.Frames++
			if verbose && ev.Frame != nil {
				displayFrame(out, ev.Frame)
			}
		case types.RevealEventAllRevealed:
			stats.Exact = ev.IsExactMatch
		case types.RevealEventBurst:
			stats.Bursts++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if results == nil {
		return nil, fmt.Errorf("no start event: %w", ErrStreamEnded)
	}
	return results, nil
}

func shareResult(ctx context.Context, client *HTTPClient, id string, cb Clipboard) error {
	var st types.ShareText
	if err := client.getJSON(ctx, "/rounds/"+id+"/share", &st); err != nil {
		return err
	}
	return copyShare(cb, st.Text+"\n\n"+st.Invite)
}

func displayFrame(out io.Writer, f *types.RevealFrame) {
	if !f.Revealed {
		return
	}
	filled := int(f.BarWidth / percentScale * barWidthChars)
	line := fmt.Sprintf("  %-3s %s", strings.ToUpper(f.LanguageCode), strings.Repeat("#", filled))
	if f.FinalValueShown {
		line += fmt.Sprintf(" %.1f/10", f.Score)
	}
	fmt.Fprintln(out, line)
}

// displayResults prints the truth ranking next to the player's guess.
func displayResults(out io.Writer, res *types.Results) {
	fmt.Fprintf(out, "\nYour ranking:  %s\n", strings.Join(res.SubmittedOrder, " > "))
	fmt.Fprintf(out, "Model ranking: %s\n\n", strings.Join(res.TruthOrder, " > "))
	for _, it := range res.Items {
		mark := "x"
		if it.Correct {
			mark = "ok"
		}
		fmt.Fprintf(out, "%d. %-12s %4.1f/10  you: #%d  [%s]  %s\n",
			it.ActualPosition+1, it.LanguageName, it.Score, it.PredictedPosition+1, mark, it.Text)
	}
	if res.IsExactMatch {
		fmt.Fprintln(out, "\nPerfect match! You ranked them exactly like the model.")
	} else {
		fmt.Fprintln(out, "\nNot quite. Compare your ranking with the model's.")
	}
}
