package service

import (
	"context"
	"testing"
	"time"

	"pgregory.net/rapid"

	"telegram-activity-bot/internal/game"
	"telegram-activity-bot/internal/game/arbiter"
	"telegram-activity-bot/internal/game/quiz"
)

// TestGameFlowProperties drives a quiz through random submission sequences
// and checks the rules that must hold regardless of order:
//   - a game never survives more than MaxAttempts+1 valid submissions
//   - invalid submissions never consume attempts
//   - the winning reward never exceeds the base and never drops below the
//     success floor; an exhausted game always pays the consolation
func TestGameFlowProperties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ledger := &fakeLedger{}
		engines := []game.Engine{quiz.NewWithPool([]quiz.Question{{
			Text:    "Pick the first option",
			Options: []string{"alpha", "beta", "gamma"},
			Correct: 0,
		}})}
		svc := NewGameService(engines, arbiter.New(time.Hour), ledger, 0)
		svc.rng = func() float64 { return 1.0 }

		ctx := context.Background()
		_, err := svc.Start(ctx, game.KindQuiz, -100, 1)
		if err != nil {
			rt.Fatalf("start failed: %v", err)
		}

		submissions := rapid.SliceOfN(rapid.SampledFrom([]string{
			"1", "2", "3", "alpha", "beta", "99", "not an option",
		}), 1, 12).Draw(rt, "submissions")

		wrongs := 0
		ended := false
		for _, sub := range submissions {
			res, err := svc.Submit(ctx, -100, 1, sub)
			if err != nil {
				rt.Fatalf("submit failed: %v", err)
			}
			if ended {
				if res != nil {
					rt.Fatalf("submission accepted after the game ended")
				}
				continue
			}

			switch res.Outcome {
			case OutcomeInvalid:
				if res.AttemptsLeft != game.MaxAttempts-wrongs {
					rt.Fatalf("invalid submission changed attempts: left=%d wrongs=%d", res.AttemptsLeft, wrongs)
				}
			case OutcomeWrong:
				wrongs++
				if wrongs > game.MaxAttempts {
					rt.Fatalf("more than %d wrong attempts consumed", game.MaxAttempts)
				}
			case OutcomeCorrect:
				want := game.SuccessReward(quiz.BaseReward, wrongs)
				if res.Points != want {
					rt.Fatalf("success reward %v, want %v after %d wrongs", res.Points, want, wrongs)
				}
				if res.Points > quiz.BaseReward || res.Points < game.MinSuccessReward {
					rt.Fatalf("success reward %v outside [%v, %v]", res.Points, game.MinSuccessReward, quiz.BaseReward)
				}
				ended = true
			case OutcomeExhausted:
				if wrongs != game.MaxAttempts {
					rt.Fatalf("exhausted after %d wrongs, want %d", wrongs, game.MaxAttempts)
				}
				if res.Points != game.ConsolationReward {
					rt.Fatalf("consolation %v, want %v", res.Points, game.ConsolationReward)
				}
				ended = true
			}
		}

		if _, _, live := svc.Status(); live == ended {
			rt.Fatalf("live=%v after ended=%v", live, ended)
		}
	})
}
