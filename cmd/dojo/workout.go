// ABOUTME: CLI command that runs a workout program with a live countdown.
// ABOUTME: Keyboard commands drive the sequencer; a finished run is logged to today.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/dojo/internal/models"
	"github.com/harperreed/dojo/internal/rules"
	"github.com/harperreed/dojo/internal/workout"
)

var (
	workoutVolume   float64
	workoutDistance float64
)

var workoutCmd = &cobra.Command{
	Use:     "workout",
	Aliases: []string{"w"},
	Short:   "Run workout programs",
	Long: `Run a workout program with a live countdown.

CONTROLS:

  Enter   start the next step, or finish the current one early
  p       pause (Enter resumes)
  q       quit without logging

Timed exercises and rests count down on their own. Rep-based exercises
wait for Enter. A finished run is logged to today with its XP.`,
}

var workoutRunCmd = &cobra.Command{
	Use:   "run <program>",
	Short: "Run a program",
	Long: `Run a program by ID prefix or name.

Examples:
  dojo workout run legs
  dojo workout run "Morning run" --distance 6.5
  dojo workout run kettlebell --volume 2400`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := jrnl.Program(args[0])
		if err != nil {
			return fmt.Errorf("program not found: %s", args[0])
		}
		if workoutVolume < 0 || workoutDistance < 0 {
			return fmt.Errorf("--volume and --distance must not be negative")
		}

		before, err := jrnl.Level()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		rec := workout.NewRecorder(jrnl, jrnl.Rules(), workout.WithEffort(workout.Effort{
			VolumeKg:   workoutVolume,
			DistanceKm: workoutDistance,
		}))
		session, err := runWorkout(ctx, p, rec, jrnl.Rules(), logger, cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if session == nil {
			return nil
		}

		color.Green("✓ Logged %s +%d XP", session.ProgramName, session.XPGained)
		after, err := jrnl.Level()
		if err != nil {
			return err
		}
		if after.Level > before.Level {
			color.New(color.Bold, color.FgYellow).Fprintf(cmd.OutOrStdout(), "★ Level up! You are now level %d\n", after.Level)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  Level %d, %d/%d XP\n", after.Level, after.CurrentLevelXP, after.XPForNextLevel)
		return nil
	},
}

type finishResult struct {
	session models.Session
	err     error
}

// lockedWriter serializes output from the timer goroutine and the input loop.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// runWorkout drives a sequencer from line-based input until the run finishes,
// the user quits, input ends, or ctx is cancelled. It returns the recorded
// session, or nil when the run was abandoned.
func runWorkout(ctx context.Context, p *models.Program, rec workout.SessionRecorder, tbl rules.Table, lg *log.Logger, in io.Reader, out io.Writer) (*models.Session, error) {
	w := &lockedWriter{w: out}
	finished := make(chan finishResult, 1)

	var seq *workout.Sequencer
	seq, err := workout.New(p, rec,
		workout.WithRules(tbl),
		workout.WithCatalog(catalog),
		workout.WithLogger(lg),
		workout.WithObserver(func(ev workout.Event) { renderEvent(w, seq, ev) }),
		workout.WithOnFinished(func(s models.Session, err error) {
			finished <- finishResult{session: s, err: err}
		}),
	)
	if err != nil {
		return nil, err
	}
	defer seq.Close()

	fmt.Fprintf(w, "%s %s, %d exercises\n", color.New(color.Bold).Sprint(p.Name), p.Mode, len(p.Exercises))
	first := seq.Current()
	fmt.Fprintf(w, "First up: %s (%s). Press Enter to start.\n", catalog.Name(first.ExerciseID), describeTarget(first))

	done := make(chan struct{})
	defer close(done)
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-done:
				return
			}
		}
	}()

	collect := func(r finishResult) (*models.Session, error) {
		if r.err != nil {
			return nil, r.err
		}
		return &r.session, nil
	}

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(w, "\nWorkout abandoned.")
			return nil, nil
		case r := <-finished:
			return collect(r)
		case line, ok := <-lines:
			if !ok {
				select {
				case r := <-finished:
					return collect(r)
				default:
					fmt.Fprintln(w, "Workout abandoned.")
					return nil, nil
				}
			}
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "":
				if seq.State().Status == workout.StatusIdle {
					seq.Start()
				} else {
					seq.Advance()
				}
			case "p", "pause":
				seq.Pause()
			case "q", "quit":
				fmt.Fprintln(w, "Workout abandoned.")
				return nil, nil
			default:
				fmt.Fprintln(w, faint.Sprint("Enter = start/next, p = pause, q = quit"))
			}
		}
	}
}

func renderEvent(w io.Writer, seq *workout.Sequencer, ev workout.Event) {
	st := ev.State
	p := seq.Program()

	switch ev.Kind {
	case workout.EventStep:
		switch st.Status {
		case workout.StatusWorking:
			e := p.Exercises[st.ExerciseIndex]
			fmt.Fprintf(w, "▶ %s %s  %s\n",
				color.New(color.Bold).Sprint(catalog.Name(e.ExerciseID)),
				faint.Sprint(position(p, st)),
				describeTarget(e))
		case workout.StatusResting:
			label := "Rest"
			if st.RoundRest {
				label = "Round rest"
			}
			next := ""
			if e, ok := seq.NextExercise(); ok {
				next = faint.Sprintf("  next: %s", catalog.Name(e.ExerciseID))
			}
			fmt.Fprintf(w, "%s %s%s\n", color.CyanString(label), formatSeconds(st.RemainingSeconds), next)
		}
	case workout.EventTick:
		if st.RemainingSeconds <= 3 || st.RemainingSeconds%10 == 0 {
			fmt.Fprintf(w, "  %s\n", formatSeconds(st.RemainingSeconds))
		}
	case workout.EventPause:
		fmt.Fprintf(w, "⏸ Paused at %s. Press Enter to resume.\n", formatSeconds(st.RemainingSeconds))
	case workout.EventResume:
		fmt.Fprintln(w, "▶ Resumed")
	case workout.EventIdle:
		e := p.Exercises[st.ExerciseIndex]
		fmt.Fprintf(w, "Next up: %s (%s). Press Enter when ready.\n", catalog.Name(e.ExerciseID), describeTarget(e))
	case workout.EventFinish:
		fmt.Fprintln(w, color.GreenString("Workout complete!"))
	}
}

// position renders the set or round counter for the current step.
func position(p *models.Program, st workout.State) string {
	if p.Mode == models.ModeSets {
		return fmt.Sprintf("round %d/%d", st.RoundNumber, p.RoundCount())
	}
	return fmt.Sprintf("set %d/%d", st.SetNumber, p.Exercises[st.ExerciseIndex].SetCount())
}

func init() {
	workoutRunCmd.Flags().Float64Var(&workoutVolume, "volume", 0, "total volume lifted in kg")
	workoutRunCmd.Flags().Float64Var(&workoutDistance, "distance", 0, "distance run in km (running programs)")

	workoutCmd.AddCommand(workoutRunCmd)
	rootCmd.AddCommand(workoutCmd)
}
