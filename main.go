package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"time"

	"snake-arena/ai"
	"snake-arena/game"
	"snake-arena/game/types"
	"snake-arena/spectate"
	"snake-arena/tui"
	"snake-arena/ui"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const terminalFrame = 16 * time.Millisecond

type options struct {
	frontend    string
	autopilot   bool
	agent       string
	model       string
	train       int
	agents      int
	generations int
	seed        uint64
	spectate    string
	debug       bool
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.frontend, "frontend", "raylib", "Frontend: raylib or terminal")
	flag.BoolVar(&opts.autopilot, "autopilot", false, "Let the agent chosen by -agent play")
	flag.StringVar(&opts.agent, "agent", ai.KindQTable, "Autopilot agent: qtable or dqn")
	flag.StringVar(&opts.model, "model", "", "Agent file to load on start and save on exit (JSON q-table or gob weights)")
	flag.IntVar(&opts.train, "train", 0, "Train the agent headless for N rounds and exit")
	flag.IntVar(&opts.agents, "agents", 1, "Number of agents trained in parallel per generation")
	flag.IntVar(&opts.generations, "generations", 1, "Training generations when more than one agent is used")
	flag.Uint64Var(&opts.seed, "seed", 0, "Food placement seed (0 picks one from the clock)")
	flag.StringVar(&opts.spectate, "spectate", "", "Serve a read-only websocket stream on this address, e.g. :8080")
	flag.BoolVar(&opts.debug, "debug", false, "Write logs to logs/snake.log")
	flag.Parse()

	if opts.seed == 0 {
		opts.seed = uint64(time.Now().UnixNano())
	}
	return opts
}

func main() {
	opts := parseFlags()

	logFile := setupLogging(opts.debug)
	err := run(opts)
	if logFile != nil {
		logFile.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "snake:", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	var agent ai.Agent
	if opts.autopilot || opts.train > 0 {
		var err error
		if agent, err = ai.NewAgent(opts.agent, opts.seed); err != nil {
			return err
		}
		if opts.model != "" {
			if err := agent.Load(opts.model); err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
		}
		defer func() {
			if opts.model == "" || agent == nil {
				return
			}
			if err := agent.Save(opts.model); err != nil {
				log.Printf("Failed to save %s agent: %v", opts.agent, err)
			}
		}()
	}

	if opts.train > 0 {
		var stats *RoundStats
		var err error
		if opts.agents > 1 {
			table, ok := agent.(*ai.QLearning)
			if !ok {
				return fmt.Errorf("parallel training needs the %s agent", ai.KindQTable)
			}
			var parent *ai.QLearning
			if table.States() > 0 {
				parent = table
			}
			var best *ai.QLearning
			best, stats, err = TrainPool(opts.generations, opts.train, opts.agents, opts.seed, parent)
			// The deferred save picks up the winner
			if best != nil {
				agent = best
			}
		} else {
			stats, err = Train(opts.train, opts.seed, agent)
		}
		if err != nil {
			return err
		}
		fmt.Printf("Trained %d rounds: avg %.2f, median %.1f, best %d, avg length %v\n",
			stats.RoundsPlayed(), stats.AverageScore(), stats.MedianScore(), stats.MaxScore(),
			stats.AverageDuration().Round(time.Millisecond))
		return nil
	}

	g := game.NewGame(types.ArenaWidth, types.ArenaHeight, opts.seed)
	var pilot *ai.Pilot
	if agent != nil {
		pilot = ai.NewPilot(agent, false)
	}
	session := NewSession(g, pilot)

	var spectators *spectate.Server
	if opts.spectate != "" {
		spectators = spectate.NewServer()
		session.AddBroadcaster(spectators)
		go func() {
			if err := spectators.ListenAndServe(opts.spectate); err != nil {
				log.Printf("Spectator stream stopped: %v", err)
			}
		}()
		defer spectators.Close()
	}

	switch opts.frontend {
	case "raylib":
		return runWindow(session, spectators)
	case "terminal":
		return runTerminal(session)
	default:
		return fmt.Errorf("unknown frontend %q", opts.frontend)
	}
}

func runWindow(session *Session, spectators *spectate.Server) error {
	renderer := ui.NewRenderer(session.Game.Grid)
	w, h := renderer.WindowSize()

	rl.InitWindow(w, h, "Snake")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	for !rl.WindowShouldClose() {
		dt := time.Duration(float64(rl.GetFrameTime()) * float64(time.Second))
		snap, events := session.Frame(ui.ReadKeys(), dt)
		renderer.Notify(events)

		hud := ui.HUD{
			Best:      session.Stats.MaxScore(),
			Rounds:    session.Stats.RoundsPlayed(),
			Average:   session.Stats.AverageScore(),
			Autopilot: session.Pilot != nil,
		}
		if spectators != nil {
			hud.Viewers = spectators.Viewers()
		}
		renderer.Draw(snap, hud)
	}
	return nil
}

func runTerminal(session *Session) (err error) {
	term, err := tui.NewTerminal(session.Game.Grid)
	if err != nil {
		return err
	}

	// Runs after term.Close, so the stack trace lands on a restored terminal
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("crashed: %v\n%s", r, debug.Stack())
		}
	}()
	defer term.Close()

	events := term.Events()
	ticker := time.NewTicker(terminalFrame)
	defer ticker.Stop()

	last := time.Now()
	for !term.Quit() {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			term.HandleEvent(ev)
		case now := <-ticker.C:
			snap, _ := session.Frame(term.Keys(), now.Sub(last))
			last = now
			term.Draw(snap)
		}
	}
	return nil
}
