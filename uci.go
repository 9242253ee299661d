package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"gannet-engine/engine"
	gm "gannet-engine/gannetmg"
)

const (
	engineName   = "Gannet 1.0"
	engineAuthor = "the Gannet authors"
)

func main() {
	if err := uciLoop(os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// uciState carries everything the protocol loop owns: the engine, the line
// printer shared with the search goroutine, and the in-flight search.
type uciState struct {
	eng *engine.Engine

	mu  sync.Mutex
	out io.Writer

	searchWG  sync.WaitGroup
	searching atomic.Bool
}

func (u *uciState) println(args ...any) {
	u.mu.Lock()
	fmt.Fprintln(u.out, args...)
	u.mu.Unlock()
}

func (u *uciState) printf(format string, args ...any) {
	u.mu.Lock()
	fmt.Fprintf(u.out, format, args...)
	u.mu.Unlock()
}

func uciLoop(in io.Reader, out io.Writer) error {
	u := &uciState{eng: engine.NewEngine(), out: out}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 1<<16), 1<<20)
	for scanner.Scan() {
		tokens := strings.Fields(scanner.Text())
		if len(tokens) == 0 {
			continue
		}
		switch strings.ToLower(tokens[0]) {
		case "uci":
			u.printUCIHandshake()
		case "isready":
			u.println("readyok")
		case "ucinewgame":
			if u.searching.Load() {
				u.println("info string ucinewgame ignored during search")
				continue
			}
			u.eng.NewGame()
		case "position":
			if u.searching.Load() {
				u.println("info string position ignored during search")
				continue
			}
			u.handlePosition(tokens[1:])
		case "go":
			u.handleGo(tokens[1:])
		case "stop":
			u.eng.Stop()
			u.searchWG.Wait()
			u.searching.Store(false)
		case "ponderhit":
			u.eng.PonderHit()
		case "setoption":
			if u.searching.Load() {
				u.println("info string setoption ignored during search")
				continue
			}
			u.handleSetOption(tokens[1:])
		case "perft":
			u.handlePerft(tokens[1:])
		case "cutstats":
			u.eng.DumpCutStats(func(line string) { u.println(line) })
		case "quit":
			u.eng.Stop()
			u.searchWG.Wait()
			return nil
		default:
			u.println("info string unknown command:", tokens[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}

func (u *uciState) printUCIHandshake() {
	u.println("id name", engineName)
	u.println("id author", engineAuthor)
	o := u.eng.Opts
	u.printf("option name Hash type spin default %d min 1 max 4096\n", o.HashMB)
	u.printf("option name Threads type spin default %d min 1 max 64\n", o.Threads)
	u.println("option name Ponder type check default false")
	u.printf("option name MultiPV type spin default %d min 1 max 64\n", o.MultiPV)
	u.printf("option name Move Overhead type spin default %d min 0 max 5000\n", o.MoveOverhead)
	u.printf("option name Soft Time Percent type spin default %d min 10 max 1000\n", o.SoftTimePercent)
	u.printf("option name Hard Time Percent type spin default %d min 10 max 100\n", o.HardTimePercent)
	u.printf("option name Max Nodes type spin default %d min 0 max 1000000000\n", o.MaxNodes)
	u.println("uciok")
}

// handlePosition parses "position [startpos | fen <FEN>] [moves ...]". The
// command is atomic: any parse failure or illegal move leaves the current
// position untouched.
func (u *uciState) handlePosition(args []string) {
	board, moveStrs, err := parsePositionArgs(args)
	if err != nil {
		u.println("info string", err)
		return
	}

	var history []engine.HistEntry
	for _, moveStr := range moveStrs {
		parsed, err := gm.ParseMove(moveStr)
		if err != nil {
			u.println("info string illegal move:", moveStr)
			return
		}
		var next gm.Move
		for _, legal := range board.GenerateMoves() {
			if legal.Matches(parsed) {
				next = legal
				break
			}
		}
		if next == 0 {
			u.println("info string illegal move:", moveStr)
			return
		}
		history = append(history, engine.HistEntry{Hash: board.Hash(), Rule50: board.HalfmoveClock()})
		board.MakeMove(next)
	}

	u.eng.SetPosition(board, history)
}

func parsePositionArgs(args []string) (*gm.Board, []string, error) {
	if len(args) == 0 {
		return nil, nil, errors.New("malformed position command")
	}
	var board *gm.Board
	var err error
	rest := args[1:]
	switch strings.ToLower(args[0]) {
	case "startpos":
		board, _ = gm.ParseFEN(gm.FENStartPos)
	case "fen":
		fields := rest
		for i, tok := range rest {
			if strings.ToLower(tok) == "moves" {
				fields = rest[:i]
				break
			}
		}
		board, err = gm.ParseFEN(strings.Join(fields, " "))
		if err != nil {
			return nil, nil, err
		}
		rest = rest[len(fields):]
	default:
		return nil, nil, fmt.Errorf("unknown position subcommand %q", args[0])
	}
	if len(rest) > 0 && strings.ToLower(rest[0]) == "moves" {
		return board, rest[1:], nil
	}
	return board, nil, nil
}

// goKeywords terminates the searchmoves list.
var goKeywords = map[string]bool{
	"wtime": true, "btime": true, "winc": true, "binc": true,
	"movestogo": true, "depth": true, "nodes": true, "movetime": true,
	"mate": true, "infinite": true, "ponder": true, "searchmoves": true,
}

func (u *uciState) handleGo(args []string) {
	if u.searching.Load() {
		u.println("info string search already running")
		return
	}

	var lim engine.Limits
	for i := 0; i < len(args); i++ {
		key := strings.ToLower(args[i])
		intArg := func() int {
			if i+1 >= len(args) {
				u.println("info string missing value for", key)
				return 0
			}
			i++
			v, err := strconv.Atoi(args[i])
			if err != nil {
				u.println("info string bad value for", key)
				return 0
			}
			return v
		}
		switch key {
		case "wtime":
			lim.WTime = intArg()
		case "btime":
			lim.BTime = intArg()
		case "winc":
			lim.WInc = intArg()
		case "binc":
			lim.BInc = intArg()
		case "movestogo":
			lim.MovesToGo = intArg()
		case "depth":
			lim.Depth = intArg()
		case "nodes":
			lim.Nodes = uint64(intArg())
		case "movetime":
			lim.MoveTime = intArg()
		case "mate":
			lim.MateIn = intArg()
		case "infinite":
			lim.Infinite = true
		case "ponder":
			lim.Ponder = true
		case "searchmoves":
			for i+1 < len(args) && !goKeywords[strings.ToLower(args[i+1])] {
				i++
				if parsed, err := gm.ParseMove(args[i]); err == nil {
					lim.SearchMoves = append(lim.SearchMoves, parsed)
				} else {
					u.println("info string bad searchmoves entry:", args[i])
				}
			}
		default:
			u.println("info string unknown go option:", key)
		}
	}

	// Prepare on this thread so a stop issued right after "go" is seen.
	prepared := u.eng.Prepare(lim)
	u.searching.Store(true)
	u.searchWG.Add(1)
	go func() {
		defer u.searchWG.Done()
		result := prepared.Run(u.emitInfo)
		if result.Ponder != 0 {
			u.println("bestmove", result.BestMove.String(), "ponder", result.Ponder.String())
		} else {
			u.println("bestmove", result.BestMove.String())
		}
		u.searching.Store(false)
	}()
}

func (u *uciState) emitInfo(info engine.SearchInfo) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "info depth %d seldepth %d", info.Depth, info.SelDepth)
	if u.eng.Opts.MultiPV > 1 {
		fmt.Fprintf(&sb, " multipv %d", info.MultiPV)
	}
	fmt.Fprintf(&sb, " score %s nodes %d nps %d hashfull %d time %d",
		engine.FormatUCIScore(info.Score), info.Nodes, info.NPS, info.Hashfull, info.TimeMs)
	if len(info.PV.Moves) > 0 {
		fmt.Fprintf(&sb, " pv %s", info.PV.String())
	}
	u.println(sb.String())
}

func (u *uciState) handleSetOption(args []string) {
	var nameParts, valueParts []string
	section := ""
	for _, tok := range args {
		switch strings.ToLower(tok) {
		case "name":
			section = "name"
		case "value":
			section = "value"
		default:
			if section == "name" {
				nameParts = append(nameParts, tok)
			} else if section == "value" {
				valueParts = append(valueParts, tok)
			}
		}
	}
	name := strings.ToLower(strings.Join(nameParts, ""))
	value := strings.Join(valueParts, " ")

	intValue := func(min, max int) (int, bool) {
		v, err := strconv.Atoi(value)
		if err != nil || v < min || v > max {
			u.println("info string bad value for option:", value)
			return 0, false
		}
		return v, true
	}

	switch name {
	case "hash":
		if v, ok := intValue(1, 4096); ok {
			u.eng.ResizeHash(v)
		}
	case "threads":
		if v, ok := intValue(1, 64); ok {
			u.eng.Opts.Threads = v
		}
	case "ponder":
		u.eng.Opts.Ponder = strings.EqualFold(value, "true")
	case "multipv":
		if v, ok := intValue(1, 64); ok {
			u.eng.Opts.MultiPV = v
		}
	case "moveoverhead":
		if v, ok := intValue(0, 5000); ok {
			u.eng.Opts.MoveOverhead = v
		}
	case "softtimepercent":
		if v, ok := intValue(10, 1000); ok {
			u.eng.Opts.SoftTimePercent = v
		}
	case "hardtimepercent":
		if v, ok := intValue(10, 100); ok {
			u.eng.Opts.HardTimePercent = v
		}
	case "maxnodes":
		if v, ok := intValue(0, 1000000000); ok {
			u.eng.Opts.MaxNodes = uint64(v)
		}
	default:
		u.println("info string unknown option:", strings.Join(nameParts, " "))
	}
}

// handlePerft runs "perft depth N" against the current position.
func (u *uciState) handlePerft(args []string) {
	depth := 0
	for i := 0; i+1 < len(args); i++ {
		if strings.ToLower(args[i]) == "depth" {
			depth, _ = strconv.Atoi(args[i+1])
		}
	}
	if depth <= 0 {
		u.println("info string perft wants a positive depth")
		return
	}
	board := u.eng.Board().Copy()
	nodes := gm.Perft(board, depth)
	u.println(nodes)
}
