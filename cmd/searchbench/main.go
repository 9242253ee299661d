package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/pkg/profile"

	"gannet-engine/engine"
	gm "gannet-engine/gannetmg"
)

// Fixed-depth search benchmark, mirroring what "go depth N" does over UCI.
func main() {
	depthFlag := flag.Int("depth", 10, "search depth in plies")
	repeatFlag := flag.Int("repeat", 1, "number of searches to run")
	fenFlag := flag.String("fen", gm.FENStartPos, "FEN to search")
	threadsFlag := flag.Int("threads", 1, "SMP worker count")
	profileFlag := flag.String("profile", "", "profile mode: cpu or mem")
	flag.Parse()

	if *depthFlag <= 0 {
		log.Fatalf("depth must be positive, got %d", *depthFlag)
	}

	switch *profileFlag {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	case "":
	default:
		log.Fatalf("unknown profile mode %q", *profileFlag)
	}

	fmt.Printf("searchbench: fen=%q depth=%d repeat=%d threads=%d\n",
		*fenFlag, *depthFlag, *repeatFlag, *threadsFlag)

	startAll := time.Now()
	for i := 0; i < *repeatFlag; i++ {
		board, err := gm.ParseFEN(*fenFlag)
		if err != nil {
			log.Fatalf("ParseFEN: %v", err)
		}

		eng := engine.NewEngine()
		eng.Opts.Threads = *threadsFlag
		eng.SetPosition(board, nil)

		iterStart := time.Now()
		result := eng.Search(engine.Limits{Depth: *depthFlag}, nil)
		iterElapsed := time.Since(iterStart)

		fmt.Printf("iteration %d: bestmove %s score %s depth %d nodes %d time=%v\n",
			i+1, result.BestMove, engine.FormatUCIScore(result.Score),
			result.Depth, eng.Nodes(), iterElapsed)
	}
	fmt.Printf("total time: %v\n", time.Since(startAll))
}
