package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/ktmeaton/treetime"
)

//evolveSeq mutates a parent sequence along a branch of length t under the
//single-rate model
func evolveSeq(parent []int, t, mu float64, alpha int, rng *rand.Rand) []int {
	a := float64(alpha)
	p := 1 - math.Exp(-mu*a/(a-1)*t)
	child := make([]int, len(parent))
	for i, s := range parent {
		child[i] = s
		if rng.Float64() < p {
			child[i] = rng.Intn(alpha)
		}
	}
	return child
}

func main() {
	taxaArg := flag.Int("n", 8, "number of terminal taxa in the simulated tree")
	sitesArg := flag.Int("s", 200, "number of sites per sequence")
	muArg := flag.Float64("mu", 1.0, "substitution rate of the simulation model")
	alphaArg := flag.Int("a", 4, "alphabet size")
	workArg := flag.Int("W", 1, "number of Go workers for the up-pass convolutions")
	gridArg := flag.Int("g", 100, "node position grid size")
	confArg := flag.String("c", "", "optional YAML file overriding the engine constants")
	seedArg := flag.Int64("seed", 1, "random seed for the simulation")
	flag.Parse()

	conf := treetime.DefaultTimeConf()
	if *confArg != "" {
		var err error
		conf, err = treetime.LoadTimeConf(*confArg)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	}
	conf.GridSize = *gridArg
	conf.Workers = *workArg

	ntax := *taxaArg
	if ntax < 3 {
		fmt.Println("need at least 3 taxa")
		os.Exit(1)
	}
	rng := rand.New(rand.NewSource(*seedArg))

	// caterpillar tree with serially sampled tips: tip i was sampled
	// 30*(ntax-i) days before present, and its depth in the divergence tree
	// follows a strict clock of 0.001 substitutions per site per day
	const clockRate = 0.001
	const spineLen = 0.005
	rootDate := 30.0 * float64(ntax+5)

	tt := treetime.NewTimeTree(conf)
	root := tt.AddNode("root", -1, 0)
	spine := root
	dates := make(map[string]time.Time)
	now := time.Now()
	for i := 0; i < ntax; i++ {
		depth := i
		if depth > ntax-2 {
			depth = ntax - 2
		}
		tipDate := 30.0 * float64(ntax-i)
		brlen := clockRate*(rootDate-tipDate) - spineLen*float64(depth)
		name := fmt.Sprintf("taxon_%d", i)
		tt.AddNode(name, spine, brlen)
		dates[name] = now.AddDate(0, 0, -int(tipDate))
		if i < ntax-2 {
			spine = tt.AddNode(fmt.Sprintf("spine_%d", i+1), spine, spineLen)
		}
	}

	model, err := treetime.NewJC(*alphaArg, *muArg)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	// simulate sequences down the tree and hand every node a smoothed
	// one-hot profile, standing in for an ancestral reconstruction
	seqs := make([][]int, len(tt.NODES))
	seqs[root] = make([]int, *sitesArg)
	for j := range seqs[root] {
		seqs[root][j] = rng.Intn(*alphaArg)
	}
	for _, i := range tt.PreorderArray() {
		n := tt.NODES[i]
		if n.PAR != -1 {
			seqs[i] = evolveSeq(seqs[n.PAR], n.LEN, *muArg, *alphaArg, rng)
		}
		n.PROFILE = treetime.OneHotProfile(seqs[i], *alphaArg, 0.001)
	}

	tt.SetNodeDates(dates, now)
	if err := tt.InitDateConstraints(model); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	fmt.Printf("clock regression: slope=%.6g intercept=%.6g r=%.4f (n=%d)\n",
		tt.DATE2DIST.Slope, tt.DATE2DIST.Intercept, tt.DATE2DIST.R, tt.DATE2DIST.N)

	start := time.Now()
	if err := tt.MLT(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	tt.ScoreBranches()
	fmt.Println("inference finished in", time.Since(start))
	if len(tt.WARNS) > 0 {
		fmt.Println("consistency warnings:", len(tt.WARNS))
	}

	fmt.Printf("%-12s %10s %12s %12s %12s %8s\n",
		"node", "raw date", "time", "date", "brlen", "score")
	for _, i := range tt.PreorderArray() {
		n := tt.NODES[i]
		raw := "-"
		if n.HASDATE {
			raw = fmt.Sprintf("%d", n.RAWDATE)
		}
		fmt.Printf("%-12s %10s %12.6f %12.2f %12.6f %8.3f\n",
			n.NAME, raw, n.ABST, n.DATE, n.LEN, n.SCORE)
	}
	fmt.Println(tt.NewickString())
}
