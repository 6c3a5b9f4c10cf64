// Configuration
//
// Copyright (c) 2021, 2022, 2023  Philip Kaludercic
//
// This file is part of go-snakes.
//
// go-snakes is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License,
// version 3, as published by the Free Software Foundation.
//
// go-snakes is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the GNU
// Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public
// License, version 3, along with go-snakes. If not, see
// <http://www.gnu.org/licenses/>

package cmd

import (
	"flag"
	"io"
	"log"
	"math"
	"os"
	"time"

	"go-snakes"
	"go-snakes/game"
	"go-snakes/isol"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

const defconf = "go-snakes.toml"

func init() {
	def := &defaultConfig

	flag.IntVar(&def.Game.Size, "size", def.Game.Size,
		"Edge length of the grid")
	flag.IntVar(&def.Game.Turns, "turns", def.Game.Turns,
		"Number of turns per game")
	flag.IntVar(&def.Game.Population, "population", def.Game.Population,
		"Number of avatars per player")
	flag.IntVar(&def.Game.Foods, "foods", def.Game.Foods,
		"Amount of food kept on the grid")
	flag.Int64Var(&def.Game.Seed, "seed", def.Game.Seed,
		"Seed for the game randomness, negative for a random seed")
	flag.BoolVar(&def.Game.Save, "save", def.Game.Save,
		"Save replays of the evaluation games")

	flag.StringVar(&def.Players.Player1, "player1", def.Players.Player1,
		"Module specification of the first player")
	flag.StringVar(&def.Players.Player2, "player2", def.Players.Player2,
		"Module specification of the second player")
	flag.BoolVar(&def.Players.Tournament, "tournament", def.Players.Tournament,
		"Record contract violations instead of aborting")

	flag.Var(&def.Budget.Import, "import-limit",
		"Time to load a module, as a duration like 10s (0 for no limit)")
	flag.Var(&def.Budget.Instantiate, "new-limit",
		"Time to create an agent, as a duration like 1s (0 for no limit)")
	flag.Var(&def.Budget.Decide, "decide-limit",
		"Time for each decision, as a duration like 250ms (0 for no limit)")
	flag.Var(&def.Budget.Evolve, "evolve-limit",
		"Time to breed a generation, as a duration like 4s (0 for no limit)")
	flag.Var(&def.Budget.Fitness, "fitness-limit",
		"Time to rate a generation, as a duration like 4s (0 for no limit)")

	flag.StringVar(&def.Store.Checkpoints, "checkpoints", def.Store.Checkpoints,
		"Directory for trained populations")
	flag.StringVar(&def.Store.Replays, "replays", def.Store.Replays,
		"Directory for saved games")

	flag.StringVar(&def.Database.File, "db", def.Database.File,
		"File to use for the database")

	flag.BoolVar(&def.Web.Enabled, "web", def.Web.Enabled,
		"Enable the web interface")
	flag.UintVar(&def.Web.Port, "wwwport", def.Web.Port,
		"Port to use for the HTTP server")

	flag.BoolVar(&def.Vis.Enabled, "vis", def.Vis.Enabled,
		"Show the evaluation games in the terminal")
	flag.StringVar(&def.Vis.Speed, "speed", def.Vis.Speed,
		"Visualisation speed (slow, normal or fast)")

	flag.BoolVar(&debug, "debug", debug, "Enable debug output")
	flag.BoolVar(&silent, "silent", silent, "Disable normal output")
	flag.BoolVar(&dump, "dump-config", dump, "Dump configuration to standard output")
	flag.StringVar(&cfile, "conf", cfile, "Path to configuration file")
}

type GameConf struct {
	Size       int   `toml:"size"`
	Turns      int   `toml:"turns"`
	Population int   `toml:"population"`
	Foods      int   `toml:"foods"`
	Seed       int64 `toml:"seed"`
	Save       bool  `toml:"save"`
}

type PlayersConf struct {
	Player1    string   `toml:"player1"`
	Player2    string   `toml:"player2,omitempty"`
	Tournament bool     `toml:"tournament"`
	Modules    []string `toml:"modules,omitempty"`
}

// Duration is written as a string such as "1s" or "250ms"
type Duration time.Duration

func (d Duration) String() string { return time.Duration(d).String() }

func (d *Duration) Set(s string) error {
	v, err := time.ParseDuration(s)
	if err != nil {
		return errors.Wrapf(err, "invalid duration %q", s)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error)     { return []byte(d.String()), nil }
func (d *Duration) UnmarshalText(text []byte) error { return d.Set(string(text)) }

type BudgetConf struct {
	Import      Duration `toml:"import"`
	Instantiate Duration `toml:"instantiate"`
	Decide      Duration `toml:"decide"`
	Evolve      Duration `toml:"evolve"`
	Fitness     Duration `toml:"fitness"`
}

// MakeBudgetConf converts call deadlines into a budget section
func MakeBudgetConf(b isol.Budget) BudgetConf {
	return BudgetConf{
		Import:      Duration(b.Import),
		Instantiate: Duration(b.Instantiate),
		Decide:      Duration(b.Decide),
		Evolve:      Duration(b.Evolve),
		Fitness:     Duration(b.Fitness),
	}
}

type StoreConf struct {
	Checkpoints string `toml:"checkpoints"`
	Replays     string `toml:"replays"`
}

type DatabaseConf struct {
	File string `toml:"file"`
}

type WebConf struct {
	Enabled bool `toml:"enabled"`
	Port    uint `toml:"port"`
}

type VisConf struct {
	Enabled bool   `toml:"enabled"`
	Speed   string `toml:"speed"`
}

// Internal representation
type Conf struct {
	Game     GameConf     `toml:"game"`
	Players  PlayersConf  `toml:"players"`
	Budget   BudgetConf   `toml:"budget"`
	Store    StoreConf    `toml:"store"`
	Database DatabaseConf `toml:"database"`
	Web      WebConf      `toml:"web"`
	Vis      VisConf      `toml:"vis"`
}

// Configuration object used by default
var defaultConfig = Conf{
	Game: GameConf{
		Size:       50,
		Turns:      100,
		Population: 40,
		Foods:      40,
		Seed:       0,
		Save:       true,
	},
	Players: PlayersConf{
		Player1: "perceptron",
		Player2: "random",
	},
	Budget: MakeBudgetConf(isol.DefaultBudget),
	Store: StoreConf{
		Checkpoints: "trained",
		Replays:     "saved",
	},
	Database: DatabaseConf{
		File: "snakes.db",
	},
	Web: WebConf{
		Port: 8080,
	},
	Vis: VisConf{
		Speed: "normal",
	},
}

var (
	debug  = false
	silent = false
	dump   = false
	cfile  = defconf
)

// Errors reported by Validate
var (
	ErrSpeed   = errors.New("visualisation speed must be slow, normal or fast")
	ErrPlayers = errors.New("at least one player must be specified")
)

// Open a configuration file and return it
func LoadConf() *Conf {
	c := defaultConfig

	file, err := os.Open(cfile)
	if err != nil {
		if !os.IsNotExist(err) || cfile != defconf {
			log.Fatal(err)
		}
	} else {
		defer file.Close()
		_, err := toml.NewDecoder(file).Decode(&c)
		if err != nil {
			log.Print(err)
			c = defaultConfig
		}
	}

	switch {
	case debug:
		snakes.Debug.SetOutput(os.Stderr)
		log.Default().SetFlags(log.LstdFlags | log.Lshortfile)
		snakes.Debug.Println("Debug logging has been enabled")
	case silent:
		log.Default().SetOutput(io.Discard)
	}

	// Dump the configuration onto the disk if requested
	if dump {
		err = c.Dump(os.Stdout)
		if err != nil {
			log.Fatalln("Failed to dump default configuration:", err)
		}
		os.Exit(0)
	}

	return &c
}

// Serialise the configuration into a writer
func (c *Conf) Dump(wr io.Writer) error {
	return toml.NewEncoder(wr).Encode(c)
}

// Sides is the number of players that take part in a game
func (c *Conf) Sides() int {
	if c.Players.Player1 != "" && c.Players.Player2 != "" {
		return 2
	}
	return 1
}

// Validate checks that the game settings describe a playable game
func (c *Conf) Validate() error {
	if c.Players.Player1 == "" && c.Players.Player2 == "" &&
		len(c.Players.Modules) == 0 {
		return ErrPlayers
	}
	switch c.Vis.Speed {
	case "slow", "normal", "fast":
	default:
		return errors.WithMessagef(ErrSpeed, "not %q", c.Vis.Speed)
	}
	if c.Game.Turns < 0 || c.Game.Foods < 0 || c.Game.Population < 1 {
		return errors.New("turns, foods and population must not be negative")
	}
	for _, d := range []Duration{c.Budget.Import, c.Budget.Instantiate,
		c.Budget.Decide, c.Budget.Evolve, c.Budget.Fitness} {
		if d < 0 {
			return errors.Errorf("negative time limit %s", d)
		}
	}

	sides := c.Sides()
	if len(c.Players.Modules) > 0 {
		sides = 2
	}
	err := game.Check(c.Game.Size, sides*c.Game.Population)
	if errors.Is(err, game.ErrTooManyAvatars) {
		regions := (c.Game.Size / snakes.RegionSize) * (c.Game.Size / snakes.RegionSize)
		size := int(math.Ceil(math.Sqrt(float64(sides*c.Game.Population)))) * snakes.RegionSize
		return errors.WithMessagef(err, "increase the size to %d or reduce the population to %d",
			size, regions/sides)
	}
	return err
}

// Delay is the time a visualiser waits between two frames
func (c *Conf) Delay() time.Duration {
	switch c.Vis.Speed {
	case "fast":
		return 16 * time.Millisecond
	case "slow":
		return 640 * time.Millisecond
	default:
		return 160 * time.Millisecond
	}
}

// Options returns the settings for a single game.  A negative seed is
// replaced by the current time.
func (c *Conf) Options() game.Options {
	seed := c.Game.Seed
	if seed < 0 {
		seed = time.Now().UnixNano()
	}
	return game.Options{
		Size:  c.Game.Size,
		Turns: c.Game.Turns,
		Foods: c.Game.Foods,
		Seed:  seed,
	}
}

// Limits converts the budget section into call deadlines
func (c *Conf) Limits() isol.Budget {
	return isol.Budget{
		Import:      time.Duration(c.Budget.Import),
		Instantiate: time.Duration(c.Budget.Instantiate),
		Decide:      time.Duration(c.Budget.Decide),
		Evolve:      time.Duration(c.Budget.Evolve),
		Fitness:     time.Duration(c.Budget.Fitness),
	}
}
