package main

import (
	"time"

	"github.com/spf13/cobra"
)

// --- Global flags ---
var (
	configPath  string
	serverURL   string
	socketURL   string
	journalPath string
	logLevel    string

	// root (TUI)
	watchPath string

	// fen
	showBoard bool
	flipBoard bool

	// move
	moveWait time.Duration

	// load
	loadWatch bool
	loadGame  int

	// export
	exportOut         string
	exportPGN         string
	exportGame        int
	exportWidth       int
	exportHeight      int
	exportOrientation string
	exportServe       bool
	exportPort        int

	// version
	checkUpdates bool

	// journal
	journalEntries int64

	rootCmd = &cobra.Command{
		Use:   "chessview",
		Short: "Terminal viewer for a live chess analysis server",
		Long: `chessview connects to a chess analysis server, shows the current
position, the engine evaluation and the game's move tree, and lets you
play moves, step through the game, flip the board or start a new game
from PGN.

Run without a subcommand to start the interactive viewer.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          runTUI, // cmd_tui.go
	}

	fenCmd = &cobra.Command{
		Use:   "fen",
		Short: "Print the server's current position",
		Args:  cobra.NoArgs,
		RunE:  runFEN, // cmd_fen.go
	}

	moveCmd = &cobra.Command{
		Use:   "move <uci>",
		Short: "Play a move (e.g. e2e4) over the live stream and print the reply",
		Args:  cobra.ExactArgs(1),
		RunE:  runMove, // cmd_move.go
	}

	loadCmd = &cobra.Command{
		Use:   "load <file.pgn>",
		Short: "Start a new game on the server from a PGN file",
		Args:  cobra.ExactArgs(1),
		RunE:  runLoad, // cmd_load.go
	}

	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Draw the move tree as SVG or PNG, or serve it to a browser",
		Long: `export draws the game's move tree. The tree comes from --pgn when
given, otherwise from the server's stream. With --serve the tree is served
on a local page that follows the live game instead of being written once.`,
		Args: cobra.NoArgs,
		RunE: runExport, // cmd_export.go
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version, optionally checking for a newer release",
		Args:  cobra.NoArgs,
		RunE:  runVersion, // cmd_version.go
	}

	journalCmd = &cobra.Command{
		Use:   "journal",
		Short: "List recorded sessions, or one session's entries",
		Args:  cobra.NoArgs,
		RunE:  runJournal, // cmd_journal.go
	}
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/chessview/config.yaml)")
	pf.StringVar(&serverURL, "server", "", "server base URL (overrides config)")
	pf.StringVar(&socketURL, "socket", "", "stream URL (default derived from --server)")
	pf.StringVar(&journalPath, "journal", "", "sqlite journal file (default in-memory)")
	pf.StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides config)")

	rootCmd.Flags().StringVar(&watchPath, "watch", "", "re-upload this PGN file whenever it changes")

	fenCmd.Flags().BoolVar(&showBoard, "board", false, "draw the board as well")
	fenCmd.Flags().BoolVar(&flipBoard, "flip", false, "draw the board from Black's side")

	moveCmd.Flags().DurationVar(&moveWait, "wait", 10*time.Second, "how long to wait for the server's reply")

	loadCmd.Flags().BoolVar(&loadWatch, "watch", false, "keep running and re-upload the file when it changes")
	loadCmd.Flags().IntVar(&loadGame, "game", 0, "upload only game N (1-based) of a multi-game file")

	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "tree.svg", "output file (.svg or .png)")
	exportCmd.Flags().StringVar(&exportPGN, "pgn", "", "draw the tree of a local PGN file instead of the server's")
	exportCmd.Flags().IntVar(&exportGame, "game", 1, "game number within --pgn")
	exportCmd.Flags().IntVar(&exportWidth, "width", 0, "image width in pixels")
	exportCmd.Flags().IntVar(&exportHeight, "height", 0, "image height in pixels")
	exportCmd.Flags().StringVar(&exportOrientation, "orientation", "", "horizontal or vertical (default from config)")
	exportCmd.Flags().BoolVar(&exportServe, "serve", false, "serve the live tree on a local page instead of writing a file")
	exportCmd.Flags().IntVar(&exportPort, "port", 0, "port for --serve (default: first free in 9000-9100)")

	versionCmd.Flags().BoolVar(&checkUpdates, "check", false, "check GitHub for a newer release")

	journalCmd.Flags().Int64Var(&journalEntries, "session", 0, "print the entries of this session id")

	rootCmd.AddCommand(fenCmd, moveCmd, loadCmd, exportCmd, versionCmd, journalCmd)
}
