// Command ignite-cli is a small scriptable client and interactive REPL for
// an ignited server. Usage:
//
//	ignite-cli --addr host:port put k v
//	ignite-cli --addr host:port backup --prefix store --dest ./backups
//	ignite-cli --addr host:port   (no further args: interactive REPL)
package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/atomic"
	"github.com/peterh/liner"
	"github.com/spf13/pflag"

	"github.com/emberkv/ignite/pkg/backupname"
	"github.com/emberkv/ignite/pkg/filesys"
)

func main() {
	os.Exit(run())
}

func run() int {
	addr := pflag.StringP("addr", "a", "127.0.0.1:11211", "ignited server address")
	pflag.Parse()
	args := pflag.Args()

	if len(args) > 0 && args[0] == "backup" {
		return runBackup(args[1:])
	}

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect:", err)
		return 1
	}
	defer conn.Close()

	if len(args) > 0 {
		return runOneShot(conn, strings.Join(args, " "))
	}
	return runREPL(conn)
}

// runOneShot sends a single request line and prints the single response
// line, mirroring a scripted `ignite-cli put k v` invocation.
func runOneShot(conn net.Conn, line string) int {
	if _, err := fmt.Fprintln(conn, line); err != nil {
		fmt.Fprintln(os.Stderr, "write:", err)
		return 1
	}
	resp, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && resp == "" {
		fmt.Fprintln(os.Stderr, "read:", err)
		return 1
	}
	fmt.Print(resp)
	if strings.HasPrefix(resp, "ERROR") {
		return 1
	}
	return 0
}

// runREPL drops into an interactive, history-backed prompt for exploring a
// running store by hand.
func runREPL(conn net.Conn) int {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	if f, err := os.Open(historyFile()); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile()); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	reader := bufio.NewReader(conn)
	fmt.Println("ignite-cli — type a command (PUT/READ/DELETE/READRANGE/BATCHPUT/SHUTDOWN), or 'quit'")

	for {
		input, err := line.Prompt("ignite> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				fmt.Println()
				return 0
			}
			fmt.Fprintln(os.Stderr, "read:", err)
			return 1
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if input == "quit" || input == "exit" {
			return 0
		}
		line.AppendHistory(input)

		if _, err := fmt.Fprintln(conn, input); err != nil {
			fmt.Fprintln(os.Stderr, "write:", err)
			return 1
		}
		resp, err := reader.ReadString('\n')
		if err != nil && resp == "" {
			fmt.Fprintln(os.Stderr, "read:", err)
			return 1
		}
		fmt.Print(resp)
	}
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ignite_cli_history"
	}
	return filepath.Join(home, ".ignite_cli_history")
}

// runBackup snapshots a running store's data file to a timestamped file in
// dest, using an atomic whole-file write so a reader never observes a
// partially written backup.
func runBackup(args []string) int {
	flags := pflag.NewFlagSet("backup", pflag.ContinueOnError)
	source := flags.String("source", "store.dat", "path to the live data file to snapshot")
	dest := flags.String("dest", ".", "directory to write the backup into")
	prefix := flags.String("prefix", "store", "backup filename prefix")
	if err := flags.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, "backup:", err)
		return 1
	}

	data, err := filesys.ReadFile(*source)
	if err != nil {
		fmt.Fprintln(os.Stderr, "backup: failed to read data file:", err)
		return 1
	}

	name := backupname.Generate(*prefix, time.Now().UnixNano())
	destPath := filepath.Join(*dest, name)

	if err := atomic.WriteFile(destPath, bytes.NewReader(data)); err != nil {
		fmt.Fprintln(os.Stderr, "backup: failed to write snapshot:", err)
		return 1
	}

	fmt.Println(destPath)
	return 0
}
