package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/rstms/fatfs"
	"github.com/rstms/fatfs/fat"
	"github.com/zeebo/xxh3"
)

// ErrQuit is returned by Exec when the user asks to leave the shell.
var ErrQuit = errors.New("quit")

type command struct {
	args  int
	usage string
	run   func(s *Shell, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"format": {0, "format", (*Shell).format},
		"create": {1, "create <file>  (content follows, ends with an empty line)", (*Shell).create},
		"cat":    {1, "cat <file>", (*Shell).cat},
		"ls":     {-1, "ls [path]", (*Shell).ls},
		"cp":     {2, "cp <source> <dest>", (*Shell).cp},
		"mv":     {2, "mv <source> <dest>", (*Shell).mv},
		"rm":     {1, "rm <path>", (*Shell).rm},
		"append": {2, "append <source> <dest>", (*Shell).append},
		"mkdir":  {1, "mkdir <dir>", (*Shell).mkdir},
		"cd":     {1, "cd <dir>", (*Shell).cd},
		"pwd":    {0, "pwd", (*Shell).pwd},
		"chmod":  {2, "chmod <rights> <path>", (*Shell).chmod},
		"sum":    {1, "sum <file>", (*Shell).sum},
		"check":  {0, "check", (*Shell).check},
		"help":   {0, "help", (*Shell).help},
		"quit":   {0, "quit", (*Shell).quit},
	}
}

// Shell reads commands line by line and runs them against a file system.
type Shell struct {
	fs     fatfs.FileSystem
	lines  *bufio.Scanner
	out    io.Writer
	Prompt string
}

// maxLine is the largest file a volume can hold; a content line may be
// that long.
const maxLine = fat.SlotCount * fatfs.ContentSize

func New(fs fatfs.FileSystem, in io.Reader, out io.Writer) *Shell {
	lines := bufio.NewScanner(in)
	lines.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLine+1)
	return &Shell{
		fs:     fs,
		lines:  lines,
		out:    out,
		Prompt: "fatfs> ",
	}
}

// Run executes commands until input ends or quit is entered. Command
// failures are reported and the loop continues.
func (s *Shell) Run() error {
	for {
		fmt.Fprint(s.out, s.Prompt)
		if !s.lines.Scan() {
			fmt.Fprintln(s.out)
			return s.lines.Err()
		}
		err := s.Exec(s.lines.Text())
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
	}
}

// Exec runs a single command line.
func (s *Shell) Exec(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name, args := fields[0], fields[1:]
	if name == "exit" {
		name = "quit"
	}
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command: %s", name)
	}
	if (cmd.args >= 0 && len(args) != cmd.args) || (cmd.args < 0 && len(args) > 1) {
		return fmt.Errorf("usage: %s", cmd.usage)
	}
	return cmd.run(s, args)
}

func (s *Shell) format(args []string) error {
	if err := s.fs.Format(); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "formatted")
	return nil
}

// readContent collects the lines following a create command up to the
// first empty line, each terminated by a newline. Input errors are
// returned so that nothing is created from partial content.
func (s *Shell) readContent() ([]byte, error) {
	var b strings.Builder
	for s.lines.Scan() {
		line := s.lines.Text()
		if line == "" {
			break
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if err := s.lines.Err(); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

func (s *Shell) create(args []string) error {
	content, err := s.readContent()
	if err != nil {
		return err
	}
	return s.fs.CreateFile(args[0], content)
}

func (s *Shell) cat(args []string) error {
	content, err := s.fs.ReadFile(args[0])
	if err != nil {
		return err
	}
	s.out.Write(content)
	if len(content) > 0 && content[len(content)-1] != '\n' {
		fmt.Fprintln(s.out)
	}
	return nil
}

func (s *Shell) ls(args []string) error {
	var entries []fatfs.EntryInfo
	var err error
	if len(args) == 1 {
		entries, err = s.fs.ListPath(args[0])
	} else {
		entries, err = s.fs.List()
	}
	if err != nil {
		return err
	}
	PrintEntries(s.out, entries)
	return nil
}

// PrintEntries writes one line per entry: name, kind, access rights and
// the size of files.
func PrintEntries(w io.Writer, entries []fatfs.EntryInfo) {
	fmt.Fprintf(w, "%-20s %-5s %-6s %10s\n", "name", "type", "access", "size")
	for _, e := range entries {
		size := fmt.Sprintf("%d", e.Size)
		if e.IsDir() {
			size = "-"
		}
		fmt.Fprintf(w, "%-20s %-5s %-6s %10s\n", e.Name, e.Kind, e.Access, size)
	}
}

func (s *Shell) cp(args []string) error {
	return s.fs.Copy(args[0], args[1])
}

func (s *Shell) mv(args []string) error {
	return s.fs.Move(args[0], args[1])
}

func (s *Shell) rm(args []string) error {
	return s.fs.Remove(args[0])
}

func (s *Shell) append(args []string) error {
	return s.fs.Append(args[0], args[1])
}

func (s *Shell) mkdir(args []string) error {
	return s.fs.Mkdir(args[0])
}

func (s *Shell) cd(args []string) error {
	return s.fs.Chdir(args[0])
}

func (s *Shell) pwd(args []string) error {
	fmt.Fprintln(s.out, s.fs.Pwd())
	return nil
}

func (s *Shell) chmod(args []string) error {
	rights, err := fatfs.ParseAccessRights(args[0])
	if err != nil {
		return err
	}
	return s.fs.Chmod(args[1], rights)
}

func (s *Shell) sum(args []string) error {
	content, err := s.fs.ReadFile(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%016x  %s\n", xxh3.Hash(content), args[0])
	return nil
}

type checker interface {
	Check() (*fat.Report, error)
}

func (s *Shell) check(args []string) error {
	c, ok := s.fs.(checker)
	if !ok {
		return fmt.Errorf("check is not supported by this file system")
	}
	report, err := c.Check()
	if err != nil {
		return err
	}
	PrintReport(s.out, report)
	return nil
}

// PrintReport writes a human readable summary of a consistency check.
func PrintReport(w io.Writer, report *fat.Report) {
	fmt.Fprintf(w, "%d files, %d directories, %d blocks used, %d free\n",
		report.Files, report.Directories, report.UsedBlocks, report.FreeBlocks)
	for _, problem := range report.Problems {
		fmt.Fprintf(w, "problem: %s\n", problem)
	}
	if len(report.Leaked) > 0 {
		fmt.Fprintf(w, "leaked blocks: %v\n", report.Leaked)
	}
	if report.OK() {
		fmt.Fprintln(w, "ok")
	}
}

func (s *Shell) help(args []string) error {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(s.out, "  %s\n", commands[name].usage)
	}
	return nil
}

func (s *Shell) quit(args []string) error {
	return ErrQuit
}
