package domain

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Command wraps the invocation of an external tool (apt-get, docker,
// docker-compose, cloudflared, systemctl, crontab).
type Command struct {
	Name string
	Args []string
	Dir  string
}

func NewCommand(list []string) Command {
	var name string
	var args []string

	if len(list) > 1 {
		name = list[0]
		args = list[1:]
	} else {
		name = list[0]
		args = []string{}
	}

	return Command{Name: name, Args: args}
}

// NewComposeCommand builds a docker-compose invocation running inside the
// stack directory, so relative bind mounts and the project name resolve
// the same way for every caller.
func NewComposeCommand(stackDir string, list []string) Command {
	args := append([]string{}, list...)
	return Command{Name: "docker-compose", Args: args, Dir: stackDir}
}

func (c Command) String() string {
	return fmt.Sprintf("%s %s", c.Name, strings.Join(c.Args, " "))
}

// Execute runs the command with the terminal attached, so interactive
// tools (cloudflared tunnel login) and progress output work as usual.
func (c Command) Execute() error {
	cmd := exec.Command(c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	fmt.Printf("Executing: %s\n", c)

	return cmd.Run()
}

// GetResult runs the command and returns its trimmed stdout.
func (c Command) GetResult() (string, error) {
	cmd := exec.Command(c.Name, c.Args...)
	cmd.Dir = c.Dir
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(output)), nil
}

// WriteResultToFile runs the command and streams its stdout to the given
// file. Used for database dumps.
func (c Command) WriteResultToFile(file *os.File) error {
	cmd := exec.Command(c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdout = file
	cmd.Stderr = os.Stderr

	return cmd.Run()
}

// ExecuteWithStdin runs the command feeding it the given reader. Used to
// replay database dumps.
func (c Command) ExecuteWithStdin(reader io.Reader) error {
	cmd := exec.Command(c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdin = reader
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}
