package main

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// Command runs an external program, keeping its combined output and
// logging every write at debug level.
type Command struct {
	cmd    *exec.Cmd
	name   string
	logger *logrus.Entry
	output bytes.Buffer
}

func NewCommandContext(ctx context.Context, logger *logrus.Entry, cmdName string, args ...string) *Command {
	cmd := exec.CommandContext(ctx, cmdName, args...)

	c := &Command{cmd: cmd, name: cmdName + " " + strings.Join(args, " "), logger: logger}
	cmd.Stdout = c
	cmd.Stderr = c
	return c
}

func (c *Command) Write(p []byte) (n int, err error) {
	c.logger.WithField("cmdName", c.name).Debug(string(p))
	return c.output.Write(p)
}

func (c *Command) CombinedOutput() (string, error) {
	err := c.cmd.Run()
	return c.GetOutput(), err
}

func (c *Command) GetOutput() string {
	return c.output.String()
}
