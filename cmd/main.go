package cmd

import (
	"github.com/google/subcommands"
)

// Commands lists the subcommands of the application, with their group.
var Commands = []struct {
	Cmd   subcommands.Command
	Group string
}{
	{&simulateCmd{}, "simulation"},
	{&serveCmd{}, "simulation"},
	{&promptCmd{}, "simulation"},
	{&configCmd{}, "configuration"},
	{&topicCmd{}, "help"},
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, cmd := range Commands {
		c.Register(cmd.Cmd, cmd.Group)
	}
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")
}
