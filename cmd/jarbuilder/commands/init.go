package commands

import (
	"fmt"
	"io"
	"os"

	"git.home.luguber.info/inful/jarbuilder/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing build descriptor"`
}

func (i *InitCmd) Run(root *CLI) error {
	return RunInit(os.Stdout, root.Config, i.Force)
}

// RunInit writes the example descriptor to configPath.
func RunInit(w io.Writer, configPath string, force bool) error {
	_, _ = fmt.Fprintf(w, "Writing build descriptor to %s\n", configPath)
	if err := config.Init(configPath, force); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(w, "initialized successfully")
	return nil
}
