package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/webtree/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force  bool   `help:"Overwrite an existing configuration file"`
	Output string `short:"o" name:"output" help:"Directory to write webtree.yaml to" type:"path"`
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	path := root.Config
	if i.Output != "" {
		path = filepath.Join(i.Output, config.DefaultFile)
	}
	return RunInit(os.Stdout, path, i.Force)
}

// RunInit writes the default configuration to path and reports it on w.
func RunInit(w io.Writer, path string, force bool) error {
	if err := config.Init(path, force); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "Wrote default configuration to %s\n", path)
	return nil
}
