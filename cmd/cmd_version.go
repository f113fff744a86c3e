package cmd

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/mintforge/edition-engine/common/errs"
	"github.com/mintforge/edition-engine/core/constants"
	"github.com/mintforge/edition-engine/modules/editions"
	"github.com/spf13/cobra"
)

var versions = map[string]string{
	"":         constants.Version,
	"editions": editions.Version,
}

type versionCmdOptions struct {
	Modules string
}

func NewVersionCommand() *cobra.Command {
	opts := &versionCmdOptions{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show edition-engine version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return versionHandler(opts, cmd, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Modules, "module", "", `Show version of a specific module. E.g. "editions"`)

	return cmd
}

func versionHandler(opts *versionCmdOptions, _ *cobra.Command, _ []string) error {
	version, ok := versions[opts.Modules]
	if !ok {
		return errors.Wrap(errs.Unsupported, "Invalid module name")
	}
	fmt.Println(version)
	return nil
}
