package main

import (
	"fmt"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"walletbridge/platform/simhost"
)

func newDeviceCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "device",
		Short: "Inspect and edit the simulated device",
	}
	cmd.PersistentFlags().String("flavour", "android", "flavour of a newly created device: android or ios")

	open := func() (*simhost.Device, error) {
		return openDevice(e.cfg, e.log)
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the device state",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				dev, err := open()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", e.cfg.Sim.Path)
				return toml.NewEncoder(cmd.OutOrStdout()).Encode(dev.State())
			},
		},
		&cobra.Command{
			Use:   "install <app-id>...",
			Short: "Mark applications as installed",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				dev, err := open()
				if err != nil {
					return err
				}
				for _, id := range args {
					if err := dev.Install(id); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "installed %s\n", id)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "uninstall <app-id>...",
			Short: "Remove applications",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				dev, err := open()
				if err != nil {
					return err
				}
				for _, id := range args {
					if err := dev.Uninstall(id); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "uninstalled %s\n", id)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "icons <supported>",
			Short: "Toggle alternate-icon support",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				supported, err := strconv.ParseBool(args[0])
				if err != nil {
					return err
				}
				dev, err := open()
				if err != nil {
					return err
				}
				return dev.SetAlternateIconSupport(supported)
			},
		},
		&cobra.Command{
			Use:   "schemes [scheme...]",
			Short: "Set the URL schemes the device can open",
			RunE: func(cmd *cobra.Command, args []string) error {
				dev, err := open()
				if err != nil {
					return err
				}
				return dev.SetURLSchemes(args...)
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Clear the navigation journal",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				dev, err := open()
				if err != nil {
					return err
				}
				return dev.Reset()
			},
		},
	)
	return cmd
}
